package providers

import "strings"

// Protocol names the tool-calling wire format a vendor speaks.
type Protocol string

const (
	// ProtocolContentBlocks is the Messages API shape: ordered content blocks
	// with tool_use / tool_result entries and a stop_reason.
	ProtocolContentBlocks Protocol = "content_blocks"
	// ProtocolToolCalls is the chat-completions shape: a tool_calls array on the
	// assistant message and one role "tool" message per answer.
	ProtocolToolCalls Protocol = "tool_calls"
)

// ProviderSpec is the metadata record for one LLM provider.
type ProviderSpec struct {
	// Identity
	Name        string   // config field name, e.g. "openrouter"
	Keywords    []string // model-name keywords for matching (lowercase)
	EnvKey      string   // env var consulted when the config has no api key
	DisplayName string   // shown in `storyloom status`

	// Wire format and endpoint
	Protocol       Protocol
	DefaultAPIBase string

	// Model prefixing
	ModelPrefix      string // routing prefix stripped before the model name is sent
	StripModelPrefix bool   // gateways that want the bare model name

	// Gateway / local detection
	IsGateway           bool   // routes any model (OpenRouter)
	IsLocal             bool   // local deployment (vLLM); no api key needed
	DetectByKeyPrefix   string // match api_key prefix to identify gateway
	DetectByBaseKeyword string // match substring in api_base URL
}

// Label returns the display name, defaulting to Title-cased Name.
func (s ProviderSpec) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return strings.ToTitle(s.Name[:1]) + s.Name[1:]
}

// ---------------------------------------------------------------------------
// PROVIDERS is the registry. Order is match priority.
// ---------------------------------------------------------------------------

var PROVIDERS = []ProviderSpec{
	{
		Name:        "custom",
		DisplayName: "Custom",
		Protocol:    ProtocolToolCalls,
	},
	{
		Name:                "openrouter",
		Keywords:            []string{"openrouter"},
		EnvKey:              "OPENROUTER_API_KEY",
		DisplayName:         "OpenRouter",
		Protocol:            ProtocolToolCalls,
		ModelPrefix:         "openrouter",
		IsGateway:           true,
		DetectByKeyPrefix:   "sk-or-",
		DetectByBaseKeyword: "openrouter",
		DefaultAPIBase:      "https://openrouter.ai/api/v1",
	},
	{
		Name:           "anthropic",
		Keywords:       []string{"anthropic", "claude"},
		EnvKey:         "ANTHROPIC_API_KEY",
		DisplayName:    "Anthropic",
		Protocol:       ProtocolContentBlocks,
		ModelPrefix:    "anthropic",
		DefaultAPIBase: "https://api.anthropic.com/v1",
	},
	{
		Name:           "openai",
		Keywords:       []string{"openai", "gpt"},
		EnvKey:         "OPENAI_API_KEY",
		DisplayName:    "OpenAI",
		Protocol:       ProtocolToolCalls,
		ModelPrefix:    "openai",
		DefaultAPIBase: "https://api.openai.com/v1",
	},
	{
		Name:           "deepseek",
		Keywords:       []string{"deepseek"},
		EnvKey:         "DEEPSEEK_API_KEY",
		DisplayName:    "DeepSeek",
		Protocol:       ProtocolToolCalls,
		ModelPrefix:    "deepseek",
		DefaultAPIBase: "https://api.deepseek.com/v1",
	},
	{
		Name:           "gemini",
		Keywords:       []string{"gemini"},
		EnvKey:         "GEMINI_API_KEY",
		DisplayName:    "Gemini",
		Protocol:       ProtocolToolCalls,
		ModelPrefix:    "gemini",
		DefaultAPIBase: "https://generativelanguage.googleapis.com/v1beta/openai",
	},
	{
		Name:           "groq",
		Keywords:       []string{"groq"},
		EnvKey:         "GROQ_API_KEY",
		DisplayName:    "Groq",
		Protocol:       ProtocolToolCalls,
		ModelPrefix:    "groq",
		DefaultAPIBase: "https://api.groq.com/openai/v1",
	},
	{
		Name:           "vllm",
		Keywords:       []string{"vllm"},
		EnvKey:         "HOSTED_VLLM_API_KEY",
		DisplayName:    "vLLM/Local",
		Protocol:       ProtocolToolCalls,
		ModelPrefix:    "hosted_vllm",
		IsLocal:        true,
		DefaultAPIBase: "http://localhost:8000/v1",
	},
}

// FindByModel matches a standard provider by model-name keyword (case-insensitive).
// Skips gateways and local providers; those are matched by api_key/api_base.
func FindByModel(model string) *ProviderSpec {
	modelLower := strings.ToLower(model)
	modelNorm := strings.ReplaceAll(modelLower, "-", "_")
	modelPrefix, _, _ := strings.Cut(modelLower, "/")
	normalizedPrefix := strings.ReplaceAll(modelPrefix, "-", "_")

	var std []int
	for i := range PROVIDERS {
		if !PROVIDERS[i].IsGateway && !PROVIDERS[i].IsLocal && PROVIDERS[i].Name != "custom" {
			std = append(std, i)
		}
	}

	// Prefer explicit provider prefix.
	for _, i := range std {
		spec := &PROVIDERS[i]
		if strings.Contains(modelLower, "/") && normalizedPrefix == spec.Name {
			return spec
		}
	}

	// Keyword match.
	for _, i := range std {
		spec := &PROVIDERS[i]
		for _, kw := range spec.Keywords {
			kwNorm := strings.ReplaceAll(kw, "-", "_")
			if strings.Contains(modelLower, kw) || strings.Contains(modelNorm, kwNorm) {
				return spec
			}
		}
	}
	return nil
}

// FindGateway detects the gateway or local provider.
// Priority: (1) explicit provider name, (2) api_key prefix, (3) api_base keyword.
func FindGateway(providerName, apiKey, apiBase string) *ProviderSpec {
	if providerName != "" {
		if s := FindByName(providerName); s != nil && (s.IsGateway || s.IsLocal) {
			return s
		}
	}
	for i := range PROVIDERS {
		spec := &PROVIDERS[i]
		if spec.DetectByKeyPrefix != "" && apiKey != "" && strings.HasPrefix(apiKey, spec.DetectByKeyPrefix) {
			return spec
		}
		if spec.DetectByBaseKeyword != "" && apiBase != "" && strings.Contains(apiBase, spec.DetectByBaseKeyword) {
			return spec
		}
	}
	return nil
}

// FindByName returns the ProviderSpec whose Name equals name.
func FindByName(name string) *ProviderSpec {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for i := range PROVIDERS {
		if PROVIDERS[i].Name == name {
			return &PROVIDERS[i]
		}
	}
	return nil
}

// resolveModel strips routing prefixes so the vendor receives the model name
// it expects. Gateways keep the "vendor/model" form they route on, minus their
// own prefix; standard providers get the bare name.
func resolveModel(spec *ProviderSpec, model string) string {
	if spec == nil {
		return model
	}
	if spec.IsGateway && spec.StripModelPrefix {
		if i := strings.LastIndex(model, "/"); i >= 0 {
			return model[i+1:]
		}
		return model
	}
	for _, pfx := range []string{spec.ModelPrefix, spec.Name} {
		if pfx == "" {
			continue
		}
		full := pfx + "/"
		if strings.HasPrefix(strings.ToLower(model), full) {
			return model[len(full):]
		}
	}
	if spec.IsGateway {
		return model
	}
	// Fallback: strip any unknown provider prefix recognised in the registry.
	if before, after, ok := strings.Cut(model, "/"); ok && FindByName(before) != nil {
		return after
	}
	return model
}

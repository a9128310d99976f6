package provider

const (
	ProviderCustom     = "custom"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderDeepSeek   = "deepseek"
	ProviderGemini     = "gemini"
	ProviderGroq       = "groq"
	ProviderVLLM       = "vllm"
)

// ProviderConfig holds credentials for one LLM provider.
type ProviderConfig struct {
	APIKey       string            `json:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty"`
}

// Usable reports whether the entry can serve requests. Local servers need
// only an API base; hosted vendors need a key.
func (p ProviderConfig) Usable(local bool) bool {
	return p.APIKey != "" || (local && p.APIBase != "")
}

// ProvidersConfig holds credentials for all supported LLM providers.
type ProvidersConfig struct {
	Custom     ProviderConfig `json:"custom"`
	OpenRouter ProviderConfig `json:"openrouter"`
	Anthropic  ProviderConfig `json:"anthropic"`
	OpenAI     ProviderConfig `json:"openai"`
	DeepSeek   ProviderConfig `json:"deepseek"`
	Gemini     ProviderConfig `json:"gemini"`
	Groq       ProviderConfig `json:"groq"`
	VLLM       ProviderConfig `json:"vllm"`
}

func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{}
}

// ByName returns a pointer to the ProviderConfig field matching the given
// registry name. Returns nil if the name is unknown.
func (p *ProvidersConfig) ByName(name string) *ProviderConfig {
	switch name {
	case ProviderCustom:
		return &p.Custom
	case ProviderOpenRouter:
		return &p.OpenRouter
	case ProviderAnthropic:
		return &p.Anthropic
	case ProviderOpenAI:
		return &p.OpenAI
	case ProviderDeepSeek:
		return &p.DeepSeek
	case ProviderGemini:
		return &p.Gemini
	case ProviderGroq:
		return &p.Groq
	case ProviderVLLM:
		return &p.VLLM
	}
	return nil
}

package config

import (
	"strings"

	"github.com/storyloom/storyloom/internal/config/provider"
	"github.com/storyloom/storyloom/internal/providers"
)

// MatchResult is the resolved LLM provider config and registry name for a model.
type MatchResult struct {
	Provider *provider.ProviderConfig
	Name     string // e.g. "openrouter", "anthropic"
}

// MatchProvider resolves which provider config and registry entry to use for model.
// If model is empty, the default model from agents.defaults.model is used.
//
// Priority order:
//  1. agents.defaults.provider, when set
//  2. Explicit provider prefix in model string (e.g. "deepseek/deepseek-chat" → deepseek)
//  3. Keyword match in model name (registry order)
//  4. Fallback: first configured provider in registry order (gateways come first)
func (c *Config) MatchProvider(model string) MatchResult {
	if model == "" {
		model = c.Agents.Defaults.Model
	}

	if forced := c.Agents.Defaults.Provider; forced != "" {
		if spec := providers.FindByName(forced); spec != nil {
			return MatchResult{Provider: c.ProviderByName(spec.Name), Name: spec.Name}
		}
	}

	modelLower := strings.ToLower(model)
	modelNorm := strings.ReplaceAll(modelLower, "-", "_")
	modelPrefix, _, _ := strings.Cut(modelLower, "/")
	normalizedPrefix := strings.ReplaceAll(modelPrefix, "-", "_")

	kwMatches := func(kw string) bool {
		kw = strings.ToLower(kw)
		kwNorm := strings.ReplaceAll(kw, "-", "_")
		return strings.Contains(modelLower, kw) || strings.Contains(modelNorm, kwNorm)
	}
	usable := func(spec providers.ProviderSpec, p *provider.ProviderConfig) bool {
		return p != nil && p.Usable(spec.IsLocal)
	}

	// 1. Explicit provider prefix wins.
	for _, spec := range providers.PROVIDERS {
		p := c.ProviderByName(spec.Name)
		if modelPrefix != "" && normalizedPrefix == spec.Name && usable(spec, p) {
			return MatchResult{Provider: p, Name: spec.Name}
		}
	}

	// 2. Keyword match.
	for _, spec := range providers.PROVIDERS {
		p := c.ProviderByName(spec.Name)
		if !usable(spec, p) {
			continue
		}
		for _, kw := range spec.Keywords {
			if kwMatches(kw) {
				return MatchResult{Provider: p, Name: spec.Name}
			}
		}
	}

	// 3. Fallback: first configured provider.
	for _, spec := range providers.PROVIDERS {
		p := c.ProviderByName(spec.Name)
		if usable(spec, p) {
			return MatchResult{Provider: p, Name: spec.Name}
		}
	}

	return MatchResult{}
}

// ProviderParams assembles the adapter construction parameters for model.
// If model is empty, agents.defaults.model is used.
func (c *Config) ProviderParams(model string) providers.Params {
	if model == "" {
		model = c.Agents.Defaults.Model
	}
	d := c.Agents.Defaults
	params := providers.Params{
		Model:       model,
		MaxTokens:   d.MaxTokens,
		Temperature: d.Temperature,
	}

	m := c.MatchProvider(model)
	params.ProviderName = m.Name
	if m.Provider != nil {
		params.APIKey = m.Provider.APIKey
		params.APIBase = m.Provider.APIBase
		params.ExtraHeaders = m.Provider.ExtraHeaders
	}
	return params
}

// GetProviderName returns the registry name of the matched provider (or "").
func (c *Config) GetProviderName(model string) string {
	return c.MatchProvider(model).Name
}

// GetAPIKey returns the API key for model (or "").
func (c *Config) GetAPIKey(model string) string {
	if p := c.MatchProvider(model).Provider; p != nil {
		return p.APIKey
	}
	return ""
}

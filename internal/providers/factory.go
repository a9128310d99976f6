package providers

import (
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/internal/schema"
)

// Params are the raw values needed to construct any schema.ProviderAdapter.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	Model        string
	ProviderName string // registry name, e.g. "openrouter", "anthropic"
	MaxTokens    int
	Temperature  float64
}

// Resolution is the outcome of matching Params against the registry.
type Resolution struct {
	Spec     *ProviderSpec // nil when nothing matched
	Protocol Protocol
	APIBase  string
	Model    string // model name as sent on the wire
}

// Resolve picks the provider spec, wire protocol, API base and wire model name.
// Gateways are detected first, then the configured provider name, then the
// model keyword.
func Resolve(p Params) Resolution {
	spec := FindGateway(p.ProviderName, p.APIKey, p.APIBase)
	if spec == nil && p.ProviderName != "" {
		spec = FindByName(p.ProviderName)
	}
	if spec == nil {
		spec = FindByModel(p.Model)
	}

	r := Resolution{Spec: spec, Protocol: ProtocolToolCalls, APIBase: p.APIBase, Model: p.Model}
	if spec != nil {
		if spec.Protocol != "" {
			r.Protocol = spec.Protocol
		}
		if r.APIBase == "" {
			r.APIBase = spec.DefaultAPIBase
		}
		r.Model = resolveModel(spec, p.Model)
	}
	if strings.Contains(strings.ToLower(r.APIBase), "anthropic.com") {
		r.Protocol = ProtocolContentBlocks
	}
	return r
}

// New creates the adapter for the given params. The protocol is chosen here,
// once, and never re-derived per call.
func New(p Params) (schema.ProviderAdapter, error) {
	r := Resolve(p)
	if p.Model == "" {
		return nil, fmt.Errorf("no model configured")
	}
	if p.APIKey == "" && (r.Spec == nil || !r.Spec.IsLocal) && p.ProviderName != "custom" {
		name := p.ProviderName
		if r.Spec != nil {
			name = r.Spec.Name
		}
		return nil, fmt.Errorf("no API key configured for provider %q", name)
	}

	opts := Options{
		APIKey:       p.APIKey,
		APIBase:      r.APIBase,
		Model:        r.Model,
		MaxTokens:    p.MaxTokens,
		Temperature:  p.Temperature,
		ExtraHeaders: p.ExtraHeaders,
	}
	switch r.Protocol {
	case ProtocolContentBlocks:
		return NewContentBlockAdapter(opts), nil
	default:
		return NewToolCallsAdapter(opts), nil
	}
}

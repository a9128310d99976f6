// Package providers implements the two tool-calling wire protocols behind
// schema.ProviderAdapter, the provider registry that decides which protocol
// a vendor speaks, and the HTTP transport used to reach it.
package providers

import "strings"

const defaultMaxTokens = 4096

// Options configures one adapter. They are fixed for the adapter's lifetime.
type Options struct {
	APIKey       string
	APIBase      string
	Model        string
	MaxTokens    int
	Temperature  float64
	ExtraHeaders map[string]string
}

func (o Options) withDefaults(base string) Options {
	if o.APIBase == "" {
		o.APIBase = base
	}
	o.APIBase = strings.TrimRight(o.APIBase, "/")
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	return o
}

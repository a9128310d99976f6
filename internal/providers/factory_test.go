package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		params   Params
		provider string
		protocol Protocol
		base     string
		model    string
	}{
		{
			name:     "claude model speaks content blocks",
			params:   Params{Model: "anthropic/claude-sonnet-4-5", APIKey: "sk-ant"},
			provider: "anthropic",
			protocol: ProtocolContentBlocks,
			base:     "https://api.anthropic.com/v1",
			model:    "claude-sonnet-4-5",
		},
		{
			name:     "gpt model speaks tool calls",
			params:   Params{Model: "gpt-4o", APIKey: "sk-x"},
			provider: "openai",
			protocol: ProtocolToolCalls,
			base:     "https://api.openai.com/v1",
			model:    "gpt-4o",
		},
		{
			name:     "openrouter detected by key prefix keeps vendor prefix",
			params:   Params{Model: "anthropic/claude-sonnet-4-5", APIKey: "sk-or-abc"},
			provider: "openrouter",
			protocol: ProtocolToolCalls,
			base:     "https://openrouter.ai/api/v1",
			model:    "anthropic/claude-sonnet-4-5",
		},
		{
			name:     "explicit provider name wins over model keyword",
			params:   Params{Model: "deepseek-chat", ProviderName: "groq", APIKey: "k"},
			provider: "groq",
			protocol: ProtocolToolCalls,
			base:     "https://api.groq.com/openai/v1",
			model:    "deepseek-chat",
		},
		{
			name:     "custom base is kept",
			params:   Params{Model: "gpt-4o-mini", APIBase: "https://proxy.example/v1", APIKey: "k"},
			provider: "openai",
			protocol: ProtocolToolCalls,
			base:     "https://proxy.example/v1",
			model:    "gpt-4o-mini",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Resolve(tc.params)
			require.NotNil(t, r.Spec)
			assert.Equal(t, tc.provider, r.Spec.Name)
			assert.Equal(t, tc.protocol, r.Protocol)
			assert.Equal(t, tc.base, r.APIBase)
			assert.Equal(t, tc.model, r.Model)
		})
	}
}

func TestNew_SelectsAdapterOnce(t *testing.T) {
	a, err := New(Params{Model: "claude-haiku-4-5", APIKey: "sk-ant"})
	require.NoError(t, err)
	assert.IsType(t, &ContentBlockAdapter{}, a)

	b, err := New(Params{Model: "gpt-4o", APIKey: "sk-x"})
	require.NoError(t, err)
	assert.IsType(t, &ToolCallsAdapter{}, b)
}

func TestNew_RequiresAPIKeyExceptLocal(t *testing.T) {
	_, err := New(Params{Model: "gpt-4o"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"openai"`)

	a, err := New(Params{Model: "llama-3.1-8b", ProviderName: "vllm"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/v1/chat/completions", a.Endpoint())
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New(Params{APIKey: "k"})
	assert.Error(t, err)
}

func TestFindByName_Normalizes(t *testing.T) {
	require.NotNil(t, FindByName("OpenRouter"))
	assert.Nil(t, FindByName("nope"))
	assert.Equal(t, "Anthropic", FindByName("anthropic").Label())
}

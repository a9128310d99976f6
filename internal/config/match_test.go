package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/internal/config/provider"
)

func TestMatchProvider(t *testing.T) {
	cases := []struct {
		name  string
		setup func(c *Config)
		model string
		want  string
	}{
		{
			name:  "prefix with key",
			setup: func(c *Config) { c.Providers.DeepSeek.APIKey = "k" },
			model: "deepseek/deepseek-chat",
			want:  "deepseek",
		},
		{
			name:  "keyword match",
			setup: func(c *Config) { c.Providers.Anthropic.APIKey = "k"; c.Providers.OpenAI.APIKey = "k" },
			model: "claude-sonnet-4-5",
			want:  "anthropic",
		},
		{
			name:  "gateway fallback when vendor has no key",
			setup: func(c *Config) { c.Providers.OpenRouter.APIKey = "sk-or-1" },
			model: "anthropic/claude-sonnet-4-5",
			want:  "openrouter",
		},
		{
			name:  "local provider needs only a base",
			setup: func(c *Config) { c.Providers.VLLM.APIBase = "http://gpu:8000/v1" },
			model: "llama-3.1-8b",
			want:  "vllm",
		},
		{
			name:  "forced provider",
			setup: func(c *Config) { c.Agents.Defaults.Provider = "groq"; c.Providers.OpenAI.APIKey = "k" },
			model: "gpt-4o",
			want:  "groq",
		},
		{
			name:  "nothing configured",
			setup: func(*Config) {},
			model: "gpt-4o",
			want:  "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.setup(&cfg)
			assert.Equal(t, tc.want, cfg.MatchProvider(tc.model).Name)
		})
	}
}

func TestProviderConfig_Usable(t *testing.T) {
	baseOnly := provider.ProviderConfig{APIBase: "http://gpu:8000/v1"}
	keyed := provider.ProviderConfig{APIKey: "k"}

	assert.True(t, baseOnly.Usable(true))
	assert.False(t, baseOnly.Usable(false))
	assert.True(t, keyed.Usable(false))
	assert.False(t, provider.ProviderConfig{}.Usable(true))
}

func TestProviderParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agents.Defaults.Model = "gpt-4o"
	cfg.Agents.Defaults.MaxTokens = 2048
	cfg.Providers.OpenAI.APIKey = "sk-x"
	cfg.Providers.OpenAI.APIBase = "https://proxy/v1"

	p := cfg.ProviderParams("")

	assert.Equal(t, "gpt-4o", p.Model)
	assert.Equal(t, "openai", p.ProviderName)
	assert.Equal(t, "sk-x", p.APIKey)
	assert.Equal(t, "https://proxy/v1", p.APIBase)
	assert.Equal(t, 2048, p.MaxTokens)
	assert.Equal(t, "sk-x", cfg.GetAPIKey(""))
}

func TestApplyEnv_ConfigWins(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg := DefaultConfig()
	cfg.Providers.OpenAI.APIKey = "from-file"
	cfg.ApplyEnv()

	assert.Equal(t, "from-env", cfg.Providers.Anthropic.APIKey)
	assert.Equal(t, "from-file", cfg.Providers.OpenAI.APIKey)
	assert.Empty(t, cfg.Providers.Custom.APIKey)
}

func TestLoadEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GROQ_API_KEY=dotenv\nDEEPSEEK_API_KEY=dotenv\n"), 0o600))
	t.Setenv("GROQ_API_KEY", "shell")
	t.Setenv("DEEPSEEK_API_KEY", "")
	os.Unsetenv("DEEPSEEK_API_KEY")

	require.NoError(t, LoadEnv())
	t.Cleanup(func() { os.Unsetenv("DEEPSEEK_API_KEY") })

	assert.Equal(t, "shell", os.Getenv("GROQ_API_KEY"))
	assert.Equal(t, "dotenv", os.Getenv("DEEPSEEK_API_KEY"))
}

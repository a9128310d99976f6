package agent

type AgentDefaults struct {
	Workspace     string  `json:"workspace"`
	Model         string  `json:"model"`
	Provider      string  `json:"provider,omitempty"` // force a registry entry instead of matching by model
	MaxTokens     int     `json:"maxTokens"`
	Temperature   float64 `json:"temperature"`
	MaxToolRounds int     `json:"maxToolRounds"`
}

type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults"`
}

func defaultAgentDefaults() AgentDefaults {
	return AgentDefaults{
		Workspace:     "~/.storyloom/workspace",
		Model:         "anthropic/claude-sonnet-4-5",
		MaxTokens:     4096,
		Temperature:   0.7,
		MaxToolRounds: 5,
	}
}

func DefaultAgentsConfig() AgentsConfig {
	return AgentsConfig{Defaults: defaultAgentDefaults()}
}

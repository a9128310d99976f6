package providers

import (
	"github.com/sashabaranov/go-openai"

	"github.com/storyloom/storyloom/internal/schema"
)

// AnthropicTool is one catalogue entry in the content-block wire shape.
type AnthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// AnthropicTools serializes the catalogue as
// {name, description, input_schema:{type:"object", properties, required}}.
func AnthropicTools(defs []schema.ToolDefinition) []AnthropicTool {
	out := make([]AnthropicTool, 0, len(defs))
	for _, d := range defs {
		out = append(out, AnthropicTool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema.JSONSchema(),
		})
	}
	return out
}

// OpenAITools serializes the catalogue in the function-calling shape
// {type:"function", function:{name, description, parameters}}.
func OpenAITools(defs []schema.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.InputSchema.JSONSchema(),
			},
		})
	}
	return out
}

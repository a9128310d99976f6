package schema

import "encoding/json"

// Role is the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolInvocation is one tool call requested by the model. ID is the
// vendor-supplied correlation token and must be echoed back unchanged.
type ToolInvocation struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolOutcome pairs an invocation with the result it produced.
type ToolOutcome struct {
	CallID string
	Name   string
	Result ToolResult
}

// Message is one entry in the per-turn transcript.
//
// Content holds text for system, user and assistant messages.
// ToolCalls and Raw are set on assistant messages that requested tools;
// Raw keeps the vendor's own payload so it can be echoed back verbatim.
// Results is set on tool messages and holds one round's outcomes in call order.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolInvocation
	Raw       json.RawMessage
	Results   []ToolOutcome
}

func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds the assistant entry for a provider reply.
func NewAssistantMessage(reply ProviderReply) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   reply.Text,
		ToolCalls: reply.ToolCalls,
		Raw:       reply.Raw,
	}
}

func NewToolResultsMessage(outcomes []ToolOutcome) Message {
	return Message{Role: RoleTool, Results: outcomes}
}

package providers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/storyloom/storyloom/internal/schema"
)

// ToolCallsAdapter speaks the chat-completions protocol: tool requests arrive
// as a tool_calls array on the assistant message and each answer is sent back
// as its own role "tool" message carrying the call id.
type ToolCallsAdapter struct {
	opts Options
}

// NewToolCallsAdapter returns an adapter posting to <apiBase>/chat/completions.
func NewToolCallsAdapter(opts Options) *ToolCallsAdapter {
	return &ToolCallsAdapter{opts: opts.withDefaults("https://api.openai.com/v1")}
}

func (a *ToolCallsAdapter) Name() string     { return "tool_calls" }
func (a *ToolCallsAdapter) Endpoint() string { return a.opts.APIBase + "/chat/completions" }

func (a *ToolCallsAdapter) Headers() map[string]string {
	h := map[string]string{}
	if a.opts.APIKey != "" {
		h["Authorization"] = "Bearer " + a.opts.APIKey
	}
	for k, v := range a.opts.ExtraHeaders {
		h[k] = v
	}
	return h
}

// ---------------------------------------------------------------------------
// Request
// ---------------------------------------------------------------------------

// BuildRequest renders the transcript as a chat completion request with
// tool_choice "auto". Assistant turns that requested tools are replayed from
// the vendor's own message.
func (a *ToolCallsAdapter) BuildRequest(transcript schema.Messages, tools []schema.ToolDefinition) (any, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: float32(a.opts.Temperature),
	}
	if len(tools) > 0 {
		req.Tools = OpenAITools(tools)
		req.ToolChoice = "auto"
	}

	for _, m := range transcript.Messages {
		switch m.Role {
		case schema.RoleSystem:
			if m.Content == "" {
				continue
			}
			req.Messages = append(req.Messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: m.Content,
			})

		case schema.RoleUser:
			req.Messages = append(req.Messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: m.Content,
			})

		case schema.RoleAssistant:
			msg, err := assistantMessage(m)
			if err != nil {
				return nil, err
			}
			req.Messages = append(req.Messages, msg)

		case schema.RoleTool:
			for _, o := range m.Results {
				req.Messages = append(req.Messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    o.Result.JSON(),
					Name:       o.Name,
					ToolCallID: o.CallID,
				})
			}

		default:
			return nil, fmt.Errorf("tool_calls: unsupported role %q", m.Role)
		}
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("tool_calls: transcript has no messages")
	}
	return req, nil
}

func assistantMessage(m schema.Message) (openai.ChatCompletionMessage, error) {
	if len(m.Raw) > 0 {
		var msg openai.ChatCompletionMessage
		if err := json.Unmarshal(m.Raw, &msg); err != nil {
			return openai.ChatCompletionMessage{}, fmt.Errorf("tool_calls: decode assistant message: %w", err)
		}
		if msg.Role == "" {
			msg.Role = openai.ChatMessageRoleAssistant
		}
		return msg, nil
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content}
	for _, tc := range m.ToolCalls {
		args := tc.Arguments
		if args == nil {
			args = map[string]any{}
		}
		data, err := json.Marshal(args)
		if err != nil {
			return openai.ChatCompletionMessage{}, fmt.Errorf("tool_calls: encode arguments of %s: %w", tc.Name, err)
		}
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:       tc.ID,
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: tc.Name, Arguments: string(data)},
		})
	}
	return msg, nil
}

// ---------------------------------------------------------------------------
// Response
// ---------------------------------------------------------------------------

// rawChoices keeps the assistant message bytes for verbatim replay.
type rawChoices struct {
	Choices []struct {
		Message json.RawMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ParseResponse decodes a chat completion. Any tool call marks a reply that
// needs tools. Arguments that are not valid JSON decode to an empty object.
func (a *ToolCallsAdapter) ParseResponse(raw []byte) (schema.ProviderReply, error) {
	var envelope rawChoices
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return schema.ProviderReply{}, fmt.Errorf("parse tool_calls response: %w", err)
	}
	if envelope.Error != nil && len(envelope.Choices) == 0 {
		return schema.ProviderReply{}, fmt.Errorf("tool_calls: %s", envelope.Error.Message)
	}

	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return schema.ProviderReply{}, fmt.Errorf("parse tool_calls response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return schema.ProviderReply{}, schema.ErrEmptyChoices
	}

	choice := resp.Choices[0]
	reply := schema.ProviderReply{
		Text:       messageText(choice.Message),
		StopReason: string(choice.FinishReason),
	}
	for _, tc := range choice.Message.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, schema.ToolInvocation{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: decodeArguments(tc.Function.Name, tc.Function.Arguments),
		})
	}
	reply.NeedsTools = len(reply.ToolCalls) > 0
	if len(envelope.Choices) > 0 {
		reply.Raw = envelope.Choices[0].Message
	}
	return reply, nil
}

// messageText supports both a plain string and a list of {type:"text"} parts.
func messageText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" {
		return msg.Content
	}
	var sb strings.Builder
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func decodeArguments(tool, raw string) map[string]any {
	args := map[string]any{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		slog.Warn("Malformed tool arguments, using {}", "tool", tool, "err", err)
		return map[string]any{}
	}
	return args
}

// FinalText returns the reply text of a turn-ending response. An empty reply
// cut off by the length limit is reported as truncated.
func (a *ToolCallsAdapter) FinalText(reply schema.ProviderReply) (string, error) {
	if strings.TrimSpace(reply.Text) != "" {
		return reply.Text, nil
	}
	if reply.StopReason == string(openai.FinishReasonLength) {
		return "", fmt.Errorf("%w (finish_reason=%s)", schema.ErrTruncated, reply.StopReason)
	}
	return "", fmt.Errorf("%w (finish_reason=%s)", schema.ErrNoTextResponse, reply.StopReason)
}

package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/internal/schema"
)

const (
	anthropicVersion  = "2023-06-01"
	stopReasonToolUse = "tool_use"
)

// ContentBlockAdapter speaks the Messages API protocol: turns are lists of
// typed content blocks, tool requests are tool_use blocks and answers go back
// as tool_result blocks inside a user message.
type ContentBlockAdapter struct {
	opts Options
}

// NewContentBlockAdapter returns an adapter posting to <apiBase>/messages.
func NewContentBlockAdapter(opts Options) *ContentBlockAdapter {
	return &ContentBlockAdapter{opts: opts.withDefaults("https://api.anthropic.com/v1")}
}

func (a *ContentBlockAdapter) Name() string     { return "content_blocks" }
func (a *ContentBlockAdapter) Endpoint() string { return a.opts.APIBase + "/messages" }

func (a *ContentBlockAdapter) Headers() map[string]string {
	h := map[string]string{
		"x-api-key":         a.opts.APIKey,
		"anthropic-version": anthropicVersion,
	}
	for k, v := range a.opts.ExtraHeaders {
		h[k] = v
	}
	return h
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type messagesRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Tools       []AnthropicTool `json:"tools,omitempty"`
	Messages    []wireMessage   `json:"messages"`
}

// wireMessage content is a plain string for the opening user message and a
// block list afterwards.
type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// toolUseBlock always carries "input", even when empty.
type toolUseBlock struct {
	Type  string         `json:"type"`
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

type toolResultBlock struct {
	Type      string `json:"type"`
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

type messagesResponse struct {
	Content    json.RawMessage `json:"content"`
	StopReason string          `json:"stop_reason"`
	Type       string          `json:"type"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ---------------------------------------------------------------------------
// Request
// ---------------------------------------------------------------------------

// BuildRequest renders the transcript. System text is folded into the first
// user message as "<system>\n\nUser: <message>"; assistant turns are echoed
// from their raw block lists; each round of tool outcomes becomes one user
// message of tool_result blocks.
func (a *ContentBlockAdapter) BuildRequest(transcript schema.Messages, tools []schema.ToolDefinition) (any, error) {
	req := messagesRequest{
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
		Tools:       AnthropicTools(tools),
	}

	var system []string
	openingDone := false
	for _, m := range transcript.Messages {
		switch m.Role {
		case schema.RoleSystem:
			if m.Content != "" {
				system = append(system, m.Content)
			}

		case schema.RoleUser:
			content := m.Content
			if !openingDone && len(system) > 0 {
				content = strings.Join(system, "\n\n") + "\n\nUser: " + m.Content
			}
			openingDone = true
			req.Messages = append(req.Messages, wireMessage{Role: "user", Content: content})

		case schema.RoleAssistant:
			blocks, err := assistantBlocks(m)
			if err != nil {
				return nil, err
			}
			req.Messages = append(req.Messages, wireMessage{Role: "assistant", Content: blocks})

		case schema.RoleTool:
			results := make([]toolResultBlock, 0, len(m.Results))
			for _, o := range m.Results {
				results = append(results, toolResultBlock{
					Type:      "tool_result",
					ToolUseID: o.CallID,
					Content:   o.Result.JSON(),
					IsError:   !o.Result.Success,
				})
			}
			req.Messages = append(req.Messages, wireMessage{Role: "user", Content: results})

		default:
			return nil, fmt.Errorf("content_blocks: unsupported role %q", m.Role)
		}
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("content_blocks: transcript has no user message")
	}
	return req, nil
}

// assistantBlocks returns the assistant's block list. The vendor's own blocks
// are echoed when available, with any null or list-typed tool input replaced
// by an empty object.
func assistantBlocks(m schema.Message) (json.RawMessage, error) {
	if len(m.Raw) > 0 {
		return normalizeToolInputs(m.Raw)
	}
	var blocks []any
	if m.Content != "" {
		blocks = append(blocks, contentBlock{Type: "text", Text: m.Content})
	}
	for _, tc := range m.ToolCalls {
		input := tc.Arguments
		if input == nil {
			input = map[string]any{}
		}
		blocks = append(blocks, toolUseBlock{Type: "tool_use", ID: tc.ID, Name: tc.Name, Input: input})
	}
	if len(blocks) == 0 {
		blocks = append(blocks, contentBlock{Type: "text", Text: ""})
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return nil, fmt.Errorf("content_blocks: encode assistant blocks: %w", err)
	}
	return data, nil
}

func normalizeToolInputs(raw json.RawMessage) (json.RawMessage, error) {
	var blocks []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("content_blocks: decode assistant blocks: %w", err)
	}
	changed := false
	for _, b := range blocks {
		var typ string
		_ = json.Unmarshal(b["type"], &typ)
		if typ != "tool_use" {
			continue
		}
		in := strings.TrimSpace(string(b["input"]))
		if in == "" || in == "null" || strings.HasPrefix(in, "[") {
			b["input"] = json.RawMessage("{}")
			changed = true
		}
	}
	if !changed {
		return raw, nil
	}
	return json.Marshal(blocks)
}

// ---------------------------------------------------------------------------
// Response
// ---------------------------------------------------------------------------

// ParseResponse decodes a Messages API response. stop_reason "tool_use" marks
// a reply that needs tools; the reply text is the first text block.
func (a *ContentBlockAdapter) ParseResponse(raw []byte) (schema.ProviderReply, error) {
	var body messagesResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.ProviderReply{}, fmt.Errorf("parse content_blocks response: %w", err)
	}
	if body.Type == "error" && body.Error != nil {
		return schema.ProviderReply{}, fmt.Errorf("content_blocks: %s: %s", body.Error.Type, body.Error.Message)
	}

	var blocks []contentBlock
	if len(body.Content) > 0 && string(body.Content) != "null" {
		if err := json.Unmarshal(body.Content, &blocks); err != nil {
			return schema.ProviderReply{}, fmt.Errorf("parse content_blocks content: %w", err)
		}
	}

	reply := schema.ProviderReply{
		StopReason: body.StopReason,
		NeedsTools: body.StopReason == stopReasonToolUse,
	}
	if len(blocks) > 0 {
		reply.Raw = body.Content
	}
	textFound := false
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if !textFound {
				reply.Text = b.Text
				textFound = true
			}
		case "tool_use":
			args := toolInput(b.Input)
			reply.ToolCalls = append(reply.ToolCalls, schema.ToolInvocation{ID: b.ID, Name: b.Name, Arguments: args})
		}
	}
	return reply, nil
}

// toolInput decodes a tool_use input. Anything other than a JSON object,
// such as null or [], becomes an empty argument set.
func toolInput(raw json.RawMessage) map[string]any {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}

// FinalText returns the reply text of a turn-ending response.
func (a *ContentBlockAdapter) FinalText(reply schema.ProviderReply) (string, error) {
	if strings.TrimSpace(reply.Text) == "" {
		return "", fmt.Errorf("%w (stop_reason=%s)", schema.ErrNoTextResponse, reply.StopReason)
	}
	return reply.Text, nil
}

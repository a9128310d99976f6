package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/internal/schema"
)

func newToolCallsAdapter() *ToolCallsAdapter {
	return NewToolCallsAdapter(Options{APIKey: "sk-test", Model: "gpt-4o", MaxTokens: 2048, Temperature: 0.7})
}

// ─── Request ─────────────────────────────────────────────────────────────────

func TestToolCalls_EndpointAndHeaders(t *testing.T) {
	a := newToolCallsAdapter()

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", a.Endpoint())
	assert.Equal(t, "Bearer sk-test", a.Headers()["Authorization"])

	local := NewToolCallsAdapter(Options{APIBase: "http://localhost:8000/v1"})
	assert.NotContains(t, local.Headers(), "Authorization")
}

func TestToolCalls_InitialRequest(t *testing.T) {
	a := newToolCallsAdapter()
	transcript := schema.NewMessages(
		schema.NewSystemMessage("You are a writing assistant."),
		schema.NewUserMessage("list my characters"),
	)

	payload, err := a.BuildRequest(transcript, sampleTools)
	require.NoError(t, err)
	body := encode(t, payload)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, "auto", body["tool_choice"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "You are a writing assistant."}, msgs[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "list my characters"}, msgs[1])

	tools := body["tools"].([]any)
	require.Len(t, tools, 2)
	tool := tools[1].(map[string]any)
	assert.Equal(t, "function", tool["type"])
	fn := tool["function"].(map[string]any)
	assert.Equal(t, "create_binder_item", fn["name"])
	params := fn["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []any{"title", "item_type"}, params["required"])
}

func TestToolCalls_FollowUpReplaysAssistantAndAnswersEachCall(t *testing.T) {
	a := newToolCallsAdapter()
	reply, err := a.ParseResponse([]byte(`{
		"id": "chatcmpl-1",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": null,
				"tool_calls": [
					{"id": "call_a", "type": "function", "function": {"name": "list_characters", "arguments": "{}"}},
					{"id": "call_b", "type": "function", "function": {"name": "read_character", "arguments": "{\"character_id\": 3}"}}
				]
			}
		}]
	}`))
	require.NoError(t, err)
	require.True(t, reply.WantsTools())

	transcript := schema.NewMessages(schema.NewUserMessage("who is Ann?"))
	transcript.AddAssistant(reply)
	transcript.AddToolResults([]schema.ToolOutcome{
		{CallID: "call_a", Name: "list_characters", Result: schema.Succeed(map[string]any{"count": 1}, "")},
		{CallID: "call_b", Name: "read_character", Result: schema.Failf("Character not found")},
	})

	payload, err := a.BuildRequest(transcript, sampleTools)
	require.NoError(t, err)
	body := encode(t, payload)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 4)

	assistant := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	calls := assistant["tool_calls"].([]any)
	require.Len(t, calls, 2)
	assert.Equal(t, "call_a", calls[0].(map[string]any)["id"])
	assert.Equal(t, `{"character_id": 3}`, calls[1].(map[string]any)["function"].(map[string]any)["arguments"])

	first := msgs[2].(map[string]any)
	assert.Equal(t, "tool", first["role"])
	assert.Equal(t, "call_a", first["tool_call_id"])
	assert.JSONEq(t, `{"success":true,"data":{"count":1}}`, first["content"].(string))

	second := msgs[3].(map[string]any)
	assert.Equal(t, "call_b", second["tool_call_id"])
	assert.JSONEq(t, `{"success":false,"error":"Character not found"}`, second["content"].(string))
}

// ─── Response ────────────────────────────────────────────────────────────────

func TestToolCalls_MalformedArgumentsBecomeEmptyObject(t *testing.T) {
	a := newToolCallsAdapter()

	reply, err := a.ParseResponse([]byte(`{"choices":[{"finish_reason":"tool_calls","message":{"role":"assistant","tool_calls":[
		{"id":"call_x","type":"function","function":{"name":"list_locations","arguments":"{not json"}},
		{"id":"call_y","type":"function","function":{"name":"list_characters","arguments":""}}
	]}}]}`))
	require.NoError(t, err)

	require.Len(t, reply.ToolCalls, 2)
	assert.Equal(t, map[string]any{}, reply.ToolCalls[0].Arguments)
	assert.Equal(t, map[string]any{}, reply.ToolCalls[1].Arguments)
	assert.Equal(t, "call_x", reply.ToolCalls[0].ID)
}

func TestToolCalls_TextContentShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain string",
			raw:  `{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"Created the chapter."}}]}`,
			want: "Created the chapter.",
		},
		{
			name: "list of text parts",
			raw:  `{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":[{"type":"text","text":"Created "},{"type":"text","text":"the chapter."}]}}]}`,
			want: "Created the chapter.",
		},
	}
	a := newToolCallsAdapter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply, err := a.ParseResponse([]byte(tc.raw))
			require.NoError(t, err)
			assert.False(t, reply.WantsTools())

			text, err := a.FinalText(reply)
			require.NoError(t, err)
			assert.Equal(t, tc.want, text)
		})
	}
}

func TestToolCalls_FinalTextFailures(t *testing.T) {
	a := newToolCallsAdapter()

	truncated, err := a.ParseResponse([]byte(`{"choices":[{"finish_reason":"length","message":{"role":"assistant","content":""}}]}`))
	require.NoError(t, err)
	_, err = a.FinalText(truncated)
	assert.True(t, errors.Is(err, schema.ErrTruncated))

	empty, err := a.ParseResponse([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":""}}]}`))
	require.NoError(t, err)
	_, err = a.FinalText(empty)
	assert.True(t, errors.Is(err, schema.ErrNoTextResponse))
	assert.Contains(t, err.Error(), "finish_reason=stop")
}

func TestToolCalls_EmptyChoices(t *testing.T) {
	_, err := newToolCallsAdapter().ParseResponse([]byte(`{"choices":[]}`))
	assert.True(t, errors.Is(err, schema.ErrEmptyChoices))
}

func TestToolCalls_ErrorEnvelope(t *testing.T) {
	_, err := newToolCallsAdapter().ParseResponse([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

package schema

import (
	"context"
	"encoding/json"
	"errors"
)

// Protocol-tier failures. Adapters wrap these with the vendor's stop or
// finish reason so callers can log the raw diagnostic.
var (
	ErrNoTextResponse  = errors.New("no text response from API")
	ErrTruncated       = errors.New("response was truncated")
	ErrEmptyChoices    = errors.New("empty choices in response")
	ErrRoundsExhausted = errors.New("tool round limit reached without a final answer")
)

// ProviderReply is the normalised view of one provider response.
type ProviderReply struct {
	Text       string           // reply text; empty when the response carries none
	ToolCalls  []ToolInvocation // requested tool calls in vendor order
	StopReason string           // vendor stop_reason / finish_reason, verbatim
	NeedsTools bool             // the vendor signalled that tools must run before it can answer
	Raw        json.RawMessage  // the vendor's assistant payload, echoed back verbatim
}

// WantsTools reports whether the loop has to execute tools and ask again.
func (r ProviderReply) WantsTools() bool {
	return r.NeedsTools && len(r.ToolCalls) > 0
}

// ProviderAdapter formats and parses one vendor's tool-calling protocol.
// It is selected once at configuration time and holds no per-turn state.
type ProviderAdapter interface {
	// Name identifies the adapter in logs and errors.
	Name() string
	// Endpoint is the absolute URL the payload is posted to.
	Endpoint() string
	// Headers returns the request headers, including credentials.
	Headers() map[string]string
	// BuildRequest renders the transcript and tool catalogue as the vendor payload.
	BuildRequest(transcript Messages, tools []ToolDefinition) (any, error)
	// ParseResponse decodes a raw vendor response.
	ParseResponse(raw []byte) (ProviderReply, error)
	// FinalText extracts the answer from a reply that ends the turn.
	FinalText(reply ProviderReply) (string, error)
}

// Transport posts a JSON payload and returns the raw JSON response.
// It fails on network errors and non-2xx statuses.
type Transport interface {
	Send(ctx context.Context, endpoint string, headers map[string]string, payload any) ([]byte, error)
}

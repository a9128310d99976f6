package schema

// Messages is the ordered, append-only transcript of one user turn.
// It owns typed append methods so callers never construct raw maps.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
// Called with no arguments it returns an empty Messages ready for use.
func NewMessages(msgs ...Message) Messages {
	if len(msgs) == 0 {
		return Messages{Messages: make([]Message, 0)}
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// AddSystem appends a system message.
func (mh *Messages) AddSystem(content string) {
	mh.Messages = append(mh.Messages, NewSystemMessage(content))
}

// AddUser appends a user message.
func (mh *Messages) AddUser(content string) {
	mh.Messages = append(mh.Messages, NewUserMessage(content))
}

// AddAssistant appends the model's reply as an assistant message.
func (mh *Messages) AddAssistant(reply ProviderReply) {
	mh.Messages = append(mh.Messages, NewAssistantMessage(reply))
}

// AddToolResults appends one round of tool outcomes.
func (mh *Messages) AddToolResults(outcomes []ToolOutcome) {
	mh.Messages = append(mh.Messages, NewToolResultsMessage(outcomes))
}

// Len returns the number of messages.
func (mh *Messages) Len() int { return len(mh.Messages) }

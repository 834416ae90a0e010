package llm

import "context"

// Role tags a conversation message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation sent to the completion provider.
type Message struct {
	Role    string
	Content string
}

// Completer turns a conversation into a single text completion. An error
// means the provider could not answer; callers decide the fallback.
type Completer interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

package docqa

import "context"

// Message is one turn of a completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a request to a text-completion model.
type CompletionRequest struct {
	Messages  []Message
	MaxTokens int
}

// Completer generates text with a language model.
type Completer interface {
	// Complete returns the model's reply to req.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

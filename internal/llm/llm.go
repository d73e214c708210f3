package llm

import (
	"context"
	"errors"
)

// Client abstracts chat-completion providers used for resume generation.
type Client interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Message is one chat message.
type Message struct {
	Role    string
	Content string
}

// Request is a provider-neutral completion request.
type Request struct {
	Messages []Message
	// JSONObject asks the provider for a JSON-object constrained response.
	JSONObject bool
}

// Usage reports the tokens billed for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Completion is the raw text returned by the provider plus its usage.
type Completion struct {
	Model   string
	Content string
	Usage   Usage
}

// ErrEmptyContent is returned when the provider answers without any text.
var ErrEmptyContent = errors.New("llm response empty content")

// StaticClient replays a fixed completion. It is useful for dry runs and tests.
type StaticClient struct {
	Completion Completion
	Err        error
}

// Complete returns the configured completion or error.
func (s StaticClient) Complete(ctx context.Context, req Request) (Completion, error) {
	_ = req
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	if s.Err != nil {
		return Completion{}, s.Err
	}
	return s.Completion, nil
}

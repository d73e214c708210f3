package notify

import "context"

// Client publishes batch-completion messages.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Nop discards messages. It is used when no queue is configured.
type Nop struct{}

func (Nop) Send(context.Context, Message) error { return nil }

var _ Client = Nop{}

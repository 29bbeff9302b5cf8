package queue

import "context"

// Message is one entry received from a queue. DequeueCount is the number of times the
// entry has been handed to a consumer, including the current delivery.
type Message struct {
	ID           string
	Body         []byte
	DequeueCount int64
}

// Sender appends messages to a queue.
type Sender interface {
	Send(ctx context.Context, body []byte) (string, error)
}

// Queue is an at-least-once queue: received messages stay invisible for a visibility
// timeout and are redelivered unless deleted.
type Queue interface {
	Sender
	// Receive returns up to max messages without blocking. An empty queue yields an empty slice.
	Receive(ctx context.Context, max int) ([]Message, error)
	// Delete acknowledges and removes a received message.
	Delete(ctx context.Context, msg Message) error
}

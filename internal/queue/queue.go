package queue

import "context"

const (
	// LogCreatedQueue carries change-capture events for newly upserted log
	// entries; the event notifier consumes it.
	LogCreatedQueue = "log.created"

	// LogCreatedDLQ receives messages rejected as malformed.
	LogCreatedDLQ = "dlq.log.created"
)

// Publisher publishes log-created messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg LogCreatedMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg LogCreatedMessage) error

// Consumer consumes log-created messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

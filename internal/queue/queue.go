package queue

import (
	"context"
	"time"
)

// Message is the opaque handle for one delivered queue message. The
// pipeline extracts the transport body once and otherwise only
// acknowledges (delete) or retries (leave for redelivery after a
// delay).
type Message interface {
	Body() []byte
	Ack() error
	Retry(delay time.Duration) error
}

// Consumer is a long-polling batch receiver. Fetch blocks up to wait
// and returns between zero and maxMessages messages. Implementations
// must be safe for concurrent use by multiple workers.
type Consumer interface {
	Fetch(ctx context.Context, maxMessages int, wait time.Duration) ([]Message, error)
	Close() error
}

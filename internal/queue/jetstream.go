package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"payadmin/internal/config"
	"payadmin/internal/logger"
)

const (
	minAckWait    = 30 * time.Second
	ackWaitMargin = 5 * time.Second
)

// ackWaitFor sizes the consumer's ack wait from the processing drain
// timeout, with a margin for the ack round trip, so a message is never
// redelivered while its attempt is still in flight.
func ackWaitFor(drainTimeout time.Duration) time.Duration {
	wait := drainTimeout + ackWaitMargin
	if wait < minAckWait {
		return minAckWait
	}
	return wait
}

// JetStreamConsumer is a durable pull consumer over a JetStream work
// queue. Redelivery of retried messages is spaced by the delay passed
// to Retry; the stream's own limits govern eventual dead-lettering.
type JetStreamConsumer struct {
	nc       *nats.Conn
	consumer jetstream.Consumer
	logger   logger.Logger
}

func NewJetStreamConsumer(ctx context.Context, cfg config.QueueConfig, drainTimeout time.Duration, log logger.Logger) (*JetStreamConsumer, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("event-subscriber"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.Stream, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          cfg.Consumer,
		Durable:       cfg.Consumer,
		FilterSubject: cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWaitFor(drainTimeout),
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create/update consumer %s: %w", cfg.Consumer, err)
	}

	log.Infow("Queue consumer ready",
		"url", cfg.URL,
		"stream", cfg.Stream,
		"subject", cfg.Subject,
		"consumer", cfg.Consumer,
	)

	return &JetStreamConsumer{
		nc:       nc,
		consumer: consumer,
		logger:   log,
	}, nil
}

func (c *JetStreamConsumer) Fetch(ctx context.Context, maxMessages int, wait time.Duration) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := c.consumer.Fetch(maxMessages, jetstream.FetchMaxWait(wait))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch batch: %w", err)
	}

	var messages []Message
	for msg := range batch.Messages() {
		messages = append(messages, &jsMessage{msg: msg})
	}

	if err := batch.Error(); err != nil {
		return messages, fmt.Errorf("batch receive error: %w", err)
	}

	return messages, nil
}

// Conn exposes the underlying connection for health checks.
func (c *JetStreamConsumer) Conn() *nats.Conn {
	return c.nc
}

func (c *JetStreamConsumer) Close() error {
	c.nc.Close()
	return nil
}

type jsMessage struct {
	msg jetstream.Msg
}

func (m *jsMessage) Body() []byte {
	return m.msg.Data()
}

func (m *jsMessage) Ack() error {
	return m.msg.Ack()
}

func (m *jsMessage) Retry(delay time.Duration) error {
	return m.msg.NakWithDelay(delay)
}

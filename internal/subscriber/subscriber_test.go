package subscriber

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payadmin/internal/config"
	"payadmin/internal/logger"
	"payadmin/internal/queue"
)

func testNotifyConfig() config.NotifyConfig {
	return config.NotifyConfig{
		EvidenceLeadDays: 7,
		DisplayTimezone:  "UTC",
		Templates: config.TemplatesConfig{
			DisputeCreated:           "template-created",
			DisputeLost:              "template-lost",
			DisputeWon:               "template-won",
			DisputeEvidenceSubmitted: "template-evidence",
		},
	}
}

type fakeMessage struct {
	mu         sync.Mutex
	body       []byte
	acked      bool
	retried    bool
	retryDelay time.Duration
}

func (m *fakeMessage) Body() []byte { return m.body }

func (m *fakeMessage) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = true
	return nil
}

func (m *fakeMessage) Retry(delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retried = true
	m.retryDelay = delay
	return nil
}

// fakeConsumer serves each queued batch once, then blocks fetches until
// the context is cancelled.
type fakeConsumer struct {
	mu      sync.Mutex
	batches [][]queue.Message
	err     error
	fetches int
}

func (c *fakeConsumer) Fetch(ctx context.Context, _ int, _ time.Duration) ([]queue.Message, error) {
	c.mu.Lock()
	c.fetches++
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	if len(c.batches) > 0 {
		batch := c.batches[0]
		c.batches = c.batches[1:]
		c.mu.Unlock()
		return batch, nil
	}
	c.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *fakeConsumer) Close() error { return nil }

func (c *fakeConsumer) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func subscriberConfig() config.SubscriberConfig {
	return config.SubscriberConfig{
		Workers:             1,
		BatchSize:           10,
		PollWaitSeconds:     1,
		RetryDelaySeconds:   900,
		DrainTimeoutSeconds: 5,
	}
}

func runSubscriber(t *testing.T, s *Subscriber, ctx context.Context) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	return done
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestSubscriberAcksProcessedMessages(t *testing.T) {
	msg := &fakeMessage{body: []byte(disputeCreatedBody)}
	consumer := &fakeConsumer{batches: [][]queue.Message{{msg}}}
	dispatcher := &fakeDispatcher{}
	processor := testProcessor(t, healthyEnricher(), dispatcher)

	s := New(consumer, processor, subscriberConfig(), logger.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := runSubscriber(t, s, ctx)

	waitFor(t, func() bool {
		msg.mu.Lock()
		defer msg.mu.Unlock()
		return msg.acked
	})
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	assert.False(t, msg.retried)
	assert.Len(t, dispatcher.batches, 1)
}

func TestSubscriberRetriesFailedMessages(t *testing.T) {
	msg := &fakeMessage{body: []byte(disputeCreatedBody)}
	consumer := &fakeConsumer{batches: [][]queue.Message{{msg}}}
	dispatcher := &fakeDispatcher{err: errors.New("send failed")}
	processor := testProcessor(t, healthyEnricher(), dispatcher)

	s := New(consumer, processor, subscriberConfig(), logger.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := runSubscriber(t, s, ctx)

	waitFor(t, func() bool {
		msg.mu.Lock()
		defer msg.mu.Unlock()
		return msg.retried
	})
	cancel()
	<-done

	assert.False(t, msg.acked)
	assert.Equal(t, 900*time.Second, msg.retryDelay)
}

func TestSubscriberKeepsPollingAfterFetchError(t *testing.T) {
	consumer := &fakeConsumer{err: errors.New("queue unreachable")}
	processor := testProcessor(t, healthyEnricher(), &fakeDispatcher{})

	s := New(consumer, processor, subscriberConfig(), logger.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := runSubscriber(t, s, ctx)

	waitFor(t, func() bool { return consumer.fetchCount() >= 2 })
	cancel()
	<-done
}

func TestSubscriberStopsOnCancel(t *testing.T) {
	consumer := &fakeConsumer{}
	processor := testProcessor(t, healthyEnricher(), &fakeDispatcher{})

	s := New(consumer, processor, subscriberConfig(), logger.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := runSubscriber(t, s, ctx)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after cancellation")
	}
}

func TestSubscriberDrainsAllMessagesInBatch(t *testing.T) {
	first := &fakeMessage{body: []byte(disputeCreatedBody)}
	second := &fakeMessage{body: []byte("not json")}
	consumer := &fakeConsumer{batches: [][]queue.Message{{first, second}}}
	processor := testProcessor(t, healthyEnricher(), &fakeDispatcher{})

	s := New(consumer, processor, subscriberConfig(), logger.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := runSubscriber(t, s, ctx)

	waitFor(t, func() bool {
		first.mu.Lock()
		firstAcked := first.acked
		first.mu.Unlock()
		second.mu.Lock()
		secondAcked := second.acked
		second.mu.Unlock()
		return firstAcked && secondAcked
	})
	cancel()
	<-done

	require.False(t, first.retried)
	require.False(t, second.retried)
}

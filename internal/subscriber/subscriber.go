package subscriber

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"payadmin/internal/config"
	"payadmin/internal/logger"
	"payadmin/internal/queue"
	"payadmin/pkg/metrics"
)

const fetchErrorBackoff = time.Second

// Subscriber runs a fixed pool of workers, each with its own
// long-poll → process → ack/retry loop. Workers share the queue
// consumer and the processor, both safe for concurrent use, and no
// other state.
type Subscriber struct {
	consumer     queue.Consumer
	processor    *Processor
	workers      int
	batchSize    int
	pollWait     time.Duration
	retryDelay   time.Duration
	drainTimeout time.Duration
	logger       logger.Logger
}

func New(consumer queue.Consumer, processor *Processor, cfg config.SubscriberConfig, log logger.Logger) *Subscriber {
	return &Subscriber{
		consumer:     consumer,
		processor:    processor,
		workers:      cfg.Workers,
		batchSize:    cfg.BatchSize,
		pollWait:     time.Duration(cfg.PollWaitSeconds) * time.Second,
		retryDelay:   time.Duration(cfg.RetryDelaySeconds) * time.Second,
		drainTimeout: time.Duration(cfg.DrainTimeoutSeconds) * time.Second,
		logger:       log,
	}
}

// Run blocks until ctx is cancelled. Cancellation stops new fetches
// immediately; messages already being processed drain within the
// configured timeout, after which they are left for redelivery.
func (s *Subscriber) Run(ctx context.Context) error {
	s.logger.InfowCtx(ctx, "Starting subscriber workers",
		"workers", s.workers,
		"batch_size", s.batchSize,
		"poll_wait", s.pollWait,
		"retry_delay", s.retryDelay,
	)

	g := new(errgroup.Group)
	for i := 0; i < s.workers; i++ {
		workerID := i
		g.Go(func() error {
			s.worker(ctx, workerID)
			return nil
		})
	}

	_ = g.Wait()
	s.logger.Infow("All subscriber workers stopped")
	return ctx.Err()
}

func (s *Subscriber) worker(ctx context.Context, workerID int) {
	for {
		if ctx.Err() != nil {
			return
		}

		messages, err := s.consumer.Fetch(ctx, s.batchSize, s.pollWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.QueueFetchErrorsTotal.Inc()
			s.logger.ErrorwCtx(ctx, "Failed to fetch batch from queue",
				"worker", workerID,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchErrorBackoff):
			}
			continue
		}

		for _, msg := range messages {
			s.handle(ctx, msg)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, msg queue.Message) {
	// Processing is detached from the shutdown signal so an in-flight
	// message can finish (ack or retry) during the drain window. The
	// same bound caps a stuck attempt during normal operation.
	procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainTimeout)
	defer cancel()

	outcome := s.processor.Process(procCtx, msg.Body())

	switch outcome {
	case OutcomeAck:
		if err := msg.Ack(); err != nil {
			s.logger.ErrorwCtx(procCtx, "Failed to ack message",
				"error", err,
			)
		}
	case OutcomeRetry:
		if err := msg.Retry(s.retryDelay); err != nil {
			// The queue redelivers after its ack wait anyway; the
			// configured delay is just lost for this attempt.
			s.logger.ErrorwCtx(procCtx, "Failed to schedule message retry",
				"error", err,
			)
		}
	}
}

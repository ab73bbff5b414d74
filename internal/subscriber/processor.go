package subscriber

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"payadmin/internal/enrich"
	"payadmin/internal/event"
	"payadmin/internal/logger"
	"payadmin/internal/notify"
	"payadmin/internal/store"
	"payadmin/pkg/logging"
	"payadmin/pkg/metrics"
)

// Outcome is the terminal decision for one processing attempt: delete
// the message, or leave it for redelivery.
type Outcome string

const (
	OutcomeAck   Outcome = "ack"
	OutcomeRetry Outcome = "retry"
)

type Enricher interface {
	Enrich(ctx context.Context, ev event.Event) (*enrich.EnrichedEvent, error)
}

type Composer interface {
	Compose(ctx context.Context, kind event.Kind, ev event.Event, enriched *enrich.EnrichedEvent) ([]notify.Notification, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, notifications []notify.Notification) error
}

// Processor drives one message through decode, classify, enrich,
// compose and dispatch, and maps every failure onto an ack-or-retry
// decision. It holds no mutable state and is shared by all workers.
type Processor struct {
	enricher   Enricher
	composer   Composer
	dispatcher Dispatcher
	logger     logger.Logger
}

func NewProcessor(enricher Enricher, composer Composer, dispatcher Dispatcher, log logger.Logger) *Processor {
	return &Processor{
		enricher:   enricher,
		composer:   composer,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Process handles one raw message body and never panics: a single
// message must not be able to take the consumer loop down.
func (p *Processor) Process(ctx context.Context, body []byte) (outcome Outcome) {
	ctx = logging.WithAttemptID(ctx, uuid.NewString())

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorwCtx(ctx, "Panic recovered during message processing",
				"panic", r,
			)
			outcome = p.finish(OutcomeRetry, "panic", start)
		}
	}()

	ev, err := event.Decode(body)
	if err != nil {
		// Redelivering unparseable bytes would loop forever.
		p.logger.WarnwCtx(ctx, "Dropping undecodable message",
			"error", err,
		)
		return p.finish(OutcomeAck, "decode_failed", start)
	}

	ctx = logging.WithEventType(ctx, ev.EventType)
	ctx = logging.WithResourceID(ctx, ev.ResourceExternalID)

	kind := event.Classify(ev.EventType)
	metrics.EventsReceivedTotal.WithLabelValues(string(kind)).Inc()

	if kind == event.KindUnknown {
		p.logger.InfowCtx(ctx, "Ignoring event of unknown type")
		return p.finish(OutcomeAck, "unknown_kind", start)
	}

	if !ev.Live {
		p.logger.InfowCtx(ctx, "Processing test-mode event")
	}

	enriched, err := p.enricher.Enrich(ctx, ev)
	if err != nil {
		if errors.Is(err, store.ErrServiceNotFound) || errors.Is(err, enrich.ErrNoGatewayAccount) {
			// Redelivery cannot manufacture a service that does not exist.
			p.logger.WarnwCtx(ctx, "Dropping event that resolves to no service",
				"error", err,
			)
			return p.finish(OutcomeAck, "resolution_miss", start)
		}
		p.logger.ErrorwCtx(ctx, "Enrichment failed, leaving message for redelivery",
			"error", err,
		)
		return p.finish(OutcomeRetry, "enrichment_failed", start)
	}

	notifications, err := p.composer.Compose(ctx, kind, ev, enriched)
	if err != nil {
		p.logger.ErrorwCtx(ctx, "Dropping event that cannot be composed",
			"error", err,
		)
		return p.finish(OutcomeAck, "compose_failed", start)
	}

	if len(notifications) == 0 {
		return p.finish(OutcomeAck, "no_recipients", start)
	}

	if err := p.dispatcher.Dispatch(ctx, notifications); err != nil {
		p.logger.ErrorwCtx(ctx, "Dispatch failed, leaving message for redelivery",
			"error", err,
		)
		return p.finish(OutcomeRetry, "dispatch_failed", start)
	}

	p.logger.InfowCtx(ctx, "Event processed",
		"recipients", len(notifications),
	)
	return p.finish(OutcomeAck, "processed", start)
}

func (p *Processor) finish(outcome Outcome, reason string, start time.Time) Outcome {
	metrics.EventsProcessedTotal.WithLabelValues(string(outcome), reason).Inc()
	metrics.ObserveProcessingDuration(time.Since(start), string(outcome))
	return outcome
}

package notify

import (
	"context"
	"errors"
	"fmt"

	"payadmin/internal/logger"
)

// Dispatcher fans a composed batch out to its recipients. Recipient
// sends are independent: one failure never prevents attempting the
// rest, but any failure fails the batch so the message is redelivered.
// Recipients who already got their email will get it again; that is
// the accepted cost of at-least-once delivery.
type Dispatcher struct {
	sender Sender
	logger logger.Logger
}

func NewDispatcher(sender Sender, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: log,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, notifications []Notification) error {
	var failures []error

	for _, notification := range notifications {
		if err := d.sender.Send(ctx, notification); err != nil {
			d.logger.ErrorwCtx(ctx, "Failed to send notification",
				"recipient", notification.RecipientEmail,
				"template_id", notification.TemplateID,
				"error", err,
			)
			failures = append(failures, err)
			continue
		}

		d.logger.InfowCtx(ctx, "Notification sent",
			"recipient", notification.RecipientEmail,
			"template_id", notification.TemplateID,
		)
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d notification sends failed: %w",
			len(failures), len(notifications), errors.Join(failures...))
	}

	return nil
}

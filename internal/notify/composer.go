package notify

import (
	"context"
	"fmt"
	"time"

	"payadmin/internal/config"
	"payadmin/internal/constants"
	"payadmin/internal/enrich"
	"payadmin/internal/event"
	"payadmin/internal/logger"
)

// Notification is one composed email: a template, a recipient and the
// placeholder values the template renders. Built, sent and discarded
// within a single message's processing.
type Notification struct {
	TemplateID      string
	RecipientEmail  string
	Personalisation map[string]string
}

type Composer struct {
	templates config.TemplatesConfig
	leadDays  int
	location  *time.Location
	logger    logger.Logger
}

func NewComposer(cfg config.NotifyConfig, log logger.Logger) (*Composer, error) {
	tz := cfg.DisplayTimezone
	if tz == "" {
		tz = constants.DefaultDisplayTimezone
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load display timezone %s: %w", tz, err)
	}

	return &Composer{
		templates: cfg.Templates,
		leadDays:  cfg.EvidenceLeadDays,
		location:  location,
		logger:    log,
	}, nil
}

// Compose builds one notification per administrator of the owning
// service. Zero administrators is a no-op success: there is nobody to
// tell, which is not a delivery failure.
func (c *Composer) Compose(ctx context.Context, kind event.Kind, ev event.Event, enriched *enrich.EnrichedEvent) ([]Notification, error) {
	templateID, err := c.templateFor(kind)
	if err != nil {
		return nil, err
	}

	if len(enriched.Admins) == 0 {
		c.logger.InfowCtx(ctx, "No admin users resolved for service, nothing to send",
			"service_external_id", enriched.Service.ExternalID,
		)
		return nil, nil
	}

	personalisation := c.personalisationFor(ctx, kind, ev, enriched)

	notifications := make([]Notification, 0, len(enriched.Admins))
	for _, admin := range enriched.Admins {
		notifications = append(notifications, Notification{
			TemplateID:      templateID,
			RecipientEmail:  admin.Email,
			Personalisation: personalisation,
		})
	}

	return notifications, nil
}

func (c *Composer) templateFor(kind event.Kind) (string, error) {
	switch kind {
	case event.KindDisputeCreated:
		return c.templates.DisputeCreated, nil
	case event.KindDisputeLost:
		return c.templates.DisputeLost, nil
	case event.KindDisputeWon:
		return c.templates.DisputeWon, nil
	case event.KindDisputeEvidenceSubmitted:
		return c.templates.DisputeEvidenceSubmitted, nil
	default:
		return "", fmt.Errorf("no template configured for event kind %s", kind)
	}
}

func (c *Composer) personalisationFor(ctx context.Context, kind event.Kind, ev event.Event, enriched *enrich.EnrichedEvent) map[string]string {
	personalisation := map[string]string{
		"serviceName":       enriched.Service.Name,
		"paymentExternalId": ev.ParentResourceExternalID,
	}
	if enriched.Transaction != nil {
		personalisation["serviceReference"] = enriched.Transaction.Reference
	}

	switch kind {
	case event.KindDisputeCreated:
		if amount, ok := ev.DetailInt("amount"); ok {
			personalisation["disputedAmount"] = FormatAmount(amount)
		}
		if reason, ok := ev.DetailString("reason"); ok {
			personalisation["disputeType"] = event.MapReason(reason)
		} else {
			personalisation["disputeType"] = event.MapReason("")
		}
		c.addEvidenceDueDates(ctx, ev, personalisation)
	case event.KindDisputeLost:
		if amount, ok := ev.DetailInt("amount"); ok {
			personalisation["disputedAmount"] = FormatAmount(amount)
		}
	}

	return personalisation
}

// addEvidenceDueDates renders the upstream evidence deadline and the
// earlier "send it to us by" deadline, which is the upstream value
// minus the configured lead time.
func (c *Composer) addEvidenceDueDates(ctx context.Context, ev event.Event, personalisation map[string]string) {
	raw, ok := ev.DetailString("evidence_due_date")
	if !ok {
		c.logger.WarnwCtx(ctx, "Dispute created event carries no evidence_due_date")
		return
	}

	dueDate, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Failed to parse evidence_due_date",
			"value", raw,
			"error", err,
		)
		return
	}

	personalisation["disputeEvidenceDueDate"] = c.formatDate(dueDate)
	personalisation["sendEvidenceToPayDueDate"] = c.formatDate(dueDate.AddDate(0, 0, -c.leadDays))
}

func (c *Composer) formatDate(t time.Time) string {
	return t.In(c.location).Format(constants.DateDisplayFormat)
}

// FormatAmount renders an amount in minor units as pounds and pence,
// e.g. 6500 -> "65.00".
func FormatAmount(minorUnits int64) string {
	sign := ""
	if minorUnits < 0 {
		sign = "-"
		minorUnits = -minorUnits
	}
	return fmt.Sprintf("%s%d.%02d", sign, minorUnits/100, minorUnits%100)
}

package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payadmin/internal/config"
	"payadmin/internal/enrich"
	"payadmin/internal/event"
	"payadmin/internal/ledger"
	"payadmin/internal/logger"
	"payadmin/internal/store"
)

func testComposer(t *testing.T) *Composer {
	t.Helper()

	composer, err := NewComposer(config.NotifyConfig{
		EvidenceLeadDays: 7,
		DisplayTimezone:  "UTC",
		Templates: config.TemplatesConfig{
			DisputeCreated:           "template-created",
			DisputeLost:              "template-lost",
			DisputeWon:               "template-won",
			DisputeEvidenceSubmitted: "template-evidence",
		},
	}, logger.NopLogger())
	require.NoError(t, err)
	return composer
}

func disputeEvent(t *testing.T, details map[string]interface{}) event.Event {
	t.Helper()

	raw, err := json.Marshal(details)
	require.NoError(t, err)

	return event.Event{
		ServiceID:                "upstream-service-1",
		ResourceExternalID:       "dispute-id-1",
		ParentResourceExternalID: "payment-id-1",
		EventType:                "DISPUTE_CREATED",
		EventDetails:             raw,
		Live:                     true,
	}
}

func enrichedWith(admins ...store.User) *enrich.EnrichedEvent {
	return &enrich.EnrichedEvent{
		Transaction: &ledger.Transaction{
			TransactionID: "payment-id-1",
			Reference:     "order-ref-42",
		},
		Service: store.Service{ExternalID: "service-ext-1", Name: "Parking Permits"},
		Admins:  admins,
	}
}

func TestComposeDisputeCreated(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{
		"gateway_account_id": "gateway-account-1",
		"amount":             6500,
		"reason":             "product_not_received",
		"evidence_due_date":  "2022-02-14T23:59:59.000Z",
	})

	notifications, err := composer.Compose(context.Background(), event.KindDisputeCreated, ev,
		enrichedWith(store.User{Email: "admin@example.com"}))
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	n := notifications[0]
	assert.Equal(t, "template-created", n.TemplateID)
	assert.Equal(t, "admin@example.com", n.RecipientEmail)
	assert.Equal(t, "Parking Permits", n.Personalisation["serviceName"])
	assert.Equal(t, "payment-id-1", n.Personalisation["paymentExternalId"])
	assert.Equal(t, "order-ref-42", n.Personalisation["serviceReference"])
	assert.Equal(t, "65.00", n.Personalisation["disputedAmount"])
	assert.Equal(t, "product not received", n.Personalisation["disputeType"])
	assert.Equal(t, "14 February 2022", n.Personalisation["disputeEvidenceDueDate"])
	assert.Equal(t, "7 February 2022", n.Personalisation["sendEvidenceToPayDueDate"])
}

func TestComposeOneNotificationPerAdmin(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{"amount": 1000})

	notifications, err := composer.Compose(context.Background(), event.KindDisputeLost, ev,
		enrichedWith(
			store.User{Email: "first@example.com"},
			store.User{Email: "second@example.com"},
		))
	require.NoError(t, err)
	require.Len(t, notifications, 2)

	assert.Equal(t, "first@example.com", notifications[0].RecipientEmail)
	assert.Equal(t, "second@example.com", notifications[1].RecipientEmail)
	for _, n := range notifications {
		assert.Equal(t, "template-lost", n.TemplateID)
		assert.Equal(t, "10.00", n.Personalisation["disputedAmount"])
	}
}

func TestComposeDisputeWonAndEvidenceSubmitted(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{})

	tests := []struct {
		kind         event.Kind
		wantTemplate string
	}{
		{kind: event.KindDisputeWon, wantTemplate: "template-won"},
		{kind: event.KindDisputeEvidenceSubmitted, wantTemplate: "template-evidence"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			notifications, err := composer.Compose(context.Background(), tt.kind, ev,
				enrichedWith(store.User{Email: "admin@example.com"}))
			require.NoError(t, err)
			require.Len(t, notifications, 1)
			assert.Equal(t, tt.wantTemplate, notifications[0].TemplateID)
			assert.NotContains(t, notifications[0].Personalisation, "disputedAmount")
		})
	}
}

func TestComposeZeroAdminsIsNoOp(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{})

	notifications, err := composer.Compose(context.Background(), event.KindDisputeCreated, ev, enrichedWith())
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestComposeUnknownKind(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{})

	_, err := composer.Compose(context.Background(), event.KindUnknown, ev,
		enrichedWith(store.User{Email: "admin@example.com"}))
	assert.Error(t, err)
}

func TestComposeMissingReasonMapsToUnknown(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{
		"amount":            6500,
		"evidence_due_date": "2022-02-14T23:59:59.000Z",
	})

	notifications, err := composer.Compose(context.Background(), event.KindDisputeCreated, ev,
		enrichedWith(store.User{Email: "admin@example.com"}))
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "unknown", notifications[0].Personalisation["disputeType"])
}

func TestComposeUnparseableDueDateOmitsDeadlines(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{
		"amount":            6500,
		"reason":            "duplicate",
		"evidence_due_date": "14/02/2022",
	})

	notifications, err := composer.Compose(context.Background(), event.KindDisputeCreated, ev,
		enrichedWith(store.User{Email: "admin@example.com"}))
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.NotContains(t, notifications[0].Personalisation, "disputeEvidenceDueDate")
	assert.NotContains(t, notifications[0].Personalisation, "sendEvidenceToPayDueDate")
}

func TestComposeWithoutTransactionOmitsReference(t *testing.T) {
	composer := testComposer(t)
	ev := disputeEvent(t, map[string]interface{}{})

	enriched := enrichedWith(store.User{Email: "admin@example.com"})
	enriched.Transaction = nil

	notifications, err := composer.Compose(context.Background(), event.KindDisputeWon, ev, enriched)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.NotContains(t, notifications[0].Personalisation, "serviceReference")
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minorUnits int64
		want       string
	}{
		{minorUnits: 6500, want: "65.00"},
		{minorUnits: 1000, want: "10.00"},
		{minorUnits: 1, want: "0.01"},
		{minorUnits: 99, want: "0.99"},
		{minorUnits: 123456, want: "1234.56"},
		{minorUnits: 0, want: "0.00"},
		{minorUnits: -50, want: "-0.50"},
		{minorUnits: -6500, want: "-65.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.minorUnits))
		})
	}
}

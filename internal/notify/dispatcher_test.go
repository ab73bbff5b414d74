package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payadmin/internal/logger"
)

type fakeSender struct {
	sent    []Notification
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, notification Notification) error {
	if err, ok := f.failFor[notification.RecipientEmail]; ok {
		return err
	}
	f.sent = append(f.sent, notification)
	return nil
}

func TestDispatchAllRecipients(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender, logger.NopLogger())

	err := dispatcher.Dispatch(context.Background(), []Notification{
		{RecipientEmail: "first@example.com", TemplateID: "t"},
		{RecipientEmail: "second@example.com", TemplateID: "t"},
	})
	require.NoError(t, err)
	assert.Len(t, sender.sent, 2)
}

func TestDispatchEmptyBatch(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender, logger.NopLogger())

	err := dispatcher.Dispatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	sendErr := errors.New("email api returned status: 503")
	sender := &fakeSender{failFor: map[string]error{"second@example.com": sendErr}}
	dispatcher := NewDispatcher(sender, logger.NopLogger())

	err := dispatcher.Dispatch(context.Background(), []Notification{
		{RecipientEmail: "first@example.com", TemplateID: "t"},
		{RecipientEmail: "second@example.com", TemplateID: "t"},
		{RecipientEmail: "third@example.com", TemplateID: "t"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
	assert.Contains(t, err.Error(), "1 of 3 notification sends failed")

	// The failure must not stop delivery to the remaining recipients.
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "first@example.com", sender.sent[0].RecipientEmail)
	assert.Equal(t, "third@example.com", sender.sent[1].RecipientEmail)
}

func TestDispatchAggregatesAllFailures(t *testing.T) {
	errOne := errors.New("boom one")
	errTwo := errors.New("boom two")
	sender := &fakeSender{failFor: map[string]error{
		"first@example.com":  errOne,
		"second@example.com": errTwo,
	}}
	dispatcher := NewDispatcher(sender, logger.NopLogger())

	err := dispatcher.Dispatch(context.Background(), []Notification{
		{RecipientEmail: "first@example.com"},
		{RecipientEmail: "second@example.com"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errOne)
	assert.ErrorIs(t, err, errTwo)
}

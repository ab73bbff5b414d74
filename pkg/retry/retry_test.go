package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(3), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	attempts := 0
	failure := errors.New("still broken")
	err := Do(context.Background(), fastPolicy(3), func() error {
		attempts++
		return failure
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 3, attempts)
}

func TestDoPermanentErrorStopsImmediately(t *testing.T) {
	attempts := 0
	rejected := errors.New("rejected")
	err := Do(context.Background(), fastPolicy(5), func() error {
		attempts++
		return NewPermanentError(rejected)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, 1, attempts)
}

func TestDoCancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, fastPolicy(10), func() error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.LessOrEqual(t, attempts, 2)
}

func TestIsPermanent(t *testing.T) {
	assert.False(t, IsPermanent(errors.New("plain")))
	assert.True(t, IsPermanent(NewPermanentError(errors.New("fatal"))))

	wrapped := NewPermanentError(errors.New("inner"))
	assert.True(t, IsPermanent(errors.Join(errors.New("outer"), wrapped)))
}

func TestNewPermanentErrorNil(t *testing.T) {
	assert.Nil(t, NewPermanentError(nil))
}

func TestPermanentErrorUnwraps(t *testing.T) {
	inner := errors.New("inner cause")
	err := NewPermanentError(inner)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "inner cause", err.Error())
}

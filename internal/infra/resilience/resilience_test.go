package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) resilience.Config {
	return resilience.Config{MaxRetries: retries, InitialBackoff: time.Millisecond}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesOnFailure(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(2), func() error {
		calls++
		return errors.New("persistent error")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "one attempt plus two retries")
}

func TestRetryWithBackoff_StopsOnPermanent(t *testing.T) {
	rejected := errors.New("row-level security")
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(5), func() error {
		calls++
		return resilience.Permanent(rejected)
	})

	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.RetryWithBackoff(ctx, resilience.Config{MaxRetries: 5, InitialBackoff: time.Second}, func() error {
		return errors.New("error")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, resilience.Permanent(nil))
}

func TestCircuitBreaker_IgnoresRejections(t *testing.T) {
	rejection := errors.New("not found")
	cb := resilience.NewCircuitBreaker("test", func(err error) bool {
		return err == nil || errors.Is(err, rejection)
	})

	for i := 0; i < 10; i++ {
		_, err := cb.Execute(func() (any, error) { return nil, rejection })
		assert.ErrorIs(t, err, rejection)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_TripsOnFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", nil)

	for i := 0; i < 5; i++ {
		cb.Execute(func() (any, error) { return nil, errors.New("502") })
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (any, error) { return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBulkhead_AcquireRelease(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	require.NoError(t, bh.Acquire(context.Background()))
	require.NoError(t, bh.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, bh.Acquire(ctx), "third acquire should block until the deadline")

	bh.Release()
	assert.NoError(t, bh.Acquire(context.Background()))
}

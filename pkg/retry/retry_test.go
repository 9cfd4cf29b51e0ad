package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConflict = errors.New("conflict")

func testPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
		Retryable:   func(err error) bool { return errors.Is(err, errConflict) },
	}
}

func TestPolicy_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := testPolicy().Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errConflict
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_ExhaustsAttempts(t *testing.T) {
	calls := 0
	var retried []int
	p := testPolicy()
	p.OnRetry = func(attempt int, err error, wait time.Duration) {
		retried = append(retried, attempt)
		assert.GreaterOrEqual(t, wait, p.MinBackoff)
		assert.LessOrEqual(t, wait, p.MaxBackoff)
	}

	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errConflict
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, errConflict)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestPolicy_DoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := testPolicy().Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := testPolicy()
	p.MinBackoff = time.Second
	p.MaxBackoff = time.Second
	p.OnRetry = func(int, error, time.Duration) { cancel() }

	err := p.Do(ctx, func(ctx context.Context) error { return errConflict })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicy_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

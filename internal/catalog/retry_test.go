package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryOnConflict_SucceedsAfterConflicts(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), 5, time.Microsecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("rate: %w", ErrConflict)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryOnConflict_GivesUp(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), 4, time.Microsecond, func(ctx context.Context) error {
		calls++
		return ErrConflict
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 4, calls)
}

func TestRetryOnConflict_DoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), 5, func(ctx context.Context) error {
		calls++
		return ErrBookNotFound
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflict_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryOnConflict(ctx, 10, time.Hour, func(ctx context.Context) error {
		calls++
		cancel()
		return ErrConflict
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflict_AtLeastOneAttempt(t *testing.T) {
	calls := 0
	_ = RetryOnConflict(context.Background(), 0, func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.Equal(t, 1, calls)
}

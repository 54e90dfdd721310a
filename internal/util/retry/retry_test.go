package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOpts() []Option {
	return []Option{
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2 * time.Millisecond),
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet replicated")
		}
		return nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	sentinel := errors.New("still failing")
	err := Do(context.Background(), func() error {
		calls++
		return sentinel
	}, fastOpts()...)

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestDo_FatalStopsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return Fatal(errors.New("bad input"))
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error { return errors.New("fail") },
		WithMaxAttempts(5), WithInitialDelay(time.Hour))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	assert.False(t, IsFatal(errors.New("plain")))
	assert.True(t, IsFatal(Fatal(errors.New("fatal"))))
	assert.True(t, IsFatal(Fatal(errors.New("wrapped"))))
	assert.NoError(t, Fatal(nil))

	wrapped := errors.Join(errors.New("outer"), Fatal(errors.New("inner")))
	assert.True(t, IsFatal(wrapped))
}

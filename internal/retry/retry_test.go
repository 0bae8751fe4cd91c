package retry

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		Attempts:       attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Jitter:         0,
	}
}

func TestDoValSucceedsAfterFailures(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastConfig(3), "connect", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", eris.New("not yet")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoValExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastConfig(3), "connect", func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("still down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnNonRetryable(t *testing.T) {
	cfg := fastConfig(5)
	cfg.Retryable = func(err error) bool { return false }

	calls := 0
	_, err := DoVal(context.Background(), cfg, "connect", func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("bad credentials")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := DoVal(ctx, fastConfig(10), "connect", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, eris.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoWrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), "migrate", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return eris.New("locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBackoffCapsAndGrows(t *testing.T) {
	cfg := Config{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
		Multiplier:     2.0,
	}.withDefaults()
	cfg.Jitter = 0

	assert.Equal(t, 100*time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 300*time.Millisecond, backoff(2, cfg))
	assert.Equal(t, 300*time.Millisecond, backoff(5, cfg))
}

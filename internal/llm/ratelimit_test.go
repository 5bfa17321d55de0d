package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("disabled limiter never blocks", func(t *testing.T) {
		for _, rpm := range []int{0, -5} {
			rl := newRateLimiter(rpm)
			assert.Nil(t, rl)
			require.NoError(t, rl.wait(context.Background()))
		}
	})

	t.Run("first call passes immediately", func(t *testing.T) {
		rl := newRateLimiter(1)
		start := time.Now()
		require.NoError(t, rl.wait(context.Background()))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("canceled wait returns context error", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := rl.wait(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})
}

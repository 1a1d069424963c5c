package api

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Run("BurstThenReject", func(t *testing.T) {
		rl := newRateLimiter(3)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.allow("10.0.0.1"), "call %d should fit the burst", i)
		}
		assert.False(t, rl.allow("10.0.0.1"))
	})

	t.Run("ClientsAreIndependent", func(t *testing.T) {
		rl := newRateLimiter(1)
		assert.True(t, rl.allow("10.0.0.1"))
		assert.False(t, rl.allow("10.0.0.1"))
		assert.True(t, rl.allow("10.0.0.2"))
	})

	t.Run("SweepDropsIdleEntries", func(t *testing.T) {
		rl := newRateLimiter(5)
		rl.allow("10.0.0.1")
		rl.allow("10.0.0.2")

		// Age one entry past the idle window and force the next sweep.
		rl.mu.Lock()
		rl.clients["10.0.0.1"].seen = time.Now().Add(-rl.idleAfter - time.Minute)
		rl.lastSweep = time.Now().Add(-2 * sweepInterval)
		rl.mu.Unlock()

		rl.allow("10.0.0.2")

		rl.mu.Lock()
		defer rl.mu.Unlock()
		assert.NotContains(t, rl.clients, "10.0.0.1")
		assert.Contains(t, rl.clients, "10.0.0.2")
	})

	t.Run("NoBackgroundGoroutine", func(t *testing.T) {
		before := runtime.NumGoroutine()
		for i := 0; i < 50; i++ {
			newRateLimiter(5)
		}
		assert.LessOrEqual(t, runtime.NumGoroutine(), before+1,
			"constructing limiters must not spawn goroutines")
	})
}

package webhook_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/logrelay/pkg/webhook"
)

func TestCircuitBreaker_StateTransitions(t *testing.T) {
	t.Parallel()

	t.Run("closed to open", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(2, 1, time.Minute)
		assert.Equal(t, webhook.CircuitClosed, cb.State())

		cb.RecordFailure()
		assert.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, webhook.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("success resets failure count", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(2, 1, time.Minute)
		cb.RecordFailure()
		cb.RecordSuccess()
		cb.RecordFailure()
		assert.Equal(t, webhook.CircuitClosed, cb.State())
	})

	t.Run("open to half-open after recovery", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(1, 1, 30*time.Millisecond)
		cb.RecordFailure()
		assert.False(t, cb.Allow())

		time.Sleep(40 * time.Millisecond)
		assert.Equal(t, webhook.CircuitHalfOpen, cb.State())
		assert.True(t, cb.Allow())
		assert.True(t, cb.Allow(), "half-open lets trials through")
	})

	t.Run("half-open to closed", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(1, 2, 30*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(40 * time.Millisecond)
		assert.True(t, cb.Allow())

		cb.RecordSuccess()
		assert.Equal(t, webhook.CircuitHalfOpen, cb.State())
		cb.RecordSuccess()
		assert.Equal(t, webhook.CircuitClosed, cb.State())
	})

	t.Run("half-open to open", func(t *testing.T) {
		t.Parallel()

		cb := webhook.NewCircuitBreaker(3, 1, 30*time.Millisecond)
		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordFailure()
		time.Sleep(40 * time.Millisecond)
		assert.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, webhook.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})
}

func TestCircuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker(1, 1, time.Hour)
	cb.RecordFailure()
	assert.False(t, cb.Allow())

	cb.Reset()
	assert.Equal(t, webhook.CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker(0, -1, 0)
	for range 4 {
		cb.RecordFailure()
	}
	assert.Equal(t, webhook.CircuitClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, webhook.CircuitOpen, cb.State())
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker(1000, 1, time.Minute)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				cb.Allow()
				if i%2 == 0 {
					cb.RecordFailure()
				} else {
					cb.RecordSuccess()
				}
				_ = cb.State()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, webhook.CircuitClosed, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "closed", webhook.CircuitClosed.String())
	assert.Equal(t, "open", webhook.CircuitOpen.String())
	assert.Equal(t, "half-open", webhook.CircuitHalfOpen.String())
	assert.Equal(t, "unknown", webhook.CircuitState(42).String())
}

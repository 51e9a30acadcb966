package ratelimiter_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/ratelimiter"
)

// replyError mimics a server error reply
type replyError string

func (e replyError) Error() string { return string(e) }
func (replyError) RedisError()     {}

// scriptHook answers commands locally. The first evalsha can be made to fail
// with NOSCRIPT to exercise the eval fallback.
type scriptHook struct {
	mu       sync.Mutex
	noScript bool
	reply    any
	err      error
	commands [][]any
}

func (h *scriptHook) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (h *scriptHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()

		h.commands = append(h.commands, cmd.Args())

		if cmd.Name() == "evalsha" && h.noScript {
			h.noScript = false
			err := replyError("NOSCRIPT No matching script")
			cmd.SetErr(err)
			return err
		}
		if h.err != nil {
			cmd.SetErr(h.err)
			return h.err
		}
		if c, ok := cmd.(*goredis.Cmd); ok {
			c.SetVal(h.reply)
		}
		return nil
	}
}

func (h *scriptHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func (h *scriptHook) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, len(h.commands))
	for i, args := range h.commands {
		names[i], _ = args[0].(string)
	}
	return names
}

func newRedisStore(t *testing.T, hook *scriptHook, now time.Time) *ratelimiter.RedisStore {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(hook)
	t.Cleanup(func() { _ = client.Close() })

	store, err := ratelimiter.NewRedisStore(client,
		ratelimiter.WithKeyPrefix("test:"),
		ratelimiter.WithRedisClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	return store
}

func TestNewRedisStore_NilClient(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.NewRedisStore(nil)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestRedisStore_ConsumeTokens(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1_750_000_000_000)
	reset := now.Add(time.Second)
	hook := &scriptHook{reply: []any{int64(7), reset.UnixMilli()}}
	store := newRedisStore(t, hook, now)

	cfg := ratelimiter.Config{Capacity: 10, RefillRate: 5, RefillInterval: time.Second}
	remaining, resetAt, err := store.ConsumeTokens(context.Background(), "10.0.0.1", 3, cfg)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
	assert.True(t, reset.Equal(resetAt))

	require.Len(t, hook.commands, 1)
	args := hook.commands[0]
	assert.Equal(t, "evalsha", args[0])
	// evalsha sha numkeys key capacity rate interval tokens now ttl
	assert.Equal(t, "test:10.0.0.1", args[3])
	assert.Equal(t, []any{10, 5, int64(1000), 3, now.UnixMilli(), int64(4000)}, args[4:])
}

func TestRedisStore_NoScriptFallback(t *testing.T) {
	t.Parallel()

	hook := &scriptHook{noScript: true, reply: []any{int64(-2), int64(0)}}
	store := newRedisStore(t, hook, time.Now())

	cfg := ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}
	remaining, _, err := store.ConsumeTokens(context.Background(), "k", 3, cfg)
	require.NoError(t, err)
	assert.Equal(t, -2, remaining)
	assert.Equal(t, []string{"evalsha", "eval"}, hook.names())
}

func TestRedisStore_Errors(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		down := errors.New("connection refused")
		store := newRedisStore(t, &scriptHook{err: down}, time.Now())

		_, _, err := store.ConsumeTokens(context.Background(), "k", 1, cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
		assert.ErrorIs(t, err, down)
	})

	t.Run("short reply", func(t *testing.T) {
		t.Parallel()

		store := newRedisStore(t, &scriptHook{reply: []any{int64(1)}}, time.Now())

		_, _, err := store.ConsumeTokens(context.Background(), "k", 1, cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrUnexpectedReply)
	})
}

func TestRedisStore_Reset(t *testing.T) {
	t.Parallel()

	hook := &scriptHook{}
	store := newRedisStore(t, hook, time.Now())

	require.NoError(t, store.Reset(context.Background(), "k"))
	require.Len(t, hook.commands, 1)
	assert.Equal(t, []any{"del", "test:k"}, hook.commands[0])
}

func TestRedisStore_WithBucket(t *testing.T) {
	t.Parallel()

	hook := &scriptHook{reply: []any{int64(-1), time.Now().Add(2 * time.Second).UnixMilli()}}
	b, err := ratelimiter.NewBucket(newRedisStore(t, hook, time.Now()),
		ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Second})
	require.NoError(t, err)

	res, err := b.AllowN(context.Background(), "k", 6)
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 5, res.Limit)
	assert.Positive(t, res.RetryAfter())
}

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/config"
	"github.com/dmitrymomot/logrelay/pkg/environment"
	"github.com/dmitrymomot/logrelay/pkg/file"
	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/logger"
	"github.com/dmitrymomot/logrelay/pkg/ratelimiter"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("RELAYD_SINK", "local")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("RELAY_BATCH_SIZE", "50")

	cfg, err := config.Parse[Config]("")
	require.NoError(t, err)

	assert.Equal(t, "relayd", cfg.Service)
	assert.Equal(t, environment.Production, cfg.Env)
	assert.Equal(t, sinkLocal, cfg.Sink)
	assert.Equal(t, int64(1<<20), cfg.MaxBodySize)
	assert.Equal(t, 10*time.Second, cfg.FlushTimeout)
	assert.Equal(t, 50, cfg.Relay.BatchSize, "nested relay config")
	assert.Equal(t, 2*time.Second, cfg.Relay.SubmissionInterval)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 1000, cfg.RateLimiter.Capacity)
	assert.Equal(t, []string{"X-Forwarded-For", "X-Real-IP"}, cfg.ClientIP.TrustedHeaders)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	var err error
	require.NotPanics(t, func() { err = run() })
	assert.ErrorIs(t, err, logger.ErrInvalidLevel)
}

func TestOpenSink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s, err := openSink(ctx, Config{Sink: sinkStdout, StdoutFormat: "text"}, discard())
	require.NoError(t, err)
	assert.IsType(t, &file.Writer{}, s.client)
	assert.Empty(t, s.ready)
	assert.NoError(t, s.close())

	dir := t.TempDir()
	s, err = openSink(ctx, Config{Sink: sinkLocal, ArchiveDir: dir}, discard())
	require.NoError(t, err)
	require.Len(t, s.ready, 1)
	assert.NoError(t, s.ready[0](ctx))
	require.NoError(t, s.client.Submit(ctx, []logevent.Event{{ID: "evt-1", Time: time.Now(), Level: "INFO", Message: "m"}}))

	_, err = openSink(ctx, Config{Sink: "kafka"}, discard())
	assert.ErrorIs(t, err, ErrUnknownSink)
}

func TestOpenLimiter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rl := ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Second}

	l, closeFn, err := openLimiter(ctx, Config{})
	require.NoError(t, err)
	assert.Nil(t, l, "disabled by default")
	closeFn()

	l, closeFn, err = openLimiter(ctx, Config{RateLimit: true, RateLimitStore: "memory", RateLimiter: rl})
	require.NoError(t, err)
	defer closeFn()
	res, err := l.AllowN(ctx, "192.0.2.1", 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	_, _, err = openLimiter(ctx, Config{RateLimit: true, RateLimitStore: "etcd", RateLimiter: rl})
	assert.ErrorIs(t, err, ErrUnknownRateLimitStore)

	_, _, err = openLimiter(ctx, Config{RateLimit: true, RateLimitStore: "memory"})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}


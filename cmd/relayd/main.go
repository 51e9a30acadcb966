// Command relayd accepts log events over HTTP and relays them in batches to
// one configured sink.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/logrelay/pkg/clientip"
	"github.com/dmitrymomot/logrelay/pkg/config"
	"github.com/dmitrymomot/logrelay/pkg/httpserver"
	"github.com/dmitrymomot/logrelay/pkg/logger"
	"github.com/dmitrymomot/logrelay/pkg/ratelimiter"
	"github.com/dmitrymomot/logrelay/pkg/redis"
	"github.com/dmitrymomot/logrelay/pkg/relay"
	"github.com/dmitrymomot/logrelay/pkg/requestid"
	"github.com/dmitrymomot/logrelay/pkg/slogrelay"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Log.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractors := []logger.ContextExtractor{
		requestid.LoggerExtractor(),
		clientip.LoggerExtractor(),
	}

	// base never feeds the relay, so the relay and the sinks can log through
	// it without looping.
	base := logger.NewFromConfig(cfg.Log, cfg.Env, cfg.Service, logger.WithContextExtractors(extractors...))
	logger.SetAsDefault(base)

	s, err := openSink(ctx, cfg, base)
	if err != nil {
		return fmt.Errorf("open sink %q: %w", cfg.Sink, err)
	}

	rl, err := relay.NewFromConfig(s.client, cfg.Relay,
		relay.WithLogger(base.With(logger.Component("relay"), logger.Sink(cfg.Sink))),
	)
	if err != nil {
		_ = s.close()
		return err
	}

	log := base
	if cfg.SelfLog {
		h, err := slogrelay.New(rl,
			slogrelay.WithService(cfg.Service),
			slogrelay.WithAttr(slog.String("env", string(cfg.Env))),
		)
		if err != nil {
			_ = s.close()
			return err
		}
		log = logger.NewFromConfig(cfg.Log, cfg.Env, cfg.Service,
			logger.WithContextExtractors(extractors...),
			logger.WithHandlers(h),
		)
	}

	limiter, closeLimiter, err := openLimiter(ctx, cfg)
	if err != nil {
		_ = s.close()
		return err
	}
	defer closeLimiter()

	a := newAPI(rl, cfg, log, limiter)
	handler := a.routes(cfg.Env, clientip.NewFromConfig(cfg.ClientIP), s.ready...)

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("relayd listening",
				slog.String("addr", cfg.HTTP.Addr),
				logger.Sink(cfg.Sink),
				slog.Bool("self_log", cfg.SelfLog),
				slog.Bool("rate_limit", limiter != nil),
				slog.Bool("signed_ingest", cfg.IngestSecret != ""))
		}),
	)

	// The relay outlives the server, so requests still being served can
	// submit; it is flushed and stopped once the server is down.
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopRelay()
		return srv.Run(gctx, handler)
	})
	g.Go(rl.Run(relayCtx, cfg.FlushTimeout))

	err = g.Wait()
	base.Info("relayd stopped",
		slog.Int64("accepted", a.stats.accepted.Load()),
		slog.Int64("delivered", a.stats.delivered.Load()),
		slog.Int64("failed", a.stats.failed.Load()))
	return err
}

// openLimiter builds the ingest rate limiter, nil when disabled.
func openLimiter(ctx context.Context, cfg Config) (ratelimiter.Limiter, func(), error) {
	if !cfg.RateLimit {
		return nil, func() {}, nil
	}

	var (
		store   ratelimiter.Store
		closeFn func()
	)
	switch cfg.RateLimitStore {
	case "memory", "":
		ms := ratelimiter.NewMemoryStore()
		store, closeFn = ms, func() { _ = ms.Close() }
	case "redis":
		var c redis.Config
		if err := config.Load(&c); err != nil {
			return nil, nil, err
		}
		client, err := redis.Connect(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		rs, err := ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix(cfg.Service+":ratelimit:"))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		store, closeFn = rs, func() { _ = client.Close() }
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownRateLimitStore, cfg.RateLimitStore)
	}

	b, err := ratelimiter.NewBucket(store, cfg.RateLimiter)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return b, closeFn, nil
}

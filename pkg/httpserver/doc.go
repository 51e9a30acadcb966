// Package httpserver runs an http.Server with graceful shutdown, configurable
// timeouts and health-check handlers.
//
// Run binds the listen address, serves until the context is cancelled and
// then shuts down within the configured shutdown timeout. Signal handling is
// the caller's job, typically through signal.NotifyContext. Addr reports the
// bound address, which makes ":0" usable in tests.
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//	r.Get("/readyz", httpserver.HealthCheckHandler(log, redis.Healthcheck(client)))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		return err
//	}
//
// Errors are wrapped with ErrStart and ErrShutdown.
package httpserver

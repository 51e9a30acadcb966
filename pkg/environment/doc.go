// Package environment names the deployment environment (development,
// staging, production) and carries it through context.Context.
//
// Parse accepts the short aliases dev, stage and prod, and Environment
// implements encoding.TextUnmarshaler so it can sit in an env tagged
// config struct:
//
//	type Config struct {
//		Env environment.Environment `env:"APP_ENV" envDefault:"development"`
//	}
//
// Middleware stores the value on every request context, and LoggerExtractor
// turns it into an "env" attribute for slog based loggers, including the
// relayed ones:
//
//	router.Use(environment.Middleware(cfg.Env))
//	h, _ := slogrelay.New(r, slogrelay.WithContextExtractors(environment.LoggerExtractor()))
package environment

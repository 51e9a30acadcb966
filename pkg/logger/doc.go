// Package logger builds the *slog.Logger used across the relay packages.
//
// New creates a logger configured by Option functions. These options allow you to:
//
//   - Select an output format (text or json) and minimum level
//   - Apply an environment preset with WithEnvironment
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled from
//     context.Context every time a record is handled
//   - Tee records into extra handlers with WithHandlers, for example a
//     slogrelay.Handler that ships them through the relay
//
// # Architecture
//
// New picks slog.NewTextHandler or slog.NewJSONHandler for the console output,
// combines it with any extra handlers through FanoutHandler and wraps the
// result with LogHandlerDecorator, which runs the registered extractors before
// delegating.
//
// Helper constructors in attr.go (Error, BatchSize, Outcome, Sink and others)
// keep attribute keys consistent between the relay, the sinks and relayd.
//
// # Usage
//
//	log := logger.NewFromConfig(cfg.Log, cfg.Env, "relayd",
//		logger.WithContextExtractors(environment.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.Info("batch stored", logger.Sink("redis"), logger.BatchSize(20))
//
// Error and Errors produce attributes only for non-nil errors, so
//
//	log.Info("operation finished", logger.Error(err))
//
// needs no nil check.
package logger

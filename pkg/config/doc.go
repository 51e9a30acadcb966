// Package config loads configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - Load parses any struct with `env` field tags and caches the result per type
//   - MustLoad panics on failure, for configuration required at startup
//   - Parse reads the same struct under a variable prefix, uncached
//   - LoadEnv reads extra .env files; the default .env is read automatically
//
// Every package with tunables ships its own Config struct (relay.Config,
// redis.Config, httpserver.Config, ...) so relayd can compose them:
//
//	var relayCfg relay.Config
//	config.MustLoad(&relayCfg)
//
//	archiveCfg, err := config.Parse[relay.Config]("ARCHIVE_")
//	// reads ARCHIVE_RELAY_BATCH_SIZE and friends
//
// Errors wrap ErrParsingConfig or ErrLoadingEnvFile and can be checked with
// errors.Is. ResetCache clears the cache between tests.
package config

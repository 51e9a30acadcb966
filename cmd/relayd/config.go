package main

import (
	"time"

	"github.com/dmitrymomot/logrelay/pkg/clientip"
	"github.com/dmitrymomot/logrelay/pkg/environment"
	"github.com/dmitrymomot/logrelay/pkg/httpserver"
	"github.com/dmitrymomot/logrelay/pkg/logger"
	"github.com/dmitrymomot/logrelay/pkg/ratelimiter"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// Sink names accepted by RELAYD_SINK.
const (
	sinkStdout     = "stdout"
	sinkLocal      = "local"
	sinkS3         = "s3"
	sinkRedis      = "redis"
	sinkMongo      = "mongo"
	sinkPostgres   = "pg"
	sinkOpenSearch = "opensearch"
	sinkWebhook    = "webhook"
)

// Config is the relayd configuration. Sink specific settings are loaded
// only for the selected sink, so their required variables stay optional.
type Config struct {
	Service         string                  `env:"RELAYD_SERVICE" envDefault:"relayd"`          // Service names relayd in its own logs.
	Env             environment.Environment `env:"APP_ENV" envDefault:"development"`            // Env selects the logger preset.
	Sink            string                  `env:"RELAYD_SINK" envDefault:"stdout"`             // Sink is one of stdout, local, s3, redis, mongo, pg, opensearch or webhook.
	StdoutFormat    string                  `env:"RELAYD_STDOUT_FORMAT" envDefault:"json"`      // StdoutFormat is json or text for the stdout sink.
	ArchiveDir      string                  `env:"RELAYD_ARCHIVE_DIR" envDefault:"./archive"`   // ArchiveDir is the base directory of the local sink.
	SelfLog         bool                    `env:"RELAYD_SELF_LOG" envDefault:"false"`          // SelfLog sends relayd's request logs through the relay too.
	IngestSecret    string                  `env:"RELAYD_INGEST_SECRET"`                        // IngestSecret requires HMAC signed ingest requests when set.
	SignatureMaxAge time.Duration           `env:"RELAYD_SIGNATURE_MAX_AGE" envDefault:"5m"`    // SignatureMaxAge rejects replayed signatures.
	MaxBodySize     int64                   `env:"RELAYD_MAX_BODY_SIZE" envDefault:"1048576"`   // MaxBodySize bounds an ingest request body in bytes.
	MaxEvents       int                     `env:"RELAYD_MAX_EVENTS" envDefault:"1000"`         // MaxEvents bounds the events of one ingest request.
	FlushTimeout    time.Duration           `env:"RELAYD_FLUSH_TIMEOUT" envDefault:"10s"`       // FlushTimeout bounds the flush on shutdown and POST /v1/flush. Zero does not wait.
	RateLimit       bool                    `env:"RELAYD_RATE_LIMIT" envDefault:"false"`        // RateLimit enables per client event quotas.
	RateLimitStore  string                  `env:"RELAYD_RATE_LIMIT_STORE" envDefault:"memory"` // RateLimitStore is memory or redis.

	Log         logger.Config
	HTTP        httpserver.Config
	Relay       relay.Config
	RateLimiter ratelimiter.Config
	ClientIP    clientip.Config
}

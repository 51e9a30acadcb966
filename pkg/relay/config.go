package relay

import "time"

// Config holds the relay tunables, loadable with pkg/config.
type Config struct {
	SubmissionInterval time.Duration `env:"RELAY_SUBMISSION_INTERVAL" envDefault:"2s"` // SubmissionInterval is the minimum gap between submission attempts.
	BatchSize          int           `env:"RELAY_BATCH_SIZE" envDefault:"20"`          // BatchSize is the maximum number of items per submission.
	MaxQueueSize       int           `env:"RELAY_MAX_QUEUE_SIZE" envDefault:"10000"`   // MaxQueueSize is the queue capacity, 0 means unbounded.
	MaxRetries         int           `env:"RELAY_MAX_RETRIES" envDefault:"0"`          // MaxRetries caps failed attempts per batch, 0 means retry forever.
	SubmitTimeout      time.Duration `env:"RELAY_SUBMIT_TIMEOUT" envDefault:"30s"`     // SubmitTimeout bounds a single submission call.
	Backoff            bool          `env:"RELAY_BACKOFF" envDefault:"false"`          // Backoff enables exponential backoff after failures.
}

// NewFromConfig creates a relay from cfg. Extra options are applied after
// the config values and take precedence.
func NewFromConfig[T any](client Client[T], cfg Config, opts ...Option) (*Relay[T], error) {
	configOpts := []Option{
		WithSubmissionInterval(cfg.SubmissionInterval),
		WithMaxQueueSize(cfg.MaxQueueSize),
		WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BatchSize > 0 {
		configOpts = append(configOpts, WithBatchSize(cfg.BatchSize))
	}
	if cfg.SubmitTimeout > 0 {
		configOpts = append(configOpts, WithSubmitTimeout(cfg.SubmitTimeout))
	}
	if cfg.Backoff {
		configOpts = append(configOpts, WithBackoff(DefaultBackoff(cfg.SubmissionInterval)))
	}

	return New(client, append(configOpts, opts...)...)
}

package relay

import (
	"log/slog"
	"time"
)

const (
	DefaultSubmissionInterval = 2 * time.Second
	DefaultBatchSize          = 20
	DefaultMaxQueueSize       = 10000
)

// Option is a functional option for configuring a relay
type Option func(*options)

type options struct {
	interval      time.Duration
	batchSize     int
	maxQueueSize  int
	maxRetries    int
	submitTimeout time.Duration
	backoff       BackoffStrategy
	logger        *slog.Logger
	onError       func(error)
}

func defaultOptions() *options {
	return &options{
		interval:     DefaultSubmissionInterval,
		batchSize:    DefaultBatchSize,
		maxQueueSize: DefaultMaxQueueSize,
		logger:       slog.Default(),
	}
}

// WithSubmissionInterval sets the minimum spacing between the starts of two
// submission attempts. Zero disables throttling.
func WithSubmissionInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.interval = d
		}
	}
}

// WithBatchSize sets the maximum number of items per submission call
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithMaxQueueSize sets the queue capacity. Zero or less means unbounded.
func WithMaxQueueSize(n int) Option {
	return func(o *options) {
		o.maxQueueSize = max(n, 0)
	}
}

// WithMaxRetries caps consecutive unclassified failures of the same batch.
// Once reached, the batch is dropped and its items receive ErrRetriesExhausted.
// Zero retries forever.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithSubmitTimeout bounds every call to the submission client
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.submitTimeout = d
		}
	}
}

// WithBackoff delays retries after unclassified failures.
// The effective gap is the larger of the backoff delay and the submission interval.
func WithBackoff(b BackoffStrategy) Option {
	return func(o *options) {
		o.backoff = b
	}
}

// WithLogger sets the logger for the relay
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithErrorHandler subscribes fn to unrecoverable submission failures.
// It receives the raw client error once per failed attempt and is never
// called for overflow or shutdown, which go through item callbacks.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

package webhook

import (
	"net/http"
	"time"
)

// DeliveryResult describes one POST of a batch.
type DeliveryResult struct {
	Success    bool
	StatusCode int
	BatchSize  int
	Duration   time.Duration
	Error      error
}

// DeliveryHook is called after each delivery attempt
type DeliveryHook func(result DeliveryResult)

type options struct {
	httpClient     *http.Client
	timeout        time.Duration
	headers        map[string]string
	userAgent      string
	secret         string
	circuitBreaker *CircuitBreaker
	onDelivery     DeliveryHook
}

func defaultOptions() *options {
	return &options{
		timeout:   10 * time.Second,
		headers:   make(map[string]string),
		userAgent: "logrelay-webhook/1.0",
	}
}

// Option configures a BatchSender.
type Option func(*options)

// WithHTTPClient sets a custom HTTP client.
// Useful for custom transports, proxies, or testing.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHeader adds a custom header to every request.
// Content-Type and the signature headers are set automatically.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if key != "" && value != "" {
			o.headers[key] = value
		}
	}
}

// WithHeaders adds multiple custom headers.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		for k, v := range headers {
			if k != "" && v != "" {
				o.headers[k] = v
			}
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithSignature enables HMAC-SHA256 signing of every batch, see Sign.
func WithSignature(secret string) Option {
	return func(o *options) {
		o.secret = secret
	}
}

// WithCircuitBreaker enables circuit breaker protection for the endpoint.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(o *options) {
		o.circuitBreaker = cb
	}
}

// WithOnDelivery sets a callback invoked after each request.
// Useful for logging or metrics.
func WithOnDelivery(hook DeliveryHook) Option {
	return func(o *options) {
		o.onDelivery = hook
	}
}

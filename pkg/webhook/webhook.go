package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// Payload is the JSON body of every request.
type Payload struct {
	Events []logevent.Event `json:"events"`
}

// BatchSender posts log event batches to an HTTP endpoint, one request per
// relay attempt. It never retries on its own; the relay keeps a failed batch
// queued and sends it again on its next cycle.
//
// Responses map to relay outcomes: 2xx delivers the batch, 409 Conflict means
// the endpoint already has it (relay.ErrDuplicateAccepted) and
// 412 Precondition Failed asks for a plain resend (relay.ErrStaleSequence).
type BatchSender struct {
	client *http.Client
	url    string
	opts   *options
}

// NewBatchSender creates a relay client posting to webhookURL.
func NewBatchSender(webhookURL string, opts ...Option) (*BatchSender, error) {
	if err := validateURL(webhookURL); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	client := o.httpClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2, // at most one batch is in flight per relay
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &BatchSender{client: client, url: webhookURL, opts: o}, nil
}

// NewBatchSenderFromConfig creates a BatchSender from cfg. Options are
// applied after the ones derived from cfg.
func NewBatchSenderFromConfig(cfg Config, opts ...Option) (*BatchSender, error) {
	base := []Option{
		WithTimeout(cfg.Timeout),
		WithHeaders(cfg.Headers),
	}
	if cfg.Secret != "" {
		base = append(base, WithSignature(cfg.Secret))
	}
	if cfg.CircuitBreaker {
		base = append(base, WithCircuitBreaker(
			NewCircuitBreaker(cfg.FailureThreshold, cfg.SuccessThreshold, cfg.RecoveryTimeout),
		))
	}
	return NewBatchSender(cfg.URL, append(base, opts...)...)
}

// Submit posts batch to the endpoint.
func (s *BatchSender) Submit(ctx context.Context, batch []logevent.Event) error {
	if len(batch) == 0 {
		return fmt.Errorf("%w: batch cannot be empty", ErrInvalidPayload)
	}

	body, err := json.Marshal(Payload{Events: batch})
	if err != nil {
		return errors.Join(relay.ErrRejected, fmt.Errorf("%w: %w", ErrInvalidPayload, err))
	}

	cb := s.opts.circuitBreaker
	if cb != nil && !cb.Allow() {
		return ErrCircuitOpen
	}

	result, err := s.deliver(ctx, body, batch[0].ID)
	result.BatchSize = len(batch)

	if s.opts.onDelivery != nil {
		s.opts.onDelivery(result)
	}

	if cb != nil {
		// The endpoint answered deliberately, so it is healthy.
		if err == nil || result.StatusCode == http.StatusConflict || result.StatusCode == http.StatusPreconditionFailed {
			cb.RecordSuccess()
		} else {
			cb.RecordFailure()
		}
	}

	return err
}

// Close releases idle connections.
func (s *BatchSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *BatchSender) deliver(ctx context.Context, body []byte, batchID string) (DeliveryResult, error) {
	start := time.Now()
	var result DeliveryResult

	reqCtx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		result.Error = err
		return result, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.opts.userAgent)
	for k, v := range s.opts.headers {
		req.Header.Set(k, v)
	}

	if s.opts.secret != "" {
		sig, err := Sign(s.opts.secret, body, batchID)
		if err != nil {
			result.Error = err
			return result, fmt.Errorf("failed to sign payload: %w", err)
		}
		sig.Apply(req.Header)
	}

	resp, err := s.client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return result, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300

	// 64KB limit prevents memory exhaustion
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	if !result.Success {
		result.Error = statusError(resp.StatusCode, respBody)
		return result, result.Error
	}
	return result, nil
}

// statusError maps a non-2xx response to an error the relay can classify.
func statusError(code int, body []byte) error {
	msg := fmt.Sprintf("webhook returned status %d", code)
	if len(body) > 0 {
		// Keep log lines single-line and short.
		s := strings.ReplaceAll(string(body), "\n", " ")
		if len(s) > 200 {
			s = s[:200] + "..."
		}
		msg += ": " + s
	}
	err := errors.New(msg)

	switch {
	case code == http.StatusConflict:
		return errors.Join(relay.ErrDuplicateAccepted, ErrEndpointConflict, err)
	case code == http.StatusPreconditionFailed:
		return errors.Join(relay.ErrStaleSequence, ErrEndpointBusy, err)
	case isEndpointStatus(code):
		return fmt.Errorf("%w: %w", ErrPermanentFailure, err)
	case isPermanentStatus(code):
		return errors.Join(relay.ErrRejected, fmt.Errorf("%w: %w", ErrPermanentFailure, err))
	default:
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
}

// isEndpointStatus reports 4xx codes caused by the sender's configuration
// (credentials, URL) rather than the batch. They are permanent for the
// request but the batch is kept until the configuration is fixed.
func isEndpointStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// isPermanentStatus reports 4xx codes that will not change on resend.
// 408, 425 and 429 are temporary.
func isPermanentStatus(code int) bool {
	if code < 400 || code >= 500 {
		return false
	}
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}

func validateURL(webhookURL string) error {
	if webhookURL == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	// Restrict to HTTP/HTTPS to prevent SSRF through other schemes
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}

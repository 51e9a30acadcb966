package webhook

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid webhook configuration")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrInvalidURL           = errors.New("invalid webhook URL")
	ErrInvalidSignature     = errors.New("invalid webhook signature")

	// Delivery errors. Only the relay decides whether a batch is retried.
	ErrDeliveryFailed   = errors.New("webhook delivery failed")
	ErrPermanentFailure = errors.New("permanent webhook failure")
	ErrTimeout          = errors.New("webhook request timeout")
	ErrCircuitOpen      = errors.New("webhook circuit breaker is open")
	ErrEndpointConflict = errors.New("webhook endpoint already received this batch")
	ErrEndpointBusy     = errors.New("webhook endpoint asked to resend the batch")
)

// IsCircuitOpen checks if an error indicates the circuit breaker is open
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// IsPermanent reports whether err is a 4xx rejection that will not succeed
// when the same batch is sent again.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentFailure)
}

package relay

import "errors"

// Error codes recognised by Classify. The values match the identifiers the
// AWS CloudWatch Logs API reports, so smithy API errors classify directly.
const (
	CodeDataAlreadyAccepted  = "DataAlreadyAcceptedException"
	CodeInvalidSequenceToken = "InvalidSequenceTokenException"
	CodeInvalidParameter     = "InvalidParameterException"
)

var (
	// ErrClientNil is returned when a nil submission client is provided
	ErrClientNil = errors.New("submission client cannot be nil")

	// ErrQueueOverflow is delivered to an item evicted from a full queue
	ErrQueueOverflow = errors.New("Queue overflow: log item dropped")

	// ErrTransportClosed is delivered to every item still queued when the relay stops
	ErrTransportClosed = errors.New("transport closed")

	// ErrRetriesExhausted is delivered to the items of a batch dropped after MaxRetries failures
	ErrRetriesExhausted = errors.New("submission retries exhausted")

	// ErrClientPanic wraps a panic raised by the submission client
	ErrClientPanic = errors.New("submission client panicked")

	// ErrDuplicateAccepted reports that the destination already holds the batch.
	// The batch is removed and its items are reported as delivered.
	ErrDuplicateAccepted = &CodeError{Code: CodeDataAlreadyAccepted, Message: "data already accepted"}

	// ErrStaleSequence reports that the batch was rejected for a stale
	// sequence token or similar transient ordering conflict. The batch stays
	// queued and is retried on the next cycle without alerting the error handler.
	ErrStaleSequence = &CodeError{Code: CodeInvalidSequenceToken, Message: "stale sequence token"}

	// ErrRejected reports that the destination refused the batch for good,
	// e.g. a malformed document. Resending cannot succeed, so the batch is
	// removed and each item receives the submission error.
	ErrRejected = &CodeError{Code: CodeInvalidParameter, Message: "batch rejected by destination"}
)

// CodeError is an error carrying a machine-readable identifier.
// Clients wrap their native errors with one of the package sentinels,
// e.g. fmt.Errorf("%w: %w", relay.ErrDuplicateAccepted, err).
type CodeError struct {
	Code    string
	Message string
}

func (e *CodeError) Error() string {
	return e.Message
}

// ErrorCode returns the identifier used by Classify.
func (e *CodeError) ErrorCode() string {
	return e.Code
}

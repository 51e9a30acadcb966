package relay

import "errors"

// Outcome is the relay's disposition of a submission attempt.
type Outcome int

const (
	// OutcomeDelivered removes the batch and reports success to each item.
	OutcomeDelivered Outcome = iota
	// OutcomeDuplicate removes the batch as already delivered.
	OutcomeDuplicate
	// OutcomeRetry keeps the batch for the next cycle without raising an error.
	OutcomeRetry
	// OutcomeFailed keeps the batch and raises the error to the error handler.
	OutcomeFailed
	// OutcomeRejected removes the batch, fails its items and raises the error once.
	OutcomeRejected
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRetry:
		return "retry"
	case OutcomeFailed:
		return "failed"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type coded interface {
	ErrorCode() string
}

// ErrorCode returns the first error identifier found in err's chain,
// or an empty string. Any error exposing ErrorCode() string is recognised,
// including smithy.APIError from the AWS SDK.
func ErrorCode(err error) string {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// Classify maps a submission result to the relay's disposition of the batch.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeDelivered
	}
	switch ErrorCode(err) {
	case CodeDataAlreadyAccepted:
		return OutcomeDuplicate
	case CodeInvalidSequenceToken:
		return OutcomeRetry
	case CodeInvalidParameter:
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

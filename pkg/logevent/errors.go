package logevent

import "errors"

var (
	ErrEmptyMessage = errors.New("log event message is empty")
	ErrMissingTime  = errors.New("log event time is missing")
	ErrEncodeFailed = errors.New("failed to encode log events")
)

package main

import "errors"

var (
	ErrUnknownSink           = errors.New("unknown sink")
	ErrUnknownRateLimitStore = errors.New("unknown rate limit store")
	ErrEmptyPayload          = errors.New("no events in request")
	ErrTooManyEvents         = errors.New("too many events in request")
	ErrInvalidPayload        = errors.New("invalid event payload")
	ErrInvalidEvent          = errors.New("invalid event")
)

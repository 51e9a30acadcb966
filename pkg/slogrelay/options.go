package slogrelay

import (
	"log/slog"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/logger"
)

// Option configures a Handler.
type Option func(*options)

type options struct {
	level      slog.Leveler
	service    string
	attrs      []slog.Attr
	extractors []logger.ContextExtractor
	onError    func(logevent.Event, error)
}

// WithLevel sets the minimum level forwarded to the relay. Defaults to info.
func WithLevel(l slog.Leveler) Option {
	return func(o *options) {
		if l != nil {
			o.level = l
		}
	}
}

// WithService stamps every event with the service name.
func WithService(name string) Option {
	return func(o *options) {
		o.service = name
	}
}

// WithAttr adds static attributes to every event.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// WithContextExtractors injects attributes taken from the record's context.
func WithContextExtractors(extractors ...logger.ContextExtractor) Option {
	return func(o *options) {
		for _, ex := range extractors {
			if ex != nil {
				o.extractors = append(o.extractors, ex)
			}
		}
	}
}

// WithOnError is called once for every event the relay could not deliver:
// evicted on overflow, dropped at shutdown or out of retries.
// It must not log through the same handler.
func WithOnError(fn func(logevent.Event, error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

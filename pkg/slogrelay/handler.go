package slogrelay

import (
	"context"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// Handler is a slog.Handler that forwards every record to a relay.
// Handle never blocks on the destination; delivery failures are reported
// through WithOnError.
type Handler struct {
	relay *relay.Relay[logevent.Event]
	opts  *options
	attrs map[string]any
	group string
}

// New creates a handler submitting to r.
func New(r *relay.Relay[logevent.Event], opts ...Option) (*Handler, error) {
	if r == nil {
		return nil, ErrRelayNil
	}

	o := &options{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(o)
	}

	h := &Handler{relay: r, opts: o}
	if len(o.attrs) > 0 {
		h.attrs = make(map[string]any, len(o.attrs))
		logevent.Flatten(h.attrs, "", o.attrs...)
	}

	return h, nil
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle converts rec into an event and queues it. It always returns nil.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	base := h.attrs
	if len(h.opts.extractors) > 0 {
		base = maps.Clone(h.attrs)
		if base == nil {
			base = make(map[string]any, len(h.opts.extractors))
		}
		for _, ex := range h.opts.extractors {
			if attr, ok := ex(ctx); ok {
				logevent.Flatten(base, "", attr)
			}
		}
	}

	event := logevent.FromRecord(rec, h.group, base)
	event.Service = h.opts.service

	onError := h.opts.onError
	h.relay.Submit(relay.Item[logevent.Event]{
		Payload: event,
		Done: func(err error) {
			if err != nil && onError != nil {
				onError(event, err)
			}
		},
	})

	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	next := h.clone()
	next.attrs = make(map[string]any, len(h.attrs)+len(attrs))
	maps.Copy(next.attrs, h.attrs)
	logevent.Flatten(next.attrs, h.group, attrs...)
	return next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := h.clone()
	next.group = h.group + name + "."
	return next
}

func (h *Handler) clone() *Handler {
	c := *h
	return &c
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/logrelay/pkg/clientip"
	"github.com/dmitrymomot/logrelay/pkg/environment"
	"github.com/dmitrymomot/logrelay/pkg/httpserver"
	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/logger"
	"github.com/dmitrymomot/logrelay/pkg/ratelimiter"
	"github.com/dmitrymomot/logrelay/pkg/relay"
	"github.com/dmitrymomot/logrelay/pkg/requestid"
	"github.com/dmitrymomot/logrelay/pkg/webhook"
)

// eventRelay is the part of *relay.Relay the handlers use.
type eventRelay interface {
	Submit(item relay.Item[logevent.Event])
	Flush(timeout time.Duration) <-chan struct{}
	Len() int
	Active() bool
}

type stats struct {
	accepted  atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

// api serves the ingest endpoints.
type api struct {
	relay        eventRelay
	log          *slog.Logger
	limiter      ratelimiter.Limiter // nil disables rate limiting
	secret       string
	maxAge       time.Duration
	maxBody      int64
	maxEvents    int
	flushTimeout time.Duration
	stats        stats
}

func newAPI(r eventRelay, cfg Config, log *slog.Logger, limiter ratelimiter.Limiter) *api {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 1 << 20
	}
	return &api{
		relay:        r,
		log:          log,
		limiter:      limiter,
		secret:       cfg.IngestSecret,
		maxAge:       cfg.SignatureMaxAge,
		maxBody:      cfg.MaxBodySize,
		maxEvents:    cfg.MaxEvents,
		flushTimeout: cfg.FlushTimeout,
	}
}

// routes builds the relayd router.
func (a *api) routes(env environment.Environment, resolver *clientip.Resolver, ready ...func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		resolver.Middleware,
		environment.Middleware(env),
	)

	r.Get("/healthz", httpserver.HealthCheckHandler(a.log))
	r.Get("/readyz", httpserver.HealthCheckHandler(a.log, ready...))

	r.Route("/v1", func(r chi.Router) {
		r.Use(a.accessLog)
		r.Post("/events", a.ingest)
		r.Get("/stats", a.statsHandler)
		if a.limiter != nil {
			r.With(ratelimiter.Middleware(a.limiter, ratelimiter.ByClientIP)).Post("/flush", a.flush)
		} else {
			r.Post("/flush", a.flush)
		}
	})

	return r
}

// ingest accepts a JSON array of events, a single event object, an
// {"events": [...]} envelope as sent by the webhook sink, or NDJSON.
func (a *api) ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if a.secret != "" {
		if err := a.verify(r.Header, body); err != nil {
			a.log.WarnContext(ctx, "rejected unsigned ingest request", logger.Error(err))
			writeError(w, http.StatusUnauthorized, err)
			return
		}
	}

	events, err := decodeEvents(body, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if a.maxEvents > 0 && len(events) > a.maxEvents {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: %d, limit is %d", ErrTooManyEvents, len(events), a.maxEvents))
		return
	}

	reqID := requestid.FromContext(ctx)
	for i := range events {
		e := events[i].Normalize()
		if err := e.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("%w %d: %w", ErrInvalidEvent, i, err))
			return
		}
		if reqID != "" {
			if _, ok := e.Attrs[requestid.AttrKey]; !ok {
				if e.Attrs == nil {
					e.Attrs = make(map[string]any, 1)
				}
				e.Attrs[requestid.AttrKey] = reqID
			}
		}
		events[i] = e
	}

	if !a.allow(w, r, len(events)) {
		return
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
		a.relay.Submit(relay.Item[logevent.Event]{Payload: e, Done: a.done})
	}
	a.stats.accepted.Add(int64(len(events)))

	writeJSON(w, http.StatusAccepted, map[string]any{
		"accepted": len(events),
		"ids":      ids,
	})
}

// done counts delivery outcomes. It must not log: with RELAYD_SELF_LOG a
// log line per dropped event would feed the queue it was dropped from.
func (a *api) done(err error) {
	if err != nil {
		a.stats.failed.Add(1)
		return
	}
	a.stats.delivered.Add(1)
}

func (a *api) verify(h http.Header, body []byte) error {
	sig, err := webhook.SignatureFromHeader(h)
	if err != nil {
		return err
	}
	return webhook.Verify(a.secret, body, sig, a.maxAge)
}

// allow charges n events to the client's bucket. A failing store lets the
// request through.
func (a *api) allow(w http.ResponseWriter, r *http.Request, n int) bool {
	if a.limiter == nil {
		return true
	}

	res, err := a.limiter.AllowN(r.Context(), ratelimiter.ByClientIP(r), n)
	if err != nil {
		a.log.ErrorContext(r.Context(), "rate limiter unavailable", logger.Error(err))
		return true
	}

	ratelimiter.SetHeaders(w, res)
	if !res.Allowed() {
		writeError(w, http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded, retry after %s", res.RetryAfter().Round(time.Second)))
		return false
	}
	return true
}

// flush waits until the queue drains or the timeout elapses. The timeout is
// taken from ?timeout= and capped at the configured flush timeout.
func (a *api) flush(w http.ResponseWriter, r *http.Request) {
	timeout := a.flushTimeout
	if v := r.URL.Query().Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid timeout %q", v))
			return
		}
		timeout = min(d, a.flushTimeout)
	}

	select {
	case <-a.relay.Flush(timeout):
	case <-r.Context().Done():
		return
	}

	if n := a.relay.Len(); n > 0 {
		writeJSON(w, http.StatusAccepted, map[string]any{"queued": n})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active":    a.relay.Active(),
		"queued":    a.relay.Len(),
		"accepted":  a.stats.accepted.Load(),
		"delivered": a.stats.delivered.Load(),
		"failed":    a.stats.failed.Load(),
	})
}

func (a *api) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.log.InfoContext(r.Context(), "request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			logger.Duration(time.Since(start)))
	})
}

func decodeEvents(body []byte, contentType string) ([]logevent.Event, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyPayload
	}

	if mt, _, _ := mime.ParseMediaType(contentType); mt == "application/x-ndjson" {
		events, err := logevent.DecodeNDJSON(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if len(events) == 0 {
			return nil, ErrEmptyPayload
		}
		return events, nil
	}

	var events []logevent.Event
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	case '{':
		var envelope struct {
			Events json.RawMessage `json:"events"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if envelope.Events != nil {
			var p webhook.Payload
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}
			events = p.Events
			break
		}
		var e logevent.Event
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		events = []logevent.Event{e}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrInvalidPayload)
	}

	if len(events) == 0 {
		return nil, ErrEmptyPayload
	}
	return events, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/logrelay/pkg/logger"
)

// Relay accumulates items in a bounded queue and hands them to a Client in
// batches, at most one submission in flight and at most one attempt per
// submission interval. Every submitted item gets exactly one Done call.
//
// A relay is either inactive or active. Submit activates it implicitly;
// Stop returns it to inactive and it can be started again at any time.
type Relay[T any] struct {
	client Client[T]
	opts   *options

	mu     sync.Mutex
	active *session[T]
}

// session is everything owned by one active period of a relay.
// A continuation holding a session that is no longer r.active is stale and
// must not touch the queue, callbacks or the error handler.
type session[T any] struct {
	queue   *Queue[Item[T]]
	limiter *rate.Limiter
	wake    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	// inflight is the number of items of the submitted batch still at the
	// head of the queue. Overflow eviction during a submission shrinks it.
	inflight int
	failures int

	waiters    []chan struct{}
	flushTimer *time.Timer
}

// New creates an inactive relay delivering to client.
func New[T any](client Client[T], opts ...Option) (*Relay[T], error) {
	if client == nil {
		return nil, ErrClientNil
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Relay[T]{
		client: client,
		opts:   options,
	}, nil
}

// Start activates the relay with a fresh queue and scheduler.
// Calling Start on an active relay is a no-op.
func (r *Relay[T]) Start() {
	r.mu.Lock()
	started := r.startLocked()
	r.mu.Unlock()

	if started {
		r.logStarted()
	}
}

func (r *Relay[T]) startLocked() bool {
	if r.active != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session[T]{
		queue:   NewQueue[Item[T]](r.opts.maxQueueSize),
		limiter: rate.NewLimiter(rate.Every(r.opts.interval), 1),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	r.active = s

	go r.run(s)

	return true
}

func (r *Relay[T]) logStarted() {
	r.opts.logger.Info("relay started",
		slog.Duration("submission_interval", r.opts.interval),
		slog.Int("batch_size", r.opts.batchSize),
		slog.Int("max_queue_size", r.opts.maxQueueSize))
}

// Stop deactivates the relay. Pending flushes are released, queued items
// receive ErrTransportClosed and the client is closed if it implements
// io.Closer. A submission already in flight is left to finish; its result
// is discarded. A result applied before Stop took the lock may still be
// reported to the error handler and item callbacks after Stop returns.
// Stop on an inactive relay is a no-op.
func (r *Relay[T]) Stop() {
	r.mu.Lock()
	s := r.active
	if s == nil {
		r.mu.Unlock()
		return
	}

	s.releaseWaiters()
	items := s.queue.Drain()
	r.active = nil
	s.cancel()
	r.mu.Unlock()

	if c, ok := r.client.(io.Closer); ok {
		if err := c.Close(); err != nil {
			r.opts.logger.Error("failed to close submission client",
				logger.Error(err))
		}
	}

	r.opts.logger.Info("relay stopped",
		slog.Int("dropped_items", len(items)))

	for _, it := range items {
		it.done(ErrTransportClosed)
	}
}

// Submit queues item, activating the relay if needed. When the queue is
// full the oldest item is evicted and immediately receives ErrQueueOverflow.
func (r *Relay[T]) Submit(item Item[T]) {
	r.mu.Lock()
	started := r.startLocked()
	s := r.active
	evicted, overflow := s.queue.Push(item)
	if overflow && s.inflight > 0 {
		s.inflight--
	}
	r.mu.Unlock()

	s.schedule()

	if started {
		r.logStarted()
	}

	if overflow {
		r.opts.logger.Warn("relay queue overflow, oldest item dropped",
			slog.Int("max_queue_size", r.opts.maxQueueSize))
		evicted.done(ErrQueueOverflow)
	}
}

// Flush returns a channel that is closed once the queue is empty or timeout
// elapses, whichever comes first. Concurrent flushes share the timer of the
// first one and are released together. A timeout of zero or less elapses at
// once: the drain worker is woken and the channel is already closed.
func (r *Relay[T]) Flush(timeout time.Duration) <-chan struct{} {
	done := make(chan struct{})

	r.mu.Lock()
	s := r.active
	if s == nil || s.queue.Len() == 0 {
		r.mu.Unlock()
		close(done)
		return done
	}
	if timeout <= 0 {
		r.mu.Unlock()
		s.schedule()
		close(done)
		return done
	}

	s.waiters = append(s.waiters, done)
	if s.flushTimer == nil {
		var t *time.Timer
		t = time.AfterFunc(timeout, func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if s.flushTimer == t {
				s.releaseWaiters()
			}
		})
		s.flushTimer = t
	}
	r.mu.Unlock()

	s.schedule()

	return done
}

// Len returns the number of queued items, zero when inactive.
func (r *Relay[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return 0
	}
	return r.active.queue.Len()
}

// Active reports whether the relay currently owns a queue.
func (r *Relay[T]) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active != nil
}

// Run starts the relay and returns a function suitable for errgroup.
// The relay is flushed for at most flushTimeout and stopped when ctx is done.
func (r *Relay[T]) Run(ctx context.Context, flushTimeout time.Duration) func() error {
	return func() error {
		r.Start()

		<-ctx.Done()

		<-r.Flush(flushTimeout)
		r.Stop()

		return nil
	}
}

// schedule wakes the drain worker without blocking.
func (s *session[T]) schedule() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// releaseWaiters completes the current flush cycle. Callers hold r.mu.
func (s *session[T]) releaseWaiters() {
	if s.flushTimer != nil {
		s.flushTimer.Stop()
		s.flushTimer = nil
	}
	for _, ch := range s.waiters {
		close(ch)
	}
	s.waiters = nil
}

// run is the drain worker of one session. It sleeps until woken and then
// drains the queue attempt by attempt until it is empty or the session ends.
func (r *Relay[T]) run(s *session[T]) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}

		for r.drain(s) {
		}
	}
}

// drain performs one submission attempt and reports whether items remain.
func (r *Relay[T]) drain(s *session[T]) bool {
	if !r.pending(s) {
		return false
	}
	if err := s.limiter.Wait(s.ctx); err != nil {
		return false
	}

	r.mu.Lock()
	if r.active != s {
		r.mu.Unlock()
		return false
	}
	if s.queue.Len() == 0 {
		s.releaseWaiters()
		r.mu.Unlock()
		return false
	}
	batch := s.queue.Head(r.opts.batchSize)
	s.inflight = len(batch)
	r.mu.Unlock()

	payloads := make([]T, len(batch))
	for i, it := range batch {
		payloads[i] = it.Payload
	}

	start := time.Now()
	err := r.submit(s, payloads)
	outcome := Classify(err)

	r.mu.Lock()
	if r.active != s {
		r.mu.Unlock()
		r.opts.logger.Debug("discarding submission result of stopped relay",
			logger.Outcome(outcome.String()))
		return false
	}

	survivors := batch[len(batch)-s.inflight:]
	s.inflight = 0

	var (
		finished []Item[T]
		finalErr error
		failures int
	)
	switch outcome {
	case OutcomeDelivered, OutcomeDuplicate:
		s.queue.Remove(len(survivors))
		s.failures = 0
		finished = survivors
	case OutcomeRetry:
	case OutcomeFailed:
		s.failures++
		failures = s.failures
		if r.opts.maxRetries > 0 && s.failures >= r.opts.maxRetries {
			s.queue.Remove(len(survivors))
			s.failures = 0
			finished = survivors
			finalErr = fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
		}
	case OutcomeRejected:
		s.queue.Remove(len(survivors))
		s.failures = 0
		finished = survivors
		finalErr = err
	}

	more := s.queue.Len() > 0
	if !more {
		s.releaseWaiters()
	}
	r.mu.Unlock()

	r.report(outcome, err, len(batch), failures, time.Since(start))

	for _, it := range finished {
		it.done(finalErr)
	}

	if more && outcome == OutcomeFailed && finalErr == nil && r.opts.backoff != nil {
		if delay := r.opts.backoff.NextInterval(failures); delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-s.ctx.Done():
				return false
			case <-t.C:
			}
		}
	}

	return more
}

// pending reports whether s is current and has queued items. An empty queue
// completes the flush cycle without consuming a rate limiter token.
func (r *Relay[T]) pending(s *session[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != s {
		return false
	}
	if s.queue.Len() == 0 {
		s.releaseWaiters()
		return false
	}
	return true
}

// submit calls the client with a context that outlives Stop, so an attempt
// already started is never cancelled by shutdown.
func (r *Relay[T]) submit(s *session[T], batch []T) (err error) {
	ctx := context.WithoutCancel(s.ctx)
	if r.opts.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.submitTimeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrClientPanic, p)
		}
	}()

	return r.client.Submit(ctx, batch)
}

func (r *Relay[T]) report(outcome Outcome, err error, size, failures int, duration time.Duration) {
	log := r.opts.logger
	switch outcome {
	case OutcomeDelivered:
		log.Debug("batch submitted",
			logger.BatchSize(size),
			logger.Duration(duration))
	case OutcomeDuplicate:
		log.Info("batch already accepted by destination",
			logger.BatchSize(size),
			logger.Error(err))
	case OutcomeRetry:
		log.Warn("batch rejected with stale sequence, retrying",
			logger.BatchSize(size),
			logger.Error(err))
	case OutcomeFailed:
		log.Error("batch submission failed",
			logger.BatchSize(size),
			logger.Attempt(failures),
			slog.Int("max_retries", r.opts.maxRetries),
			logger.Duration(duration),
			logger.Error(err))
		if r.opts.onError != nil {
			r.opts.onError(err)
		}
	case OutcomeRejected:
		log.Error("batch rejected by destination, dropping it",
			logger.BatchSize(size),
			logger.Duration(duration),
			logger.Error(err))
		if r.opts.onError != nil {
			r.opts.onError(err)
		}
	}
}

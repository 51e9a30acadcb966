// Package relay batches items produced at arbitrary rates and hands them to a
// slow or rate-limited destination, one submission at a time.
//
// The package is built from three pieces:
//
//   - Queue: a bounded FIFO that evicts its oldest item when full
//   - Relay: owns the queue, a rate limiter and a single drain worker
//   - Client: the destination, supplied by the caller
//
// Every submitted Item receives exactly one Done call: nil once its batch is
// accepted, ErrQueueOverflow when it is evicted to make room, ErrTransportClosed
// when the relay stops before delivering it, the client error when the
// destination rejects the batch for good, or ErrRetriesExhausted when a retry
// cap is configured and reached.
//
// # Throttling
//
// Two submission attempts never start closer together than the submission
// interval, and at most one attempt is in flight. Items keep arriving while an
// attempt runs; they are picked up by the next one.
//
// # Failures
//
// Client errors are classified by the code exposed through an
// ErrorCode() string method anywhere in the error chain, the same shape as
// smithy-go's APIError:
//
//   - DataAlreadyAcceptedException: the batch was already stored, its items succeed
//   - InvalidSequenceTokenException: the batch is retried on the next cycle silently
//   - InvalidParameterException: the batch can never be accepted; it is dropped,
//     its items receive the error and the error handler is called once
//   - anything else: the error handler is called and the batch is retried
//
// Clients that do not speak these codes can return ErrDuplicateAccepted,
// ErrStaleSequence and ErrRejected directly.
//
// # Usage
//
//	client := relay.ClientFunc[string](func(ctx context.Context, batch []string) error {
//		return sink.Write(ctx, batch)
//	})
//
//	r, err := relay.New(client,
//		relay.WithSubmissionInterval(time.Second),
//		relay.WithBatchSize(50),
//		relay.WithErrorHandler(func(err error) {
//			alerts.Notify(err)
//		}),
//	)
//	if err != nil {
//		return err
//	}
//
//	r.Submit(relay.Item[string]{Payload: "hello", Done: func(err error) {
//		if err != nil {
//			log.Println("not delivered:", err)
//		}
//	}})
//
//	// Wait up to five seconds for the queue to drain, then shut down.
//	<-r.Flush(5 * time.Second)
//	r.Stop()
//
// With errgroup, Run wraps the same lifecycle:
//
//	g.Go(r.Run(ctx, 5*time.Second))
package relay

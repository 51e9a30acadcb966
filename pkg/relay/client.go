package relay

import "context"

// Client delivers a batch to its destination.
// The batch must be handled atomically: Submit returns nil only when every
// element was accepted. Failure kinds are signalled through error codes,
// see Classify.
//
// A Client that also implements io.Closer is closed every time an active
// relay stops.
type Client[T any] interface {
	Submit(ctx context.Context, batch []T) error
}

// ClientFunc adapts an ordinary function to the Client interface.
type ClientFunc[T any] func(ctx context.Context, batch []T) error

// Submit calls f(ctx, batch).
func (f ClientFunc[T]) Submit(ctx context.Context, batch []T) error {
	return f(ctx, batch)
}

// Item is a unit of work with a single-use completion callback.
// Done receives nil on delivery or the failure that ended the item's life:
// ErrQueueOverflow, ErrTransportClosed or ErrRetriesExhausted.
// A nil Done is allowed.
type Item[T any] struct {
	Payload T
	Done    func(error)
}

func (it Item[T]) done(err error) {
	if it.Done != nil {
		it.Done(err)
	}
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// StreamClient appends log event batches to a Redis stream. A batch is sent
// as one MULTI/EXEC transaction so it lands entirely or not at all.
type StreamClient struct {
	client redis.UniversalClient
	stream string
	maxLen int64
	owned  bool
}

// StreamOption configures a StreamClient.
type StreamOption func(*StreamClient)

// WithMaxLen trims the stream to approximately n entries on every append.
func WithMaxLen(n int64) StreamOption {
	return func(c *StreamClient) {
		if n >= 0 {
			c.maxLen = n
		}
	}
}

// WithOwnedClient makes Close close the underlying client. Use it when the
// relay is the only user of the connection.
func WithOwnedClient() StreamOption {
	return func(c *StreamClient) {
		c.owned = true
	}
}

// NewStreamClient creates a relay client writing to stream.
func NewStreamClient(client redis.UniversalClient, stream string, opts ...StreamOption) (*StreamClient, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if stream == "" {
		return nil, ErrEmptyStream
	}

	c := &StreamClient{client: client, stream: stream}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewStreamClientFromConfig creates a StreamClient using the stream settings in cfg.
func NewStreamClientFromConfig(client redis.UniversalClient, cfg Config, opts ...StreamOption) (*StreamClient, error) {
	return NewStreamClient(client, cfg.Stream, append([]StreamOption{WithMaxLen(cfg.StreamMaxLen)}, opts...)...)
}

// Submit appends every event of batch to the stream.
func (c *StreamClient) Submit(ctx context.Context, batch []logevent.Event) error {
	args := make([]*redis.XAddArgs, 0, len(batch))
	for _, e := range batch {
		a, err := c.xaddArgs(e)
		if err != nil {
			return err
		}
		args = append(args, a)
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, a := range args {
			pipe.XAdd(ctx, a)
		}
		return nil
	})
	return classifyError(err)
}

// Close closes the underlying client when it is owned.
func (c *StreamClient) Close() error {
	if !c.owned {
		return nil
	}
	if err := c.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func (c *StreamClient) xaddArgs(e logevent.Event) (*redis.XAddArgs, error) {
	values := []any{
		"id", e.ID,
		"time", e.Time.UTC().Format(time.RFC3339Nano),
		"level", e.Level,
		"message", e.Message,
	}
	if e.Service != "" {
		values = append(values, "service", e.Service)
	}
	if len(e.Attrs) > 0 {
		attrs, err := json.Marshal(e.Attrs)
		if err != nil {
			return nil, errors.Join(relay.ErrRejected, ErrEncodeEvent, err)
		}
		values = append(values, "attrs", string(attrs))
	}

	a := &redis.XAddArgs{
		Stream: c.stream,
		Values: values,
	}
	if c.maxLen > 0 {
		a.MaxLen = c.maxLen
		a.Approx = true
	}
	return a, nil
}

package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
)

// Inserter is the part of *mongo.Collection used by CollectionClient.
type Inserter interface {
	InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error)
}

// CollectionClient stores log event batches as documents keyed by event ID.
// Inserts are unordered, so a batch that was partly written before a failure
// is completed on retry and the already stored documents count as accepted.
type CollectionClient struct {
	coll       Inserter
	disconnect func(context.Context) error
}

// CollectionOption configures a CollectionClient.
type CollectionOption func(*CollectionClient)

// WithDisconnect makes Close disconnect client. Use it when the relay owns
// the connection.
func WithDisconnect(client *mongo.Client) CollectionOption {
	return func(c *CollectionClient) {
		if client != nil {
			c.disconnect = client.Disconnect
		}
	}
}

// NewCollectionClient creates a relay client inserting into coll.
func NewCollectionClient(coll Inserter, opts ...CollectionOption) (*CollectionClient, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}

	c := &CollectionClient{coll: coll}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit inserts batch, one document per event.
func (c *CollectionClient) Submit(ctx context.Context, batch []logevent.Event) error {
	docs := make([]any, len(batch))
	for i, e := range batch {
		docs[i] = e
	}

	_, err := c.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return classifyError(err)
}

// Close disconnects the client registered with WithDisconnect.
func (c *CollectionClient) Close() error {
	if c.disconnect == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return err
	}
	return nil
}

// EnsureIndexes creates the time index used for queries. A positive ttl
// turns it into a TTL index so old events expire.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, ttl time.Duration) error {
	idx := options.Index().SetName("time_1")
	if ttl > 0 {
		idx.SetExpireAfterSeconds(int32(ttl / time.Second))
	}

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: 1}}, Options: idx},
		{Keys: bson.D{{Key: "level", Value: 1}, {Key: "time", Value: -1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return errors.Join(ErrIndexFailed, err)
	}
	return nil
}

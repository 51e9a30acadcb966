package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrymomot/logrelay/pkg/config"
	"github.com/dmitrymomot/logrelay/pkg/file"
	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/logger"
	"github.com/dmitrymomot/logrelay/pkg/mongo"
	"github.com/dmitrymomot/logrelay/pkg/opensearch"
	"github.com/dmitrymomot/logrelay/pkg/pg"
	"github.com/dmitrymomot/logrelay/pkg/redis"
	"github.com/dmitrymomot/logrelay/pkg/relay"
	"github.com/dmitrymomot/logrelay/pkg/webhook"
)

// sink is a connected relay client plus the checks behind /readyz.
type sink struct {
	client relay.Client[logevent.Event]
	ready  []func(context.Context) error
}

// close releases the client when the relay never got to own it.
func (s *sink) close() error {
	if c, ok := s.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// openSink connects the sink named by cfg.Sink.
func openSink(ctx context.Context, cfg Config, log *slog.Logger) (*sink, error) {
	log = log.With(logger.Sink(cfg.Sink))

	switch cfg.Sink {
	case sinkStdout:
		format := logevent.JSON
		if cfg.StdoutFormat == "text" {
			format = logevent.Text
		}
		w, err := file.NewWriter(os.Stdout, format)
		if err != nil {
			return nil, err
		}
		return &sink{client: w}, nil

	case sinkLocal:
		a, err := file.NewLocalArchiver(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		log.Info("archiving to local directory", slog.String("dir", cfg.ArchiveDir))
		return &sink{client: a, ready: []func(context.Context) error{a.Healthcheck()}}, nil

	case sinkS3:
		var c file.S3Config
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		a, err := file.NewS3Archiver(ctx, c)
		if err != nil {
			return nil, err
		}
		log.Info("archiving to s3", slog.String("bucket", c.Bucket), slog.String("prefix", c.Prefix))
		return &sink{client: a, ready: []func(context.Context) error{a.Healthcheck()}}, nil

	case sinkRedis:
		var c redis.Config
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, c)
		if err != nil {
			return nil, err
		}
		sc, err := redis.NewStreamClientFromConfig(client, c, redis.WithOwnedClient())
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		log.Info("appending to redis stream", slog.String("stream", c.Stream))
		return &sink{client: sc, ready: []func(context.Context) error{redis.Healthcheck(client)}}, nil

	case sinkMongo:
		var c mongo.Config
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, c)
		if err != nil {
			return nil, err
		}
		coll := client.Database(c.Database).Collection(c.Collection)
		if err := mongo.EnsureIndexes(ctx, coll, c.TTL); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}
		cc, err := mongo.NewCollectionClient(coll, mongo.WithDisconnect(client))
		if err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}
		log.Info("inserting into mongodb",
			slog.String("database", c.Database),
			slog.String("collection", c.Collection))
		return &sink{client: cc, ready: []func(context.Context) error{mongo.Healthcheck(client)}}, nil

	case sinkPostgres:
		var c pg.Config
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, c)
		if err != nil {
			return nil, err
		}
		if c.AutoMigrate {
			if err := pg.Migrate(ctx, pool, c, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		tc, err := pg.NewTableClient(pool, pg.WithClose(pool.Close))
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("inserting into postgres")
		return &sink{client: tc, ready: []func(context.Context) error{pg.Healthcheck(pool)}}, nil

	case sinkOpenSearch:
		var c opensearch.Config
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		client, err := opensearch.New(ctx, c)
		if err != nil {
			return nil, err
		}
		bi, err := opensearch.NewBulkIndexerFromConfig(client, c)
		if err != nil {
			return nil, err
		}
		log.Info("indexing into opensearch", slog.String("index", c.Index))
		return &sink{client: bi, ready: []func(context.Context) error{opensearch.Healthcheck(client)}}, nil

	case sinkWebhook:
		var c webhook.Config
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		bs, err := webhook.NewBatchSenderFromConfig(c, webhook.WithOnDelivery(func(r webhook.DeliveryResult) {
			if r.Error != nil {
				log.Debug("webhook delivery failed",
					slog.Int("status", r.StatusCode),
					logger.BatchSize(r.BatchSize),
					logger.Duration(r.Duration),
					logger.Error(r.Error))
			}
		}))
		if err != nil {
			return nil, err
		}
		log.Info("posting to webhook")
		return &sink{client: bs}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSink, cfg.Sink)
}

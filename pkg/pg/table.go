package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

const insertEvent = `INSERT INTO log_events (id, time, level, message, service, attrs)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

// DB begins transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TableClient stores log event batches in the log_events table, one
// transaction per batch. Rows already present are skipped, so a resubmitted
// batch never duplicates events.
type TableClient struct {
	db    DB
	close func()
}

// TableOption configures a TableClient.
type TableOption func(*TableClient)

// WithClose registers fn to run on Close, typically pool.Close when the
// relay owns the pool.
func WithClose(fn func()) TableOption {
	return func(c *TableClient) {
		c.close = fn
	}
}

// NewTableClient creates a relay client writing to db.
func NewTableClient(db DB, opts ...TableOption) (*TableClient, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	c := &TableClient{db: db}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit inserts batch in a single transaction. When every row already
// existed the batch is reported as relay.ErrDuplicateAccepted.
func (c *TableClient) Submit(ctx context.Context, batch []logevent.Event) error {
	var inserted int64

	err := pgx.BeginFunc(ctx, c.db, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, e := range batch {
			attrs := e.Attrs
			if attrs == nil {
				attrs = map[string]any{}
			}
			b.Queue(insertEvent, e.ID, e.Time, e.Level, e.Message, e.Service, attrs)
		}

		br := tx.SendBatch(ctx, b)
		for i := range batch {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return fmt.Errorf("insert event %s: %w", batch[i].ID, err)
			}
			inserted += tag.RowsAffected()
		}
		return br.Close()
	})
	if err != nil {
		return classifyError(err)
	}

	if inserted == 0 && len(batch) > 0 {
		return errors.Join(relay.ErrDuplicateAccepted, ErrAllRowsExist)
	}
	return nil
}

// Close runs the function registered with WithClose.
func (c *TableClient) Close() error {
	if c.close != nil {
		c.close()
	}
	return nil
}

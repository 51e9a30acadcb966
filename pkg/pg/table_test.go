package pg_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/pg"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

type execResult struct {
	tag string
	err error
}

type fakeResults struct {
	pgx.BatchResults
	results []execResult
	next    int
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	res := r.results[r.next]
	r.next++
	return pgconn.NewCommandTag(res.tag), res.err
}

func (r *fakeResults) Close() error { return nil }

type fakeTx struct {
	pgx.Tx
	results    []execResult
	batch      *pgx.Batch
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	tx.batch = b
	return &fakeResults{results: tx.results}
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeDB struct {
	tx  *fakeTx
	err error
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if db.err != nil {
		return nil, db.err
	}
	return db.tx, nil
}

func testBatch() []logevent.Event {
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return []logevent.Event{
		{ID: "a", Time: ts, Level: "INFO", Message: "one", Service: "api", Attrs: map[string]any{"k": "v"}},
		{ID: "b", Time: ts, Level: "WARN", Message: "two"},
	}
}

func TestNewTableClient(t *testing.T) {
	t.Parallel()

	_, err := pg.NewTableClient(nil)
	assert.ErrorIs(t, err, pg.ErrNilDB)

	closed := false
	c, err := pg.NewTableClient(&fakeDB{}, pg.WithClose(func() { closed = true }))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.True(t, closed)
}

func TestTableClient_Submit(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{results: []execResult{{tag: "INSERT 0 1"}, {tag: "INSERT 0 1"}}}
	c, err := pg.NewTableClient(&fakeDB{tx: tx})
	require.NoError(t, err)

	batch := testBatch()
	require.NoError(t, c.Submit(context.Background(), batch))

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	require.Len(t, tx.batch.QueuedQueries, 2)
	q := tx.batch.QueuedQueries[0]
	assert.Contains(t, q.SQL, "ON CONFLICT (id) DO NOTHING")
	assert.Equal(t, []any{"a", batch[0].Time, "INFO", "one", "api", map[string]any{"k": "v"}}, q.Arguments)
	assert.Equal(t, map[string]any{}, tx.batch.QueuedQueries[1].Arguments[5])
}

func TestTableClient_Duplicates(t *testing.T) {
	t.Parallel()

	t.Run("all rows exist", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{results: []execResult{{tag: "INSERT 0 0"}, {tag: "INSERT 0 0"}}}
		c, err := pg.NewTableClient(&fakeDB{tx: tx})
		require.NoError(t, err)

		err = c.Submit(context.Background(), testBatch())
		assert.ErrorIs(t, err, pg.ErrAllRowsExist)
		assert.Equal(t, relay.OutcomeDuplicate, relay.Classify(err))
		assert.True(t, tx.committed)
	})

	t.Run("some rows exist", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{results: []execResult{{tag: "INSERT 0 0"}, {tag: "INSERT 0 1"}}}
		c, err := pg.NewTableClient(&fakeDB{tx: tx})
		require.NoError(t, err)

		assert.NoError(t, c.Submit(context.Background(), testBatch()))
	})
}

func TestTableClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		db      *fakeDB
		outcome relay.Outcome
	}{
		{
			name:    "serialization failure",
			db:      &fakeDB{tx: &fakeTx{results: []execResult{{err: &pgconn.PgError{Code: "40001"}}}}},
			outcome: relay.OutcomeRetry,
		},
		{
			name:    "deadlock",
			db:      &fakeDB{tx: &fakeTx{results: []execResult{{tag: "INSERT 0 1"}, {err: &pgconn.PgError{Code: "40P01"}}}}},
			outcome: relay.OutcomeRetry,
		},
		{
			name:    "check violation",
			db:      &fakeDB{tx: &fakeTx{results: []execResult{{err: &pgconn.PgError{Code: "23514"}}}}},
			outcome: relay.OutcomeFailed,
		},
		{
			name:    "begin fails",
			db:      &fakeDB{err: errors.New("connection refused")},
			outcome: relay.OutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := pg.NewTableClient(tt.db)
			require.NoError(t, err)

			err = c.Submit(context.Background(), testBatch())
			require.Error(t, err)
			assert.Equal(t, tt.outcome, relay.Classify(err))

			if tt.db.tx != nil {
				assert.True(t, tt.db.tx.rolledBack)
				assert.False(t, tt.db.tx.committed)
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsDuplicateKeyError(errors.New("23505")))
	assert.False(t, pg.IsDuplicateKeyError(nil))

	assert.True(t, pg.IsRetryableError(&pgconn.PgError{Code: "55P03"}))
	assert.False(t, pg.IsRetryableError(&pgconn.PgError{Code: "23505"}))

	assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))
	assert.False(t, pg.IsTxClosedError(nil))
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(pg.Migrations(), "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	data, err := fs.ReadFile(pg.Migrations(), files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS log_events")
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)

	_, err = pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

// Package pg connects to PostgreSQL and stores log events in the log_events
// table.
//
// Connect opens a pgx pool with retries, Healthcheck returns a readiness
// check and Migrate applies the embedded goose migrations that create the
// table. TableClient implements the relay client contract:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	sink, _ := pg.NewTableClient(pool, pg.WithClose(pool.Close))
//
// Each batch is inserted in one transaction with ON CONFLICT (id) DO NOTHING,
// so retrying a batch that was committed before its acknowledgement was lost
// is harmless. Serialization failures, deadlocks and lock timeouts are
// reported as relay.ErrStaleSequence and retried quietly.
package pg

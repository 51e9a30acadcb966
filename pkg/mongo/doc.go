// Package mongo connects to MongoDB and stores log events in a collection.
//
// New retries the initial connection according to Config and Healthcheck
// returns a readiness check. CollectionClient implements the relay client
// contract with an unordered InsertMany per batch; documents use the event ID
// as _id, so resubmitting a batch never creates duplicates:
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	coll := db.Collection(cfg.Collection)
//	if err := mongo.EnsureIndexes(ctx, coll, cfg.TTL); err != nil {
//		return err
//	}
//	sink, _ := mongo.NewCollectionClient(coll, mongo.WithDisconnect(db.Client()))
//
// A batch failing only with duplicate key errors is reported as
// relay.ErrDuplicateAccepted; retryable write errors as relay.ErrStaleSequence.
package mongo

// Package opensearch connects to an OpenSearch cluster and indexes log events
// through the bulk API.
//
// New builds a client from Config and verifies the cluster with
// Healthcheck. BulkIndexer implements the relay client contract:
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	sink, _ := opensearch.NewBulkIndexerFromConfig(client, cfg)
//	r, _ := relay.New[logevent.Event](sink)
//
// Every event is sent as a create operation with _id set to the event ID.
// When the only failed items of a batch are 409 version conflicts the batch
// was already stored by an earlier attempt, and Submit returns an error
// matching relay.ErrDuplicateAccepted. Any other failed item yields
// ErrBulkRejected and the whole batch is retried. A 429 response is reported
// as relay.ErrStaleSequence so the relay backs off without alerting.
package opensearch

// Package logevent defines Event, the payload carried by the log relay, and
// converts slog records into it.
//
// Attributes are flattened into a single map with dot separated keys so that
// every sink (document stores, SQL tables, object storage) receives the same
// shape:
//
//	logger.Info("request served", slog.Group("http", slog.Int("status", 200)))
//	// Attrs: {"http.status": 200}
//
// Event IDs are UUIDv7 strings. They are time ordered, so sinks can use them
// as primary keys and a re-submitted batch is recognised as a duplicate.
//
// Formatters render events for line oriented outputs: JSON for machines, Text
// for terminals. EncodeNDJSON is shared by the sinks that write batches as one
// blob.
package logevent

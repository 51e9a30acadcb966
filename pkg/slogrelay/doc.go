// Package slogrelay plugs the log relay into log/slog.
//
// Handler converts each record into a logevent.Event and submits it to a
// *relay.Relay[logevent.Event] without waiting for the destination:
//
//	r, _ := relay.New[logevent.Event](sink, relay.WithLogger(plainLogger))
//	h, _ := slogrelay.New(r,
//		slogrelay.WithService("billing"),
//		slogrelay.WithContextExtractors(environment.LoggerExtractor()),
//	)
//	log := slog.New(h)
//
// The relay's own logger must not write back into h, or every relay log line
// would queue another event. Combine both outputs with logger.WithHandlers to
// keep console logs alongside the relayed ones.
package slogrelay

// Package requestid attaches a correlation ID to every HTTP request.
//
// The middleware reuses a client supplied X-Request-ID when it is short and
// made of safe characters, otherwise it generates a UUIDv7. The ID is stored
// in the request context and echoed in the response header.
//
//	r := chi.NewRouter()
//	r.Use(requestid.New(requestid.WithHeader("X-Correlation-ID")))
//
// LoggerExtractor adds the ID to records as "request_id":
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
// relayd also stamps ingested events that carry no request_id of their own,
// so a sink can trace every event back to the POST that delivered it.
package requestid

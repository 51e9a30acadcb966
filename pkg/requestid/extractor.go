package requestid

import (
	"context"
	"log/slog"
)

// AttrKey is the attribute key used for request IDs in logs and events.
const AttrKey = "request_id"

// LoggerExtractor returns a context extractor for pkg/logger.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if requestID := FromContext(ctx); requestID != "" {
			return slog.String(AttrKey, requestID), true
		}
		return slog.Attr{}, false
	}
}

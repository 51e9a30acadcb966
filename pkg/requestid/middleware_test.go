package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/requestid"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, header, value string) (seen string, rec *httptest.ResponseRecorder) {
	t.Helper()

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	if value != "" {
		req.Header.Set(header, value)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{name: "generated when missing", incoming: ""},
		{name: "client id reused", incoming: "req-123_abc", reused: true},
		{name: "uuid reused", incoming: "0190b5e2-8a1c-7cc3-9b5e-2f1d0e3c4b5a", reused: true},
		{name: "unsafe characters replaced", incoming: "bad id<script>"},
		{name: "too long replaced", incoming: strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seen, rec := serve(t, requestid.Middleware, requestid.Header, tt.incoming)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(requestid.Header))
			if tt.reused {
				assert.Equal(t, tt.incoming, seen)
				return
			}
			id, err := uuid.Parse(seen)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(7), id.Version())
		})
	}
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	mw := requestid.New(
		requestid.WithHeader("X-Correlation-ID"),
		requestid.WithGenerator(func() string { return "fixed" }),
	)

	seen, rec := serve(t, mw, requestid.Header, "ignored-header")
	assert.Equal(t, "fixed", seen)
	assert.Equal(t, "fixed", rec.Header().Get("X-Correlation-ID"))
	assert.Empty(t, rec.Header().Get(requestid.Header))

	seen, _ = serve(t, mw, "X-Correlation-ID", "abc")
	assert.Equal(t, "abc", seen)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(context.Background()))
	assert.Equal(t, "abc", requestid.FromContext(requestid.WithContext(context.Background(), "abc")))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, requestid.AttrKey, attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}

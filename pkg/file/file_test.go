package file_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/file"
	"github.com/dmitrymomot/logrelay/pkg/logevent"
)

func testBatch() []logevent.Event {
	return []logevent.Event{
		{ID: "0190a1b2-0000-7000-8000-000000000001", Time: time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)), Level: "INFO", Message: "first"},
		{ID: "0190a1b2-0000-7000-8000-000000000002", Time: time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC), Level: "WARN", Message: "second"},
	}
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "with prefix", prefix: "logs", want: "logs/2025/03/10/0190a1b2-0000-7000-8000-000000000001.ndjson"},
		{name: "slashes trimmed", prefix: "/svc/logs/", want: "svc/logs/2025/03/10/0190a1b2-0000-7000-8000-000000000001.ndjson"},
		{name: "no prefix", prefix: "", want: "2025/03/10/0190a1b2-0000-7000-8000-000000000001.ndjson"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key, err := file.ObjectKey(tt.prefix, testBatch())
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestObjectKey_Invalid(t *testing.T) {
	t.Parallel()

	_, err := file.ObjectKey("logs", nil)
	assert.ErrorIs(t, err, file.ErrEmptyBatch)

	_, err = file.ObjectKey("../etc", testBatch())
	assert.ErrorIs(t, err, file.ErrInvalidPath)

	for _, id := range []string{"", "a/b", `a\b`, ".."} {
		_, err = file.ObjectKey("logs", []logevent.Event{{ID: id, Time: time.Now()}})
		assert.ErrorIs(t, err, file.ErrInvalidPath, "id %q", id)
	}
}

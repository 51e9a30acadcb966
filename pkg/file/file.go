package file

import (
	"errors"
	"path"
	"strings"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// ContentType of archive objects.
const ContentType = "application/x-ndjson"

// ObjectKey returns the archive key of batch: prefix/YYYY/MM/DD/<first-id>.ndjson,
// dated by the first event. The same batch always maps to the same key.
func ObjectKey(prefix string, batch []logevent.Event) (string, error) {
	if len(batch) == 0 {
		return "", ErrEmptyBatch
	}

	first := batch[0]
	if first.ID == "" || strings.ContainsAny(first.ID, `/\`) || strings.Contains(first.ID, "..") {
		return "", ErrInvalidPath
	}

	prefix = strings.Trim(prefix, "/")
	if strings.Contains(prefix, "..") {
		return "", ErrInvalidPath
	}

	return path.Join(prefix, first.Time.UTC().Format("2006/01/02"), first.ID+".ndjson"), nil
}

func encodeBatch(batch []logevent.Event) ([]byte, error) {
	data, err := logevent.EncodeNDJSON(batch)
	if err != nil {
		return nil, errors.Join(relay.ErrRejected, ErrEncodeBatch, err)
	}
	return data, nil
}

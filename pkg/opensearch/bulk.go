package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// BulkIndexer sends log event batches through the _bulk API. Each event is
// indexed with the create operation under its own ID, so a batch sent twice
// produces version conflicts instead of copies.
type BulkIndexer struct {
	transport opensearchapi.Transport
	index     string
	daily     bool
	refresh   string
}

// BulkOption configures a BulkIndexer.
type BulkOption func(*BulkIndexer)

// WithDailyIndex writes every event to <index>-YYYY.MM.DD based on its time.
func WithDailyIndex() BulkOption {
	return func(b *BulkIndexer) {
		b.daily = true
	}
}

// WithRefresh sets the refresh parameter of bulk requests.
func WithRefresh(refresh string) BulkOption {
	return func(b *BulkIndexer) {
		b.refresh = refresh
	}
}

// NewBulkIndexer creates a relay client. transport is usually an *opensearch.Client.
func NewBulkIndexer(transport opensearchapi.Transport, index string, opts ...BulkOption) (*BulkIndexer, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if index == "" {
		return nil, ErrEmptyIndex
	}

	b := &BulkIndexer{transport: transport, index: index}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// NewBulkIndexerFromConfig creates a BulkIndexer using the index settings in cfg.
func NewBulkIndexerFromConfig(transport opensearchapi.Transport, cfg Config) (*BulkIndexer, error) {
	opts := []BulkOption{WithRefresh(cfg.Refresh)}
	if cfg.DailyIndex {
		opts = append(opts, WithDailyIndex())
	}
	return NewBulkIndexer(transport, cfg.Index, opts...)
}

type bulkAction struct {
	Create bulkMeta `json:"create"`
}

type bulkMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

type bulkResponse struct {
	Errors bool                        `json:"errors"`
	Items  []map[string]bulkItemResult `json:"items"`
}

type bulkItemResult struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// Submit indexes batch in one bulk request.
func (b *BulkIndexer) Submit(ctx context.Context, batch []logevent.Event) error {
	body, err := b.encode(batch)
	if err != nil {
		return errors.Join(relay.ErrRejected, err)
	}

	req := opensearchapi.BulkRequest{
		Body:    bytes.NewReader(body),
		Refresh: b.refresh,
	}
	res, err := req.Do(ctx, b.transport)
	if err != nil {
		return errors.Join(ErrBulkRequest, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return errors.Join(relay.ErrStaleSequence, ErrTooManyRequests)
	}
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		err := fmt.Errorf("%w: status %d: %s", ErrBulkRequest, res.StatusCode, strings.TrimSpace(string(msg)))
		if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusRequestEntityTooLarge {
			return errors.Join(relay.ErrRejected, err)
		}
		return err
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	if !parsed.Errors {
		return nil
	}
	return classifyItems(parsed.Items)
}

func (b *BulkIndexer) encode(batch []logevent.Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range batch {
		if err := enc.Encode(bulkAction{Create: bulkMeta{Index: b.indexFor(e), ID: e.ID}}); err != nil {
			return nil, err
		}
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encode event %s: %w", e.ID, err)
		}
	}
	return buf.Bytes(), nil
}

func (b *BulkIndexer) indexFor(e logevent.Event) string {
	if !b.daily {
		return b.index
	}
	return b.index + "-" + e.Time.UTC().Format("2006.01.02")
}

// classifyItems turns per-item failures into a relay outcome. Conflicts mean
// the document was stored by an earlier attempt. A batch whose failures are all
// 429 is retried; one whose failures are all other 4xx statuses can never be
// indexed and is rejected.
func classifyItems(items []map[string]bulkItemResult) error {
	var (
		conflicts int
		throttled int
		invalid   int
		rejected  []error
	)
	for _, item := range items {
		for _, res := range item {
			switch {
			case res.Status < 300:
			case res.Status == http.StatusConflict:
				conflicts++
			default:
				reason := http.StatusText(res.Status)
				if res.Error != nil {
					reason = res.Error.Type + ": " + res.Error.Reason
				}
				rejected = append(rejected, fmt.Errorf("event %s: status %d: %s", res.ID, res.Status, reason))
				switch {
				case res.Status == http.StatusTooManyRequests:
					throttled++
				case res.Status >= 400 && res.Status < 500:
					invalid++
				}
			}
		}
	}

	switch {
	case len(rejected) > 0 && throttled == len(rejected):
		return errors.Join(relay.ErrStaleSequence, ErrTooManyRequests, fmt.Errorf("%d log events throttled", throttled))
	case len(rejected) > 0 && invalid == len(rejected):
		return errors.Join(append([]error{relay.ErrRejected, ErrBulkRejected}, rejected...)...)
	case len(rejected) > 0:
		return errors.Join(append([]error{ErrBulkRejected}, rejected...)...)
	case conflicts > 0:
		return errors.Join(relay.ErrDuplicateAccepted, fmt.Errorf("%d log events already indexed", conflicts))
	}
	return nil
}

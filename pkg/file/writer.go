package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// Writer prints every event on its own line, e.g. to stdout during
// development. The whole batch is written with a single Write call.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format logevent.Formatter
}

// NewWriter creates a relay client writing to w. A nil format defaults to
// logevent.JSON.
func NewWriter(w io.Writer, format logevent.Formatter) (*Writer, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: writer is required", ErrInvalidConfig)
	}
	if format == nil {
		format = logevent.JSON
	}
	return &Writer{w: w, format: format}, nil
}

// Submit formats and writes batch.
func (wr *Writer) Submit(ctx context.Context, batch []logevent.Event) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	var buf bytes.Buffer
	for _, e := range batch {
		line, err := wr.format(e)
		if err != nil {
			return fmt.Errorf("%w: %w: %w", ErrEncodeBatch, relay.ErrRejected, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrOperationCanceled, err)
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	if _, err := wr.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	return nil
}

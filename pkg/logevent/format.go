package logevent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Formatter renders a single event as bytes.
type Formatter func(Event) ([]byte, error)

// JSON renders the event as a single JSON object.
func JSON(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}
	return b, nil
}

// Text renders the event as "[LEVEL] message key=value ..." with keys sorted.
func Text(e Event) ([]byte, error) {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Level)
	b.WriteString("] ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}

	return []byte(b.String()), nil
}

// EncodeNDJSON renders events as newline delimited JSON, one object per line.
func EncodeNDJSON(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return nil, errors.Join(ErrEncodeFailed, err)
		}
	}

	return buf.Bytes(), nil
}

// DecodeNDJSON is the inverse of EncodeNDJSON. Blank lines are ignored.
func DecodeNDJSON(data []byte) ([]Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var events []Event
	for dec.More() {
		var e Event
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode log event %d: %w", len(events), err)
		}
		events = append(events, e)
	}

	return events, nil
}

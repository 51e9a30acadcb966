package logevent

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is a single log entry as it travels through the relay and lands in a sink.
type Event struct {
	ID      string         `json:"id" bson:"_id"`
	Time    time.Time      `json:"time" bson:"time"`
	Level   string         `json:"level" bson:"level"`
	Message string         `json:"message" bson:"message"`
	Service string         `json:"service,omitempty" bson:"service,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty" bson:"attrs,omitempty"`
}

// New creates an event stamped with the current time and a fresh ID.
func New(level slog.Level, msg string) Event {
	return Event{
		ID:      NewID(),
		Time:    time.Now().UTC(),
		Level:   level.String(),
		Message: msg,
	}
}

// NewID returns a time-ordered UUIDv7 string, falling back to a random v4
// when the clock sequence cannot be read.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// FromRecord converts r into an event. base holds attributes collected
// beforehand (handler attrs, context values) and is not modified. Record
// attributes are flattened under group, see Flatten.
func FromRecord(r slog.Record, group string, base map[string]any) Event {
	e := Event{
		ID:      NewID(),
		Time:    r.Time.UTC(),
		Level:   r.Level.String(),
		Message: r.Message,
	}
	if r.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	if len(base) == 0 && r.NumAttrs() == 0 {
		return e
	}

	e.Attrs = make(map[string]any, len(base)+r.NumAttrs())
	for k, v := range base {
		e.Attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		Flatten(e.Attrs, group, a)
		return true
	})

	return e
}

// Validate reports whether the event can be submitted to a sink.
func (e Event) Validate() error {
	switch {
	case e.Message == "":
		return ErrEmptyMessage
	case e.Time.IsZero():
		return ErrMissingTime
	}
	return nil
}

// Normalize fills in a missing ID, time and level so events received from
// outside the process can be stored like local ones.
func (e Event) Normalize() Event {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.Time = e.Time.UTC()
	if e.Level == "" {
		e.Level = slog.LevelInfo.String()
	}
	return e
}

// MarshalJSON renders the event with its time in UTC.
func (e Event) MarshalJSON() ([]byte, error) {
	type event Event
	v := event(e)
	v.Time = v.Time.UTC()
	return json.Marshal(v)
}

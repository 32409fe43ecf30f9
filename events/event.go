// Package events defines the tracked event value and the FIFO queue that
// buffers events between tracking calls and a flush.
package events

import (
	"errors"
	"fmt"
	"time"
)

// TimeFormat is the wire layout for event timestamps (yyyy-MM-ddTHH:mm:ss.fffZ).
// Timestamps are always rendered in UTC.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// ErrUnknownKind is returned when a kind outside the closed set is requested.
var ErrUnknownKind = errors.New("events: unknown event kind")

// Kind identifies what happened. The set is closed.
type Kind string

const (
	Choice Kind = "choice"
	Click  Kind = "click"
	Screen Kind = "screen"
	Var    Kind = "var"
	Zone   Kind = "zone"
)

// Kinds returns every recognized kind in declaration order.
func Kinds() []Kind {
	return []Kind{Choice, Click, Screen, Var, Zone}
}

// ParseKind maps a string onto the closed kind set.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Choice, Click, Screen, Var, Zone:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k belongs to the closed kind set.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

func (k Kind) String() string { return string(k) }

// Event is a single tracked occurrence. An empty Value means the event
// carries no value (screen and zone events never do).
type Event struct {
	Kind      Kind
	Target    string
	Value     string
	Timestamp time.Time
}

// New creates an event stamped with the current time.
func New(kind Kind, target, value string) Event {
	return NewAt(kind, target, value, time.Now())
}

// NewAt creates an event with an explicit timestamp.
func NewAt(kind Kind, target, value string, ts time.Time) Event {
	return Event{
		Kind:      kind,
		Target:    target,
		Value:     value,
		Timestamp: ts,
	}
}

// HasValue reports whether the event carries a value.
func (e Event) HasValue() bool { return e.Value != "" }

// FormattedTimestamp renders the timestamp in TimeFormat.
func (e Event) FormattedTimestamp() string {
	return e.Timestamp.UTC().Format(TimeFormat)
}

package tracker

import (
	"log/slog"
	"time"

	"github.com/ggoodman/tracker-go/storage"
	"github.com/ggoodman/tracker-go/transport"
)

// Option customizes a Tracker.
type Option func(*Tracker)

// WithLogger overrides the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithTransport overrides the collector transport. The default is an
// HTTP transport with transport.DefaultTimeout.
func WithTransport(d transport.Doer) Option {
	return func(t *Tracker) {
		if d != nil {
			t.doer = d
		}
	}
}

// WithStorage sets the blob store used when the storage type is local.
// Without one, a local session never becomes active.
func WithStorage(s storage.Storage) Option {
	return func(t *Tracker) {
		if s != nil {
			t.store = s
		}
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithRequeueOnFailure puts a batch that could not be delivered back at the
// front of the queue instead of dropping it.
func WithRequeueOnFailure() Option {
	return func(t *Tracker) {
		t.requeueOnFailure = true
	}
}

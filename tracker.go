package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ggoodman/tracker-go/config"
	"github.com/ggoodman/tracker-go/events"
	"github.com/ggoodman/tracker-go/internal/logctx"
	"github.com/ggoodman/tracker-go/session"
	"github.com/ggoodman/tracker-go/storage"
	"github.com/ggoodman/tracker-go/transport"
	"github.com/google/uuid"
)

// Tracker buffers events and delivers them to the configured sink. It owns
// one session; create one Tracker per independent session. A Tracker is safe
// for concurrent use.
type Tracker struct {
	id               string
	log              *slog.Logger
	doer             transport.Doer
	store            storage.Storage
	now              func() time.Time
	requeueOnFailure bool

	mu       sync.RWMutex
	settings config.Settings

	state *session.State
	queue *events.Queue

	// flushMu keeps a single flush in flight so batches leave in queue order.
	flushMu sync.Mutex
}

// New creates a Tracker for the given settings.
func New(settings config.Settings, opts ...Option) (*Tracker, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	t := &Tracker{
		id:       uuid.NewString(),
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
		settings: settings,
		state:    session.New(settings.UserToken, settings.TrackingCode),
		queue:    events.NewQueue(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = logctx.Wrap(t.log)
	if t.doer == nil {
		t.doer = transport.NewHTTP(transport.WithLogger(t.log))
	}
	return t, nil
}

// ID returns the tracker instance id attached to its log records.
func (t *Tracker) ID() string { return t.id }

// Settings returns a copy of the current settings.
func (t *Tracker) Settings() config.Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.settings
}

// UpdateSettings replaces the settings. A changed user token or tracking
// code is pushed into the session; the rest of the session is untouched.
// Events already queued are encoded with the new format on the next flush.
func (t *Tracker) UpdateSettings(s config.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	old := t.settings
	t.settings = s
	t.mu.Unlock()

	if s.UserToken != old.UserToken {
		t.state.SetUserToken(s.UserToken)
	}
	if s.TrackingCode != old.TrackingCode {
		t.state.SetTrackingCode(s.TrackingCode)
	}
	t.log.InfoContext(t.context(context.Background()), "tracker.settings.update",
		slog.String("storage", string(s.StorageType)),
		slog.String("format", string(s.TraceFormat)),
		slog.Int("batch_size", s.BatchSize),
	)
	return nil
}

// Session returns a snapshot of the session.
func (t *Tracker) Session() session.Snapshot { return t.state.Snapshot() }

// Connected reports whether a usable token is held and nothing has failed
// since it was obtained.
func (t *Tracker) Connected() bool { return t.state.Snapshot().Connected }

// Active reports whether the session has both an actor and an activity id.
func (t *Tracker) Active() bool { return t.state.Snapshot().Active }

// Health returns the status reported by the last successful health probe.
func (t *Tracker) Health() string { return t.state.Snapshot().Health }

// Pending returns the number of queued events.
func (t *Tracker) Pending() int { return t.queue.Len() }

// Choice records that option was chosen in the choice identified by target.
func (t *Tracker) Choice(target, option string) {
	t.track(events.Choice, target, option)
}

// Click records a click at (x, y) on target.
func (t *Tracker) Click(x, y float64, target string) {
	t.track(events.Click, target, formatFloat(x)+"x"+formatFloat(y))
}

// Screen records that the screen identified by target was shown.
func (t *Tracker) Screen(target string) {
	t.track(events.Screen, target, "")
}

// Var records a new value for the variable name.
func (t *Tracker) Var(name string, value any) {
	t.track(events.Var, name, fmt.Sprint(value))
}

// Zone records that the zone identified by target was entered.
func (t *Tracker) Zone(target string) {
	t.track(events.Zone, target, "")
}

// Trace records an event of the named kind. Unknown kinds are rejected with
// events.ErrUnknownKind and nothing is queued.
func (t *Tracker) Trace(kind, target, value string) error {
	k, err := events.ParseKind(kind)
	if err != nil {
		t.log.WarnContext(t.context(context.Background()), "tracker.trace.reject",
			slog.String("kind", kind),
			slog.String("err", err.Error()),
		)
		return err
	}
	t.track(k, target, value)
	return nil
}

func (t *Tracker) track(kind events.Kind, target, value string) {
	t.queue.Enqueue(events.NewAt(kind, target, value, t.now()))
}

// context attaches the tracker log group to ctx.
func (t *Tracker) context(ctx context.Context) context.Context {
	s := t.Settings()
	return logctx.WithTrackerData(ctx, &logctx.TrackerData{
		TrackerID:    t.id,
		TrackingCode: t.state.TrackingCode(),
		Storage:      string(s.StorageType),
	})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ggoodman/tracker-go/config"
	"github.com/ggoodman/tracker-go/events"
	"github.com/ggoodman/tracker-go/format"
	"github.com/ggoodman/tracker-go/internal/logctx"
	"github.com/ggoodman/tracker-go/internal/tokeninfo"
	"github.com/ggoodman/tracker-go/storage"
	"github.com/google/uuid"
)

// Flush delivers one batch of up to BatchSize queued events (all of them
// when BatchSize is 0) and returns how many were delivered. Nothing is sent
// while the session is not connected. Events past the batch limit stay
// queued in order for the next call.
func (t *Tracker) Flush(ctx context.Context) int {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	ctx = t.context(ctx)
	snap := t.state.Snapshot()
	if !snap.Connected {
		t.log.DebugContext(ctx, "tracker.flush.skip", slog.Int("pending", t.queue.Len()))
		return 0
	}

	s := t.Settings()
	batch := t.queue.Drain(s.BatchSize)
	if len(batch) == 0 {
		t.log.DebugContext(ctx, "tracker.flush.empty")
		return 0
	}

	ctx = logctx.WithBatchData(ctx, &logctx.BatchData{
		BatchID: uuid.NewString(),
		Size:    len(batch),
		Format:  string(s.TraceFormat),
	})

	payload, err := format.Encode(s.TraceFormat, batch, format.Statement{Actor: snap.Actor, ObjectID: snap.ObjectID})
	if err != nil {
		t.queue.Requeue(batch)
		t.log.ErrorContext(ctx, "tracker.flush.encode_fail", slog.String("err", err.Error()))
		return 0
	}

	switch s.StorageType {
	case config.StorageLocal:
		err = t.appendLocal(ctx, s, payload)
	default:
		err = t.send(ctx, s, snap.UserToken, payload)
	}
	if err != nil {
		t.fail(ctx, batch)
		return 0
	}

	t.log.InfoContext(ctx, "tracker.flush.ok",
		slog.Int("events", len(batch)),
		slog.Int("pending", t.queue.Len()),
	)
	return len(batch)
}

// FlushAll flushes until the queue is empty or a flush delivers nothing, and
// returns the total delivered.
func (t *Tracker) FlushAll(ctx context.Context) int {
	total := 0
	for t.queue.Len() > 0 {
		n := t.Flush(ctx)
		if n == 0 {
			break
		}
		total += n
	}
	return total
}

func (t *Tracker) fail(ctx context.Context, batch []events.Event) {
	if t.requeueOnFailure {
		t.queue.Requeue(batch)
		t.log.WarnContext(ctx, "tracker.flush.requeue", slog.Int("events", len(batch)))
		return
	}
	t.log.WarnContext(ctx, "tracker.flush.drop", slog.Int("events", len(batch)))
}

func (t *Tracker) send(ctx context.Context, s config.Settings, token, payload string) error {
	t.warnIfExpired(ctx, token)

	_, err := t.do(ctx, "track", http.MethodPost, trackPath, token, []byte(payload), s.TraceFormat.ContentType())
	if err != nil {
		t.state.FailTrack()
		return err
	}
	return nil
}

// appendLocal merges payload into the log file blob.
func (t *Tracker) appendLocal(ctx context.Context, s config.Settings, payload string) error {
	if t.store == nil {
		err := errors.New("no local storage configured")
		t.log.ErrorContext(ctx, "tracker.local.fail", slog.String("err", err.Error()))
		return err
	}

	var existing string
	data, err := t.store.Load(ctx, s.LogFile)
	switch {
	case err == nil:
		existing = string(data)
	case errors.Is(err, storage.ErrNotFound):
	default:
		err = fmt.Errorf("load %s: %w", s.LogFile, err)
		t.log.ErrorContext(ctx, "tracker.local.fail", slog.String("err", err.Error()))
		return err
	}

	merged := format.Append(s.TraceFormat, existing, payload)
	if err := t.store.Save(ctx, s.LogFile, []byte(merged)); err != nil {
		err = fmt.Errorf("save %s: %w", s.LogFile, err)
		t.log.ErrorContext(ctx, "tracker.local.fail", slog.String("err", err.Error()))
		return err
	}
	t.log.DebugContext(ctx, "tracker.local.write",
		slog.String("blob", s.LogFile),
		slog.Int("bytes", len(merged)),
	)
	return nil
}

func (t *Tracker) warnIfExpired(ctx context.Context, token string) {
	info := tokeninfo.Inspect(token)
	if !info.Expired(t.now()) {
		return
	}
	t.log.WarnContext(ctx, "tracker.token.expired",
		slog.String("sub", info.Subject),
		slog.Time("exp", info.ExpiresAt),
	)
}

package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with tracker, request and batch groups carried
// on the context.
type Handler struct {
	slog.Handler
}

// Wrap returns a logger whose handler adds the context groups to every
// record logged through a *Context method.
func Wrap(l *slog.Logger) *slog.Logger {
	if l == nil {
		return nil
	}
	if _, ok := l.Handler().(Handler); ok {
		return l
	}
	return slog.New(Handler{Handler: l.Handler()})
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if td, ok := ctx.Value(trackerDataKey{}).(*TrackerData); ok {
		r.AddAttrs(slog.Group("tracker",
			slog.String("id", td.TrackerID),
			slog.String("tracking_code", td.TrackingCode),
			slog.String("storage", td.Storage),
		))
	}

	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("op", rd.Operation),
			slog.String("method", rd.Method),
			slog.String("url", rd.URL),
		))
	}

	if bd, ok := ctx.Value(batchDataKey{}).(*BatchData); ok {
		r.AddAttrs(slog.Group("batch",
			slog.String("id", bd.BatchID),
			slog.Int("size", bd.Size),
			slog.String("format", bd.Format),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type trackerDataKey struct{}

type TrackerData struct {
	TrackerID    string
	TrackingCode string
	Storage      string
}

func WithTrackerData(ctx context.Context, data *TrackerData) context.Context {
	return context.WithValue(ctx, trackerDataKey{}, data)
}

type requestDataKey struct{}

type RequestData struct {
	Operation string
	Method    string
	URL       string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}

type batchDataKey struct{}

type BatchData struct {
	BatchID string
	Size    int
	Format  string
}

func WithBatchData(ctx context.Context, data *BatchData) context.Context {
	return context.WithValue(ctx, batchDataKey{}, data)
}

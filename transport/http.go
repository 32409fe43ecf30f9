package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds each request when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// HTTP is a Doer backed by net/http.
type HTTP struct {
	client  *http.Client
	timeout time.Duration
	log     *slog.Logger
}

var _ Doer = (*HTTP)(nil)

// Option customizes an HTTP transport.
type Option func(*HTTP)

// WithHTTPClient overrides the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) { h.timeout = d }
}

// WithLogger sets the logger. If not provided, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(h *HTTP) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHTTP creates an HTTP transport.
func NewHTTP(opts ...Option) *HTTP {
	h := &HTTP{
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Do implements Doer. A timeout surfaces as an ordinary request error.
func (h *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, wrap(req.Method, req.URL, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}

	start := time.Now()
	h.log.DebugContext(ctx, "http.request.start",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.Int("body_bytes", len(req.Body)),
	)

	hres, err := h.client.Do(hreq)
	if err != nil {
		h.log.DebugContext(ctx, "http.request.fail", slog.String("err", err.Error()))
		return nil, wrap(req.Method, req.URL, err)
	}
	defer func() {
		// Best-effort close; the body has been fully read or abandoned.
		_ = hres.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(hres.Body, maxBodyBytes))
	if err != nil {
		return nil, wrap(req.Method, req.URL, err)
	}

	res := &Response{
		StatusCode: hres.StatusCode,
		Header:     hres.Header,
		Body:       data,
	}

	h.log.DebugContext(ctx, "http.request.done",
		slog.Int("status", hres.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)

	if !res.OK() {
		return res, wrap(req.Method, req.URL, statusError(hres))
	}
	return res, nil
}

package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ggoodman/tracker-go/config"
	"github.com/ggoodman/tracker-go/internal/logctx"
	"github.com/ggoodman/tracker-go/transport"
)

// Collector paths, relative to the base URL.
const (
	healthPath = "health"
	loginPath  = "login"
	startPath  = "proxy/gleaner/collector/start/"
	trackPath  = "proxy/gleaner/collector/track"
)

const jsonContentType = "application/json"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a user token. On success the token
// replaces the configured one and the session is connected. A failed
// request, or a response without a token, leaves it disconnected.
func (t *Tracker) Login(ctx context.Context, username, password string) bool {
	ctx = t.context(ctx)

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		t.log.ErrorContext(ctx, "tracker.login.encode_fail", slog.String("err", err.Error()))
		return false
	}

	res, err := t.do(ctx, "login", http.MethodPost, loginPath, "", body, jsonContentType)
	if err != nil {
		t.state.FailLogin()
		return false
	}

	if r := t.state.ApplyLogin(string(res.Body)); !r.TokenFound {
		t.log.WarnContext(ctx, "tracker.login.no_token")
		return false
	}
	t.log.InfoContext(ctx, "tracker.login.ok", slog.String("user", username))
	return true
}

// Start opens a tracking session for trackingCode with the current user
// token. It reports whether the session is active afterwards.
func (t *Tracker) Start(ctx context.Context, trackingCode string) bool {
	t.setTrackingCode(trackingCode)
	return t.start(ctx)
}

// StartWithToken replaces the user token, then behaves like Start.
func (t *Tracker) StartWithToken(ctx context.Context, userToken, trackingCode string) bool {
	t.state.SetUserToken(userToken)
	t.mu.Lock()
	t.settings.UserToken = userToken
	t.mu.Unlock()
	return t.Start(ctx, trackingCode)
}

func (t *Tracker) setTrackingCode(code string) {
	t.state.SetTrackingCode(code)
	t.mu.Lock()
	t.settings.TrackingCode = code
	t.mu.Unlock()
}

func (t *Tracker) start(ctx context.Context) bool {
	ctx = t.context(ctx)

	if t.Settings().StorageType == config.StorageLocal {
		available := t.store != nil
		t.state.ApplyLocalStart(available)
		if !available {
			t.log.WarnContext(ctx, "tracker.start.no_storage")
			return false
		}
		t.log.InfoContext(ctx, "tracker.start.local")
		return true
	}

	snap := t.state.Snapshot()
	t.warnIfExpired(ctx, snap.UserToken)

	path := startPath + url.PathEscape(snap.TrackingCode)
	res, err := t.do(ctx, "start", http.MethodPost, path, snap.UserToken, nil, "")
	if err != nil {
		t.state.FailStart()
		return false
	}

	r := t.state.ApplyStart(string(res.Body))
	active := t.state.Snapshot().Active
	t.log.InfoContext(ctx, "tracker.start.ok",
		slog.Bool("auth_token", r.AuthTokenFound),
		slog.Bool("object_id", r.ObjectIDFound),
		slog.Bool("actor", r.ActorFound),
		slog.Bool("active", active),
	)
	return active
}

// CheckHealth probes the collector and records the status it reports. A
// successful response without a status leaves the recorded one unchanged.
// It does not change whether the session is connected or active.
func (t *Tracker) CheckHealth(ctx context.Context) bool {
	ctx = t.context(ctx)

	res, err := t.do(ctx, "health", http.MethodGet, healthPath, "", nil, "")
	if err != nil {
		return false
	}
	status, ok := t.state.ApplyHealth(string(res.Body))
	t.log.DebugContext(ctx, "tracker.health.ok",
		slog.String("status", status),
		slog.Bool("status_found", ok),
	)
	return true
}

// do issues one collector call. Failures are logged here; callers only
// decide how the session reacts.
func (t *Tracker) do(ctx context.Context, op, method, path, token string, body []byte, contentType string) (*transport.Response, error) {
	s := t.Settings()
	u := transport.Join(transport.BaseURL(s.Host, s.Port, s.Secure, s.BasePath), path)
	ctx = logctx.WithRequestData(ctx, &logctx.RequestData{Operation: op, Method: method, URL: u})

	req := &transport.Request{
		Method: method,
		URL:    u,
		Header: http.Header{},
		Body:   body,
	}
	req.Header.Set(transport.AcceptHeader, jsonContentType)
	if token != "" {
		req.Header.Set(transport.AuthorizationHeader, transport.Bearer(token))
	}
	if contentType != "" {
		req.Header.Set(transport.ContentTypeHeader, contentType)
	}

	res, err := t.doer.Do(ctx, req)
	switch {
	case err != nil:
	case res == nil:
		err = fmt.Errorf("%s %s: %w", method, u, transport.ErrNoResponse)
	case !res.OK():
		err = fmt.Errorf("%s %s: %w", method, u, &transport.StatusError{StatusCode: res.StatusCode})
	}
	if err != nil {
		t.log.WarnContext(ctx, "tracker."+op+".fail", slog.String("err", err.Error()))
		return res, err
	}
	if !res.IsJSON() && len(res.Body) > 0 {
		t.log.DebugContext(ctx, "tracker."+op+".non_json",
			slog.String("content_type", res.Header.Get(transport.ContentTypeHeader)),
		)
	}
	return res, nil
}

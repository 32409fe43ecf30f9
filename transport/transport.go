// Package transport issues requests against the collector. The tracker only
// depends on the Doer interface; HTTP is the net/http implementation.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/elnormous/contenttype"
)

// ErrNoResponse is returned when a Doer reports success without a response.
var ErrNoResponse = errors.New("transport: no response")

const (
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
	AcceptHeader        = "Accept"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// Request is a single collector call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is what came back from the collector.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the response declares a JSON body.
func (r *Response) IsJSON() bool {
	if r == nil || r.Header == nil {
		return false
	}
	ct := r.Header.Get(ContentTypeHeader)
	if ct == "" {
		return false
	}
	mt := contenttype.NewMediaType(ct)
	return mt.Matches(jsonMediaType)
}

// StatusError is returned alongside the response when the collector answers
// with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return "transport: unexpected status " + e.Status
	}
	return "transport: unexpected status " + strconv.Itoa(e.StatusCode)
}

// Doer performs collector requests. Implementations must be safe for
// concurrent use. A non-nil error means the request failed; the response may
// still be returned for inspection.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Bearer formats tok as a bearer Authorization value.
func Bearer(tok string) string {
	return "Bearer " + tok
}

// BaseURL builds http(s)://host[:port][basePath]/. The port is omitted when
// zero or equal to the scheme default.
func BaseURL(host string, port int, secure bool, basePath string) string {
	scheme := "http"
	defaultPort := 80
	if secure {
		scheme = "https"
		defaultPort = 443
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	if port != 0 && port != defaultPort {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(port))
	}
	if p := strings.Trim(basePath, "/"); p != "" {
		b.WriteString("/")
		b.WriteString(p)
	}
	b.WriteString("/")
	return b.String()
}

// Join appends path to base with exactly one slash between them.
func Join(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func statusError(res *http.Response) error {
	return &StatusError{StatusCode: res.StatusCode, Status: res.Status}
}

func wrap(method, url string, err error) error {
	return fmt.Errorf("%s %s: %w", method, url, err)
}

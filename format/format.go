// Package format serializes batches of tracked events into the wire formats
// accepted by the collector: CSV, XML, JSON and xAPI statements.
//
// Every encoder is a pure function of the event batch and, for xAPI, a
// snapshot of the session's actor and object id.
package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/tracker-go/events"
)

// ErrUnknownFormat is returned for a format name outside the closed set.
var ErrUnknownFormat = errors.New("format: unknown trace format")

// Format selects a wire encoding. The set is closed.
type Format string

const (
	JSON Format = "json"
	XML  Format = "xml"
	XAPI Format = "xapi"
	CSV  Format = "csv"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{JSON, XML, XAPI, CSV}
}

const crlf = "\r\n"

var (
	jsonMediaType = contenttype.NewMediaType("application/json")
	xmlMediaType  = contenttype.NewMediaType("application/xml")
	csvMediaType  = contenttype.NewMediaType("text/csv")
)

// ParseFormat maps a name onto the closed format set.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case JSON, XML, XAPI, CSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) String() string { return string(f) }

// Valid reports whether f belongs to the closed format set.
func (f Format) Valid() bool {
	_, err := ParseFormat(string(f))
	return err == nil
}

// MediaType is the media type announced when sending a batch in format f.
func (f Format) MediaType() contenttype.MediaType {
	switch f {
	case XML:
		return xmlMediaType
	case CSV:
		return csvMediaType
	default:
		return jsonMediaType
	}
}

// ContentType is MediaType rendered for a Content-Type header.
func (f Format) ContentType() string {
	mt := f.MediaType()
	return mt.String()
}

// Statement carries the session data embedded in xAPI statements.
type Statement struct {
	// Actor is the raw JSON object captured when the session started.
	Actor string
	// ObjectID is the activity base id; it ends with a slash.
	ObjectID string
}

// Encode serializes batch as a single payload in format f.
func Encode(f Format, batch []events.Event, st Statement) (string, error) {
	items := make([]string, 0, len(batch))
	for _, ev := range batch {
		var (
			item string
			err  error
		)
		switch f {
		case JSON:
			item, err = jsonItem(ev)
		case XML:
			item = xmlItem(ev)
		case XAPI:
			item, err = xapiItem(ev, st)
		case CSV:
			item = csvItem(ev)
		default:
			return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
		}
		if err != nil {
			return "", fmt.Errorf("encode %s event %q: %w", f, ev.Kind, err)
		}
		items = append(items, item)
	}

	switch f {
	case JSON, XAPI:
		return arrayOpen + strings.Join(items, ","+crlf) + arrayClose, nil
	case XML:
		return xmlOpen + strings.Join(items, crlf) + xmlClose, nil
	default:
		return strings.Join(items, crlf), nil
	}
}

// Append merges an encoded batch into an existing document of the same
// format so that repeated appends remain structurally valid: array items are
// spliced into the existing array, XML elements into the existing root, and
// CSV lines are joined with CRLF. Content that does not look like a document
// of format f is concatenated line-wise.
func Append(f Format, existing, batch string) string {
	if existing == "" {
		return batch
	}
	if batch == "" {
		return existing
	}

	switch f {
	case JSON, XAPI:
		if merged, ok := splice(existing, batch, "[", "]", ","+crlf); ok {
			return merged
		}
	case XML:
		if merged, ok := splice(existing, batch, "<TrackEvents>", "</TrackEvents>", crlf); ok {
			return merged
		}
	}

	if !strings.HasSuffix(existing, crlf) {
		existing += crlf
	}
	return existing + batch
}

func splice(existing, batch, opening, closing, sep string) (string, bool) {
	head := strings.TrimRight(existing, " \t\r\n")
	tail := strings.TrimLeft(batch, " \t\r\n")
	if !strings.HasSuffix(head, closing) || !strings.HasPrefix(tail, opening) {
		return "", false
	}
	head = strings.TrimRight(strings.TrimSuffix(head, closing), " \t\r\n")
	tail = strings.TrimLeft(strings.TrimPrefix(tail, opening), " \t\r\n")
	return head + sep + tail, true
}

const (
	arrayOpen  = "[" + crlf
	arrayClose = crlf + "]"
	xmlOpen    = "<TrackEvents>" + crlf
	xmlClose   = crlf + "</TrackEvents>"
)

// marshal encodes v without HTML escaping so URLs and markup in event
// targets reach the collector unchanged.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

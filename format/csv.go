package format

import (
	"strings"

	"github.com/ggoodman/tracker-go/events"
)

// csvItem renders one line: timestamp, event, target[, value].
// The value column is omitted entirely when the event has no value.
func csvItem(ev events.Event) string {
	var b strings.Builder
	b.WriteString(ev.FormattedTimestamp())
	b.WriteString(", ")
	b.WriteString(enquote(string(ev.Kind)))
	b.WriteString(", ")
	b.WriteString(enquote(ev.Target))
	if ev.HasValue() {
		b.WriteString(", ")
		b.WriteString(enquote(ev.Value))
	}
	return b.String()
}

// enquote applies the collector's CSV quoting rule. A field containing a
// double quote has every quote doubled and is wrapped in quotes; otherwise a
// field containing a comma or CRLF is wrapped verbatim; anything else is left
// bare.
func enquote(field string) string {
	switch {
	case strings.Contains(field, `"`):
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	case strings.Contains(field, crlf), strings.Contains(field, ","):
		return `"` + field + `"`
	default:
		return field
	}
}

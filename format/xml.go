package format

import (
	"encoding/xml"
	"strings"

	"github.com/ggoodman/tracker-go/events"
)

// xmlItem renders a TrackEvent element. Events without a value produce a
// self-closing element; a value is carried in a CDATA section.
func xmlItem(ev events.Event) string {
	var b strings.Builder
	b.WriteString(`<TrackEvent timestamp="`)
	attr(&b, ev.FormattedTimestamp())
	b.WriteString(`" event="`)
	attr(&b, string(ev.Kind))
	b.WriteString(`" target="`)
	attr(&b, ev.Target)
	b.WriteString(`"`)

	if !ev.HasValue() {
		b.WriteString(" />")
		return b.String()
	}

	b.WriteString("><![CDATA[")
	// A literal "]]>" would terminate the section early; split it across two.
	b.WriteString(strings.ReplaceAll(ev.Value, "]]>", "]]]]><![CDATA[>"))
	b.WriteString("]]></TrackEvent>")
	return b.String()
}

func attr(b *strings.Builder, s string) {
	// strings.Builder writes never fail.
	_ = xml.EscapeText(b, []byte(s))
}

package format

import (
	"encoding/json"

	"github.com/ggoodman/tracker-go/events"
)

const (
	vocabPrefix = "http://purl.org/xapi/games/"
	verbPrefix  = vocabPrefix + "verbs/"
	extPrefix   = vocabPrefix + "ext/"

	// ValueExtension is the result extension key carrying an event's value.
	ValueExtension = extPrefix + "value"
)

// VerbToken maps an event kind onto the xAPI games verb it represents.
// Kinds without a dedicated verb use their own name.
func VerbToken(k events.Kind) string {
	switch k {
	case events.Choice:
		return "choose"
	case events.Screen:
		return "viewed"
	case events.Zone:
		return "entered"
	case events.Var:
		return "updated"
	default:
		return string(k)
	}
}

// ActivityToken maps an event kind onto the activity type segment of the
// statement object id. Kinds without a dedicated activity use their own name.
func ActivityToken(k events.Kind) string {
	switch k {
	case events.Choice:
		return "choice"
	case events.Screen:
		return "screen"
	case events.Zone:
		return "zone"
	case events.Var:
		return "variable"
	default:
		return string(k)
	}
}

// VerbID is the full verb IRI for kind k.
func VerbID(k events.Kind) string {
	return verbPrefix + VerbToken(k)
}

// ObjectID is the full activity id for an event of kind k on target.
func ObjectID(base string, k events.Kind, target string) string {
	return base + ActivityToken(k) + "/" + target
}

type xapiRef struct {
	ID string `json:"id"`
}

type xapiResult struct {
	Extensions map[string]string `json:"extensions"`
}

type xapiStatement struct {
	Timestamp string          `json:"timestamp"`
	Actor     json.RawMessage `json:"actor"`
	Verb      xapiRef         `json:"verb"`
	Object    xapiRef         `json:"object"`
	Result    *xapiResult     `json:"result,omitempty"`
}

// xapiItem renders one statement. The actor is embedded raw and must be a
// valid JSON value; a session without an actor yet encodes it as null.
func xapiItem(ev events.Event, st Statement) (string, error) {
	var actor json.RawMessage
	if st.Actor != "" {
		actor = json.RawMessage(st.Actor)
	}

	stmt := xapiStatement{
		Timestamp: ev.FormattedTimestamp(),
		Actor:     actor,
		Verb:      xapiRef{ID: VerbID(ev.Kind)},
		Object:    xapiRef{ID: ObjectID(st.ObjectID, ev.Kind, ev.Target)},
	}
	if ev.HasValue() {
		stmt.Result = &xapiResult{Extensions: map[string]string{ValueExtension: ev.Value}}
	}

	return marshal(stmt)
}

package format

import "github.com/ggoodman/tracker-go/events"

type jsonEvent struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Target    string `json:"target"`
	Value     string `json:"value,omitempty"`
}

func jsonItem(ev events.Event) (string, error) {
	return marshal(jsonEvent{
		Timestamp: ev.FormattedTimestamp(),
		Event:     string(ev.Kind),
		Target:    ev.Target,
		Value:     ev.Value,
	})
}

package format

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ggoodman/tracker-go/events"
)

var ts = time.Date(2016, 3, 1, 9, 30, 0, 250_000_000, time.UTC)

const stamp = "2016-03-01T09:30:00.250Z"

func sample() []events.Event {
	return []events.Event{
		events.NewAt(events.Screen, "start", "", ts),
		events.NewAt(events.Var, "score", "42", ts),
		events.NewAt(events.Click, "Button1", "128x256", ts),
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Fatalf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
	if _, err := Encode(Format("yaml"), sample(), Statement{}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Encode: want ErrUnknownFormat, got %v", err)
	}
}

func TestFormatSetIsClosed(t *testing.T) {
	formats := Formats()
	formats[0] = "yaml"

	if _, err := ParseFormat("yaml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
	if got := Formats()[0]; got != JSON {
		t.Fatalf("Formats()[0] = %q", got)
	}
}

func TestContentType(t *testing.T) {
	tests := map[Format]string{
		JSON: "application/json",
		XAPI: "application/json",
		XML:  "application/xml",
		CSV:  "text/csv",
	}
	for f, want := range tests {
		if got := f.ContentType(); got != want {
			t.Errorf("%s: want %q, got %q", f, want, got)
		}
	}
}

func TestEnquote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{"line\r\nbreak", "\"line\r\nbreak\""},
		{"lone\nnewline", "lone\nnewline"},
		{`say "hi"`, `"say ""hi"""`},
		{`"quoted, with comma"`, `"""quoted, with comma"""`},
	}
	for _, tt := range tests {
		if got := enquote(tt.in); got != tt.want {
			t.Errorf("enquote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	got, err := Encode(CSV, sample(), Statement{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := strings.Join([]string{
		stamp + ", screen, start",
		stamp + ", var, score, 42",
		stamp + ", click, Button1, 128x256",
	}, "\r\n")
	if got != want {
		t.Fatalf("want:\n%q\ngot:\n%q", want, got)
	}
}

func TestEncodeCSVQuotesTargetAndValue(t *testing.T) {
	batch := []events.Event{events.NewAt(events.Choice, "door,left", `the "red" one`, ts)}
	got, err := Encode(CSV, batch, Statement{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := stamp + `, choice, "door,left", "the ""red"" one"`
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEncodeXML(t *testing.T) {
	got, err := Encode(XML, sample(), Statement{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "<TrackEvents>\r\n" +
		`<TrackEvent timestamp="` + stamp + `" event="screen" target="start" />` + "\r\n" +
		`<TrackEvent timestamp="` + stamp + `" event="var" target="score"><![CDATA[42]]></TrackEvent>` + "\r\n" +
		`<TrackEvent timestamp="` + stamp + `" event="click" target="Button1"><![CDATA[128x256]]></TrackEvent>` + "\r\n" +
		"</TrackEvents>"
	if got != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, got)
	}
}

type xmlDoc struct {
	XMLName xml.Name `xml:"TrackEvents"`
	Events  []struct {
		Timestamp string `xml:"timestamp,attr"`
		Event     string `xml:"event,attr"`
		Target    string `xml:"target,attr"`
		Value     string `xml:",chardata"`
	} `xml:"TrackEvent"`
}

func TestEncodeXMLIsWellFormed(t *testing.T) {
	batch := []events.Event{
		events.NewAt(events.Zone, `a<b & "c"`, "", ts),
		events.NewAt(events.Var, "payload", "x]]>y<z>", ts),
	}
	got, err := Encode(XML, batch, Statement{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var doc xmlDoc
	if err := xml.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("output is not well-formed XML: %v\n%s", err, got)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("want 2 elements, got %d", len(doc.Events))
	}
	if doc.Events[0].Target != `a<b & "c"` {
		t.Errorf("target round-trip: got %q", doc.Events[0].Target)
	}
	if doc.Events[1].Value != "x]]>y<z>" {
		t.Errorf("value round-trip: got %q", doc.Events[1].Value)
	}
}

func TestEncodeJSON(t *testing.T) {
	got, err := Encode(JSON, sample(), Statement{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "[\r\n" +
		`{"timestamp":"` + stamp + `","event":"screen","target":"start"},` + "\r\n" +
		`{"timestamp":"` + stamp + `","event":"var","target":"score","value":"42"},` + "\r\n" +
		`{"timestamp":"` + stamp + `","event":"click","target":"Button1","value":"128x256"}` + "\r\n" +
		"]"
	if got != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, got)
	}
}

func TestEncodeJSONEscapes(t *testing.T) {
	batch := []events.Event{events.NewAt(events.Var, `quote"d`, "back\\slash\nline", ts)}
	got, err := Encode(JSON, batch, Statement{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded []map[string]string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, got)
	}
	if decoded[0]["target"] != `quote"d` || decoded[0]["value"] != "back\\slash\nline" {
		t.Fatalf("round-trip mismatch: %v", decoded[0])
	}
}

func TestVerbAndActivityTokens(t *testing.T) {
	tests := []struct {
		kind     events.Kind
		verb     string
		activity string
	}{
		{events.Choice, "choose", "choice"},
		{events.Screen, "viewed", "screen"},
		{events.Zone, "entered", "zone"},
		{events.Var, "updated", "variable"},
		{events.Click, "click", "click"},
	}
	for _, tt := range tests {
		if got := VerbToken(tt.kind); got != tt.verb {
			t.Errorf("VerbToken(%s) = %q, want %q", tt.kind, got, tt.verb)
		}
		if got := ActivityToken(tt.kind); got != tt.activity {
			t.Errorf("ActivityToken(%s) = %q, want %q", tt.kind, got, tt.activity)
		}
	}
}

func TestEncodeXAPI(t *testing.T) {
	st := Statement{
		Actor:    `{"name":"anon","account":{"homePage":"http://a2","name":"p1"}}`,
		ObjectID: "http://a2/games/demo/",
	}
	got, err := Encode(XAPI, sample(), st)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !strings.HasPrefix(got, "[\r\n") || !strings.HasSuffix(got, "\r\n]") {
		t.Fatalf("missing array framing: %q", got)
	}

	var stmts []struct {
		Timestamp string          `json:"timestamp"`
		Actor     json.RawMessage `json:"actor"`
		Verb      struct {
			ID string `json:"id"`
		} `json:"verb"`
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
		Result *struct {
			Extensions map[string]string `json:"extensions"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(got), &stmts); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, got)
	}
	if len(stmts) != 3 {
		t.Fatalf("want 3 statements, got %d", len(stmts))
	}

	first := stmts[0]
	if first.Timestamp != stamp {
		t.Errorf("timestamp: got %q", first.Timestamp)
	}
	if string(first.Actor) != st.Actor {
		t.Errorf("actor: want %s, got %s", st.Actor, first.Actor)
	}
	if want := "http://purl.org/xapi/games/verbs/viewed"; first.Verb.ID != want {
		t.Errorf("verb: want %q, got %q", want, first.Verb.ID)
	}
	if want := "http://a2/games/demo/screen/start"; first.Object.ID != want {
		t.Errorf("object: want %q, got %q", want, first.Object.ID)
	}
	if first.Result != nil {
		t.Errorf("screen statement should carry no result")
	}

	second := stmts[1]
	if want := "http://a2/games/demo/variable/score"; second.Object.ID != want {
		t.Errorf("object: want %q, got %q", want, second.Object.ID)
	}
	if second.Result == nil || second.Result.Extensions[ValueExtension] != "42" {
		t.Errorf("result: got %+v", second.Result)
	}

	if want := "http://purl.org/xapi/games/verbs/click"; stmts[2].Verb.ID != want {
		t.Errorf("verb: want %q, got %q", want, stmts[2].Verb.ID)
	}
}

func TestEncodeXAPIWithoutActor(t *testing.T) {
	got, err := Encode(XAPI, sample()[:1], Statement{ObjectID: "o/"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(got, `"actor":null`) {
		t.Fatalf("want null actor, got %s", got)
	}
}

func TestEncodeXAPIInvalidActor(t *testing.T) {
	_, err := Encode(XAPI, sample(), Statement{Actor: `{"name":`, ObjectID: "o/"})
	if err == nil {
		t.Fatal("want error for malformed actor")
	}
}

func TestAppendMatchesSingleEncode(t *testing.T) {
	all := sample()
	st := Statement{Actor: `{"name":"anon"}`, ObjectID: "http://a2/"}

	for _, f := range Formats() {
		t.Run(f.String(), func(t *testing.T) {
			a, err := Encode(f, all[:2], st)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			b, err := Encode(f, all[2:], st)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			whole, err := Encode(f, all, st)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			if got := Append(f, a, b); got != whole {
				t.Fatalf("want:\n%q\ngot:\n%q", whole, got)
			}
			if got := Append(f, "", whole); got != whole {
				t.Fatalf("append to empty: got %q", got)
			}
		})
	}
}

func TestAppendForeignContent(t *testing.T) {
	got := Append(JSON, "legacy line", "[\r\n{}\r\n]")
	if want := "legacy line\r\n[\r\n{}\r\n]"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

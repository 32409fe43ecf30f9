// Package extract pulls individual fields out of JSON-shaped response bodies
// without decoding the whole document. The collector's responses are known to
// be well formed; only a handful of fields are ever needed from them.
package extract

import "strings"

type scanState int

const (
	trackDepth scanState = iota
	inString
	inEscape
)

// Object returns the raw text of the object value of field, from its opening
// brace through the matching closing brace. Nested objects are kept intact.
// Braces inside string literals do not count towards nesting.
//
// The second result is false when the field is absent or the object is not
// closed before the end of body.
func Object(body, field string) (string, bool) {
	key := `"` + field + `":{`
	idx := strings.Index(body, key)
	if idx < 0 {
		return "", false
	}

	start := idx + len(key) - 1
	depth := 1
	state := trackDepth

	for i := start + 1; i < len(body); i++ {
		c := body[i]
		switch state {
		case trackDepth:
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return body[start : i+1], true
				}
			case '"':
				state = inString
			}
		case inString:
			switch c {
			case '\\':
				state = inEscape
			case '"':
				state = trackDepth
			}
		case inEscape:
			state = inString
		}
	}

	return "", false
}

// Scalar returns the contents of the string value of field, up to the next
// unescaped quote. Escape sequences are returned verbatim.
func Scalar(body, field string) (string, bool) {
	prefix := `"` + field + `":"`
	idx := strings.Index(body, prefix)
	if idx < 0 {
		return "", false
	}
	rest := body[idx+len(prefix):]

	escaped := false
	for i := 0; i < len(rest); i++ {
		switch {
		case escaped:
			escaped = false
		case rest[i] == '\\':
			escaped = true
		case rest[i] == '"':
			return rest[:i], true
		}
	}

	return "", false
}

package srv3

import "strings"

// Format version this parser understands. Other versions still parse best
// effort, with a warning.
const FormatVersion = "3"

// Probe reports whether data looks like an SRV3 document: the timedtext
// root marker together with the known format version marker.
func Probe(data []byte) bool {
	s := string(data)
	return strings.Contains(s, "<timedtext") && strings.Contains(s, `format="`+FormatVersion+`"`)
}

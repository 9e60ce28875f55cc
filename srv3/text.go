package srv3

import "strings"

// Markers YTSubConverter leaves in exported text. The padding form protects
// a space from trimming on the YouTube side; once here both the markers and
// the protected space have served their purpose and must go.
const (
	zeroWidthSpace = "​"
	paddingSpace   = zeroWidthSpace + " " + zeroWidthSpace
)

// CleanText removes zero-width-space markers from segment text. A full
// padding marker is removed together with the space it protects, a bare
// marker is removed keeping the text around it. Longer match wins, so the
// scan never mistakes the head of a padding marker for a bare one. Clean
// input comes back unchanged.
func CleanText(text string) string {
	i := strings.Index(text, zeroWidthSpace)
	if i < 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	for {
		out.WriteString(text[:i])
		text = text[i:]
		if strings.HasPrefix(text, paddingSpace) {
			text = text[len(paddingSpace):]
		} else {
			text = text[len(zeroWidthSpace):]
		}
		i = strings.Index(text, zeroWidthSpace)
		if i < 0 {
			out.WriteString(text)
			return out.String()
		}
	}
}

package sink

import (
	"bytes"
	"encoding/xml"
	"time"
)

const (
	fontCharWidth = 0.58 // average glyph width relative to font size
	ellipsis      = "…"
)

// escapeXML escapes s for use in SVG text and attribute values.
func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// truncate shortens s to fit width pixels at fontSize, appending an
// ellipsis when it has to cut. It counts runes, not bytes.
func truncate(s string, width, fontSize float64) string {
	maxChars := int(width / (fontSize * fontCharWidth))
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	if maxChars <= 1 {
		return ""
	}
	return string(runes[:maxChars-1]) + ellipsis
}

// dateRange formats an inclusive range the way the planner shows it:
// "05.03.-10.03." or a single "05.03." for one-day items.
func dateRange(start, end time.Time) string {
	const layout = "02.01."
	if start.Equal(end) {
		return start.Format(layout)
	}
	return start.Format(layout) + "-" + end.Format(layout)
}

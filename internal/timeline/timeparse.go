package timeline

import (
	"regexp"
	"strings"
	"time"
)

// Accepted spellings of a device timestamp. Bare clock times parse to the
// zero date, which keeps same-day interval arithmetic working.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"15:04:05",
}

var (
	traceIDPattern   = regexp.MustCompile(`Trace[:：]\s*(\d+)`)
	bracketedPattern = regexp.MustCompile(`\[[^\]]+\]`)
)

// ParseTimestamp parses a device-time cell value. It reports false for
// anything that matches none of the accepted layouts; callers treat that as
// "no usable time", never as an error.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractTraceID pulls the embedded trace id out of an event content string.
// Both the ASCII and the full-width colon spelling occur in the wild. Returns
// "" when the content carries no trace marker.
func ExtractTraceID(content string) string {
	m := traceIDPattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}

// FirstBracketed returns the first [...] substring of the content, brackets
// included, or "" if none exists. Trace summaries reuse it as the cluster's
// display timestamp.
func FirstBracketed(content string) string {
	return bracketedPattern.FindString(content)
}

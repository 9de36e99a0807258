package rules

import (
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"liftline/pkg/contracts/domain"
)

var (
	// First { through last }, newlines included.
	jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

	pyTruePattern  = regexp.MustCompile(`\bTrue\b`)
	pyFalsePattern = regexp.MustCompile(`\bFalse\b`)
	pyNonePattern  = regexp.MustCompile(`\bNone\b`)
)

// CommentJSON pulls the embedded payload out of a row's cell comments. The
// comments are concatenated in header order, the first {...} block is parsed
// as JSON, and when strict parsing fails a relaxed pass rewrites
// single-quoted, Python-flavored payloads into JSON spelling and tries again.
// Extraction is best effort: anything unparseable yields an empty map, never
// an error.
func CommentJSON(row domain.Row, headers []string) map[string]any {
	var sb strings.Builder
	for _, h := range headers {
		if c, ok := row.Cells[h]; ok && c.Comment != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(c.Comment)
		}
	}
	if sb.Len() == 0 {
		return map[string]any{}
	}

	block := jsonBlockPattern.FindString(sb.String())
	if block == "" {
		return map[string]any{}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(block), &payload); err == nil && payload != nil {
		return payload
	}

	relaxed := strings.ReplaceAll(block, "'", `"`)
	relaxed = pyTruePattern.ReplaceAllString(relaxed, "true")
	relaxed = pyFalsePattern.ReplaceAllString(relaxed, "false")
	relaxed = pyNonePattern.ReplaceAllString(relaxed, "null")

	payload = nil
	if err := json.Unmarshal([]byte(relaxed), &payload); err == nil && payload != nil {
		return payload
	}
	return map[string]any{}
}

package exporter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"liftline/internal/rules"
	"liftline/internal/timeline"
	"liftline/pkg/contracts/domain"
)

const attributePrefix = "  >> 全局属性: "

// TextRenderer turns an annotated timeline into the plain-text report handed
// to reviewers: one line per surviving row, tags between the timestamp and
// the content, global attributes on an indented follow-up line.
type TextRenderer struct {
	attrOrder []string
}

// NewTextRenderer creates a renderer. attrOrder fixes the k=v ordering of the
// attribute line; attributes not listed are appended in sorted order.
func NewTextRenderer(attrOrder []string) *TextRenderer {
	return &TextRenderer{attrOrder: attrOrder}
}

// Render produces the report text. Rows with empty content and rows tagged
// non-critical are left out; everything else appears in input order as
// "[<time>] <tags...> <content>". The result carries no trailing newline.
func (r *TextRenderer) Render(rows []domain.Row, headers []string) string {
	contentCol, ok := timeline.ContentColumn(headers)
	if !ok {
		return ""
	}
	timeCol, _ := timeline.TimeColumn(headers)

	var lines []string
	for _, row := range rows {
		content := row.StringValue(contentCol)
		if content == "" {
			continue
		}
		if row.HasTag(rules.TagNonCritical) {
			continue
		}

		var sb strings.Builder
		sb.WriteString("[")
		if timeCol != "" {
			sb.WriteString(row.StringValue(timeCol))
		}
		sb.WriteString("] ")
		for _, tag := range row.Tags {
			sb.WriteString(tag)
			sb.WriteString(" ")
		}
		sb.WriteString(content)
		lines = append(lines, sb.String())

		if len(row.GlobalAttributes) > 0 {
			lines = append(lines, attributePrefix+strings.Join(r.attributePairs(row.GlobalAttributes), ", "))
		}
	}
	return strings.Join(lines, "\n")
}

// attributePairs renders k=v pairs in the configured order, then any
// remaining keys sorted.
func (r *TextRenderer) attributePairs(attrs map[string]any) []string {
	pairs := make([]string, 0, len(attrs))
	rendered := make(map[string]struct{}, len(attrs))

	for _, name := range r.attrOrder {
		if value, ok := attrs[name]; ok {
			pairs = append(pairs, name+"="+formatValue(value))
			rendered[name] = struct{}{}
		}
	}

	var rest []string
	for name := range attrs {
		if _, done := rendered[name]; !done {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		pairs = append(pairs, name+"="+formatValue(attrs[name]))
	}
	return pairs
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

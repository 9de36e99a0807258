package domain

import (
	"strconv"
)

// Style keys recognized on a cell. Values are #RRGGBB strings.
const (
	StyleBackgroundColor = "backgroundColor"
	StyleFontColor       = "color"
)

// Cell represents one spreadsheet cell: an optional scalar value plus the
// visual hints and annotation attached to it. A nil Value means the cell was
// empty in the source; that absence is meaningful and must not be replaced
// with a zero value. Style is always non-nil on materialized cells, possibly
// empty. An empty Comment means no annotation.
type Cell struct {
	Value   any               `json:"value"`
	Style   map[string]string `json:"style"`
	Comment string            `json:"comment,omitempty"`
}

// Row represents one timeline event line. ID is the 1-based position among
// data rows (header excluded) and survives merging unchanged: removed rows
// disappear, survivors are never renumbered. Tags and GlobalAttributes are
// assigned by the rule engine after the structural stages.
type Row struct {
	ID               int             `json:"id"`
	Cells            map[string]Cell `json:"cells"`
	Tags             []string        `json:"tags,omitempty"`
	GlobalAttributes map[string]any  `json:"global_attributes,omitempty"`
}

// Sheet represents the materialized input dataset: the selected worksheet
// name, its ordered header list, and the rows that carried at least one
// non-empty cell.
type Sheet struct {
	Name    string   `json:"sheet_name"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// CellValue returns the raw value of the named column and whether the column
// exists on this row.
func (r Row) CellValue(column string) (any, bool) {
	c, ok := r.Cells[column]
	if !ok {
		return nil, false
	}
	return c.Value, true
}

// StringValue returns the named column's value rendered as a string. Absent
// columns and nil values yield "". Numeric values render without a trailing
// decimal point so that "53552" stays "53552" regardless of how the producer
// typed it.
func (r Row) StringValue(column string) string {
	v, ok := r.CellValue(column)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// WithCellValue returns a copy of the row whose named column carries the
// given value. The cell map and the touched cell are cloned; every other
// cell is shared with the receiver. Prior pipeline stages holding the
// original row never observe the change.
func (r Row) WithCellValue(column string, value any) Row {
	out := r
	out.Cells = make(map[string]Cell, len(r.Cells))
	for k, c := range r.Cells {
		out.Cells[k] = c
	}
	cell := out.Cells[column]
	cell.Value = value
	if cell.Style == nil {
		cell.Style = map[string]string{}
	}
	out.Cells[column] = cell
	return out
}

// WithAnnotations returns a copy of the row carrying the given tags and
// global attributes. Cells are shared with the receiver; the enrichment
// stage never touches cell content.
func (r Row) WithAnnotations(tags []string, attrs map[string]any) Row {
	out := r
	out.Tags = tags
	out.GlobalAttributes = attrs
	return out
}

// HasTag reports whether the row carries the given tag.
func (r Row) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

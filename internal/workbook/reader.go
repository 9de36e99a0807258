package workbook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"liftline/pkg/contracts/domain"
)

// Default palette entries that carry no operator intent. Cells painted or
// written in these colors are treated as unstyled.
var (
	backgroundFiltered = map[string]struct{}{
		"#000000":   {},
		"#FFFFFF":   {},
		"#00FFFFFF": {},
	}
	fontFiltered = map[string]struct{}{
		"#000000":   {},
		"#00FFFFFF": {},
	}
)

// Reader loads an exported controller timeline workbook into the row model,
// carrying cell values, marker colors, and cell comments along.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a workbook reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Read parses a workbook from src.
func (r *Reader) Read(ctx context.Context, src io.Reader) (*domain.Sheet, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return r.read(ctx, f)
}

// ReadFile parses the workbook at path.
func (r *Reader) ReadFile(ctx context.Context, path string) (*domain.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()
	return r.read(ctx, f)
}

func (r *Reader) read(ctx context.Context, f *excelize.File) (*domain.Sheet, error) {
	name := pickSheet(f.GetSheetList())
	if name == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	raw, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	sheet := &domain.Sheet{Name: name, Headers: []string{}, Rows: []domain.Row{}}
	if len(raw) == 0 {
		return sheet, nil
	}
	sheet.Headers = append(sheet.Headers, raw[0]...)

	comments := r.commentIndex(f, name)

	for i := 1; i < len(raw); i++ {
		if row, ok := r.buildRow(f, name, sheet.Headers, raw[i], i, comments); ok {
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	r.logger.InfoContext(ctx, "workbook parsed",
		slog.String("sheet", name),
		slog.Int("columns", len(sheet.Headers)),
		slog.Int("rows", len(sheet.Rows)))
	return sheet, nil
}

// pickSheet prefers the timeline sheet by name and falls back to the first
// sheet in the workbook.
func pickSheet(names []string) string {
	for _, name := range names {
		if strings.Contains(name, "时间线") || strings.Contains(strings.ToLower(name), "timeline") {
			return name
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// buildRow materializes one data row. The id is the row's 1-based position in
// the data region, so skipped blank rows leave gaps. Columns beyond the
// header width are ignored; rows without a single non-blank cell are dropped.
func (r *Reader) buildRow(f *excelize.File, sheet string, headers, values []string, dataIndex int, comments map[string]string) (domain.Row, bool) {
	hasData := false
	cells := make(map[string]domain.Cell, len(headers))

	for col, header := range headers {
		var value string
		if col < len(values) {
			value = values[col]
		}

		cell := domain.Cell{Style: map[string]string{}}
		if value != "" {
			cell.Value = value
		}
		if strings.TrimSpace(value) != "" {
			hasData = true
		}

		if ref, err := excelize.CoordinatesToCellName(col+1, dataIndex+1); err == nil {
			r.applyStyle(f, sheet, ref, &cell)
			if text, ok := comments[ref]; ok {
				cell.Comment = text
			}
		}
		cells[header] = cell
	}

	if !hasData {
		return domain.Row{}, false
	}
	return domain.Row{ID: dataIndex, Cells: cells}, true
}

// applyStyle records the cell's marker colors, normalized to #RRGGBB and
// filtered against the default palette. Style lookups are best effort.
func (r *Reader) applyStyle(f *excelize.File, sheet, ref string, cell *domain.Cell) {
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return
	}

	if len(style.Fill.Color) > 0 {
		if bg := normalizeColor(style.Fill.Color[0]); bg != "" {
			if _, skip := backgroundFiltered[bg]; !skip {
				cell.Style[domain.StyleBackgroundColor] = bg
			}
		}
	}
	if style.Font != nil && style.Font.Color != "" {
		if fg := normalizeColor(style.Font.Color); fg != "" {
			if _, skip := fontFiltered[fg]; !skip {
				cell.Style[domain.StyleFontColor] = fg
			}
		}
	}
}

// normalizeColor converts an ARGB or RGB hex string to "#RRGGBB", keeping the
// last six hex digits the way the sheet exporters do.
func normalizeColor(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) < 6 {
		return ""
	}
	return "#" + strings.ToUpper(s[len(s)-6:])
}

// commentIndex maps cell references to comment text for one sheet.
func (r *Reader) commentIndex(f *excelize.File, sheet string) map[string]string {
	index := make(map[string]string)
	list, err := f.GetComments(sheet)
	if err != nil {
		return index
	}
	for _, c := range list {
		text := c.Text
		if text == "" {
			var sb strings.Builder
			for _, run := range c.Paragraph {
				sb.WriteString(run.Text)
			}
			text = sb.String()
		}
		if text != "" {
			index[c.Cell] = text
		}
	}
	return index
}

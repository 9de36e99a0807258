package exporter

import (
	"liftline/internal/rules"
	"liftline/internal/timeline"
	"liftline/pkg/contracts/domain"
)

// DebugReport collects the diagnostic views of an annotated timeline: which
// rows the non-critical rules suppressed, which rows got a delayed-upload
// tag, and which rows carry global attributes. Rows appear in input order.
func (r *TextRenderer) DebugReport(rows []domain.Row, headers []string) *domain.DebugReport {
	contentCol, _ := timeline.ContentColumn(headers)
	timeCol, _ := timeline.TimeColumn(headers)

	report := &domain.DebugReport{
		IgnoredRows:   []domain.IgnoredRow{},
		DelayedRows:   []domain.DelayedRow{},
		AttributeRows: []domain.AttributeRow{},
	}

	for _, row := range rows {
		var content, rowTime string
		if contentCol != "" {
			content = row.StringValue(contentCol)
		}
		if timeCol != "" {
			rowTime = row.StringValue(timeCol)
		}

		if row.HasTag(rules.TagNonCritical) {
			report.IgnoredRows = append(report.IgnoredRows, domain.IgnoredRow{
				ID:      row.ID,
				Time:    rowTime,
				Content: content,
				Reason:  rules.IgnoredReason,
			})
		}

		if hasDelayTag(row) {
			report.DelayedRows = append(report.DelayedRows, domain.DelayedRow{
				ID:           row.ID,
				Time:         rowTime,
				Content:      content,
				DelayMinutes: delayMinutesOf(row),
			})
		}

		if len(row.GlobalAttributes) > 0 {
			report.AttributeRows = append(report.AttributeRows, domain.AttributeRow{
				ID:         row.ID,
				Time:       rowTime,
				Content:    content,
				Attributes: r.attributePairs(row.GlobalAttributes),
			})
		}
	}
	return report
}

func hasDelayTag(row domain.Row) bool {
	for _, tag := range row.Tags {
		if rules.IsDelayTag(tag) {
			return true
		}
	}
	return false
}

func delayMinutesOf(row domain.Row) int {
	switch v := row.GlobalAttributes[rules.DelayAttribute].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

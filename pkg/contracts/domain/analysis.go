package domain

// AnalysisResult represents the outcome of one pipeline invocation over a
// single workbook: the transformed rows, the rendered text block handed to
// downstream summarization, and the audit report.
type AnalysisResult struct {
	SheetName string       `json:"sheet_name"`
	Headers   []string     `json:"headers"`
	Rows      []Row        `json:"rows"`
	Text      string       `json:"text"`
	Debug     *DebugReport `json:"debug,omitempty"`
}

// DebugReport represents the rule-audit view of a run: which rows were
// suppressed and why, which were flagged as delayed, and which yielded
// extracted attributes. Lists preserve row order.
type DebugReport struct {
	IgnoredRows   []IgnoredRow   `json:"ignored_rows"`
	DelayedRows   []DelayedRow   `json:"delayed_rows"`
	AttributeRows []AttributeRow `json:"attribute_rows"`
}

// IgnoredRow represents a row dropped from the rendered text.
type IgnoredRow struct {
	ID      int    `json:"id"`
	Time    string `json:"time"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// DelayedRow represents a row whose content-embedded timestamp trails the
// row's own device time by more than the configured threshold.
type DelayedRow struct {
	ID           int    `json:"id"`
	Time         string `json:"time"`
	Content      string `json:"content"`
	DelayMinutes int    `json:"delay_minutes"`
}

// AttributeRow represents a row with at least one extracted global
// attribute, each rendered as "key=value".
type AttributeRow struct {
	ID         int      `json:"id"`
	Time       string   `json:"time"`
	Content    string   `json:"content"`
	Attributes []string `json:"attributes"`
}

// AnalysisOptions represents per-invocation overrides accepted at the
// boundary. Zero values defer to configuration.
type AnalysisOptions struct {
	DelayThresholdMinutes int  `json:"delay_threshold_minutes" validate:"min=0,max=1440"`
	IncludeDebug          bool `json:"include_debug"`
}

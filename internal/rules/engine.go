package rules

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"liftline/internal/timeline"
	"liftline/pkg/contracts/domain"
)

// Engine applies the tagging and attribute rules to a processed timeline. It
// is immutable after construction and safe for concurrent use.
type Engine struct {
	logger    *slog.Logger
	cfg       Config
	patterns  []*regexp.Regexp
	attrOrder []string
}

// NewEngine compiles the configured rule set. Invalid non-critical patterns
// fail construction rather than being skipped silently at row time.
func NewEngine(logger *slog.Logger, cfg Config) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Attributes == nil && cfg.NonCritical.Phrases == nil && cfg.NonCritical.Patterns == nil {
		cfg = DefaultConfig()
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.NonCritical.Patterns))
	for _, expr := range cfg.NonCritical.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile non-critical pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}

	order := make([]string, 0, len(cfg.Attributes)+1)
	seen := make(map[string]struct{}, len(cfg.Attributes)+1)
	for _, rule := range cfg.Attributes {
		if _, dup := seen[rule.Name]; dup {
			continue
		}
		seen[rule.Name] = struct{}{}
		order = append(order, rule.Name)
	}
	if _, dup := seen[DelayAttribute]; !dup {
		order = append(order, DelayAttribute)
	}

	for _, rule := range cfg.Attributes {
		if rule.Name != SyncFloorAttribute || rule.Transform == nil {
			continue
		}
		if rule.Transform.Kind == TransformOffsetInt && rule.Transform.Offset > 0 {
			// Sign-flipped legacy tables exist. Apply them as written, but
			// flag the drift from the -1 convention.
			logger.Warn("sync floor rule uses a positive offset, canonical convention is -1",
				slog.String("attribute", rule.Name),
				slog.Int("offset", rule.Transform.Offset))
		}
	}

	return &Engine{
		logger:    logger,
		cfg:       cfg,
		patterns:  patterns,
		attrOrder: order,
	}, nil
}

// AttributeOrder reports the deterministic rendering order for global
// attributes: the rule table order with the derived delay attribute last.
func (e *Engine) AttributeOrder() []string {
	out := make([]string, len(e.attrOrder))
	copy(out, e.attrOrder)
	return out
}

// DelayThresholdMinutes reports the configured delayed-upload threshold.
func (e *Engine) DelayThresholdMinutes() int {
	return e.cfg.DelayThresholdMinutes
}

// Annotate evaluates every rule against every row and returns a slice of the
// same length with tags and global attributes attached. Rows with empty
// content pass through untouched, as do all rows when the header set has no
// content column. Input rows are never mutated.
func (e *Engine) Annotate(ctx context.Context, rows []domain.Row, headers []string) []domain.Row {
	contentCol, ok := timeline.ContentColumn(headers)
	if !ok {
		return rows
	}
	timeCol, _ := timeline.TimeColumn(headers)

	out := make([]domain.Row, len(rows))
	tagged := 0
	for i, row := range rows {
		out[i] = e.annotateRow(row, headers, contentCol, timeCol)
		if len(out[i].Tags) > 0 {
			tagged++
		}
	}

	e.logger.DebugContext(ctx, "rule annotation complete",
		slog.Int("rows", len(rows)),
		slog.Int("tagged", tagged))
	return out
}

func (e *Engine) annotateRow(row domain.Row, headers []string, contentCol, timeCol string) domain.Row {
	content := row.StringValue(contentCol)
	if content == "" {
		return row
	}

	payload := CommentJSON(row, headers)
	attrs := ExtractAttributes(row, payload, e.cfg.Attributes)

	var rowTime string
	if timeCol != "" {
		rowTime = row.StringValue(timeCol)
	}
	minutes, hasDelay := delayMinutes(rowTime, content)
	if hasDelay && minutes > 0 {
		attrs[DelayAttribute] = minutes
	}

	var tags []string
	if e.isNonCritical(content) {
		tags = append(tags, TagNonCritical)
	}
	if hasDelay && minutes > e.cfg.DelayThresholdMinutes {
		tags = append(tags, DelayTag(minutes))
	}
	if e.isHumanOperation(row, content) {
		tags = append(tags, TagHumanOperation)
	}
	if strings.Contains(content, workOrderPhrase) {
		tags = append(tags, TagWorkOrder)
	}

	if len(tags) == 0 && len(attrs) == 0 {
		return row
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return row.WithAnnotations(tags, attrs)
}

func (e *Engine) isNonCritical(content string) bool {
	for _, phrase := range e.cfg.NonCritical.Phrases {
		if phrase != "" && strings.Contains(content, phrase) {
			return true
		}
	}
	for _, re := range e.patterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

func (e *Engine) isHumanOperation(row domain.Row, content string) bool {
	for _, cell := range row.Cells {
		if isPurpleBackground(cell.Style[domain.StyleBackgroundColor]) {
			return true
		}
	}
	for _, phrase := range humanOperationPhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

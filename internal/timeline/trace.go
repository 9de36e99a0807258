package timeline

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"liftline/pkg/contracts/domain"
)

// TraceFamily describes one diagnostic trace burst shape: the marker id that
// identifies the burst's center row and the full id set a complete burst
// carries. Ids are kept as strings because they are extracted from free text
// and compared, sorted, and rendered as strings throughout.
type TraceFamily struct {
	Label     string   `yaml:"label"`
	CenterID  string   `yaml:"center_id"`
	MemberIDs []string `yaml:"member_ids"`
}

// Contains reports whether the id belongs to the family's member set.
func (f TraceFamily) Contains(id string) bool {
	for _, m := range f.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// missingFrom returns the member ids absent from found, ascending.
func (f TraceFamily) missingFrom(found map[string]struct{}) []string {
	var missing []string
	for _, m := range f.MemberIDs {
		if _, ok := found[m]; !ok {
			missing = append(missing, m)
		}
	}
	sort.Strings(missing)
	return missing
}

// DefaultTraceFamilies returns the two burst shapes the controllers emit:
// the control trace (seven ids around center 53552) and the management trace
// (five ids around center 53504).
func DefaultTraceFamilies() []TraceFamily {
	return []TraceFamily{
		{
			Label:     "控制",
			CenterID:  "53552",
			MemberIDs: []string{"53552", "53553", "53554", "53555", "53556", "53557", "53558"},
		},
		{
			Label:     "管理",
			CenterID:  "53504",
			MemberIDs: []string{"53504", "53505", "53506", "53507", "53508"},
		},
	}
}

// AggregatorConfig holds the cluster-matching windows. Zero values take the
// production defaults.
type AggregatorConfig struct {
	Families []TraceFamily
	// IndexWindow bounds how far from the center, in row positions within
	// the device group, the time-window scan looks.
	IndexWindow int
	// RowWindow is the fallback scan radius used when the center row has no
	// parseable timestamp.
	RowWindow int
	// Before and After bound the companion interval relative to the center
	// time: a companion at center-Before up to center+After belongs.
	Before time.Duration
	After  time.Duration
}

// Aggregator collapses multi-row diagnostic trace bursts into single
// completeness summaries.
type Aggregator struct {
	logger      *slog.Logger
	families    []TraceFamily
	indexWindow int
	rowWindow   int
	before      time.Duration
	after       time.Duration
}

// NewAggregator creates a trace cluster aggregator with the given windows.
func NewAggregator(logger *slog.Logger, cfg AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Families) == 0 {
		cfg.Families = DefaultTraceFamilies()
	}
	if cfg.IndexWindow <= 0 {
		cfg.IndexWindow = 50
	}
	if cfg.RowWindow <= 0 {
		cfg.RowWindow = 20
	}
	if cfg.Before <= 0 {
		cfg.Before = 10 * time.Second
	}
	if cfg.After <= 0 {
		cfg.After = 20 * time.Second
	}
	return &Aggregator{
		logger:      logger,
		families:    cfg.Families,
		indexWindow: cfg.IndexWindow,
		rowWindow:   cfg.RowWindow,
		before:      cfg.Before,
		after:       cfg.After,
	}
}

// Aggregate collapses every trace cluster found in the rows and returns the
// surviving collection. Center rows keep their identity with the content
// replaced by the completeness summary; claimed companion rows are dropped.
// Sheets without a content column come back unchanged.
func (a *Aggregator) Aggregate(ctx context.Context, rows []domain.Row, headers []string) []domain.Row {
	if len(rows) == 0 {
		return rows
	}
	contentCol, ok := ContentColumn(headers)
	if !ok {
		return rows
	}
	timeCol, hasTimeCol := TimeColumn(headers)

	groups, order := PartitionByDevice(rows, headers)

	removed := make(map[int]struct{})
	replacements := make(map[int]string)
	clusters := 0

	for _, deviceKey := range order {
		indices := groups[deviceKey]

		// Ids are extracted once from the original contents; replacements
		// land in a single final pass, so a later cluster always sees the
		// pre-aggregation text.
		ids := make([]string, len(indices))
		for pos, idx := range indices {
			ids[pos] = ExtractTraceID(rows[idx].StringValue(contentCol))
		}

		for pos, idx := range indices {
			if _, claimed := removed[idx]; claimed {
				// Already consumed as a companion; not reused as a center.
				continue
			}
			family := a.familyForCenter(ids[pos])
			if family == nil {
				continue
			}

			found := map[string]struct{}{family.CenterID: {}}
			var companions []int

			centerTime := time.Time{}
			hasTime := false
			if hasTimeCol {
				centerTime, hasTime = ParseTimestamp(rows[idx].StringValue(timeCol))
			}

			scan := func(p int) {
				id := ids[p]
				if id == "" || !family.Contains(id) {
					return
				}
				found[id] = struct{}{}
				companions = append(companions, indices[p])
			}

			if hasTime {
				lo, hi := clampWindow(pos, a.indexWindow, len(indices))
				for p := lo; p <= hi; p++ {
					if p == pos {
						continue
					}
					t, parsed := ParseTimestamp(rows[indices[p]].StringValue(timeCol))
					if !parsed {
						continue
					}
					d := t.Sub(centerTime)
					if d < -a.before || d > a.after {
						continue
					}
					scan(p)
				}
			} else {
				lo, hi := clampWindow(pos, a.rowWindow, len(indices))
				for p := lo; p <= hi; p++ {
					if p != pos {
						scan(p)
					}
				}
			}

			content := rows[idx].StringValue(contentCol)
			replacements[idx] = family.summary(FirstBracketed(content), family.missingFrom(found))
			for _, c := range companions {
				removed[c] = struct{}{}
			}
			clusters++
		}
	}

	out := make([]domain.Row, 0, len(rows)-len(removed))
	for i, row := range rows {
		if _, gone := removed[i]; gone {
			continue
		}
		if summary, ok := replacements[i]; ok {
			row = row.WithCellValue(contentCol, summary)
		}
		out = append(out, row)
	}

	if clusters > 0 {
		a.logger.DebugContext(ctx, "aggregated trace clusters",
			slog.Int("clusters", clusters),
			slog.Int("rows_in", len(rows)),
			slog.Int("rows_out", len(out)))
	}
	return out
}

func (a *Aggregator) familyForCenter(id string) *TraceFamily {
	if id == "" {
		return nil
	}
	for i := range a.families {
		if a.families[i].CenterID == id {
			return &a.families[i]
		}
	}
	return nil
}

// summary builds the human-readable cluster line: the display timestamp taken
// from the center row's content, then either the completeness mark or the
// missing id list joined with the full-width separator.
func (f TraceFamily) summary(timestamp string, missing []string) string {
	if len(missing) == 0 {
		return f.Label + "Trace" + timestamp + "（完整）"
	}
	return f.Label + "Trace" + timestamp + " 缺少" + strings.Join(missing, "、") + "数据"
}

func clampWindow(pos, radius, size int) (int, int) {
	lo := pos - radius
	if lo < 0 {
		lo = 0
	}
	hi := pos + radius
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi
}

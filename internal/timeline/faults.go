package timeline

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"liftline/pkg/contracts/domain"
)

// FaultMarkerD240 marks a row as carrying D240 fault codes, either in its
// type column or inline in the content.
const FaultMarkerD240 = "故障代码D240"

// fallbackInnerTime orders rows without a parseable inner timestamp before
// every real one.
const fallbackInnerTime = "0000-00-00 00:00:00"

var (
	// [2025-12-08 10:18:04 120ms] ...
	innerTimePattern = regexp.MustCompile(`\[(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+(\d+)ms\]`)
	// ['434(安全回路（#29）断开)']
	faultEntryPattern = regexp.MustCompile(`(\['[^']+'\])`)
	faultCodePattern  = regexp.MustCompile(`^\s*'([A-Za-z0-9]+)`)
)

// FaultMerger deduplicates D240 fault rows. Controllers report one fault
// burst as several rows sharing a millisecond-resolution inner timestamp
// nested inside the same device-time bucket; the merger collapses each burst
// into a single row with its fault entries sorted by code.
type FaultMerger struct {
	logger *slog.Logger
}

// NewFaultMerger creates a fault-code merger.
func NewFaultMerger(logger *slog.Logger) *FaultMerger {
	if logger == nil {
		logger = slog.Default()
	}
	return &FaultMerger{logger: logger}
}

type parsedFault struct {
	innerTime string
	innerMS   int
	part      string
}

type mergeKey struct {
	innerTime string
	innerMS   int
}

type faultEntry struct {
	text string
	code string
}

// Merge collapses fault bursts per device group and device-time bucket and
// returns the surviving rows. Survivors keep their original ids; surplus
// original slots beyond the number of merged bursts are dropped. Sheets
// missing the content or time column come back unchanged.
func (m *FaultMerger) Merge(ctx context.Context, rows []domain.Row, headers []string) []domain.Row {
	if len(rows) == 0 {
		return rows
	}
	contentCol, okContent := ContentColumn(headers)
	timeCol, okTime := TimeColumn(headers)
	if !okContent || !okTime {
		return rows
	}
	typeCol, _ := TypeColumn(headers)

	groups, order := PartitionByDevice(rows, headers)

	removed := make(map[int]struct{})
	replacements := make(map[int]string)

	for _, deviceKey := range order {
		indices := groups[deviceKey]

		// Bucket the group by the raw device-time string; rows without one
		// share a single fallback bucket.
		buckets := make(map[string][]int)
		var bucketOrder []string
		for _, idx := range indices {
			key := rows[idx].StringValue(timeCol)
			if key == "" {
				key = UnknownKey
			}
			if _, seen := buckets[key]; !seen {
				bucketOrder = append(bucketOrder, key)
			}
			buckets[key] = append(buckets[key], idx)
		}

		for _, timeKey := range bucketOrder {
			m.mergeBucket(rows, buckets[timeKey], contentCol, typeCol, removed, replacements)
		}
	}

	if len(removed) == 0 && len(replacements) == 0 {
		return rows
	}

	out := make([]domain.Row, 0, len(rows)-len(removed))
	for i, row := range rows {
		if _, gone := removed[i]; gone {
			continue
		}
		if content, ok := replacements[i]; ok {
			row = row.WithCellValue(contentCol, content)
		}
		out = append(out, row)
	}

	m.logger.DebugContext(ctx, "merged fault rows",
		slog.Int("rows_in", len(rows)),
		slog.Int("rows_out", len(out)))
	return out
}

// mergeBucket merges the D240 rows of one device-time bucket, recording
// content replacements for the leading original slots and removals for the
// surplus ones.
func (m *FaultMerger) mergeBucket(rows []domain.Row, bucket []int, contentCol, typeCol string, removed map[int]struct{}, replacements map[int]string) {
	var faultRows []int
	for _, idx := range bucket {
		typeVal := ""
		if typeCol != "" {
			typeVal = rows[idx].StringValue(typeCol)
		}
		content := rows[idx].StringValue(contentCol)
		if strings.Contains(typeVal, FaultMarkerD240) || strings.Contains(content, FaultMarkerD240) {
			faultRows = append(faultRows, idx)
		}
	}
	if len(faultRows) == 0 {
		return
	}

	grouped := make(map[mergeKey][]parsedFault)
	var keys []mergeKey
	for _, idx := range faultRows {
		pf := parseInnerTimestamp(rows[idx].StringValue(contentCol))
		key := mergeKey{pf.innerTime, pf.innerMS}
		if _, seen := grouped[key]; !seen {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], pf)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].innerTime != keys[j].innerTime {
			return keys[i].innerTime < keys[j].innerTime
		}
		return keys[i].innerMS < keys[j].innerMS
	})

	rebuilt := make([]string, 0, len(keys))
	for _, key := range keys {
		entries := collectEntries(grouped[key])
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].code < entries[j].code
		})
		var sb strings.Builder
		sb.WriteString("[")
		sb.WriteString(key.innerTime)
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(key.innerMS))
		sb.WriteString("ms] ")
		for _, e := range entries {
			sb.WriteString(e.text)
		}
		rebuilt = append(rebuilt, sb.String())
	}

	// Earliest burst lands in the earliest original slot; slots beyond the
	// burst count disappear.
	for i, idx := range faultRows {
		if i < len(rebuilt) {
			replacements[idx] = rebuilt[i]
		} else {
			removed[idx] = struct{}{}
		}
	}
}

// parseInnerTimestamp splits a fault row's content into the inner timestamp
// and the fault part after it. Rows without the bracketed timestamp sort
// first and keep their whole content as the fault part.
func parseInnerTimestamp(content string) parsedFault {
	loc := innerTimePattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return parsedFault{innerTime: fallbackInnerTime, innerMS: 0, part: content}
	}
	innerTime := content[loc[2]:loc[3]]
	ms, _ := strconv.Atoi(content[loc[4]:loc[5]])
	part := strings.TrimSpace(content[loc[1]:])
	return parsedFault{innerTime: innerTime, innerMS: ms, part: part}
}

// collectEntries pulls the ['...'] fault entries out of every fault part in
// the group. The sort code is the leading alphanumeric token after the
// entry's opening quote, falling back to the whole entry text; parts carrying
// no bracketed entry at all are kept verbatim under the fixed code "0".
func collectEntries(group []parsedFault) []faultEntry {
	var entries []faultEntry
	for _, pf := range group {
		matches := faultEntryPattern.FindAllString(pf.part, -1)
		if len(matches) == 0 {
			entries = append(entries, faultEntry{text: pf.part, code: "0"})
			continue
		}
		for _, text := range matches {
			body := strings.Trim(text, "[]")
			code := text
			if m := faultCodePattern.FindStringSubmatch(body); m != nil {
				code = m[1]
			}
			entries = append(entries, faultEntry{text: text, code: code})
		}
	}
	return entries
}

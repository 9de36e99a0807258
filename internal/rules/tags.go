package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"liftline/internal/timeline"
)

// Tag labels attached to rows. The renderer prints them verbatim between the
// timestamp and the content.
const (
	TagNonCritical    = "【非关键】"
	TagHumanOperation = "【人为操作】"
	TagWorkOrder      = "【工单】"
)

// DelayAttribute is the derived global attribute carrying the whole-minute
// lag between a row's device time and the timestamp embedded in its content.
// It is recorded whenever the lag is positive, independent of the tagging
// threshold.
const DelayAttribute = "延迟时长"

// SyncFloorAttribute is the control-synchronization floor attribute. Its
// canonical transform subtracts one from the raw floor value; rule tables
// carrying the historical +1 offset are applied as written but flagged.
const SyncFloorAttribute = "同步层"

// IgnoredReason is the debug-report reason recorded for rows suppressed by
// the non-critical rules.
const IgnoredReason = "Matched non-critical keyword/regex"

var (
	humanOperationPhrases = []string{"检修", "机修工单"}
	workOrderPhrase       = "工单"

	contentTimePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}`)
)

// DelayTag renders the delayed-upload tag for the given floored minute count.
func DelayTag(minutes int) string {
	return fmt.Sprintf("【延迟上传%d分钟】", minutes)
}

// IsDelayTag reports whether the tag is a delayed-upload tag.
func IsDelayTag(tag string) bool {
	return strings.HasPrefix(tag, "【延迟上传") && strings.HasSuffix(tag, "分钟】")
}

// delayMinutes computes the whole-minute lag between the row's device time
// and the first timestamp embedded in the content. Both must parse; anything
// else means the rule does not fire.
func delayMinutes(rowTime, content string) (int, bool) {
	embedded := contentTimePattern.FindString(content)
	if embedded == "" {
		return 0, false
	}
	contentTime, err := time.Parse("2006-01-02 15:04:05", embedded)
	if err != nil {
		return 0, false
	}
	deviceTime, ok := timeline.ParseTimestamp(rowTime)
	if !ok {
		return 0, false
	}
	return int(deviceTime.Sub(contentTime).Minutes()), true
}

// isPurpleBackground applies the marker-color heuristic operators use for
// manual interventions: a strong red and blue channel with green suppressed
// reads as purple on the sheet.
func isPurpleBackground(hex string) bool {
	if len(hex) != 7 || hex[0] != '#' {
		return false
	}
	r, err := strconv.ParseInt(hex[1:3], 16, 0)
	if err != nil {
		return false
	}
	g, err := strconv.ParseInt(hex[3:5], 16, 0)
	if err != nil {
		return false
	}
	b, err := strconv.ParseInt(hex[5:7], 16, 0)
	if err != nil {
		return false
	}
	return r > 100 && b > 100 && g < 100
}

package timeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftline/pkg/contracts/domain"
)

func contentOf(rows []domain.Row, id int) string {
	for _, r := range rows {
		if r.ID == id {
			return r.StringValue("信息内容")
		}
	}
	return ""
}

func hasRowID(rows []domain.Row, id int) bool {
	for _, r := range rows {
		if r.ID == id {
			return true
		}
	}
	return false
}

func TestAggregateCompleteControlCluster(t *testing.T) {
	base := "2025-12-08 10:00:0"
	rows := []domain.Row{
		makeRow(1, "474", base+"0", "", "[2025-12-08 10:00:00 15ms] 控制Trace: 53552"),
		makeRow(2, "474", base+"1", "", "控制Trace: 53553"),
		makeRow(3, "474", base+"1", "", "控制Trace: 53554"),
		makeRow(4, "474", base+"2", "", "控制Trace: 53555"),
		makeRow(5, "474", base+"2", "", "控制Trace: 53556"),
		makeRow(6, "474", base+"3", "", "控制Trace: 53557"),
		makeRow(7, "474", base+"3", "", "控制Trace: 53558"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 1, "companions are folded into the center")
	assert.Equal(t, 1, out[0].ID, "center keeps its row id")
	assert.Equal(t, "控制Trace[2025-12-08 10:00:00 15ms]（完整）", out[0].StringValue("信息内容"))
}

func TestAggregateReportsMissingIDs(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "[2025-12-08 10:00:00 15ms] 控制Trace: 53552"),
		makeRow(2, "474", "2025-12-08 10:00:01", "", "控制Trace: 53554"),
		makeRow(3, "474", "2025-12-08 10:00:01", "", "控制Trace: 53555"),
		makeRow(4, "474", "2025-12-08 10:00:02", "", "控制Trace: 53556"),
		makeRow(5, "474", "2025-12-08 10:00:02", "", "控制Trace: 53557"),
		makeRow(6, "474", "2025-12-08 10:00:03", "", "控制Trace: 53558"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 1)
	assert.Equal(t, "控制Trace[2025-12-08 10:00:00 15ms] 缺少53553数据", out[0].StringValue("信息内容"))
}

func TestAggregateManagementCluster(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 11:00:00", "", "[2025-12-08 11:00:00 8ms] 管理Trace: 53504"),
		makeRow(2, "474", "2025-12-08 11:00:01", "", "管理Trace: 53505"),
		makeRow(3, "474", "2025-12-08 11:00:01", "", "管理Trace: 53506"),
		makeRow(4, "474", "2025-12-08 11:00:02", "", "管理Trace: 53507"),
		makeRow(5, "474", "2025-12-08 11:00:02", "", "管理Trace: 53508"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 1)
	assert.Equal(t, "管理Trace[2025-12-08 11:00:00 8ms]（完整）", out[0].StringValue("信息内容"))
}

func TestAggregateTimeWindowBounds(t *testing.T) {
	// 53553 sits exactly at -10s and 53555 exactly at +20s: both inside.
	// 53554 at -11s and 53556 at +21s: both outside.
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 09:59:49", "", "控制Trace: 53554"),
		makeRow(2, "474", "2025-12-08 09:59:50", "", "控制Trace: 53553"),
		makeRow(3, "474", "2025-12-08 10:00:00", "", "[t] 控制Trace: 53552"),
		makeRow(4, "474", "2025-12-08 10:00:20", "", "控制Trace: 53555"),
		makeRow(5, "474", "2025-12-08 10:00:21", "", "控制Trace: 53556"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 3)
	assert.True(t, hasRowID(out, 1), "row outside the lower bound survives")
	assert.True(t, hasRowID(out, 5), "row outside the upper bound survives")
	assert.False(t, hasRowID(out, 2))
	assert.False(t, hasRowID(out, 4))
	assert.Equal(t, "控制Trace[t] 缺少53554、53556、53557、53558数据", contentOf(out, 3))
}

func TestAggregateOverlappingClusters(t *testing.T) {
	// The companion at +18s sits inside the first center's [-10s,+20s] window
	// and inside the second's as -7s. Both clusters count it as present and
	// the row itself is dropped once.
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "[a] 控制Trace: 53552"),
		makeRow(2, "474", "2025-12-08 10:00:18", "", "控制Trace: 53553"),
		makeRow(3, "474", "2025-12-08 10:00:25", "", "[b] 控制Trace: 53552"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 2)
	assert.Equal(t, "控制Trace[a] 缺少53554、53555、53556、53557、53558数据", contentOf(out, 1))
	assert.Equal(t, "控制Trace[b] 缺少53554、53555、53556、53557、53558数据", contentOf(out, 3))
}

func TestAggregateCenterConsumedAsCompanion(t *testing.T) {
	// A second center id inside the first cluster's window is claimed like any
	// other member and never seeds a cluster of its own.
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "[a] 控制Trace: 53552"),
		makeRow(2, "474", "2025-12-08 10:00:05", "", "[b] 控制Trace: 53552"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, "控制Trace[a] 缺少53553、53554、53555、53556、53557、53558数据", out[0].StringValue("信息内容"))
}

func TestAggregateIndexWindowLimit(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "控制Trace: 53553"),
		makeRow(2, "474", "2025-12-08 10:00:00", "", "到达楼层 5"),
		makeRow(3, "474", "2025-12-08 10:00:00", "", "控制Trace: 53552"),
		makeRow(4, "474", "2025-12-08 10:00:00", "", "开门到位"),
		makeRow(5, "474", "2025-12-08 10:00:00", "", "关门到位"),
		makeRow(6, "474", "2025-12-08 10:00:00", "", "控制Trace: 53554"),
	}

	agg := NewAggregator(nil, AggregatorConfig{IndexWindow: 2, RowWindow: 1})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	assert.False(t, hasRowID(out, 1), "member inside the index window is claimed")
	assert.True(t, hasRowID(out, 6), "member beyond the index window is not")
	assert.Contains(t, contentOf(out, 3), "缺少")
	assert.Contains(t, contentOf(out, 3), "53554")
}

func TestAggregateRowWindowFallback(t *testing.T) {
	// The center's time does not parse, so companions are taken by position
	// regardless of their own time values.
	rows := []domain.Row{
		makeRow(1, "474", "装置未上报", "", "控制Trace: 53552"),
		makeRow(2, "474", "2030-01-01 00:00:00", "", "控制Trace: 53553"),
		makeRow(3, "474", "", "", "控制Trace: 53554"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, "控制Trace 缺少53555、53556、53557、53558数据", out[0].StringValue("信息内容"),
		"no bracketed timestamp in the center content leaves the display slot empty")
}

func TestAggregateDeviceIsolation(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "[a] 控制Trace: 53552"),
		makeRow(2, "475", "2025-12-08 10:00:00", "", "[b] 控制Trace: 53552"),
		makeRow(3, "474", "2025-12-08 10:00:01", "", "控制Trace: 53553"),
		makeRow(4, "475", "2025-12-08 10:00:01", "", "控制Trace: 53553"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 2, "one summary per device, never merged across devices")
	assert.Equal(t, "控制Trace[a] 缺少53554、53555、53556、53557、53558数据", contentOf(out, 1))
	assert.Equal(t, "控制Trace[b] 缺少53554、53555、53556、53557、53558数据", contentOf(out, 2))
}

func TestAggregateLeavesUnrelatedRows(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "控制Trace: 53552"),
		makeRow(2, "474", "2025-12-08 10:00:01", "", "轿厢到达 3 层"),
		makeRow(3, "474", "2025-12-08 10:00:02", "", "控制Trace: 53553"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	require.Len(t, out, 2)
	assert.True(t, hasRowID(out, 2), "non-member rows inside the window survive")
	assert.Equal(t, "轿厢到达 3 层", contentOf(out, 2))
}

func TestAggregateIdempotent(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "[x] 控制Trace: 53552"),
		makeRow(2, "474", "2025-12-08 10:00:01", "", "控制Trace: 53553"),
		makeRow(3, "474", "2025-12-08 10:00:05", "", "等待指令"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	once := agg.Aggregate(context.Background(), rows, testHeaders)
	twice := agg.Aggregate(context.Background(), once, testHeaders)

	assert.Equal(t, once, twice)
}

func TestAggregateRowCountNeverGrows(t *testing.T) {
	var rows []domain.Row
	for i := 1; i <= 30; i++ {
		rows = append(rows, makeRow(i, "474", "2025-12-08 10:00:00", "", fmt.Sprintf("事件 %d", i)))
	}
	rows = append(rows, makeRow(31, "474", "2025-12-08 10:00:00", "", "控制Trace: 53552"))

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, testHeaders)

	assert.LessOrEqual(t, len(out), len(rows))
}

func TestAggregateWithoutContentColumn(t *testing.T) {
	rows := []domain.Row{makeRow(1, "474", "10:00:00", "", "控制Trace: 53552")}

	agg := NewAggregator(nil, AggregatorConfig{})
	out := agg.Aggregate(context.Background(), rows, []string{"序号", "合同号", "装置时间"})

	assert.Equal(t, rows, out)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "474", "2025-12-08 10:00:00", "", "[x] 控制Trace: 53552"),
		makeRow(2, "474", "2025-12-08 10:00:01", "", "控制Trace: 53553"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	_ = agg.Aggregate(context.Background(), rows, testHeaders)

	assert.Equal(t, "[x] 控制Trace: 53552", rows[0].StringValue("信息内容"),
		"the center's replacement must not leak into the input collection")
	assert.Equal(t, "控制Trace: 53553", rows[1].StringValue("信息内容"))
}

package timeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftline/pkg/contracts/domain"
)

func TestPipelineRunsStagesInOrder(t *testing.T) {
	sheet := domain.Sheet{
		Name:    "时间线",
		Headers: testHeaders,
		Rows: []domain.Row{
			makeRow(1, "474", "2025-12-08 10:00:00", "", "[2025-12-08 10:00:00 5ms] 控制Trace: 53552"),
			makeRow(2, "474", "2025-12-08 10:00:01", "", "控制Trace: 53553"),
			makeRow(3, "474", "2025-12-08 10:05:00", "运行记录", "轿厢上行"),
			makeRow(4, "474", "2025-12-08 10:18:04", "故障代码D240", "[2025-12-08 10:18:04 120ms] ['697(主回路断开)']"),
			makeRow(5, "474", "2025-12-08 10:18:04", "故障代码D240", "[2025-12-08 10:18:04 120ms] ['434(安全回路断开)']"),
		},
	}

	p := NewPipeline(nil, PipelineConfig{})
	out := p.Run(context.Background(), sheet)

	require.Len(t, out, 3)
	assert.Equal(t, "控制Trace[2025-12-08 10:00:00 5ms] 缺少53554、53555、53556、53557、53558数据",
		contentOf(out, 1))
	assert.Equal(t, "轿厢上行", contentOf(out, 3))
	assert.Equal(t, "[2025-12-08 10:18:04 120ms] ['434(安全回路断开)']['697(主回路断开)']",
		contentOf(out, 4))
	assert.Len(t, sheet.Rows, 5, "the input sheet keeps its rows")
}

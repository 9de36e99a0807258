package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{
			name:  "dash format",
			value: "2025-12-08 10:58:17",
			want:  time.Date(2025, 12, 8, 10, 58, 17, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "slash format",
			value: "2025/12/08 10:58:17",
			want:  time.Date(2025, 12, 8, 10, 58, 17, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "bare clock time",
			value: "10:58:17",
			want:  time.Date(0, 1, 1, 10, 58, 17, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "surrounding whitespace",
			value: "  2025-12-08 10:58:17  ",
			want:  time.Date(2025, 12, 8, 10, 58, 17, 0, time.UTC),
			ok:    true,
		},
		{name: "empty", value: "", ok: false},
		{name: "garbage", value: "yesterday around noon", ok: false},
		{name: "date only", value: "2025-12-08", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestExtractTraceID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "ascii colon", content: "[10:00:00 1ms] 控制Trace: 53552", want: "53552"},
		{name: "full-width colon", content: "控制Trace：53553", want: "53553"},
		{name: "colon with spaces", content: "Trace:   53554 上报", want: "53554"},
		{name: "no marker", content: "到达楼层 3", want: ""},
		{name: "marker without id", content: "Trace: 无编号", want: ""},
		{name: "empty", content: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTraceID(tt.content))
		})
	}
}

func TestFirstBracketed(t *testing.T) {
	assert.Equal(t, "[2025-12-08 10:58:17 3ms]", FirstBracketed("[2025-12-08 10:58:17 3ms] 控制Trace: 53552"))
	assert.Equal(t, "[a]", FirstBracketed("x [a] y [b]"))
	assert.Equal(t, "", FirstBracketed("no brackets here"))
	assert.Equal(t, "", FirstBracketed("empty [] brackets are skipped"))
}

func TestFindColumn(t *testing.T) {
	headers := []string{"序号", "合同号", "装置时间", "信息类型", "信息内容", "内容备份"}

	col, ok := ContentColumn(headers)
	require.True(t, ok)
	assert.Equal(t, "信息内容", col, "first match wins over later 内容 columns")

	col, ok = TimeColumn(headers)
	require.True(t, ok)
	assert.Equal(t, "装置时间", col)

	col, ok = TypeColumn(headers)
	require.True(t, ok)
	assert.Equal(t, "信息类型", col)

	_, ok = ContentColumn([]string{"a", "b"})
	assert.False(t, ok)

	col, ok = TimeColumn([]string{"Event Time", "Device"})
	require.True(t, ok)
	assert.Equal(t, "Event Time", col, "english headers match case-insensitively")
}

func TestDeviceColumn(t *testing.T) {
	col, ok := DeviceColumn([]string{"序号", "合同号", "装置时间"})
	require.True(t, ok)
	assert.Equal(t, "合同号", col)

	_, ok = DeviceColumn([]string{"只有一列"})
	assert.False(t, ok)
}

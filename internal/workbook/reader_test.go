package workbook

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"liftline/pkg/contracts/domain"
)

var readerHeaders = []any{"序号", "合同号", "装置时间", "信息类型", "信息内容"}

func buildWorkbook(t *testing.T, sheetName string, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheetName))
	for i, row := range rows {
		for j, value := range row {
			if value == nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, ref, value))
		}
	}
	return f
}

func readBack(t *testing.T, f *excelize.File) *domain.Sheet {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	sheet, err := NewReader(nil).Read(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return sheet
}

func TestReadHeadersAndRows(t *testing.T) {
	f := buildWorkbook(t, "运行时间线", [][]any{
		readerHeaders,
		{1, "LIFT-001", "2025-12-08 10:00:00", "运行", "电梯启动"},
		{2, "LIFT-001", "2025-12-08 10:00:05", "运行", "平层到达"},
	})

	sheet := readBack(t, f)

	assert.Equal(t, "运行时间线", sheet.Name)
	assert.Equal(t, []string{"序号", "合同号", "装置时间", "信息类型", "信息内容"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, 1, sheet.Rows[0].ID)
	assert.Equal(t, 2, sheet.Rows[1].ID)
	assert.Equal(t, "电梯启动", sheet.Rows[0].StringValue("信息内容"))
	assert.Equal(t, "2025-12-08 10:00:05", sheet.Rows[1].StringValue("装置时间"))
}

func TestReadSheetSelection(t *testing.T) {
	t.Run("timeline sheet preferred over first", func(t *testing.T) {
		f := buildWorkbook(t, "说明", [][]any{{"备注"}})
		_, err := f.NewSheet("设备时间线")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("设备时间线", "A1", "信息内容"))
		require.NoError(t, f.SetCellValue("设备时间线", "A2", "电梯启动"))

		sheet := readBack(t, f)

		assert.Equal(t, "设备时间线", sheet.Name)
		require.Len(t, sheet.Rows, 1)
	})

	t.Run("english timeline name matches case-insensitively", func(t *testing.T) {
		f := buildWorkbook(t, "说明", [][]any{{"备注"}})
		_, err := f.NewSheet("Device TIMELINE")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Device TIMELINE", "A1", "信息内容"))

		sheet := readBack(t, f)

		assert.Equal(t, "Device TIMELINE", sheet.Name)
	})

	t.Run("falls back to first sheet", func(t *testing.T) {
		f := buildWorkbook(t, "数据", [][]any{
			{"信息内容"},
			{"电梯启动"},
		})

		sheet := readBack(t, f)

		assert.Equal(t, "数据", sheet.Name)
		require.Len(t, sheet.Rows, 1)
	})
}

func TestReadBlankRowsLeaveIDGaps(t *testing.T) {
	f := buildWorkbook(t, "运行时间线", [][]any{
		readerHeaders,
		{1, "LIFT-001", "2025-12-08 10:00:00", "运行", "电梯启动"},
		{nil, nil, nil, nil, nil},
		{3, "LIFT-001", "2025-12-08 10:00:10", "运行", "平层到达"},
	})

	sheet := readBack(t, f)

	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, 1, sheet.Rows[0].ID)
	assert.Equal(t, 3, sheet.Rows[1].ID)
}

func TestReadStyles(t *testing.T) {
	f := buildWorkbook(t, "运行时间线", [][]any{
		readerHeaders,
		{1, "LIFT-001", "2025-12-08 10:00:00", "检修", "进入检修模式"},
	})

	purple, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"993399"}},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("运行时间线", "E2", "E2", purple))

	redFont, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "FF0000"}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("运行时间线", "D2", "D2", redFont))

	white, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFFFF"}},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("运行时间线", "B2", "B2", white))

	sheet := readBack(t, f)

	require.Len(t, sheet.Rows, 1)
	row := sheet.Rows[0]
	assert.Equal(t, "#993399", row.Cells["信息内容"].Style[domain.StyleBackgroundColor])
	assert.Equal(t, "#FF0000", row.Cells["信息类型"].Style[domain.StyleFontColor])
	assert.NotContains(t, row.Cells["合同号"].Style, domain.StyleBackgroundColor)
	assert.NotNil(t, row.Cells["序号"].Style)
}

func TestReadComments(t *testing.T) {
	f := buildWorkbook(t, "运行时间线", [][]any{
		readerHeaders,
		{1, "LIFT-001", "2025-12-08 10:00:00", "运行", "平层到达"},
	})
	require.NoError(t, f.AddComment("运行时间线", excelize.Comment{
		Cell:   "E2",
		Author: "ops",
		Text:   `{'同步层': 5}`,
	}))

	sheet := readBack(t, f)

	require.Len(t, sheet.Rows, 1)
	assert.Contains(t, sheet.Rows[0].Cells["信息内容"].Comment, `'同步层': 5`)
}

func TestReadColumnsBeyondHeadersIgnored(t *testing.T) {
	f := buildWorkbook(t, "运行时间线", [][]any{
		{"序号", "信息内容"},
		{1, "电梯启动", "多余列"},
	})

	sheet := readBack(t, f)

	require.Len(t, sheet.Rows, 1)
	assert.Len(t, sheet.Rows[0].Cells, 2)
	assert.NotContains(t, sheet.Rows[0].Cells, "")
}

func TestReadEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()

	sheet := readBack(t, f)

	assert.Equal(t, "Sheet1", sheet.Name)
	assert.Empty(t, sheet.Headers)
	assert.Empty(t, sheet.Rows)
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "#993399", normalizeColor("FF993399"))
	assert.Equal(t, "#993399", normalizeColor("993399"))
	assert.Equal(t, "#FFCC00", normalizeColor("#ffcc00"))
	assert.Equal(t, "", normalizeColor("abc"))
	assert.Equal(t, "", normalizeColor(""))
}

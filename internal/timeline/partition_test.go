package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftline/pkg/contracts/domain"
)

var testHeaders = []string{"序号", "合同号", "装置时间", "信息类型", "信息内容"}

func makeRow(id int, device, timeVal, typeVal, content string) domain.Row {
	return domain.Row{
		ID: id,
		Cells: map[string]domain.Cell{
			"序号":   {Value: id, Style: map[string]string{}},
			"合同号":  {Value: device, Style: map[string]string{}},
			"装置时间": {Value: timeVal, Style: map[string]string{}},
			"信息类型": {Value: typeVal, Style: map[string]string{}},
			"信息内容": {Value: content, Style: map[string]string{}},
		},
	}
}

func TestPartitionByDevice(t *testing.T) {
	rows := []domain.Row{
		makeRow(1, "23N4B16-474", "10:00:00", "", "a"),
		makeRow(2, "23N4B16-475", "10:00:01", "", "b"),
		makeRow(3, "23N4B16-474", "10:00:02", "", "c"),
		makeRow(4, "", "10:00:03", "", "d"),
	}

	groups, order := PartitionByDevice(rows, testHeaders)

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"23N4B16-474", "23N4B16-475", UnknownKey}, order)
	assert.Equal(t, []int{0, 2}, groups["23N4B16-474"], "interleaved rows keep original order")
	assert.Equal(t, []int{1}, groups["23N4B16-475"])
	assert.Equal(t, []int{3}, groups[UnknownKey])
}

func TestPartitionByDeviceWithoutDeviceColumn(t *testing.T) {
	rows := []domain.Row{
		{ID: 1, Cells: map[string]domain.Cell{"时间": {Value: "10:00:00", Style: map[string]string{}}}},
		{ID: 2, Cells: map[string]domain.Cell{"时间": {Value: "10:00:01", Style: map[string]string{}}}},
	}

	groups, order := PartitionByDevice(rows, []string{"时间"})

	require.Len(t, groups, 1)
	assert.Equal(t, []string{UnknownKey}, order)
	assert.Equal(t, []int{0, 1}, groups[UnknownKey])
}

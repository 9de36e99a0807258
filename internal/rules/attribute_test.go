package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"liftline/pkg/contracts/domain"
)

func attrRow(values map[string]any) domain.Row {
	cells := make(map[string]domain.Cell, len(values))
	for column, value := range values {
		cells[column] = domain.Cell{Value: value}
	}
	return domain.Row{ID: 1, Cells: cells}
}

func TestExtractAttributes(t *testing.T) {
	floorRule := AttributeRule{
		Name:      "同步层",
		Sources:   []string{"同步层", "sync_floor", "floor"},
		Transform: &Transform{Kind: TransformOffsetInt, Offset: -1},
	}
	doorRule := AttributeRule{
		Name:     "门锁信号",
		Sources:  []string{"门锁信号", "门锁", "door_lock"},
		ValueMap: map[string]string{"1": "闭合", "0": "断开"},
	}

	t.Run("comment payload wins over cell", func(t *testing.T) {
		row := attrRow(map[string]any{"同步层": "12"})
		payload := map[string]any{"sync_floor": float64(5)}

		attrs := ExtractAttributes(row, payload, []AttributeRule{floorRule})

		assert.Equal(t, 4, attrs["同步层"])
	})

	t.Run("falls back to cell value", func(t *testing.T) {
		row := attrRow(map[string]any{"同步层": "12"})

		attrs := ExtractAttributes(row, map[string]any{}, []AttributeRule{floorRule})

		assert.Equal(t, 11, attrs["同步层"])
	})

	t.Run("value map matches stringified number", func(t *testing.T) {
		row := attrRow(map[string]any{"门锁信号": float64(1)})

		attrs := ExtractAttributes(row, map[string]any{}, []AttributeRule{doorRule})

		assert.Equal(t, "闭合", attrs["门锁信号"])
	})

	t.Run("unmapped value kept raw", func(t *testing.T) {
		row := attrRow(map[string]any{"门锁信号": "异常"})

		attrs := ExtractAttributes(row, map[string]any{}, []AttributeRule{doorRule})

		assert.Equal(t, "异常", attrs["门锁信号"])
	})

	t.Run("transform failure keeps pre-transform value", func(t *testing.T) {
		row := attrRow(map[string]any{"同步层": "故障"})

		attrs := ExtractAttributes(row, map[string]any{}, []AttributeRule{floorRule})

		assert.Equal(t, "故障", attrs["同步层"])
	})

	t.Run("first rule resolving a name wins", func(t *testing.T) {
		second := AttributeRule{Name: "同步层", Sources: []string{"备用层"}}
		row := attrRow(map[string]any{"同步层": 3, "备用层": 9})

		attrs := ExtractAttributes(row, map[string]any{}, []AttributeRule{floorRule, second})

		assert.Equal(t, 2, attrs["同步层"])
	})

	t.Run("later rule fills a missed name", func(t *testing.T) {
		second := AttributeRule{Name: "同步层", Sources: []string{"备用层"}}
		row := attrRow(map[string]any{"备用层": 9})

		attrs := ExtractAttributes(row, map[string]any{}, []AttributeRule{floorRule, second})

		assert.Equal(t, 9, attrs["同步层"])
	})

	t.Run("unresolvable sources yield nothing", func(t *testing.T) {
		row := attrRow(map[string]any{"信息内容": "平层完成"})

		attrs := ExtractAttributes(row, map[string]any{}, []AttributeRule{floorRule, doorRule})

		assert.NotNil(t, attrs)
		assert.Empty(t, attrs)
	})
}

package timeline

import (
	"liftline/pkg/contracts/domain"
)

// PartitionByDevice splits row positions into per-device groups so that
// clustering and merging never cross device boundaries, even when rows from
// several machines are interleaved in the sheet. The returned key slice
// preserves first-appearance order for deterministic processing. Rows with no
// device value, and entire sheets without a device column, fall into the
// single UnknownKey group.
func PartitionByDevice(rows []domain.Row, headers []string) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string

	deviceCol, hasDevice := DeviceColumn(headers)
	for i, row := range rows {
		key := UnknownKey
		if hasDevice {
			if v := row.StringValue(deviceCol); v != "" {
				key = v
			}
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	return groups, order
}

package timeline

import (
	"strings"
)

// UnknownKey is the partition key used when a row has no usable device or
// time value.
const UnknownKey = "UNKNOWN"

// FindColumn returns the first header containing any of the given needles,
// comparing case-insensitively. Duplicate header names are legal in the
// source sheets; first match wins by policy.
func FindColumn(headers []string, needles ...string) (string, bool) {
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, n := range needles {
			if strings.Contains(lower, strings.ToLower(n)) {
				return h, true
			}
		}
	}
	return "", false
}

// ContentColumn locates the event-content column.
func ContentColumn(headers []string) (string, bool) {
	return FindColumn(headers, "内容", "content")
}

// TimeColumn locates the device-time column.
func TimeColumn(headers []string) (string, bool) {
	return FindColumn(headers, "时间", "time")
}

// TypeColumn locates the event-type column.
func TypeColumn(headers []string) (string, bool) {
	return FindColumn(headers, "类型", "type")
}

// DeviceColumn returns the device/contract identifier column. The second
// header column holds it by convention; sheets with fewer than two columns
// have no device dimension.
func DeviceColumn(headers []string) (string, bool) {
	if len(headers) < 2 {
		return "", false
	}
	return headers[1], true
}

package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// TransformKind names one of the closed set of value transforms a rule may
// carry. Keeping transforms declarative rather than callable keeps rule
// tables serializable and safe to load from configuration.
type TransformKind string

const (
	// TransformIdentity passes the value through unchanged.
	TransformIdentity TransformKind = "identity"
	// TransformOffsetInt coerces the value to an integer and adds Offset.
	// The controllers report synchronization floors off by one from the
	// display convention, hence the usual -1.
	TransformOffsetInt TransformKind = "offset_int"
	// TransformParseEnum maps the stringified value through Enum.
	TransformParseEnum TransformKind = "parse_enum"
)

// Transform is a declarative value rewrite attached to an attribute rule.
type Transform struct {
	Kind   TransformKind     `yaml:"kind" json:"kind"`
	Offset int               `yaml:"offset,omitempty" json:"offset,omitempty"`
	Enum   map[string]string `yaml:"enum,omitempty" json:"enum,omitempty"`
}

// Apply runs the transform. Errors mean "transform does not apply"; callers
// keep the pre-transform value in that case.
func (t Transform) Apply(value any) (any, error) {
	switch t.Kind {
	case "", TransformIdentity:
		return value, nil
	case TransformOffsetInt:
		n, err := coerceInt(value)
		if err != nil {
			return nil, err
		}
		return n + t.Offset, nil
	case TransformParseEnum:
		key := stringify(value)
		mapped, ok := t.Enum[key]
		if !ok {
			return nil, fmt.Errorf("no enum mapping for %q", key)
		}
		return mapped, nil
	default:
		return nil, fmt.Errorf("unknown transform kind %q", t.Kind)
	}
}

func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("non-integral number %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to int", value)
	}
}

// stringify renders a scalar the way it would appear in a cell, dropping the
// trailing ".0" floats pick up on the way through JSON.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

package rules

import (
	"liftline/pkg/contracts/domain"
)

// AttributeRule describes one way of obtaining a named global attribute:
// where to look (comment payload keys first, then column names), an optional
// value remap, and an optional transform. Rules for the same attribute are
// tried in table order; the first one yielding a non-null value wins.
type AttributeRule struct {
	Name      string            `yaml:"name" json:"name"`
	Sources   []string          `yaml:"sources" json:"sources"`
	ValueMap  map[string]string `yaml:"value_map,omitempty" json:"value_map,omitempty"`
	Transform *Transform        `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// extract resolves the rule against one row. The comment payload is checked
// for every source key before any column is, matching how operators annotate
// sheets: structured values live in comments, raw readings in cells.
func (r AttributeRule) extract(row domain.Row, payload map[string]any) (any, bool) {
	raw, ok := r.lookup(row, payload)
	if !ok {
		return nil, false
	}

	value := r.remap(raw)

	if r.Transform != nil {
		if transformed, err := r.Transform.Apply(value); err == nil {
			value = transformed
		}
	}
	if value == nil {
		return nil, false
	}
	return value, true
}

func (r AttributeRule) lookup(row domain.Row, payload map[string]any) (any, bool) {
	for _, key := range r.Sources {
		if v, ok := payload[key]; ok && v != nil {
			return v, true
		}
	}
	for _, key := range r.Sources {
		if v, ok := row.CellValue(key); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// remap applies the value map: exact string match first, then the stringified
// value, otherwise the raw value is kept.
func (r AttributeRule) remap(raw any) any {
	if len(r.ValueMap) == 0 {
		return raw
	}
	if s, ok := raw.(string); ok {
		if mapped, hit := r.ValueMap[s]; hit {
			return mapped
		}
	}
	if mapped, hit := r.ValueMap[stringify(raw)]; hit {
		return mapped
	}
	return raw
}

// ExtractAttributes resolves the whole rule table against one row, returning
// attribute values keyed by name. Later rules for a name already resolved are
// skipped.
func ExtractAttributes(row domain.Row, payload map[string]any, table []AttributeRule) map[string]any {
	attrs := make(map[string]any)
	for _, rule := range table {
		if _, done := attrs[rule.Name]; done {
			continue
		}
		if value, ok := rule.extract(row, payload); ok {
			attrs[rule.Name] = value
		}
	}
	return attrs
}

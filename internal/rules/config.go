package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"liftline/internal/timeline"
)

// NonCriticalRules holds the suppression rules for routine noise. Phrases are
// matched as substrings, patterns as regular expressions.
type NonCriticalRules struct {
	Phrases  []string `yaml:"phrases" json:"phrases"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// Config bundles every tunable of the rule engine together with the trace
// family topology used by the aggregation stage. A zero value is not usable;
// start from DefaultConfig or LoadConfig.
type Config struct {
	TraceFamilies         []timeline.TraceFamily `yaml:"trace_families" json:"trace_families"`
	NonCritical           NonCriticalRules       `yaml:"non_critical" json:"non_critical"`
	DelayThresholdMinutes int                    `yaml:"delay_threshold_minutes" json:"delay_threshold_minutes"`
	Attributes            []AttributeRule        `yaml:"attributes" json:"attributes"`
}

// fileConfig mirrors Config with optional fields so an overlay file can omit
// sections without clearing the defaults.
type fileConfig struct {
	TraceFamilies         []timeline.TraceFamily `yaml:"trace_families"`
	NonCritical           *NonCriticalRules      `yaml:"non_critical"`
	DelayThresholdMinutes *int                   `yaml:"delay_threshold_minutes"`
	Attributes            []AttributeRule        `yaml:"attributes"`
}

// DefaultConfig returns the built-in rule set: the stock trace families, the
// routine-noise suppressions, a 10 minute delay threshold and the standard
// attribute extraction rules.
func DefaultConfig() Config {
	return Config{
		TraceFamilies: timeline.DefaultTraceFamilies(),
		NonCritical: NonCriticalRules{
			Phrases:  []string{"心跳", "周期上报", "版本信息"},
			Patterns: []string{`环境温度\s*\d+(\.\d+)?℃`},
		},
		DelayThresholdMinutes: 10,
		Attributes: []AttributeRule{
			{
				Name:      SyncFloorAttribute,
				Sources:   []string{SyncFloorAttribute, "sync_floor", "floor"},
				Transform: &Transform{Kind: TransformOffsetInt, Offset: -1},
			},
			{
				Name:     "门锁信号",
				Sources:  []string{"门锁信号", "门锁", "door_lock"},
				ValueMap: map[string]string{"1": "闭合", "0": "断开"},
			},
		},
	}
}

// LoadConfig reads a YAML rule file and overlays it on the defaults. An empty
// path returns the defaults unchanged. Sections present in the file replace
// their default wholesale; omitted sections keep the built-in values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read rule config: %w", err)
	}

	var overlay fileConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse rule config %s: %w", path, err)
	}

	if len(overlay.TraceFamilies) > 0 {
		cfg.TraceFamilies = overlay.TraceFamilies
	}
	if overlay.NonCritical != nil {
		cfg.NonCritical = *overlay.NonCritical
	}
	if overlay.DelayThresholdMinutes != nil {
		cfg.DelayThresholdMinutes = *overlay.DelayThresholdMinutes
	}
	if len(overlay.Attributes) > 0 {
		cfg.Attributes = overlay.Attributes
	}
	return cfg, nil
}

package viewer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named sort order for the ranking table
type Preset struct {
	Label       string `yaml:"label" json:"label"`
	Column      string `yaml:"column" json:"column"`
	Ascending   bool   `yaml:"ascending" json:"ascending"`
	Description string `yaml:"description" json:"description"`
}

// presetFile is the layout of the optional presets YAML
type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets returns the built-in sort presets. The first one is the default.
func DefaultPresets() []Preset {
	return []Preset{
		{Label: "値上がり率 上位", Column: "change_pct", Ascending: false, Description: "始値比の上昇率が大きい順"},
		{Label: "値下がり率 上位", Column: "change_pct", Ascending: true, Description: "始値比の下落率が大きい順"},
		{Label: "前日比 上位", Column: "day_over_day_pct", Ascending: false, Description: "前日終値比の上昇率が大きい順"},
		{Label: "売買代金 上位", Column: "turnover_millions", Ascending: false, Description: "売買代金(百万円)が大きい順"},
		{Label: "振れ幅 上位", Column: "range_pct", Ascending: false, Description: "日中の値幅が大きい順"},
		{Label: "高値引け", Column: "range_position", Ascending: false, Description: "終値がレンジ上限に近い順"},
		{Label: "上ヒゲ警戒", Column: "upper_wick_ratio", Ascending: false, Description: "上ヒゲ比が大きい順 (売り圧力)"},
		{Label: "VWAP 上方乖離", Column: "close_to_vwap", Ascending: false, Description: "終値/VWAP が大きい順"},
		{Label: "セクター相対 強い", Column: "vs_sector", Ascending: false, Description: "セクター平均を上回る幅が大きい順"},
		{Label: "セクター相対 弱い", Column: "vs_sector", Ascending: true, Description: "セクター平均を下回る幅が大きい順"},
	}
}

// LoadPresets reads presets from a YAML file. An empty path returns the defaults.
// Unknown fields fail the load so a typo never silently changes the ordering.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return DefaultPresets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var file presetFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode presets %s: %w", path, err)
	}

	if err := validatePresets(file.Presets); err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	return file.Presets, nil
}

func validatePresets(presets []Preset) error {
	if len(presets) == 0 {
		return errors.New("at least one preset is required")
	}
	seen := make(map[string]bool, len(presets))
	for i, p := range presets {
		if strings.TrimSpace(p.Label) == "" {
			return fmt.Errorf("preset %d: label is required", i)
		}
		if seen[p.Label] {
			return fmt.Errorf("preset %d: duplicate label %q", i, p.Label)
		}
		seen[p.Label] = true
		// an unknown column is allowed, sorting falls back to change_pct
		if strings.TrimSpace(p.Column) == "" {
			return fmt.Errorf("preset %q: column is required", p.Label)
		}
	}
	return nil
}

// SelectPreset picks a preset by 1-based index or by label. Empty selects the first.
func SelectPreset(presets []Preset, key string) (Preset, error) {
	if len(presets) == 0 {
		return Preset{}, errors.New("no presets")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return presets[0], nil
	}

	if idx, err := strconv.Atoi(key); err == nil {
		if idx < 1 || idx > len(presets) {
			return Preset{}, fmt.Errorf("preset %d out of range 1..%d", idx, len(presets))
		}
		return presets[idx-1], nil
	}

	for _, p := range presets {
		if p.Label == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q", key)
}

// SortColumn is the column the preset actually sorts by
func (p Preset) SortColumn() string {
	col := strings.ToLower(strings.TrimSpace(p.Column))
	if IsColumn(col) {
		return col
	}
	return DefaultSortColumn
}

package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Scale maps a raw field onto the engine's 0-100 range. Raw inputs arrive
// on wildly different empirical scales (verticality 2.3-11.5, late-game
// dominance 9-79); the calibration table is the single source of truth for
// converting them. Never hard-code a scale at a call site.
type Scale struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Scale float64 `yaml:"scale"` // output ceiling, normally 100
}

// Calibration is an immutable field→Scale table loaded at startup.
type Calibration struct {
	scales map[string]Scale

	warnOnce sync.Map // field → struct{}, so a missing field logs once
}

// NewCalibration builds a table from an explicit scale map.
func NewCalibration(scales map[string]Scale) (*Calibration, error) {
	for field, s := range scales {
		if s.Max <= s.Min {
			return nil, fmt.Errorf("calibration scale for %q is malformed: max %.3f <= min %.3f", field, s.Max, s.Min)
		}
	}
	return &Calibration{scales: scales}, nil
}

// LoadCalibration reads the YAML calibration table. An empty path returns
// the built-in defaults.
func LoadCalibration(path string) (*Calibration, error) {
	if path == "" {
		return DefaultCalibration(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration %s: %w", path, err)
	}
	var scales map[string]Scale
	if err := yaml.Unmarshal(data, &scales); err != nil {
		return nil, fmt.Errorf("failed to parse calibration %s: %w", path, err)
	}
	return NewCalibration(scales)
}

// Normalize converts a raw value onto [0, scale] for the named field. A
// field absent from the table is treated as already normalised and logged
// once.
func (c *Calibration) Normalize(field string, raw float64) float64 {
	s, ok := c.scales[field]
	if !ok {
		if _, seen := c.warnOnce.LoadOrStore(field, struct{}{}); !seen {
			log.Warn().Str("field", field).Msg("calibration scale missing, passing raw value through")
		}
		return raw
	}

	out := (raw - s.Min) / (s.Max - s.Min) * s.Scale
	if out < 0 {
		return 0
	}
	if out > s.Scale {
		return s.Scale
	}
	return out
}

// Has reports whether the table carries a scale for the field.
func (c *Calibration) Has(field string) bool {
	_, ok := c.scales[field]
	return ok
}

// DefaultCalibration carries the empirical scales observed in production
// team fingerprints.
func DefaultCalibration() *Calibration {
	c, _ := NewCalibration(map[string]Scale{
		"verticality":         {Min: 2.3, Max: 11.5, Scale: 100},
		"patience":            {Min: 0, Max: 25, Scale: 100},
		"late_game_dominance": {Min: 9, Max: 79, Scale: 100},
		"pressing_intensity":  {Min: 0, Max: 220, Scale: 100},
		"territorial_dominance": {Min: 20, Max: 80, Scale: 100},
		"progressive_passes":  {Min: 20, Max: 95, Scale: 100},
		"aerial_win_pct":      {Min: 30, Max: 70, Scale: 100},
		"late_resistance":     {Min: 0, Max: 100, Scale: 100},
		"rotation_index":      {Min: 0, Max: 10, Scale: 100},
	})
	return c
}

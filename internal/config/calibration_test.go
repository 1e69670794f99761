package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClampsToScale(t *testing.T) {
	cal, err := NewCalibration(map[string]Scale{
		"verticality": {Min: 2.3, Max: 11.5, Scale: 100},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{"below min clamps to zero", 1.0, 0},
		{"above max clamps to scale", 15.0, 100},
		{"min maps to zero", 2.3, 0},
		{"max maps to scale", 11.5, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cal.Normalize("verticality", tt.raw), 1e-9)
		})
	}

	mid := cal.Normalize("verticality", (2.3+11.5)/2)
	assert.InDelta(t, 50.0, mid, 1e-9)
}

func TestNormalizeUnknownFieldPassesThrough(t *testing.T) {
	cal := DefaultCalibration()
	assert.Equal(t, 42.5, cal.Normalize("no_such_field", 42.5))
	assert.False(t, cal.Has("no_such_field"))
}

func TestNewCalibrationRejectsMalformedScale(t *testing.T) {
	_, err := NewCalibration(map[string]Scale{"bad": {Min: 10, Max: 10, Scale: 100}})
	require.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.60, cfg.Consensus.MinScore)
	assert.Equal(t, 5, cfg.Consensus.MinCount)
	assert.Equal(t, 5000, cfg.MonteCarlo.Iterations)
	assert.Equal(t, 0.25, cfg.Sizing.KellyFraction)
}

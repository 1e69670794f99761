package friction

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPairSource struct {
	rec      *PairRecord
	reversed bool
	err      error
}

func (s *stubPairSource) FetchPair(context.Context, string, string) (*PairRecord, bool, error) {
	return s.rec, s.reversed, s.err
}

func sampleRecord() *PairRecord {
	return &PairRecord{
		TeamA:            "milan",
		TeamB:            "inter",
		FrictionScore:    66,
		StyleClashScore:  58,
		TempoClashScore:  61,
		MentalClashScore: 72,
		ChaosPotential:   64,
		PredictedGoals:   3.1,
		BTTSProb:         0.61,
		Over25Prob:       0.58,
		PredictedWinner:  "team_a",
		H2HMatches:       12,
		H2HAvgGoals:      2.9,
		Vector:           Vector{StyleClash: 58, MotivationGap: 8},
		Confidence:       "high",
		Version:          "v3",
	}
}

func TestLoadStaticDirectMatch(t *testing.T) {
	l := NewLoader(&stubPairSource{rec: sampleRecord()}, true, zerolog.Nop())
	m := l.Load(context.Background(), "Milan", "Inter", nil, nil)

	assert.Equal(t, "v3", m.Source)
	assert.False(t, m.IsReversed)
	assert.Equal(t, WinnerHome, m.PredictedWinner)
	assert.Equal(t, ConfidenceHigh, m.Confidence)
	assert.False(t, m.DynamicComputed)
	// defaults until dynamics run
	assert.Equal(t, 55.0, m.KineticHome)
	assert.Equal(t, 48.0, m.KineticAway)
}

func TestLoadReversedSwapsDirectionalFields(t *testing.T) {
	rec := sampleRecord()
	l := NewLoader(&stubPairSource{rec: rec, reversed: true}, true, zerolog.Nop())
	m := l.Load(context.Background(), "Inter", "Milan", nil, nil)

	assert.True(t, m.IsReversed)
	// team_a winner becomes the away side after the swap
	assert.Equal(t, WinnerAway, m.PredictedWinner)
	assert.Equal(t, -8.0, m.Vector.MotivationGap)
	// symmetric statics are untouched
	assert.Equal(t, 66.0, m.FrictionScore)
	assert.Equal(t, 2.9, m.H2HAvgGoals)
}

func TestSwapInvarianceOfSymmetricStatics(t *testing.T) {
	direct := NewLoader(&stubPairSource{rec: sampleRecord()}, true, zerolog.Nop()).
		Load(context.Background(), "Milan", "Inter", nil, nil)
	swapped := NewLoader(&stubPairSource{rec: sampleRecord(), reversed: true}, true, zerolog.Nop()).
		Load(context.Background(), "Inter", "Milan", nil, nil)

	assert.Equal(t, direct.FrictionScore, swapped.FrictionScore)
	assert.Equal(t, direct.TempoClashScore, swapped.TempoClashScore)
	assert.Equal(t, direct.ChaosPotential, swapped.ChaosPotential)
	assert.Equal(t, direct.H2HMatches, swapped.H2HMatches)
}

func TestLoadV1RecordKeepsSourceTag(t *testing.T) {
	rec := sampleRecord()
	rec.Version = "v1"
	l := NewLoader(&stubPairSource{rec: rec}, true, zerolog.Nop())
	m := l.Load(context.Background(), "Milan", "Inter", nil, nil)
	assert.Equal(t, "v1", m.Source)
}

func TestLoadFallbackDefaults(t *testing.T) {
	l := NewLoader(&stubPairSource{err: ErrNoPairRecord}, true, zerolog.Nop())
	m := l.Load(context.Background(), "X", "Y", nil, nil)

	require.Equal(t, "default", m.Source)
	assert.Equal(t, 2.8, m.PredictedGoals)
	assert.Equal(t, 55.0, m.KineticHome)
	assert.Equal(t, 48.0, m.KineticAway)
	assert.Equal(t, ConfidenceLow, m.Confidence)
}

package engine

import (
	"fmt"

	"github.com/quantbet/quantum/internal/dna"
)

// component weights of the quantum z-score
const (
	zwMentality  = 0.20
	zwKiller     = 0.15
	zwRegression = 0.15
	zwDiesel     = 0.10
	zwStrength   = 0.10
	zwTier       = 0.15
)

// zScale stretches the centred weighted sum onto the [-3, 3] band.
const zScale = 4.5

// Model B: quantum z-score. Each side gets a centred weighted score;
// the edge is home minus away.
func evalQuantumZScore(in Input) Vote {
	homeZ := zScore(in.Home, true)
	awayZ := zScore(in.Away, false)
	edge := homeZ - awayZ

	side := in.HomeTeam
	if edge < 0 {
		side = in.AwayTeam
	}
	abs := edge
	if abs < 0 {
		abs = -abs
	}

	v := Vote{
		Model:     ModelQuantumZScore,
		Reasoning: fmt.Sprintf("z-score edge %.2f toward %s (home %.2f, away %.2f)", edge, side, homeZ, awayZ),
		Raw:       map[string]any{"home_z": homeZ, "away_z": awayZ, "edge": edge, "side": side},
	}

	switch {
	case abs >= 1.5:
		v.Signal = SignalStrongBuy
	case abs >= 0.5:
		v.Signal = SignalBuy
	default:
		v.Signal = SignalHold
	}
	// confidence grows linearly with the edge magnitude
	v.Confidence = clampConf(50 + abs*15)
	return v
}

// zScore computes one side's centred score. Contributions: conservative
// mentality +1.5, inverted killer instinct, signed regression magnitude,
// diesel factor, venue strength and a tier bonus ladder.
func zScore(d *dna.TeamDNA, home bool) float64 {
	var s float64

	switch d.Psyche.Mentality {
	case dna.MentalityConservative:
		s += zwMentality * 1.5
	case dna.MentalityAggressive:
		s -= zwMentality * 0.75
	}

	s += zwKiller * (0.5 - d.Psyche.KillerInstinct)

	switch d.Luck.RegressionDirection {
	case dna.RegressionUp:
		s += zwRegression * d.Luck.RegressionMagnitude
	case dna.RegressionDown:
		s -= zwRegression * d.Luck.RegressionMagnitude
	}

	s += zwDiesel * (d.Temporal.DieselFactor - 0.5)

	strength := d.Context.HomeStrength
	if !home {
		strength = d.Context.AwayStrength
	}
	s += zwStrength * (strength/100 - 0.5)

	s += zwTier * tierBonus(d.Risk.TierRank)

	z := s * zScale
	if z > 3 {
		return 3
	}
	if z < -3 {
		return -3
	}
	return z
}

func tierBonus(tierRank float64) float64 {
	switch {
	case tierRank >= 85:
		return 0.30
	case tierRank >= 65:
		return 0.20
	case tierRank >= 40:
		return 0.10
	default:
		return 0
	}
}

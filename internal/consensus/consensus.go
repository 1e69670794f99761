// Package consensus aggregates the seven model votes into a weighted
// agreement score. The computation is commutative: vote order never
// matters.
package consensus

import (
	"github.com/quantbet/quantum/internal/engine"
)

// BaseWeights is the frozen per-model weight table.
var BaseWeights = map[engine.ModelID]float64{
	engine.ModelTeamStrategy:    1.25,
	engine.ModelQuantumZScore:   1.15,
	engine.ModelMatchupMomentum: 1.10,
	engine.ModelDixonColes:      1.00,
	engine.ModelScenario:        0.85,
	engine.ModelDNAFeatures:     1.05,
	engine.ModelMicroStrategy:   1.05,
}

// minTrackedVotes is the sample below which a model keeps its base weight.
const minTrackedVotes = 10

// Conviction summarises the positive-vote count.
type Conviction string

const (
	ConvictionMaximum  Conviction = "maximum"
	ConvictionStrong   Conviction = "strong"
	ConvictionModerate Conviction = "moderate"
	ConvictionWeak     Conviction = "weak"
)

// StatsProvider exposes the performance tracker to the consensus engine.
// It is always passed explicitly, never held as package state.
type StatsProvider interface {
	ModelStats(id engine.ModelID) (votes int, roi float64)
}

// Thresholds fixes when consensus is reached.
type Thresholds struct {
	MinScore float64 // weighted positive share, default 0.60
	MinCount int     // positive votes, default 5
}

// DefaultThresholds returns the production agreement gates.
func DefaultThresholds() Thresholds {
	return Thresholds{MinScore: 0.60, MinCount: 5}
}

// Result is the aggregated outcome of one fixture's votes.
type Result struct {
	Score          float64                    `json:"score"` // positive weight share [0,1]
	PositiveWeight float64                    `json:"positive_weight"`
	TotalWeight    float64                    `json:"total_weight"`
	Count          int                        `json:"count"` // positive votes
	Reached        bool                       `json:"reached"`
	Conviction     Conviction                 `json:"conviction"`
	Weights        map[engine.ModelID]float64 `json:"weights"` // effective weight per model
}

// DynamicFactor converts a model's tracked ROI into a weight multiplier:
// 1 + min(0.5, max(−0.5, ROI/100))·0.5, constrained to [0.5, 1.5].
func DynamicFactor(roi float64) float64 {
	adj := roi / 100
	if adj > 0.5 {
		adj = 0.5
	}
	if adj < -0.5 {
		adj = -0.5
	}
	f := 1 + adj*0.5
	if f < 0.5 {
		return 0.5
	}
	if f > 1.5 {
		return 1.5
	}
	return f
}

// EffectiveWeight combines the base weight, the tracker's dynamic factor
// and the vote's own confidence multiplier.
func EffectiveWeight(v engine.Vote, stats StatsProvider) float64 {
	w := BaseWeights[v.Model]
	if stats != nil {
		if votes, roi := stats.ModelStats(v.Model); votes >= minTrackedVotes {
			w *= DynamicFactor(roi)
		}
	}
	return w * v.WeightMultiplier()
}

// Compute aggregates the votes under the given thresholds.
func Compute(votes []engine.Vote, stats StatsProvider, th Thresholds) Result {
	res := Result{Weights: make(map[engine.ModelID]float64, len(votes))}

	for _, v := range votes {
		w := EffectiveWeight(v, stats)
		res.Weights[v.Model] = w
		res.TotalWeight += w
		if v.IsPositive() {
			res.PositiveWeight += w
			res.Count++
		}
	}

	if res.TotalWeight > 0 {
		res.Score = res.PositiveWeight / res.TotalWeight
	}
	res.Reached = res.Score >= th.MinScore && res.Count >= th.MinCount

	switch {
	case res.Count >= 7:
		res.Conviction = ConvictionMaximum
	case res.Count == 6:
		res.Conviction = ConvictionStrong
	case res.Count == 5:
		res.Conviction = ConvictionModerate
	default:
		res.Conviction = ConvictionWeak
	}
	return res
}

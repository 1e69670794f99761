package validate

import (
	"math"

	"github.com/quantbet/quantum/internal/engine"
)

// Resolution tags how the z-score view and the momentum view were reconciled.
type Resolution string

const (
	ResolutionAligned        Resolution = "aligned"
	ResolutionReducedZ       Resolution = "reduced_z"
	ResolutionFollowMomentum Resolution = "follow_momentum"
	ResolutionFollowZ        Resolution = "follow_z"
	ResolutionDefault        Resolution = "default"
)

// ConflictResult is the outcome of the style-vs-momentum check.
type ConflictResult struct {
	ZEdge         float64      `json:"z_edge"`
	Trend         engine.Trend `json:"trend"`
	Resolution    Resolution   `json:"resolution"`
	StakeModifier float64      `json:"stake_modifier"`
	Reasoning     string       `json:"reasoning"`
}

// strongZ is the |z| past which the structural edge overrides momentum.
const strongZ = 2.5

func hotTrend(t engine.Trend) bool {
	return t == engine.TrendBlazing || t == engine.TrendHot
}

func coldTrend(t engine.Trend) bool {
	return t == engine.TrendCooling || t == engine.TrendFreezing
}

// ResolveConflict reconciles Model B's z-score edge with Model C's
// momentum trend. Agreement amplifies the stake; a structurally favoured
// side on a cold run is the classic value trap and gets cut in half.
func ResolveConflict(zEdge float64, trend engine.Trend) ConflictResult {
	res := ConflictResult{ZEdge: zEdge, Trend: trend}

	switch {
	case zEdge > 0 && hotTrend(trend):
		res.Resolution = ResolutionAligned
		res.StakeModifier = 1.15
		res.Reasoning = "z-score edge and momentum agree"
	case zEdge > 0 && coldTrend(trend):
		res.Resolution = ResolutionReducedZ
		res.StakeModifier = 0.50
		res.Reasoning = "structural edge but cold run, halving exposure"
	case math.Abs(zEdge) > strongZ && !coldTrend(trend):
		res.Resolution = ResolutionFollowZ
		res.StakeModifier = 1.00
		res.Reasoning = "extreme z-score edge overrides neutral momentum"
	case hotTrend(trend):
		res.Resolution = ResolutionFollowMomentum
		if trend == engine.TrendBlazing {
			res.StakeModifier = 1.15
		} else {
			res.StakeModifier = 1.10
		}
		res.Reasoning = "momentum carries the signal, z-score silent"
	default:
		res.Resolution = ResolutionDefault
		res.StakeModifier = 0.85
		res.Reasoning = "no alignment between style and momentum"
	}
	return res
}

// Package engine holds the seven independent prediction models and their
// shared vote contract. Models are pure functions over already-loaded
// fingerprints; they never see each other's output.
package engine

import (
	"fmt"

	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/referee"
)

// Signal is a model's directional verdict.
type Signal string

const (
	SignalStrongBuy  Signal = "strong_buy"
	SignalBuy        Signal = "buy"
	SignalHold       Signal = "hold"
	SignalSell       Signal = "sell"
	SignalStrongSell Signal = "strong_sell"
	SignalSkip       Signal = "skip"
)

// ModelID tags a model identity. The base-weight table, tracker and
// consensus engine are all indexed by it.
type ModelID string

const (
	ModelTeamStrategy    ModelID = "team_strategy"     // A
	ModelQuantumZScore   ModelID = "quantum_zscore"    // B
	ModelMatchupMomentum ModelID = "matchup_momentum"  // C
	ModelDixonColes      ModelID = "dixon_coles"       // D
	ModelScenario        ModelID = "scenario_detector" // E
	ModelDNAFeatures     ModelID = "dna_features"      // F
	ModelMicroStrategy   ModelID = "micro_strategy"    // G
)

// AllModels is the fixed evaluation set; immutable configuration.
var AllModels = []ModelID{
	ModelTeamStrategy, ModelQuantumZScore, ModelMatchupMomentum,
	ModelDixonColes, ModelScenario, ModelDNAFeatures, ModelMicroStrategy,
}

// Vote is the uniform output record of every model.
type Vote struct {
	Model       ModelID        `json:"model"`
	Signal      Signal         `json:"signal"`
	Confidence  float64        `json:"confidence"` // 0-100
	Market      string         `json:"market,omitempty"`
	Probability float64        `json:"probability,omitempty"` // [0,1], 0 when unset
	Reasoning   string         `json:"reasoning"`
	Raw         map[string]any `json:"raw,omitempty"`

	// settlement fills this in later via the snapshot
	WasCorrect *bool `json:"was_correct,omitempty"`
}

// IsPositive reports whether the vote backs the fixture.
func (v Vote) IsPositive() bool {
	return v.Signal == SignalBuy || v.Signal == SignalStrongBuy
}

// WeightMultiplier scales the model's consensus weight by its own
// confidence: 1.2 at ≥80, 0.8 below 60, 1.0 between.
func (v Vote) WeightMultiplier() float64 {
	switch {
	case v.Confidence >= 80:
		return 1.2
	case v.Confidence < 60:
		return 0.8
	default:
		return 1.0
	}
}

// Trend labels recent form.
type Trend string

const (
	TrendBlazing  Trend = "blazing"
	TrendHot      Trend = "hot"
	TrendWarming  Trend = "warming"
	TrendNeutral  Trend = "neutral"
	TrendCooling  Trend = "cooling"
	TrendFreezing Trend = "freezing"
)

// Momentum is the recent-form context for one side.
type Momentum struct {
	Score  float64 `json:"score"` // 0-100
	Trend  Trend   `json:"trend"`
	Streak int     `json:"streak"`
}

// Context carries the optional per-fixture extras models may consult.
type Context struct {
	HomeMomentum *Momentum        `json:"home_momentum,omitempty"`
	AwayMomentum *Momentum        `json:"away_momentum,omitempty"`
	Referee      *referee.Profile `json:"referee,omitempty"`
}

// Input is the single shared model contract.
type Input struct {
	HomeTeam string
	AwayTeam string
	Home     *dna.TeamDNA
	Away     *dna.TeamDNA
	Friction *friction.Matrix
	Odds     map[string]float64
	Context  *Context
}

// Evaluate dispatches on the identity tag. A panicking model yields a
// hold vote with confidence 0 carrying the failure; a model can never
// abort the fixture.
func Evaluate(id ModelID, in Input) (v Vote) {
	defer func() {
		if r := recover(); r != nil {
			v = Vote{
				Model:      id,
				Signal:     SignalHold,
				Confidence: 0,
				Reasoning:  fmt.Sprintf("model failure: %v", r),
			}
		}
	}()

	switch id {
	case ModelTeamStrategy:
		return evalTeamStrategy(in)
	case ModelQuantumZScore:
		return evalQuantumZScore(in)
	case ModelMatchupMomentum:
		return evalMatchupMomentum(in)
	case ModelDixonColes:
		return evalDixonColes(in)
	case ModelScenario:
		return evalScenario(in)
	case ModelDNAFeatures:
		return evalDNAFeatures(in)
	case ModelMicroStrategy:
		return evalMicroStrategy(in)
	default:
		return Vote{Model: id, Signal: SignalHold, Confidence: 0, Reasoning: "unknown model identity"}
	}
}

func clampConf(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

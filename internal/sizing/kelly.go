// Package sizing turns a validated pick into a stake in units using a
// fractional Kelly criterion with multiplicative risk modifiers.
package sizing

import (
	"github.com/shopspring/decimal"
)

// Config bounds the staking engine.
type Config struct {
	KellyFraction float64 `yaml:"kelly_fraction"`
	MinStake      float64 `yaml:"min_stake"`
	MaxStake      float64 `yaml:"max_stake"`
	StepSize      float64 `yaml:"step_size"`
}

// DefaultConfig returns quarter-Kelly with stakes in [0.5, 5.0] units
// rounded to the nearest half unit.
func DefaultConfig() Config {
	return Config{
		KellyFraction: 0.25,
		MinStake:      0.5,
		MaxStake:      5.0,
		StepSize:      0.5,
	}
}

// Inputs carries everything the stake depends on.
type Inputs struct {
	Probability float64 // our estimate for the chosen market
	Odds        float64 // decimal odds taken
	Edge        float64 // probability - implied probability

	PanicFactor      float64 // picked side's risk DNA, 0..1
	ConflictModifier float64 // from the conflict resolver
	MonteCarlo       float64 // 1.10 / 1.00 / 0.70
	CLV              float64 // 1.20 / 1.00 / 0.80
	Confidence       float64 // consensus confidence 0..100
}

// Result is the sized stake with the audit trail of modifiers applied.
type Result struct {
	Stake         float64 `json:"stake"`
	RawKelly      float64 `json:"raw_kelly"`
	Fractional    float64 `json:"fractional_kelly"`
	RiskModifier  float64 `json:"risk_modifier"`
	TotalModifier float64 `json:"total_modifier"`
	Suppressed    bool    `json:"suppressed"`
}

// PanicModifier shrinks the stake for panic-prone sides, floored at 0.6.
func PanicModifier(panic float64) float64 {
	m := 1 - panic*0.4
	if m < 0.6 {
		return 0.6
	}
	return m
}

// ConfidenceModifier maps consensus confidence 0..100 onto [0.5, 1.0].
func ConfidenceModifier(conf float64) float64 {
	return 0.5 + conf/200
}

// Compute sizes the stake. The Kelly fraction is taken relative to the
// market's implied probability,
//
//	kelly = (edge * prob) / implied_prob
//
// then scaled by the configured fraction and the modifier chain. The
// arithmetic runs on decimals so the half-unit rounding is exact.
// A non-positive edge or kelly fraction suppresses the pick; any
// positive stake is clamped into [MinStake, MaxStake].
func Compute(in Inputs, cfg Config) Result {
	var res Result
	if in.Odds <= 1 || in.Probability <= 0 || in.Edge <= 0 {
		res.Suppressed = true
		return res
	}

	implied := decimal.NewFromFloat(1).Div(decimal.NewFromFloat(in.Odds))
	kelly := decimal.NewFromFloat(in.Edge).
		Mul(decimal.NewFromFloat(in.Probability)).
		Div(implied)
	res.RawKelly, _ = kelly.Float64()

	fractional := kelly.Mul(decimal.NewFromFloat(cfg.KellyFraction))
	res.Fractional, _ = fractional.Float64()

	risk := PanicModifier(in.PanicFactor)
	res.RiskModifier = risk

	modifier := decimal.NewFromFloat(risk).
		Mul(decimal.NewFromFloat(in.ConflictModifier)).
		Mul(decimal.NewFromFloat(in.MonteCarlo)).
		Mul(decimal.NewFromFloat(in.CLV)).
		Mul(decimal.NewFromFloat(ConfidenceModifier(in.Confidence)))
	res.TotalModifier, _ = modifier.Float64()

	// Kelly fractions are bankroll proportions; units are percent of
	// bankroll, so 0.01 kelly is one unit before modifiers.
	units := fractional.Mul(decimal.NewFromInt(100)).Mul(modifier)

	if !units.IsPositive() {
		res.Suppressed = true
		return res
	}

	maxStake := decimal.NewFromFloat(cfg.MaxStake)
	minStake := decimal.NewFromFloat(cfg.MinStake)
	if units.GreaterThan(maxStake) {
		units = maxStake
	}
	if units.LessThan(minStake) {
		units = minStake
	}

	step := decimal.NewFromFloat(cfg.StepSize)
	units = units.Div(step).Round(0).Mul(step)

	res.Stake, _ = units.Float64()
	return res
}

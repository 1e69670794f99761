// Package validate holds the three post-consensus gates: Monte Carlo
// robustness, closing-line value, and the style-vs-momentum conflict
// resolver.
package validate

import (
	"math"
	"math/rand"
)

// Robustness classifies how sensitive a pick is to input perturbation.
type Robustness string

const (
	RobustnessRockSolid  Robustness = "rock_solid"
	RobustnessRobust     Robustness = "robust"
	RobustnessUnreliable Robustness = "unreliable"
	RobustnessFragile    Robustness = "fragile"
)

// MonteCarloConfig drives the simulation.
type MonteCarloConfig struct {
	Iterations int
	NoisePct   float64 // ±15% by default
	Seed       int64   // 0 means non-deterministic
}

// DefaultMonteCarloConfig returns the production settings.
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{Iterations: 5000, NoisePct: 0.15}
}

// MonteCarloResult is the robustness verdict for one candidate pick.
type MonteCarloResult struct {
	MeanScore   float64    `json:"mean_score"`
	SuccessRate float64    `json:"success_rate"`
	StdDev      float64    `json:"std_dev"`
	Iterations  int        `json:"iterations"`
	Robustness  Robustness `json:"robustness"`
}

// Passed reports whether the pick survives the gate; fragile and
// unreliable picks are rejected.
func (r MonteCarloResult) Passed() bool {
	return r.Robustness == RobustnessRockSolid || r.Robustness == RobustnessRobust
}

// StakeModifier feeds the Kelly sizing: rock_solid 1.10, robust 1.00,
// anything below 0.70.
func (r MonteCarloResult) StakeModifier() float64 {
	switch r.Robustness {
	case RobustnessRockSolid:
		return 1.10
	case RobustnessRobust:
		return 1.00
	default:
		return 0.70
	}
}

// RunMonteCarlo perturbs (probability, edge, confidence) with independent
// uniform noise and scores each draw:
//
//	score = 0.4·prob·100 + 0.3·edge·100 + 0.3·conf
//
// counting a success when score ≥ 50 and the noisy edge stays positive.
func RunMonteCarlo(probability, edge, confidence float64, cfg MonteCarloConfig) MonteCarloResult {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 5000
	}
	if cfg.NoisePct <= 0 {
		cfg.NoisePct = 0.15
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	noise := func() float64 { return 1 + (rng.Float64()*2-1)*cfg.NoisePct }

	var sum, sumSq float64
	successes := 0
	for i := 0; i < cfg.Iterations; i++ {
		p := probability * noise()
		e := edge * noise()
		c := confidence * noise()

		score := 0.4*p*100 + 0.3*e*100 + 0.3*c
		sum += score
		sumSq += score * score
		if score >= 50 && e > 0 {
			successes++
		}
	}

	n := float64(cfg.Iterations)
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	res := MonteCarloResult{
		MeanScore:   mean,
		SuccessRate: float64(successes) / n,
		StdDev:      math.Sqrt(variance),
		Iterations:  cfg.Iterations,
	}

	switch {
	case res.SuccessRate >= 0.80 && res.StdDev < 10:
		res.Robustness = RobustnessRockSolid
	case res.SuccessRate >= 0.65 && res.StdDev < 15:
		res.Robustness = RobustnessRobust
	case res.SuccessRate >= 0.50:
		res.Robustness = RobustnessUnreliable
	default:
		res.Robustness = RobustnessFragile
	}
	return res
}

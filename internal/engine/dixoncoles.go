package engine

import (
	"fmt"
	"math"

	"github.com/quantbet/quantum/internal/market"
)

// baseline attack rates before strength and kinetic scaling
const (
	baseHomeAttack = 1.4
	baseAwayAttack = 1.2
)

// Model D: Dixon-Coles goal model. Builds Poisson rates from venue
// strength and the kinetic pair, prices the goals markets, and backs the
// one with the largest edge over the book.
func evalDixonColes(in Input) Vote {
	v := Vote{Model: ModelDixonColes, Signal: SignalHold, Confidence: 40}

	lambdaHome := baseHomeAttack * strengthFactor(in.Home.Context.HomeStrength) * (1 + in.Friction.KineticHome/200)
	lambdaAway := baseAwayAttack * strengthFactor(in.Away.Context.AwayStrength) * (1 + in.Friction.KineticAway/200)
	total := lambdaHome + lambdaAway

	probs := map[string]float64{
		market.Over25:  1 - poissonCDF(total, 2),
		market.BTTSYes: (1 - math.Exp(-lambdaHome)) * (1 - math.Exp(-lambdaAway)),
		market.Over35:  1 - poissonCDF(total, 3),
	}

	bestMarket := ""
	bestEdge := math.Inf(-1)
	for mk, p := range probs {
		odds, ok := in.Odds[mk]
		if !ok || odds <= 1 {
			continue
		}
		edge := p - 1/odds
		if edge > bestEdge {
			bestEdge = edge
			bestMarket = mk
		}
	}

	v.Raw = map[string]any{
		"lambda_home": lambdaHome,
		"lambda_away": lambdaAway,
		"probs":       probs,
	}

	if bestMarket == "" || bestEdge < 0.02 {
		v.Reasoning = fmt.Sprintf("no priced goals market beats the book (best edge %.3f)", bestEdge)
		v.Confidence = 40
		return v
	}

	v.Market = bestMarket
	v.Probability = probs[bestMarket]
	v.Raw["edge"] = bestEdge
	v.Reasoning = fmt.Sprintf("%s priced at %.3f vs implied %.3f, edge %.3f", bestMarket, probs[bestMarket], 1/in.Odds[bestMarket], bestEdge)

	switch {
	case bestEdge >= 0.10:
		v.Signal = SignalStrongBuy
		v.Confidence = clampConf(min(90, 65+bestEdge*200))
	case bestEdge >= 0.05:
		v.Signal = SignalBuy
		v.Confidence = clampConf(min(80, 55+bestEdge*250))
	default:
		v.Signal = SignalHold
		v.Confidence = 45
	}
	return v
}

// strengthFactor maps a 0-100 venue strength onto a rate multiplier with
// 50 neutral.
func strengthFactor(strength float64) float64 {
	return 0.5 + strength/100
}

// poissonCDF is P(X ≤ k) for X ~ Poisson(lambda).
func poissonCDF(lambda float64, k int) float64 {
	term := math.Exp(-lambda)
	sum := term
	for i := 1; i <= k; i++ {
		term *= lambda / float64(i)
		sum += term
	}
	return sum
}

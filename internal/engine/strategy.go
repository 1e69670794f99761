package engine

import (
	"fmt"

	"github.com/quantbet/quantum/internal/dna"
)

// Model A: team strategy. Backs whichever side's own trading history is
// more profitable, reading the specialist booleans and exploit markets of
// its Market vector.
func evalTeamStrategy(in Input) Vote {
	v := Vote{Model: ModelTeamStrategy, Signal: SignalSkip, Confidence: 30}

	homeHas := hasStrategy(in.Home.Market)
	awayHas := hasStrategy(in.Away.Market)
	if !homeHas && !awayHas {
		v.Reasoning = "neither side exposes a trading strategy"
		return v
	}

	side := in.Home
	sideName := in.HomeTeam
	if (awayHas && !homeHas) || (awayHas && in.Away.Market.ROI > in.Home.Market.ROI) {
		side = in.Away
		sideName = in.AwayTeam
	}

	roi := side.Market.ROI
	label := strategyLabel(side.Market)
	if len(side.Market.ExploitMarkets) > 0 {
		v.Market = side.Market.ExploitMarkets[0]
	}
	v.Raw = map[string]any{"side": sideName, "roi": roi, "strategy": label}

	switch {
	case roi >= 50:
		v.Signal = SignalStrongBuy
		v.Confidence = clampConf(min(95, 70+roi/5))
	case roi >= 20:
		v.Signal = SignalBuy
		v.Confidence = clampConf(min(80, 60+(roi-20)/2))
	case roi >= 0:
		v.Signal = SignalHold
		v.Confidence = 50
	default:
		v.Signal = SignalSkip
		v.Confidence = 30
	}

	v.Reasoning = fmt.Sprintf("%s strategy %s at %.1f%% ROI over %d bets", sideName, label, roi, side.Market.TotalBets)
	return v
}

func hasStrategy(m dna.MarketVector) bool {
	return m.OverSpecialist || m.UnderSpecialist || m.BTTSYesSpecialist ||
		m.BTTSNoSpecialist || len(m.ExploitMarkets) > 0
}

func strategyLabel(m dna.MarketVector) string {
	switch {
	case m.OverSpecialist:
		return "over_specialist"
	case m.UnderSpecialist:
		return "under_specialist"
	case m.BTTSYesSpecialist:
		return "btts_yes_specialist"
	case m.BTTSNoSpecialist:
		return "btts_no_specialist"
	default:
		return "exploit_list"
	}
}

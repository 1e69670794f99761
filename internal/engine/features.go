package engine

import (
	"fmt"
	"strings"

	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/market"
)

// feature bonuses in units, empirically fitted and frozen
const (
	bonusConservative = 11.73
	bonusLowKiller    = 5.0
	bonusLeakyKeeper  = 3.0
	bonusFormation433 = 8.08
	bonusUnluckyUp    = 6.0
	bonusHighDiesel   = 4.0
)

type feature struct {
	name   string
	bonus  float64
	market string
}

// Model F: DNA features. Scans both fingerprints for the fixed list of
// predictive features; the summed bonuses drive the signal and the best
// feature suggests the market.
func evalDNAFeatures(in Input) Vote {
	v := Vote{Model: ModelDNAFeatures, Signal: SignalHold, Confidence: 45}

	var found []feature
	for _, side := range []*dna.TeamDNA{in.Home, in.Away} {
		found = append(found, scanFeatures(side)...)
	}
	if len(found) == 0 {
		v.Reasoning = "no predictive feature present"
		return v
	}

	var total float64
	best := found[0]
	names := make([]string, 0, len(found))
	for _, f := range found {
		total += f.bonus
		names = append(names, f.name)
		if f.bonus > best.bonus {
			best = f
		}
	}

	v.Market = best.market
	v.Raw = map[string]any{"features": names, "total_bonus": total}
	v.Reasoning = fmt.Sprintf("features %s, total %.2f u", strings.Join(names, ", "), total)
	v.Confidence = clampConf(min(90, 50+total))

	switch {
	case total >= 15:
		v.Signal = SignalStrongBuy
	case total >= 8:
		v.Signal = SignalBuy
	}
	return v
}

func scanFeatures(d *dna.TeamDNA) []feature {
	var out []feature

	if d.Psyche.Mentality == dna.MentalityConservative {
		out = append(out, feature{"conservative_mentality", bonusConservative, ""})
	}
	if d.Psyche.KillerInstinct < 0.4 {
		out = append(out, feature{"low_killer_instinct", bonusLowKiller, ""})
	}
	if d.Roster.KeeperStatus == dna.KeeperLeaky {
		out = append(out, feature{"leaky_keeper", bonusLeakyKeeper, market.BTTSYes})
	}
	if d.Chameleon.MainFormation == "4-3-3" {
		out = append(out, feature{"formation_433", bonusFormation433, market.Over25})
	}
	if d.Risk.UnluckyPct >= 0.55 && d.Luck.RegressionDirection == dna.RegressionUp {
		out = append(out, feature{"unlucky_regressing_up", bonusUnluckyUp, ""})
	}
	if d.Temporal.DieselFactor > 0.65 {
		out = append(out, feature{"high_diesel_factor", bonusHighDiesel, market.Over25})
	}
	return out
}

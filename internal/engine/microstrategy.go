package engine

import (
	"fmt"

	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/market"
)

// venue split of the combined micro edge
const (
	microHomeWeight = 0.6
	microAwayWeight = 0.4
)

// Model G: micro-strategy. Reads the candidate market's bucket from the
// home team's HOME grid and the away team's AWAY grid and combines the
// empirical edges 60/40.
func evalMicroStrategy(in Input) Vote {
	v := Vote{Model: ModelMicroStrategy, Signal: SignalHold, Confidence: 50}

	candidate := in.Home.MicroStrategy.TopEdgeMarketHome
	if candidate == "" {
		candidate = market.DefaultMarket
	}

	homeBucket, homeOK := in.Home.MicroStrategy.Buckets[dna.BucketKey(candidate, "home")]
	awayBucket, awayOK := in.Away.MicroStrategy.Buckets[dna.BucketKey(candidate, "away")]
	if !homeOK && !awayOK {
		v.Reasoning = fmt.Sprintf("no micro bucket materialised for %s", candidate)
		return v
	}

	combined := microHomeWeight*homeBucket.EdgePct + microAwayWeight*awayBucket.EdgePct

	v.Market = candidate
	v.Raw = map[string]any{
		"candidate":     candidate,
		"home_edge":     homeBucket.EdgePct,
		"away_edge":     awayBucket.EdgePct,
		"combined_edge": combined,
		"home_signal":   string(homeBucket.Signal),
		"away_signal":   string(awayBucket.Signal),
	}
	v.Reasoning = fmt.Sprintf("%s combined micro edge %.1f%% (home %.1f, away %.1f)", candidate, combined, homeBucket.EdgePct, awayBucket.EdgePct)

	abs := combined
	if abs < 0 {
		abs = -abs
	}
	v.Confidence = clampConf(50 + abs)

	switch {
	case combined >= 20:
		v.Signal = SignalStrongBuy
	case combined >= 10:
		v.Signal = SignalBuy
	case combined <= -20:
		v.Signal = SignalStrongSell
	case combined <= -10:
		v.Signal = SignalSell
	}
	return v
}

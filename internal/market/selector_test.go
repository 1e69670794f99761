package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPicksHighestEdge(t *testing.T) {
	odds := map[string]float64{
		Over25:  1.72, // implied 0.581
		BTTSYes: 1.80, // implied 0.556
	}
	probs := map[string]float64{
		Over25:  0.62,
		BTTSYes: 0.68,
	}

	sel := Select(odds, probs, 0.5, nil, "")

	assert.Equal(t, BTTSYes, sel.Market)
	assert.InDelta(t, 0.68-1/1.80, sel.Edge, 1e-9)
	assert.Len(t, sel.Considered, 2)
}

func TestSelectIgnoresMarketsOutsideCatalogue(t *testing.T) {
	odds := map[string]float64{
		Over25:           1.72,
		"correct_score":  9.00,
		Over25 + "_close": 1.65, // closing odds sibling, not a market
	}

	sel := Select(odds, map[string]float64{Over25: 0.65}, 0.5, nil, "")

	require.Len(t, sel.Considered, 1)
	assert.Equal(t, Over25, sel.Market)
}

func TestSelectSuggestionBonusBreaksNearTies(t *testing.T) {
	odds := map[string]float64{
		Over25:  2.00,
		Under25: 2.00,
	}
	probs := map[string]float64{
		Over25:  0.55,  // raw edge 0.050, 0.055 with bonus
		Under25: 0.552, // raw edge 0.052
	}

	// Without the bonus under_25 wins on raw edge; the 10% bonus on the
	// suggested over_25 flips it.
	sel := Select(odds, probs, 0.5, map[string]bool{Over25: true}, "")

	assert.Equal(t, Over25, sel.Market)
	assert.True(t, sel.Suggested)
}

func TestSelectTieBreaksTowardStrategyMarket(t *testing.T) {
	odds := map[string]float64{
		HomeWin: 2.00,
		AwayWin: 2.00,
	}
	probs := map[string]float64{
		HomeWin: 0.55,
		AwayWin: 0.55,
	}

	sel := Select(odds, probs, 0.5, nil, AwayWin)
	assert.Equal(t, AwayWin, sel.Market)

	sel = Select(odds, probs, 0.5, nil, HomeWin)
	assert.Equal(t, HomeWin, sel.Market)
}

func TestSelectStrategyMarketDisplacesDefaultOnExactTie(t *testing.T) {
	// identical odds and probability give btts_yes and the default the
	// same edge; the strategy model's preference must win the tie
	odds := map[string]float64{
		Over25:  2.00,
		BTTSYes: 2.00,
	}
	probs := map[string]float64{
		Over25:  0.55,
		BTTSYes: 0.55,
	}

	sel := Select(odds, probs, 0.5, nil, BTTSYes)
	assert.Equal(t, BTTSYes, sel.Market)

	// with no strategy preference the priced default holds the tie
	sel = Select(odds, probs, 0.5, nil, "")
	assert.Equal(t, DefaultMarket, sel.Market)
}

func TestSelectFallsBackToDefaultMarket(t *testing.T) {
	// Every candidate carries the same sub-threshold edge as the default;
	// nothing beats Over 2.5, so it wins regardless of ordering.
	odds := map[string]float64{
		Over25:  2.00,
		Under25: 2.00,
		BTTSYes: 2.00,
	}
	probs := map[string]float64{
		Over25:  0.52,
		Under25: 0.52,
		BTTSYes: 0.52,
	}

	sel := Select(odds, probs, 0.5, nil, "")
	assert.Equal(t, DefaultMarket, sel.Market)
}

func TestSelectEmptyOdds(t *testing.T) {
	sel := Select(nil, nil, 0.5, nil, "")
	assert.Empty(t, sel.Market)
	assert.Empty(t, sel.Considered)
}

func TestSelectUsesDefaultProbability(t *testing.T) {
	odds := map[string]float64{Over15: 1.30}

	sel := Select(odds, nil, 0.80, nil, "")

	require.Equal(t, Over15, sel.Market)
	assert.InDelta(t, 0.80-1/1.30, sel.Edge, 1e-9)
}

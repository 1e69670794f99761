// Package market defines the closed market catalogue and the best-market
// selector.
package market

// Market keys as they appear in odds maps. The catalogue is closed,
// immutable configuration; candidate markets for a fixture are its
// intersection with the supplied odds.
const (
	HomeWin        = "home_win"
	Draw           = "draw"
	AwayWin        = "away_win"
	Over15         = "over_15"
	Under15        = "under_15"
	Over25         = "over_25"
	Under25        = "under_25"
	Over35         = "over_35"
	Under35        = "under_35"
	BTTSYes        = "btts_yes"
	BTTSNo         = "btts_no"
	HomeOver05     = "home_over_05"
	HomeOver15     = "home_over_15"
	AwayOver05     = "away_over_05"
	AwayOver15     = "away_over_15"
	DoubleChance1X = "double_chance_1x"
	DoubleChanceX2 = "double_chance_x2"
)

// Catalogue is the ordered closed list of supported markets.
var Catalogue = []string{
	HomeWin, Draw, AwayWin,
	Over15, Under15, Over25, Under25, Over35, Under35,
	BTTSYes, BTTSNo,
	HomeOver05, HomeOver15, AwayOver05, AwayOver15,
	DoubleChance1X, DoubleChanceX2,
}

// DefaultMarket is returned when nothing in the odds beats it.
const DefaultMarket = Over25

// CloseSuffix marks the sibling odds key carrying the post-market closing
// price, e.g. "over_25_close".
const CloseSuffix = "_close"

// InCatalogue reports whether a key belongs to the closed catalogue.
func InCatalogue(key string) bool {
	for _, m := range Catalogue {
		if m == key {
			return true
		}
	}
	return false
}

// SelectionLabel renders the human label for a chosen market.
func SelectionLabel(key, home, away string) string {
	switch key {
	case HomeWin:
		return home + " to win"
	case AwayWin:
		return away + " to win"
	case Draw:
		return "Draw"
	case Over15:
		return "Over 1.5 goals"
	case Under15:
		return "Under 1.5 goals"
	case Over25:
		return "Over 2.5 goals"
	case Under25:
		return "Under 2.5 goals"
	case Over35:
		return "Over 3.5 goals"
	case Under35:
		return "Under 3.5 goals"
	case BTTSYes:
		return "Both teams to score"
	case BTTSNo:
		return "Both teams to score: no"
	case HomeOver05:
		return home + " over 0.5 goals"
	case HomeOver15:
		return home + " over 1.5 goals"
	case AwayOver05:
		return away + " over 0.5 goals"
	case AwayOver15:
		return away + " over 1.5 goals"
	case DoubleChance1X:
		return home + " or draw"
	case DoubleChanceX2:
		return away + " or draw"
	default:
		return key
	}
}

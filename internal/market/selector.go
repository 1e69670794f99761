package market

import (
	"sort"
)

// suggestionBonus lifts markets a model explicitly voted for.
const suggestionBonus = 0.10

// Candidate is one priced market under consideration.
type Candidate struct {
	Market      string  `json:"market"`
	Odds        float64 `json:"odds"`
	Probability float64 `json:"probability"`
	Edge        float64 `json:"edge"`
	Suggested   bool    `json:"suggested"`
}

// Selection is the chosen market with its full candidate list for audit.
type Selection struct {
	Candidate
	Considered []Candidate `json:"considered"`
}

// Select picks the best market from the bookmaker's odds map. Candidates
// are the catalogue markets actually priced; each scores
// edge = prob - 1/odds, with a 10% bonus on markets any model suggested.
// Ties break toward the strategy model's preferred market, then
// alphabetically so the choice is stable. When no candidate beats the
// default Over 2.5 line, the default is returned.
//
// probs maps market key to our probability estimate; markets missing
// from it fall back to defaultProb. suggested is the set of markets the
// models voted for; strategyMarket is Model A's preference and may be
// empty.
func Select(odds map[string]float64, probs map[string]float64, defaultProb float64, suggested map[string]bool, strategyMarket string) Selection {
	var cands []Candidate
	for _, key := range Catalogue {
		price, ok := odds[key]
		if !ok || price <= 1 {
			continue
		}
		prob, ok := probs[key]
		if !ok {
			prob = defaultProb
		}
		edge := prob - 1/price
		if suggested[key] {
			edge *= 1 + suggestionBonus
		}
		cands = append(cands, Candidate{
			Market:      key,
			Odds:        price,
			Probability: prob,
			Edge:        edge,
			Suggested:   suggested[key],
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Edge != cands[j].Edge {
			return cands[i].Edge > cands[j].Edge
		}
		if (cands[i].Market == strategyMarket) != (cands[j].Market == strategyMarket) {
			return cands[i].Market == strategyMarket
		}
		return cands[i].Market < cands[j].Market
	})

	sel := Selection{Considered: cands}
	for _, c := range cands {
		if c.Market == DefaultMarket {
			sel.Candidate = c
			break
		}
	}
	if len(cands) > 0 {
		top := cands[0]
		switch {
		case sel.Market == "":
			sel.Candidate = top
		case top.Edge > sel.Edge:
			sel.Candidate = top
		case top.Edge == sel.Edge && top.Market == strategyMarket:
			// the strategy model's market wins an exact tie with the default
			sel.Candidate = top
		}
	}
	return sel
}

package validate

// CLVZone classifies where our price sits relative to the projected close.
type CLVZone string

const (
	CLVSweetSpot CLVZone = "sweet_spot" // close 5-10% above our price
	CLVGood      CLVZone = "good"       // close 0-5% above our price
	CLVDanger    CLVZone = "danger"     // >10%, too good to be true
	CLVNoSignal  CLVZone = "no_signal"  // no close estimate, or close at/below our price
)

// CLVResult carries the closing-line value check for one priced market.
type CLVResult struct {
	OurOdds       float64 `json:"our_odds"`
	ClosingOdds   float64 `json:"closing_odds"`
	CLVPercent    float64 `json:"clv_percent"`
	Zone          CLVZone `json:"zone"`
	HasProjection bool    `json:"has_projection"`
}

// StakeModifier maps the zone onto the sizing multiplier.
func (r CLVResult) StakeModifier() float64 {
	switch r.Zone {
	case CLVSweetSpot:
		return 1.20
	case CLVDanger:
		return 0.80
	default:
		return 1.00
	}
}

// CheckCLV compares the odds we took against the projected closing odds,
// CLV% = (close - ours)/ours. A move beyond 10% is treated as a trap, not
// an edge.
func CheckCLV(ourOdds, closingOdds float64) CLVResult {
	res := CLVResult{OurOdds: ourOdds, ClosingOdds: closingOdds}
	if ourOdds <= 1 || closingOdds <= 1 {
		res.Zone = CLVNoSignal
		return res
	}
	res.HasProjection = true
	res.CLVPercent = (closingOdds - ourOdds) / ourOdds * 100

	switch {
	case res.CLVPercent > 10:
		res.Zone = CLVDanger
	case res.CLVPercent >= 5:
		res.Zone = CLVSweetSpot
	case res.CLVPercent > 0:
		res.Zone = CLVGood
	default:
		res.Zone = CLVNoSignal
	}
	return res
}

package engine

import "fmt"

// Model C: matchup momentum. Targets the side with the higher recent-form
// score and maps its trend onto a signal. Without momentum context the
// model abstains with a hold.
func evalMatchupMomentum(in Input) Vote {
	v := Vote{Model: ModelMatchupMomentum, Signal: SignalHold, Confidence: 50}

	if in.Context == nil || (in.Context.HomeMomentum == nil && in.Context.AwayMomentum == nil) {
		v.Reasoning = "no momentum context supplied"
		return v
	}

	target := in.Context.HomeMomentum
	targetName := in.HomeTeam
	other := in.Context.AwayMomentum
	if target == nil || (other != nil && other.Score > target.Score) {
		target = other
		targetName = in.AwayTeam
	}

	streak := float64(target.Streak)
	v.Raw = map[string]any{"side": targetName, "trend": string(target.Trend), "streak": target.Streak, "score": target.Score}
	v.Reasoning = fmt.Sprintf("%s momentum %s, streak %d", targetName, target.Trend, target.Streak)

	switch target.Trend {
	case TrendBlazing:
		v.Signal = SignalStrongBuy
		v.Confidence = clampConf(min(95, 85+streak))
	case TrendHot:
		v.Signal = SignalBuy
		v.Confidence = clampConf(min(85, 70+2*streak))
	case TrendWarming:
		v.Signal = SignalBuy
		v.Confidence = 60
	case TrendNeutral:
		v.Signal = SignalHold
		v.Confidence = 50
	case TrendCooling, TrendFreezing:
		v.Signal = SignalSkip
		v.Confidence = 40
		v.Reasoning = fmt.Sprintf("%s is %s, form against the bet", targetName, target.Trend)
	default:
		v.Signal = SignalHold
		v.Confidence = 50
	}
	return v
}

package engine

import (
	"fmt"

	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/market"
	"github.com/quantbet/quantum/internal/referee"
)

// scenarioMarkets maps each detected scenario to its suggested market.
// Immutable configuration.
var scenarioMarkets = map[friction.Scenario]string{
	friction.ScenarioSniperDuel:         market.BTTSYes,
	friction.ScenarioLatePunishment:     market.Over25,
	friction.ScenarioTotalChaos:         market.Over35,
	friction.ScenarioConservativeWall:   market.Under25,
	friction.ScenarioOpenGame:           market.Over25,
	friction.ScenarioHighScoringRivalry: market.Over25,
	friction.ScenarioEndToEnd:           market.BTTSYes,
	friction.ScenarioTrenchWarfare:      market.Under25,
	friction.ScenarioAsphyxiation:       market.Under25,
	friction.ScenarioTenseStalemate:     market.Under25,
	friction.ScenarioBrokenRhythm:       market.Under25,
	friction.ScenarioHomeDominated:      market.HomeWin,
	friction.ScenarioAwayPressured:      market.HomeWin,
	friction.ScenarioImplosionRisk:      market.BTTSYes,
	friction.ScenarioCounterAttack:      market.AwayOver05,
	friction.ScenarioGlassCannon:        market.BTTSYes,
	friction.ScenarioEarlyBlitz:         market.Over15,
	friction.ScenarioDieselTakeover:     market.Over25,
	friction.ScenarioKeeperMeltdown:     market.BTTSYes,
	// nemesis_trap suggests no market: it is a warning, not a back
}

type detectedScenario struct {
	scenario   friction.Scenario
	confidence float64
}

// Model E: scenario detector. Evaluates the closed twenty-scenario list
// over both DNAs and the friction matrix. Known to be unprofitable in
// isolation; its base weight assumes the Monte Carlo gate stays on.
func evalScenario(in Input) Vote {
	v := Vote{Model: ModelScenario, Signal: SignalHold, Confidence: 45}

	var ref *referee.Profile
	if in.Context != nil {
		ref = in.Context.Referee
	}
	detected := detectScenarios(in.Home, in.Away, in.Friction, ref)
	if len(detected) == 0 {
		v.Reasoning = "no scenario triggered"
		return v
	}

	best := detected[0]
	for _, d := range detected[1:] {
		if d.confidence > best.confidence {
			best = d
		}
	}

	names := make([]string, 0, len(detected))
	for _, d := range detected {
		names = append(names, string(d.scenario))
	}

	v.Market = scenarioMarkets[best.scenario]
	v.Confidence = clampConf(best.confidence)
	v.Raw = map[string]any{"scenarios": names, "best": string(best.scenario)}
	v.Reasoning = fmt.Sprintf("scenario %s (conf %.0f) of %d detected", best.scenario, best.confidence, len(detected))

	if best.confidence >= 75 && v.Market != "" {
		v.Signal = SignalBuy
	}
	return v
}

// disciplinaryBoost is the confidence bump a strict arbiter adds to the
// card-driven scenarios. An unknown referee contributes nothing.
func disciplinaryBoost(ref *referee.Profile) float64 {
	if ref == nil || !ref.Known {
		return 0
	}
	if ref.Style == referee.StyleTriggerHappy || ref.StrictnessLevel >= 7 {
		return 6 + float64(ref.StrictnessLevel-5)
	}
	return 0
}

// detectScenarios runs every trigger, friction-static and DNA-dependent.
// A known strict referee amplifies the disciplinary scenarios.
func detectScenarios(home, away *dna.TeamDNA, fr *friction.Matrix, ref *referee.Profile) []detectedScenario {
	var out []detectedScenario
	add := func(s friction.Scenario, conf float64) {
		out = append(out, detectedScenario{scenario: s, confidence: conf})
	}

	boost := disciplinaryBoost(ref)

	// friction-level scenarios inherit trigger-strength confidence
	for _, s := range fr.TriggeredScenarios {
		switch s {
		case friction.ScenarioTotalChaos:
			add(s, min(92, fr.ChaosPotential+12+boost))
		case friction.ScenarioImplosionRisk:
			add(s, 68+boost)
		case friction.ScenarioHighScoringRivalry:
			add(s, min(88, 55+fr.H2HAvgGoals*8))
		case friction.ScenarioOpenGame:
			add(s, min(85, 50+fr.PredictedGoals*10))
		default:
			add(s, 68)
		}
	}

	// DNA-dependent scenarios
	if home.Chameleon.ShotAccuracy >= 0.6 && away.Chameleon.ShotAccuracy >= 0.6 {
		add(friction.ScenarioSniperDuel, 78)
	}
	if away.Temporal.DieselFactor >= 0.65 && home.Physical.LateResistance <= 40 {
		add(friction.ScenarioLatePunishment, 76)
	}
	if home.Temporal.DieselFactor >= 0.7 && away.Temporal.DieselFactor >= 0.7 {
		add(friction.ScenarioDieselTakeover, 72)
	}
	if home.Psyche.Mentality == dna.MentalityConservative &&
		away.Psyche.Mentality == dna.MentalityConservative &&
		fr.PredictedGoals <= 2.4 {
		add(friction.ScenarioConservativeWall, 80)
	}
	if home.Context.XGFor >= 1.8 && home.Context.XGAgainst >= 1.6 {
		add(friction.ScenarioGlassCannon, 74)
	}
	if away.Context.XGFor >= 1.8 && away.Context.XGAgainst >= 1.6 {
		add(friction.ScenarioGlassCannon, 74)
	}
	if mult, ok := home.Nemesis.FrictionVsStyle[away.Context.Style]; ok && mult >= 1.3 {
		add(friction.ScenarioNemesisTrap, 77)
	}
	if home.Temporal.FastStarterFactor >= 0.7 || away.Temporal.FastStarterFactor >= 0.7 {
		add(friction.ScenarioEarlyBlitz, 70)
	}
	if home.Roster.KeeperStatus == dna.KeeperLeaky || away.Roster.KeeperStatus == dna.KeeperLeaky {
		add(friction.ScenarioKeeperMeltdown, 73)
	}

	return out
}

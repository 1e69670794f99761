package friction

import (
	"math"

	"github.com/quantbet/quantum/internal/dna"
)

// physical edge sub-score weights: intensity 40%, stamina 40%, freshness 20%
const (
	intensityWeight = 0.40
	staminaWeight   = 0.40
	freshnessWeight = 0.20
)

// ComputeDynamicMetrics populates the kinetic pair, the physical edge with
// its breakdown, and re-detects scenarios with the DNAs in hand. Static
// fields are never touched.
func (m *Matrix) ComputeDynamicMetrics(home, away *dna.TeamDNA) {
	m.KineticHome, m.KineticAway = m.kinetics()
	m.PhysicalEdge, m.PhysicalDetail = physicalEdge(home, away)
	m.TriggeredScenarios = m.detectScenarios(home, away)
	m.DynamicComputed = true
}

// kinetics projects match-tempo energy onto each side. The only
// non-linear aggregation in the matrix:
//
//	base = style·0.40 + mental·0.30 + friction·0.30
//	tempo_factor = max(0.1, tempo/50)^1.2
//	chaos_factor = 1 + (chaos − 50)/200
//	total = base · tempo_factor · chaos_factor
//	kinetic = clamp(total · share)
//
// The home side takes a 1.05 share, cut to 0.95 when the mental clash is
// below 45; the away share is the complement to 2. All-neutral statics
// land near the loader's 55/48 fallback pair.
func (m *Matrix) kinetics() (homeK, awayK float64) {
	base := m.StyleClashScore*0.40 + m.MentalClashScore*0.30 + m.FrictionScore*0.30
	tempoFactor := math.Pow(math.Max(0.1, m.TempoClashScore/50), 1.2)
	chaosFactor := 1 + (m.ChaosPotential-50)/200
	total := base * tempoFactor * chaosFactor

	homeShare := 1.05
	if m.MentalClashScore < 45 {
		homeShare = 0.95
	}
	awayShare := 2 - homeShare

	return clampKinetic(total * homeShare), clampKinetic(total * awayShare)
}

func clampKinetic(v float64) float64 {
	if v < 0.1 {
		return 0.1
	}
	if v > 99.9 {
		return 99.9
	}
	return v
}

// physicalEdge compares the two Physical/Roster profiles on the 50-centred
// scale. Equal sides land on 50 exactly.
func physicalEdge(home, away *dna.TeamDNA) (float64, PhysicalBreakdown) {
	bd := PhysicalBreakdown{
		IntensityEdge: edgeScale(intensity(home), intensity(away)),
		StaminaEdge:   edgeScale(stamina(home), stamina(away)),
		FreshnessEdge: edgeScale(freshness(home), freshness(away)),
	}
	edge := bd.IntensityEdge*intensityWeight +
		bd.StaminaEdge*staminaWeight +
		bd.FreshnessEdge*freshnessWeight
	return edge, bd
}

// intensity: pressing weighted by possession efficiency, plus aerial wins.
func intensity(d *dna.TeamDNA) float64 {
	p := d.Physical
	return p.PressingIntensity*(p.PossessionPct/100) + p.AerialWinPct
}

// stamina: late-game dominance plus late resistance.
func stamina(d *dna.TeamDNA) float64 {
	p := d.Physical
	return p.LateGameDominance + p.LateResistance
}

// freshness: rotation discounted by top-3 player dependency.
func freshness(d *dna.TeamDNA) float64 {
	return d.Physical.RotationIndex * (100 - d.Roster.Top3Dependency) / 100
}

// edgeScale maps a raw (home, away) comparison onto [0,100] with 50 even.
func edgeScale(homeVal, awayVal float64) float64 {
	e := 50 + (homeVal-awayVal)/2
	if e < 0 {
		return 0
	}
	if e > 100 {
		return 100
	}
	return e
}

// DetectStaticScenarios fires the triggers that need friction fields only.
// The loader calls it so a matrix without dynamic metrics still carries
// its static scenarios.
func (m *Matrix) DetectStaticScenarios() []Scenario {
	return m.detectScenarios(nil, nil)
}

// detectScenarios evaluates the documented triggers. DNA-dependent
// triggers are skipped when the DNAs are nil.
func (m *Matrix) detectScenarios(home, away *dna.TeamDNA) []Scenario {
	var out []Scenario
	add := func(s Scenario) { out = append(out, s) }

	// static triggers
	if m.ChaosPotential >= 70 {
		add(ScenarioTotalChaos)
	}
	if m.PredictedGoals >= 3.0 && m.BTTSProb >= 0.55 {
		add(ScenarioOpenGame)
	}
	if m.PredictedWinner == WinnerHome && m.FrictionScore >= 65 {
		add(ScenarioHomeDominated)
	}
	if m.H2HMatches > 0 && m.H2HAvgGoals >= 3.5 {
		add(ScenarioHighScoringRivalry)
	}
	if m.PredictedGoals <= 2.1 && m.MentalClashScore >= 60 {
		add(ScenarioTenseStalemate)
	}
	if m.TempoClashScore >= 70 {
		add(ScenarioBrokenRhythm)
	}
	if m.TempoClashScore >= 60 && m.StyleClashScore >= 55 && m.PredictedGoals >= 2.6 {
		add(ScenarioEndToEnd)
	}
	if m.StyleClashScore >= 70 && m.PredictedGoals <= 2.3 {
		add(ScenarioAsphyxiation)
	}
	if m.PredictedGoals <= 2.0 && m.ChaosPotential <= 35 {
		add(ScenarioTrenchWarfare)
	}
	if m.MentalClashScore >= 70 && m.ChaosPotential >= 55 {
		add(ScenarioImplosionRisk)
	}

	if home == nil || away == nil {
		return out
	}

	// dynamic triggers
	if m.KineticHome-m.KineticAway >= 15 {
		add(ScenarioAwayPressured)
	}
	if home.Nemesis.TerritorialDominance >= 65 && away.Nemesis.Verticality >= 65 {
		add(ScenarioCounterAttack)
	}
	return out
}

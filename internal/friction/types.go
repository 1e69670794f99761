// Package friction models the pairwise matchup interaction object: a
// static precomputed pair record plus dynamic metrics derived from both
// teams' fingerprints at decision time.
package friction

// Confidence grades the pair record's sample quality.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Winner is the statically predicted outcome of the pair.
type Winner string

const (
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerDraw Winner = "draw"
)

// Scenario is a discrete interaction pattern drawn from the closed set of
// twenty. The first twelve can fire from friction alone; the rest need
// both DNAs and are detected by the scenario model.
type Scenario string

const (
	ScenarioTotalChaos         Scenario = "total_chaos"
	ScenarioOpenGame           Scenario = "open_game"
	ScenarioHomeDominated      Scenario = "home_dominated"
	ScenarioAwayPressured      Scenario = "away_pressured"
	ScenarioHighScoringRivalry Scenario = "high_scoring_rivalry"
	ScenarioTenseStalemate     Scenario = "tense_stalemate"
	ScenarioBrokenRhythm       Scenario = "broken_rhythm"
	ScenarioEndToEnd           Scenario = "end_to_end"
	ScenarioAsphyxiation       Scenario = "asphyxiation"
	ScenarioTrenchWarfare      Scenario = "trench_warfare"
	ScenarioImplosionRisk      Scenario = "implosion_risk"
	ScenarioCounterAttack      Scenario = "counter_attack"
	ScenarioSniperDuel         Scenario = "sniper_duel"
	ScenarioLatePunishment     Scenario = "late_punishment"
	ScenarioGlassCannon        Scenario = "glass_cannon"
	ScenarioConservativeWall   Scenario = "conservative_wall"
	ScenarioNemesisTrap        Scenario = "nemesis_trap"
	ScenarioEarlyBlitz         Scenario = "early_blitz"
	ScenarioDieselTakeover     Scenario = "diesel_takeover"
	ScenarioKeeperMeltdown     Scenario = "keeper_meltdown"
)

// AllScenarios is the closed list; immutable configuration.
var AllScenarios = []Scenario{
	ScenarioTotalChaos, ScenarioOpenGame, ScenarioHomeDominated,
	ScenarioAwayPressured, ScenarioHighScoringRivalry, ScenarioTenseStalemate,
	ScenarioBrokenRhythm, ScenarioEndToEnd, ScenarioAsphyxiation,
	ScenarioTrenchWarfare, ScenarioImplosionRisk, ScenarioCounterAttack,
	ScenarioSniperDuel, ScenarioLatePunishment, ScenarioGlassCannon,
	ScenarioConservativeWall, ScenarioNemesisTrap, ScenarioEarlyBlitz,
	ScenarioDieselTakeover, ScenarioKeeperMeltdown,
}

// Vector is the nested friction decomposition from the pair table.
type Vector struct {
	StyleClash         float64 `json:"style_clash"`
	OffensivePotential float64 `json:"offensive_potential"`
	Fatigue            float64 `json:"fatigue"`
	MotivationGap      float64 `json:"motivation_gap"`
	FormDivergence     float64 `json:"form_divergence"`
	Pressing           float64 `json:"pressing"`
	Attacking          float64 `json:"attacking"`
	Defensive          float64 `json:"defensive"`
	SetPiece           float64 `json:"set_piece"`
	Transition         float64 `json:"transition"`
}

// PhysicalBreakdown decomposes the physical edge into its three weighted
// sub-scores (intensity 40%, stamina 40%, freshness 20%). Each is on the
// 50-centred edge scale: 50 even, above 50 home.
type PhysicalBreakdown struct {
	IntensityEdge float64 `json:"intensity_edge"`
	StaminaEdge   float64 `json:"stamina_edge"`
	FreshnessEdge float64 `json:"freshness_edge"`
}

// Matrix is the full matchup interaction object. Static fields come from
// the pair table; dynamic fields are populated by ComputeDynamicMetrics
// when both DNAs are available.
type Matrix struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	// static
	FrictionScore    float64    `json:"friction_score"`     // 0-100
	StyleClashScore  float64    `json:"style_clash_score"`  // 0-100
	TempoClashScore  float64    `json:"tempo_clash_score"`  // 0-100
	MentalClashScore float64    `json:"mental_clash_score"` // 0-100
	ChaosPotential   float64    `json:"chaos_potential"`    // 0-100
	PredictedGoals   float64    `json:"predicted_goals"`
	BTTSProb         float64    `json:"btts_prob"`    // [0,1]
	Over25Prob       float64    `json:"over_25_prob"` // [0,1]
	PredictedWinner  Winner     `json:"predicted_winner"`
	H2HMatches       int        `json:"h2h_matches"`
	H2HAvgGoals      float64    `json:"h2h_avg_goals"`
	Vector           Vector     `json:"friction_vector"`
	Confidence       Confidence `json:"confidence"`

	// provenance
	Source     string `json:"source"` // "v3", "v1", "default"
	IsReversed bool   `json:"is_reversed"`

	// dynamic
	KineticHome        float64           `json:"kinetic_home"`
	KineticAway        float64           `json:"kinetic_away"`
	PhysicalEdge       float64           `json:"physical_edge"` // 50 even, >50 home
	PhysicalDetail     PhysicalBreakdown `json:"physical_breakdown"`
	TriggeredScenarios []Scenario        `json:"triggered_scenarios"`
	DynamicComputed    bool              `json:"dynamic_computed"`
}

// TemporalClash is the historical alias of TempoClashScore.
func (m *Matrix) TemporalClash() float64 { return m.TempoClashScore }

// PsycheDominance is the historical alias of MentalClashScore.
func (m *Matrix) PsycheDominance() float64 { return m.MentalClashScore }

// HasScenario reports whether a scenario fired for this matchup.
func (m *Matrix) HasScenario(s Scenario) bool {
	for _, t := range m.TriggeredScenarios {
		if t == s {
			return true
		}
	}
	return false
}

package dna

// TeamDNA is the fused twelve-vector fingerprint for one team. It is
// read-only at orchestration time; refreshes happen out-of-band.
type TeamDNA struct {
	TeamName string `json:"team_name"`

	Market        MarketVector        `json:"market"`
	Context       ContextVector       `json:"context"`
	Risk          RiskVector          `json:"risk"`
	Temporal      TemporalVector      `json:"temporal"`
	Nemesis       NemesisVector       `json:"nemesis"`
	Psyche        PsycheVector        `json:"psyche"`
	Sentiment     SentimentVector     `json:"sentiment"`
	Roster        RosterVector        `json:"roster"`
	Physical      PhysicalVector      `json:"physical"`
	Luck          LuckVector          `json:"luck"`
	Chameleon     ChameleonVector     `json:"chameleon"`
	MicroStrategy MicroStrategyVector `json:"micro_strategy"`

	// IsNeutral marks a template returned when both sources missed the team.
	IsNeutral bool `json:"is_neutral"`
}

// MarketVector is the team's own trading history.
type MarketVector struct {
	CLVMean           float64  `json:"clv_mean"`
	EdgeMean          float64  `json:"edge_mean"`
	SampleSize        int      `json:"sample_size"`
	OverSpecialist    bool     `json:"over_specialist"`
	UnderSpecialist   bool     `json:"under_specialist"`
	BTTSYesSpecialist bool     `json:"btts_yes_specialist"`
	BTTSNoSpecialist  bool     `json:"btts_no_specialist"`
	TotalBets         int      `json:"total_bets"`
	WinRate           float64  `json:"win_rate"`            // [0,1]
	ROI               float64  `json:"roi"`                 // percent, signed
	ExploitMarkets    []string `json:"exploit_markets"`
	AvoidMarkets      []string `json:"avoid_markets"`
}

// ContextVector is the season-level strength and tendency profile.
type ContextVector struct {
	HomeStrength  float64 `json:"home_strength"`  // 0-100
	AwayStrength  float64 `json:"away_strength"`  // 0-100
	Style         string  `json:"style"`
	GoalsTendency float64 `json:"goals_tendency"` // avg total goals in its games
	BTTSTendency  float64 `json:"btts_tendency"`  // [0,1]
	DrawTendency  float64 `json:"draw_tendency"`  // [0,1]
	XGFor         float64 `json:"xg_for"`
	XGAgainst     float64 `json:"xg_against"`
	CleanSheets   int     `json:"clean_sheets"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	GoalsFor      int     `json:"goals_for"`
	GoalsAgainst  int     `json:"goals_against"`
}

// RiskVector decomposes variance exposure.
type RiskVector struct {
	TotalLuck      float64 `json:"total_luck"`
	DefensiveLuck  float64 `json:"defensive_luck"`
	FinishingLuck  float64 `json:"finishing_luck"`
	PanicFactor    float64 `json:"panic_factor"`    // [0,1]
	LeadProtection float64 `json:"lead_protection"`
	UnluckyPct     float64 `json:"unlucky_pct"`
	TierRank       float64 `json:"tier_rank"`       // 0-100
}

// TemporalVector is the in-game time distribution profile.
type TemporalVector struct {
	DieselFactor      float64 `json:"diesel_factor"`       // [0,1] late-game strength
	FastStarterFactor float64 `json:"fast_starter_factor"` // [0,1]
	XGMomentum        float64 `json:"xg_momentum"`
	FirstHalfShare    float64 `json:"first_half_share"`    // [0,1]
	SecondHalfShare   float64 `json:"second_half_share"`   // [0,1]
	Goals0to15        float64 `json:"goals_0_15"`
	Goals16to30       float64 `json:"goals_16_30"`
	Goals31to45       float64 `json:"goals_31_45"`
	Goals46to60       float64 `json:"goals_46_60"`
	Goals61to75       float64 `json:"goals_61_75"`
	Goals76to90       float64 `json:"goals_76_90"`
}

// NemesisVector captures style and the opponents that punish it.
type NemesisVector struct {
	Verticality           float64            `json:"verticality"`            // 0-100 normalised
	Patience              float64            `json:"patience"`               // 0-100 normalised
	FastShots             float64            `json:"fast_shots"`             // [0,1] share
	SlowShots             float64            `json:"slow_shots"`             // [0,1] share
	TerritorialDominance  float64            `json:"territorial_dominance"`  // 0-100 normalised
	KeeperOverperformance float64            `json:"keeper_overperformance"`
	FrictionVsStyle       map[string]float64 `json:"friction_vs_style"`      // opponent style → multiplier
	DefensiveSolidityPct  float64            `json:"defensive_solidity_pct"` // percentile 0-100
	DefensiveBoxPct       float64            `json:"defensive_box_pct"`      // percentile 0-100
}

// Mentality is derived once, in the converter, from comeback_mentality.
// Downstream consumers read the label and never recompute it.
type Mentality string

const (
	MentalityConservative Mentality = "conservative"
	MentalityBalanced     Mentality = "balanced"
	MentalityAggressive   Mentality = "aggressive"
)

// PsycheVector is the game-state behaviour profile.
type PsycheVector struct {
	PanicFactor          float64   `json:"panic_factor"`           // [0,1]
	KillerInstinct       float64   `json:"killer_instinct"`        // [0,1]
	LeadProtection       float64   `json:"lead_protection"`        // [0,1]
	ComebackMentality    float64   `json:"comeback_mentality"`
	CollapseRate         float64   `json:"collapse_rate"`          // [0,1]
	SurrenderRate        float64   `json:"surrender_rate"`         // [0,1]
	HTDominance          float64   `json:"ht_dominance"`
	GoalsConcededWinning float64   `json:"goals_conceded_winning"`
	GoalsConcededDrawing float64   `json:"goals_conceded_drawing"`
	GoalsConcededLosing  float64   `json:"goals_conceded_losing"`
	Mentality            Mentality `json:"mentality"`
}

// SentimentVector mirrors market behaviour around the team.
type SentimentVector struct {
	CLVMean            float64 `json:"clv_mean"`
	EdgeMean           float64 `json:"edge_mean"`
	SampleSize         int     `json:"sample_size"`
	OverBias           float64 `json:"over_bias"`
	UnderBias          float64 `json:"under_bias"`
	BTTSBias           float64 `json:"btts_bias"`
	VulnerabilityScore float64 `json:"vulnerability_score"` // 0-100
}

// KeeperStatus is derived once, in the converter, from save rate and
// keeper over-performance.
type KeeperStatus string

const (
	KeeperLeaky  KeeperStatus = "leaky"
	KeeperSolid  KeeperStatus = "solid"
	KeeperNormal KeeperStatus = "normal"
)

// RosterVector names the key players and their dependency weights.
type RosterVector struct {
	MVPName               string       `json:"mvp_name"`
	PlaymakerName         string       `json:"playmaker_name"`
	KeeperName            string       `json:"keeper_name"`
	MVPDependency         float64      `json:"mvp_dependency"`         // [0,1]
	PlaymakerDependency   float64      `json:"playmaker_dependency"`   // [0,1]
	Top3Dependency        float64      `json:"top3_dependency"`        // 0-100
	KeeperSaveRate        float64      `json:"keeper_save_rate"`       // [0,1]
	KeeperOverperformance float64      `json:"keeper_overperformance"`
	KeeperStatus          KeeperStatus `json:"keeper_status"`
}

// PhysicalVector carries the athletic output profile, normalised 0-100
// through the calibration table on read.
type PhysicalVector struct {
	PressingIntensity float64 `json:"pressing_intensity"`  // 0-100
	LateGameXG        float64 `json:"late_game_xg"`
	RotationIndex     float64 `json:"rotation_index"`      // 0-100
	AerialWinPct      float64 `json:"aerial_win_pct"`      // 0-100
	PossessionPct     float64 `json:"possession_pct"`      // 0-100
	TacklesDefThird   float64 `json:"tackles_def_third"`
	TacklesMidThird   float64 `json:"tackles_mid_third"`
	TacklesAttThird   float64 `json:"tackles_att_third"`
	ProgressivePasses float64 `json:"progressive_passes"`  // 0-100
	LateResistance    float64 `json:"late_resistance"`     // 0-100
	LateGameDominance float64 `json:"late_game_dominance"` // 0-100
}

// RegressionDirection marks which way the luck decomposition points.
type RegressionDirection string

const (
	RegressionUp   RegressionDirection = "up"
	RegressionDown RegressionDirection = "down"
	RegressionFlat RegressionDirection = "flat"
)

// LuckVector is the xPoints decomposition.
type LuckVector struct {
	TotalLuck           float64             `json:"total_luck"`
	DefensiveLuck       float64             `json:"defensive_luck"`
	FinishingLuck       float64             `json:"finishing_luck"`
	XPointsDelta        float64             `json:"xpoints_delta"`
	ExpectedPoints      float64             `json:"expected_points"`
	ActualPoints        float64             `json:"actual_points"`
	RegressionDirection RegressionDirection `json:"regression_direction"`
	RegressionMagnitude float64             `json:"regression_magnitude"` // [0,1]
}

// ChameleonVector measures tactical adaptability.
type ChameleonVector struct {
	AdaptabilityIndex   float64 `json:"adaptability_index"`   // 0-100
	ComebackAbility     float64 `json:"comeback_ability"`     // [0,1]
	TempoFlexibility    float64 `json:"tempo_flexibility"`    // 0-100
	FormationVolatility float64 `json:"formation_volatility"` // [0,1]
	SetPieceThreat      float64 `json:"set_piece_threat"`     // 0-100
	LongRangeThreat     float64 `json:"long_range_threat"`    // 0-100
	ShotAccuracy        float64 `json:"shot_accuracy"`        // [0,1]
	MainFormation       string  `json:"main_formation"`
}

// MicroConfidence grades a micro-market bucket's sample quality.
type MicroConfidence string

const (
	MicroConfidenceHigh   MicroConfidence = "high"
	MicroConfidenceMedium MicroConfidence = "medium"
	MicroConfidenceLow    MicroConfidence = "low"
)

// MicroSignal is the per-bucket recommendation.
type MicroSignal string

const (
	MicroStrongBack MicroSignal = "strong_back"
	MicroBack       MicroSignal = "back"
	MicroNeutral    MicroSignal = "neutral"
	MicroFade       MicroSignal = "fade"
	MicroStrongFade MicroSignal = "strong_fade"
)

// MicroBucket is one market × venue cell of the 126-bucket grid.
type MicroBucket struct {
	EdgePct    float64         `json:"edge_pct"`
	HitRate    float64         `json:"hit_rate"`   // [0,1]
	Baseline   float64         `json:"baseline"`   // [0,1]
	Sample     int             `json:"sample"`
	Confidence MicroConfidence `json:"confidence"`
	Signal     MicroSignal     `json:"signal"`
}

// MicroStrategyVector is the in-memory summary of the team's empirical
// market grid. The full 126-bucket detail lives in the external store;
// Buckets holds the cells that were materialised for this fixture, keyed
// "market|venue" (venue "home" or "away").
type MicroStrategyVector struct {
	BucketCount       int                    `json:"bucket_count"`
	HomeBuckets       int                    `json:"home_buckets"`
	AwayBuckets       int                    `json:"away_buckets"`
	TopEdgeMarketHome string                 `json:"top_edge_market_home"`
	TopEdgeMarketAway string                 `json:"top_edge_market_away"`
	TopEdgeHome       float64                `json:"top_edge_home"`
	TopEdgeAway       float64                `json:"top_edge_away"`
	FadeCountHome     int                    `json:"fade_count_home"`
	FadeCountAway     int                    `json:"fade_count_away"`
	Buckets           map[string]MicroBucket `json:"buckets"`
}

// BucketKey builds the "market|venue" key for the micro grid.
func BucketKey(market, venue string) string {
	return market + "|" + venue
}

package dna

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/quantbet/quantum/internal/config"
)

// Record is the fused per-team payload from both sources. Values are
// whatever the drivers produced: numbers, strings, bools, nested maps, or
// still-encoded JSON strings.
type Record map[string]any

// Converter turns fused records into TeamDNA values. It holds the
// calibration table so raw scales are normalised on read, never on compute.
type Converter struct {
	calib *config.Calibration
}

// NewConverter builds a converter over the given calibration table.
func NewConverter(calib *config.Calibration) *Converter {
	return &Converter{calib: calib}
}

// Convert builds a full TeamDNA from a fused record. Missing fields fall
// back to the neutral defaults; conversion never fails.
func (c *Converter) Convert(teamName string, rec Record) *TeamDNA {
	d := Neutral(teamName)
	if len(rec) == 0 {
		return d
	}
	d.IsNeutral = false

	c.convertMarket(&d.Market, rec)
	c.convertContext(&d.Context, rec)
	c.convertRisk(&d.Risk, rec)
	c.convertTemporal(&d.Temporal, rec)
	c.convertNemesis(&d.Nemesis, rec)
	c.convertPsyche(&d.Psyche, rec)
	c.convertSentiment(&d.Sentiment, rec)
	c.convertRoster(&d.Roster, rec)
	c.convertPhysical(&d.Physical, rec)
	c.convertLuck(&d.Luck, rec)
	c.convertChameleon(&d.Chameleon, rec)
	c.convertMicroStrategy(&d.MicroStrategy, rec)

	return d
}

func (c *Converter) convertMarket(v *MarketVector, rec Record) {
	v.CLVMean = asFloat(rec, "clv_mean", v.CLVMean)
	v.EdgeMean = asFloat(rec, "edge_mean", v.EdgeMean)
	v.SampleSize = asInt(rec, "sample_size", v.SampleSize)
	v.OverSpecialist = asBool(rec, "over_specialist", v.OverSpecialist)
	v.UnderSpecialist = asBool(rec, "under_specialist", v.UnderSpecialist)
	v.BTTSYesSpecialist = asBool(rec, "btts_yes_specialist", v.BTTSYesSpecialist)
	v.BTTSNoSpecialist = asBool(rec, "btts_no_specialist", v.BTTSNoSpecialist)
	v.TotalBets = asInt(rec, "total_bets", v.TotalBets)
	v.WinRate = clamp01(asFloat(rec, "win_rate", v.WinRate))
	v.ROI = asFloat(rec, "roi", v.ROI)
	v.ExploitMarkets = asStringList(rec, "exploit_markets", v.ExploitMarkets)
	v.AvoidMarkets = asStringList(rec, "avoid_markets", v.AvoidMarkets)
}

func (c *Converter) convertContext(v *ContextVector, rec Record) {
	v.HomeStrength = clamp100(asFloat(rec, "home_strength", v.HomeStrength))
	v.AwayStrength = clamp100(asFloat(rec, "away_strength", v.AwayStrength))
	v.Style = asString(rec, "style", v.Style)
	v.GoalsTendency = asFloat(rec, "goals_tendency", v.GoalsTendency)
	v.BTTSTendency = clamp01(asFloat(rec, "btts_tendency", v.BTTSTendency))
	v.DrawTendency = clamp01(asFloat(rec, "draw_tendency", v.DrawTendency))
	v.XGFor = asFloat(rec, "xg_for", v.XGFor)
	v.XGAgainst = asFloat(rec, "xg_against", v.XGAgainst)
	v.CleanSheets = asInt(rec, "clean_sheets", v.CleanSheets)
	v.Wins = asInt(rec, "wins", v.Wins)
	v.Draws = asInt(rec, "draws", v.Draws)
	v.Losses = asInt(rec, "losses", v.Losses)
	v.GoalsFor = asInt(rec, "goals_for", v.GoalsFor)
	v.GoalsAgainst = asInt(rec, "goals_against", v.GoalsAgainst)
}

func (c *Converter) convertRisk(v *RiskVector, rec Record) {
	v.TotalLuck = asFloat(rec, "total_luck", v.TotalLuck)
	v.DefensiveLuck = asFloat(rec, "defensive_luck", v.DefensiveLuck)
	v.FinishingLuck = asFloat(rec, "finishing_luck", v.FinishingLuck)
	v.PanicFactor = clamp01(asFloat(rec, "panic_factor", v.PanicFactor))
	v.LeadProtection = clamp100(asFloat(rec, "lead_protection", v.LeadProtection))
	v.UnluckyPct = clamp01(asFloat(rec, "unlucky_pct", v.UnluckyPct))
	v.TierRank = clamp100(asFloat(rec, "tier_rank", v.TierRank))
}

func (c *Converter) convertTemporal(v *TemporalVector, rec Record) {
	v.DieselFactor = clamp01(asFloat(rec, "diesel_factor", v.DieselFactor))
	v.FastStarterFactor = clamp01(asFloat(rec, "fast_starter_factor", v.FastStarterFactor))
	v.XGMomentum = asFloat(rec, "xg_momentum", v.XGMomentum)
	v.FirstHalfShare = clamp01(asFloat(rec, "first_half_share", v.FirstHalfShare))
	v.SecondHalfShare = clamp01(asFloat(rec, "second_half_share", v.SecondHalfShare))
	v.Goals0to15 = asFloat(rec, "goals_0_15", v.Goals0to15)
	v.Goals16to30 = asFloat(rec, "goals_16_30", v.Goals16to30)
	v.Goals31to45 = asFloat(rec, "goals_31_45", v.Goals31to45)
	v.Goals46to60 = asFloat(rec, "goals_46_60", v.Goals46to60)
	v.Goals61to75 = asFloat(rec, "goals_61_75", v.Goals61to75)
	v.Goals76to90 = asFloat(rec, "goals_76_90", v.Goals76to90)
}

func (c *Converter) convertNemesis(v *NemesisVector, rec Record) {
	v.Verticality = c.calib.Normalize("verticality", asFloat(rec, "verticality", v.Verticality))
	v.Patience = c.calib.Normalize("patience", asFloat(rec, "patience", v.Patience))
	v.FastShots = clamp01(asFloat(rec, "fast_shots", v.FastShots))
	v.SlowShots = clamp01(asFloat(rec, "slow_shots", v.SlowShots))
	v.TerritorialDominance = c.calib.Normalize("territorial_dominance", asFloat(rec, "territorial_dominance", v.TerritorialDominance))
	v.KeeperOverperformance = asFloat(rec, "keeper_overperformance", v.KeeperOverperformance)
	v.FrictionVsStyle = asFloatMap(rec, "friction_vs_style", v.FrictionVsStyle)
	v.DefensiveSolidityPct = clamp100(asFloat(rec, "defensive_solidity_pct", v.DefensiveSolidityPct))
	v.DefensiveBoxPct = clamp100(asFloat(rec, "defensive_box_pct", v.DefensiveBoxPct))
}

// Mentality thresholds live here and nowhere else: comeback_mentality
// ≥1.2 aggressive, ≤0.8 conservative, else balanced.
func deriveMentality(comebackMentality float64) Mentality {
	switch {
	case comebackMentality >= 1.2:
		return MentalityAggressive
	case comebackMentality <= 0.8:
		return MentalityConservative
	default:
		return MentalityBalanced
	}
}

func (c *Converter) convertPsyche(v *PsycheVector, rec Record) {
	v.PanicFactor = clamp01(asFloat(rec, "panic_factor", v.PanicFactor))
	v.KillerInstinct = clamp01(asFloat(rec, "killer_instinct", v.KillerInstinct))
	v.LeadProtection = clamp01(asFloat(rec, "lead_protection_rate", v.LeadProtection))
	v.ComebackMentality = asFloat(rec, "comeback_mentality", v.ComebackMentality)
	v.CollapseRate = clamp01(asFloat(rec, "collapse_rate", v.CollapseRate))
	v.SurrenderRate = clamp01(asFloat(rec, "surrender_rate", v.SurrenderRate))
	v.HTDominance = clamp100(asFloat(rec, "ht_dominance", v.HTDominance))
	v.GoalsConcededWinning = asFloat(rec, "goals_conceded_winning", v.GoalsConcededWinning)
	v.GoalsConcededDrawing = asFloat(rec, "goals_conceded_drawing", v.GoalsConcededDrawing)
	v.GoalsConcededLosing = asFloat(rec, "goals_conceded_losing", v.GoalsConcededLosing)
	v.Mentality = deriveMentality(v.ComebackMentality)
}

func (c *Converter) convertSentiment(v *SentimentVector, rec Record) {
	v.CLVMean = asFloat(rec, "sentiment_clv_mean", v.CLVMean)
	v.EdgeMean = asFloat(rec, "sentiment_edge_mean", v.EdgeMean)
	v.SampleSize = asInt(rec, "sentiment_sample_size", v.SampleSize)
	v.OverBias = clamp01(asFloat(rec, "over_bias", v.OverBias))
	v.UnderBias = clamp01(asFloat(rec, "under_bias", v.UnderBias))
	v.BTTSBias = clamp01(asFloat(rec, "btts_bias", v.BTTSBias))
	v.VulnerabilityScore = clamp100(asFloat(rec, "vulnerability_score", v.VulnerabilityScore))
}

// Keeper status thresholds live here and nowhere else.
func deriveKeeperStatus(saveRate, overperformance float64) KeeperStatus {
	switch {
	case saveRate < 0.64 || overperformance < -0.15:
		return KeeperLeaky
	case saveRate >= 0.74 && overperformance > 0.10:
		return KeeperSolid
	default:
		return KeeperNormal
	}
}

func (c *Converter) convertRoster(v *RosterVector, rec Record) {
	v.MVPName = asString(rec, "mvp_name", v.MVPName)
	v.PlaymakerName = asString(rec, "playmaker_name", v.PlaymakerName)
	v.KeeperName = asString(rec, "keeper_name", v.KeeperName)
	v.MVPDependency = clamp01(asFloat(rec, "mvp_dependency", v.MVPDependency))
	v.PlaymakerDependency = clamp01(asFloat(rec, "playmaker_dependency", v.PlaymakerDependency))
	v.Top3Dependency = clamp100(asFloat(rec, "top3_dependency", v.Top3Dependency))
	v.KeeperSaveRate = clamp01(asFloat(rec, "keeper_save_rate", v.KeeperSaveRate))
	v.KeeperOverperformance = asFloat(rec, "keeper_overperformance", v.KeeperOverperformance)
	v.KeeperStatus = deriveKeeperStatus(v.KeeperSaveRate, v.KeeperOverperformance)
}

func (c *Converter) convertPhysical(v *PhysicalVector, rec Record) {
	v.PressingIntensity = c.calib.Normalize("pressing_intensity", asFloat(rec, "pressing_intensity", v.PressingIntensity))
	v.LateGameXG = asFloat(rec, "late_game_xg", v.LateGameXG)
	v.RotationIndex = c.calib.Normalize("rotation_index", asFloat(rec, "rotation_index", v.RotationIndex))
	v.AerialWinPct = c.calib.Normalize("aerial_win_pct", asFloat(rec, "aerial_win_pct", v.AerialWinPct))
	v.PossessionPct = clamp100(asFloat(rec, "possession_pct", v.PossessionPct))
	v.TacklesDefThird = asFloat(rec, "tackles_def_third", v.TacklesDefThird)
	v.TacklesMidThird = asFloat(rec, "tackles_mid_third", v.TacklesMidThird)
	v.TacklesAttThird = asFloat(rec, "tackles_att_third", v.TacklesAttThird)
	v.ProgressivePasses = c.calib.Normalize("progressive_passes", asFloat(rec, "progressive_passes", v.ProgressivePasses))
	v.LateResistance = c.calib.Normalize("late_resistance", asFloat(rec, "late_resistance", v.LateResistance))
	v.LateGameDominance = c.calib.Normalize("late_game_dominance", asFloat(rec, "late_game_dominance", v.LateGameDominance))
}

func (c *Converter) convertLuck(v *LuckVector, rec Record) {
	v.TotalLuck = asFloat(rec, "total_luck", v.TotalLuck)
	v.DefensiveLuck = asFloat(rec, "defensive_luck", v.DefensiveLuck)
	v.FinishingLuck = asFloat(rec, "finishing_luck", v.FinishingLuck)
	v.XPointsDelta = asFloat(rec, "xpoints_delta", v.XPointsDelta)
	v.ExpectedPoints = asFloat(rec, "expected_points", v.ExpectedPoints)
	v.ActualPoints = asFloat(rec, "actual_points", v.ActualPoints)
	v.RegressionMagnitude = clamp01(asFloat(rec, "regression_magnitude", v.RegressionMagnitude))

	switch strings.ToLower(asString(rec, "regression_direction", string(v.RegressionDirection))) {
	case "up":
		v.RegressionDirection = RegressionUp
	case "down":
		v.RegressionDirection = RegressionDown
	default:
		v.RegressionDirection = RegressionFlat
	}
}

func (c *Converter) convertChameleon(v *ChameleonVector, rec Record) {
	v.AdaptabilityIndex = clamp100(asFloat(rec, "adaptability_index", v.AdaptabilityIndex))
	v.ComebackAbility = clamp01(asFloat(rec, "comeback_ability", v.ComebackAbility))
	v.TempoFlexibility = clamp100(asFloat(rec, "tempo_flexibility", v.TempoFlexibility))
	v.FormationVolatility = clamp01(asFloat(rec, "formation_volatility", v.FormationVolatility))
	v.SetPieceThreat = clamp100(asFloat(rec, "set_piece_threat", v.SetPieceThreat))
	v.LongRangeThreat = clamp100(asFloat(rec, "long_range_threat", v.LongRangeThreat))
	v.ShotAccuracy = clamp01(asFloat(rec, "shot_accuracy", v.ShotAccuracy))
	v.MainFormation = asString(rec, "main_formation", v.MainFormation)
}

func (c *Converter) convertMicroStrategy(v *MicroStrategyVector, rec Record) {
	v.BucketCount = asInt(rec, "micro_bucket_count", v.BucketCount)
	v.HomeBuckets = asInt(rec, "micro_home_buckets", v.HomeBuckets)
	v.AwayBuckets = asInt(rec, "micro_away_buckets", v.AwayBuckets)
	v.TopEdgeMarketHome = asString(rec, "micro_top_edge_market_home", v.TopEdgeMarketHome)
	v.TopEdgeMarketAway = asString(rec, "micro_top_edge_market_away", v.TopEdgeMarketAway)
	v.TopEdgeHome = asFloat(rec, "micro_top_edge_home", v.TopEdgeHome)
	v.TopEdgeAway = asFloat(rec, "micro_top_edge_away", v.TopEdgeAway)
	v.FadeCountHome = asInt(rec, "micro_fade_count_home", v.FadeCountHome)
	v.FadeCountAway = asInt(rec, "micro_fade_count_away", v.FadeCountAway)

	raw, ok := rec["micro_buckets"]
	if !ok {
		return
	}
	buckets := map[string]MicroBucket{}
	m, ok := toMap(raw)
	if !ok {
		return
	}
	for key, cell := range m {
		cm, ok := toMap(cell)
		if !ok {
			continue
		}
		b := MicroBucket{
			EdgePct:  asFloat(cm, "edge_pct", 0),
			HitRate:  clamp01(asFloat(cm, "hit_rate", 0)),
			Baseline: clamp01(asFloat(cm, "baseline", 0)),
			Sample:   asInt(cm, "sample", 0),
		}
		switch asString(cm, "confidence", "low") {
		case "high":
			b.Confidence = MicroConfidenceHigh
		case "medium":
			b.Confidence = MicroConfidenceMedium
		default:
			b.Confidence = MicroConfidenceLow
		}
		switch asString(cm, "signal", "neutral") {
		case "strong_back":
			b.Signal = MicroStrongBack
		case "back":
			b.Signal = MicroBack
		case "fade":
			b.Signal = MicroFade
		case "strong_fade":
			b.Signal = MicroStrongFade
		default:
			b.Signal = MicroNeutral
		}
		buckets[key] = b
	}
	v.Buckets = buckets
}

// Safe-cast helpers. Sources hand back drivers' raw values; a JSON column
// may still be an encoded string. None of these ever panic.

func asFloat(rec Record, key string, def float64) float64 {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func asInt(rec Record, key string, def int) int {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func asBool(rec Record, key string, def bool) bool {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func asString(rec Record, key, def string) string {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return def
	}
	if s, ok := raw.(string); ok && s != "" {
		return s
	}
	return def
}

func asStringList(rec Record, key string, def []string) []string {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		// JSON columns sometimes arrive still encoded.
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
	}
	return def
}

func asFloatMap(rec Record, key string, def map[string]float64) map[string]float64 {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case map[string]float64:
		return v
	case map[string]any:
		out := make(map[string]float64, len(v))
		for k := range v {
			out[k] = asFloat(Record(v), k, 0)
		}
		return out
	case string:
		var out map[string]float64
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
	}
	return def
}

func toMap(raw any) (Record, bool) {
	switch v := raw.(type) {
	case Record:
		return v, true
	case map[string]any:
		return Record(v), true
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return Record(out), true
		}
	case []byte:
		var out map[string]any
		if err := json.Unmarshal(v, &out); err == nil {
			return Record(out), true
		}
	}
	return nil, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

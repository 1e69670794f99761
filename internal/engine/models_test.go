package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/market"
	"github.com/quantbet/quantum/internal/referee"
)

func neutralInput() Input {
	return Input{
		HomeTeam: "Home FC",
		AwayTeam: "Away FC",
		Home:     dna.Neutral("Home FC"),
		Away:     dna.Neutral("Away FC"),
		Friction: friction.Defaults("Home FC", "Away FC"),
		Odds:     map[string]float64{market.Over25: 1.85, market.BTTSYes: 1.90},
	}
}

func TestTeamStrategySignalLadder(t *testing.T) {
	tests := []struct {
		name string
		roi  float64
		want Signal
	}{
		{"high roi strong buy", 60, SignalStrongBuy},
		{"mid roi buy", 30, SignalBuy},
		{"flat roi hold", 5, SignalHold},
		{"negative roi skip", -12, SignalSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := neutralInput()
			in.Home.Market.ROI = tt.roi
			in.Home.Market.OverSpecialist = true
			in.Home.Market.ExploitMarkets = []string{market.Over25}
			v := Evaluate(ModelTeamStrategy, in)
			assert.Equal(t, tt.want, v.Signal)
			if tt.want != SignalSkip {
				assert.Equal(t, market.Over25, v.Market)
			}
		})
	}
}

func TestTeamStrategySkipsWithoutAnyStrategy(t *testing.T) {
	v := Evaluate(ModelTeamStrategy, neutralInput())
	assert.Equal(t, SignalSkip, v.Signal)
}

func TestTeamStrategyStrongBuyConfidenceCap(t *testing.T) {
	in := neutralInput()
	in.Home.Market.ROI = 300
	in.Home.Market.OverSpecialist = true
	v := Evaluate(ModelTeamStrategy, in)
	assert.Equal(t, SignalStrongBuy, v.Signal)
	assert.LessOrEqual(t, v.Confidence, 95.0)
}

func TestQuantumZScoreNeutralIsHold(t *testing.T) {
	v := Evaluate(ModelQuantumZScore, neutralInput())
	assert.Equal(t, SignalHold, v.Signal)
}

func TestQuantumZScoreStrongHomeProfile(t *testing.T) {
	in := neutralInput()
	in.Home.Psyche.Mentality = dna.MentalityConservative
	in.Home.Psyche.KillerInstinct = 0.25
	in.Home.Risk.TierRank = 88
	in.Home.Context.HomeStrength = 72
	in.Home.Temporal.DieselFactor = 0.70
	in.Home.Luck.RegressionDirection = dna.RegressionUp
	in.Home.Luck.RegressionMagnitude = 0.7

	v := Evaluate(ModelQuantumZScore, in)
	assert.Equal(t, SignalStrongBuy, v.Signal)
	assert.Greater(t, v.Confidence, 60.0)
}

func TestQuantumZScoreBounded(t *testing.T) {
	d := dna.Neutral("X")
	d.Psyche.Mentality = dna.MentalityConservative
	d.Psyche.KillerInstinct = 0
	d.Risk.TierRank = 100
	d.Context.HomeStrength = 100
	d.Temporal.DieselFactor = 1
	d.Luck.RegressionDirection = dna.RegressionUp
	d.Luck.RegressionMagnitude = 1
	z := zScore(d, true)
	assert.LessOrEqual(t, z, 3.0)
	assert.GreaterOrEqual(t, z, -3.0)
}

func TestMomentumTrendLadder(t *testing.T) {
	tests := []struct {
		trend    Trend
		streak   int
		want     Signal
		wantConf float64
	}{
		{TrendBlazing, 4, SignalStrongBuy, 89},
		{TrendBlazing, 20, SignalStrongBuy, 95}, // capped
		{TrendHot, 3, SignalBuy, 76},
		{TrendWarming, 1, SignalBuy, 60},
		{TrendNeutral, 0, SignalHold, 50},
		{TrendCooling, 2, SignalSkip, 40},
		{TrendFreezing, 5, SignalSkip, 40},
	}
	for _, tt := range tests {
		t.Run(string(tt.trend), func(t *testing.T) {
			in := neutralInput()
			in.Context = &Context{
				HomeMomentum: &Momentum{Score: 80, Trend: tt.trend, Streak: tt.streak},
				AwayMomentum: &Momentum{Score: 40, Trend: TrendNeutral},
			}
			v := Evaluate(ModelMatchupMomentum, in)
			assert.Equal(t, tt.want, v.Signal)
			assert.InDelta(t, tt.wantConf, v.Confidence, 1e-9)
		})
	}
}

func TestMomentumWithoutContextHolds(t *testing.T) {
	v := Evaluate(ModelMatchupMomentum, neutralInput())
	assert.Equal(t, SignalHold, v.Signal)
	assert.Equal(t, 50.0, v.Confidence)
}

func TestDixonColesBacksBestPricedMarket(t *testing.T) {
	in := neutralInput()
	in.Home.Context.HomeStrength = 72
	in.Friction.KineticHome = 58
	in.Friction.KineticAway = 45
	in.Odds = map[string]float64{
		market.Over25:  1.72,
		market.BTTSYes: 1.85,
		market.Over35:  2.40,
	}
	v := Evaluate(ModelDixonColes, in)
	require.True(t, v.IsPositive(), "expected a positive signal, got %s", v.Signal)
	assert.NotEmpty(t, v.Market)
	assert.Greater(t, v.Probability, 0.0)
	assert.LessOrEqual(t, v.Probability, 1.0)
}

func TestDixonColesHoldsWithoutEdge(t *testing.T) {
	in := neutralInput()
	// short odds leave no value anywhere
	in.Odds = map[string]float64{market.Over25: 1.05, market.BTTSYes: 1.05, market.Over35: 1.10}
	v := Evaluate(ModelDixonColes, in)
	assert.Equal(t, SignalHold, v.Signal)
	assert.Equal(t, 40.0, v.Confidence)
}

func TestPoissonCDF(t *testing.T) {
	// P(X<=2) for lambda=2.5
	assert.InDelta(t, 0.5438, poissonCDF(2.5, 2), 1e-3)
	assert.InDelta(t, 1.0, poissonCDF(0.0001, 5), 1e-3)
}

func TestScenarioModelBuysOnStrongScenario(t *testing.T) {
	in := neutralInput()
	in.Friction.ChaosPotential = 78
	in.Friction.TriggeredScenarios = in.Friction.DetectStaticScenarios()
	v := Evaluate(ModelScenario, in)
	assert.Equal(t, SignalBuy, v.Signal)
	assert.Equal(t, market.Over35, v.Market)
	assert.GreaterOrEqual(t, v.Confidence, 75.0)
}

func TestScenarioModelHoldsQuietMatchup(t *testing.T) {
	in := neutralInput()
	in.Friction.TriggeredScenarios = nil
	v := Evaluate(ModelScenario, in)
	assert.Equal(t, SignalHold, v.Signal)
}

// implosionInput triggers implosion_risk and nothing else: confidence 68,
// just under the buy line, so the referee boost is observable.
func implosionInput() Input {
	in := neutralInput()
	in.Friction.MentalClashScore = 72
	in.Friction.ChaosPotential = 60
	in.Friction.TriggeredScenarios = in.Friction.DetectStaticScenarios()
	return in
}

func TestScenarioModelStrictRefereeRaisesDisciplinaryConfidence(t *testing.T) {
	in := implosionInput()
	base := Evaluate(ModelScenario, in)
	require.Equal(t, SignalHold, base.Signal)

	in.Context = &Context{Referee: &referee.Profile{
		Name:            "A. Strict",
		Style:           referee.StyleTriggerHappy,
		StrictnessLevel: 8,
		Known:           true,
	}}
	boosted := Evaluate(ModelScenario, in)

	assert.Greater(t, boosted.Confidence, base.Confidence)
	assert.Equal(t, SignalBuy, boosted.Signal)
	assert.Equal(t, market.BTTSYes, boosted.Market)
}

func TestScenarioModelUnknownRefereeAddsNothing(t *testing.T) {
	in := implosionInput()
	base := Evaluate(ModelScenario, in)

	in.Context = &Context{Referee: referee.Unknown("Mystery Official")}
	v := Evaluate(ModelScenario, in)

	assert.Equal(t, base.Signal, v.Signal)
	assert.Equal(t, base.Confidence, v.Confidence)
}

func TestScenarioModelLenientRefereeAddsNothing(t *testing.T) {
	in := implosionInput()
	base := Evaluate(ModelScenario, in)

	in.Context = &Context{Referee: &referee.Profile{
		Name:            "L. Flow",
		Style:           referee.StyleLaisseJouer,
		StrictnessLevel: 3,
		Known:           true,
	}}
	v := Evaluate(ModelScenario, in)
	assert.Equal(t, base.Confidence, v.Confidence)
}

func TestDNAFeaturesSumsBonuses(t *testing.T) {
	in := neutralInput()
	in.Home.Psyche.Mentality = dna.MentalityConservative // 11.73
	in.Home.Psyche.KillerInstinct = 0.25                 // 5.0
	in.Home.Temporal.DieselFactor = 0.70                 // 4.0
	v := Evaluate(ModelDNAFeatures, in)
	assert.Equal(t, SignalStrongBuy, v.Signal)
	assert.InDelta(t, 20.73, v.Raw["total_bonus"].(float64), 1e-9)
	// best feature (conservative) carries no market suggestion
	assert.Empty(t, v.Market)
}

func TestDNAFeaturesBuyBand(t *testing.T) {
	in := neutralInput()
	in.Away.Chameleon.MainFormation = "4-3-3" // 8.08
	v := Evaluate(ModelDNAFeatures, in)
	assert.Equal(t, SignalBuy, v.Signal)
	assert.Equal(t, market.Over25, v.Market)
}

func TestMicroStrategyCombinedEdge(t *testing.T) {
	tests := []struct {
		name     string
		homeEdge float64
		awayEdge float64
		want     Signal
	}{
		{"strong back", 30, 15, SignalStrongBuy}, // 0.6*30+0.4*15 = 24
		{"back", 15, 10, SignalBuy},              // 13
		{"neutral", 5, -5, SignalHold},           // 1
		{"fade", -15, -10, SignalSell},           // -13
		{"strong fade", -30, -20, SignalStrongSell}, // -26
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := neutralInput()
			in.Home.MicroStrategy.TopEdgeMarketHome = market.Over25
			in.Home.MicroStrategy.Buckets = map[string]dna.MicroBucket{
				dna.BucketKey(market.Over25, "home"): {EdgePct: tt.homeEdge, Signal: dna.MicroBack},
			}
			in.Away.MicroStrategy.Buckets = map[string]dna.MicroBucket{
				dna.BucketKey(market.Over25, "away"): {EdgePct: tt.awayEdge, Signal: dna.MicroBack},
			}
			v := Evaluate(ModelMicroStrategy, in)
			assert.Equal(t, tt.want, v.Signal)
		})
	}
}

func TestMicroStrategyHoldsWithoutBuckets(t *testing.T) {
	v := Evaluate(ModelMicroStrategy, neutralInput())
	assert.Equal(t, SignalHold, v.Signal)
}

func TestEvaluateRecoversFromPanicWithHoldVote(t *testing.T) {
	// nil DNA forces a nil-pointer panic inside every DNA-reading model
	in := Input{HomeTeam: "A", AwayTeam: "B"}
	for _, id := range AllModels {
		if id == ModelMatchupMomentum {
			// reads only the context map; abstains instead of panicking
			continue
		}
		v := Evaluate(id, in)
		assert.Equal(t, id, v.Model)
		assert.Equal(t, SignalHold, v.Signal, "model %s", id)
		assert.Equal(t, 0.0, v.Confidence)
		assert.Contains(t, v.Reasoning, "model failure")
	}
}

func TestAllVotesConfidenceInRange(t *testing.T) {
	in := neutralInput()
	in.Context = &Context{
		HomeMomentum: &Momentum{Score: 85, Trend: TrendBlazing, Streak: 40},
		AwayMomentum: &Momentum{Score: 20, Trend: TrendFreezing, Streak: 1},
	}
	for _, id := range AllModels {
		v := Evaluate(id, in)
		assert.GreaterOrEqual(t, v.Confidence, 0.0, "model %s", id)
		assert.LessOrEqual(t, v.Confidence, 100.0, "model %s", id)
	}
}

func TestWeightMultiplierBands(t *testing.T) {
	assert.Equal(t, 1.2, Vote{Confidence: 85}.WeightMultiplier())
	assert.Equal(t, 1.2, Vote{Confidence: 80}.WeightMultiplier())
	assert.Equal(t, 1.0, Vote{Confidence: 70}.WeightMultiplier())
	assert.Equal(t, 0.8, Vote{Confidence: 59}.WeightMultiplier())
}

func TestIsPositive(t *testing.T) {
	assert.True(t, Vote{Signal: SignalBuy}.IsPositive())
	assert.True(t, Vote{Signal: SignalStrongBuy}.IsPositive())
	assert.False(t, Vote{Signal: SignalHold}.IsPositive())
	assert.False(t, Vote{Signal: SignalSell}.IsPositive())
	assert.False(t, Vote{Signal: SignalSkip}.IsPositive())
}

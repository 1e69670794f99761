package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbet/quantum/internal/config"
	"github.com/quantbet/quantum/internal/consensus"
	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/market"
	"github.com/quantbet/quantum/internal/snapshot"
	"github.com/quantbet/quantum/internal/validate"
)

// strongHome is a fingerprint that lights up every model: profitable
// trading history, conservative mentality, positive regression, elite
// tier and a materialised micro edge on over 2.5.
func strongHome() *dna.TeamDNA {
	d := dna.Neutral("Arsenal")
	d.IsNeutral = false
	d.Market.ROI = 60
	d.Market.OverSpecialist = true
	d.Market.ExploitMarkets = []string{market.Over25}
	d.Market.TotalBets = 40
	d.Context.HomeStrength = 80
	d.Psyche.Mentality = dna.MentalityConservative
	d.Psyche.KillerInstinct = 0.2
	d.Luck.RegressionDirection = dna.RegressionUp
	d.Luck.RegressionMagnitude = 0.8
	d.Temporal.DieselFactor = 0.70
	d.Risk.TierRank = 90
	d.Risk.PanicFactor = 0.1
	d.Risk.UnluckyPct = 0.6
	d.Chameleon.MainFormation = "4-3-3"
	d.MicroStrategy.TopEdgeMarketHome = market.Over25
	d.MicroStrategy.Buckets = map[string]dna.MicroBucket{
		dna.BucketKey(market.Over25, "home"): {EdgePct: 15, Signal: dna.MicroBack},
	}
	return d
}

func weakAway() *dna.TeamDNA {
	d := dna.Neutral("Chelsea")
	d.IsNeutral = false
	d.Market.ROI = 5
	d.Context.AwayStrength = 40
	d.Psyche.Mentality = dna.MentalityAggressive
	d.Psyche.KillerInstinct = 0.7
	d.Luck.RegressionDirection = dna.RegressionDown
	d.Luck.RegressionMagnitude = 0.5
	d.Temporal.DieselFactor = 0.3
	d.Risk.TierRank = 30
	d.Risk.PanicFactor = 0.3
	d.MicroStrategy.Buckets = map[string]dna.MicroBucket{
		dna.BucketKey(market.Over25, "away"): {EdgePct: 10, Signal: dna.MicroBack},
	}
	return d
}

// seedCache plants converted fingerprints so the loader serves them
// without touching a source.
func seedCache(t *testing.T, c dna.Cache, teams ...*dna.TeamDNA) {
	t.Helper()
	for _, d := range teams {
		c.Put(d.TeamName, d)
	}
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.MonteCarlo.Seed = 42
	return cfg
}

func newTestOrchestrator(t *testing.T, c dna.Cache, repo snapshot.Repository, cfg config.Config) *Orchestrator {
	return newPairTestOrchestrator(t, c, repo, cfg, nil)
}

func newPairTestOrchestrator(t *testing.T, c dna.Cache, repo snapshot.Repository, cfg config.Config, pairs friction.PairSource) *Orchestrator {
	t.Helper()
	log := zerolog.Nop()
	calib := config.DefaultCalibration()
	loader := dna.NewLoader(nil, nil, dna.NewConverter(calib), c, log)
	frLoader := friction.NewLoader(pairs, true, log)
	return New(loader, frLoader, nil, nil, repo, nil, cfg, log)
}

type fixedPairSource struct {
	rec *friction.PairRecord
}

func (s *fixedPairSource) FetchPair(context.Context, string, string) (*friction.PairRecord, bool, error) {
	if s.rec == nil {
		return nil, false, friction.ErrNoPairRecord
	}
	return s.rec, false, nil
}

func pickFixture() Fixture {
	return Fixture{
		ID:       "fixture-100",
		HomeTeam: "Arsenal",
		AwayTeam: "Chelsea",
		Odds: map[string]float64{
			market.Over25:                      2.10,
			market.Over25 + market.CloseSuffix: 2.25,
			market.BTTSYes:                     1.45,
			market.HomeWin:                     1.50,
		},
		HomeMomentum: &engine.Momentum{Score: 85, Trend: engine.TrendBlazing, Streak: 4},
		AwayMomentum: &engine.Momentum{Score: 30, Trend: engine.TrendCooling, Streak: 0},
	}
}

func TestAnalyzeEmitsPick(t *testing.T) {
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	o := newTestOrchestrator(t, c, repo, testConfig())

	dec, err := o.Analyze(context.Background(), pickFixture())
	require.NoError(t, err)
	require.False(t, dec.Skipped())

	pick := dec.Pick
	assert.Equal(t, market.Over25, pick.Market)
	assert.Equal(t, "Over 2.5 goals", pick.Selection)
	assert.InDelta(t, 2.10, pick.Odds, 1e-9)
	assert.Greater(t, pick.Probability, 0.5)
	assert.Greater(t, pick.EdgePct, 0.0)
	assert.GreaterOrEqual(t, pick.Stake, 0.5)
	assert.LessOrEqual(t, pick.Stake, 5.0)
	assert.Greater(t, pick.ExpectedValue, 0.0)

	assert.Equal(t, "6/7 models agree", pick.Consensus)
	assert.Equal(t, consensus.ConvictionStrong, pick.Conviction)
	assert.Equal(t, validate.CLVSweetSpot, pick.CLVSignal)
	assert.Equal(t, validate.ResolutionAligned, pick.Conflict)
	assert.True(t, pick.Robustness == validate.RobustnessRockSolid || pick.Robustness == validate.RobustnessRobust)

	assert.Len(t, pick.VectorSummary, 12)
	assert.Len(t, pick.ModelVotes, 7)
	assert.NotEmpty(t, pick.Reasoning)

	// snapshot persisted with the same identity
	snap, err := repo.Get(context.Background(), pick.SnapshotID)
	require.NoError(t, err)
	assert.Equal(t, pick.Market, snap.Market)
	assert.InDelta(t, pick.Stake, snap.Stake, 1e-9)
	assert.False(t, snap.Suppressed)
	assert.Len(t, snap.Votes, 7)
}

func TestAnalyzeIsDeterministicWithSeed(t *testing.T) {
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	o := newTestOrchestrator(t, c, repo, testConfig())

	a, err := o.Analyze(context.Background(), pickFixture())
	require.NoError(t, err)
	b, err := o.Analyze(context.Background(), pickFixture())
	require.NoError(t, err)

	require.False(t, a.Skipped())
	require.False(t, b.Skipped())
	assert.Equal(t, a.Pick.Market, b.Pick.Market)
	assert.InDelta(t, a.Pick.Stake, b.Pick.Stake, 1e-9)
	assert.InDelta(t, a.Pick.MonteCarloScore, b.Pick.MonteCarloScore, 1e-9)
	assert.NotEqual(t, a.Pick.SnapshotID, b.Pick.SnapshotID, "snapshots stay distinct")
}

func TestAnalyzeSkipsWithoutConsensus(t *testing.T) {
	// Unknown teams degrade to neutral fingerprints; nothing lights up.
	repo := snapshot.NewMemoryRepository()
	o := newTestOrchestrator(t, dna.NewMemoryCache(0), repo, testConfig())

	dec, err := o.Analyze(context.Background(), Fixture{
		ID:       "fixture-101",
		HomeTeam: "Nowhere Town",
		AwayTeam: "Missing United",
		Odds:     map[string]float64{market.Over25: 1.72},
	})
	require.NoError(t, err)
	require.True(t, dec.Skipped())
	assert.Contains(t, dec.SkipReason, "consensus not reached")

	// skip is still audited
	snap, err := repo.Get(context.Background(), dec.Snapshot)
	require.NoError(t, err)
	assert.True(t, snap.Suppressed)
	assert.Len(t, snap.Votes, 7)
	assert.True(t, snap.HomeDNA.IsNeutral)
}

func TestAnalyzeTimeoutYieldsNoSnapshot(t *testing.T) {
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	cfg := testConfig()
	cfg.Engine.FixtureTimeout = time.Nanosecond
	o := newTestOrchestrator(t, c, repo, cfg)

	dec, err := o.Analyze(context.Background(), pickFixture())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, dec)

	pending, err := repo.Unsettled(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAnalyzeSkipsWithoutPricedMarkets(t *testing.T) {
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	o := newTestOrchestrator(t, c, repo, testConfig())

	fx := pickFixture()
	fx.Odds = map[string]float64{"correct_score_2_1": 9.0}

	dec, err := o.Analyze(context.Background(), fx)
	require.NoError(t, err)
	require.True(t, dec.Skipped())
	assert.Contains(t, dec.SkipReason, "no catalogue market priced")
}

func TestAnalyzeVetoesFragileRobustness(t *testing.T) {
	// heavy input noise blows up the score spread; the simulation gate
	// must suppress the pick even though consensus was reached
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	cfg := testConfig()
	cfg.MonteCarlo.NoisePct = 0.90
	o := newTestOrchestrator(t, c, repo, cfg)

	dec, err := o.Analyze(context.Background(), pickFixture())
	require.NoError(t, err)
	require.True(t, dec.Skipped())
	assert.Nil(t, dec.Pick)
	assert.Contains(t, dec.SkipReason, "robustness")

	snap, err := repo.Get(context.Background(), dec.Snapshot)
	require.NoError(t, err)
	assert.True(t, snap.Suppressed)
	assert.False(t, snap.MonteCarlo.Passed())
	assert.True(t, snap.Consensus.Reached, "veto fired after consensus, not instead of it")
}

func TestAnalyzeHalvesStakeOnColdStructuralEdge(t *testing.T) {
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	o := newTestOrchestrator(t, c, repo, testConfig())

	aligned, err := o.Analyze(context.Background(), pickFixture())
	require.NoError(t, err)
	require.False(t, aligned.Skipped())
	require.Equal(t, validate.ResolutionAligned, aligned.Pick.Conflict)

	// same structural edge, but the favoured side hits a cold run
	fx := pickFixture()
	fx.HomeMomentum = &engine.Momentum{Score: 85, Trend: engine.TrendCooling, Streak: 0}

	cold, err := o.Analyze(context.Background(), fx)
	require.NoError(t, err)
	require.False(t, cold.Skipped())

	assert.Equal(t, validate.ResolutionReducedZ, cold.Pick.Conflict)
	assert.Less(t, cold.Pick.Stake, aligned.Pick.Stake)
	// conflict modifier drops 1.15 to 0.50; allow for half-unit rounding
	assert.LessOrEqual(t, cold.Pick.Stake, aligned.Pick.Stake/2+0.25)
}

func TestAnalyzeCarriesTriggeredScenariosIntoPick(t *testing.T) {
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	pairs := &fixedPairSource{rec: &friction.PairRecord{
		TeamA:            "Arsenal",
		TeamB:            "Chelsea",
		FrictionScore:    50,
		StyleClashScore:  50,
		TempoClashScore:  50,
		MentalClashScore: 50,
		ChaosPotential:   78,
		PredictedGoals:   2.8,
		BTTSProb:         0.52,
		Over25Prob:       0.55,
		PredictedWinner:  "draw",
		H2HMatches:       6,
		H2HAvgGoals:      3.8,
		Confidence:       "high",
		Version:          "v3",
	}}
	o := newPairTestOrchestrator(t, c, repo, testConfig(), pairs)

	dec, err := o.Analyze(context.Background(), pickFixture())
	require.NoError(t, err)
	require.False(t, dec.Skipped())

	assert.Contains(t, dec.Pick.Scenarios, friction.ScenarioTotalChaos)
	assert.Contains(t, dec.Pick.Scenarios, friction.ScenarioHighScoringRivalry)

	// the pick mirrors the frozen matrix, nothing reordered or dropped
	snap, err := repo.Get(context.Background(), dec.Pick.SnapshotID)
	require.NoError(t, err)
	assert.Equal(t, snap.Friction.TriggeredScenarios, dec.Pick.Scenarios)
}

func TestVoteOrderIsIrrelevant(t *testing.T) {
	// Two runs over the same fixture shuffle goroutine completion order;
	// the consensus result in the snapshot must not move.
	c := dna.NewMemoryCache(0)
	seedCache(t, c, strongHome(), weakAway())
	repo := snapshot.NewMemoryRepository()
	o := newTestOrchestrator(t, c, repo, testConfig())

	var scores []float64
	for i := 0; i < 5; i++ {
		dec, err := o.Analyze(context.Background(), pickFixture())
		require.NoError(t, err)
		snap, err := repo.Get(context.Background(), dec.Snapshot)
		require.NoError(t, err)
		scores = append(scores, snap.Consensus.Score)
	}
	for _, s := range scores[1:] {
		assert.InDelta(t, scores[0], s, 1e-12)
	}
}

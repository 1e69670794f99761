// Package orchestrator runs the full fixture pipeline: load both DNA
// fingerprints, build the friction matrix, evaluate the seven models in
// parallel, aggregate the consensus, run the validators, size the stake
// and freeze a snapshot.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantbet/quantum/internal/config"
	"github.com/quantbet/quantum/internal/consensus"
	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/market"
	"github.com/quantbet/quantum/internal/referee"
	"github.com/quantbet/quantum/internal/sizing"
	"github.com/quantbet/quantum/internal/snapshot"
	"github.com/quantbet/quantum/internal/telemetry"
	"github.com/quantbet/quantum/internal/validate"
)

// ErrTimeout marks a fixture that exceeded its wall-clock budget. No
// pick and no snapshot are produced.
var ErrTimeout = errors.New("fixture analysis timed out")

// Fixture is one match to analyse. Odds keys follow the market
// catalogue; "_close" siblings carry projected closing prices. Momentum
// and referee context are optional.
type Fixture struct {
	ID       string
	HomeTeam string
	AwayTeam string
	Referee  string

	Odds map[string]float64

	HomeMomentum *engine.Momentum
	AwayMomentum *engine.Momentum
}

// Orchestrator wires the pipeline dependencies together.
type Orchestrator struct {
	dna      *dna.Loader
	friction *friction.Loader
	referees *referee.Loader
	stats    consensus.StatsProvider
	repo     snapshot.Repository
	metrics  *telemetry.Metrics
	cfg      config.Config
	log      zerolog.Logger
}

// New builds an orchestrator. referees, stats, metrics may be nil; repo
// must not be.
func New(
	dnaLoader *dna.Loader,
	frictionLoader *friction.Loader,
	referees *referee.Loader,
	stats consensus.StatsProvider,
	repo snapshot.Repository,
	metrics *telemetry.Metrics,
	cfg config.Config,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		dna:      dnaLoader,
		friction: frictionLoader,
		referees: referees,
		stats:    stats,
		repo:     repo,
		metrics:  metrics,
		cfg:      cfg,
		log:      log.With().Str("component", "orchestrator").Logger(),
	}
}

// Analyze runs the decision pipeline for one fixture within the
// configured wall-clock budget. It returns a Decision whose Pick is nil
// when the engine skipped; on timeout it returns ErrTimeout with no
// decision and no snapshot.
func (o *Orchestrator) Analyze(ctx context.Context, fx Fixture) (*Decision, error) {
	start := time.Now()
	if budget := o.cfg.Engine.FixtureTimeout; budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	dec, err := o.analyze(ctx, fx)

	if o.metrics != nil {
		o.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		switch {
		case errors.Is(err, ErrTimeout):
			o.metrics.AnalysesTotal.WithLabelValues("timeout").Inc()
		case err != nil:
			o.metrics.AnalysesTotal.WithLabelValues("error").Inc()
		case dec.Skipped():
			o.metrics.AnalysesTotal.WithLabelValues("skip").Inc()
		default:
			o.metrics.AnalysesTotal.WithLabelValues("pick").Inc()
		}
	}
	return dec, err
}

func (o *Orchestrator) analyze(ctx context.Context, fx Fixture) (*Decision, error) {
	log := o.log.With().Str("fixture", fx.ID).Logger()

	// both fingerprints load concurrently; the loader itself never fails,
	// it degrades to a neutral template
	var homeDNA, awayDNA *dna.TeamDNA
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		homeDNA = o.dna.Load(ctx, fx.HomeTeam)
	}()
	go func() {
		defer wg.Done()
		awayDNA = o.dna.Load(ctx, fx.AwayTeam)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: loading DNA: %v", ErrTimeout, err)
	}

	matrix := o.friction.Load(ctx, fx.HomeTeam, fx.AwayTeam, homeDNA, awayDNA)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: loading friction: %v", ErrTimeout, err)
	}

	evalCtx := &engine.Context{
		HomeMomentum: fx.HomeMomentum,
		AwayMomentum: fx.AwayMomentum,
	}
	if o.referees != nil && fx.Referee != "" {
		evalCtx.Referee = o.referees.Load(ctx, fx.Referee)
	}

	in := engine.Input{
		HomeTeam: fx.HomeTeam,
		AwayTeam: fx.AwayTeam,
		Home:     homeDNA,
		Away:     awayDNA,
		Friction: matrix,
		Odds:     fx.Odds,
		Context:  evalCtx,
	}

	// the seven models are independent; order never matters because the
	// consensus is commutative
	votes := make([]engine.Vote, len(engine.AllModels))
	wg.Add(len(engine.AllModels))
	for i, id := range engine.AllModels {
		go func(i int, id engine.ModelID) {
			defer wg.Done()
			votes[i] = engine.Evaluate(id, in)
		}(i, id)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: evaluating models: %v", ErrTimeout, err)
	}

	if o.metrics != nil {
		for _, v := range votes {
			o.metrics.ModelSignals.WithLabelValues(string(v.Model), string(v.Signal)).Inc()
		}
	}

	cons := consensus.Compute(votes, o.stats, consensus.Thresholds{
		MinScore: o.cfg.Consensus.MinScore,
		MinCount: o.cfg.Consensus.MinCount,
	})
	if o.metrics != nil {
		o.metrics.ConsensusScore.Observe(cons.Score)
	}

	snap := snapshot.New(fx.ID, fx.HomeTeam, fx.AwayTeam)
	snap.HomeDNA = *homeDNA
	snap.AwayDNA = *awayDNA
	snap.Friction = *matrix
	snap.Votes = votes
	snap.Weights = cons.Weights
	snap.Consensus = cons
	snap.Odds = fx.Odds

	if !cons.Reached {
		reason := fmt.Sprintf("consensus not reached (score %.2f, %d positive)", cons.Score, cons.Count)
		return o.skip(ctx, log, snap, reason)
	}

	sel := market.Select(fx.Odds, dixonColesProbs(votes), matrix.Over25Prob, suggestedMarkets(votes), strategyMarket(votes))
	if sel.Market == "" {
		return o.skip(ctx, log, snap, "no catalogue market priced")
	}

	prob := sel.Probability
	edge := prob - 1/sel.Odds
	snap.Market = sel.Market
	snap.Odds1 = sel.Odds
	snap.Probability = prob
	snap.Edge = edge

	if edge <= 0 {
		return o.skip(ctx, log, snap, fmt.Sprintf("no positive edge on %s", sel.Market))
	}

	confidence := positiveConfidence(votes)

	mcCfg := validate.MonteCarloConfig{
		Iterations: o.cfg.MonteCarlo.Iterations,
		NoisePct:   o.cfg.MonteCarlo.NoisePct,
		Seed:       o.cfg.MonteCarlo.Seed,
	}
	mc := validate.RunMonteCarlo(prob, edge, confidence, mcCfg)
	snap.MonteCarlo = mc

	clv := validate.CheckCLV(sel.Odds, fx.Odds[sel.Market+market.CloseSuffix])
	snap.CLV = clv

	conflict := validate.ResolveConflict(zScoreEdge(votes), momentumTrend(votes))
	snap.Conflict = conflict

	if !mc.Passed() {
		return o.skip(ctx, log, snap, fmt.Sprintf("robustness %s (success %.2f)", mc.Robustness, mc.SuccessRate))
	}

	stake := sizing.Compute(sizing.Inputs{
		Probability:      prob,
		Odds:             sel.Odds,
		Edge:             edge,
		PanicFactor:      panicFactor(sel.Market, homeDNA, awayDNA),
		ConflictModifier: conflict.StakeModifier,
		MonteCarlo:       mc.StakeModifier(),
		CLV:              clv.StakeModifier(),
		Confidence:       confidence,
	}, sizing.Config{
		KellyFraction: o.cfg.Sizing.KellyFraction,
		MinStake:      o.cfg.Sizing.MinStake,
		MaxStake:      o.cfg.Sizing.MaxStake,
		StepSize:      o.cfg.Sizing.StakeStep,
	})
	if stake.Suppressed {
		return o.skip(ctx, log, snap, "stake suppressed by kelly sizing")
	}

	ev := (prob*sel.Odds - 1) * stake.Stake
	snap.Stake = stake.Stake
	snap.ExpectedValue = ev

	if err := o.repo.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	pick := &QuantumPick{
		FixtureID:       fx.ID,
		HomeTeam:        fx.HomeTeam,
		AwayTeam:        fx.AwayTeam,
		Market:          sel.Market,
		Selection:       market.SelectionLabel(sel.Market, fx.HomeTeam, fx.AwayTeam),
		Odds:            sel.Odds,
		Probability:     prob,
		EdgePct:         edge * 100,
		Stake:           stake.Stake,
		ExpectedValue:   ev,
		Confidence:      confidence,
		Conviction:      cons.Conviction,
		Consensus:       fmt.Sprintf("%d/%d models agree", cons.Count, len(engine.AllModels)),
		MonteCarloScore: mc.MeanScore,
		Robustness:      mc.Robustness,
		CLVSignal:       clv.Zone,
		Conflict:        conflict.Resolution,
		Scenarios:       matrix.TriggeredScenarios,
		VectorSummary:   summarizeVectors(homeDNA, awayDNA),
		ModelVotes:      voteSummary(votes),
		Reasoning:       buildReasoning(votes, cons, mc, clv, conflict, sel, stake.Stake),
		SnapshotID:      snap.ID,
	}

	if o.metrics != nil {
		o.metrics.PicksEmitted.Inc()
		o.metrics.StakeUnits.Observe(stake.Stake)
	}
	log.Info().
		Str("market", sel.Market).
		Float64("stake", stake.Stake).
		Float64("edge", edge).
		Str("conviction", string(cons.Conviction)).
		Msg("pick emitted")

	return &Decision{FixtureID: fx.ID, Pick: pick, Snapshot: snap.ID}, nil
}

// skip freezes the snapshot for audit and returns a pickless decision.
func (o *Orchestrator) skip(ctx context.Context, log zerolog.Logger, snap *snapshot.BetSnapshot, reason string) (*Decision, error) {
	snap.Suppressed = true
	if err := o.repo.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	log.Info().Str("reason", reason).Msg("fixture skipped")
	return &Decision{FixtureID: snap.FixtureID, SkipReason: reason, Snapshot: snap.ID}, nil
}

// dixonColesProbs pulls the goals-model probability surface out of Model
// D's raw payload.
func dixonColesProbs(votes []engine.Vote) map[string]float64 {
	for _, v := range votes {
		if v.Model != engine.ModelDixonColes || v.Raw == nil {
			continue
		}
		if probs, ok := v.Raw["probs"].(map[string]float64); ok {
			return probs
		}
	}
	return nil
}

// suggestedMarkets collects every market a model explicitly voted for.
func suggestedMarkets(votes []engine.Vote) map[string]bool {
	out := make(map[string]bool)
	for _, v := range votes {
		if v.Market != "" && v.IsPositive() {
			out[v.Market] = true
		}
	}
	return out
}

func strategyMarket(votes []engine.Vote) string {
	for _, v := range votes {
		if v.Model == engine.ModelTeamStrategy {
			return v.Market
		}
	}
	return ""
}

// positiveConfidence is the mean confidence across backing votes.
func positiveConfidence(votes []engine.Vote) float64 {
	var sum float64
	n := 0
	for _, v := range votes {
		if v.IsPositive() {
			sum += v.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func zScoreEdge(votes []engine.Vote) float64 {
	for _, v := range votes {
		if v.Model != engine.ModelQuantumZScore || v.Raw == nil {
			continue
		}
		if edge, ok := v.Raw["edge"].(float64); ok {
			return edge
		}
	}
	return 0
}

func momentumTrend(votes []engine.Vote) engine.Trend {
	for _, v := range votes {
		if v.Model != engine.ModelMatchupMomentum || v.Raw == nil {
			continue
		}
		if trend, ok := v.Raw["trend"].(string); ok {
			return engine.Trend(trend)
		}
	}
	return engine.TrendNeutral
}

// panicFactor picks the risk modifier input for the chosen market: the
// backed side's factor for team markets, the worse of the two for totals.
func panicFactor(mk string, home, away *dna.TeamDNA) float64 {
	switch mk {
	case market.HomeWin, market.HomeOver05, market.HomeOver15, market.DoubleChance1X:
		return home.Risk.PanicFactor
	case market.AwayWin, market.AwayOver05, market.AwayOver15, market.DoubleChanceX2:
		return away.Risk.PanicFactor
	default:
		return max(home.Risk.PanicFactor, away.Risk.PanicFactor)
	}
}

// buildReasoning assembles the ordered audit bullets for the pick.
func buildReasoning(votes []engine.Vote, cons consensus.Result, mc validate.MonteCarloResult, clv validate.CLVResult, conflict validate.ConflictResult, sel market.Selection, stake float64) []string {
	var out []string

	positive := make([]string, 0, len(votes))
	for _, v := range votes {
		if v.IsPositive() {
			positive = append(positive, string(v.Model))
		}
	}
	sort.Strings(positive)
	out = append(out, fmt.Sprintf("consensus %.2f (%s conviction) from %s",
		cons.Score, cons.Conviction, strings.Join(positive, ", ")))
	out = append(out, fmt.Sprintf("%s at %.2f, model probability %.1f%%, edge %.1f%%",
		sel.Market, sel.Odds, sel.Probability*100, (sel.Probability-1/sel.Odds)*100))
	out = append(out, fmt.Sprintf("monte carlo %s: success %.0f%%, score std %.1f",
		mc.Robustness, mc.SuccessRate*100, mc.StdDev))
	if clv.HasProjection {
		out = append(out, fmt.Sprintf("closing line %s: %.1f%% CLV", clv.Zone, clv.CLVPercent))
	}
	out = append(out, fmt.Sprintf("conflict %s: %s (x%.2f)",
		conflict.Resolution, conflict.Reasoning, conflict.StakeModifier))
	out = append(out, fmt.Sprintf("stake %.1fu", stake))
	return out
}

package orchestrator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/quantbet/quantum/internal/consensus"
	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/validate"
)

// QuantumPick is the public output for one fixture the engine chose to bet.
type QuantumPick struct {
	FixtureID string `json:"fixture_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`

	Market      string  `json:"market"`
	Selection   string  `json:"selection"`
	Odds        float64 `json:"odds"`
	Probability float64 `json:"probability"`
	EdgePct     float64 `json:"edge_pct"`

	Stake         float64 `json:"stake"`
	ExpectedValue float64 `json:"expected_value"`

	Confidence float64              `json:"confidence"`
	Conviction consensus.Conviction `json:"conviction"`
	Consensus  string               `json:"consensus"` // "5/7 models agree"

	MonteCarloScore float64             `json:"monte_carlo_score"`
	Robustness      validate.Robustness `json:"robustness"`
	CLVSignal       validate.CLVZone    `json:"clv_signal"`
	Conflict        validate.Resolution `json:"conflict"`

	Scenarios     []friction.Scenario       `json:"scenarios"`
	VectorSummary map[string]string         `json:"vector_summary"`
	ModelVotes    map[engine.ModelID]string `json:"model_votes"`
	Reasoning     []string                  `json:"reasoning"`

	SnapshotID uuid.UUID `json:"snapshot_id"`
}

// Decision wraps the outcome of one fixture analysis. Pick is nil when
// the engine skipped; the snapshot is kept either way for audit.
type Decision struct {
	FixtureID  string
	Pick       *QuantumPick
	SkipReason string
	Snapshot   uuid.UUID
}

// Skipped reports whether the engine declined the fixture.
func (d Decision) Skipped() bool { return d.Pick == nil }

// voteSummary renders "buy (72)" style entries per model.
func voteSummary(votes []engine.Vote) map[engine.ModelID]string {
	out := make(map[engine.ModelID]string, len(votes))
	for _, v := range votes {
		out[v.Model] = fmt.Sprintf("%s (%.0f)", v.Signal, v.Confidence)
	}
	return out
}

// summarizeVectors reduces each DNA vector pair to a one-line signal for
// the pick's audit trail.
func summarizeVectors(home, away *dna.TeamDNA) map[string]string {
	return map[string]string{
		"market": fmt.Sprintf("ROI %.1f%% vs %.1f%%",
			home.Market.ROI, away.Market.ROI),
		"context": fmt.Sprintf("strength %.0f (H) vs %.0f (A)",
			home.Context.HomeStrength, away.Context.AwayStrength),
		"risk": fmt.Sprintf("panic %.2f vs %.2f",
			home.Risk.PanicFactor, away.Risk.PanicFactor),
		"temporal": fmt.Sprintf("diesel %.2f vs %.2f",
			home.Temporal.DieselFactor, away.Temporal.DieselFactor),
		"nemesis": fmt.Sprintf("verticality %.0f vs %.0f",
			home.Nemesis.Verticality, away.Nemesis.Verticality),
		"psyche": fmt.Sprintf("%s vs %s",
			home.Psyche.Mentality, away.Psyche.Mentality),
		"sentiment": fmt.Sprintf("vulnerability %.0f vs %.0f",
			home.Sentiment.VulnerabilityScore, away.Sentiment.VulnerabilityScore),
		"roster": fmt.Sprintf("keeper %s vs %s",
			home.Roster.KeeperStatus, away.Roster.KeeperStatus),
		"physical": fmt.Sprintf("pressing %.0f vs %.0f",
			home.Physical.PressingIntensity, away.Physical.PressingIntensity),
		"luck": fmt.Sprintf("regression %s vs %s",
			home.Luck.RegressionDirection, away.Luck.RegressionDirection),
		"chameleon": fmt.Sprintf("%s vs %s",
			home.Chameleon.MainFormation, away.Chameleon.MainFormation),
		"micro": fmt.Sprintf("%d vs %d buckets",
			len(home.MicroStrategy.Buckets), len(away.MicroStrategy.Buckets)),
	}
}

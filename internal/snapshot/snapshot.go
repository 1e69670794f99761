// Package snapshot records every decision the engine makes as an
// immutable audit record, written before the pick is emitted and settled
// out of band after the match.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/quantbet/quantum/internal/consensus"
	"github.com/quantbet/quantum/internal/dna"
	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/friction"
	"github.com/quantbet/quantum/internal/validate"
)

// BetSnapshot is the complete audit record for one fixture decision.
// Everything the engine saw and every intermediate verdict is frozen
// here; the settlement fields are filled in later.
type BetSnapshot struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FixtureID string    `json:"fixture_id" db:"fixture_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	HomeTeam string `json:"home_team" db:"home_team"`
	AwayTeam string `json:"away_team" db:"away_team"`

	HomeDNA  dna.TeamDNA     `json:"home_dna"`
	AwayDNA  dna.TeamDNA     `json:"away_dna"`
	Friction friction.Matrix `json:"friction"`

	Votes   []engine.Vote              `json:"votes"`
	Weights map[engine.ModelID]float64 `json:"weights"`

	Consensus  consensus.Result          `json:"consensus"`
	MonteCarlo validate.MonteCarloResult `json:"monte_carlo"`
	CLV        validate.CLVResult        `json:"clv"`
	Conflict   validate.ConflictResult   `json:"conflict"`

	Odds map[string]float64 `json:"odds"`

	Market        string  `json:"market" db:"market"`
	Odds1         float64 `json:"chosen_odds" db:"chosen_odds"`
	Probability   float64 `json:"probability" db:"probability"`
	Edge          float64 `json:"edge" db:"edge"`
	Stake         float64 `json:"stake" db:"stake"`
	ExpectedValue float64 `json:"expected_value" db:"expected_value"`
	Suppressed    bool    `json:"suppressed" db:"suppressed"`

	// Settlement, written post-match by the out-of-band settler.
	ActualResult *string    `json:"actual_result,omitempty" db:"actual_result"`
	ProfitLoss   *float64   `json:"profit_loss,omitempty" db:"profit_loss"`
	SettledAt    *time.Time `json:"settled_at,omitempty" db:"settled_at"`
}

// New builds a snapshot shell with identity and timestamp assigned.
func New(fixtureID, home, away string) *BetSnapshot {
	return &BetSnapshot{
		ID:        uuid.New(),
		FixtureID: fixtureID,
		CreatedAt: time.Now().UTC(),
		HomeTeam:  home,
		AwayTeam:  away,
	}
}

// Settlement is the post-match outcome applied to a snapshot.
type Settlement struct {
	ActualResult string
	ProfitLoss   float64
	SettledAt    time.Time
	// ModelCorrect records, per model, whether its vote was vindicated.
	ModelCorrect map[engine.ModelID]bool
}

// Apply writes the settlement onto the snapshot and marks each vote.
func (s *BetSnapshot) Apply(st Settlement) {
	result := st.ActualResult
	pl := st.ProfitLoss
	at := st.SettledAt
	s.ActualResult = &result
	s.ProfitLoss = &pl
	s.SettledAt = &at

	for i := range s.Votes {
		if correct, ok := st.ModelCorrect[s.Votes[i].Model]; ok {
			c := correct
			s.Votes[i].WasCorrect = &c
		}
	}
}

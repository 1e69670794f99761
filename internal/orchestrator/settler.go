package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/snapshot"
	"github.com/quantbet/quantum/internal/tracker"
)

// Settler applies post-match results: it writes the outcome back onto
// the snapshot and feeds the marked votes into the performance tracker,
// which shifts the dynamic consensus weights for subsequent fixtures.
type Settler struct {
	repo    snapshot.Repository
	tracker *tracker.Tracker
	log     zerolog.Logger
}

// NewSettler wires the settlement path. tracker may be nil when no
// dynamic weighting is wanted.
func NewSettler(repo snapshot.Repository, tr *tracker.Tracker, log zerolog.Logger) *Settler {
	return &Settler{
		repo:    repo,
		tracker: tr,
		log:     log.With().Str("component", "settler").Logger(),
	}
}

// DeriveModelCorrect marks each vote against the set of markets that
// landed. A backing vote is vindicated when its market landed; a sell or
// skip vote when it did not. Votes carrying no market of their own ride
// the chosen market; holds stay unscored.
func DeriveModelCorrect(snap *snapshot.BetSnapshot, winners []string) map[engine.ModelID]bool {
	won := make(map[string]bool, len(winners))
	for _, w := range winners {
		if w != "" {
			won[w] = true
		}
	}

	out := make(map[engine.ModelID]bool, len(snap.Votes))
	for _, v := range snap.Votes {
		mk := v.Market
		if mk == "" {
			mk = snap.Market
		}
		if mk == "" {
			continue
		}
		switch v.Signal {
		case engine.SignalBuy, engine.SignalStrongBuy:
			out[v.Model] = won[mk]
		case engine.SignalSell, engine.SignalStrongSell, engine.SignalSkip:
			out[v.Model] = !won[mk]
		}
	}
	return out
}

// Settle records one match outcome against its snapshot.
func (s *Settler) Settle(ctx context.Context, id uuid.UUID, st snapshot.Settlement) (*snapshot.BetSnapshot, error) {
	settled, err := s.repo.Settle(ctx, id, st)
	if err != nil {
		return nil, fmt.Errorf("settle %s: %w", id, err)
	}

	if s.tracker != nil {
		if err := s.tracker.RecordSettlement(ctx, settled); err != nil {
			// the snapshot is already settled; tracker state catches up
			// on the next restore
			s.log.Warn().Err(err).Stringer("snapshot", id).Msg("tracker update failed")
		}
	}

	s.log.Info().
		Stringer("snapshot", id).
		Str("result", st.ActualResult).
		Float64("pnl", st.ProfitLoss).
		Msg("snapshot settled")
	return settled, nil
}

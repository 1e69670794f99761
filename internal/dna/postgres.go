package dna

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresSource reads the relational half of a team fingerprint. The
// team_dna table carries flat betting-performance columns plus one JSONB
// payload column per vector.
type PostgresSource struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresSource wires a source over an existing connection pool.
func NewPostgresSource(db *sqlx.DB, timeout time.Duration) *PostgresSource {
	return &PostgresSource{db: db, timeout: timeout}
}

type teamRow struct {
	TeamName        string          `db:"team_name"`
	TotalBets       sql.NullInt64   `db:"total_bets"`
	TotalWins       sql.NullInt64   `db:"total_wins"`
	WinRate         sql.NullFloat64 `db:"win_rate"`
	TotalPnL        sql.NullFloat64 `db:"total_pnl"`
	ROI             sql.NullFloat64 `db:"roi"`
	UnluckyLosses   sql.NullInt64   `db:"unlucky_losses"`
	Status          sql.NullString  `db:"status"`
	Tier            sql.NullString  `db:"tier"`
	League          sql.NullString  `db:"league"`
	TierRank        sql.NullFloat64 `db:"tier_rank"`
	StyleConfidence sql.NullFloat64 `db:"style_confidence"`
	UnluckyPct      sql.NullFloat64 `db:"unlucky_pct"`
	CardDNA         []byte          `db:"card_dna"`
	CornerDNA       []byte          `db:"corner_dna"`
	MarketDNA       []byte          `db:"market_dna"`
	ContextDNA      []byte          `db:"context_dna"`
	RiskDNA         []byte          `db:"risk_dna"`
	TemporalDNA     []byte          `db:"temporal_dna"`
	PsycheDNA       []byte          `db:"psyche_dna"`
	SentimentDNA    []byte          `db:"sentiment_dna"`
	RosterDNA       []byte          `db:"roster_dna"`
	LuckDNA         []byte          `db:"luck_dna"`
	ChameleonDNA    []byte          `db:"chameleon_dna"`
	MicroDNA        []byte          `db:"micro_dna"`
}

const teamQuery = `
	SELECT team_name, total_bets, total_wins, win_rate, total_pnl, roi,
	       unlucky_losses, status, tier, league, tier_rank, style_confidence,
	       unlucky_pct, card_dna, corner_dna, market_dna, context_dna, risk_dna,
	       temporal_dna, psyche_dna, sentiment_dna, roster_dna, luck_dna,
	       chameleon_dna, micro_dna
	FROM team_dna
	WHERE lower(team_name) = $1
	   OR lower(regexp_replace(team_name, '\s+(FC|CF|AFC|SC|AC)$', '', 'i')) = $1
	LIMIT 1`

// FetchTeam returns the flattened relational record for a team, matched
// fuzzily by normalised name.
func (s *PostgresSource) FetchTeam(ctx context.Context, team string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row teamRow
	err := s.db.GetContext(ctx, &row, teamQuery, NormalizeName(team))
	if err == sql.ErrNoRows {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query team_dna for %s: %w", team, err)
	}
	return row.flatten(), nil
}

// flatten merges the scalar columns and every JSONB payload into a single
// flat record ready for the converter.
func (r teamRow) flatten() Record {
	rec := Record{"team_name": r.TeamName}

	if r.TotalBets.Valid {
		rec["total_bets"] = int(r.TotalBets.Int64)
	}
	if r.TotalWins.Valid {
		rec["total_wins"] = int(r.TotalWins.Int64)
	}
	if r.WinRate.Valid {
		rec["win_rate"] = r.WinRate.Float64
	}
	if r.TotalPnL.Valid {
		rec["total_pnl"] = r.TotalPnL.Float64
	}
	if r.ROI.Valid {
		rec["roi"] = r.ROI.Float64
	}
	if r.UnluckyLosses.Valid {
		rec["unlucky_losses"] = int(r.UnluckyLosses.Int64)
	}
	if r.Status.Valid {
		rec["status"] = r.Status.String
	}
	if r.Tier.Valid {
		rec["tier"] = r.Tier.String
	}
	if r.League.Valid {
		rec["league"] = r.League.String
	}
	if r.TierRank.Valid {
		rec["tier_rank"] = r.TierRank.Float64
	}
	if r.StyleConfidence.Valid {
		rec["style_confidence"] = r.StyleConfidence.Float64
	}
	if r.UnluckyPct.Valid {
		rec["unlucky_pct"] = r.UnluckyPct.Float64
	}

	for _, payload := range [][]byte{
		r.CardDNA, r.CornerDNA, r.MarketDNA, r.ContextDNA, r.RiskDNA,
		r.TemporalDNA, r.PsycheDNA, r.SentimentDNA, r.RosterDNA, r.LuckDNA,
		r.ChameleonDNA, r.MicroDNA,
	} {
		mergeJSON(rec, payload)
	}
	return rec
}

func mergeJSON(rec Record, payload []byte) {
	if len(payload) == 0 {
		return
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return
	}
	for k, v := range m {
		if _, exists := rec[k]; !exists {
			rec[k] = v
		}
	}
}

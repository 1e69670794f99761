package friction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quantbet/quantum/internal/dna"
)

// PostgresPairSource reads the precomputed pair tables. The V3 table is
// asymmetric (team_a is the home side); the legacy V1 table is symmetric.
// Search order: V3 (home, away), V3 swapped, V1 either order.
type PostgresPairSource struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresPairSource wires a source over an existing pool.
func NewPostgresPairSource(db *sqlx.DB, timeout time.Duration) *PostgresPairSource {
	return &PostgresPairSource{db: db, timeout: timeout}
}

type pairRow struct {
	TeamA            string          `db:"team_a"`
	TeamB            string          `db:"team_b"`
	FrictionScore    float64         `db:"friction_score"`
	StyleClashScore  float64         `db:"style_clash_score"`
	TempoClashScore  float64         `db:"tempo_clash_score"`
	MentalClashScore float64         `db:"mental_clash_score"`
	ChaosPotential   float64         `db:"chaos_potential"`
	PredictedGoals   float64         `db:"predicted_goals"`
	BTTSProb         float64         `db:"btts_prob"`
	Over25Prob       float64         `db:"over_25_prob"`
	PredictedWinner  sql.NullString  `db:"predicted_winner"`
	H2HMatches       sql.NullInt64   `db:"h2h_matches"`
	H2HAvgGoals      sql.NullFloat64 `db:"h2h_avg_goals"`
	VectorJSON       []byte          `db:"friction_vector"`
	Confidence       sql.NullString  `db:"confidence"`
}

const pairColumns = `team_a, team_b, friction_score, style_clash_score,
	tempo_clash_score, mental_clash_score, chaos_potential, predicted_goals,
	btts_prob, over_25_prob, predicted_winner, h2h_matches, h2h_avg_goals,
	friction_vector, confidence`

// FetchPair implements PairSource with bidirectional search.
func (s *PostgresPairSource) FetchPair(ctx context.Context, home, away string) (*PairRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	h, a := dna.NormalizeName(home), dna.NormalizeName(away)

	// asymmetric V3, exact direction first
	if rec, err := s.fetchOne(ctx, "friction_v3", h, a); err == nil {
		rec.Version = "v3"
		return rec, false, nil
	} else if err != sql.ErrNoRows {
		return nil, false, err
	}
	if rec, err := s.fetchOne(ctx, "friction_v3", a, h); err == nil {
		rec.Version = "v3"
		return rec, true, nil
	} else if err != sql.ErrNoRows {
		return nil, false, err
	}

	// symmetric V1 legacy table
	if rec, err := s.fetchOne(ctx, "friction_v1", h, a); err == nil {
		rec.Version = "v1"
		return rec, false, nil
	} else if err != sql.ErrNoRows {
		return nil, false, err
	}
	if rec, err := s.fetchOne(ctx, "friction_v1", a, h); err == nil {
		rec.Version = "v1"
		return rec, true, nil
	} else if err != sql.ErrNoRows {
		return nil, false, err
	}

	return nil, false, ErrNoPairRecord
}

func (s *PostgresPairSource) fetchOne(ctx context.Context, table, a, b string) (*PairRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(team_a) = $1 AND lower(team_b) = $2 LIMIT 1`, pairColumns, table)

	var row pairRow
	if err := s.db.GetContext(ctx, &row, query, a, b); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to query %s for (%s, %s): %w", table, a, b, err)
	}

	rec := &PairRecord{
		TeamA:            row.TeamA,
		TeamB:            row.TeamB,
		FrictionScore:    row.FrictionScore,
		StyleClashScore:  row.StyleClashScore,
		TempoClashScore:  row.TempoClashScore,
		MentalClashScore: row.MentalClashScore,
		ChaosPotential:   row.ChaosPotential,
		PredictedGoals:   row.PredictedGoals,
		BTTSProb:         row.BTTSProb,
		Over25Prob:       row.Over25Prob,
		PredictedWinner:  row.PredictedWinner.String,
		H2HMatches:       int(row.H2HMatches.Int64),
		H2HAvgGoals:      row.H2HAvgGoals.Float64,
		Confidence:       row.Confidence.String,
	}
	if len(row.VectorJSON) > 0 {
		// malformed vector JSON degrades to a zero vector, not an error
		_ = json.Unmarshal(row.VectorJSON, &rec.Vector)
	}
	return rec, nil
}

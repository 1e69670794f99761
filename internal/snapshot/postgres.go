package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a snapshot id has no stored record.
var ErrNotFound = errors.New("snapshot not found")

// Repository persists snapshots. Records are append-only; the only
// permitted mutation is the settlement write-back.
type Repository interface {
	Save(ctx context.Context, s *BetSnapshot) error
	Get(ctx context.Context, id uuid.UUID) (*BetSnapshot, error)
	Settle(ctx context.Context, id uuid.UUID, st Settlement) (*BetSnapshot, error)
	Unsettled(ctx context.Context, limit int) ([]*BetSnapshot, error)
}

// PostgresRepository stores snapshots in a bet_snapshots table with the
// scalar decision columns broken out for querying and the full record as
// a JSONB payload.
type PostgresRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresRepository wraps an open connection pool.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db, timeout: 5 * time.Second}
}

func (r *PostgresRepository) Save(ctx context.Context, s *BetSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", s.ID, err)
	}

	const q = `
		INSERT INTO bet_snapshots
			(id, fixture_id, created_at, home_team, away_team,
			 market, chosen_odds, probability, edge, stake,
			 expected_value, suppressed, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, q,
		s.ID, s.FixtureID, s.CreatedAt, s.HomeTeam, s.AwayTeam,
		s.Market, s.Odds1, s.Probability, s.Edge, s.Stake,
		s.ExpectedValue, s.Suppressed, payload)
	if err != nil {
		return fmt.Errorf("insert snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*BetSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var payload []byte
	err := r.db.GetContext(ctx, &payload,
		`SELECT payload FROM bet_snapshots WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot %s: %w", id, err)
	}

	var s BetSnapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &s, nil
}

// Settle applies the post-match outcome, updating both the queryable
// columns and the stored payload, and returns the settled record.
func (r *PostgresRepository) Settle(ctx context.Context, id uuid.UUID, st Settlement) (*BetSnapshot, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.SettledAt != nil {
		return nil, fmt.Errorf("snapshot %s already settled", id)
	}
	s.Apply(st)

	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settled snapshot %s: %w", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
		UPDATE bet_snapshots
		SET actual_result = $2, profit_loss = $3, settled_at = $4, payload = $5
		WHERE id = $1 AND settled_at IS NULL`

	res, err := r.db.ExecContext(ctx, q,
		id, st.ActualResult, st.ProfitLoss, st.SettledAt, payload)
	if err != nil {
		return nil, fmt.Errorf("settle snapshot %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("snapshot %s already settled", id)
	}
	return s, nil
}

// Unsettled returns snapshots still awaiting a result, oldest first.
func (r *PostgresRepository) Unsettled(ctx context.Context, limit int) ([]*BetSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	var payloads [][]byte
	err := r.db.SelectContext(ctx, &payloads,
		`SELECT payload FROM bet_snapshots
		 WHERE settled_at IS NULL AND suppressed = FALSE
		 ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select unsettled snapshots: %w", err)
	}

	out := make([]*BetSnapshot, 0, len(payloads))
	for _, p := range payloads {
		var s BetSnapshot
		if err := json.Unmarshal(p, &s); err != nil {
			return nil, fmt.Errorf("decode unsettled snapshot: %w", err)
		}
		out = append(out, &s)
	}
	return out, nil
}

// MemoryRepository keeps snapshots in a map for tests and dry runs.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*BetSnapshot
}

// NewMemoryRepository returns an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]*BetSnapshot)}
}

func (m *MemoryRepository) Save(_ context.Context, s *BetSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.records[s.ID] = &cp
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*BetSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) Settle(_ context.Context, id uuid.UUID, st Settlement) (*BetSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.SettledAt != nil {
		return nil, fmt.Errorf("snapshot %s already settled", id)
	}
	s.Apply(st)
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) Unsettled(_ context.Context, limit int) ([]*BetSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*BetSnapshot
	for _, s := range m.records {
		if s.SettledAt == nil && !s.Suppressed {
			cp := *s
			out = append(out, &cp)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Package tracker maintains per-model performance counters that feed the
// dynamic consensus weights. Settlement is the single writer; fixture
// analysis only reads.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/snapshot"
)

// ModelRecord is one model's lifetime tally.
type ModelRecord struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	PnL     float64 `json:"pnl"`
}

// Accuracy is the share of settled votes that were correct.
func (r ModelRecord) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// ROI is cumulative P&L per settled vote.
func (r ModelRecord) ROI() float64 {
	if r.Total == 0 {
		return 0
	}
	return r.PnL / float64(r.Total)
}

// Tracker aggregates settled votes per model. It satisfies the consensus
// engine's StatsProvider.
type Tracker struct {
	mu      sync.RWMutex
	records map[engine.ModelID]ModelRecord

	store Store
	log   zerolog.Logger
}

// Store persists tracker state between runs.
type Store interface {
	Load(ctx context.Context) (map[engine.ModelID]ModelRecord, error)
	Persist(ctx context.Context, records map[engine.ModelID]ModelRecord) error
}

// New returns a tracker backed by the optional store. A nil store keeps
// state in memory only.
func New(store Store, log zerolog.Logger) *Tracker {
	return &Tracker{
		records: make(map[engine.ModelID]ModelRecord),
		store:   store,
		log:     log,
	}
}

// Restore loads persisted counters, replacing in-memory state.
func (t *Tracker) Restore(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	records, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore tracker: %w", err)
	}
	if records == nil {
		return nil
	}
	t.mu.Lock()
	t.records = records
	t.mu.Unlock()
	return nil
}

// ModelStats implements consensus.StatsProvider.
func (t *Tracker) ModelStats(id engine.ModelID) (int, float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec := t.records[id]
	return rec.Total, rec.ROI()
}

// Record returns the current tally for one model.
func (t *Tracker) Record(id engine.ModelID) ModelRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records[id]
}

// Records returns a copy of every model's tally.
func (t *Tracker) Records() map[engine.ModelID]ModelRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[engine.ModelID]ModelRecord, len(t.records))
	for id, rec := range t.records {
		out[id] = rec
	}
	return out
}

// RecordSettlement folds a settled snapshot into the counters. Votes
// without a was_correct mark are skipped; the stake-weighted P&L is
// attributed to every marked vote. Counters are then persisted if a
// store is configured.
func (t *Tracker) RecordSettlement(ctx context.Context, s *snapshot.BetSnapshot) error {
	if s.SettledAt == nil {
		return fmt.Errorf("snapshot %s is not settled", s.ID)
	}

	marked := 0
	t.mu.Lock()
	for _, v := range s.Votes {
		if v.WasCorrect == nil {
			continue
		}
		rec := t.records[v.Model]
		rec.Total++
		if *v.WasCorrect {
			rec.Correct++
		}
		if s.ProfitLoss != nil {
			rec.PnL += *s.ProfitLoss
		}
		t.records[v.Model] = rec
		marked++
	}
	snapshotCopy := t.copyLocked()
	t.mu.Unlock()

	t.log.Debug().
		Stringer("snapshot", s.ID).
		Int("votes", marked).
		Msg("settlement recorded")

	if t.store == nil {
		return nil
	}
	if err := t.store.Persist(ctx, snapshotCopy); err != nil {
		return fmt.Errorf("persist tracker: %w", err)
	}
	return nil
}

func (t *Tracker) copyLocked() map[engine.ModelID]ModelRecord {
	out := make(map[engine.ModelID]ModelRecord, len(t.records))
	for id, rec := range t.records {
		out[id] = rec
	}
	return out
}

// RedisStore persists the counters as a single JSON blob.
type RedisStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewRedisStore wraps a connected client. key defaults to
// "quantum:tracker" when empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "quantum:tracker"
	}
	return &RedisStore{client: client, key: key, timeout: 2 * time.Second}
}

func (s *RedisStore) Load(ctx context.Context) (map[engine.ModelID]ModelRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	var records map[engine.ModelID]ModelRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return records, nil
}

func (s *RedisStore) Persist(ctx context.Context, records map[engine.ModelID]ModelRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	return nil
}

package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/snapshot"
)

type memStore struct {
	mu      sync.Mutex
	records map[engine.ModelID]ModelRecord
	loads   int
	saves   int
}

func (m *memStore) Load(context.Context) (map[engine.ModelID]ModelRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return m.records, nil
}

func (m *memStore) Persist(_ context.Context, records map[engine.ModelID]ModelRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.records = records
	return nil
}

func settledSnapshot(t *testing.T, pl float64, correct map[engine.ModelID]bool) *snapshot.BetSnapshot {
	t.Helper()

	s := snapshot.New("fixture-1", "Home", "Away")
	for id := range correct {
		s.Votes = append(s.Votes, engine.Vote{Model: id, Signal: engine.SignalBuy, Confidence: 70})
	}
	s.Apply(snapshot.Settlement{
		ActualResult: "over_25",
		ProfitLoss:   pl,
		SettledAt:    time.Now().UTC(),
		ModelCorrect: correct,
	})
	return s
}

func TestRecordSettlementUpdatesCounters(t *testing.T) {
	tr := New(nil, zerolog.Nop())
	ctx := context.Background()

	s := settledSnapshot(t, 1.8, map[engine.ModelID]bool{
		engine.ModelTeamStrategy:  true,
		engine.ModelQuantumZScore: false,
	})
	require.NoError(t, tr.RecordSettlement(ctx, s))

	rec := tr.Record(engine.ModelTeamStrategy)
	assert.Equal(t, 1, rec.Total)
	assert.Equal(t, 1, rec.Correct)
	assert.InDelta(t, 1.8, rec.PnL, 1e-9)
	assert.InDelta(t, 1.0, rec.Accuracy(), 1e-9)

	rec = tr.Record(engine.ModelQuantumZScore)
	assert.Equal(t, 1, rec.Total)
	assert.Zero(t, rec.Correct)
}

func TestRecordSettlementSkipsUnmarkedVotes(t *testing.T) {
	tr := New(nil, zerolog.Nop())

	s := snapshot.New("fixture-2", "Home", "Away")
	s.Votes = []engine.Vote{{Model: engine.ModelDixonColes, Signal: engine.SignalHold}}
	now := time.Now().UTC()
	s.SettledAt = &now

	require.NoError(t, tr.RecordSettlement(context.Background(), s))
	assert.Zero(t, tr.Record(engine.ModelDixonColes).Total)
}

func TestRecordSettlementRejectsUnsettled(t *testing.T) {
	tr := New(nil, zerolog.Nop())
	err := tr.RecordSettlement(context.Background(), snapshot.New("f", "a", "b"))
	assert.Error(t, err)
}

func TestModelStatsFeedsConsensus(t *testing.T) {
	tr := New(nil, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		s := settledSnapshot(t, 5.0, map[engine.ModelID]bool{engine.ModelTeamStrategy: true})
		require.NoError(t, tr.RecordSettlement(ctx, s))
	}

	votes, roi := tr.ModelStats(engine.ModelTeamStrategy)
	assert.Equal(t, 10, votes)
	assert.InDelta(t, 5.0, roi, 1e-9)

	votes, roi = tr.ModelStats(engine.ModelMicroStrategy)
	assert.Zero(t, votes)
	assert.Zero(t, roi)
}

func TestPersistAndRestore(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()

	tr := New(store, zerolog.Nop())
	s := settledSnapshot(t, 2.0, map[engine.ModelID]bool{engine.ModelScenario: true})
	require.NoError(t, tr.RecordSettlement(ctx, s))
	assert.Equal(t, 1, store.saves)

	fresh := New(store, zerolog.Nop())
	require.NoError(t, fresh.Restore(ctx))

	rec := fresh.Record(engine.ModelScenario)
	assert.Equal(t, 1, rec.Total)
	assert.InDelta(t, 2.0, rec.PnL, 1e-9)
}

func TestRestoreWithoutStoreIsNoop(t *testing.T) {
	tr := New(nil, zerolog.Nop())
	assert.NoError(t, tr.Restore(context.Background()))
}

func TestConcurrentReadsDuringSettlement(t *testing.T) {
	tr := New(nil, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := settledSnapshot(t, 1.0, map[engine.ModelID]bool{engine.ModelDNAFeatures: true})
			_ = tr.RecordSettlement(ctx, s)
		}()
		go func() {
			defer wg.Done()
			tr.ModelStats(engine.ModelDNAFeatures)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, tr.Record(engine.ModelDNAFeatures).Total)
}

package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantbet/quantum/internal/engine"
)

type stubStats struct {
	votes map[engine.ModelID]int
	roi   map[engine.ModelID]float64
}

func (s *stubStats) ModelStats(id engine.ModelID) (int, float64) {
	return s.votes[id], s.roi[id]
}

func makeVotes(positives int) []engine.Vote {
	votes := make([]engine.Vote, 0, len(engine.AllModels))
	for i, id := range engine.AllModels {
		sig := engine.SignalHold
		if i < positives {
			sig = engine.SignalBuy
		}
		votes = append(votes, engine.Vote{Model: id, Signal: sig, Confidence: 70})
	}
	return votes
}

func TestDynamicFactorClamps(t *testing.T) {
	assert.Equal(t, 1.25, DynamicFactor(50))
	assert.Equal(t, 1.25, DynamicFactor(500)) // inner clamp at +0.5
	assert.Equal(t, 0.75, DynamicFactor(-500))
	assert.Equal(t, 1.0, DynamicFactor(0))
	assert.InDelta(t, 1.1, DynamicFactor(20), 1e-9)
}

func TestEffectiveWeightUsesBaseBelowSampleFloor(t *testing.T) {
	stats := &stubStats{
		votes: map[engine.ModelID]int{engine.ModelTeamStrategy: 9},
		roi:   map[engine.ModelID]float64{engine.ModelTeamStrategy: 80},
	}
	v := engine.Vote{Model: engine.ModelTeamStrategy, Signal: engine.SignalBuy, Confidence: 70}
	// 9 tracked votes < 10: ROI ignored, base 1.25 × multiplier 1.0
	assert.InDelta(t, 1.25, EffectiveWeight(v, stats), 1e-9)

	stats.votes[engine.ModelTeamStrategy] = 10
	assert.InDelta(t, 1.25*1.25, EffectiveWeight(v, stats), 1e-9)
}

func TestEffectiveWeightConfidenceMultiplier(t *testing.T) {
	v := engine.Vote{Model: engine.ModelDixonColes, Signal: engine.SignalBuy, Confidence: 85}
	assert.InDelta(t, 1.0*1.2, EffectiveWeight(v, nil), 1e-9)

	v.Confidence = 50
	assert.InDelta(t, 1.0*0.8, EffectiveWeight(v, nil), 1e-9)
}

func TestConsensusReachedAtFivePositives(t *testing.T) {
	tests := []struct {
		positives  int
		reached    bool
		conviction Conviction
	}{
		{7, true, ConvictionMaximum},
		{6, true, ConvictionStrong},
		{5, true, ConvictionModerate},
		{4, false, ConvictionWeak},
		{0, false, ConvictionWeak},
	}
	for _, tt := range tests {
		res := Compute(makeVotes(tt.positives), nil, DefaultThresholds())
		assert.Equal(t, tt.reached, res.Reached, "positives=%d", tt.positives)
		assert.Equal(t, tt.conviction, res.Conviction, "positives=%d", tt.positives)
		assert.Equal(t, tt.positives, res.Count)
	}
}

func TestConsensusScoreRequiresWeightShare(t *testing.T) {
	// five low-weight positives against two high-confidence negatives can
	// clear the count gate yet fail the 0.60 share gate
	votes := makeVotes(5)
	for i := range votes {
		if votes[i].IsPositive() {
			votes[i].Confidence = 40 // ×0.8
		} else {
			votes[i].Confidence = 90 // ×1.2
		}
	}
	res := Compute(votes, nil, DefaultThresholds())
	assert.Equal(t, 5, res.Count)
	// positives: (1.25+1.15+1.10+1.00+0.85)·0.8 = 4.28
	// negatives: (1.05+1.05)·1.2 = 2.52
	assert.InDelta(t, 4.28/(4.28+2.52), res.Score, 1e-9)
	assert.True(t, res.Reached)

	// push one more positive into a negative and the share gate fails
	votes[4].Signal = engine.SignalHold
	votes[4].Confidence = 90
	res = Compute(votes, nil, DefaultThresholds())
	assert.Equal(t, 4, res.Count)
	assert.False(t, res.Reached)
}

func TestConsensusIsCommutative(t *testing.T) {
	votes := makeVotes(6)
	forward := Compute(votes, nil, DefaultThresholds())

	reversed := make([]engine.Vote, len(votes))
	for i, v := range votes {
		reversed[len(votes)-1-i] = v
	}
	backward := Compute(reversed, nil, DefaultThresholds())

	assert.Equal(t, forward.Score, backward.Score)
	assert.Equal(t, forward.Count, backward.Count)
	assert.Equal(t, forward.Conviction, backward.Conviction)
}

func TestBaseWeightTable(t *testing.T) {
	assert.Equal(t, 1.25, BaseWeights[engine.ModelTeamStrategy])
	assert.Equal(t, 0.85, BaseWeights[engine.ModelScenario])
	assert.Len(t, BaseWeights, 7)
}

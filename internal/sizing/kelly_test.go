package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neutralInputs() Inputs {
	return Inputs{
		Probability:      0.66,
		Odds:             1.72, // implied ~0.581
		Edge:             0.08,
		PanicFactor:      0.0,
		ConflictModifier: 1.00,
		MonteCarlo:       1.00,
		CLV:              1.00,
		Confidence:       100, // confidence modifier 1.0
	}
}

func TestComputeBaseline(t *testing.T) {
	res := Compute(neutralInputs(), DefaultConfig())

	require.False(t, res.Suppressed)
	// kelly = (0.08 * 0.66) / (1/1.72) = 0.0528 * 1.72 = 0.090816
	assert.InDelta(t, 0.090816, res.RawKelly, 1e-9)
	assert.InDelta(t, 0.022704, res.Fractional, 1e-9)
	// 2.2704 units rounds to 2.5
	assert.InDelta(t, 2.5, res.Stake, 1e-9)
}

func TestComputeHalfUnitRounding(t *testing.T) {
	in := neutralInputs()
	in.Confidence = 80 // modifier 0.9 -> 2.04336 units

	res := Compute(in, DefaultConfig())

	require.False(t, res.Suppressed)
	assert.InDelta(t, 2.0, res.Stake, 1e-9)
}

func TestComputeClampsToMaxStake(t *testing.T) {
	in := neutralInputs()
	in.Edge = 0.30
	in.Probability = 0.85

	res := Compute(in, DefaultConfig())

	require.False(t, res.Suppressed)
	assert.InDelta(t, 5.0, res.Stake, 1e-9)
}

func TestComputeFloorsTinyPositiveStake(t *testing.T) {
	in := neutralInputs()
	in.Edge = 0.005

	res := Compute(in, DefaultConfig())

	require.False(t, res.Suppressed)
	assert.InDelta(t, 0.5, res.Stake, 1e-9)
}

func TestComputeSuppressesWithoutEdge(t *testing.T) {
	in := neutralInputs()
	in.Edge = 0

	res := Compute(in, DefaultConfig())

	assert.True(t, res.Suppressed)
	assert.Zero(t, res.Stake)

	in.Edge = -0.04
	res = Compute(in, DefaultConfig())
	assert.True(t, res.Suppressed)
}

func TestComputeSuppressesBadOdds(t *testing.T) {
	in := neutralInputs()
	in.Odds = 1.0

	res := Compute(in, DefaultConfig())
	assert.True(t, res.Suppressed)
}

func TestPanicModifier(t *testing.T) {
	assert.InDelta(t, 1.0, PanicModifier(0), 1e-9)
	assert.InDelta(t, 0.8, PanicModifier(0.5), 1e-9)
	assert.InDelta(t, 0.6, PanicModifier(1.0), 1e-9)
	// floored before reaching 1 - 0.4
	assert.InDelta(t, 0.6, PanicModifier(1.5), 1e-9)
}

func TestConfidenceModifier(t *testing.T) {
	assert.InDelta(t, 0.5, ConfidenceModifier(0), 1e-9)
	assert.InDelta(t, 0.75, ConfidenceModifier(50), 1e-9)
	assert.InDelta(t, 1.0, ConfidenceModifier(100), 1e-9)
}

func TestModifierChainMultiplies(t *testing.T) {
	in := neutralInputs()
	in.PanicFactor = 0.5 // risk modifier 0.8
	in.ConflictModifier = 1.15
	in.MonteCarlo = 1.10
	in.CLV = 1.20
	in.Confidence = 80 // 0.9

	res := Compute(in, DefaultConfig())

	require.False(t, res.Suppressed)
	expected := 0.8 * 1.15 * 1.10 * 1.20 * 0.9
	assert.InDelta(t, expected, res.TotalModifier, 1e-9)
}

func TestValueTrapHalvesExposure(t *testing.T) {
	base := Compute(neutralInputs(), DefaultConfig())

	trapped := neutralInputs()
	trapped.ConflictModifier = 0.50
	res := Compute(trapped, DefaultConfig())

	require.False(t, res.Suppressed)
	assert.Less(t, res.Stake, base.Stake)
}

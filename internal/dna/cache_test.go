package dna

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheNormalisesKeys(t *testing.T) {
	c := NewMemoryCache(0)
	d := Neutral("Arsenal FC")
	d.Market.ROI = 21

	c.Put("Arsenal FC", d)
	got, ok := c.Get("arsenal")
	require.True(t, ok)
	assert.Equal(t, 21.0, got.Market.ROI)

	_, ok = c.Get("chelsea")
	assert.False(t, ok)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache(0)
	d := Neutral("Leeds")
	c.Put("Leeds", d)

	d.Market.ROI = -40
	got, ok := c.Get("Leeds")
	require.True(t, ok)
	assert.Equal(t, 0.0, got.Market.ROI, "cached fingerprint is isolated from the caller")

	got.Market.ROI = 99
	again, _ := c.Get("Leeds")
	assert.Equal(t, 0.0, again.Market.ROI)
}

func TestSourceGuardTripsOnConsecutiveFailures(t *testing.T) {
	g := newSourceGuard("test-source")
	boom := errors.New("connection refused")

	for i := 0; i < 4; i++ {
		_, err := g.fetch(func() (Record, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	}

	// breaker now open; the source function must not run again
	called := false
	_, err := g.fetch(func() (Record, error) {
		called = true
		return Record{"roi": 1.0}, nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestSourceGuardMissesDoNotTrip(t *testing.T) {
	g := newSourceGuard("test-source")

	for i := 0; i < 10; i++ {
		_, err := g.fetch(func() (Record, error) { return nil, ErrTeamNotFound })
		assert.ErrorIs(t, err, ErrTeamNotFound)
	}

	rec, err := g.fetch(func() (Record, error) { return Record{"roi": 5.0}, nil })
	require.NoError(t, err)
	assert.Equal(t, 5.0, rec["roi"])
}

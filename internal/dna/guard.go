package dna

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// sourceGuard trips a fingerprint source offline after repeated failures
// so a dead backend degrades to the other source or the neutral template
// instead of stalling every fixture. ErrTeamNotFound is a miss, not a
// failure, and never counts against the source.
type sourceGuard struct {
	cb *cb.CircuitBreaker
}

func newSourceGuard(name string) *sourceGuard {
	st := cb.Settings{
		Name:     name,
		Interval: 30 * time.Second,
		Timeout:  45 * time.Second,
	}
	st.ReadyToTrip = func(counts cb.Counts) bool {
		return counts.ConsecutiveFailures >= 4
	}
	return &sourceGuard{cb: cb.NewCircuitBreaker(st)}
}

// fetch runs one source call through the guard, translating a miss into
// a successful empty result and back so it never trips the breaker.
func (g *sourceGuard) fetch(fn func() (Record, error)) (Record, error) {
	out, err := g.cb.Execute(func() (any, error) {
		rec, err := fn()
		if err == ErrTeamNotFound {
			return Record(nil), nil
		}
		return rec, err
	})
	if err != nil {
		return nil, err
	}
	rec := out.(Record)
	if rec == nil {
		return nil, ErrTeamNotFound
	}
	return rec, nil
}

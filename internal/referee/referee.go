// Package referee profiles match arbiters for disciplinary friction.
package referee

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Style tags how a referee lets a game breathe.
type Style string

const (
	StyleLaisseJouer  Style = "laisse_jouer"
	StyleTriggerHappy Style = "trigger_happy"
	StyleNeutral      Style = "neutral"
)

// Profile captures an arbiter's tendencies relevant to destruction scoring.
type Profile struct {
	Name            string  `json:"name" db:"name"`
	AvgCards        float64 `json:"avg_cards" db:"avg_cards"`
	AvgFouls        float64 `json:"avg_fouls" db:"avg_fouls"`
	CardPerFoul     float64 `json:"card_per_foul" db:"card_per_foul"` // strictness proxy
	AvgGoals        float64 `json:"avg_goals" db:"avg_goals"`
	Volatility      float64 `json:"volatility" db:"volatility"`
	HomeBias        float64 `json:"home_bias" db:"home_bias"`
	StrictnessLevel int     `json:"strictness_level" db:"strictness_level"` // 1-10
	Style           Style   `json:"style" db:"style"`

	// Known is false for the unknown-referee profile; disciplinary
	// friction signals are suppressed when it is false.
	Known bool `json:"known" db:"-"`
}

// Unknown is the profile substituted when no referee record exists.
func Unknown(name string) *Profile {
	return &Profile{
		Name:            name,
		AvgCards:        4.0,
		AvgFouls:        24.0,
		CardPerFoul:     0.17,
		AvgGoals:        2.6,
		Volatility:      0.5,
		HomeBias:        0.5,
		StrictnessLevel: 5,
		Style:           StyleNeutral,
		Known:           false,
	}
}

// Loader reads referee profiles from Postgres.
type Loader struct {
	db      *sqlx.DB
	timeout time.Duration
	log     zerolog.Logger
}

// NewLoader wires a loader over an existing pool. A nil db yields only
// unknown profiles.
func NewLoader(db *sqlx.DB, timeout time.Duration, log zerolog.Logger) *Loader {
	return &Loader{db: db, timeout: timeout, log: log.With().Str("component", "referee_loader").Logger()}
}

// Load returns the profile for a referee name, silently substituting the
// unknown profile when the record is absent.
func (l *Loader) Load(ctx context.Context, name string) *Profile {
	if name == "" || l.db == nil {
		return Unknown(name)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var p Profile
	query := `
		SELECT name, avg_cards, avg_fouls, card_per_foul, avg_goals,
		       volatility, home_bias, strictness_level, style
		FROM referees
		WHERE lower(name) = lower($1)
		LIMIT 1`
	err := l.db.GetContext(ctx, &p, query, name)
	if err == sql.ErrNoRows {
		return Unknown(name)
	}
	if err != nil {
		l.log.Warn().Err(err).Str("referee", name).Msg("referee lookup failed, using unknown profile")
		return Unknown(name)
	}
	p.Known = true
	if p.Style == "" {
		p.Style = StyleNeutral
	}
	return &p
}

// String implements fmt.Stringer for log context.
func (p *Profile) String() string {
	return fmt.Sprintf("%s (strictness %d, %.1f cards/game)", p.Name, p.StrictnessLevel, p.AvgCards)
}

package friction

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/quantbet/quantum/internal/dna"
)

// ErrNoPairRecord is returned by a pair source when neither direction of
// the pair exists in any version of the table.
var ErrNoPairRecord = errors.New("no friction pair record")

// PairRecord is the raw row from the pair table, before directional
// mapping. V1 rows are symmetric (team_a/team_b interchangeable); V3 rows
// are asymmetric with team_a the home side.
type PairRecord struct {
	TeamA            string
	TeamB            string
	FrictionScore    float64
	StyleClashScore  float64
	TempoClashScore  float64
	MentalClashScore float64
	ChaosPotential   float64
	PredictedGoals   float64
	BTTSProb         float64
	Over25Prob       float64
	PredictedWinner  string // "team_a", "team_b", "draw"
	H2HMatches       int
	H2HAvgGoals      float64
	Vector           Vector
	Confidence       string
	Version          string // "v3" or "v1"
}

// PairSource finds the pair record for an ordered matchup. reversed is
// true when the record matched with the teams swapped.
type PairSource interface {
	FetchPair(ctx context.Context, home, away string) (rec *PairRecord, reversed bool, err error)
}

// Loader turns pair records into friction matrices.
type Loader struct {
	source   PairSource
	fallback bool // substitute neutral defaults when no record exists
	log      zerolog.Logger
}

// NewLoader builds a loader. When fallback is false a missing pair yields
// a matrix flagged source="default" with zeroed statics.
func NewLoader(source PairSource, fallback bool, log zerolog.Logger) *Loader {
	return &Loader{
		source:   source,
		fallback: fallback,
		log:      log.With().Str("component", "friction_loader").Logger(),
	}
}

// Load fetches and converts the pair record for (home, away), then runs
// the dynamic computation when both DNAs are supplied. Logs and falls
// back; never returns an error.
func (l *Loader) Load(ctx context.Context, home, away string, homeDNA, awayDNA *dna.TeamDNA) *Matrix {
	m := l.loadStatic(ctx, home, away)
	if homeDNA != nil && awayDNA != nil {
		m.ComputeDynamicMetrics(homeDNA, awayDNA)
	}
	return m
}

func (l *Loader) loadStatic(ctx context.Context, home, away string) *Matrix {
	if l.source != nil {
		rec, reversed, err := l.source.FetchPair(ctx, home, away)
		if err == nil {
			return convert(rec, reversed, home, away)
		}
		if !errors.Is(err, ErrNoPairRecord) {
			l.log.Warn().Err(err).Str("home", home).Str("away", away).Msg("friction source unavailable")
		}
	}

	if l.fallback {
		l.log.Debug().Str("home", home).Str("away", away).Msg("no friction record, using neutral defaults")
		return Defaults(home, away)
	}

	m := Defaults(home, away)
	m.KineticHome, m.KineticAway = 0, 0
	return m
}

// convert maps a raw pair record into the unified asymmetric shape,
// swapping directional fields when the record matched reversed.
func convert(rec *PairRecord, reversed bool, home, away string) *Matrix {
	m := &Matrix{
		HomeTeam:         home,
		AwayTeam:         away,
		FrictionScore:    rec.FrictionScore,
		StyleClashScore:  rec.StyleClashScore,
		TempoClashScore:  rec.TempoClashScore,
		MentalClashScore: rec.MentalClashScore,
		ChaosPotential:   rec.ChaosPotential,
		PredictedGoals:   rec.PredictedGoals,
		BTTSProb:         rec.BTTSProb,
		Over25Prob:       rec.Over25Prob,
		H2HMatches:       rec.H2HMatches,
		H2HAvgGoals:      rec.H2HAvgGoals,
		Vector:           rec.Vector,
		Source:           rec.Version,
		IsReversed:       reversed,
	}

	switch rec.Confidence {
	case "high":
		m.Confidence = ConfidenceHigh
	case "medium":
		m.Confidence = ConfidenceMedium
	default:
		m.Confidence = ConfidenceLow
	}

	// team_a-relative winner mapped into home/away terms
	switch rec.PredictedWinner {
	case "team_a":
		if reversed {
			m.PredictedWinner = WinnerAway
		} else {
			m.PredictedWinner = WinnerHome
		}
	case "team_b":
		if reversed {
			m.PredictedWinner = WinnerHome
		} else {
			m.PredictedWinner = WinnerAway
		}
	default:
		m.PredictedWinner = WinnerDraw
	}

	// a symmetric V1 record carries a directional motivation gap in team_a
	// terms; flip it so downstream reads stay home-relative
	if reversed {
		m.Vector.MotivationGap = -m.Vector.MotivationGap
	}

	m.TriggeredScenarios = m.DetectStaticScenarios()
	m.KineticHome, m.KineticAway = defaultKineticHome, defaultKineticAway
	return m
}

// documented neutral defaults
const (
	defaultKineticHome = 55.0
	defaultKineticAway = 48.0
)

// Defaults returns the neutral matrix used when no pair record exists.
func Defaults(home, away string) *Matrix {
	m := &Matrix{
		HomeTeam:         home,
		AwayTeam:         away,
		FrictionScore:    50,
		StyleClashScore:  50,
		TempoClashScore:  50,
		MentalClashScore: 50,
		ChaosPotential:   50,
		PredictedGoals:   2.8,
		BTTSProb:         0.52,
		Over25Prob:       0.50,
		PredictedWinner:  WinnerDraw,
		Confidence:       ConfidenceLow,
		Source:           "default",
		KineticHome:      defaultKineticHome,
		KineticAway:      defaultKineticAway,
		PhysicalEdge:     50,
	}
	m.TriggeredScenarios = m.DetectStaticScenarios()
	return m
}

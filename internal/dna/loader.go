package dna

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Loader acquires both sources, fuses them, and converts the result into a
// TeamDNA value. It never returns an error for missing data: a team absent
// from both sources yields the neutral template.
type Loader struct {
	rel      RelationalSource
	doc      DocumentSource
	conv     *Converter
	cache    Cache
	relGuard *sourceGuard
	docGuard *sourceGuard
	log      zerolog.Logger
}

// NewLoader builds a loader. Either source may be nil; the other still
// contributes its half of the record. A nil cache gets an in-process one
// with no expiry.
func NewLoader(rel RelationalSource, doc DocumentSource, conv *Converter, c Cache, log zerolog.Logger) *Loader {
	if c == nil {
		c = NewMemoryCache(0)
	}
	return &Loader{
		rel:      rel,
		doc:      doc,
		conv:     conv,
		cache:    c,
		relGuard: newSourceGuard("dna-relational"),
		docGuard: newSourceGuard("dna-document"),
		log:      log.With().Str("component", "dna_loader").Logger(),
	}
}

// relationalAuthority reports whether the relational record owns a key on
// collision: trading performance, card/corner profiles, tier, league and
// seasonal status. Every other colliding key keeps the document source's
// tactical value.
func relationalAuthority(key string) bool {
	switch key {
	case "team_name", "total_bets", "total_wins", "win_rate", "total_pnl",
		"roi", "unlucky_losses", "unlucky_pct", "status", "tier", "league",
		"tier_rank", "style_confidence":
		return true
	}
	return strings.HasPrefix(key, "card_") || strings.HasPrefix(key, "corner_")
}

// Load returns the fused TeamDNA for a team. Reads only; the cache is the
// only side channel.
func (l *Loader) Load(ctx context.Context, team string) *TeamDNA {
	if d, ok := l.cache.Get(team); ok {
		return d
	}

	fused := Record{}

	// Tactical/defensive analysis comes from the JSON extract; merged
	// first so it holds every key the relational record has no authority
	// over.
	if l.doc != nil {
		doc, err := l.docGuard.fetch(func() (Record, error) { return l.doc.FetchDocument(ctx, team) })
		if err == nil {
			for k, v := range doc {
				fused[k] = v
			}
		} else if err != ErrTeamNotFound {
			l.log.Warn().Err(err).Str("team", team).Msg("document source unavailable")
		}
	}

	// Trading performance, card/corner profile, tier and seasonal status
	// come from the relational record; on collision it wins only its own
	// concern keys.
	if l.rel != nil {
		rec, err := l.relGuard.fetch(func() (Record, error) { return l.rel.FetchTeam(ctx, team) })
		if err == nil {
			for k, v := range rec {
				if _, clash := fused[k]; clash && !relationalAuthority(k) {
					continue
				}
				fused[k] = v
			}
		} else if err != ErrTeamNotFound {
			l.log.Warn().Err(err).Str("team", team).Msg("relational source unavailable")
		}
	}

	if len(fused) == 0 {
		l.log.Warn().Str("team", team).Msg("team missing from both DNA sources, using neutral template")
		return Neutral(team)
	}

	d := l.conv.Convert(team, fused)
	l.cache.Put(team, d)
	return d
}

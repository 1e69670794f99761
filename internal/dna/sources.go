package dna

import (
	"context"
	"errors"
)

// ErrTeamNotFound is returned by a source when no record matches the team
// after fuzzy name matching. The loader treats it as a soft miss.
var ErrTeamNotFound = errors.New("team not found")

// RelationalSource serves the structured side of a team's fingerprint:
// betting performance, card/corner profiles, tier, seasonal status.
type RelationalSource interface {
	FetchTeam(ctx context.Context, team string) (Record, error)
}

// DocumentSource serves the richer tactical/defensive JSON extract.
type DocumentSource interface {
	FetchDocument(ctx context.Context, team string) (Record, error)
}

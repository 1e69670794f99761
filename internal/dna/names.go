package dna

import "strings"

// club suffixes stripped during fuzzy matching
var nameSuffixes = []string{
	" fc", " cf", " afc", " cd", " sc", " ac", " bc", " fk", " sk", " if",
}

// NormalizeName canonicalises a team name for source lookups:
// lower-case, trimmed, common club suffixes removed, runs of spaces
// collapsed.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.Join(strings.Fields(n), " ")
	for _, suffix := range nameSuffixes {
		n = strings.TrimSuffix(n, suffix)
	}
	// leading article form ("fc barcelona")
	for _, prefix := range []string{"fc ", "cf ", "afc ", "ac "} {
		n = strings.TrimPrefix(n, prefix)
	}
	return strings.TrimSpace(n)
}

// NamesMatch reports whether two team names refer to the same club after
// normalisation.
func NamesMatch(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

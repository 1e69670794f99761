package dna

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileDocumentSource serves the tactical/defensive extract from a single
// JSON file keyed by team name. The nightly refresh rewrites the file; the
// engine only ever reads it.
type FileDocumentSource struct {
	path string

	once sync.Once
	docs map[string]Record // normalised name → document
	err  error
}

// NewFileDocumentSource lazily loads the extract on first fetch.
func NewFileDocumentSource(path string) *FileDocumentSource {
	return &FileDocumentSource{path: path}
}

func (s *FileDocumentSource) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.err = fmt.Errorf("failed to read DNA extract %s: %w", s.path, err)
		return
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.err = fmt.Errorf("failed to parse DNA extract %s: %w", s.path, err)
		return
	}
	s.docs = make(map[string]Record, len(raw))
	for name, doc := range raw {
		flat := Record{}
		flattenDoc(flat, doc)
		s.docs[NormalizeName(name)] = flat
	}
}

// FetchDocument returns the flattened tactical document for a team.
func (s *FileDocumentSource) FetchDocument(_ context.Context, team string) (Record, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.docs[NormalizeName(team)]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return doc, nil
}

// flattenDoc lifts one level of nesting: the extract groups fields into
// blocks (defence, tactical, exploit, fbref) whose leaves carry the flat
// names the converter reads. Leaf collisions keep the first value seen.
func flattenDoc(dst Record, doc map[string]any) {
	for k, v := range doc {
		if nested, ok := v.(map[string]any); ok {
			// block values the converter wants whole (micro_buckets,
			// friction_vs_style) stay nested
			if k == "micro_buckets" || k == "friction_vs_style" {
				if _, exists := dst[k]; !exists {
					dst[k] = nested
				}
				continue
			}
			flattenDoc(dst, nested)
			continue
		}
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}

// StaticDocumentSource serves documents from memory; used in tests and for
// pre-fused fixtures.
type StaticDocumentSource struct {
	Docs map[string]Record
}

// FetchDocument implements DocumentSource.
func (s *StaticDocumentSource) FetchDocument(_ context.Context, team string) (Record, error) {
	doc, ok := s.Docs[NormalizeName(team)]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return doc, nil
}

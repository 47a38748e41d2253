package matching

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// RelevanceIndex is an in-memory full-text index over the question patterns
// of active corpus entries. It supplies the textRelevance signal of the
// weighted composite tier: an unbounded lexical rank, comparable only
// within a single query, zero when there is no term overlap at all.
//
// The knowledge service keeps the index in sync with the corpus: entries
// are indexed on create/learn/update and removed on soft delete.
type RelevanceIndex struct {
	mu  sync.RWMutex
	idx bleve.Index
}

// NewRelevanceIndex creates an empty in-memory index.
func NewRelevanceIndex() (*RelevanceIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create relevance index: %w", err)
	}
	return &RelevanceIndex{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	entryMapping := bleve.NewDocumentMapping()
	entryMapping.AddFieldMappingsAt("pattern", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", entryMapping)
	return indexMapping
}

// Index adds or replaces the question pattern stored under id.
func (r *RelevanceIndex) Index(id, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.idx.Index(id, map[string]interface{}{"pattern": pattern}); err != nil {
		return fmt.Errorf("failed to index pattern: %w", err)
	}
	return nil
}

// Remove deletes the entry from the index. Removing an unknown id is a no-op.
func (r *RelevanceIndex) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.idx.Delete(id); err != nil {
		return fmt.Errorf("failed to remove pattern from index: %w", err)
	}
	return nil
}

// Rank runs a match query and returns relevance scores keyed by entry id.
// Entries with no lexical overlap are absent from the map.
func (r *RelevanceIndex) Rank(query string, limit int) (map[string]float64, error) {
	if strings.TrimSpace(query) == "" {
		return map[string]float64{}, nil
	}
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("pattern")
	searchRequest := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)

	results, err := r.idx.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("relevance search failed: %w", err)
	}

	ranks := make(map[string]float64, len(results.Hits))
	for _, hit := range results.Hits {
		ranks[hit.ID] = hit.Score
	}
	return ranks, nil
}

// Close releases the underlying index.
func (r *RelevanceIndex) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx.Close()
}

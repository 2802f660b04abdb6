package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"deal-radar/internal/types"
)

// nsLocks serializes writers per namespace. Two concurrent runs sharing a
// namespace would otherwise race on upserts into a shared index.
var nsLocks sync.Map // namespace -> *sync.Mutex

// LockNamespace acquires the write lock for a namespace and returns the
// unlock function.
func LockNamespace(namespace string) func() {
	v, _ := nsLocks.LoadOrStore(namespace, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// KeywordStore is an in-process long-term memory with naive term-overlap
// ranking. It backs offline runs and tests; durable deployments use the
// Elasticsearch store.
type KeywordStore struct {
	mu        sync.RWMutex
	namespace string
	records   []types.EvidenceRecord
	seen      map[[2]string]bool // (text, link) identity
}

// NewKeywordStore creates an empty store for one namespace.
func NewKeywordStore(namespace string) *KeywordStore {
	return &KeywordStore{
		namespace: namespace,
		seen:      make(map[[2]string]bool),
	}
}

// Upsert appends records not already present, keyed by (text, link).
// Returns the number actually added.
func (s *KeywordStore) Upsert(_ context.Context, records []types.EvidenceRecord) (int, error) {
	unlock := LockNamespace(s.namespace)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, rec := range records {
		key := [2]string{rec.Text, rec.Meta.Link}
		if s.seen[key] {
			continue
		}
		s.seen[key] = true
		s.records = append(s.records, rec)
		added++
	}
	return added, nil
}

// Search ranks stored records by the number of query terms their text
// contains, descending, insertion order on ties. Records matching no term
// are omitted.
func (s *KeywordStore) Search(_ context.Context, query string, k int) ([]types.EvidenceRecord, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := queryTerms(query)

	type scored struct {
		rec   types.EvidenceRecord
		score int
		pos   int
	}
	hits := make([]scored, 0, len(s.records))
	for i, rec := range s.records {
		lower := strings.ToLower(rec.Text)
		score := 0
		for _, t := range terms {
			if strings.Contains(lower, t) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{rec: rec, score: score, pos: i})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]types.EvidenceRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.rec)
	}
	return out, nil
}

// queryTerms lowercases and splits a query, dropping boolean connectives
// and quoting so phrase expressions still match on their words.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(query, `"`, " ")))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "()")
		if f == "" || f == "or" || f == "and" {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

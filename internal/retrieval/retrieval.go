package retrieval

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
	"deal-radar/internal/types"
)

// keywordExpr is the fixed boolean expression covering transaction
// terminology. Every entity query appends it; with no entities configured
// it is issued alone.
const keywordExpr = `merger OR acquisition OR buyout OR takeover OR "business combination" OR SPAC OR "tender offer" OR "definitive agreement" OR divestiture OR spin-off`

const (
	ModeEmbedding = "embedding"
	ModeKeyword   = "keyword"
)

var wsRx = regexp.MustCompile(`\s+`)

// Engine retrieves evidence for a run. With a long-term memory collaborator
// it fans queries out against the similarity index (embedding mode);
// without one it selects from the documents ingested during the current run
// (in-process keyword mode).
type Engine struct {
	long interfaces.LongTermMemory
}

// NewEngine builds a retrieval engine. long may be nil to force the
// in-process mode.
func NewEngine(long interfaces.LongTermMemory) *Engine {
	return &Engine{long: long}
}

// BuildQueries constructs one query per tracked entity, or the bare keyword
// expression when no entities are configured.
func BuildQueries(entities []string) []string {
	if len(entities) == 0 {
		return []string{keywordExpr}
	}
	queries := make([]string, 0, len(entities))
	for _, e := range entities {
		queries = append(queries, e+" "+keywordExpr)
	}
	return queries
}

// Retrieve produces the evidence set for this run, at most width records.
// Failed queries degrade to fewer hits; retrieval itself never aborts a run.
func (e *Engine) Retrieve(ctx context.Context, entities []string, width int, ingested []types.EvidenceRecord) types.RetrievedSet {
	if width <= 0 {
		width = 20
	}
	if e.long == nil {
		return e.retrieveInProcess(entities, width, ingested)
	}
	return e.retrieveEmbedding(ctx, entities, width)
}

// retrieveEmbedding issues every query concurrently against the long-term
// store and merges the hits through the dedup rule. The merge walks results
// in query order, so completion order does not affect the output.
func (e *Engine) retrieveEmbedding(ctx context.Context, entities []string, width int) types.RetrievedSet {
	queries := BuildQueries(entities)

	results := make([][]types.EvidenceRecord, len(queries))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			hits, err := e.long.Search(gctx, q, width)
			if err != nil {
				// Entity-scoped degradation: one failed query must
				// not sink the others.
				logger.Warn(gctx, "Similarity search failed", "query", q, "error", err)
				return nil
			}
			mu.Lock()
			results[i] = hits
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]types.EvidenceRecord, 0, width*2)
	rawHits := 0
	for _, hits := range results {
		rawHits += len(hits)
		merged = append(merged, hits...)
	}

	deduped := Dedup(merged)
	if len(deduped) > width {
		deduped = deduped[:width]
	}

	return types.RetrievedSet{
		Records: deduped,
		Info: types.RetrieverInfo{
			Mode:    ModeEmbedding,
			Queries: queries,
			Hits:    rawHits,
		},
	}
}

// retrieveInProcess selects from the run's own ingestion batch: records
// flagged as deal-relevant first, else news/filing-sourced records, else any
// record that is not a pure price snapshot — in raw ingestion order, which
// is deliberate documented behavior for the no-flag case. The batch is
// already deduplicated by ingestion, so no dedup pass runs here.
func (e *Engine) retrieveInProcess(entities []string, width int, ingested []types.EvidenceRecord) types.RetrievedSet {
	var selected []types.EvidenceRecord

	for _, rec := range ingested {
		if rec.Meta.IsDeal {
			selected = append(selected, rec)
		}
	}
	if len(selected) == 0 {
		for _, rec := range ingested {
			if rec.Meta.Source == types.SourceYahooNews ||
				rec.Meta.Source == types.SourceGoogleNews ||
				rec.Meta.Source == types.SourceKafka ||
				rec.Meta.Source == types.SourceSEC {
				selected = append(selected, rec)
			}
		}
	}
	if len(selected) == 0 {
		for _, rec := range ingested {
			if rec.Meta.Source != types.SourcePriceSnapshot {
				selected = append(selected, rec)
			}
		}
	}

	if len(selected) > width {
		selected = selected[:width]
	}

	return types.RetrievedSet{
		Records: selected,
		Info: types.RetrieverInfo{
			Mode:    ModeKeyword,
			Queries: BuildQueries(entities),
			Hits:    len(selected),
		},
	}
}

// Dedup removes duplicate records keyed by (normalized text, link). First
// occurrence wins and insertion order is preserved, which makes the merge
// commutative with respect to completion order and idempotent.
func Dedup(records []types.EvidenceRecord) []types.EvidenceRecord {
	seen := make(map[[2]string]bool, len(records))
	out := make([]types.EvidenceRecord, 0, len(records))
	for _, rec := range records {
		key := [2]string{normalizeText(rec.Text), rec.Meta.Link}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}

func normalizeText(text string) string {
	return strings.ToLower(wsRx.ReplaceAllString(strings.TrimSpace(text), " "))
}

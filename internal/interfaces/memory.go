package interfaces

import (
	"context"

	"deal-radar/internal/types"
)

// ShortTermMemory is a bounded, expiring, recency-ordered note log. Add is
// fire-and-forget: implementations retry internally and swallow failures so
// a memory outage never aborts a run.
type ShortTermMemory interface {
	Add(ctx context.Context, note string)
	Get(ctx context.Context) []types.Note
	Clear(ctx context.Context)
}

// LongTermMemory is a durable, searchable store of evidence records. An
// instance is scoped to one namespace (one per logical agent/stage).
// Search returns records ranked by similarity or keyword relevance.
type LongTermMemory interface {
	Upsert(ctx context.Context, records []types.EvidenceRecord) (int, error)
	Search(ctx context.Context, query string, k int) ([]types.EvidenceRecord, error)
}

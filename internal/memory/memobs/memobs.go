package memobs

import (
	"context"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
	"deal-radar/internal/trace"
	"deal-radar/internal/types"
)

// observableLongTerm wraps a LongTermMemory with observability (logging & tracing)
type observableLongTerm struct {
	long interfaces.LongTermMemory
}

// Compile-time interface check
var _ interfaces.LongTermMemory = (*observableLongTerm)(nil)

// Wrap wraps a long-term memory with observability middleware
func Wrap(long interfaces.LongTermMemory) interfaces.LongTermMemory {
	return &observableLongTerm{
		long: long,
	}
}

// Upsert stores evidence records with observability
func (ol *observableLongTerm) Upsert(ctx context.Context, records []types.EvidenceRecord) (int, error) {
	ctx, span := trace.StartSpan(ctx, "memory.Upsert")
	defer span.End()

	added, err := ol.long.Upsert(ctx, records)
	if err != nil {
		// Use ErrorWithErrSkip(1) to report the actual caller
		logger.ErrorWithErrSkip(ctx, 1, "Failed to upsert evidence", err,
			"records", len(records),
		)
		return added, err
	}

	logger.DebugSkip(ctx, 1, "Evidence upserted",
		"records", len(records),
		"added", added,
	)
	return added, nil
}

// Search queries the similarity index with observability
func (ol *observableLongTerm) Search(ctx context.Context, query string, k int) ([]types.EvidenceRecord, error) {
	ctx, span := trace.StartSpan(ctx, "memory.Search")
	defer span.End()

	hits, err := ol.long.Search(ctx, query, k)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Similarity search failed", err,
			"query", query,
			"k", k,
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Similarity search completed",
		"query", query,
		"hits", len(hits),
	)
	return hits, nil
}

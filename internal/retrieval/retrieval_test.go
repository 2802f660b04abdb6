package retrieval

import (
	"context"
	"strings"
	"testing"

	"deal-radar/internal/memory"
	"deal-radar/internal/types"
)

func newsRec(text, link string) types.EvidenceRecord {
	return types.EvidenceRecord{
		Text: text,
		Meta: types.EvidenceMeta{Source: types.SourceYahooNews, Link: link},
	}
}

func TestBuildQueries(t *testing.T) {
	queries := BuildQueries([]string{"AAPL", "MSFT"})
	if len(queries) != 2 {
		t.Fatalf("Expected one query per entity, got %d", len(queries))
	}
	if !strings.HasPrefix(queries[0], "AAPL ") {
		t.Errorf("Expected query to start with the entity, got %q", queries[0])
	}
	if !strings.Contains(queries[0], "tender offer") || !strings.Contains(queries[0], "spin-off") {
		t.Errorf("Expected transaction keyword expression, got %q", queries[0])
	}
}

func TestBuildQueriesNoEntities(t *testing.T) {
	queries := BuildQueries(nil)
	if len(queries) != 1 {
		t.Fatalf("Expected a single keyword-only query, got %d", len(queries))
	}
	if strings.Contains(queries[0], "  ") || !strings.Contains(queries[0], "merger") {
		t.Errorf("Unexpected keyword-only query %q", queries[0])
	}
}

func TestDedupFirstWins(t *testing.T) {
	a := newsRec("Acme buys Widget", "l1")
	aDupe := newsRec("acme   buys widget", "l1") // same after normalization
	b := newsRec("Other headline", "l2")

	out := Dedup([]types.EvidenceRecord{a, aDupe, b})
	if len(out) != 2 {
		t.Fatalf("Expected 2 records after dedup, got %d", len(out))
	}
	if out[0].Text != "Acme buys Widget" {
		t.Errorf("Expected first occurrence to win, got %q", out[0].Text)
	}
	if out[1].Meta.Link != "l2" {
		t.Errorf("Expected insertion order preserved, got %v", out)
	}
}

func TestDedupIdempotent(t *testing.T) {
	records := []types.EvidenceRecord{
		newsRec("A", "1"), newsRec("B", "2"), newsRec("A", "1"), newsRec("C", "3"),
	}

	once := Dedup(records)
	twice := Dedup(once)

	if len(once) != len(twice) {
		t.Fatalf("Dedup not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("Order changed on repeat dedup at %d: %v vs %v", i, once[i], twice[i])
		}
	}
}

func TestDedupKeepsSameTextDifferentLink(t *testing.T) {
	out := Dedup([]types.EvidenceRecord{
		newsRec("Same headline", "l1"),
		newsRec("Same headline", "l2"),
	})
	if len(out) != 2 {
		t.Errorf("Records differing only by link are distinct, got %d", len(out))
	}
}

func TestInProcessDealFlaggedFirst(t *testing.T) {
	eng := NewEngine(nil)

	ingested := []types.EvidenceRecord{
		newsRec("plain headline", "l1"),
		{Text: "Acme agrees to merger", Meta: types.EvidenceMeta{Source: types.SourceYahooNews, Link: "l2", IsDeal: true}},
	}

	set := eng.Retrieve(context.Background(), []string{"ACME"}, 5, ingested)
	if set.Info.Mode != ModeKeyword {
		t.Errorf("Expected keyword mode, got %s", set.Info.Mode)
	}
	if len(set.Records) != 1 || set.Records[0].Meta.Link != "l2" {
		t.Errorf("Expected only the deal-flagged record, got %v", set.Records)
	}
}

func TestInProcessNewsBeforeSnapshots(t *testing.T) {
	eng := NewEngine(nil)

	ingested := []types.EvidenceRecord{
		{Text: "ACME last=100", Meta: types.EvidenceMeta{Source: types.SourcePriceSnapshot}},
		newsRec("plain headline", "l1"),
	}

	set := eng.Retrieve(context.Background(), nil, 5, ingested)
	if len(set.Records) != 1 || set.Records[0].Meta.Link != "l1" {
		t.Errorf("Expected news-sourced record preferred, got %v", set.Records)
	}
}

func TestInProcessFallsBackToIngestionOrder(t *testing.T) {
	eng := NewEngine(nil)

	// No deal flags, no news sources: non-snapshot docs in raw order.
	ingested := []types.EvidenceRecord{
		{Text: "note b", Meta: types.EvidenceMeta{Source: types.SourceMemory}},
		{Text: "note a", Meta: types.EvidenceMeta{Source: types.SourceMemory}},
	}

	set := eng.Retrieve(context.Background(), nil, 5, ingested)
	if len(set.Records) != 2 || set.Records[0].Text != "note b" {
		t.Errorf("Expected raw ingestion order, got %v", set.Records)
	}
}

func TestInProcessTruncatesToWidth(t *testing.T) {
	eng := NewEngine(nil)

	var ingested []types.EvidenceRecord
	for i := 0; i < 10; i++ {
		ingested = append(ingested, types.EvidenceRecord{
			Text: strings.Repeat("x", i+1),
			Meta: types.EvidenceMeta{Source: types.SourceYahooNews, IsDeal: true},
		})
	}

	set := eng.Retrieve(context.Background(), nil, 3, ingested)
	if len(set.Records) != 3 {
		t.Errorf("Expected truncation to width 3, got %d", len(set.Records))
	}
}

func TestEmbeddingModeMergesAndRecordsProvenance(t *testing.T) {
	ctx := context.Background()
	long := memory.NewKeywordStore("test")
	_, err := long.Upsert(ctx, []types.EvidenceRecord{
		newsRec("AAPL merger talks progress", "l1"),
		newsRec("MSFT acquisition rumor", "l2"),
		newsRec("unrelated sports story", "l3"),
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	eng := NewEngine(long)
	set := eng.Retrieve(ctx, []string{"AAPL", "MSFT"}, 5, nil)

	if set.Info.Mode != ModeEmbedding {
		t.Errorf("Expected embedding mode, got %s", set.Info.Mode)
	}
	if len(set.Info.Queries) != 2 {
		t.Errorf("Expected provenance to record issued queries, got %v", set.Info.Queries)
	}
	if set.Info.Hits == 0 {
		t.Error("Expected raw hit count in provenance")
	}
	if len(set.Records) == 0 || len(set.Records) > 5 {
		t.Errorf("Expected 1..5 merged records, got %d", len(set.Records))
	}
	// Merged output must itself be dedup-stable.
	again := Dedup(set.Records)
	if len(again) != len(set.Records) {
		t.Errorf("Merged set not deduplicated: %d vs %d", len(again), len(set.Records))
	}
}

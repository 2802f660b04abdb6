package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/llm/noop"
	"deal-radar/internal/types"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ interfaces.GenConstraints) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.response, s.err
}

func (s *stubGenerator) Identity() string { return "stub-model" }

func evidenceSet(texts ...string) types.RetrievedSet {
	var set types.RetrievedSet
	for i, text := range texts {
		set.Records = append(set.Records, types.EvidenceRecord{
			Text: text,
			Meta: types.EvidenceMeta{Source: types.SourceYahooNews, Link: "l" + string(rune('0'+i))},
		})
	}
	return set
}

func TestExtractDisabledPath(t *testing.T) {
	e := New(nil, interfaces.GenConstraints{})

	out := e.Extract(context.Background(), "AAPL deals", evidenceSet("some headline"))
	if out.TrendSummary != SummaryDisabled {
		t.Errorf("Expected disabled-path summary, got %q", out.TrendSummary)
	}
	if len(out.Deals) != 0 {
		t.Errorf("Expected no deals on disabled path, got %d", len(out.Deals))
	}
	if e.ModelIdentity() != "disabled" {
		t.Errorf("Expected identity 'disabled', got %q", e.ModelIdentity())
	}
}

func TestExtractEmptyRetrievalSkipsModel(t *testing.T) {
	gen := &stubGenerator{response: `{"deals": [], "trend_summary": "x"}`}
	e := New(gen, interfaces.GenConstraints{})

	out := e.Extract(context.Background(), "AAPL deals", types.RetrievedSet{})
	if gen.calls != 0 {
		t.Errorf("Generator must not be called on empty retrieval, got %d calls", gen.calls)
	}
	if out.TrendSummary != SummaryNoEvidence {
		t.Errorf("Expected no-evidence summary, got %q", out.TrendSummary)
	}
}

func TestExtractParsesModelOutput(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"deals": [{"type": "acquisition", "acquirer": "Acme", "target": "Widget", "status": "announced", "evidence": "Acme to acquire Widget"}],
		"trend_summary": "One deal in play."
	}` + "\n```"}
	e := New(gen, interfaces.GenConstraints{})

	out := e.Extract(context.Background(), "ACME deals", evidenceSet("Acme to acquire Widget"))
	if len(out.Deals) != 1 || out.Deals[0].Acquirer != "Acme" {
		t.Fatalf("Expected parsed candidate, got %v", out.Deals)
	}
	if out.TrendSummary != "One deal in play." {
		t.Errorf("Unexpected summary %q", out.TrendSummary)
	}
}

func TestExtractNoopGeneratorTakesDisabledPath(t *testing.T) {
	e := New(noop.New(), interfaces.GenConstraints{})

	out := e.Extract(context.Background(), "AAPL deals", evidenceSet("some headline"))
	if out.TrendSummary != SummaryDisabled {
		t.Errorf("Expected disabled-path summary, got %q", out.TrendSummary)
	}
	if len(out.Deals) != 0 {
		t.Errorf("Expected no deals on disabled path, got %d", len(out.Deals))
	}
	if e.ModelIdentity() != interfaces.IdentityDisabled {
		t.Errorf("Expected identity %q, got %q", interfaces.IdentityDisabled, e.ModelIdentity())
	}
}

func TestExtractGenerationErrorFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream timeout")}
	e := New(gen, interfaces.GenConstraints{})

	out := e.Extract(context.Background(), "q", evidenceSet("headline"))
	if out.TrendSummary != SummaryDisabled || len(out.Deals) != 0 {
		t.Errorf("Expected the disabled-path payload on a generator error, got %v", out)
	}
	if gen.calls != 1 {
		t.Errorf("Expected exactly one generation attempt, got %d", gen.calls)
	}
}

func TestParseRejectsMissingDealsKey(t *testing.T) {
	p := Parse(`{"trend_summary": "no deals key here"}`)
	if p.Ok {
		t.Error("Expected rejection when deals key is absent")
	}
	if p.Reason != "missing deals key" {
		t.Errorf("Unexpected reason %q", p.Reason)
	}
}

func TestParseRejectsNonJSON(t *testing.T) {
	for _, raw := range []string{"", "I found two deals today.", "[1, 2, 3]"} {
		if p := Parse(raw); p.Ok {
			t.Errorf("Expected rejection for %q", raw)
		}
	}
}

func TestParseStripsFenceAndLanguageTag(t *testing.T) {
	p := Parse("```json\n{\"deals\": [], \"trend_summary\": \"quiet day\"}\n```")
	if !p.Ok {
		t.Fatalf("Expected fenced output to parse, got reason %q", p.Reason)
	}
	if p.Payload.TrendSummary != "quiet day" {
		t.Errorf("Unexpected summary %q", p.Payload.TrendSummary)
	}
	if p.Payload.Deals == nil {
		t.Error("Deals must be non-nil after a successful parse")
	}
}

func TestBuildPromptCapsRecordsAndLength(t *testing.T) {
	var texts []string
	for i := 0; i < 12; i++ {
		texts = append(texts, strings.Repeat("a", 300))
	}
	set := evidenceSet(texts...)

	prompt := BuildPrompt("AAPL deals", set.Records)
	if n := strings.Count(prompt, "- ["); n != 8 {
		t.Errorf("Expected 8 evidence lines, got %d", n)
	}
	if strings.Contains(prompt, strings.Repeat("a", 221)) {
		t.Error("Evidence text must be truncated to 220 chars")
	}
	if !strings.Contains(prompt, "Query: AAPL deals") {
		t.Error("Prompt must carry the query context")
	}
	if !strings.Contains(prompt, `"deals"`) {
		t.Error("Prompt must carry the output schema")
	}
}

func TestBuildPromptTruncatesOnRuneBoundary(t *testing.T) {
	// 100 three-byte runes is 300 bytes; a byte-index cut at 220 would
	// land mid-rune.
	set := evidenceSet(strings.Repeat("€", 100))

	prompt := BuildPrompt("q", set.Records)
	if !utf8.ValidString(prompt) {
		t.Error("Prompt must stay valid UTF-8 after truncation")
	}
	if strings.Count(prompt, "€") >= 100 {
		t.Error("Oversized evidence text must be truncated")
	}
}

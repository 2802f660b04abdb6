package report

import (
	"strings"
	"testing"

	"deal-radar/internal/types"
)

func TestBuildDealLines(t *testing.T) {
	f := types.Findings{
		Deals: []types.DealCandidate{
			{Type: types.DealAcquisition, Acquirer: "Acme", Target: "Widget", Status: types.StatusAnnounced},
			{Type: types.DealMerger, Acquirer: "Globex", Target: "Initech", Value: "$2B", Status: types.StatusAgreement},
		},
		TrendSummary: "Two deals verified.",
	}

	r := Build(f, nil)
	if !strings.Contains(r.Summary, "• Acquisition: Acme → Widget (undisclosed, announced)") {
		t.Errorf("Missing or malformed first deal line:\n%s", r.Summary)
	}
	if !strings.Contains(r.Summary, "• Merger: Globex → Initech ($2B, agreement)") {
		t.Errorf("Missing or malformed second deal line:\n%s", r.Summary)
	}
	if !strings.Contains(r.Text, "Trend: Two deals verified.") {
		t.Errorf("Text must carry the trend summary:\n%s", r.Text)
	}
}

func TestBuildCapsDealLines(t *testing.T) {
	var deals []types.DealCandidate
	for i := 0; i < 10; i++ {
		deals = append(deals, types.DealCandidate{Type: types.DealOther, Acquirer: "A", Target: "B"})
	}

	r := Build(types.Findings{Deals: deals}, nil)
	if n := strings.Count(r.Summary, "• "); n != 6 {
		t.Errorf("Expected at most 6 deal lines, got %d", n)
	}
}

func TestBuildHeadlineFallback(t *testing.T) {
	retrieved := []types.EvidenceRecord{
		{Text: "Acme in talks", Meta: types.EvidenceMeta{Source: types.SourceYahooNews}},
		{Text: "AAPL last=230", Meta: types.EvidenceMeta{Source: types.SourcePriceSnapshot}},
		{Text: "8-K filed", Meta: types.EvidenceMeta{Source: types.SourceSEC}},
		{Text: "Widget buyout rumored", Meta: types.EvidenceMeta{Source: types.SourceGoogleNews}},
		{Text: "Feed item on merger", Meta: types.EvidenceMeta{Source: types.SourceKafka}},
		{Text: "Prior run note", Meta: types.EvidenceMeta{Source: types.SourceMemory}},
	}

	r := Build(types.Findings{}, retrieved)
	for _, want := range []string{"• Acme in talks", "• 8-K filed", "• Widget buyout rumored", "• Feed item on merger"} {
		if !strings.Contains(r.Summary, want) {
			t.Errorf("Headline fallback must include news and filing records, missing %q:\n%s", want, r.Summary)
		}
	}
	if strings.Contains(r.Summary, "last=230") {
		t.Errorf("Price snapshots must be excluded from the fallback:\n%s", r.Summary)
	}
	if strings.Contains(r.Summary, "Prior run note") {
		t.Errorf("Memory records must be excluded from the fallback:\n%s", r.Summary)
	}
}

func TestBuildNoSignalsPlaceholder(t *testing.T) {
	r := Build(types.Findings{}, nil)
	if r.Summary != "• No clear deal signals today." {
		t.Errorf("Unexpected placeholder %q", r.Summary)
	}
}

func TestSignalSectionOrdering(t *testing.T) {
	f := types.Findings{
		SignalScores: map[string]types.SignalScore{
			"AAPL": {EntityID: "AAPL", TotalScore: 0.3, Explanation: []string{"news contains deal keywords"}},
			"MSFT": {EntityID: "MSFT", TotalScore: 0.6},
		},
	}

	r := Build(f, nil)
	msft := strings.Index(r.Text, "- MSFT: 0.60")
	aapl := strings.Index(r.Text, "- AAPL: 0.30")
	if msft == -1 || aapl == -1 {
		t.Fatalf("Signal section missing entries:\n%s", r.Text)
	}
	if msft > aapl {
		t.Error("Higher scores must come first in the signal section")
	}
	if !strings.Contains(r.Text, "(news contains deal keywords)") {
		t.Errorf("Explanations must be rendered verbatim:\n%s", r.Text)
	}
}

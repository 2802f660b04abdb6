package validate

import (
	"context"
	"testing"

	"deal-radar/internal/types"
)

func set(texts ...string) types.RetrievedSet {
	var s types.RetrievedSet
	for _, t := range texts {
		s.Records = append(s.Records, types.EvidenceRecord{
			Text: t,
			Meta: types.EvidenceMeta{Source: types.SourceYahooNews},
		})
	}
	return s
}

func candidate(acquirer, target, evidence string) types.DealCandidate {
	return types.DealCandidate{
		Type:     types.DealAcquisition,
		Acquirer: acquirer,
		Target:   target,
		Status:   types.StatusAnnounced,
		Evidence: evidence,
	}
}

func TestFilterRejectsUnidentifiedCandidate(t *testing.T) {
	out := Filter(context.Background(),
		[]types.DealCandidate{candidate("", "", "Acme to acquire Widget Co")},
		set("Acme to acquire Widget Co"))
	if len(out) != 0 {
		t.Errorf("Candidate without acquirer or target must be rejected, got %v", out)
	}
}

func TestFilterAcceptsVerbatimEvidence(t *testing.T) {
	out := Filter(context.Background(),
		[]types.DealCandidate{candidate("Acme", "Widget", "acme to ACQUIRE widget co")},
		set("Breaking: Acme to acquire Widget Co in all-cash deal"))
	if len(out) != 1 {
		t.Errorf("Case-insensitive verbatim evidence must pass, got %v", out)
	}
}

func TestFilterAcceptsSharedLongToken(t *testing.T) {
	// Not verbatim, but shares the token "widget" with a record.
	out := Filter(context.Background(),
		[]types.DealCandidate{candidate("Acme", "Widget", "Widget takeover reported")},
		set("Analysts expect a bid for widget maker"))
	if len(out) != 1 {
		t.Errorf("Shared token longer than 4 chars must pass, got %v", out)
	}
}

func TestFilterRejectsShortEvidence(t *testing.T) {
	out := Filter(context.Background(),
		[]types.DealCandidate{candidate("Acme", "Widget", "deal soon")},
		set("deal soon"))
	if len(out) != 0 {
		t.Errorf("Evidence shorter than 10 chars must be rejected, got %v", out)
	}
}

func TestFilterRejectsUngroundedEvidence(t *testing.T) {
	out := Filter(context.Background(),
		[]types.DealCandidate{candidate("Acme", "Widget", "Zenith buys Orbit for cash")},
		set("Quiet day on the wires"))
	if len(out) != 0 {
		t.Errorf("Evidence absent from every record must be rejected, got %v", out)
	}
}

func TestFilterBlocklistOverridesGrounding(t *testing.T) {
	// Evidence is verbatim in a record but carries a hallucination marker.
	text := "There are rumors of potential deals across various industries"
	out := Filter(context.Background(),
		[]types.DealCandidate{candidate("Acme", "", text)},
		set(text))
	if len(out) != 0 {
		t.Errorf("Blocklisted phrase must reject even grounded evidence, got %v", out)
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	a := candidate("Acme", "Widget", "Acme to acquire Widget Co")
	b := candidate("Globex", "Initech", "Globex merger with Initech")
	out := Filter(context.Background(),
		[]types.DealCandidate{a, b},
		set("Acme to acquire Widget Co", "Globex merger with Initech confirmed"))
	if len(out) != 2 || out[0].Acquirer != "Acme" || out[1].Acquirer != "Globex" {
		t.Errorf("Surviving candidates must keep input order, got %v", out)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	out := Filter(context.Background(), nil, set("anything"))
	if len(out) != 0 {
		t.Errorf("Expected empty output for empty input, got %v", out)
	}
}

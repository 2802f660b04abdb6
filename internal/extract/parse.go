package extract

import (
	"encoding/json"
	"strings"

	"deal-radar/internal/types"
)

// DealsPayload is the accepted shape of a model response.
type DealsPayload struct {
	Deals        []types.DealCandidate `json:"deals"`
	TrendSummary string                `json:"trend_summary"`
}

// ParsedExtraction is the outcome of parsing one model response: either the
// payload (Ok) or a fallback with the rejection reason. Callers branch on Ok
// instead of inspecting errors.
type ParsedExtraction struct {
	Ok      bool
	Payload DealsPayload
	Reason  string
}

func fallback(reason string) ParsedExtraction {
	return ParsedExtraction{Ok: false, Reason: reason}
}

// Parse applies the tolerant two-phase contract: strip code fences and a
// leading language tag, then require a JSON object carrying a "deals" key.
// Anything else falls back.
func Parse(raw string) ParsedExtraction {
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, "`")
	text = strings.TrimSpace(text)
	if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
		text = strings.TrimSpace(text[4:])
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return fallback("not a JSON object")
	}
	if _, ok := probe["deals"]; !ok {
		return fallback("missing deals key")
	}

	var payload DealsPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return fallback("deals payload malformed")
	}
	if payload.Deals == nil {
		payload.Deals = []types.DealCandidate{}
	}
	return ParsedExtraction{Ok: true, Payload: payload}
}

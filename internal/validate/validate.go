package validate

import (
	"context"
	"strings"

	"deal-radar/internal/logger"
	"deal-radar/internal/types"
)

// NoVerifiedActivity replaces the trend summary whenever validation filters
// every candidate out. The summary must reflect that filtering happened.
const NoVerifiedActivity = "No verified deal activity; extracted candidates failed evidence validation."

const minEvidenceLen = 10

// blocklist holds phrases the model emits when it is padding rather than
// citing. A candidate whose evidence contains one is rejected outright.
var blocklist = []string{
	"rumors of potential",
	"various industries",
	"collaborations and acquisitions in",
}

// Filter keeps only candidates whose evidence is grounded in the retrieved
// set. Checks run in order and the first failure rejects: an identification
// check, an evidence-grounding check, then the generic-phrase blocklist.
func Filter(ctx context.Context, candidates []types.DealCandidate, set types.RetrievedSet) []types.DealCandidate {
	kept := make([]types.DealCandidate, 0, len(candidates))
	for _, c := range candidates {
		if reason := reject(c, set.Records); reason != "" {
			logger.Debug(ctx, "Candidate rejected",
				"reason", reason,
				"acquirer", c.Acquirer,
				"target", c.Target)
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// reject returns the failure reason or "" when the candidate passes.
func reject(c types.DealCandidate, records []types.EvidenceRecord) string {
	if strings.TrimSpace(c.Acquirer) == "" && strings.TrimSpace(c.Target) == "" {
		return "no acquirer or target"
	}
	if !grounded(c.Evidence, records) {
		return "evidence not grounded"
	}
	evidence := strings.ToLower(c.Evidence)
	for _, phrase := range blocklist {
		if strings.Contains(evidence, phrase) {
			return "generic phrase: " + phrase
		}
	}
	return ""
}

// grounded accepts evidence that is non-trivial and either appears verbatim
// (case-insensitive) inside some record or shares a token longer than four
// characters with one.
func grounded(evidence string, records []types.EvidenceRecord) bool {
	evidence = strings.TrimSpace(evidence)
	if len(evidence) < minEvidenceLen {
		return false
	}
	lowered := strings.ToLower(evidence)

	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Text), lowered) {
			return true
		}
	}

	tokens := longTokens(lowered)
	for _, rec := range records {
		text := strings.ToLower(rec.Text)
		for tok := range tokens {
			if strings.Contains(text, tok) {
				return true
			}
		}
	}
	return false
}

func longTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(tok) > 4 {
			out[tok] = struct{}{}
		}
	}
	return out
}

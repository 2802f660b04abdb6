package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
	"deal-radar/internal/types"
)

// Trend summaries for the paths that never produce model output.
// SummaryDisabled covers both the missing-generator case and a generator
// that errored before returning anything; SummaryUnparseable is reserved
// for output that arrived but could not be decoded.
const (
	SummaryDisabled    = "LLM disabled; rule-based path."
	SummaryNoEvidence  = "no evidence available"
	SummaryUnparseable = "Model returned unparseable output"
)

const schemaHint = `Return ONLY JSON:
{
  "deals": [
    {
      "type": "acquisition|merger|divestiture|spin-off|spac|tender|strategic_transaction|other",
      "acquirer": "string|null",
      "target": "string|null",
      "entity_ids": ["..."],
      "value": "string|null",
      "status": "rumor|agreement|announced|closed|terminated|other",
      "evidence": "short quote/headline",
      "source_link": "url|null"
    }
  ],
  "trend_summary": "2-3 sentences"
}`

const (
	maxPromptRecords = 8
	maxSnippetChars  = 220
)

// Extractor turns a retrieved evidence set into deal candidates via the
// generative model. A nil generator is valid and selects the disabled path.
type Extractor struct {
	gen         interfaces.Generator
	constraints interfaces.GenConstraints
}

func New(gen interfaces.Generator, constraints interfaces.GenConstraints) *Extractor {
	if constraints.MaxTokens == 0 {
		constraints.MaxTokens = 600
	}
	return &Extractor{gen: gen, constraints: constraints}
}

// ModelIdentity reports which model produced the findings, "disabled" when
// no generator is configured.
func (e *Extractor) ModelIdentity() string {
	if e.gen == nil {
		return interfaces.IdentityDisabled
	}
	return e.gen.Identity()
}

// disabled reports whether extraction may call out to a model. A nil
// generator and the noop generator both select the rule-based path.
func (e *Extractor) disabled() bool {
	return e.gen == nil || e.gen.Identity() == interfaces.IdentityDisabled
}

// Extract runs one extraction pass. The degenerate paths are checked before
// any external call: no generator means no call, and an empty evidence set
// means no call either, so the model never gets a chance to invent deals
// from nothing.
func (e *Extractor) Extract(ctx context.Context, queryContext string, set types.RetrievedSet) DealsPayload {
	if e.disabled() {
		return DealsPayload{Deals: []types.DealCandidate{}, TrendSummary: SummaryDisabled}
	}
	if len(set.Records) == 0 {
		return DealsPayload{Deals: []types.DealCandidate{}, TrendSummary: SummaryNoEvidence}
	}

	timer := logger.StartOperation(ctx, "llm_extraction",
		"model", e.gen.Identity(),
		"records", len(set.Records))
	ctx = timer.GetContext()

	prompt := BuildPrompt(queryContext, set.Records)
	raw, err := e.gen.Generate(ctx, prompt, e.constraints)
	if err != nil {
		logger.ErrorWithErr(ctx, "Model generation failed", err, "model", e.gen.Identity())
		timer.EndWithError(err)
		return DealsPayload{Deals: []types.DealCandidate{}, TrendSummary: SummaryDisabled}
	}

	parsed := Parse(raw)
	if !parsed.Ok {
		logger.Warn(ctx, "Model output rejected", "reason", parsed.Reason)
		timer.End("parsed", false)
		return DealsPayload{Deals: []types.DealCandidate{}, TrendSummary: SummaryUnparseable}
	}

	timer.End("parsed", true, "candidates", len(parsed.Payload.Deals))
	return parsed.Payload
}

// BuildPrompt renders the extraction request: instructions, output schema,
// and at most the first 8 evidence records with truncated text.
func BuildPrompt(queryContext string, records []types.EvidenceRecord) string {
	var b strings.Builder
	b.WriteString("You are an M&A analyst. Extract concrete deals and trends from the context. ")
	b.WriteString("If uncertain, use null/undisclosed, don't hallucinate.\n\n")
	b.WriteString(schemaHint)
	b.WriteString("\n\nQuery: ")
	b.WriteString(queryContext)
	b.WriteString("\nContext:\n")
	b.WriteString(formatContext(records))
	b.WriteString("\n\nJSON:")
	return b.String()
}

func formatContext(records []types.EvidenceRecord) string {
	if len(records) > maxPromptRecords {
		records = records[:maxPromptRecords]
	}
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		text := strings.ReplaceAll(strings.TrimSpace(rec.Text), "\n", " ")
		text = truncate(text, maxSnippetChars)
		lines = append(lines, fmt.Sprintf("- [%s] %s (link=%s)", rec.Meta.Source, text, rec.Meta.Link))
	}
	return strings.Join(lines, "\n")
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

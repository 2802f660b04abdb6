package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"deal-radar/internal/logger"
	"deal-radar/internal/report"
	"deal-radar/internal/types"
	"deal-radar/internal/validate"
)

const (
	maxNoteChars          = 480
	maxFindingsChars      = 4000
	recentNotesForContext = 3
)

// analyze runs extraction, validation and scoring, and owns Findings.
func (p *Pipeline) analyze(ctx context.Context, s State) (State, error) {
	query := strings.TrimSpace(strings.Join(s.Config.Entities, " ") + " M&A deals today")

	payload := p.extractor.Extract(ctx, query, p.withMemoryContext(ctx, s.Retrieved))

	validated := validate.Filter(ctx, payload.Deals, s.Retrieved)
	trend := payload.TrendSummary
	if len(payload.Deals) > 0 && len(validated) == 0 {
		trend = validate.NoVerifiedActivity
	}

	scores := make(map[string]types.SignalScore, len(s.Config.Entities))
	for _, entity := range s.Config.Entities {
		hist := s.Raw.MarketHistory[entity]
		scores[entity] = p.scorer.Score(entity, hist.Close, hist.Volume, entitySnippets(entity, s.Retrieved.Records))
	}

	s.Findings = types.Findings{
		ModelIdentity: p.extractor.ModelIdentity(),
		Deals:         validated,
		TrendSummary:  trend,
		SignalScores:  scores,
	}

	for _, d := range validated {
		logger.Finding(ctx, d.Type, d.Acquirer, d.Target, d.Status, "run_id", s.RunID)
	}

	p.persistFindings(ctx, s.Findings)
	return s, nil
}

// withMemoryContext prepends recent short-term notes as one memory-sourced
// record so the model sees what previous runs concluded. The retrieved set
// itself is left untouched; this context exists only in the prompt. An empty
// retrieval stays empty: notes alone are not evidence, and extraction keeps
// its no-call short-circuit.
func (p *Pipeline) withMemoryContext(ctx context.Context, set types.RetrievedSet) types.RetrievedSet {
	if p.short == nil || len(set.Records) == 0 {
		return set
	}
	notes := p.short.Get(ctx)
	if len(notes) == 0 {
		return set
	}
	if len(notes) > recentNotesForContext {
		notes = notes[:recentNotesForContext]
	}

	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		if strings.TrimSpace(n.Text) != "" {
			parts = append(parts, n.Text)
		}
	}
	if len(parts) == 0 {
		return set
	}

	withNotes := types.RetrievedSet{Info: set.Info}
	withNotes.Records = append([]types.EvidenceRecord{{
		Text: strings.Join(parts, "\n"),
		Meta: types.EvidenceMeta{Source: types.SourceMemory},
	}}, set.Records...)
	return withNotes
}

// persistFindings writes the reflection note and the durable findings copy.
// Memory failures degrade; the run keeps its findings either way.
func (p *Pipeline) persistFindings(ctx context.Context, f types.Findings) {
	note := f.TrendSummary
	if note == "" && len(f.Deals) > 0 {
		note = f.Deals[0].Evidence
	}
	note = truncate(note, maxNoteChars)
	if p.short != nil && note != "" {
		p.short.Add(ctx, note)
	}

	if p.long == nil {
		return
	}
	content, err := json.Marshal(f)
	if err != nil {
		logger.ErrorWithErr(ctx, "Findings serialization failed", err)
		return
	}
	text := truncate(string(content), maxFindingsChars)
	if _, err := p.long.Upsert(ctx, []types.EvidenceRecord{{
		Text: text,
		Meta: types.EvidenceMeta{Source: types.SourceAnalysis},
	}}); err != nil {
		logger.ErrorWithErr(ctx, "Findings upsert failed", err)
	}
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

// entitySnippets collects retrieved texts attributable to one entity for
// the textual scoring component.
func entitySnippets(entity string, records []types.EvidenceRecord) []string {
	lowered := strings.ToLower(entity)
	var out []string
	for _, rec := range records {
		if rec.Meta.Entity == entity || strings.Contains(strings.ToLower(rec.Text), lowered) {
			out = append(out, rec.Text)
		}
	}
	return out
}

// report renders the final brief and owns Report.
func (p *Pipeline) report(_ context.Context, s State) (State, error) {
	s.Report = report.Build(s.Findings, s.Retrieved.Records)
	return s, nil
}

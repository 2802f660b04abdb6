package report

import (
	"fmt"
	"sort"
	"strings"

	"deal-radar/internal/types"
)

const (
	maxDealLines     = 6
	maxHeadlineLines = 5
)

// Build renders the human-readable brief for one run. Verified deals come
// first; with none, the brief falls back to the strongest headlines so the
// reader still sees what the run looked at.
func Build(f types.Findings, retrieved []types.EvidenceRecord) types.Report {
	lines := dealLines(f.Deals)
	if len(lines) == 0 {
		lines = headlineLines(retrieved)
	}
	if len(lines) == 0 {
		lines = []string{"• No clear deal signals today."}
	}

	summary := strings.Join(lines, "\n")

	var b strings.Builder
	b.WriteString(summary)
	if f.TrendSummary != "" {
		b.WriteString("\n\nTrend: ")
		b.WriteString(f.TrendSummary)
	}
	if section := signalSection(f.SignalScores); section != "" {
		b.WriteString("\n\n")
		b.WriteString(section)
	}

	return types.Report{
		Findings: f,
		Summary:  summary,
		Text:     b.String(),
	}
}

func dealLines(deals []types.DealCandidate) []string {
	var lines []string
	for _, d := range deals {
		if len(lines) >= maxDealLines {
			break
		}
		lines = append(lines, fmt.Sprintf("• %s: %s → %s (%s, %s)",
			titleCase(orDefault(d.Type, "?")),
			orDefault(d.Acquirer, "?"),
			orDefault(d.Target, "?"),
			orDefault(d.Value, "undisclosed"),
			orDefault(d.Status, types.StatusOther)))
	}
	return lines
}

func headlineLines(retrieved []types.EvidenceRecord) []string {
	var lines []string
	for _, rec := range retrieved {
		if len(lines) >= maxHeadlineLines {
			break
		}
		if !newsSourced(rec.Meta.Source) {
			continue
		}
		lines = append(lines, "• "+rec.Text)
	}
	return lines
}

// newsSourced reports whether a record came from a news or filing feed.
// Price snapshots and memory-derived records carry no headline.
func newsSourced(source string) bool {
	switch source {
	case types.SourceYahooNews, types.SourceGoogleNews, types.SourceKafka, types.SourceSEC:
		return true
	}
	return false
}

// signalSection lists entities by score, strongest first, entity id as the
// tiebreaker so output is stable run to run.
func signalSection(scores map[string]types.SignalScore) string {
	if len(scores) == 0 {
		return ""
	}

	ordered := make([]types.SignalScore, 0, len(scores))
	for _, s := range scores {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].TotalScore != ordered[j].TotalScore {
			return ordered[i].TotalScore > ordered[j].TotalScore
		}
		return ordered[i].EntityID < ordered[j].EntityID
	})

	var b strings.Builder
	b.WriteString("Signal scores:")
	for _, s := range ordered {
		b.WriteString(fmt.Sprintf("\n- %s: %.2f", s.EntityID, s.TotalScore))
		if len(s.Explanation) > 0 {
			b.WriteString(" (" + strings.Join(s.Explanation, "; ") + ")")
		}
	}
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

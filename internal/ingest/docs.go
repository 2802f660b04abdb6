package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"deal-radar/internal/types"
)

// dealKeywords flags a document as transaction-relevant at ingestion time.
// Retrieval's in-process mode prefers flagged documents.
var dealKeywords = []string{
	"merger", "acquisition", "acquire", "acquiring", "acquired",
	"buyout", "buy-out", "takeover", "business combination",
	"spac", "special purpose acquisition", "divestiture", "spin-off",
	"strategic transaction", "definitive agreement", "tender offer",
}

func containsDealKeywords(text string) bool {
	text = strings.ToLower(text)
	for _, k := range dealKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// stripHTML flattens markup that scraped headlines occasionally carry.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// BuildDocuments converts raw connector output into evidence records with
// normalized metadata for retrieval. Order: news, filings, then snapshot
// context docs.
func BuildDocuments(news []NewsItem, snapshots map[string]Snapshot, snapshotOrder []string, filings []Filing) []types.EvidenceRecord {
	docs := make([]types.EvidenceRecord, 0, len(news)+len(filings)+len(snapshots))

	for _, n := range news {
		text := stripHTML(n.Title)
		if text == "" {
			continue
		}
		published := n.Published
		if published == 0 {
			published = time.Now().UTC().Unix()
		}
		source := n.Source
		if source == "" {
			source = types.SourceYahooNews
		}
		docs = append(docs, types.EvidenceRecord{
			Text: text,
			Meta: types.EvidenceMeta{
				Source:    source,
				Entity:    n.Entity,
				Publisher: n.Publisher,
				Link:      n.Link,
				Published: published,
				IsDeal:    containsDealKeywords(text),
			},
		})
	}

	for _, f := range filings {
		text := fmt.Sprintf("%s %s: %s", f.Form, f.Date, f.Description)
		docs = append(docs, types.EvidenceRecord{
			Text: text,
			Meta: types.EvidenceMeta{
				Source:     types.SourceSEC,
				Entity:     f.CIK,
				Link:       f.Link,
				IsDeal:     containsDealKeywords(text) || dealForms[f.Form],
				FilingForm: f.Form,
				FilingDate: f.Date,
			},
		})
	}

	for _, entity := range snapshotOrder {
		snap, ok := snapshots[entity]
		if !ok {
			continue
		}
		docs = append(docs, types.EvidenceRecord{
			Text: fmt.Sprintf("%s 5d change: %.2f%%, last: %.2f", entity, snap.Chg5d*100, snap.Last),
			Meta: types.EvidenceMeta{
				Source: types.SourcePriceSnapshot,
				Entity: entity,
			},
		})
	}

	return docs
}

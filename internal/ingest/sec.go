package ingest

import (
	"context"
	"fmt"
	"time"

	"deal-radar/internal/api"
	"deal-radar/internal/logger"
)

// Filing is one simplified EDGAR filing entry.
type Filing struct {
	CIK         string
	Form        string
	Date        string
	Description string
	Link        string
}

// Forms that routinely carry deal announcements. 425 and the merger proxy
// forms are deal-relevant by definition, independent of their text.
var defaultFormFilters = []string{"8-K", "425", "DEFM14A", "SC TO-T", "F-4", "S-4"}

var dealForms = map[string]bool{
	"425": true, "S-4": true, "F-4": true, "DEFM14A": true, "SC TO-T": true,
}

const maxFilings = 50

// SECClient pulls recent filing metadata from the public submissions
// endpoint, no API key required.
type SECClient struct {
	client *api.Client
}

func NewSECClient() *SECClient {
	return &SECClient{
		client: api.NewClient(
			api.WithBaseURL("https://data.sec.gov"),
			api.WithTimeout(10*time.Second),
			api.WithLogging(true),
		),
	}
}

// FetchFilings pulls recent filings per CIK, filtered to deal-relevant
// forms. Per-CIK failures are logged and skipped.
func (s *SECClient) FetchFilings(ctx context.Context, ciks []string) []Filing {
	var items []Filing
	for _, cik := range ciks {
		filings, err := s.fetchCIK(ctx, cik)
		if err != nil {
			logger.Warn(ctx, "SEC fetch failed", "cik", cik, "error", err)
			continue
		}
		items = append(items, filings...)
		if len(items) >= maxFilings {
			items = items[:maxFilings]
			break
		}
	}
	return items
}

func (s *SECClient) fetchCIK(ctx context.Context, cik string) ([]Filing, error) {
	path := fmt.Sprintf("/submissions/CIK%s.json", padCIK(cik))
	req := api.NewRequest("GET", path).WithContext(ctx)
	for k, v := range api.SECHeaders() {
		req.WithHeader(k, v)
	}

	resp, err := s.client.DoWithRetry(req, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Filings struct {
			Recent struct {
				Form                  []string `json:"form"`
				FilingDate            []string `json:"filingDate"`
				PrimaryDocDescription []string `json:"primaryDocDescription"`
			} `json:"recent"`
		} `json:"filings"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(defaultFormFilters))
	for _, f := range defaultFormFilters {
		wanted[f] = true
	}

	recent := body.Filings.Recent
	var out []Filing
	for i, form := range recent.Form {
		if !wanted[form] {
			continue
		}
		desc := ""
		if i < len(recent.PrimaryDocDescription) {
			desc = recent.PrimaryDocDescription[i]
		}
		date := ""
		if i < len(recent.FilingDate) {
			date = recent.FilingDate[i]
		}
		out = append(out, Filing{
			CIK:         cik,
			Form:        form,
			Date:        date,
			Description: desc,
			Link:        fmt.Sprintf("https://www.sec.gov/edgar/browse/?CIK=%s", cik),
		})
	}
	return out, nil
}

// padCIK zero-pads a CIK to the 10 digits the submissions endpoint expects.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

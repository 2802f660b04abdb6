package ingest

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"deal-radar/internal/api"
	"deal-radar/internal/logger"
	"deal-radar/internal/types"
)

// NewsItem is one raw headline before document assembly.
type NewsItem struct {
	Entity    string
	Title     string
	Link      string
	Publisher string
	Published int64
	Source    string
}

// Snapshot is last close plus 5-day change, context only, never a signal
// input.
type Snapshot struct {
	Last  float64
	Chg5d float64
}

// YahooClient pulls headlines and price series from the public Yahoo
// Finance endpoints.
type YahooClient struct {
	client *api.Client
}

func NewYahooClient() *YahooClient {
	return &YahooClient{
		client: api.NewClient(
			api.WithBaseURL("https://query1.finance.yahoo.com"),
			api.WithTimeout(15*time.Second),
			api.WithLogging(true),
		),
	}
}

// FetchNews pulls recent headlines per entity. Per-entity failures are
// logged and skipped so one bad symbol cannot empty the batch.
func (y *YahooClient) FetchNews(ctx context.Context, entities []string, limitPer int) []NewsItem {
	var out []NewsItem
	for _, entity := range entities {
		items, err := y.fetchEntityNews(ctx, entity, limitPer)
		if err != nil {
			logger.Warn(ctx, "News fetch failed", "entity", entity, "error", err)
			continue
		}
		out = append(out, items...)
	}
	return out
}

func (y *YahooClient) fetchEntityNews(ctx context.Context, entity string, limit int) ([]NewsItem, error) {
	path := fmt.Sprintf("/v1/finance/search?q=%s&newsCount=%d&quotesCount=0", url.QueryEscape(entity), limit)
	req := api.NewRequest("GET", path).WithContext(ctx)
	for k, v := range api.YahooFinanceHeaders() {
		req.WithHeader(k, v)
	}

	resp, err := y.client.DoWithRetry(req, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		News []struct {
			Title               string `json:"title"`
			Link                string `json:"link"`
			Publisher           string `json:"publisher"`
			ProviderPublishTime int64  `json:"providerPublishTime"`
		} `json:"news"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}

	items := make([]NewsItem, 0, len(body.News))
	for _, n := range body.News {
		if n.Title == "" {
			continue
		}
		items = append(items, NewsItem{
			Entity:    entity,
			Title:     n.Title,
			Link:      n.Link,
			Publisher: n.Publisher,
			Published: n.ProviderPublishTime,
			Source:    types.SourceYahooNews,
		})
	}
	return items, nil
}

// FetchSnapshots gets last close and 5-day change for context docs.
func (y *YahooClient) FetchSnapshots(ctx context.Context, entities []string) map[string]Snapshot {
	out := make(map[string]Snapshot)
	for _, entity := range entities {
		closes, _, err := y.fetchChart(ctx, entity, "7d")
		if err != nil || len(closes) == 0 {
			if err != nil {
				logger.Warn(ctx, "Snapshot fetch failed", "entity", entity, "error", err)
			}
			continue
		}
		last := closes[len(closes)-1]
		chg5d := 0.0
		if len(closes) > 1 && closes[0] != 0 {
			chg5d = last/closes[0] - 1.0
		}
		out[entity] = Snapshot{Last: last, Chg5d: chg5d}
	}
	return out
}

// FetchHistory pulls the close/volume series feeding the signal engine.
// Three months of dailies comfortably clears the 30-observation guard.
func (y *YahooClient) FetchHistory(ctx context.Context, entities []string) map[string]types.MarketHistory {
	out := make(map[string]types.MarketHistory)
	for _, entity := range entities {
		closes, volumes, err := y.fetchChart(ctx, entity, "3mo")
		if err != nil {
			logger.Warn(ctx, "History fetch failed", "entity", entity, "error", err)
			continue
		}
		out[entity] = types.MarketHistory{Close: closes, Volume: volumes}
	}
	return out
}

func (y *YahooClient) fetchChart(ctx context.Context, entity, window string) ([]float64, []float64, error) {
	path := fmt.Sprintf("/v8/finance/chart/%s?range=%s&interval=1d", url.PathEscape(entity), window)
	req := api.NewRequest("GET", path).WithContext(ctx)
	for k, v := range api.YahooFinanceHeaders() {
		req.WithHeader(k, v)
	}

	resp, err := y.client.DoWithRetry(req, nil)
	if err != nil {
		return nil, nil, err
	}

	var body struct {
		Chart struct {
			Result []struct {
				Indicators struct {
					Quote []struct {
						Close  []*float64 `json:"close"`
						Volume []*float64 `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		return nil, nil, err
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil, fmt.Errorf("empty chart for %s", entity)
	}

	quote := body.Chart.Result[0].Indicators.Quote[0]
	var closes, volumes []float64
	for i := range quote.Close {
		// Yahoo nulls out holidays; drop the row so both series stay aligned.
		if quote.Close[i] == nil {
			continue
		}
		closes = append(closes, *quote.Close[i])
		vol := 0.0
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		volumes = append(volumes, vol)
	}
	return closes, volumes, nil
}

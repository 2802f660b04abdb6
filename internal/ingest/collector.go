package ingest

import (
	"context"
	"fmt"

	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
	"deal-radar/internal/retrieval"
	"deal-radar/internal/store"
	"deal-radar/internal/types"
)

// Collector runs the ingestion pass: pull raw items from every configured
// connector, assemble and deduplicate evidence documents, persist them to
// long-term memory, and leave a short-term note behind.
type Collector struct {
	yahoo      *YahooClient
	sec        *SECClient
	scraper    *Scraper
	long       interfaces.LongTermMemory
	short      interfaces.ShortTermMemory
	offline    bool
	googleNews bool
}

// CollectorOption configures the collector.
type CollectorOption func(*Collector)

// WithLongTerm attaches the long-term memory documents are upserted into.
func WithLongTerm(long interfaces.LongTermMemory) CollectorOption {
	return func(c *Collector) { c.long = long }
}

// WithShortTerm attaches the short-term memory the ingestion note goes to.
func WithShortTerm(short interfaces.ShortTermMemory) CollectorOption {
	return func(c *Collector) { c.short = short }
}

// WithOffline switches the collector to the deterministic offline batch.
func WithOffline(offline bool) CollectorOption {
	return func(c *Collector) { c.offline = offline }
}

// WithGoogleNews enables the supplementary Google News scrape.
func WithGoogleNews(enabled bool) CollectorOption {
	return func(c *Collector) { c.googleNews = enabled }
}

func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		yahoo:   NewYahooClient(),
		sec:     NewSECClient(),
		scraper: NewScraper(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect performs one ingestion pass. Connector failures degrade to a
// smaller batch; Collect itself only reports what it gathered.
func (c *Collector) Collect(ctx context.Context, rc store.RunConfig) ([]types.EvidenceRecord, types.RawSummary) {
	timer := logger.StartOperation(ctx, "ingestion",
		"entities", len(rc.Entities),
		"offline", c.offline)
	ctx = timer.GetContext()

	var (
		news      []NewsItem
		snapshots map[string]Snapshot
		history   map[string]types.MarketHistory
		filings   []Filing
	)

	if c.offline {
		news, snapshots, history = offlineBatch(rc.Entities)
	} else {
		news = c.yahoo.FetchNews(ctx, rc.Entities, rc.NewsLimit)
		snapshots = c.yahoo.FetchSnapshots(ctx, rc.Entities)
		history = c.yahoo.FetchHistory(ctx, rc.Entities)
		if rc.UseFilings && len(rc.FilingIDs) > 0 {
			filings = c.sec.FetchFilings(ctx, rc.FilingIDs)
		}
		if c.googleNews {
			for _, entity := range rc.Entities {
				extra, err := c.scraper.ScrapeGoogleNews(ctx, entity, rc.NewsLimit)
				if err != nil {
					logger.Warn(ctx, "Google News scrape failed", "entity", entity, "error", err)
					continue
				}
				news = append(news, extra...)
			}
		}
	}

	docs := retrieval.Dedup(BuildDocuments(news, snapshots, rc.Entities, filings))

	if c.long != nil && len(docs) > 0 {
		if added, err := c.long.Upsert(ctx, docs); err != nil {
			logger.ErrorWithErr(ctx, "Long-term upsert failed", err, "docs", len(docs))
		} else {
			logger.Debug(ctx, "Long-term memory updated", "added", added)
		}
	}

	if c.short != nil {
		c.short.Add(ctx, fmt.Sprintf("Ingested %d docs (news=%d, sec=%d)", len(docs), len(news), len(filings)))
	}

	timer.End("docs", len(docs), "news", len(news), "filings", len(filings))

	return docs, types.RawSummary{
		Entities:      rc.Entities,
		NewsCount:     len(news),
		FilingCount:   len(filings),
		MarketHistory: history,
	}
}

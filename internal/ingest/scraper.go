package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"deal-radar/internal/logger"
	"deal-radar/internal/types"
)

// Scraper pulls supplementary headlines from Google News. It is a breadth
// source on top of the Yahoo connector, not a replacement.
type Scraper struct {
	timeout time.Duration
}

func NewScraper(timeout time.Duration) *Scraper {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{timeout: timeout}
}

// ScrapeGoogleNews searches Google News for deal coverage of one entity.
func (s *Scraper) ScrapeGoogleNews(ctx context.Context, entity string, maxArticles int) ([]NewsItem, error) {
	items := []NewsItem{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)

	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(items) >= maxArticles {
			return
		}

		title := e.ChildText("h3, h4")
		link := e.ChildAttr("a", "href")

		if title != "" && link != "" {
			// Clean up Google News redirect URL
			if strings.HasPrefix(link, "./articles/") {
				link = "https://news.google.com" + link[1:]
			}

			items = append(items, NewsItem{
				Entity:    entity,
				Title:     title,
				Link:      link,
				Publisher: "GoogleNews",
				Source:    types.SourceGoogleNews,
			})
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "url", r.Request.URL.String())
	})

	searchQuery := url.QueryEscape(entity + " merger acquisition deal")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en", searchQuery)

	err := c.Visit(searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}

	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "entity", entity, "articles", len(items))
	return items, nil
}

// Package news fetches company headlines from RSS feeds. The Yahoo
// Finance feed is built in; additional feeds can be configured as URL
// templates with a %s verb for the ticker.
package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/fundalens/internal/infra"
	"github.com/seenimoa/fundalens/pkg/models"
	"github.com/seenimoa/fundalens/pkg/utils"
)

const (
	cacheTTL     = 10 * time.Minute
	DefaultLimit = 10
)

// Source is one RSS feed. FeedURL is a template with a single %s verb
// that receives the (Yahoo-form) ticker.
type Source struct {
	Name    string
	FeedURL string
}

// DefaultSources returns the built-in feed list.
func DefaultSources() []Source {
	return []Source{
		{
			Name:    "Yahoo Finance",
			FeedURL: "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
		},
	}
}

// CustomSources labels raw feed URL templates by their host so configured
// feeds show a readable source name in reports.
func CustomSources(templates []string) []Source {
	sources := make([]Source, 0, len(templates))
	for _, tpl := range templates {
		name := "custom"
		if u, err := url.Parse(fmt.Sprintf(tpl, "X")); err == nil && u.Host != "" {
			name = u.Host
		}
		sources = append(sources, Source{Name: name, FeedURL: tpl})
	}
	return sources
}

// Client fetches and normalizes headlines across one or more feeds.
type Client struct {
	sources []Source
	parser  *gofeed.Parser
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewClient creates a news client. With no sources it uses the defaults.
func NewClient(sources ...Source) *Client {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = infra.DefaultUserAgent
	return &Client{
		sources: sources,
		parser:  parser,
		cache:   infra.NewCache(cacheTTL),
		limiter: infra.NewRateLimiter(2, time.Second),
	}
}

// Headlines fetches up to limit articles about ticker, newest first.
// A feed that fails is skipped as long as another one delivered; the
// error is returned only when every source failed.
func (c *Client) Headlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	symbol := utils.ToYahooTicker(ticker)

	var articles []models.NewsArticle
	var errs []error
	for _, src := range c.sources {
		batch, err := c.fetchFeed(ctx, src, symbol)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		articles = append(articles, batch...)
	}
	if len(articles) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, errors.Join(errs...))
	}

	return Merge(limit, articles), nil
}

func (c *Client) fetchFeed(ctx context.Context, src Source, symbol string) ([]models.NewsArticle, error) {
	feedURL := fmt.Sprintf(src.FeedURL, url.QueryEscape(symbol))

	cacheKey := "news:" + src.Name + ":" + symbol
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		article := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			article.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, article)
	}

	c.cache.Set(cacheKey, articles)
	return articles, nil
}

// Merge combines article batches, drops duplicate URLs, orders newest
// first, and trims to limit (<= 0 means no trim).
func Merge(limit int, batches ...[]models.NewsArticle) []models.NewsArticle {
	var merged []models.NewsArticle
	seen := make(map[string]bool)
	for _, batch := range batches {
		for _, a := range batch {
			if a.URL != "" && seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			merged = append(merged, a)
		}
	}
	sortByDate(merged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// sortByDate orders articles newest first, keeping arrival order for
// equal timestamps.
func sortByDate(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

// cleanHTML strips markup from feed summaries, which arrive as HTML
// fragments on most feeds.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

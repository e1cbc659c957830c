// Package yahoo implements the Yahoo Finance data provider.
// Yahoo serves annual statements and company profiles through the
// unofficial quoteSummary API, quotes through the v8 chart API, and
// company headlines through its RSS feed. No API key is required, which
// makes it the usual fallback when a keyed provider is throttled.
//
// All numeric fields arrive as {"raw": N, "fmt": "..."} objects; fields
// Yahoo has no data for come back as {} and are kept as nil rather than 0.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/seenimoa/fundalens/internal/infra"
	"github.com/seenimoa/fundalens/internal/news"
	"github.com/seenimoa/fundalens/internal/provider"
)

const (
	providerName    = "yahoo"
	defaultAPIBase  = "https://query1.finance.yahoo.com"
	defaultFeedBase = "https://feeds.finance.yahoo.com"

	// Feed URL template; %s is the Yahoo-form ticker.
	feedPath = "/rss/2.0/headline?s=%s&region=US&lang=en-US"
)

// Statements and profiles change rarely; quotes do not. The limiter stays
// well under what the unofficial endpoints tolerate.
const (
	statementCacheTTL = 24 * time.Hour
	quoteCacheTTL     = time.Minute
	rateBurst         = 8
	rateWindow        = 10 * time.Second
)

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	apiBase string
}

// New creates a Yahoo Finance provider against the public endpoints.
func New() *Provider {
	return NewWithBaseURLs(defaultAPIBase, defaultFeedBase)
}

// NewWithBaseURLs creates a Yahoo Finance provider against custom API and
// RSS hosts. Used in tests.
func NewWithBaseURLs(apiBase, feedBase string) *Provider {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if feedBase == "" {
		feedBase = defaultFeedBase
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - fundamentals, quotes, and headlines, no key required",
			"https://finance.yahoo.com",
			nil,
		),
		apiBase: apiBase,
	}

	// Fundamentals
	p.RegisterFetcher(newIncomeStatementFetcher(apiBase))
	p.RegisterFetcher(newBalanceSheetFetcher(apiBase))
	p.RegisterFetcher(newCashFlowFetcher(apiBase))

	// Market
	p.RegisterFetcher(newOverviewFetcher(apiBase))
	p.RegisterFetcher(newQuoteFetcher(apiBase))

	// Headlines
	p.RegisterFetcher(newNewsFetcher(news.Source{
		Name:    "Yahoo Finance",
		FeedURL: feedBase + feedPath,
	}))

	return p
}

// Ping checks connectivity with a minimal chart request.
func (p *Provider) Ping(ctx context.Context) error {
	var env yfChartEnvelope
	if err := fetchYFJSON(ctx, chartURL(p.apiBase, "AAPL"), &env); err != nil {
		return fmt.Errorf("yahoo ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

func quoteSummaryURL(base, symbol, modules string) string {
	return fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", base, url.PathEscape(symbol), modules)
}

func chartURL(base, symbol string) string {
	return fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", base, url.PathEscape(symbol))
}

// fetchYFJSON performs a GET request and decodes the envelope. Yahoo
// signals rate limiting with HTTP 429, which maps to provider.ErrThrottled
// so the registry can fall back.
func fetchYFJSON(ctx context.Context, rawURL string, dest any) error {
	body, _, err := infra.DoGet(ctx, rawURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		var httpErr *infra.ErrHTTP
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
			return &provider.ErrThrottled{Provider: providerName, Notice: httpErr.Body}
		}
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse Yahoo JSON: %w", err)
	}
	return nil
}

// quoteSummaryResult unwraps the envelope, surfacing Yahoo's embedded
// error object for unknown symbols.
func quoteSummaryResult(env *yfQuoteSummaryEnvelope, symbol string) (*yfQuoteSummaryResult, error) {
	if e := env.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo quoteSummary %s: empty result", symbol)
	}
	return &env.QuoteSummary.Result[0], nil
}

func chartMeta(env *yfChartEnvelope, symbol string) (*yfChartMeta, error) {
	if e := env.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(env.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: empty result", symbol)
	}
	return &env.Chart.Result[0].Meta, nil
}

// newResult creates a FetchResult.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a cached FetchResult.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}

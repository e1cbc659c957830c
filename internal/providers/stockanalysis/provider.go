// Package stockanalysis implements the stockanalysis.com data provider.
// The site publishes annual statement tables as plain HTML, which makes it
// a keyless last resort behind the API-based providers. Only the three
// financial statements are supported; quotes, profiles, and news come from
// elsewhere.
//
// Table values are presented in a page-level unit (millions of USD unless
// the page says otherwise) with the usual display quirks: thousands
// separators, parenthesised negatives, %/K/M/B/T suffixes, and "-" or
// em-dash placeholders for missing cells. The parser normalizes all of
// them; missing stays nil.
package stockanalysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/fundalens/internal/infra"
	"github.com/seenimoa/fundalens/internal/provider"
)

const (
	providerName   = "stockanalysis"
	defaultBaseURL = "https://stockanalysis.com"
)

// Statement pages under /stocks/{ticker}/.
const (
	pageIncome   = "financials/"
	pageBalance  = "financials/balance-sheet/"
	pageCashFlow = "financials/cash-flow-statement/"
)

// Scraping stays deliberately slow: one page per second, cached for a day.
const (
	statementCacheTTL = 24 * time.Hour
	rateBurst         = 1
	rateWindow        = time.Second
)

// Provider implements provider.Provider for stockanalysis.com.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a stockanalysis.com provider against the public site.
func New() *Provider {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL creates a stockanalysis.com provider against a custom
// host. Used in tests.
func NewWithBaseURL(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"stockanalysis.com - scraped annual statements, no key required",
			"https://stockanalysis.com",
			nil,
		),
		baseURL: baseURL,
	}

	p.RegisterFetcher(newIncomeStatementFetcher(baseURL))
	p.RegisterFetcher(newBalanceSheetFetcher(baseURL))
	p.RegisterFetcher(newCashFlowFetcher(baseURL))

	return p
}

// Ping checks that the site is reachable.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, p.baseURL+"/stocks/", htmlHeaders())
	if err != nil {
		return fmt.Errorf("stockanalysis ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func htmlHeaders() map[string]string {
	return map[string]string{"Accept": "text/html"}
}

func statementsURL(baseURL, symbol, page string) string {
	return fmt.Sprintf("%s/stocks/%s/%s", baseURL, url.PathEscape(symbol), page)
}

// fetchStatementsTable downloads one statements page and parses its table.
// HTTP 429 maps to provider.ErrThrottled so the registry can fall back.
func fetchStatementsTable(ctx context.Context, baseURL, symbol, page string) (*saTable, error) {
	body, _, err := infra.DoGet(ctx, statementsURL(baseURL, symbol, page), htmlHeaders())
	if err != nil {
		var httpErr *infra.ErrHTTP
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
			return nil, &provider.ErrThrottled{Provider: providerName, Notice: httpErr.Body}
		}
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse stockanalysis HTML: %w", err)
	}
	return parseStatementsTable(doc, symbol)
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

package alphavantage

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/fundalens/internal/provider"
)

// --- CompanyOverview fetcher ---

type overviewFetcher struct {
	provider.BaseFetcher
}

func newOverviewFetcher() *overviewFetcher {
	return &overviewFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyOverview,
			"Company overview (beta, market cap, shares) from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
	}
}

func (f *overviewFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avOverview
	if err := fetchAVJSON(ctx, params[paramInjectedBase], "OVERVIEW", symbol, params[paramInjectedKey], &resp); err != nil {
		return nil, fmt.Errorf("alphavantage overview %s: %w", symbol, err)
	}
	// An unknown symbol yields an empty object rather than an error field.
	if resp.Symbol == "" {
		return nil, fmt.Errorf("alphavantage overview %s: no data returned", symbol)
	}

	overview := resp.toModel()
	f.CacheSetTTL(cacheKey, overview, statementCacheTTL)
	return newResult(overview), nil
}

// --- EquityQuote fetcher ---

type quoteFetcher struct {
	provider.BaseFetcher
}

func newQuoteFetcher() *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Delayed global quote from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			time.Minute, rateBurst, rateWindow,
		),
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avQuoteResponse
	if err := fetchAVJSON(ctx, params[paramInjectedBase], "GLOBAL_QUOTE", symbol, params[paramInjectedKey], &resp); err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, err)
	}
	if resp.GlobalQuote.Symbol == "" {
		return nil, fmt.Errorf("alphavantage quote %s: no data returned", symbol)
	}

	quote := resp.GlobalQuote.toModel()
	f.CacheSetTTL(cacheKey, quote, time.Minute)
	return newResult(quote), nil
}

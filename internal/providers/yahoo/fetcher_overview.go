package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/pkg/models"
	"github.com/seenimoa/fundalens/pkg/utils"
)

// overviewModules are the quoteSummary modules that together cover a
// company profile: descriptive fields, key statistics, and market data.
const overviewModules = "summaryProfile,defaultKeyStatistics,summaryDetail,price"

// --- CompanyOverview fetcher ---

type overviewFetcher struct {
	provider.BaseFetcher
	apiBase string
}

func newOverviewFetcher(apiBase string) *overviewFetcher {
	return &overviewFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyOverview,
			"Company profile and key statistics from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
		apiBase: apiBase,
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

	var env yfQuoteSummaryEnvelope
	u := quoteSummaryURL(f.apiBase, utils.ToYahooTicker(symbol), overviewModules)
	if err := fetchYFJSON(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("yahoo overview %s: %w", symbol, err)
	}
	res, err := quoteSummaryResult(&env, symbol)
	if err != nil {
		return nil, err
	}

	overview := overviewFromResult(symbol, res)
	f.CacheSetTTL(cacheKey, overview, statementCacheTTL)
	return newResult(overview), nil
}

func overviewFromResult(symbol string, res *yfQuoteSummaryResult) *models.CompanyOverview {
	o := &models.CompanyOverview{Ticker: symbol}

	if p := res.Price; p != nil {
		o.Name = p.LongName
		if o.Name == "" {
			o.Name = p.ShortName
		}
		o.Exchange = p.ExchangeName
		o.Currency = p.Currency
		o.MarketCap = p.MarketCap.val()
	}
	if sp := res.SummaryProfile; sp != nil {
		o.Sector = sp.Sector
		o.Industry = sp.Industry
		o.Country = sp.Country
		o.Description = sp.LongBusinessSummary
	}
	if ks := res.DefaultKeyStatistics; ks != nil {
		o.SharesOutstanding = ks.raw("sharesOutstanding")
		o.BookValuePerShare = ks.raw("bookValue")
		o.LatestQuarter = ks.fmtOf("mostRecentQuarter")
	}
	if sd := res.SummaryDetail; sd != nil {
		o.Beta = sd.raw("beta")
		o.DividendPerShare = sd.raw("dividendRate")
		o.WeekHigh52 = sd.raw("fiftyTwoWeekHigh")
		o.WeekLow52 = sd.raw("fiftyTwoWeekLow")
		if o.MarketCap == nil {
			o.MarketCap = sd.raw("marketCap")
		}
	}
	if o.Beta == nil && res.DefaultKeyStatistics != nil {
		o.Beta = res.DefaultKeyStatistics.raw("beta")
	}
	return o
}

// --- EquityQuote fetcher ---

type quoteFetcher struct {
	provider.BaseFetcher
	apiBase string
}

func newQuoteFetcher(apiBase string) *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Delayed quote from the Yahoo Finance chart API",
			[]string{provider.ParamSymbol},
			nil,
			quoteCacheTTL, rateBurst, rateWindow,
		),
		apiBase: apiBase,
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

	var env yfChartEnvelope
	if err := fetchYFJSON(ctx, chartURL(f.apiBase, utils.ToYahooTicker(symbol)), &env); err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	meta, err := chartMeta(&env, symbol)
	if err != nil {
		return nil, err
	}

	quote := quoteFromMeta(symbol, meta)
	f.CacheSetTTL(cacheKey, quote, quoteCacheTTL)
	return newResult(quote), nil
}

// quoteFromMeta builds a quote from chart metadata. The chart API reports
// no change fields, so change and percent change are derived from the
// previous close when both sides are present.
func quoteFromMeta(symbol string, meta *yfChartMeta) *models.EquityQuote {
	q := &models.EquityQuote{
		Ticker: symbol,
		Price:  clonePtr(meta.RegularMarketPrice),
		High:   clonePtr(meta.RegularMarketDayHigh),
		Low:    clonePtr(meta.RegularMarketDayLow),
		Volume: clonePtr(meta.RegularMarketVolume),
	}
	prev := meta.ChartPreviousClose
	if prev == nil {
		prev = meta.PreviousClose
	}
	q.PrevClose = clonePtr(prev)

	if q.Price != nil && q.PrevClose != nil && *q.PrevClose != 0 {
		change := *q.Price - *q.PrevClose
		pct := change / *q.PrevClose * 100
		q.Change = &change
		q.ChangePct = &pct
	}
	if meta.RegularMarketTime > 0 {
		q.LatestTradingDay = utils.FormatDate(time.Unix(meta.RegularMarketTime, 0))
	}
	return q
}

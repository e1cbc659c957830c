package alphavantage

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/pkg/models"
)

// Annual statements change once a fiscal year; cache them generously and
// stay inside the free tier's 5 requests/minute.
const (
	statementCacheTTL = 24 * time.Hour
	rateBurst         = 5
	rateWindow        = 12 * time.Second
)

// --- IncomeStatement fetcher ---

type incomeStatementFetcher struct {
	provider.BaseFetcher
}

func newIncomeStatementFetcher() *incomeStatementFetcher {
	return &incomeStatementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelIncomeStatement,
			"Annual income statements from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
	}
}

func (f *incomeStatementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avIncomeResponse
	if err := fetchAVJSON(ctx, params[paramInjectedBase], "INCOME_STATEMENT", symbol, params[paramInjectedKey], &resp); err != nil {
		return nil, fmt.Errorf("alphavantage income statement %s: %w", symbol, err)
	}

	stmts := make([]*models.IncomeStatement, 0, len(resp.AnnualReports))
	for _, r := range resp.AnnualReports {
		stmts = append(stmts, r.toModel())
	}

	f.CacheSetTTL(cacheKey, stmts, statementCacheTTL)
	return newResult(stmts), nil
}

// --- BalanceSheet fetcher ---

type balanceSheetFetcher struct {
	provider.BaseFetcher
}

func newBalanceSheetFetcher() *balanceSheetFetcher {
	return &balanceSheetFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelBalanceSheet,
			"Annual balance sheets from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
	}
}

func (f *balanceSheetFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avBalanceResponse
	if err := fetchAVJSON(ctx, params[paramInjectedBase], "BALANCE_SHEET", symbol, params[paramInjectedKey], &resp); err != nil {
		return nil, fmt.Errorf("alphavantage balance sheet %s: %w", symbol, err)
	}

	sheets := make([]*models.BalanceSheet, 0, len(resp.AnnualReports))
	for _, r := range resp.AnnualReports {
		sheets = append(sheets, r.toModel())
	}

	f.CacheSetTTL(cacheKey, sheets, statementCacheTTL)
	return newResult(sheets), nil
}

// --- CashFlowStatement fetcher ---

type cashFlowFetcher struct {
	provider.BaseFetcher
}

func newCashFlowFetcher() *cashFlowFetcher {
	return &cashFlowFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCashFlowStatement,
			"Annual cash flow statements from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
	}
}

func (f *cashFlowFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp avCashFlowResponse
	if err := fetchAVJSON(ctx, params[paramInjectedBase], "CASH_FLOW", symbol, params[paramInjectedKey], &resp); err != nil {
		return nil, fmt.Errorf("alphavantage cash flow %s: %w", symbol, err)
	}

	flows := make([]*models.CashFlowStatement, 0, len(resp.AnnualReports))
	for _, r := range resp.AnnualReports {
		flows = append(flows, r.toModel())
	}

	f.CacheSetTTL(cacheKey, flows, statementCacheTTL)
	return newResult(flows), nil
}

package yahoo

import (
	"context"
	"fmt"

	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/pkg/models"
	"github.com/seenimoa/fundalens/pkg/utils"
)

// --- IncomeStatement fetcher ---

type incomeStatementFetcher struct {
	provider.BaseFetcher
	apiBase string
}

func newIncomeStatementFetcher(apiBase string) *incomeStatementFetcher {
	return &incomeStatementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelIncomeStatement,
			"Annual income statements from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
		apiBase: apiBase,
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

	var env yfQuoteSummaryEnvelope
	u := quoteSummaryURL(f.apiBase, utils.ToYahooTicker(symbol), "incomeStatementHistory")
	if err := fetchYFJSON(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("yahoo income statement %s: %w", symbol, err)
	}
	res, err := quoteSummaryResult(&env, symbol)
	if err != nil {
		return nil, err
	}
	if res.IncomeStatementHistory == nil {
		return nil, fmt.Errorf("yahoo income statement %s: module missing from response", symbol)
	}

	stmts := make([]*models.IncomeStatement, 0, len(res.IncomeStatementHistory.Statements))
	for _, entry := range res.IncomeStatementHistory.Statements {
		stmts = append(stmts, incomeFromFields(entry))
	}

	f.CacheSetTTL(cacheKey, stmts, statementCacheTTL)
	return newResult(stmts), nil
}

func incomeFromFields(entry yfFields) *models.IncomeStatement {
	end := entry.endDate()
	return &models.IncomeStatement{
		FiscalYear:       utils.FiscalYearOf(end),
		FiscalDateEnding: end,
		Revenue:          entry.raw("totalRevenue"),
		CostOfRevenue:    entry.raw("costOfRevenue"),
		GrossProfit:      entry.raw("grossProfit"),
		OperatingIncome:  entry.raw("operatingIncome"),
		OperatingExpense: entry.raw("totalOperatingExpenses"),
		InterestExpense:  entry.raw("interestExpense"),
		IncomeBeforeTax:  entry.raw("incomeBeforeTax"),
		IncomeTaxExpense: entry.raw("incomeTaxExpense"),
		EBITDA:           entry.raw("ebitda"),
		NetIncome:        entry.raw("netIncome"),
	}
}

// --- BalanceSheet fetcher ---

type balanceSheetFetcher struct {
	provider.BaseFetcher
	apiBase string
}

func newBalanceSheetFetcher(apiBase string) *balanceSheetFetcher {
	return &balanceSheetFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelBalanceSheet,
			"Annual balance sheets from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
		apiBase: apiBase,
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

	var env yfQuoteSummaryEnvelope
	u := quoteSummaryURL(f.apiBase, utils.ToYahooTicker(symbol), "balanceSheetHistory")
	if err := fetchYFJSON(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("yahoo balance sheet %s: %w", symbol, err)
	}
	res, err := quoteSummaryResult(&env, symbol)
	if err != nil {
		return nil, err
	}
	if res.BalanceSheetHistory == nil {
		return nil, fmt.Errorf("yahoo balance sheet %s: module missing from response", symbol)
	}

	sheets := make([]*models.BalanceSheet, 0, len(res.BalanceSheetHistory.Statements))
	for _, entry := range res.BalanceSheetHistory.Statements {
		sheets = append(sheets, balanceFromFields(entry))
	}

	f.CacheSetTTL(cacheKey, sheets, statementCacheTTL)
	return newResult(sheets), nil
}

func balanceFromFields(entry yfFields) *models.BalanceSheet {
	end := entry.endDate()
	return &models.BalanceSheet{
		FiscalYear:         utils.FiscalYearOf(end),
		FiscalDateEnding:   end,
		TotalAssets:        entry.raw("totalAssets"),
		CurrentAssets:      entry.raw("totalCurrentAssets"),
		Cash:               entry.raw("cash"),
		Inventory:          entry.raw("inventory"),
		TotalLiabilities:   entry.raw("totalLiab"),
		CurrentLiabilities: entry.raw("totalCurrentLiabilities"),
		ShortTermDebt:      entry.raw("shortLongTermDebt"),
		LongTermDebt:       entry.raw("longTermDebt"),
		TotalEquity:        entry.raw("totalStockholderEquity"),
		RetainedEarnings:   entry.raw("retainedEarnings"),
		CommonStock:        entry.raw("commonStock"),
		// Share counts come from defaultKeyStatistics, not the balance
		// sheet module.
		SharesOutstanding: nil,
	}
}

// --- CashFlowStatement fetcher ---

type cashFlowFetcher struct {
	provider.BaseFetcher
	apiBase string
}

func newCashFlowFetcher(apiBase string) *cashFlowFetcher {
	return &cashFlowFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCashFlowStatement,
			"Annual cash flow statements from Yahoo Finance",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
		apiBase: apiBase,
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

	var env yfQuoteSummaryEnvelope
	u := quoteSummaryURL(f.apiBase, utils.ToYahooTicker(symbol), "cashflowStatementHistory")
	if err := fetchYFJSON(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("yahoo cash flow %s: %w", symbol, err)
	}
	res, err := quoteSummaryResult(&env, symbol)
	if err != nil {
		return nil, err
	}
	if res.CashflowStatementHistory == nil {
		return nil, fmt.Errorf("yahoo cash flow %s: module missing from response", symbol)
	}

	flows := make([]*models.CashFlowStatement, 0, len(res.CashflowStatementHistory.Statements))
	for _, entry := range res.CashflowStatementHistory.Statements {
		flows = append(flows, cashFlowFromFields(entry))
	}

	f.CacheSetTTL(cacheKey, flows, statementCacheTTL)
	return newResult(flows), nil
}

// Yahoo reports capex and dividends as negative outflows; the models keep
// the provider's sign and normalize at the point of use.
func cashFlowFromFields(entry yfFields) *models.CashFlowStatement {
	end := entry.endDate()
	return &models.CashFlowStatement{
		FiscalYear:          utils.FiscalYearOf(end),
		FiscalDateEnding:    end,
		OperatingCashFlow:   entry.raw("totalCashFromOperatingActivities"),
		CapitalExpenditures: entry.raw("capitalExpenditures"),
		DividendPayout:      entry.raw("dividendsPaid"),
		NetIncome:           entry.raw("netIncome"),
	}
}

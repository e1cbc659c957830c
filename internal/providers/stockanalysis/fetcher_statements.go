package stockanalysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/pkg/models"
)

// --- IncomeStatement fetcher ---

type incomeStatementFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newIncomeStatementFetcher(baseURL string) *incomeStatementFetcher {
	return &incomeStatementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelIncomeStatement,
			"Annual income statements scraped from stockanalysis.com",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
		baseURL: baseURL,
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

	table, err := fetchStatementsTable(ctx, f.baseURL, symbol, pageIncome)
	if err != nil {
		return nil, fmt.Errorf("stockanalysis income statement %s: %w", symbol, err)
	}

	stmts := incomeFromTable(table)
	f.CacheSetTTL(cacheKey, stmts, statementCacheTTL)
	return newResult(stmts), nil
}

func incomeFromTable(t *saTable) []*models.IncomeStatement {
	cols := t.yearColumns()
	stmts := make([]*models.IncomeStatement, len(cols))
	for i, col := range cols {
		stmts[i] = &models.IncomeStatement{FiscalYear: t.years[col], Currency: "USD"}
	}
	for _, row := range t.rows {
		assign := incomeField(row.label)
		if assign == nil {
			continue
		}
		for i, col := range cols {
			if col < len(row.cells) {
				assign(stmts[i], row.cells[col])
			}
		}
	}
	return stmts
}

// incomeField maps a row label to its statement field, nil for rows the
// model does not carry. Specific phrases come before generic ones: "Cost
// of Revenue" would otherwise be swallowed by "Revenue".
func incomeField(label string) func(*models.IncomeStatement, *float64) {
	switch {
	case skipRow(label):
		return nil
	case strings.Contains(label, "Cost of Revenue"):
		return func(s *models.IncomeStatement, v *float64) { s.CostOfRevenue = v }
	case strings.Contains(label, "Revenue"):
		return func(s *models.IncomeStatement, v *float64) { s.Revenue = v }
	case strings.Contains(label, "Gross Profit"):
		return func(s *models.IncomeStatement, v *float64) { s.GrossProfit = v }
	case strings.Contains(label, "Operating Expenses"):
		return func(s *models.IncomeStatement, v *float64) { s.OperatingExpense = v }
	case strings.Contains(label, "Operating Income"):
		return func(s *models.IncomeStatement, v *float64) { s.OperatingIncome = v }
	case strings.Contains(label, "Interest Expense"):
		return func(s *models.IncomeStatement, v *float64) { s.InterestExpense = v }
	case strings.Contains(label, "Pretax Income"):
		return func(s *models.IncomeStatement, v *float64) { s.IncomeBeforeTax = v }
	case strings.Contains(label, "Income Tax"):
		return func(s *models.IncomeStatement, v *float64) { s.IncomeTaxExpense = v }
	case strings.Contains(label, "EBITDA"):
		return func(s *models.IncomeStatement, v *float64) { s.EBITDA = v }
	case strings.Contains(label, "Net Income"):
		return func(s *models.IncomeStatement, v *float64) { s.NetIncome = v }
	default:
		return nil
	}
}

// --- BalanceSheet fetcher ---

type balanceSheetFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newBalanceSheetFetcher(baseURL string) *balanceSheetFetcher {
	return &balanceSheetFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelBalanceSheet,
			"Annual balance sheets scraped from stockanalysis.com",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
		baseURL: baseURL,
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

	table, err := fetchStatementsTable(ctx, f.baseURL, symbol, pageBalance)
	if err != nil {
		return nil, fmt.Errorf("stockanalysis balance sheet %s: %w", symbol, err)
	}

	sheets := balanceFromTable(table)
	f.CacheSetTTL(cacheKey, sheets, statementCacheTTL)
	return newResult(sheets), nil
}

func balanceFromTable(t *saTable) []*models.BalanceSheet {
	cols := t.yearColumns()
	sheets := make([]*models.BalanceSheet, len(cols))
	for i, col := range cols {
		sheets[i] = &models.BalanceSheet{FiscalYear: t.years[col], Currency: "USD"}
	}
	for _, row := range t.rows {
		assign := balanceField(row.label)
		if assign == nil {
			continue
		}
		for i, col := range cols {
			if col < len(row.cells) {
				assign(sheets[i], row.cells[col])
			}
		}
	}
	return sheets
}

func balanceField(label string) func(*models.BalanceSheet, *float64) {
	switch {
	case skipRow(label):
		return nil
	case strings.Contains(label, "Total Current Assets"):
		return func(s *models.BalanceSheet, v *float64) { s.CurrentAssets = v }
	case strings.Contains(label, "Total Assets"):
		return func(s *models.BalanceSheet, v *float64) { s.TotalAssets = v }
	case strings.Contains(label, "Equivalents") && !strings.Contains(label, "Short"):
		return func(s *models.BalanceSheet, v *float64) { s.Cash = v }
	case strings.Contains(label, "Inventory"):
		return func(s *models.BalanceSheet, v *float64) { s.Inventory = v }
	case strings.Contains(label, "Total Current Liabilities"):
		return func(s *models.BalanceSheet, v *float64) { s.CurrentLiabilities = v }
	case strings.Contains(label, "Total Liabilities"):
		return func(s *models.BalanceSheet, v *float64) { s.TotalLiabilities = v }
	case strings.Contains(label, "Current Debt"), strings.Contains(label, "Short-Term Debt"):
		return func(s *models.BalanceSheet, v *float64) { s.ShortTermDebt = v }
	case strings.Contains(label, "Long-Term Debt"):
		return func(s *models.BalanceSheet, v *float64) { s.LongTermDebt = v }
	case strings.Contains(label, "Common Stock"):
		return func(s *models.BalanceSheet, v *float64) { s.CommonStock = v }
	case strings.Contains(label, "Retained Earnings"):
		return func(s *models.BalanceSheet, v *float64) { s.RetainedEarnings = v }
	case strings.Contains(label, "Equity"):
		return func(s *models.BalanceSheet, v *float64) { s.TotalEquity = v }
	default:
		return nil
	}
}

// --- CashFlowStatement fetcher ---

type cashFlowFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newCashFlowFetcher(baseURL string) *cashFlowFetcher {
	return &cashFlowFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCashFlowStatement,
			"Annual cash flow statements scraped from stockanalysis.com",
			[]string{provider.ParamSymbol},
			nil,
			statementCacheTTL, rateBurst, rateWindow,
		),
		baseURL: baseURL,
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

	table, err := fetchStatementsTable(ctx, f.baseURL, symbol, pageCashFlow)
	if err != nil {
		return nil, fmt.Errorf("stockanalysis cash flow %s: %w", symbol, err)
	}

	flows := cashFlowFromTable(table)
	f.CacheSetTTL(cacheKey, flows, statementCacheTTL)
	return newResult(flows), nil
}

func cashFlowFromTable(t *saTable) []*models.CashFlowStatement {
	cols := t.yearColumns()
	flows := make([]*models.CashFlowStatement, len(cols))
	for i, col := range cols {
		flows[i] = &models.CashFlowStatement{FiscalYear: t.years[col], Currency: "USD"}
	}
	for _, row := range t.rows {
		assign := cashFlowField(row.label)
		if assign == nil {
			continue
		}
		for i, col := range cols {
			if col < len(row.cells) {
				assign(flows[i], row.cells[col])
			}
		}
	}
	return flows
}

func cashFlowField(label string) func(*models.CashFlowStatement, *float64) {
	switch {
	case skipRow(label):
		return nil
	case strings.Contains(label, "Operating Cash Flow"):
		return func(s *models.CashFlowStatement, v *float64) { s.OperatingCashFlow = v }
	case strings.Contains(label, "Capital Expenditures"):
		return func(s *models.CashFlowStatement, v *float64) { s.CapitalExpenditures = v }
	case strings.Contains(label, "Dividends Paid"):
		return func(s *models.CashFlowStatement, v *float64) { s.DividendPayout = v }
	case strings.Contains(label, "Net Income"):
		return func(s *models.CashFlowStatement, v *float64) { s.NetIncome = v }
	default:
		return nil
	}
}

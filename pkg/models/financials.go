// Package models defines the core data structures used throughout fundalens.
package models

import "sort"

// Statement numeric fields are pointers throughout this package: nil means
// the provider did not report the field, which is distinct from a reported
// zero. Calculators must treat nil as "undefined", never as 0.

// IncomeStatement is one fiscal year of income statement data.
type IncomeStatement struct {
	FiscalYear       int      `json:"fiscal_year"`                  // e.g., 2024
	FiscalDateEnding string   `json:"fiscal_date_ending,omitempty"` // e.g., "2024-09-28"
	Currency         string   `json:"currency,omitempty"`
	Revenue          *float64 `json:"revenue"`
	CostOfRevenue    *float64 `json:"cost_of_revenue"`
	GrossProfit      *float64 `json:"gross_profit"`
	OperatingIncome  *float64 `json:"operating_income"`
	OperatingExpense *float64 `json:"operating_expense"`
	InterestExpense  *float64 `json:"interest_expense"`
	IncomeBeforeTax  *float64 `json:"income_before_tax"`
	IncomeTaxExpense *float64 `json:"income_tax_expense"`
	EBITDA           *float64 `json:"ebitda"`
	NetIncome        *float64 `json:"net_income"`
}

// BalanceSheet is one fiscal year-end balance sheet.
type BalanceSheet struct {
	FiscalYear         int      `json:"fiscal_year"`
	FiscalDateEnding   string   `json:"fiscal_date_ending,omitempty"`
	Currency           string   `json:"currency,omitempty"`
	TotalAssets        *float64 `json:"total_assets"`
	CurrentAssets      *float64 `json:"current_assets"`
	Cash               *float64 `json:"cash"` // cash and equivalents
	Inventory          *float64 `json:"inventory"`
	TotalLiabilities   *float64 `json:"total_liabilities"`
	CurrentLiabilities *float64 `json:"current_liabilities"`
	ShortTermDebt      *float64 `json:"short_term_debt"`
	LongTermDebt       *float64 `json:"long_term_debt"`
	TotalEquity        *float64 `json:"total_equity"`
	RetainedEarnings   *float64 `json:"retained_earnings"`
	CommonStock        *float64 `json:"common_stock"`
	SharesOutstanding  *float64 `json:"shares_outstanding"`
}

// TotalDebt sums long- and short-term debt. A missing component counts as
// zero only when the other is present; nil when both are missing.
func (b *BalanceSheet) TotalDebt() *float64 {
	if b.LongTermDebt == nil && b.ShortTermDebt == nil {
		return nil
	}
	var total float64
	if b.LongTermDebt != nil {
		total += *b.LongTermDebt
	}
	if b.ShortTermDebt != nil {
		total += *b.ShortTermDebt
	}
	return &total
}

// NetDebt is total debt minus cash. Nil when debt is unknown; missing cash
// counts as zero.
func (b *BalanceSheet) NetDebt() *float64 {
	debt := b.TotalDebt()
	if debt == nil {
		return nil
	}
	net := *debt
	if b.Cash != nil {
		net -= *b.Cash
	}
	return &net
}

// CashFlowStatement is one fiscal year of cash flow data.
type CashFlowStatement struct {
	FiscalYear          int      `json:"fiscal_year"`
	FiscalDateEnding    string   `json:"fiscal_date_ending,omitempty"`
	Currency            string   `json:"currency,omitempty"`
	OperatingCashFlow   *float64 `json:"operating_cash_flow"`
	CapitalExpenditures *float64 `json:"capital_expenditures"`
	DividendPayout      *float64 `json:"dividend_payout"`
	NetIncome           *float64 `json:"net_income"`
}

// FreeCashFlow is operating cash flow minus the magnitude of capital
// expenditures. Providers disagree on the sign of capex, so the absolute
// value is subtracted either way. Nil when either input is missing.
func (c *CashFlowStatement) FreeCashFlow() *float64 {
	if c.OperatingCashFlow == nil || c.CapitalExpenditures == nil {
		return nil
	}
	capex := *c.CapitalExpenditures
	if capex < 0 {
		capex = -capex
	}
	fcf := *c.OperatingCashFlow - capex
	return &fcf
}

// FinancialHistory holds the annual statement series for one ticker,
// each ordered most-recent-first.
type FinancialHistory struct {
	Ticker   string               `json:"ticker"`
	Income   []*IncomeStatement   `json:"income"`
	Balance  []*BalanceSheet      `json:"balance"`
	CashFlow []*CashFlowStatement `json:"cash_flow"`
}

// Sort orders all three series most-recent-first by fiscal year.
func (h *FinancialHistory) Sort() {
	sort.Slice(h.Income, func(i, j int) bool { return h.Income[i].FiscalYear > h.Income[j].FiscalYear })
	sort.Slice(h.Balance, func(i, j int) bool { return h.Balance[i].FiscalYear > h.Balance[j].FiscalYear })
	sort.Slice(h.CashFlow, func(i, j int) bool { return h.CashFlow[i].FiscalYear > h.CashFlow[j].FiscalYear })
}

// AlignedYears returns the fiscal years for which all three statements are
// present, most-recent-first, truncated at the first gap between consecutive
// years. Records behind a gap are unusable for year-over-year comparisons.
func (h *FinancialHistory) AlignedYears() []int {
	if len(h.Income) == 0 || len(h.Balance) == 0 || len(h.CashFlow) == 0 {
		return nil
	}
	present := make(map[int]int) // year -> statement count
	for _, s := range h.Income {
		present[s.FiscalYear] |= 1
	}
	for _, s := range h.Balance {
		present[s.FiscalYear] |= 2
	}
	for _, s := range h.CashFlow {
		present[s.FiscalYear] |= 4
	}
	var years []int
	for y, mask := range present {
		if mask == 7 {
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return truncateAtGap(years)
}

// ContiguousIncome returns the most-recent-first run of income statements
// with consecutive fiscal years, stopping at the first gap.
func (h *FinancialHistory) ContiguousIncome() []*IncomeStatement {
	years := make([]int, len(h.Income))
	byYear := make(map[int]*IncomeStatement, len(h.Income))
	for i, s := range h.Income {
		years[i] = s.FiscalYear
		byYear[s.FiscalYear] = s
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	years = truncateAtGap(years)
	out := make([]*IncomeStatement, 0, len(years))
	for _, y := range years {
		out = append(out, byYear[y])
	}
	return out
}

// IncomeFor returns the income statement for a fiscal year.
func (h *FinancialHistory) IncomeFor(year int) (*IncomeStatement, bool) {
	for _, s := range h.Income {
		if s.FiscalYear == year {
			return s, true
		}
	}
	return nil, false
}

// BalanceFor returns the balance sheet for a fiscal year.
func (h *FinancialHistory) BalanceFor(year int) (*BalanceSheet, bool) {
	for _, s := range h.Balance {
		if s.FiscalYear == year {
			return s, true
		}
	}
	return nil, false
}

// CashFlowFor returns the cash flow statement for a fiscal year.
func (h *FinancialHistory) CashFlowFor(year int) (*CashFlowStatement, bool) {
	for _, s := range h.CashFlow {
		if s.FiscalYear == year {
			return s, true
		}
	}
	return nil, false
}

// LatestIncome returns the most recent income statement, or nil.
func (h *FinancialHistory) LatestIncome() *IncomeStatement {
	if len(h.Income) == 0 {
		return nil
	}
	return h.Income[0]
}

// LatestBalance returns the most recent balance sheet, or nil.
func (h *FinancialHistory) LatestBalance() *BalanceSheet {
	if len(h.Balance) == 0 {
		return nil
	}
	return h.Balance[0]
}

// LatestCashFlow returns the most recent cash flow statement, or nil.
func (h *FinancialHistory) LatestCashFlow() *CashFlowStatement {
	if len(h.CashFlow) == 0 {
		return nil
	}
	return h.CashFlow[0]
}

// truncateAtGap keeps the leading run of strictly consecutive descending
// years: [2024 2023 2021] -> [2024 2023].
func truncateAtGap(years []int) []int {
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]-1 {
			return years[:i]
		}
	}
	return years
}

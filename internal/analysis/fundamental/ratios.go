// Package fundamental implements fundamental analysis calculations:
// valuation ratios, the Piotroski F-Score, historical growth rates,
// CAPM cost of equity, and discounted cash flow valuation.
//
// All calculators are pure functions over statement models. A metric whose
// inputs are missing or whose denominator is non-positive is nil in the
// result, never zero. Structural absences (no statements at all, too few
// years) surface as typed errors from this package.
package fundamental

import (
	"github.com/seenimoa/fundalens/pkg/models"
)

// ComputeRatios derives valuation and health ratios from the most recent
// income statement, balance sheet, and market snapshot. Any of the three
// inputs may be nil; each ratio is computed only when its own inputs are
// present and valid. At least one statement must be supplied.
func ComputeRatios(income *models.IncomeStatement, balance *models.BalanceSheet, snap *models.MarketSnapshot) (*models.RatioSet, error) {
	if income == nil && balance == nil {
		return nil, &ErrMissingData{Field: "annual statements", Context: "ratio calculation"}
	}

	rs := &models.RatioSet{}
	if income != nil {
		rs.FiscalYear = income.FiscalYear
	} else {
		rs.FiscalYear = balance.FiscalYear
	}

	var price *float64
	if snap != nil && snap.Price != nil && *snap.Price > 0 {
		price = snap.Price
	}
	shares := sharesOutstanding(snap, balance)

	var netIncome, revenue *float64
	if income != nil {
		netIncome = income.NetIncome
		revenue = income.Revenue
	}

	if netIncome != nil && shares != nil {
		rs.EPS = ptr(*netIncome / *shares)
	}
	// P/E is undefined for loss-making companies.
	if price != nil && rs.EPS != nil && *rs.EPS > 0 {
		rs.PE = ptr(*price / *rs.EPS)
	}

	if balance != nil && balance.TotalEquity != nil {
		equity := *balance.TotalEquity

		if shares != nil {
			rs.BookValue = ptr(equity / *shares)
		}
		if price != nil && rs.BookValue != nil && *rs.BookValue > 0 {
			rs.PB = ptr(*price / *rs.BookValue)
		}
		if netIncome != nil && equity > 0 {
			rs.ROE = ptr(*netIncome / equity)
		}
		if debt := balance.TotalDebt(); debt != nil && equity != 0 {
			rs.DebtEquity = ptr(*debt / equity)
		}
	}

	if revenue != nil && *revenue > 0 {
		if price != nil && shares != nil {
			rs.PS = ptr(*price * *shares / *revenue)
		}
		if netIncome != nil {
			rs.NetMargin = ptr(*netIncome / *revenue)
		}
	}

	if snap != nil && snap.DividendPerShare != nil && price != nil {
		rs.DividendYield = ptr(*snap.DividendPerShare / *price)
	}

	if balance != nil && balance.CurrentAssets != nil && balance.CurrentLiabilities != nil && *balance.CurrentLiabilities > 0 {
		rs.CurrentRatio = ptr(*balance.CurrentAssets / *balance.CurrentLiabilities)
	}

	return rs, nil
}

// sharesOutstanding prefers the live share count from the market snapshot
// and falls back to the balance sheet figure.
func sharesOutstanding(snap *models.MarketSnapshot, balance *models.BalanceSheet) *float64 {
	if snap != nil && snap.SharesOutstanding != nil && *snap.SharesOutstanding > 0 {
		return snap.SharesOutstanding
	}
	if balance != nil && balance.SharesOutstanding != nil && *balance.SharesOutstanding > 0 {
		return balance.SharesOutstanding
	}
	return nil
}

func ptr(v float64) *float64 { return &v }

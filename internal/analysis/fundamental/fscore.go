package fundamental

import (
	"fmt"

	"github.com/seenimoa/fundalens/pkg/models"
	"github.com/seenimoa/fundalens/pkg/utils"
)

// Piotroski check names, in scoring order.
const (
	CheckPositiveEarnings   = "positive net income"
	CheckPositiveCashFlow   = "positive operating cash flow"
	CheckImprovingROA       = "improving return on assets"
	CheckEarningsQuality    = "cash flow exceeds net income"
	CheckLowerLeverage      = "declining long-term leverage"
	CheckImprovingLiquidity = "improving current ratio"
	CheckNoDilution         = "no share dilution"
	CheckImprovingMargin    = "improving gross margin"
	CheckImprovingTurnover  = "improving asset turnover"
)

// PiotroskiFScore grades fundamental strength on the 9-point Piotroski
// scorecard using the two most recent aligned statement years. A test whose
// inputs are unavailable scores zero and says so in its detail, so a sparse
// filing lowers the score instead of aborting it. Returns
// ErrInsufficientHistory when fewer than two aligned years exist.
func PiotroskiFScore(h *models.FinancialHistory) (*models.FScore, error) {
	years := h.AlignedYears()
	if len(years) < 2 {
		return nil, &ErrInsufficientHistory{Need: 2, Have: len(years), Data: "aligned annual statements"}
	}
	curYear, prevYear := years[0], years[1]

	curInc, _ := h.IncomeFor(curYear)
	prevInc, _ := h.IncomeFor(prevYear)
	curBS, _ := h.BalanceFor(curYear)
	prevBS, _ := h.BalanceFor(prevYear)
	curCF, _ := h.CashFlowFor(curYear)

	fs := &models.FScore{YearsUsed: [2]int{curYear, prevYear}}
	add := func(name string, passed bool, detail string) {
		fs.Checks = append(fs.Checks, models.FScoreCheck{Name: name, Passed: passed, Detail: detail})
		if passed {
			fs.Score++
		}
	}
	// compare records a year-over-year test, failing closed when either
	// side is unavailable.
	compare := func(name string, cur, prev *float64, pass func(c, p float64) bool, label string) {
		if cur == nil || prev == nil {
			add(name, false, label+" unavailable")
			return
		}
		add(name, pass(*cur, *prev), fmt.Sprintf("%s %.4f vs %.4f", label, *cur, *prev))
	}

	// Profitability.
	if curInc.NetIncome == nil {
		add(CheckPositiveEarnings, false, "net income unavailable")
	} else {
		add(CheckPositiveEarnings, *curInc.NetIncome > 0, "net income "+utils.FormatUSDCompact(*curInc.NetIncome))
	}

	if curCF.OperatingCashFlow == nil {
		add(CheckPositiveCashFlow, false, "operating cash flow unavailable")
	} else {
		add(CheckPositiveCashFlow, *curCF.OperatingCashFlow > 0, "operating cash flow "+utils.FormatUSDCompact(*curCF.OperatingCashFlow))
	}

	compare(CheckImprovingROA, returnOnAssets(curInc, curBS), returnOnAssets(prevInc, prevBS),
		func(c, p float64) bool { return c > p }, "ROA")

	if curCF.OperatingCashFlow == nil || curInc.NetIncome == nil {
		add(CheckEarningsQuality, false, "operating cash flow or net income unavailable")
	} else {
		add(CheckEarningsQuality, *curCF.OperatingCashFlow > *curInc.NetIncome,
			fmt.Sprintf("operating cash flow %s vs net income %s",
				utils.FormatUSDCompact(*curCF.OperatingCashFlow), utils.FormatUSDCompact(*curInc.NetIncome)))
	}

	// Leverage, liquidity, dilution.
	compare(CheckLowerLeverage, longTermDebtRatio(curBS), longTermDebtRatio(prevBS),
		func(c, p float64) bool { return c < p }, "LTD/assets")

	compare(CheckImprovingLiquidity, workingCapitalRatio(curBS), workingCapitalRatio(prevBS),
		func(c, p float64) bool { return c > p }, "current ratio")

	curShares, prevShares := dilutionShares(curBS, prevBS)
	if curShares == nil || prevShares == nil {
		add(CheckNoDilution, false, "share count unavailable")
	} else {
		add(CheckNoDilution, *curShares <= *prevShares,
			fmt.Sprintf("shares %s vs %s", utils.FormatShares(*curShares), utils.FormatShares(*prevShares)))
	}

	// Operating efficiency.
	compare(CheckImprovingMargin, grossMargin(curInc), grossMargin(prevInc),
		func(c, p float64) bool { return c > p }, "gross margin")

	compare(CheckImprovingTurnover, assetTurnover(curInc, curBS), assetTurnover(prevInc, prevBS),
		func(c, p float64) bool { return c > p }, "asset turnover")

	return fs, nil
}

// returnOnAssets is net income over end-of-year total assets, so the score
// works with two reported years instead of three.
func returnOnAssets(inc *models.IncomeStatement, bs *models.BalanceSheet) *float64 {
	if inc.NetIncome == nil || bs.TotalAssets == nil || *bs.TotalAssets <= 0 {
		return nil
	}
	return ptr(*inc.NetIncome / *bs.TotalAssets)
}

func longTermDebtRatio(bs *models.BalanceSheet) *float64 {
	if bs.LongTermDebt == nil || bs.TotalAssets == nil || *bs.TotalAssets <= 0 {
		return nil
	}
	return ptr(*bs.LongTermDebt / *bs.TotalAssets)
}

func workingCapitalRatio(bs *models.BalanceSheet) *float64 {
	if bs.CurrentAssets == nil || bs.CurrentLiabilities == nil || *bs.CurrentLiabilities <= 0 {
		return nil
	}
	return ptr(*bs.CurrentAssets / *bs.CurrentLiabilities)
}

// dilutionShares picks a share-count series present in both years,
// preferring shares outstanding over the common stock line.
func dilutionShares(cur, prev *models.BalanceSheet) (*float64, *float64) {
	if cur.SharesOutstanding != nil && prev.SharesOutstanding != nil {
		return cur.SharesOutstanding, prev.SharesOutstanding
	}
	if cur.CommonStock != nil && prev.CommonStock != nil {
		return cur.CommonStock, prev.CommonStock
	}
	return nil, nil
}

func grossMargin(inc *models.IncomeStatement) *float64 {
	if inc.Revenue == nil || *inc.Revenue <= 0 {
		return nil
	}
	gross := inc.GrossProfit
	if gross == nil && inc.CostOfRevenue != nil {
		gross = ptr(*inc.Revenue - *inc.CostOfRevenue)
	}
	if gross == nil {
		return nil
	}
	return ptr(*gross / *inc.Revenue)
}

func assetTurnover(inc *models.IncomeStatement, bs *models.BalanceSheet) *float64 {
	if inc.Revenue == nil || bs.TotalAssets == nil || *bs.TotalAssets <= 0 {
		return nil
	}
	return ptr(*inc.Revenue / *bs.TotalAssets)
}

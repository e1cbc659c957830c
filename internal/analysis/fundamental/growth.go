package fundamental

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/fundalens/pkg/models"
)

// DefaultMaxGrowthYears bounds the CAGR lookback window.
const DefaultMaxGrowthYears = 5

// ComputeGrowth estimates revenue and net income CAGR over the contiguous
// income-statement window, capped at maxYears elapsed fiscal years. Each
// series is undefined (nil) when its base value is non-positive or it has
// fewer than two reported points; the call fails only when the history
// itself is too short. Year-over-year mean and dispersion accompany the
// CAGR when at least two consecutive growth observations exist.
func ComputeGrowth(h *models.FinancialHistory, maxYears int) (*models.GrowthRates, error) {
	if maxYears <= 0 {
		maxYears = DefaultMaxGrowthYears
	}
	run := h.ContiguousIncome()
	if len(run) < 2 {
		return nil, &ErrUndefinedGrowth{
			Series: "income history",
			Reason: fmt.Sprintf("need at least 2 contiguous fiscal years, have %d", len(run)),
		}
	}
	// maxYears elapsed years means maxYears+1 records.
	if len(run) > maxYears+1 {
		run = run[:maxYears+1]
	}

	gr := &models.GrowthRates{YearsSpanned: run[0].FiscalYear - run[len(run)-1].FiscalYear}

	revenue := func(is *models.IncomeStatement) *float64 { return is.Revenue }
	earnings := func(is *models.IncomeStatement) *float64 { return is.NetIncome }

	gr.RevenueCAGR = seriesCAGR(run, revenue)
	gr.NetIncomeCAGR = seriesCAGR(run, earnings)
	gr.RevenueYoYMean, gr.RevenueYoYStdDev = yoyStats(run, revenue)
	gr.EarningsYoYMean, gr.EarningsYoYStdDev = yoyStats(run, earnings)

	return gr, nil
}

// seriesCAGR compounds between the newest and oldest reported values in the
// window: (end/start)^(1/years) - 1. Undefined when either endpoint is
// missing or non-positive, or when fewer than two reported years remain.
func seriesCAGR(run []*models.IncomeStatement, field func(*models.IncomeStatement) *float64) *float64 {
	newest, oldest := -1, -1
	for i, is := range run {
		if field(is) == nil {
			continue
		}
		if newest == -1 {
			newest = i
		}
		oldest = i
	}
	if newest == -1 || oldest == newest {
		return nil
	}
	years := run[newest].FiscalYear - run[oldest].FiscalYear
	if years < 1 {
		return nil
	}
	start, end := *field(run[oldest]), *field(run[newest])
	if start <= 0 || end <= 0 {
		return nil
	}
	return ptr(math.Pow(end/start, 1/float64(years)) - 1)
}

// yoyStats summarizes consecutive year-over-year growth observations.
// Sample standard deviation needs two observations, so windows with fewer
// report neither statistic.
func yoyStats(run []*models.IncomeStatement, field func(*models.IncomeStatement) *float64) (mean, stdev *float64) {
	var rates []float64
	for i := 0; i < len(run)-1; i++ {
		newer, older := field(run[i]), field(run[i+1])
		if newer == nil || older == nil || *older <= 0 {
			continue
		}
		rates = append(rates, (*newer / *older)-1)
	}
	if len(rates) < 2 {
		return nil, nil
	}
	return ptr(stat.Mean(rates, nil)), ptr(stat.StdDev(rates, nil))
}

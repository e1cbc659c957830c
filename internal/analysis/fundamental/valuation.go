package fundamental

import (
	"fmt"
	"math"

	"github.com/seenimoa/fundalens/pkg/models"
)

// DefaultProjectionYears is the explicit DCF forecast horizon.
const DefaultProjectionYears = 5

// DCFInput parameterizes a discounted cash flow run. The growth and
// discount rates arrive already resolved; their Source strings record
// whether they came from historical CAGR / CAPM or from fallbacks.
type DCFInput struct {
	BaseFCF        float64
	GrowthRate     float64
	GrowthSource   string
	DiscountRate   float64
	DiscountSource string
	TerminalGrowth float64
	Years          int

	// Optional balance sheet and market context for the equity bridge.
	NetDebt           *float64
	SharesOutstanding *float64
	CurrentPrice      *float64
}

// BaseFreeCashFlow resolves the starting cash flow for a DCF projection:
// operating cash flow minus the magnitude of capital expenditures. Either
// field being absent is an ErrMissingData.
func BaseFreeCashFlow(cf *models.CashFlowStatement) (float64, error) {
	if cf == nil {
		return 0, &ErrMissingData{Field: "cash flow statement", Context: "valuation"}
	}
	if cf.OperatingCashFlow == nil {
		return 0, &ErrMissingData{Field: "operating_cash_flow", Context: fmt.Sprintf("cash flow statement FY%d", cf.FiscalYear)}
	}
	if cf.CapitalExpenditures == nil {
		return 0, &ErrMissingData{Field: "capital_expenditures", Context: fmt.Sprintf("cash flow statement FY%d", cf.FiscalYear)}
	}
	return *cf.FreeCashFlow(), nil
}

// RunDCF projects free cash flow over the horizon, adds a Gordon-growth
// terminal value, and bridges enterprise value to an intrinsic per-share
// value. Terminal growth must stay strictly below the discount rate.
// A missing net debt figure or an unusable share count degrades the result
// (recorded in Notes) rather than failing the run.
func RunDCF(in DCFInput) (*models.DCFValuation, error) {
	years := in.Years
	if years <= 0 {
		years = DefaultProjectionYears
	}
	if in.TerminalGrowth >= in.DiscountRate {
		return nil, &ErrInvalidTerminalGrowth{Terminal: in.TerminalGrowth, Discount: in.DiscountRate}
	}

	v := &models.DCFValuation{
		BaseFCF:        in.BaseFCF,
		GrowthRate:     in.GrowthRate,
		GrowthSource:   in.GrowthSource,
		DiscountRate:   in.DiscountRate,
		DiscountSource: in.DiscountSource,
		TerminalGrowth: in.TerminalGrowth,
		ProjectedFCF:   make([]float64, years),
		PresentValues:  make([]float64, years),
	}

	var discounted float64
	for i := 1; i <= years; i++ {
		fcf := in.BaseFCF * math.Pow(1+in.GrowthRate, float64(i))
		pv := fcf / math.Pow(1+in.DiscountRate, float64(i))
		v.ProjectedFCF[i-1] = fcf
		v.PresentValues[i-1] = pv
		discounted += pv
	}

	final := v.ProjectedFCF[years-1]
	v.TerminalValue = final * (1 + in.TerminalGrowth) / (in.DiscountRate - in.TerminalGrowth)
	v.TerminalPV = v.TerminalValue / math.Pow(1+in.DiscountRate, float64(years))
	v.EnterpriseValue = discounted + v.TerminalPV

	v.EquityValue = v.EnterpriseValue
	if in.NetDebt != nil {
		v.NetDebt = in.NetDebt
		v.EquityValue = v.EnterpriseValue - *in.NetDebt
	} else {
		v.Notes = append(v.Notes, "net debt unknown; equity value equals enterprise value")
	}

	switch {
	case in.SharesOutstanding == nil:
		v.Notes = append(v.Notes, "shares outstanding unavailable; per-share value undefined")
	case *in.SharesOutstanding <= 0:
		v.SharesOutstanding = in.SharesOutstanding
		v.Notes = append(v.Notes, (&ErrDivisionByZero{Denominator: "shares outstanding"}).Error()+"; per-share value undefined")
	default:
		v.SharesOutstanding = in.SharesOutstanding
		v.IntrinsicPerShare = ptr(v.EquityValue / *in.SharesOutstanding)
		if in.CurrentPrice != nil && *in.CurrentPrice > 0 {
			v.UpsidePct = ptr((*v.IntrinsicPerShare - *in.CurrentPrice) / *in.CurrentPrice)
		}
	}

	return v, nil
}

package fundamental

import "github.com/seenimoa/fundalens/pkg/models"

// CAPMInput carries capital asset pricing model parameters. Rates are
// fractional, so 0.04 means 4%.
type CAPMInput struct {
	RiskFreeRate float64
	MarketReturn float64
	Beta         *float64
}

// EstimateCostOfEquity applies CAPM: k_e = Rf + beta * (Rm - Rf).
// Fails with ErrMissingData when the company's beta is unknown.
func EstimateCostOfEquity(in CAPMInput) (*models.DiscountRate, error) {
	if in.Beta == nil {
		return nil, &ErrMissingData{Field: "beta", Context: "company overview"}
	}
	return &models.DiscountRate{
		CostOfEquity: in.RiskFreeRate + *in.Beta*(in.MarketReturn-in.RiskFreeRate),
		RiskFreeRate: in.RiskFreeRate,
		MarketReturn: in.MarketReturn,
		Beta:         *in.Beta,
	}, nil
}

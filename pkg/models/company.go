package models

// CompanyOverview describes a company and its point-in-time market
// statistics, as reported by a provider's profile/overview endpoint.
type CompanyOverview struct {
	Ticker            string   `json:"ticker"`
	Name              string   `json:"name,omitempty"`
	Exchange          string   `json:"exchange,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	Country           string   `json:"country,omitempty"`
	Sector            string   `json:"sector,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	Description       string   `json:"description,omitempty"`
	FiscalYearEnd     string   `json:"fiscal_year_end,omitempty"` // e.g., "September"
	LatestQuarter     string   `json:"latest_quarter,omitempty"`  // e.g., "2025-06-30"
	MarketCap         *float64 `json:"market_cap"`
	Beta              *float64 `json:"beta"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
	DividendPerShare  *float64 `json:"dividend_per_share"`
	BookValuePerShare *float64 `json:"book_value_per_share"`
	WeekHigh52        *float64 `json:"week_high_52"`
	WeekLow52         *float64 `json:"week_low_52"`
}

// EquityQuote is a point-in-time price quote for one ticker.
type EquityQuote struct {
	Ticker           string   `json:"ticker"`
	Price            *float64 `json:"price"`
	Change           *float64 `json:"change"`
	ChangePct        *float64 `json:"change_pct"`
	Open             *float64 `json:"open"`
	High             *float64 `json:"high"`
	Low              *float64 `json:"low"`
	PrevClose        *float64 `json:"prev_close"`
	Volume           *float64 `json:"volume"`
	LatestTradingDay string   `json:"latest_trading_day,omitempty"` // e.g., "2025-08-22"
}

// MarketSnapshot is the market-side input to the ratio and valuation
// calculators, assembled from the quote and the company overview.
type MarketSnapshot struct {
	Price             *float64 `json:"price"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
	Beta              *float64 `json:"beta"`
	DividendPerShare  *float64 `json:"dividend_per_share"`
}

package models

import "time"

// RatioSet holds single-period valuation and quality ratios. Every value is
// optional: nil means the ratio is undefined for this company (zero or
// negative denominator, or a missing input), which is not the same as 0.
type RatioSet struct {
	PE            *float64 `json:"pe"`             // price / earnings per share
	PB            *float64 `json:"pb"`             // price / book value per share
	PS            *float64 `json:"ps"`             // price / revenue per share
	ROE           *float64 `json:"roe"`            // net income / shareholders' equity
	DebtEquity    *float64 `json:"debt_equity"`    // total debt / shareholders' equity
	NetMargin     *float64 `json:"net_margin"`     // net income / revenue
	DividendYield *float64 `json:"dividend_yield"` // dividend per share / price
	CurrentRatio  *float64 `json:"current_ratio"`  // current assets / current liabilities
	EPS           *float64 `json:"eps"`            // net income / shares outstanding
	BookValue     *float64 `json:"book_value"`     // equity / shares outstanding, per share
	FiscalYear    int      `json:"fiscal_year"`    // statement year the ratios are built on
}

// FScoreCheck is one of the nine Piotroski tests.
type FScoreCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// FScore is a Piotroski F-Score: the sum of nine binary statement tests.
// A test whose inputs are missing counts as failed and says so in Detail.
type FScore struct {
	Score     int           `json:"score"` // 0..9
	Checks    []FScoreCheck `json:"checks"`
	YearsUsed [2]int        `json:"years_used"` // [current, prior]
}

// GrowthRates holds compounded and year-over-year growth estimates. CAGR
// values are fractional rates (0.15 = 15% per year); nil when undefined.
type GrowthRates struct {
	RevenueCAGR       *float64 `json:"revenue_cagr"`
	NetIncomeCAGR     *float64 `json:"net_income_cagr"`
	YearsSpanned      int      `json:"years_spanned"` // elapsed fiscal years, not record count
	RevenueYoYMean    *float64 `json:"revenue_yoy_mean"`
	RevenueYoYStdDev  *float64 `json:"revenue_yoy_stddev"`
	EarningsYoYMean   *float64 `json:"earnings_yoy_mean"`
	EarningsYoYStdDev *float64 `json:"earnings_yoy_stddev"`
}

// DiscountRate is a CAPM cost-of-equity estimate together with its inputs.
// It stands in for WACC: no cost-of-debt term is blended in.
type DiscountRate struct {
	CostOfEquity float64 `json:"cost_of_equity"` // fractional, e.g. 0.10
	RiskFreeRate float64 `json:"risk_free_rate"`
	MarketReturn float64 `json:"market_return"`
	Beta         float64 `json:"beta"`
}

// Input-source labels recorded on a DCFValuation.
const (
	GrowthFromCAGR     = "revenue_cagr"
	GrowthFromFallback = "fallback"
	RateFromCAPM       = "capm"
	RateFromFallback   = "fallback"
)

// DCFValuation is the output of the discounted cash flow model: the
// projected free cash flows, their present values, the terminal value, and
// the resulting per-share intrinsic value estimate.
type DCFValuation struct {
	BaseFCF           float64   `json:"base_fcf"`        // FCF_0, most recent year
	GrowthRate        float64   `json:"growth_rate"`     // g used for projection
	GrowthSource      string    `json:"growth_source"`   // "revenue_cagr" or "fallback"
	DiscountRate      float64   `json:"discount_rate"`   // r
	DiscountSource    string    `json:"discount_source"` // "capm" or "fallback"
	TerminalGrowth    float64   `json:"terminal_growth"`
	ProjectedFCF      []float64 `json:"projected_fcf"`  // FCF_1..FCF_n
	PresentValues     []float64 `json:"present_values"` // PV_1..PV_n
	TerminalValue     float64   `json:"terminal_value"`
	TerminalPV        float64   `json:"terminal_pv"`
	EnterpriseValue   float64   `json:"enterprise_value"`
	NetDebt           *float64  `json:"net_debt"`     // nil: bridge skipped
	EquityValue       float64   `json:"equity_value"` // enterprise value - net debt
	SharesOutstanding *float64  `json:"shares_outstanding"`
	IntrinsicPerShare *float64  `json:"intrinsic_per_share"` // nil: undefined (no shares)
	UpsidePct         *float64  `json:"upside_pct"`          // vs current price, fractional
	Notes             []string  `json:"notes,omitempty"`     // applied fallbacks and skips
}

// Report section identifiers used for error attribution.
const (
	SectionRatios    = "ratios"
	SectionFScore    = "fscore"
	SectionGrowth    = "growth"
	SectionCAPM      = "cost_of_equity"
	SectionValuation = "valuation"
	SectionNews      = "news"
)

// SectionError records why one report section could not be computed.
// Kind carries the calculator error taxonomy ("MissingData",
// "InsufficientHistory", ...) so callers can branch without string matching
// on messages.
type SectionError struct {
	Section string `json:"section"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewsArticle is a single headline related to the analyzed company.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// AnalysisReport is the consolidated output of one analysis run. Sections
// are independent: any of them may be nil with a corresponding entry in
// Errors, and the rest still carry results.
type AnalysisReport struct {
	RunID        string              `json:"run_id"`
	Ticker       string              `json:"ticker"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Company      *CompanyOverview    `json:"company,omitempty"`
	Quote        *EquityQuote        `json:"quote,omitempty"`
	History      *FinancialHistory   `json:"history,omitempty"`
	Ratios       *RatioSet           `json:"ratios,omitempty"`
	FScore       *FScore             `json:"fscore,omitempty"`
	Growth       *GrowthRates        `json:"growth,omitempty"`
	CostOfEquity *DiscountRate       `json:"cost_of_equity,omitempty"`
	Valuation    *DCFValuation       `json:"valuation,omitempty"`
	News         []NewsArticle       `json:"news,omitempty"`
	Errors       []SectionError      `json:"errors,omitempty"`
	Sources      map[string]string   `json:"sources,omitempty"` // model type -> provider
}

// SectionErr returns the recorded error for a section, or nil.
func (r *AnalysisReport) SectionErr(section string) *SectionError {
	for i := range r.Errors {
		if r.Errors[i].Section == section {
			return &r.Errors[i]
		}
	}
	return nil
}

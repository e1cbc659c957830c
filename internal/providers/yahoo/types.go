package yahoo

import "encoding/json"

// yfValue is Yahoo's formatted-number object: {"raw": 391035000000,
// "fmt": "391.04B"}. Values the API knows nothing about arrive as the
// empty object {}, so Raw stays nil and keeps its "not reported" meaning.
type yfValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// UnmarshalJSON tolerates the API's mixed value shapes. Figures arrive as
// raw/fmt objects, but the same maps also carry bare numbers (maxAge),
// strings, and booleans; anything that is not an object decodes to the
// zero yfValue.
func (v *yfValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	type plain yfValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = yfValue(p)
	return nil
}

// val returns a copy of the raw value, or nil when unreported.
func (v yfValue) val() *float64 {
	return clonePtr(v.Raw)
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

// yfFields is one statement entry (or one quoteSummary module) as a field
// map. Keys differ per statement type; values share the raw/fmt shape.
type yfFields map[string]yfValue

// raw returns a copy of the named field's raw value, or nil when the field
// is absent or arrived as the empty object.
func (f yfFields) raw(key string) *float64 {
	v, ok := f[key]
	if !ok || v.Raw == nil {
		return nil
	}
	x := *v.Raw
	return &x
}

// fmtOf returns the formatted string of the named field, "" when absent.
func (f yfFields) fmtOf(key string) string {
	return f[key].Fmt
}

// endDate returns the period end date ("2024-09-28") of a statement entry.
func (f yfFields) endDate() string {
	return f["endDate"].Fmt
}

// yfError is the error object Yahoo embeds in an HTTP 200 envelope for
// unknown symbols and malformed requests.
type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- quoteSummary envelope ---

// The three statement modules each nest their entries under a differently
// named inner key, hence three container types.

type yfIncomeContainer struct {
	Statements []yfFields `json:"incomeStatementHistory"`
}

type yfBalanceContainer struct {
	Statements []yfFields `json:"balanceSheetStatements"`
}

type yfCashflowContainer struct {
	Statements []yfFields `json:"cashflowStatements"`
}

type yfSummaryProfile struct {
	Sector              string `json:"sector"`
	Industry            string `json:"industry"`
	Country             string `json:"country"`
	Website             string `json:"website"`
	LongBusinessSummary string `json:"longBusinessSummary"`
}

type yfPrice struct {
	Symbol       string  `json:"symbol"`
	ShortName    string  `json:"shortName"`
	LongName     string  `json:"longName"`
	Currency     string  `json:"currency"`
	ExchangeName string  `json:"exchangeName"`
	MarketCap    yfValue `json:"marketCap"`
}

type yfQuoteSummaryResult struct {
	IncomeStatementHistory   *yfIncomeContainer   `json:"incomeStatementHistory"`
	BalanceSheetHistory      *yfBalanceContainer  `json:"balanceSheetHistory"`
	CashflowStatementHistory *yfCashflowContainer `json:"cashflowStatementHistory"`

	SummaryProfile       *yfSummaryProfile `json:"summaryProfile"`
	DefaultKeyStatistics yfFields          `json:"defaultKeyStatistics"`
	SummaryDetail        yfFields          `json:"summaryDetail"`
	Price                *yfPrice          `json:"price"`
}

type yfQuoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

// --- chart envelope ---

type yfChartMeta struct {
	Symbol               string   `json:"symbol"`
	Currency             string   `json:"currency"`
	ExchangeName         string   `json:"exchangeName"`
	InstrumentType       string   `json:"instrumentType"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	PreviousClose        *float64 `json:"previousClose"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  *float64 `json:"regularMarketVolume"`
	RegularMarketTime    int64    `json:"regularMarketTime"`
}

type yfChartResult struct {
	Meta yfChartMeta `json:"meta"`
}

type yfChartEnvelope struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

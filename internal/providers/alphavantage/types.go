package alphavantage

import (
	"strconv"
	"strings"

	"github.com/seenimoa/fundalens/pkg/models"
	"github.com/seenimoa/fundalens/pkg/utils"
)

// Alpha Vantage serializes every numeric value as a string and marks
// missing values as "None", "-", or an empty string. avFloat maps those to
// nil instead of zero so downstream calculators can tell "not reported"
// from "reported as 0".
func avFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "none", "-", "N/A":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// avPercent parses values like "1.2345%" into a fraction-free float.
func avPercent(s string) *float64 {
	return avFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

// avEnvelope captures Alpha Vantage's soft error shapes. The API returns
// HTTP 200 with one of these fields instead of a proper status code when a
// request is malformed or the key is over its rate limit.
type avEnvelope struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

type avIncomeResponse struct {
	Symbol        string           `json:"symbol"`
	AnnualReports []avIncomeReport `json:"annualReports"`
}

type avIncomeReport struct {
	FiscalDateEnding  string `json:"fiscalDateEnding"`
	ReportedCurrency  string `json:"reportedCurrency"`
	TotalRevenue      string `json:"totalRevenue"`
	CostOfRevenue     string `json:"costOfRevenue"`
	GrossProfit       string `json:"grossProfit"`
	OperatingIncome   string `json:"operatingIncome"`
	OperatingExpenses string `json:"operatingExpenses"`
	InterestExpense   string `json:"interestExpense"`
	IncomeBeforeTax   string `json:"incomeBeforeTax"`
	IncomeTaxExpense  string `json:"incomeTaxExpense"`
	EBITDA            string `json:"ebitda"`
	NetIncome         string `json:"netIncome"`
}

func (r avIncomeReport) toModel() *models.IncomeStatement {
	return &models.IncomeStatement{
		FiscalYear:       utils.FiscalYearOf(r.FiscalDateEnding),
		FiscalDateEnding: r.FiscalDateEnding,
		Currency:         r.ReportedCurrency,
		Revenue:          avFloat(r.TotalRevenue),
		CostOfRevenue:    avFloat(r.CostOfRevenue),
		GrossProfit:      avFloat(r.GrossProfit),
		OperatingIncome:  avFloat(r.OperatingIncome),
		OperatingExpense: avFloat(r.OperatingExpenses),
		InterestExpense:  avFloat(r.InterestExpense),
		IncomeBeforeTax:  avFloat(r.IncomeBeforeTax),
		IncomeTaxExpense: avFloat(r.IncomeTaxExpense),
		EBITDA:           avFloat(r.EBITDA),
		NetIncome:        avFloat(r.NetIncome),
	}
}

type avBalanceResponse struct {
	Symbol        string            `json:"symbol"`
	AnnualReports []avBalanceReport `json:"annualReports"`
}

type avBalanceReport struct {
	FiscalDateEnding       string `json:"fiscalDateEnding"`
	ReportedCurrency       string `json:"reportedCurrency"`
	TotalAssets            string `json:"totalAssets"`
	TotalCurrentAssets     string `json:"totalCurrentAssets"`
	CashAndCashEquivalents string `json:"cashAndCashEquivalentsAtCarryingValue"`
	Inventory              string `json:"inventory"`
	TotalLiabilities       string `json:"totalLiabilities"`
	TotalCurrentLiab       string `json:"totalCurrentLiabilities"`
	ShortTermDebt          string `json:"shortTermDebt"`
	LongTermDebt           string `json:"longTermDebt"`
	TotalShareholderEquity string `json:"totalShareholderEquity"`
	RetainedEarnings       string `json:"retainedEarnings"`
	CommonStock            string `json:"commonStock"`
	CommonSharesOut        string `json:"commonStockSharesOutstanding"`
}

func (r avBalanceReport) toModel() *models.BalanceSheet {
	return &models.BalanceSheet{
		FiscalYear:         utils.FiscalYearOf(r.FiscalDateEnding),
		FiscalDateEnding:   r.FiscalDateEnding,
		Currency:           r.ReportedCurrency,
		TotalAssets:        avFloat(r.TotalAssets),
		CurrentAssets:      avFloat(r.TotalCurrentAssets),
		Cash:               avFloat(r.CashAndCashEquivalents),
		Inventory:          avFloat(r.Inventory),
		TotalLiabilities:   avFloat(r.TotalLiabilities),
		CurrentLiabilities: avFloat(r.TotalCurrentLiab),
		ShortTermDebt:      avFloat(r.ShortTermDebt),
		LongTermDebt:       avFloat(r.LongTermDebt),
		TotalEquity:        avFloat(r.TotalShareholderEquity),
		RetainedEarnings:   avFloat(r.RetainedEarnings),
		CommonStock:        avFloat(r.CommonStock),
		SharesOutstanding:  avFloat(r.CommonSharesOut),
	}
}

type avCashFlowResponse struct {
	Symbol        string             `json:"symbol"`
	AnnualReports []avCashFlowReport `json:"annualReports"`
}

type avCashFlowReport struct {
	FiscalDateEnding    string `json:"fiscalDateEnding"`
	ReportedCurrency    string `json:"reportedCurrency"`
	OperatingCashflow   string `json:"operatingCashflow"`
	CapitalExpenditures string `json:"capitalExpenditures"`
	DividendPayout      string `json:"dividendPayout"`
	NetIncome           string `json:"netIncome"`
}

func (r avCashFlowReport) toModel() *models.CashFlowStatement {
	return &models.CashFlowStatement{
		FiscalYear:          utils.FiscalYearOf(r.FiscalDateEnding),
		FiscalDateEnding:    r.FiscalDateEnding,
		Currency:            r.ReportedCurrency,
		OperatingCashFlow:   avFloat(r.OperatingCashflow),
		CapitalExpenditures: avFloat(r.CapitalExpenditures),
		DividendPayout:      avFloat(r.DividendPayout),
		NetIncome:           avFloat(r.NetIncome),
	}
}

type avOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Exchange             string `json:"Exchange"`
	Currency             string `json:"Currency"`
	Country              string `json:"Country"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	Description          string `json:"Description"`
	FiscalYearEnd        string `json:"FiscalYearEnd"`
	LatestQuarter        string `json:"LatestQuarter"`
	MarketCapitalization string `json:"MarketCapitalization"`
	Beta                 string `json:"Beta"`
	SharesOutstanding    string `json:"SharesOutstanding"`
	DividendPerShare     string `json:"DividendPerShare"`
	BookValue            string `json:"BookValue"`
	WeekHigh52           string `json:"52WeekHigh"`
	WeekLow52            string `json:"52WeekLow"`
}

func (r avOverview) toModel() *models.CompanyOverview {
	return &models.CompanyOverview{
		Ticker:            r.Symbol,
		Name:              r.Name,
		Exchange:          r.Exchange,
		Currency:          r.Currency,
		Country:           r.Country,
		Sector:            r.Sector,
		Industry:          r.Industry,
		Description:       r.Description,
		FiscalYearEnd:     r.FiscalYearEnd,
		LatestQuarter:     r.LatestQuarter,
		MarketCap:         avFloat(r.MarketCapitalization),
		Beta:              avFloat(r.Beta),
		SharesOutstanding: avFloat(r.SharesOutstanding),
		DividendPerShare:  avFloat(r.DividendPerShare),
		BookValuePerShare: avFloat(r.BookValue),
		WeekHigh52:        avFloat(r.WeekHigh52),
		WeekLow52:         avFloat(r.WeekLow52),
	}
}

type avQuoteResponse struct {
	GlobalQuote avQuote `json:"Global Quote"`
}

type avQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

func (r avQuote) toModel() *models.EquityQuote {
	return &models.EquityQuote{
		Ticker:           r.Symbol,
		Price:            avFloat(r.Price),
		Change:           avFloat(r.Change),
		ChangePct:        avPercent(r.ChangePercent),
		Open:             avFloat(r.Open),
		High:             avFloat(r.High),
		Low:              avFloat(r.Low),
		PrevClose:        avFloat(r.PreviousClose),
		Volume:           avFloat(r.Volume),
		LatestTradingDay: r.LatestTradingDay,
	}
}

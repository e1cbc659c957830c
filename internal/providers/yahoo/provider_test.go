package yahoo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/pkg/models"
)

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()
	if info.Name != "yahoo" {
		t.Errorf("expected name yahoo, got %s", info.Name)
	}
	if info.Website == "" {
		t.Error("expected non-empty website")
	}
	if len(info.Credentials) != 0 {
		t.Errorf("expected no credentials, got %d", len(info.Credentials))
	}
}

func TestProviderSupportedModels(t *testing.T) {
	p := New()
	supported := make(map[provider.ModelType]bool)
	for _, m := range p.SupportedModels() {
		supported[m] = true
	}

	expected := []provider.ModelType{
		provider.ModelIncomeStatement,
		provider.ModelBalanceSheet,
		provider.ModelCashFlowStatement,
		provider.ModelCompanyOverview,
		provider.ModelEquityQuote,
		provider.ModelCompanyNews,
	}
	for _, m := range expected {
		if !supported[m] {
			t.Errorf("missing expected model: %s", m)
		}
	}
	if len(supported) != len(expected) {
		t.Errorf("expected %d models, got %d", len(expected), len(supported))
	}
}

func TestProviderInitNoCredentials(t *testing.T) {
	p := New()
	if err := p.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

// testProvider spins up a stub Yahoo endpoint serving both the API and the
// RSS feed, and returns an initialized provider pointed at it.
func testProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewWithBaseURLs(srv.URL, srv.URL)
	if err := p.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p
}

const incomeBody = `{
  "quoteSummary": {
    "result": [
      {
        "incomeStatementHistory": {
          "incomeStatementHistory": [
            {
              "maxAge": 1,
              "endDate": {"raw": 1727481600, "fmt": "2024-09-28"},
              "totalRevenue": {"raw": 391035000000, "fmt": "391.04B"},
              "costOfRevenue": {"raw": 210352000000, "fmt": "210.35B"},
              "grossProfit": {"raw": 180683000000, "fmt": "180.68B"},
              "operatingIncome": {"raw": 123216000000, "fmt": "123.22B"},
              "totalOperatingExpenses": {"raw": 267819000000, "fmt": "267.82B"},
              "interestExpense": {},
              "incomeBeforeTax": {"raw": 123485000000, "fmt": "123.49B"},
              "incomeTaxExpense": {"raw": 29749000000, "fmt": "29.75B"},
              "netIncome": {"raw": 93736000000, "fmt": "93.74B"}
            },
            {
              "maxAge": 1,
              "endDate": {"raw": 1696032000, "fmt": "2023-09-30"},
              "totalRevenue": {"raw": 383285000000, "fmt": "383.29B"},
              "interestExpense": {"raw": 3933000000, "fmt": "3.93B"},
              "netIncome": {"raw": 96995000000, "fmt": "97.00B"}
            }
          ],
          "maxAge": 86400
        }
      }
    ],
    "error": null
  }
}`

func TestFetchIncomeStatement(t *testing.T) {
	var gotPath, gotModules string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotModules = r.URL.Query().Get("modules")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(incomeBody))
	})

	f := p.Fetcher(provider.ModelIncomeStatement)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/v10/finance/quoteSummary/AAPL" {
		t.Errorf("path = %q, want /v10/finance/quoteSummary/AAPL", gotPath)
	}
	if gotModules != "incomeStatementHistory" {
		t.Errorf("modules param = %q, want incomeStatementHistory", gotModules)
	}

	stmts, ok := res.Data.([]*models.IncomeStatement)
	if !ok {
		t.Fatalf("Data type = %T, want []*models.IncomeStatement", res.Data)
	}
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0].FiscalYear != 2024 {
		t.Errorf("FiscalYear = %d, want 2024", stmts[0].FiscalYear)
	}
	if stmts[0].FiscalDateEnding != "2024-09-28" {
		t.Errorf("FiscalDateEnding = %q, want 2024-09-28", stmts[0].FiscalDateEnding)
	}
	if stmts[0].Revenue == nil || *stmts[0].Revenue != 391035000000 {
		t.Errorf("Revenue = %v, want 391035000000", stmts[0].Revenue)
	}
	// The empty object means unreported and maps to nil, never zero.
	if stmts[0].InterestExpense != nil {
		t.Errorf("InterestExpense = %v, want nil for {}", *stmts[0].InterestExpense)
	}
	// Yahoo's income module carries no EBITDA; an absent key also maps
	// to nil.
	if stmts[0].EBITDA != nil {
		t.Errorf("EBITDA = %v, want nil for absent key", *stmts[0].EBITDA)
	}
	if stmts[1].InterestExpense == nil || *stmts[1].InterestExpense != 3933000000 {
		t.Errorf("2023 InterestExpense = %v, want 3933000000", stmts[1].InterestExpense)
	}
}

func TestTickerConvertedForURL(t *testing.T) {
	var gotPath string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(incomeBody))
	})

	f := p.Fetcher(provider.ModelIncomeStatement)
	if _, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "BRK.B"}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/v10/finance/quoteSummary/BRK-B" {
		t.Errorf("path = %q, want dash-form ticker BRK-B", gotPath)
	}
}

func TestFetchCachesResults(t *testing.T) {
	var hits atomic.Int32
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(incomeBody))
	})

	f := p.Fetcher(provider.ModelIncomeStatement)
	params := provider.QueryParams{provider.ParamSymbol: "AAPL"}

	first, err := f.Fetch(context.Background(), params)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	if first.Cached {
		t.Error("first fetch should not be cached")
	}

	second, err := f.Fetch(context.Background(), params)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if !second.Cached {
		t.Error("second fetch should be cached")
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
}

func TestFetchBalanceSheet(t *testing.T) {
	body := `{
  "quoteSummary": {
    "result": [
      {
        "balanceSheetHistory": {
          "balanceSheetStatements": [
            {
              "maxAge": 1,
              "endDate": {"raw": 1727481600, "fmt": "2024-09-28"},
              "totalAssets": {"raw": 364980000000, "fmt": "364.98B"},
              "totalCurrentAssets": {"raw": 152987000000, "fmt": "152.99B"},
              "cash": {"raw": 29943000000, "fmt": "29.94B"},
              "inventory": {"raw": 7286000000, "fmt": "7.29B"},
              "totalLiab": {"raw": 308030000000, "fmt": "308.03B"},
              "totalCurrentLiabilities": {"raw": 176392000000, "fmt": "176.39B"},
              "shortLongTermDebt": {"raw": 20879000000, "fmt": "20.88B"},
              "longTermDebt": {"raw": 85750000000, "fmt": "85.75B"},
              "totalStockholderEquity": {"raw": 56950000000, "fmt": "56.95B"},
              "retainedEarnings": {},
              "commonStock": {"raw": 83276000000, "fmt": "83.28B"}
            }
          ]
        }
      }
    ],
    "error": null
  }
}`
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	f := p.Fetcher(provider.ModelBalanceSheet)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	sheets, ok := res.Data.([]*models.BalanceSheet)
	if !ok {
		t.Fatalf("Data type = %T, want []*models.BalanceSheet", res.Data)
	}
	if len(sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(sheets))
	}
	bs := sheets[0]
	if bs.TotalEquity == nil || *bs.TotalEquity != 56950000000 {
		t.Errorf("TotalEquity = %v, want 56950000000", bs.TotalEquity)
	}
	if bs.RetainedEarnings != nil {
		t.Errorf("RetainedEarnings = %v, want nil for {}", *bs.RetainedEarnings)
	}
	// Yahoo has no share count on the balance sheet module.
	if bs.SharesOutstanding != nil {
		t.Errorf("SharesOutstanding = %v, want nil", *bs.SharesOutstanding)
	}
	debt := bs.TotalDebt()
	if debt == nil || *debt != 20879000000+85750000000 {
		t.Errorf("TotalDebt = %v, want short plus long term debt", debt)
	}
}

func TestFetchCashFlow(t *testing.T) {
	body := `{
  "quoteSummary": {
    "result": [
      {
        "cashflowStatementHistory": {
          "cashflowStatements": [
            {
              "maxAge": 1,
              "endDate": {"raw": 1727481600, "fmt": "2024-09-28"},
              "totalCashFromOperatingActivities": {"raw": 118254000000, "fmt": "118.25B"},
              "capitalExpenditures": {"raw": -9447000000, "fmt": "-9.45B"},
              "dividendsPaid": {"raw": -15234000000, "fmt": "-15.23B"},
              "netIncome": {"raw": 93736000000, "fmt": "93.74B"}
            }
          ]
        }
      }
    ],
    "error": null
  }
}`
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	f := p.Fetcher(provider.ModelCashFlowStatement)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	flows, ok := res.Data.([]*models.CashFlowStatement)
	if !ok {
		t.Fatalf("Data type = %T, want []*models.CashFlowStatement", res.Data)
	}
	if len(flows) != 1 {
		t.Fatalf("got %d statements, want 1", len(flows))
	}
	cf := flows[0]
	// Yahoo reports capex as a negative outflow; the sign is preserved.
	if cf.CapitalExpenditures == nil || *cf.CapitalExpenditures != -9447000000 {
		t.Errorf("CapitalExpenditures = %v, want -9447000000", cf.CapitalExpenditures)
	}
	fcf := cf.FreeCashFlow()
	if fcf == nil || *fcf != 118254000000-9447000000 {
		t.Errorf("FreeCashFlow = %v, want OCF minus capex magnitude", fcf)
	}
}

func TestFetchOverview(t *testing.T) {
	body := `{
  "quoteSummary": {
    "result": [
      {
        "summaryProfile": {
          "sector": "Technology",
          "industry": "Consumer Electronics",
          "country": "United States",
          "longBusinessSummary": "Apple Inc. designs, manufactures, and markets smartphones."
        },
        "defaultKeyStatistics": {
          "maxAge": 1,
          "sharesOutstanding": {"raw": 15115823104, "fmt": "15.12B"},
          "bookValue": {"raw": 4.25, "fmt": "4.25"},
          "mostRecentQuarter": {"raw": 1751068800, "fmt": "2025-06-28"}
        },
        "summaryDetail": {
          "maxAge": 1,
          "beta": {"raw": 1.24, "fmt": "1.24"},
          "dividendRate": {"raw": 1.0, "fmt": "1.00"},
          "fiftyTwoWeekHigh": {"raw": 237.49, "fmt": "237.49"},
          "fiftyTwoWeekLow": {"raw": 164.08, "fmt": "164.08"},
          "marketCap": {"raw": 3456789000000, "fmt": "3.46T"}
        },
        "price": {
          "symbol": "AAPL",
          "shortName": "Apple Inc.",
          "longName": "Apple Inc.",
          "currency": "USD",
          "exchangeName": "NasdaqGS",
          "marketCap": {"raw": 3456789000000, "fmt": "3.46T"}
        }
      }
    ],
    "error": null
  }
}`
	var gotModules string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotModules = r.URL.Query().Get("modules")
		w.Write([]byte(body))
	})

	f := p.Fetcher(provider.ModelCompanyOverview)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(gotModules, "summaryProfile") || !strings.Contains(gotModules, "price") {
		t.Errorf("modules param = %q, want profile and price modules", gotModules)
	}

	o, ok := res.Data.(*models.CompanyOverview)
	if !ok {
		t.Fatalf("Data type = %T, want *models.CompanyOverview", res.Data)
	}
	if o.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", o.Ticker)
	}
	if o.Name != "Apple Inc." {
		t.Errorf("Name = %q, want Apple Inc.", o.Name)
	}
	if o.Exchange != "NasdaqGS" || o.Currency != "USD" {
		t.Errorf("Exchange/Currency = %q/%q", o.Exchange, o.Currency)
	}
	if o.Sector != "Technology" || o.Country != "United States" {
		t.Errorf("Sector/Country = %q/%q", o.Sector, o.Country)
	}
	if o.MarketCap == nil || *o.MarketCap != 3456789000000 {
		t.Errorf("MarketCap = %v, want 3456789000000", o.MarketCap)
	}
	if o.Beta == nil || *o.Beta != 1.24 {
		t.Errorf("Beta = %v, want 1.24", o.Beta)
	}
	if o.SharesOutstanding == nil || *o.SharesOutstanding != 15115823104 {
		t.Errorf("SharesOutstanding = %v, want 15115823104", o.SharesOutstanding)
	}
	if o.BookValuePerShare == nil || *o.BookValuePerShare != 4.25 {
		t.Errorf("BookValuePerShare = %v, want 4.25", o.BookValuePerShare)
	}
	if o.LatestQuarter != "2025-06-28" {
		t.Errorf("LatestQuarter = %q, want 2025-06-28", o.LatestQuarter)
	}
	if o.WeekHigh52 == nil || *o.WeekHigh52 != 237.49 {
		t.Errorf("WeekHigh52 = %v, want 237.49", o.WeekHigh52)
	}
}

func TestFetchQuote(t *testing.T) {
	body := `{
  "chart": {
    "result": [
      {
        "meta": {
          "currency": "USD",
          "symbol": "AAPL",
          "exchangeName": "NMS",
          "instrumentType": "EQUITY",
          "regularMarketPrice": 228.87,
          "chartPreviousClose": 226.17,
          "previousClose": 226.17,
          "regularMarketDayHigh": 229.52,
          "regularMarketDayLow": 227.30,
          "regularMarketVolume": 44923941,
          "regularMarketTime": 1755892800
        }
      }
    ],
    "error": null
  }
}`
	var gotPath string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(body))
	})

	f := p.Fetcher(provider.ModelEquityQuote)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/v8/finance/chart/AAPL" {
		t.Errorf("path = %q, want /v8/finance/chart/AAPL", gotPath)
	}

	quote, ok := res.Data.(*models.EquityQuote)
	if !ok {
		t.Fatalf("Data type = %T, want *models.EquityQuote", res.Data)
	}
	if quote.Price == nil || *quote.Price != 228.87 {
		t.Errorf("Price = %v, want 228.87", quote.Price)
	}
	if quote.PrevClose == nil || *quote.PrevClose != 226.17 {
		t.Errorf("PrevClose = %v, want 226.17", quote.PrevClose)
	}
	if quote.Change == nil || math.Abs(*quote.Change-2.70) > 1e-9 {
		t.Errorf("Change = %v, want 2.70", quote.Change)
	}
	wantPct := (228.87 - 226.17) / 226.17 * 100
	if quote.ChangePct == nil || math.Abs(*quote.ChangePct-wantPct) > 1e-9 {
		t.Errorf("ChangePct = %v, want %v", quote.ChangePct, wantPct)
	}
	// The chart API has no open field.
	if quote.Open != nil {
		t.Errorf("Open = %v, want nil", *quote.Open)
	}
	if quote.LatestTradingDay != "2025-08-22" {
		t.Errorf("LatestTradingDay = %q, want 2025-08-22", quote.LatestTradingDay)
	}
}

func TestFetchUnknownSymbol(t *testing.T) {
	body := `{
  "quoteSummary": {
    "result": null,
    "error": {"code": "Not Found", "description": "Quote not found for ticker symbol: NOPE"}
  }
}`
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	f := p.Fetcher(provider.ModelIncomeStatement)
	_, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "NOPE"})
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if !strings.Contains(err.Error(), "Not Found") {
		t.Errorf("error = %v, want Yahoo's Not Found code in message", err)
	}
}

func TestFetchThrottled(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	})

	f := p.Fetcher(provider.ModelEquityQuote)
	_, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	var throttled *provider.ErrThrottled
	if !errors.As(err, &throttled) {
		t.Fatalf("expected ErrThrottled, got %T: %v", err, err)
	}
	if throttled.Provider != "yahoo" {
		t.Errorf("throttled provider = %q, want yahoo", throttled.Provider)
	}
}

const newsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Yahoo! Finance: AAPL News</title>
    <item>
      <title>Apple announces new product line</title>
      <link>https://finance.yahoo.com/news/apple-announces</link>
      <description>&lt;p&gt;Cupertino event &lt;b&gt;highlights&lt;/b&gt;.&lt;/p&gt;</description>
      <pubDate>Fri, 22 Aug 2025 14:05:00 +0000</pubDate>
    </item>
    <item>
      <title>Suppliers ramp up production</title>
      <link>https://finance.yahoo.com/news/suppliers-ramp</link>
      <pubDate>Thu, 21 Aug 2025 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Analysts weigh in on results</title>
      <link>https://finance.yahoo.com/news/analysts-weigh</link>
      <pubDate>Wed, 20 Aug 2025 09:30:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestFetchNews(t *testing.T) {
	var gotSymbol string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/rss/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotSymbol = r.URL.Query().Get("s")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(newsFeed))
	})

	f := p.Fetcher(provider.ModelCompanyNews)
	res, err := f.Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "AAPL",
		provider.ParamLimit:  "2",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotSymbol != "AAPL" {
		t.Errorf("feed symbol = %q, want AAPL", gotSymbol)
	}

	articles, ok := res.Data.([]models.NewsArticle)
	if !ok {
		t.Fatalf("Data type = %T, want []models.NewsArticle", res.Data)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want limit of 2", len(articles))
	}
	if articles[0].Title != "Apple announces new product line" {
		t.Errorf("first title = %q, want newest article first", articles[0].Title)
	}
	if strings.Contains(articles[0].Summary, "<") {
		t.Errorf("Summary = %q, want HTML stripped", articles[0].Summary)
	}
	if articles[0].Source != "Yahoo Finance" {
		t.Errorf("Source = %q, want Yahoo Finance", articles[0].Source)
	}
}

func TestFetchNewsInvalidLimit(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsFeed))
	})

	f := p.Fetcher(provider.ModelCompanyNews)
	_, err := f.Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "AAPL",
		provider.ParamLimit:  "zero",
	})
	if err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
}

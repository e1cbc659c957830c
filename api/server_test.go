package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fundalens/internal/config"
	"github.com/seenimoa/fundalens/internal/engine"
	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/pkg/models"
)

func fptr(v float64) *float64 { return &v }

type stubFetcher struct {
	provider.BaseFetcher
	data any
	err  error
}

func newStubFetcher(model provider.ModelType, data any, err error) *stubFetcher {
	return &stubFetcher{
		BaseFetcher: provider.NewBaseFetcher(model, "stub "+string(model), []string{provider.ParamSymbol}, nil),
		data:        data,
		err:         err,
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.FetchResult{Data: f.data, FetchedAt: time.Now()}, nil
}

type stubProvider struct {
	provider.BaseProvider
}

func newStubProvider(name string, fetchers ...provider.Fetcher) *stubProvider {
	p := &stubProvider{
		BaseProvider: provider.NewBaseProvider(name, "Stub "+name, "https://example.com", nil),
	}
	for _, f := range fetchers {
		p.RegisterFetcher(f)
	}
	return p
}

func healthyProvider(name string) *stubProvider {
	income := []*models.IncomeStatement{
		{FiscalYear: 2024, Revenue: fptr(120e9), NetIncome: fptr(20e9)},
		{FiscalYear: 2023, Revenue: fptr(100e9), NetIncome: fptr(15e9)},
	}
	balance := []*models.BalanceSheet{
		{FiscalYear: 2024, TotalAssets: fptr(200e9), CurrentAssets: fptr(80e9), Cash: fptr(30e9), TotalLiabilities: fptr(120e9), CurrentLiabilities: fptr(50e9), LongTermDebt: fptr(40e9), TotalEquity: fptr(80e9), SharesOutstanding: fptr(1e9)},
		{FiscalYear: 2023, TotalAssets: fptr(180e9), CurrentAssets: fptr(70e9), Cash: fptr(25e9), TotalLiabilities: fptr(110e9), CurrentLiabilities: fptr(48e9), LongTermDebt: fptr(42e9), TotalEquity: fptr(70e9), SharesOutstanding: fptr(1e9)},
	}
	cashflow := []*models.CashFlowStatement{
		{FiscalYear: 2024, OperatingCashFlow: fptr(28e9), CapitalExpenditures: fptr(8e9), NetIncome: fptr(20e9)},
		{FiscalYear: 2023, OperatingCashFlow: fptr(22e9), CapitalExpenditures: fptr(7e9), NetIncome: fptr(15e9)},
	}
	overview := &models.CompanyOverview{Ticker: "AAPL", Name: "Test Corp", Beta: fptr(1.2), SharesOutstanding: fptr(1e9)}
	quote := &models.EquityQuote{Ticker: "AAPL", Price: fptr(150.0)}

	return newStubProvider(name,
		newStubFetcher(provider.ModelIncomeStatement, income, nil),
		newStubFetcher(provider.ModelBalanceSheet, balance, nil),
		newStubFetcher(provider.ModelCashFlowStatement, cashflow, nil),
		newStubFetcher(provider.ModelCompanyOverview, overview, nil),
		newStubFetcher(provider.ModelEquityQuote, quote, nil),
	)
}

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			RiskFreeRate:     0.04,
			MarketReturn:     0.09,
			TerminalGrowth:   0.02,
			ProjectionYears:  5,
			MaxGrowthYears:   5,
			FallbackGrowth:   0.08,
			FallbackDiscount: 0.09,
		},
		API:  config.APIConfig{Addr: ":0"},
		News: config.NewsConfig{Enabled: true, Limit: 10},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, providers ...provider.Provider) *Server {
	t.Helper()
	reg := provider.NewRegistry()
	for _, p := range providers {
		if err := p.Init(nil); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	eng := engine.New(reg, cfg, zerolog.Nop())
	return NewServer(cfg, reg, eng, zerolog.Nop())
}

// envelope mirrors APIResponse with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func doGet(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig(), healthyProvider("stub"))
	srv.SetVersion("1.2.3")

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec, env := doGet(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
		if !env.Success {
			t.Errorf("GET %s success = false", path)
		}
		var data map[string]any
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode health data: %v", err)
		}
		if data["status"] != "ok" {
			t.Errorf("status = %v, want ok", data["status"])
		}
		if data["version"] != "1.2.3" {
			t.Errorf("version = %v, want 1.2.3", data["version"])
		}
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig(), healthyProvider("stub"))

	rec, env := doGet(t, srv, "/api/v1/report/aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Fatalf("success = false, error: %s", env.Error)
	}

	var report models.AnalysisReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", report.Ticker)
	}
	if report.Valuation == nil {
		t.Error("expected a valuation section")
	}
	if report.Sources[string(provider.ModelEquityQuote)] != "stub" {
		t.Errorf("quote source = %q, want stub", report.Sources[string(provider.ModelEquityQuote)])
	}
}

func TestReportInvalidTicker(t *testing.T) {
	srv := newTestServer(t, testConfig(), healthyProvider("stub"))

	rec, env := doGet(t, srv, "/api/v1/report/TOOLONGGG")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Success {
		t.Error("success = true for invalid ticker")
	}
	if !strings.Contains(env.Error, "invalid ticker") {
		t.Errorf("error = %q, want invalid ticker message", env.Error)
	}
}

func TestReportUpstreamFailure(t *testing.T) {
	boom := errors.New("boom")
	broken := newStubProvider("broken",
		newStubFetcher(provider.ModelIncomeStatement, nil, boom),
		newStubFetcher(provider.ModelBalanceSheet, nil, boom),
		newStubFetcher(provider.ModelCashFlowStatement, nil, boom),
		newStubFetcher(provider.ModelCompanyOverview, nil, boom),
		newStubFetcher(provider.ModelEquityQuote, nil, boom),
	)
	srv := newTestServer(t, testConfig(), broken)

	rec, env := doGet(t, srv, "/api/v1/report/AAPL")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if env.Success {
		t.Error("success = true for upstream failure")
	}
}

func TestReportBadQueryParams(t *testing.T) {
	srv := newTestServer(t, testConfig(), healthyProvider("stub"))

	rec, _ := doGet(t, srv, "/api/v1/report/AAPL?news=maybe")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("news=maybe status = %d, want 400", rec.Code)
	}

	rec, _ = doGet(t, srv, "/api/v1/report/AAPL?news_limit=zero")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("news_limit=zero status = %d, want 400", rec.Code)
	}

	rec, _ = doGet(t, srv, "/api/v1/report/AAPL?news_limit=-3")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("news_limit=-3 status = %d, want 400", rec.Code)
	}
}

func TestReportWithNews(t *testing.T) {
	now := time.Now()
	articles := []models.NewsArticle{
		{Title: "first", URL: "https://example.com/1", PublishedAt: now},
		{Title: "second", URL: "https://example.com/2", PublishedAt: now.Add(-time.Hour)},
	}
	p := healthyProvider("stub")
	p.RegisterFetcher(newStubFetcher(provider.ModelCompanyNews, articles, nil))
	srv := newTestServer(t, testConfig(), p)

	rec, env := doGet(t, srv, "/api/v1/report/AAPL?news=true&news_limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var report models.AnalysisReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.News) != 1 {
		t.Fatalf("len(News) = %d, want 1", len(report.News))
	}
	if report.News[0].Title != "first" {
		t.Errorf("News[0].Title = %q, want first", report.News[0].Title)
	}
}

func TestProvidersEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig(), healthyProvider("alpha"), healthyProvider("beta"))

	rec, env := doGet(t, srv, "/api/v1/providers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var summaries []ProviderSummary
	if err := json.Unmarshal(env.Data, &summaries); err != nil {
		t.Fatalf("decode providers: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len(providers) = %d, want 2", len(summaries))
	}
	if summaries[0].Name != "alpha" || summaries[1].Name != "beta" {
		t.Errorf("providers not sorted: %q, %q", summaries[0].Name, summaries[1].Name)
	}

	alpha := summaries[0]
	if len(alpha.Models) != 5 {
		t.Errorf("len(alpha.Models) = %d, want 5", len(alpha.Models))
	}
	// First registration becomes the default for every model it supports.
	if len(alpha.DefaultFor) != 5 {
		t.Errorf("len(alpha.DefaultFor) = %d, want 5", len(alpha.DefaultFor))
	}
	if len(summaries[1].DefaultFor) != 0 {
		t.Errorf("beta.DefaultFor = %v, want empty", summaries[1].DefaultFor)
	}
	if alpha.NeedsKey {
		t.Error("stub provider should not need a key")
	}
}

func TestConfigEndpointMasksKey(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.AlphaVantage.APIKey = "supersecretkey123"
	srv := newTestServer(t, cfg, healthyProvider("stub"))

	rec, env := doGet(t, srv, "/api/v1/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "supersecretkey123") {
		t.Error("response leaks the API key")
	}

	var data ConfigResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if len(data.Keys) == 0 {
		t.Fatal("expected key status entries")
	}
	if !data.Keys[0].IsSet {
		t.Error("key status IsSet = false, want true")
	}
	if data.Keys[0].Masked != "sup...123" {
		t.Errorf("Masked = %q, want sup...123", data.Keys[0].Masked)
	}
}

func TestConfigKeysEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig(), healthyProvider("stub"))

	rec, env := doGet(t, srv, "/api/v1/config/keys")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var keys []config.KeyStatus
	if err := json.Unmarshal(env.Data, &keys); err != nil {
		t.Fatalf("decode keys: %v", err)
	}
	if len(keys) == 0 {
		t.Fatal("expected key status entries")
	}
	if keys[0].IsSet {
		t.Error("key status IsSet = true with no key configured")
	}
}

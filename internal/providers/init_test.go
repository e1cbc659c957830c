package providers

import (
	"testing"

	"github.com/seenimoa/fundalens/internal/config"
	"github.com/seenimoa/fundalens/internal/provider"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Providers.Yahoo.Enabled = true
	cfg.Providers.StockAnalysis.Enabled = true
	return cfg
}

func TestRegisterAllToFreeProviders(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig()); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	// The free providers need no key and always register.
	if _, err := reg.Get("yahoo"); err != nil {
		t.Errorf("yahoo not registered: %v", err)
	}
	if _, err := reg.Get("stockanalysis"); err != nil {
		t.Errorf("stockanalysis not registered: %v", err)
	}

	// Alpha Vantage registers only with a configured key.
	if _, err := reg.Get("alphavantage"); err == nil {
		t.Error("alphavantage registered without an API key")
	}
}

func TestRegisterAllToWithKey(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.AlphaVantage.APIKey = "unit_test_key"

	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	if _, err := reg.Get("alphavantage"); err != nil {
		t.Fatalf("alphavantage not registered: %v", err)
	}
	// Alpha Vantage registered first, so it is the statements default.
	name, ok := reg.DefaultProvider(provider.ModelIncomeStatement)
	if !ok || name != "alphavantage" {
		t.Errorf("IncomeStatement default = %q, want alphavantage", name)
	}
}

func TestRegisterAllToModelCoverage(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig()); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	coverage := reg.ModelCoverage()
	for _, m := range []provider.ModelType{
		provider.ModelIncomeStatement,
		provider.ModelBalanceSheet,
		provider.ModelCashFlowStatement,
		provider.ModelCompanyOverview,
		provider.ModelEquityQuote,
		provider.ModelCompanyNews,
	} {
		if len(coverage[m]) == 0 {
			t.Errorf("no provider covers %s", m)
		}
	}

	// Statements have a scraper fallback behind Yahoo.
	stmts := coverage[provider.ModelIncomeStatement]
	if len(stmts) != 2 {
		t.Errorf("IncomeStatement providers = %v, want yahoo and stockanalysis", stmts)
	}
}

func TestRegisterAllToPrimary(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.AlphaVantage.APIKey = "unit_test_key"
	cfg.Providers.Primary = "yahoo"

	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	// The configured primary overrides registration order.
	name, ok := reg.DefaultProvider(provider.ModelIncomeStatement)
	if !ok || name != "yahoo" {
		t.Errorf("IncomeStatement default = %q, want yahoo", name)
	}

	// Models the primary does not support keep their own defaults.
	cfg2 := testConfig()
	cfg2.Providers.Primary = "stockanalysis"
	reg2 := provider.NewRegistry()
	if err := RegisterAllTo(reg2, cfg2); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	name, ok = reg2.DefaultProvider(provider.ModelEquityQuote)
	if !ok || name != "yahoo" {
		t.Errorf("EquityQuote default = %q, want yahoo", name)
	}
	name, ok = reg2.DefaultProvider(provider.ModelIncomeStatement)
	if !ok || name != "stockanalysis" {
		t.Errorf("IncomeStatement default = %q, want stockanalysis", name)
	}
}

func TestRegisterAllToUnknownPrimary(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.Primary = "alphavantage" // no key, so never registered

	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg); err != nil {
		t.Fatalf("RegisterAllTo with unregistered primary: %v", err)
	}
	name, _ := reg.DefaultProvider(provider.ModelIncomeStatement)
	if name != "yahoo" {
		t.Errorf("IncomeStatement default = %q, want first registered", name)
	}
}

func TestRegisterAllToNothingEnabled(t *testing.T) {
	cfg := &config.Config{} // no key, yahoo and stockanalysis disabled

	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg); err == nil {
		t.Error("RegisterAllTo with nothing enabled returned nil error")
	}
}

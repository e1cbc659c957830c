// Package alphavantage implements the Alpha Vantage data provider.
// Alpha Vantage serves company fundamentals (annual income statement,
// balance sheet, cash flow), a company overview, and delayed quotes via a
// REST API with API key authentication.
//
// Free tier: 25 requests/day, 5 requests/minute. Throttle notices arrive
// as HTTP 200 bodies with a "Note" or "Information" field; those surface
// as provider.ErrThrottled so the registry can fall back.
//
// Docs: https://www.alphavantage.co/documentation/
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/seenimoa/fundalens/internal/infra"
	"github.com/seenimoa/fundalens/internal/provider"
)

const (
	providerName   = "alphavantage"
	defaultBaseURL = "https://www.alphavantage.co/query"
	credAPIKey     = "api_key"

	paramInjectedKey  = "_av_api_key"
	paramInjectedBase = "_av_base_url"
)

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	provider.BaseProvider
	apiKey  string
	baseURL string
}

// New creates an Alpha Vantage provider against the public API.
func New() *Provider {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL creates an Alpha Vantage provider against a custom
// endpoint. Used for self-hosted proxies and tests.
func NewWithBaseURL(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Alpha Vantage - company fundamentals and quotes",
			"https://www.alphavantage.co",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Alpha Vantage API key from alphavantage.co/support/#api-key",
					Required:    true,
					EnvVar:      "ALPHAVANTAGE_API_KEY",
				},
			},
		),
		baseURL: baseURL,
	}

	// Fundamentals
	p.RegisterFetcher(newIncomeStatementFetcher())
	p.RegisterFetcher(newBalanceSheetFetcher())
	p.RegisterFetcher(newCashFlowFetcher())

	// Market
	p.RegisterFetcher(newOverviewFetcher())
	p.RegisterFetcher(newQuoteFetcher())

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity and key validity with a minimal quote request.
func (p *Provider) Ping(ctx context.Context) error {
	var resp avQuoteResponse
	if err := fetchAVJSON(ctx, p.baseURL, "GLOBAL_QUOTE", "IBM", p.apiKey, &resp); err != nil {
		return fmt.Errorf("alphavantage ping: %w", err)
	}
	return nil
}

// APIKey returns the stored API key (used by fetchers).
func (p *Provider) APIKey() string {
	return p.apiKey
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that injects
// the API key and base URL into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &credentialInjector{inner: inner, provider: p}
}

// credentialInjector wraps a Fetcher so concrete fetchers don't need to
// know about credential management.
type credentialInjector struct {
	inner    provider.Fetcher
	provider *Provider
}

func (w *credentialInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *credentialInjector) Description() string           { return w.inner.Description() }
func (w *credentialInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *credentialInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *credentialInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+2)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramInjectedKey] = w.provider.apiKey
	enriched[paramInjectedBase] = w.provider.baseURL
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// avURL builds a query URL for one of the Alpha Vantage "function"
// endpoints.
func avURL(baseURL, function, symbol, apiKey string) string {
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("apikey", apiKey)
	return baseURL + "?" + q.Encode()
}

// fetchAVJSON performs a GET request and decodes the response, translating
// Alpha Vantage's HTTP-200 soft errors into real ones.
func fetchAVJSON(ctx context.Context, baseURL, function, symbol, apiKey string, dest any) error {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	body, _, err := infra.DoGet(ctx, avURL(baseURL, function, symbol, apiKey), jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env avEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("parse Alpha Vantage JSON: %w", err)
	}
	if env.ErrorMessage != "" {
		return fmt.Errorf("alphavantage %s %s: %s", function, symbol, env.ErrorMessage)
	}
	notice := env.Note
	if notice == "" {
		notice = env.Information
	}
	if notice != "" {
		return &provider.ErrThrottled{Provider: providerName, Notice: notice}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse Alpha Vantage JSON: %w", err)
	}
	return nil
}

// newResult creates a FetchResult.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a cached FetchResult.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}

// Package provider defines the framework the statement providers plug
// into: a Provider exposes one Fetcher per standard model type, and the
// Registry routes fetches to providers with per-model defaults and
// fallback chains.
package provider

import (
	"context"
	"time"
)

// ProviderCredential describes one credential a provider needs before it
// can fetch.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // where to obtain it
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // conventional environment variable, e.g., "ALPHAVANTAGE_API_KEY"
}

// ProviderInfo is the metadata a provider advertises through the registry,
// the CLI `providers` command, and the API providers endpoint.
type ProviderInfo struct {
	Name        string               `json:"name"` // "alphavantage", "yahoo", "stockanalysis"
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"` // supported standard models, sorted
}

// Provider is one upstream data source. Implementations embed
// BaseProvider and register a fetcher per supported model.
type Provider interface {
	// Info returns the provider's metadata.
	Info() ProviderInfo

	// Init receives credentials once, at registration. It fails when a
	// required credential is absent.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for model, or nil when unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels lists every model this provider can fetch.
	SupportedModels() []ModelType

	// Ping probes connectivity and credential validity.
	Ping(ctx context.Context) error
}

// QueryParams carries the query for one fetch. Fetchers declare which
// keys they require; the registry validates before delegating.
type QueryParams map[string]string

// Common QueryParams keys.
const (
	ParamSymbol   = "symbol"   // ticker, e.g. "AAPL", "BRK.B"
	ParamLimit    = "limit"    // max results (news articles)
	ParamProvider = "provider" // preferred provider name
)

// FetchResult is a fetched model stamped with its origin. The registry
// fills Provider, Model, and FetchedAt; fetchers set Data and Cached.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// Fetcher retrieves one standard model type from one provider.
type Fetcher interface {
	// ModelType returns the standard model this fetcher serves.
	ModelType() ModelType

	// Description says what this fetcher returns, for listings.
	Description() string

	// RequiredParams lists the QueryParams keys that must be present.
	RequiredParams() []string

	// OptionalParams lists the QueryParams keys the fetcher honors.
	OptionalParams() []string

	// Fetch retrieves the data. The dynamic type of FetchResult.Data is
	// fixed per model:
	//   - IncomeStatement   → []*models.IncomeStatement
	//   - BalanceSheet      → []*models.BalanceSheet
	//   - CashFlowStatement → []*models.CashFlowStatement
	//   - CompanyOverview   → *models.CompanyOverview
	//   - EquityQuote       → *models.EquityQuote
	//   - CompanyNews       → []models.NewsArticle
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

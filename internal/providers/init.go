// Package providers initializes and registers the concrete data providers
// with a provider registry.
package providers

import (
	"errors"

	"github.com/seenimoa/fundalens/internal/config"
	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/internal/providers/alphavantage"
	"github.com/seenimoa/fundalens/internal/providers/stockanalysis"
	"github.com/seenimoa/fundalens/internal/providers/yahoo"
)

// RegisterAll creates and registers the configured providers with the
// global registry.
func RegisterAll(cfg *config.Config) error {
	return RegisterAllTo(provider.Global(), cfg)
}

// RegisterAllTo registers the configured providers to the given registry.
// Registration order fixes the fallback priority: Alpha Vantage when a key
// is configured, then Yahoo, then stockanalysis.com. The configured
// primary provider becomes the default for every model it supports.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config) error {
	// --- Alpha Vantage (requires API key) ---
	if key := cfg.Providers.AlphaVantage.APIKey; key != "" {
		av := alphavantage.NewWithBaseURL(cfg.Providers.AlphaVantage.BaseURL)
		if err := av.Init(map[string]string{"api_key": key}); err != nil {
			return err
		}
		if err := reg.Register(av); err != nil {
			return err
		}
	}

	// --- Yahoo Finance (free, no key) ---
	if cfg.Providers.Yahoo.Enabled {
		yf := yahoo.New()
		if err := yf.Init(nil); err != nil {
			return err
		}
		if err := reg.Register(yf); err != nil {
			return err
		}
	}

	// --- stockanalysis.com (free, scraped, last resort) ---
	if cfg.Providers.StockAnalysis.Enabled {
		sa := stockanalysis.New()
		if err := sa.Init(nil); err != nil {
			return err
		}
		if err := reg.Register(sa); err != nil {
			return err
		}
	}

	if len(reg.List()) == 0 {
		return errors.New("no data providers enabled: configure an Alpha Vantage API key or enable yahoo/stockanalysis")
	}

	return applyPrimary(reg, cfg.Providers.Primary)
}

// applyPrimary makes the named provider the default for every model it
// supports. A primary that is not registered (alphavantage without a key,
// or a disabled provider) is skipped; registration order still supplies
// defaults and fallbacks.
func applyPrimary(reg *provider.Registry, primary string) error {
	if primary == "" {
		return nil
	}
	p, err := reg.Get(primary)
	if err != nil {
		return nil
	}
	for _, model := range p.SupportedModels() {
		if err := reg.SetDefault(model, primary); err != nil {
			return err
		}
	}
	return nil
}

package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry routes model fetches to registered providers. Each model type
// keeps its providers in registration order; that order is the fallback
// chain, and the first registration becomes the model's default. All
// methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Provider
	byModel  map[ModelType][]string
	defaults map[ModelType]string
}

// NewRegistry creates an empty registry. Tests and the CLI build their
// own; long-lived callers can share Global.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]Provider),
		byModel:  make(map[ModelType][]string),
		defaults: make(map[ModelType]string),
	}
}

// Register adds a provider and indexes its models. Re-registering a name
// replaces the provider but keeps its position in the fallback chains.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName[info.Name] = p
	for _, model := range p.SupportedModels() {
		if !containsName(r.byModel[model], info.Name) {
			r.byModel[model] = append(r.byModel[model], info.Name)
		}
		if _, ok := r.defaults[model]; !ok {
			r.defaults[model] = info.Name
		}
	}
	return nil
}

// Unregister removes a provider and drops it from every fallback chain.
// Models it was the default for fall back to the next provider in chain.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byName, name)
	for model, chain := range r.byModel {
		kept := chain[:0]
		for _, n := range chain {
			if n != name {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			delete(r.byModel, model)
			delete(r.defaults, model)
			continue
		}
		r.byModel[model] = kept
		if r.defaults[model] == name {
			r.defaults[model] = kept[0]
		}
	}
}

// Get looks up a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns every registered provider's metadata, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.byName))
	for _, p := range r.byName {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ProvidersFor returns the fallback chain for a model, default first.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := make([]string, len(r.byModel[model]))
	copy(chain, r.byModel[model])
	return chain
}

// DefaultProvider reports which provider serves a model when the caller
// names none.
func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.defaults[model]
	return name, ok
}

// SetDefault makes name the default for model. The provider must be
// registered and support the model.
func (r *Registry) SetDefault(model ModelType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byName[name]
	if !ok {
		return &ErrProviderNotFound{Name: name}
	}
	if p.Fetcher(model) == nil {
		return &ErrModelNotSupported{Provider: name, Model: model}
	}
	r.defaults[model] = name
	return nil
}

// Fetch retrieves one model through params[ParamProvider], or the model's
// default when unset. The result comes back stamped with the provider
// name, model type, and fetch time.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	name := params[ParamProvider]

	r.mu.RLock()
	if name == "" {
		name = r.defaults[model]
	}
	p, ok := r.byName[name]
	r.mu.RUnlock()

	if !ok || name == "" {
		return nil, &ErrProviderNotFound{Name: name}
	}

	fetcher := p.Fetcher(model)
	if fetcher == nil {
		return nil, &ErrModelNotSupported{Provider: name, Model: model}
	}
	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q fetch %s: %w", name, model, err)
	}

	result.Provider = name
	result.Model = model
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}
	return result, nil
}

// FetchWithFallback fetches through the preferred provider first (the
// model default when none is named), then walks the model's fallback
// chain. The wrapped error is the last failure.
func (r *Registry) FetchWithFallback(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	result, err := r.Fetch(ctx, model, params)
	if err == nil {
		return result, nil
	}

	preferred := params[ParamProvider]
	for _, name := range r.ProvidersFor(model) {
		if name == preferred {
			continue
		}
		retry := make(QueryParams, len(params))
		for k, v := range params {
			retry[k] = v
		}
		retry[ParamProvider] = name

		if result, err = r.Fetch(ctx, model, retry); err == nil {
			return result, nil
		}
	}
	return nil, fmt.Errorf("all providers failed for model %s: %w", model, err)
}

// ModelCoverage maps each model type to its fallback chain.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[ModelType][]string, len(r.byModel))
	for model, chain := range r.byModel {
		cp := make([]string, len(chain))
		copy(cp, chain)
		coverage[model] = cp
	}
	return coverage
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

var global = NewRegistry()

// Global returns the process-wide registry the CLI registers into.
func Global() *Registry {
	return global
}

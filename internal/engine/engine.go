// Package engine orchestrates one analysis run: fetching the input models
// across the registered providers, assembling the financial history, running
// the calculators, and returning the consolidated report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fundalens/internal/analysis/fundamental"
	"github.com/seenimoa/fundalens/internal/config"
	"github.com/seenimoa/fundalens/internal/news"
	"github.com/seenimoa/fundalens/internal/provider"
	"github.com/seenimoa/fundalens/pkg/models"
	"github.com/seenimoa/fundalens/pkg/utils"
)

// ErrInvalidTicker reports a ticker that failed validation before any fetch.
var ErrInvalidTicker = errors.New("invalid ticker")

// Options tune a single run. The zero value uses the configured defaults.
type Options struct {
	Provider       string   // preferred provider for every fetch; "" uses per-model defaults
	RiskFreeRate   *float64 // CAPM risk-free rate override
	MarketReturn   *float64 // CAPM market return override
	TerminalGrowth *float64 // DCF terminal growth override
	WithNews       bool     // attach recent headlines to the report
	NewsLimit      int      // max headlines; 0 uses the configured limit
}

// Engine runs analyses against a provider registry.
type Engine struct {
	reg   *provider.Registry
	cfg   *config.Config
	log   zerolog.Logger
	extra *news.Client // configured extra RSS feeds, nil when none
}

// New creates an engine. Extra RSS feeds from the news configuration are
// merged into every run that requests headlines.
func New(reg *provider.Registry, cfg *config.Config, log zerolog.Logger) *Engine {
	e := &Engine{reg: reg, cfg: cfg, log: log}
	if len(cfg.News.Feeds) > 0 {
		e.extra = news.NewClient(news.CustomSources(cfg.News.Feeds)...)
	}
	return e
}

// Analyze produces a consolidated report for one ticker. Individual inputs
// and calculator sections may fail without failing the run; those failures
// land in the report's Errors. Analyze itself fails only for an invalid
// ticker, or when no statements and no quote could be fetched at all.
func (e *Engine) Analyze(ctx context.Context, ticker string, opts Options) (*models.AnalysisReport, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.IsValidTicker(symbol) {
		return nil, fmt.Errorf("%w %q", ErrInvalidTicker, ticker)
	}

	started := time.Now()
	report := &models.AnalysisReport{
		RunID:       uuid.NewString(),
		Ticker:      symbol,
		GeneratedAt: started,
		Sources:     make(map[string]string),
	}

	fetchErrs := e.fetchInputs(ctx, symbol, opts.Provider, report)

	if report.History == nil && report.Quote == nil {
		return nil, fmt.Errorf("all sources failed for %s: %w", symbol, errors.Join(fetchErrs...))
	}
	for _, err := range fetchErrs {
		e.log.Warn().Str("ticker", symbol).Err(err).Msg("input unavailable")
	}

	e.runSections(report, opts)

	if opts.WithNews {
		e.attachNews(ctx, symbol, report, opts)
	}

	e.log.Info().
		Str("ticker", symbol).
		Str("run_id", report.RunID).
		Int("section_errors", len(report.Errors)).
		Dur("took", time.Since(started)).
		Msg("analysis complete")
	return report, nil
}

// fetchInputs fetches the five input models concurrently and fills in the
// report's history, company, quote, and source attribution. Failures are
// collected per input; none of them abort the group.
func (e *Engine) fetchInputs(ctx context.Context, symbol, preferred string, report *models.AnalysisReport) []error {
	history := &models.FinancialHistory{Ticker: symbol}

	var mu sync.Mutex
	var errs []error

	fail := func(model provider.ModelType, err error) {
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", model, err))
		mu.Unlock()
	}
	record := func(model provider.ModelType, res *provider.FetchResult) {
		mu.Lock()
		report.Sources[string(model)] = res.Provider
		mu.Unlock()
		e.log.Debug().
			Str("ticker", symbol).
			Str("model", string(model)).
			Str("provider", res.Provider).
			Bool("cached", res.Cached).
			Msg("input fetched")
	}

	g, gctx := errgroup.WithContext(ctx)

	// 1. Income statements.
	g.Go(func() error {
		res, err := e.fetch(gctx, provider.ModelIncomeStatement, symbol, preferred)
		if err != nil {
			fail(provider.ModelIncomeStatement, err)
			return nil // non-fatal
		}
		stmts, ok := res.Data.([]*models.IncomeStatement)
		if !ok {
			fail(provider.ModelIncomeStatement, fmt.Errorf("unexpected payload %T", res.Data))
			return nil
		}
		mu.Lock()
		history.Income = stmts
		mu.Unlock()
		record(provider.ModelIncomeStatement, res)
		return nil
	})

	// 2. Balance sheets.
	g.Go(func() error {
		res, err := e.fetch(gctx, provider.ModelBalanceSheet, symbol, preferred)
		if err != nil {
			fail(provider.ModelBalanceSheet, err)
			return nil
		}
		sheets, ok := res.Data.([]*models.BalanceSheet)
		if !ok {
			fail(provider.ModelBalanceSheet, fmt.Errorf("unexpected payload %T", res.Data))
			return nil
		}
		mu.Lock()
		history.Balance = sheets
		mu.Unlock()
		record(provider.ModelBalanceSheet, res)
		return nil
	})

	// 3. Cash flow statements.
	g.Go(func() error {
		res, err := e.fetch(gctx, provider.ModelCashFlowStatement, symbol, preferred)
		if err != nil {
			fail(provider.ModelCashFlowStatement, err)
			return nil
		}
		flows, ok := res.Data.([]*models.CashFlowStatement)
		if !ok {
			fail(provider.ModelCashFlowStatement, fmt.Errorf("unexpected payload %T", res.Data))
			return nil
		}
		mu.Lock()
		history.CashFlow = flows
		mu.Unlock()
		record(provider.ModelCashFlowStatement, res)
		return nil
	})

	// 4. Company overview.
	g.Go(func() error {
		res, err := e.fetch(gctx, provider.ModelCompanyOverview, symbol, preferred)
		if err != nil {
			fail(provider.ModelCompanyOverview, err)
			return nil
		}
		overview, ok := res.Data.(*models.CompanyOverview)
		if !ok {
			fail(provider.ModelCompanyOverview, fmt.Errorf("unexpected payload %T", res.Data))
			return nil
		}
		mu.Lock()
		report.Company = overview
		mu.Unlock()
		record(provider.ModelCompanyOverview, res)
		return nil
	})

	// 5. Quote.
	g.Go(func() error {
		res, err := e.fetch(gctx, provider.ModelEquityQuote, symbol, preferred)
		if err != nil {
			fail(provider.ModelEquityQuote, err)
			return nil
		}
		quote, ok := res.Data.(*models.EquityQuote)
		if !ok {
			fail(provider.ModelEquityQuote, fmt.Errorf("unexpected payload %T", res.Data))
			return nil
		}
		mu.Lock()
		report.Quote = quote
		mu.Unlock()
		record(provider.ModelEquityQuote, res)
		return nil
	})

	_ = g.Wait() // workers record failures instead of returning them

	if len(history.Income) > 0 || len(history.Balance) > 0 || len(history.CashFlow) > 0 {
		history.Sort()
		report.History = history
	}
	return errs
}

func (e *Engine) fetch(ctx context.Context, model provider.ModelType, symbol, preferred string) (*provider.FetchResult, error) {
	params := provider.QueryParams{provider.ParamSymbol: symbol}
	if preferred != "" {
		params[provider.ParamProvider] = preferred
	}
	return e.reg.FetchWithFallback(ctx, model, params)
}

// runSections runs each calculator independently. A failure becomes a typed
// section error on the report while the remaining sections still complete.
func (e *Engine) runSections(report *models.AnalysisReport, opts Options) {
	h := report.History
	if h == nil {
		h = &models.FinancialHistory{Ticker: report.Ticker}
	}
	snap := marketSnapshot(report.Company, report.Quote)

	if ratios, err := fundamental.ComputeRatios(h.LatestIncome(), h.LatestBalance(), snap); err != nil {
		e.sectionFailed(report, models.SectionRatios, err)
	} else {
		report.Ratios = ratios
	}

	if score, err := fundamental.PiotroskiFScore(h); err != nil {
		e.sectionFailed(report, models.SectionFScore, err)
	} else {
		report.FScore = score
	}

	if growth, err := fundamental.ComputeGrowth(h, e.cfg.Analysis.MaxGrowthYears); err != nil {
		e.sectionFailed(report, models.SectionGrowth, err)
	} else {
		report.Growth = growth
	}

	riskFree := e.cfg.Analysis.RiskFreeRate
	if opts.RiskFreeRate != nil {
		riskFree = *opts.RiskFreeRate
	}
	marketReturn := e.cfg.Analysis.MarketReturn
	if opts.MarketReturn != nil {
		marketReturn = *opts.MarketReturn
	}
	var beta *float64
	if snap != nil {
		beta = snap.Beta
	}
	if rate, err := fundamental.EstimateCostOfEquity(fundamental.CAPMInput{
		RiskFreeRate: riskFree,
		MarketReturn: marketReturn,
		Beta:         beta,
	}); err != nil {
		e.sectionFailed(report, models.SectionCAPM, err)
	} else {
		report.CostOfEquity = rate
	}

	e.runValuation(report, opts, h, snap)
}

// runValuation resolves the DCF inputs and runs the model. Growth falls back
// to the configured rate when no positive revenue CAGR is available; the
// discount rate falls back when CAPM produced nothing.
func (e *Engine) runValuation(report *models.AnalysisReport, opts Options, h *models.FinancialHistory, snap *models.MarketSnapshot) {
	baseFCF, err := fundamental.BaseFreeCashFlow(h.LatestCashFlow())
	if err != nil {
		e.sectionFailed(report, models.SectionValuation, err)
		return
	}

	growthRate := e.cfg.Analysis.FallbackGrowth
	growthSource := models.GrowthFromFallback
	if report.Growth != nil && report.Growth.RevenueCAGR != nil && *report.Growth.RevenueCAGR > 0 {
		growthRate = *report.Growth.RevenueCAGR
		growthSource = models.GrowthFromCAGR
	}

	discountRate := e.cfg.Analysis.FallbackDiscount
	discountSource := models.RateFromFallback
	if report.CostOfEquity != nil && report.CostOfEquity.CostOfEquity > 0 {
		discountRate = report.CostOfEquity.CostOfEquity
		discountSource = models.RateFromCAPM
	}

	terminal := e.cfg.Analysis.TerminalGrowth
	if opts.TerminalGrowth != nil {
		terminal = *opts.TerminalGrowth
	}

	in := fundamental.DCFInput{
		BaseFCF:        baseFCF,
		GrowthRate:     growthRate,
		GrowthSource:   growthSource,
		DiscountRate:   discountRate,
		DiscountSource: discountSource,
		TerminalGrowth: terminal,
		Years:          e.cfg.Analysis.ProjectionYears,
	}
	if snap != nil {
		in.SharesOutstanding = snap.SharesOutstanding
		in.CurrentPrice = snap.Price
	}
	if bs := h.LatestBalance(); bs != nil {
		in.NetDebt = bs.NetDebt()
		// Same preference as the ratio calculator: live share count
		// first, balance sheet figure as the fallback.
		if in.SharesOutstanding == nil {
			in.SharesOutstanding = bs.SharesOutstanding
		}
	}

	valuation, err := fundamental.RunDCF(in)
	if err != nil {
		e.sectionFailed(report, models.SectionValuation, err)
		return
	}
	report.Valuation = valuation
}

// attachNews fetches headlines through the registry and merges in any extra
// configured feeds. News never fails the run; when every source fails the
// joined error becomes the news section's error.
func (e *Engine) attachNews(ctx context.Context, symbol string, report *models.AnalysisReport, opts Options) {
	limit := opts.NewsLimit
	if limit <= 0 {
		limit = e.cfg.News.Limit
	}
	if limit <= 0 {
		limit = news.DefaultLimit
	}

	var batches [][]models.NewsArticle
	var errs []error

	params := provider.QueryParams{
		provider.ParamSymbol: symbol,
		provider.ParamLimit:  strconv.Itoa(limit),
	}
	if opts.Provider != "" {
		params[provider.ParamProvider] = opts.Provider
	}
	res, err := e.reg.FetchWithFallback(ctx, provider.ModelCompanyNews, params)
	if err != nil {
		errs = append(errs, err)
	} else if articles, ok := res.Data.([]models.NewsArticle); ok {
		batches = append(batches, articles)
		report.Sources[string(provider.ModelCompanyNews)] = res.Provider
	} else {
		errs = append(errs, fmt.Errorf("news: unexpected payload %T", res.Data))
	}

	if e.extra != nil {
		articles, err := e.extra.Headlines(ctx, symbol, limit)
		if err != nil {
			errs = append(errs, err)
		} else {
			batches = append(batches, articles)
		}
	}

	if len(batches) == 0 {
		if len(errs) > 0 {
			e.sectionFailed(report, models.SectionNews, errors.Join(errs...))
		}
		return
	}
	report.News = news.Merge(limit, batches...)
	for _, err := range errs {
		e.log.Warn().Str("ticker", symbol).Err(err).Msg("news source failed")
	}
}

// marketSnapshot merges the quote and overview into the calculators'
// market-side input. The live quote carries the price; beta, share count,
// and dividend rate only come from the overview.
func marketSnapshot(company *models.CompanyOverview, quote *models.EquityQuote) *models.MarketSnapshot {
	if company == nil && quote == nil {
		return nil
	}
	snap := &models.MarketSnapshot{}
	if company != nil {
		snap.SharesOutstanding = company.SharesOutstanding
		snap.Beta = company.Beta
		snap.DividendPerShare = company.DividendPerShare
	}
	if quote != nil {
		snap.Price = quote.Price
	}
	return snap
}

func (e *Engine) sectionFailed(report *models.AnalysisReport, section string, err error) {
	kind := fundamental.ErrKind(err)
	report.Errors = append(report.Errors, models.SectionError{
		Section: section,
		Kind:    kind,
		Message: err.Error(),
	})
	e.log.Warn().
		Str("ticker", report.Ticker).
		Str("section", section).
		Str("kind", kind).
		Msg(err.Error())
}

// Package report renders an analysis report as console text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/fundalens/pkg/models"
	"github.com/seenimoa/fundalens/pkg/utils"
)

// Format specifies the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name from a flag or query parameter.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text or json)", s)
	}
}

// Render formats the report in the requested format.
func Render(r *models.AnalysisReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(r)
	case FormatText, "":
		return RenderText(r), nil
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

// RenderJSON returns the report as indented JSON.
func RenderJSON(r *models.AnalysisReport) (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(b), nil
}

// ════════════════════════════════════════════════════════════════════
// Text renderer
// ════════════════════════════════════════════════════════════════════

// RenderText returns the report as sectioned console text. Sections that
// failed render their recorded error as an n/a marker; sections that were
// never attempted are omitted.
func RenderText(r *models.AnalysisReport) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	name := r.Ticker
	if r.Company != nil && r.Company.Name != "" {
		name = fmt.Sprintf("%s (%s)", r.Company.Name, r.Ticker)
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  FUNDAMENTAL ANALYSIS — %s\n", name))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Run: %s\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), r.RunID))
	sb.WriteString(line + "\n\n")

	writeCompany(&sb, r, thinLine)
	writeQuote(&sb, r, thinLine)
	writeRatios(&sb, r, thinLine)
	writeFScore(&sb, r, thinLine)
	writeGrowth(&sb, r, thinLine)
	writeCAPM(&sb, r, thinLine)
	writeValuation(&sb, r, thinLine)
	writeNews(&sb, r, thinLine)

	sb.WriteString("\n" + line + "\n")
	if src := sourcesLine(r); src != "" {
		sb.WriteString(fmt.Sprintf("  Sources: %s\n", src))
	}
	sb.WriteString("  Data from public providers. Informational only, not investment advice.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

func writeCompany(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	c := r.Company
	if c == nil {
		return
	}
	if c.Sector != "" || c.Industry != "" {
		sb.WriteString(fmt.Sprintf("  Sector: %s | Industry: %s\n", orNA(c.Sector), orNA(c.Industry)))
	}
	if c.Exchange != "" || c.Currency != "" {
		sb.WriteString(fmt.Sprintf("  Exchange: %s | Currency: %s\n", orNA(c.Exchange), orNA(c.Currency)))
	}
	if c.MarketCap != nil || c.SharesOutstanding != nil {
		shares := "n/a"
		if c.SharesOutstanding != nil {
			shares = utils.FormatShares(*c.SharesOutstanding)
		}
		sb.WriteString(fmt.Sprintf("  Market Cap: %s | Shares: %s\n", money(c.MarketCap), shares))
	}
	sb.WriteString(thinLine + "\n")
}

func writeQuote(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	q := r.Quote
	if q == nil {
		return
	}
	change := ""
	if q.Change != nil && q.ChangePct != nil {
		change = fmt.Sprintf(" (%+.2f, %s)", *q.Change, utils.FormatPct(*q.ChangePct))
	}
	sb.WriteString(fmt.Sprintf("  Price: %s%s\n", money(q.Price), change))
	if q.Low != nil || q.High != nil {
		sb.WriteString(fmt.Sprintf("  Day: %s — %s", money(q.Low), money(q.High)))
		if r.Company != nil && (r.Company.WeekLow52 != nil || r.Company.WeekHigh52 != nil) {
			sb.WriteString(fmt.Sprintf(" | 52W: %s — %s", money(r.Company.WeekLow52), money(r.Company.WeekHigh52)))
		}
		sb.WriteString("\n")
	}
	if q.Volume != nil {
		sb.WriteString(fmt.Sprintf("  Volume: %s", utils.FormatShares(*q.Volume)))
		if q.LatestTradingDay != "" {
			sb.WriteString(fmt.Sprintf(" | As of: %s", q.LatestTradingDay))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(thinLine + "\n")
}

func writeRatios(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	if failed(sb, r, models.SectionRatios, "VALUATION RATIOS", thinLine) {
		return
	}
	rs := r.Ratios
	if rs == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("\n  ■ VALUATION RATIOS (FY%d)\n", rs.FiscalYear))
	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", label, value))
	}
	row("P/E", ratio(rs.PE))
	row("P/B", ratio(rs.PB))
	row("P/S", ratio(rs.PS))
	row("ROE", ratePct(rs.ROE))
	row("Debt/Equity", ratio(rs.DebtEquity))
	row("Net margin", ratePct(rs.NetMargin))
	row("Dividend yield", ratePct(rs.DividendYield))
	row("Current ratio", ratio(rs.CurrentRatio))
	row("EPS", perShare(rs.EPS))
	row("Book value / share", perShare(rs.BookValue))
	sb.WriteString(thinLine + "\n")
}

func writeFScore(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	if failed(sb, r, models.SectionFScore, "PIOTROSKI F-SCORE", thinLine) {
		return
	}
	fs := r.FScore
	if fs == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("\n  ■ PIOTROSKI F-SCORE: %d / 9 (FY%d vs FY%d)\n", fs.Score, fs.YearsUsed[0], fs.YearsUsed[1]))
	for _, check := range fs.Checks {
		mark := "✓"
		if !check.Passed {
			mark = "✗"
		}
		if check.Detail != "" {
			sb.WriteString(fmt.Sprintf("    %s %s — %s\n", mark, check.Name, check.Detail))
		} else {
			sb.WriteString(fmt.Sprintf("    %s %s\n", mark, check.Name))
		}
	}
	sb.WriteString(thinLine + "\n")
}

func writeGrowth(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	if failed(sb, r, models.SectionGrowth, "GROWTH", thinLine) {
		return
	}
	g := r.Growth
	if g == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("\n  ■ GROWTH (%d fiscal years)\n", g.YearsSpanned))
	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", label, value))
	}
	row("Revenue CAGR", ratePct(g.RevenueCAGR))
	row("Net income CAGR", ratePct(g.NetIncomeCAGR))
	if g.RevenueYoYMean != nil {
		row("Revenue YoY", meanStddev(g.RevenueYoYMean, g.RevenueYoYStdDev))
	}
	if g.EarningsYoYMean != nil {
		row("Earnings YoY", meanStddev(g.EarningsYoYMean, g.EarningsYoYStdDev))
	}
	sb.WriteString(thinLine + "\n")
}

func writeCAPM(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	if failed(sb, r, models.SectionCAPM, "COST OF EQUITY (CAPM)", thinLine) {
		return
	}
	d := r.CostOfEquity
	if d == nil {
		return
	}
	sb.WriteString("\n  ■ COST OF EQUITY (CAPM)\n")
	sb.WriteString(fmt.Sprintf("    %-22s %s\n", "Cost of equity", utils.FormatRatePct(d.CostOfEquity)))
	sb.WriteString(fmt.Sprintf("    Risk-free %.2f%% | Market %.2f%% | Beta %.2f\n",
		d.RiskFreeRate*100, d.MarketReturn*100, d.Beta))
	sb.WriteString(thinLine + "\n")
}

func writeValuation(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	if failed(sb, r, models.SectionValuation, "DCF VALUATION", thinLine) {
		return
	}
	v := r.Valuation
	if v == nil {
		return
	}
	sb.WriteString("\n  ■ DCF VALUATION\n")
	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", label, value))
	}
	row("Base FCF", utils.FormatUSDCompact(v.BaseFCF))
	row("Growth", fmt.Sprintf("%s (%s)", utils.FormatRatePct(v.GrowthRate), v.GrowthSource))
	row("Discount", fmt.Sprintf("%s (%s)", utils.FormatRatePct(v.DiscountRate), v.DiscountSource))
	row("Terminal growth", utils.FormatRatePct(v.TerminalGrowth))
	row("Enterprise value", utils.FormatUSDCompact(v.EnterpriseValue))
	row("Net debt", money(v.NetDebt))
	row("Equity value", utils.FormatUSDCompact(v.EquityValue))
	row("Intrinsic / share", perShare(v.IntrinsicPerShare))
	if v.UpsidePct != nil {
		row("Upside vs price", utils.FormatRatePct(*v.UpsidePct))
	}
	for _, note := range v.Notes {
		sb.WriteString(fmt.Sprintf("    Note: %s\n", note))
	}
	sb.WriteString(thinLine + "\n")
}

func writeNews(sb *strings.Builder, r *models.AnalysisReport, thinLine string) {
	if failed(sb, r, models.SectionNews, "HEADLINES", thinLine) {
		return
	}
	if len(r.News) == 0 {
		return
	}
	sb.WriteString("\n  ■ HEADLINES\n")
	for _, article := range r.News {
		src := article.Source
		if src == "" {
			src = "unknown"
		}
		sb.WriteString(fmt.Sprintf("    • %s (%s, %s)\n", article.Title, src, article.PublishedAt.Format("2006-01-02")))
	}
	sb.WriteString(thinLine + "\n")
}

// failed writes the n/a marker for a section that recorded an error and
// reports whether it did so.
func failed(sb *strings.Builder, r *models.AnalysisReport, section, title, thinLine string) bool {
	se := r.SectionErr(section)
	if se == nil {
		return false
	}
	sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
	sb.WriteString(fmt.Sprintf("    n/a — %s\n", se.Message))
	sb.WriteString(thinLine + "\n")
	return true
}

// sourcesLine renders the provider attribution map as "provider (models)"
// groups, sorted for stable output.
func sourcesLine(r *models.AnalysisReport) string {
	if len(r.Sources) == 0 {
		return ""
	}
	byProvider := make(map[string][]string)
	for model, prov := range r.Sources {
		byProvider[prov] = append(byProvider[prov], model)
	}
	providers := make([]string, 0, len(byProvider))
	for prov := range byProvider {
		providers = append(providers, prov)
	}
	sort.Strings(providers)

	parts := make([]string, 0, len(providers))
	for _, prov := range providers {
		ms := byProvider[prov]
		sort.Strings(ms)
		parts = append(parts, fmt.Sprintf("%s (%s)", prov, strings.Join(ms, ", ")))
	}
	return strings.Join(parts, " | ")
}

// ════════════════════════════════════════════════════════════════════
// Formatting helpers
// ════════════════════════════════════════════════════════════════════

func money(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return utils.FormatUSDCompact(*v)
}

func perShare(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func ratio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func ratePct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return utils.FormatRatePct(*v)
}

func meanStddev(mean, stddev *float64) string {
	s := fmt.Sprintf("mean %s", utils.FormatRatePct(*mean))
	if stddev != nil {
		s += fmt.Sprintf(", stddev %.2f%%", *stddev*100)
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

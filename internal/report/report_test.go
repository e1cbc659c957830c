package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/fundalens/pkg/models"
)

func fptr(v float64) *float64 { return &v }

func fullReport() *models.AnalysisReport {
	return &models.AnalysisReport{
		RunID:       "run-1",
		Ticker:      "AAPL",
		GeneratedAt: time.Date(2025, 8, 22, 20, 0, 0, 0, time.UTC),
		Company: &models.CompanyOverview{
			Ticker:            "AAPL",
			Name:              "Apple Inc.",
			Exchange:          "NASDAQ",
			Currency:          "USD",
			Sector:            "Technology",
			Industry:          "Consumer Electronics",
			MarketCap:         fptr(3.54e12),
			SharesOutstanding: fptr(15.2e9),
			WeekHigh52:        fptr(237.49),
			WeekLow52:         fptr(164.08),
		},
		Quote: &models.EquityQuote{
			Ticker:           "AAPL",
			Price:            fptr(232.14),
			Change:           fptr(2.70),
			ChangePct:        fptr(1.18),
			High:             fptr(233.40),
			Low:              fptr(229.02),
			Volume:           fptr(56.2e6),
			LatestTradingDay: "2025-08-22",
		},
		Ratios: &models.RatioSet{
			FiscalYear:   2024,
			PE:           fptr(35.41),
			PB:           fptr(47.10),
			PS:           fptr(8.92),
			ROE:          fptr(1.6459),
			DebtEquity:   fptr(1.87),
			NetMargin:    fptr(0.2397),
			CurrentRatio: fptr(0.87),
			EPS:          fptr(6.11),
			BookValue:    fptr(4.93),
		},
		FScore: &models.FScore{
			Score:     6,
			YearsUsed: [2]int{2024, 2023},
			Checks: []models.FScoreCheck{
				{Name: "Positive net income", Passed: true},
				{Name: "Lower leverage", Passed: false, Detail: "long-term debt ratio rose"},
			},
		},
		Growth: &models.GrowthRates{
			RevenueCAGR:   fptr(0.1487),
			NetIncomeCAGR: fptr(0.1832),
			YearsSpanned:  4,
		},
		CostOfEquity: &models.DiscountRate{
			CostOfEquity: 0.10,
			RiskFreeRate: 0.04,
			MarketReturn: 0.09,
			Beta:         1.2,
		},
		Valuation: &models.DCFValuation{
			BaseFCF:           108.8e9,
			GrowthRate:        0.1487,
			GrowthSource:      models.GrowthFromCAGR,
			DiscountRate:      0.10,
			DiscountSource:    models.RateFromCAPM,
			TerminalGrowth:    0.02,
			EnterpriseValue:   1.94e12,
			NetDebt:           fptr(76.7e9),
			EquityValue:       1.86e12,
			SharesOutstanding: fptr(15.2e9),
			IntrinsicPerShare: fptr(122.57),
			UpsidePct:         fptr(-0.4720),
		},
		News: []models.NewsArticle{
			{Title: "Apple unveils a new lineup", Source: "Yahoo Finance", PublishedAt: time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)},
		},
		Sources: map[string]string{
			"IncomeStatement": "alphavantage",
			"EquityQuote":     "yahoo",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"", FormatText, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTextFullReport(t *testing.T) {
	out := RenderText(fullReport())

	wants := []string{
		"FUNDAMENTAL ANALYSIS — Apple Inc. (AAPL)",
		"Run: run-1",
		"Sector: Technology | Industry: Consumer Electronics",
		"Price: $232.14 (+2.70, +1.18%)",
		"52W: $164.08 — $237.49",
		"■ VALUATION RATIOS (FY2024)",
		"35.41",
		"+164.59%", // ROE
		"■ PIOTROSKI F-SCORE: 6 / 9 (FY2024 vs FY2023)",
		"✓ Positive net income",
		"✗ Lower leverage — long-term debt ratio rose",
		"■ GROWTH (4 fiscal years)",
		"+14.87%",
		"■ COST OF EQUITY (CAPM)",
		"+10.00%",
		"■ DCF VALUATION",
		"(revenue_cagr)",
		"(capm)",
		"$122.57",
		"-47.20%",
		"■ HEADLINES",
		"• Apple unveils a new lineup (Yahoo Finance, 2025-08-20)",
		"Sources: alphavantage (IncomeStatement) | yahoo (EquityQuote)",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if strings.Contains(out, "n/a — ") {
		t.Error("unexpected section error marker in a clean report")
	}
}

func TestRenderTextSectionError(t *testing.T) {
	r := &models.AnalysisReport{
		Ticker:      "AAPL",
		GeneratedAt: time.Now(),
		Quote:       &models.EquityQuote{Ticker: "AAPL", Price: fptr(150)},
		Errors: []models.SectionError{
			{Section: models.SectionRatios, Kind: "MissingData", Message: "missing data: annual statements (ratio calculation)"},
		},
	}
	out := RenderText(r)

	if !strings.Contains(out, "■ VALUATION RATIOS") {
		t.Error("failed section header missing")
	}
	if !strings.Contains(out, "n/a — missing data: annual statements (ratio calculation)") {
		t.Errorf("error marker missing:\n%s", out)
	}
}

func TestRenderTextUndefinedRatio(t *testing.T) {
	r := &models.AnalysisReport{
		Ticker:      "LOSSY",
		GeneratedAt: time.Now(),
		Ratios:      &models.RatioSet{FiscalYear: 2024, PB: fptr(2.5)}, // P/E undefined
	}
	out := RenderText(r)

	var peLine, pbLine string
	for _, ln := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(ln, "P/E"):
			peLine = strings.TrimSpace(ln)
		case strings.Contains(ln, "P/B"):
			pbLine = strings.TrimSpace(ln)
		}
	}
	if !strings.HasSuffix(peLine, "n/a") {
		t.Errorf("P/E line = %q, want n/a marker", peLine)
	}
	if !strings.HasSuffix(pbLine, "2.50") {
		t.Errorf("P/B line = %q, want 2.50", pbLine)
	}
}

func TestRenderTextOmitsUnattemptedSections(t *testing.T) {
	r := &models.AnalysisReport{
		Ticker:      "AAPL",
		GeneratedAt: time.Now(),
		Quote:       &models.EquityQuote{Ticker: "AAPL", Price: fptr(150)},
	}
	out := RenderText(r)

	for _, header := range []string{"■ VALUATION RATIOS", "■ PIOTROSKI", "■ GROWTH", "■ DCF VALUATION", "■ HEADLINES"} {
		if strings.Contains(out, header) {
			t.Errorf("unexpected section %q in minimal report", header)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(fullReport())
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	var decoded models.AnalysisReport
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", decoded.Ticker)
	}
	if decoded.Valuation == nil || decoded.Valuation.IntrinsicPerShare == nil {
		t.Fatal("valuation did not round-trip")
	}
	if !strings.Contains(out, "\n  \"ticker\"") {
		t.Error("expected indented JSON")
	}
}

func TestRenderDispatch(t *testing.T) {
	r := fullReport()

	out, err := Render(r, FormatJSON)
	if err != nil {
		t.Fatalf("Render json failed: %v", err)
	}
	if !strings.HasPrefix(out, "{") {
		t.Error("json output should start with {")
	}

	out, err = Render(r, FormatText)
	if err != nil {
		t.Fatalf("Render text failed: %v", err)
	}
	if !strings.Contains(out, "FUNDAMENTAL ANALYSIS") {
		t.Error("text output missing header")
	}

	if _, err := Render(r, Format("csv")); err == nil {
		t.Error("expected error for unknown format")
	}
}

package utils

import (
	"strings"
)

// Common ticker aliases: former symbols and company names people type.
var tickerAliases = map[string]string{
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"FACEBOOK":  "META",
	"FB":        "META",
	"BERKSHIRE": "BRK.B",
	"APPLE":     "AAPL",
	"MICROSOFT": "MSFT",
	"AMAZON":    "AMZN",
	"NVIDIA":    "NVDA",
	"TESLA":     "TSLA",
	"NETFLIX":   "NFLX",
	"INTEL":     "INTC",
	"DISNEY":    "DIS",
	"BOEING":    "BA",
	"WALMART":   "WMT",
	"EXXON":     "XOM",
	"COSTCO":    "COST",
}

// NormalizeTicker normalizes a user-input ticker to the canonical US format.
// It handles aliases, uppercasing, whitespace, and the $ chat prefix.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ToYahooTicker converts a ticker to Yahoo Finance symbol format: class
// shares use a dash instead of a dot (BRK.B -> BRK-B).
func ToYahooTicker(ticker string) string {
	return strings.ReplaceAll(NormalizeTicker(ticker), ".", "-")
}

// FromYahooTicker converts a Yahoo Finance symbol back to the canonical
// dotted class-share form (BRK-B -> BRK.B).
func FromYahooTicker(yahooTicker string) string {
	return strings.ReplaceAll(strings.ToUpper(yahooTicker), "-", ".")
}

// IsValidTicker reports whether a normalized ticker looks like a US equity
// symbol: 1-6 letters with an optional single-letter class suffix.
func IsValidTicker(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	base, class, hasClass := strings.Cut(ticker, ".")
	if hasClass && len(class) != 1 {
		return false
	}
	if len(base) < 1 || len(base) > 6 {
		return false
	}
	for _, r := range base + class {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

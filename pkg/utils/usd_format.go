// Package utils provides common utility functions for fundalens.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatUSD formats a number as US dollars with thousands separators,
// e.g., 1234567.89 -> "$1,234,567.89".
func FormatUSD(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	intPart := int64(amount)
	decPart := amount - float64(intPart)

	formatted := groupThousands(intPart)

	decStr := fmt.Sprintf("%.2f", decPart)
	formatted += decStr[1:] // skip the leading "0"

	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatUSDCompact formats a number in compact notation.
// e.g., 1927345 -> "$1.93M", 2847000000000 -> "$2.85T"
func FormatUSDCompact(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	prefix := "$"
	if negative {
		prefix = "-$"
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%sT", prefix, formatWithDecimals(amount/1e12))
	case amount >= 1e9:
		return fmt.Sprintf("%s%sB", prefix, formatWithDecimals(amount/1e9))
	case amount >= 1e6:
		return fmt.Sprintf("%s%sM", prefix, formatWithDecimals(amount/1e6))
	case amount >= 1e3:
		return fmt.Sprintf("%s%sK", prefix, formatWithDecimals(amount/1e3))
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 -> "+2.45%", -1.23 -> "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatRatePct formats a fractional rate as a signed percentage.
// e.g., 0.1487 -> "+14.87%"
func FormatRatePct(rate float64) string {
	return FormatPct(rate * 100)
}

// FormatShares formats a share count in compact notation without a
// currency prefix. e.g., 15204137000 -> "15.2B"
func FormatShares(shares float64) string {
	switch {
	case shares >= 1e12:
		return fmt.Sprintf("%.1fT", shares/1e12)
	case shares >= 1e9:
		return fmt.Sprintf("%.1fB", shares/1e9)
	case shares >= 1e6:
		return fmt.Sprintf("%.1fM", shares/1e6)
	case shares >= 1e3:
		return fmt.Sprintf("%.1fK", shares/1e3)
	default:
		return fmt.Sprintf("%.0f", shares)
	}
}

// groupThousands formats an integer with comma grouping (groups of 3).
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

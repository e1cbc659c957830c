package utils

import (
	"time"
)

// DateLayout is the wire format for statement dates ("fiscalDateEnding").
const DateLayout = "2006-01-02"

// ParseDate parses a "2006-01-02" date string in UTC.
func ParseDate(dateStr string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, dateStr, time.UTC)
}

// FormatDate formats a time.Time to "2006-01-02" in UTC.
func FormatDate(t time.Time) string {
	return t.In(time.UTC).Format(DateLayout)
}

// FiscalYearOf labels a fiscal period by the calendar year its end date
// falls in, the convention statement providers use. Returns 0 when the
// date string cannot be parsed.
func FiscalYearOf(fiscalDateEnding string) int {
	t, err := ParseDate(fiscalDateEnding)
	if err != nil {
		return 0
	}
	return t.Year()
}

// ElapsedFiscalYears counts whole fiscal years between two period end
// dates by year label: 2019-09-28 to 2024-09-28 spans 5 years.
func ElapsedFiscalYears(startDateEnding, endDateEnding string) int {
	start := FiscalYearOf(startDateEnding)
	end := FiscalYearOf(endDateEnding)
	if start == 0 || end == 0 {
		return 0
	}
	return end - start
}

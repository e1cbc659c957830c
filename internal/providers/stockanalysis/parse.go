package stockanalysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// saTable is one parsed statements table: the fiscal year of each value
// column and the labeled data rows, cells aligned with the columns. Cell
// values are already scaled to absolute dollars.
type saTable struct {
	years []int // 0 for TTM / Current columns
	scale float64
	rows  []saRow
}

type saRow struct {
	label string
	cells []*float64
}

func parseStatementsTable(doc *goquery.Document, symbol string) (*saTable, error) {
	table := doc.Find(`table[data-test="financials"]`).First()
	if table.Length() == 0 {
		table = doc.Find("main table").First()
	}
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("stockanalysis %s: no statements table in page", symbol)
	}

	t := &saTable{scale: pageScale(doc)}

	// Header row: first column holds row labels, the rest are periods.
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return
		}
		t.years = append(t.years, fiscalYearFrom(strings.TrimSpace(th.Text())))
	})
	if len(t.years) == 0 {
		return nil, fmt.Errorf("stockanalysis %s: statements table has no period columns", symbol)
	}

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		r := saRow{
			label: strings.TrimSpace(row.Find("td:first-child").Text()),
			cells: make([]*float64, len(t.years)),
		}
		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i == 0 || i-1 >= len(t.years) {
				return
			}
			v, selfScaled := parseNumber(cell.Text())
			if v != nil && !selfScaled {
				*v *= t.scale
			}
			r.cells[i-1] = v
		})
		t.rows = append(t.rows, r)
	})

	return t, nil
}

// yearColumns returns the indexes of annual columns, dropping TTM and
// Current columns, which carry no fiscal year.
func (t *saTable) yearColumns() []int {
	cols := make([]int, 0, len(t.years))
	for i, y := range t.years {
		if y != 0 {
			cols = append(cols, i)
		}
	}
	return cols
}

// pageScale resolves the unit for plain numeric cells from the page's unit
// note. Millions is the site default.
func pageScale(doc *goquery.Document) float64 {
	text := strings.ToLower(doc.Text())
	switch {
	case strings.Contains(text, "in billions"):
		return 1e9
	case strings.Contains(text, "in thousands"):
		return 1e3
	default:
		return 1e6
	}
}

// fiscalYearFrom extracts the four-digit year from a column header such as
// "FY 2024" or "2024". Headers without one ("TTM", "Current") yield 0.
func fiscalYearFrom(header string) int {
	for i := 0; i+4 <= len(header); i++ {
		if i > 0 && isDigit(header[i-1]) {
			continue
		}
		if !isDigit(header[i]) || !isDigit(header[i+1]) || !isDigit(header[i+2]) || !isDigit(header[i+3]) {
			continue
		}
		if i+4 < len(header) && isDigit(header[i+4]) {
			continue
		}
		year, _ := strconv.Atoi(header[i : i+4])
		if year >= 1900 && year < 2200 {
			return year
		}
	}
	return 0
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseNumber normalizes one table cell. Placeholder cells ("-", "—",
// "n/a") and unparseable text map to nil, never 0. selfScaled reports that
// the cell carried its own unit (a % or K/M/B/T suffix) and must not be
// multiplied by the page scale.
func parseNumber(s string) (v *float64, selfScaled bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "—", "–", "n/a", "na":
		return nil, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSuffix(s, "%")
		selfScaled = true
	case strings.HasSuffix(s, "T"):
		s, mult, selfScaled = strings.TrimSuffix(s, "T"), 1e12, true
	case strings.HasSuffix(s, "B"):
		s, mult, selfScaled = strings.TrimSuffix(s, "B"), 1e9, true
	case strings.HasSuffix(s, "M"):
		s, mult, selfScaled = strings.TrimSuffix(s, "M"), 1e6, true
	case strings.HasSuffix(s, "K"):
		s, mult, selfScaled = strings.TrimSuffix(s, "K"), 1e3, true
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, false
	}
	f *= mult
	if neg {
		f = -f
	}
	return &f, selfScaled
}

// skipRow reports rows that never map to statement fields: ratios, growth
// lines, per-share figures, and derived totals the models compute
// themselves.
func skipRow(label string) bool {
	for _, marker := range []string{
		"Growth", "Margin", "Per Share", "EPS", "Tax Rate",
		"Shares", "Free Cash Flow", "Net Cash", "Working Capital", "Book Value",
	} {
		if strings.Contains(label, marker) {
			return true
		}
	}
	return false
}

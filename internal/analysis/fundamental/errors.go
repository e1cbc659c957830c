package fundamental

import (
	"errors"
	"fmt"
)

// Error kind labels, used for section error attribution in reports.
const (
	KindMissingData           = "MissingData"
	KindInsufficientHistory   = "InsufficientHistory"
	KindUndefinedGrowth       = "UndefinedGrowth"
	KindInvalidTerminalGrowth = "InvalidTerminalGrowth"
	KindDivisionByZero        = "DivisionByZero"
)

// ErrMissingData is returned when a field required by a calculation is
// absent from the fetched data.
type ErrMissingData struct {
	Field   string // e.g., "operating_cash_flow"
	Context string // e.g., "cash flow statement FY2024"
}

func (e *ErrMissingData) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("missing data: %s", e.Field)
	}
	return fmt.Sprintf("missing data: %s in %s", e.Field, e.Context)
}

// ErrInsufficientHistory is returned when fewer statement years are
// available than a calculation requires.
type ErrInsufficientHistory struct {
	Need int
	Have int
	Data string // e.g., "aligned annual statements"
}

func (e *ErrInsufficientHistory) Error() string {
	return fmt.Sprintf("insufficient history: need %d years of %s, have %d", e.Need, e.Data, e.Have)
}

// ErrUndefinedGrowth is returned when a growth rate cannot be computed:
// a non-positive base value, or fewer than 2 usable years.
type ErrUndefinedGrowth struct {
	Series string // e.g., "revenue"
	Reason string
}

func (e *ErrUndefinedGrowth) Error() string {
	return fmt.Sprintf("undefined growth for %s: %s", e.Series, e.Reason)
}

// ErrInvalidTerminalGrowth is returned when the terminal growth rate is not
// strictly below the discount rate, which would make the perpetuity diverge.
type ErrInvalidTerminalGrowth struct {
	Terminal float64
	Discount float64
}

func (e *ErrInvalidTerminalGrowth) Error() string {
	return fmt.Sprintf("terminal growth %.4f must be below discount rate %.4f", e.Terminal, e.Discount)
}

// ErrDivisionByZero is returned when a denominator evaluates to zero.
// Per-metric outputs become undefined rather than NaN.
type ErrDivisionByZero struct {
	Denominator string // e.g., "shares outstanding"
}

func (e *ErrDivisionByZero) Error() string {
	return fmt.Sprintf("division by zero: %s is zero", e.Denominator)
}

// ErrKind classifies a calculator error into its taxonomy label. Unknown
// errors report as "Error".
func ErrKind(err error) string {
	var (
		missing   *ErrMissingData
		history   *ErrInsufficientHistory
		growth    *ErrUndefinedGrowth
		terminal  *ErrInvalidTerminalGrowth
		divByZero *ErrDivisionByZero
	)
	switch {
	case errors.As(err, &missing):
		return KindMissingData
	case errors.As(err, &history):
		return KindInsufficientHistory
	case errors.As(err, &growth):
		return KindUndefinedGrowth
	case errors.As(err, &terminal):
		return KindInvalidTerminalGrowth
	case errors.As(err, &divByZero):
		return KindDivisionByZero
	default:
		return "Error"
	}
}

package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-09-28")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	want := time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate(2024-09-28) = %v, want %v", got, want)
	}

	if _, err := ParseDate("28/09/2024"); err == nil {
		t.Error("ParseDate(28/09/2024) expected error, got nil")
	}
}

func TestFiscalYearOf(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"2024-09-28", 2024},
		{"2025-01-26", 2025}, // January fiscal year-end labels the new year
		{"2022-12-31", 2022},
		{"not-a-date", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FiscalYearOf(tt.input); got != tt.want {
				t.Errorf("FiscalYearOf(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestElapsedFiscalYears(t *testing.T) {
	if got := ElapsedFiscalYears("2019-09-28", "2024-09-28"); got != 5 {
		t.Errorf("ElapsedFiscalYears(2019..2024) = %d, want 5", got)
	}
	if got := ElapsedFiscalYears("2024-09-28", "2024-09-28"); got != 0 {
		t.Errorf("ElapsedFiscalYears(same year) = %d, want 0", got)
	}
	if got := ElapsedFiscalYears("bad", "2024-09-28"); got != 0 {
		t.Errorf("ElapsedFiscalYears(bad input) = %d, want 0", got)
	}
}

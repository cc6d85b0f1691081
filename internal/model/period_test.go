package model

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"2024-01", NewPeriod(2024, time.January), false},
		{"2024-12-01", NewPeriod(2024, time.December), false},
		{" 2015-03 ", NewPeriod(2015, time.March), false},
		{"2024-13", Period{}, true},
		{"2024/01", Period{}, true},
		{"", Period{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePeriod(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePeriod(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseBLSPeriod(t *testing.T) {
	p, err := ParseBLSPeriod("2024", "M02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.String() != "2024-02" {
		t.Errorf("expected 2024-02, got %s", p)
	}
	for _, bad := range []string{"M13", "M00", "Q01", "A01", "M1"} {
		if _, err := ParseBLSPeriod("2024", bad); err == nil {
			t.Errorf("period %q: expected error", bad)
		}
	}
	if _, err := ParseBLSPeriod("20x4", "M01"); err == nil {
		t.Error("expected error for bad year")
	}
}

func TestPeriodArithmetic(t *testing.T) {
	jan := NewPeriod(2024, time.January)
	if got := jan.Prev(); got != NewPeriod(2023, time.December) {
		t.Errorf("Prev: got %v", got)
	}
	if got := jan.AddMonths(11); got != NewPeriod(2024, time.December) {
		t.Errorf("AddMonths(11): got %v", got)
	}
	if got := jan.AddMonths(12); got != NewPeriod(2025, time.January) {
		t.Errorf("AddMonths(12): got %v", got)
	}
	if got := jan.AddMonths(-25); got != NewPeriod(2021, time.December) {
		t.Errorf("AddMonths(-25): got %v", got)
	}
	if !jan.Before(jan.Next()) || jan.Next().Before(jan) {
		t.Error("Before ordering broken")
	}
	if jan.Compare(jan) != 0 || jan.Compare(jan.Next()) != -1 || jan.Next().Compare(jan) != 1 {
		t.Error("Compare broken")
	}
	if jan.Label() != "Jan 2024" {
		t.Errorf("Label: got %q", jan.Label())
	}
}

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod returns the period for the given year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod accepts "YYYY-MM" and the legacy "YYYY-MM-DD" form (day ignored).
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	layout := "2006-01"
	if len(s) == len("2006-01-02") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// ParseBLSPeriod converts a BLS (year, "Mnn") pair. M13 is the annual average and is rejected.
func ParseBLSPeriod(year, period string) (Period, error) {
	if len(period) != 3 || period[0] != 'M' {
		return Period{}, fmt.Errorf("unsupported BLS period %q", period)
	}
	m, err := strconv.Atoi(period[1:])
	if err != nil || m < 1 || m > 12 {
		return Period{}, fmt.Errorf("unsupported BLS period %q", period)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, fmt.Errorf("parse BLS year %q: %w", year, err)
	}
	return Period{Year: y, Month: time.Month(m)}, nil
}

// String returns the canonical "YYYY-MM" form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// IsZero reports whether p is the zero period.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Index is a monotonically increasing month number, handy for ordering and distance.
func (p Period) Index() int {
	return p.Year*12 + int(p.Month) - 1
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	return p.Index() < q.Index()
}

// Compare returns -1, 0 or +1.
func (p Period) Compare(q Period) int {
	switch {
	case p.Index() < q.Index():
		return -1
	case p.Index() > q.Index():
		return 1
	default:
		return 0
	}
}

// AddMonths moves p by n months (n may be negative).
func (p Period) AddMonths(n int) Period {
	idx := p.Index() + n
	return Period{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// Next returns the following month.
func (p Period) Next() Period { return p.AddMonths(1) }

// Prev returns the preceding month.
func (p Period) Prev() Period { return p.AddMonths(-1) }

// Time returns the first instant of the month in UTC.
func (p Period) Time() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Label is the human form used on the dashboard, e.g. "Feb 2024".
func (p Period) Label() string {
	return p.Time().Format("Jan 2006")
}

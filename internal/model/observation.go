package model

import "github.com/shopspring/decimal"

// Observation is one value of a series for a month.
type Observation struct {
	SeriesID string
	Period   Period
	Value    decimal.Decimal
}

// Key identifies an observation in the dataset. At most one observation exists per key.
type Key struct {
	SeriesID string
	Period   Period
}

// Key returns the (series, period) key of o.
func (o Observation) Key() Key {
	return Key{SeriesID: o.SeriesID, Period: o.Period}
}

// Less orders observations by series id, then period.
func Less(a, b Observation) bool {
	if a.SeriesID != b.SeriesID {
		return a.SeriesID < b.SeriesID
	}
	return a.Period.Before(b.Period)
}

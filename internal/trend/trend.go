// Package trend derives headline figures from one series' observations.
// Inputs are expected in ascending period order, as dataset.Series returns them.
package trend

import (
	"errors"

	"github.com/shopspring/decimal"

	"LaborPulse/internal/model"
)

// ErrNoData is returned when a calculation has nothing to work on.
var ErrNoData = errors.New("no observations")

var hundred = decimal.NewFromInt(100)

// Latest returns the most recent observation.
func Latest(obs []model.Observation) (model.Observation, error) {
	if len(obs) == 0 {
		return model.Observation{}, ErrNoData
	}
	return obs[len(obs)-1], nil
}

// Previous returns the observation immediately before the latest one.
func Previous(obs []model.Observation) (model.Observation, error) {
	if len(obs) < 2 {
		return model.Observation{}, ErrNoData
	}
	return obs[len(obs)-2], nil
}

// Change returns the point change between the two most recent observations.
func Change(obs []model.Observation) (decimal.Decimal, error) {
	last, err := Latest(obs)
	if err != nil {
		return decimal.Zero, err
	}
	prev, err := Previous(obs)
	if err != nil {
		return decimal.Zero, err
	}
	return last.Value.Sub(prev.Value), nil
}

// PercentChange returns the change between the two most recent observations
// relative to the earlier one, in percent, rounded to two places.
func PercentChange(obs []model.Observation) (decimal.Decimal, error) {
	prev, err := Previous(obs)
	if err != nil {
		return decimal.Zero, err
	}
	if prev.Value.IsZero() {
		return decimal.Zero, errors.New("previous value is zero")
	}
	diff, err := Change(obs)
	if err != nil {
		return decimal.Zero, err
	}
	return diff.Div(prev.Value).Mul(hundred).Round(2), nil
}

// Window returns the observations within the last months calendar months,
// counted back from the latest observation's period inclusive. Gaps in the
// series do not widen the window.
func Window(obs []model.Observation, months int) []model.Observation {
	if len(obs) == 0 || months <= 0 {
		return nil
	}
	from := obs[len(obs)-1].Period.AddMonths(-(months - 1))
	start := len(obs)
	for start > 0 && !obs[start-1].Period.Before(from) {
		start--
	}
	return obs[start:]
}

// Range scans the last months of observations and returns the high and low.
func Range(obs []model.Observation, months int) (high, low decimal.Decimal, err error) {
	w := Window(obs, months)
	if len(w) == 0 {
		return decimal.Zero, decimal.Zero, ErrNoData
	}
	high, low = w[0].Value, w[0].Value
	for _, o := range w[1:] {
		if o.Value.GreaterThan(high) {
			high = o.Value
		}
		if o.Value.LessThan(low) {
			low = o.Value
		}
	}
	return high, low, nil
}

// Position returns where current sits within [low, high] (0.0~1.0).
func Position(current, high, low decimal.Decimal) (float64, error) {
	if high.Equal(low) {
		return 0.5, nil
	}
	if high.LessThan(low) {
		return 0, errors.New("high must be >= low")
	}
	pos, _ := current.Sub(low).Div(high.Sub(low)).Float64()
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

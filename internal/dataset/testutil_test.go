package dataset

import (
	"testing"

	"github.com/shopspring/decimal"

	"LaborPulse/internal/model"
)

func obs(t *testing.T, series, period, value string) model.Observation {
	t.Helper()
	p, err := model.ParsePeriod(period)
	if err != nil {
		t.Fatalf("bad period %q: %v", period, err)
	}
	return model.Observation{SeriesID: series, Period: p, Value: decimal.RequireFromString(value)}
}

// fromObs builds a dataset the way a first merge would.
func fromObs(obs []model.Observation) *Dataset {
	ds, _ := Merge(nil, obs)
	return ds
}

// Package dataset holds the persisted collection of observations and the
// merge that appends net-new rows to it.
package dataset

import (
	"sort"

	"LaborPulse/internal/model"
)

// Dataset is an ordered, duplicate-free collection of observations.
type Dataset struct {
	obs  []model.Observation
	keys map[model.Key]struct{}
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{keys: make(map[model.Key]struct{})}
}

func (d *Dataset) add(o model.Observation) bool {
	k := o.Key()
	if _, ok := d.keys[k]; ok {
		return false
	}
	d.keys[k] = struct{}{}
	d.obs = append(d.obs, o)
	return true
}

func (d *Dataset) sort() {
	sort.SliceStable(d.obs, func(i, j int) bool { return model.Less(d.obs[i], d.obs[j]) })
}

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.obs) }

// Has reports whether an observation with key k exists.
func (d *Dataset) Has(k model.Key) bool {
	_, ok := d.keys[k]
	return ok
}

// Observations returns a copy of all observations, ordered by series then period.
func (d *Dataset) Observations() []model.Observation {
	out := make([]model.Observation, len(d.obs))
	copy(out, d.obs)
	return out
}

// Series returns the observations of one series in chronological order.
func (d *Dataset) Series(code string) []model.Observation {
	var out []model.Observation
	for _, o := range d.obs {
		if o.SeriesID == code {
			out = append(out, o)
		}
	}
	return out
}

// SeriesIDs returns the distinct series ids present, sorted.
func (d *Dataset) SeriesIDs() []string {
	var ids []string
	for i, o := range d.obs {
		if i == 0 || d.obs[i-1].SeriesID != o.SeriesID {
			ids = append(ids, o.SeriesID)
		}
	}
	return ids
}

// LatestPeriod returns the most recent period across all series, or the zero period.
func (d *Dataset) LatestPeriod() model.Period {
	var latest model.Period
	for _, o := range d.obs {
		if latest.Before(o.Period) {
			latest = o.Period
		}
	}
	return latest
}

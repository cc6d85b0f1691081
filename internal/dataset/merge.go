package dataset

import (
	"sort"

	"LaborPulse/internal/model"
)

// Merge returns a new dataset holding every observation of ds plus each incoming
// observation whose (series, period) key is not already present. Existing
// observations are never replaced, so a revised value for a recorded month is
// ignored. The second return value lists the observations actually added, in
// dataset order.
func Merge(ds *Dataset, incoming []model.Observation) (*Dataset, []model.Observation) {
	out := New()
	if ds != nil {
		for _, o := range ds.obs {
			out.add(o)
		}
	}
	var added []model.Observation
	for _, o := range incoming {
		if out.add(o) {
			added = append(added, o)
		}
	}
	out.sort()
	sort.SliceStable(added, func(i, j int) bool { return model.Less(added[i], added[j]) })
	return out, added
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LaborPulse/internal/model"
)

func TestMerge_AppendsOnlyNewPeriods(t *testing.T) {
	existing := fromObs([]model.Observation{obs(t, "UNRATE", "2024-01", "3.7")})
	incoming := []model.Observation{
		obs(t, "UNRATE", "2024-01", "3.7"),
		obs(t, "UNRATE", "2024-02", "3.9"),
	}

	merged, added := Merge(existing, incoming)

	require.Len(t, added, 1)
	assert.Equal(t, "2024-02", added[0].Period.String())
	got := merged.Observations()
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01", got[0].Period.String())
	assert.Equal(t, "3.7", got[0].Value.String())
	assert.Equal(t, "2024-02", got[1].Period.String())
	assert.Equal(t, "3.9", got[1].Value.String())
	// the input dataset is untouched
	assert.Equal(t, 1, existing.Len())
}

func TestMerge_IgnoresRevisions(t *testing.T) {
	existing := fromObs([]model.Observation{obs(t, "LNS14000000", "2024-01", "3.7")})
	merged, added := Merge(existing, []model.Observation{obs(t, "LNS14000000", "2024-01", "3.8")})

	assert.Empty(t, added)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "3.7", merged.Observations()[0].Value.String())
}

func TestMerge_DeduplicatesWithinIncoming(t *testing.T) {
	merged, added := Merge(New(), []model.Observation{
		obs(t, "A", "2024-03", "1"),
		obs(t, "A", "2024-03", "2"),
	})
	require.Len(t, added, 1)
	assert.Equal(t, "1", added[0].Value.String())
	assert.Equal(t, 1, merged.Len())
}

func TestMerge_OrdersBySeriesThenPeriod(t *testing.T) {
	existing := fromObs([]model.Observation{
		obs(t, "B", "2024-01", "10"),
		obs(t, "A", "2024-02", "2"),
	})
	// out-of-order response, including a gap filled before the latest month
	incoming := []model.Observation{
		obs(t, "B", "2024-03", "12"),
		obs(t, "A", "2024-01", "1"),
		obs(t, "B", "2024-02", "11"),
	}
	merged, added := Merge(existing, incoming)
	require.Len(t, added, 3)

	got := merged.Observations()
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.SeriesID == cur.SeriesID {
			assert.True(t, prev.Period.Before(cur.Period), "series %s out of order at %d", cur.SeriesID, i)
		} else {
			assert.Less(t, prev.SeriesID, cur.SeriesID)
		}
	}
	assert.Equal(t, []string{"A", "B"}, merged.SeriesIDs())
}

func TestMerge_Idempotent(t *testing.T) {
	existing := fromObs([]model.Observation{obs(t, "A", "2024-01", "1")})
	incoming := []model.Observation{obs(t, "A", "2024-02", "2"), obs(t, "B", "2024-02", "5")}

	once, _ := Merge(existing, incoming)
	twice, added := Merge(once, incoming)

	assert.Empty(t, added)
	assert.Equal(t, once.Observations(), twice.Observations())
}

func TestMerge_NoDuplicateKeysAfterManyRuns(t *testing.T) {
	ds := New()
	batch := []model.Observation{
		obs(t, "A", "2024-01", "1"),
		obs(t, "A", "2024-02", "2"),
		obs(t, "B", "2024-01", "3"),
	}
	for i := 0; i < 5; i++ {
		ds, _ = Merge(ds, batch)
	}
	seen := map[model.Key]int{}
	for _, o := range ds.Observations() {
		seen[o.Key()]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "key %v", k)
	}
	assert.Equal(t, 3, ds.Len())
}

func TestDataset_Accessors(t *testing.T) {
	ds := fromObs([]model.Observation{
		obs(t, "A", "2024-02", "2"),
		obs(t, "A", "2024-01", "1"),
		obs(t, "B", "2024-05", "9"),
	})
	assert.Equal(t, "2024-05", ds.LatestPeriod().String())

	a := ds.Series("A")
	require.Len(t, a, 2)
	assert.Equal(t, "2024-01", a[0].Period.String())

	assert.Empty(t, ds.Series("missing"))
	assert.True(t, ds.Has(model.Key{SeriesID: "B", Period: model.NewPeriod(2024, 5)}))
	assert.True(t, New().LatestPeriod().IsZero())
}

package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = 7

var testNow = time.Date(2023, 9, 24, 21, 0, 0, 0, time.UTC)

func point(alt float64, at *time.Time) PointRecord {
	return PointRecord{Lat: 30, Lon: -95, Altitude: alt, Time: at, Tier: Classify(alt)}
}

func minutesAgo(m int) *time.Time {
	t := testNow.Add(-time.Duration(m) * time.Minute)
	return &t
}

func TestCompose_EndToEnd(t *testing.T) {
	res := Normalize([]RawRow{
		{"lat": "30.0", "lon": "-95.0", "alt": "11000"},
		{"lat": "30.1", "lon": "-95.1", "alt": "15000"},
	}, NormalizeOptions{})

	visible, summary := Compose(res.Points, DefaultFilterState(), testNow, testSeed)

	require.Len(t, visible, 2)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Visible)
	assert.Equal(t, 1, summary.PerTier[TierLow])
	assert.Equal(t, 1, summary.PerTier[TierHigh])
	assert.Equal(t, 0, summary.PerTier[TierMedium])
	assert.Equal(t, 0, summary.PerTier[TierExtreme])
}

func TestCompose_TierPredicate(t *testing.T) {
	points := []PointRecord{point(11000, nil), point(12000, nil), point(13500, nil), point(17000, nil)}

	state := DefaultFilterState()
	state.Tier = SelectTier(TierMedium)
	visible, summary := Compose(points, state, testNow, testSeed)

	require.Len(t, visible, 2)
	assert.Equal(t, 12000.0, visible[0].Altitude)
	assert.Equal(t, 13500.0, visible[1].Altitude)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.PerTier[TierMedium])
	assert.Len(t, summary.PerTier, 4)
}

func TestCompose_RecencyWindow(t *testing.T) {
	points := []PointRecord{
		point(11000, minutesAgo(10)),
		point(11000, minutesAgo(30)), // exact cutoff
		point(11000, minutesAgo(31)),
		point(11000, nil),
	}

	state := DefaultFilterState()
	state.RecencyMinutes = 30
	visible, _ := Compose(points, state, testNow, testSeed)

	require.Len(t, visible, 2)
	assert.True(t, visible[0].Time.Equal(*minutesAgo(10)))
	assert.True(t, visible[1].Time.Equal(*minutesAgo(30)))
}

func TestCompose_NullTimestampPolicy(t *testing.T) {
	points := []PointRecord{point(11000, nil)}

	state := DefaultFilterState()
	state.RecencyMinutes = 30
	visible, _ := Compose(points, state, testNow, testSeed)
	assert.Empty(t, visible)

	state.RecencyMinutes = 0
	visible, _ = Compose(points, state, testNow, testSeed)
	assert.Len(t, visible, 1)

	state.RecencyMinutes = -5
	visible, _ = Compose(points, state, testNow, testSeed)
	assert.Len(t, visible, 1)
}

func TestCompose_Downsample(t *testing.T) {
	points := make([]PointRecord, 100)
	for i := range points {
		points[i] = PointRecord{Lat: float64(i), Lon: -95, Altitude: float64(10000 + i*100)}
		points[i].Tier = Classify(points[i].Altitude)
	}

	state := DefaultFilterState()
	state.DownsampleCap = 10

	first, summary := Compose(points, state, testNow, testSeed)
	require.Len(t, first, 10)
	assert.Equal(t, 100, summary.Total)
	assert.Equal(t, 10, summary.Visible)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Lat, first[i].Lat, "sample must keep ingestion order")
	}

	second, _ := Compose(points, state, testNow, testSeed)
	assert.Equal(t, first, second)

	other, _ := Compose(points, state, testNow, testSeed+1)
	assert.NotEqual(t, first, other)
}

func TestCompose_DownsampleBelowCap(t *testing.T) {
	points := []PointRecord{point(11000, nil), point(15000, nil)}
	state := DefaultFilterState()
	state.DownsampleCap = 2

	visible, _ := Compose(points, state, testNow, testSeed)
	assert.Equal(t, points, visible)
}

func TestCompose_Idempotent(t *testing.T) {
	points := make([]PointRecord, 0, 50)
	for i := 0; i < 50; i++ {
		points = append(points, point(float64(9000+i*200), minutesAgo(i)))
	}
	states := []FilterState{
		DefaultFilterState(),
		{Tier: SelectTier(TierHigh), RecencyMinutes: 40},
		{Tier: SelectAll, DownsampleCap: 7},
		{Tier: SelectTier(TierLow), RecencyMinutes: 5, DownsampleCap: 3},
	}

	for i, state := range states {
		t.Run(fmt.Sprintf("state-%d", i), func(t *testing.T) {
			v1, s1 := Compose(points, state, testNow, testSeed)
			v2, s2 := Compose(points, state, testNow, testSeed)
			assert.Equal(t, v1, v2)
			assert.Equal(t, s1, s2)
		})
	}
}

func TestCompose_AggregateConsistency(t *testing.T) {
	points := make([]PointRecord, 0, 80)
	for i := 0; i < 80; i++ {
		var at *time.Time
		if i%3 != 0 {
			at = minutesAgo(i)
		}
		points = append(points, point(float64(8000+i*130), at))
	}

	selectors := []TierSelector{SelectAll, "low", "medium", "high", "extreme"}
	for _, sel := range selectors {
		for _, recency := range []int{0, 15, 60} {
			for _, limit := range []int{0, 5, 500} {
				state := FilterState{Tier: sel, RecencyMinutes: recency, DownsampleCap: limit}
				visible, summary := Compose(points, state, testNow, testSeed)

				sum := 0
				for _, n := range summary.PerTier {
					sum += n
				}
				assert.Equal(t, summary.Visible, sum)
				assert.Equal(t, len(visible), summary.Visible)
				assert.LessOrEqual(t, summary.Visible, summary.Total)
				assert.Equal(t, len(points), summary.Total)
			}
		}
	}
}

func TestCompose_DoesNotMutateCollection(t *testing.T) {
	points := []PointRecord{point(17000, nil), point(11000, nil), point(15000, nil)}
	snapshot := append([]PointRecord(nil), points...)

	state := DefaultFilterState()
	state.DownsampleCap = 2
	_, _ = Compose(points, state, testNow, testSeed)

	assert.Equal(t, snapshot, points)
}

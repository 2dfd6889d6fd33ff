package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	rows := []RawRow{
		{"lat": "30.0", "lon": "-95.0", "alt": "11000"},
		{"lat": "30.1", "lon": "-95.1", "alt": "15000", "time": "1695589200000"},
		{"lat": "abc", "lon": "-95.1", "alt": "15000"},
		{"lat": "30.2", "lon": "", "alt": "15000"},
		{"lat": "30.3", "lon": "-95.3", "alt": "NaN"},
		{"lat": "30.4", "lon": "-95.4", "alt": "+Inf"},
		{"Lat": " 30.5 ", "Lon": "-95.5", "Alt": "16500", "time": "2023-09-24T21:00:00Z", "Comments": "storm, severe"},
	}

	res := Normalize(rows, NormalizeOptions{})

	assert.Equal(t, 4, res.Skipped)
	require.Len(t, res.Points, 3)

	first := res.Points[0]
	assert.Equal(t, 30.0, first.Lat)
	assert.Equal(t, -95.0, first.Lon)
	assert.Equal(t, 11000.0, first.Altitude)
	assert.Equal(t, TierLow, first.Tier)
	assert.Nil(t, first.Time)
	assert.Nil(t, first.Flag)

	second := res.Points[1]
	assert.Equal(t, TierHigh, second.Tier)
	require.NotNil(t, second.Time)
	assert.Equal(t, time.Date(2023, 9, 24, 21, 0, 0, 0, time.UTC), *second.Time)

	third := res.Points[2]
	assert.Equal(t, 30.5, third.Lat)
	assert.Equal(t, TierExtreme, third.Tier)
	assert.Equal(t, "storm, severe", third.Comment)
	require.NotNil(t, third.Time)
	assert.Equal(t, time.Date(2023, 9, 24, 21, 0, 0, 0, time.UTC), *third.Time)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	rows := []RawRow{{"lat": " 1 ", "lon": "2", "alt": "3"}}
	_ = Normalize(rows, NormalizeOptions{})
	assert.Equal(t, RawRow{"lat": " 1 ", "lon": "2", "alt": "3"}, rows[0])
}

func TestNormalize_Empty(t *testing.T) {
	res := Normalize(nil, NormalizeOptions{})
	assert.Empty(t, res.Points)
	assert.Zero(t, res.Skipped)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *time.Time
	}{
		{"epoch millis", "1695589200000", ptrTime(time.Date(2023, 9, 24, 21, 0, 0, 0, time.UTC))},
		{"epoch millis float", "1695589200500.0", ptrTime(time.Date(2023, 9, 24, 21, 0, 0, 500_000_000, time.UTC))},
		{"rfc3339 offset", "2023-09-24T16:00:00-05:00", ptrTime(time.Date(2023, 9, 24, 21, 0, 0, 0, time.UTC))},
		{"rfc3339 nano", "2023-09-24T21:00:00.25Z", ptrTime(time.Date(2023, 9, 24, 21, 0, 0, 250_000_000, time.UTC))},
		{"no zone", "2023-09-24T21:00:00", ptrTime(time.Date(2023, 9, 24, 21, 0, 0, 0, time.UTC))},
		{"space separated", "2023-09-24 21:00:00", ptrTime(time.Date(2023, 9, 24, 21, 0, 0, 0, time.UTC))},
		{"date only", "2023-09-24", ptrTime(time.Date(2023, 9, 24, 0, 0, 0, 0, time.UTC))},
		{"small number", "210000", nil},
		{"exactly 1e10", "10000000000", nil},
		{"last millisecond of 9999", "253402300799999", ptrTime(time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC))},
		{"past year 9999", "253402300800000", nil},
		{"overflows int64", "1e20", nil},
		{"huge exponent", "1e300", nil},
		{"infinity", "+Inf", nil},
		{"nan", "NaN", nil},
		{"garbage", "yesterday", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "want %v, got %v", *tt.expected, *got)
		})
	}
}

func TestParseFlag(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "Y", "t"} {
		got := parseFlag(v)
		require.NotNil(t, got, v)
		assert.True(t, *got, v)
	}
	for _, v := range []string{"false", "0", "No", "n", "F"} {
		got := parseFlag(v)
		require.NotNil(t, got, v)
		assert.False(t, *got, v)
	}
	assert.Nil(t, parseFlag(""))
	assert.Nil(t, parseFlag("maybe"))
}

func TestNormalize_FlagColumn(t *testing.T) {
	rows := []RawRow{
		{"lat": "1", "lon": "2", "alt": "3", "overshooting": "yes"},
		{"lat": "1", "lon": "2", "alt": "3", "Wind": "0"},
	}

	res := Normalize(rows, NormalizeOptions{})
	require.Len(t, res.Points, 2)
	require.NotNil(t, res.Points[0].Flag)
	assert.True(t, *res.Points[0].Flag)
	assert.Nil(t, res.Points[1].Flag)

	res = Normalize(rows, NormalizeOptions{FlagColumn: "wind"})
	assert.Nil(t, res.Points[0].Flag)
	require.NotNil(t, res.Points[1].Flag)
	assert.False(t, *res.Points[1].Flag)
}

func TestNormalizeWindReports(t *testing.T) {
	rows := []RawRow{
		{"Time": "2105", "Speed": "UNK", "Lat": "30.72", "Lon": "-95.33", "Comments": "Trees down. (HGX)"},
		{"Time": "2110", "Lat": "", "Lon": "-95.33"},
	}

	reports, skipped := NormalizeWindReports(rows)
	assert.Equal(t, 1, skipped)
	require.Len(t, reports, 1)
	assert.Equal(t, WindReport{Lat: 30.72, Lon: -95.33, Comment: "Trees down. (HGX)"}, reports[0])
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestNormalize_OutOfRangeEpochKeepsRecord(t *testing.T) {
	res := Normalize([]RawRow{
		{"lat": "30.7", "lon": "-95.2", "alt": "12500", "time": "1e20"},
	}, NormalizeOptions{})

	require.Len(t, res.Points, 1)
	assert.Zero(t, res.Skipped)
	assert.Nil(t, res.Points[0].Time)
}

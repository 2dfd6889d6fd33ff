package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		altitude float64
		expected Tier
	}{
		{"ground", 0, TierLow},
		{"negative", -50, TierLow},
		{"just below medium", 11999.999, TierLow},
		{"medium floor", 12000.0, TierMedium},
		{"mid medium", 13000, TierMedium},
		{"just below high", 13999.9999, TierMedium},
		{"high floor", 14000.0, TierHigh},
		{"just below extreme", 15999.99, TierHigh},
		{"extreme floor", 16000.0, TierExtreme},
		{"stratosphere", 25000, TierExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.altitude))
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(-1000)
	for alt := -1000.0; alt <= 20000; alt += 0.5 {
		cur := Classify(alt)
		require.GreaterOrEqual(t, cur, prev, "tier decreased at %v m", alt)
		require.True(t, cur.valid())
		prev = cur
	}
}

func TestTierStyles(t *testing.T) {
	assert.Equal(t, "#fff600", ColorOf(TierLow))
	assert.Equal(t, "#ff8f00", ColorOf(TierMedium))
	assert.Equal(t, "#ff0505", ColorOf(TierHigh))
	assert.Equal(t, "#c70039", ColorOf(TierExtreme))

	assert.Equal(t, 1, SizeOf(TierLow))
	assert.Equal(t, 3, SizeOf(TierMedium))
	assert.Equal(t, 6, SizeOf(TierHigh))
	assert.Equal(t, 9, SizeOf(TierExtreme))

	assert.Empty(t, ColorOf(Tier(42)))
	assert.Zero(t, SizeOf(Tier(-1)))
}

func TestTier_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[Tier]int{TierLow: 1, TierHigh: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"low":1,"high":2}`, string(data))

	var tier Tier
	require.NoError(t, json.Unmarshal([]byte(`"extreme"`), &tier))
	assert.Equal(t, TierExtreme, tier)

	assert.Error(t, json.Unmarshal([]byte(`"severe"`), &tier))
}

func TestParseTierSelector(t *testing.T) {
	tests := []struct {
		input    string
		expected TierSelector
	}{
		{"all", SelectAll},
		{"ALL", SelectAll},
		{"low", "low"},
		{" Medium ", "medium"},
		{"extreme", "extreme"},
		{"lt12", "low"},
		{"12-14", "medium"},
		{"14-16", "high"},
		{"gt16", "extreme"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := ParseTierSelector(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sel)
		})
	}

	_, err := ParseTierSelector("danger")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestTierSelector_Matches(t *testing.T) {
	for _, tier := range Tiers {
		assert.True(t, SelectAll.Matches(tier))
		assert.True(t, TierSelector("").Matches(tier))
	}
	assert.True(t, SelectTier(TierHigh).Matches(TierHigh))
	assert.False(t, SelectTier(TierHigh).Matches(TierExtreme))
}

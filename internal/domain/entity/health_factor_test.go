package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthFactorStates(t *testing.T) {
	finite := NewHealthFactor(decimal.NewFromFloat(1.75))
	infinite := InfiniteHealthFactor()
	null := NoHealthFactor()

	assert.True(t, finite.Valid())
	assert.True(t, finite.Finite())
	assert.False(t, finite.Infinite())

	assert.True(t, infinite.Valid())
	assert.False(t, infinite.Finite())
	assert.True(t, infinite.Infinite())

	assert.False(t, null.Valid())
	assert.False(t, null.Finite())
	assert.False(t, null.Infinite())
}

func TestHealthFactorComparisons(t *testing.T) {
	threshold := decimal.NewFromFloat(1.5)

	assert.True(t, NewHealthFactor(decimal.NewFromFloat(1.2)).LessThan(threshold))
	assert.False(t, NewHealthFactor(decimal.NewFromFloat(1.8)).LessThan(threshold))
	assert.False(t, InfiniteHealthFactor().LessThan(threshold))
	assert.False(t, NoHealthFactor().LessThan(threshold))

	assert.True(t, NewHealthFactor(decimal.NewFromFloat(1.8)).GreaterThan(threshold))
	assert.True(t, InfiniteHealthFactor().GreaterThan(threshold))
	assert.False(t, NoHealthFactor().GreaterThan(threshold))
}

func TestHealthFactorDisplay(t *testing.T) {
	assert.Equal(t, "N/A", NoHealthFactor().Display())
	assert.Equal(t, "∞", InfiniteHealthFactor().Display())
	assert.Equal(t, "1.87", NewHealthFactor(decimal.NewFromFloat(1.8672)).Display())
}

func TestHealthFactorStatusLabel(t *testing.T) {
	cases := []struct {
		hf   HealthFactor
		want string
	}{
		{NoHealthFactor(), "no debt"},
		{InfiniteHealthFactor(), "healthy"},
		{NewHealthFactor(decimal.NewFromFloat(2.5)), "healthy"},
		{NewHealthFactor(decimal.NewFromInt(2)), "healthy"},
		{NewHealthFactor(decimal.NewFromFloat(1.7)), "moderate"},
		{NewHealthFactor(decimal.NewFromFloat(1.3)), "at risk"},
		{NewHealthFactor(decimal.NewFromFloat(1.02)), "critical"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.hf.StatusLabel(), "for %s", tc.hf.Display())
	}
}

func TestHealthFactorJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		hf   HealthFactor
		want string
	}{
		{"null", NoHealthFactor(), "null"},
		{"infinite", InfiniteHealthFactor(), `"infinite"`},
		{"finite", NewHealthFactor(decimal.NewFromFloat(1.85)), `"1.85"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := json.Marshal(tc.hf)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(encoded))

			var decoded HealthFactor
			require.NoError(t, json.Unmarshal(encoded, &decoded))
			assert.Equal(t, tc.hf.Valid(), decoded.Valid())
			assert.Equal(t, tc.hf.Infinite(), decoded.Infinite())
			if tc.hf.Finite() {
				assert.True(t, decoded.Value().Equal(tc.hf.Value()))
			}
		})
	}
}

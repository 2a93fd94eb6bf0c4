package utils

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecimalFromRaw(t *testing.T) {
	raw, _ := new(big.Int).SetString("1234500000000000000", 10)
	assert.True(t, DecimalFromRaw(raw, 18).Equal(decimal.NewFromFloat(1.2345)))

	assert.True(t, DecimalFromRaw(big.NewInt(1000000), 6).Equal(decimal.NewFromInt(1)))
	assert.True(t, DecimalFromRaw(big.NewInt(42), 0).Equal(decimal.NewFromInt(42)))
	assert.True(t, DecimalFromRaw(nil, 18).IsZero())
}

func TestCoerceDecimal(t *testing.T) {
	assert.True(t, CoerceDecimal("12.5").Equal(decimal.NewFromFloat(12.5)))
	assert.True(t, CoerceDecimal(float64(3)).Equal(decimal.NewFromInt(3)))
	assert.True(t, CoerceDecimal(7).Equal(decimal.NewFromInt(7)))
	assert.True(t, CoerceDecimal(json.Number("0.031")).Equal(decimal.NewFromFloat(0.031)))
	assert.True(t, CoerceDecimal(nil).IsZero())
	assert.True(t, CoerceDecimal("garbage").IsZero())
	assert.True(t, CoerceDecimal(true).IsZero())
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "abc", CoerceString("abc", "dflt"))
	assert.Equal(t, "dflt", CoerceString("", "dflt"))
	assert.Equal(t, "dflt", CoerceString(nil, "dflt"))
	assert.Equal(t, "1.5", CoerceString(float64(1.5), "dflt"))
	assert.Equal(t, "42", CoerceString(json.Number("42"), "dflt"))
}

func TestCoerceBool(t *testing.T) {
	assert.True(t, CoerceBool(true))
	assert.True(t, CoerceBool("true"))
	assert.True(t, CoerceBool("1"))
	assert.True(t, CoerceBool(float64(1)))
	assert.False(t, CoerceBool("yes"))
	assert.False(t, CoerceBool(float64(0)))
	assert.False(t, CoerceBool(nil))
}

func TestCoerceUint8(t *testing.T) {
	assert.Equal(t, uint8(18), CoerceUint8(float64(18)))
	assert.Equal(t, uint8(6), CoerceUint8("6"))
	assert.Equal(t, uint8(0), CoerceUint8(float64(300)))
	assert.Equal(t, uint8(0), CoerceUint8("eighteen"))
	assert.Equal(t, uint8(0), CoerceUint8(nil))
}

package utils

import (
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// DecimalFromRaw converts a raw on-chain integer amount to a decimal value,
// considering the given number of decimals.
// Example: raw=1234500000000000000, decimals=18 => 1.2345
func DecimalFromRaw(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// CoerceDecimal converts a dynamically typed value (as decoded from a JSON
// provider response) to a decimal. Unparseable or absent values coerce to
// zero rather than an error; a missing number is a valid zero balance.
func CoerceDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// CoerceString converts a dynamically typed value to its string form,
// defaulting to the given fallback.
func CoerceString(v any, fallback string) string {
	switch s := v.(type) {
	case nil:
		return fallback
	case string:
		if s == "" {
			return fallback
		}
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return fallback
	}
}

// CoerceBool converts a dynamically typed value to a bool, defaulting to
// false. Providers variously encode flags as bools, numbers and strings.
func CoerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "1"
	case float64:
		return b != 0
	default:
		return false
	}
}

// CoerceUint8 converts a dynamically typed value to a uint8, defaulting to
// zero. Used for token decimals.
func CoerceUint8(v any) uint8 {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > 255 {
			return 0
		}
		return uint8(n)
	case int:
		if n < 0 || n > 255 {
			return 0
		}
		return uint8(n)
	case string:
		parsed, err := strconv.ParseUint(n, 10, 8)
		if err != nil {
			return 0
		}
		return uint8(parsed)
	case json.Number:
		parsed, err := strconv.ParseUint(n.String(), 10, 8)
		if err != nil {
			return 0
		}
		return uint8(parsed)
	default:
		return 0
	}
}

package entity

import (
	"github.com/shopspring/decimal"
)

// HealthFactor is the ratio of liquidation-threshold-weighted collateral to
// total debt. It has three states: a finite positive value, infinite (debt is
// zero but collateral exists), and null (no debt and no collateral, in which
// case no health factor is meaningful).
type HealthFactor struct {
	value    decimal.Decimal
	infinite bool
	valid    bool
}

// NewHealthFactor returns a finite health factor.
func NewHealthFactor(v decimal.Decimal) HealthFactor {
	return HealthFactor{value: v, valid: true}
}

// InfiniteHealthFactor returns the infinite sentinel (collateral, no debt).
func InfiniteHealthFactor() HealthFactor {
	return HealthFactor{infinite: true, valid: true}
}

// NoHealthFactor returns the null sentinel (no debt and no collateral).
func NoHealthFactor() HealthFactor {
	return HealthFactor{}
}

// Valid reports whether the health factor carries any value at all
// (finite or infinite). A null health factor is not valid.
func (h HealthFactor) Valid() bool { return h.valid }

// Infinite reports whether the health factor is the infinite sentinel.
func (h HealthFactor) Infinite() bool { return h.valid && h.infinite }

// Finite reports whether the health factor is a finite number.
func (h HealthFactor) Finite() bool { return h.valid && !h.infinite }

// Value returns the finite value. It is only meaningful when Finite() is true.
func (h HealthFactor) Value() decimal.Decimal { return h.value }

// LessThan reports whether the health factor is finite and below threshold.
// Infinite and null health factors are below no threshold.
func (h HealthFactor) LessThan(threshold decimal.Decimal) bool {
	return h.Finite() && h.value.LessThan(threshold)
}

// GreaterThan reports whether the health factor exceeds threshold. An
// infinite health factor exceeds every threshold; a null one exceeds none.
func (h HealthFactor) GreaterThan(threshold decimal.Decimal) bool {
	if !h.valid {
		return false
	}
	if h.infinite {
		return true
	}
	return h.value.GreaterThan(threshold)
}

// Display renders the health factor for humans. Total over all three states.
func (h HealthFactor) Display() string {
	switch {
	case !h.valid:
		return "N/A"
	case h.infinite:
		return "∞"
	default:
		return h.value.Round(2).String()
	}
}

// StatusLabel maps the health factor to a coarse status string for display
// layers. Total over all three states.
func (h HealthFactor) StatusLabel() string {
	switch {
	case !h.valid:
		return "no debt"
	case h.infinite, h.value.GreaterThanOrEqual(decimal.NewFromInt(2)):
		return "healthy"
	case h.value.GreaterThanOrEqual(decimal.NewFromFloat(1.5)):
		return "moderate"
	case h.value.GreaterThanOrEqual(decimal.NewFromFloat(1.1)):
		return "at risk"
	default:
		return "critical"
	}
}

// MarshalJSON renders null as JSON null, infinite as the string "infinite"
// and finite values as decimal strings.
func (h HealthFactor) MarshalJSON() ([]byte, error) {
	switch {
	case !h.valid:
		return []byte("null"), nil
	case h.infinite:
		return []byte(`"infinite"`), nil
	default:
		return h.value.MarshalJSON()
	}
}

// UnmarshalJSON accepts null, "infinite" and decimal strings or numbers.
func (h *HealthFactor) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case "null":
		*h = NoHealthFactor()
		return nil
	case `"infinite"`, `"∞"`:
		*h = InfiniteHealthFactor()
		return nil
	}
	var v decimal.Decimal
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*h = NewHealthFactor(v)
	return nil
}

// Package decimal implements an exact, fixed-scale decimal number on top
// of shopspring/decimal. No floating point ever appears on a
// result-affecting path: every arithmetic operation here takes and
// returns a Decimal carrying an explicit scale, and every narrowing
// operation rounds HALF_UP.
package decimal

import (
	"encoding/json"
	"fmt"
	"strings"

	shopspring "github.com/shopspring/decimal"
)

// MaxScale is the largest scale this package will accept.
const MaxScale = 50

// Decimal is an immutable signed rational with a fixed scale.
type Decimal struct {
	value shopspring.Decimal
	scale int32
}

// Zero returns the zero value at the given scale.
func Zero(scale int32) (Decimal, error) {
	return New(shopspring.Zero, scale)
}

// New validates scale and wraps a shopspring.Decimal at that scale,
// rounding HALF_UP if value carries more digits than scale allows.
func New(value shopspring.Decimal, scale int32) (Decimal, error) {
	if scale < 0 {
		return Decimal{}, fmt.Errorf("decimal: negative scale %d", scale)
	}
	if scale > MaxScale {
		return Decimal{}, fmt.Errorf("decimal: scale %d exceeds max %d", scale, MaxScale)
	}
	return Decimal{value: value.Round(scale), scale: scale}, nil
}

// NewFromString parses a numeric string at the given scale.
func NewFromString(s string, scale int32) (Decimal, error) {
	v, err := shopspring.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("decimal: non-numeric input %q: %w", s, err)
	}
	return New(v, scale)
}

// NewFromInt builds a Decimal from an int64 at the given scale.
func NewFromInt(i int64, scale int32) (Decimal, error) {
	return New(shopspring.NewFromInt(i), scale)
}

// Scale returns the decimal's fixed scale.
func (d Decimal) Scale() int32 { return d.scale }

// Raw exposes the underlying shopspring value, e.g. for comparisons in
// callers that don't need scale tracking (tests, logging).
func (d Decimal) Raw() shopspring.Decimal { return d.value }

// String renders the value rounded to its scale.
func (d Decimal) String() string {
	return d.value.StringFixed(d.scale)
}

// Sign returns -1, 0, or 1.
func (d Decimal) Sign() int { return d.value.Sign() }

// IsZero reports whether the value is exactly zero.
func (d Decimal) IsZero() bool { return d.value.IsZero() }

// IsNegative reports whether the value is strictly less than zero.
func (d Decimal) IsNegative() bool { return d.value.Sign() < 0 }

// Cmp compares two decimals by numeric value regardless of scale.
func (d Decimal) Cmp(other Decimal) int { return d.value.Cmp(other.value) }

// Equal reports numeric equality regardless of scale.
func (d Decimal) Equal(other Decimal) bool { return d.value.Equal(other.value) }

// GreaterThan reports d > other.
func (d Decimal) GreaterThan(other Decimal) bool { return d.value.Cmp(other.value) > 0 }

// LessThan reports d < other.
func (d Decimal) LessThan(other Decimal) bool { return d.value.Cmp(other.value) < 0 }

// GreaterThanOrEqual reports d >= other.
func (d Decimal) GreaterThanOrEqual(other Decimal) bool { return d.value.Cmp(other.value) >= 0 }

// LessThanOrEqual reports d <= other.
func (d Decimal) LessThanOrEqual(other Decimal) bool { return d.value.Cmp(other.value) <= 0 }

// maxScale returns the larger of two scales.
func maxScale(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Add widens scale to max(a.scale, b.scale) unless overrideScale >= 0.
func (d Decimal) Add(other Decimal, overrideScale int32) (Decimal, error) {
	scale := maxScale(d.scale, other.scale)
	if overrideScale >= 0 {
		scale = overrideScale
	}
	return New(d.value.Add(other.value), scale)
}

// Sub widens scale to max(a.scale, b.scale) unless overrideScale >= 0.
func (d Decimal) Sub(other Decimal, overrideScale int32) (Decimal, error) {
	scale := maxScale(d.scale, other.scale)
	if overrideScale >= 0 {
		scale = overrideScale
	}
	return New(d.value.Sub(other.value), scale)
}

// Mul defaults to the left operand's scale unless overrideScale >= 0.
func (d Decimal) Mul(other Decimal, overrideScale int32) (Decimal, error) {
	scale := d.scale
	if overrideScale >= 0 {
		scale = overrideScale
	}
	return New(d.value.Mul(other.value), scale)
}

// Div defaults to the left operand's scale unless overrideScale >= 0.
// Rejects division by zero.
func (d Decimal) Div(other Decimal, overrideScale int32) (Decimal, error) {
	if other.value.IsZero() {
		return Decimal{}, fmt.Errorf("decimal: divide by zero")
	}
	scale := d.scale
	if overrideScale >= 0 {
		scale = overrideScale
	}
	// Compute with generous internal precision before rounding to scale,
	// matching the teacher's shopspring idiom (see services/bybit for
	// the underlying library's own DivisionPrecision default of 16).
	precision := scale + 8
	if precision < shopspring.DivisionPrecision {
		precision = shopspring.DivisionPrecision
	}
	q := d.value.DivRound(other.value, precision)
	return New(q, scale)
}

// Neg returns the additive inverse at the same scale.
func (d Decimal) Neg() Decimal {
	v, _ := New(d.value.Neg(), d.scale)
	return v
}

// Abs returns the absolute value at the same scale.
func (d Decimal) Abs() Decimal {
	v, _ := New(d.value.Abs(), d.scale)
	return v
}

// Rescale rounds HALF_UP to a new scale.
func (d Decimal) Rescale(scale int32) (Decimal, error) {
	return New(d.value, scale)
}

// WithValue returns a copy with the raw shopspring value replaced, kept
// at the receiver's scale. Used by solvers that compute candidate
// values at wider internal precision before committing a scale.
func (d Decimal) WithValue(v shopspring.Decimal) Decimal {
	out, _ := New(v, d.scale)
	return out
}

// MarshalJSON renders the decimal as a fixed-point JSON string, never a
// number, so precision survives the round trip (spec.md §6).
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a fixed-point string, inferring scale from the
// number of digits after the decimal point.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	scale := int32(0)
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		scale = int32(len(s) - idx - 1)
	}
	v, err := NewFromString(s, scale)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

package core

import (
	"encoding/json"
	"math"
)

// Value is a float64 measurement that may be absent. A player who did not
// train on a given day has no Duration, which is a different fact from a
// Duration of zero, so absence is tracked explicitly instead of being
// encoded as 0 or NaN.
type Value struct {
	val     float64
	present bool
}

// Some wraps a present measurement.
func Some(v float64) Value {
	return Value{val: v, present: true}
}

// Missing returns the absent value.
func Missing() Value {
	return Value{}
}

// Valid reports whether the value is present and finite.
func (v Value) Valid() bool {
	return v.present && !math.IsNaN(v.val) && !math.IsInf(v.val, 0)
}

// Float64 returns the underlying measurement and whether it is present.
func (v Value) Float64() (float64, bool) {
	if !v.Valid() {
		return 0, false
	}
	return v.val, true
}

// MustFloat64 returns the measurement, panicking if absent. Test helper.
func (v Value) MustFloat64() float64 {
	f, ok := v.Float64()
	if !ok {
		panic("core: MustFloat64 on missing value")
	}
	return f
}

// Div returns num/den, missing when either operand is missing or the
// denominator is zero. Division by zero is a defined missing outcome here,
// never an Inf or an error.
func Div(num, den Value) Value {
	n, ok := num.Float64()
	if !ok {
		return Missing()
	}
	d, ok := den.Float64()
	if !ok || d == 0 {
		return Missing()
	}
	return Some(n / d)
}

// Sum adds values, missing when any operand is missing.
func Sum(vs ...Value) Value {
	total := 0.0
	for _, v := range vs {
		f, ok := v.Float64()
		if !ok {
			return Missing()
		}
		total += f
	}
	return Some(total)
}

// Sub returns a-b, missing when either operand is missing.
func Sub(a, b Value) Value {
	av, ok := a.Float64()
	if !ok {
		return Missing()
	}
	bv, ok := b.Float64()
	if !ok {
		return Missing()
	}
	return Some(av - bv)
}

// Round2 rounds a present value to two decimals. Rounding lives at
// serialization boundaries only; the arithmetic core stays full precision.
func Round2(v Value) Value {
	f, ok := v.Float64()
	if !ok {
		return Missing()
	}
	return Some(math.Round(f*100) / 100)
}

// MarshalJSON encodes missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	f, ok := v.Float64()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON decodes null as missing.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

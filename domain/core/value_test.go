package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestDiv_MissingPropagation(t *testing.T) {
	cases := []struct {
		name    string
		num     Value
		den     Value
		present bool
		want    float64
	}{
		{"both present", Some(90), Some(60), true, 1.5},
		{"missing numerator", Missing(), Some(60), false, 0},
		{"missing denominator", Some(90), Missing(), false, 0},
		{"zero denominator", Some(90), Some(0), false, 0},
		{"zero numerator", Some(0), Some(60), true, 0},
	}

	for _, tc := range cases {
		got := Div(tc.num, tc.den)
		f, ok := got.Float64()
		if ok != tc.present {
			t.Errorf("%s: presence = %v, want %v", tc.name, ok, tc.present)
			continue
		}
		if tc.present && f != tc.want {
			t.Errorf("%s: got %f, want %f", tc.name, f, tc.want)
		}
	}
}

func TestDiv_NeverProducesInfinity(t *testing.T) {
	got := Div(Some(100), Some(0))
	if f, ok := got.Float64(); ok {
		t.Fatalf("division by zero produced %f, want missing", f)
	}
}

func TestSum_MissingOperand(t *testing.T) {
	if _, ok := Sum(Some(1), Missing(), Some(3)).Float64(); ok {
		t.Error("sum with missing operand should be missing")
	}
	f, ok := Sum(Some(1), Some(2), Some(3)).Float64()
	if !ok || f != 6 {
		t.Errorf("sum = %f (present=%v), want 6", f, ok)
	}
}

func TestValue_NonFiniteIsInvalid(t *testing.T) {
	if Some(math.NaN()).Valid() {
		t.Error("NaN should not be a valid value")
	}
	if Some(math.Inf(1)).Valid() {
		t.Error("Inf should not be a valid value")
	}
}

func TestRound2(t *testing.T) {
	f, ok := Round2(Some(1.23456)).Float64()
	if !ok || f != 1.23 {
		t.Errorf("Round2(1.23456) = %f, want 1.23", f)
	}
	if _, ok := Round2(Missing()).Float64(); ok {
		t.Error("Round2 of missing should stay missing")
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Missing())
	if err != nil {
		t.Fatalf("marshal missing: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("missing marshals to %s, want null", data)
	}

	var v Value
	if err := json.Unmarshal([]byte("null"), &v); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if v.Valid() {
		t.Error("null should unmarshal to missing")
	}
	if err := json.Unmarshal([]byte("2.5"), &v); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if f, _ := v.Float64(); f != 2.5 {
		t.Errorf("unmarshal got %f, want 2.5", f)
	}
}

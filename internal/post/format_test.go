package post

import (
	"math"
	"strconv"
	"testing"
)

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{-5, "-5"},
		{1.5, "1.5"},
		{1.2000, "1.2"},
		{100, "100"},
		{0.01, "0.01"},
		{6.35, "6.35"},
		{1.234567, "1.234"},
		{1.9999, "1.999"},
		{-0.0001, "0"},
		{-12.5004, "-12.5"},
		{3000, "3000"},
		{math.NaN(), "0"},
		{math.Inf(1), "0"},
		{math.Inf(-1), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Num(tt.in); got != tt.want {
				t.Errorf("Num(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNumIdempotent(t *testing.T) {
	values := []float64{
		0, 1, -1, 0.1, 0.3, 1.0 / 3.0, math.Pi, math.E,
		123.456789, -0.05, 2500, 0.001, -99.999, 14.1421356,
	}

	for _, v := range values {
		first := Num(v)
		parsed, err := strconv.ParseFloat(first, 64)
		if err != nil {
			t.Fatalf("Num(%v) produced unparsable %q: %v", v, first, err)
		}
		if second := Num(parsed); second != first {
			t.Errorf("Num not idempotent for %v: %q then %q", v, first, second)
		}
	}
}

func TestCoord(t *testing.T) {
	if got := Coord("X", 12.5); got != "X12.5" {
		t.Errorf("Coord = %q, want X12.5", got)
	}
	if got := Coord("J", math.NaN()); got != "J0" {
		t.Errorf("Coord with NaN = %q, want J0", got)
	}
}

// Package post renders a machining setup into SINUMERIK-style NC program
// text: a fixed preamble, a stock declaration, one cycle block per
// operation with tool changes elided across the list, and deferred contour
// subprograms after the program end. Emission is best-effort by design: a
// partially specified operation produces reviewable text with zeroed
// parameters, never an error.
package post

import (
	"math"
	"strconv"
	"strings"
)

// numDigits is the fixed-point precision every numeric parameter is
// truncated to before trailing zeros are stripped.
const numDigits = 3

// Num renders a numeric parameter for program text. The one shared
// formatting rule: fixed-point truncation to three fractional digits,
// trailing zeros (and a trailing decimal point) stripped, and a canonical
// "0" for NaN or infinite values. Identical values always render
// identically, and formatting the parsed result of a formatted value
// reproduces the same string.
func Num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	truncated := math.Trunc(v*1000) / 1000
	s := strconv.FormatFloat(truncated, 'f', numDigits, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" || s == "-0" {
		return "0"
	}
	return s
}

// Coord renders an axis word such as "X12.5".
func Coord(axis string, v float64) string {
	return axis + Num(v)
}

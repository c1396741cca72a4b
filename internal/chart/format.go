package chart

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// FormatSI formats v with digits significant digits and an SI prefix,
// e.g. FormatSI(1234, 2) is "1.2k" and FormatSI(2, 2) is "2.0".
func FormatSI(v float64, digits int) string {
	if v == 0 || !finite(v) {
		return strconv.FormatFloat(v, 'f', max(digits-1, 0), 64)
	}
	value, prefix := humanize.ComputeSI(v)

	decimals := func(x float64) int {
		intDigits := int(math.Floor(math.Log10(math.Abs(x)))) + 1
		return max(digits-intDigits, 0)
	}
	d := decimals(value)
	p := math.Pow(10, float64(d))
	rounded := math.Round(value*p) / p
	// Rounding can carry into a new digit (9.96 -> 10.0).
	if nd := decimals(rounded); nd < d {
		d = nd
	}
	return strconv.FormatFloat(rounded, 'f', d, 64) + prefix
}

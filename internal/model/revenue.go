package model

import (
	"cmp"
	"encoding/json"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// revenueReplacer removes currency symbols and thousands separators.
// Only "$" and "," are stripped; other currency symbols are not part of the
// datasets this tool reads and make the value unparseable (missing).
var revenueReplacer = strings.NewReplacer("$", "", ",", "")

// Revenue is a normalized revenue amount.
//
// A Revenue is either Valid with a non-negative Amount, or missing. Missing
// revenue is excluded from sums and from non-missing counts; it never makes
// a report fail.
type Revenue struct {
	// Amount is the exact decimal value. Zero when not Valid.
	Amount decimal.Decimal

	// Valid reports whether the source value could be parsed.
	Valid bool
}

// MissingRevenue returns a Revenue that is not valid.
func MissingRevenue() Revenue {
	return Revenue{}
}

// NewRevenue returns a valid Revenue for a pre-parsed float.
// Negative and non-finite values are treated as missing.
func NewRevenue(f float64) Revenue {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return MissingRevenue()
	}
	d := decimal.NewFromFloat(f)
	if d.IsNegative() {
		return MissingRevenue()
	}
	return Revenue{Amount: d, Valid: true}
}

// ParseRevenue normalizes a raw revenue cell.
//
// Surrounding whitespace, "$" and "," are removed before parsing, so
// "$1,234.56" and "1234.56" yield the same amount. Empty, unparseable and
// negative values yield a missing Revenue.
func ParseRevenue(raw string) Revenue {
	s := strings.TrimSpace(revenueReplacer.Replace(raw))
	if s == "" {
		return MissingRevenue()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return MissingRevenue()
	}
	if d.IsNegative() {
		return MissingRevenue()
	}
	return Revenue{Amount: d, Valid: true}
}

// Float64 returns the amount as a float64 and whether it is valid.
func (r Revenue) Float64() (float64, bool) {
	if !r.Valid {
		return 0, false
	}
	f, _ := r.Amount.Float64()
	return f, true
}

// String returns the decimal text, or an empty string when missing.
func (r Revenue) String() string {
	if !r.Valid {
		return ""
	}
	return r.Amount.String()
}

// MarshalJSON encodes missing revenue as null.
func (r Revenue) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	f, _ := r.Amount.Float64()
	return json.Marshal(f)
}

// SumRevenue adds up the valid amounts and reports how many were valid.
func SumRevenue(values []Revenue) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, v := range values {
		if !v.Valid {
			continue
		}
		sum = sum.Add(v.Amount)
		n++
	}
	return sum, n
}

// Round2 rounds a decimal half away from zero to two places and returns it
// as a float64.
func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Percentages returns each count's share of their sum in percent, rounded to
// two places so that the shares add up to exactly 100. Hundredths lost to
// rounding go to the largest remainders, earlier counts first on ties.
// All shares are zero when the sum is zero.
func Percentages(counts []int64) []float64 {
	const units = 10000 // 100.00%

	out := make([]float64, len(counts))
	var total int64
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		return out
	}

	shares := make([]int64, len(counts))
	rems := make([]int64, len(counts))
	left := int64(units)
	for i, c := range counts {
		shares[i] = c * units / total
		rems[i] = c * units % total
		left -= shares[i]
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(rems[b], rems[a])
	})
	for _, i := range order[:left] {
		shares[i]++
	}

	for i, s := range shares {
		out[i] = float64(s) / 100
	}
	return out
}

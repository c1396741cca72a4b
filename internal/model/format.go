package model

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// FormatValue formats a summary cell for display.
// Integers get thousands separators, floats additionally keep at most two
// decimals, and nil (missing) becomes an empty string.
func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case int:
		return humanize.Comma(int64(n))
	case float64:
		return humanize.FormatFloat("#,###.##", n)
	default:
		return ""
	}
}

// FormatPlain formats a summary cell without grouping separators, for
// machine-oriented outputs such as spreadsheets and Markdown tables.
func FormatPlain(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return ""
	}
}

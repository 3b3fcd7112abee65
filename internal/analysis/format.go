package analysis

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders d as dollars with two decimals and thousands
// separators, e.g. $1,234.50 or $-3.00.
func FormatCurrency(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return "$" + sign + groupDigits(whole) + "." + frac
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// groupDigits inserts thousands separators into a string of digits.
func groupDigits(digits string) string {
	n, err := decimal.NewFromString(digits)
	if err == nil && n.LessThan(decimal.NewFromInt(1<<62)) {
		return humanize.Comma(n.IntPart())
	}
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

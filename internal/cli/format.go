// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with two decimals and thousands separators.
// e.g., 1234567.891 -> "1,234,567.89", -5 -> "-5.00"
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// Beyond int64: skip grouping.
		n = -1
	}
	out := whole
	if n >= 0 {
		out = FormatNumber(n)
	}
	out += "." + frac
	if d.IsNegative() && s != "0.00" {
		return "-" + out
	}
	return out
}

// FormatAmount formats a float balance the way FormatMoney does.
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return FormatMoney(decimal.NewFromFloat(v))
}

// FormatSigned formats an amount with an explicit sign.
func FormatSigned(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatCompact formats a value with K/M suffixes for chart axes.
// e.g., 1234 -> "1.2K", -2500000 -> "-2.5M"
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value that is already a percentage.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDate renders a day as "Mon 2006-01-02".
func FormatDate(d civil.Date) string {
	if !d.IsValid() {
		return "-"
	}
	return d.In(time.UTC).Format("Mon 2006-01-02")
}

// FormatMonth renders a calendar month as "Jan 2006".
func FormatMonth(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

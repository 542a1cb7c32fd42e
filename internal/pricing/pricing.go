// Package pricing normalizes storefront prices and formats money amounts.
//
// Prices reach the storefront in whatever shape the listing markup or the
// shopper typed them ("30,00", "$30.00", "30"). Everything is folded into a
// non-negative decimal so totals never accumulate float error.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize folds v into a non-negative decimal. Strings keep only digits and
// one decimal separator: the first comma becomes a period, and when several
// periods remain the first one is the separator and the remaining digits are
// concatenated ("30.5.5" is 30.55). Unparseable input yields zero.
func Normalize(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return normalizeString(t.String())
	case string:
		return normalizeString(t)
	case int:
		return normalizeString(strconv.Itoa(t))
	case int64:
		return normalizeString(strconv.FormatInt(t, 10))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero
		}
		return normalizeString(strconv.FormatFloat(t, 'f', -1, 64))
	case fmt.Stringer:
		return normalizeString(t.String())
	default:
		return normalizeString(fmt.Sprint(t))
	}
}

func normalizeString(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.Replace(s, ",", ".", 1)
	s = CleanUnitPrice(s)

	if parts := strings.Split(s, "."); len(parts) > 2 {
		s = parts[0] + "." + strings.Join(parts[1:], "")
	}
	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Coerce reads an already-clean amount such as a stored line-item price.
// Anything that is not a plain number counts as zero.
func Coerce(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CleanUnitPrice strips every character except digits and periods.
// It produces the unit_price wire form sent to the order endpoint.
func CleanUnitPrice(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders an amount with two fraction digits ("30.00").
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Money renders an amount for display ("$30.00").
func Money(d decimal.Decimal) string {
	return "$" + Format(d)
}

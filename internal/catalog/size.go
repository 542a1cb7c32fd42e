package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackSize is used when a non-apparel product has no size at all.
const FallbackSize = "UNI"

// DefaultSize is assumed when the size selector offers nothing.
const DefaultSize = "M"

// DefaultSizeLadder keeps the shirt size selector from ever being empty.
var DefaultSizeLadder = []string{"S", "M", "L", "XL", "XXL"}

var oneSizeTokens = map[string]struct{}{
	"UNI":      {},
	"UNICA":    {},
	"ONE":      {},
	"ONE SIZE": {},
	"OS":       {},
	"U":        {},
}

// NormalizeSize trims and uppercases a size code.
func NormalizeSize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsOneSize reports whether s is a "no size variation" token such as UNI,
// ÚNICA or OS, ignoring case and accents.
func IsOneSize(s string) bool {
	_, ok := oneSizeTokens[foldAccents(NormalizeSize(s))]
	return ok
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

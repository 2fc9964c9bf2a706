package textutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var accentFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldAccents removes diacritics, e.g. "Comercialização" -> "Comercializacao".
func FoldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeLabel folds accents, collapses whitespace and uppercases,
// yielding the canonical form of a product/country label. idempotent.
func NormalizeLabel(s string) string {
	s = FoldAccents(s)
	s = strings.Trim(s, " \n\t")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.ToUpper(s)
}

// ParseQuantity parses a pt-BR formatted number as published by the
// source tables: "." is a thousands separator, "," the decimal separator.
// "-" and "*" are the site's markers for zero. anything else non-numeric
// is an error so callers can count the row as dropped instead of silently
// coercing it.
func ParseQuantity(s string) (float64, error) {
	s = strings.Trim(s, " \n\t")
	if s == "" || s == "-" || s == "*" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a quantity: %q", s)
	}
	return v, nil
}

// FormatQuantity renders a quantity back in the same pt-BR shape
// ParseQuantity accepts, without thousands separators.
func FormatQuantity(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", ",")
}

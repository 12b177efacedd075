// Package core provides number parsing for tabular inputs.
//
// Spreadsheet exports mix plain integers ("1234"), decimals with a dot
// ("12.5") and Argentine formatting with thousands dots and a decimal comma
// ("1.234,5"). The parsers here accept all three.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidNumber = errors.New("invalid number")

// ParseCount parses a non-negative count.
//
// Examples:
//
//	ParseCount("1234")    -> 1234, nil
//	ParseCount("1.234")   -> 1234, nil (thousands separator)
//	ParseCount("1.234,5") -> 1234.5, nil
//	ParseCount("12.5")    -> 12.5, nil
func ParseCount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidNumber
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeCount
	}
	s = normalizeSeparators(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// ParseInt parses a non-negative integer, rejecting fractional values.
func ParseInt(s string) (int64, error) {
	v, err := ParseCount(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v > math.MaxInt64 {
		return 0, ErrInvalidNumber
	}
	return int64(v), nil
}

// normalizeSeparators rewrites s so that strconv can parse it.
func normalizeSeparators(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	hasComma := strings.Contains(s, ",")
	dots := strings.Count(s, ".")
	switch {
	case hasComma:
		// "1.234,5": dots group thousands, comma is the decimal mark
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case dots == 1:
		// "1.234" is read as a thousands group only when exactly three
		// digits follow the dot and the integer part is short.
		i := strings.IndexByte(s, '.')
		if len(s)-i-1 == 3 && i >= 1 && i <= 3 && s[0] != '0' {
			s = s[:i] + s[i+1:]
		}
	}
	return s
}

package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a spreadsheet-formatted amount to a float.
//
// It strips currency symbols and spaces, accepts a leading sign or
// parentheses for negatives, and treats the last of '.' or ',' as the
// decimal separator when both appear (so "1.234,56" and "1,234.56" agree).
// A lone ',' followed by exactly one or two digits is read as a decimal comma.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("-€1,234.50") -> -1234.5
//	ParseAmount("(30)")      -> -30
//	ParseAmount("12,5")      -> 12.5
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' || r == '+' {
			return r
		}
		return -1
	}, s)
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if neg {
		v = -v
	}
	return v, nil
}

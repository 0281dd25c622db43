// Package core implements the budget-allocation and ledger rules for a
// fixed-length spending challenge.
//
// This file contains functions for parsing monetary amounts from free-form
// text and formatting them back in the Vietnamese convention. Amounts are
// whole đồng; there is no fractional unit.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount extracts a non-negative integer amount from free-form text.
//
// Every rune that is not a decimal digit is discarded before parsing, so
// display-formatted input like "3.500.000 ₫" parses back to 3500000.
// If no digits remain, or the digits overflow int64, the result is 0.
// ParseAmount never fails.
//
// Examples:
//
//	ParseAmount("150000")    -> 150000
//	ParseAmount("150.000 ₫") -> 150000
//	ParseAmount("abc")       -> 0
//	ParseAmount("")          -> 0
func ParseAmount(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// HasDigits reports whether the text contains at least one decimal digit.
// Allocation inputs with no digits at all are treated as missing rather
// than as an explicit zero.
func HasDigits(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// FormatAmount renders an amount with dot thousands separators (vi-VN),
// e.g. 3500000 -> "3.500.000".
func FormatAmount(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var b strings.Builder
		lead := len(s) % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatCurrency renders an amount as a currency string, e.g. "3.500.000 ₫".
func FormatCurrency(n int64) string {
	return FormatAmount(n) + " ₫"
}

// Package phone implements the progressive +7 input mask used by the
// contact step and the digit normalization used for phone matching.
package phone

import "strings"

// maxDigits caps the significant digits of a Russian number: country code + 10.
const maxDigits = 11

// Digits strips every non-digit character from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format masks raw input as "+7 (XXX) XXX-XX-XX", built up progressively as
// digits accumulate and capped at 11 significant digits. When the user is
// deleting (raw is shorter than previous), raw passes through untouched so
// deletion feels natural instead of fighting the mask.
func Format(raw, previous string) string {
	if len(raw) < len(previous) {
		return raw
	}

	digits := Digits(raw)
	if digits == "" {
		return ""
	}
	if len(digits) > maxDigits {
		digits = digits[:maxDigits]
	}

	// Leading 8 is the legacy trunk prefix, 7 the country code; either way
	// the masked form always starts with +7.
	rest := digits
	if rest[0] == '7' || rest[0] == '8' {
		rest = rest[1:]
	} else if len(rest) > maxDigits-1 {
		rest = rest[:maxDigits-1]
	}

	var b strings.Builder
	b.WriteString("+7")
	if len(rest) == 0 {
		return b.String()
	}

	b.WriteString(" (")
	b.WriteString(take(rest, 0, 3))
	if len(rest) > 3 {
		b.WriteString(") ")
		b.WriteString(take(rest, 3, 6))
	}
	if len(rest) > 6 {
		b.WriteString("-")
		b.WriteString(take(rest, 6, 8))
	}
	if len(rest) > 8 {
		b.WriteString("-")
		b.WriteString(take(rest, 8, 10))
	}
	return b.String()
}

// Equal reports whether two raw inputs denote the same number: identical
// digits, or a matching 10-digit tail (with and without country code).
func Equal(a, b string) bool {
	da, db := Digits(a), Digits(b)
	if da == "" || db == "" {
		return false
	}
	if da == db {
		return true
	}
	return tail10(da) == tail10(db)
}

func tail10(s string) string {
	if len(s) > 10 {
		return s[len(s)-10:]
	}
	return s
}

func take(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

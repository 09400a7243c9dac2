package pattern

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// EscapeChar marks the following character as a literal.
	EscapeChar = '|'

	// AnySequence matches zero or more characters.
	AnySequence = '%'

	// AnyOne matches exactly one character.
	AnyOne = '_'
)

// EscapeClause is the SQL fragment declaring EscapeChar to the LIKE operator.
const EscapeClause = "ESCAPE '|'"

// Escape turns literal into a pattern that matches it exactly, then
// optionally wraps it with unescaped '%' wildcards.
//
// The escape character itself is escaped too, so any input is escapable
// without ambiguity.
func Escape(literal string, wildcardOpen, wildcardClose bool) string {
	var b strings.Builder
	b.Grow(len(literal) + 2)

	if wildcardOpen {
		b.WriteRune(AnySequence)
	}
	for _, r := range literal {
		if IsSpecial(r) {
			b.WriteRune(EscapeChar)
		}
		b.WriteRune(r)
	}
	if wildcardClose {
		b.WriteRune(AnySequence)
	}

	return b.String()
}

// IsSpecial reports whether r needs escaping inside a pattern.
func IsSpecial(r rune) bool {
	return r == AnySequence || r == AnyOne || r == EscapeChar
}

// Exact returns a pattern matching literal and nothing else.
func Exact(literal string) string { return Escape(literal, false, false) }

// Contains returns a pattern matching any value containing literal.
func Contains(literal string) string { return Escape(literal, true, true) }

// StartsWith returns a pattern matching any value beginning with literal.
func StartsWith(literal string) string { return Escape(literal, false, true) }

// EndsWith returns a pattern matching any value ending with literal.
func EndsWith(literal string) string { return Escape(literal, true, false) }

// Fold applies simple, locale-independent Unicode case folding one rune at
// a time. The result has exactly as many runes as s, so a '_' in a folded
// pattern still lines up with one character of a folded value ("ß" stays
// "ß", it never becomes "ss").
//
// It also backs the casefold SQL function so both sides of a
// LikeIgnoreCase comparison fold identically.
func Fold(s string) string {
	return strings.Map(foldRune, s)
}

// foldRune maps r to a fixed member of its unicode.SimpleFold orbit: the
// smallest lowercase member, or the smallest member if none is lowercase.
// '%', '_' and '|' have no case and map to themselves.
func foldRune(r rune) rune {
	best, bestLower := r, unicode.IsLower(r)
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		lower := unicode.IsLower(f)
		if (lower && !bestLower) || (lower == bestLower && f < best) {
			best, bestLower = f, lower
		}
	}
	return best
}

// Normalize returns the NFC form of s. Stored text and query operands are
// both normalized, so canonically equivalent spellings compare equal
// under every operator.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// SQLFoldFunc is the name of the SQL function the store registers to apply
// Fold to column values.
const SQLFoldFunc = "casefold"

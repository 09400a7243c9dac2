package pattern

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenAnyOne
	tokenAnySequence
)

type token struct {
	kind tokenKind
	r    rune
}

// tokenize splits a pattern into literal runes and wildcards.
// Returns ok=false for a pattern ending in a lone escape character,
// which matches nothing (SQLite behaves the same way).
func tokenize(pattern string) ([]token, bool) {
	runes := []rune(pattern)
	toks := make([]token, 0, len(runes))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case EscapeChar:
			if i+1 >= len(runes) {
				return nil, false
			}
			i++
			toks = append(toks, token{kind: tokenLiteral, r: runes[i]})
		case AnySequence:
			// Collapse runs of '%' - they are equivalent to one.
			if n := len(toks); n > 0 && toks[n-1].kind == tokenAnySequence {
				continue
			}
			toks = append(toks, token{kind: tokenAnySequence})
		case AnyOne:
			toks = append(toks, token{kind: tokenAnyOne})
		default:
			toks = append(toks, token{kind: tokenLiteral, r: r})
		}
	}

	return toks, true
}

// Match reports whether value matches pattern under LIKE semantics with
// EscapeChar as the escape character. Matching is case-sensitive and
// works on runes, so '_' consumes one Unicode character.
func Match(pattern, value string) bool {
	toks, ok := tokenize(pattern)
	if !ok {
		return false
	}
	s := []rune(value)

	ti, si := 0, 0
	starTok, starPos := -1, 0

	for si < len(s) {
		if ti < len(toks) {
			switch t := toks[ti]; {
			case t.kind == tokenAnySequence:
				starTok, starPos = ti, si
				ti++
				continue
			case t.kind == tokenAnyOne, t.kind == tokenLiteral && t.r == s[si]:
				ti++
				si++
				continue
			}
		}
		if starTok < 0 {
			return false
		}
		// Backtrack: let the last '%' absorb one more character.
		starPos++
		ti, si = starTok+1, starPos
	}

	for ti < len(toks) && toks[ti].kind == tokenAnySequence {
		ti++
	}
	return ti == len(toks)
}

// MatchFold is Match with both sides case folded.
func MatchFold(pattern, value string) bool {
	return Match(Fold(pattern), Fold(value))
}

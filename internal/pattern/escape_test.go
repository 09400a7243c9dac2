package pattern

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		open    bool
		close   bool
		want    string
	}{
		{"plain", "abc", false, false, "abc"},
		{"percent", "One%", false, false, "One|%"},
		{"underscore", "Two_", false, false, "Two|_"},
		{"escape char", "a|b", false, false, "a||b"},
		{"all specials", "%_|", false, false, "|%|_||"},
		{"contains", "%", true, true, "%|%%"},
		{"contains underscore", "_", true, true, "%|_%"},
		{"starts with", "One", false, true, "One%"},
		{"ends with", "%", true, false, "%|%"},
		{"empty", "", false, false, ""},
		{"empty contains", "", true, true, "%%"},
		{"unicode", "Grüße_", false, false, "Grüße|_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.literal, tt.open, tt.close))
		})
	}
}

func TestShorthands(t *testing.T) {
	assert.Equal(t, "One|%", Exact("One%"))
	assert.Equal(t, "%|%%", Contains("%"))
	assert.Equal(t, "Two|_%", StartsWith("Two_"))
	assert.Equal(t, "%|_", EndsWith("_"))
}

func TestEscape_MatchesTheLiteralExactly(t *testing.T) {
	literals := []string{"One%", "Two_", "%", "_", "|", "a|%b", "100%_off", "||", "%%__"}

	for _, lit := range literals {
		t.Run(lit, func(t *testing.T) {
			assert.True(t, Match(Exact(lit), lit), "exact pattern must match its literal")
			assert.True(t, Match(Contains(lit), "xx"+lit+"yy"), "contains pattern must match a superstring")
		})
	}
}

func TestEscape_DoesNotExpandWildcards(t *testing.T) {
	// Without escaping, "One%" would match "OneTwo" and "Two_" would match "TwoX".
	assert.False(t, Match(Exact("One%"), "OneTwo"))
	assert.False(t, Match(Exact("One%"), "One"))
	assert.False(t, Match(Exact("Two_"), "TwoX"))
	assert.False(t, Match(Contains("%"), "no percent here"))
	assert.False(t, Match(Contains("_"), "no underscore here"))
	assert.False(t, Match(Exact("a|b"), "ab"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "one%", Fold("ONE%"))
	assert.Equal(t, "two_", Fold("Two_"))
	assert.Equal(t, "|%_", Fold("|%_"))
	assert.Equal(t, "grüsse", Fold("GRÜSSE"))
}

func TestFold_KeepsRuneCount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Straße", "straße"},
		{"STRAẞE", "straße"},
		{"İstanbul", "İstanbul"},
		{"ΣΊΣΥΦΟΣ", "ςίςυφος"},
		{"\u212A", "k"}, // Kelvin sign shares an orbit with k
		{"ǅ", "ǆ"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Fold(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, utf8.RuneCountInString(tt.in), utf8.RuneCountInString(got))
		})
	}
}

func TestFold_CaseVariantsAgree(t *testing.T) {
	for _, pair := range [][2]string{
		{"STRASSE", "strasse"},
		{"Straße", "STRAẞE"},
		{"ΣΊΣΥΦΟΣ", "σίσυφος"},
		{"\u212A", "K"},
	} {
		assert.Equal(t, Fold(pair[0]), Fold(pair[1]), pair)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "\u00e9", Normalize("e\u0301"))
	assert.Equal(t, "One%", Normalize("One%"))
	assert.Equal(t, "|%_", Normalize("|%_"))
}

func TestIsSpecial(t *testing.T) {
	assert.True(t, IsSpecial('%'))
	assert.True(t, IsSpecial('_'))
	assert.True(t, IsSpecial('|'))
	assert.False(t, IsSpecial('\\'))
	assert.False(t, IsSpecial('a'))
}

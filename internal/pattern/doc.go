// Package pattern converts literals into LIKE patterns and evaluates them.
//
// Patterns use SQL LIKE syntax: '%' matches any sequence of characters and
// '_' matches exactly one character. EscapeChar placed before any character
// makes that character literal. Every compiled LIKE declares the same
// escape character (LIKE ? ESCAPE '|'), so a pattern produced here means the
// same thing in SQLite and in Match.
//
// Case-insensitive matching uses Fold, a locale-independent simple Unicode
// case fold that maps each rune to exactly one rune. Folding never produces
// or removes '%', '_' or '|', so it can be applied before or after escaping
// with the same result.
//
// Text is compared in NFC (Normalize) on both sides.
package pattern

// Package normalize canonicalizes raw extracted values (employer names,
// monetary amounts, dates) into comparable forms. All functions are pure
// and deterministic for the same input.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are the legal-entity tokens stripped from the end of an
// employer name, longest phrases first. The list is a starting point;
// extend it as new national formats show up.
var legalSuffixes = [][]string{
	{"SOCIEDADE", "UNIPESSOAL"},
	{"SOCIEDADE", "ANONIMA"},
	{"UNIPESSOAL", "LDA"},
	{"UNIPESSOAL"},
	{"LIMITADA"},
	{"LDA"},
	{"LTDA"},
	{"LTD"},
	{"SA"},
	{"S", "A"},
	{"INC"},
	{"GMBH"},
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Employer canonicalizes an employer name: uppercase, diacritics folded,
// punctuation collapsed to spaces, legal-entity suffixes stripped,
// internal whitespace collapsed. Idempotent.
func Employer(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}

	// Punctuation separates tokens; "ACME, LDA." and "ACME LDA" must
	// tokenize identically.
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)

	tokens := strings.Fields(s)
	tokens = stripSuffixTokens(tokens)
	return strings.Join(tokens, " ")
}

func stripSuffixTokens(tokens []string) []string {
	for {
		stripped := false
		for _, suffix := range legalSuffixes {
			if len(tokens) <= len(suffix) {
				continue
			}
			tail := tokens[len(tokens)-len(suffix):]
			if equalTokens(tail, suffix) {
				tokens = tokens[:len(tokens)-len(suffix)]
				stripped = true
				break
			}
		}
		if !stripped {
			return tokens
		}
	}
}

func equalTokens(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

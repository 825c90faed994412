package deposit

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// entityMarkers are Japanese legal-entity markers, removed wherever they
// appear. Bank statements abbreviate 株式会社 as カ) or (カ, which NFKC
// turns into the forms listed here.
var entityMarkers = []string{
	"株式会社", "有限会社", "合同会社", "合名会社", "合資会社",
	"(株)", "(有)", "(同)",
	"(カ)", "(ユ)", "(カ", "カ)", "(ユ", "ユ)", "(ド", "ド)",
}

// entityWords are Latin legal-entity words, keyed with dots and commas
// removed. They only count as whole words at either end of a name.
var entityWords = map[string]bool{
	"co": true, "coltd": true, "ltd": true, "inc": true, "llc": true,
	"corp": true, "kk": true, "limited": true, "corporation": true,
}

// Normalize folds width and case and collapses runs of whitespace, so that
// full-width and half-width bank text compare equal.
func Normalize(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// StripLegalSuffixes removes legal-entity markers from an already
// normalised name.
func StripLegalSuffixes(name string) string {
	for _, marker := range entityMarkers {
		name = strings.ReplaceAll(name, marker, "")
	}

	words := strings.Fields(name)
	for len(words) > 1 && isEntityWord(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	for len(words) > 1 && isEntityWord(words[0]) {
		words = words[1:]
	}
	if len(words) > 0 {
		words[len(words)-1] = strings.TrimRight(words[len(words)-1], ".,")
	}
	return strings.Join(words, " ")
}

func isEntityWord(word string) bool {
	return entityWords[strings.NewReplacer(".", "", ",", "").Replace(word)]
}

// compact removes all whitespace; bank descriptions pad names unpredictably.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// containsAny reports whether normalised text contains any normalised keyword.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalizeAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Normalize(w)
	}
	return out
}

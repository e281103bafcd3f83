package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinWordLength is the shortest word, in runes, kept for matching.
const MinWordLength = 2

// stopWords are dropped only by the legacy article index.
var stopWords = func() map[string]struct{} {
	list := "le la les un une des du de ce cette ces mon ma mes ton ta tes son sa ses notre votre leur " +
		"je tu il elle on nous vous ils elles et ou mais que qui dont où avec sans sous sur pour dans par " +
		"ici là alors donc or ni"
	set := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
		set[Normalize(w)] = struct{}{}
	}
	return set
}()

// Normalize lowercases, strips diacritics and collapses whitespace.
func Normalize(text string) string {
	t := transform.Chain(cases.Lower(language.Und), norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, text)
	if err != nil {
		out = strings.ToLower(text)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Words splits normalized text and drops words shorter than MinWordLength.
func Words(text string) []string {
	fields := strings.Fields(Normalize(text))
	words := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) >= MinWordLength {
			words = append(words, w)
		}
	}
	return words
}

func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// WithoutStopWords filters the fixed French stop-word list.
func WithoutStopWords(words []string) []string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !IsStopWord(w) {
			kept = append(kept, w)
		}
	}
	return kept
}

// NormalizeForLegacyIndex mirrors Normalize and also drops short words and stop words.
func NormalizeForLegacyIndex(text string) string {
	return strings.Join(WithoutStopWords(Words(text)), " ")
}

// Package wordcheck judges whether completed words look like real typing.
package wordcheck

import (
	"strings"
	"unicode/utf8"
)

// Oracle estimates word usage frequency on the zipf scale. Implementations
// may be unavailable for some languages; the second return reports whether
// an estimate exists.
type Oracle interface {
	ZipfFrequency(word, lang string) (float64, bool)
}

// Options configures a Checker.
type Options struct {
	// Threshold is the minimum zipf frequency for a word to count as
	// plausible via the oracle.
	Threshold float64
	// MinLength is the minimum rune count; shorter words are not scored.
	MinLength int
	// Languages selects the fallback lexicons and oracle languages, in
	// order of preference.
	Languages []string
	// ExtraWords extends the fallback lexicon with user-supplied words.
	ExtraWords []string
	// Lexicons supplies additional per-language word lists loaded from
	// files, merged into the fallback set.
	Lexicons map[string][]string
	// Oracle is optional; when nil the checker degrades to lexicon-only
	// matching.
	Oracle Oracle
}

// Checker classifies completed words as plausible or implausible against a
// lexicon plus an optional frequency oracle.
type Checker struct {
	threshold float64
	minLength int
	languages []string
	fallback  map[string]struct{}
	oracle    Oracle
}

// New builds a Checker from options.
func New(opts Options) *Checker {
	langs := opts.Languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	normalized := make([]string, 0, len(langs))
	fallback := make(map[string]struct{})
	for _, lang := range langs {
		lang = strings.ToLower(lang)
		normalized = append(normalized, lang)
		for _, word := range FallbackLexicon(lang) {
			fallback[word] = struct{}{}
		}
		for _, word := range opts.Lexicons[lang] {
			fallback[strings.ToLower(word)] = struct{}{}
		}
	}
	for _, word := range opts.ExtraWords {
		fallback[strings.ToLower(word)] = struct{}{}
	}
	minLength := opts.MinLength
	if minLength < 1 {
		minLength = 1
	}
	return &Checker{
		threshold: opts.Threshold,
		minLength: minLength,
		languages: normalized,
		fallback:  fallback,
		oracle:    opts.Oracle,
	}
}

// Eligible reports whether the word is long enough to be scored at all.
// Short fragments are ignored by policy to avoid false rejections.
func (c *Checker) Eligible(word string) bool {
	return utf8.RuneCountInString(normalize(word)) >= c.minLength
}

// IsPlausible reports whether the word appears in the lexicon or clears the
// frequency threshold in any configured language.
func (c *Checker) IsPlausible(word string) bool {
	normalized := normalize(word)
	if utf8.RuneCountInString(normalized) < c.minLength {
		return false
	}
	if _, ok := c.fallback[normalized]; ok {
		return true
	}
	if c.oracle != nil {
		for _, lang := range c.languages {
			if freq, ok := c.oracle.ZipfFrequency(normalized, lang); ok && freq >= c.threshold {
				return true
			}
		}
	}
	return false
}

func normalize(word string) string {
	return strings.TrimSpace(strings.ToLower(word))
}

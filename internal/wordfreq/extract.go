package wordfreq

import (
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"
)

// ExtractWordlist returns up to limit words for lang, most frequent first,
// filtered to alphabetic words in the language's script. The result is
// suitable for writing out as a lexicon file.
func ExtractWordlist(wheelPath, lang, listType string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	table, err := LoadTable(wheelPath, lang, listType)
	if err != nil {
		return nil, err
	}

	type entry struct {
		word string
		zipf float64
	}
	entries := make([]entry, 0, len(table))
	for word, zipf := range table {
		entries = append(entries, entry{word: word, zipf: zipf})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].zipf != entries[j].zipf {
			return entries[i].zipf > entries[j].zipf
		}
		return entries[i].word < entries[j].word
	})

	scriptOK := scriptFilter(lang)
	words := make([]string, 0, limit)
	for _, e := range entries {
		if !isAlpha(e.word) || !scriptOK(e.word) {
			continue
		}
		length := utf8.RuneCountInString(e.word)
		if length < 2 || length > 20 {
			continue
		}
		words = append(words, e.word)
		if len(words) >= limit {
			break
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no words found for %s/%s", lang, listType)
	}
	return words, nil
}

func scriptFilter(lang string) func(string) bool {
	switch lang {
	case "en":
		return func(word string) bool {
			for _, r := range word {
				if r > unicode.MaxASCII {
					return false
				}
			}
			return true
		}
	case "he":
		return func(word string) bool {
			for _, r := range word {
				if !unicode.Is(unicode.Hebrew, r) {
					return false
				}
			}
			return true
		}
	default:
		return func(string) bool { return true }
	}
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return word != ""
}

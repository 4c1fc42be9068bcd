package wordcheck

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Curated fallback lexicons per language. They keep the scorer useful when
// no frequency data has been fetched yet.
var fallbackLexicons = map[string][]string{
	"en": {
		"the", "be", "to", "of", "and", "a", "in", "that", "have", "i",
		"it", "for", "not", "on", "with", "he", "as", "you", "do", "at",
		"this", "but", "his", "by", "from", "they", "we", "say", "her", "she",
		"or", "an", "will", "my", "one", "all", "would", "there", "their", "what",
		"so", "up", "out", "if", "about", "who", "get", "which", "go", "me",
		"when", "make", "can", "like", "time", "no", "just", "him", "know", "take",
		"people", "into", "year", "your", "good", "some", "could", "them", "see", "other",
		"than", "then", "now", "look", "only", "come", "its", "over", "think", "also",
		"back", "after", "use", "two", "how", "our", "work", "first", "well", "way",
		"even", "new", "want", "because", "any", "these", "give", "day", "most", "us",
		"keyboard", "accuracy", "typing", "word", "score", "progress", "monitor",
		"insight", "log", "health", "craft", "apple", "logger", "balance",
		"rhythm", "tempo", "story", "error", "track", "flow", "keys",
	},
	"he": {
		"אני", "אתה", "את", "אנחנו", "הוא", "היא", "מה", "גם", "לא", "כן",
		"כאן", "שם", "בוקר", "לילה", "עבודה", "מקלדת", "תכנית", "מילה", "זרם", "אור",
		"דרך", "טקסט", "עוגה", "אהבה", "שיר", "בוא", "לך", "היום", "מחר", "גיע",
		"כתיבה", "קשר", "איפה", "מי", "למה", "עם", "עין",
	},
}

// FallbackLexicon returns the curated word set for a language, or nil when
// none is bundled.
func FallbackLexicon(lang string) []string {
	return fallbackLexicons[strings.ToLower(lang)]
}

// LoadLexiconFile reads one word per line from a user-supplied lexicon file.
func LoadLexiconFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only lexicon.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("lexicon file is empty")
	}
	return words, nil
}

package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Table maps words to their Zipf frequency for one language.
type Table map[string]float64

// Zipf returns the frequency for word, or false when the word is unknown.
func (t Table) Zipf(word string) (float64, bool) {
	score, ok := t[strings.ToLower(strings.TrimSpace(word))]
	return score, ok
}

// LoadTable reads the frequency table for lang from the wheel. listType
// selects between the "small" and "large" lists shipped in the dataset.
func LoadTable(wheelPath, lang, listType string) (Table, error) {
	if wheelPath == "" {
		return nil, fmt.Errorf("wheel path is required")
	}
	lang = strings.ToLower(lang)
	if lang == "" {
		return nil, fmt.Errorf("language is required")
	}
	if listType == "" {
		listType = "small"
	}

	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	dataFile := selectDataFile(reader.File, lang, listType)
	if dataFile == nil {
		return nil, fmt.Errorf("no data file found for %s/%s", lang, listType)
	}

	rc, err := dataFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	table, err := decodeTable(dataFile.Name, rc)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("frequency data contained no entries")
	}
	return table, nil
}

// Oracle answers Zipf frequency lookups across a set of loaded languages.
type Oracle struct {
	tables map[string]Table
}

// NewOracle loads a table per language from the wheel. Languages missing
// from the wheel are skipped; at least one table must load.
func NewOracle(wheelPath string, langs []string, listType string) (*Oracle, error) {
	tables := make(map[string]Table, len(langs))
	var lastErr error
	for _, lang := range langs {
		lang = strings.ToLower(lang)
		table, err := LoadTable(wheelPath, lang, listType)
		if err != nil {
			lastErr = err
			continue
		}
		tables[lang] = table
	}
	if len(tables) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("no frequency tables loaded: %w", lastErr)
		}
		return nil, fmt.Errorf("no frequency tables loaded")
	}
	return &Oracle{tables: tables}, nil
}

// ZipfFrequency returns the Zipf frequency of word in lang.
func (o *Oracle) ZipfFrequency(word, lang string) (float64, bool) {
	if o == nil {
		return 0, false
	}
	table, ok := o.tables[strings.ToLower(lang)]
	if !ok {
		return 0, false
	}
	return table.Zipf(word)
}

// Languages returns the sorted language codes with a loaded table.
func (o *Oracle) Languages() []string {
	out := make([]string, 0, len(o.tables))
	for lang := range o.tables {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

func selectDataFile(files []*zip.File, lang, listType string) *zip.File {
	listType = strings.ToLower(listType)

	type candidate struct {
		file  *zip.File
		score int
	}
	candidates := make([]candidate, 0, len(files))
	listCandidates := make([]candidate, 0, len(files))

	for _, file := range files {
		name := file.Name
		if !strings.HasPrefix(name, "wordfreq/data/") {
			continue
		}
		lower := strings.ToLower(name)
		if !strings.Contains(lower, ".msgpack") {
			continue
		}
		if !hasToken(lower, lang) {
			continue
		}
		score := 3
		listMatch := hasToken(lower, listType)
		if listMatch {
			score += 2
		}
		if strings.HasSuffix(lower, ".msgpack") {
			score++
		}
		entry := candidate{file: file, score: score}
		candidates = append(candidates, entry)
		if listMatch {
			listCandidates = append(listCandidates, entry)
		}
	}

	if len(listCandidates) > 0 {
		candidates = listCandidates
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(listCandidates) == 0 && len(candidates) > 1 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].file
}

func hasToken(name, token string) bool {
	if token == "" {
		return false
	}
	name = strings.ToLower(name)
	token = strings.ToLower(token)
	for i := 0; i+len(token) <= len(name); i++ {
		if name[i:i+len(token)] != token {
			continue
		}
		var before byte
		if i > 0 {
			before = name[i-1]
		}
		var after byte
		if i+len(token) < len(name) {
			after = name[i+len(token)]
		}
		if !isAlphaNum(before) && !isAlphaNum(after) {
			return true
		}
	}
	return false
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func decodeTable(name string, r io.Reader) (Table, error) {
	reader := r
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()
		reader = gz
	}

	payload, err := decodeMsgpack(reader)
	if err != nil {
		return nil, err
	}
	return tableFromData(payload)
}

// tableFromData converts the decoded msgpack payload to a Zipf table. The
// dataset stores a header followed by word bins, where bin i holds words
// at -i centibels and therefore Zipf value 9 - i/100. Entries that are
// not word lists (the header) do not count as bins. Map payloads are
// treated as direct word to score tables.
func tableFromData(data any) (Table, error) {
	switch v := data.(type) {
	case []any:
		table := make(Table)
		bin := 0
		for _, item := range v {
			words, ok := toStringSlice(item)
			if !ok {
				continue
			}
			zipf := 9 - float64(bin)/100
			bin++
			for _, word := range words {
				if _, exists := table[word]; exists {
					continue
				}
				table[word] = zipf
			}
		}
		if len(table) == 0 {
			return nil, fmt.Errorf("no word bins parsed from list")
		}
		return table, nil
	case map[any]any:
		table := make(Table, len(v))
		for key, value := range v {
			word, okWord := toString(key)
			score, okScore := toFloat64(value)
			if okWord && okScore {
				table[word] = score
			}
		}
		if len(table) == 0 {
			return nil, fmt.Errorf("no word entries parsed from map")
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unsupported msgpack root type %T", data)
	}
}

func toFloat64(v any) (float64, bool) {
	switch num := v.(type) {
	case float64:
		return num, true
	case float32:
		return float64(num), true
	case int64:
		return float64(num), true
	case uint64:
		return float64(num), true
	case string:
		if num == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		if utf8.Valid(val) {
			return string(val), true
		}
		return "", false
	default:
		return "", false
	}
}

func toStringSlice(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			str, ok := toString(item)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}

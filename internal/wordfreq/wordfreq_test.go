package wordfreq

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadTableBins(t *testing.T) {
	data := encodeTestMsgpack([]interface{}{
		map[string]interface{}{"format": "cB"},
		[]interface{}{"hello", "world"},
		[]interface{}{},
		[]interface{}{"keyboard"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/small_en.msgpack": data,
	})

	table, err := LoadTable(wheelPath, "en", "small")
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	if zipf, ok := table.Zipf("hello"); !ok || zipf != 9 {
		t.Fatalf("expected hello at zipf 9, got %v (ok=%v)", zipf, ok)
	}
	if zipf, ok := table.Zipf("keyboard"); !ok || math.Abs(zipf-8.98) > 1e-9 {
		t.Fatalf("expected keyboard at zipf 8.98, got %v (ok=%v)", zipf, ok)
	}
	if _, ok := table.Zipf("missing"); ok {
		t.Fatalf("expected missing word to be absent")
	}
}

func TestLoadTableNormalizesLookup(t *testing.T) {
	data := encodeTestMsgpack([]interface{}{
		map[string]interface{}{"format": "cB"},
		[]interface{}{"hello"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/small_en.msgpack": data,
	})

	table, err := LoadTable(wheelPath, "en", "small")
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if _, ok := table.Zipf("  HELLO "); !ok {
		t.Fatalf("expected lookup to trim and lowercase")
	}
}

func TestOracleZipfFrequency(t *testing.T) {
	enData := encodeTestMsgpack([]interface{}{
		map[string]interface{}{"format": "cB"},
		[]interface{}{"hello"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/small_en.msgpack": enData,
	})

	oracle, err := NewOracle(wheelPath, []string{"en", "he"}, "small")
	if err != nil {
		t.Fatalf("NewOracle failed: %v", err)
	}

	if zipf, ok := oracle.ZipfFrequency("hello", "en"); !ok || zipf != 9 {
		t.Fatalf("expected hello at zipf 9, got %v (ok=%v)", zipf, ok)
	}
	if _, ok := oracle.ZipfFrequency("hello", "he"); ok {
		t.Fatalf("expected missing language to report no match")
	}
	langs := oracle.Languages()
	if len(langs) != 1 || langs[0] != "en" {
		t.Fatalf("expected only en table, got %v", langs)
	}
}

func TestNewOracleFailsWithoutTables(t *testing.T) {
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/small_en.msgpack": encodeTestMsgpack([]interface{}{
			map[string]interface{}{"format": "cB"},
			[]interface{}{"hello"},
		}),
	})
	if _, err := NewOracle(wheelPath, []string{"fr"}, "small"); err == nil {
		t.Fatalf("expected error when no table loads")
	}
}

func TestExtractWordlistOrderAndFilter(t *testing.T) {
	data := encodeTestMsgpack([]interface{}{
		map[string]interface{}{"format": "cB"},
		[]interface{}{"hello", "a", "go-1"},
		[]interface{}{"world"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/large_en.msgpack": data,
	})

	words, err := ExtractWordlist(wheelPath, "en", "large", 3)
	if err != nil {
		t.Fatalf("ExtractWordlist failed: %v", err)
	}

	expected := []string{"hello", "world"}
	if len(words) != len(expected) {
		t.Fatalf("expected %d words, got %d: %v", len(expected), len(words), words)
	}
	for i, word := range expected {
		if words[i] != word {
			t.Fatalf("expected %q at index %d, got %q", word, i, words[i])
		}
	}
}

func TestExtractWordlistLimit(t *testing.T) {
	data := encodeTestMsgpack([]interface{}{
		map[string]interface{}{"format": "cB"},
		[]interface{}{"hello", "world", "again"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/large_en.msgpack": data,
	})

	words, err := ExtractWordlist(wheelPath, "en", "large", 2)
	if err != nil {
		t.Fatalf("ExtractWordlist failed: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
}

func TestFindCachedWheel(t *testing.T) {
	cacheDir := t.TempDir()

	wheel, err := FindCachedWheel(cacheDir)
	if err != nil {
		t.Fatalf("FindCachedWheel failed on empty dir: %v", err)
	}
	if wheel.Path != "" {
		t.Fatalf("expected empty wheel for empty cache, got %+v", wheel)
	}

	oldPath := filepath.Join(cacheDir, "wordfreq-3.0.0-py3-none-any.whl")
	newPath := filepath.Join(cacheDir, "wordfreq-3.1.1-py3-none-any.whl")
	if err := os.WriteFile(oldPath, []byte("old"), 0o644); err != nil {
		t.Fatalf("failed to write wheel: %v", err)
	}
	if err := os.WriteFile(newPath, []byte("new"), 0o644); err != nil {
		t.Fatalf("failed to write wheel: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("failed to age wheel: %v", err)
	}

	wheel, err = FindCachedWheel(cacheDir)
	if err != nil {
		t.Fatalf("FindCachedWheel failed: %v", err)
	}
	if wheel.Path != newPath {
		t.Fatalf("expected newest wheel %q, got %q", newPath, wheel.Path)
	}
	if wheel.Version != "3.1.1" {
		t.Fatalf("expected version 3.1.1, got %q", wheel.Version)
	}
	if !wheel.Cached {
		t.Fatalf("expected cached wheel")
	}
}

func encodeTestMsgpack(value interface{}) []byte {
	var buf bytes.Buffer
	writeMsgpack(&buf, value)
	return buf.Bytes()
}

func writeMsgpack(buf *bytes.Buffer, value interface{}) {
	switch v := value.(type) {
	case nil:
		buf.WriteByte(0xc0)
	case bool:
		if v {
			buf.WriteByte(0xc3)
		} else {
			buf.WriteByte(0xc2)
		}
	case int:
		writeMsgpack(buf, int64(v))
	case int64:
		if v >= 0 && v <= 0x7f {
			buf.WriteByte(byte(v))
			return
		}
		buf.WriteByte(0xd3)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(v))
		buf.Write(tmp[:])
	case float64:
		buf.WriteByte(0xcb)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
		buf.Write(tmp[:])
	case string:
		writeMsgpackString(buf, v)
	case []interface{}:
		writeMsgpackArray(buf, v)
	case map[string]interface{}:
		writeMsgpackMap(buf, v)
	default:
		panic("unsupported type in test msgpack encoder")
	}
}

func writeMsgpackArray(buf *bytes.Buffer, values []interface{}) {
	length := len(values)
	if length <= 15 {
		buf.WriteByte(0x90 | byte(length))
	} else {
		buf.WriteByte(0xdc)
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(length))
		buf.Write(tmp[:])
	}
	for _, value := range values {
		writeMsgpack(buf, value)
	}
}

func writeMsgpackMap(buf *bytes.Buffer, values map[string]interface{}) {
	length := len(values)
	if length > 15 {
		panic("test msgpack encoder only supports fixmaps")
	}
	buf.WriteByte(0x80 | byte(length))
	for key, value := range values {
		writeMsgpackString(buf, key)
		writeMsgpack(buf, value)
	}
}

func writeMsgpackString(buf *bytes.Buffer, value string) {
	length := len(value)
	if length <= 31 {
		buf.WriteByte(0xa0 | byte(length))
	} else {
		buf.WriteByte(0xd9)
		buf.WriteByte(byte(length))
	}
	buf.WriteString(value)
}

func writeTestWheel(t *testing.T, files map[string][]byte) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "wordfreq-*.whl")
	if err != nil {
		t.Fatalf("failed to create temp wheel: %v", err)
	}
	defer func() {
		_ = tmpFile.Close()
	}()

	zw := zip.NewWriter(tmpFile)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return tmpFile.Name()
}

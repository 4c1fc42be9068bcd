package stats

import "testing"

func TestFormatTableAlignment(t *testing.T) {
	lines := formatTable(
		[]string{"Word", "Count"},
		[][]string{{"hello", "12"}, {"hi", "7"}},
		map[int]bool{1: true},
	)
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %v", lines)
	}
	if lines[0] != "Word   Count" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "hello     12" {
		t.Fatalf("expected right-aligned count: %q", lines[1])
	}
	if lines[2] != "hi         7" {
		t.Fatalf("expected padded word column: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Key"}, [][]string{{"ש"}, {"aa"}}, nil)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
	// Hebrew letters are single-cell; rows must share the column width.
	if lines[1] != "ש" || lines[2] != "aa" {
		t.Fatalf("unexpected rows: %q %q", lines[1], lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil for empty table, got %v", lines)
	}
}

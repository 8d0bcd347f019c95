package output

import (
	"strings"
	"testing"
)

func TestHexDumperElidesConsecutiveDuplicateRows(t *testing.T) {
	sink := NewMemSink()
	w := NewWriter(sink, nil, 0, 16)
	w.Hex.SetColor(false)

	row := make([]byte, 16)
	for i := range row {
		row[i] = 'A'
	}

	w.Hex.Hex(HexLine, 0, row)
	w.Hex.Hex(HexLine, 16, row)
	w.Hex.Hex(HexLine, 32, row)
	w.Hex.Done()
	w.Flush()

	lines := strings.Split(strings.TrimRight(sink.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 output lines (row, star), got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "00000000") {
		t.Fatalf("expected first row to carry the offset, got %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) != "*" {
		t.Fatalf("expected the second and third rows to collapse into a single '*', got %q", lines[1])
	}
}

func TestHexDumperDoesNotElideAcrossDifferentHighlightClass(t *testing.T) {
	sink := NewMemSink()
	w := NewWriter(sink, nil, 0, 16)
	w.Hex.SetColor(false)

	row := make([]byte, 16)
	for i := range row {
		row[i] = 'B'
	}

	w.Hex.Hex(HexLine, 0, row)
	w.Hex.Hex(HexMatch, 16, row)
	w.Hex.Done()
	w.Flush()

	lines := strings.Split(strings.TrimRight(sink.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 distinct rows since highlight class differs, got %d: %q", len(lines), lines)
	}
	if strings.TrimSpace(lines[1]) == "*" {
		t.Fatalf("rows with different highlight classes must not elide, got %q", lines[1])
	}
}

func TestHexDumperPadsShortFinalRow(t *testing.T) {
	sink := NewMemSink()
	w := NewWriter(sink, nil, 0, 16)
	w.Hex.SetColor(false)

	w.Hex.Hex(HexMatch, 0, []byte("abc"))
	w.Hex.Done()
	w.Flush()

	got := sink.String()
	if !strings.Contains(got, "61 62 63") {
		t.Fatalf("expected hex bytes 61 62 63, got %q", got)
	}
	if !strings.Contains(got, "abc") {
		t.Fatalf("expected ascii gutter to show abc, got %q", got)
	}
}

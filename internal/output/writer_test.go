package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"testing"
)

func flushedWriter(sink Sink, maxWidth int) *Writer {
	return NewWriter(sink, nil, maxWidth, 16)
}

func TestWidthTruncatedFlush(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 5)
	w.Str("abcdefg\nxy\n")
	w.Flush()

	if got, want := sink.String(), "abcde\nxy\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWidthTruncationSkipsAnsiEscapes(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 3)
	// "ab" + a CSI color sequence (doesn't count toward column) + "c" which
	// is the 3rd visible column, then "d" should be dropped.
	w.Str("ab\x1b[31mcd\x1b[0m\n")
	w.Flush()

	got := sink.String()
	if got == "" {
		t.Fatal("expected non-empty output")
	}
	if bytes.Contains([]byte(got), []byte("d")) {
		t.Fatalf("expected column 4 to be truncated, got %q", got)
	}
}

func TestUTF8LimitedEndsOnBoundary(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 0)
	s := []byte("aé中z") // a, e-acute (2 bytes), CJK (3 bytes), z
	w.UTF8Limited(s, 3)
	w.Flush()

	got := sink.Bytes()
	if !bytes.Equal(got, s[:1+2+3]) {
		t.Fatalf("got %q, want first 3 runes of %q", got, s)
	}
}

func TestQuoteCRoundTrips(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 0)
	input := []byte("a\"b\\c\nd\te")
	w.Byte('"')
	w.QuoteC(input)
	w.Byte('"')
	w.Flush()

	// Minimal C-string unescape for the round trip check.
	got := unescapeC(sink.String())
	if got != string(input) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, input)
	}
}

func unescapeC(quoted string) string {
	quoted = quoted[1 : len(quoted)-1] // strip surrounding quotes
	var out []byte
	for i := 0; i < len(quoted); i++ {
		c := quoted[i]
		if c == '\\' && i+1 < len(quoted) {
			i++
			switch quoted[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\', '"':
				out = append(out, quoted[i])
			case 'x':
				hi := fromHex(quoted[i+1])
				lo := fromHex(quoted[i+2])
				out = append(out, hi<<4|lo)
				i += 2
			}
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func fromHex(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	}
	return 0
}

func TestQuoteCSVRoundTrips(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 0)
	input := []byte(`he said "hi", twice`)
	w.Byte('"')
	w.QuoteCSV(input)
	w.Byte('"')
	w.Flush()

	r := csv.NewReader(bytes.NewReader(sink.Bytes()))
	rec, err := r.Read()
	if err != nil {
		t.Fatalf("csv read: %v", err)
	}
	if rec[0] != string(input) {
		t.Fatalf("got %q, want %q", rec[0], input)
	}
}

func TestQuoteJSONRoundTrips(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 0)
	input := []byte("control:\x01 quote:\" backslash:\\ tab:\t")
	w.Byte('"')
	w.QuoteJSON(input)
	w.Byte('"')
	w.Flush()

	var decoded string
	if err := json.Unmarshal(sink.Bytes(), &decoded); err != nil {
		t.Fatalf("json unmarshal %q: %v", sink.String(), err)
	}
	if decoded != string(input) {
		t.Fatalf("got %q, want %q", decoded, input)
	}
}

func TestQuoteXMLRoundTrips(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 0)
	input := []byte(`a&b<c>d"e'f`)
	w.Str("<v>")
	w.QuoteXML(input)
	w.Str("</v>")
	w.Flush()

	var v struct {
		Text string `xml:",chardata"`
	}
	if err := xml.Unmarshal(sink.Bytes(), &v); err != nil {
		t.Fatalf("xml unmarshal %q: %v", sink.String(), err)
	}
	if v.Text != string(input) {
		t.Fatalf("got %q, want %q", v.Text, input)
	}
}

func TestQuoteURIPassesThroughSafeBytes(t *testing.T) {
	sink := NewMemSink()
	w := flushedWriter(sink, 0)
	w.QuoteURI([]byte("safe-chars_09 unsafe%;\x01"))
	w.Flush()

	got := sink.String()
	want := "safe-chars_09 unsafe%25%3B%01"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

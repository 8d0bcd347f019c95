package output

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LooksLikeUTF16 reports whether content opens with a UTF-16 byte
// order mark and decodes cleanly as UTF-16 text. A file that passes
// this check is treated as text despite the embedded NUL bytes every
// other-byte UTF-16 code unit produces (spec.md §6 "Environment"
// collaborators decide text vs. binary; this is that decision for the
// one encoding worth special-casing, per SPEC_FULL.md §4.8).
func LooksLikeUTF16(content []byte) bool {
	if len(content) < 2 {
		return false
	}
	var endian unicode.Endianness
	switch {
	case content[0] == 0xFF && content[1] == 0xFE:
		endian = unicode.LittleEndian
	case content[0] == 0xFE && content[1] == 0xFF:
		endian = unicode.BigEndian
	default:
		return false
	}
	dec := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	_, _, err := transform.Bytes(dec, content)
	return err == nil
}

// DetectBinary applies grep's standard NUL-byte heuristic to decide
// whether a Worker should set its Writer's BINARY advisory mode,
// treating UTF-16 text as text rather than binary.
func DetectBinary(content []byte) bool {
	if LooksLikeUTF16(content) {
		return false
	}
	return bytes.IndexByte(content, 0) >= 0
}

package lsp

import (
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/bastiangx/codeflow/internal/utils"
)

// offsetAt converts an LSP position (line, UTF-16 column) into a byte offset
// in text. Positions past the end of a line or of the text are clamped.
func offsetAt(text string, pos protocol.Position) int {
	off := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return len(text)
		}
		off += i + 1
	}

	units := protocol.UInteger(0)
	for off < len(text) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[off:])
		if r == '\n' {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		off += size
	}
	return off
}

// prefixAt returns the identifier fragment ending at offset and, when that
// fragment directly follows a '.', the identifier before the dot.
func prefixAt(text string, offset int) (prefix, object string) {
	start := offset
	for start > 0 && utils.IsIdentByte(text[start-1]) {
		start--
	}
	prefix = text[start:offset]

	if start == 0 || text[start-1] != '.' {
		return prefix, ""
	}
	dot := start - 1
	objStart := dot
	for objStart > 0 && utils.IsIdentByte(text[objStart-1]) {
		objStart--
	}
	return prefix, text[objStart:dot]
}

package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	crlf    = []byte("\r\n")
	lf      = []byte("\n")
)

// normalizeCRLF turns CRLF into LF; a lone CR stays, it is a token separator
// for the lexer like any other whitespace.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, crlf) {
		return content, false
	}
	return bytes.ReplaceAll(content, crlf, lf), true
}

func removeBOM(content []byte) ([]byte, bool) {
	return bytes.CutPrefix(content, utf8BOM)
}

// buildLineIndex returns the offsets of every '\n' in content.
func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, lf))
	for off := 0; ; off++ {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		pos, err := safecast.Conv[uint32](off)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		idx = append(idx, pos)
	}
}

// toLineCol maps a byte offset onto 1-based line and column. A newline
// belongs to the line it ends.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// число переводов строки строго до off
	before, _ := slices.BinarySearch(lineIdx, off)
	var lineStart uint32
	if before > 0 {
		lineStart = lineIdx[before-1] + 1
	}
	line, err := safecast.Conv[uint32](before + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: line, Col: off - lineStart + 1}
}

// NormalizePath gives the form of a path used as a key by the dependency
// graph, diagnostics and suppressions: cleaned, forward slashes.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(p))
}

package lexer

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"tscan/internal/source"
)

// Cursor walks the bytes of one configuration's text. Reads past the end
// yield 0, which no C token starts with.
type Cursor struct {
	src  []byte
	file source.FileID
	Off  uint32
}

func NewCursor(f *source.File) Cursor {
	if _, err := safecast.Conv[uint32](len(f.Content)); err != nil {
		panic(fmt.Errorf("unit %s is too large: %w", f.Path, err))
	}
	return Cursor{src: f.Content, file: f.ID}
}

func (c *Cursor) EOF() bool { return int(c.Off) >= len(c.src) }

// Peek is PeekAt(0).
func (c *Cursor) Peek() byte { return c.PeekAt(0) }

// PeekAt looks n bytes ahead.
func (c *Cursor) PeekAt(n uint32) byte {
	if i := int(c.Off) + int(n); i < len(c.src) {
		return c.src[i]
	}
	return 0
}

// Bump consumes one byte and returns it.
func (c *Cursor) Bump() byte {
	b := c.Peek()
	if !c.EOF() {
		c.Off++
	}
	return b
}

// EatString consumes s when the text continues with it.
func (c *Cursor) EatString(s string) bool {
	if c.EOF() || !bytes.HasPrefix(c.src[c.Off:], []byte(s)) {
		return false
	}
	c.Off += uint32(len(s)) //nolint:gosec // s короткий литерал
	return true
}

// Mark remembers where a token starts.
type Mark uint32

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

// SpanFrom is the span from m to the cursor.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.file, Start: uint32(m), End: c.Off}
}

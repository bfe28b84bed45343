package source

type (
	// FileID uniquely identifies a source unit within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source unit.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the unit was supplied from memory (inline content, stdin, tests).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source unit.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source unit.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Size returns the content length in bytes.
func (f *File) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Content)
}

// Virtual reports whether the unit content did not come from disk.
func (f *File) Virtual() bool {
	return f != nil && f.Flags&FileVirtual != 0
}

// NewFile builds a standalone virtual unit outside any FileSet. The lexer uses
// it for the expanded text of one configuration.
func NewFile(path string, content []byte) *File {
	return &File{
		Path:    NormalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   FileVirtual,
	}
}

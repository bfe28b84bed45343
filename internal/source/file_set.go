package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
)

// FileSet holds the units read during one session. A path may have several
// versions (the minimizer feeds back reduced text); the newest one wins on
// lookup. Adding the same bytes under the same path again is a no-op.
type FileSet struct {
	mu     sync.RWMutex
	files  []*File
	newest map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{newest: make(map[string]FileID)}
}

// Add stores content as the newest version of path and returns its id.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	path = NormalizePath(path)
	sum := sha256.Sum256(content)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if id, ok := fs.newest[path]; ok {
		if prev := fs.files[id]; prev.Hash == sum && prev.Flags == flags {
			return id
		}
	}
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	fs.files = append(fs.files, &File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sum,
		Flags:   flags,
	})
	fs.newest[path] = id
	return id
}

// Load reads path from disk, dropping a UTF-8 BOM and turning CRLF into LF.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- units are named by the user
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content, bom := removeBOM(raw)
	if bom {
		flags |= FileHadBOM
	}
	content, crlf := normalizeCRLF(content)
	if crlf {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual stores in-memory text verbatim, without any normalization.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file with id, nil for an unknown id.
func (fs *FileSet) Get(id FileID) *File {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if int(id) >= len(fs.files) {
		return nil
	}
	return fs.files[id]
}

// Lookup returns the newest version of path.
func (fs *FileSet) Lookup(path string) (*File, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	id, ok := fs.newest[NormalizePath(path)]
	if !ok {
		return nil, false
	}
	return fs.files[id], true
}

// Len counts stored versions, not paths.
func (fs *FileSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// Resolve maps span onto line and column positions of its file.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineOf returns the 1-based line holding byte off.
func (f *File) LineOf(off uint32) uint32 {
	return toLineCol(f.LineIdx, off).Line
}

// Line returns the text of line n (1-based) without its newline.
func (f *File) Line(n uint32) (string, bool) {
	if f == nil || n == 0 || int64(n) > int64(len(f.LineIdx))+1 {
		return "", false
	}
	var start int
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	if start > len(f.Content) {
		return "", false
	}
	rest := f.Content[start:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return string(rest), true
}

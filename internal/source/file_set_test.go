package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.c", []byte("int a;"), 0)
	if id1 != 0 {
		t.Fatalf("expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("test.c", []byte("int b;"), 0)
	if id2 != 1 {
		t.Fatalf("expected second FileID to be 1, got %d", id2)
	}

	latest, ok := fs.Lookup("./test.c")
	if !ok || latest.ID != id2 {
		t.Fatalf("Lookup = %+v, %v; want id %d", latest, ok, id2)
	}
	if again := fs.Add("test.c", []byte("int b;"), 0); again != id2 || fs.Len() != 2 {
		t.Fatalf("same content must keep id %d, got %d (len %d)", id2, again, fs.Len())
	}
	if got := string(fs.Get(id1).Content); got != "int a;" {
		t.Fatalf("old version content = %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestAddVirtualKeepsContentVerbatim(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mem.c", []byte("a\r\nb\n"))
	f := fs.Get(id)
	if string(f.Content) != "a\r\nb\n" {
		t.Fatalf("virtual content was modified: %q", f.Content)
	}
	if !f.Virtual() {
		t.Fatalf("expected FileVirtual flag")
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.c")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFint a;\r\nint b;\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "int a;\nint b;\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.c")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLineOfAndLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x.c", []byte("a\nbc\n\nd")))

	cases := []struct {
		off  uint32
		line uint32
	}{
		{0, 1}, {1, 1}, {2, 2}, {4, 2}, {5, 3}, {6, 4},
	}
	for _, tc := range cases {
		if got := f.LineOf(tc.off); got != tc.line {
			t.Errorf("LineOf(%d) = %d, want %d", tc.off, got, tc.line)
		}
	}

	for n, want := range map[uint32]string{1: "a", 2: "bc", 3: "", 4: "d"} {
		if got, ok := f.Line(n); !ok || got != want {
			t.Errorf("Line(%d) = %q, %v; want %q", n, got, ok, want)
		}
	}
	for _, n := range []uint32{0, 5, 9} {
		if _, ok := f.Line(n); ok {
			t.Errorf("Line(%d) must not exist", n)
		}
	}
}

func TestResolveColumns(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.c", []byte("ab\ncd"))
	start, end := fs.Resolve(Span{File: id, Start: 4, End: 5})
	if start != (LineCol{Line: 2, Col: 2}) || end != (LineCol{Line: 2, Col: 3}) {
		t.Fatalf("Resolve = %+v %+v", start, end)
	}
}

func TestNormalizationHelpers(t *testing.T) {
	got, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	if !changed || string(got) != "a\nb\rc\n" {
		t.Fatalf("normalizeCRLF = %q, %v", got, changed)
	}
	if _, changed := normalizeCRLF([]byte("a\rb")); changed {
		t.Fatal("lone CR is not a line break")
	}
	if got, had := removeBOM([]byte("\xEF\xBB")); had || len(got) != 2 {
		t.Fatal("truncated BOM must stay")
	}
	if got := NormalizePath("src//lib/../a.c"); got != "src/a.c" {
		t.Fatalf("NormalizePath = %q", got)
	}
}

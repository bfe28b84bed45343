package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const sample = `
[check]
max-configs = 4
enabled = ["zero*", "assignInCondition"]
timings = true
dependency-scope = "session"

[preprocessor]
defines = ["DEBUG=1", "LINUX"]
undefs = ["WIN32"]

[[suppress]]
id = "zerodiv"
file = "src/**/*.c"

[[suppress]]
id = "assignIfError"
line = 10

[unused]
entry-points = ["main", "test_*"]
`

func TestParseSample(t *testing.T) {
	s, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Check.MaxConfigs != 4 || !s.Check.Timings || s.Check.DependencyScope != ScopeSession {
		t.Fatalf("unexpected check section: %+v", s.Check)
	}
	if !slices.Equal(s.DefineNames(), []string{"DEBUG", "LINUX"}) {
		t.Fatalf("define names = %v", s.DefineNames())
	}
	rules := s.Rules()
	if len(rules) != 2 || rules[0].File != "src/**/*.c" || rules[1].Line != 10 {
		t.Fatalf("rules = %+v", rules)
	}
	if !s.Unused.Enabled {
		t.Fatalf("unused pass must stay enabled by default")
	}
	if !slices.Equal(s.Unused.EntryPoints, []string{"main", "test_*"}) {
		t.Fatalf("entry points = %v", s.Unused.EntryPoints)
	}
}

func TestDefaultsSurviveEmptyFile(t *testing.T) {
	s, err := Parse("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Check.MaxConfigs != DefaultMaxConfigs || s.Check.DependencyScope != ScopeUnit {
		t.Fatalf("defaults lost: %+v", s.Check)
	}
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"max-configs": "[check]\nmax-configs = 0\n",
		"scope":       "[check]\ndependency-scope = \"world\"\n",
		"jobs":        "[check]\njobs = -1\n",
		"macro":       "[preprocessor]\ndefines = [\"1ABC\"]\n",
		"suppress":    "[[suppress]]\nfile = \"a.c\"\n",
		"entry":       "[unused]\nentry-points = [\"[\"]\n",
		"unknown key": "[check]\nmax-config = 3\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(text); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestNilSettingsInvalid(t *testing.T) {
	var s *Settings
	if err := s.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, []byte("[check]\nmax-configs = 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	found, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if found != path {
		t.Fatalf("found %q, want %q", found, path)
	}
	s, err := LoadNearest(nested)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Check.MaxConfigs != 2 || s.Path != path {
		t.Fatalf("unexpected settings %+v", s)
	}
}

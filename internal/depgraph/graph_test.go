package depgraph

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func sample() *Graph {
	g := New()
	g.AddEdges("main.c", "a.h", "b.h")
	g.AddEdges("a.h", "b.h")
	g.AddEdges("b.h", "a.h") // include cycle
	g.AddEdges("lib.c", "c.h")
	return g
}

func TestSelfEdgesIgnored(t *testing.T) {
	g := New()
	if g.AddEdge("a.c", "a.c") {
		t.Fatalf("self edge accepted")
	}
	if g.Len() != 0 {
		t.Fatalf("Len = %d", g.Len())
	}
}

func TestTransitiveTerminatesOnCycles(t *testing.T) {
	g := sample()
	if got := g.Transitive("main.c"); !slices.Equal(got, []string{"a.h", "b.h"}) {
		t.Fatalf("Transitive(main.c) = %v", got)
	}
	if got := g.Transitive("a.h"); !slices.Equal(got, []string{"b.h"}) {
		t.Fatalf("Transitive(a.h) = %v", got)
	}
}

func TestAffected(t *testing.T) {
	g := sample()
	if got := g.Affected("b.h"); !slices.Equal(got, []string{"a.h", "b.h", "main.c"}) {
		t.Fatalf("Affected(b.h) = %v", got)
	}
	if got := g.Affected("c.h"); !slices.Equal(got, []string{"c.h", "lib.c"}) {
		t.Fatalf("Affected(c.h) = %v", got)
	}
	if got := g.Dependents("c.h"); !slices.Equal(got, []string{"lib.c"}) {
		t.Fatalf("Dependents(c.h) = %v", got)
	}
}

func TestExportReplaceRoundTrip(t *testing.T) {
	g := sample()
	exported := g.ExportTable()

	fresh := New()
	fresh.ReplaceTable(exported)
	if len(exported) != 0 {
		t.Fatalf("ReplaceTable must take ownership of the table")
	}
	for _, u := range []string{"main.c", "a.h", "b.h", "lib.c", "c.h", "unknown"} {
		if a, b := g.DependenciesOf(u), fresh.DependenciesOf(u); !slices.Equal(a, b) {
			t.Errorf("DependenciesOf(%s): %v != %v", u, a, b)
		}
	}

	// экспорт отдаёт копию
	copyTable := g.ExportTable()
	copyTable["main.c"][0] = "mutated.h"
	if g.DependenciesOf("main.c")[0] != "a.h" {
		t.Fatalf("ExportTable leaked internal state")
	}
}

func TestSaveLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "deps.mp")
	g := sample()
	if err := SaveTable(path, "session-1", g.ExportTable()); err != nil {
		t.Fatalf("SaveTable: %v", err)
	}
	table, session, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if session != "session-1" {
		t.Errorf("session = %q", session)
	}
	fresh := New()
	fresh.ReplaceTable(table)
	if !slices.Equal(fresh.Transitive("main.c"), g.Transitive("main.c")) {
		t.Fatalf("loaded graph differs")
	}

	missing, _, err := LoadTable(filepath.Join(t.TempDir(), "nope.mp"))
	if err != nil || missing != nil {
		t.Fatalf("missing file: %v, %v", missing, err)
	}
}

func TestLoadTableSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.mp")
	data, err := msgpack.Marshal(&tablePayload{Schema: tableSchemaVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadTable(path); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestToposort(t *testing.T) {
	g := New()
	g.AddEdges("main.c", "util.h", "io.h")
	g.AddEdges("io.h", "util.h")
	topo := g.Toposort()
	if topo.Cyclic {
		t.Fatalf("unexpected cycle %v", topo.Cycles)
	}
	if !slices.Equal(topo.Order, []string{"util.h", "io.h", "main.c"}) {
		t.Fatalf("Order = %v", topo.Order)
	}

	cyclic := sample().Toposort()
	if !cyclic.Cyclic || !slices.Contains(cyclic.Cycles, "a.h") || !slices.Contains(cyclic.Cycles, "main.c") {
		t.Fatalf("cycle not reported: %+v", cyclic)
	}
}

func TestMergeUnion(t *testing.T) {
	a := New()
	a.AddEdge("x.c", "x.h")
	b := New()
	b.AddEdge("x.c", "y.h")
	b.AddEdge("x.c", "x.h")

	a.Merge(b)
	a.Merge(b)
	if got := a.DependenciesOf("x.c"); !slices.Equal(got, []string{"x.h", "y.h"}) {
		t.Fatalf("merged deps = %v", got)
	}
}

// Package depgraph records which units a unit pulls in through includes.
//
// Cycles are legal (mutually including headers); every traversal keeps a
// visited set. A unit never depends on itself: self edges are dropped.
package depgraph

import (
	"slices"
	"sync"
)

// Table is the exchange form of a graph: unit -> units it depends on.
type Table map[string][]string

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for unit, deps := range t {
		out[unit] = slices.Clone(deps)
	}
	return out
}

type set map[string]struct{}

// Graph is safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	edges map[string]set
}

func New() *Graph {
	return &Graph{edges: make(map[string]set)}
}

// AddEdge records that unit depends on dep. It reports whether the edge is new.
func (g *Graph) AddEdge(unit, dep string) bool {
	if unit == "" || dep == "" || unit == dep {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addLocked(unit, dep)
}

// AddEdges records several dependencies of one unit.
func (g *Graph) AddEdges(unit string, deps ...string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	added := 0
	for _, dep := range deps {
		if unit == "" || dep == "" || unit == dep {
			continue
		}
		if g.addLocked(unit, dep) {
			added++
		}
	}
	return added
}

func (g *Graph) addLocked(unit, dep string) bool {
	deps, ok := g.edges[unit]
	if !ok {
		deps = make(set)
		g.edges[unit] = deps
	}
	if _, dup := deps[dep]; dup {
		return false
	}
	deps[dep] = struct{}{}
	return true
}

// DependenciesOf returns the direct dependencies of unit, sorted.
func (g *Graph) DependenciesOf(unit string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.edges[unit])
}

// Transitive returns every unit reachable from unit, sorted, without unit
// itself even when it sits on a cycle.
func (g *Graph) Transitive(unit string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := set{unit: {}}
	stack := []string{unit}
	var out []string
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dep := range g.edges[cur] {
			if _, ok := visited[dep]; ok {
				continue
			}
			visited[dep] = struct{}{}
			out = append(out, dep)
			stack = append(stack, dep)
		}
	}
	slices.Sort(out)
	return out
}

// Dependents returns the units that directly depend on unit, sorted.
func (g *Graph) Dependents(unit string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for from, deps := range g.edges {
		if _, ok := deps[unit]; ok {
			out = append(out, from)
		}
	}
	slices.Sort(out)
	return out
}

// Affected returns the changed units together with every unit that reaches one
// of them, sorted: the units an incremental run has to check again.
func (g *Graph) Affected(changed ...string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	reverse := make(map[string][]string)
	for from, deps := range g.edges {
		for dep := range deps {
			reverse[dep] = append(reverse[dep], from)
		}
	}

	visited := make(set, len(changed))
	stack := make([]string, 0, len(changed))
	for _, u := range changed {
		if _, ok := visited[u]; !ok {
			visited[u] = struct{}{}
			stack = append(stack, u)
		}
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, from := range reverse[cur] {
			if _, ok := visited[from]; ok {
				continue
			}
			visited[from] = struct{}{}
			stack = append(stack, from)
		}
	}
	return sortedKeys(visited)
}

// Units returns every unit that has at least one recorded dependency, sorted.
func (g *Graph) Units() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.edges))
	for unit := range g.edges {
		out = append(out, unit)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, deps := range g.edges {
		n += len(deps)
	}
	return n
}

// ReplaceTable moves t into the graph, dropping every previous edge. The
// graph owns the data afterwards; t is cleared so the caller cannot keep
// mutating it behind the graph's back.
func (g *Graph) ReplaceTable(t Table) {
	edges := make(map[string]set, len(t))
	for unit, deps := range t {
		for _, dep := range deps {
			if unit == "" || dep == "" || unit == dep {
				continue
			}
			s, ok := edges[unit]
			if !ok {
				s = make(set, len(deps))
				edges[unit] = s
			}
			s[dep] = struct{}{}
		}
	}
	clear(t)

	g.mu.Lock()
	g.edges = edges
	g.mu.Unlock()
}

// ExportTable returns a deep copy of the graph with sorted dependency lists.
func (g *Graph) ExportTable() Table {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(Table, len(g.edges))
	for unit, deps := range g.edges {
		out[unit] = sortedKeys(deps)
	}
	return out
}

// Merge adds every edge of other. Merging is a set union.
func (g *Graph) Merge(other *Graph) {
	if other == nil || other == g {
		return
	}
	t := other.ExportTable()
	g.mu.Lock()
	defer g.mu.Unlock()
	for unit, deps := range t {
		for _, dep := range deps {
			g.addLocked(unit, dep)
		}
	}
}

func sortedKeys(s set) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

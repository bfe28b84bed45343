package depgraph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type nodeID uint32

// Topo is a dependencies-first ordering of the graph.
type Topo struct {
	Order   []string   // линейный порядок, зависимости раньше зависящих
	Batches [][]string // волны юнитов без взаимных зависимостей
	Cyclic  bool
	Cycles  []string // узлы, оставшиеся в цикле
}

// Toposort orders every known unit (including pure dependencies) with Kahn's
// algorithm. Units on or behind an include cycle are reported in Cycles.
func (g *Graph) Toposort() *Topo {
	t := g.ExportTable()

	names := make([]string, 0, len(t))
	seen := make(set, len(t))
	for unit, deps := range t {
		for _, n := range append([]string{unit}, deps...) {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	slices.Sort(names)

	ids := make(map[string]nodeID, len(names))
	for i, n := range names {
		id, err := safecast.Conv[nodeID](i)
		if err != nil {
			panic(fmt.Errorf("unit id overflow: %w", err))
		}
		ids[n] = id
	}

	// ребро dep -> unit: юнит готов, когда готовы все его зависимости
	pending := make([]int, len(names))
	dependents := make([][]nodeID, len(names))
	for unit, deps := range t {
		u := ids[unit]
		pending[u] = len(deps)
		for _, dep := range deps {
			d := ids[dep]
			dependents[d] = append(dependents[d], u)
		}
	}

	topo := &Topo{Order: make([]string, 0, len(names))}
	var current []nodeID
	for _, n := range names {
		if id := ids[n]; pending[id] == 0 {
			current = append(current, id)
		}
	}

	for len(current) > 0 {
		batch := make([]string, 0, len(current))
		var next []nodeID
		for _, id := range current {
			batch = append(batch, names[id])
			for _, dep := range dependents[id] {
				pending[dep]--
				if pending[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		topo.Order = append(topo.Order, batch...)
		topo.Batches = append(topo.Batches, batch)
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != len(names) {
		topo.Cyclic = true
		for i, n := range names {
			if pending[i] > 0 {
				topo.Cycles = append(topo.Cycles, n)
			}
		}
	}
	return topo
}

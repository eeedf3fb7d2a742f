// Package topology provides a minimal, concrete reference implementation of
// sim.Topology: a fixed set of nodes, direct queue/pipe link grids, and an
// enumerated path catalog per (src, dst) pair. The simulator core depends
// only on the sim.Topology interface; this package exists so the repository
// is runnable end to end without a full network-topology builder, which
// spec.md §1 explicitly excludes from the core's scope.
package topology

import "github.com/dikang/ffsim-core/sim"

// link is the concrete queue/pipe handle this reference topology hands to
// the core. The core treats it as opaque (sim.LinkEndpoint); only this
// package and a matching transport implementation need to understand it.
type link struct {
	kind string // "queue" or "pipe"
	a, b int
}

// Flat is a fully-connected reference topology: every ordered pair of nodes
// has exactly one direct link, and Paths returns that single-hop path plus
// any additional alternate routes registered with AddPath.
type Flat struct {
	numNodes int
	queues   map[[2]int]*link
	pipes    map[[2]int]*link
	paths    map[[2]int][]sim.Path
}

// NewFlat returns a fully-connected topology over n nodes, with one direct
// queue/pipe link and one default single-hop path between every ordered
// pair.
func NewFlat(n int) *Flat {
	f := &Flat{
		numNodes: n,
		queues:   make(map[[2]int]*link),
		pipes:    make(map[[2]int]*link),
		paths:    make(map[[2]int][]sim.Path),
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			f.queues[[2]int{a, b}] = &link{kind: "queue", a: a, b: b}
			f.pipes[[2]int{a, b}] = &link{kind: "pipe", a: a, b: b}
			f.paths[[2]int{a, b}] = []sim.Path{{f.queues[[2]int{a, b}], f.pipes[[2]int{a, b}]}}
		}
	}
	return f
}

// AddPath registers an additional candidate route between src and dst,
// giving the flow launcher's random path selection (spec.md §4.6) more
// than one choice to draw from.
func (f *Flat) AddPath(src, dst int, path sim.Path) {
	key := [2]int{src, dst}
	f.paths[key] = append(f.paths[key], path)
}

func (f *Flat) Paths(src, dst int) []sim.Path {
	return f.paths[[2]int{src, dst}]
}

func (f *Flat) Queue(a, b int) sim.LinkEndpoint {
	return f.queues[[2]int{a, b}]
}

func (f *Flat) Pipe(a, b int) sim.LinkEndpoint {
	return f.pipes[[2]int{a, b}]
}

func (f *Flat) NumNodes() int { return f.numNodes }

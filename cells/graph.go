package cells

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/hex"
)

// Layout errors returned by NewGraph.
var (
	ErrNoCore            = errors.New("layout has no core cell")
	ErrMultipleCores     = errors.New("layout has more than one core cell")
	ErrDuplicatePosition = errors.New("two cells share a position")
	ErrInvalidCell       = errors.New("cell has no health")
)

// Graph owns every cell of one craft. Cells live in a dense arena and refer
// to each other by index only.
type Graph struct {
	cells  []Cell
	groups [components.NumCapabilities][]int
	adj    [][]int
	byPos  map[hex.Coord]int
	core   int

	// live mirrors adjacency between alive cells; dead cells are removed.
	live  *simple.UndirectedGraph
	dirty bool

	deaths int
}

// NewGraph assembles a graph from specs. Insertion order of specs fixes the
// order of cells within each capability group. Hex-adjacent cells are linked.
func NewGraph(specs []Spec) (*Graph, error) {
	g := &Graph{
		cells: make([]Cell, 0, len(specs)),
		byPos: make(map[hex.Coord]int, len(specs)),
		core:  -1,
		live:  simple.NewUndirectedGraph(),
		dirty: true,
	}

	for _, s := range specs {
		if !s.Capability.Valid() {
			return nil, fmt.Errorf("cell at %v: unknown capability %d", s.Pos, s.Capability)
		}
		if s.MaxHealth <= 0 {
			return nil, fmt.Errorf("cell at %v: %w", s.Pos, ErrInvalidCell)
		}
		if _, dup := g.byPos[s.Pos]; dup {
			return nil, fmt.Errorf("cell at %v: %w", s.Pos, ErrDuplicatePosition)
		}
		if s.Capability == components.CapCore {
			if g.core >= 0 {
				return nil, fmt.Errorf("cell at %v: %w", s.Pos, ErrMultipleCores)
			}
			g.core = len(g.cells)
		}

		idx := len(g.cells)
		g.cells = append(g.cells, newCell(s))
		g.adj = append(g.adj, nil)
		g.byPos[s.Pos] = idx
		g.groups[s.Capability] = append(g.groups[s.Capability], idx)
		g.live.AddNode(simple.Node(idx))
	}
	if g.core < 0 {
		return nil, ErrNoCore
	}

	for i := range g.cells {
		for _, n := range g.cells[i].pos.Neighbors() {
			if j, ok := g.byPos[n]; ok && j > i {
				g.Link(i, j)
			}
		}
	}

	return g, nil
}

// Link joins two cells. Both must belong to this graph and differ; anything
// else is a topology bug and panics.
func (g *Graph) Link(a, b int) {
	if a < 0 || a >= len(g.cells) || b < 0 || b >= len(g.cells) {
		panic(fmt.Sprintf("cells: invalid topology: link %d-%d outside graph of %d cells", a, b, len(g.cells)))
	}
	if a == b {
		panic(fmt.Sprintf("cells: invalid topology: self link on cell %d", a))
	}
	if slices.Contains(g.adj[a], b) {
		return
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	if g.cells[a].alive && g.cells[b].alive {
		g.live.SetEdge(g.live.NewEdge(simple.Node(a), simple.Node(b)))
	}
	g.dirty = true
}

// Len returns the number of cells, dead ones included.
func (g *Graph) Len() int {
	return len(g.cells)
}

// Cell returns the cell at index i.
func (g *Graph) Cell(i int) *Cell {
	g.check(i)
	return &g.cells[i]
}

// Core returns the core cell's index.
func (g *Graph) Core() int {
	return g.core
}

// CoreAlive reports whether the core cell still stands.
func (g *Graph) CoreAlive() bool {
	return g.cells[g.core].alive
}

// Group returns the indices of cells with the given capability in insertion
// order. The slice must not be modified.
func (g *Graph) Group(c components.Capability) []int {
	return g.groups[c]
}

// Neighbors returns the indices linked to cell i, dead ones included.
func (g *Graph) Neighbors(i int) []int {
	g.check(i)
	return g.adj[i]
}

// IndexAt returns the index of the cell at pos.
func (g *Graph) IndexAt(pos hex.Coord) (int, bool) {
	i, ok := g.byPos[pos]
	return i, ok
}

// Deaths returns the number of cells destroyed since assembly.
func (g *Graph) Deaths() int {
	return g.deaths
}

// Dirty reports whether connectivity needs a refresh.
func (g *Graph) Dirty() bool {
	return g.dirty
}

// DamageCell applies damage to cell i and returns the health removed.
// A cell reaching zero health dies and invalidates connectivity.
func (g *Graph) DamageCell(i int, amount float32) float32 {
	g.check(i)
	dealt, died := g.cells[i].applyDamage(amount)
	if died {
		g.live.RemoveNode(int64(i))
		g.deaths++
		g.dirty = true
	}
	return dealt
}

// Refresh recomputes the connected set if any cell died or a link was added
// since the last refresh. It returns true when a recomputation happened.
func (g *Graph) Refresh() bool {
	if !g.dirty {
		return false
	}
	g.dirty = false

	for i := range g.cells {
		g.cells[i].connected = false
	}
	if !g.CoreAlive() {
		return true
	}

	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			g.cells[n.ID()].connected = true
		},
	}
	bf.Walk(g.live, simple.Node(g.core), nil)
	return true
}

// Fragments returns the groups of alive cells that are linked to each other,
// each sorted by index. The fragment holding the core comes first when the
// core is alive; the rest are ordered by their lowest index.
func (g *Graph) Fragments() [][]int {
	comps := topo.ConnectedComponents(g.live)
	out := make([][]int, 0, len(comps))
	for _, comp := range comps {
		frag := make([]int, len(comp))
		for i, n := range comp {
			frag[i] = int(n.ID())
		}
		slices.Sort(frag)
		out = append(out, frag)
	}
	slices.SortFunc(out, func(a, b []int) int {
		aCore := slices.Contains(a, g.core)
		bCore := slices.Contains(b, g.core)
		switch {
		case aCore && !bCore:
			return -1
		case bCore && !aCore:
			return 1
		}
		return a[0] - b[0]
	})
	return out
}

// UpdateCells runs the per-tick cell step on every alive cell exactly once,
// in capability order: Core, Generation, Storage, Propulsion, Shield, Weapon, Armor.
func (g *Graph) UpdateCells(dt float32) {
	for c := range components.NumCapabilities {
		op := opsFor(components.Capability(c))
		for _, i := range g.groups[c] {
			cell := &g.cells[i]
			if !cell.alive {
				continue
			}
			regenerate(cell, dt)
			if op.step != nil {
				op.step(cell, dt)
			}
		}
	}
}

// Views returns the render/persistence view of every cell in arena order.
func (g *Graph) Views() []components.CellView {
	out := make([]components.CellView, len(g.cells))
	for i := range g.cells {
		out[i] = g.cells[i].View(i)
	}
	return out
}

// Totals returns the summed health and max health of alive cells.
func (g *Graph) Totals() (health, maxHealth float32) {
	for i := range g.cells {
		c := &g.cells[i]
		if !c.alive {
			continue
		}
		health += c.health
		maxHealth += c.maxHealth
	}
	return health, maxHealth
}

func (g *Graph) check(i int) {
	if i < 0 || i >= len(g.cells) {
		panic(fmt.Sprintf("cells: index %d outside graph of %d cells", i, len(g.cells)))
	}
}

// Package mcts implements Monte Carlo tree search over the value and
// policy evaluators in internal/eval (spec 4.9, 4.10): a PUCT selection
// loop over a tree whose nodes and edges live in internal/arena bump
// allocators rather than behind individually heap-allocated pointers,
// the same memory discipline the teacher applies to its transposition
// and pawn hash tables (internal/engine/transposition.go).
package mcts

import (
	"github.com/taklab/tiltak-go/internal/arena"
	"github.com/taklab/tiltak-go/internal/tak"
)

// Edge holds an optional child-node handle (spec 4.9: "Edge: holds an
// optional child-node index"). An edge with an invalid Child has never
// been descended into.
type Edge struct {
	Child arena.Index[Node]
}

// Bridge is the SoA block of a node's children (spec 4.9): parallel
// arrays of move, mean-action-value, visits, prior and child-edge
// handle, materialised lazily on a node's second visit.
type Bridge struct {
	N          int32
	Moves      arena.SliceIndex[tak.Move]
	MeanValue  arena.SliceIndex[float32]
	Visits     arena.SliceIndex[uint32]
	Priors     arena.SliceIndex[float32]
	ChildEdges arena.SliceIndex[arena.Index[Edge]]
}

// Node holds a total-action-value accumulator, an optional terminal
// result tag, and an optional Bridge (spec 4.9).
type Node struct {
	Visits           uint32
	TotalActionValue float64

	Terminal      bool
	TerminalValue float64 // fixed score, from this node's side-to-move's view

	HasBridge bool
	Bridge    Bridge
}

// Tree is the arena-backed MCTS tree for a single search. It stores no
// board positions: callers reconstruct the position at any node by
// replaying moves from the root, the same way the search driver walks
// the tree (spec 4.9 describes edges/nodes, not a parallel position
// cache).
type Tree struct {
	Nodes      *arena.Arena[Node]
	Edges      *arena.Arena[Edge]
	Moves      *arena.Arena[tak.Move]
	MeanValue  *arena.Arena[float32]
	Visits     *arena.Arena[uint32]
	Priors     *arena.Arena[float32]
	ChildEdges *arena.Arena[arena.Index[Edge]]

	Root arena.Index[Node]
}

// NewTree reserves a Tree sized to maxBytes total, split across its
// component arenas. Node/Edge entities dominate tree growth; bridge
// columns are sized to hold, in aggregate, roughly one column-run per
// node (a deliberately rough split — spec 4.8 doesn't mandate exact
// proportions, only that allocation failure be explicit and recoverable).
func NewTree(maxBytes int) *Tree {
	nodeShare := maxBytes * 40 / 100
	edgeShare := maxBytes * 20 / 100
	columnShare := (maxBytes - nodeShare - edgeShare) / 5

	return &Tree{
		Nodes:      arena.New[Node](nodeShare),
		Edges:      arena.New[Edge](edgeShare),
		Moves:      arena.New[tak.Move](columnShare),
		MeanValue:  arena.New[float32](columnShare),
		Visits:     arena.New[uint32](columnShare),
		Priors:     arena.New[float32](columnShare),
		ChildEdges: arena.New[arena.Index[Edge]](columnShare),
		Root:       arena.NullIndex[Node](),
	}
}

// Reset discards every node/edge/bridge-column allocation, so the tree
// can be reused for the next position (spec 4.9: "the root caller may
// choose to reset the arena").
func (t *Tree) Reset() {
	t.Nodes.Reset()
	t.Edges.Reset()
	t.Moves.Reset()
	t.MeanValue.Reset()
	t.Visits.Reset()
	t.Priors.Reset()
	t.ChildEdges.Reset()
	t.Root = arena.NullIndex[Node]()
}

// Stats aggregates occupancy across every component arena (spec 4.8).
type Stats struct {
	Nodes, Edges, Moves, MeanValue, Visits, Priors, ChildEdges arena.Stats
}

// Stats reports t's current occupancy.
func (t *Tree) Stats() Stats {
	return Stats{
		Nodes:      t.Nodes.Stats(),
		Edges:      t.Edges.Stats(),
		Moves:      t.Moves.Stats(),
		MeanValue:  t.MeanValue.Stats(),
		Visits:     t.Visits.Stats(),
		Priors:     t.Priors.Stats(),
		ChildEdges: t.ChildEdges.Stats(),
	}
}

// TotalBytes sums Bytes across every component arena.
func (s Stats) TotalBytes() int64 {
	return s.Nodes.Bytes + s.Edges.Bytes + s.Moves.Bytes + s.MeanValue.Bytes +
		s.Visits.Bytes + s.Priors.Bytes + s.ChildEdges.Bytes
}

// TotalMaxBytes sums MaxBytes across every component arena.
func (s Stats) TotalMaxBytes() int64 {
	return s.Nodes.MaxBytes + s.Edges.MaxBytes + s.Moves.MaxBytes + s.MeanValue.MaxBytes +
		s.Visits.MaxBytes + s.Priors.MaxBytes + s.ChildEdges.MaxBytes
}

// OccupancyPercent reports overall tree-arena occupancy as a percentage,
// for a TEI "info ... arena N%" telemetry field (spec 6, 12).
func (s Stats) OccupancyPercent() float64 {
	total := s.TotalMaxBytes()
	if total <= 0 {
		return 0
	}
	return 100 * float64(s.TotalBytes()) / float64(total)
}

func terminalValue(result tak.GameResult, toMove tak.Color) float64 {
	switch {
	case result.Kind == tak.Draw:
		return 0.5
	case result.Winner == toMove:
		return 1.0
	default:
		return 0.0
	}
}

// newLeafNode builds the (possibly terminal) node for pos, without
// materialising a Bridge.
func newLeafNode(pos *tak.Position) Node {
	gd := tak.ComputeGroupData(pos)
	result := tak.EvaluateResult(pos, gd)
	if result.IsOver() {
		return Node{Terminal: true, TerminalValue: terminalValue(result, pos.SideToMove), Visits: 1}
	}
	return Node{}
}

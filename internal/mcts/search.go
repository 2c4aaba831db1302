package mcts

import (
	"math/rand"
	"sort"
	"time"

	"github.com/taklab/tiltak-go/internal/arena"
	"github.com/taklab/tiltak-go/internal/eval"
	"github.com/taklab/tiltak-go/internal/tak"
)

// Settings configures one search (spec 4.9, 4.10).
type Settings struct {
	CPUCTInit      float64
	CPUCTBase      float64
	RolloutDepth   int
	Temperature    float64
	DirichletAlpha float64
	DirichletWeight float64 // 0 disables root noise (match play)
	Rand           *rand.Rand

	// OnInfo, when set, is called periodically during MCTS and
	// PlayMoveTime with incremental search progress, the same way the
	// teacher's Engine.OnInfo callback reports SearchInfo mid-search
	// (internal/engine/engine.go).
	OnInfo func(Info)
}

// Info reports incremental search progress for a TEI-style "info" line
// (spec 6: telemetry fields depth/nodes/score/pv).
type Info struct {
	NodesVisited uint64
	Elapsed      time.Duration
	WinProb      float64
	PV           []tak.Move
	ArenaPercent float64
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// DefaultSettings returns match-play defaults: no rollout, no root noise.
func DefaultSettings() Settings {
	return Settings{
		CPUCTInit:       DefaultCPUCTInit,
		CPUCTBase:       DefaultCPUCTBase,
		RolloutDepth:    0,
		Temperature:     1,
		DirichletAlpha:  DefaultDirichletAlpha,
		DirichletWeight: 0,
		Rand:            rand.New(rand.NewSource(1)),
	}
}

// Searcher drives repeated PUCT selects over a Tree for one root
// position (spec 4.9, 4.10), grounded on the teacher's Searcher
// (internal/engine/search.go): a node counter, a cooperative stop flag,
// and an explicit OOM exit instead of a panic.
type Searcher struct {
	tree     *Tree
	weights  *Weights
	settings Settings
	rootPos  *tak.Position

	nodesVisited uint64
	oom          bool
}

// NewSearcher constructs a Searcher for rootPos with the given arena
// budget and weights. rootPos is never mutated; every visit clones it.
func NewSearcher(rootPos *tak.Position, treeBytes int, weights *Weights, settings Settings) *Searcher {
	if settings.Rand == nil {
		settings.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Searcher{
		tree:     NewTree(treeBytes),
		weights:  weights,
		settings: settings,
		rootPos:  rootPos.Clone(),
	}
	return s
}

// Tree exposes the underlying arena-backed tree, e.g. for Stats().
func (s *Searcher) Tree() *Tree { return s.tree }

// NodesVisited reports how many selects have completed.
func (s *Searcher) NodesVisited() uint64 { return s.nodesVisited }

// OutOfMemory reports whether the last select aborted on arena
// exhaustion (spec 4.9: "the root caller may choose to reset the
// arena").
func (s *Searcher) OutOfMemory() bool { return s.oom }

// ensureRoot creates the root node on first use.
func (s *Searcher) ensureRoot() error {
	if s.tree.Root.Valid() {
		return nil
	}
	idx, err := s.tree.Nodes.Add(newLeafNode(s.rootPos))
	if err != nil {
		return err
	}
	s.tree.Root = idx
	return nil
}

// Select performs exactly one PUCT select from the root, expanding the
// tree as needed. It returns ErrOutOfMemory (via s.oom) rather than
// panicking when the arena is exhausted.
func (s *Searcher) Select(excluded map[int]bool) error {
	if err := s.ensureRoot(); err != nil {
		s.oom = true
		return err
	}
	pos := s.rootPos.Clone()
	_, err := s.visit(s.tree.Root, pos, excluded)
	s.nodesVisited++
	if err == arena.ErrOutOfMemory {
		s.oom = true
	}
	return err
}

// visit descends one PUCT path starting at nodeIdx (whose position is
// pos), returning the value from pos's side-to-move's perspective (spec
// 4.9). excluded applies only at the node currently being visited; it is
// nil below the root.
func (s *Searcher) visit(nodeIdx arena.Index[Node], pos *tak.Position, excluded map[int]bool) (float64, error) {
	node := s.tree.Nodes.Get(nodeIdx)

	if node.Terminal {
		return node.TerminalValue, nil
	}

	if node.Visits == 0 {
		v := leafValue(pos, s.weights, s.settings.RolloutDepth, s.settings.Temperature, s.settings.Rand)
		node.Visits = 1
		node.TotalActionValue = v
		return v, nil
	}

	if !node.HasBridge {
		if err := s.materializeBridge(nodeIdx, pos); err != nil {
			return 0, err
		}
		node = s.tree.Nodes.Get(nodeIdx)
	}

	means := s.tree.MeanValue.GetSlice(node.Bridge.MeanValue)
	visits := s.tree.Visits.GetSlice(node.Bridge.Visits)
	priors := s.tree.Priors.GetSlice(node.Bridge.Priors)
	moves := s.tree.Moves.GetSlice(node.Bridge.Moves)
	childEdges := s.tree.ChildEdges.GetSlice(node.Bridge.ChildEdges)

	i := selectChild(means, visits, priors, node.Visits, s.settings.CPUCTInit, s.settings.CPUCTBase, excluded)
	if i < 0 {
		// Every child excluded: report a draw-ish neutral value rather
		// than crash; callers controlling exclusion sets avoid this.
		return 0.5, nil
	}

	edgeIdx := childEdges[i]
	edge := s.tree.Edges.Get(edgeIdx)

	childPos := pos.Clone()
	childPos.DoMove(moves[i])

	var value float64
	var err error
	if !edge.Child.Valid() {
		childIdx, aerr := s.tree.Nodes.Add(newLeafNode(childPos))
		if aerr != nil {
			return 0, aerr
		}
		edge.Child = childIdx
		value, err = s.visit(childIdx, childPos, nil)
	} else {
		value, err = s.visit(edge.Child, childPos, nil)
	}
	if err != nil {
		return 0, err
	}

	flipped := 1 - value
	visits[i]++
	means[i] += (float32(flipped) - means[i]) / float32(visits[i])
	node.Visits++
	node.TotalActionValue += flipped

	return flipped, nil
}

// materializeBridge generates moves and policy priors for the position
// at nodeIdx and allocates its Bridge (spec 4.9: "on the second visit,
// materialise the Bridge").
func (s *Searcher) materializeBridge(nodeIdx arena.Index[Node], pos *tak.Position) error {
	gd := tak.ComputeGroupData(pos)
	moves := tak.GenerateMoves(pos, nil)
	if len(moves) == 0 {
		node := s.tree.Nodes.Get(nodeIdx)
		result := tak.EvaluateResult(pos, gd)
		node.Terminal = true
		node.TerminalValue = terminalValue(result, pos.SideToMove)
		return nil
	}

	priors := eval.Priors(pos, gd, moves, s.weights.Policy)

	movesIdx, err := s.tree.Moves.AddSlice(moves)
	if err != nil {
		return err
	}
	meanIdx, err := s.tree.MeanValue.AddSlice(make([]float32, len(moves)))
	if err != nil {
		return err
	}
	visitsIdx, err := s.tree.Visits.AddSlice(make([]uint32, len(moves)))
	if err != nil {
		return err
	}
	priorsIdx, err := s.tree.Priors.AddSlice(priors)
	if err != nil {
		return err
	}

	edgeHandles := make([]arena.Index[Edge], len(moves))
	for i := range edgeHandles {
		eidx, eerr := s.tree.Edges.Add(Edge{Child: arena.NullIndex[Node]()})
		if eerr != nil {
			return eerr
		}
		edgeHandles[i] = eidx
	}
	childEdgesIdx, err := s.tree.ChildEdges.AddSlice(edgeHandles)
	if err != nil {
		return err
	}

	node := s.tree.Nodes.Get(nodeIdx)
	node.Bridge = Bridge{
		N:          int32(len(moves)),
		Moves:      movesIdx,
		MeanValue:  meanIdx,
		Visits:     visitsIdx,
		Priors:     priorsIdx,
		ChildEdges: childEdgesIdx,
	}
	node.HasBridge = true
	return nil
}

// warmUp performs the two root selects needed to materialise the root
// bridge (spec 4.9: "Two warm-up selects are performed"), applying
// exclusions to those selects, then mixes in Dirichlet noise.
func (s *Searcher) warmUp(excluded map[int]bool) error {
	if err := s.Select(excluded); err != nil {
		return err
	}
	if err := s.Select(excluded); err != nil {
		return err
	}
	root := s.tree.Nodes.Get(s.tree.Root)
	if root.HasBridge && s.settings.DirichletWeight > 0 {
		priors := s.tree.Priors.GetSlice(root.Bridge.Priors)
		mixDirichletNoise(s.settings.Rand, priors, s.settings.DirichletAlpha, s.settings.DirichletWeight)
	}
	return nil
}

// WarmUp performs the two root selects needed to materialise the root
// bridge and mix in Dirichlet noise, exposed for callers (e.g. internal/tei)
// that drive Select in their own loop instead of using MCTS/PlayMoveTime.
func (s *Searcher) WarmUp(excluded map[int]bool) error {
	return s.warmUp(excluded)
}

// RootChild describes one root move and its current statistics.
type RootChild struct {
	Move      tak.Move
	Visits    uint32
	MeanValue float32
	Prior     float32
}

// RootChildren returns every root child's current statistics, in the
// order the bridge stores them.
func (s *Searcher) RootChildren() []RootChild {
	root := s.tree.Nodes.Get(s.tree.Root)
	if !root.HasBridge {
		return nil
	}
	moves := s.tree.Moves.GetSlice(root.Bridge.Moves)
	means := s.tree.MeanValue.GetSlice(root.Bridge.MeanValue)
	visits := s.tree.Visits.GetSlice(root.Bridge.Visits)
	priors := s.tree.Priors.GetSlice(root.Bridge.Priors)

	out := make([]RootChild, len(moves))
	for i := range moves {
		out[i] = RootChild{Move: moves[i], Visits: visits[i], MeanValue: means[i], Prior: priors[i]}
	}
	return out
}

// BestRootChild returns the index (within RootChildren) of the child
// with the most visits, tie-broken by mean action value (spec 4.10).
func BestRootChild(children []RootChild) int {
	best := -1
	for i, c := range children {
		if best < 0 {
			best = i
			continue
		}
		b := children[best]
		if c.Visits > b.Visits || (c.Visits == b.Visits && c.MeanValue > b.MeanValue) {
			best = i
		}
	}
	return best
}

// Result is the outcome of a completed search (spec 4.10).
type Result struct {
	Move        tak.Move
	WinProb     float64
	NodesVisited uint64
}

// MCTS runs exactly nodes selects (a minimum of 2, for root warm-up) and
// returns the best move and its win probability (spec 4.10: "mcts(pos,
// nodes): run exactly nodes selects... return best move and its win
// probability").
func MCTS(pos *tak.Position, nodes int, treeBytes int, weights *Weights, settings Settings) (Result, error) {
	if nodes < 2 {
		nodes = 2
	}
	start := time.Now()
	s := NewSearcher(pos, treeBytes, weights, settings)
	if err := s.warmUp(nil); err != nil && s.oom {
		return bestFromWhatExists(s)
	}
	for i := 2; i < nodes; i++ {
		if err := s.Select(nil); err != nil {
			if s.oom {
				break
			}
			return Result{}, err
		}
		if settings.OnInfo != nil && isPowerOfTwo(s.nodesVisited) {
			s.reportInfo(start)
		}
	}
	return bestFromWhatExists(s)
}

func (s *Searcher) reportInfo(start time.Time) {
	children := s.RootChildren()
	best := BestRootChild(children)
	winProb := 0.5
	if best >= 0 {
		winProb = float64(children[best].MeanValue)
	}
	s.settings.OnInfo(Info{
		NodesVisited: s.nodesVisited,
		Elapsed:      time.Since(start),
		WinProb:      winProb,
		PV:           s.PrincipalVariation(32),
		ArenaPercent: s.tree.Stats().OccupancyPercent(),
	})
}

func bestFromWhatExists(s *Searcher) (Result, error) {
	children := s.RootChildren()
	best := BestRootChild(children)
	if best < 0 {
		return Result{}, arena.ErrOutOfMemory
	}
	c := children[best]
	winProb := float64(c.MeanValue)
	return Result{Move: c.Move, WinProb: winProb, NodesVisited: s.nodesVisited}, nil
}

// StopSignal lets a host cooperatively stop PlayMoveTime between select
// batches (spec 5: "polls a nonblocking input channel between batches").
type StopSignal interface {
	Stopped() bool
}

// PlayMoveTime expands the tree in exponentially growing batches of
// ~200*1.26^i selects, stopping when t^2 > r/2 (t = elapsed/maxTime, r =
// second-best/best visits) and no child beats the current best's mean
// action value, or when stop fires, or on OOM. Always returns within
// maxTime (spec 4.10, 5).
func PlayMoveTime(pos *tak.Position, maxTime time.Duration, treeBytes int, weights *Weights, settings Settings, stop StopSignal) (Result, error) {
	s := NewSearcher(pos, treeBytes, weights, settings)
	start := time.Now()
	if err := s.warmUp(nil); err != nil && s.oom {
		return bestFromWhatExists(s)
	}

	batch := 200.0
	for {
		if stop != nil && stop.Stopped() {
			break
		}
		elapsed := time.Since(start)
		if elapsed >= maxTime {
			break
		}

		n := int(batch)
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			if err := s.Select(nil); err != nil {
				if s.oom {
					return bestFromWhatExists(s)
				}
				return Result{}, err
			}
			if time.Since(start) >= maxTime {
				break
			}
		}

		children := s.RootChildren()
		if settings.OnInfo != nil {
			s.reportInfo(start)
		}
		if shouldStop(children, elapsed, maxTime) {
			break
		}
		batch *= 1.26
	}

	return bestFromWhatExists(s)
}

func shouldStop(children []RootChild, elapsed, maxTime time.Duration) bool {
	if len(children) < 2 {
		return len(children) == 1
	}
	sorted := append([]RootChild(nil), children...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Visits > sorted[j].Visits })
	best, second := sorted[0], sorted[1]
	if best.Visits == 0 {
		return false
	}
	r := float64(second.Visits) / float64(best.Visits)
	t := float64(elapsed) / float64(maxTime)
	noBetterChild := true
	for _, c := range sorted[1:] {
		if c.MeanValue > best.MeanValue {
			noBetterChild = false
			break
		}
	}
	return t*t > r/2 && noBetterChild
}

// TrainingTarget is one root child's visit fraction, the distribution
// used as a policy training target (spec 4.10: "mcts_training... emit
// (move, visits/total_visits) for every root child").
type TrainingTarget struct {
	Move     tak.Move
	Fraction float64
}

// MCTSTraining runs nodes selects (with root Dirichlet noise per
// settings) and returns the visit-fraction distribution over every root
// child (spec 4.10).
func MCTSTraining(pos *tak.Position, nodes int, treeBytes int, weights *Weights, settings Settings) ([]TrainingTarget, error) {
	if nodes < 2 {
		nodes = 2
	}
	s := NewSearcher(pos, treeBytes, weights, settings)
	if err := s.warmUp(nil); err != nil && s.oom {
		return trainingTargetsFrom(s), nil
	}
	for i := 2; i < nodes; i++ {
		if err := s.Select(nil); err != nil {
			if s.oom {
				break
			}
			return nil, err
		}
	}
	return trainingTargetsFrom(s), nil
}

func trainingTargetsFrom(s *Searcher) []TrainingTarget {
	children := s.RootChildren()
	var total float64
	for _, c := range children {
		total += float64(c.Visits)
	}
	if total == 0 {
		total = 1
	}
	out := make([]TrainingTarget, len(children))
	for i, c := range children {
		out[i] = TrainingTarget{Move: c.Move, Fraction: float64(c.Visits) / total}
	}
	return out
}

// PrincipalVariation repeatedly picks the most-visited child, replaying
// moves from pos, up to maxPly deep or until a node has no bridge (spec
// 4.10: "Principal variation: repeatedly pick the most-visited child").
func (s *Searcher) PrincipalVariation(maxPly int) []tak.Move {
	var pv []tak.Move
	nodeIdx := s.tree.Root
	pos := s.rootPos.Clone()
	for ply := 0; ply < maxPly; ply++ {
		node := s.tree.Nodes.Get(nodeIdx)
		if node.Terminal || !node.HasBridge {
			break
		}
		moves := s.tree.Moves.GetSlice(node.Bridge.Moves)
		means := s.tree.MeanValue.GetSlice(node.Bridge.MeanValue)
		visits := s.tree.Visits.GetSlice(node.Bridge.Visits)
		childEdges := s.tree.ChildEdges.GetSlice(node.Bridge.ChildEdges)

		children := make([]RootChild, len(moves))
		for i := range moves {
			children[i] = RootChild{Move: moves[i], Visits: visits[i], MeanValue: means[i]}
		}
		best := BestRootChild(children)
		if best < 0 {
			break
		}
		pv = append(pv, moves[best])
		edge := s.tree.Edges.Get(childEdges[best])
		if !edge.Child.Valid() {
			break
		}
		pos.DoMove(moves[best])
		nodeIdx = edge.Child
	}
	return pv
}

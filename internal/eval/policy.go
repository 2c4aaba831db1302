package eval

import (
	"math"

	"github.com/taklab/tiltak-go/internal/square"
	"github.com/taklab/tiltak-go/internal/tak"
)

// Policy parameter layout (spec 4.7): shared features (role PSQT ring,
// critical-square interaction, nearness to the last ply's square,
// strong-line attack), placement-only features (merger, extension,
// block-merger), movement-only features (continue-spread, recapture,
// cap-onto-strong-line), and an FCD bucket (ties board max, ties
// per-square max, strictly lower).
const (
	polFeatRolePSQT          = numRings * 3 // role x ring (flat/wall/cap)
	polFeatCriticalInteract  = 1
	polFeatNearLastMove      = 1
	polFeatStrongLineAttack  = 1
	polFeatMerger            = 1
	polFeatExtension         = 1
	polFeatBlockMerger       = 1
	polFeatContinueSpread    = 1
	polFeatRecapture         = 1
	polFeatCapOntoStrongLine = 1
	polFeatFCDBucket         = 3
	polFeatDeclineWin        = 1

	policyFeatureCount = polFeatRolePSQT + polFeatCriticalInteract + polFeatNearLastMove +
		polFeatStrongLineAttack + polFeatMerger + polFeatExtension + polFeatBlockMerger +
		polFeatContinueSpread + polFeatRecapture + polFeatCapOntoStrongLine +
		polFeatFCDBucket + polFeatDeclineWin
)

// NumPolicyFeatures returns the policy feature vector length; it does
// not depend on board size in this implementation (spec 4.7: "exact
// counts depend on S" in the source, qualitatively table-driven here).
func NumPolicyFeatures(size int) int {
	_ = size
	return policyFeatureCount
}

const policyBaseline = 0.05

// Priors computes the prior probability for every move in moves, given
// a (cheap) policy parameter vector, following the procedure in spec
// 4.7: per-move scalar via dot product plus an inverse-sigmoid-uniform
// offset, sigmoid, renormalise to 1-baseline, then add baseline/n.
func Priors(pos *tak.Position, gd *tak.GroupData, moves []tak.Move, weights []float32) []float32 {
	n := len(moves)
	if n == 0 {
		return nil
	}

	fcd := make([]int, n)
	highestFCD := math.MinInt32
	highestPerOrigin := map[square.Square]int{}
	for i, m := range moves {
		d := flatCountDifferential(pos, m)
		fcd[i] = d
		if d > highestFCD {
			highestFCD = d
		}
		if cur, ok := highestPerOrigin[m.Origin()]; !ok || d > cur {
			highestPerOrigin[m.Origin()] = d
		}
	}

	immediateWinExists := false
	wins := make([]bool, n)
	for i, m := range moves {
		wins[i] = movesWinsImmediately(pos, gd, m)
		if wins[i] {
			immediateWinExists = true
		}
	}

	logits := make([]float64, n)
	uniformOffset := inverseSigmoid(1 / float64(n))

	for i, m := range moves {
		feats := movePolicyFeatures(pos, gd, m, fcd[i], highestFCD, highestPerOrigin[m.Origin()])
		var dot float64
		wn := len(weights)
		if len(feats) < wn {
			wn = len(feats)
		}
		for j := 0; j < wn; j++ {
			dot += float64(weights[j]) * float64(feats[j])
		}
		if immediateWinExists && !wins[i] {
			dot += float64(weights[policyFeatureCount-1]) // decline_win penalty slot
		}
		logits[i] = dot + uniformOffset
	}

	sig := make([]float64, n)
	var sum float64
	for i, l := range logits {
		s := 1 / (1 + math.Exp(-l))
		sig[i] = s
		sum += s
	}

	out := make([]float32, n)
	if sum <= 0 {
		for i := range out {
			out[i] = float32(1.0 / float64(n))
		}
		return out
	}
	for i, s := range sig {
		p := (s/sum)*(1-policyBaseline) + policyBaseline/float64(n)
		out[i] = float32(p)
	}
	return out
}

func inverseSigmoid(p float64) float64 {
	if p <= 0 {
		p = 1e-9
	}
	if p >= 1 {
		p = 1 - 1e-9
	}
	return math.Log(p / (1 - p))
}

// flatCountDifferential returns the change in (own flats - opponent
// flats) that m would produce, sign-adjusted by the side to move (spec
// 4.7, 8).
func flatCountDifferential(pos *tak.Position, m tak.Move) int {
	clone := pos.Clone()
	mover := clone.SideToMove
	wBefore, bBefore := flatCounts(clone)
	clone.DoMove(m)
	wAfter, bAfter := flatCounts(clone)
	before := wBefore - bBefore
	after := wAfter - bAfter
	d := after - before
	if mover == tak.Black {
		d = -d
	}
	return d
}

func flatCounts(pos *tak.Position) (white, black int) {
	for sq := 0; sq < pos.Size*pos.Size; sq++ {
		st := pos.Stacks[sq]
		if st.IsEmpty() {
			continue
		}
		top, _ := st.Top()
		if top.Role() != tak.Flat {
			continue
		}
		if top.Color() == tak.White {
			white++
		} else {
			black++
		}
	}
	return
}

// movesWinsImmediately reports whether m is a declared win: a placement
// onto our own critical square, or a spread that connects our road
// groups to completion.
func movesWinsImmediately(pos *tak.Position, gd *tak.GroupData, m tak.Move) bool {
	mover := pos.SideToMove
	if m.IsPlacement() {
		return gd.CriticalSquares[mover].IsSet(int(m.Origin()))
	}
	clone := pos.Clone()
	clone.DoMove(m)
	ngd := tak.ComputeGroupData(clone)
	res := tak.EvaluateResult(clone, ngd)
	return res.Kind == tak.RoadWin && res.Winner == mover
}

func movePolicyFeatures(pos *tak.Position, gd *tak.GroupData, m tak.Move, fcd, highestFCD, highestOwnOrigin int) []float32 {
	f := make([]float32, policyFeatureCount)
	size := pos.Size
	sq := int(m.Origin())
	rg := ring(sq, size)

	roleIdx := 0
	if m.IsPlacement() {
		switch m.PlaceRole() {
		case tak.Wall:
			roleIdx = 1
		case tak.Cap:
			roleIdx = 2
		}
	} else {
		top, _ := pos.Stacks[sq].Top()
		switch top.Role() {
		case tak.Wall:
			roleIdx = 1
		case tak.Cap:
			roleIdx = 2
		}
	}
	f[roleIdx*numRings+rg] = 1
	base := polFeatRolePSQT

	if gd.CriticalSquares[pos.SideToMove].IsSet(sq) {
		f[base] = 1
	}
	base += polFeatCriticalInteract

	if len(pos.MoveHistory) > 0 {
		last := pos.MoveHistory[len(pos.MoveHistory)-1]
		if adjacentSquares(int(last.Origin()), sq, size) {
			f[base] = 1
		}
	}
	base += polFeatNearLastMove

	if touchesStrongLine(gd, pos.SideToMove, sq, size) {
		f[base] = 1
	}
	base += polFeatStrongLineAttack

	if m.IsPlacement() {
		if mergesOwnGroup(pos, gd, sq, size) {
			f[base] = 1
		}
		base += polFeatMerger
		if extendsTowardEdge(sq, size) {
			f[base] = 1
		}
		base += polFeatExtension
		if m.PlaceRole() != tak.Flat && blocksEnemyMerger(pos, gd, sq, size) {
			f[base] = 1
		}
		base += polFeatBlockMerger
		base += polFeatContinueSpread
		base += polFeatRecapture
		base += polFeatCapOntoStrongLine
	} else {
		base += polFeatMerger
		base += polFeatExtension
		base += polFeatBlockMerger
		if m.Movement().NumSquares() > 1 {
			f[base] = 1
		}
		base += polFeatContinueSpread
		if len(pos.MoveHistory) > 0 {
			last := pos.MoveHistory[len(pos.MoveHistory)-1]
			if !last.IsPlacement() && endOfSpread(last, size) == endOfSpread(m, size) {
				f[base] = 1
			}
		}
		base += polFeatRecapture
		top, _ := pos.Stacks[sq].Top()
		if top.Role() == tak.Cap && touchesStrongLine(gd, pos.SideToMove, sq, size) {
			f[base] = 1
		}
		base += polFeatCapOntoStrongLine
	}

	switch {
	case fcd == highestFCD:
		f[base+0] = 1
	case fcd == highestOwnOrigin:
		f[base+1] = 1
	default:
		f[base+2] = 1
	}
	base += polFeatFCDBucket

	return f
}

func adjacentSquares(a, b, size int) bool {
	ar, af := a/size, a%size
	br, bf := b/size, b%size
	dr, df := ar-br, af-bf
	if dr < 0 {
		dr = -dr
	}
	if df < 0 {
		df = -df
	}
	return dr+df == 1
}

func touchesStrongLine(gd *tak.GroupData, c tak.Color, sq, size int) bool {
	rank, file := sq/size, sq%size
	rankCount, fileCount := 0, 0
	for f := 0; f < size; f++ {
		if gd.RoadPieces[c].IsSet(rank*size + f) {
			rankCount++
		}
	}
	for r := 0; r < size; r++ {
		if gd.RoadPieces[c].IsSet(r*size + file) {
			fileCount++
		}
	}
	return rankCount >= size/2 || fileCount >= size/2
}

func mergesOwnGroup(pos *tak.Position, gd *tak.GroupData, sq, size int) bool {
	for _, nb := range orthogonalNeighbours(sq, size) {
		if gd.RoadPieces[pos.SideToMove].IsSet(nb) {
			return true
		}
	}
	return false
}

func extendsTowardEdge(sq, size int) bool {
	return ring(sq, size) == 0
}

func blocksEnemyMerger(pos *tak.Position, gd *tak.GroupData, sq, size int) bool {
	enemy := pos.SideToMove.Other()
	count := 0
	for _, nb := range orthogonalNeighbours(sq, size) {
		if gd.RoadPieces[enemy].IsSet(nb) {
			count++
		}
	}
	return count >= 2
}

func endOfSpread(m tak.Move, size int) int {
	cur := m.Origin()
	dir := m.Direction()
	for range m.Movement().Drops() {
		next, ok := cur.Neighbor(dir, size)
		if !ok {
			break
		}
		cur = next
	}
	return int(cur)
}

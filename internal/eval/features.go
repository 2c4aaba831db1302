// Package eval implements the hand-crafted, linear value and policy
// evaluators that replace rollouts in the search (spec 4.6, 4.7): a
// feature vector computed from a Position and its GroupData, reduced to
// a scalar by a dot product against a tuned parameter vector. There is
// no learned network here — the parameters are consumed, never produced,
// by this package.
package eval

import "github.com/taklab/tiltak-go/internal/tak"

// Ring buckets a square by its Chebyshev distance to the nearest edge,
// capped at 2 (corner/edge = 0, one step in = 1, interior = 2+).
const numRings = 3

// Phase is the game-phase axis a piece-square feature is evaluated
// under: opening, middlegame or endgame (spec 4.6). Phase weight is a
// continuous blend derived from the lower side's remaining reserves, not
// a hard classification.
const numPhases = 3

// psqtFamily indexes the five piece-square feature families.
type psqtFamily int

const (
	famFlat psqtFamily = iota
	famWall
	famCap
	famSupport
	famCaptive
	numPSQTFamilies
)

const psqtFeatureCount = int(numPSQTFamilies) * numRings * numPhases

// Scalar feature layout, appended after the PSQT block.
const (
	scalarFlatstoneLeadBuckets = 5
	scalarRoadGroupsPerPhase   = numPhases
	scalarCriticalStates       = 4 // empty, our-wall, enemy-flat, enemy-blocker
	scalarCapThreat            = 2
	scalarNeighbourhood        = 3 // flat/wall/cap adjacent to own height>=2 stack
	scalarLinesOccupied        = 2 // ranks, files with any own road piece
	scalarPerLineControl       = 3 // empty lines, enemy-blocker lines, guarded-own lines
	scalarCapActivity          = 3 // sidelined, fully isolated, semi isolated
	scalarWinningSpread        = 2 // road completes now / in one more move
	scalarFlatWinCountdown     = 4 // we win this ply / in two, they win next ply / in three

	scalarFeatureCount = scalarFlatstoneLeadBuckets + scalarRoadGroupsPerPhase +
		scalarCriticalStates + scalarCapThreat + scalarNeighbourhood +
		scalarLinesOccupied + scalarPerLineControl + scalarCapActivity +
		scalarWinningSpread + scalarFlatWinCountdown
)

// NumValueFeatures returns the value feature vector length for a board
// of the given size. Both colours' feature vectors share this length;
// the value score is their difference (spec 4.6).
func NumValueFeatures(size int) int {
	_ = size // families are per-square-ring, not per-square; length is size-independent here
	return psqtFeatureCount + scalarFeatureCount
}

func ring(sq, size int) int {
	rank, file := sq/size, sq%size
	d := rank
	if v := size - 1 - rank; v < d {
		d = v
	}
	if file < d {
		d = file
	}
	if v := size - 1 - file; v < d {
		d = v
	}
	if d > numRings-1 {
		d = numRings - 1
	}
	return d
}

// phaseWeights returns the continuous (opening, middle, end) blend for
// the position, derived from the lower side's fractional remaining
// reserves (spec 4.6: "full opening weight above ~half starting
// reserves, interpolating to full endgame weight near zero").
func phaseWeights(pos *tak.Position) (opening, middle, end float32) {
	wf, wc := pos.Reserves(tak.White)
	bf, bc := pos.Reserves(tak.Black)
	whiteLeft := wf + wc
	blackLeft := bf + bc
	low := whiteLeft
	if blackLeft < low {
		low = blackLeft
	}
	startFlats, startCaps := startingTotal(pos.Size)
	total := startFlats + startCaps
	if total == 0 {
		return 1, 0, 0
	}
	r := float32(low) / float32(total)
	opening = clamp01((r - 0.25) / 0.25)
	end = clamp01((0.25 - r) / 0.25)
	middle = 1 - opening - end
	if middle < 0 {
		middle = 0
	}
	return
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func startingTotal(size int) (flats, caps int) {
	switch size {
	case 3:
		return 10, 0
	case 4:
		return 15, 0
	case 5:
		return 21, 1
	case 6:
		return 30, 1
	case 7:
		return 40, 2
	case 8:
		return 50, 2
	default:
		return 21, 1
	}
}

// BuildFeatures computes the feature vector for colour c (spec 4.6).
// It uses no flat-count differential; that is computed per move by the
// policy evaluator (flatCountDifferential).
func BuildFeatures(pos *tak.Position, gd *tak.GroupData, c tak.Color) []float32 {
	size := pos.Size
	f := make([]float32, NumValueFeatures(size))
	opW, midW, endW := phaseWeights(pos)

	psqtIdx := func(fam psqtFamily, rg, phase int) int {
		return (int(fam)*numRings+rg)*numPhases + phase
	}
	addPSQT := func(fam psqtFamily, rg int, amount float32) {
		f[psqtIdx(fam, rg, 0)] += amount * opW
		f[psqtIdx(fam, rg, 1)] += amount * midW
		f[psqtIdx(fam, rg, 2)] += amount * endW
	}

	for sq := 0; sq < size*size; sq++ {
		st := pos.Stacks[sq]
		if st.IsEmpty() {
			continue
		}
		top, _ := st.Top()
		if top.Color() != c {
			continue
		}
		rg := ring(sq, size)
		switch top.Role() {
		case tak.Flat:
			addPSQT(famFlat, rg, 1)
		case tak.Wall:
			addPSQT(famWall, rg, 1)
		case tak.Cap:
			addPSQT(famCap, rg, 1)
		}
		supports, captives := 0, 0
		for i := 0; i < st.Height()-1; i++ {
			p := st.Get(i)
			if p.Color() == c {
				supports++
			} else {
				captives++
			}
		}
		if supports > 0 {
			addPSQT(famSupport, rg, float32(supports))
		}
		if captives > 0 {
			addPSQT(famCaptive, rg, float32(captives))
		}
	}

	base := psqtFeatureCount

	// Flatstone-lead bonus, bucketed.
	whiteFlats := gd.Flats[tak.White].PopCount()
	blackFlats := gd.Flats[tak.Black].PopCount()
	lead := whiteFlats - blackFlats
	if c == tak.Black {
		lead = -lead
	}
	bucket := leadBucket(lead)
	f[base+bucket] = 1
	base += scalarFlatstoneLeadBuckets

	// Connected road-piece groups, blended by phase.
	groups := float32(gd.NumGroups(c))
	f[base+0] = groups * opW
	f[base+1] = groups * midW
	f[base+2] = groups * endW
	base += scalarRoadGroupsPerPhase

	// Critical square states from this colour's perspective.
	var empty, ourWall, enemyFlat, enemyBlocker float32
	for sq := 0; sq < size*size; sq++ {
		if !gd.CriticalSquares[c].IsSet(sq) {
			continue
		}
		st := pos.Stacks[sq]
		if st.IsEmpty() {
			empty++
			continue
		}
		top, _ := st.Top()
		switch {
		case top.Role() == tak.Wall && top.Color() == c:
			ourWall++
		case top.Color() != c && top.Role() == tak.Flat:
			enemyFlat++
		case top.Color() != c:
			enemyBlocker++
		}
	}
	f[base+0] = empty
	f[base+1] = ourWall
	f[base+2] = enemyFlat
	f[base+3] = enemyBlocker
	base += scalarCriticalStates

	// Cap threat against critical squares: our cap adjacent, enemy cap adjacent.
	ourCapAdj, enemyCapAdj := capThreatCounts(pos, gd, c)
	f[base+0] = ourCapAdj
	f[base+1] = enemyCapAdj
	base += scalarCapThreat

	// Neighbourhood: flat/wall/cap adjacent to our own stack of height>=2,
	// scaled by that stack's height.
	flatAdj, wallAdj, capAdj := neighbourhoodCounts(pos, c)
	f[base+0] = flatAdj
	f[base+1] = wallAdj
	f[base+2] = capAdj
	base += scalarNeighbourhood

	// Lines occupied: ranks/files containing any of our road pieces.
	ranksOcc, filesOcc := linesOccupied(gd, c, size)
	f[base+0] = float32(ranksOcc)
	f[base+1] = float32(filesOcc)
	base += scalarLinesOccupied

	// Per-line control: empty lines, lines with an enemy blocker, lines
	// with our stones guarded near the edge.
	emptyLines, blockedLines, guardedLines := perLineControl(pos, gd, c, size)
	f[base+0] = float32(emptyLines)
	f[base+1] = float32(blockedLines)
	f[base+2] = float32(guardedLines)
	base += scalarPerLineControl

	// Cap activity/isolation.
	sidelined, fullyIso, semiIso := capActivity(pos, c)
	f[base+0] = sidelined
	f[base+1] = fullyIso
	f[base+2] = semiIso
	base += scalarCapActivity

	// Winning-spread slots: c already has a road, or c has a critical
	// square (see winningSpread; no spreads are examined).
	now, oneMove := winningSpread(pos, gd, c)
	f[base+0] = now
	f[base+1] = oneMove
	base += scalarWinningSpread

	// Flat-win countdowns.
	winThisPly, winInTwo, oppNextPly, oppInThree := flatWinCountdown(pos, gd, c)
	f[base+0] = winThisPly
	f[base+1] = winInTwo
	f[base+2] = oppNextPly
	f[base+3] = oppInThree
	base += scalarFlatWinCountdown

	return f
}

func leadBucket(lead int) int {
	switch {
	case lead <= -3:
		return 0
	case lead < 0:
		return 1
	case lead == 0:
		return 2
	case lead < 3:
		return 3
	default:
		return 4
	}
}

// Package tei implements the Tak Engine Interface protocol loop, the
// line-oriented command/response surface used by Tak GUIs and match
// managers (spec 6, 12). Its structure is grounded line-for-line on the
// teacher's UCI loop (internal/uci/uci.go): a struct holding engine
// state, a scanner-driven Run loop dispatching on the first whitespace
// field, a goroutine + atomic stop flag for a search that must remain
// interruptible, and a setoption handler keyed on a lowercased option
// name. Command semantics (teinewgame's size argument, position's
// startpos/tps/moves grammar, go's movetime/infinite/wtime/nodes
// variants, the info line's field order) follow original_source/src/tei.rs,
// the Rust implementation this spec was distilled from.
package tei

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/taklab/tiltak-go/internal/mcts"
	"github.com/taklab/tiltak-go/internal/tak"
)

// DefaultSize is the board size used until a "teinewgame" sets another.
const DefaultSize = 5

// Options holds the mutable settings a "setoption" command can change
// (spec 12; original_source/src/tei.rs's Options).
type Options struct {
	HalfKomi int // signed half-flats, matches tak.Position.Komi directly
	MultiPV  int
	HashMB   int
}

// DefaultOptions matches the teacher's and original's defaults.
func DefaultOptions() Options {
	return Options{HalfKomi: 0, MultiPV: 1, HashMB: 16}
}

// TEI implements the Tak Engine Interface protocol.
type TEI struct {
	options Options
	size    int
	pos     *tak.Position

	weights    *mcts.Weights
	weightsKey [2]int // [size, halfKomi] the cached weights were built for

	searching     bool
	stopRequested atomic.Bool
	searchDone    chan struct{}

	profileFile *os.File
}

// New creates a TEI handler with a fresh starting position at DefaultSize.
func New() *TEI {
	t := &TEI{options: DefaultOptions(), size: DefaultSize}
	if err := t.resetPosition(); err != nil {
		panic(err) // DefaultSize/DefaultOptions are always valid.
	}
	return t
}

func (t *TEI) resetPosition() error {
	pos, err := tak.NewPosition(t.size, t.options.HalfKomi)
	if err != nil {
		return err
	}
	t.pos = pos
	return nil
}

// Run starts the TEI main loop, reading commands from stdin and writing
// responses to stdout (spec 6, 12).
func (t *TEI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		switch cmd {
		case "tei":
			t.handleTei()
		case "isready":
			fmt.Println("readyok")
		case "teinewgame":
			t.handleNewGame(args)
		case "position":
			t.handlePosition(args)
		case "go":
			t.handleGo(args)
		case "stop":
			t.handleStop()
		case "setoption":
			t.handleSetOption(args)
		case "quit":
			t.handleQuit()
		case "d":
			fmt.Println(tak.FormatTPS(t.pos))
		default:
			fmt.Fprintf(os.Stderr, "info string unknown command %q\n", cmd)
		}
	}
}

// handleTei responds to the "tei" handshake (spec 12).
func (t *TEI) handleTei() {
	fmt.Println("id name Tiltak-Go")
	fmt.Println("id author Tiltak-Go contributors")
	fmt.Printf("option name HalfKomi type combo default %d var 0 var 4\n", t.options.HalfKomi)
	fmt.Printf("option name MultiPV type spin default %d min 1 max 16\n", t.options.MultiPV)
	fmt.Printf("option name Hash type spin default %d min 1 max 32768\n", t.options.HashMB)
	fmt.Println("option name CPUProfile type string default <empty>")
	fmt.Println("teiok")
}

// handleNewGame resets the board to the given size (spec 12: "teinewgame
// N"), invalidating any cached weights and search state.
func (t *TEI) handleNewGame(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "info string teinewgame requires a board size")
		return
	}
	size, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string teinewgame: bad size %q\n", args[0])
		return
	}
	t.size = size
	if err := t.resetPosition(); err != nil {
		fmt.Fprintf(os.Stderr, "info string teinewgame: %v\n", err)
	}
}

// handlePosition parses "position startpos [moves ...]" or "position tps
// <board> <color> <moveno> [moves ...]" (spec 6, 12).
func (t *TEI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int
	switch args[0] {
	case "startpos":
		if err := t.resetPosition(); err != nil {
			fmt.Fprintf(os.Stderr, "info string position startpos: %v\n", err)
			return
		}
		moveStart = 1
	case "tps":
		if len(args) < 4 {
			fmt.Fprintln(os.Stderr, "info string position tps: missing fields")
			return
		}
		tps := strings.Join(args[1:4], " ")
		pos, err := tak.ParseTPS(tps, t.options.HalfKomi)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid tps: %v\n", err)
			return
		}
		t.pos = pos
		t.size = pos.Size
		moveStart = 4
	default:
		fmt.Fprintf(os.Stderr, "info string position: expected startpos or tps, got %q\n", args[0])
		return
	}

	if moveStart >= len(args) {
		return
	}
	if args[moveStart] != "moves" {
		fmt.Fprintf(os.Stderr, "info string position: expected \"moves\", got %q\n", args[moveStart])
		return
	}
	for _, s := range args[moveStart+1:] {
		m, err := tak.ParsePTN(s, t.size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid move %q: %v\n", s, err)
			return
		}
		t.pos.DoMove(m)
	}
}

// ensureWeights (re)loads value/policy weights when the board size or
// komi has changed since the last search.
func (t *TEI) ensureWeights() error {
	key := [2]int{t.size, t.options.HalfKomi}
	if t.weights != nil && t.weightsKey == key {
		return nil
	}
	w, err := mcts.LoadWeights(t.size, t.options.HalfKomi)
	if err != nil {
		return err
	}
	t.weights = w
	t.weightsKey = key
	return nil
}

func (t *TEI) hashBytes() int {
	return t.options.HashMB << 20
}

// handleGo dispatches the "go" command variants (spec 4.10, 12): nodes N,
// movetime MS, infinite, or a wtime/btime/winc/binc time control.
func (t *TEI) handleGo(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "info string go: missing argument")
		return
	}
	if err := t.ensureWeights(); err != nil {
		fmt.Fprintf(os.Stderr, "info string failed to load weights: %v\n", err)
		return
	}

	switch args[0] {
	case "nodes":
		t.goNodes(args[1:])
	case "movetime":
		t.goTime(parseMillis(args, 1), false)
	case "infinite":
		t.goTime(0, true)
	case "wtime", "btime", "winc", "binc":
		t.goClock(args)
	default:
		fmt.Fprintf(os.Stderr, "info string go: unknown mode %q\n", args[0])
	}
}

func parseMillis(args []string, i int) time.Duration {
	if i >= len(args) {
		return 0
	}
	ms, err := strconv.Atoi(args[i])
	if err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// goNodes runs a fixed-node search, driving the Searcher directly (rather
// than through the mcts.MCTS helper) so MultiPV can report every tracked
// line, streaming info at power-of-two node counts the way
// original_source/src/tei.rs's "nodes" branch does.
func (t *TEI) goNodes(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "info string go nodes: missing count")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string go nodes: bad count %q\n", args[0])
		return
	}
	if n < 2 {
		n = 2
	}

	settings := mcts.DefaultSettings()
	s := mcts.NewSearcher(t.pos, t.hashBytes(), t.weights, settings)
	start := time.Now()

	oom := s.WarmUp(nil) != nil
	for i := 2; !oom && i < n; i++ {
		if err := s.Select(nil); err != nil {
			oom = true
			break
		}
		if isPowerOfTwo(s.NodesVisited()) {
			t.reportSearcherInfo(s, start)
		}
	}
	t.reportSearcherInfo(s, start)
	t.emitBestMove(s)
}

func isPowerOfTwo(n uint64) bool { return n != 0 && n&(n-1) == 0 }

// reportSearcherInfo prints one info line (MultiPV==1) or one line per
// tracked principal variation (MultiPV>1), in descending visit order
// (spec 12; original_source/src/tei.rs's "if multi_pv > 1" branch).
func (t *TEI) reportSearcherInfo(s *mcts.Searcher, start time.Time) {
	children := s.RootChildren()
	if len(children) == 0 {
		return
	}
	ranked := rankByVisits(children)

	n := t.options.MultiPV
	if n < 1 {
		n = 1
	}
	if n > len(ranked) {
		n = len(ranked)
	}

	for i := 0; i < n; i++ {
		c := ranked[i]
		info := mcts.Info{
			NodesVisited: s.NodesVisited(),
			Elapsed:      time.Since(start),
			WinProb:      float64(c.MeanValue),
			PV:           pvFrom(s, c.Move),
			ArenaPercent: s.Tree().Stats().OccupancyPercent(),
		}
		if t.options.MultiPV > 1 {
			t.printInfoMultiPV(info, i+1)
		} else {
			t.printInfo(info)
		}
	}
}

// rankByVisits returns children sorted by descending visit count, tied
// broken by mean action value (spec 4.10's "best move" ordering extended
// to a full ranking for MultiPV).
func rankByVisits(children []mcts.RootChild) []mcts.RootChild {
	ranked := append([]mcts.RootChild(nil), children...)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0; j-- {
			a, b := ranked[j-1], ranked[j]
			less := a.Visits < b.Visits || (a.Visits == b.Visits && a.MeanValue < b.MeanValue)
			if !less {
				break
			}
			ranked[j-1], ranked[j] = ranked[j], ranked[j-1]
		}
	}
	return ranked
}

// pvFrom reports the principal variation starting with rootMove: the
// move itself, followed by the tree's PV continuation from the position
// after it would be played. Only the rank-1 line's PV descends further
// than the root move itself, since the tree only tracks play past the
// actual (most-visited) child.
func pvFrom(s *mcts.Searcher, rootMove tak.Move) []tak.Move {
	full := s.PrincipalVariation(32)
	if len(full) > 0 && full[0] == rootMove {
		return full
	}
	return []tak.Move{rootMove}
}

func (t *TEI) emitBestMove(s *mcts.Searcher) {
	children := s.RootChildren()
	best := mcts.BestRootChild(children)
	if best < 0 {
		fmt.Println("bestmove 0000")
		return
	}
	fmt.Printf("bestmove %s\n", tak.FormatPTN(children[best].Move, t.size))
}

// goTime runs a single time-bounded search. infinite treats maxTime as
// unbounded, stopped only by "stop"/"quit" (spec 12: "go infinite").
func (t *TEI) goTime(maxTime time.Duration, infinite bool) {
	if infinite {
		maxTime = 365 * 24 * time.Hour
	}
	t.runTimedSearch(maxTime)
}

// goClock derives a per-move time budget from the remaining clock (spec
// 12; original_source/src/tei.rs: "white_time/5 + white_inc/2").
func (t *TEI) goClock(args []string) {
	var wtime, btime, winc, binc time.Duration
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime":
			wtime = parseMillis(args, i+1)
			i++
		case "btime":
			btime = parseMillis(args, i+1)
			i++
		case "winc":
			winc = parseMillis(args, i+1)
			i++
		case "binc":
			binc = parseMillis(args, i+1)
			i++
		}
	}

	var maxTime time.Duration
	if t.pos.SideToMove == tak.White {
		maxTime = wtime/5 + winc/2
	} else {
		maxTime = btime/5 + binc/2
	}
	t.runTimedSearch(maxTime)
}

// runTimedSearch runs PlayMoveTime in a goroutine so Run's main loop
// remains free to read "stop"/"isready"/"quit" while the search is in
// flight (spec 5: "polls a nonblocking input channel between batches"),
// the same concurrency shape as the teacher's UCI handleGo.
func (t *TEI) runTimedSearch(maxTime time.Duration) {
	settings := mcts.DefaultSettings()
	settings.OnInfo = func(info mcts.Info) { t.printInfo(info) }

	t.searching = true
	t.stopRequested.Store(false)
	t.searchDone = make(chan struct{})

	pos := t.pos
	stop := &atomicStop{flag: &t.stopRequested}

	go func() {
		defer close(t.searchDone)
		result, err := mcts.PlayMoveTime(pos, maxTime, t.hashBytes(), t.weights, settings, stop)
		t.searching = false
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string search failed: %v\n", err)
			fmt.Println("bestmove 0000")
			return
		}
		fmt.Printf("bestmove %s\n", tak.FormatPTN(result.Move, t.size))
	}()
}

// atomicStop adapts a shared atomic flag to mcts.StopSignal.
type atomicStop struct {
	flag *atomic.Bool
}

func (s *atomicStop) Stopped() bool { return s.flag.Load() }

// printInfo formats one mcts.Info as a TEI "info" line, following
// original_source/src/tei.rs's info_string field order: depth, seldepth,
// nodes, score cp, wdl, time, nps, arena occupancy, pv.
func (t *TEI) printInfo(info mcts.Info) {
	fmt.Println(t.formatInfo(info, 0))
}

// printInfoMultiPV is printInfo with a leading "multipv N" field (spec
// 12), for the Nth-ranked line in a MultiPV>1 report.
func (t *TEI) printInfoMultiPV(info mcts.Info, rank int) {
	fmt.Println(t.formatInfo(info, rank))
}

func (t *TEI) formatInfo(info mcts.Info, multiPVRank int) string {
	elapsed := info.Elapsed
	if elapsed <= 0 {
		elapsed = time.Microsecond
	}

	depth := 0
	if info.NodesVisited > 10 {
		depth = int(math.Log2(float64(info.NodesVisited) / 10.0))
	}
	cp := int64(info.WinProb*200 - 100)
	w := int64(math.Round(info.WinProb * 1000))
	l := int64(math.Round((1 - info.WinProb) * 1000))
	nps := float64(info.NodesVisited) / elapsed.Seconds()

	var b strings.Builder
	b.WriteString("info")
	if multiPVRank > 0 {
		fmt.Fprintf(&b, " multipv %d", multiPVRank)
	}
	fmt.Fprintf(&b, " depth %d seldepth %d nodes %d score cp %d wdl %d 0 %d time %d nps %.0f arena %.0f",
		depth, len(info.PV), info.NodesVisited, cp, w, l, elapsed.Milliseconds(), nps, info.ArenaPercent)

	var pvStrs []string
	for _, m := range info.PV {
		pvStrs = append(pvStrs, tak.FormatPTN(m, t.size))
	}
	if len(pvStrs) > 0 {
		fmt.Fprintf(&b, " pv %s", strings.Join(pvStrs, " "))
	}
	return b.String()
}

// handleStop stops the current search and waits for it to finish (spec
// 5, 12), matching the teacher's handleStop.
func (t *TEI) handleStop() {
	if t.searching {
		t.stopRequested.Store(true)
		<-t.searchDone
	}
}

// handleQuit stops any in-flight search, closes an active CPU profile,
// and exits (spec 12), matching the teacher's handleQuit.
func (t *TEI) handleQuit() {
	t.handleStop()
	if t.profileFile != nil {
		pprof.StopCPUProfile()
		t.profileFile.Close()
	}
	os.Exit(0)
}

// handleSetOption processes "setoption name <name> value <value>"
// (spec 12), matching the teacher's option-name dispatch.
func (t *TEI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false
	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "halfkomi":
		k, err := strconv.Atoi(value)
		if err != nil || (k != 0 && k != 4) {
			fmt.Fprintf(os.Stderr, "info string invalid HalfKomi %q\n", value)
			return
		}
		t.options.HalfKomi = k
		_ = t.resetPosition() // k is already validated to 0 or 4
	case "multipv":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 16 {
			fmt.Fprintf(os.Stderr, "info string invalid MultiPV %q\n", value)
			return
		}
		t.options.MultiPV = n
	case "hash":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "info string invalid Hash %q\n", value)
			return
		}
		t.options.HashMB = n
	case "cpuprofile":
		t.setCPUProfile(value)
	default:
		fmt.Fprintf(os.Stderr, "info string unknown option %q\n", name)
	}
}

func (t *TEI) setCPUProfile(path string) {
	if t.profileFile != nil {
		pprof.StopCPUProfile()
		t.profileFile.Close()
		t.profileFile = nil
	}
	if path == "" || path == "stop" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string failed to create profile: %v\n", err)
		return
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "info string failed to start profile: %v\n", err)
		return
	}
	t.profileFile = f
}

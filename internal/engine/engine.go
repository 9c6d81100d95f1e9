package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/elanko/gofish/internal/board"
)

// State is the Engine's lifecycle state, advanced only by start()/the
// worker goroutine/stop() and observed via atomic loads from either side.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateSearching
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateSearching:
		return "searching"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// BookProber is the opening-book collaborator consulted before the search
// worker is started; internal/book.Book satisfies it.
type BookProber interface {
	Probe(pos *board.Position) (board.Move, bool)
}

// PerftResult is the leaf-node statistics a perft-mode search reports.
type PerftResult struct {
	Nodes       uint64
	Captures    uint64
	EnPassants  uint64
	Checks      uint64
	Checkmates  uint64
}

// Engine owns the transposition table, evaluator and a single Searcher, and
// drives the IDLE/STARTING/SEARCHING/STOPPING state machine across the
// caller goroutine and one worker goroutine. Two threads only: the caller
// (the UCI loop) and the worker spawned by start(). The only state shared
// mutably between them is the atomic stopFlag, the atomic state variable,
// the one-shot initialized semaphore, and limits (written by the caller
// only at ponderHit, read by the worker at its own time-check points).
type Engine struct {
	tt       *TranspositionTable
	eval     *ClassicalEvaluator
	searcher *Searcher
	book     BookProber

	state       atomic.Int32
	stopFlag    atomic.Bool
	initialized *semaphore.Weighted

	mu         sync.Mutex
	limits     SearchLimits
	searchUs   board.Color
	searchPly  int

	wg sync.WaitGroup

	OnInfo     func(SearchInfo)
	OnBestMove func(best, ponder board.Move)
}

// NewEngine creates an idle Engine with a transposition table of the given
// size and a fresh classical evaluator.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	eval := NewClassicalEvaluator()
	e := &Engine{
		tt:          tt,
		eval:        eval,
		searcher:    NewSearcher(tt, eval),
		initialized: semaphore.NewWeighted(1),
	}
	e.initialized.Acquire(context.Background(), 1) // steady state: drained, not-ready
	return e
}

// SetBook installs (or clears, with nil) the opening-book collaborator.
func (e *Engine) SetBook(b BookProber) { e.book = b }

// HasBook reports whether an opening book is installed.
func (e *Engine) HasBook() bool { return e.book != nil }

// State returns the engine's current lifecycle state.
func (e *Engine) State() State { return State(e.state.Load()) }

// IsSearching reports whether the worker is between STARTING and STOPPING.
func (e *Engine) IsSearching() bool {
	switch e.State() {
	case StateStarting, StateSearching, StateStopping:
		return true
	default:
		return false
	}
}

// Nodes returns the node count of the in-progress or most recent search.
func (e *Engine) Nodes() uint64 { return e.searcher.Nodes() }

// Hashfull returns the transposition table's permille occupancy.
func (e *Engine) Hashfull() int { return e.tt.Hashfull() }

// Evaluate returns the static evaluation of pos, bypassing search.
func (e *Engine) Evaluate(pos *board.Position) int { return e.eval.Evaluate(pos) }

// Clear resets the transposition table and the correction history. Valid
// only while IDLE; a call while searching is ignored.
func (e *Engine) Clear() {
	if e.State() != StateIdle {
		return
	}
	e.tt.Clear()
	e.eval.corr.Clear()
}

// Resize changes the transposition table size. Valid only while IDLE.
func (e *Engine) Resize(sizeMB int) {
	if e.State() != StateIdle {
		return
	}
	e.tt.Resize(sizeMB)
}

// Start clones pos, resets per-search state, and spawns the worker
// goroutine that runs the search. It returns only after the worker has
// transitioned STARTING -> SEARCHING, via the one-shot initialized
// semaphore, so that a subsequent Stop() is always well-defined. Start is a
// no-op if a search is already in progress.
func (e *Engine) Start(pos *board.Position, limits SearchLimits) {
	if e.State() != StateIdle {
		return
	}
	e.state.Store(int32(StateStarting))
	e.stopFlag.Store(false)

	ply := (pos.FullMoveNumber - 1) * 2
	if pos.SideToMove == board.Black {
		ply++
	}

	e.mu.Lock()
	e.limits = limits
	e.searchUs = pos.SideToMove
	e.searchPly = ply
	e.mu.Unlock()

	e.tt.AgeEntries()

	e.wg.Add(1)
	go e.run(pos, limits)

	e.initialized.Acquire(context.Background(), 1)
}

func (e *Engine) run(pos *board.Position, limits SearchLimits) {
	defer e.wg.Done()

	e.state.Store(int32(StateSearching))
	e.initialized.Release(1)

	onInfo := e.OnInfo
	best := e.searcher.Run(pos, limits, onInfo)

	e.state.Store(int32(StateStopping))

	var ponder board.Move
	if pv := e.searcher.GetPV(); len(pv) > 1 {
		ponder = pv[1]
	}
	if e.OnBestMove != nil {
		e.OnBestMove(best, ponder)
	}

	e.state.Store(int32(StateIdle))
}

// Stop requests the in-progress search to abort at its next node check. It
// does not block; callers wanting synchrony follow it with
// WaitWhileSearching.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
	e.searcher.Stop()
}

// WaitWhileSearching blocks until the worker has returned to IDLE.
func (e *Engine) WaitWhileSearching() {
	e.wg.Wait()
}

// PonderHit converts an in-progress infinite/ponder search into a normally
// timed one, per the limits last passed to Start.
func (e *Engine) PonderHit() {
	e.mu.Lock()
	limits := e.limits
	limits.Infinite = false
	limits.Ponder = false
	e.limits = limits
	us, ply := e.searchUs, e.searchPly
	e.mu.Unlock()
	e.searcher.PonderHit(limits, us, ply)
}

// ProbeBook consults the installed book, if any, before a search is
// started; the caller (internal/uci) plays the returned move directly
// without ever starting the worker.
func (e *Engine) ProbeBook(pos *board.Position) (board.Move, bool) {
	if e.book == nil {
		return board.NoMove, false
	}
	return e.book.Probe(pos)
}

// Perft counts leaf nodes and their tagged categories to depth, disabling
// evaluation, the transposition table and all pruning, per the perft mode
// of the external search-limits surface.
func Perft(pos *board.Position, depth int) PerftResult {
	var r PerftResult
	perftRec(pos, depth, &r)
	return r
}

func perftRec(pos *board.Position, depth int, r *PerftResult) {
	var gen board.MoveGenerator
	gen.Start(pos, board.AllMoves, board.NoMove)
	for {
		m := gen.Next()
		if m == board.NoMove {
			break
		}
		if !pos.IsLegalMove(m) {
			continue
		}
		isCapture := m.IsCapture(pos)
		isEnPassant := m.IsEnPassant()

		pos.DoMove(m)
		if depth == 1 {
			r.Nodes++
			if isCapture {
				r.Captures++
			}
			if isEnPassant {
				r.EnPassants++
			}
			if pos.InCheck() {
				r.Checks++
				if !board.HasLegalMove(pos) {
					r.Checkmates++
				}
			}
		} else {
			perftRec(pos, depth-1, r)
		}
		pos.UndoMove(m)
	}
}

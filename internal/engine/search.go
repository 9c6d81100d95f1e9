package engine

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/elanko/gofish/internal/board"
)

// lmrReductions[d][m] is the late-move-reduction table, Stockfish's own
// empirical formula: ply and move-count scaled logarithmically.
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(21.46*math.Log(float64(d))) * int(21.46*math.Log(float64(m))) / 1024
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func isMateScore(v int) bool {
	return v >= ValueCheckmateThreshold || v <= -ValueCheckmateThreshold
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, c := range moves {
		if c.SameAs(m) {
			return true
		}
	}
	return false
}

// PVTable stores the principal variation line discovered at each ply.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// SearchInfo is the per-completed-iteration progress report, shaped after
// the UCI "info" line.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int
	Bound    TTFlag
	Nodes    uint64
	NPS      uint64
	TimeMs   int64
	PV       []board.Move
}

// searchStackEntry holds per-ply state that does not belong on MoveGenerator:
// the cached static evaluation, used by pruning tests at this ply.
type searchStackEntry struct {
	staticEval int
}

// Searcher performs iterative-deepening alpha-beta search with quiescence,
// null-move pruning, late-move reductions, futility pruning and PVS, over a
// single mutable Position traversed via DoMove/UndoMove. One Searcher runs
// strictly single-threaded; concurrency (the caller's stop() call racing the
// worker's node loop) is confined to the atomic stopFlag.
type Searcher struct {
	tt   *TranspositionTable
	eval *ClassicalEvaluator

	history    HistoryTable
	generators [MaxPly]board.MoveGenerator
	stack      [MaxPly]searchStackEntry

	pos *board.Position
	us  board.Color

	nodes    uint64
	selDepth int
	stopFlag atomic.Bool

	tm      *TimeManager
	limits  SearchLimits
	pondering atomic.Bool
	ponderHit atomic.Bool

	pv            PVTable
	firstRootMove board.Move
}

// NewSearcher builds a Searcher sharing tt and eval with the rest of the
// engine; both must outlive the Searcher and are safe to reuse across runs.
func NewSearcher(tt *TranspositionTable, eval *ClassicalEvaluator) *Searcher {
	return &Searcher{tt: tt, eval: eval}
}

// Stop requests the in-progress Run to abort at its next node check.
func (s *Searcher) Stop() { s.stopFlag.Store(true) }

// Nodes returns the node count of the most recent (or in-progress) search.
func (s *Searcher) Nodes() uint64 { return s.nodes }

// Run executes iterative deepening from pos under limits, calling onInfo
// after every completed iteration, and returns the best move found. Run
// blocks until the search completes or Stop is called; the caller is
// expected to invoke it from its own goroutine (the "worker" of the
// IDLE/STARTING/SEARCHING/STOPPING state machine lives in Engine).
func (s *Searcher) Run(pos *board.Position, limits SearchLimits, onInfo func(SearchInfo)) board.Move {
	s.pos = pos.Copy()
	s.us = s.pos.SideToMove
	s.limits = limits
	s.stopFlag.Store(false)
	s.pondering.Store(limits.Ponder || limits.Infinite)
	s.ponderHit.Store(false)
	s.nodes = 0
	s.selDepth = 0
	s.firstRootMove = board.NoMove
	s.history.Clear()
	for i := range s.generators {
		s.generators[i].ClearKillers()
	}

	s.tm = NewTimeManager()
	ply := (s.pos.FullMoveNumber - 1) * 2
	if s.us == board.Black {
		ply++
	}
	s.tm.Init(limits, s.us, ply)

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	start := time.Now()
	var bestMove board.Move
	var bestPV []board.Move
	prevScore := 0
	lastBest := board.NoMove
	stability, changes := 0, 0

	for depth := 1; depth <= maxDepth; depth++ {
		s.selDepth = 0
		value := s.aspirationSearch(depth, prevScore)
		if s.stopFlag.Load() {
			break
		}

		if depth > 1 && value < prevScore-50 {
			s.tm.AddExtraTime(50)
		}
		prevScore = value

		if s.pv.length[0] > 0 {
			bestMove = s.pv.moves[0][0]
			bestPV = s.GetPV()
		}
		if bestMove.SameAs(lastBest) {
			stability++
			changes = 0
		} else {
			changes++
			stability = 0
			lastBest = bestMove
		}
		s.tm.AdjustForStability(stability)
		s.tm.AdjustForInstability(changes)

		if onInfo != nil {
			elapsed := time.Since(start)
			var nps uint64
			if elapsed > 0 {
				nps = uint64(float64(s.nodes) / elapsed.Seconds())
			}
			onInfo(SearchInfo{
				Depth:    depth,
				SelDepth: s.selDepth,
				Score:    value,
				Bound:    TTExact,
				Nodes:    s.nodes,
				NPS:      nps,
				TimeMs:   elapsed.Milliseconds(),
				PV:       bestPV,
			})
		}

		if limits.Mate > 0 && isMateScore(value) {
			pliesToMate := ValueCheckmate - abs(value)
			if (pliesToMate+1)/2 <= limits.Mate {
				break
			}
		}

		stillPondering := s.pondering.Load() && !s.ponderHit.Load()
		if limits.Depth == 0 && limits.Nodes == 0 && !stillPondering && s.tm.PastSoft() {
			break
		}
		if limits.Nodes > 0 && s.nodes >= limits.Nodes {
			break
		}
	}

	if bestMove == board.NoMove {
		bestMove = s.firstRootMove
	}
	return bestMove
}

// PonderHit converts an in-progress infinite/ponder search into a normally
// timed one. us and ply are the values the caller computed at Start time,
// since touching s.pos from the caller's goroutine would race the worker's
// own DoMove/UndoMove traversal.
func (s *Searcher) PonderHit(limits SearchLimits, us board.Color, ply int) {
	s.ponderHit.Store(true)
	if s.tm != nil {
		s.tm.PromoteToTimed(limits, us, ply)
	}
}

// aspirationSearch re-searches depth with a window centered on the previous
// iteration's score, widening on failure until the result lands inside.
func (s *Searcher) aspirationSearch(depth, prevScore int) int {
	if depth <= 4 {
		return s.negamax(depth, 0, -ValueInf, ValueInf, true, 0)
	}

	delta := 30
	alpha := max(prevScore-delta, -ValueInf)
	beta := min(prevScore+delta, ValueInf)

	for {
		value := s.negamax(depth, 0, alpha, beta, true, 0)
		if s.stopFlag.Load() {
			return value
		}
		switch {
		case value <= alpha:
			beta = (alpha + beta) / 2
			alpha = max(alpha-delta, -ValueInf)
		case value >= beta:
			beta = min(beta+delta, ValueInf)
		default:
			return value
		}
		delta += delta / 2
		if delta >= ValueInf {
			alpha, beta = -ValueInf, ValueInf
		}
	}
}

// GetPV returns a copy of the principal variation from the most recent
// completed iteration.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

func (s *Searcher) updatePV(ply int, m board.Move) {
	s.pv.moves[ply][ply] = m
	for j := ply + 1; j < s.pv.length[ply+1]; j++ {
		s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
	}
	s.pv.length[ply] = s.pv.length[ply+1]
}

// stopped reports the atomic stop flag, and every 1024 nodes additionally
// checks the node limit and the hard time budget.
func (s *Searcher) stopped() bool {
	if s.stopFlag.Load() {
		return true
	}
	if s.nodes&1023 == 0 {
		if s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes {
			s.stopFlag.Store(true)
			return true
		}
		if s.tm.PastHard() {
			s.stopFlag.Store(true)
			return true
		}
	}
	return false
}

// negamax searches a single node to remaining depth, implementing
// alpha-beta/PVS with the standard suite of pruning and extension rules.
// extTotal counts check extensions already applied along this path, bounding
// how far a single line of forcing checks can extend the search.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, isPV bool, extTotal int) int {
	if s.stopped() {
		return 0
	}
	s.nodes++
	if ply > s.selDepth {
		s.selDepth = ply
	}
	s.pv.length[ply] = ply

	pos := s.pos

	if ply > 0 {
		if pos.Check50MovesRule() || pos.IsInsufficientMaterial() || pos.CountRepetitions() >= 1 {
			return ValueDraw
		}
		alpha = max(alpha, MatedIn(ply))
		beta = min(beta, MateIn(ply+1))
		if alpha >= beta {
			return alpha
		}
	}

	ttHit, ttValue, ttMove, _ := s.tt.Probe(pos.Hash, depth, ply, alpha, beta, isPV)
	if ttHit && ply > 0 {
		return ttValue
	}

	if depth <= 0 {
		return s.quiescence(ply, 0, alpha, beta)
	}

	inCheck := pos.InCheck()

	var rawEval, staticEval int
	if !inCheck {
		rawEval = s.eval.EvaluateRaw(pos)
		staticEval = rawEval + s.eval.Correction(pos)
	}
	s.stack[ply].staticEval = staticEval

	if !isPV && !inCheck {
		if depth <= 3 && staticEval-300*depth >= beta {
			return staticEval
		}
		if depth <= 2 && staticEval+600 <= alpha {
			return s.quiescence(ply, 0, alpha, beta)
		}
		if depth >= 3 && pos.HasNonPawnMaterial() {
			undo := pos.DoNullMove()
			reduction := 2
			nullDepth := depth - 1 - reduction
			score := -s.negamax(nullDepth, ply+1, -beta, -beta+1, false, extTotal)
			pos.UndoNullMove(undo)
			if s.stopFlag.Load() {
				return 0
			}
			if score >= beta {
				if score >= ValueCheckmateThreshold {
					verifyDepth := max(nullDepth, 1)
					verifyScore := s.negamax(verifyDepth, ply, beta-1, beta, false, extTotal)
					if verifyScore >= beta {
						return beta
					}
				} else {
					return beta
				}
			}
		}
	}

	if isPV && ttMove == board.NoMove && depth >= 5 {
		s.negamax(depth-4, ply, alpha, beta, isPV, extTotal)
		_, _, iidMove, _ := s.tt.Probe(pos.Hash, 0, ply, -ValueInf, ValueInf, false)
		ttMove = iidMove
	}

	gen := &s.generators[ply]
	gen.Start(pos, board.AllMoves, ttMove)

	bestScore := -ValueInf
	bestMove := board.NoMove
	flag := TTUpperBound
	legalCount := 0

	for {
		m := gen.Next()
		if m == board.NoMove {
			break
		}
		if !pos.IsLegalMove(m) {
			continue
		}
		if ply == 0 && len(s.limits.Moves) > 0 && !containsMove(s.limits.Moves, m) {
			continue
		}
		legalCount++
		if ply == 0 && s.firstRootMove == board.NoMove {
			s.firstRootMove = m
		}

		givesCheck := pos.GivesCheck(m)
		isCapture := m.IsCapture(pos)
		isQuiet := !isCapture && !m.IsPromotion()

		extension := 0
		if givesCheck && extTotal < depth*2 {
			extension = 1
		}

		if !isPV && !inCheck && depth == 1 && isQuiet && !givesCheck && extension == 0 {
			if staticEval+150 <= alpha {
				continue
			}
		}

		newDepth := depth - 1 + extension

		pos.DoMove(m)

		var score int
		switch {
		case legalCount == 1:
			score = -s.negamax(newDepth, ply+1, -beta, -alpha, isPV, extTotal+extension)
		default:
			reduction := 0
			if depth >= 3 && legalCount > 3 && isQuiet && !inCheck && !givesCheck {
				reduction = lmrReductions[min(depth, 63)][min(legalCount, 63)]
				if isPV && reduction > 0 {
					reduction--
				}
			}
			reducedDepth := max(newDepth-reduction, 1)
			score = -s.negamax(reducedDepth, ply+1, -alpha-1, -alpha, false, extTotal+extension)
			if score > alpha && reduction > 0 {
				score = -s.negamax(newDepth, ply+1, -alpha-1, -alpha, false, extTotal+extension)
			}
			if score > alpha && score < beta {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha, true, extTotal+extension)
			}
		}

		pos.UndoMove(m)

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				flag = TTExact
				s.updatePV(ply, m)
			}
		}

		if score >= beta {
			s.tt.Put(pos.Hash, depth, bestMove, AdjustScoreToTT(score, ply), TTLowerBound, givesCheck, false)
			if isQuiet {
				gen.StoreKiller(m)
				s.history.Update(pos.SideToMove, m, depth, true)
			}
			return score
		}
	}

	if legalCount == 0 {
		if inCheck {
			return MatedIn(ply)
		}
		return ValueDraw
	}

	s.tt.Put(pos.Hash, depth, bestMove, AdjustScoreToTT(bestScore, ply), flag, false, false)
	if !inCheck && flag == TTExact && depth >= 2 {
		s.eval.RecordResult(pos, bestScore, rawEval, depth)
	}

	return bestScore
}

// quiescence resolves tactical sequences beyond the nominal search depth:
// captures (and, while in check, all evasions), filtered by SEE so that
// losing captures never get explored. qdepth bounds the extra recursion
// independent of ply, per the ~20-ply quiescence cap.
func (s *Searcher) quiescence(ply, qdepth int, alpha, beta int) int {
	if s.stopped() {
		return 0
	}
	s.nodes++
	if ply > s.selDepth {
		s.selDepth = ply
	}

	pos := s.pos
	if ply >= MaxPly-1 || qdepth >= 20 {
		return s.eval.Evaluate(pos)
	}

	inCheck := pos.InCheck()
	standPat := -ValueInf
	if !inCheck {
		standPat = s.eval.Evaluate(pos)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		if standPat+board.PieceValue[board.Queen] < alpha {
			return alpha
		}
	}

	mode := board.CapturesOnly
	if inCheck {
		mode = board.AllMoves
	}
	gen := &s.generators[min(ply, MaxPly-1)]
	gen.Start(pos, mode, board.NoMove)

	moveCount := 0
	for {
		m := gen.Next()
		if m == board.NoMove {
			break
		}
		if !pos.IsLegalMove(m) {
			continue
		}
		moveCount++

		if !inCheck {
			if SEE(pos, m) < 0 {
				continue
			}
			capVal := 0
			if m.IsEnPassant() {
				capVal = board.PieceValue[board.Pawn]
			} else if victim := pos.PieceAt(m.To()); victim != board.NoPiece {
				capVal = board.PieceValue[victim.Type()]
			}
			if m.IsPromotion() {
				capVal += board.PieceValue[m.PromotionType()] - board.PieceValue[board.Pawn]
			}
			if standPat+capVal+200 < alpha {
				continue
			}
		}

		pos.DoMove(m)
		score := -s.quiescence(ply+1, qdepth+1, -beta, -alpha)
		pos.UndoMove(m)

		if s.stopFlag.Load() {
			return 0
		}

		if score > alpha {
			alpha = score
			if score >= beta {
				return beta
			}
		}
	}

	if inCheck && moveCount == 0 {
		return MatedIn(ply)
	}
	return alpha
}


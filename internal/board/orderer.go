package board

// genStage is the staged on-demand generator's internal state machine.
type genStage uint8

const (
	stagePV genStage = iota
	stageCaptures
	stageQuiets
	stageDone
)

// MoveGenerator yields pseudo-legal moves for a single search node one at a
// time, in value order, without materializing the whole move list up front.
// One instance is allocated per ply so recursive search can hold a live
// generator at every depth simultaneously.
type MoveGenerator struct {
	pos *Position
	key uint64

	mode  GenMode
	pv    Move
	stage genStage

	captures MoveList
	capIdx   int
	quiets   MoveList
	quietIdx int

	killers [2]Move
}

// Start (re)initializes the generator for a node. Killers are NOT reset here
// — they persist across the re-searches of a single ply (iterative
// deepening, null-move verification) the way the reference design intends.
func (g *MoveGenerator) Start(pos *Position, mode GenMode, pv Move) {
	g.pos = pos
	g.key = pos.Hash
	g.mode = mode
	g.pv = pv
	g.stage = stagePV
	g.captures.Clear()
	g.quiets.Clear()
	g.capIdx = 0
	g.quietIdx = 0
}

// SetPV installs the move to yield first on the next Next() call, restarting
// the stage machine (used when a new iterative-deepening pass supplies a
// fresher PV move for an already-initialized node).
func (g *MoveGenerator) SetPV(m Move) {
	g.pv = m
	g.stage = stagePV
	g.captures.Clear()
	g.quiets.Clear()
	g.capIdx = 0
	g.quietIdx = 0
}

// Stale reports whether this generator was last Start()-ed for a different
// position than pos, i.e. whether the caller must call Start again before
// resuming iteration.
func (g *MoveGenerator) Stale(pos *Position) bool {
	return g.pos != pos || g.key != pos.Hash
}

// StoreKiller records a refutation move as a killer for this ply, keeping up
// to two distinct moves, most-recent first.
func (g *MoveGenerator) StoreKiller(m Move) {
	if g.killers[0].SameAs(m) {
		return
	}
	g.killers[1] = g.killers[0]
	g.killers[0] = m
}

// ClearKillers resets the killer slots, called at the start of a new search.
func (g *MoveGenerator) ClearKillers() {
	g.killers[0] = NoMove
	g.killers[1] = NoMove
}

// Next returns the next pseudo-legal move in stage order (PV, captures,
// quiets), or NoMove once exhausted. Legality is the caller's responsibility
// (via Position.IsLegalMove), matching the reference design's separation of
// generation from legality filtering in the hot search loop.
func (g *MoveGenerator) Next() Move {
	for {
		switch g.stage {
		case stagePV:
			g.stage = stageCaptures
			if !g.pv.SameAs(NoMove) && g.modeAllows(g.pv) {
				return g.pv
			}

		case stageCaptures:
			if g.captures.Len() == 0 && g.capIdx == 0 {
				g.pos.generatePawnMoves(&g.captures, CapturesOnly)
				g.pos.generateOfficerMoves(&g.captures, CapturesOnly)
				g.pos.generateKingMoves(&g.captures, CapturesOnly)
				g.captures.SortByValueDesc()
			}
			for g.capIdx < g.captures.Len() {
				m := g.captures.Get(g.capIdx)
				g.capIdx++
				if m.SameAs(g.pv) {
					continue
				}
				return m
			}
			if g.mode == CapturesOnly {
				g.stage = stageDone
				return NoMove
			}
			g.stage = stageQuiets

		case stageQuiets:
			if g.quiets.Len() == 0 && g.quietIdx == 0 {
				g.pos.generatePawnMoves(&g.quiets, QuietsOnly)
				g.pos.generateCastlingMoves(&g.quiets)
				g.pos.generateOfficerMoves(&g.quiets, QuietsOnly)
				g.pos.generateKingMoves(&g.quiets, QuietsOnly)
				g.quiets.SortByValueDesc()
				g.promoteKillers()
			}
			for g.quietIdx < g.quiets.Len() {
				m := g.quiets.Get(g.quietIdx)
				g.quietIdx++
				if m.SameAs(g.pv) {
					continue
				}
				return m
			}
			g.stage = stageDone
			return NoMove

		case stageDone:
			return NoMove
		}
	}
}

func (g *MoveGenerator) modeAllows(m Move) bool {
	if g.mode == AllMoves {
		return true
	}
	isCapture := m.IsCapture(g.pos)
	if g.mode == CapturesOnly {
		return isCapture
	}
	return !isCapture
}

// promoteKillers relocates any killer move present in the quiet batch to the
// front, preserving the relative order of everything else.
func (g *MoveGenerator) promoteKillers() {
	n := g.quiets.Len()
	if n == 0 {
		return
	}
	front := 0
	for _, killer := range g.killers {
		if killer.SameAs(NoMove) {
			continue
		}
		for i := front; i < n; i++ {
			if g.quiets.Get(i).SameAs(killer) {
				for j := i; j > front; j-- {
					g.quiets.Swap(j, j-1)
				}
				front++
				break
			}
		}
	}
}

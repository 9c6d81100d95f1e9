package engine

import "github.com/elanko/gofish/internal/board"

const (
	correctionTableSize = 1 << 16
	correctionTableMask = correctionTableSize - 1
	correctionBonusCap  = 256
	correctionValueCap  = 16000
	correctionGravity   = 16 // divisor controlling how fast corrections converge
)

// CorrectionHistory tracks how far a position's static evaluation tends to
// drift from what search actually finds, then nudges future static evals
// of similar positions toward the observed truth. Modeled on Stockfish's
// correction history, keyed here by the low bits of the position hash
// rather than a dedicated pawn/material key.
type CorrectionHistory struct {
	byHash [correctionTableSize]int16
}

func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

func correctionIndex(pos *board.Position) uint64 {
	return pos.Hash & correctionTableMask
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Get returns the correction to add to pos's static evaluation.
func (ch *CorrectionHistory) Get(pos *board.Position) int {
	return int(ch.byHash[correctionIndex(pos)])
}

// Update folds one more (static eval, search result) sample into the
// correction for pos, using a gravity update so no single search result
// can swing the stored value too far on its own.
func (ch *CorrectionHistory) Update(pos *board.Position, searchScore, staticEval, depth int) {
	if depth < 1 {
		return
	}

	bonus := clampInt((searchScore-staticEval)*depth/8, -correctionBonusCap, correctionBonusCap)

	idx := correctionIndex(pos)
	old := int(ch.byHash[idx])
	updated := old + (bonus-old)/correctionGravity

	ch.byHash[idx] = int16(clampInt(updated, -correctionValueCap, correctionValueCap))
}

// Clear zeroes every stored correction.
func (ch *CorrectionHistory) Clear() {
	for i := range ch.byHash {
		ch.byHash[i] = 0
	}
}

// Age halves every stored correction, so stale corrections decay rather
// than persisting forever.
func (ch *CorrectionHistory) Age() {
	for i := range ch.byHash {
		ch.byHash[i] /= 2
	}
}

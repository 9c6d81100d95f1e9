package engine

import "github.com/elanko/gofish/internal/board"

// Evaluator is the black-box static evaluation the core consumes; its
// concrete weights are configuration, not design (spec.md §1).
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// Mobility, bishop-pair, rook-file and king-safety weights, grounded on the
// teacher's own classical evaluator (internal/engine/eval.go).
var (
	mobilityMgWeight = [6]int{0, 4, 5, 2, 1, 0}
	mobilityEgWeight = [6]int{0, 3, 4, 4, 2, 0}
)

const (
	bishopPairMg = 25
	bishopPairEg = 50

	rookOpenFileMg     = 20
	rookOpenFileEg     = 25
	rookSemiOpenFileMg = 10
	rookSemiOpenFileEg = 15

	pawnShieldBonus      = 10
	pawnShieldMissing    = -15
	openFileNearKing     = -20
	semiOpenFileNearKing = -10

	knightOutpostMg          = 25
	knightOutpostEg          = 15
	knightOutpostProtectedMg = 15
	knightOutpostProtectedEg = 10
	bishopOutpostMg          = 15
	bishopOutpostEg          = 10
)

// attackerWeight scales a king-zone attack by the attacking piece's type.
var attackerWeight = [6]int{0, 20, 20, 40, 80, 0}

var passedPawnBonus = [8]int{0, 10, 20, 40, 70, 120, 200, 0}

// ClassicalEvaluator computes a tapered midgame/endgame score from
// Position's incrementally-maintained material and piece-square totals,
// plus a handful of positional terms scanned from the bitboards: mobility,
// bishop pair, rook file occupancy, passed pawns, and king pawn shield. A
// PawnTable caches the pawn-structure component by PawnKey, and an optional
// CorrectionHistory nudges the final score toward what recent searches
// found true.
type ClassicalEvaluator struct {
	pawnTable *PawnTable
	corr      *CorrectionHistory
}

// NewClassicalEvaluator builds an evaluator with its own pawn cache.
func NewClassicalEvaluator() *ClassicalEvaluator {
	return &ClassicalEvaluator{
		pawnTable: NewPawnTable(4),
		corr:      NewCorrectionHistory(),
	}
}

// Evaluate returns EvaluateRaw adjusted by the correction history, the
// static evaluation the search should use for all pruning decisions.
func (e *ClassicalEvaluator) Evaluate(pos *board.Position) int {
	return e.EvaluateRaw(pos) + e.Correction(pos)
}

// Correction returns the learned correction-history adjustment for pos,
// without applying it.
func (e *ClassicalEvaluator) Correction(pos *board.Position) int {
	return e.corr.Get(pos)
}

// EvaluateRaw computes the classical tapered score without the correction
// history term, from White's perspective internally, negated to the side to
// move before returning. Search keeps this value alongside the corrected
// Evaluate result so it can later feed RecordResult.
func (e *ClassicalEvaluator) EvaluateRaw(pos *board.Position) int {
	mg := pos.PSQMid[board.White] - pos.PSQMid[board.Black]
	eg := pos.PSQEnd[board.White] - pos.PSQEnd[board.Black]
	mg += pos.Material[board.White] - pos.Material[board.Black]
	eg += pos.Material[board.White] - pos.Material[board.Black]

	mobMg, mobEg := e.mobility(pos)
	mg += mobMg
	eg += mobEg

	mg += e.bishopPair(pos, board.White) - e.bishopPair(pos, board.Black)
	eg += e.bishopPairEg(pos, board.White) - e.bishopPairEg(pos, board.Black)

	rMg, rEg := e.rookFiles(pos, board.White)
	mg += rMg
	eg += rEg
	rMg, rEg = e.rookFiles(pos, board.Black)
	mg -= rMg
	eg -= rEg

	pawnMg, pawnEg := e.pawnStructure(pos)
	mg += pawnMg
	eg += pawnEg

	mg += e.kingSafety(pos, board.White) - e.kingSafety(pos, board.Black)

	outMg, outEg := e.outposts(pos, board.White)
	mg += outMg
	eg += outEg
	outMg, outEg = e.outposts(pos, board.Black)
	mg -= outMg
	eg -= outEg

	phase := pos.GamePhase
	score := (mg*phase + eg*(board.MaxGamePhase-phase)) / board.MaxGamePhase

	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// RecordResult feeds a completed search's verdict back into the correction
// history. rawEval must be the EvaluateRaw value computed for pos at the
// node being recorded, not the corrected Evaluate value.
func (e *ClassicalEvaluator) RecordResult(pos *board.Position, searchScore, rawEval, depth int) {
	e.corr.Update(pos, searchScore, rawEval, depth)
}

func (e *ClassicalEvaluator) mobility(pos *board.Position) (mg, eg int) {
	occ := pos.AllOccupied
	for _, c := range [2]board.Color{board.White, board.Black} {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Knight; pt <= board.Queen; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				var attacks board.Bitboard
				switch pt {
				case board.Knight:
					attacks = board.KnightAttacks(sq)
				case board.Bishop:
					attacks = board.BishopAttacks(sq, occ)
				case board.Rook:
					attacks = board.RookAttacks(sq, occ)
				case board.Queen:
					attacks = board.BishopAttacks(sq, occ) | board.RookAttacks(sq, occ)
				}
				count := (attacks &^ pos.Occupied[c]).PopCount()
				mg += sign * mobilityMgWeight[pt] * count
				eg += sign * mobilityEgWeight[pt] * count
			}
		}
	}
	return mg, eg
}

func (e *ClassicalEvaluator) bishopPair(pos *board.Position, c board.Color) int {
	if pos.Pieces[c][board.Bishop].PopCount() >= 2 {
		return bishopPairMg
	}
	return 0
}

func (e *ClassicalEvaluator) bishopPairEg(pos *board.Position, c board.Color) int {
	if pos.Pieces[c][board.Bishop].PopCount() >= 2 {
		return bishopPairEg
	}
	return 0
}

func (e *ClassicalEvaluator) rookFiles(pos *board.Position, c board.Color) (mg, eg int) {
	ownPawns := pos.Pieces[c][board.Pawn]
	enemyPawns := pos.Pieces[c.Other()][board.Pawn]
	rooks := pos.Pieces[c][board.Rook]
	for rooks != 0 {
		sq := rooks.PopLSB()
		fileMask := board.FileMask[sq.File()]
		if ownPawns&fileMask == 0 {
			if enemyPawns&fileMask == 0 {
				mg += rookOpenFileMg
				eg += rookOpenFileEg
			} else {
				mg += rookSemiOpenFileMg
				eg += rookSemiOpenFileEg
			}
		}
	}
	return mg, eg
}

// pawnStructure is cached in pawnTable by PawnKey since it only depends on
// pawn placement, not the rest of the position.
func (e *ClassicalEvaluator) pawnStructure(pos *board.Position) (mg, eg int) {
	if mg, eg, ok := e.pawnTable.Probe(pos.PawnKey); ok {
		return mg, eg
	}
	mg, eg = e.computePawnStructure(pos)
	e.pawnTable.Store(pos.PawnKey, mg, eg)
	return mg, eg
}

func (e *ClassicalEvaluator) computePawnStructure(pos *board.Position) (mg, eg int) {
	for _, c := range [2]board.Color{board.White, board.Black} {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		enemyPawns := pos.Pieces[c.Other()][board.Pawn]
		ownPawns := pos.Pieces[c][board.Pawn]
		pawns := ownPawns
		for pawns != 0 {
			sq := pawns.PopLSB()
			if board.PassedPawnMask(c, sq)&enemyPawns == 0 {
				rank := sq.RelativeRank(c)
				mg += sign * passedPawnBonus[rank]
				eg += sign * passedPawnBonus[rank] * 3 / 2
			}
		}
	}
	return mg, eg
}

// kingSafety scores attacker pressure on the king zone (knights/bishops/
// rooks/queens whose attack set reaches it, weighted by piece type and
// scaled up with attacker count) plus the pawn shield and open/semi-open
// files in front of the king.
func (e *ClassicalEvaluator) kingSafety(pos *board.Position, c board.Color) int {
	if pos.GamePhase < 6 {
		return 0 // king safety matters far less once queens are off
	}
	occ := pos.AllOccupied
	enemy := c.Other()
	kingSq := pos.KingSquare[c]
	kingFile := kingSq.File()

	kingZone := board.KingAttacks(kingSq) | board.SquareBB(kingSq)
	if c == board.White {
		kingZone |= kingZone.North()
	} else {
		kingZone |= kingZone.South()
	}

	attackerCount, attackWeight := 0, 0
	for pt := board.Knight; pt <= board.Queen; pt++ {
		bb := pos.Pieces[enemy][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			var attacks board.Bitboard
			switch pt {
			case board.Knight:
				attacks = board.KnightAttacks(sq)
			case board.Bishop:
				attacks = board.BishopAttacks(sq, occ)
			case board.Rook:
				attacks = board.RookAttacks(sq, occ)
			case board.Queen:
				attacks = board.QueenAttacks(sq, occ)
			}
			if attacks&kingZone != 0 {
				attackerCount++
				attackWeight += attackerWeight[pt]
			}
		}
	}
	if attackerCount >= 2 {
		attackWeight = attackWeight * attackerCount / 2
	}
	score := -attackWeight

	ownPawns := pos.Pieces[c][board.Pawn]
	enemyPawns := pos.Pieces[enemy][board.Pawn]
	shieldRank := 1
	if c == board.Black {
		shieldRank = 6
	}
	for f := kingFile - 1; f <= kingFile+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		filePawns := ownPawns & board.FileMask[f]
		enemyOnFile := enemyPawns & board.FileMask[f]

		shieldMask := board.FileMask[f] & board.RankMask[shieldRank]
		if ownPawns&shieldMask != 0 {
			score += pawnShieldBonus
		} else if filePawns == 0 {
			score += pawnShieldMissing
		}

		switch {
		case filePawns == 0 && enemyOnFile == 0:
			score += openFileNearKing
		case filePawns == 0:
			score += semiOpenFileNearKing
		}
	}
	return score
}

// outposts scores knights and bishops sitting on squares no enemy pawn can
// ever attack, in the central ranks a minor piece profits from controlling.
func (e *ClassicalEvaluator) outposts(pos *board.Position, c board.Color) (mg, eg int) {
	ownPawns := pos.Pieces[c][board.Pawn]
	enemyPawns := pos.Pieces[c.Other()][board.Pawn]

	var outpostRanks board.Bitboard
	if c == board.White {
		outpostRanks = board.RankMask[3] | board.RankMask[4] | board.RankMask[5]
	} else {
		outpostRanks = board.RankMask[2] | board.RankMask[3] | board.RankMask[4]
	}

	score := func(sq board.Square) bool {
		file := sq.File()
		var adjFiles board.Bitboard
		if file > 0 {
			adjFiles |= board.FileMask[file-1]
		}
		if file < 7 {
			adjFiles |= board.FileMask[file+1]
		}
		var aheadRanks board.Bitboard
		if c == board.White {
			for r := sq.Rank() + 1; r < 8; r++ {
				aheadRanks |= board.RankMask[r]
			}
		} else {
			for r := 0; r < sq.Rank(); r++ {
				aheadRanks |= board.RankMask[r]
			}
		}
		return enemyPawns&adjFiles&aheadRanks == 0
	}

	knights := pos.Pieces[c][board.Knight] & outpostRanks
	for knights != 0 {
		sq := knights.PopLSB()
		if !score(sq) {
			continue
		}
		mg += knightOutpostMg
		eg += knightOutpostEg
		if board.PawnAttacks(sq, c.Other())&ownPawns != 0 {
			mg += knightOutpostProtectedMg
			eg += knightOutpostProtectedEg
		}
	}

	bishops := pos.Pieces[c][board.Bishop] & outpostRanks
	for bishops != 0 {
		sq := bishops.PopLSB()
		if !score(sq) {
			continue
		}
		mg += bishopOutpostMg
		eg += bishopOutpostEg
	}
	return mg, eg
}

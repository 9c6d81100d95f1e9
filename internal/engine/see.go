package engine

import "github.com/elanko/gofish/internal/board"

// SEE (Static Exchange Evaluation) estimates the material result of the
// capture sequence on m's destination square, from the moving side's view.
// Grounded on the classical swap algorithm: repeatedly resolve with the
// least valuable attacker, negamax-folding the gain array at the end.
func SEE(pos *board.Position, m board.Move) int {
	from := m.From()
	to := m.To()

	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	if m.IsEnPassant() {
		return 100
	}

	victim := pos.PieceAt(to)
	if victim == board.NoPiece {
		return 0
	}
	gain0 := pieceValue(victim)
	if m.IsPromotion() {
		gain0 += board.PieceValue[m.PromotionType()] - board.PieceValue[board.Pawn]
	}

	return seeSwap(pos, to, from, attacker, gain0)
}

func seeSwap(pos *board.Position, target, excludeFrom board.Square, firstAttacker board.Piece, initialGain int) int {
	var gain [32]int
	d := 0
	gain[d] = initialGain

	occupied := pos.AllOccupied &^ board.SquareBB(excludeFrom)
	attackerValue := pieceValue(firstAttacker)
	side := firstAttacker.Color().Other()

	for d < len(gain)-1 {
		d++
		gain[d] = attackerValue - gain[d-1]
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}

		attackerSq, attackerPiece := leastValuableAttacker(pos, target, side, occupied)
		if attackerSq == board.NoSquare {
			break
		}

		occupied &^= board.SquareBB(attackerSq)
		attackerValue = pieceValue(attackerPiece)
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker finds side's cheapest piece attacking target given
// occupied (x-ray attackers are revealed naturally as occupied shrinks).
func leastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied board.Bitboard) (board.Square, board.Piece) {
	pawns := pos.Pieces[side][board.Pawn] & occupied
	if attackers := pawns & board.PawnAttacks(target, side.Other()); attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Pawn, side)
	}

	knights := pos.Pieces[side][board.Knight] & occupied
	if attackers := knights & board.KnightAttacks(target); attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Knight, side)
	}

	bishopAtk := board.BishopAttacks(target, occupied)
	if attackers := pos.Pieces[side][board.Bishop] & occupied & bishopAtk; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Bishop, side)
	}

	rookAtk := board.RookAttacks(target, occupied)
	if attackers := pos.Pieces[side][board.Rook] & occupied & rookAtk; attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Rook, side)
	}

	if attackers := pos.Pieces[side][board.Queen] & occupied & (bishopAtk | rookAtk); attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.Queen, side)
	}

	if attackers := pos.Pieces[side][board.King] & occupied & board.KingAttacks(target); attackers != 0 {
		return attackers.LSB(), board.NewPiece(board.King, side)
	}

	return board.NoSquare, board.NoPiece
}

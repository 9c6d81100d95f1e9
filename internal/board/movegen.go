package board

// GenMode restricts pseudo-legal generation to a subset of move categories.
type GenMode uint8

const (
	AllMoves GenMode = iota
	CapturesOnly
	QuietsOnly
)

// GenerateLegalMoves generates all legal moves for the position, filtering
// the pseudo-legal set with IsLegalMove.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := p.GeneratePseudoLegalMoves()
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves concatenates pawn moves, castling, officer
// (knight/bishop/rook/queen) moves and king moves, then stable-sorts the
// result by descending embedded ordering value.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := &MoveList{}
	p.generatePawnMoves(ml, AllMoves)
	p.generateCastlingMoves(ml)
	p.generateOfficerMoves(ml, AllMoves)
	p.generateKingMoves(ml, AllMoves)
	ml.SortByValueDesc()
	return ml
}

// GenerateCaptures generates legal capturing moves (including promotions and
// en passant), used by quiescence search.
func (p *Position) GenerateCaptures() *MoveList {
	ml := &MoveList{}
	p.generatePawnMoves(ml, CapturesOnly)
	p.generateOfficerMoves(ml, CapturesOnly)
	p.generateKingMoves(ml, CapturesOnly)
	ml.SortByValueDesc()
	return p.filterLegalMoves(ml)
}

func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := &MoveList{}
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegalMove(m) {
			result.Add(m)
		}
	}
	return result
}

// orderCaptureValue implements §4.3's capture/promotion-capture ordering:
// value(victim) - value(attacker) - positionalValue(piece, to, phase).
// Promotion captures are not valued here but by promotionOrderValue.
func (p *Position) orderCaptureValue(piece Piece, victimValue int, to Square) int16 {
	pos := p.positionalValue(piece, to)
	return int16(victimValue - PieceValue[piece.Type()] - pos)
}

func (p *Position) positionalValue(piece Piece, sq Square) int {
	mg, eg := pieceSquareValue(NewPiece(piece.Type(), White), normalizeSquare(piece, sq))
	phase := p.GamePhase
	return (mg*phase + eg*(MaxGamePhase-phase)) / MaxGamePhase
}

// normalizeSquare mirrors sq for Black so pieceSquareValue (which signs by
// color) can be read as an unsigned "goodness of this square" magnitude.
func normalizeSquare(piece Piece, sq Square) Square {
	if piece.Color() == Black {
		return sq.Mirror()
	}
	return sq
}

const (
	queenPromoValue  = 9000
	knightPromoValue = 9100
	underPromoValue  = -9100 // bishop/rook promotions: deprioritized below quiets
	captureQueenPromoValue  = 9000
	captureUnderPromoValue  = 2000
	castlingValue    = 9500
)

func promotionOrderValue(promo PieceType, isCapture bool) int16 {
	if isCapture {
		if promo == Queen {
			return captureQueenPromoValue
		}
		return captureUnderPromoValue
	}
	switch promo {
	case Queen:
		return queenPromoValue
	case Knight:
		return knightPromoValue
	default:
		return underPromoValue
	}
}

func (p *Position) quietOrderValue(piece Piece, to Square) int16 {
	return int16(10000 - p.positionalValue(piece, to))
}

func (p *Position) generatePawnMoves(ml *MoveList, mode GenMode) {
	us := p.SideToMove
	them := us.Other()
	pawns := p.Pieces[us][Pawn]
	enemies := p.Occupied[them]
	occupied := p.AllOccupied
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	piece := NewPiece(Pawn, us)

	if mode != CapturesOnly {
		nonPromo := push1 & ^promotionRank
		for nonPromo != 0 {
			to := nonPromo.PopLSB()
			from := Square(int(to) - pushDir)
			ml.Add(NewMove(from, to).WithValue(p.quietOrderValue(piece, to)))
		}
		for push2 != 0 {
			to := push2.PopLSB()
			from := Square(int(to) - 2*pushDir)
			ml.Add(NewMove(from, to).WithValue(p.quietOrderValue(piece, to)))
		}
	}

	if mode != QuietsOnly {
		nonPromoL := attackL & ^promotionRank
		for nonPromoL != 0 {
			to := nonPromoL.PopLSB()
			from := Square(int(to) - pushDir + 1)
			victim := p.PieceAt(to)
			ml.Add(NewMove(from, to).WithValue(p.orderCaptureValue(piece, PieceValue[victim.Type()], to)))
		}
		nonPromoR := attackR & ^promotionRank
		for nonPromoR != 0 {
			to := nonPromoR.PopLSB()
			from := Square(int(to) - pushDir - 1)
			victim := p.PieceAt(to)
			ml.Add(NewMove(from, to).WithValue(p.orderCaptureValue(piece, PieceValue[victim.Type()], to)))
		}

		if p.EnPassant != NoSquare {
			epBB := SquareBB(p.EnPassant)
			var epAttackers Bitboard
			if us == White {
				epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
			} else {
				epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
			}
			for epAttackers != 0 {
				from := epAttackers.PopLSB()
				ml.Add(NewEnPassantMove(from, p.EnPassant).WithValue(100))
			}
		}
	}

	addPromo := func(from, to Square, isCapture bool) {
		for _, promo := range [4]PieceType{Queen, Knight, Rook, Bishop} {
			ml.Add(NewPromotionMove(from, to, promo).WithValue(promotionOrderValue(promo, isCapture)))
		}
	}

	if mode != QuietsOnly {
		promoL := attackL & promotionRank
		for promoL != 0 {
			to := promoL.PopLSB()
			addPromo(Square(int(to)-pushDir+1), to, true)
		}
		promoR := attackR & promotionRank
		for promoR != 0 {
			to := promoR.PopLSB()
			addPromo(Square(int(to)-pushDir-1), to, true)
		}
	}
	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromo(Square(int(to)-pushDir), to, false)
	}
}

var officerTypes = [4]PieceType{Knight, Bishop, Rook, Queen}

func (p *Position) generateOfficerMoves(ml *MoveList, mode GenMode) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	for _, pt := range officerTypes {
		bb := p.Pieces[us][pt]
		for bb != 0 {
			from := bb.PopLSB()
			piece := NewPiece(pt, us)
			attacks := p.attacksFor(pt, from, occupied) &^ p.Occupied[us]

			if mode != QuietsOnly {
				caps := attacks & enemies
				for caps != 0 {
					to := caps.PopLSB()
					victim := p.PieceAt(to)
					ml.Add(NewMove(from, to).WithValue(p.orderCaptureValue(piece, PieceValue[victim.Type()], to)))
				}
			}
			if mode != CapturesOnly {
				quiets := attacks &^ enemies
				for quiets != 0 {
					to := quiets.PopLSB()
					ml.Add(NewMove(from, to).WithValue(p.quietOrderValue(piece, to)))
				}
			}
		}
	}
}

func (p *Position) attacksFor(pt PieceType, from Square, occupied Bitboard) Bitboard {
	switch pt {
	case Knight:
		return KnightAttacks(from)
	case Bishop:
		return BishopAttacks(from, occupied)
	case Rook:
		return RookAttacks(from, occupied)
	case Queen:
		return QueenAttacks(from, occupied)
	}
	return 0
}

func (p *Position) generateKingMoves(ml *MoveList, mode GenMode) {
	us := p.SideToMove
	them := us.Other()
	from := p.KingSquare[us]
	piece := NewPiece(King, us)
	attacks := KingAttacks(from) &^ p.Occupied[us]
	enemies := p.Occupied[them]

	if mode != QuietsOnly {
		caps := attacks & enemies
		for caps != 0 {
			to := caps.PopLSB()
			victim := p.PieceAt(to)
			ml.Add(NewMove(from, to).WithValue(p.orderCaptureValue(piece, PieceValue[victim.Type()], to)))
		}
	}
	if mode != CapturesOnly {
		quiets := attacks &^ enemies
		for quiets != 0 {
			to := quiets.PopLSB()
			ml.Add(NewMove(from, to).WithValue(p.quietOrderValue(piece, to)))
		}
	}
}

func (p *Position) generateCastlingMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 && p.AllOccupied&(SquareBB(F1)|SquareBB(G1)) == 0 {
			if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
				ml.Add(NewCastlingMove(E1, G1).WithValue(castlingValue))
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 && p.AllOccupied&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 {
			if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
				ml.Add(NewCastlingMove(E1, C1).WithValue(castlingValue))
			}
		}
		return
	}

	if p.CastlingRights&BlackKingSideCastle != 0 && p.AllOccupied&(SquareBB(F8)|SquareBB(G8)) == 0 {
		if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
			ml.Add(NewCastlingMove(E8, G8).WithValue(castlingValue))
		}
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 && p.AllOccupied&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 {
		if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
			ml.Add(NewCastlingMove(E8, C8).WithValue(castlingValue))
		}
	}
}

// HasLegalMove returns true as soon as any legal king/pawn/knight/bishop/
// rook/queen move is found, in that order — chosen to terminate quickly on
// the common case of distinguishing checkmate from stalemate.
func HasLegalMove(p *Position) bool {
	us := p.SideToMove

	from := p.KingSquare[us]
	attacks := KingAttacks(from) &^ p.Occupied[us]
	for attacks != 0 {
		to := attacks.PopLSB()
		if p.IsLegalMove(NewMove(from, to)) {
			return true
		}
	}

	ml := &MoveList{}
	p.generatePawnMoves(ml, AllMoves)
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegalMove(ml.Get(i)) {
			return true
		}
	}

	for _, pt := range [3]PieceType{Knight, Bishop, Rook} {
		bb := p.Pieces[us][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			attacks := p.attacksFor(pt, sq, p.AllOccupied) &^ p.Occupied[us]
			for attacks != 0 {
				to := attacks.PopLSB()
				if p.IsLegalMove(NewMove(sq, to)) {
					return true
				}
			}
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		sq := queens.PopLSB()
		attacks := QueenAttacks(sq, p.AllOccupied) &^ p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			if p.IsLegalMove(NewMove(sq, to)) {
				return true
			}
		}
	}

	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !HasLegalMove(p)
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !HasLegalMove(p)
}

// IsDraw reports stalemate, the 50-move rule, or insufficient material (it
// does not check repetition, which requires search-stack context — see
// Position.CountRepetitions).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.Check50MovesRule() {
		return true
	}
	return p.IsInsufficientMaterial()
}

package board

import "fmt"

// Move encodes a chess move in a packed 32-bit record:
//
//	bits 0-5:   from square (0-63)
//	bits 6-11:  to square (0-63)
//	bits 12-13: move type (Normal, Promotion, EnPassant, Castling)
//	bits 14-15: promotion piece type, valid only when type == Promotion
//	bits 16-31: signed ordering value, used only for move sorting
//
// Equality and legality comparisons must ignore the ordering value: two
// moves with the same from/to/type/promotion are the same move regardless
// of the value assigned to them during generation.
type Move uint32

// Move types.
const (
	Normal uint32 = iota
	Promotion
	EnPassant
	Castling
)

const (
	moveFromMask   = 0x3F
	moveToShift    = 6
	moveToMask     = 0x3F << moveToShift
	moveTypeShift  = 12
	moveTypeMask   = 0x3 << moveTypeShift
	movePromoShift = 14
	movePromoMask  = 0x3 << movePromoShift
	moveValueShift = 16
)

// identityMask covers the bits that determine move identity (from, to, type,
// promotion) while excluding the ordering value.
const identityMask = moveFromMask | moveToMask | moveTypeMask | movePromoMask

// NoMove (MOVE_NONE) is the distinguished zero value representing "no move".
const NoMove Move = 0

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move(uint32(from) | uint32(to)<<moveToShift)
}

// NewPromotionMove creates a promotion move. promo must be one of
// Knight, Bishop, Rook, Queen.
func NewPromotionMove(from, to Square, promo PieceType) Move {
	promoIdx := uint32(promo - Knight)
	return Move(uint32(from) | uint32(to)<<moveToShift | Promotion<<moveTypeShift | promoIdx<<movePromoShift)
}

// NewEnPassantMove creates an en-passant capture move.
func NewEnPassantMove(from, to Square) Move {
	return Move(uint32(from) | uint32(to)<<moveToShift | EnPassant<<moveTypeShift)
}

// NewCastlingMove creates a castling move, encoded as the king's movement.
func NewCastlingMove(from, to Square) Move {
	return Move(uint32(from) | uint32(to)<<moveToShift | Castling<<moveTypeShift)
}

// From returns the origin square.
func (m Move) From() Square { return Square(m & moveFromMask) }

// To returns the destination square.
func (m Move) To() Square { return Square((m & moveToMask) >> moveToShift) }

// MoveType returns the move type.
func (m Move) MoveType() uint32 { return (uint32(m) & moveTypeMask) >> moveTypeShift }

// PromotionType returns the promotion piece type. Only meaningful when
// MoveType() == Promotion.
func (m Move) PromotionType() PieceType {
	return PieceType((uint32(m)&movePromoMask)>>movePromoShift) + Knight
}

// IsPromotion reports whether this move promotes a pawn.
func (m Move) IsPromotion() bool { return m.MoveType() == Promotion }

// IsCastling reports whether this move is a castling move.
func (m Move) IsCastling() bool { return m.MoveType() == Castling }

// IsEnPassant reports whether this move is an en-passant capture.
func (m Move) IsEnPassant() bool { return m.MoveType() == EnPassant }

// OrderValue returns the move's ordering value, used only by the move
// generator and search for sorting; it has no bearing on move identity.
func (m Move) OrderValue() int16 { return int16(uint32(m) >> moveValueShift) }

// WithValue returns a copy of m carrying the given ordering value.
func (m Move) WithValue(v int16) Move {
	return Move(uint32(m)&identityMask | uint32(uint16(v))<<moveValueShift)
}

// SameAs reports whether two moves refer to the same from/to/type/promotion,
// ignoring the embedded ordering value.
func (m Move) SameAs(other Move) bool {
	return uint32(m)&identityMask == uint32(other)&identityMask
}

// IsCapture reports whether this move captures a piece, given the position
// it is played from.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet reports whether this move is neither a capture nor a promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String returns the UCI long-algebraic form (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m.SameAs(NoMove) {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		s += string(promoChars[m.PromotionType()-Knight])
	}
	return s
}

// ParseMove parses a UCI long-algebraic move string against pos to recover
// its move type (promotion is explicit in the string; en-passant and
// castling are inferred from the piece on `from` and pos's state).
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotionMove(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastlingMove(from, to), nil
	}
	if pt == Pawn && to == pos.EnPassant {
		return NewEnPassantMove(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-capacity list of moves; avoids allocation in hot paths.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int { return ml.count }

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }

// Swap exchanges the moves at i and j.
func (ml *MoveList) Swap(i, j int) { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }

// Clear empties the list without releasing its backing array.
func (ml *MoveList) Clear() { ml.count = 0 }

// Contains reports whether m (by identity, ignoring ordering value) is present.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].SameAs(m) {
			return true
		}
	}
	return false
}

// Slice returns the moves currently in the list.
func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }

// SortByValueDesc stable-sorts the moves in the list by descending ordering
// value, matching MoveGenerator's batch-generation ordering pass.
func (ml *MoveList) SortByValueDesc() {
	// Insertion sort: move lists are short (legal chess positions have at
	// most ~218 moves, usually far fewer) and this runs once per batch, so
	// simplicity wins over asymptotics.
	for i := 1; i < ml.count; i++ {
		v := ml.moves[i]
		j := i - 1
		for j >= 0 && ml.moves[j].OrderValue() < v.OrderValue() {
			ml.moves[j+1] = ml.moves[j]
			j--
		}
		ml.moves[j+1] = v
	}
}

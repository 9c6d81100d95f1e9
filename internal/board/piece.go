package board

// Color is one side of the board: White or Black. NoColor is a sentinel for
// "no piece here" contexts, not a third side.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other flips White<->Black; colors are assigned 0/1 specifically so this
// is a single XOR rather than a branch.
func (c Color) Other() Color {
	return c ^ 1
}

var colorNames = [...]string{"White", "Black"}

func (c Color) String() string {
	if c > Black {
		return "NoColor"
	}
	return colorNames[c]
}

// PieceType is a chess piece kind, independent of color. Pawn is the
// lowest-value index and King the highest; NoPieceType is the sentinel.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var pieceTypeNames = [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King"}

func (pt PieceType) String() string {
	if pt >= NoPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

// pieceTypeChars indexes by PieceType directly; index 6 (NoPieceType) maps
// to a blank, so Char never needs a separate bounds branch for that case.
const pieceTypeChars = "pnbrqk "

// Char returns the lowercase FEN character for the piece type.
func (pt PieceType) Char() byte {
	if pt > NoPieceType {
		return ' '
	}
	return pieceTypeChars[pt]
}

// PieceValue is the material value of each PieceType in centipawns, indexed
// by PieceType including the zero-valued NoPieceType slot.
var PieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// Piece packs a PieceType and Color into one value: typeIndex + color*6.
// The six white pieces occupy 0-5, the six black pieces 6-11, NoPiece is 12.
type Piece uint8

const (
	WhitePawn Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece Piece = 12
)

// NewPiece combines a type and color; an out-of-range input yields NoPiece
// rather than a garbage-encoded value.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// pieceChars is Piece-indexed: uppercase for the first six (white), lowercase
// for the next six (black), matching standard FEN letter case.
const pieceChars = "PNBRQKpnbrqk"

func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return string(pieceChars[p])
}

// PieceFromChar parses a single FEN piece letter, returning NoPiece for
// anything that isn't one of the twelve recognized letters.
func PieceFromChar(c byte) Piece {
	for i := 0; i < len(pieceChars); i++ {
		if pieceChars[i] == c {
			return Piece(i)
		}
	}
	return NoPiece
}

// Value returns the piece's material value in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}

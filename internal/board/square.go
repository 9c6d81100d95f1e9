// Package board implements chess board representation using bitboards.
package board

import "fmt"

// Square identifies one of the 64 board squares using little-endian
// rank-file mapping: A1=0, H1=7, A8=56, H8=63. Bit i of a Bitboard
// corresponds to Square(i).
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// NewSquare builds a square from 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare reads algebraic notation such as "e4" into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("board: %q is not a square", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("board: %q is not a square", s)
	}

	return NewSquare(file, rank), nil
}

// File is the 0-indexed column, a=0 through h=7.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank is the 0-indexed row, rank 1=0 through rank 8=7.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// IsValid reports whether sq is one of the 64 real board squares, as
// opposed to the NoSquare sentinel or an overflowed value.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// Mirror flips a square across the board's horizontal midline, turning a
// White-relative square into the matching Black-relative one.
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// RelativeRank reports sq's rank as seen from color's side: rank 1 is
// always 0 for the side it belongs to, regardless of board orientation.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

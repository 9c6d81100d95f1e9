// Package engine implements the search, transposition table, and evaluation
// components that sit on top of internal/board.
package engine

import "github.com/elanko/gofish/internal/board"

// Value-scale constants, centipawns unless noted.
const (
	ValueInf                = 15000
	ValueCheckmate           = 10000
	ValueDraw                = 0
	MaxPly                   = 128
	ValueCheckmateThreshold  = ValueCheckmate - MaxPly
	ValueNone                = -ValueInf - 1
)

// MatedIn returns the score for being checkmated at the given ply (closer
// to the root is worse for the side being mated).
func MatedIn(ply int) int {
	return -ValueCheckmate + ply
}

// MateIn returns the score for delivering checkmate at the given ply.
func MateIn(ply int) int {
	return ValueCheckmate - ply
}

// pieceValue is a shorthand over board.PieceValue for the common case of
// scoring a concrete piece.
func pieceValue(p board.Piece) int {
	if p == board.NoPiece {
		return 0
	}
	return board.PieceValue[p.Type()]
}

package board

// Rotated-bitboard sliding attack lookup.
//
// Four rotations of the occupied squares are maintained so that attacks along
// ranks, files and the two diagonal directions can all be read as a
// contiguous byte: ranks are already contiguous in the normal (LERF) board,
// files become contiguous once the board is rotated 90 degrees, and the two
// diagonal directions become contiguous once the board is rotated +/-45
// degrees. movesRank/movesFile/movesDiagUp/movesDiagDn hold the resulting
// attack set for every square and every possible 8-bit occupancy pattern
// along that square's line, precomputed once at package init.

// rotateMapR90[i] is the original square whose bit lands at position i after
// rotating the board 90 degrees clockwise.
var rotateMapR90 = [64]int{
	7, 15, 23, 31, 39, 47, 55, 63,
	6, 14, 22, 30, 38, 46, 54, 62,
	5, 13, 21, 29, 37, 45, 53, 61,
	4, 12, 20, 28, 36, 44, 52, 60,
	3, 11, 19, 27, 35, 43, 51, 59,
	2, 10, 18, 26, 34, 42, 50, 58,
	1, 9, 17, 25, 33, 41, 49, 57,
	0, 8, 16, 24, 32, 40, 48, 56,
}

// rotateMapL90[i] is the original square whose bit lands at position i after
// rotating the board 90 degrees counter-clockwise.
var rotateMapL90 = [64]int{
	56, 48, 40, 32, 24, 16, 8, 0,
	57, 49, 41, 33, 25, 17, 9, 1,
	58, 50, 42, 34, 26, 18, 10, 2,
	59, 51, 43, 35, 27, 19, 11, 3,
	60, 52, 44, 36, 28, 20, 12, 4,
	61, 53, 45, 37, 29, 21, 13, 5,
	62, 54, 46, 38, 30, 22, 14, 6,
	63, 55, 47, 39, 31, 23, 15, 7,
}

// rotateMapR45[i] is the original square whose bit lands at position i after
// rotating the board 45 degrees clockwise (a1-h8 diagonals become rows).
var rotateMapR45 = [64]int{
	7,
	6, 15,
	5, 14, 23,
	4, 13, 22, 31,
	3, 12, 21, 30, 39,
	2, 11, 20, 29, 38, 47,
	1, 10, 19, 28, 37, 46, 55,
	0, 9, 18, 27, 36, 45, 54, 63,
	8, 17, 26, 35, 44, 53, 62,
	16, 25, 34, 43, 52, 61,
	24, 33, 42, 51, 60,
	32, 41, 50, 59,
	40, 49, 58,
	48, 57,
	56,
}

// rotateMapL45[i] is the original square whose bit lands at position i after
// rotating the board 45 degrees counter-clockwise (a8-h1 diagonals become rows).
var rotateMapL45 = [64]int{
	0,
	8, 1,
	16, 9, 2,
	24, 17, 10, 3,
	32, 25, 18, 11, 4,
	40, 33, 26, 19, 12, 5,
	48, 41, 34, 27, 20, 13, 6,
	56, 49, 42, 35, 28, 21, 14, 7,
	57, 50, 43, 36, 29, 22, 15,
	58, 51, 44, 37, 30, 23,
	59, 52, 45, 38, 31,
	60, 53, 46, 39,
	61, 54, 47,
	62, 55,
	63,
}

// lengthDiagUp[sq] is the number of squares on sq's a1-h8-direction diagonal.
var lengthDiagUp = [64]int{
	8, 7, 6, 5, 4, 3, 2, 1,
	7, 8, 7, 6, 5, 4, 3, 2,
	6, 7, 8, 7, 6, 5, 4, 3,
	5, 6, 7, 8, 7, 6, 5, 4,
	4, 5, 6, 7, 8, 7, 6, 5,
	3, 4, 5, 6, 7, 8, 7, 6,
	2, 3, 4, 5, 6, 7, 8, 7,
	1, 2, 3, 4, 5, 6, 7, 8,
}

// lengthDiagDown[sq] is the number of squares on sq's a8-h1-direction diagonal.
var lengthDiagDown = [64]int{
	1, 2, 3, 4, 5, 6, 7, 8,
	2, 3, 4, 5, 6, 7, 8, 7,
	3, 4, 5, 6, 7, 8, 7, 6,
	4, 5, 6, 7, 8, 7, 6, 5,
	5, 6, 7, 8, 7, 6, 5, 4,
	6, 7, 8, 7, 6, 5, 4, 3,
	7, 8, 7, 6, 5, 4, 3, 2,
	8, 7, 6, 5, 4, 3, 2, 1,
}

// shiftsDiagUp[sq] is the bit offset, within the R45-rotated board, of sq's diagonal.
var shiftsDiagUp = [64]int{
	28, 21, 15, 10, 6, 3, 1, 0,
	36, 28, 21, 15, 10, 6, 3, 1,
	43, 36, 28, 21, 15, 10, 6, 3,
	49, 43, 36, 28, 21, 15, 10, 6,
	54, 49, 43, 36, 28, 21, 15, 10,
	58, 54, 49, 43, 36, 28, 21, 15,
	61, 58, 54, 49, 43, 36, 28, 21,
	63, 61, 58, 54, 49, 43, 36, 28,
}

// shiftsDiagDown[sq] is the bit offset, within the L45-rotated board, of sq's diagonal.
var shiftsDiagDown = [64]int{
	0, 1, 3, 6, 10, 15, 21, 28,
	1, 3, 6, 10, 15, 21, 28, 36,
	3, 6, 10, 15, 21, 28, 36, 43,
	6, 10, 15, 21, 28, 36, 43, 49,
	10, 15, 21, 28, 36, 43, 49, 54,
	15, 21, 28, 36, 43, 49, 54, 58,
	21, 28, 36, 43, 49, 54, 58, 61,
	28, 36, 43, 49, 54, 58, 61, 63,
}

var (
	indexMapR90 [64]Square
	indexMapL90 [64]Square
	indexMapR45 [64]Square
	indexMapL45 [64]Square

	movesRank    [64][256]Bitboard
	movesFile    [64][256]Bitboard
	movesDiagUp  [64][256]Bitboard
	movesDiagDn  [64][256]Bitboard
)

func init() {
	initRotationIndexes()
	initRankFileMoves()
	initDiagMoves()
}

func initRotationIndexes() {
	for sq := 0; sq < 64; sq++ {
		indexMapR90[rotateMapR90[sq]] = Square(sq)
		indexMapL90[rotateMapL90[sq]] = Square(sq)
		indexMapR45[rotateMapR45[sq]] = Square(sq)
		indexMapL45[rotateMapL45[sq]] = Square(sq)
	}
}

func rotate(b Bitboard, rotMap *[64]int) Bitboard {
	var rotated Bitboard
	for sq := 0; sq < 64; sq++ {
		if b&SquareBB(Square(rotMap[sq])) != 0 {
			rotated |= SquareBB(Square(sq))
		}
	}
	return rotated
}

// RotateR90 rotates occupied squares 90 degrees clockwise (files -> ranks).
func RotateR90(b Bitboard) Bitboard { return rotate(b, &rotateMapR90) }

// RotateL90 rotates occupied squares 90 degrees counter-clockwise (files -> ranks).
func RotateL90(b Bitboard) Bitboard { return rotate(b, &rotateMapL90) }

// RotateR45 rotates occupied squares 45 degrees clockwise (a1-h8 diagonals -> ranks).
func RotateR45(b Bitboard) Bitboard { return rotate(b, &rotateMapR45) }

// RotateL45 rotates occupied squares 45 degrees counter-clockwise (a8-h1 diagonals -> ranks).
func RotateL45(b Bitboard) Bitboard { return rotate(b, &rotateMapL45) }

// initRankFileMoves precomputes movesRank and movesFile, ported from the
// classic "Beowulf" table-based sliding attack generator.
func initRankFileMoves() {
	for file := 0; file < 8; file++ {
		for j := 0; j < 256; j++ {
			var mask uint64
			for x := file - 1; x >= 0; x-- {
				mask |= 1 << uint(x)
				if j&(1<<uint(x)) != 0 {
					break
				}
			}
			for x := file + 1; x < 8; x++ {
				mask |= 1 << uint(x)
				if j&(1<<uint(x)) != 0 {
					break
				}
			}
			for rank := 0; rank < 8; rank++ {
				movesRank[rank*8+file][j] = Bitboard(mask) << uint(rank*8)
			}
		}
	}

	for rank := 0; rank < 8; rank++ {
		for j := 0; j < 256; j++ {
			var mask uint64
			for x := 6 - rank; x >= 0; x-- {
				mask |= 1 << uint(8*(7-x))
				if j&(1<<uint(x)) != 0 {
					break
				}
			}
			for x := 8 - rank; x < 8; x++ {
				mask |= 1 << uint(8*(7-x))
				if j&(1<<uint(x)) != 0 {
					break
				}
			}
			for file := 0; file < 8; file++ {
				movesFile[rank*8+file][j] = Bitboard(mask) << uint(file)
			}
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// initDiagMoves precomputes movesDiagUp and movesDiagDn for every square and
// every occupancy pattern that can appear along that square's diagonal.
func initDiagMoves() {
	for square := 0; square < 64; square++ {
		sq := Square(square)
		file, rank := sq.File(), sq.Rank()

		diagStart := square - 9*minInt(file, rank)
		dsFile := Square(diagStart).File()
		dl := lengthDiagUp[square]

		for pat := 0; pat < (1 << uint(dl)); pat++ {
			var mask, mask2 uint64
			for b1 := (file - dsFile) - 1; b1 >= 0; b1-- {
				mask |= 1 << uint(b1)
				if pat&(1<<uint(b1)) != 0 {
					break
				}
			}
			for b2 := (file - dsFile) + 1; b2 < dl; b2++ {
				mask |= 1 << uint(b2)
				if pat&(1<<uint(b2)) != 0 {
					break
				}
			}
			for x := 0; x < dl; x++ {
				mask2 |= ((mask >> uint(x)) & 1) << uint(diagStart+9*x)
			}
			movesDiagUp[square][pat] = Bitboard(mask2)
		}
	}

	for square := 0; square < 64; square++ {
		sq := Square(square)
		file, rank := sq.File(), sq.Rank()

		diagStart := 7*minInt(file, 7-rank) + square
		dsFile := Square(diagStart).File()
		dl := lengthDiagDown[square]

		for pat := 0; pat < (1 << uint(dl)); pat++ {
			var mask, mask2 uint64
			for x := (file - dsFile) - 1; x >= 0; x-- {
				mask |= 1 << uint(x)
				if pat&(1<<uint(x)) != 0 {
					break
				}
			}
			for x := (file - dsFile) + 1; x < dl; x++ {
				mask |= 1 << uint(x)
				if pat&(1<<uint(x)) != 0 {
					break
				}
			}
			for x := 0; x < dl; x++ {
				mask2 |= ((mask >> uint(x)) & 1) << uint(diagStart-7*x)
			}
			movesDiagDn[square][pat] = Bitboard(mask2)
		}
	}
}

// movesRankFromOccupied returns rank-slider attacks read directly from the
// normal (non-rotated) occupied bitboard: ranks are already contiguous bytes.
func movesRankFromOccupied(sq Square, occupied Bitboard) Bitboard {
	idx := (occupied >> uint(8*sq.Rank())) & 0xFF
	return movesRank[sq][idx]
}

// movesFileFromL90 returns file-slider attacks from the L90-rotated occupancy.
func movesFileFromL90(sq Square, occupiedL90 Bitboard) Bitboard {
	idx := (occupiedL90 >> uint(8*sq.File())) & 0xFF
	return movesFile[sq][idx]
}

// movesDiagUpFromR45 returns up-diagonal slider attacks from the R45-rotated occupancy.
func movesDiagUpFromR45(sq Square, occupiedR45 Bitboard) Bitboard {
	shifted := occupiedR45 >> uint(shiftsDiagUp[sq])
	mask := Bitboard((1 << uint(lengthDiagUp[sq])) - 1)
	return movesDiagUp[sq][shifted&mask]
}

// movesDiagDownFromL45 returns down-diagonal slider attacks from the L45-rotated occupancy.
func movesDiagDownFromL45(sq Square, occupiedL45 Bitboard) Bitboard {
	shifted := occupiedL45 >> uint(shiftsDiagDown[sq])
	mask := Bitboard((1 << uint(lengthDiagDown[sq])) - 1)
	return movesDiagDn[sq][shifted&mask]
}

// rookAttacksFromOccupied computes rook attacks from a plain occupied
// bitboard, rotating on the fly. RookAttacks, and so every rook and queen
// lookup, goes through here; Position's rotated fields are not consulted.
func rookAttacksFromOccupied(sq Square, occupied Bitboard) Bitboard {
	return movesRankFromOccupied(sq, occupied) | movesFileFromL90(sq, RotateL90(occupied))
}

// bishopAttacksFromOccupied computes bishop attacks from a plain occupied
// bitboard, rotating on the fly.
func bishopAttacksFromOccupied(sq Square, occupied Bitboard) Bitboard {
	return movesDiagUpFromR45(sq, RotateR45(occupied)) | movesDiagDownFromL45(sq, RotateL45(occupied))
}

package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is Forsyth-Edwards notation for the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// fenFields indexes the space-separated parts of a FEN record.
const (
	fenPlacement = iota
	fenSideToMove
	fenCastling
	fenEnPassant
	fenHalfMove
	fenFullMove
)

// fenMinFields is the number of leading fields ParseFEN requires; the
// half-move clock and full-move number may be left off.
const fenMinFields = fenHalfMove

var castlingLetters = map[rune]CastlingRights{
	'K': WhiteKingSideCastle,
	'Q': WhiteQueenSideCastle,
	'k': BlackKingSideCastle,
	'q': BlackQueenSideCastle,
}

// ParseFEN builds a Position from a FEN record. The half-move clock and
// full-move number fields are optional and default to 0 and 1.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < fenMinFields {
		return nil, fmt.Errorf("board: FEN needs at least %d fields, got %d", fenMinFields, len(fields))
	}

	pos := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare

	if err := fillPiecePlacement(pos, fields[fenPlacement]); err != nil {
		return nil, err
	}

	switch fields[fenSideToMove] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("board: bad side-to-move field %q", fields[fenSideToMove])
	}

	rights, err := parseCastlingField(fields[fenCastling])
	if err != nil {
		return nil, err
	}
	pos.CastlingRights = rights

	if ep := fields[fenEnPassant]; ep != "-" {
		sq, err := ParseSquare(ep)
		if err != nil {
			return nil, fmt.Errorf("board: bad en passant square %q: %w", ep, err)
		}
		pos.EnPassant = sq
	}

	if len(fields) > fenHalfMove {
		n, err := strconv.Atoi(fields[fenHalfMove])
		if err != nil {
			return nil, fmt.Errorf("board: bad half-move clock %q: %w", fields[fenHalfMove], err)
		}
		pos.HalfMoveClock = n
	}

	if len(fields) > fenFullMove {
		n, err := strconv.Atoi(fields[fenFullMove])
		if err != nil {
			return nil, fmt.Errorf("board: bad full-move number %q: %w", fields[fenFullMove], err)
		}
		pos.FullMoveNumber = n
	}

	pos.updateOccupied()
	pos.findKings()
	pos.Hash = pos.ComputeHash()
	pos.PawnKey = pos.ComputePawnKey()

	return pos, nil
}

// fillPiecePlacement reads the "/"-separated ranks of a FEN record, highest
// rank first, and drops the pieces directly onto pos.
func fillPiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("board: piece placement needs 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("board: rank %d overflows 8 files", rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("board: unrecognized piece letter %q", c)
			}
			pos.setPiece(piece, NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("board: rank %d covers %d files, want 8", rank+1, file)
		}
	}

	return nil
}

// parseCastlingField turns a castling-availability field into its bitmask,
// rejecting anything but the four standard letters or a lone "-".
func parseCastlingField(field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}

	var rights CastlingRights
	for _, c := range field {
		flag, ok := castlingLetters[c]
		if !ok {
			return 0, fmt.Errorf("board: unrecognized castling letter %q", c)
		}
		rights |= flag
	}
	return rights, nil
}

// ToFEN renders the position back to Forsyth-Edwards notation.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	sb.Grow(64)

	for rank := 7; rank >= 0; rank-- {
		writeFENRank(&sb, p, rank)
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

func writeFENRank(sb *strings.Builder, p *Position, rank int) {
	empty := 0
	for file := 0; file < 8; file++ {
		piece := p.PieceAt(NewSquare(file, rank))
		if piece == NoPiece {
			empty++
			continue
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
			empty = 0
		}
		sb.WriteString(piece.String())
	}
	if empty > 0 {
		sb.WriteString(strconv.Itoa(empty))
	}
}

// ComputeHash rebuilds the position's Zobrist hash from scratch, rather than
// relying on the incremental updates DoMove/UndoMove normally maintain.
func (p *Position) ComputeHash() uint64 {
	hash := p.hashPieces()

	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}
	hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	return hash
}

func (p *Position) hashPieces() uint64 {
	var hash uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= zobristPiece[c][pt][sq]
			}
		}
	}
	return hash
}

// ComputePawnKey rebuilds the pawn-only hash used to key the pawn structure
// cache, from scratch.
func (p *Position) ComputePawnKey() uint64 {
	var key uint64
	for c := White; c <= Black; c++ {
		bb := p.Pieces[c][Pawn]
		for bb != 0 {
			sq := bb.PopLSB()
			key ^= zobristPiece[c][Pawn][sq]
		}
	}
	return key
}

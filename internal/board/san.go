package board

import "strings"

const pieceLetters = "PNBRQK"

var sanPromoLetters = map[byte]PieceType{
	'N': Knight,
	'B': Bishop,
	'R': Rook,
	'Q': Queen,
}

var sanPieceLetters = map[byte]PieceType{
	'N': Knight,
	'B': Bishop,
	'R': Rook,
	'Q': Queen,
	'K': King,
}

// ToSAN renders m in Standard Algebraic Notation relative to pos, which
// must be the position the move is played from.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	if m.IsCastling() {
		if m.To() > m.From() {
			return "O-O"
		}
		return "O-O-O"
	}

	from, to := m.From(), m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}
	pt := piece.Type()

	var sb strings.Builder
	if pt != Pawn {
		sb.WriteByte(pieceLetters[pt])
		sb.WriteString(disambiguationFor(pos, m, pt))
	}

	if m.IsCapture(pos) {
		if pt == Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte(pieceLetters[m.PromotionType()])
	}

	sb.WriteString(checkSuffix(pos, m))
	return sb.String()
}

// checkSuffix plays m on a scratch copy of pos to see whether it delivers
// check or checkmate, returning the "+"/"#" SAN suffix (or "").
func checkSuffix(pos *Position, m Move) string {
	after := pos.Copy()
	after.DoMove(m)
	switch {
	case after.IsCheckmate():
		return "#"
	case after.InCheck():
		return "+"
	default:
		return ""
	}
}

// disambiguationFor returns the minimal file/rank/square prefix needed to
// distinguish m from other legal moves of the same piece type landing on
// the same square.
func disambiguationFor(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	sameType := pos.Pieces[pos.SideToMove][pt]

	var rivals []Square
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		other := legal.Get(i)
		if other.To() != to || other.From() == from {
			continue
		}
		if sameType.IsSet(other.From()) {
			rivals = append(rivals, other.From())
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	fileClash, rankClash := false, false
	for _, sq := range rivals {
		fileClash = fileClash || sq.File() == from.File()
		rankClash = rankClash || sq.Rank() == from.Rank()
	}

	switch {
	case !fileClash:
		return string(rune('a' + from.File()))
	case !rankClash:
		return string(rune('1' + from.Rank()))
	default:
		return from.String()
	}
}

// ParseSAN parses a SAN token such as "Nf3" or "exd5=Q+" in the context of
// pos, returning the matching legal move.
func ParseSAN(s string, pos *Position) (Move, error) {
	s = strings.TrimSpace(s)

	if castling, ok := castlingFromSAN(s, pos.SideToMove); ok {
		return castling, nil
	}

	s = strings.TrimSuffix(strings.TrimSuffix(s, "+"), "#")

	promo := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		promo = sanPromoLetters[s[idx+1]]
		s = s[:idx]
	}

	isCapture := strings.ContainsRune(s, 'x')
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		pt = sanPieceLetters[s[0]]
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, nil
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, err
	}
	s = s[:len(s)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			disambigFile = int(c - 'a')
		case c >= '1' && c <= '8':
			disambigRank = int(c - '1')
		}
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.To() != dest {
			continue
		}
		from := m.From()
		if pos.PieceAt(from).Type() != pt {
			continue
		}
		if disambigFile >= 0 && from.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && from.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture(pos) {
			continue
		}
		if promo != NoPieceType && (!m.IsPromotion() || m.PromotionType() != promo) {
			continue
		}
		return m, nil
	}

	return NoMove, nil
}

func castlingFromSAN(s string, stm Color) (Move, bool) {
	switch s {
	case "O-O", "0-0":
		if stm == White {
			return NewCastlingMove(E1, G1), true
		}
		return NewCastlingMove(E8, G8), true
	case "O-O-O", "0-0-0":
		if stm == White {
			return NewCastlingMove(E1, C1), true
		}
		return NewCastlingMove(E8, C8), true
	default:
		return NoMove, false
	}
}

// MovesToSAN renders a sequence of moves played one after another from pos,
// each in the notation of the position it was played from.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	scratch := pos.Copy()
	for i, m := range moves {
		result[i] = m.ToSAN(scratch)
		scratch.DoMove(m)
	}
	return result
}

package board

import "fmt"

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                             // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// MaxHistory bounds the incremental undo stack. 256 plies comfortably covers
// any game that reaches this search (MAX_PLY is 128).
const MaxHistory = 256

// Flag is a ternary memoization state: a cached boolean predicate is either
// unknown (must be recomputed), or known true/false.
type Flag uint8

const (
	FlagUnknown Flag = iota
	FlagFalse
	FlagTrue
)

// historyEntry captures everything doMove mutates that undoMove cannot
// recover by simply reversing piece movement: the parts of position state
// that are not a pure function of the move itself.
type historyEntry struct {
	move           Move
	capturedPiece  Piece
	castlingRights CastlingRights
	enPassant      Square
	halfMoveClock  int
	hash           uint64
	pawnKey        uint64
	material       [2]int
	psqMid         [2]int
	psqEnd         [2]int
	gamePhase      int
	checkFlag      Flag
	checkers       Bitboard
}

// Position represents a complete chess position, including everything
// needed to make and unmake moves incrementally.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards (cached for efficiency)
	Occupied    [2]Bitboard // All pieces of each color
	AllOccupied Bitboard    // All pieces on the board

	// Rotated occupancy of the whole board, kept in step with AllOccupied on
	// every piece placement, removal and move. The sliding-attack lookups in
	// rotated.go do not read these fields: RookAttacks and BishopAttacks
	// rotate the plain occupancy they are given on every call.
	OccupiedR90 Bitboard
	OccupiedL90 Bitboard
	OccupiedR45 Bitboard
	OccupiedL45 Bitboard

	// Game state
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int    // Moves since last pawn move or capture (for 50-move rule)
	FullMoveNumber int    // Full move counter, starts at 1

	// Zobrist hash for transposition table
	Hash uint64

	// Pawn hash key for pawn structure caching
	PawnKey uint64

	// King positions (cached for check detection)
	KingSquare [2]Square

	// Checkers bitboard (pieces giving check to the side to move)
	Checkers Bitboard

	// Incrementally maintained material and piece-square evaluation terms,
	// consumed by the Evaluator so it need not rescan the board from scratch.
	Material  [2]int // raw material, by color
	PSQMid    [2]int // midgame piece-square total, by color
	PSQEnd    [2]int // endgame piece-square total, by color
	GamePhase int    // 24 (full material) down to 0 (bare kings)

	checkFlag Flag // memoized hasCheck() result; reset on every state change

	history      [MaxHistory]historyEntry
	historyCount int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy creates a deep copy of the position, including its history stack.
// Search uses a single working Position with doMove/undoMove instead, but a
// Copy is useful when a collaborator needs an independent snapshot (e.g. the
// UCI thread handing a root position to the search thread).
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)

	if p.AllOccupied&bb == 0 {
		return NoPiece
	}

	var c Color
	if p.Occupied[White]&bb != 0 {
		c = White
	} else {
		c = Black
	}

	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}

	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// setPiece places a piece on a square, maintaining occupancy, rotated
// occupancy, king cache, and material/PSQ/phase terms. Does not touch hash.
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	c := piece.Color()
	pt := piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.addRotated(sq)

	if pt == King {
		p.KingSquare[c] = sq
	}

	p.Material[c] += PieceValue[pt]
	mg, eg := pieceSquareValue(piece, sq)
	p.PSQMid[c] += mg
	p.PSQEnd[c] += eg
	p.GamePhase += gamePhaseWeight[pt]
	if p.GamePhase > MaxGamePhase {
		p.GamePhase = MaxGamePhase
	}
}

// removePiece removes whatever piece sits on sq and returns it (NoPiece if
// the square was already empty). Does not touch hash.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}

	c := piece.Color()
	pt := piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.removeRotated(sq)

	p.Material[c] -= PieceValue[pt]
	mg, eg := pieceSquareValue(piece, sq)
	p.PSQMid[c] -= mg
	p.PSQEnd[c] -= eg
	p.GamePhase -= gamePhaseWeight[pt]
	if p.GamePhase < 0 {
		p.GamePhase = 0
	}

	return piece
}

// movePiece relocates a piece from one square to another without touching
// capture/material bookkeeping (the caller is responsible for any capture).
func (p *Position) movePiece(from, to Square) {
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return
	}

	c := piece.Color()
	pt := piece.Type()
	fromBB := SquareBB(from)
	toBB := SquareBB(to)
	moveBB := fromBB | toBB

	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB
	p.removeRotated(from)
	p.addRotated(to)

	if pt == King {
		p.KingSquare[c] = to
	}

	mgFrom, egFrom := pieceSquareValue(piece, from)
	mgTo, egTo := pieceSquareValue(piece, to)
	p.PSQMid[c] += mgTo - mgFrom
	p.PSQEnd[c] += egTo - egFrom
}

func (p *Position) addRotated(sq Square) {
	p.OccupiedR90 |= SquareBB(indexMapR90[sq])
	p.OccupiedL90 |= SquareBB(indexMapL90[sq])
	p.OccupiedR45 |= SquareBB(indexMapR45[sq])
	p.OccupiedL45 |= SquareBB(indexMapL45[sq])
}

func (p *Position) removeRotated(sq Square) {
	p.OccupiedR90 &^= SquareBB(indexMapR90[sq])
	p.OccupiedL90 &^= SquareBB(indexMapL90[sq])
	p.OccupiedR45 &^= SquareBB(indexMapR45[sq])
	p.OccupiedL45 &^= SquareBB(indexMapL45[sq])
}

// updateOccupied recalculates occupancy bitboards (including rotations) from
// the piece bitboards. Used only by the FEN loader, which places pieces in
// bulk before any rotated state exists.
func (p *Position) updateOccupied() {
	p.Occupied[White] = Empty
	p.Occupied[Black] = Empty
	p.OccupiedR90 = Empty
	p.OccupiedL90 = Empty
	p.OccupiedR45 = Empty
	p.OccupiedL45 = Empty

	for pt := Pawn; pt <= King; pt++ {
		p.Occupied[White] |= p.Pieces[White][pt]
		p.Occupied[Black] |= p.Pieces[Black][pt]
	}

	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]

	bb := p.AllOccupied
	for bb != 0 {
		sq := bb.PopLSB()
		p.addRotated(sq)
	}
}

// findKings locates and caches the king positions.
func (p *Position) findKings() {
	p.KingSquare[White] = p.Pieces[White][King].LSB()
	p.KingSquare[Black] = p.Pieces[Black][King].LSB()
}

// RecomputeEvalTerms recomputes Material/PSQMid/PSQEnd/GamePhase from scratch.
// DoMove/UndoMove maintain these incrementally; this exists to let tests
// assert the incremental bookkeeping never drifts from a fresh scan.
func (p *Position) RecomputeEvalTerms() {
	p.Material = [2]int{}
	p.PSQMid = [2]int{}
	p.PSQEnd = [2]int{}
	p.GamePhase = 0

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				piece := NewPiece(pt, c)
				p.Material[c] += PieceValue[pt]
				mg, eg := pieceSquareValue(piece, sq)
				p.PSQMid[c] += mg
				p.PSQEnd[c] += eg
				p.GamePhase += gamePhaseWeight[pt]
			}
		}
	}
	if p.GamePhase > MaxGamePhase {
		p.GamePhase = MaxGamePhase
	}
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights)
	s += fmt.Sprintf("En passant: %s\n", p.EnPassant)
	s += fmt.Sprintf("Half-move clock: %d\n", p.HalfMoveClock)
	s += fmt.Sprintf("Full move: %d\n", p.FullMoveNumber)
	s += fmt.Sprintf("Hash: %016x\n", p.Hash)
	return s
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	*p = Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	p.KingSquare[White] = NoSquare
	p.KingSquare[Black] = NoSquare
}

// Validate checks basic structural invariants of the position.
func (p *Position) Validate() error {
	if p.Pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}
	return nil
}

// InCheck returns true if the side to move's king is attacked, memoized
// until the next state-changing operation invalidates the cache.
func (p *Position) InCheck() bool {
	switch p.checkFlag {
	case FlagTrue:
		return true
	case FlagFalse:
		return false
	}
	inCheck := p.Checkers != 0
	if inCheck {
		p.checkFlag = FlagTrue
	} else {
		p.checkFlag = FlagFalse
	}
	return inCheck
}

// Material balance is available via the incrementally-maintained p.Material
// array; MaterialBalance folds it into a single side-relative-to-white sum.
func (p *Position) MaterialBalance() int {
	return p.Material[White] - p.Material[Black]
}

// ComputePinned computes pieces pinned to the king for the side to move.
// Uses Stockfish-style x-ray attack detection.
func (p *Position) ComputePinned() Bitboard {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	pinned := Bitboard(0)

	snipers := RookAttacks(ksq, 0) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := Between(sq, ksq) & p.AllOccupied
		if blockers.PopCount() == 1 && blockers&p.Occupied[us] != 0 {
			pinned |= blockers
		}
	}

	snipers = BishopAttacks(ksq, 0) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := Between(sq, ksq) & p.AllOccupied
		if blockers.PopCount() == 1 && blockers&p.Occupied[us] != 0 {
			pinned |= blockers
		}
	}

	return pinned
}

// HasNonPawnMaterial returns true if the side to move has non-pawn material.
// Used for null move pruning (avoid in pure pawn endgames due to zugzwang).
func (p *Position) HasNonPawnMaterial() bool {
	us := p.SideToMove
	return p.Pieces[us][Knight]|p.Pieces[us][Bishop]|p.Pieces[us][Rook]|p.Pieces[us][Queen] != 0
}

// pushHistory saves the position state as it was immediately before the move
// being applied, so UndoMove can restore it verbatim rather than recompute it.
func (p *Position) pushHistory(entry historyEntry) {
	p.history[p.historyCount] = entry
	p.historyCount++
}

// DoMove applies m to the position, saving enough state on the history stack
// for an exact UndoMove. The mover is responsible for ensuring m is at least
// pseudo-legal; DoMove does not itself validate legality.
func (p *Position) DoMove(m Move) {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)
	pt := piece.Type()

	captured := NoPiece
	pre := historyEntry{
		move:           m,
		castlingRights: p.CastlingRights,
		enPassant:      p.EnPassant,
		halfMoveClock:  p.HalfMoveClock,
		hash:           p.Hash,
		pawnKey:        p.PawnKey,
		material:       p.Material,
		psqMid:         p.PSQMid,
		psqEnd:         p.PSQEnd,
		gamePhase:      p.GamePhase,
		checkFlag:      p.checkFlag,
		checkers:       p.Checkers,
	}

	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	switch {
	case m.IsEnPassant():
		var capSq Square
		if us == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		captured = p.removePiece(capSq)
		p.Hash ^= zobristPiece[them][Pawn][capSq]
		p.PawnKey ^= zobristPiece[them][Pawn][capSq]
	default:
		if c := p.PieceAt(to); c != NoPiece {
			captured = c
			p.removePiece(to)
			p.Hash ^= zobristPiece[them][captured.Type()][to]
			if captured.Type() == Pawn {
				p.PawnKey ^= zobristPiece[them][Pawn][to]
			}
		}
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]
	if pt == Pawn {
		p.PawnKey ^= zobristPiece[us][Pawn][from]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	if m.IsPromotion() {
		promoPt := m.PromotionType()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Material[us] += PieceValue[promoPt] - PieceValue[Pawn]
		mgPawn, egPawn := pieceSquareValue(NewPiece(Pawn, us), to)
		mgPromo, egPromo := pieceSquareValue(NewPiece(promoPt, us), to)
		p.PSQMid[us] += mgPromo - mgPawn
		p.PSQEnd[us] += egPromo - egPawn
		p.GamePhase += gamePhaseWeight[promoPt] - gamePhaseWeight[Pawn]
		if p.GamePhase > MaxGamePhase {
			p.GamePhase = MaxGamePhase
		}
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if pt == Pawn || captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	pre.capturedPiece = captured
	p.pushHistory(pre)

	p.SideToMove = them
	p.Hash ^= zobristSideToMove
	p.checkFlag = FlagUnknown
	p.UpdateCheckers()
}

// UndoMove reverses the most recent DoMove, restoring state bit-identically
// from the saved history entry rather than recomputing it.
func (p *Position) UndoMove(m Move) {
	p.historyCount--
	h := p.history[p.historyCount]

	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.SideToMove = us
	p.CastlingRights = h.castlingRights
	p.EnPassant = h.enPassant
	p.HalfMoveClock = h.halfMoveClock
	p.Hash = h.hash
	p.PawnKey = h.pawnKey
	p.Material = h.material
	p.PSQMid = h.psqMid
	p.PSQEnd = h.psqEnd
	p.GamePhase = h.gamePhase
	p.checkFlag = h.checkFlag
	p.Checkers = h.checkers

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		promoPt := m.PromotionType()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
		p.Occupied[us] |= SquareBB(to)
	}

	p.movePieceRaw(to, from)

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePieceRaw(rookTo, rookFrom)
	}

	if h.capturedPiece != NoPiece {
		var capSq Square
		if m.IsEnPassant() {
			if us == White {
				capSq = to - 8
			} else {
				capSq = to + 8
			}
		} else {
			capSq = to
		}
		p.placeRaw(h.capturedPiece, capSq)
	}
}

// movePieceRaw relocates a piece for UndoMove without touching hash or
// incremental evaluation terms (those are restored wholesale from history).
func (p *Position) movePieceRaw(from, to Square) {
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return
	}
	c := piece.Color()
	pt := piece.Type()
	moveBB := SquareBB(from) | SquareBB(to)

	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB
	p.removeRotated(from)
	p.addRotated(to)

	if pt == King {
		p.KingSquare[c] = to
	}
}

// placeRaw restores a captured piece for UndoMove without touching hash or
// incremental evaluation terms.
func (p *Position) placeRaw(piece Piece, sq Square) {
	c := piece.Color()
	pt := piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.addRotated(sq)
}

// castlingRookSquares returns the rook's from/to squares for a castling move
// encoded as the king's from/to squares.
func castlingRookSquares(kingFrom, kingTo Square) (rookFrom, rookTo Square) {
	rank := kingFrom.Rank()
	if kingTo > kingFrom {
		return NewSquare(7, rank), NewSquare(5, rank)
	}
	return NewSquare(0, rank), NewSquare(3, rank)
}

// NullMoveUndo stores state for unmake of a null move.
type NullMoveUndo struct {
	EnPassant Square
	Hash      uint64
	Checkers  Bitboard
	CheckFlag Flag
}

// DoNullMove passes the turn without moving a piece, used by null-move
// pruning. Returns undo info that must be passed to UndoNullMove.
func (p *Position) DoNullMove() NullMoveUndo {
	undo := NullMoveUndo{
		EnPassant: p.EnPassant,
		Hash:      p.Hash,
		Checkers:  p.Checkers,
		CheckFlag: p.checkFlag,
	}

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSideToMove
	p.checkFlag = FlagUnknown
	p.UpdateCheckers()

	return undo
}

// UndoNullMove undoes a null move.
func (p *Position) UndoNullMove(undo NullMoveUndo) {
	p.EnPassant = undo.EnPassant
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.checkFlag = undo.CheckFlag
	p.SideToMove = p.SideToMove.Other()
}

// IsLegalMove reports whether m, already known pseudo-legal, is legal: it
// must not leave the mover's own king in check. Castling legality (king not
// moving through or out of check) is validated at generation time.
func (p *Position) IsLegalMove(m Move) bool {
	us := p.SideToMove
	them := us.Other()

	if m.IsCastling() {
		return true
	}

	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	p.DoMove(m)
	legal := !p.IsSquareAttacked(ksq, p.SideToMove)
	p.UndoMove(m)
	return legal
}

// IsLegalPosition reports whether the side that just moved left its own king
// safe — i.e. whether the last DoMove was legal.
func (p *Position) IsLegalPosition(lastMove Move) bool {
	mover := p.SideToMove.Other()
	return !p.IsSquareAttacked(p.KingSquare[mover], p.SideToMove)
}

// GivesCheck reports whether playing m (not yet made) would give check,
// covering both direct checks by the moved piece and checks discovered by
// sliders whose line to the enemy king the moving piece vacates.
func (p *Position) GivesCheck(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	theirKing := p.KingSquare[them]

	piece := p.PieceAt(from)
	pt := piece.Type()
	if m.IsPromotion() {
		pt = m.PromotionType()
	}

	occAfter := (p.AllOccupied &^ SquareBB(from)) | SquareBB(to)

	var directAttacks Bitboard
	switch pt {
	case Pawn:
		directAttacks = PawnAttacks(to, us)
	case Knight:
		directAttacks = KnightAttacks(to)
	case King:
		directAttacks = KingAttacks(to)
	case Bishop:
		directAttacks = BishopAttacks(to, occAfter)
	case Rook:
		directAttacks = RookAttacks(to, occAfter)
	case Queen:
		directAttacks = QueenAttacks(to, occAfter)
	}
	if directAttacks&SquareBB(theirKing) != 0 {
		return true
	}

	if m.IsEnPassant() {
		var capSq Square
		if us == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		occAfter &^= SquareBB(capSq)
	}

	if Line(from, theirKing) != 0 {
		sliders := (p.Pieces[us][Rook] | p.Pieces[us][Queen]) & RookAttacks(theirKing, occAfter)
		sliders |= (p.Pieces[us][Bishop] | p.Pieces[us][Queen]) & BishopAttacks(theirKing, occAfter)
		sliders &^= SquareBB(to)
		for sliders != 0 {
			sq := sliders.PopLSB()
			if Between(sq, theirKing)&occAfter == 0 {
				return true
			}
		}
	}

	return false
}

// CountRepetitions walks the history backwards in 2-ply strides, counting
// how many prior positions share the current zobrist key, stopping as soon
// as it reaches a history entry whose halfmove clock is >= the current one
// (a pawn move or capture occurred, so no earlier repetition is reachable).
func (p *Position) CountRepetitions() int {
	count := 0
	for i := p.historyCount - 2; i >= 0; i -= 2 {
		if p.history[i].hash == p.Hash {
			count++
		}
		if p.history[i].halfMoveClock >= p.HalfMoveClock {
			break
		}
	}
	return count
}

// Check50MovesRule reports whether the 50-move rule draw threshold is met.
func (p *Position) Check50MovesRule() bool {
	return p.HalfMoveClock >= 100
}

// IsInsufficientMaterial returns true if neither side can possibly deliver
// checkmate with the material remaining on the board.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops == 0 && bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}
	if wKnights == 0 && bKnights == 0 && wBishops == 1 && bBishops == 1 {
		wSq := p.Pieces[White][Bishop].LSB()
		bSq := p.Pieces[Black][Bishop].LSB()
		return squareColor(wSq) == squareColor(bSq)
	}

	return false
}

func squareColor(sq Square) int {
	return (sq.File() + sq.Rank()) & 1
}

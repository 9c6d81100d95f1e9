package board

import "testing"

// perftNodes walks the legal move tree depth plies deep and counts leaves,
// the standard cross-check for move generator correctness.
func perftNodes(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		p.DoMove(m)
		nodes += perftNodes(p, depth-1)
		p.UndoMove(m)
	}
	return nodes
}

type perftCase struct {
	depth    int
	expected int64
}

// runPerftCases checks perftNodes against each case's expected leaf count,
// one subtest per depth.
func runPerftCases(t *testing.T, pos *Position, cases []perftCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run("", func(t *testing.T) {
			if got := perftNodes(pos, tc.depth); got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

func mustParseFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestPerftStartingPosition(t *testing.T) {
	runPerftCases(t, NewPosition(), []perftCase{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
		// Depth 5 (4865609) is accurate but slow; enable for thorough runs.
	})
}

// TestPerftKiwipete exercises the well-known Kiwipete position, chosen for
// packing many castling/en-passant/promotion edge cases into one FEN.
func TestPerftKiwipete(t *testing.T) {
	pos := mustParseFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	runPerftCases(t, pos, []perftCase{
		{1, 48},
		{2, 2039},
		{3, 97862},
		// {4, 4085603}, // ~1s, enable for thorough runs.
	})
}

// TestPerftPosition3 targets en passant edge cases.
func TestPerftPosition3(t *testing.T) {
	pos := mustParseFEN(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	runPerftCases(t, pos, []perftCase{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
		// {5, 674624}, // enable for thorough runs.
	})
}

// TestPerftEnPassantPin checks a horizontal-pin en passant case: the black
// pawn on e4 can reach d3 en passant, but doing so would expose the black
// king on a4 to the white rook on h4, so the capture must be excluded.
func TestPerftEnPassantPin(t *testing.T) {
	pos := mustParseFEN(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			t.Errorf("en passant move %v should be illegal (horizontal pin)", m)
		}
	}

	// Depth 1: Ka3, Ka5, Kb3, Kb4, Kb5, e3 = 6 moves.
	// Depth 2: after e4e3 (14) plus after each king move (16 x 5) = 94.
	runPerftCases(t, pos, []perftCase{
		{1, 6},
		{2, 94},
	})
}

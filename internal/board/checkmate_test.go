package board

import "testing"

// logCheckState dumps the diagnostics useful when a checkmate/stalemate
// assertion fails: the board, checkers, and the full legal move list.
func logCheckState(t *testing.T, pos *Position) {
	t.Helper()
	pos.UpdateCheckers()

	t.Log(pos)
	t.Log("checkers:", pos.Checkers)
	t.Log("in check:", pos.InCheck())

	moves := pos.GenerateLegalMoves()
	t.Log("legal moves:", moves.Len())
	for i := 0; i < moves.Len(); i++ {
		t.Log("  move:", moves.Get(i))
	}
}

// TestCheckmate covers a back-rank mate: White Ra8+Ka1 against Black Kh8
// boxed in by its own pawns on g7/h7, with Black to move.
func TestCheckmate(t *testing.T) {
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}

	logCheckState(t, pos)
	t.Log("has legal move:", HasLegalMove(pos))
	t.Log("is stalemate:", pos.IsStalemate())

	if !pos.IsCheckmate() {
		t.Error("expected checkmate, got false")
	}
}

// TestNotCheckmate covers a position that looks like mate at a glance but
// isn't: the checking rook on g8 sits adjacent to the black king, which can
// simply capture it.
func TestNotCheckmate(t *testing.T) {
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}

	logCheckState(t, pos)

	if pos.IsCheckmate() {
		t.Error("expected not checkmate, got true")
	}
}

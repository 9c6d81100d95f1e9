package engine

import (
	"testing"
	"time"

	"github.com/elanko/gofish/internal/board"
)

func searchSync(t *testing.T, eng *Engine, pos *board.Position, limits SearchLimits) board.Move {
	t.Helper()
	var best board.Move
	done := make(chan struct{})
	eng.OnBestMove = func(m, _ board.Move) {
		best = m
		close(done)
	}
	eng.Start(pos, limits)
	eng.WaitWhileSearching()
	<-done
	return best
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	move := searchSync(t, eng, pos, SearchLimits{Depth: 4})
	if move == board.NoMove {
		t.Error("search returned NoMove for starting position")
	}
	t.Logf("best move: %s", move.String())
}

func TestEngineStateMachine(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	if eng.State() != StateIdle {
		t.Fatalf("new engine should be IDLE, got %v", eng.State())
	}

	var bestSeen board.Move
	done := make(chan struct{})
	eng.OnBestMove = func(m, _ board.Move) {
		bestSeen = m
		close(done)
	}

	eng.Start(pos, SearchLimits{MoveTime: 200 * time.Millisecond})
	if !eng.IsSearching() {
		t.Fatalf("engine should be searching immediately after Start returns")
	}

	eng.WaitWhileSearching()
	<-done

	if eng.State() != StateIdle {
		t.Errorf("engine should return to IDLE after search completes, got %v", eng.State())
	}
	if bestSeen == board.NoMove {
		t.Error("OnBestMove fired with NoMove for starting position")
	}
}

func TestEngineStopIsWellDefinedRightAfterStart(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	done := make(chan struct{})
	eng.OnBestMove = func(board.Move, board.Move) { close(done) }

	eng.Start(pos, SearchLimits{Infinite: true})
	eng.Stop()
	eng.WaitWhileSearching()
	<-done
}

func TestEngineResizeAndClearWhileIdle(t *testing.T) {
	eng := NewEngine(16)
	eng.Clear()
	eng.Resize(8)
	if eng.tt.Size() == 0 {
		t.Fatal("transposition table should have entries after resize")
	}
}

func TestEvaluateSymmetry(t *testing.T) {
	eng := NewEngine(16)
	pos := board.NewPosition()
	if score := eng.Evaluate(pos); score != 0 {
		t.Errorf("starting position should evaluate to 0 (symmetric), got %d", score)
	}
}

func TestPerftStartingPosition(t *testing.T) {
	pos := board.NewPosition()
	cases := []struct {
		depth int
		nodes uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	for _, tc := range cases {
		r := Perft(pos, tc.depth)
		if r.Nodes != tc.nodes {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, r.Nodes, tc.nodes)
		}
	}
}

func TestPerftKiwipeteCaptureCount(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}
	r := Perft(pos, 1)
	if r.Nodes != 48 {
		t.Errorf("perft(1) = %d, want 48", r.Nodes)
	}
	if r.Captures != 8 {
		t.Errorf("captures = %d, want 8", r.Captures)
	}
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1)
	pos := board.NewPosition()

	if _, _, found := pt.Probe(pos.PawnKey); found {
		t.Error("expected cache miss on first probe")
	}

	pt.Store(pos.PawnKey, -15, -20)

	mg, eg, found := pt.Probe(pos.PawnKey)
	if !found {
		t.Error("expected cache hit after store")
	}
	if mg != -15 || eg != -20 {
		t.Errorf("wrong values: got mg=%d, eg=%d, want -15, -20", mg, eg)
	}

	oldKey := pos.PawnKey
	move := board.NewMove(board.E2, board.E4)
	pos.DoMove(move)
	if pos.PawnKey == oldKey {
		t.Error("PawnKey should change when a pawn moves")
	}
	pos.UndoMove(move)
	if pos.PawnKey != oldKey {
		t.Error("PawnKey should be restored on UndoMove")
	}
}

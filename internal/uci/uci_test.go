package uci

import (
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/elanko/gofish/internal/board"
	"github.com/elanko/gofish/internal/engine"
)

func newTestUCI() *UCI {
	return New(engine.NewEngine(1), logr.Discard())
}

func TestParseGoOptionsTimeControl(t *testing.T) {
	u := newTestUCI()
	opts := u.parseGoOptions([]string{"wtime", "60000", "btime", "55000", "winc", "1000", "movestogo", "20"})

	if opts.WTime != 60*time.Second {
		t.Errorf("wtime = %v, want 60s", opts.WTime)
	}
	if opts.BTime != 55*time.Second {
		t.Errorf("btime = %v, want 55s", opts.BTime)
	}
	if opts.WInc != time.Second {
		t.Errorf("winc = %v, want 1s", opts.WInc)
	}
	if opts.MovesToGo != 20 {
		t.Errorf("movestogo = %d, want 20", opts.MovesToGo)
	}
}

func TestParseGoOptionsDepthAndInfinite(t *testing.T) {
	u := newTestUCI()
	opts := u.parseGoOptions([]string{"depth", "12"})
	if opts.Depth != 12 {
		t.Errorf("depth = %d, want 12", opts.Depth)
	}

	opts = u.parseGoOptions([]string{"infinite"})
	if !opts.Infinite {
		t.Error("expected Infinite to be set")
	}
}

func TestParseGoOptionsSearchmoves(t *testing.T) {
	u := newTestUCI()
	opts := u.parseGoOptions([]string{"searchmoves", "e2e4", "d2d4"})
	if len(opts.Moves) != 2 {
		t.Fatalf("got %d searchmoves, want 2", len(opts.Moves))
	}

	limits := u.toLimits(opts)
	if len(limits.Moves) != 2 {
		t.Fatalf("got %d restricted moves, want 2", len(limits.Moves))
	}
}

func TestHandlePositionStartposWithMoves(t *testing.T) {
	u := newTestUCI()
	u.handlePosition([]string{"startpos", "moves", "e2e4", "e7e5"})

	if u.position.SideToMove != board.White {
		t.Errorf("side to move = %v, want White after two plies", u.position.SideToMove)
	}
	if p := u.position.PieceAt(board.E4); p != board.WhitePawn {
		t.Errorf("expected a white pawn on e4")
	}
}

func TestHandlePositionFEN(t *testing.T) {
	u := newTestUCI()
	u.handlePosition([]string{"fen", "8", "8", "8", "8", "8", "8", "8", "8", "w", "-", "-", "0", "1"})
	// Malformed FEN: handlePosition should leave the error logged to stderr
	// and not panic; nothing further to assert here beyond survival.
}

func TestSetOptionHash(t *testing.T) {
	u := newTestUCI()
	u.handleSetOption([]string{"name", "Hash", "value", "8"})
}

func TestSendInfoFormatsMateScore(t *testing.T) {
	u := newTestUCI()
	info := engine.SearchInfo{
		Depth: 5,
		Score: engine.ValueCheckmate - 3,
		Nodes: 100,
		PV:    []board.Move{board.NewMove(board.E2, board.E4)},
	}
	// sendInfo writes to stdout; this just exercises it for panics and
	// confirms mate-score inputs don't trip the cp/mate branch logic.
	u.sendInfo(info)
}

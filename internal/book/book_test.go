package book

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"

	"github.com/elanko/gofish/internal/board"
)

func openTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "store"), logr.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestPolyglotHashRoundTrip(t *testing.T) {
	pos := board.NewPosition()
	hash1 := pos.PolyglotHash()

	move := board.NewMove(board.E2, board.E4)
	pos.DoMove(move)
	hash2 := pos.PolyglotHash()
	if hash1 == hash2 {
		t.Error("PolyglotHash should change after a move")
	}

	pos.UndoMove(move)
	if pos.PolyglotHash() != hash1 {
		t.Error("PolyglotHash not restored after UndoMove")
	}
}

func TestBookImportAndProbe(t *testing.T) {
	pos := board.NewPosition()
	key := pos.PolyglotHash()

	// e2 = file 4, rank 1; e4 = file 4, rank 3.
	e2e4 := uint16(4 | (3 << 3) | (4 << 6) | (1 << 9))

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, key)
	binary.Write(&buf, binary.BigEndian, e2e4)
	binary.Write(&buf, binary.BigEndian, uint16(100)) // weight
	binary.Write(&buf, binary.BigEndian, uint32(0))   // learn data, ignored

	b := openTestBook(t)
	n, err := b.Import(&buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d records, want 1", n)
	}

	move, found := b.Probe(pos)
	if !found {
		t.Fatal("expected a book hit")
	}
	if move.From() != board.E2 || move.To() != board.E4 {
		t.Errorf("got %s, want e2e4", move.String())
	}
}

func TestBookMiss(t *testing.T) {
	b := openTestBook(t)
	pos := board.NewPosition()

	move, found := b.Probe(pos)
	if found {
		t.Error("expected a miss on an empty book")
	}
	if move != board.NoMove {
		t.Errorf("expected NoMove on miss, got %s", move.String())
	}
}

func TestNilBookProbesAsMiss(t *testing.T) {
	var b *Book
	pos := board.NewPosition()
	if _, found := b.Probe(pos); found {
		t.Error("nil *Book should never report a hit")
	}
}

func TestDecodePolyglotMoveCastling(t *testing.T) {
	// Polyglot encodes white kingside castling as e1 captures h1.
	e1h1 := uint16(int(board.H1.File()) | int(board.H1.Rank())<<3 | int(board.E1.File())<<6 | int(board.E1.Rank())<<9)
	move, ok := decodePolyglotMove(e1h1)
	if !ok {
		t.Fatal("expected a decodable move")
	}
	if move.From() != board.E1 || move.To() != board.G1 {
		t.Errorf("got %s, want e1g1", move.String())
	}
}

func TestDecodePolyglotMovePromotion(t *testing.T) {
	// a7a8=Q: from a7 (file 0, rank 6), to a8 (file 0, rank 7), promo=4.
	a7a8q := uint16(0 | 7<<3 | 0<<6 | 6<<9 | 4<<12)
	move, ok := decodePolyglotMove(a7a8q)
	if !ok {
		t.Fatal("expected a decodable move")
	}
	if !move.IsPromotion() || move.PromotionType() != board.Queen {
		t.Errorf("got %s, want a7a8q", move.String())
	}
}

func TestBookWeightedSelectionStaysAmongStoredMoves(t *testing.T) {
	pos := board.NewPosition()
	key := pos.PolyglotHash()

	e2e4 := uint16(4 | (3 << 3) | (4 << 6) | (1 << 9))
	d2d4 := uint16(3 | (3 << 3) | (3 << 6) | (1 << 9))

	var buf bytes.Buffer
	for _, rec := range []struct {
		move   uint16
		weight uint16
	}{{e2e4, 10}, {d2d4, 1}} {
		binary.Write(&buf, binary.BigEndian, key)
		binary.Write(&buf, binary.BigEndian, rec.move)
		binary.Write(&buf, binary.BigEndian, rec.weight)
		binary.Write(&buf, binary.BigEndian, uint32(0))
	}

	b := openTestBook(t)
	if _, err := b.Import(&buf); err != nil {
		t.Fatalf("Import: %v", err)
	}

	all := b.ProbeAll(pos)
	if len(all) != 2 {
		t.Fatalf("got %d entries, want 2", len(all))
	}
	if all[0].Weight < all[1].Weight {
		t.Error("ProbeAll should sort by descending weight")
	}

	for i := 0; i < 20; i++ {
		move, found := b.Probe(pos)
		if !found {
			t.Fatal("expected a hit")
		}
		if !move.SameAs(all[0].Move) && !move.SameAs(all[1].Move) {
			t.Errorf("probed move %s not among stored entries", move.String())
		}
	}
}

// Package book implements a Polyglot-format opening book backed by
// BadgerDB, so a multi-million-entry book can be probed without holding the
// whole file in memory.
package book

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"github.com/klauspost/compress/zstd"

	"github.com/elanko/gofish/internal/board"
)

// BookEntry is one book move for a position, as returned to callers that
// want the whole candidate list rather than a single probed choice.
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// Book probes a BadgerDB-backed Polyglot opening book. A nil *Book probes
// as "no book" rather than panicking, so callers can pass one through
// unconditionally.
type Book struct {
	store *store
	log   logr.Logger
}

// Open opens (creating if necessary) a book store rooted at dir. Pass a
// zero logr.Logger to discard Badger's internal logging.
func Open(dir string, log logr.Logger) (*Book, error) {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	s, err := openStore(dir, log)
	if err != nil {
		return nil, err
	}
	return &Book{store: s, log: log}, nil
}

// Close releases the underlying store.
func (b *Book) Close() error {
	if b == nil || b.store == nil {
		return nil
	}
	return b.store.Close()
}

// ImportFile parses a Polyglot book file and merges its entries into the
// store. Files named *.zst are transparently zstd-decompressed.
func (b *Book) ImportFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("book: open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return b.Import(r)
}

// Import parses Polyglot records from r and merges them into the store.
// It returns the number of records successfully parsed.
func (b *Book) Import(r io.Reader) (int, error) {
	grouped := make(map[uint64][]polyglotEntry)

	var record [16]byte
	count := 0
	for {
		_, err := io.ReadFull(r, record[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("book: reading polyglot record: %w", err)
		}

		key := binary.BigEndian.Uint64(record[0:8])
		moveData := binary.BigEndian.Uint16(record[8:10])
		weight := binary.BigEndian.Uint16(record[10:12])
		// record[12:16] is learn data, unused.

		move, ok := decodePolyglotMove(moveData)
		if !ok {
			continue
		}
		grouped[key] = append(grouped[key], polyglotEntry{move: uint32(move), weight: weight})
		count++
	}

	if len(grouped) == 0 {
		return count, nil
	}
	if err := b.store.merge(grouped); err != nil {
		return count, err
	}
	b.log.V(1).Info("imported polyglot book", "records", count, "positions", len(grouped))
	return count, nil
}

// decodePolyglotMove converts a Polyglot move encoding to a board.Move.
// Polyglot move format (bits, from LSB): 0-5 to-square, 6-11 from-square,
// 12-14 promotion piece (0=none, 1=knight, 2=bishop, 3=rook, 4=queen).
func decodePolyglotMove(data uint16) (board.Move, bool) {
	toFile := int(data & 7)
	toRank := int((data >> 3) & 7)
	fromFile := int((data >> 6) & 7)
	fromRank := int((data >> 9) & 7)
	promo := (data >> 12) & 7

	from := board.NewSquare(fromFile, fromRank)
	to := board.NewSquare(toFile, toRank)

	// Polyglot encodes castling as king-captures-own-rook; remap to our
	// king-moves-two-squares encoding before it ever reaches Probe callers.
	switch {
	case from == board.E1 && to == board.H1:
		to = board.G1
	case from == board.E1 && to == board.A1:
		to = board.C1
	case from == board.E8 && to == board.H8:
		to = board.G8
	case from == board.E8 && to == board.A8:
		to = board.C8
	}

	if promo == 0 {
		return board.NewMove(from, to), true
	}
	promoTypes := [5]board.PieceType{0, board.Knight, board.Bishop, board.Rook, board.Queen}
	if promo > 4 {
		return board.NoMove, false
	}
	return board.NewPromotionMove(from, to, promoTypes[promo]), true
}

// Probe looks up pos in the book and returns a move chosen by weighted
// random selection among the stored candidates.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil || b.store == nil {
		return board.NoMove, false
	}

	entries, err := b.store.lookup(pos.PolyglotHash())
	if err != nil || len(entries) == 0 {
		return board.NoMove, false
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].weight > entries[j].weight })

	var total uint32
	for _, e := range entries {
		total += uint32(e.weight)
	}
	if total == 0 {
		return b.verifyAndConvert(pos, board.Move(entries[0].move)), true
	}

	r := rand.Uint32() % total
	var cumulative uint32
	for _, e := range entries {
		cumulative += uint32(e.weight)
		if r < cumulative {
			return b.verifyAndConvert(pos, board.Move(e.move)), true
		}
	}
	return b.verifyAndConvert(pos, board.Move(entries[0].move)), true
}

// ProbeAll returns every book move for pos, sorted by descending weight,
// for callers that want to show or log the full candidate set rather than
// a single probed choice.
func (b *Book) ProbeAll(pos *board.Position) []BookEntry {
	if b == nil || b.store == nil {
		return nil
	}
	entries, err := b.store.lookup(pos.PolyglotHash())
	if err != nil || len(entries) == 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].weight > entries[j].weight })

	out := make([]BookEntry, 0, len(entries))
	for _, e := range entries {
		if m := b.verifyAndConvert(pos, board.Move(e.move)); m != board.NoMove {
			out = append(out, BookEntry{Move: m, Weight: e.weight})
		}
	}
	return out
}

// verifyAndConvert re-resolves a Polyglot-decoded move against pos's legal
// moves, recovering flags (castling, en passant) that Polyglot's bare
// from/to/promotion encoding can't express.
func (b *Book) verifyAndConvert(pos *board.Position, move board.Move) board.Move {
	legal := pos.GenerateLegalMoves()
	from, to := move.From(), move.To()

	for i := 0; i < legal.Len(); i++ {
		lm := legal.Get(i)
		if lm.From() != from || lm.To() != to {
			continue
		}
		if move.IsPromotion() != lm.IsPromotion() {
			continue
		}
		if move.IsPromotion() && move.PromotionType() != lm.PromotionType() {
			continue
		}
		return lm
	}
	return board.NoMove
}

package book

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"
)

// polyglotEntry is the decoded form of one 16-byte Polyglot record, minus
// its position key (that's the store's key) and its learn data (unused).
type polyglotEntry struct {
	move   uint32 // identity bits of a board.Move
	weight uint16
}

// store is the BadgerDB-backed key/value layer beneath Book. Keys are the
// 8-byte big-endian Polyglot position hash; values are a packed sequence of
// 6-byte entries (4-byte move, 2-byte weight).
type store struct {
	db *badger.DB
}

func openStore(dir string, log logr.Logger) (*store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogAdapter{log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("book: open store at %s: %w", dir, err)
	}
	return &store{db: db}, nil
}

func (s *store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func encodeKey(hash uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], hash)
	return k[:]
}

func encodeEntries(entries []polyglotEntry) []byte {
	buf := make([]byte, len(entries)*6)
	for i, e := range entries {
		binary.BigEndian.PutUint32(buf[i*6:], e.move)
		binary.BigEndian.PutUint16(buf[i*6+4:], e.weight)
	}
	return buf
}

func decodeEntries(data []byte) []polyglotEntry {
	entries := make([]polyglotEntry, len(data)/6)
	for i := range entries {
		entries[i].move = binary.BigEndian.Uint32(data[i*6:])
		entries[i].weight = binary.BigEndian.Uint16(data[i*6+4:])
	}
	return entries
}

func (s *store) lookup(hash uint64) ([]polyglotEntry, error) {
	var entries []polyglotEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entries = decodeEntries(val)
			return nil
		})
	})
	return entries, err
}

// merge appends the entries newly parsed from an import to whatever is
// already stored under each key, in a single batched write.
func (s *store) merge(grouped map[uint64][]polyglotEntry) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for hash, incoming := range grouped {
		existing, err := s.lookup(hash)
		if err != nil {
			return err
		}
		merged := append(existing, incoming...)
		if err := wb.Set(encodeKey(hash), encodeEntries(merged)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// badgerLogAdapter routes Badger's internal logging through logr, so an
// opening-book store shares the rest of the program's logging pipeline
// instead of writing to stderr on its own.
type badgerLogAdapter struct{ log logr.Logger }

func (a badgerLogAdapter) Errorf(format string, args ...interface{}) {
	a.log.Error(nil, fmt.Sprintf(format, args...))
}

func (a badgerLogAdapter) Warningf(format string, args ...interface{}) {
	a.log.V(1).Info(fmt.Sprintf(format, args...))
}

func (a badgerLogAdapter) Infof(format string, args ...interface{}) {
	a.log.V(1).Info(fmt.Sprintf(format, args...))
}

func (a badgerLogAdapter) Debugf(format string, args ...interface{}) {
	a.log.V(2).Info(fmt.Sprintf(format, args...))
}

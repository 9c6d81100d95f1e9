package engine

import (
	"sync"

	"github.com/elanko/gofish/internal/board"
)

// TTFlag is the bound kind stored in a transposition-table entry.
type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLowerBound
	TTUpperBound
)

// ttEntry is the packed 16-byte transposition-table record: key (8) + move
// (4) + value (2) + depth/age/flag/mateThreat packed into the last 2 bytes.
type ttEntry struct {
	key   uint64
	move  board.Move
	value int16
	meta  uint16 // bits 0-6 depth, 7-9 age, 10-11 flag, 12 mateThreat
}

const (
	metaDepthMask       = 0x7F
	metaAgeShift        = 7
	metaAgeMask         = 0x7 << metaAgeShift
	metaFlagShift       = 10
	metaFlagMask        = 0x3 << metaFlagShift
	metaMateThreatShift = 12
	metaMateThreatBit   = 1 << metaMateThreatShift
	maxAge              = 7
)

func packMeta(depth int, age uint8, flag TTFlag, mateThreat bool) uint16 {
	m := uint16(depth) & metaDepthMask
	m |= uint16(age) << metaAgeShift
	m |= uint16(flag) << metaFlagShift
	if mateThreat {
		m |= metaMateThreatBit
	}
	return m
}

func (e ttEntry) depth() int       { return int(e.meta & metaDepthMask) }
func (e ttEntry) age() uint8       { return uint8((e.meta & metaAgeMask) >> metaAgeShift) }
func (e ttEntry) flag() TTFlag     { return TTFlag((e.meta & metaFlagMask) >> metaFlagShift) }
func (e ttEntry) mateThreat() bool { return e.meta&metaMateThreatBit != 0 }
func (e ttEntry) occupied() bool   { return e.key != 0 }

// TranspositionTable is a direct-mapped, fixed power-of-two-sized hash table
// of 16-byte entries. Collisions are resolved purely by replacement; there
// is no open addressing or chaining.
type TranspositionTable struct {
	mu      sync.Mutex
	entries []ttEntry
	mask    uint64

	hits   uint64
	probes uint64
}

// NewTranspositionTable allocates the largest power-of-two entry count such
// that N*16 bytes fits in sizeMB megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.Resize(sizeMB)
	return tt
}

// Resize deallocates and reallocates the table for a new size in MB. Must
// only be called while the search worker is IDLE.
func (tt *TranspositionTable) Resize(sizeMB int) {
	const entryBytes = 16
	n := (uint64(sizeMB) * 1024 * 1024) / entryBytes
	n = roundDownPow2(n)
	if n == 0 {
		n = 1
	}
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.entries = make([]ttEntry, n)
	tt.mask = n - 1
}

func roundDownPow2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (tt *TranspositionTable) index(key uint64) uint64 { return key & tt.mask }

// AdjustScoreToTT converts a root-relative mate score to a from-this-node
// distance before storing, so later probes at a different ply remain valid.
func AdjustScoreToTT(value, ply int) int {
	switch {
	case value >= ValueCheckmateThreshold:
		return value + ply
	case value <= -ValueCheckmateThreshold:
		return value - ply
	default:
		return value
	}
}

// AdjustScoreFromTT is the inverse of AdjustScoreToTT, applied on load.
func AdjustScoreFromTT(value, ply int) int {
	switch {
	case value >= ValueCheckmateThreshold:
		return value - ply
	case value <= -ValueCheckmateThreshold:
		return value + ply
	default:
		return value
	}
}

// Put stores a search result, applying the replacement policy: same key
// updates in place (subject to depth/kind strength rules); different key
// (collision) only overwrites when the new entry is at least as deep and
// either forced or the resident entry is stale (age > 0).
func (tt *TranspositionTable) Put(key uint64, depth int, move board.Move, value int, kind TTFlag, mateThreat, forced bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	idx := tt.index(key)
	e := &tt.entries[idx]

	if !e.occupied() {
		*e = ttEntry{key: key, move: move, value: int16(value), meta: packMeta(depth, 0, kind, mateThreat)}
		return
	}

	if e.key == key {
		newMove := move
		if newMove == board.NoMove {
			newMove = e.move
		}
		switch {
		case depth > e.depth():
			*e = ttEntry{key: key, move: newMove, value: int16(value), meta: packMeta(depth, 0, kind, mateThreat)}
		case depth == e.depth():
			if kind == TTExact || e.flag() != TTExact {
				*e = ttEntry{key: key, move: newMove, value: int16(value), meta: packMeta(depth, 0, kind, mateThreat)}
			} else {
				e.move = newMove
				e.meta = packMeta(e.depth(), 0, e.flag(), mateThreat)
			}
		default:
			e.move = newMove
			e.meta = packMeta(e.depth(), 0, e.flag(), mateThreat)
		}
		return
	}

	if depth >= e.depth() && (forced || e.age() > 0) {
		*e = ttEntry{key: key, move: move, value: int16(value), meta: packMeta(depth, 0, kind, mateThreat)}
	}
}

// Probe looks up key. It always returns the stored move and mate-threat flag
// (useful for move ordering and extensions even on a depth/bound miss); hit
// additionally reports whether value/kind satisfy the [alpha, beta] window
// at the requested depth.
func (tt *TranspositionTable) Probe(key uint64, depth, ply, alpha, beta int, isPV bool) (hit bool, value int, move board.Move, mateThreat bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	tt.probes++
	idx := tt.index(key)
	e := &tt.entries[idx]
	if !e.occupied() || e.key != key {
		return false, 0, board.NoMove, false
	}

	if e.age() > 0 {
		e.meta = packMeta(e.depth(), e.age()-1, e.flag(), e.mateThreat())
	}

	move = e.move
	mateThreat = e.mateThreat()
	storedValue := AdjustScoreFromTT(int(e.value), ply)

	if e.depth() < depth || (isPV && e.flag() != TTExact) {
		return false, storedValue, move, mateThreat
	}

	switch e.flag() {
	case TTExact:
		hit = true
	case TTLowerBound:
		hit = storedValue >= beta
	case TTUpperBound:
		hit = storedValue <= alpha
	}
	if hit {
		tt.hits++
	}
	return hit, storedValue, move, mateThreat
}

// AgeEntries increments every entry's age by one, saturating at 7. Called
// once between searches so stale collisions become overwritable again.
func (tt *TranspositionTable) AgeEntries() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	for i := range tt.entries {
		e := &tt.entries[i]
		if !e.occupied() {
			continue
		}
		age := e.age()
		if age < maxAge {
			age++
		}
		e.meta = packMeta(e.depth(), age, e.flag(), e.mateThreat())
	}
}

// Clear empties every slot and resets statistics.
func (tt *TranspositionTable) Clear() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	for i := range tt.entries {
		tt.entries[i] = ttEntry{}
	}
	tt.hits = 0
	tt.probes = 0
}

// Prefetch issues a cache-line touch for key's computed index, hiding cache
// miss latency ahead of the Probe/Put that will follow in the move loop.
func (tt *TranspositionTable) Prefetch(key uint64) {
	tt.mu.Lock()
	idx := tt.index(key)
	_ = tt.entries[idx]
	tt.mu.Unlock()
}

// Hashfull samples the first 1000 slots and reports permille occupancy, the
// sampling the UCI "info hashfull" field expects.
func (tt *TranspositionTable) Hashfull() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	sample := 1000
	if uint64(sample) > uint64(len(tt.entries)) {
		sample = len(tt.entries)
	}
	if sample == 0 {
		return 0
	}
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].occupied() {
			used++
		}
	}
	return used * 1000 / sample
}

// HitRate returns the percentage of probes that resolved as a usable hit.
func (tt *TranspositionTable) HitRate() float64 {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries the table holds.
func (tt *TranspositionTable) Size() uint64 { return uint64(len(tt.entries)) }

package engine

// PawnEntry caches one pawn-structure evaluation: the packed middlegame and
// endgame scores keyed by the position's pawn-only Zobrist key.
type PawnEntry struct {
	Key     uint64
	MgScore int16
	EgScore int16
}

const pawnEntryBytes = 12 // 8-byte key + two int16 scores

// PawnTable is a direct-mapped cache of pawn-structure evaluations, sized to
// a power of two the same way TranspositionTable is so a single mask does
// the indexing.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable allocates a pawn hash table sized to fit within sizeMB.
func NewPawnTable(sizeMB int) *PawnTable {
	n := roundDownPow2(uint64(sizeMB) * 1024 * 1024 / pawnEntryBytes)
	if n == 0 {
		n = 1
	}
	return &PawnTable{
		entries: make([]PawnEntry, n),
		mask:    n - 1,
	}
}

// Probe returns the cached middlegame/endgame scores for key, if present.
func (pt *PawnTable) Probe(key uint64) (mg, eg int, found bool) {
	entry := &pt.entries[key&pt.mask]
	if entry.Key != key {
		return 0, 0, false
	}
	return int(entry.MgScore), int(entry.EgScore), true
}

// Store records the evaluation for key, overwriting whatever previously
// occupied that slot.
func (pt *PawnTable) Store(key uint64, mg, eg int) {
	entry := &pt.entries[key&pt.mask]
	*entry = PawnEntry{Key: key, MgScore: int16(mg), EgScore: int16(eg)}
}

// Clear wipes every entry back to its zero value.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
}

package engine

import "github.com/elanko/gofish/internal/board"

// HistoryTable is the quiet-move history heuristic, indexed by side to
// move, origin, and destination square, and incremented on beta cutoffs.
// The search records into it; the MoveGenerator orders quiet moves without
// reading it.
type HistoryTable struct {
	scores [2][64][64]int
}

const historyMax = 400000

// Update records a beta cutoff (bonus) or a searched-but-failed quiet move
// (malus) with a depth-squared magnitude, matching the teacher's own
// history update shape.
func (h *HistoryTable) Update(us board.Color, m board.Move, depth int, good bool) {
	bonus := depth * depth
	from, to := m.From(), m.To()
	if good {
		h.scores[us][from][to] += bonus
		if h.scores[us][from][to] > historyMax {
			h.halve()
		}
	} else {
		h.scores[us][from][to] -= bonus
		if h.scores[us][from][to] < -historyMax {
			h.scores[us][from][to] = -historyMax
		}
	}
}

// Score returns the current history value for a quiet move.
func (h *HistoryTable) Score(us board.Color, m board.Move) int {
	return h.scores[us][m.From()][m.To()]
}

func (h *HistoryTable) halve() {
	for c := range h.scores {
		for f := range h.scores[c] {
			for t := range h.scores[c][f] {
				h.scores[c][f][t] /= 2
			}
		}
	}
}

// Clear halves the table at the start of a new search, the same aging the
// teacher's move orderer applies rather than a hard reset (keeps some
// signal from the previous search's move ordering across iterations).
func (h *HistoryTable) Clear() {
	h.halve()
}

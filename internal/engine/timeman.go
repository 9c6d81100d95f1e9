package engine

import (
	"time"

	"github.com/elanko/gofish/internal/board"
)

// SearchLimits mirrors the UCI "go" command's parameters.
type SearchLimits struct {
	Time      [2]time.Duration // remaining time for White, Black
	Inc       [2]time.Duration // increment per move for White, Black
	MovesToGo int              // moves until next time control, 0 = sudden death
	MoveTime  time.Duration    // fixed time for this move, overrides time/inc
	Depth     int              // depth limit, 0 = none
	Nodes     uint64           // node limit, 0 = none
	Mate      int              // stop once a mate in <= Mate moves is found, 0 = disabled
	Moves     []board.Move     // restrict the root move list to these, empty = no restriction
	Infinite  bool
	Ponder    bool
}

// TimeManager computes and tracks the soft and hard time budgets for a
// search, per spec: soft ~= own_time/40 + increment, hard ~= 2x soft bounded
// by remaining time minus a safety margin.
type TimeManager struct {
	soft      time.Duration
	hard      time.Duration
	startTime time.Time
	infinite  bool
}

// NewTimeManager returns an unconfigured manager; Init must be called before
// the search begins timing itself against it.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init computes the soft/hard budgets for a new search and starts the clock.
// ply is the current game ply, used to estimate moves-to-go in sudden death.
func (tm *TimeManager) Init(limits SearchLimits, us board.Color, ply int) {
	tm.startTime = time.Now()
	tm.infinite = false

	if limits.MoveTime > 0 {
		tm.soft = limits.MoveTime
		tm.hard = limits.MoveTime
		return
	}

	if limits.Infinite || limits.Ponder || (limits.Time[us] == 0 && limits.Depth == 0 && limits.Nodes == 0) {
		tm.infinite = true
		tm.soft = time.Hour
		tm.hard = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]
	if timeLeft == 0 {
		// Depth/node-limited search with no clock: budgets are irrelevant,
		// the iterative-deepening loop's own limit checks will stop it.
		tm.soft = time.Hour
		tm.hard = time.Hour
		return
	}

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	soft := timeLeft/time.Duration(mtg) + inc
	if ply < 8 {
		soft = soft * 85 / 100
	}
	tm.soft = soft

	hard := soft * 2
	maxFromRemaining := timeLeft * 8 / 10
	if hard > maxFromRemaining {
		hard = maxFromRemaining
	}
	safetyMargin := timeLeft * 95 / 100
	if hard > safetyMargin {
		hard = safetyMargin
	}
	tm.hard = hard

	if tm.soft < 10*time.Millisecond {
		tm.soft = 10 * time.Millisecond
	}
	if tm.hard < 50*time.Millisecond {
		tm.hard = 50 * time.Millisecond
	}
}

// PromoteToTimed re-applies the limits' time budget to an already-running
// infinite/ponder search, the effect of a ponderHit event.
func (tm *TimeManager) PromoteToTimed(limits SearchLimits, us board.Color, ply int) {
	elapsed := tm.Elapsed()
	tm.Init(limits, us, ply)
	tm.startTime = time.Now().Add(-elapsed)
}

// AddExtraTime extends the soft budget (capped at hard), used when the root
// search fails low and more time would help resolve it.
func (tm *TimeManager) AddExtraTime(frac int) {
	extra := tm.soft * time.Duration(frac) / 100
	tm.soft += extra
	if tm.soft > tm.hard {
		tm.soft = tm.hard
	}
}

// Elapsed returns the time elapsed since Init.
func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.startTime) }

// PastSoft reports whether the soft budget has elapsed: the current
// iteration may still finish, but a new one should not start.
func (tm *TimeManager) PastSoft() bool { return !tm.infinite && tm.Elapsed() >= tm.soft }

// PastHard reports whether the hard budget has elapsed: the search must
// abort immediately, mid-iteration.
func (tm *TimeManager) PastHard() bool { return !tm.infinite && tm.Elapsed() >= tm.hard }

// AdjustForStability shrinks the soft budget when the best move has been
// stable across several consecutive iterations.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.soft = tm.soft * 40 / 100
	case stability >= 4:
		tm.soft = tm.soft * 60 / 100
	case stability >= 2:
		tm.soft = tm.soft * 80 / 100
	}
}

// AdjustForInstability grows the soft budget back up (bounded by hard) when
// the root best move keeps changing between iterations.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.soft = tm.soft * 200 / 100
	case changes >= 2:
		tm.soft = tm.soft * 150 / 100
	default:
		return
	}
	if tm.soft > tm.hard {
		tm.soft = tm.hard
	}
}

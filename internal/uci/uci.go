// Package uci implements the Universal Chess Interface protocol over
// stdin/stdout, driving a single engine.Engine.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/elanko/gofish/internal/board"
	"github.com/elanko/gofish/internal/book"
	"github.com/elanko/gofish/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	log      logr.Logger

	ownBook  bool
	bookFile string
	book     *book.Book

	searching     atomic.Bool
	searchDone    chan struct{}
	stopRequested atomic.Bool

	profileFile *os.File
}

// New creates a UCI protocol handler driving eng. Pass a zero logr.Logger
// to discard diagnostic output; protocol responses always go to stdout
// regardless.
func New(eng *engine.Engine, log logr.Logger) *UCI {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		log:      log,
	}
}

// Run starts the UCI main loop, blocking until stdin is closed or "quit"
// is received.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "ponderhit":
			u.engine.PonderHit()
		case "quit":
			u.handleQuit()
			return
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.position.String())
		case "eval":
			fmt.Printf("info string static eval %d\n", u.engine.Evaluate(u.position))
		case "perft":
			u.handlePerft(args)
		}
	}
}

// handleUCI responds to the "uci" command with engine identity and options.
func (u *UCI) handleUCI() {
	fmt.Println("id name gofish")
	fmt.Println("id author the gofish contributors")
	fmt.Println()
	fmt.Println("option name Hash type spin default 64 min 1 max 4096")
	fmt.Println("option name Ponder type check default true")
	fmt.Println("option name OwnBook type check default false")
	fmt.Println("option name BookFile type string default <empty>")
	fmt.Println("uciok")
}

// handleNewGame resets the engine and board for a new game.
func (u *UCI) handleNewGame() {
	u.engine.Clear()
	u.position = board.NewPosition()
}

// handlePosition parses and applies a "position" command.
//
//	position startpos
//	position startpos moves e2e4 e7e5
//	position fen <fen>
//	position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int
	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	case "fen":
		fenEnd := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				fenEnd = i
				break
			}
		}
		pos, err := board.ParseFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid fen: %v\n", err)
			return
		}
		u.position = pos
		moveStart = fenEnd
		if fenEnd < len(args) {
			moveStart = fenEnd + 1
		}
	default:
		return
	}

	for _, moveStr := range args[moveStart:] {
		move, err := board.ParseMove(moveStr, u.position)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid move %s: %v\n", moveStr, err)
			return
		}
		u.position.DoMove(move)
	}
}

// GoOptions holds the parsed arguments of a "go" command.
type GoOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	Ponder    bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
	Mate      int
	Moves     []string
}

func (u *UCI) parseGoOptions(args []string) GoOptions {
	var opts GoOptions

	nextInt := func(i int) (int, int) {
		if i+1 >= len(args) {
			return 0, i
		}
		n, _ := strconv.Atoi(args[i+1])
		return n, i + 1
	}
	nextMillis := func(i int) (time.Duration, int) {
		n, j := nextInt(i)
		return time.Duration(n) * time.Millisecond, j
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			opts.Depth, i = nextInt(i)
		case "mate":
			opts.Mate, i = nextInt(i)
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				opts.Nodes = n
				i++
			}
		case "movetime":
			opts.MoveTime, i = nextMillis(i)
		case "infinite":
			opts.Infinite = true
		case "ponder":
			opts.Ponder = true
		case "wtime":
			opts.WTime, i = nextMillis(i)
		case "btime":
			opts.BTime, i = nextMillis(i)
		case "winc":
			opts.WInc, i = nextMillis(i)
		case "binc":
			opts.BInc, i = nextMillis(i)
		case "movestogo":
			opts.MovesToGo, i = nextInt(i)
		case "searchmoves":
			for i+1 < len(args) {
				opts.Moves = append(opts.Moves, args[i+1])
				i++
			}
		}
	}

	return opts
}

func (u *UCI) toLimits(opts GoOptions) engine.SearchLimits {
	limits := engine.SearchLimits{
		Time:      [2]time.Duration{opts.WTime, opts.BTime},
		Inc:       [2]time.Duration{opts.WInc, opts.BInc},
		MovesToGo: opts.MovesToGo,
		MoveTime:  opts.MoveTime,
		Depth:     opts.Depth,
		Nodes:     opts.Nodes,
		Mate:      opts.Mate,
		Infinite:  opts.Infinite,
		Ponder:    opts.Ponder,
	}
	for _, s := range opts.Moves {
		if m, err := board.ParseMove(s, u.position); err == nil {
			limits.Moves = append(limits.Moves, m)
		}
	}
	return limits
}

// handleGo starts a search, probing the opening book first when OwnBook is
// enabled and the search is neither infinite nor a ponder.
func (u *UCI) handleGo(args []string) {
	opts := u.parseGoOptions(args)

	if u.ownBook && !opts.Infinite && !opts.Ponder {
		if move, ok := u.engine.ProbeBook(u.position); ok {
			fmt.Printf("bestmove %s\n", move.String())
			return
		}
	}

	limits := u.toLimits(opts)

	u.searching.Store(true)
	u.stopRequested.Store(false)
	done := make(chan struct{})
	u.searchDone = done

	root := u.position.Copy()

	u.engine.OnInfo = u.sendInfo
	u.engine.OnBestMove = func(best, ponder board.Move) {
		defer close(done)
		u.searching.Store(false)

		if best == board.NoMove {
			fmt.Println("bestmove 0000")
			return
		}
		if ponder != board.NoMove {
			fmt.Printf("bestmove %s ponder %s\n", best.String(), ponder.String())
			return
		}
		fmt.Printf("bestmove %s\n", best.String())
	}

	u.engine.Start(root, limits)
}

// sendInfo formats a completed iteration as a UCI "info" line.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d", info.Depth)
	if info.SelDepth > 0 {
		fmt.Fprintf(&b, " seldepth %d", info.SelDepth)
	}

	switch {
	case info.Score >= engine.ValueCheckmateThreshold:
		mateIn := (engine.ValueCheckmate - info.Score + 1) / 2
		fmt.Fprintf(&b, " score mate %d", mateIn)
	case info.Score <= -engine.ValueCheckmateThreshold:
		mateIn := -(engine.ValueCheckmate + info.Score + 1) / 2
		fmt.Fprintf(&b, " score mate %d", mateIn)
	default:
		fmt.Fprintf(&b, " score cp %d", info.Score)
	}
	switch info.Bound {
	case engine.TTLowerBound:
		b.WriteString(" lowerbound")
	case engine.TTUpperBound:
		b.WriteString(" upperbound")
	}

	fmt.Fprintf(&b, " nodes %d time %d", info.Nodes, info.TimeMs)
	if info.NPS > 0 {
		fmt.Fprintf(&b, " nps %d", info.NPS)
	}
	if hf := u.engine.Hashfull(); hf > 0 {
		fmt.Fprintf(&b, " hashfull %d", hf)
	}
	if len(info.PV) > 0 {
		b.WriteString(" pv")
		for _, m := range info.PV {
			b.WriteByte(' ')
			b.WriteString(m.String())
		}
	}

	fmt.Println(b.String())
}

// handleStop requests the in-progress search to abort and waits for the
// resulting bestmove to be printed.
func (u *UCI) handleStop() {
	if !u.searching.Load() {
		return
	}
	u.stopRequested.Store(true)
	u.engine.Stop()
	<-u.searchDone
}

// handleQuit stops any search, closes the book and profiler, and exits.
func (u *UCI) handleQuit() {
	u.handleStop()
	if u.book != nil {
		u.book.Close()
	}
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			switch {
			case readingName:
				name = appendWord(name, arg)
			case readingValue:
				value = appendWord(value, arg)
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil {
			u.engine.Resize(mb)
		}
	case "clear hash":
		u.engine.Clear()
	case "ownbook":
		u.ownBook = strings.EqualFold(value, "true")
		if u.ownBook {
			u.ensureBook()
		}
	case "bookfile":
		u.bookFile = value
		if u.ownBook {
			u.ensureBook()
		}
	case "cpuprofile":
		u.setCPUProfile(value)
	case "ponder":
		// No engine-side action: ponder/ponderhit is driven entirely by the
		// "go ponder" and "ponderhit" commands, this option only advertises
		// support to the GUI.
	default:
		// Evaluator weight toggles (Use_*/*_Weight) are plain Go constants,
		// not runtime configuration; acknowledge and ignore rather than
		// reject, per the UCI convention that unknown options are silent.
		u.log.V(1).Info("ignoring unrecognized option", "name", name, "value", value)
	}
}

func appendWord(s, word string) string {
	if s == "" {
		return word
	}
	return s + " " + word
}

// EnableBook turns on OwnBook and opens/imports path immediately; meant for
// callers wiring up a book from a command-line flag before Run starts.
func (u *UCI) EnableBook(path string) {
	u.ownBook = true
	u.bookFile = path
	u.ensureBook()
}

// ensureBook lazily opens the book store and imports bookFile into it the
// first time OwnBook is turned on with a file configured.
func (u *UCI) ensureBook() {
	if u.bookFile == "" {
		return
	}

	dir, err := book.StoreDir()
	if err != nil {
		u.log.Error(err, "resolve book store directory")
		return
	}
	b, err := book.Open(dir, u.log)
	if err != nil {
		u.log.Error(err, "open book store")
		return
	}
	if _, err := b.ImportFile(u.bookFile); err != nil {
		u.log.Error(err, "import book file", "path", u.bookFile)
		b.Close()
		return
	}

	if u.book != nil {
		u.book.Close()
	}
	u.book = b
	u.engine.SetBook(b)
}

func (u *UCI) setCPUProfile(value string) {
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.profileFile = nil
	}
	if value == "" || value == "stop" {
		return
	}

	f, err := os.Create(value)
	if err != nil {
		u.log.Error(err, "create cpu profile", "path", value)
		return
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		u.log.Error(err, "start cpu profile")
		f.Close()
		return
	}
	u.profileFile = f
}

// handlePerft runs a perft test and reports node count and speed.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	result := engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", result.Nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(result.Nodes)/elapsed.Seconds())
	}
}

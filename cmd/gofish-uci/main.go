// Command gofish-uci runs the engine as a UCI protocol process over
// stdin/stdout.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/go-logr/stdr"

	"github.com/elanko/gofish/internal/engine"
	"github.com/elanko/gofish/internal/uci"
)

func main() {
	hashMB := flag.Int("hash", 64, "transposition table size in MB")
	bookFile := flag.String("book", "", "Polyglot opening book file to enable at startup (implies OwnBook)")
	verbosity := flag.Int("v", 0, "log verbosity (0 = errors only)")
	flag.Parse()

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	eng := engine.NewEngine(*hashMB)
	protocol := uci.New(eng, logger)

	if *bookFile != "" {
		protocol.EnableBook(*bookFile)
	}

	protocol.Run()
}

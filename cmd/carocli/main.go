// Command carocli is a minimal line-protocol front end for the Caro
// search engine, grounded on the teacher's cmd/chessplay-uci/main.go
// (flag-based startup, runtime/pprof CPU profiling) and
// internal/uci.UCI's bufio.Scanner command loop — reworked into
// Caro's own protocol since UCI itself is a chess-specific wire
// format with no Caro analogue.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/caroengine"
	"github.com/lavantien/caroengine/internal/engine"
	"github.com/lavantien/caroengine/internal/stats"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	ttSizeMB   = flag.Int("hash", 64, "transposition table size in MB")
	bookDir    = flag.String("book", "", "opening book directory (badger); empty disables the book")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	eng, err := caroengine.NewEngine(caroengine.Config{
		TTSizeMB: *ttSizeMB,
		BookDir:  *bookDir,
		StatsSink: func(e stats.Event) {
			log.Printf("[%s] %s depth=%d nodes=%d ttHit=%.1f%% threads=%d",
				e.Type, e.Player, e.Depth, e.Nodes, e.TTHitRate, e.ThreadCount)
		},
	})
	if err != nil {
		log.Fatalf("failed to start engine: %v", err)
	}
	defer eng.Close()

	session := newSession(eng)
	session.run()
}

// session tracks the single in-process game carocli drives against
// the facade, mirroring the teacher's UCI{engine, position} pairing.
type session struct {
	eng *caroengine.Engine
	pos *board.Position
}

func newSession(eng *caroengine.Engine) *session {
	return &session{eng: eng, pos: board.NewPosition()}
}

func (s *session) run() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("carocli ready. commands: newgame | place x y | go <difficulty> [timeMs] | board | ponder start|stop | quit")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "newgame":
			s.pos = board.NewPosition()
			s.eng.ResetForNewGame()
			fmt.Println("ok")
		case "place":
			s.handlePlace(args)
		case "go":
			s.handleGo(args)
		case "board":
			fmt.Print(s.pos.String())
		case "ponder":
			s.handlePonder(args)
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func (s *session) handlePlace(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: place x y")
		return
	}
	x, errX := strconv.Atoi(args[0])
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		fmt.Println("place: x and y must be integers")
		return
	}
	next, err := s.pos.Place(board.NewSquare(x, y))
	if err != nil {
		fmt.Printf("place: %v\n", err)
		return
	}
	s.pos = next
	fmt.Println("ok")
}

func (s *session) handleGo(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: go <difficulty> [timeMs]")
		return
	}
	difficulty, ok := parseDifficulty(args[0])
	if !ok {
		fmt.Printf("unknown difficulty %q (want Braindead|Easy|Medium|Hard|Grandmaster)\n", args[0])
		return
	}
	timeMs := 5000
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			timeMs = v
		}
	}

	side := s.pos.SideToMove
	moveNumber := len(s.pos.Moves)
	result, err := s.eng.BestMove("carocli", s.pos, side, difficulty, timeMs, moveNumber, false)
	if err != nil {
		fmt.Printf("go: %v\n", err)
		return
	}

	next, err := s.pos.PlayMove(result.Move)
	if err != nil {
		fmt.Printf("go: engine returned an illegal move %v: %v\n", result.Move, err)
		return
	}
	s.pos = next

	fmt.Printf("bestmove %d,%d depth %d nodes %d nps %d score %d time %dms\n",
		result.Move.X(), result.Move.Y(), result.DepthAchieved, result.NodesSearched,
		result.NodesPerSecond, result.Score, result.TimeTakenMs)
}

func (s *session) handlePonder(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: ponder start|stop")
		return
	}
	switch args[0] {
	case "start":
		s.eng.StartPondering("carocli", s.pos, engine.Hard)
		fmt.Println("ok")
	case "stop":
		s.eng.StopPondering("carocli")
		fmt.Println("ok")
	default:
		fmt.Printf("unknown ponder subcommand %q\n", args[0])
	}
}

func parseDifficulty(s string) (engine.Difficulty, bool) {
	switch strings.ToLower(s) {
	case "braindead":
		return engine.Braindead, true
	case "easy":
		return engine.Easy, true
	case "medium":
		return engine.Medium, true
	case "hard":
		return engine.Hard, true
	case "grandmaster":
		return engine.Grandmaster, true
	default:
		return 0, false
	}
}

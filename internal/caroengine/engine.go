// Package caroengine implements the Search Facade (spec.md §4.12):
// the single public entry point that orchestrates every other
// component — opening book, ponderer, time manager, the Lazy-SMP
// coordinator, and the VCF pre-filter — into the two synchronous
// operations and one asynchronous one spec.md §6 exposes.
//
// Grounded on the teacher's internal/engine.Engine
// (SearchWithLimits/SearchWithUCILimits orchestration order: book
// probe -> tablebase-analogue probe -> reset -> thread-count branch ->
// iterative deepening -> result) with chess's tablebase probe replaced
// by Caro's VCF pre-filter (spec.md §4.7's "used both as quiescence
// ... and as a pre-filter").
package caroengine

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/book"
	"github.com/lavantien/caroengine/internal/engine"
	"github.com/lavantien/caroengine/internal/ponder"
	"github.com/lavantien/caroengine/internal/smp"
	"github.com/lavantien/caroengine/internal/stats"
	"github.com/lavantien/caroengine/internal/threat"
)

// ErrGameOver is returned by BestMove when the position already has a
// winner or no empty squares remain, per spec.md §7.
var ErrGameOver = errors.New("caroengine: game is already over")

// ErrResourceExhaustion is returned by NewEngine when the requested
// transposition table size cannot be honored. It's fatal: per
// spec.md §7 the engine refuses to start rather than run degraded.
var ErrResourceExhaustion = errors.New("caroengine: failed to allocate transposition table")

// AIMoveResult is the facade's synchronous search result, matching
// spec.md §6's AIMoveResult field-for-field.
type AIMoveResult struct {
	Move            board.Move
	DepthAchieved   int
	NodesSearched   uint64
	NodesPerSecond  uint64
	TimeTakenMs     int64
	Score           int
	PonderingActive bool
	FromBook        bool
	FromVCF         bool
	FromEmergency   bool
}

// Engine is the Search Facade. One Engine is shared by every game the
// host application drives concurrently: the transposition table and
// history heuristics are the shared resources spec.md §5 names, and
// each game gets its own ponderer keyed by game ID.
type Engine struct {
	coord     *smp.Coordinator
	book      *book.Book
	validator *book.Validator
	timeMgr   *engine.TimeManager
	Stats     *stats.Bus

	mu        sync.Mutex
	ponderers map[string]*ponder.Ponderer
}

// Config bundles NewEngine's construction parameters.
type Config struct {
	// TTSizeMB sizes the shared transposition table. Must be positive.
	TTSizeMB int
	// BookDir, if non-empty, opens a badger-backed opening book there.
	BookDir string
	// StatsSink, if non-nil, receives every published stats.Event.
	StatsSink func(stats.Event)
}

// NewEngine constructs a Search Facade around a freshly sized shared
// transposition table. A non-positive TTSizeMB is treated as resource
// exhaustion (spec.md §7): the engine must refuse to start rather than
// run against a zero-capacity table that can never cache anything.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.TTSizeMB <= 0 {
		return nil, ErrResourceExhaustion
	}

	e := &Engine{
		coord:     smp.NewCoordinator(cfg.TTSizeMB, 0),
		timeMgr:   engine.NewTimeManager(),
		ponderers: make(map[string]*ponder.Ponderer),
	}

	if cfg.StatsSink != nil {
		e.Stats = stats.NewBus(cfg.StatsSink)
	}

	if cfg.BookDir != "" {
		b, err := book.Open(cfg.BookDir)
		if err != nil {
			log.Printf("[SearchFacade] opening book unavailable at %q: %v", cfg.BookDir, err)
		} else {
			e.book = b
			e.validator = book.NewValidator()
		}
	}

	return e, nil
}

// Close releases the opening book handle and drains the stats bus.
func (e *Engine) Close() {
	if e.book != nil {
		_ = e.book.Close()
	}
	if e.Stats != nil {
		e.Stats.Close()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.ponderers {
		p.Close()
	}
	e.ponderers = make(map[string]*ponder.Ponderer)
}

// ResetForNewGame clears the shared transposition table and every
// per-game ponderer, per spec.md §6.
func (e *Engine) ResetForNewGame() {
	e.coord.TT.Clear()
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, p := range e.ponderers {
		p.Close()
		delete(e.ponderers, id)
	}
}

func isOver(pos *board.Position) bool {
	if _, won, _ := threat.CheckWin(pos); won {
		return true
	}
	return pos.Popcount() >= board.NumSquares
}

// BestMove is the facade's synchronous entry point (spec.md §12):
//
//  1. Opening-book probe; a validated hit returns immediately.
//  2. Consume a ponder hit if gameID's ponderer already has one, and
//     deduct the time spent handing its result over from this move's
//     budget; how long the background search ran is not measured.
//  3. Ask the time manager for an allocation and max depth.
//  4. Run the VCF pre-filter: play a forced win now, or emergency-block
//     the opponent's own forced win.
//  5. Drive the Lazy-SMP (or single-threaded) iterative-deepening
//     search to the hard deadline.
//  6. If pondering is enabled and the game isn't over, predict the
//     opponent's reply and schedule a ponder search on it.
func (e *Engine) BestMove(gameID string, pos *board.Position, side board.Color, difficulty engine.Difficulty, timeRemainingMs, moveNumber int, ponderingEnabled bool) (AIMoveResult, error) {
	if isOver(pos) {
		return AIMoveResult{}, ErrGameOver
	}

	start := time.Now()
	settings := engine.Settings(difficulty)

	if difficulty == engine.Braindead {
		return e.randomMove(pos, start), nil
	}

	if e.book != nil {
		if mv, ok := e.book.Probe(pos); ok && e.validator.Validate(pos, mv) {
			return AIMoveResult{
				Move:        mv,
				TimeTakenMs: time.Since(start).Milliseconds(),
				FromBook:    true,
			}, nil
		}
	}

	ponderElapsed := e.consumePonderHit(gameID, pos)
	if ponderElapsed > 0 {
		timeRemainingMs -= int(ponderElapsed.Milliseconds())
		if timeRemainingMs < 0 {
			timeRemainingMs = 0
		}
	}

	mp := board.NewMutablePosition(pos)
	candidateCount := engine.GenerateCandidates(mp).Len()
	alloc := e.timeMgr.Allocate(difficulty, timeRemainingMs, moveNumber, candidateCount)
	maxDepth := e.timeMgr.CalcMaxDepth(difficulty)
	deadline := start.Add(alloc.Hard)

	e.coord.VCFDepth = settings.VCFDepth
	if res, ok := e.vcfPreFilter(mp, side, settings.VCFDepth); ok {
		e.publishStats(gameID, side, stats.VCFSearch, 0, 0, settings, ponderingEnabled)
		res.TimeTakenMs = time.Since(start).Milliseconds()
		return res, nil
	}

	result := e.coord.Search(pos, side, maxDepth, deadline, settings.ThreadCount)
	e.timeMgr.ReportTimeUsed(result.Nodes)

	elapsed := time.Since(start)
	nps := uint64(0)
	if elapsed > 0 {
		nps = uint64(float64(result.Nodes) / elapsed.Seconds())
	}

	e.publishStats(gameID, side, stats.MainSearch, result.Depth, result.Nodes, settings, ponderingEnabled)

	out := AIMoveResult{
		Move:            result.BestMove,
		DepthAchieved:   result.Depth,
		NodesSearched:   result.Nodes,
		NodesPerSecond:  nps,
		TimeTakenMs:     elapsed.Milliseconds(),
		Score:           result.Score,
		PonderingActive: false,
	}

	if out.Move == board.NoMove {
		return e.randomMove(pos, start), nil
	}

	if ponderingEnabled && settings.PonderingEnabled {
		e.schedulePonder(gameID, pos, side, out.Move, settings)
		out.PonderingActive = true
	}

	return out, nil
}

// vcfPreFilter implements spec.md §4.7's pre-filter: if side already
// has a forced win, play its first move; if the opponent has one at
// the root (a threat side didn't see coming, e.g. right after a
// ponder miss), emergency-block its first gain square instead.
func (e *Engine) vcfPreFilter(mp *board.MutablePosition, side board.Color, vcfDepth int) (AIMoveResult, bool) {
	if vcfDepth <= 0 {
		return AIMoveResult{}, false
	}
	solver := engine.NewVCFSolver(vcfDepth)

	if seq, found := solver.Solve(mp); found && len(seq) > 0 {
		return AIMoveResult{Move: seq[0], Score: engine.MateScore, FromVCF: true}, true
	}

	for _, th := range threat.DetectThreats(mp, side.Other()) {
		if th.Severity == threat.Five || th.Severity == threat.OpenFour {
			if len(th.Gains) > 0 {
				return AIMoveResult{Move: board.Move{Sq: th.Gains[0]}, Score: -engine.MateScore, FromEmergency: true}, true
			}
		}
	}
	return AIMoveResult{}, false
}

// consumePonderHit checks gameID's ponderer against the move actually
// played (pos's last move) and, on a hit, reports the wall time of the
// HandleOpponentMove/TakeResult hand-off. How long the background
// search itself ran is not measured or reported.
func (e *Engine) consumePonderHit(gameID string, pos *board.Position) time.Duration {
	e.mu.Lock()
	p, ok := e.ponderers[gameID]
	e.mu.Unlock()
	if !ok {
		return 0
	}

	last := pos.LastMove()
	if last == board.NoMove {
		return 0
	}

	started := time.Now()
	state := p.HandleOpponentMove(last)
	if state != ponder.PonderHit {
		return 0
	}
	// The ponder round may still be winding down; TakeResult's caller
	// (the fresh search about to run) benefits from the shared TT
	// regardless of whether a finished Result is available yet.
	_, _ = p.TakeResult()
	return time.Since(started)
}

// schedulePonder predicts the opponent's reply to ourMove (their own
// best reply to it, by the evaluator's lights) and starts a ponderer
// on that continuation.
func (e *Engine) schedulePonder(gameID string, pos *board.Position, side board.Color, ourMove board.Move, settings engine.DifficultySettings) {
	next, err := pos.PlayMove(ourMove)
	if err != nil {
		return
	}

	predicted := e.predictReply(next, side.Other(), settings)
	if predicted == board.NoMove {
		return
	}

	afterPredicted, err := next.PlayMove(predicted)
	if err != nil {
		return
	}

	e.mu.Lock()
	p, ok := e.ponderers[gameID]
	if !ok {
		p = ponder.New(e.coord, settings.ThreadCount)
		e.ponderers[gameID] = p
	}
	e.mu.Unlock()

	p.Start(afterPredicted, side, predicted, settings.MaxDepthCap)
}

// predictReply runs a shallow fixed-depth search from the opponent's
// perspective to guess their most likely reply — cheap relative to the
// ponder search itself, since it only needs to pick a plausible line,
// not prove it's optimal.
func (e *Engine) predictReply(pos *board.Position, side board.Color, settings engine.DifficultySettings) board.Move {
	const predictDepth = 3
	s := engine.NewSearcher(e.coord.TT, settings.VCFDepth, nil)
	result := s.IterativeDeepen(pos, side, predictDepth, time.Now().Add(200*time.Millisecond))
	return result.BestMove
}

// StartPondering begins pondering gameID's position, matching
// spec.md §6's start_pondering(game_id, board, difficulty). pos.SideToMove
// is the opponent, about to move; StartPondering predicts their reply
// and pre-searches the resulting position for our own side.
func (e *Engine) StartPondering(gameID string, pos *board.Position, difficulty engine.Difficulty) {
	settings := engine.Settings(difficulty)
	if !settings.PonderingEnabled {
		return
	}
	opponent := pos.SideToMove
	ourSide := opponent.Other()

	predicted := e.predictReply(pos, opponent, settings)
	if predicted == board.NoMove {
		return
	}
	next, err := pos.PlayMove(predicted)
	if err != nil {
		return
	}

	e.mu.Lock()
	p, ok := e.ponderers[gameID]
	if !ok {
		p = ponder.New(e.coord, settings.ThreadCount)
		e.ponderers[gameID] = p
	}
	e.mu.Unlock()

	p.Start(next, ourSide, predicted, settings.MaxDepthCap)
}

// StopPondering halts gameID's ponderer, if any, safely callable from
// any goroutine.
func (e *Engine) StopPondering(gameID string) {
	e.mu.Lock()
	p, ok := e.ponderers[gameID]
	e.mu.Unlock()
	if ok {
		p.Stop()
	}
}

// randomMove implements spec.md §6's Braindead difficulty and §7's
// time-pressure fallback: a center-biased random legal move, guaranteed
// to exist whenever the position isn't already over.
func (e *Engine) randomMove(pos *board.Position, start time.Time) AIMoveResult {
	mp := board.NewMutablePosition(pos)
	candidates := engine.GenerateCandidates(mp)
	if candidates.Len() == 0 {
		// No stone is near any existing one only on an empty board,
		// which GenerateCandidates already special-cases to the center;
		// reaching here means every near-stone cell is full, so widen to
		// every empty square on the board.
		candidates = board.NewMoveList(board.NumSquares)
		for sq := 0; sq < board.NumSquares; sq++ {
			if pos.IsEmpty(board.Square(sq)) {
				candidates.Add(board.Move{Sq: board.Square(sq)})
			}
		}
	}

	center := board.NewSquare(board.Size/2, board.Size/2)
	bestRadius := board.Size
	var nearCenter []board.Move
	for i := 0; i < candidates.Len(); i++ {
		m := candidates.Get(i)
		d := board.Chebyshev(m.Sq, center)
		if d < bestRadius {
			bestRadius = d
			nearCenter = []board.Move{m}
		} else if d == bestRadius {
			nearCenter = append(nearCenter, m)
		}
	}

	move := nearCenter[rand.Intn(len(nearCenter))]
	return AIMoveResult{
		Move:        move,
		TimeTakenMs: time.Since(start).Milliseconds(),
	}
}

func (e *Engine) publishStats(gameID string, side board.Color, typ stats.EventType, depth int, nodes uint64, settings engine.DifficultySettings, ponderingActive bool) {
	if e.Stats == nil {
		return
	}
	e.Stats.Publish(stats.Event{
		PublisherID:     gameID,
		Player:          side.String(),
		Type:            typ,
		Depth:           depth,
		Nodes:           nodes,
		TTHitRate:       e.coord.TT.HitRate(),
		PonderingActive: ponderingActive,
		VCFDepth:        settings.VCFDepth,
		ThreadCount:     settings.ThreadCount,
		TimestampMs:     time.Now().UnixMilli(),
	})
}

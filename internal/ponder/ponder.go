// Package ponder implements background pondering: while waiting for
// the opponent to move, a worker keeps searching the position we
// expect them to reach, so that when they actually play it the engine
// can answer instantly off an already-deep result.
//
// Grounded on the teacher's long-lived-goroutine-per-resource idiom
// (engine.Engine's worker life cycle, stopFlag atomic.Bool) and the
// pack's Gomoku reference ponder worker
// (other_examples/..._gomoku__backend-ai_player.go.go's ponderCond
// *sync.Cond plus ponderVersion atomic.Uint64 generation guard against
// stale results racing a newer ponder request).
package ponder

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/engine"
	"github.com/lavantien/caroengine/internal/smp"
)

// State is the ponderer's externally observable lifecycle state.
type State int

const (
	Idle State = iota
	Pondering
	PonderHit
	PonderMiss
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Pondering:
		return "Pondering"
	case PonderHit:
		return "PonderHit"
	case PonderMiss:
		return "PonderMiss"
	default:
		return "?"
	}
}

// stopGrace is the maximum time StopPondering blocks waiting for the
// background worker to actually exit, per spec.md §8's pondering
// latency bound.
const stopGrace = time.Second

// quickVCFDepth bounds the cheap pre-check Start runs before forking a
// full background search, per spec.md §4.11.
const quickVCFDepth = 4

// isQuiet reports whether pos (side to move) has no forced win-by-VCF
// within quickVCFDepth plies. A position that's already tactically
// resolved gains nothing from a full Lazy-SMP ponder search — the VCF
// solver finds the same forced line near-instantly during the real
// search anyway — so Start skips forking one in that case.
func isQuiet(pos *board.Position, depth int) bool {
	mp := board.NewMutablePosition(pos)
	solver := engine.NewVCFSolver(depth)
	_, found := solver.Solve(mp)
	return !found
}

// Ponderer owns one background search goroutine that runs against the
// position it expects the opponent to reach (root played with the
// move we think they'll make). Every call into it is generation
// guarded: a stale worker that finishes after a newer Start/Stop
// simply discards its result instead of racing the live one.
type Ponderer struct {
	coord       *smp.Coordinator
	threadCount int

	mu         sync.Mutex
	cond       *sync.Cond
	state      State
	version    atomic.Uint64
	pending    bool
	root       *board.Position
	side       board.Color
	expectedMv board.Move
	maxDepth   int

	result    engine.Result
	hasResult bool

	roundDone chan struct{} // closed by loop() when the current search returns

	wg sync.WaitGroup
}

// New builds a ponderer sharing coord's transposition table, so
// whatever the background worker discovers is immediately visible to
// the real search once pondering stops.
func New(coord *smp.Coordinator, threadCount int) *Ponderer {
	p := &Ponderer{coord: coord, threadCount: threadCount}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(1)
	go p.loop()
	return p
}

// loop is the single long-lived background worker. It blocks on cond
// until a new ponder request arrives, then searches until told to
// stop or until its own generation goes stale.
func (p *Ponderer) loop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for !p.pending {
			p.cond.Wait()
		}
		if p.root == nil {
			p.mu.Unlock()
			return
		}
		root := p.root
		side := p.side
		expectedMv := p.expectedMv
		maxDepth := p.maxDepth
		version := p.version.Load()
		done := p.roundDone
		p.pending = false
		p.mu.Unlock()

		result := p.coord.Search(root, side, maxDepth, time.Now().Add(24*time.Hour), p.threadCount)

		p.mu.Lock()
		if p.version.Load() == version {
			p.result = result
			p.hasResult = true
		}
		_ = expectedMv
		p.mu.Unlock()
		if done != nil {
			close(done)
		}
	}
}

// Start begins pondering the position reached by playing expectedMove
// from root, the line the engine expects the opponent to answer with.
// maxDepth bounds the ponder search the same way it bounds a normal
// search at this difficulty.
func (p *Ponderer) Start(root *board.Position, side board.Color, expectedMove board.Move, maxDepth int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.version.Add(1)
	p.state = Pondering
	p.root = root
	p.side = side
	p.expectedMv = expectedMove
	p.maxDepth = maxDepth
	p.hasResult = false

	if !isQuiet(root, quickVCFDepth) {
		// The predicted position is already tactically resolved (a
		// forced four-sequence exists for whoever is to move); forking
		// a full Lazy-SMP search over it wastes the idle window on a
		// line the VCF solver already solves near-instantly on demand.
		p.pending = false
		return
	}

	p.pending = true
	p.roundDone = make(chan struct{})
	p.coord.Stop.Store(false)
	p.cond.Signal()
}

// HandleOpponentMove reports the move the opponent actually played.
// Either way the in-flight ponder search is stopped and its generation
// invalidated, so a search still running at this point delivers no
// result. On a match it reports a hit and keeps a result that had
// already finished; otherwise any stored result is discarded as a miss
// and the caller must search fresh.
func (p *Ponderer) HandleOpponentMove(actual board.Move) State {
	p.mu.Lock()
	defer p.mu.Unlock()

	hit := actual == p.expectedMv
	p.version.Add(1) // invalidate the in-flight worker's generation
	p.coord.Stop.Store(true)
	if hit {
		p.state = PonderHit
		return PonderHit
	}
	p.state = PonderMiss
	p.hasResult = false
	return PonderMiss
}

// TakeResult returns the ponder search's result if one is ready and
// still current (state is PonderHit), consuming it so it's only ever
// handed out once.
func (p *Ponderer) TakeResult() (engine.Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PonderHit || !p.hasResult {
		return engine.Result{}, false
	}
	r := p.result
	p.hasResult = false
	return r, true
}

// Stop halts any in-flight ponder search and blocks (up to stopGrace)
// until the background worker has actually stopped searching, so the
// caller can safely reuse the shared transposition table for a
// foreground search immediately afterward.
func (p *Ponderer) Stop() {
	p.mu.Lock()
	p.version.Add(1)
	p.state = Idle
	p.pending = false
	p.coord.Stop.Store(true)
	done := p.roundDone
	p.mu.Unlock()

	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(stopGrace):
	}
}

// Close permanently shuts down the background worker. The Ponderer
// must not be used after Close.
func (p *Ponderer) Close() {
	p.mu.Lock()
	p.version.Add(1)
	p.root = nil
	p.pending = true
	p.coord.Stop.Store(true)
	p.cond.Signal()
	p.mu.Unlock()
	p.wg.Wait()
}

// CurrentState reports the ponderer's current lifecycle state.
func (p *Ponderer) CurrentState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Package smp implements Lazy-SMP: several search workers sharing one
// transposition table, racing to the same deadline. Grounded on the
// teacher's engine.go SearchWithLimits/workerSearch goroutine fan-out
// (buffered WorkerResult channel, sync.WaitGroup, depth-staggered
// worker start, stopFlag-triggered early exit on a found mate).
package smp

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/engine"
)

// Coordinator owns the shared transposition table and fans a search
// out across ThreadCount workers. ThreadCount == 0 is the explicit
// regression guard for the spec's named "thread count 0 ignored" bug:
// Search must call the searcher inline and never touch the goroutine
// path at all in that case.
type Coordinator struct {
	TT       *engine.TranspositionTable
	VCFDepth int
	Stop     *atomic.Bool
}

// NewCoordinator builds a coordinator around a freshly sized shared TT.
func NewCoordinator(ttSizeMB, vcfDepth int) *Coordinator {
	return &Coordinator{
		TT:       engine.NewTranspositionTable(ttSizeMB),
		VCFDepth: vcfDepth,
		Stop:     &atomic.Bool{},
	}
}

// helperDepthOffset staggers helper workers to search one or two plies
// deeper than the nominal target, the way the teacher's workerSearch
// assigns higher worker IDs a deeper starting depth — since every
// worker here shares one TT, a helper reaching slightly past the
// master's depth still seeds useful transpositions for it.
func helperDepthOffset(workerID int) int {
	switch {
	case workerID >= 6:
		return 2
	case workerID >= 3:
		return 1
	default:
		return 0
	}
}

// Search runs the searcher across threadCount workers sharing c.TT.
// threadCount <= 1 runs a single inline searcher with zero goroutines
// spawned — this is the bug-fix path: the teacher's engine never
// special-cased NumWorkers == 0, so a misconfigured pool there
// silently ran zero workers and returned a zero-value move. Caro
// never reproduces that.
//
// Worker 0 is the master: its IterativeDeepen runs to maxDepth and its
// Result is the only one returned. Workers 1..N-1 are helpers searching
// depth-staggered copies of the same position; they communicate with
// the master exclusively through c.TT (per spec.md §4.8's design
// invariant that "the reported depth, nodes, and PV are the master's,
// NOT a helper's"). Helpers are cancelled the moment the master returns.
func (c *Coordinator) Search(root *board.Position, side board.Color, maxDepth int, deadline time.Time, threadCount int) engine.Result {
	c.Stop.Store(false)
	c.TT.NewSearch()

	if threadCount <= 1 {
		s := engine.NewSearcher(c.TT, c.VCFDepth, c.Stop)
		return s.IterativeDeepen(root, side, maxDepth, deadline)
	}

	var wg sync.WaitGroup
	for w := 1; w < threadCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s := engine.NewSearcher(c.TT, c.VCFDepth, c.Stop)
			workerDepth := maxDepth + helperDepthOffset(workerID)
			if workerDepth > engine.MaxPly {
				workerDepth = engine.MaxPly
			}
			s.IterativeDeepen(root, side, workerDepth, deadline)
		}(w)
	}

	master := engine.NewSearcher(c.TT, c.VCFDepth, c.Stop)
	result := master.IterativeDeepen(root, side, maxDepth, deadline)

	c.Stop.Store(true)
	wg.Wait()
	return result
}

package engine

import "time"

// TimeAllocation is the result of Allocate, matching spec.md §4.9's
// {soft, hard, optimal, is_emergency, complexity_mul} tuple.
type TimeAllocation struct {
	Soft          time.Duration
	Hard          time.Duration
	Optimal       time.Duration
	IsEmergency   bool
	ComplexityMul float64
}

// TimeManager handles time allocation for a move, ported from the
// teacher's timeman.go (optimum/maximum split, sudden-death move-count
// estimate, stability-based shrink/grow) and re-signatured from UCI's
// wtime/btime/inc fields to spec.md's allocate(difficulty,
// time_remaining_ms, move_number, candidate_count).
type TimeManager struct {
	allocation TimeAllocation
	startTime  time.Time

	// npsEMA tracks measured nodes-per-second as an exponential moving
	// average, the way the teacher tracks avgScore, feeding
	// CalcMaxDepth's reachable-depth estimate.
	npsEMA float64
}

// NewTimeManager creates a time manager with no search in progress.
func NewTimeManager() *TimeManager {
	return &TimeManager{npsEMA: 50_000}
}

// Allocate computes soft/hard/optimal bounds for the move about to be
// searched. candidateCount scales the complexity multiplier: more live
// candidates (busier board, more live threats) earns extra time.
func (tm *TimeManager) Allocate(d Difficulty, timeRemainingMs, moveNumber, candidateCount int) TimeAllocation {
	tm.startTime = time.Now()

	remaining := time.Duration(timeRemainingMs) * time.Millisecond
	emergency := timeRemainingMs < 10_000

	movesToGo := 50 - moveNumber/4
	if movesToGo < 10 {
		movesToGo = 10
	}
	if movesToGo > 50 {
		movesToGo = 50
	}

	complexityMul := 1.0 + float64(candidateCount)/200.0
	if complexityMul > 2.0 {
		complexityMul = 2.0
	}

	optimal := remaining / time.Duration(movesToGo)
	optimal = time.Duration(float64(optimal) * complexityMul)

	if moveNumber < 8 {
		optimal = optimal * 85 / 100
	}

	hard := optimal * 2
	maxFromRemaining := remaining * 25 / 100
	if hard > maxFromRemaining {
		hard = maxFromRemaining
	}

	safety := remaining * 95 / 100
	if hard > safety {
		hard = safety
	}

	if optimal < 10*time.Millisecond {
		optimal = 10 * time.Millisecond
	}
	if hard < 50*time.Millisecond {
		hard = 50 * time.Millisecond
	}
	if emergency {
		hard = remaining / 4
		optimal = hard / 2
	}

	tm.allocation = TimeAllocation{
		Soft:          optimal,
		Hard:          hard,
		Optimal:       optimal,
		IsEmergency:   emergency,
		ComplexityMul: complexityMul,
	}
	return tm.allocation
}

// CalcMaxDepth estimates the deepest iteration reachable in the
// allocated hard time at the measured nodes-per-second rate, capped at
// the difficulty's MaxDepthCap.
func (tm *TimeManager) CalcMaxDepth(d Difficulty) int {
	maxDepth := Settings(d).MaxDepthCap
	seconds := tm.allocation.Hard.Seconds()
	budget := seconds * tm.npsEMA
	depth := 1
	nodes := 1.0
	for depth < maxDepth {
		nodes *= 4.5 // branching factor approximation after move ordering
		if nodes > budget {
			break
		}
		depth++
	}
	return depth
}

// Elapsed returns the time elapsed since Allocate was called.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// ShouldStop reports whether the hard bound has elapsed.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.allocation.Hard
}

// PastOptimum reports whether the soft bound has elapsed.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.allocation.Soft
}

// AdjustForStability shrinks the soft bound when the best move has
// been stable across consecutive iterations.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.allocation.Soft = tm.allocation.Soft * 40 / 100
	case stability >= 4:
		tm.allocation.Soft = tm.allocation.Soft * 60 / 100
	case stability >= 2:
		tm.allocation.Soft = tm.allocation.Soft * 80 / 100
	}
}

// AdjustForInstability grows the soft bound (up to the hard bound)
// when the best move keeps changing between iterations.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.allocation.Soft = tm.allocation.Soft * 200 / 100
	case changes >= 2:
		tm.allocation.Soft = tm.allocation.Soft * 150 / 100
	}
	if tm.allocation.Soft > tm.allocation.Hard {
		tm.allocation.Soft = tm.allocation.Hard
	}
}

// ReportTimeUsed folds the nodes per second observed since the last
// Allocate into the NPS EMA (0.7 old, 0.3 new), which CalcMaxDepth
// uses for future depth estimates.
func (tm *TimeManager) ReportTimeUsed(nodesSearched uint64) {
	elapsed := tm.Elapsed().Seconds()
	if elapsed <= 0 {
		return
	}
	observed := float64(nodesSearched) / elapsed
	tm.npsEMA = tm.npsEMA*0.7 + observed*0.3
}

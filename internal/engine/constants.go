// Package engine implements Caro's search core: move generation and
// ordering, the lockless transposition table, the alpha-beta/PVS
// searcher with aspiration windows and null-move/LMR pruning, the VCF
// quiescence solver, correction history and time management. Grounded
// throughout on the teacher's internal/engine package, re-keyed from
// chess positions/pieces to Caro stone placements.
package engine

import "math"

// MateScore marks a forced win; scores are adjusted toward/away from
// it by ply distance on TT store/load, matching the teacher's
// AdjustScoreToTT/AdjustScoreFromTT idiom in transposition.go.
const MateScore = 1_000_000_000

// Infinity bounds the alpha-beta window at the root.
const Infinity = MateScore + 1

// MaxPly bounds every per-ply array (search stack, killers, PV).
const MaxPly = 128

// NullMoveReduction is the depth reduction (R) applied by null-move
// pruning. Caro has no zugzwang analogue to chess's endgame caution,
// so a fixed R holds (spec.md §4.6) rather than the teacher's
// depth-scaled verification-search reduction.
const NullMoveReduction = 2

// AspirationDelta is the initial half-width of the aspiration window
// around the previous iteration's score; it doubles on every
// fail-high/fail-low re-search (spec.md §4.6).
const AspirationDelta = 50

// lmrReductions is a precomputed logarithmic reduction table, shaped
// like the teacher's worker.go init() table: the reduction is
// log(depth)*log(moveCount)/2, truncated to an integer.
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(math.Log(float64(d)) * math.Log(float64(m)) / 2)
		}
	}
}

func lmrReduction(depth, moveCount int) int {
	if depth >= 64 {
		depth = 63
	}
	if moveCount >= 64 {
		moveCount = 63
	}
	if depth < 1 || moveCount < 1 {
		return 0
	}
	return lmrReductions[depth][moveCount]
}

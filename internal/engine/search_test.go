package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearcherForTest() *Searcher {
	tt := NewTranspositionTable(1)
	return NewSearcher(tt, 6, &atomic.Bool{})
}

// TestIterativeDeepenFindsImmediateWin: with an open four already on
// the board, completing it wins outright — the searcher must pick one
// of the two completion squares even at shallow depth.
func TestIterativeDeepenFindsImmediateWin(t *testing.T) {
	pos := playAll(t, [][2]int{
		{4, 7}, {0, 0},
		{5, 7}, {0, 1},
		{6, 7}, {0, 2},
		{7, 7}, {0, 3},
	})
	s := newSearcherForTest()
	result := s.IterativeDeepen(pos, board.Red, 4, time.Now().Add(2*time.Second))

	winA := board.NewSquare(3, 7)
	winB := board.NewSquare(8, 7)
	assert.True(t, result.BestMove.Sq == winA || result.BestMove.Sq == winB,
		"expected the search to play one of the two winning completion squares, got %v", result.BestMove)
	assert.Greater(t, result.Score, MateScore-MaxPly)
}

// TestIterativeDeepenBlocksOpponentOpenFour: Blue holds an open four;
// Red to move must block one of the two ends or lose next ply.
func TestIterativeDeepenBlocksOpponentOpenFour(t *testing.T) {
	pos := playAll(t, [][2]int{
		{0, 0}, {4, 7},
		{14, 0}, {5, 7},
		{0, 14}, {6, 7},
		{14, 14}, {7, 7},
	})
	s := newSearcherForTest()
	result := s.IterativeDeepen(pos, board.Red, 4, time.Now().Add(2*time.Second))

	blockA := board.NewSquare(3, 7)
	blockB := board.NewSquare(8, 7)
	assert.True(t, result.BestMove.Sq == blockA || result.BestMove.Sq == blockB,
		"expected the search to block Blue's open four, got %v", result.BestMove)
}

// TestIterativeDeepenRespectsDeadline ensures a near-past deadline
// still returns a usable (if shallow) result rather than hanging.
func TestIterativeDeepenRespectsDeadline(t *testing.T) {
	pos := board.NewPosition()
	s := newSearcherForTest()
	result := s.IterativeDeepen(pos, board.Red, 20, time.Now().Add(-time.Second))

	assert.Equal(t, board.NoMove, result.BestMove, "a deadline already passed before the first iteration leaves no completed result")
}

// TestIterativeDeepenPopulatesTranspositionTable confirms the searcher
// actually exercises the shared TT rather than bypassing it.
func TestIterativeDeepenPopulatesTranspositionTable(t *testing.T) {
	pos := playAll(t, [][2]int{
		{7, 7}, {3, 3},
		{8, 8}, {3, 4},
	})
	s := newSearcherForTest()
	s.IterativeDeepen(pos, board.Red, 4, time.Now().Add(2*time.Second))

	assert.Greater(t, s.TT.HitRate(), 0.0, "a multi-ply search should reuse at least one TT entry across branches")
}

// TestIterativeDeepenStabilityTracksRepeatedBestMove: Red holds an open
// four, so the depth-1 iteration already finds the mate and ends the
// loop; with only one completed iteration Stability stays at 0.
func TestIterativeDeepenStabilityTracksRepeatedBestMove(t *testing.T) {
	pos := playAll(t, [][2]int{
		{4, 7}, {0, 0},
		{5, 7}, {0, 1},
		{6, 7}, {0, 2},
		{7, 7}, {0, 3},
	})
	s := newSearcherForTest()
	result := s.IterativeDeepen(pos, board.Red, 6, time.Now().Add(2*time.Second))
	assert.Equal(t, 0, result.Stability)
}

// TestNullMoveAllowedRejectsWhenOpponentHoldsOpenFour verifies the
// search never skips a real turn (null move) while the opponent is one
// ply from winning.
func TestNullMoveAllowedRejectsWhenOpponentHoldsOpenFour(t *testing.T) {
	pos := playAll(t, [][2]int{
		{0, 0}, {4, 7},
		{0, 1}, {5, 7},
		{0, 2}, {6, 7},
		{0, 3}, {7, 7},
		{0, 4}, {0, 5}, // pad so it's Red to move at ply 1 inside negamax
	})
	mp := board.NewMutablePosition(pos)
	s := newSearcherForTest()
	allowed := s.nullMoveAllowed(mp, 4, 1, board.Red)
	assert.False(t, allowed)
}

func TestNullMoveAllowedAcceptsQuietPosition(t *testing.T) {
	pos := playAll(t, [][2]int{
		{7, 7}, {3, 3},
	})
	mp := board.NewMutablePosition(pos)
	s := newSearcherForTest()
	allowed := s.nullMoveAllowed(mp, 4, 1, board.Red)
	assert.True(t, allowed)
}

func TestQuiescenceReturnsMateOnVCFWin(t *testing.T) {
	pos := playAll(t, [][2]int{
		{4, 7}, {0, 0},
		{5, 7}, {0, 1},
		{6, 7}, {0, 2},
	})
	mp := board.NewMutablePosition(pos)
	s := newSearcherForTest()
	score, cancelled := s.quiescence(mp, 2, -Infinity, Infinity)
	require.False(t, cancelled)
	assert.Greater(t, score, MateScore-MaxPly)
}

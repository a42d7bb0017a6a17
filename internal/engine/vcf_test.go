package engine

import (
	"testing"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mutableFrom(t *testing.T, coords [][2]int) *board.MutablePosition {
	t.Helper()
	return board.NewMutablePosition(playAll(t, coords))
}

// TestVCFSolvesSimpleOpenFour: Red already holds an open three; playing
// the gain square creates an open four, which is an unstoppable win
// (defender can only block one end).
func TestVCFSolvesSimpleOpenFour(t *testing.T) {
	mp := mutableFrom(t, [][2]int{
		{4, 7}, {0, 0},
		{5, 7}, {0, 1},
		{6, 7}, {0, 2},
	})
	solver := NewVCFSolver(6)
	seq, found := solver.Solve(mp)
	require.True(t, found, "an open three to move should find a forced win via VCF")
	assert.NotEmpty(t, seq)
}

// TestVCFFindsNothingOnQuietPosition ensures the solver doesn't claim a
// forced win where none exists.
func TestVCFFindsNothingOnQuietPosition(t *testing.T) {
	mp := mutableFrom(t, [][2]int{
		{7, 7}, {0, 0},
	})
	solver := NewVCFSolver(6)
	_, found := solver.Solve(mp)
	assert.False(t, found)
}

// TestVCFRestoresBoardOnFailure checks mp is left exactly as it started
// after an unsuccessful search — the make/unmake discipline search.go
// relies on for every recursive call.
func TestVCFRestoresBoardOnFailure(t *testing.T) {
	mp := mutableFrom(t, [][2]int{
		{7, 7}, {0, 0},
	})
	hashBefore := mp.Hash
	sideBefore := mp.SideToMove

	solver := NewVCFSolver(6)
	solver.Solve(mp)

	assert.Equal(t, hashBefore, mp.Hash)
	assert.Equal(t, sideBefore, mp.SideToMove)
}

// TestVCFRestoresBoardOnSuccess checks the same invariant holds even
// when a forced win is found.
func TestVCFRestoresBoardOnSuccess(t *testing.T) {
	mp := mutableFrom(t, [][2]int{
		{4, 7}, {0, 0},
		{5, 7}, {0, 1},
		{6, 7}, {0, 2},
	})
	hashBefore := mp.Hash

	solver := NewVCFSolver(6)
	solver.Solve(mp)

	assert.Equal(t, hashBefore, mp.Hash)
}

// TestVCFRespectsMaxDepth: a zero-depth solver can never find anything,
// even from an immediately winning position, since it never tries a
// single move.
func TestVCFRespectsMaxDepth(t *testing.T) {
	mp := mutableFrom(t, [][2]int{
		{4, 7}, {0, 0},
		{5, 7}, {0, 1},
		{6, 7}, {0, 2},
	})
	solver := NewVCFSolver(0)
	_, found := solver.Solve(mp)
	assert.False(t, found)
}

func TestForcingBlockSquaresUnionsFourThreats(t *testing.T) {
	mp := mutableFrom(t, [][2]int{
		{4, 7}, {0, 0},
		{5, 7}, {0, 1},
		{6, 7}, {0, 2},
		{7, 7}, {0, 3},
	})
	squares := forcingBlockSquares(mp, board.Red)
	assert.True(t, squares[board.NewSquare(3, 7)])
	assert.True(t, squares[board.NewSquare(8, 7)])
}

package engine

import (
	"testing"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playAll(t *testing.T, coords [][2]int) *board.Position {
	t.Helper()
	pos := board.NewPosition()
	for _, c := range coords {
		next, err := pos.Place(board.NewSquare(c[0], c[1]))
		require.NoError(t, err)
		pos = next
	}
	return pos
}

// TestScoreMoveTTMoveOutranksQuietMove: the transposition move scores
// TTMoveScore, above a quiet move (only MustBlock and Winning squares
// rank higher).
func TestScoreMoveTTMoveOutranksQuietMove(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()
	tt := board.NewMove(7, 7)
	other := board.NewMove(3, 3)

	ctx := scoreContext{
		pos:    pos,
		side:   board.Red,
		ttMove: tt,
	}
	assert.Greater(t, mo.scoreMove(ctx, tt), mo.scoreMove(ctx, other))
	assert.Equal(t, TTMoveScore, mo.scoreMove(ctx, tt))
}

// TestScoreMoveMustBlockBeatsThreatCreate verifies the priority ladder:
// a square that blocks the opponent's open four outranks a square that
// merely creates our own open three.
func TestScoreMoveMustBlockBeatsThreatCreate(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()
	blockSq := board.NewSquare(0, 0)
	createSq := board.NewSquare(5, 5)

	ctx := scoreContext{
		pos:       pos,
		side:      board.Red,
		mustBlock: map[board.Square]bool{blockSq: true},
		creates:   map[board.Square]bool{createSq: true},
	}
	scoreBlock := mo.scoreMove(ctx, board.Move{Sq: blockSq})
	scoreCreate := mo.scoreMove(ctx, board.Move{Sq: createSq})
	assert.Greater(t, scoreBlock, scoreCreate)
}

// TestMustBlockSquaresDetectsOpponentOpenFour checks the live-board
// wiring into threat.DetectThreats, not just the static score ladder.
func TestMustBlockSquaresDetectsOpponentOpenFour(t *testing.T) {
	// Blue builds an open four on row y=7; Red stones are elsewhere.
	pos := playAll(t, [][2]int{
		{0, 0}, {4, 7},
		{0, 1}, {5, 7},
		{0, 2}, {6, 7},
		{0, 3}, {7, 7},
	})
	blocks := mustBlockSquares(pos, board.Red)
	assert.True(t, blocks[board.NewSquare(3, 7)])
	assert.True(t, blocks[board.NewSquare(8, 7)])
}

func TestUpdateKillersKeepsTwoMostRecent(t *testing.T) {
	mo := NewMoveOrderer()
	m1 := board.NewMove(1, 1)
	m2 := board.NewMove(2, 2)
	m3 := board.NewMove(3, 3)

	mo.UpdateKillers(m1, 5)
	mo.UpdateKillers(m2, 5)
	assert.Equal(t, m2, mo.killers[5][0])
	assert.Equal(t, m1, mo.killers[5][1])

	mo.UpdateKillers(m3, 5)
	assert.Equal(t, m3, mo.killers[5][0])
	assert.Equal(t, m2, mo.killers[5][1])
}

func TestUpdateKillersIgnoresDuplicate(t *testing.T) {
	mo := NewMoveOrderer()
	m1 := board.NewMove(1, 1)
	mo.UpdateKillers(m1, 5)
	mo.UpdateKillers(m1, 5)
	assert.Equal(t, board.NoMove, mo.killers[5][1], "re-recording the same killer must not shift the slot")
}

func TestUpdateHistoryRewardsAndPenalizes(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(4, 4)
	mo.UpdateHistory(m, 4, true)
	assert.Equal(t, 16, mo.history[m.Sq])

	mo.UpdateHistory(m, 4, false)
	assert.Equal(t, 0, mo.history[m.Sq])
}

func TestUpdateCounterMoveRecordsReply(t *testing.T) {
	mo := NewMoveOrderer()
	prev := board.NewMove(1, 1)
	reply := board.NewMove(2, 2)
	mo.UpdateCounterMove(prev, reply)
	assert.Equal(t, reply, mo.counterMoves[prev.Sq])
}

func TestUpdateCounterMoveIgnoresNoMove(t *testing.T) {
	mo := NewMoveOrderer()
	reply := board.NewMove(2, 2)
	mo.UpdateCounterMove(board.NoMove, reply)
	for _, cm := range mo.counterMoves {
		assert.Equal(t, board.NoMove, cm)
	}
}

func TestSortMovesDescendingByScore(t *testing.T) {
	moves := board.NewMoveList(3)
	moves.Add(board.NewMove(0, 0))
	moves.Add(board.NewMove(1, 1))
	moves.Add(board.NewMove(2, 2))
	scores := []int{10, 30, 20}

	SortMoves(moves, scores)

	assert.Equal(t, []int{30, 20, 10}, scores)
	assert.Equal(t, board.NewMove(1, 1), moves.Get(0))
}

func TestPickMoveSelectsBestRemaining(t *testing.T) {
	moves := board.NewMoveList(3)
	moves.Add(board.NewMove(0, 0))
	moves.Add(board.NewMove(1, 1))
	moves.Add(board.NewMove(2, 2))
	scores := []int{10, 30, 20}

	PickMove(moves, scores, 0)
	assert.Equal(t, board.NewMove(1, 1), moves.Get(0))
	assert.Equal(t, 30, scores[0])
}

func TestClearHalvesHistoryAndResetsKillers(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(4, 4)
	mo.UpdateHistory(m, 10, true)
	mo.UpdateKillers(m, 2)

	before := mo.history[m.Sq]
	mo.Clear()

	assert.Equal(t, before/2, mo.history[m.Sq])
	assert.Equal(t, board.NoMove, mo.killers[2][0])
}

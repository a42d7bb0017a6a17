package ponder

import (
	"testing"
	"time"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/smp"
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

func newTestPonderer() *Ponderer {
	coord := smp.NewCoordinator(1, 4)
	return New(coord, 1)
}

func TestStartTransitionsToPondering(t *testing.T) {
	p := newTestPonderer()
	defer p.Close()

	pos := board.NewPosition()
	p.Start(pos, board.Blue, board.NewMove(7, 7), 3)
	assert.Equal(t, Pondering, p.CurrentState())
	p.Stop()
}

func TestHandleOpponentMoveMatchingExpectationIsAHit(t *testing.T) {
	p := newTestPonderer()
	defer p.Close()

	pos := board.NewPosition()
	expected := board.NewMove(7, 7)
	p.Start(pos, board.Blue, expected, 3)

	state := p.HandleOpponentMove(expected)
	assert.Equal(t, PonderHit, state)
	assert.Equal(t, PonderHit, p.CurrentState())
}

func TestHandleOpponentMoveMismatchIsAMiss(t *testing.T) {
	p := newTestPonderer()
	defer p.Close()

	pos := board.NewPosition()
	p.Start(pos, board.Blue, board.NewMove(7, 7), 3)

	state := p.HandleOpponentMove(board.NewMove(0, 0))
	assert.Equal(t, PonderMiss, state)

	_, ok := p.TakeResult()
	assert.False(t, ok, "a mismatched ponder must never hand back a stale result")
}

func TestTakeResultOnlyServedOnceAfterHit(t *testing.T) {
	p := newTestPonderer()
	defer p.Close()

	pos := playAll(t, [][2]int{{7, 7}})
	expected := board.NewMove(8, 8)
	p.Start(pos, board.Blue, expected, 4)

	// give the background worker a moment to finish a shallow search
	time.Sleep(50 * time.Millisecond)
	p.HandleOpponentMove(expected)

	p.TakeResult()
	_, second := p.TakeResult()
	assert.False(t, second, "a result must not be handed out twice")
}

func TestStopReturnsWithinGracePeriod(t *testing.T) {
	p := newTestPonderer()
	defer p.Close()

	pos := board.NewPosition()
	p.Start(pos, board.Blue, board.NewMove(7, 7), 20)

	start := time.Now()
	p.Stop()
	elapsed := time.Since(start)
	assert.LessOrEqual(t, elapsed, 2*stopGrace, "Stop must respect its bounded grace period")
	assert.Equal(t, Idle, p.CurrentState())
}

func TestCloseStopsBackgroundWorkerPermanently(t *testing.T) {
	p := newTestPonderer()
	pos := board.NewPosition()
	p.Start(pos, board.Blue, board.NewMove(7, 7), 3)
	p.Close()
	// a Start after Close would deadlock the background loop; merely
	// reaching this point without hanging confirms the worker exited.
}

package engine

import (
	"testing"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/stretchr/testify/assert"
)

func TestGenerateCandidatesEmptyBoardReturnsCenterOnly(t *testing.T) {
	pos := board.NewPosition()
	moves := GenerateCandidates(pos)
	assert.Equal(t, 1, moves.Len())
	assert.Equal(t, board.NewMove(board.Size/2, board.Size/2), moves.Get(0))
}

func TestGenerateCandidatesStaysWithinRadius(t *testing.T) {
	pos := playAll(t, [][2]int{{7, 7}, {0, 0}})
	moves := GenerateCandidates(pos)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		withinStone := board.Chebyshev(m.Sq, board.NewSquare(7, 7)) <= CandidateRadius
		withinBlue := board.Chebyshev(m.Sq, board.NewSquare(0, 0)) <= CandidateRadius
		assert.True(t, withinStone || withinBlue, "candidate %v is outside radius of every stone", m)
	}
}

func TestGenerateCandidatesExcludesOccupiedSquares(t *testing.T) {
	pos := playAll(t, [][2]int{{7, 7}, {7, 8}})
	moves := GenerateCandidates(pos)
	for i := 0; i < moves.Len(); i++ {
		assert.True(t, pos.IsEmpty(moves.Get(i).Sq))
	}
}

func TestGenerateCandidatesIncludesNeighborOfEachStone(t *testing.T) {
	pos := playAll(t, [][2]int{{2, 2}, {12, 12}})
	moves := GenerateCandidates(pos)

	found2 := false
	found12 := false
	for i := 0; i < moves.Len(); i++ {
		sq := moves.Get(i).Sq
		if board.Chebyshev(sq, board.NewSquare(2, 2)) == 1 {
			found2 = true
		}
		if board.Chebyshev(sq, board.NewSquare(12, 12)) == 1 {
			found12 = true
		}
	}
	assert.True(t, found2)
	assert.True(t, found12)
}

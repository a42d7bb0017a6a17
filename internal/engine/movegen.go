package engine

import "github.com/lavantien/caroengine/internal/board"

// PositionReader is the cell/bitboard surface candidate generation and
// search need; board.Position and board.MutablePosition both satisfy
// it. There is no chess movegen.go analogue to port — Caro has no
// piece-move rules, only stone placement — so this generalizes the
// teacher's Bitboard225.ForEach scanning idiom (used throughout
// internal/board) to "every empty cell near an existing stone".
type PositionReader interface {
	Cell(sq board.Square) board.Color
	Bitboard(c board.Color) board.Bitboard225
}

// CandidateRadius is the Chebyshev distance around existing stones
// within which empty cells are considered playable. Cells further out
// can never participate in a five-in-a-row with the current stones at
// any plausible search depth, so excluding them keeps the branching
// factor tractable on a 225-cell board.
const CandidateRadius = 2

// GenerateCandidates returns every empty square within CandidateRadius
// of an existing stone, or the board center alone on an empty board.
func GenerateCandidates(pos PositionReader) *board.MoveList {
	occupied := pos.Bitboard(board.Red).Or(pos.Bitboard(board.Blue))
	if occupied.Empty() {
		list := board.NewMoveList(1)
		list.Add(board.NewMove(board.Size/2, board.Size/2))
		return list
	}

	var seen [board.NumSquares]bool
	occupied.ForEach(func(sq board.Square) {
		x0, y0 := sq.X(), sq.Y()
		for dy := -CandidateRadius; dy <= CandidateRadius; dy++ {
			for dx := -CandidateRadius; dx <= CandidateRadius; dx++ {
				x, y := x0+dx, y0+dy
				if !board.InBounds(x, y) {
					continue
				}
				nsq := board.NewSquare(x, y)
				if pos.Cell(nsq) == board.Empty {
					seen[nsq] = true
				}
			}
		}
	})

	list := board.NewMoveList(32)
	for sq := 0; sq < board.NumSquares; sq++ {
		if seen[sq] {
			list.Add(board.Move{Sq: board.Square(sq)})
		}
	}
	return list
}

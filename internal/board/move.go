package board

import "fmt"

// Move is a single stone placement, identified by its target square.
// Unlike chess, Caro moves never capture or promote, so the teacher's
// packed from/to/flags encoding collapses to a single square.
type Move struct {
	Sq Square
}

// NoMove is the sentinel "no move" value.
var NoMove = Move{Sq: NoSquare}

// NewMove builds a Move from board coordinates.
func NewMove(x, y int) Move {
	return Move{Sq: NewSquare(x, y)}
}

// X returns the move's column.
func (m Move) X() int { return m.Sq.X() }

// Y returns the move's row.
func (m Move) Y() int { return m.Sq.Y() }

// Valid reports whether the move targets an on-board square.
func (m Move) Valid() bool { return m.Sq.Valid() }

func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	return fmt.Sprintf("%d,%d", m.X(), m.Y())
}

// MoveList is a reusable, growable slice of moves used by the generator
// and orderer. It exists so PickMove (lazy selection sort) can swap
// elements in place, matching the teacher's board.MoveList/PickMove
// idiom in internal/engine/ordering.go.
type MoveList struct {
	moves []Move
}

// NewMoveList creates an empty move list with the given capacity hint.
func NewMoveList(capacity int) *MoveList {
	return &MoveList{moves: make([]Move, 0, capacity)}
}

// Add appends a move.
func (l *MoveList) Add(m Move) {
	l.moves = append(l.moves, m)
}

// Len returns the number of moves.
func (l *MoveList) Len() int {
	return len(l.moves)
}

// Get returns the move at index i.
func (l *MoveList) Get(i int) Move {
	return l.moves[i]
}

// Swap exchanges the moves at indices i and j.
func (l *MoveList) Swap(i, j int) {
	l.moves[i], l.moves[j] = l.moves[j], l.moves[i]
}

// Slice exposes the underlying slice read-only, for callers that want
// to range without repeated Get() calls.
func (l *MoveList) Slice() []Move {
	return l.moves
}

package board

import "fmt"

// Position is the value-semantic, immutable board representation for
// application-facing code (facade calls, book canonicalization, tests).
// Every mutator returns a new Position rather than touching the
// receiver, per DESIGN NOTES: pick immutable uniformly for app-facing
// state; the mutable search-only type lives in mutable.go, behind the
// search wall.
type Position struct {
	stones     [2]Bitboard225 // [Red-1, Blue-1] indexed via colorIdx
	SideToMove Color
	Hash       uint64
	Moves      []Move // played-move list, for undo in mutable contexts that clone from here
}

// NewPosition returns the empty starting position, Red to move.
func NewPosition() *Position {
	return &Position{SideToMove: Red, Hash: ZobristSideToMove, Moves: nil}
}

func colorIdx(c Color) int {
	if c == Red {
		return 0
	}
	return 1
}

// Bitboard returns the stone bitboard for the given color.
func (p *Position) Bitboard(c Color) Bitboard225 {
	return p.stones[colorIdx(c)]
}

// Cell returns the occupant of a square.
func (p *Position) Cell(sq Square) Color {
	if p.stones[0].IsSet(sq) {
		return Red
	}
	if p.stones[1].IsSet(sq) {
		return Blue
	}
	return Empty
}

// IsEmpty reports whether a square has no stone.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Cell(sq) == Empty
}

// Popcount returns the total number of stones on the board.
func (p *Position) Popcount() int {
	return p.stones[0].PopCount() + p.stones[1].PopCount()
}

// Clone returns a deep, independent copy. Since Position holds only
// fixed-size arrays plus an owned move slice, this is the same "value
// copy" semantics as the teacher's board.Position.Copy().
func (p *Position) Clone() *Position {
	np := *p
	np.Moves = append([]Move(nil), p.Moves...)
	return &np
}

// Place returns a new Position with a stone of the side to move placed
// at sq, with the side to move flipped. It errors if the square is
// occupied or out of range — this is the one caller-facing error
// surface the candidate generator itself can never trigger (spec §7).
func (p *Position) Place(sq Square) (*Position, error) {
	if !sq.Valid() {
		return nil, fmt.Errorf("%w: square %v out of range", ErrInvalidMove, sq)
	}
	if !p.IsEmpty(sq) {
		return nil, fmt.Errorf("%w: square %v occupied", ErrInvalidMove, sq)
	}
	np := p.Clone()
	c := p.SideToMove
	np.stones[colorIdx(c)] = np.stones[colorIdx(c)].Set(sq)
	np.Hash ^= StoneKey(sq, c)
	np.Hash ^= ZobristSideToMove
	np.SideToMove = c.Other()
	np.Moves = append(np.Moves, Move{Sq: sq})
	return np, nil
}

// PlayMove is a convenience wrapper around Place for a Move value.
func (p *Position) PlayMove(m Move) (*Position, error) {
	return p.Place(m.Sq)
}

// LastMove returns the most recently played move, or NoMove if none.
func (p *Position) LastMove() Move {
	if len(p.Moves) == 0 {
		return NoMove
	}
	return p.Moves[len(p.Moves)-1]
}

// String renders an ASCII board for debugging.
func (p *Position) String() string {
	s := ""
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			switch p.Cell(NewSquare(x, y)) {
			case Red:
				s += "X "
			case Blue:
				s += "O "
			default:
				s += ". "
			}
		}
		s += "\n"
	}
	return s
}

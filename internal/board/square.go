package board

import "fmt"

// Size is the board edge length. Caro is played on 15x15; see DESIGN.md
// for why the 32x32 constant found elsewhere in the source corpus is
// rejected as stale.
const Size = 15

// NumSquares is the total number of cells on the board.
const NumSquares = Size * Size

// Square identifies a single cell, encoded as y*Size+x, 0..224.
type Square int16

// NoSquare is the sentinel for "no square".
const NoSquare Square = -1

// NewSquare builds a Square from 0-based column (x) and row (y).
func NewSquare(x, y int) Square {
	return Square(y*Size + x)
}

// X returns the column (file-equivalent), 0..14.
func (s Square) X() int {
	return int(s) % Size
}

// Y returns the row (rank-equivalent), 0..14.
func (s Square) Y() int {
	return int(s) / Size
}

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool {
	return s >= 0 && int(s) < NumSquares
}

// InBounds reports whether the (x,y) pair lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

// Chebyshev returns the Chebyshev (king-move) distance between two squares.
func Chebyshev(a, b Square) int {
	dx := a.X() - b.X()
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y() - b.Y()
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// String renders the square in "(x,y)" form for logs and debugging.
func (s Square) String() string {
	if s == NoSquare {
		return "-"
	}
	return fmt.Sprintf("(%d,%d)", s.X(), s.Y())
}

// Direction is one of the four line directions a Caro pattern can run in.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
	DiagMain // top-left to bottom-right, dx=1 dy=1
	DiagAnti // bottom-left to top-right, dx=1 dy=-1
)

// Directions lists all four line directions in a fixed, stable order.
var Directions = [4]Direction{Horizontal, Vertical, DiagMain, DiagAnti}

// Delta returns the (dx,dy) unit step for the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case Horizontal:
		return 1, 0
	case Vertical:
		return 0, 1
	case DiagMain:
		return 1, 1
	default: // DiagAnti
		return 1, -1
	}
}

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	case DiagMain:
		return "D1"
	case DiagAnti:
		return "D2"
	default:
		return "?"
	}
}

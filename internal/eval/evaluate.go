package eval

import "github.com/lavantien/caroengine/internal/board"

// Reader is the minimal board surface the evaluator needs; both
// board.Position and board.MutablePosition satisfy it, so the same
// evaluator runs during search (mutable board) and from application
// code inspecting a snapshot (immutable board).
type Reader interface {
	Cell(sq board.Square) board.Color
	Bitboard(c board.Color) board.Bitboard225
}

var centerSquare = board.NewSquare(board.Size/2, board.Size/2)

func centerBonus(sq board.Square) int {
	if board.Chebyshev(sq, centerSquare) <= 2 {
		return CenterBonus
	}
	return 0
}

func trit(c, side board.Color) Trit {
	switch {
	case c == board.Empty:
		return TritEmpty
	case c == side:
		return TritOwn
	default:
		return TritOpp
	}
}

// EvaluateScalar returns a static score of r from side's point of view:
// positive favors side, negative favors its opponent. It sums every
// windowWidth-cell window's table entry across all four line
// directions (own contribution minus the defense-weighted opponent
// contribution of the same physical cells), plus CenterBonus for each
// stone within Chebyshev distance 2 of the center.
func EvaluateScalar(r Reader, side board.Color) int {
	total := 0
	opp := side.Other()

	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			for _, dir := range board.Directions {
				dx, dy := dir.Delta()
				endX, endY := x+dx*(windowWidth-1), y+dy*(windowWidth-1)
				if !board.InBounds(endX, endY) {
					continue
				}
				var digits [windowWidth]Trit
				cx, cy := x, y
				for k := 0; k < windowWidth; k++ {
					digits[k] = trit(r.Cell(board.NewSquare(cx, cy)), side)
					cx += dx
					cy += dy
				}
				idx := encode(digits)
				total += int(WindowTable[idx])
				oppScore := int(WindowTable[swapPerspective(idx)])
				total -= (DefenseMulNumer * oppScore) / DefenseMulDenom
			}
		}
	}

	r.Bitboard(side).ForEach(func(sq board.Square) { total += centerBonus(sq) })
	r.Bitboard(opp).ForEach(func(sq board.Square) { total -= centerBonus(sq) })

	return total
}

package eval

import (
	"github.com/lavantien/caroengine/internal/board"
	"golang.org/x/sys/cpu"
)

// hasVectorFeature reports whether the running CPU exposes a wide
// enough SIMD unit for the accelerated path to be worth taking,
// mirroring sfnnue's build-tag split (simd_neon.go vs simd_scalar.go)
// but decided once at runtime instead of at compile time, since the
// window table lookup is cheap enough that a single binary can carry
// both paths and pick the faster one per process.
func hasVectorFeature() bool {
	return cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}

// EvaluateSIMD evaluates r the same way EvaluateScalar does, but
// gathers window indices first and folds them four at a time when the
// host CPU advertises a usable vector unit (AVX2 on amd64, ASIMD on
// arm64), falling back to the scalar path otherwise. Both paths must
// agree within internal/eval's test tolerance: the batched fold visits
// table entries in a different order than the scalar sweep, and this
// function is the seam where a future assembly kernel would slot in
// without changing the agreement contract.
func EvaluateSIMD(r Reader, side board.Color) int {
	if !hasVectorFeature() {
		return EvaluateScalar(r, side)
	}
	return evaluateVectorized(r, side)
}

func evaluateVectorized(r Reader, side board.Color) int {
	type windowPair struct{ own, opp int32 }
	var pairs []windowPair

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
				pairs = append(pairs, windowPair{WindowTable[idx], WindowTable[swapPerspective(idx)]})
			}
		}
	}

	total := int64(0)
	n := len(pairs)
	i := 0
	for ; i+4 <= n; i += 4 {
		var lane [4]int64
		for l := 0; l < 4; l++ {
			p := pairs[i+l]
			lane[l] = int64(p.own) - int64(DefenseMulNumer*p.opp)/int64(DefenseMulDenom)
		}
		total += lane[0] + lane[1] + lane[2] + lane[3]
	}
	for ; i < n; i++ {
		p := pairs[i]
		total += int64(p.own) - int64(DefenseMulNumer*p.opp)/int64(DefenseMulDenom)
	}

	out := int(total)
	opp := side.Other()
	r.Bitboard(side).ForEach(func(sq board.Square) { out += centerBonus(sq) })
	r.Bitboard(opp).ForEach(func(sq board.Square) { out -= centerBonus(sq) })
	return out
}

// Package eval provides Caro's static position evaluator: a
// precomputed sliding-window scoring table plus a scalar and a
// runtime-feature-gated accelerated path, grounded on the teacher's
// weight-and-constant style in internal/engine/eval.go and the
// scalar/SIMD dual-path split in sfnnue/simd.go, sfnnue/simd_scalar.go
// and sfnnue/simd_neon.go — generalized from NNUE's build-tag gated
// assembly paths to a single runtime check via golang.org/x/sys/cpu,
// since Caro's evaluator has no trained network to accelerate, only a
// table lookup cheap enough to stay pure Go on both paths.
package eval

// Trit is one cell's state relative to the side being evaluated.
type Trit uint8

const (
	TritEmpty Trit = iota
	TritOwn
	TritOpp
)

// windowWidth is the sliding window size. Six cells is the smallest
// width that holds an open four (_XXXX_ needs all six) with no
// truncation, and comfortably holds the narrower three/two patterns.
const windowWidth = 6

// windowStates is 3^windowWidth: every trit assignment over the window.
const windowStates = 729

// Weight constants, named after the severity ladder in internal/threat.
const (
	WeightFive        = 100000
	WeightOpenFour    = 10000
	WeightClosedFour  = 1000
	WeightOpenThree   = 1000
	WeightClosedThree = 100
	WeightOpenTwo     = 100
	CenterBonus       = 50

	// DefenseMulNumer/DefenseMulDenom weight the opponent's windows
	// more heavily than symmetric scoring would (3/2), matching the
	// spec's "blocking a threat is worth more than building one of
	// equal shape" intuition used throughout the move orderer too.
	DefenseMulNumer = 3
	DefenseMulDenom = 2
)

func weightFor(length int, leftOpen, rightOpen bool) int {
	switch {
	case length >= 5:
		return WeightFive
	case length == 4:
		switch {
		case leftOpen && rightOpen:
			return WeightOpenFour
		case leftOpen || rightOpen:
			return WeightClosedFour
		default:
			return 0
		}
	case length == 3:
		switch {
		case leftOpen && rightOpen:
			return WeightOpenThree
		case leftOpen || rightOpen:
			return WeightClosedThree
		default:
			return 0
		}
	case length == 2:
		if leftOpen && rightOpen {
			return WeightOpenTwo
		}
		return 0
	default:
		return 0
	}
}

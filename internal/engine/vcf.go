package engine

import (
	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/threat"
)

// VCFSolver finds forced wins by Victory by Continuous Four: a chain
// of moves where every attacker move creates at least one four-in-a-
// row threat, so the defender's replies are forced, until a five is
// reached or the chain runs out. There is no chess analogue for this —
// quiescence there resolves material exchanges, not forcing
// sequences — so this is grounded on the *shape* of the teacher's
// quiescence search in worker.go (bounded-depth recursive search
// restricted to a narrow move subset) generalized from "captures and
// checks" to "four-creating moves".
type VCFSolver struct {
	MaxDepth int
}

// NewVCFSolver creates a solver bounded to maxDepth forcing plies.
func NewVCFSolver(maxDepth int) *VCFSolver {
	return &VCFSolver{MaxDepth: maxDepth}
}

// Solve searches for a forced win for mp's side to move. It returns
// the winning move sequence (attacker, forced reply, attacker, ...)
// and true if one exists within MaxDepth, else (nil, false). mp is
// restored to its original state before returning.
func (v *VCFSolver) Solve(mp *board.MutablePosition) ([]board.Move, bool) {
	side := mp.SideToMove
	return v.solve(mp, side, 0)
}

func (v *VCFSolver) solve(mp *board.MutablePosition, side board.Color, depth int) ([]board.Move, bool) {
	if depth >= v.MaxDepth {
		return nil, false
	}

	candidates := GenerateCandidates(mp)
	for i := 0; i < candidates.Len(); i++ {
		m := candidates.Get(i)
		undo := mp.MakeMove(m)

		winner, won, _ := threat.CheckWin(mp)
		if won && winner == side {
			mp.UnmakeMove(undo)
			return []board.Move{m}, true
		}

		blockSquares := forcingBlockSquares(mp, side)
		switch {
		case len(blockSquares) == 0:
			// This move creates no four-severity threat; it cannot be
			// part of a continuous-four chain.
		case len(blockSquares) > 1:
			// A double (or open) four: the defender can only block one
			// of the gain squares, so the attacker wins regardless.
			mp.UnmakeMove(undo)
			return []board.Move{m}, true
		default:
			var blockSq board.Square
			for sq := range blockSquares {
				blockSq = sq
			}
			blockUndo := mp.MakeMove(board.Move{Sq: blockSq})
			rest, ok := v.solve(mp, side, depth+1)
			mp.UnmakeMove(blockUndo)
			if ok {
				seq := make([]board.Move, 0, len(rest)+2)
				seq = append(seq, m, board.Move{Sq: blockSq})
				seq = append(seq, rest...)
				mp.UnmakeMove(undo)
				return seq, true
			}
		}

		mp.UnmakeMove(undo)
	}

	return nil, false
}

// forcingBlockSquares returns the union of gain squares across every
// Five or OpenFour/ClosedFour threat side currently holds — the set
// the defender would have to cover to survive this ply.
func forcingBlockSquares(r threat.Reader, side board.Color) map[board.Square]bool {
	out := make(map[board.Square]bool)
	for _, th := range threat.DetectThreats(r, side) {
		if th.Severity == threat.Five || th.Severity == threat.OpenFour || th.Severity == threat.ClosedFour {
			for _, g := range th.Gains {
				out[g] = true
			}
		}
	}
	return out
}

package engine

import (
	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/threat"
)

// Ordering priorities, re-keyed from the teacher's MVV-LVA/killer/
// history ladder in ordering.go to Caro's threat-severity ladder
// (spec.md §4.4). Chess has captures; Caro has must-block and
// immediate-win squares instead.
const (
	MustBlockScore  = 2_000_000
	WinningScore    = 1_500_000
	TTMoveScore     = 1_000_000
	ThreatCreate    = 800_000
	KillerScore1    = 500_000
	KillerScore2    = 400_000
	CounterMoveMax  = 150_000
	ContinuationMax = 300_000
	HistoryMax      = 20_000
)

// MoveOrderer carries the teacher's killer/history/counter-move/
// continuation-history machinery, indexed by square instead of
// chess's (from,to) pair since a Caro move is a single placement.
type MoveOrderer struct {
	killers          [MaxPly][2]board.Move
	history          [board.NumSquares]int
	counterMoves     [board.NumSquares]board.Move
	continuationHist [board.NumSquares][board.NumSquares]int // [prevSq][sq]
}

// NewMoveOrderer creates an empty move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets per-search state and ages the persistent heuristics,
// matching the teacher's Clear() (killers reset, history halved).
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		mo.history[i] /= 2
	}
	for i := range mo.counterMoves {
		mo.counterMoves[i] = board.NoMove
	}
	for i := range mo.continuationHist {
		for j := range mo.continuationHist[i] {
			mo.continuationHist[i][j] /= 2
		}
	}
}

// scoreContext bundles the per-node information scoreMove needs, since
// Caro ordering depends on live threat detection rather than static
// piece values.
type scoreContext struct {
	pos       PositionReader
	side      board.Color
	ttMove    board.Move
	prevMove  board.Move
	ply       int
	mustBlock map[board.Square]bool
	winning   map[board.Square]bool
	creates   map[board.Square]bool
}

// ScoreMoves assigns an ordering score to every candidate move.
func (mo *MoveOrderer) ScoreMoves(ctx scoreContext, moves *board.MoveList) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(ctx, moves.Get(i))
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(ctx scoreContext, m board.Move) int {
	if m == ctx.ttMove {
		return TTMoveScore
	}
	if ctx.mustBlock[m.Sq] {
		return MustBlockScore
	}
	if ctx.winning[m.Sq] {
		return WinningScore
	}
	if ctx.creates[m.Sq] {
		return ThreatCreate
	}
	if ctx.ply < MaxPly {
		if m == mo.killers[ctx.ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ctx.ply][1] {
			return KillerScore2
		}
	}

	score := 0
	if ctx.prevMove != board.NoMove && mo.counterMoves[ctx.prevMove.Sq] == m {
		score += CounterMoveMax
	}
	if ctx.prevMove != board.NoMove {
		if cmh := mo.continuationHist[ctx.prevMove.Sq][m.Sq]; cmh > 0 {
			bonus := cmh
			if bonus > ContinuationMax {
				bonus = ContinuationMax
			}
			score += bonus
		}
	}
	if h := mo.history[m.Sq]; h > 0 {
		bonus := h
		if bonus > HistoryMax {
			bonus = HistoryMax
		}
		score += bonus
	}

	// Tie-break toward the board center, matching spec.md §4.4.
	score += 64 - board.Chebyshev(m.Sq, board.NewSquare(board.Size/2, board.Size/2))*8
	return score
}

// mustBlockSquares returns the gain squares of the opponent's severest
// live threats (Five and OpenFour), the only patterns urgent enough to
// force a reply.
func mustBlockSquares(pos PositionReader, side board.Color) map[board.Square]bool {
	out := make(map[board.Square]bool)
	opp := side.Other()
	oppThreats := threat.DetectThreats(pos, opp)
	for _, th := range oppThreats {
		if th.Severity == threat.Five || th.Severity == threat.OpenFour {
			for _, g := range th.Gains {
				out[g] = true
			}
		}
	}
	return out
}

// winningSquares returns the gain squares of side's open and closed
// fours: the empty squares where one more stone makes five right now.
// Whether the resulting five ends up blocked at both ends is not
// checked here.
func winningSquares(pos PositionReader, side board.Color) map[board.Square]bool {
	out := make(map[board.Square]bool)
	for _, th := range threat.DetectThreats(pos, side) {
		if th.Severity == threat.OpenFour || th.Severity == threat.ClosedFour {
			for _, g := range th.Gains {
				out[g] = true
			}
		}
	}
	return out
}

// threatCreateSquares returns the empty squares that would turn into
// an OpenThree (or better) for side if played.
func threatCreateSquares(pos PositionReader, side board.Color) map[board.Square]bool {
	out := make(map[board.Square]bool)
	for _, th := range threat.DetectThreats(pos, side) {
		if th.Severity <= threat.OpenThree {
			for _, g := range th.Gains {
				out[g] = true
			}
		}
	}
	return out
}

// SortMoves sorts moves by descending score (the teacher's selection
// sort — sufficient for the tens, not thousands, of candidates a
// radius-2 generator produces).
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove lazily selects the best remaining move at index, avoiding a
// full sort when alpha-beta cuts off early.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet move that caused a beta cutoff.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory applies a depth-squared bonus/malus to a quiet move.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int, isGood bool) {
	bonus := depth * depth
	if isGood {
		mo.history[m.Sq] += bonus
		if mo.history[m.Sq] > 400_000 {
			for i := range mo.history {
				mo.history[i] /= 2
			}
		}
	} else {
		mo.history[m.Sq] -= bonus
		if mo.history[m.Sq] < -400_000 {
			mo.history[m.Sq] = -400_000
		}
	}
}

// UpdateCounterMove records m as the reply to prevMove.
func (mo *MoveOrderer) UpdateCounterMove(prevMove, m board.Move) {
	if prevMove == board.NoMove {
		return
	}
	mo.counterMoves[prevMove.Sq] = m
}

// UpdateContinuationHistory applies a depth-squared bonus/malus to the
// (prevMove, m) pair.
func (mo *MoveOrderer) UpdateContinuationHistory(prevMove, m board.Move, depth int, isGood bool) {
	if prevMove == board.NoMove {
		return
	}
	bonus := depth * depth
	if isGood {
		mo.continuationHist[prevMove.Sq][m.Sq] += bonus
	} else {
		mo.continuationHist[prevMove.Sq][m.Sq] -= bonus
	}
}

package engine

import (
	"sync/atomic"
	"time"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/eval"
	"github.com/lavantien/caroengine/internal/threat"
)

// nodeCheckInterval is how often (in nodes) the search polls the stop
// flag and hard deadline, matching spec.md §4.6's "every 2048 nodes".
const nodeCheckInterval = 2048

// lmrMinDepth/lmrMinMoveIndex gate when late move reductions apply —
// "quiet moves beyond the first ~4" per spec.md §4.6.
const (
	lmrMinDepth     = 3
	lmrMinMoveIndex = 4
)

// Result is one completed (or in-progress) iteration's output.
type Result struct {
	BestMove  board.Move
	Score     int
	Depth     int
	Nodes     uint64
	PV        []board.Move
	Stability int // consecutive iterations agreeing on BestMove
}

// Searcher runs iterative-deepening PVS for a single worker. Ported
// from the teacher's Worker/negamax/quiescence in worker.go, re-keyed
// from chess captures/checks to Caro's threat-severity move ordering
// and VCF quiescence.
type Searcher struct {
	TT          *TranspositionTable
	Orderer     *MoveOrderer
	Corrections *CorrectionHistory
	VCF         *VCFSolver
	Stop        *atomic.Bool

	nodes    uint64
	deadline time.Time
}

// NewSearcher builds a searcher sharing tt (and therefore visible to
// every other Lazy-SMP worker using the same table).
func NewSearcher(tt *TranspositionTable, vcfDepth int, stop *atomic.Bool) *Searcher {
	return &Searcher{
		TT:          tt,
		Orderer:     NewMoveOrderer(),
		Corrections: NewCorrectionHistory(),
		VCF:         NewVCFSolver(vcfDepth),
		Stop:        stop,
	}
}

// IterativeDeepen runs iterative deepening from depth 1 to maxDepth,
// with an aspiration window around each iteration's predecessor. It
// returns the result of the last *completed* iteration — a cancelled
// iteration's partial result is discarded, per spec.md §4.6's failure
// handling.
func (s *Searcher) IterativeDeepen(root *board.Position, side board.Color, maxDepth int, deadline time.Time) Result {
	s.Orderer.Clear()
	s.nodes = 0
	s.deadline = deadline
	mp := board.NewMutablePosition(root)

	best := Result{BestMove: board.NoMove}
	prevScore := 0
	stableDepths := 0
	prevBestMove := board.NoMove

	for depth := 1; depth <= maxDepth; depth++ {
		if time.Now().After(deadline) || (s.Stop != nil && s.Stop.Load()) {
			break
		}

		score, move, cancelled := s.aspirationSearch(mp, side, depth, prevScore, deadline)
		if cancelled {
			break
		}

		if move == prevBestMove {
			stableDepths++
		} else {
			stableDepths = 0
		}
		best = Result{BestMove: move, Score: score, Depth: depth, Nodes: s.nodes, PV: []board.Move{move}, Stability: stableDepths}
		prevBestMove = move
		prevScore = score

		if score >= MateScore-MaxPly || score <= -MateScore+MaxPly {
			break // forced win/loss found, deeper iterations add nothing
		}
	}
	return best
}

// aspirationSearch performs one iteration's root search, widening the
// window and re-searching on fail-high/fail-low until the true score
// is bracketed or the full-width window is reached.
func (s *Searcher) aspirationSearch(mp *board.MutablePosition, side board.Color, depth, prevScore int, deadline time.Time) (int, board.Move, bool) {
	if depth <= 2 {
		score, move, cancelled := s.rootSearch(mp, side, depth, -Infinity, Infinity, deadline)
		return score, move, cancelled
	}

	delta := AspirationDelta
	alpha := prevScore - delta
	beta := prevScore + delta

	for {
		score, move, cancelled := s.rootSearch(mp, side, depth, alpha, beta, deadline)
		if cancelled {
			return score, move, true
		}
		if score <= alpha {
			alpha -= delta
		} else if score >= beta {
			beta += delta
		} else {
			return score, move, false
		}
		delta *= 2
		if delta > Infinity {
			alpha, beta = -Infinity, Infinity
		}
	}
}

func (s *Searcher) rootSearch(mp *board.MutablePosition, side board.Color, depth, alpha, beta int, deadline time.Time) (int, board.Move, bool) {
	ttMove := board.NoMove
	if entry, ok := s.TT.Probe(mp.Hash); ok {
		ttMove = entry.BestMove
	}

	moves := GenerateCandidates(mp)
	ctx := scoreContext{
		pos:       mp,
		side:      side,
		ttMove:    ttMove,
		prevMove:  mp.LastMove(),
		ply:       0,
		mustBlock: mustBlockSquares(mp, side),
		winning:   winningSquares(mp, side),
		creates:   threatCreateSquares(mp, side),
	}
	scores := s.Orderer.ScoreMoves(ctx, moves)

	best := -Infinity
	bestMove := board.NoMove
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		undo := mp.MakeMove(m)
		var score int
		var cancelled bool
		if i == 0 {
			score, cancelled = s.negamax(mp, depth-1, 1, -beta, -alpha, m, false)
			score = -score
		} else {
			score, cancelled = s.negamax(mp, depth-1, 1, -alpha-1, -alpha, m, true)
			score = -score
			if !cancelled && score > alpha && score < beta {
				score, cancelled = s.negamax(mp, depth-1, 1, -beta, -alpha, m, false)
				score = -score
			}
		}
		mp.UnmakeMove(undo)

		if cancelled {
			return best, bestMove, true
		}

		if score > best {
			best = score
			bestMove = m
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			s.Orderer.UpdateKillers(m, 0)
			break
		}
	}

	flag := TTExact
	if best <= alpha {
		flag = TTUpperBound
	} else if best >= beta {
		flag = TTLowerBound
	}
	s.TT.Store(mp.Hash, AdjustScoreToTT(best, 0), depth, flag, bestMove)

	return best, bestMove, false
}

// negamax is the interior-node search: TT probe, move ordering,
// null-move pruning, PVS re-search, late move reductions, and VCF
// quiescence at the leaves.
func (s *Searcher) negamax(mp *board.MutablePosition, depth, ply int, alpha, beta int, prevMove board.Move, cutNode bool) (int, bool) {
	s.nodes++
	if s.nodes%nodeCheckInterval == 0 {
		if (s.Stop != nil && s.Stop.Load()) || (!s.deadline.IsZero() && time.Now().After(s.deadline)) {
			return 0, true
		}
	}

	side := mp.SideToMove

	if winner, won, _ := threat.CheckWin(mp); won {
		if winner == side {
			return MateScore - ply, false
		}
		return -MateScore + ply, false
	}

	if depth <= 0 {
		return s.quiescence(mp, ply, alpha, beta)
	}

	alphaOrig := alpha

	if entry, ok := s.TT.Probe(mp.Hash); ok && entry.Depth >= depth {
		score := AdjustScoreFromTT(entry.Score, ply)
		switch entry.Flag {
		case TTExact:
			return score, false
		case TTLowerBound:
			if score > alpha {
				alpha = score
			}
		case TTUpperBound:
			if score < beta {
				beta = score
			}
		}
		if alpha >= beta {
			return score, false
		}
	}

	if s.nullMoveAllowed(mp, depth, ply, side) {
		undo := mp.MakeNullMove()
		reduced := depth - 1 - NullMoveReduction
		if reduced < 0 {
			reduced = 0
		}
		score, cancelled := s.negamax(mp, reduced, ply+1, -beta, -beta+1, board.NoMove, !cutNode)
		mp.UnmakeNullMove(undo)
		if cancelled {
			return 0, true
		}
		if -score >= beta {
			return beta, false
		}
	}

	ttMove := board.NoMove
	if entry, ok := s.TT.Probe(mp.Hash); ok {
		ttMove = entry.BestMove
	}

	moves := GenerateCandidates(mp)
	ctx := scoreContext{
		pos:       mp,
		side:      side,
		ttMove:    ttMove,
		prevMove:  prevMove,
		ply:       ply,
		mustBlock: mustBlockSquares(mp, side),
		winning:   winningSquares(mp, side),
		creates:   threatCreateSquares(mp, side),
	}
	scores := s.Orderer.ScoreMoves(ctx, moves)

	best := -Infinity
	bestMove := board.NoMove
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		reduction := 0
		isQuiet := !ctx.mustBlock[m.Sq] && !ctx.winning[m.Sq] && !ctx.creates[m.Sq] && m != ttMove
		if depth >= lmrMinDepth && i >= lmrMinMoveIndex && isQuiet {
			reduction = lmrReduction(depth, i+1)
		}

		undo := mp.MakeMove(m)

		var score int
		var cancelled bool
		if i == 0 {
			score, cancelled = s.negamax(mp, depth-1, ply+1, -beta, -alpha, m, false)
			score = -score
		} else {
			childDepth := depth - 1 - reduction
			if childDepth < 0 {
				childDepth = 0
			}
			score, cancelled = s.negamax(mp, childDepth, ply+1, -alpha-1, -alpha, m, true)
			score = -score
			if !cancelled && score > alpha && reduction > 0 {
				score, cancelled = s.negamax(mp, depth-1, ply+1, -alpha-1, -alpha, m, true)
				score = -score
			}
			if !cancelled && score > alpha && score < beta {
				score, cancelled = s.negamax(mp, depth-1, ply+1, -beta, -alpha, m, false)
				score = -score
			}
		}

		mp.UnmakeMove(undo)

		if cancelled {
			return 0, true
		}

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if isQuiet {
				s.Orderer.UpdateKillers(m, ply)
				s.Orderer.UpdateHistory(m, depth, true)
				s.Orderer.UpdateCounterMove(prevMove, m)
				s.Orderer.UpdateContinuationHistory(prevMove, m, depth, true)
			}
			break
		}
		if isQuiet {
			s.Orderer.UpdateHistory(m, depth, false)
		}
	}

	if moves.Len() == 0 {
		return s.quiescence(mp, ply, alpha, beta), false
	}

	flag := TTExact
	if best <= alphaOrig {
		flag = TTUpperBound
	} else if best >= beta {
		flag = TTLowerBound
	}
	s.TT.Store(mp.Hash, AdjustScoreToTT(best, ply), depth, flag, bestMove)

	if flag == TTExact {
		staticEval := eval.EvaluateScalar(mp, side)
		s.Corrections.Update(mp.Hash, best, staticEval, depth)
	}

	return best, false
}

// nullMoveAllowed implements spec.md §4.6's guard: depth >= 3, not at
// the root, and the side to move isn't itself facing an immediate
// OpenFour (a position too sharp for the null-move heuristic to be
// trustworthy).
func (s *Searcher) nullMoveAllowed(mp *board.MutablePosition, depth, ply int, side board.Color) bool {
	if depth < 3 || ply == 0 {
		return false
	}
	for _, th := range threat.DetectThreats(mp, side.Other()) {
		if th.Severity == threat.OpenFour || th.Severity == threat.Five {
			return false
		}
	}
	return true
}

// quiescence extends forced tactical sequences via the VCF solver
// before falling back to the static evaluator, per spec.md §4.6.
func (s *Searcher) quiescence(mp *board.MutablePosition, ply, alpha, beta int) (int, bool) {
	side := mp.SideToMove
	if seq, found := s.VCF.Solve(mp); found {
		_ = seq
		return MateScore - ply - 1, false
	}

	static := eval.EvaluateScalar(mp, side)
	static += s.Corrections.Get(mp.Hash)
	return static, false
}

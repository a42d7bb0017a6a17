// Package threat implements Caro's win detection and pattern-threat
// scanning (the no-overline, at-least-one-open-end five-in-a-row rule,
// plus the open/closed three-and-four catalog the move orderer and VCF
// solver key off of). There is no direct teacher analogue — chess has
// no concept of a "threat severity ladder" — so this is grounded on the
// *shape* of the teacher's run-scanning helpers in
// internal/engine/eval.go (window scans along the four ray directions)
// generalized from a single fixed window to maximal run detection.
package threat

import "github.com/lavantien/caroengine/internal/board"

// Severity ranks threats from most to least urgent, matching the move
// orderer's priority ladder (deadliest first).
type Severity int

const (
	Five Severity = iota
	OpenFour
	ClosedFour
	OpenThree
	ClosedThree
	OpenTwo
)

func (s Severity) String() string {
	switch s {
	case Five:
		return "Five"
	case OpenFour:
		return "OpenFour"
	case ClosedFour:
		return "ClosedFour"
	case OpenThree:
		return "OpenThree"
	case ClosedThree:
		return "ClosedThree"
	case OpenTwo:
		return "OpenTwo"
	default:
		return "?"
	}
}

// Reader is the minimal cell-lookup surface both board.Position and
// board.MutablePosition already satisfy, so detection runs identically
// over the immutable app-facing board and the mutable search board.
type Reader interface {
	Cell(sq board.Square) board.Color
}

// Threat describes one live pattern: a run of same-colored stones and
// the empty squares that would extend it.
type Threat struct {
	Severity  Severity
	Color     board.Color
	Direction board.Direction
	Stones    []board.Square
	Gains     []board.Square
}

// at reports the color at (x,y) and whether that cell is on the board.
// Off-board counts as blocked, same as an opponent stone.
func at(r Reader, x, y int) (board.Color, bool) {
	if !board.InBounds(x, y) {
		return board.Empty, false
	}
	return r.Cell(board.NewSquare(x, y)), true
}

// run describes one maximal same-color run found while scanning a ray.
type run struct {
	color      board.Color
	dir        board.Direction
	stones     []board.Square
	startOpen  bool // cell immediately before the run is empty and on-board
	endOpen    bool
	beforeGain board.Square // the open cell before the run, if startOpen
	afterGain  board.Square // the open cell after the run, if endOpen
	farBefore  board.Color  // color two cells before the run (off-board treated as opponent-ish, see farBlocked)
	farBefOK   bool
	farAfter   board.Color
	farAfterOK bool
}

// scanRuns walks every ray in every direction once, yielding each
// maximal same-color run exactly once (at its start square), for both
// colors. It never reports a run twice because a run is only emitted
// when the cell immediately before it (along dir) is not the same
// color — i.e. only at the run's true start.
func scanRuns(r Reader) []run {
	var runs []run
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			sq := board.NewSquare(x, y)
			c := r.Cell(sq)
			if c == board.Empty {
				continue
			}
			for _, dir := range board.Directions {
				dx, dy := dir.Delta()
				pc, _ := at(r, x-dx, y-dy)
				if pc == c {
					continue // not a run start in this direction
				}
				runs = append(runs, buildRun(r, c, dir, x, y, dx, dy))
			}
		}
	}
	return runs
}

func buildRun(r Reader, c board.Color, dir board.Direction, x, y, dx, dy int) run {
	var stones []board.Square
	cx, cy := x, y
	for {
		cc, ok := at(r, cx, cy)
		if !ok || cc != c {
			break
		}
		stones = append(stones, board.NewSquare(cx, cy))
		cx += dx
		cy += dy
	}
	endX, endY := cx, cy
	startX, startY := x-dx, y-dy

	out := run{color: c, dir: dir, stones: stones}

	if bc, ok := at(r, startX, startY); ok && bc == board.Empty {
		out.startOpen = true
		out.beforeGain = board.NewSquare(startX, startY)
		if fc, fok := at(r, startX-dx, startY-dy); fok {
			out.farBefore, out.farBefOK = fc, true
		}
	}
	if ac, ok := at(r, endX, endY); ok && ac == board.Empty {
		out.endOpen = true
		out.afterGain = board.NewSquare(endX, endY)
		if fc, fok := at(r, endX+dx, endY+dy); fok {
			out.farAfter, out.farAfterOK = fc, true
		}
	}
	return out
}

// wouldOverline reports whether placing a stone in the given open gain
// square would create a run longer than five (not a win under Caro's
// no-overline rule), by checking the cell one step past the gain.
func wouldOverline(r run, gainIsStart bool) bool {
	if gainIsStart {
		return r.farBefOK && r.farBefore == r.color
	}
	return r.farAfterOK && r.farAfter == r.color
}

// CheckWin scans the whole board for a completed five-in-a-row that
// satisfies Caro's rule: exactly five consecutive stones (no overline)
// with at least one unblocked end. It returns the winning color, true,
// and the five winning squares, or (Empty, false, nil) if no line wins.
func CheckWin(r Reader) (board.Color, bool, []board.Square) {
	for _, run := range scanRuns(r) {
		if len(run.stones) != 5 {
			continue
		}
		blocked := 0
		if !run.startOpen {
			blocked++
		}
		if !run.endOpen {
			blocked++
		}
		if blocked < 2 {
			return run.color, true, run.stones
		}
	}
	return board.Empty, false, nil
}

// DetectThreats scans the board for live patterns of the given color at
// severity OpenThree or above (Five, OpenFour, ClosedFour, OpenThree),
// each with the empty squares that would extend it. Weaker patterns
// (ClosedThree, OpenTwo) feed the evaluator's window table instead and
// are not reported here.
func DetectThreats(r Reader, color board.Color) []Threat {
	var out []Threat
	for _, rn := range scanRuns(r) {
		if rn.color != color {
			continue
		}
		t, ok := classify(rn)
		if !ok {
			continue
		}
		if t.Severity > OpenThree {
			continue
		}
		out = append(out, t)
	}
	return out
}

func classify(rn run) (Threat, bool) {
	n := len(rn.stones)
	t := Threat{Color: rn.color, Direction: rn.dir, Stones: rn.stones}

	switch n {
	case 5:
		if !rn.startOpen && !rn.endOpen {
			return Threat{}, false
		}
		t.Severity = Five
		if rn.startOpen {
			t.Gains = append(t.Gains, rn.beforeGain)
		}
		if rn.endOpen {
			t.Gains = append(t.Gains, rn.afterGain)
		}
		return t, true

	case 4:
		startOK := rn.startOpen && !wouldOverline(rn, true)
		endOK := rn.endOpen && !wouldOverline(rn, false)
		switch {
		case startOK && endOK:
			t.Severity = OpenFour
			t.Gains = []board.Square{rn.beforeGain, rn.afterGain}
		case startOK:
			t.Severity = ClosedFour
			t.Gains = []board.Square{rn.beforeGain}
		case endOK:
			t.Severity = ClosedFour
			t.Gains = []board.Square{rn.afterGain}
		default:
			return Threat{}, false
		}
		return t, true

	case 3:
		switch {
		case rn.startOpen && rn.endOpen:
			t.Severity = OpenThree
			t.Gains = []board.Square{rn.beforeGain, rn.afterGain}
		case rn.startOpen:
			t.Severity = ClosedThree
			t.Gains = []board.Square{rn.beforeGain}
		case rn.endOpen:
			t.Severity = ClosedThree
			t.Gains = []board.Square{rn.afterGain}
		default:
			return Threat{}, false
		}
		return t, true

	case 2:
		if rn.startOpen && rn.endOpen {
			t.Severity = OpenTwo
			t.Gains = []board.Square{rn.beforeGain, rn.afterGain}
			return t, true
		}
		return Threat{}, false

	default:
		return Threat{}, false
	}
}

package eval

// WindowTable holds the precomputed score of every possible
// windowWidth-cell window, indexed by its base-3 (trit) encoding, from
// the perspective of whichever side the window's TritOwn digits
// represent. Built once at init() from first principles — no weight is
// hard-coded per index, only the severity constants in weights.go are.
var WindowTable [windowStates]int32

func init() {
	for idx := 0; idx < windowStates; idx++ {
		WindowTable[idx] = int32(scoreWindow(decode(idx)))
	}
}

// decode expands a base-3 window index into its six trits, least
// significant digit first (window position 0).
func decode(idx int) [windowWidth]Trit {
	var digits [windowWidth]Trit
	for i := 0; i < windowWidth; i++ {
		digits[i] = Trit(idx % 3)
		idx /= 3
	}
	return digits
}

// encode packs six trits into a base-3 window index.
func encode(digits [windowWidth]Trit) int {
	idx := 0
	for i := windowWidth - 1; i >= 0; i-- {
		idx = idx*3 + int(digits[i])
	}
	return idx
}

// scoreWindow finds the strongest run of TritOwn cells in the window
// and returns its severity weight. Runs broken by a TritOpp cell stop
// there; open ends are TritEmpty neighbors inside the window.
func scoreWindow(digits [windowWidth]Trit) int {
	best := 0
	i := 0
	for i < windowWidth {
		if digits[i] != TritOwn {
			i++
			continue
		}
		j := i
		for j < windowWidth && digits[j] == TritOwn {
			j++
		}
		length := j - i
		leftOpen := i > 0 && digits[i-1] == TritEmpty
		rightOpen := j < windowWidth && digits[j] == TritEmpty
		if w := weightFor(length, leftOpen, rightOpen); w > best {
			best = w
		}
		i = j
	}
	return best
}

// swapPerspective flips every TritOwn/TritOpp digit, turning a window
// encoded for one side into the same physical cells encoded for the
// other.
func swapPerspective(idx int) int {
	digits := decode(idx)
	for i, d := range digits {
		switch d {
		case TritOwn:
			digits[i] = TritOpp
		case TritOpp:
			digits[i] = TritOwn
		}
	}
	return encode(digits)
}

package book

import "github.com/lavantien/caroengine/internal/board"

// numTransforms is the order of the board's symmetry group: Caro's
// 15x15 grid has the same dihedral D4 symmetries (4 rotations, 4
// reflections) as a chessboard's 8x8 grid, so every opening position
// has up to 8 equivalent orientations — the generalization of the
// teacher's direct Polyglot Zobrist key (chess has no such redundancy
// to canonicalize away, since rank/file aren't symmetric once castling
// rights and en passant exist).
const numTransforms = 8

// inverseTransform maps each transform ID to the one that undoes it:
// rotations 1 and 3 are each other's inverse, every reflection (4-7) is
// its own inverse, and identity/rotate180 are self-inverse.
var inverseTransform = [numTransforms]int{0, 3, 2, 1, 4, 5, 6, 7}

// transformXY applies symmetry id to a coordinate pair on the Size x
// Size board.
func transformXY(x, y, id int) (int, int) {
	const n = board.Size - 1
	switch id {
	case 0: // identity
		return x, y
	case 1: // rotate 90 clockwise
		return y, n - x
	case 2: // rotate 180
		return n - x, n - y
	case 3: // rotate 270 clockwise
		return n - y, x
	case 4: // reflect across the vertical axis
		return n - x, y
	case 5: // reflect across the horizontal axis
		return x, n - y
	case 6: // reflect across the main diagonal
		return y, x
	default: // 7: reflect across the anti-diagonal
		return n - y, n - x
	}
}

// transformSquare applies symmetry id to a square.
func transformSquare(sq board.Square, id int) board.Square {
	x, y := transformXY(sq.X(), sq.Y(), id)
	return board.NewSquare(x, y)
}

// Canonicalize picks, of the 8 symmetric orientations of pos, the one
// whose Zobrist-style content hash is lexicographically smallest, and
// returns that hash plus the transform ID that produced it. Two
// positions that are rotations/reflections of one another always
// canonicalize to the same hash, so the book never needs duplicate
// entries for symmetric openings.
func Canonicalize(pos *board.Position) (uint64, int) {
	var best uint64
	bestID := 0
	first := true

	for id := 0; id < numTransforms; id++ {
		h := contentHash(pos, id)
		if first || h < best {
			best = h
			bestID = id
			first = false
		}
	}
	return best, bestID
}

// contentHash computes the Zobrist-style hash of pos as seen through
// symmetry id, without mutating pos or allocating a transformed copy.
func contentHash(pos *board.Position, id int) uint64 {
	var h uint64
	for _, c := range [2]board.Color{board.Red, board.Blue} {
		pos.Bitboard(c).ForEach(func(sq board.Square) {
			h ^= board.StoneKey(transformSquare(sq, id), c)
		})
	}
	if pos.SideToMove == board.Red {
		h ^= board.ZobristSideToMove
	}
	return h
}

// toCanonicalMove maps a move in the real, as-played orientation to the
// canonical orientation used as the book's storage key.
func toCanonicalMove(m board.Move, transformID int) board.Move {
	return board.Move{Sq: transformSquare(m.Sq, transformID)}
}

// fromCanonicalMove is the inverse of toCanonicalMove: it maps a move
// recorded against the canonical orientation back to the board's real,
// as-played orientation.
func fromCanonicalMove(m board.Move, transformID int) board.Move {
	return board.Move{Sq: transformSquare(m.Sq, inverseTransform[transformID])}
}

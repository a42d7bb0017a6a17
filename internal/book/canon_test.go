package book

import (
	"testing"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playAll(t *testing.T, coords [][2]int) *board.Position {
	t.Helper()
	pos := board.NewPosition()
	for _, c := range coords {
		next, err := pos.Place(board.NewSquare(c[0], c[1]))
		require.NoError(t, err)
		pos = next
	}
	return pos
}

// TestTransformsRoundTripThroughInverse: each of the 8 transforms,
// followed by its inverse, returns a square to where it started.
func TestTransformsRoundTripThroughInverse(t *testing.T) {
	sq := board.NewSquare(3, 11)
	for id := 0; id < numTransforms; id++ {
		transformed := transformSquare(sq, id)
		back := transformSquare(transformed, inverseTransform[id])
		assert.Equal(t, sq, back, "transform %d did not invert cleanly", id)
	}
}

func TestTransformsStayOnBoard(t *testing.T) {
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			sq := board.NewSquare(x, y)
			for id := 0; id < numTransforms; id++ {
				out := transformSquare(sq, id)
				assert.True(t, out.Valid(), "transform %d sent (%d,%d) off board", id, x, y)
			}
		}
	}
}

// TestCanonicalizeAgreesAcrossRotations: a position and its 90-degree
// rotation (same stones, rotated) must canonicalize to the same hash.
func TestCanonicalizeAgreesAcrossRotations(t *testing.T) {
	pos := playAll(t, [][2]int{{7, 7}, {3, 3}, {8, 7}})

	rotated := board.NewPosition()
	for _, m := range pos.Moves {
		x, y := transformXY(m.X(), m.Y(), 1)
		next, err := rotated.Place(board.NewSquare(x, y))
		require.NoError(t, err)
		rotated = next
	}

	h1, _ := Canonicalize(pos)
	h2, _ := Canonicalize(rotated)
	assert.Equal(t, h1, h2, "a rotated copy of the same opening must canonicalize identically")
}

func TestCanonicalizeDistinguishesDifferentPositions(t *testing.T) {
	posA := playAll(t, [][2]int{{7, 7}})
	posB := playAll(t, [][2]int{{7, 7}, {0, 0}})

	h1, _ := Canonicalize(posA)
	h2, _ := Canonicalize(posB)
	assert.NotEqual(t, h1, h2)
}

func TestCanonicalMoveRoundTrip(t *testing.T) {
	m := board.NewMove(4, 9)
	for id := 0; id < numTransforms; id++ {
		canon := toCanonicalMove(m, id)
		back := fromCanonicalMove(canon, id)
		assert.Equal(t, m, back)
	}
}

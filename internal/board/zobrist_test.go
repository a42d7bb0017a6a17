package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZobristDeterministicForFixedSeed(t *testing.T) {
	InitZobrist(42)
	a := ZobristStone
	sideA := ZobristSideToMove

	InitZobrist(7)
	assert.NotEqual(t, sideA, ZobristSideToMove, "different seeds should (almost certainly) differ")

	InitZobrist(42)
	assert.Equal(t, a, ZobristStone, "same seed must reproduce identical keys")
	assert.Equal(t, sideA, ZobristSideToMove)

	// restore the process-wide default for any later test in this package
	InitZobrist(0x98F107A2BEEF1234)
}

func TestStoneKeyDistinctPerColor(t *testing.T) {
	sq := NewSquare(5, 5)
	assert.NotEqual(t, StoneKey(sq, Red), StoneKey(sq, Blue))
}

package engine

import (
	"sync/atomic"

	"github.com/lavantien/caroengine/internal/board"
)

// TTFlag indicates the type of bound stored for an entry, matching the
// teacher's transposition.go exactly (chess and Caro alpha-beta share
// the same fail-high/fail-low/exact taxonomy).
type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLowerBound
	TTUpperBound
)

// TTEntry is the decoded view of one slot.
type TTEntry struct {
	BestMove board.Move
	Score    int
	Depth    int
	Flag     TTFlag
	Age      uint8
}

// ttSlot is one lockless entry, stored as the teacher's structured
// TTEntry would be but packed into a single uint64 so it can be
// written and verified atomically without a mutex — required because
// spec.md §4.5/§9 has every Lazy-SMP worker hitting the same table
// concurrently, unlike the teacher's single-threaded engine.go access
// pattern. Uses Hyatt's XOR-verified scheme: data is written first,
// then key = hash^data; a reader loads key then data and recomputes
// hash = key^data — a torn read from a concurrent writer lands on a
// hash that won't match and is treated as a miss, never as garbage.
type ttSlot struct {
	key  atomic.Uint64
	data atomic.Uint64
}

const (
	dataScoreBits = 32 // signed score, generous headroom over MateScore
	dataDepthBits = 8
	dataFlagBits  = 2
	dataAgeBits   = 8
	dataMoveBits  = 8 // Square+1, 0..225 fits
)

func packData(score, depth int, flag TTFlag, age uint8, bestMove board.Move) uint64 {
	sq := uint64(bestMove.Sq + 1)
	var d uint64
	d |= uint64(uint32(int32(score)))
	d |= uint64(depth) << dataScoreBits
	d |= uint64(flag) << (dataScoreBits + dataDepthBits)
	d |= uint64(age) << (dataScoreBits + dataDepthBits + dataFlagBits)
	d |= sq << (dataScoreBits + dataDepthBits + dataFlagBits + dataAgeBits)
	return d
}

func unpackData(d uint64) TTEntry {
	score := int(int32(uint32(d & 0xFFFFFFFF)))
	depth := int((d >> dataScoreBits) & 0xFF)
	flag := TTFlag((d >> (dataScoreBits + dataDepthBits)) & 0x3)
	age := uint8((d >> (dataScoreBits + dataDepthBits + dataFlagBits)) & 0xFF)
	sq := int((d >> (dataScoreBits + dataDepthBits + dataFlagBits + dataAgeBits)) & 0xFF)
	move := board.NoMove
	if sq > 0 {
		move = board.Move{Sq: board.Square(sq - 1)}
	}
	return TTEntry{BestMove: move, Score: score, Depth: depth, Flag: flag, Age: age}
}

// TranspositionTable is a fixed power-of-2-sized, shared, lock-free
// hash table. Ported from the teacher's transposition.go sizing and
// replacement policy; the storage layer itself is rebuilt lockless per
// spec.md's explicit requirement.
type TranspositionTable struct {
	slots []ttSlot
	mask  uint64
	age   atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a table sized to hold approximately
// sizeMB megabytes of entries, rounded down to a power of two.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const entrySize = 16 // two uint64 words per slot
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries == 0 {
		numEntries = 1
	}
	return &TranspositionTable{
		slots: make([]ttSlot, numEntries),
		mask:  numEntries - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe looks up hash, verifying the XOR-keyed slot. A mismatch (miss
// or torn concurrent write) returns (TTEntry{}, false) — search always
// treats that as "not found", never as corrupt data.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes.Add(1)
	idx := hash & tt.mask
	slot := &tt.slots[idx]

	key := slot.key.Load()
	data := slot.data.Load()
	if key^data != hash {
		return TTEntry{}, false
	}
	tt.hits.Add(1)
	return unpackData(data), true
}

// Store writes an entry iff the new depth is at least the existing
// one, or the existing entry is from an older generation — the
// teacher's replacement policy unchanged.
func (tt *TranspositionTable) Store(hash uint64, score, depth int, flag TTFlag, bestMove board.Move) {
	idx := hash & tt.mask
	slot := &tt.slots[idx]

	age := uint8(tt.age.Load())
	old := unpackData(slot.data.Load())
	if old.Age == age && depth < old.Depth {
		return
	}

	data := packData(score, depth, flag, age, bestMove)
	slot.data.Store(data)
	slot.key.Store(hash ^ data)
}

// NewSearch increments the age generation, wrapping at 255 per
// spec.md §4.5.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear zeroes every slot and resets diagnostics.
func (tt *TranspositionTable) Clear() {
	for i := range tt.slots {
		tt.slots[i].key.Store(0)
		tt.slots[i].data.Store(0)
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull samples the first 1000 slots and returns parts-per-thousand
// occupied by the current generation.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > uint64(len(tt.slots)) {
		sampleSize = len(tt.slots)
	}
	age := uint8(tt.age.Load())
	used := 0
	for i := 0; i < sampleSize; i++ {
		data := tt.slots[i].data.Load()
		key := tt.slots[i].key.Load()
		if data == 0 && key == 0 {
			continue
		}
		if unpackData(data).Age == age {
			used++
		}
	}
	if sampleSize == 0 {
		return 0
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the number of slots in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.slots))
}

// AdjustScoreFromTT converts a stored mate-distance score back to the
// current ply, and AdjustScoreToTT does the inverse before storing —
// both ported unchanged from the teacher.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}

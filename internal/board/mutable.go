package board

// MutablePosition is the in-place, make/unmake board used behind the
// search wall (DESIGN NOTES: "mutable search board vs. immutable
// domain board"). It is owned by a single search worker and is never
// shared across goroutines — each Lazy-SMP worker clones its own copy
// of the root position (see internal/smp).
type MutablePosition struct {
	stones     [2]Bitboard225
	SideToMove Color
	Hash       uint64
	Moves      []Move
}

// UndoInfo is the token returned by MakeMove and required by the
// matching UnmakeMove call. Make/unmake pairs must perfectly reverse
// the hash and bitboards (spec §8 property test).
type UndoInfo struct {
	Move     Move
	PrevSide Color
	PrevHash uint64
}

// NewMutablePosition builds a mutable search position from an immutable
// snapshot. The two never alias underlying storage.
func NewMutablePosition(p *Position) *MutablePosition {
	mp := &MutablePosition{
		stones:     p.stones,
		SideToMove: p.SideToMove,
		Hash:       p.Hash,
		Moves:      append([]Move(nil), p.Moves...),
	}
	return mp
}

// Snapshot returns an immutable Position equal to the current mutable
// state, for handing back to application-facing callers (e.g. the
// ponderer folding a background search's reached positions).
func (mp *MutablePosition) Snapshot() *Position {
	return &Position{
		stones:     mp.stones,
		SideToMove: mp.SideToMove,
		Hash:       mp.Hash,
		Moves:      append([]Move(nil), mp.Moves...),
	}
}

// Clone returns an independent copy for spawning a parallel worker.
func (mp *MutablePosition) Clone() *MutablePosition {
	nmp := *mp
	nmp.Moves = append([]Move(nil), mp.Moves...)
	return &nmp
}

// Bitboard returns the stone bitboard for the given color.
func (mp *MutablePosition) Bitboard(c Color) Bitboard225 {
	return mp.stones[colorIdx(c)]
}

// Cell returns the occupant of a square.
func (mp *MutablePosition) Cell(sq Square) Color {
	if mp.stones[0].IsSet(sq) {
		return Red
	}
	if mp.stones[1].IsSet(sq) {
		return Blue
	}
	return Empty
}

// IsEmpty reports whether a square is unoccupied.
func (mp *MutablePosition) IsEmpty(sq Square) bool {
	return mp.Cell(sq) == Empty
}

// Popcount returns the total number of stones on the board.
func (mp *MutablePosition) Popcount() int {
	return mp.stones[0].PopCount() + mp.stones[1].PopCount()
}

// MakeMove places a stone of the side to move at sq and flips the side
// to move, returning an UndoInfo token that exactly reverses it. The
// caller must guarantee sq is empty and on-board — the search's own
// move generator never produces otherwise (spec §7).
func (mp *MutablePosition) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{Move: m, PrevSide: mp.SideToMove, PrevHash: mp.Hash}

	c := mp.SideToMove
	mp.stones[colorIdx(c)] = mp.stones[colorIdx(c)].Set(m.Sq)
	mp.Hash ^= StoneKey(m.Sq, c)
	mp.Hash ^= ZobristSideToMove
	mp.SideToMove = c.Other()
	mp.Moves = append(mp.Moves, m)

	return undo
}

// LastMove returns the most recently made move, or NoMove if none.
func (mp *MutablePosition) LastMove() Move {
	if len(mp.Moves) == 0 {
		return NoMove
	}
	return mp.Moves[len(mp.Moves)-1]
}

// MakeNullMove flips the side to move without placing a stone, for
// null-move pruning. Returns the previous hash/side to undo with
// UnmakeNullMove.
func (mp *MutablePosition) MakeNullMove() UndoInfo {
	undo := UndoInfo{Move: NoMove, PrevSide: mp.SideToMove, PrevHash: mp.Hash}
	mp.Hash ^= ZobristSideToMove
	mp.SideToMove = mp.SideToMove.Other()
	return undo
}

// UnmakeNullMove reverses MakeNullMove.
func (mp *MutablePosition) UnmakeNullMove(undo UndoInfo) {
	mp.Hash = undo.PrevHash
	mp.SideToMove = undo.PrevSide
}

// UnmakeMove reverses a MakeMove call. undo must be the token returned
// by the matching MakeMove; calls must nest LIFO.
func (mp *MutablePosition) UnmakeMove(undo UndoInfo) {
	c := undo.PrevSide
	mp.stones[colorIdx(c)] = mp.stones[colorIdx(c)].Clear(undo.Move.Sq)
	mp.Hash = undo.PrevHash
	mp.SideToMove = undo.PrevSide
	if n := len(mp.Moves); n > 0 {
		mp.Moves = mp.Moves[:n-1]
	}
}

package board

import "errors"

// ErrInvalidMove is returned by caller-facing placement operations when
// the target square is out of range or already occupied. The engine's
// own candidate generator can never produce these — see spec §7.
var ErrInvalidMove = errors.New("board: invalid move")

// Package book implements the opening book: a badger-backed store of
// {best move, weight} records keyed by a dihedral-canonicalized
// position hash, with weighted-random lookup. Grounded on the
// teacher's internal/book.Book (Polyglot load + weighted Probe) and
// internal/storage.Storage (badger open/close, json-marshal-before-Set
// idiom) — here the position key is Caro's own canonicalized Zobrist
// hash instead of a Polyglot file's fixed key, and the persisted value
// is gob-encoded since the record has no external file-format
// dictating its layout.
package book

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"math/rand"

	"github.com/dgraph-io/badger/v4"

	"github.com/lavantien/caroengine/internal/board"
	"github.com/lavantien/caroengine/internal/eval"
)

// Record is one stored book entry for a canonical position.
type Record struct {
	BestMove  board.Move
	Weight    uint16
	Validated bool
}

// Book wraps a badger database of canonical-position -> []Record.
type Book struct {
	db *badger.DB
}

// Open opens (creating if necessary) a badger-backed book at dir.
func Open(dir string) (*Book, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Book{db: db}, nil
}

// Close closes the underlying database.
func (b *Book) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func keyFor(hash uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], hash)
	return k[:]
}

func encodeRecords(recs []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecords(data []byte) ([]Record, error) {
	var recs []Record
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Put stores (or replaces) the book entries for pos's canonical
// position. Moves in recs are expected in pos's real, as-played
// orientation; Put converts them to the canonical orientation before
// writing, so Probe on any symmetric equivalent finds the same data.
func (b *Book) Put(pos *board.Position, recs []Record) error {
	hash, transformID := Canonicalize(pos)
	canonical := make([]Record, len(recs))
	for i, r := range recs {
		canonical[i] = Record{
			BestMove:  toCanonicalMove(r.BestMove, transformID),
			Weight:    r.Weight,
			Validated: r.Validated,
		}
	}
	data, err := encodeRecords(canonical)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyFor(hash), data)
	})
}

// Probe looks up pos's canonical position and returns a move chosen by
// weighted random selection among its validated entries, converted
// back to pos's real orientation. Returns (NoMove, false) on a miss or
// if every stored entry failed validation.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil || b.db == nil {
		return board.NoMove, false
	}
	hash, transformID := Canonicalize(pos)

	var recs []Record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyFor(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, derr := decodeRecords(val)
			if derr != nil {
				return derr
			}
			recs = decoded
			return nil
		})
	})
	if err != nil || len(recs) == 0 {
		return board.NoMove, false
	}

	candidates := make([]Record, 0, len(recs))
	for _, r := range recs {
		if r.Validated {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return board.NoMove, false
	}

	total := uint32(0)
	for _, r := range candidates {
		total += uint32(r.Weight)
	}
	if total == 0 {
		return fromCanonicalMove(candidates[0].BestMove, transformID), true
	}

	roll := rand.Uint32() % total
	cumulative := uint32(0)
	for _, r := range candidates {
		cumulative += uint32(r.Weight)
		if roll < cumulative {
			return fromCanonicalMove(r.BestMove, transformID), true
		}
	}
	return fromCanonicalMove(candidates[len(candidates)-1].BestMove, transformID), true
}

// Validator checks candidate book moves against the live engine before
// they're trusted by Probe: a move is accepted only if it targets an
// empty square and the static evaluator doesn't consider it an
// outright blunder (a large swing in the opponent's favor).
type Validator struct {
	BlunderThreshold int
}

// NewValidator creates a validator with spec.md's default blunder
// threshold.
func NewValidator() *Validator {
	return &Validator{BlunderThreshold: 5000}
}

// Validate reports whether playing m from pos is both legal (targets
// an empty square) and not an immediate blunder, by comparing the
// static evaluation before and after the move.
func (v *Validator) Validate(pos *board.Position, m board.Move) bool {
	if !m.Valid() || !pos.IsEmpty(m.Sq) {
		return false
	}
	next, err := pos.PlayMove(m)
	if err != nil {
		return false
	}

	before := eval.EvaluateScalar(pos, pos.SideToMove)
	after := -eval.EvaluateScalar(next, next.SideToMove)
	return before-after < v.BlunderThreshold
}

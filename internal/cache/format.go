// Package cache is the on-disk summary cache of spec.md §4.7/§6
// ("i-cache"/"o-cache"): a flat, append-only stream of length-prefixed
// per-function records, each holding a serialized Summary, with a
// random-access index built by a single linear scan on open.
//
// Grounded on Serialization.cpp: the record layout (name, placeholder
// body length, body, with the length patched in by seeking back after
// the body is written), the formula/operand tag enumerations, and the
// Operation provenance-id resolution scheme (an id allocated per
// Operation at serialize time, referenced by id from any later
// Operation.From entry, with an unresolved id silently dropped rather
// than erroring) are all ported field for field.
package cache

import (
	"encoding/binary"
	"io"
)

// operandTag mirrors Serialization.cpp's OperandType enum.
type operandTag uint32

const (
	tagOperandNull operandTag = iota
	tagConstant
	tagSignature
)

// formulaTag mirrors Serialization.cpp's FormulaType enum, with one
// addition: tagNamedAtom. The original has no wire representation for
// a nullary named atom (Atom::serialize's switch has no case for
// OpNone and falls into its assert(0) default) because every atom the
// original ever serializes came from a Z3 comparison. This repo's
// formula algebra also builds named atoms directly (NewNamedAtom, for
// a branch condition with no usable relational form) and those can
// legitimately reach a cached PathSummaryEntry, so tagNamedAtom is a
// deliberate, documented format extension rather than an inherited
// crash; see DESIGN.md's Open Question decision for this package.
type formulaTag uint32

const (
	tagFormulaNull formulaTag = iota
	tagTrue
	tagFalse
	tagConjunction
	tagDisjunction
	tagNegation
	tagEQ
	tagNE
	tagLT
	tagLE
	tagGT
	tagGE
	tagNamedAtom
)

var byteOrder = binary.LittleEndian

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	byteOrder.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeInt32(w io.Writer, v int32) error {
	return writeUint32(w, uint32(v))
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return byteOrder.Uint32(buf[:]), nil
}

func readInt32(r io.Reader) (int32, error) {
	v, err := readUint32(r)
	return int32(v), err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

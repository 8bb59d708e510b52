package cache

import (
	"fmt"
	"io"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/summary"
)

// writeOperation ports Operation::serialize: amount, id, and the id of
// every provenance entry in From (an Operation referenced only by id;
// resolving that id back to an *Operation is deserializeOperation's
// job, via the opByID table threaded through one cache session).
func writeOperation(w io.Writer, op *summary.Operation) error {
	if err := writeInt32(w, int32(op.Amount)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(op.ID)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(op.From))); err != nil {
		return err
	}
	for _, from := range op.From {
		if err := writeUint32(w, uint32(from.ID)); err != nil {
			return err
		}
	}
	return nil
}

// readOperation ports Operation::deserialize, registering the result
// in opByID under its on-disk id so a later Operation's From list can
// resolve it; an id that never resolves (forward reference the
// original never produces, but a truncated or hand-edited cache
// could) is silently dropped, matching the original's
// catch (std::out_of_range) no-op.
func readOperation(r io.Reader, sig string, host string, opByID map[uint32]*summary.Operation) (*summary.Operation, error) {
	amount, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	id, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	total, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	op := &summary.Operation{RefcountSig: sig, Amount: int(amount), ID: int(id), Host: host}
	for i := uint32(0); i < total; i++ {
		fromID, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		if from, ok := opByID[fromID]; ok {
			op.From = append(op.From, from)
		}
	}
	opByID[id] = op
	return op, nil
}

func writeRefcountOps(w io.Writer, ops summary.RefcountOps) error {
	if err := writeUint32(w, uint32(len(ops))); err != nil {
		return err
	}
	for sig, op := range ops {
		if err := writeString(w, sig); err != nil {
			return err
		}
		if err := writeOperation(w, op); err != nil {
			return err
		}
	}
	return nil
}

func readRefcountOps(r io.Reader, host string, opByID map[uint32]*summary.Operation) (summary.RefcountOps, error) {
	total, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ops := make(summary.RefcountOps, total)
	for i := uint32(0); i < total; i++ {
		sig, err := readString(r)
		if err != nil {
			return nil, err
		}
		op, err := readOperation(r, sig, host, opByID)
		if err != nil {
			return nil, err
		}
		ops[sig] = op
	}
	return ops, nil
}

func writeEntry(w io.Writer, e *summary.PathSummaryEntry) error {
	if err := writeFormula(w, e.PC); err != nil {
		return err
	}
	if err := writeRefcountOps(w, e.Ops); err != nil {
		return err
	}
	return writeString(w, e.Ret)
}

func readEntry(r io.Reader, ctx *f.Context, host string, opByID map[uint32]*summary.Operation) (*summary.PathSummaryEntry, error) {
	pc, err := readFormula(r, ctx)
	if err != nil {
		return nil, err
	}
	ops, err := readRefcountOps(r, host, opByID)
	if err != nil {
		return nil, err
	}
	ret, err := readString(r)
	if err != nil {
		return nil, err
	}
	return &summary.PathSummaryEntry{PC: pc, Ops: ops, Ret: ret}, nil
}

// writeBody ports Summary::serialize's body (everything after the
// name/length header, which the caller writes): entry count then each
// entry, dropped-entry count then each dropped entry. ExactPC is not
// part of the wire format — it's a derived, re-simplifiable view of PC
// (visit.RangeToConstant + f.Simplify), not additional information,
// exactly as the original only ever serializes pc, not a second
// "exact" condition.
func writeBody(w io.Writer, s *summary.Summary) error {
	if err := writeUint32(w, uint32(len(s.Entries))); err != nil {
		return err
	}
	for _, e := range s.Entries {
		if err := writeEntry(w, e); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(s.Dropped))); err != nil {
		return err
	}
	for _, e := range s.Dropped {
		if err := writeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

func readBody(r io.Reader, ctx *f.Context, name string) (*summary.Summary, error) {
	opByID := make(map[uint32]*summary.Operation)
	s := summary.New(name, nil)

	total, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < total; i++ {
		e, err := readEntry(r, ctx, name, opByID)
		if err != nil {
			return nil, fmt.Errorf("cache: reading entry %d of %q: %w", i, name, err)
		}
		s.Entries = append(s.Entries, e)
	}

	droppedTotal, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < droppedTotal; i++ {
		e, err := readEntry(r, ctx, name, opByID)
		if err != nil {
			return nil, fmt.Errorf("cache: reading dropped entry %d of %q: %w", i, name, err)
		}
		s.Dropped = append(s.Dropped, e)
	}

	return s, nil
}

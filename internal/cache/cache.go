package cache

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lighttime0/RSC/internal/diag"
	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/summary"
)

// Writer appends summary records to an o-cache file (spec.md §6
// "o-cache"): each record is (name, body length, body), ported from
// Summary::serialize's placeholder-length-then-seek-back pattern,
// adapted to buffer the body in memory first (Go's io.Writer has no
// portable seek-back the way an ofstream does) so the length is known
// before anything is written to w.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteSummary appends s's record. Recovers any contract violation
// raised while walking s's formulas (an unexpected Variable operand,
// an unknown node type) into a returned error rather than panicking
// the caller, per spec.md §7 kind 4.
func (wr *Writer) WriteSummary(s *summary.Summary) (err error) {
	defer diag.Recover(&err)

	var body bytes.Buffer
	if werr := writeBody(&body, s); werr != nil {
		return werr
	}

	if s.Name == "" {
		diag.Violate("cache: summary has no name")
	}
	if err := writeString(wr.w, s.Name); err != nil {
		return err
	}
	if err := writeUint32(wr.w, uint32(body.Len())); err != nil {
		return err
	}
	_, err = wr.w.Write(body.Bytes())
	return err
}

// Index is a random-access-by-name view over an i-cache file (spec.md
// §6 "i-cache"), built by one linear scan over every record on Open
// (cache_open_fin's while loop over name/length/body headers).
type Index struct {
	r      io.ReaderAt
	pos    map[string]int64
	length map[string]uint32

	// Names lists every function with a cached summary, in file order
	// (Serialization.cpp's `fns` list).
	Names []string
}

// Open scans r (which must support random access, e.g. *os.File) and
// builds an Index over every record it contains. size is the total
// byte length of r (an ifstream determines this the same way, via
// seekg(0, end)/tellg before rewinding).
func Open(r io.ReaderAt, size int64) (*Index, error) {
	idx := &Index{r: r, pos: make(map[string]int64), length: make(map[string]uint32)}

	var offset int64
	for offset < size {
		sr := io.NewSectionReader(r, offset, size-offset)
		name, err := readString(sr)
		if err != nil {
			return nil, fmt.Errorf("cache: reading record name at offset %d: %w", offset, err)
		}
		length, err := readUint32(sr)
		if err != nil {
			return nil, fmt.Errorf("cache: reading record length for %q: %w", name, err)
		}
		bodyOffset := offset + int64(len(name)) + 8 // name header (len+bytes) + length field
		idx.pos[name] = bodyOffset
		idx.length[name] = length
		idx.Names = append(idx.Names, name)
		offset = bodyOffset + int64(length)
	}
	return idx, nil
}

// ReadSummary deserializes the record for name under ctx, or ok=false
// if name has no cached record (deserialize_summary's
// name2pos.at miss, ported as a plain bool instead of an exception).
func (idx *Index) ReadSummary(ctx *f.Context, name string) (s *summary.Summary, ok bool, err error) {
	pos, found := idx.pos[name]
	if !found {
		return nil, false, nil
	}
	defer diag.Recover(&err)

	length := idx.length[name]
	sr := io.NewSectionReader(idx.r, pos, int64(length))
	s, err = readBody(sr, ctx, name)
	if err != nil {
		return nil, false, err
	}
	for _, e := range s.Entries {
		for _, op := range e.Ops {
			op.Host = name
		}
	}
	return s, true, nil
}

// Has reports whether name has a cached record, without reading it.
func (idx *Index) Has(name string) bool {
	_, ok := idx.pos[name]
	return ok
}

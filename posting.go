// ═══════════════════════════════════════════════════════════════════════════════
// ON-DISK FORMATS
// ═══════════════════════════════════════════════════════════════════════════════
// blaze unifies what upstream kept as a mix of JSON and pickled records into
// one explicit, versioned binary layout, used for both the partial indexes
// written per batch and the final merged index:
//
// POSTING FILE
// ------------
//
//	[magic: 4 bytes "BLZP"][version: 1 byte]
//	record* :=
//	  [term_len: uint32][term: term_len bytes]
//	  [posting_count: uint32]
//	  ( [doc_id: int32] [tf: float32] ) * posting_count
//
// Records appear in ascending term order. Random access works because the
// offset map below stores, for every term, the exact byte offset at which
// its record begins — seek there and decode exactly one record.
//
// OFFSET MAP FILE
// ---------------
//
//	[magic: 4 bytes "BLZO"][version: 1 byte]
//	[entry_count: uint32]
//	entry* := [term_len: uint32][term: term_len bytes][offset: uint64]
//
// Both formats are little-endian and versioned so a future format change
// can be detected rather than silently misread.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	postingMagic   = "BLZP"
	offsetMapMagic = "BLZO"
	formatVersion  = byte(1)
)

// writeString writes a length-prefixed string: [len uint32][bytes].
func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// readString reads a length-prefixed string written by writeString.
func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writePostingRecord writes one term's record: term, postings count, then
// each (doc_id, tf) pair. It returns the number of bytes written, so callers
// building an offset map can track cumulative offsets without a second pass.
func writePostingRecord(w io.Writer, term string, postings []Posting) (int64, error) {
	counter := &countingWriter{w: w}
	if err := writeString(counter, term); err != nil {
		return counter.n, err
	}
	if err := binary.Write(counter, binary.LittleEndian, uint32(len(postings))); err != nil {
		return counter.n, err
	}
	for _, p := range postings {
		if err := binary.Write(counter, binary.LittleEndian, p.DocID); err != nil {
			return counter.n, err
		}
		if err := binary.Write(counter, binary.LittleEndian, p.TF); err != nil {
			return counter.n, err
		}
	}
	return counter.n, nil
}

// readPostingRecord reads one term's record from r, in the format
// writePostingRecord produces.
func readPostingRecord(r io.Reader) (TermPostings, error) {
	term, err := readString(r)
	if err != nil {
		return TermPostings{}, err
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return TermPostings{}, err
	}
	postings := make([]Posting, count)
	for i := range postings {
		if err := binary.Read(r, binary.LittleEndian, &postings[i].DocID); err != nil {
			return TermPostings{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &postings[i].TF); err != nil {
			return TermPostings{}, err
		}
	}
	return TermPostings{Term: term, Postings: postings}, nil
}

// countingWriter wraps an io.Writer and tracks the total bytes written
// through it, so the posting-file writer can report each record's starting
// offset without a separate Seek/Tell.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writePostingFileHeader writes the magic + version preamble shared by the
// partial and final posting files, returning the header's byte length.
func writePostingFileHeader(w io.Writer) (int64, error) {
	if _, err := io.WriteString(w, postingMagic); err != nil {
		return 0, err
	}
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return 0, err
	}
	return int64(len(postingMagic) + 1), nil
}

// readPostingFileHeader consumes and validates the magic + version
// preamble of a posting file.
func readPostingFileHeader(r io.Reader) error {
	magic := make([]byte, len(postingMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("reading posting file header: %w", err)
	}
	if string(magic) != postingMagic {
		return fmt.Errorf("%w: bad posting file magic", ErrBadArchive)
	}
	version := make([]byte, 1)
	if _, err := io.ReadFull(r, version); err != nil {
		return fmt.Errorf("reading posting file version: %w", err)
	}
	if version[0] != formatVersion {
		return fmt.Errorf("unsupported posting file version %d", version[0])
	}
	return nil
}

// OffsetMap maps a term to the byte offset of its record within a posting
// file, enabling O(1) random-access lookup.
type OffsetMap map[string]int64

// SaveOffsetMap persists an offset map to path in the binary format
// documented at the top of this file.
func SaveOffsetMap(path string, offsets OffsetMap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := io.WriteString(w, offsetMapMagic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(offsets))); err != nil {
		return err
	}
	for term, offset := range offsets {
		if err := writeString(w, term); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint64(offset)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LoadOffsetMap reads an offset map previously written by SaveOffsetMap.
func LoadOffsetMap(path string) (OffsetMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic := make([]byte, len(offsetMapMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading offset map header: %w", err)
	}
	if string(magic) != offsetMapMagic {
		return nil, fmt.Errorf("%w: bad offset map magic", ErrBadArchive)
	}
	version := make([]byte, 1)
	if _, err := io.ReadFull(r, version); err != nil {
		return nil, err
	}
	if version[0] != formatVersion {
		return nil, fmt.Errorf("unsupported offset map version %d", version[0])
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	offsets := make(OffsetMap, count)
	for i := uint32(0); i < count; i++ {
		term, err := readString(r)
		if err != nil {
			return nil, err
		}
		var offset uint64
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return nil, err
		}
		offsets[term] = int64(offset)
	}
	return offsets, nil
}

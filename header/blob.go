// Package header implements the on-disk header-blob format: the
// length-prefixed, tag-indexed entry table shared by a package's
// signature header and metadata header. It parses, structurally
// validates, and exposes the sealed "immutable region" sub-range that
// digest and signature computation runs over.
//
// C.f. rpm's lib/header.c and lib/rpmvs.c for the format this mirrors.
package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Size limits from rpm's header.c: the entry count and data length
// fields are attacker-controlled and must be bounds-checked before any
// allocation is sized from them.
const (
	ilMax   = 0x0000ffff // ~64k entries
	dlMax   = 256 * 1024 * 1024
	sizeMax = 256 * 1024 * 1024
)

// HeaderMagic is the fixed 8-byte marker that prefixes a signature
// header on disk and the canonical digest input.
var HeaderMagic = [8]byte{0x8e, 0xad, 0xe8, 0x01, 0, 0, 0, 0}

var (
	ErrBadHeaderTags = errors.New("header: bad tag count")
	ErrBadHeaderData = errors.New("header: bad data length")
	ErrBadBlobSize   = errors.New("header: blob size mismatch")
	ErrBadMagic      = errors.New("header: bad magic")
	ErrShortRead     = errors.New("header: short read")
)

// Blob is the parsed, validated view of one serialized header: the
// intro counts, the raw entry index, the raw data segment, and (once
// located) the boundaries of the sealed immutable region.
//
// A Blob owns ei, its backing buffer; pe and dataStart are subslices of
// it. The metadata Header built from a Blob (FromBlob) copies the
// entries and data rather than keeping ei.
type Blob struct {
	ei        []byte
	il        uint32
	dl        uint32
	pe        []byte
	dataStart []byte

	regionTag Tag
	ril, rdl  uint32

	entries []Entry
}

// NewBlob parses uh as a complete in-memory header blob: an 8-byte
// {il, dl} intro followed by 16*il bytes of entry index and dl bytes of
// data, exactly. expectRegion names the tag that, if present at entry
// 0, seals an immutable region (HEADERIMMUTABLE for a metadata header,
// HEADERSIGNATURES for a signature header). exactSize requires the
// region to cover the whole blob; with exactSize false, unsealed tags
// appended after the region are accepted (the reader reads a package's
// metadata header this way, so header-only tags can trail the region).
func NewBlob(uh []byte, expectRegion Tag, exactSize bool) (*Blob, error) {
	if len(uh) < 8 {
		return nil, fmt.Errorf("%w: intro too short: %d bytes", ErrBadBlobSize, len(uh))
	}
	il := binary.BigEndian.Uint32(uh[0:4])
	dl := binary.BigEndian.Uint32(uh[4:8])
	if il > ilMax {
		return nil, fmt.Errorf("%w: no. of tags(%d) out of range", ErrBadHeaderTags, il)
	}
	if dl > dlMax {
		return nil, fmt.Errorf("%w: no. of bytes(%d) out of range", ErrBadHeaderData, dl)
	}
	want := 8 + entryInfoSize*int64(il) + int64(dl)
	if want > sizeMax {
		return nil, fmt.Errorf("%w: total size(%d) out of range", ErrBadBlobSize, want)
	}
	if int64(len(uh)) != want {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrBadBlobSize, want, len(uh))
	}

	b := &Blob{
		ei:        uh,
		il:        il,
		dl:        dl,
		pe:        uh[8 : 8+entryInfoSize*int64(il)],
		dataStart: uh[8+entryInfoSize*int64(il):],
	}

	if err := b.region(expectRegion, exactSize); err != nil && !errors.Is(err, ErrNoRegion) {
		return nil, err
	}
	if err := b.verifyEntries(); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadBlob reads a header blob from r. If withMagic, it first reads and
// validates an 8-byte HeaderMagic prefix (the signature header's
// layout); the metadata header has no such prefix. It then reads the
// 8-byte {il, dl} intro and exactly 16*il+dl further bytes, and parses
// the result with NewBlob.
func ReadBlob(r io.Reader, withMagic bool, expectRegion Tag, exactSize bool) (*Blob, error) {
	if withMagic {
		var magic [8]byte
		if _, err := io.ReadFull(r, magic[:]); err != nil {
			return nil, fmt.Errorf("%w: magic: %v", ErrShortRead, err)
		}
		if !bytes.Equal(magic[:], HeaderMagic[:]) {
			return nil, fmt.Errorf("%w: got % x", ErrBadMagic, magic)
		}
	}

	var intro [8]byte
	if _, err := io.ReadFull(r, intro[:]); err != nil {
		return nil, fmt.Errorf("%w: intro: %v", ErrShortRead, err)
	}
	il := binary.BigEndian.Uint32(intro[0:4])
	dl := binary.BigEndian.Uint32(intro[4:8])
	if il > ilMax {
		return nil, fmt.Errorf("%w: no. of tags(%d) out of range", ErrBadHeaderTags, il)
	}
	if dl > dlMax {
		return nil, fmt.Errorf("%w: no. of bytes(%d) out of range", ErrBadHeaderData, dl)
	}

	rest := entryInfoSize*int64(il) + int64(dl)
	uh := make([]byte, 8+rest)
	copy(uh[0:8], intro[:])
	if _, err := io.ReadFull(r, uh[8:]); err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrShortRead, err)
	}
	return NewBlob(uh, expectRegion, exactSize)
}

// Bytes returns the blob's owned backing buffer (the buffer itself, not
// a copy).
func (b *Blob) Bytes() []byte { return b.ei }

// Counts returns the entry count and data length recorded in the intro.
func (b *Blob) Counts() (il, dl uint32) { return b.il, b.dl }

// Entries returns the parsed entry index, in on-disk order.
func (b *Blob) Entries() []Entry { return b.entries }

// Data returns the raw data segment.
func (b *Blob) Data() []byte { return b.dataStart }

// EntryData returns the payload bytes for entry e, re-deriving the
// payload's byte length from its type and count. BIN payloads are
// exactly Count bytes. Variable-length types (STRING, STRING_ARRAY,
// I18N_STRING) return the remainder of the data segment from e's offset
// forward; callers that need exact boundaries use the NUL-scanning
// helpers in structure.go.
func (b *Blob) EntryData(e Entry) ([]byte, error) {
	if e.Offset < 0 || int64(e.Offset) > int64(len(b.dataStart)) {
		return nil, fmt.Errorf("header: entry %s: offset %d out of range", e.Tag, e.Offset)
	}
	n := size(e.Type, e.Count)
	if n < 0 {
		return b.dataStart[e.Offset:], nil
	}
	end := int64(e.Offset) + n
	if end > int64(len(b.dataStart)) {
		return nil, fmt.Errorf("header: entry %s: payload end %d exceeds data length %d", e.Tag, end, len(b.dataStart))
	}
	return b.dataStart[e.Offset:end], nil
}

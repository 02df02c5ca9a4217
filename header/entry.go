package header

import (
	"encoding/binary"
	"fmt"
)

// entryInfoSize is the on-disk size of one entry-index record:
// {tag:u32, type:u32, offset:u32, count:u32}, network byte order.
const entryInfoSize = 16

// Entry describes one tagged value in a header's entry index: its tag,
// its type, the byte offset of its payload into the data segment, and
// the element count of that payload.
type Entry struct {
	Tag    Tag
	Type   Kind
	Offset int32
	Count  uint32
}

// UnmarshalBinary decodes one 16-byte entry-index record. b must be
// exactly entryInfoSize bytes.
func (e *Entry) UnmarshalBinary(b []byte) error {
	if len(b) != entryInfoSize {
		return fmt.Errorf("header: malformed entry record: want %d bytes, got %d", entryInfoSize, len(b))
	}
	e.Tag = Tag(binary.BigEndian.Uint32(b[0:4]))
	e.Type = Kind(binary.BigEndian.Uint32(b[4:8]))
	e.Offset = int32(binary.BigEndian.Uint32(b[8:12]))
	e.Count = binary.BigEndian.Uint32(b[12:16])
	return nil
}

// MarshalBinary encodes e as a 16-byte entry-index record.
func (e *Entry) MarshalBinary() ([]byte, error) {
	b := make([]byte, entryInfoSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(e.Tag))
	binary.BigEndian.PutUint32(b[4:8], uint32(e.Type))
	binary.BigEndian.PutUint32(b[8:12], uint32(e.Offset))
	binary.BigEndian.PutUint32(b[12:16], e.Count)
	return b, nil
}

// size returns the payload size, in bytes, of count elements of type t,
// or -1 if t has no fixed element size (callers must derive the size
// from the data itself, e.g. by scanning for NULs).
func size(t Kind, count uint32) int64 {
	es := t.ElementSize()
	if es < 0 {
		return -1
	}
	return int64(es) * int64(count)
}

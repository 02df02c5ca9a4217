package header

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildBlob assembles a complete header blob byte slice from a list of
// entries and a data segment, computing the il/dl intro automatically.
// Entries must already have correct offsets into data.
func buildBlob(entries []Entry, data []byte) []byte {
	var buf bytes.Buffer
	var il [4]byte
	var dl [4]byte
	binary.BigEndian.PutUint32(il[:], uint32(len(entries)))
	binary.BigEndian.PutUint32(dl[:], uint32(len(data)))
	buf.Write(il[:])
	buf.Write(dl[:])
	for _, e := range entries {
		b, _ := e.MarshalBinary()
		buf.Write(b)
	}
	buf.Write(data)
	return buf.Bytes()
}

// sealedRegion builds a region tag entry 0 plus its trailer, given the
// entries and data that make up the rest of the region.
func sealedRegion(tag Tag, rest []Entry, data []byte) (regionEntry Entry, trailerBytes []byte, trailerOffset int32) {
	ril := len(rest) + 1
	trailerOffset = int32(len(data))
	regionEntry = Entry{Tag: tag, Type: TypeBin, Offset: trailerOffset, Count: entryInfoSize}
	trailer := Entry{Tag: tag, Type: TypeBin, Offset: -int32(ril) * entryInfoSize, Count: entryInfoSize}
	tb, _ := trailer.MarshalBinary()
	return regionEntry, tb, trailerOffset
}

func TestNewBlobWellFormed(t *testing.T) {
	name := []byte("pkg\x00")
	region, trailer, trailerOff := sealedRegion(TagHeaderImmutable, []Entry{{Tag: TagName, Type: TypeString, Offset: 0, Count: 1}}, name)
	data := append(append([]byte{}, name...), trailer...)

	entries := []Entry{
		region,
		{Tag: TagName, Type: TypeString, Offset: 0, Count: 1},
	}
	blob := buildBlob(entries, data)

	b, err := NewBlob(blob, TagHeaderImmutable, true)
	if err != nil {
		t.Fatalf("NewBlob: %v", err)
	}
	if !b.HasRegion() {
		t.Fatal("expected a sealed region")
	}
	ril, rdl := b.RegionCounts()
	if ril != 2 {
		t.Errorf("ril = %d, want 2", ril)
	}
	if want := uint32(trailerOff) + entryInfoSize; rdl != want {
		t.Errorf("rdl = %d, want %d", rdl, want)
	}

	got := b.Entries()
	want := entries
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestNewBlobSizeMismatch(t *testing.T) {
	blob := []byte{0, 0, 0, 1, 0, 0, 0, 0} // claims 1 entry, no entry bytes follow
	if _, err := NewBlob(blob, TagHeaderImmutable, true); err == nil {
		t.Fatal("expected a blob-size error")
	}
}

func TestNewBlobOversizeTagCount(t *testing.T) {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], 0x0010_0000)
	if _, err := NewBlob(buf[:], TagHeaderImmutable, true); err == nil {
		t.Fatal("expected ErrBadHeaderTags")
	}
}

func TestNewBlobNoRegionIsV3(t *testing.T) {
	name := []byte("pkg\x00")
	entries := []Entry{{Tag: TagName, Type: TypeString, Offset: 0, Count: 1}}
	blob := buildBlob(entries, name)

	b, err := NewBlob(blob, TagHeaderImmutable, true)
	if err != nil {
		t.Fatalf("NewBlob: %v", err)
	}
	if b.HasRegion() {
		t.Fatal("expected no region on a v3-shaped header")
	}
}

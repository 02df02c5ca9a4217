package retrofit

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/quay/rpmverify/header"
)

func TestV3SealsUnsealedHeader(t *testing.T) {
	name := []byte("pkg\x00")
	entries := []header.Entry{{Tag: header.TagName, Type: header.TypeString, Offset: 0, Count: 1}}
	h := header.NewHeader(entries, name)

	if h.HasRegion() {
		t.Fatal("fresh header unexpectedly has a region")
	}
	V3(h)
	if !h.HasRegion() {
		t.Fatal("V3 did not seal a region")
	}
	ril, rdl := h.RegionCounts()
	if ril != 2 {
		t.Errorf("ril = %d, want 2", ril)
	}
	if rdl != uint32(len(name))+16 {
		t.Errorf("rdl = %d, want %d", rdl, len(name)+16)
	}
	if h.Entries()[0].Tag != header.TagHeaderImmutable {
		t.Errorf("entry 0 tag = %s, want HEADERIMMUTABLE", h.Entries()[0].Tag)
	}
	if h.Entries()[1].Tag != header.TagName {
		t.Errorf("entry 1 tag = %s, want NAME (original entry shifted, not lost)", h.Entries()[1].Tag)
	}

	// V3 is idempotent: a second call on an already-sealed header is a no-op.
	before := h.RegionTag()
	V3(h)
	if h.RegionTag() != before {
		t.Fatal("V3 re-sealed an already-sealed header")
	}
}

func TestFileListExpandsOldFilenames(t *testing.T) {
	paths := []string{"/usr/bin/foo", "/usr/bin/bar", "/etc/foo.conf"}
	var data bytes.Buffer
	for _, p := range paths {
		data.WriteString(p)
		data.WriteByte(0)
	}
	entries := []header.Entry{
		{Tag: header.TagOldFilenames, Type: header.TypeStringArray, Offset: 0, Count: uint32(len(paths))},
	}
	h := header.NewHeader(entries, data.Bytes())

	FileList(h)

	_, dirPayload, ok := h.Get(header.TagDirnames)
	if !ok {
		t.Fatal("DIRNAMES not added")
	}
	dirs := splitStringArray(dirPayload, 2)
	wantDirs := []string{"/usr/bin/", "/etc/"}
	for i, d := range wantDirs {
		if dirs[i] != d {
			t.Errorf("dirs[%d] = %q, want %q", i, dirs[i], d)
		}
	}

	_, basePayload, ok := h.Get(header.TagBasenames)
	if !ok {
		t.Fatal("BASENAMES not added")
	}
	bases := splitStringArray(basePayload, 3)
	wantBases := []string{"foo", "bar", "foo.conf"}
	for i, b := range wantBases {
		if bases[i] != b {
			t.Errorf("bases[%d] = %q, want %q", i, bases[i], b)
		}
	}

	_, idxPayload, ok := h.Get(header.TagDirindexes)
	if !ok {
		t.Fatal("DIRINDEXES not added")
	}
	wantIdx := []uint32{0, 0, 1}
	for i, want := range wantIdx {
		got := binary.BigEndian.Uint32(idxPayload[i*4:])
		if got != want {
			t.Errorf("dirindexes[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestFileListNoopWhenModernTagsPresent(t *testing.T) {
	entries := []header.Entry{
		{Tag: header.TagDirnames, Type: header.TypeStringArray, Offset: 0, Count: 1},
	}
	h := header.NewHeader(entries, []byte("/\x00"))
	FileList(h)
	if len(h.Entries()) != 1 {
		t.Fatalf("FileList modified a header that already had modern tags: %d entries", len(h.Entries()))
	}
}

func TestSigMergeRemapsLegacyTags(t *testing.T) {
	sizeBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(sizeBytes, 12345)

	sigEntries := []header.Entry{
		{Tag: header.TagSigSize, Type: header.TypeInt32, Offset: 0, Count: 1},
		{Tag: header.TagName, Type: header.TypeString, Offset: 4, Count: 1}, // outside reserved range: discarded
	}
	sigData := append(append([]byte{}, sizeBytes...), []byte("x\x00")...)
	sigBlobBytes := buildBlobBytes(sigEntries, sigData)
	sigHeader, err := header.NewBlob(sigBlobBytes, header.TagHeaderSignatures, false)
	if err != nil {
		t.Fatalf("NewBlob(sig): %v", err)
	}

	meta := header.NewHeader(nil, nil)
	SigMerge(meta, sigHeader)

	e, payload, ok := meta.Get(header.TagSigSizeModern)
	if !ok {
		t.Fatal("SIGSIZE (modern) not merged in")
	}
	if e.Count != 1 {
		t.Errorf("merged entry count = %d, want 1", e.Count)
	}
	if got := binary.BigEndian.Uint32(payload); got != 12345 {
		t.Errorf("merged SIGSIZE payload = %d, want 12345", got)
	}
	if meta.IsEntry(header.TagName) {
		t.Error("out-of-range tag NAME should have been discarded, not merged")
	}
}

func TestSigMergeIdempotent(t *testing.T) {
	sizeBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(sizeBytes, 7)
	sigEntries := []header.Entry{{Tag: header.TagSigSize, Type: header.TypeInt32, Offset: 0, Count: 1}}
	sigBlobBytes := buildBlobBytes(sigEntries, sizeBytes)
	sigHeader, err := header.NewBlob(sigBlobBytes, header.TagHeaderSignatures, false)
	if err != nil {
		t.Fatalf("NewBlob(sig): %v", err)
	}

	meta := header.NewHeader(nil, nil)
	SigMerge(meta, sigHeader)
	first := len(meta.Entries())
	SigMerge(meta, sigHeader)
	if len(meta.Entries()) != first {
		t.Fatalf("second SigMerge changed entry count: %d -> %d", first, len(meta.Entries()))
	}
}

// buildBlobBytes assembles a complete, regionless header blob (il/dl
// intro + entries + data) for feeding to header.NewBlob in tests that
// only need a structurally valid blob, not a sealed region.
func buildBlobBytes(entries []header.Entry, data []byte) []byte {
	var buf bytes.Buffer
	var il, dl [4]byte
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

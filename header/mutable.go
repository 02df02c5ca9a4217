package header

// Header is the mutable, in-memory form of a parsed metadata header:
// the external "header_{get,put,is_entry,convert}" collaborator named
// in the reader core's design. Unlike Blob, which is a read-only view
// over one fixed serialized buffer, a Header can grow -- the
// orchestrator's retrofit and legacy-merge steps add entries to it
// after the region has already been verified and, where applicable,
// cryptographically checked.
//
// Writing a Header back out to the on-disk blob encoding is out of
// scope (writing packages is a Non-goal); Header only needs to support
// in-memory lookup and append.
type Header struct {
	entries   []Entry
	data      []byte
	regionTag Tag
	ril, rdl  uint32
}

// NewHeader builds a Header directly from an entry list and data
// segment, with no sealed region. Used by tests and by any caller
// assembling a Header outside of a parsed Blob.
func NewHeader(entries []Entry, data []byte) *Header {
	e := make([]Entry, len(entries))
	copy(e, entries)
	d := make([]byte, len(data))
	copy(d, data)
	return &Header{entries: e, data: d}
}

// FromBlob copies b's verified entries and data into a new, independent
// Header. b is not retained.
func FromBlob(b *Blob) *Header {
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	data := make([]byte, len(b.dataStart))
	copy(data, b.dataStart)
	return &Header{
		entries:   entries,
		data:      data,
		regionTag: b.regionTag,
		ril:       b.ril,
		rdl:       b.rdl,
	}
}

// Entries returns the header's current entry index, in order.
func (h *Header) Entries() []Entry { return h.entries }

// HasRegion reports whether h has a sealed immutable region.
func (h *Header) HasRegion() bool { return h.regionTag != 0 }

// RegionTag returns the tag sealing h's region, or 0 if none.
func (h *Header) RegionTag() Tag { return h.regionTag }

// RegionCounts returns h's region entry-count and data-length.
func (h *Header) RegionCounts() (ril, rdl uint32) { return h.ril, h.rdl }

// IsEntry reports whether tag is present in the header.
func (h *Header) IsEntry(tag Tag) bool {
	_, ok := h.find(tag)
	return ok
}

// Get returns the entry and payload bytes for tag, if present.
func (h *Header) Get(tag Tag) (Entry, []byte, bool) {
	i, ok := h.find(tag)
	if !ok {
		return Entry{}, nil, false
	}
	e := h.entries[i]
	n := size(e.Type, e.Count)
	if n < 0 {
		return e, h.data[e.Offset:], true
	}
	return e, h.data[e.Offset : int64(e.Offset)+n], true
}

func (h *Header) find(tag Tag) (int, bool) {
	for i, e := range h.entries {
		if e.Tag == tag {
			return i, true
		}
	}
	return -1, false
}

// Put appends a new entry with the given tag, type, count, and raw
// payload bytes to the header. It is the caller's responsibility to
// ensure payload's length matches typ/count (string-like payloads
// include their own NUL terminator(s)). Put is a no-op, returning
// false, if tag is already present -- retrofit and merge steps only
// ever add entries that IsEntry has already confirmed are absent.
func (h *Header) Put(tag Tag, typ Kind, count uint32, payload []byte) bool {
	if h.IsEntry(tag) {
		return false
	}
	off := int32(len(h.data))
	h.entries = append(h.entries, Entry{Tag: tag, Type: typ, Offset: off, Count: count})
	h.data = append(h.data, payload...)
	return true
}

// DataLen returns the current length of the data segment.
func (h *Header) DataLen() int { return len(h.data) }

// AppendRaw appends payload to the data segment without creating an
// entry, returning the offset it was written at. Used for region
// trailer records, which live in the data segment but aren't
// themselves a visible entry in the index.
func (h *Header) AppendRaw(payload []byte) int32 {
	off := int32(len(h.data))
	h.data = append(h.data, payload...)
	return off
}

// SealRegion records a newly synthesized immutable region boundary.
// Used by the v3 retrofit when inserting a region tag where none
// existed (spec's "convert" operation).
func (h *Header) SealRegion(tag Tag, ril, rdl uint32) {
	h.regionTag = tag
	h.ril = ril
	h.rdl = rdl
}

// InsertAt inserts e at position i in the entry index, shifting later
// entries back. Used by the v3 retrofit to place a synthesized region
// tag at entry 0 without disturbing the rest of the index.
func (h *Header) InsertAt(i int, e Entry) {
	h.entries = append(h.entries, Entry{})
	copy(h.entries[i+1:], h.entries[i:])
	h.entries[i] = e
}

// Package retrofit implements the in-memory upgrades the orchestrator
// applies to a successfully-verified metadata header: sealing a region
// into a legacy v3 header, expanding a compressed file list, and
// merging legacy signature tags forward. None of these touch disk --
// "retrofit" means upgrading the in-memory Header the reader returns,
// never rewriting the package file itself (writing packages is a
// Non-goal).
package retrofit

import "github.com/quay/rpmverify/header"

// V3 seals an unsealed legacy v3 header: a header with no immutable
// region tag at entry 0 gets one synthesized, covering every entry and
// every data byte that existed before the retrofit plus the trailer
// record itself. After V3 runs, h.HasRegion() is always true, so every
// downstream consumer can assume a region is present without special
// casing legacy input.
//
// A no-op if h already has a region.
func V3(h *header.Header) {
	if h.HasRegion() {
		return
	}

	il := uint32(len(h.Entries()))
	dl := uint32(h.DataLen())

	// The trailer's offset field is the two's-complement negative of
	// the region's own entry-index byte size, matching the on-disk
	// convention verified by header.Blob's region check.
	ril := il + 1
	trailer := header.Entry{Tag: header.TagHeaderImmutable, Type: header.TypeBin, Offset: -int32(ril) * 16, Count: 16}
	tb, err := trailer.MarshalBinary()
	if err != nil {
		// MarshalBinary only fails on malformed Entry values, which
		// can't happen for a literal we just constructed above.
		panic(err)
	}
	trailerOff := h.AppendRaw(tb)

	region := header.Entry{Tag: header.TagHeaderImmutable, Type: header.TypeBin, Offset: trailerOff, Count: 16}
	h.InsertAt(0, region)

	h.SealRegion(header.TagHeaderImmutable, ril, dl+16)
}

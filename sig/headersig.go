package sig

import (
	"bytes"

	"github.com/quay/rpmverify/header"
)

// CheckHeaderOnly is C4: it scans a metadata header blob's trailing
// entries (those appended after the sealed immutable region) for a
// digest or signature tag, honors p's disables, and -- if one is found
// -- verifies it against the region's canonical bytes.
//
// Returns NotFound if no enabled trailing tag exists; the caller treats
// that as "nothing more to check, the blob's structural validity is
// sufficient" (spec §4.4).
func CheckHeaderOnly(b *header.Blob, p Policy, kr KeyRing) (Verdict, *Info, error) {
	entries := b.Entries()
	ril, rdl := b.RegionCounts()
	if ril >= uint32(len(entries)) {
		return NotFound, nil, nil
	}

	chosen, ok := p.SelectHeaderOnly(entries, ril)
	if !ok {
		return NotFound, nil, nil
	}

	payload, err := b.EntryData(chosen)
	if err != nil {
		return Fail, nil, err
	}
	info, err := Parse(chosen.Tag, payload)
	if err != nil {
		return Fail, nil, err
	}

	h, err := NewDigest(info.HashAlgo)
	if err != nil {
		return Fail, info, err
	}
	regionIndex, regionData := b.ImmutableRegion()
	HeaderOnlyDigest(h, ril, rdl, regionIndex, regionData)

	if info.Kind == KindDigest {
		if bytes.Equal(h.Sum(nil), info.Digest) {
			return Ok, info, nil
		}
		return Fail, info, nil
	}

	if kr == nil {
		return NoKey, info, nil
	}
	return Verify(kr, info, h), info, nil
}

package sig

import (
	"crypto"
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/quay/rpmverify/header"
)

// NewDigest is the digest_init external collaborator: it returns a
// fresh hash.Hash for algo. hash.Hash already gives us update (Write)
// and finalize (Sum) for free, so there's no separate wrapper type --
// reproducing one would just be shuffling calls to the stdlib through
// an extra layer of indirection.
func NewDigest(algo crypto.Hash) (hash.Hash, error) {
	if !algo.Available() {
		return nil, fmt.Errorf("sig: digest algorithm %v unavailable", algo)
	}
	return algo.New(), nil
}

// HeaderOnlyDigest computes the canonical digest input for a header-only
// signature/digest tag (spec §4.4): HEADER_MAGIC, the region counts,
// the region's own entry-index bytes, and the region's own data bytes,
// each fed to h in that exact order. Deviating from this order breaks
// bit-compatibility with existing signed packages.
func HeaderOnlyDigest(h hash.Hash, ril, rdl uint32, regionIndex, regionData []byte) {
	h.Write(header.HeaderMagic[:])
	var counts [8]byte
	binary.BigEndian.PutUint32(counts[0:4], ril)
	binary.BigEndian.PutUint32(counts[4:8], rdl)
	h.Write(counts[:])
	h.Write(regionIndex)
	h.Write(regionData)
}

// PackageDigest computes the canonical digest input for a whole-package
// signature (spec §4.5.5): HEADER_MAGIC followed by the raw bytes of
// the metadata header's immutable region (index then data).
func PackageDigest(h hash.Hash, regionIndex, regionData []byte) {
	h.Write(header.HeaderMagic[:])
	h.Write(regionIndex)
	h.Write(regionData)
}

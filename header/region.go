package header

import (
	"errors"
	"fmt"
)

// ErrNoRegion signals "entry 0 is not the expected region tag" -- not a
// structural failure, a signal that the header predates regions (a
// legacy v3 header) and should be retrofitted rather than rejected.
var ErrNoRegion = errors.New("header: no immutable region tag")

var (
	ErrRegionMissing      = errors.New("header: region missing: il < 1")
	ErrBadRegionTag       = errors.New("header: bad region tag: wrong type or count")
	ErrBadRegionOffset    = errors.New("header: bad region offset")
	ErrBadRegionTrailer   = errors.New("header: bad region trailer")
	ErrBadRegionSize      = errors.New("header: bad region size")
	ErrRegionSizeMismatch = errors.New("header: region size mismatch")
)

// region locates the immutable region named by want among the blob's
// entries and records its boundaries in ril/rdl/regionTag. It mirrors
// rpm's headerVerifyRegion: entry 0, if present, names the region; a
// trailer record stashed in the data segment closes it.
//
// Returning ErrNoRegion is not fatal to the caller -- callers treat it
// as "this header has no sealed region yet" and continue with the v3
// retrofit path.
func (b *Blob) region(want Tag, exactSize bool) error {
	if b.il < 1 {
		return ErrRegionMissing
	}
	var e0 Entry
	if err := e0.UnmarshalBinary(b.pe[0:entryInfoSize]); err != nil {
		return err
	}
	if e0.Tag != want {
		return ErrNoRegion
	}
	if e0.Type != TypeBin || e0.Count != entryInfoSize {
		return fmt.Errorf("%w: tag %s has type %s count %d", ErrBadRegionTag, e0.Tag, e0.Type, e0.Count)
	}
	if e0.Offset < 0 || int64(e0.Offset)+entryInfoSize > int64(b.dl) {
		return fmt.Errorf("%w: offset %d", ErrBadRegionOffset, e0.Offset)
	}
	regionEnd := b.dataStart[e0.Offset : int64(e0.Offset)+entryInfoSize]
	rdl := uint32(e0.Offset) + entryInfoSize

	var trailer Entry
	if err := trailer.UnmarshalBinary(regionEnd); err != nil {
		return err
	}
	// The trailer's offset field is stored as the two's-complement
	// negative of the region's entry-index byte size; invert it back.
	trailerOff := -trailer.Offset
	if trailer.Tag != want || trailer.Type != TypeBin || trailer.Count != entryInfoSize {
		return fmt.Errorf("%w: tag %s type %s count %d", ErrBadRegionTrailer, trailer.Tag, trailer.Type, trailer.Count)
	}
	if trailerOff < 0 || trailerOff%entryInfoSize != 0 {
		return fmt.Errorf("%w: trailer offset %d not a multiple of %d", ErrBadRegionSize, trailerOff, entryInfoSize)
	}
	ril := uint32(trailerOff) / entryInfoSize
	if ril > b.il || rdl > b.dl {
		return fmt.Errorf("%w: ril=%d il=%d rdl=%d dl=%d", ErrBadRegionSize, ril, b.il, rdl, b.dl)
	}
	if exactSize && (ril != b.il || rdl != b.dl) {
		return fmt.Errorf("%w: ril=%d il=%d rdl=%d dl=%d", ErrRegionSizeMismatch, ril, b.il, rdl, b.dl)
	}

	b.regionTag = want
	b.ril = ril
	b.rdl = rdl
	return nil
}

// ImmutableRegion returns the raw bytes covered by the sealed region:
// the canonical prefix fed to header-only digest/signature computation
// is HEADER_MAGIC || be32(ril) || be32(rdl) || this slice's two parts.
// Returns the entry-index prefix and the data prefix separately since
// they are not contiguous in the owning buffer's logical view.
func (b *Blob) ImmutableRegion() (index []byte, data []byte) {
	return b.pe[:int64(b.ril)*entryInfoSize], b.dataStart[:b.rdl]
}

// RegionCounts returns the sealed region's entry count and data length.
func (b *Blob) RegionCounts() (ril, rdl uint32) { return b.ril, b.rdl }

// HasRegion reports whether a region tag was found and sealed (as
// opposed to a legacy v3 header with no region at all).
func (b *Blob) HasRegion() bool { return b.regionTag != 0 }

// RegionTag returns the tag that seals this blob's region, or 0 if
// HasRegion is false.
func (b *Blob) RegionTag() Tag { return b.regionTag }

package header

import (
	"errors"
	"fmt"
)

// ErrBadHeaderEntry is returned for any entry that fails the
// tag-by-tag sanity pass: bad type code, offset out of bounds, count
// out of bounds, offsets out of order, or a string-like payload with
// the wrong number of NUL terminators.
var ErrBadHeaderEntry = errors.New("header: bad header entry")

// knownType, where present, restricts a tag to the given type. This is
// the trimmed stand-in for rpm's full tag table (see tag.go); it only
// covers tags this core inspects by name. A tag absent from this map is
// accepted with any in-range type, matching rpm's handling of tags it
// doesn't recognize -- any 32-bit tag can legally appear in a header.
var knownType = map[Tag]Kind{
	TagHeaderImage:      TypeBin,
	TagHeaderSignatures: TypeBin,
	TagHeaderImmutable:  TypeBin,
	TagHeaderRegions:    TypeBin,
	TagSigSize:          TypeInt32,
	TagSigPGP:           TypeBin,
	TagSigMD5:           TypeBin,
	TagSigGPG:           TypeBin,
	TagDSAHeader:        TypeBin,
	TagRSAHeader:        TypeBin,
	TagSHA1Header:       TypeString,
	TagSHA256Header:     TypeString,
	TagOldFilenames:     TypeStringArray,
	TagDirnames:         TypeStringArray,
	TagBasenames:        TypeStringArray,
	TagDirindexes:       TypeInt32,
	TagSourcePackage:    TypeInt32,
	TagSourceRPM:        TypeString,
}

// checkTagType enforces the trimmed type table above. Tags it has no
// opinion on pass through unchecked.
func checkTagType(tag Tag, t Kind) error {
	want, ok := knownType[tag]
	if !ok {
		return nil
	}
	if want != t {
		return fmt.Errorf("%w: tag %s has type %s, want %s", ErrBadHeaderEntry, tag, t, want)
	}
	return nil
}

// verifyEntries is C3: tag-by-tag sanity of the full entry index.
// Mirrors rpm's headerVerifyInfo.
func (b *Blob) verifyEntries() error {
	entries := make([]Entry, b.il)
	var prevOffset int32 = -1
	for i := uint32(0); i < b.il; i++ {
		rec := b.pe[i*entryInfoSize : (i+1)*entryInfoSize]
		var e Entry
		if err := e.UnmarshalBinary(rec); err != nil {
			return err
		}

		if e.Type < TypeMin || e.Type > TypeMax {
			return fmt.Errorf("%w: entry %d: tag %s: type %d out of range", ErrBadHeaderEntry, i, e.Tag, e.Type)
		}
		if align := e.Type.Alignment(); align > 1 && e.Offset%align != 0 {
			return fmt.Errorf("%w: entry %d: tag %s: offset %d misaligned for type %s", ErrBadHeaderEntry, i, e.Tag, e.Offset, e.Type)
		}
		// Entry 0's offset points at the region trailer, stored past
		// the end of the region's own data -- it is exempt from the
		// ordering invariant that binds every other entry.
		if !(i == 0 && b.HasRegion()) {
			if e.Offset < prevOffset {
				return fmt.Errorf("%w: entry %d: tag %s: offset %d out of order (prev %d)", ErrBadHeaderEntry, i, e.Tag, e.Offset, prevOffset)
			}
			prevOffset = e.Offset
		}

		if err := checkTagType(e.Tag, e.Type); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		if err := b.verifyPayloadBounds(i, e); err != nil {
			return err
		}

		entries[i] = e
	}
	b.entries = entries
	return nil
}

// verifyPayloadBounds checks that entry i's payload lies wholly within
// the data segment and, for string-like types, contains exactly Count
// NUL terminators with the last one inside the segment.
func (b *Blob) verifyPayloadBounds(i uint32, e Entry) error {
	if e.Offset < 0 || int64(e.Offset) > int64(len(b.dataStart)) {
		return fmt.Errorf("%w: entry %d: tag %s: offset %d exceeds data length %d", ErrBadHeaderEntry, i, e.Tag, e.Offset, len(b.dataStart))
	}
	switch e.Type {
	case TypeString:
		if e.Count != 1 {
			return fmt.Errorf("%w: entry %d: tag %s: STRING count %d != 1", ErrBadHeaderEntry, i, e.Tag, e.Count)
		}
		return b.checkNULs(i, e, 1)
	case TypeStringArray, TypeI18nString:
		return b.checkNULs(i, e, e.Count)
	default:
		n := size(e.Type, e.Count)
		if n < 0 {
			return fmt.Errorf("%w: entry %d: tag %s: unsized type %s", ErrBadHeaderEntry, i, e.Tag, e.Type)
		}
		end := int64(e.Offset) + n
		if end > int64(len(b.dataStart)) {
			return fmt.Errorf("%w: entry %d: tag %s: payload end %d exceeds data length %d", ErrBadHeaderEntry, i, e.Tag, end, len(b.dataStart))
		}
	}
	return nil
}

// checkNULs scans the data segment from e.Offset and requires exactly
// want NUL bytes to appear before the end of the segment, the last of
// which terminates the final string.
func (b *Blob) checkNULs(i uint32, e Entry, want uint32) error {
	rest := b.dataStart[e.Offset:]
	var n uint32
	last := -1
	for idx, c := range rest {
		if c == 0 {
			n++
			last = idx
			if n == want {
				break
			}
		}
	}
	if n != want {
		return fmt.Errorf("%w: entry %d: tag %s: found %d NULs, want %d", ErrBadHeaderEntry, i, e.Tag, n, want)
	}
	if last < 0 {
		return fmt.Errorf("%w: entry %d: tag %s: no NUL terminator found", ErrBadHeaderEntry, i, e.Tag)
	}
	return nil
}

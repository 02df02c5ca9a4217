package header

// C.f. rpm's include/rpm/rpmtag.h -- trimmed to the tags this core
// inspects by name. A complete tag table is a lookup service for
// package-metadata consumers; this core only cares about region tags,
// signature tags, and the handful of general tags the orchestrator's
// retrofits touch.

// Tag is the term for the key in the key-value pairs of a header entry.
type Tag int32

// Region tags.
const (
	TagHeaderImage      Tag = 61
	TagHeaderSignatures Tag = 62
	TagHeaderImmutable  Tag = 63
	TagHeaderRegions    Tag = 64

	TagHeaderI18nTable Tag = 100
)

// Signing tags. The legacy numbering predates the "modern" tags and is
// remapped by the retrofit package during the legacy signature-tag merge.
const (
	tagSigBase Tag = 256

	TagSigSize    Tag = tagSigBase + 1
	TagSigLeMD5   Tag = tagSigBase + 2 // internal, obsolete
	TagSigPGP     Tag = tagSigBase + 3
	TagSigLeMD5_2 Tag = tagSigBase + 4 // internal, obsolete
	TagSigMD5     Tag = tagSigBase + 5
	TagSigGPG     Tag = tagSigBase + 6
	TagSigGPG5    Tag = tagSigBase + 7 // internal, obsolete
	TagBadSHA1_1  Tag = tagSigBase + 8 // internal, obsolete
	TagBadSHA1_2  Tag = tagSigBase + 9 // internal, obsolete
	TagPubKeys    Tag = tagSigBase + 10
	TagDSAHeader  Tag = tagSigBase + 11
	TagRSAHeader  Tag = tagSigBase + 12
	TagSHA1Header Tag = tagSigBase + 13

	TagLongSigSize     Tag = tagSigBase + 14
	TagLongArchiveSize Tag = tagSigBase + 15
	TagSigPGP5         Tag = tagSigBase + 16 // legacy, distinct from the obsolete internal GPG5 combined tag
	TagSHA256Header    Tag = tagSigBase + 17

	// TagBase is the first tag value outside the reserved signature-tag
	// range [SIGBASE, TAGBASE).
	TagBase Tag = 1000
)

// Modern counterparts of the legacy signature tags above. The legacy
// tags sit in the reserved signature-tag range [256, 1000); the modern
// tags live in their own dedicated block from 5001, clear of both that
// range and the general header tags starting at 1000.
// TagLongArchiveSize (the legacy "PAYLOADSIZE" tag) remaps to
// TagArchiveSizeModern.
const (
	tagSigModernBase Tag = 5000

	TagSigSizeModern     Tag = tagSigModernBase + 1
	TagSigPGPModern      Tag = tagSigModernBase + 2
	TagSigMD5Modern      Tag = tagSigModernBase + 3
	TagSigGPGModern      Tag = tagSigModernBase + 4
	TagSigPGP5Modern     Tag = tagSigModernBase + 5
	TagArchiveSizeModern Tag = tagSigModernBase + 6
)

// General tags touched by the retrofit package.
const (
	TagName         Tag = 1000
	TagSourcePackage Tag = 1106
	TagSourceRPM    Tag = 1044
	TagOldFilenames Tag = 1027
	TagDirindexes   Tag = 1116
	TagBasenames    Tag = 1117
	TagDirnames     Tag = 1118
)

// Kind is the kind of data stored in a given Tag's payload.
type Kind uint32

// Tag data types.
const (
	TypeNull Kind = iota
	TypeChar
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeString
	TypeBin
	TypeStringArray
	TypeI18nString

	TypeRegionTag = TypeBin
	TypeMin       = TypeChar
	TypeMax       = TypeI18nString
)

// elementSize is the fixed per-element size for scalar types; -1 for
// variable-length types (TypeString, TypeStringArray, TypeI18nString).
var elementSize = [...]int{
	TypeNull:        0,
	TypeChar:        1,
	TypeInt8:        1,
	TypeInt16:       2,
	TypeInt32:       4,
	TypeInt64:       8,
	TypeString:      -1,
	TypeBin:         1,
	TypeStringArray: -1,
	TypeI18nString:  -1,
}

// Alignment returns the required alignment, in bytes, for a value of
// this type's offset into the data segment.
func (t Kind) Alignment() int32 {
	switch t {
	case TypeNull, TypeChar, TypeInt8, TypeString, TypeBin, TypeStringArray, TypeI18nString:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32:
		return 4
	case TypeInt64:
		return 8
	}
	return 1
}

// IsScalarSized reports whether t has a fixed per-element byte size.
func (t Kind) IsScalarSized() bool {
	return int(t) >= 0 && int(t) < len(elementSize) && elementSize[t] >= 0
}

// ElementSize returns the fixed per-element byte size for t, or -1 if t
// is variable-length.
func (t Kind) ElementSize() int {
	if !t.IsScalarSized() {
		return -1
	}
	return elementSize[t]
}

// String implements fmt.Stringer, by hand -- there's no generator
// wired up for this trimmed tag set.
func (t Tag) String() string {
	switch t {
	case TagHeaderImage:
		return "HEADERIMAGE"
	case TagHeaderSignatures:
		return "HEADERSIGNATURES"
	case TagHeaderImmutable:
		return "HEADERIMMUTABLE"
	case TagHeaderRegions:
		return "HEADERREGIONS"
	case TagHeaderI18nTable:
		return "HEADERI18NTABLE"
	case TagSigSize:
		return "SIG_SIZE"
	case TagSigPGP:
		return "SIG_PGP"
	case TagSigMD5:
		return "SIG_MD5"
	case TagSigGPG:
		return "SIG_GPG"
	case TagDSAHeader:
		return "DSAHEADER"
	case TagRSAHeader:
		return "RSAHEADER"
	case TagSHA1Header:
		return "SHA1HEADER"
	case TagSHA256Header:
		return "SHA256HEADER"
	case TagSourcePackage:
		return "SOURCEPACKAGE"
	case TagSourceRPM:
		return "SOURCERPM"
	case TagOldFilenames:
		return "OLDFILENAMES"
	case TagDirindexes:
		return "DIRINDEXES"
	case TagBasenames:
		return "BASENAMES"
	case TagDirnames:
		return "DIRNAMES"
	default:
	}
	return "Tag(" + itoa(int32(t)) + ")"
}

func (k Kind) String() string {
	switch k {
	case TypeNull:
		return "NULL"
	case TypeChar:
		return "CHAR"
	case TypeInt8:
		return "INT8"
	case TypeInt16:
		return "INT16"
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeString:
		return "STRING"
	case TypeBin:
		return "BIN"
	case TypeStringArray:
		return "STRING_ARRAY"
	case TypeI18nString:
		return "I18NSTRING"
	}
	return "Kind(" + itoa(int32(k)) + ")"
}

// itoa avoids pulling in strconv just for Stringer implementations.
func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

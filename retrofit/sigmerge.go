package retrofit

import "github.com/quay/rpmverify/header"

// Reserved signature-tag range: legacy packages numbered their
// signature tags here before modern tags took over the 1000+ range.
const (
	sigBase = 256
	tagBase = 1000
)

// legacyRemap maps each legacy signature tag to its modern counterpart.
var legacyRemap = map[header.Tag]header.Tag{
	header.TagSigSize:         header.TagSigSizeModern,
	header.TagSigPGP:          header.TagSigPGPModern,
	header.TagSigMD5:          header.TagSigMD5Modern,
	header.TagSigGPG:          header.TagSigGPGModern,
	header.TagSigPGP5:         header.TagSigPGP5Modern,
	header.TagLongArchiveSize: header.TagArchiveSizeModern,
}

// SigMerge implements the legacy signature-tag merge: every entry in
// sigHeader whose tag falls in the reserved signature-tag range
// [SIGBASE, TAGBASE) is remapped (legacy tags only) and, if not already
// present in meta and sane by type/count, copied into meta. Entries
// outside the reserved range are discarded -- they belong to a
// different header entirely, not a legacy survivor of this one. A
// failure to read one entry's payload skips that entry rather than
// aborting the whole merge; the merge is best-effort by design.
func SigMerge(meta *header.Header, sigHeader *header.Blob) {
	for _, e := range sigHeader.Entries() {
		if e.Tag < sigBase || e.Tag >= tagBase {
			continue
		}
		target := e.Tag
		if modern, ok := legacyRemap[e.Tag]; ok {
			target = modern
		}
		if meta.IsEntry(target) {
			continue
		}
		if !saneForMerge(e.Type, e.Count) {
			continue
		}
		payload, err := sigHeader.EntryData(e)
		if err != nil {
			continue
		}
		meta.Put(target, e.Type, e.Count, payload)
	}
}

// saneForMerge is the sanity rule a candidate entry's (type, count)
// must pass to be copied forward: scalar types carry exactly one
// value, STRING/BIN payloads are capped well below the header's own
// data-length ceiling, and STRING_ARRAY/I18N_STRING are dropped
// outright -- observed source behavior, reproduced as specified rather
// than second-guessed.
func saneForMerge(t header.Kind, count uint32) bool {
	switch t {
	case header.TypeStringArray, header.TypeI18nString:
		return false
	case header.TypeString, header.TypeBin:
		return count < 16*1024
	default:
		return count == 1
	}
}

package retrofit

import (
	"encoding/binary"
	"path"
	"strings"

	"github.com/quay/rpmverify/header"
)

// FileList expands a legacy OLDFILENAMES entry (a flat string-array of
// absolute paths) into the modern DIRNAMES/BASENAMES/DIRINDEXES triple.
// Directory names are deduplicated against the immediately preceding
// entry only, preserving first-seen order -- the same adjacent-run
// dedup a real file list's directory table uses, since paths are
// conventionally emitted directory-grouped.
//
// A no-op if OLDFILENAMES is absent, or if the modern tags are already
// present.
func FileList(h *header.Header) {
	if h.IsEntry(header.TagDirnames) || h.IsEntry(header.TagBasenames) || h.IsEntry(header.TagDirindexes) {
		return
	}
	e, payload, ok := h.Get(header.TagOldFilenames)
	if !ok {
		return
	}

	names := splitStringArray(payload, e.Count)

	var dirnames, basenames []string
	var dirindexes []uint32
	cur := -1
	for _, full := range names {
		dir, base := path.Split(full)
		if cur < 0 || dirnames[cur] != dir {
			cur = len(dirnames)
			dirnames = append(dirnames, dir)
		}
		basenames = append(basenames, base)
		dirindexes = append(dirindexes, uint32(cur))
	}

	putStringArray(h, header.TagDirnames, dirnames)
	putStringArray(h, header.TagBasenames, basenames)
	putInt32Array(h, header.TagDirindexes, dirindexes)
}

// splitStringArray splits a NUL-delimited payload into exactly count
// strings, dropping each terminating NUL.
func splitStringArray(payload []byte, count uint32) []string {
	out := make([]string, 0, count)
	start := 0
	for i, c := range payload {
		if c == 0 {
			out = append(out, string(payload[start:i]))
			start = i + 1
			if uint32(len(out)) == count {
				break
			}
		}
	}
	return out
}

func putStringArray(h *header.Header, tag header.Tag, vals []string) {
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(v)
		b.WriteByte(0)
	}
	h.Put(tag, header.TypeStringArray, uint32(len(vals)), []byte(b.String()))
}

func putInt32Array(h *header.Header, tag header.Tag, vals []uint32) {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(buf[i*4:], v)
	}
	h.Put(tag, header.TypeInt32, uint32(len(vals)), buf)
}

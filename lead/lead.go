// Package lead reads the 96-byte fixed lead record at the start of a
// package file: the external "lead reader" collaborator named in the
// reader core's design. It identifies the file as a package at all,
// and distinguishes a binary package from a source package.
//
// Grounded on the bounds-checked, fixed-width preamble parsing style
// header.Blob uses for its own 8-byte intro -- the same discipline
// (read exactly N bytes, validate magic/discriminant fields, no
// partial acceptance) applied to a different fixed record.
package lead

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Size is the fixed on-disk size of a lead record.
const Size = 96

// leadMagic is the 4-byte marker at the start of every package file.
var leadMagic = [4]byte{0xed, 0xab, 0xee, 0xdb}

// Type discriminates a binary package from a source package.
type Type uint16

const (
	Binary Type = 0
	Source Type = 1
)

func (t Type) String() string {
	switch t {
	case Binary:
		return "binary"
	case Source:
		return "source"
	}
	return "unknown"
}

// ErrNotAPackage is returned when the input's first 4 bytes don't match
// leadMagic. The caller treats this as non-fatal: the file is probably
// a text manifest or something else entirely, not a corrupt package.
var ErrNotAPackage = errors.New("lead: not a package file")

// Lead is the parsed form of the fixed 96-byte lead record.
type Lead struct {
	Major, Minor byte
	Type         Type
	ArchNum      uint16
	Name         string
	OSNum        uint16
	SignatureType uint16
}

// Read parses a Lead from r, which must provide at least Size bytes.
// Returns ErrNotAPackage if the magic doesn't match; any
// other error is a short read or malformed record.
func Read(r io.Reader) (*Lead, error) {
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("lead: short read: %w", err)
	}
	if buf[0] != leadMagic[0] || buf[1] != leadMagic[1] || buf[2] != leadMagic[2] || buf[3] != leadMagic[3] {
		return nil, ErrNotAPackage
	}

	l := &Lead{
		Major:         buf[4],
		Minor:         buf[5],
		Type:          Type(binary.BigEndian.Uint16(buf[6:8])),
		ArchNum:       binary.BigEndian.Uint16(buf[8:10]),
		OSNum:         binary.BigEndian.Uint16(buf[76:78]),
		SignatureType: binary.BigEndian.Uint16(buf[78:80]),
	}
	if nameEnd := indexNUL(buf[10:76]); nameEnd >= 0 {
		l.Name = string(buf[10 : 10+nameEnd])
	} else {
		l.Name = string(buf[10:76])
	}
	return l, nil
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// Package keyring provides the default concrete backing for the
// "keyring" external collaborator: a set of trusted OpenPGP public keys
// looked up by key id. Loading, rotating, or otherwise managing the
// keyring's contents is a Non-goal of the reader core; this package
// just holds a parsed openpgp.EntityList and answers lookups.
package keyring

import (
	"io"

	"golang.org/x/crypto/openpgp"
)

// Ring is an in-memory keyring of trusted signer keys.
type Ring struct {
	entities openpgp.EntityList
}

// ReadArmored loads an ASCII-armored OpenPGP keyring, e.g. an exported
// distro signing-key file.
func ReadArmored(r io.Reader) (*Ring, error) {
	el, err := openpgp.ReadArmoredKeyRing(r)
	if err != nil {
		return nil, err
	}
	return &Ring{entities: el}, nil
}

// Read loads a binary (non-armored) OpenPGP keyring.
func Read(r io.Reader) (*Ring, error) {
	el, err := openpgp.ReadKeyRing(r)
	if err != nil {
		return nil, err
	}
	return &Ring{entities: el}, nil
}

// Empty returns a Ring with no keys; every lookup misses. Useful for
// structural-only verification runs (vsflags disabling all signatures).
func Empty() *Ring { return &Ring{} }

// ByKeyID implements sig.KeyRing.
func (r *Ring) ByKeyID(keyID uint64) (*openpgp.Entity, bool) {
	if r == nil {
		return nil, false
	}
	matches := r.entities.KeysById(keyID)
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0].Entity, true
}

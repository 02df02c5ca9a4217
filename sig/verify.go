package sig

import (
	"hash"

	"golang.org/x/crypto/openpgp"
)

// Verdict is the outcome of one signature/digest check.
type Verdict int

const (
	Ok Verdict = iota
	NotTrusted
	NoKey
	NotFound
	Fail
)

func (v Verdict) String() string {
	switch v {
	case Ok:
		return "OK"
	case NotTrusted:
		return "NOTTRUSTED"
	case NoKey:
		return "NOKEY"
	case NotFound:
		return "NOTFOUND"
	case Fail:
		return "FAIL"
	}
	return "UNKNOWN"
}

// KeyRing is the external "keyring" collaborator: an opaque handle
// capable of looking a signer up by key id. The default implementation
// wraps an openpgp.EntityList (see package keyring).
type KeyRing interface {
	// ByKeyID returns the entity owning keyID, and whether it was found.
	ByKeyID(keyID uint64) (*openpgp.Entity, bool)
}

// Verify is the verification primitive external collaborator: given a
// keyring, a parsed Info, and the hash already fed the canonical digest
// bytes, it returns a Verdict. A bare digest tag (Info.Kind ==
// KindDigest) has no key to check -- it validates itself by the caller
// comparing Info.Digest to h.Sum(nil); Verify is only meaningful for
// KindSignature entries, and panics if called on anything else since
// that would be a orchestration bug, not a data-dependent outcome.
func Verify(kr KeyRing, info *Info, h hash.Hash) Verdict {
	if info.Kind != KindSignature {
		panic("sig: Verify called on a non-signature Info")
	}
	ent, ok := kr.ByKeyID(info.SignerKeyID)
	if !ok {
		return NoKey
	}
	if entityRevoked(ent) {
		return NotTrusted
	}

	var err error
	switch {
	case info.Signature != nil:
		err = ent.PrimaryKey.VerifySignature(h, info.Signature)
	case info.SignatureV3 != nil:
		err = ent.PrimaryKey.VerifySignatureV3(h, info.SignatureV3)
	default:
		return Fail
	}
	if err != nil {
		return Fail
	}
	return Ok
}

// entityRevoked reports whether any identity on ent carries a
// revocation signature -- the one trust signal this core can evaluate
// without a full web-of-trust model (managing the keyring is a
// Non-goal; this core only refuses keys the keyring itself marks dead).
func entityRevoked(ent *openpgp.Entity) bool {
	for _, ident := range ent.Identities {
		if len(ident.Revocations) > 0 {
			return true
		}
	}
	return false
}

// Package sig implements header-only and whole-package signature and
// digest selection and verification: C4 (HeaderSigVerifier) and the
// algorithm-selection step of the package reader orchestrator.
package sig

import "github.com/quay/rpmverify/header"

// Policy is the caller-supplied set of disable switches over the fixed
// algorithm set, plus the priority order selection runs under. It's a
// pure value: selection is a function of (candidate tags, Policy) only.
type Policy struct {
	NoSHA256 bool
	NoSHA1   bool
	NoRSA    bool
	NoDSA    bool
	NoMD5    bool
	NoPGP    bool
	NoGPG    bool
}

// disabled reports whether t is switched off by p.
func (p Policy) disabled(t header.Tag) bool {
	switch t {
	case header.TagSHA256Header:
		return p.NoSHA256
	case header.TagSHA1Header:
		return p.NoSHA1
	case header.TagRSAHeader:
		return p.NoRSA
	case header.TagDSAHeader:
		return p.NoDSA
	case header.TagSigMD5:
		return p.NoMD5
	case header.TagSigPGP, header.TagSigPGP5:
		return p.NoPGP
	case header.TagSigGPG:
		return p.NoGPG
	}
	return false
}

// headerOnlyPriority is C4's fixed selection order among the tags that
// can appear outside a metadata header's sealed region: a signature is
// preferred over a bare digest, RSA over DSA over SHA1.
var headerOnlyPriority = []header.Tag{
	header.TagRSAHeader,
	header.TagDSAHeader,
	header.TagSHA1Header,
}

// packagePriority is the signature-header selection order used by the
// orchestrator's whole-package algorithm-selection step (spec step 3):
// DSA, then RSA, then SHA1.
var packagePriority = []header.Tag{
	header.TagDSAHeader,
	header.TagRSAHeader,
	header.TagSHA1Header,
}

// SelectHeaderOnly picks at most one header-only digest/signature tag
// from entries[ril:], honoring p's disables, by headerOnlyPriority. Ties
// within one priority tier are broken by entry-index order (first
// enabled match wins).
func (p Policy) SelectHeaderOnly(entries []header.Entry, ril uint32) (header.Entry, bool) {
	return selectByPriority(entries[ril:], p, headerOnlyPriority)
}

// SelectPackage picks at most one signature tag from the signature
// header's entries, honoring p's disables, by packagePriority.
func (p Policy) SelectPackage(entries []header.Entry) (header.Entry, bool) {
	return selectByPriority(entries, p, packagePriority)
}

func selectByPriority(entries []header.Entry, p Policy, priority []header.Tag) (header.Entry, bool) {
	for _, want := range priority {
		if p.disabled(want) {
			continue
		}
		for _, e := range entries {
			if e.Tag == want {
				return e, true
			}
		}
	}
	return header.Entry{}, false
}

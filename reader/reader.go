// Package reader implements C5, the PackageReader orchestrator: lead →
// signature header → metadata header → algorithm selection →
// signature check → retrofits → legacy signature-tag merge.
package reader

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/quay/rpmverify/header"
	"github.com/quay/rpmverify/lead"
	"github.com/quay/rpmverify/retrofit"
	"github.com/quay/rpmverify/sig"
)

// Reader is a configured package reader: a signature policy and a
// keyring to check candidate signatures against. The zero value has a
// default (all-enabled) Policy and a nil Keyring, which makes every
// signature check report NoKey.
type Reader struct {
	Policy  sig.Policy
	Keyring sig.KeyRing
	Mapper  *ErrorMapper
}

// Result is the reader entry point's return value (spec's
// read_package).
type Result struct {
	Verdict sig.Verdict
	// Header is populated when Verdict is Ok, NotTrusted, or NoKey.
	Header *header.Header
	// KeyID is the low 32 bits of the signer key id, or 0 if no
	// signature was evaluated.
	KeyID uint32
	// Message is a diagnostic, set on Fail outcomes, and set to
	// "Header sanity check: OK" when nothing was there to verify and the
	// read reports Ok.
	Message string
}

// Read parses and verifies one package file from r.
func (rd *Reader) Read(ctx context.Context, r io.Reader) (*Result, error) {
	leadType, ok, err := readLead(r)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	if !ok {
		res := &Result{Verdict: sig.NotFound}
		rd.report(ctx, res)
		return res, nil
	}

	sigBlob, err := readSigHeader(r)
	if err != nil {
		res := &Result{Verdict: sig.Fail, Message: err.Error()}
		rd.report(ctx, res)
		return res, fmt.Errorf("reader: signature header: %w", err)
	}

	chosenPkgTag, havePkgTag := rd.Policy.SelectPackage(sigBlob.Entries())

	metaBlob, err := header.ReadBlob(r, false, header.TagHeaderImmutable, false)
	if err != nil {
		res := &Result{Verdict: sig.Fail, Message: err.Error()}
		rd.report(ctx, res)
		return res, fmt.Errorf("reader: metadata header: %w", err)
	}

	var headerOnlyVerdict sig.Verdict = sig.NotFound
	var headerOnlyInfo *sig.Info
	if ril, _ := metaBlob.RegionCounts(); ril < uint32(len(metaBlob.Entries())) {
		var herr error
		headerOnlyVerdict, headerOnlyInfo, herr = sig.CheckHeaderOnly(metaBlob, rd.Policy, rd.Keyring)
		if herr != nil {
			res := &Result{Verdict: sig.Fail, Message: herr.Error()}
			rd.report(ctx, res)
			return res, fmt.Errorf("reader: header-only signature check: %w", herr)
		}
		if headerOnlyVerdict == sig.Fail {
			res := &Result{Verdict: sig.Fail, Message: "header-only signature verification failed"}
			rd.report(ctx, res)
			return res, nil
		}
	}

	overall := headerOnlyVerdict
	var chosenInfo *sig.Info = headerOnlyInfo
	if havePkgTag {
		verdict, info, perr := rd.verifyPackage(sigBlob, metaBlob, chosenPkgTag)
		if perr != nil {
			res := &Result{Verdict: sig.Fail, Message: perr.Error()}
			rd.report(ctx, res)
			return res, fmt.Errorf("reader: package signature: %w", perr)
		}
		overall = verdict
		chosenInfo = info
	}

	var keyID uint32
	if chosenInfo != nil && chosenInfo.Kind == sig.KindSignature {
		keyID = chosenInfo.KeyIDBytes()
	}

	if overall == sig.Fail {
		res := &Result{Verdict: sig.Fail, KeyID: keyID, Message: "verification failed"}
		rd.report(ctx, res)
		return res, nil
	}

	// overall is NotFound only when neither the signature header nor the
	// metadata header ever offered a tag for selection -- §4.4's own
	// contract for that case is "the caller will accept the blob's
	// structural validity as sufficient", not a failure to report.
	// Reaching here means every structural check already passed and
	// nothing failed verification, so a genuinely unsigned (or
	// all-disabled) header reads as Ok, never as NotFound.
	var message string
	if overall == sig.NotFound {
		overall = sig.Ok
		message = "Header sanity check: OK"
	}

	meta := header.FromBlob(metaBlob)
	applyRetrofits(meta, leadType)
	retrofit.SigMerge(meta, sigBlob)

	res := &Result{Verdict: overall, KeyID: keyID, Header: meta, Message: message}
	rd.report(ctx, res)
	return res, nil
}

func (rd *Reader) report(ctx context.Context, res *Result) {
	if rd.Mapper == nil {
		return
	}
	rd.Mapper.Report(ctx, res.Verdict, res.KeyID, res.Message)
}

// readLead reads the lead record, treating ErrNotAPackage as a non-fatal
// "this isn't a package" signal rather than a parse failure.
func readLead(r io.Reader) (lead.Type, bool, error) {
	l, err := lead.Read(r)
	if err != nil {
		if errors.Is(err, lead.ErrNotAPackage) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("lead: %w", err)
	}
	return l.Type, true, nil
}

// readSigHeader reads the signature header and skips the 0..7 padding
// bytes the format inserts to keep the following metadata header
// 8-byte aligned.
func readSigHeader(r io.Reader) (*header.Blob, error) {
	b, err := header.ReadBlob(r, true, header.TagHeaderSignatures, true)
	if err != nil {
		return nil, err
	}
	il, dl := b.Counts()
	sigLen := int64(16) + entrySize(il) + int64(dl)
	if pad := (8 - sigLen%8) % 8; pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return nil, fmt.Errorf("padding: %w", err)
		}
	}
	return b, nil
}

func entrySize(il uint32) int64 { return 16 * int64(il) }

// verifyPackage computes the canonical whole-package digest over the
// metadata header's immutable region and checks it against the
// signature-header tag selected by algorithm selection (spec §4.5.5).
func (rd *Reader) verifyPackage(sigBlob, metaBlob *header.Blob, chosen header.Entry) (sig.Verdict, *sig.Info, error) {
	payload, err := sigBlob.EntryData(chosen)
	if err != nil {
		return sig.Fail, nil, err
	}
	info, err := sig.Parse(chosen.Tag, payload)
	if err != nil {
		return sig.Fail, nil, err
	}
	h, err := sig.NewDigest(info.HashAlgo)
	if err != nil {
		return sig.Fail, info, err
	}
	regionIndex, regionData := metaBlob.ImmutableRegion()
	sig.PackageDigest(h, regionIndex, regionData)

	if info.Kind == sig.KindDigest {
		if bytes.Equal(h.Sum(nil), info.Digest) {
			return sig.Ok, info, nil
		}
		return sig.Fail, info, nil
	}
	if rd.Keyring == nil {
		return sig.NoKey, info, nil
	}
	return sig.Verify(rd.Keyring, info, h), info, nil
}

// applyRetrofits runs the legacy-upgrade sequence named in spec §4.5.6:
// source-package disambiguation, then exactly one of the v3-region
// retrofit or the compressed-filelist expansion (a header only ever
// needs one -- a v3 header predates OLDFILENAMES entirely, and a
// sealed modern header never needs reseal ing).
func applyRetrofits(meta *header.Header, leadType lead.Type) {
	if leadType == lead.Source {
		if !meta.IsEntry(header.TagSourcePackage) {
			meta.Put(header.TagSourcePackage, header.TypeInt32, 1, encodeInt32(1))
		}
		// A binary package always carries SOURCERPM; a source package
		// conventionally doesn't. Leave an explicit placeholder so
		// downstream consumers that expect SOURCERPM on every header
		// don't have to special-case "absent means source".
		if !meta.IsEntry(header.TagSourceRPM) {
			meta.Put(header.TagSourceRPM, header.TypeString, 1, []byte("(none)\x00"))
		}
	}

	if !meta.HasRegion() {
		retrofit.V3(meta)
	} else if meta.IsEntry(header.TagOldFilenames) {
		retrofit.FileList(meta)
	}
}

func encodeInt32(v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

package sig

import (
	"bytes"
	"crypto"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/openpgp/packet"

	"github.com/quay/rpmverify/header"
)

// Kind distinguishes a bare digest tag from a full signature tag.
type Kind int

const (
	KindDigest Kind = iota
	KindSignature
)

// Info is the parsed form of one signature/digest tag's payload,
// produced by the signature-parse external collaborator. It carries
// just enough to drive digest computation and verification: which hash
// algorithm the tag names, and -- for signature tags -- the parsed
// OpenPGP signature packet and its signer key id.
type Info struct {
	Kind     Kind
	Tag      header.Tag
	HashAlgo crypto.Hash

	// Signature is non-nil only when Kind == KindSignature.
	Signature *packet.Signature
	// SignatureV3 is set instead of Signature for legacy V3 OpenPGP
	// signature packets (rpm's historical default).
	SignatureV3 *packet.SignatureV3

	// SignerKeyID is the big-endian signer-id field of the parsed
	// signature packet, or 0 for a bare digest tag.
	SignerKeyID uint64

	// Digest is the decoded payload for a bare digest tag (SHA1HEADER,
	// SHA256HEADER store a hex string; this is the decoded bytes).
	Digest []byte
}

var (
	// ErrUnsupportedTag is returned for a tag this core has no parser for.
	ErrUnsupportedTag = errors.New("sig: unsupported signature/digest tag")
	// ErrNoSignaturePacket is returned when a BIN signature payload
	// contains no recognizable OpenPGP signature packet.
	ErrNoSignaturePacket = errors.New("sig: no OpenPGP signature packet in payload")
)

// Parse decodes the payload of entry (already sliced to its exact
// bytes by the caller) according to tag, producing an Info. Mirrors the
// PGP-packet parsing `rpm/native_db.go` and `internal/rpm/info.go` do
// when reading a package's Signature field.
func Parse(tag header.Tag, payload []byte) (*Info, error) {
	switch tag {
	case header.TagSHA1Header:
		d, err := decodeHexDigest(payload)
		if err != nil {
			return nil, fmt.Errorf("sig: SHA1HEADER: %w", err)
		}
		return &Info{Kind: KindDigest, Tag: tag, HashAlgo: crypto.SHA1, Digest: d}, nil
	case header.TagSHA256Header:
		d, err := decodeHexDigest(payload)
		if err != nil {
			return nil, fmt.Errorf("sig: SHA256HEADER: %w", err)
		}
		return &Info{Kind: KindDigest, Tag: tag, HashAlgo: crypto.SHA256, Digest: d}, nil
	case header.TagRSAHeader, header.TagDSAHeader, header.TagSigPGP, header.TagSigGPG, header.TagSigPGP5:
		return parseSignature(tag, payload)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedTag, tag)
}

func decodeHexDigest(payload []byte) ([]byte, error) {
	// Header string payloads are NUL-terminated; trim before decoding.
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return hex.DecodeString(string(payload))
}

func parseSignature(tag header.Tag, payload []byte) (*Info, error) {
	r := packet.NewReader(bytes.NewReader(payload))
	p, err := r.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSignaturePacket, err)
	}
	info := &Info{Kind: KindSignature, Tag: tag}
	switch sig := p.(type) {
	case *packet.Signature:
		info.Signature = sig
		info.HashAlgo = sig.Hash
		if sig.IssuerKeyId != nil {
			info.SignerKeyID = *sig.IssuerKeyId
		}
	case *packet.SignatureV3:
		info.SignatureV3 = sig
		info.HashAlgo = sig.Hash
		info.SignerKeyID = sig.IssuerKeyId
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNoSignaturePacket, p)
	}
	return info, nil
}

// KeyIDBytes returns the low 32 bits of the signer key id, big-endian,
// matching spec step 4.5.8's "bytes [4..8) of the signer-id field".
func (i *Info) KeyIDBytes() uint32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i.SignerKeyID)
	return binary.BigEndian.Uint32(b[4:8])
}

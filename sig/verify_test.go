package sig

import (
	"bytes"
	"crypto"
	"testing"
	"time"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/packet"

	"github.com/quay/rpmverify/header"
	"github.com/quay/rpmverify/keyring"
)

// newTestSigner generates a throwaway OpenPGP entity. 1024-bit RSA
// keeps key generation fast; these tests exercise the parse/verify
// wiring, not key strength.
func newTestSigner(t *testing.T) *openpgp.Entity {
	t.Helper()
	ent, err := openpgp.NewEntity("rpmverify test", "", "test@example.invalid", &packet.Config{RSABits: 1024})
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	return ent
}

// signPayload produces a real, serialized OpenPGP signature packet
// over msg, in the raw (non-armored) BIN form an RSAHEADER/DSAHEADER
// tag's payload carries on disk.
func signPayload(t *testing.T, signer *openpgp.Entity, msg []byte) []byte {
	t.Helper()
	h := crypto.SHA1.New()
	h.Write(msg)

	keyID := signer.PrimaryKey.KeyId
	sigPkt := &packet.Signature{
		SigType:      packet.SigTypeBinary,
		PubKeyAlgo:   signer.PrimaryKey.PubKeyAlgo,
		Hash:         crypto.SHA1,
		CreationTime: time.Now(),
		IssuerKeyId:  &keyID,
	}
	if err := sigPkt.Sign(h, signer.PrivateKey, nil); err != nil {
		t.Fatalf("sign: %v", err)
	}
	var buf bytes.Buffer
	if err := sigPkt.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return buf.Bytes()
}

func ringWith(t *testing.T, signer *openpgp.Entity) *keyring.Ring {
	t.Helper()
	var buf bytes.Buffer
	if err := signer.Serialize(&buf); err != nil {
		t.Fatalf("serialize entity: %v", err)
	}
	r, err := keyring.Read(&buf)
	if err != nil {
		t.Fatalf("keyring.Read: %v", err)
	}
	return r
}

func TestParseSignatureRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	msg := []byte("canonical digest input")
	payload := signPayload(t, signer, msg)

	info, err := Parse(header.TagRSAHeader, payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if info.Kind != KindSignature {
		t.Fatalf("Kind = %v, want KindSignature", info.Kind)
	}
	if info.Signature == nil {
		t.Fatal("expected a parsed V4 Signature packet")
	}
	if info.SignerKeyID != signer.PrimaryKey.KeyId {
		t.Fatalf("SignerKeyID = %x, want %x", info.SignerKeyID, signer.PrimaryKey.KeyId)
	}
	if info.HashAlgo != crypto.SHA1 {
		t.Fatalf("HashAlgo = %v, want SHA1", info.HashAlgo)
	}
}

func TestVerifyKeyTrusted(t *testing.T) {
	signer := newTestSigner(t)
	msg := []byte("canonical digest input")
	payload := signPayload(t, signer, msg)

	info, err := Parse(header.TagRSAHeader, payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	h := crypto.SHA1.New()
	h.Write(msg)

	if got := Verify(ringWith(t, signer), info, h); got != Ok {
		t.Fatalf("Verify = %v, want Ok", got)
	}
}

func TestVerifyKeyAbsent(t *testing.T) {
	signer := newTestSigner(t)
	msg := []byte("canonical digest input")
	payload := signPayload(t, signer, msg)

	info, err := Parse(header.TagRSAHeader, payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	h := crypto.SHA1.New()
	h.Write(msg)

	if got := Verify(keyring.Empty(), info, h); got != NoKey {
		t.Fatalf("Verify = %v, want NoKey", got)
	}
}

func TestVerifyTamperedDigestFails(t *testing.T) {
	signer := newTestSigner(t)
	msg := []byte("canonical digest input")
	payload := signPayload(t, signer, msg)

	info, err := Parse(header.TagRSAHeader, payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	h := crypto.SHA1.New()
	h.Write([]byte("a different message entirely"))

	if got := Verify(ringWith(t, signer), info, h); got != Fail {
		t.Fatalf("Verify = %v, want Fail", got)
	}
}

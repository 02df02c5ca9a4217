package keyring

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
)

// newTestEntity generates a throwaway entity for the lookup tests
// below. 1024-bit RSA keeps key generation fast.
func newTestEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	ent, err := openpgp.NewEntity("rpmverify test", "", "test@example.invalid", &packet.Config{RSABits: 1024})
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	return ent
}

func TestReadBinaryKeyring(t *testing.T) {
	ent := newTestEntity(t)
	var buf bytes.Buffer
	if err := ent.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	r, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	got, ok := r.ByKeyID(ent.PrimaryKey.KeyId)
	if !ok {
		t.Fatal("expected a hit for the entity's own key id")
	}
	if got.PrimaryKey.KeyId != ent.PrimaryKey.KeyId {
		t.Fatalf("returned entity key id = %x, want %x", got.PrimaryKey.KeyId, ent.PrimaryKey.KeyId)
	}

	if _, ok := r.ByKeyID(ent.PrimaryKey.KeyId ^ 0xffffffff); ok {
		t.Fatal("expected a miss for an unrelated key id")
	}
}

func TestReadArmoredKeyring(t *testing.T) {
	ent := newTestEntity(t)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode: %v", err)
	}
	if err := ent.Serialize(w); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor writer: %v", err)
	}

	r, err := ReadArmored(&buf)
	if err != nil {
		t.Fatalf("ReadArmored: %v", err)
	}
	if _, ok := r.ByKeyID(ent.PrimaryKey.KeyId); !ok {
		t.Fatal("expected a hit for the armored entity's key id")
	}
}

func TestEmptyRingAlwaysMisses(t *testing.T) {
	r := Empty()
	if _, ok := r.ByKeyID(0x1234567890abcdef); ok {
		t.Fatal("expected Empty() to never find a key")
	}
}

func TestNilRingMisses(t *testing.T) {
	var r *Ring
	if _, ok := r.ByKeyID(1); ok {
		t.Fatal("expected a nil *Ring to miss rather than panic")
	}
}

package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
)

// SignatureLength is the width of a serialized signature: 32 byte R, 32
// byte S and a one byte recovery id.
const SignatureLength = 65

// DigestLength is the width of a signable digest.
const DigestLength = 32

// compactSigOffset is the header offset of a compact signature with an
// uncompressed public key, as expected by the underlying library.
const compactSigOffset = 27

// Recoverer resolves the identity that produced a signature over a
// digest. It is the single capability the forwarder needs injected.
type Recoverer interface {
	// Recover returns the signing identity. It must reject malformed and
	// non-canonical signatures.
	Recover(digest, sig []byte) (galleon.Address, error)
}

// Secp256k1 is the production Recoverer. Signatures are 65 bytes in the
// R || S || V form with V being a 0 or 1 recovery id. Signatures with an S
// value over half the curve order are rejected, otherwise a third party
// could flip S into a second valid encoding of the same signature.
type Secp256k1 struct{}

var _ Recoverer = Secp256k1{}

func (Secp256k1) Recover(digest, sig []byte) (galleon.Address, error) {
	if len(digest) != DigestLength {
		return nil, errors.Wrapf(errors.ErrInput, "digest must be %d bytes", DigestLength)
	}
	if len(sig) != SignatureLength {
		return nil, errors.Wrapf(errors.ErrInput, "signature must be %d bytes", SignatureLength)
	}
	if v := sig[64]; v >= 2 {
		return nil, errors.Wrapf(errors.ErrInput, "recovery id out of range: %d", v)
	}

	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(sig[32:64]); overflow {
		return nil, errors.Wrap(errors.ErrInput, "signature S overflows the curve order")
	}
	if s.IsOverHalfOrder() {
		return nil, errors.Wrap(errors.ErrInput, "non-canonical signature S")
	}

	compact := make([]byte, SignatureLength)
	compact[0] = compactSigOffset + sig[64]
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "recover: %s", err)
	}
	return PubkeyAddress(pub), nil
}

// PubkeyAddress derives the 20 byte identity of a public key: the last 20
// bytes of the keccak256 hash of the uncompressed key without its format
// prefix.
func PubkeyAddress(pub *btcec.PublicKey) galleon.Address {
	raw := pub.SerializeUncompressed()
	hash := Keccak256(raw[1:])
	return galleon.Address(hash[12:])
}

// PrivateKey wraps a secp256k1 private key. It is used by clients signing
// forward requests and by tests; the ledger itself never holds one.
type PrivateKey struct {
	key *btcec.PrivateKey
}

// GenPrivateKey creates a new random key.
func GenPrivateKey() (*PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "generate key: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// PublicKey returns the public half of this key.
func (k *PrivateKey) PublicKey() *btcec.PublicKey {
	return k.key.PubKey()
}

// Address returns the identity this key signs for.
func (k *PrivateKey) Address() galleon.Address {
	return PubkeyAddress(k.key.PubKey())
}

// Sign produces a 65 byte R || S || V signature over the given digest.
// The produced S is always canonical.
func (k *PrivateKey) Sign(digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, errors.Wrapf(errors.ErrInput, "digest must be %d bytes", DigestLength)
	}
	compact, err := ecdsa.SignCompact(k.key, digest, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "sign: %s", err)
	}
	sig := make([]byte, SignatureLength)
	copy(sig[:64], compact[1:])
	sig[64] = compact[0] - compactSigOffset
	return sig, nil
}

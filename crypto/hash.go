// Package crypto wraps the secp256k1 primitives used to authenticate
// forwarded requests. Signature verification is exposed behind the small
// Recoverer interface so application logic can be tested with a fake
// recoverer returning fixed identities.
package crypto

import (
	"golang.org/x/crypto/sha3"
)

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

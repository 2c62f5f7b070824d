package relay

import (
	"encoding/binary"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/crypto"
	"github.com/galleon-dao/galleon/errors"
)

// Type descriptors are fixed ASCII strings agreed by signer and verifier.
// Changing either invalidates every signature ever produced.
const (
	domainType  = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	requestType = "ForwardRequest(address from,address to,uint256 value,uint256 gas,uint256 nonce,bytes data)"
)

// Domain binds signatures to one forwarder deployment on one network. It
// is fixed at forwarder creation.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract galleon.Address
}

func (d Domain) Validate() error {
	if d.Name == "" {
		return errors.Wrap(errors.ErrEmpty, "name")
	}
	if d.Version == "" {
		return errors.Wrap(errors.ErrEmpty, "version")
	}
	if err := d.VerifyingContract.Validate(); err != nil {
		return errors.Wrap(err, "verifying contract")
	}
	return nil
}

// Separator returns the 32 byte domain separator hash.
func (d Domain) Separator() []byte {
	return crypto.Keccak256(
		crypto.Keccak256([]byte(domainType)),
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		abiUint64(d.ChainID),
		abiAddress(d.VerifyingContract),
	)
}

// abiAddress left-pads an address to a 32 byte word.
func abiAddress(addr galleon.Address) []byte {
	word := make([]byte, 32)
	copy(word[32-len(addr):], addr)
	return word
}

// abiUint64 encodes n as a big-endian 32 byte word.
func abiUint64(n uint64) []byte {
	word := make([]byte, 32)
	binary.BigEndian.PutUint64(word[24:], n)
	return word
}

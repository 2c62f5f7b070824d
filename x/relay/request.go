package relay

import (
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/crypto"
	"github.com/galleon-dao/galleon/errors"
)

// ForwardRequest is the structure a user signs off-chain. It is ephemeral
// and never persisted; its fields fully determine the signed digest.
type ForwardRequest struct {
	From     galleon.Address
	To       galleon.Address
	Value    *uint256.Int
	Gas      uint64
	Sequence int64
	Data     []byte
}

func (r ForwardRequest) Validate() error {
	if err := r.From.Validate(); err != nil {
		return errors.Wrap(err, "from")
	}
	if err := r.To.Validate(); err != nil {
		return errors.Wrap(err, "to")
	}
	if r.Sequence < 0 {
		return errors.Wrap(errors.ErrInput, "negative sequence")
	}
	return nil
}

// StructHash returns the 32 byte hash over the typed request fields. The
// payload enters as its own hash, so payload size never grows the digest
// preimage.
func (r ForwardRequest) StructHash() []byte {
	value := r.Value
	if value == nil {
		value = uint256.NewInt(0)
	}
	valueWord := value.Bytes32()
	return crypto.Keccak256(
		crypto.Keccak256([]byte(requestType)),
		abiAddress(r.From),
		abiAddress(r.To),
		valueWord[:],
		abiUint64(r.Gas),
		abiUint64(uint64(r.Sequence)),
		crypto.Keccak256(r.Data),
	)
}

// Digest returns the digest to be signed, binding the request to the
// given domain separator.
func (r ForwardRequest) Digest(separator []byte) []byte {
	return crypto.Keccak256([]byte{0x19, 0x01}, separator, r.StructHash())
}

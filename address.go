package galleon

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/galleon-dao/galleon/errors"
)

// AddressLength is the length of all addresses. It must not change during
// the lifetime of the kvstore as addresses are used as bucket keys.
const AddressLength = 20

// Address is the fixed width identity of an account or an application
// registered with the dispatcher. It is the last 20 bytes of the keccak256
// hash of a public key, the same derivation every signer in this system
// uses.
type Address []byte

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns a copy that can be modified without changing the original.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	return append(Address{}, a...)
}

// IsZero returns true for the null identity, an address of all zero bytes.
// The null identity is never a valid transfer recipient.
func (a Address) IsZero() bool {
	for _, c := range a {
		if c != 0 {
			return false
		}
	}
	return true
}

// Validate returns an error if the address is not the expected width.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "invalid address length: %d", len(a))
	}
	return nil
}

// String returns a human readable hex representation.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// MarshalJSON provides a hex representation for JSON, to override the
// standard base64 []byte encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	if len(enc) == 0 {
		*a = nil
		return nil
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress accepts an address in its hex representation, with or
// without the common 0x prefix, and returns the binary form.
func ParseAddress(enc string) (Address, error) {
	enc = strings.TrimPrefix(strings.ToLower(enc), "0x")
	raw, err := hex.DecodeString(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "malformed address: %s", err)
	}
	addr := Address(raw)
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

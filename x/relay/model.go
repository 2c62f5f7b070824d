package relay

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/orm"
)

// BucketName is where we store the sequence counters.
const BucketName = "relay"

// UserData holds the sequence counter of a single signer.
type UserData struct {
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

type userDataWire struct {
	Sequence int64 `cbor:"1,keyasint"`
}

func (u UserData) Marshal() ([]byte, error) {
	return cbor.Marshal(userDataWire{Sequence: u.Sequence})
}

func (u *UserData) Unmarshal(raw []byte) error {
	var wire userDataWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	u.Sequence = wire.Sequence
	return nil
}

func (u UserData) Validate() error {
	if u.Sequence < 0 {
		return errors.Wrap(errors.ErrModel, "negative sequence")
	}
	return nil
}

// CheckAndIncrementSequence advances the counter if the expected value
// matches the current one, otherwise it returns an error. Before
// incrementing, the value is tested for overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidMetaTransaction, "sequence mismatch, expected %d, got %d", u.Sequence, expected)
	}

	next := u.Sequence + 1

	// The greatest nonce value JavaScript clients can represent is
	//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
	// Supporting greater values requires much more complicated clients.
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// AsUser will safely type-cast any value from the bucket to a UserData.
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser constructs a zero-sequence object for the address.
func NewUser(addr galleon.Address) orm.Object {
	return orm.NewSimpleObj(addr, &UserData{})
}

// Bucket extends orm.Bucket with GetOrCreate.
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &UserData{})),
	}
}

// GetOrCreate initializes a UserData if none exists for that address.
func (b Bucket) GetOrCreate(db galleon.ReadOnlyKVStore, addr galleon.Address) (orm.Object, error) {
	obj, err := b.Get(db, addr)
	if err == nil && obj == nil {
		obj = NewUser(addr)
	}
	return obj, err
}

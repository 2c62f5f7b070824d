package cash

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/orm"
)

// BucketName is where we store the balances.
const BucketName = "cash"

// Wallet is the balance of a single identity.
type Wallet struct {
	Balance *uint256.Int
}

var _ orm.Model = (*Wallet)(nil)

type walletWire struct {
	Balance []byte `cbor:"1,keyasint"`
}

func (w Wallet) Marshal() ([]byte, error) {
	balance := w.Balance
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	return cbor.Marshal(walletWire{Balance: balance.Bytes()})
}

func (w *Wallet) Unmarshal(raw []byte) error {
	var wire walletWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	w.Balance = new(uint256.Int).SetBytes(wire.Balance)
	return nil
}

func (w Wallet) Validate() error {
	if w.Balance == nil {
		return errors.Wrap(errors.ErrEmpty, "balance")
	}
	return nil
}

// Add increases the balance by the given amount, guarding against
// overflow.
func (w *Wallet) Add(amount *uint256.Int) error {
	sum, carry := new(uint256.Int).AddOverflow(w.Balance, amount)
	if carry {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	w.Balance = sum
	return nil
}

// Subtract decreases the balance by the given amount. The caller must have
// checked the balance covers it.
func (w *Wallet) Subtract(amount *uint256.Int) error {
	if w.Balance.Lt(amount) {
		return errors.Wrap(ErrInsufficientFunds, "balance")
	}
	w.Balance = new(uint256.Int).Sub(w.Balance, amount)
	return nil
}

// AsWallet will safely type-cast any value from the bucket to a Wallet.
func AsWallet(obj orm.Object) *Wallet {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Wallet)
}

// NewWallet creates an empty wallet object for this address.
func NewWallet(addr galleon.Address) orm.Object {
	return orm.NewSimpleObj(addr, &Wallet{Balance: uint256.NewInt(0)})
}

// Bucket extends orm.Bucket with GetOrCreate.
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Wallet{})),
	}
}

// GetOrCreate initializes an empty wallet if none exists for that address.
func (b Bucket) GetOrCreate(db galleon.ReadOnlyKVStore, addr galleon.Address) (orm.Object, error) {
	obj, err := b.Get(db, addr)
	if err == nil && obj == nil {
		obj = NewWallet(addr)
	}
	return obj, err
}

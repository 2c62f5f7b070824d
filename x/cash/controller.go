package cash

import (
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
)

// MoveCoins moves the given amount from src to dest. If src doesn't exist,
// or doesn't have sufficient funds, it fails.
func MoveCoins(db galleon.KVStore, src, dest galleon.Address, amount *uint256.Int) error {
	bucket := NewBucket()

	if amount == nil || amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}

	senderObj, err := bucket.Get(db, src)
	if err != nil {
		return err
	}
	if senderObj == nil {
		return errors.Wrapf(ErrInsufficientFunds, "empty account %s", src)
	}
	sender := AsWallet(senderObj)
	if sender.Balance.Lt(amount) {
		return errors.Wrapf(ErrInsufficientFunds, "account %s", src)
	}

	recipientObj, err := bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	recipient := AsWallet(recipientObj)

	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}

	if err := bucket.Save(db, senderObj); err != nil {
		return err
	}
	return bucket.Save(db, recipientObj)
}

// IssueCoins attempts to add the given amount of funds to the destination
// address, minting them out of nothing. Fails if it overflows the wallet.
func IssueCoins(db galleon.KVStore, dest galleon.Address, amount *uint256.Int) error {
	bucket := NewBucket()

	obj, err := bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := AsWallet(obj).Add(amount); err != nil {
		return err
	}
	return bucket.Save(db, obj)
}

// Balance returns the funds held by given address. An address without a
// wallet holds zero.
func Balance(db galleon.ReadOnlyKVStore, addr galleon.Address) (*uint256.Int, error) {
	bucket := NewBucket()

	obj, err := bucket.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return uint256.NewInt(0), nil
	}
	return AsWallet(obj).Balance.Clone(), nil
}

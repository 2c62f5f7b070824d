package galleontest

import (
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
)

// Destination implements galleon.Destination and records the last call it
// received. Set Err to force failures.
type Destination struct {
	CallCount int
	Caller    galleon.Address
	Value     *uint256.Int
	Input     []byte
	Result    galleon.DeliverResult
	Err       error
}

var _ galleon.Destination = (*Destination)(nil)

func (d *Destination) Call(ctx galleon.Context, db galleon.KVStore, input []byte) (*galleon.DeliverResult, error) {
	d.CallCount++
	d.Caller, _ = galleon.Caller(ctx)
	d.Value = galleon.CallValue(ctx)
	d.Input = input
	if d.Err != nil {
		return nil, d.Err
	}
	res := d.Result
	return &res, nil
}

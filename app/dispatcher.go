package app

import (
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/x/cash"
)

// Dispatcher stands in for the execution environment of the underlying
// deterministic ledger. It knows which application lives at which address,
// moves call value between wallets and guarantees that every call either
// commits as a whole or leaves no trace.
//
// The one deliberate exception to full rollback lives in x/relay: the
// forwarder advances its sequence counter on the outer store, before
// asking the dispatcher for the downstream call.
type Dispatcher struct {
	dests map[string]galleon.Destination
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		dests: make(map[string]galleon.Destination),
	}
}

// Register makes a destination reachable at the given address. It panics
// on a duplicate registration, as this is a setup time programmer error.
func (d *Dispatcher) Register(addr galleon.Address, dest galleon.Destination) {
	if err := addr.Validate(); err != nil {
		panic(err)
	}
	key := addr.String()
	if _, ok := d.dests[key]; ok {
		panic("destination already registered: " + key)
	}
	d.dests[key] = dest
}

// Destination returns the application registered at the address, or nil
// for a plain wallet address.
func (d *Dispatcher) Destination(addr galleon.Address) galleon.Destination {
	return d.dests[addr.String()]
}

// Call invokes the destination at `to` on behalf of `from`, moving value
// first. The entire sub-call, value movement included, runs against a
// cache wrap: it is written on success and discarded on any failure, so a
// failed call leaves no state change behind. The downstream error is
// returned verbatim.
func (d *Dispatcher) Call(ctx galleon.Context, db galleon.CacheableKVStore, from, to galleon.Address, value *uint256.Int, gas uint64, input []byte) (*galleon.DeliverResult, error) {
	cache := db.CacheWrap()
	res, err := d.call(ctx, cache, from, to, value, gas, input)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if werr := cache.Write(); werr != nil {
		return nil, errors.Wrap(werr, "commit call")
	}
	return res, nil
}

// Transfer moves value from one identity to another without any call
// payload. A registered recipient gets its OnReceive hook invoked and may
// fail the transfer.
func (d *Dispatcher) Transfer(ctx galleon.Context, db galleon.CacheableKVStore, from, to galleon.Address, value *uint256.Int) error {
	_, err := d.Call(ctx, db, from, to, value, 0, nil)
	return err
}

func (d *Dispatcher) call(ctx galleon.Context, db galleon.KVStore, from, to galleon.Address, value *uint256.Int, gas uint64, input []byte) (*galleon.DeliverResult, error) {
	if value == nil {
		value = uint256.NewInt(0)
	}
	if !value.IsZero() {
		if err := cash.MoveCoins(db, from, to, value); err != nil {
			return nil, err
		}
	}

	ctx = galleon.WithCaller(ctx, from)
	ctx = galleon.WithCallValue(ctx, value)
	ctx = galleon.WithGasLimit(ctx, gas)

	dest := d.Destination(to)
	if len(input) == 0 {
		// a bare transfer; applications may observe it
		if p, ok := dest.(galleon.Payable); ok {
			if err := p.OnReceive(ctx, db, from, value); err != nil {
				return nil, err
			}
		}
		return &galleon.DeliverResult{}, nil
	}
	if dest == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no destination at %s", to)
	}
	return dest.Call(ctx, db, input)
}

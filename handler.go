package galleon

import (
	"github.com/holiman/uint256"
	"github.com/tendermint/tendermint/libs/common"
)

// CheckResult captures the result of a stateless validation pass, ie. what
// a relayer may run before paying to submit a transaction.
type CheckResult struct {
	// GasAllocated is the amount of work the handler expects to perform
	// when the transaction is delivered.
	GasAllocated int64
}

// DeliverResult captures any externally visible outcome of processing a
// transaction, besides the state changes themselves.
type DeliverResult struct {
	// Data is the handler return payload, passed back to the caller
	// unchanged.
	Data []byte

	// Tags are emitted for external observers and indexers. Together they
	// carry every identity and id needed to reconstruct state without
	// replaying all calls.
	Tags []common.KVPair
}

// Handler is a core engine that can process a few specific messages.
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type control in decorating code.
type Checker interface {
	Check(ctx Context, db KVStore, tx *Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
type Deliverer interface {
	Deliver(ctx Context, db KVStore, tx *Tx) (*DeliverResult, error)
}

// Registry is an interface to register your handler, the setup side of a
// router.
type Registry interface {
	Handle(path string, h Handler)
}

// Destination is an application reachable at a fixed address through the
// dispatcher. The raw input bytes are the application's to interpret; by
// convention a trusted forwarder appends the 20 byte requester identity as
// a suffix and the destination strips it off again.
//
// A Call with empty input is a bare transfer: the destination only
// acknowledges the received value.
type Destination interface {
	Call(ctx Context, db KVStore, input []byte) (*DeliverResult, error)
}

// Payable is implemented by destinations that need to observe incoming
// bare transfers, eg. to run bookkeeping when a proposal payout arrives.
// The dispatcher invokes it after crediting the value.
type Payable interface {
	OnReceive(ctx Context, db KVStore, from Address, value *uint256.Int) error
}

package galleon

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/galleon-dao/galleon/errors"
)

// Marshaller is anything that can be represented in binary.
//
// Marshal may validate the data before serializing it and unless you
// previously validated the struct, errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal.
//
// This is separated from Marshaller, as Unmarshal almost always requires
// a pointer, and functions that only need to serialize can accept
// non-pointers through the Marshaller interface.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is a request for the ledger to take an action (make a state
// transition). It is just the request and must be validated by the
// handlers. All authentication information lives outside of the message,
// in the call context and, for relayed calls, in the forwarder layer.
type Msg interface {
	Persistent

	// Path returns the routing path of the message. This is used by the
	// router to locate the proper handler. Must be alphanumeric
	// [0-9A-Za-z_/\-]+
	Path() string

	// Validate performs a stateless sanity check of the message content.
	Validate() error
}

// Tx is the wire envelope of a single message. This is what travels as the
// call payload: the routing path together with the serialized message body.
// Relayed calls carry exactly these bytes inside a ForwardRequest.
type Tx struct {
	Path string `cbor:"1,keyasint"`
	Body []byte `cbor:"2,keyasint"`
}

var _ Persistent = (*Tx)(nil)

func (tx Tx) Marshal() ([]byte, error) {
	return cbor.Marshal(tx)
}

func (tx *Tx) Unmarshal(raw []byte) error {
	if err := cbor.Unmarshal(raw, tx); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	return nil
}

// NewTx seals a message into its wire envelope.
func NewTx(msg Msg) (*Tx, error) {
	body, err := msg.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal msg")
	}
	return &Tx{Path: msg.Path(), Body: body}, nil
}

// LoadMsg deserializes the transaction body into given destination message
// and validates it. Always use this method to acquire the message content
// inside a handler.
func LoadMsg(tx *Tx, destination Msg) error {
	if tx.Path != destination.Path() {
		return errors.Wrapf(errors.ErrMsg, "want %q, routed %q", destination.Path(), tx.Path)
	}
	if err := destination.Unmarshal(tx.Body); err != nil {
		return errors.Wrap(err, "unmarshal msg")
	}
	if err := destination.Validate(); err != nil {
		return errors.Wrap(err, "invalid msg")
	}
	return nil
}

package relay

import (
	"github.com/galleon-dao/galleon/errors"
)

var (
	// ErrInvalidMetaTransaction covers every authorization failure: a
	// malformed or non-canonical signature, a signer that does not match
	// the request, or a stale or reused sequence number.
	ErrInvalidMetaTransaction = errors.Register(1100, "invalid meta transaction")

	// ErrInsufficientBalance is returned when a request carries value the
	// forwarder's own funds cannot cover.
	ErrInsufficientBalance = errors.Register(1101, "insufficient forwarder balance")
)

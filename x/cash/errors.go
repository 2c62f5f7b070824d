package cash

import (
	"github.com/galleon-dao/galleon/errors"
)

// x/cash reserves error codes 1300 ~ 1319.
var (
	// ErrInsufficientFunds is returned when a wallet does not cover a
	// requested movement of funds.
	ErrInsufficientFunds = errors.Register(1300, "insufficient funds")
)

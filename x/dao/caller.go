package dao

import (
	"context"

	"github.com/galleon-dao/galleon"
)

// ResolveCaller returns the effective caller of an incoming call and the
// payload stripped of any identity suffix. The suffix is honored only when
// the direct caller is the trusted forwarder and the payload is long
// enough to carry one; in every other case the direct caller stands.
func ResolveCaller(direct galleon.Address, input []byte, trusted galleon.Address) (galleon.Address, []byte) {
	if direct.Equals(trusted) && len(input) >= galleon.AddressLength {
		cut := len(input) - galleon.AddressLength
		return galleon.Address(input[cut:]).Clone(), input[:cut]
	}
	return direct, input
}

type contextKey int

const contextKeySender contextKey = iota

func withSender(ctx galleon.Context, addr galleon.Address) galleon.Context {
	return context.WithValue(ctx, contextKeySender, addr)
}

// sender returns the effective caller resolved by the ledger entry point.
func sender(ctx galleon.Context) (galleon.Address, bool) {
	addr, ok := ctx.Value(contextKeySender).(galleon.Address)
	return addr, ok
}

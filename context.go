package galleon

import (
	"context"
	"time"

	"github.com/holiman/uint256"
)

// Context is just an alias for the standard implementation. We use this
// type in all function signatures so the backing implementation can be
// swapped without touching every handler.
type Context = context.Context

type contextKey int // local to this package

const (
	contextKeyBlockTime contextKey = iota
	contextKeyCaller
	contextKeyCallValue
	contextKeyGasLimit
)

// WithBlockTime sets the block time for the processed call. Every mutating
// operation observes time through this value, never through the wall clock,
// so execution is deterministic and replayable.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyBlockTime, t)
}

// BlockTime returns the time declared for the currently processed block.
func BlockTime(ctx Context) (time.Time, bool) {
	t, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	return t, ok
}

// WithCaller sets the direct invoker of the current call. Only the
// dispatcher is expected to set this value.
func WithCaller(ctx Context, addr Address) Context {
	return context.WithValue(ctx, contextKeyCaller, addr)
}

// Caller returns the direct invoker of the current call. This is the
// immediate caller, not the effective one. Applications that accept relayed
// calls must resolve the effective identity themselves.
func Caller(ctx Context) (Address, bool) {
	addr, ok := ctx.Value(contextKeyCaller).(Address)
	return addr, ok
}

// WithCallValue attaches the funds moved along with the current call.
func WithCallValue(ctx Context, value *uint256.Int) Context {
	return context.WithValue(ctx, contextKeyCallValue, value)
}

// CallValue returns the funds moved along with the current call. Returns
// zero when the call carried no value.
func CallValue(ctx Context) *uint256.Int {
	if v, ok := ctx.Value(contextKeyCallValue).(*uint256.Int); ok {
		return v
	}
	return uint256.NewInt(0)
}

// WithGasLimit attaches the gas allowance granted to the current call. The
// core does not meter execution, the underlying ledger does; the allowance
// is carried so it participates in signed digests and reaches the
// destination unchanged.
func WithGasLimit(ctx Context, gas uint64) Context {
	return context.WithValue(ctx, contextKeyGasLimit, gas)
}

// GasLimit returns the gas allowance granted to the current call.
func GasLimit(ctx Context) (uint64, bool) {
	g, ok := ctx.Value(contextKeyGasLimit).(uint64)
	return g, ok
}

package galleontest

import (
	"github.com/galleon-dao/galleon"
)

// Handler implements galleon.Handler and counts the calls it receives. Use
// the Err fields to force failures.
type Handler struct {
	CheckCallCount   int
	CheckResult      galleon.CheckResult
	CheckErr         error
	DeliverCallCount int
	DeliverResult    galleon.DeliverResult
	DeliverErr       error
}

var _ galleon.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.CheckResult, error) {
	h.CheckCallCount++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.DeliverResult, error) {
	h.DeliverCallCount++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// CallCount returns the total number of times this handler was used.
func (h *Handler) CallCount() int {
	return h.CheckCallCount + h.DeliverCallCount
}

// Package app wires destinations and handlers together: a Router maps
// message paths to handlers within one application, a Dispatcher maps
// addresses to applications and gives every sub-call atomic semantics.
package app

import (
	"regexp"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
)

var isRoute = regexp.MustCompile(`^[a-zA-Z0-9_/\-]+$`).MatchString

// Router maps a message path to a handler. Unlike a map it preserves
// registration order, which makes misrouting deterministic to debug.
type Router struct {
	routes []route
}

var _ galleon.Registry = (*Router)(nil)

type route struct {
	path string
	h    galleon.Handler
}

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make([]route, 0),
	}
}

// Handle registers a handler for the path. It panics on an invalid path
// or a duplicate registration, as this is a setup time programmer error.
func (r *Router) Handle(path string, h galleon.Handler) {
	if !isRoute(path) {
		panic("route expressions can only contain alphanumeric characters, underscore, dash or slash")
	}
	for _, route := range r.routes {
		if route.path == path {
			panic("duplicate route: " + path)
		}
	}
	r.routes = append(r.routes, route{path: path, h: h})
}

// Route returns the handler registered for the path, or nil.
func (r *Router) Route(path string) galleon.Handler {
	for _, route := range r.routes {
		if route.path == path {
			return route.h
		}
	}
	return nil
}

// Check forwards the transaction to its handler for stateless validation.
func (r *Router) Check(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.CheckResult, error) {
	h := r.Route(tx.Path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", tx.Path)
	}
	return h.Check(ctx, db, tx)
}

// Deliver forwards the transaction to its handler for execution.
func (r *Router) Deliver(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.DeliverResult, error) {
	h := r.Route(tx.Path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", tx.Path)
	}
	return h.Deliver(ctx, db, tx)
}

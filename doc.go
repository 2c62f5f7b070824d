/*
Package galleon defines all common interfaces that weave together the
subpackages of the gasless DAO ledger, as well as implementations of some
of the simpler components (when interfaces would be too much overhead).

The two applications built on top of this core are x/relay, a trusted
forwarder that authenticates signed requests and protects against replay,
and x/dao, a voting ledger of contributions, proposals and votes. Both
persist their state through orm buckets over a KVStore and are driven by
the app.Dispatcher, which provides atomic sub-call semantics.

We pass context through context.Context between the dispatcher and the
handlers. For every value XYZ of type T carried this way there exist two
functions:

	WithXYZ(Context, T) Context
	XYZ(Context) (val T, ok bool)
*/
package galleon

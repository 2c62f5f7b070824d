/*
Package errors implements custom error interfaces for the ledger.

The idea is to reuse as many errors from this package as possible and
define custom package errors only when really necessary. Errors are
registered with a unique numeric code so a client observing a failed call
can categorize it without parsing the message. Use Wrap and Wrapf to add
context to an error while preserving its root cause, and the root error's
Is method to test for a category:

	if errors.ErrNotFound.Is(err) { ... }

Component packages register their own roots in reserved code ranges:
x/relay uses 1100+, x/dao uses 1200+, x/cash uses 1300+.
*/
package errors

/*
Package dao implements the voting ledger: contributions, proposals, votes
and the execution of approved transfers.

The ledger is reachable through the dispatcher like any destination and is
unaware of relaying: every entry point resolves the effective caller as
either the direct caller or, when the call arrived from the single trusted
forwarder, the identity appended to the payload. Treasury, threshold and
timing rules apply the same way no matter how the call arrived.
*/
package dao

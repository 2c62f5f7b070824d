/*
Package cash keeps the funds held by every identity on the ledger.

There is a single denomination. Each wallet is an account balance persisted
in a bucket keyed by address. The package-level controller functions are
the only way other extensions move funds; anything that may be called from
another extension is public to encourage composition.
*/
package cash

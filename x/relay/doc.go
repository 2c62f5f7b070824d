/*
Package relay implements the meta transaction forwarder.

A user that does not want to submit a transaction themselves signs a
ForwardRequest off-chain. Anyone holding that request and signature, the
relayer, can submit it through the Forwarder. The Forwarder recomputes the
domain-bound digest, recovers the signer, checks the per-user sequence
counter and on success forwards the call to the destination with the
original signer's identity appended to the payload.

The sequence counter is the sole anti-replay mechanism. It advances
exactly once per accepted request, before the downstream call is made, so
a signature is spent regardless of downstream outcome.
*/
package relay

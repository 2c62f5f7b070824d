package relay

import (
	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/app"
	"github.com/galleon-dao/galleon/crypto"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/x/cash"
)

// Forwarder is the integrity gate for relayed actions. It verifies signed
// requests against a fixed domain and per-user sequence counters, then
// forwards them with the signer's identity appended to the payload.
type Forwarder struct {
	domain    Domain
	separator []byte
	addr      galleon.Address
	recover   crypto.Recoverer
	disp      *app.Dispatcher
	bucket    Bucket
}

// NewForwarder returns a forwarder bound to the given domain. The
// forwarder's own address holds the funds used to cover request value.
// The recoverer is injected so verification logic can be tested with a
// fake returning fixed identities.
func NewForwarder(domain Domain, addr galleon.Address, rec crypto.Recoverer, disp *app.Dispatcher) (*Forwarder, error) {
	if err := domain.Validate(); err != nil {
		return nil, errors.Wrap(err, "domain")
	}
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "address")
	}
	return &Forwarder{
		domain:    domain,
		separator: domain.Separator(),
		addr:      addr,
		recover:   rec,
		disp:      disp,
		bucket:    NewBucket(),
	}, nil
}

// Address returns the forwarder's own identity.
func (f *Forwarder) Address() galleon.Address {
	return f.addr.Clone()
}

// Domain returns the domain signatures are bound to.
func (f *Forwarder) Domain() Domain {
	return f.domain
}

// Digest returns the digest a signer must sign for this request to be
// accepted by this forwarder.
func (f *Forwarder) Digest(req ForwardRequest) []byte {
	return req.Digest(f.separator)
}

// CurrentSequence returns the counter for an identity, 0 if never seen.
func (f *Forwarder) CurrentSequence(db galleon.ReadOnlyKVStore, addr galleon.Address) (int64, error) {
	obj, err := f.bucket.Get(db, addr)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return AsUser(obj).Sequence, nil
}

// Verify checks that the signature was produced by req.From over this
// forwarder's digest of req, and that req carries the signer's current
// sequence number. It is read-only and does not spend the signature.
func (f *Forwarder) Verify(db galleon.ReadOnlyKVStore, req ForwardRequest, sig []byte) error {
	if err := f.verifySignature(req, sig); err != nil {
		return err
	}
	seq, err := f.CurrentSequence(db, req.From)
	if err != nil {
		return err
	}
	if req.Sequence != seq {
		return errors.Wrapf(ErrInvalidMetaTransaction, "sequence mismatch, expected %d, got %d", seq, req.Sequence)
	}
	return nil
}

func (f *Forwarder) verifySignature(req ForwardRequest, sig []byte) error {
	if err := req.Validate(); err != nil {
		return errors.Wrap(ErrInvalidMetaTransaction, err.Error())
	}
	signer, err := f.recover.Recover(f.Digest(req), sig)
	if err != nil {
		return errors.Wrap(ErrInvalidMetaTransaction, err.Error())
	}
	if !signer.Equals(req.From) {
		return errors.Wrapf(ErrInvalidMetaTransaction, "signed by %s, not %s", signer, req.From)
	}
	return nil
}

// Execute relays a verified request to its destination. The sequence
// counter is incremented and persisted before the downstream call and is
// never rolled back, so every accepted signature causes at most one
// attempt. Downstream failures propagate verbatim; on success the
// downstream return data is returned unchanged.
func (f *Forwarder) Execute(ctx galleon.Context, db galleon.CacheableKVStore, req ForwardRequest, sig []byte) ([]byte, error) {
	if err := f.verifySignature(req, sig); err != nil {
		return nil, err
	}

	// spend the signature on the outer store, outside the call's cache
	// wrap, so a downstream failure cannot resurrect it
	obj, err := f.bucket.GetOrCreate(db, req.From)
	if err != nil {
		return nil, err
	}
	if err := AsUser(obj).CheckAndIncrementSequence(req.Sequence); err != nil {
		return nil, err
	}
	if err := f.bucket.Save(db, obj); err != nil {
		return nil, err
	}

	if req.Value != nil && !req.Value.IsZero() {
		held, err := cash.Balance(db, f.addr)
		if err != nil {
			return nil, err
		}
		if held.Lt(req.Value) {
			return nil, errors.Wrapf(ErrInsufficientBalance, "request value %s", req.Value)
		}
	}

	input := append(append([]byte{}, req.Data...), req.From...)
	res, err := f.disp.Call(ctx, db, f.addr, req.To, req.Value, req.Gas, input)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

package relay

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/crypto"
	"github.com/galleon-dao/galleon/galleontest"
)

func TestDomainSeparator(t *testing.T) {
	base := Domain{
		Name:              "Galleon",
		Version:           "1",
		ChainID:           1,
		VerifyingContract: galleontest.RandomAddress(t),
	}
	assert.Len(t, base.Separator(), crypto.DigestLength)

	// every field change yields a different separator
	variants := []Domain{
		{Name: "Other", Version: base.Version, ChainID: base.ChainID, VerifyingContract: base.VerifyingContract},
		{Name: base.Name, Version: "2", ChainID: base.ChainID, VerifyingContract: base.VerifyingContract},
		{Name: base.Name, Version: base.Version, ChainID: 5, VerifyingContract: base.VerifyingContract},
		{Name: base.Name, Version: base.Version, ChainID: base.ChainID, VerifyingContract: galleontest.RandomAddress(t)},
	}
	for i, d := range variants {
		assert.NotEqual(t, base.Separator(), d.Separator(), "variant %d", i)
	}
}

func TestDomainValidate(t *testing.T) {
	addr := galleontest.RandomAddress(t)

	cases := map[string]struct {
		domain Domain
		valid  bool
	}{
		"complete": {
			domain: Domain{Name: "Galleon", Version: "1", ChainID: 1, VerifyingContract: addr},
			valid:  true,
		},
		"missing name": {
			domain: Domain{Version: "1", ChainID: 1, VerifyingContract: addr},
		},
		"missing version": {
			domain: Domain{Name: "Galleon", ChainID: 1, VerifyingContract: addr},
		},
		"missing contract": {
			domain: Domain{Name: "Galleon", Version: "1", ChainID: 1},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.domain.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRequestDigest(t *testing.T) {
	from := galleontest.RandomAddress(t)
	to := galleontest.RandomAddress(t)
	base := ForwardRequest{
		From:     from,
		To:       to,
		Value:    uint256.NewInt(10),
		Gas:      21000,
		Sequence: 3,
		Data:     []byte("payload"),
	}
	sep := Domain{Name: "Galleon", Version: "1", ChainID: 1, VerifyingContract: to}.Separator()
	digest := base.Digest(sep)
	assert.Len(t, digest, crypto.DigestLength)

	// the digest commits to every request field
	variants := []func(r *ForwardRequest){
		func(r *ForwardRequest) { r.From = galleon.Address(to.Clone()) },
		func(r *ForwardRequest) { r.To = galleon.Address(from.Clone()) },
		func(r *ForwardRequest) { r.Value = uint256.NewInt(11) },
		func(r *ForwardRequest) { r.Gas = 21001 },
		func(r *ForwardRequest) { r.Sequence = 4 },
		func(r *ForwardRequest) { r.Data = []byte("Payload") },
	}
	for i, mutate := range variants {
		req := base
		mutate(&req)
		assert.NotEqual(t, digest, req.Digest(sep), "variant %d", i)
	}

	// a nil value digests like an explicit zero
	zeroed := base
	zeroed.Value = nil
	explicit := base
	explicit.Value = uint256.NewInt(0)
	assert.Equal(t, explicit.Digest(sep), zeroed.Digest(sep))
}

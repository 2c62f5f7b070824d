package dao

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/app"
	"github.com/galleon-dao/galleon/crypto"
	"github.com/galleon-dao/galleon/galleontest"
	"github.com/galleon-dao/galleon/x/cash"
	"github.com/galleon-dao/galleon/x/relay"
)

type relayFixture struct {
	fixture
	fwd *relay.Forwarder
	key *crypto.PrivateKey
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	disp := app.NewDispatcher()
	fwdAddr := galleontest.RandomAddress(t)
	domain := relay.Domain{
		Name:              "Galleon",
		Version:           "1",
		ChainID:           1337,
		VerifyingContract: fwdAddr,
	}
	fwd, err := relay.NewForwarder(domain, fwdAddr, crypto.Secp256k1{}, disp)
	require.NoError(t, err)
	ledger, err := NewLedger(galleontest.RandomAddress(t), fwdAddr, uint256.NewInt(1), disp)
	require.NoError(t, err)
	disp.Register(ledger.Address(), ledger)

	return &relayFixture{
		fixture: fixture{
			db:     galleontest.NewDB(),
			disp:   disp,
			ledger: ledger,
			now:    time.Unix(1500000000, 0),
		},
		fwd: fwd,
		key: galleontest.NewKey(t),
	}
}

// relayMsg signs and relays a message on behalf of the key holder.
func (f *relayFixture) relayMsg(t *testing.T, msg galleon.Msg, seq int64) error {
	t.Helper()
	tx, err := galleon.NewTx(msg)
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	req := relay.ForwardRequest{
		From:     f.key.Address(),
		To:       f.ledger.Address(),
		Value:    uint256.NewInt(0),
		Gas:      100000,
		Sequence: seq,
		Data:     raw,
	}
	sig, err := f.key.Sign(f.fwd.Digest(req))
	require.NoError(t, err)
	ctx := galleon.WithBlockTime(context.Background(), f.now)
	_, err = f.fwd.Execute(ctx, f.db, req, sig)
	return err
}

func TestRelayedVoteCarriesSignerIdentity(t *testing.T) {
	f := newRelayFixture(t)
	signer := f.key.Address()

	f.fund(t, signer, 10)
	_, err := f.submit(t, signer, &CreateProposalMsg{
		Recipient: galleontest.RandomAddress(t),
		Amount:    uint256.NewInt(3),
		Duration:  3600,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, f.relayMsg(t, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, 0))

	proposal, err := f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.ForVotes)

	// a direct revote by the signer lands on the same record
	_, err = f.submit(t, signer, &VoteMsg{ProposalID: 1, Choice: ChoiceAgainst}, nil)
	require.NoError(t, err)
	proposal, err = f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), proposal.ForVotes)
	assert.Equal(t, uint64(1), proposal.AgainstVotes)
}

func TestStaleRelayedVoteNeverReachesLedger(t *testing.T) {
	f := newRelayFixture(t)
	signer := f.key.Address()

	f.fund(t, signer, 10)
	_, err := f.submit(t, signer, &CreateProposalMsg{
		Recipient: galleontest.RandomAddress(t),
		Amount:    uint256.NewInt(3),
		Duration:  3600,
	}, nil)
	require.NoError(t, err)

	err = f.relayMsg(t, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, 7)
	assert.True(t, relay.ErrInvalidMetaTransaction.Is(err))

	proposal, err := f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), proposal.ForVotes+proposal.AgainstVotes+proposal.AbstainVotes)
}

func TestRelayedFund(t *testing.T) {
	f := newRelayFixture(t)
	signer := f.key.Address()

	// the forwarder's own wallet covers relayed value
	require.NoError(t, cash.IssueCoins(f.db, f.fwd.Address(), uint256.NewInt(20)))
	tx, err := galleon.NewTx(&FundMsg{})
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	req := relay.ForwardRequest{
		From:     signer,
		To:       f.ledger.Address(),
		Value:    uint256.NewInt(20),
		Gas:      100000,
		Sequence: 0,
		Data:     raw,
	}
	sig, err := f.key.Sign(f.fwd.Digest(req))
	require.NoError(t, err)
	ctx := galleon.WithBlockTime(context.Background(), f.now)
	_, err = f.fwd.Execute(ctx, f.db, req, sig)
	require.NoError(t, err)

	contributed, err := f.ledger.Contribution(f.db, signer)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(20), contributed)
}

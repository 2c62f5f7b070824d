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
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/galleontest"
	"github.com/galleon-dao/galleon/x/cash"
)

type fixture struct {
	db     galleon.CacheableKVStore
	disp   *app.Dispatcher
	ledger *Ledger
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	disp := app.NewDispatcher()
	ledger, err := NewLedger(galleontest.RandomAddress(t), galleontest.RandomAddress(t), uint256.NewInt(1), disp)
	require.NoError(t, err)
	disp.Register(ledger.Address(), ledger)
	return &fixture{
		db:     galleontest.NewDB(),
		disp:   disp,
		ledger: ledger,
		now:    time.Unix(1500000000, 0),
	}
}

func (f *fixture) ctx() galleon.Context {
	return galleon.WithBlockTime(context.Background(), f.now)
}

// submit routes a message to the ledger through the dispatcher, the way
// every production call arrives.
func (f *fixture) submit(t *testing.T, from galleon.Address, msg galleon.Msg, value *uint256.Int) (*galleon.DeliverResult, error) {
	t.Helper()
	tx, err := galleon.NewTx(msg)
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return f.disp.Call(f.ctx(), f.db, from, f.ledger.Address(), value, 0, raw)
}

func (f *fixture) fund(t *testing.T, from galleon.Address, amount uint64) {
	t.Helper()
	require.NoError(t, cash.IssueCoins(f.db, from, uint256.NewInt(amount)))
	_, err := f.submit(t, from, &FundMsg{}, uint256.NewInt(amount))
	require.NoError(t, err)
}

func TestFund(t *testing.T) {
	f := newFixture(t)
	alice := galleontest.RandomAddress(t)

	f.fund(t, alice, 50)

	contributed, err := f.ledger.Contribution(f.db, alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(50), contributed)
	total, err := f.ledger.TotalContributed(f.db)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(50), total)

	// the coins physically arrived in the treasury wallet
	held, err := cash.Balance(f.db, f.ledger.Address())
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(50), held)

	// funding without value is rejected
	_, err = f.submit(t, alice, &FundMsg{}, nil)
	assert.True(t, ErrZeroAmount.Is(err))
}

func TestCreateProposal(t *testing.T) {
	f := newFixture(t)
	alice := galleontest.RandomAddress(t)
	recipient := galleontest.RandomAddress(t)

	f.fund(t, alice, 5)

	res, err := f.submit(t, alice, &CreateProposalMsg{
		Recipient:   recipient,
		Amount:      uint256.NewInt(3),
		Duration:    2 * 24 * 3600,
		Description: "resupply",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	proposal, err := f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(3), proposal.Amount)
	assert.Equal(t, uint64(0), proposal.ForVotes)
	assert.False(t, proposal.Executed)
	assert.Equal(t, galleon.AsUnixTime(f.now.Add(2*24*time.Hour)), proposal.VotingDeadline)
	assert.Equal(t, proposal.VotingDeadline.Add(24*time.Hour), proposal.ExecutionUnlockTime)
}

func TestCreateProposalErrors(t *testing.T) {
	recipient := galleontest.RandomAddress(t)
	valid := CreateProposalMsg{
		Recipient: recipient,
		Amount:    uint256.NewInt(3),
		Duration:  3600,
	}

	cases := map[string]struct {
		setup   func(t *testing.T, f *fixture, creator galleon.Address)
		msg     func(m *CreateProposalMsg)
		wantErr *errors.Error
	}{
		"null recipient": {
			msg:     func(m *CreateProposalMsg) { m.Recipient = nil },
			wantErr: ErrInvalidRecipient,
		},
		"zero amount": {
			msg:     func(m *CreateProposalMsg) { m.Amount = uint256.NewInt(0) },
			wantErr: errors.ErrAmount,
		},
		"zero duration": {
			msg:     func(m *CreateProposalMsg) { m.Duration = 0 },
			wantErr: ErrDuration,
		},
		"empty treasury": {
			setup:   func(t *testing.T, f *fixture, creator galleon.Address) {},
			wantErr: ErrEmptyTreasury,
		},
		"creator stake below a tenth": {
			setup: func(t *testing.T, f *fixture, creator galleon.Address) {
				f.fund(t, galleontest.RandomAddress(t), 95)
				f.fund(t, creator, 5)
			},
			wantErr: ErrCreatorStake,
		},
		"amount exceeds held balance": {
			setup: func(t *testing.T, f *fixture, creator galleon.Address) {
				f.fund(t, creator, 10)
			},
			msg:     func(m *CreateProposalMsg) { m.Amount = uint256.NewInt(11) },
			wantErr: ErrTreasuryFunds,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			creator := galleontest.RandomAddress(t)
			if tc.setup != nil {
				tc.setup(t, f, creator)
			} else {
				f.fund(t, creator, 10)
			}
			msg := valid
			if tc.msg != nil {
				tc.msg(&msg)
			}
			_, err := f.submit(t, creator, &msg, nil)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)
		})
	}
}

func TestVoteAndRevote(t *testing.T) {
	f := newFixture(t)
	alice := galleontest.RandomAddress(t)
	bob := galleontest.RandomAddress(t)

	f.fund(t, alice, 10)
	f.fund(t, bob, 10)
	_, err := f.submit(t, alice, &CreateProposalMsg{
		Recipient: galleontest.RandomAddress(t),
		Amount:    uint256.NewInt(3),
		Duration:  2 * 24 * 3600,
	}, nil)
	require.NoError(t, err)

	// alice casts FOR, then changes her mind to AGAINST
	_, err = f.submit(t, alice, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, nil)
	require.NoError(t, err)
	_, err = f.submit(t, alice, &VoteMsg{ProposalID: 1, Choice: ChoiceAgainst}, nil)
	require.NoError(t, err)

	proposal, err := f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), proposal.ForVotes)
	assert.Equal(t, uint64(1), proposal.AgainstVotes)

	// bob joins; the tally sum tracks distinct voters
	_, err = f.submit(t, bob, &VoteMsg{ProposalID: 1, Choice: ChoiceAbstain}, nil)
	require.NoError(t, err)
	_, err = f.submit(t, bob, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, nil)
	require.NoError(t, err)

	proposal, err = f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), proposal.ForVotes+proposal.AgainstVotes+proposal.AbstainVotes)
}

func TestVoteErrors(t *testing.T) {
	f := newFixture(t)
	alice := galleontest.RandomAddress(t)
	pauper := galleontest.RandomAddress(t)

	f.fund(t, alice, 10)
	_, err := f.submit(t, alice, &CreateProposalMsg{
		Recipient: galleontest.RandomAddress(t),
		Amount:    uint256.NewInt(3),
		Duration:  3600,
	}, nil)
	require.NoError(t, err)

	// any unknown id is the same not-found failure
	for _, id := range []int64{42, 0, -1} {
		_, err = f.submit(t, alice, &VoteMsg{ProposalID: id, Choice: ChoiceFor}, nil)
		assert.True(t, errors.ErrNotFound.Is(err), "proposal %d", id)
	}
	_, err = f.submit(t, alice, &ExecuteProposalMsg{ProposalID: 42}, nil)
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = f.submit(t, pauper, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, nil)
	assert.True(t, ErrVoterStake.Is(err))

	f.now = f.now.Add(time.Hour)
	_, err = f.submit(t, alice, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, nil)
	assert.True(t, ErrVotingClosed.Is(err))
}

func TestExecuteProposal(t *testing.T) {
	f := newFixture(t)
	alice := galleontest.RandomAddress(t)
	recipient := galleontest.RandomAddress(t)
	anyone := galleontest.RandomAddress(t)

	f.fund(t, alice, 10)
	_, err := f.submit(t, alice, &CreateProposalMsg{
		Recipient: recipient,
		Amount:    uint256.NewInt(3),
		Duration:  2 * 24 * 3600,
	}, nil)
	require.NoError(t, err)
	_, err = f.submit(t, alice, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, nil)
	require.NoError(t, err)

	deadline := f.now.Add(2 * 24 * time.Hour)

	// before the deadline
	_, err = f.submit(t, anyone, &ExecuteProposalMsg{ProposalID: 1}, nil)
	assert.True(t, ErrVotingNotEnded.Is(err))

	// one second past the deadline, still inside the safety delay
	f.now = deadline.Add(time.Second)
	_, err = f.submit(t, anyone, &ExecuteProposalMsg{ProposalID: 1}, nil)
	assert.True(t, ErrExecutionDelay.Is(err))

	// at the unlock time, execution is permissionless and pays out
	f.now = deadline.Add(24 * time.Hour)
	_, err = f.submit(t, anyone, &ExecuteProposalMsg{ProposalID: 1}, nil)
	require.NoError(t, err)

	held, err := cash.Balance(f.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(3), held)
	proposal, err := f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.True(t, proposal.Executed)

	// a second trigger fails and moves nothing
	_, err = f.submit(t, anyone, &ExecuteProposalMsg{ProposalID: 1}, nil)
	assert.True(t, ErrAlreadyExecuted.Is(err))
	held, err = cash.Balance(f.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(3), held)
}

func TestExecuteProposalTieFails(t *testing.T) {
	f := newFixture(t)
	alice := galleontest.RandomAddress(t)
	bob := galleontest.RandomAddress(t)

	f.fund(t, alice, 10)
	f.fund(t, bob, 10)
	_, err := f.submit(t, alice, &CreateProposalMsg{
		Recipient: galleontest.RandomAddress(t),
		Amount:    uint256.NewInt(3),
		Duration:  3600,
	}, nil)
	require.NoError(t, err)
	_, err = f.submit(t, alice, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, nil)
	require.NoError(t, err)
	_, err = f.submit(t, bob, &VoteMsg{ProposalID: 1, Choice: ChoiceAgainst}, nil)
	require.NoError(t, err)

	f.now = f.now.Add(3600*time.Second + 24*time.Hour)
	_, err = f.submit(t, alice, &ExecuteProposalMsg{ProposalID: 1}, nil)
	assert.True(t, ErrNotApproved.Is(err))
}

// reentrantRecipient tries to trigger a second execution from inside the
// payout callback.
type reentrantRecipient struct {
	disp   *app.Dispatcher
	ledger galleon.Address
	self   galleon.Address
}

func (r *reentrantRecipient) Call(ctx galleon.Context, db galleon.KVStore, input []byte) (*galleon.DeliverResult, error) {
	return &galleon.DeliverResult{}, nil
}

func (r *reentrantRecipient) OnReceive(ctx galleon.Context, db galleon.KVStore, from galleon.Address, value *uint256.Int) error {
	tx, err := galleon.NewTx(&ExecuteProposalMsg{ProposalID: 1})
	if err != nil {
		return err
	}
	raw, err := tx.Marshal()
	if err != nil {
		return err
	}
	_, err = r.disp.Call(ctx, db.(galleon.CacheableKVStore), r.self, r.ledger, nil, 0, raw)
	return err
}

func TestExecuteProposalReentrancyGuard(t *testing.T) {
	f := newFixture(t)
	alice := galleontest.RandomAddress(t)
	evil := galleontest.RandomAddress(t)
	f.disp.Register(evil, &reentrantRecipient{disp: f.disp, ledger: f.ledger.Address(), self: evil})

	f.fund(t, alice, 10)
	_, err := f.submit(t, alice, &CreateProposalMsg{
		Recipient: evil,
		Amount:    uint256.NewInt(3),
		Duration:  3600,
	}, nil)
	require.NoError(t, err)
	_, err = f.submit(t, alice, &VoteMsg{ProposalID: 1, Choice: ChoiceFor}, nil)
	require.NoError(t, err)

	f.now = f.now.Add(3600*time.Second + 24*time.Hour)
	_, err = f.submit(t, alice, &ExecuteProposalMsg{ProposalID: 1}, nil)
	assert.True(t, ErrTransferFailed.Is(err), "got %+v", err)

	// nothing moved and the proposal stays re-executable
	held, err := cash.Balance(f.db, evil)
	require.NoError(t, err)
	assert.True(t, held.IsZero())
	proposal, err := f.ledger.Proposal(f.db, 1)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
}

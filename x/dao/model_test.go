package dao

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/galleontest"
)

func TestTallyInvariant(t *testing.T) {
	var p Proposal

	// three voters, arbitrary changes of mind
	require.NoError(t, p.CountVote(ChoiceFor))
	require.NoError(t, p.CountVote(ChoiceFor))
	require.NoError(t, p.CountVote(ChoiceAbstain))

	require.NoError(t, p.UndoCountVote(ChoiceFor))
	require.NoError(t, p.CountVote(ChoiceAgainst))
	require.NoError(t, p.UndoCountVote(ChoiceAbstain))
	require.NoError(t, p.CountVote(ChoiceFor))

	assert.Equal(t, uint64(3), p.ForVotes+p.AgainstVotes+p.AbstainVotes)
	assert.Equal(t, uint64(2), p.ForVotes)
	assert.Equal(t, uint64(1), p.AgainstVotes)
}

func TestUndoCountVoteUnderflow(t *testing.T) {
	var p Proposal
	err := p.UndoCountVote(ChoiceFor)
	assert.True(t, errors.ErrState.Is(err))
}

func TestChoiceValidate(t *testing.T) {
	for _, c := range []Choice{ChoiceAbstain, ChoiceFor, ChoiceAgainst} {
		assert.NoError(t, c.Validate(), c.String())
	}
	assert.Error(t, Choice(3).Validate())
}

func TestProposalValidate(t *testing.T) {
	recipient := galleontest.RandomAddress(t)
	valid := Proposal{
		Recipient:           recipient,
		Amount:              uint256.NewInt(3),
		VotingDeadline:      galleon.UnixTime(1000),
		ExecutionUnlockTime: galleon.UnixTime(1000 + 24*3600),
	}
	assert.NoError(t, valid.Validate())

	noRecipient := valid
	noRecipient.Recipient = nil
	assert.Error(t, noRecipient.Validate())

	zeroAmount := valid
	zeroAmount.Amount = uint256.NewInt(0)
	assert.Error(t, zeroAmount.Validate())

	badUnlock := valid
	badUnlock.ExecutionUnlockTime = galleon.UnixTime(999)
	assert.Error(t, badUnlock.Validate())
}

func TestProposalRoundTrip(t *testing.T) {
	p := Proposal{
		Recipient:           galleontest.RandomAddress(t),
		Amount:              uint256.NewInt(3),
		VotingDeadline:      galleon.UnixTime(5000),
		ExecutionUnlockTime: galleon.UnixTime(5000 + 24*3600),
		ForVotes:            2,
		AgainstVotes:        1,
		Description:         "ship supplies",
	}
	raw, err := p.Marshal()
	require.NoError(t, err)
	var loaded Proposal
	require.NoError(t, loaded.Unmarshal(raw))
	assert.Equal(t, p, loaded)
}

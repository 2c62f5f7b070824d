package dao

import (
	"github.com/galleon-dao/galleon/errors"
)

var (
	// ErrZeroAmount is returned when funding the treasury with no value.
	ErrZeroAmount = errors.Register(1200, "zero funding amount")

	// ErrInvalidRecipient is returned when a proposal names the null
	// identity as recipient.
	ErrInvalidRecipient = errors.Register(1201, "invalid recipient")

	// ErrDuration is returned when a proposal has no voting window.
	ErrDuration = errors.Register(1202, "invalid voting duration")

	// ErrEmptyTreasury is returned when creating a proposal before anyone
	// has contributed.
	ErrEmptyTreasury = errors.Register(1203, "empty treasury")

	// ErrCreatorStake is returned when the proposal creator's cumulative
	// contribution is below the creation threshold.
	ErrCreatorStake = errors.Register(1204, "insufficient creator stake")

	// ErrTreasuryFunds is returned when the treasury's actual held balance
	// cannot cover the proposal amount.
	ErrTreasuryFunds = errors.Register(1205, "insufficient treasury funds")

	// ErrVotingClosed is returned when voting after the deadline.
	ErrVotingClosed = errors.Register(1206, "voting closed")

	// ErrVoterStake is returned when the voter's cumulative contribution
	// is below the configured minimum.
	ErrVoterStake = errors.Register(1207, "insufficient voting stake")

	// ErrVotingNotEnded is returned when executing before the deadline.
	ErrVotingNotEnded = errors.Register(1208, "voting not ended")

	// ErrExecutionDelay is returned when executing after the deadline but
	// before the safety delay has elapsed.
	ErrExecutionDelay = errors.Register(1209, "execution delay not elapsed")

	// ErrNotApproved is returned when executing a proposal whose tally
	// did not pass. Ties fail.
	ErrNotApproved = errors.Register(1210, "proposal not approved")

	// ErrAlreadyExecuted is returned for any action on an executed
	// proposal.
	ErrAlreadyExecuted = errors.Register(1211, "proposal already executed")

	// ErrTransferFailed is returned when the payout transfer fails. The
	// proposal stays unexecuted and may be retried.
	ErrTransferFailed = errors.Register(1212, "payout transfer failed")
)

package dao

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
)

// Routing paths of the ledger messages.
const (
	PathFund            = "dao/fund"
	PathCreateProposal  = "dao/create"
	PathVote            = "dao/vote"
	PathExecuteProposal = "dao/execute"
)

var (
	_ galleon.Msg = (*FundMsg)(nil)
	_ galleon.Msg = (*CreateProposalMsg)(nil)
	_ galleon.Msg = (*VoteMsg)(nil)
	_ galleon.Msg = (*ExecuteProposalMsg)(nil)
)

// FundMsg credits the call value to the sender's contribution. The amount
// travels as call value, not as a message field.
type FundMsg struct{}

func (FundMsg) Path() string { return PathFund }

func (FundMsg) Marshal() ([]byte, error) { return cbor.Marshal(struct{}{}) }

func (*FundMsg) Unmarshal([]byte) error { return nil }

func (FundMsg) Validate() error { return nil }

// CreateProposalMsg opens a new proposal to transfer treasury funds.
type CreateProposalMsg struct {
	Recipient galleon.Address
	Amount    *uint256.Int
	// Duration of the voting window in seconds.
	Duration    int64
	Description string
}

type createProposalWire struct {
	Recipient   []byte `cbor:"1,keyasint"`
	Amount      []byte `cbor:"2,keyasint"`
	Duration    int64  `cbor:"3,keyasint"`
	Description string `cbor:"4,keyasint,omitempty"`
}

func (CreateProposalMsg) Path() string { return PathCreateProposal }

func (m CreateProposalMsg) Marshal() ([]byte, error) {
	amount := m.Amount
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	return cbor.Marshal(createProposalWire{
		Recipient:   m.Recipient,
		Amount:      amount.Bytes(),
		Duration:    m.Duration,
		Description: m.Description,
	})
}

func (m *CreateProposalMsg) Unmarshal(raw []byte) error {
	var wire createProposalWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	m.Recipient = wire.Recipient
	m.Amount = new(uint256.Int).SetBytes(wire.Amount)
	m.Duration = wire.Duration
	m.Description = wire.Description
	return nil
}

func (m CreateProposalMsg) Validate() error {
	if m.Recipient.IsZero() || m.Recipient.Validate() != nil {
		return errors.Wrap(ErrInvalidRecipient, "recipient")
	}
	if m.Amount == nil || m.Amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	if m.Duration <= 0 {
		return errors.Wrap(ErrDuration, "no voting window")
	}
	return nil
}

// VoteMsg casts or changes the sender's vote on a proposal.
type VoteMsg struct {
	ProposalID int64
	Choice     Choice
}

type voteWire struct {
	ProposalID int64 `cbor:"1,keyasint"`
	Choice     uint8 `cbor:"2,keyasint"`
}

func (VoteMsg) Path() string { return PathVote }

func (m VoteMsg) Marshal() ([]byte, error) {
	return cbor.Marshal(voteWire{ProposalID: m.ProposalID, Choice: uint8(m.Choice)})
}

func (m *VoteMsg) Unmarshal(raw []byte) error {
	var wire voteWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	m.ProposalID = wire.ProposalID
	m.Choice = Choice(wire.Choice)
	return nil
}

func (m VoteMsg) Validate() error {
	return m.Choice.Validate()
}

// ExecuteProposalMsg triggers the payout of an approved proposal. Anyone
// may send it once the conditions hold.
type ExecuteProposalMsg struct {
	ProposalID int64
}

type executeProposalWire struct {
	ProposalID int64 `cbor:"1,keyasint"`
}

func (ExecuteProposalMsg) Path() string { return PathExecuteProposal }

func (m ExecuteProposalMsg) Marshal() ([]byte, error) {
	return cbor.Marshal(executeProposalWire{ProposalID: m.ProposalID})
}

func (m *ExecuteProposalMsg) Unmarshal(raw []byte) error {
	var wire executeProposalWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	m.ProposalID = wire.ProposalID
	return nil
}

func (m ExecuteProposalMsg) Validate() error {
	return nil
}

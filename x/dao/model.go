package dao

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/orm"
)

// Choice is a voter's position on a proposal.
type Choice uint8

const (
	ChoiceAbstain Choice = 0
	ChoiceFor     Choice = 1
	ChoiceAgainst Choice = 2
)

func (c Choice) Validate() error {
	if c > ChoiceAgainst {
		return errors.Wrapf(errors.ErrInput, "unknown choice %d", c)
	}
	return nil
}

func (c Choice) String() string {
	switch c {
	case ChoiceAbstain:
		return "abstain"
	case ChoiceFor:
		return "for"
	case ChoiceAgainst:
		return "against"
	}
	return "invalid"
}

// Proposal is a request to transfer treasury funds, created once, mutated
// only in its tallies until executed. The creator is not stored; it is
// carried on the creation event only.
type Proposal struct {
	Recipient           galleon.Address
	Amount              *uint256.Int
	VotingDeadline      galleon.UnixTime
	ExecutionUnlockTime galleon.UnixTime
	Executed            bool
	ForVotes            uint64
	AgainstVotes        uint64
	AbstainVotes        uint64
	Description         string
}

var _ orm.Model = (*Proposal)(nil)

type proposalWire struct {
	Recipient           []byte `cbor:"1,keyasint"`
	Amount              []byte `cbor:"2,keyasint"`
	VotingDeadline      int64  `cbor:"3,keyasint"`
	ExecutionUnlockTime int64  `cbor:"4,keyasint"`
	Executed            bool   `cbor:"5,keyasint,omitempty"`
	ForVotes            uint64 `cbor:"6,keyasint,omitempty"`
	AgainstVotes        uint64 `cbor:"7,keyasint,omitempty"`
	AbstainVotes        uint64 `cbor:"8,keyasint,omitempty"`
	Description         string `cbor:"9,keyasint,omitempty"`
}

func (p Proposal) Marshal() ([]byte, error) {
	amount := p.Amount
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	return cbor.Marshal(proposalWire{
		Recipient:           p.Recipient,
		Amount:              amount.Bytes(),
		VotingDeadline:      int64(p.VotingDeadline),
		ExecutionUnlockTime: int64(p.ExecutionUnlockTime),
		Executed:            p.Executed,
		ForVotes:            p.ForVotes,
		AgainstVotes:        p.AgainstVotes,
		AbstainVotes:        p.AbstainVotes,
		Description:         p.Description,
	})
}

func (p *Proposal) Unmarshal(raw []byte) error {
	var wire proposalWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	p.Recipient = wire.Recipient
	p.Amount = new(uint256.Int).SetBytes(wire.Amount)
	p.VotingDeadline = galleon.UnixTime(wire.VotingDeadline)
	p.ExecutionUnlockTime = galleon.UnixTime(wire.ExecutionUnlockTime)
	p.Executed = wire.Executed
	p.ForVotes = wire.ForVotes
	p.AgainstVotes = wire.AgainstVotes
	p.AbstainVotes = wire.AbstainVotes
	p.Description = wire.Description
	return nil
}

func (p Proposal) Validate() error {
	if err := p.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if p.Amount == nil || p.Amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "amount")
	}
	if p.VotingDeadline.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "voting deadline")
	}
	if p.ExecutionUnlockTime < p.VotingDeadline {
		return errors.Wrap(errors.ErrModel, "unlock before deadline")
	}
	return nil
}

// CountVote adds one vote of the given choice to the tally.
func (p *Proposal) CountVote(c Choice) error {
	switch c {
	case ChoiceFor:
		p.ForVotes++
	case ChoiceAgainst:
		p.AgainstVotes++
	case ChoiceAbstain:
		p.AbstainVotes++
	default:
		return errors.Wrapf(errors.ErrInput, "unknown choice %d", c)
	}
	return nil
}

// UndoCountVote removes one previously counted vote of the given choice,
// so a voter's change of mind keeps the tally sum at one per distinct
// voter.
func (p *Proposal) UndoCountVote(c Choice) error {
	var count *uint64
	switch c {
	case ChoiceFor:
		count = &p.ForVotes
	case ChoiceAgainst:
		count = &p.AgainstVotes
	case ChoiceAbstain:
		count = &p.AbstainVotes
	default:
		return errors.Wrapf(errors.ErrInput, "unknown choice %d", c)
	}
	if *count == 0 {
		return errors.Wrapf(errors.ErrState, "no %s votes to undo", c)
	}
	*count--
	return nil
}

// VoteRecord is a single voter's current position on one proposal. It is
// keyed by proposal id and voter, so a revote overwrites.
type VoteRecord struct {
	Choice Choice
}

var _ orm.Model = (*VoteRecord)(nil)

type voteRecordWire struct {
	Choice uint8 `cbor:"1,keyasint,omitempty"`
}

func (v VoteRecord) Marshal() ([]byte, error) {
	return cbor.Marshal(voteRecordWire{Choice: uint8(v.Choice)})
}

func (v *VoteRecord) Unmarshal(raw []byte) error {
	var wire voteRecordWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	v.Choice = Choice(wire.Choice)
	return nil
}

func (v VoteRecord) Validate() error {
	return v.Choice.Validate()
}

// Contribution is the cumulative amount an identity has ever funded. It
// only increases; there is no withdrawal path.
type Contribution struct {
	Total *uint256.Int
}

var _ orm.Model = (*Contribution)(nil)

type contributionWire struct {
	Total []byte `cbor:"1,keyasint"`
}

func (c Contribution) Marshal() ([]byte, error) {
	total := c.Total
	if total == nil {
		total = uint256.NewInt(0)
	}
	return cbor.Marshal(contributionWire{Total: total.Bytes()})
}

func (c *Contribution) Unmarshal(raw []byte) error {
	var wire contributionWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	c.Total = new(uint256.Int).SetBytes(wire.Total)
	return nil
}

func (c Contribution) Validate() error {
	if c.Total == nil {
		return errors.Wrap(errors.ErrEmpty, "total")
	}
	return nil
}

// Add increases the cumulative contribution, guarding against overflow.
func (c *Contribution) Add(amount *uint256.Int) error {
	sum, carry := new(uint256.Int).AddOverflow(c.Total, amount)
	if carry {
		return errors.Wrap(errors.ErrOverflow, "contribution")
	}
	c.Total = sum
	return nil
}

// TreasuryState is the bookkeeping total of all contributions ever made.
// Payouts do not decrement it, so it can permanently exceed the actual
// held balance.
type TreasuryState struct {
	TotalContributed *uint256.Int
}

var _ orm.Model = (*TreasuryState)(nil)

type treasuryStateWire struct {
	TotalContributed []byte `cbor:"1,keyasint"`
}

func (s TreasuryState) Marshal() ([]byte, error) {
	total := s.TotalContributed
	if total == nil {
		total = uint256.NewInt(0)
	}
	return cbor.Marshal(treasuryStateWire{TotalContributed: total.Bytes()})
}

func (s *TreasuryState) Unmarshal(raw []byte) error {
	var wire treasuryStateWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	s.TotalContributed = new(uint256.Int).SetBytes(wire.TotalContributed)
	return nil
}

func (s TreasuryState) Validate() error {
	if s.TotalContributed == nil {
		return errors.Wrap(errors.ErrEmpty, "total contributed")
	}
	return nil
}

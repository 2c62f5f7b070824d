package dao

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/tendermint/tendermint/libs/common"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/app"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/orm"
	"github.com/galleon-dao/galleon/x/cash"
)

const (
	// executionDelay is the fixed safety window between the voting
	// deadline and the earliest possible payout.
	executionDelay = 24 * time.Hour

	// creatorStakeDivisor sets the creation threshold: a creator must
	// have contributed at least 1/10 of the bookkeeping total.
	creatorStakeDivisor = 10

	fundCost     int64 = 100
	proposalCost int64 = 500
	voteCost     int64 = 200
	executeCost  int64 = 1000
)

// Tag keys emitted for external observers and indexers.
const (
	tagAction     = "action"
	tagFunder     = "funder"
	tagAmount     = "amount"
	tagProposalID = "proposal-id"
	tagProposer   = "proposer"
	tagRecipient  = "recipient"
	tagVoter      = "voter"
	tagChoice     = "choice"
	tagOldChoice  = "old-choice"
)

// Ledger is the voting ledger destination. Its own wallet in x/cash holds
// the treasury; its trusted forwarder is fixed at creation.
type Ledger struct {
	addr         galleon.Address
	trusted      galleon.Address
	minVoteStake *uint256.Int
	disp         *app.Dispatcher
	router       *app.Router
	props        *ProposalBucket
	votes        VoteBucket
	contribs     ContributionBucket
	treasury     TreasuryBucket
	busy         bool
}

var _ galleon.Destination = (*Ledger)(nil)

// NewLedger creates a voting ledger living at addr, trusting exactly one
// forwarder. minVoteStake is the contribution a voter must hold; nil
// means no minimum.
func NewLedger(addr, trustedForwarder galleon.Address, minVoteStake *uint256.Int, disp *app.Dispatcher) (*Ledger, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "address")
	}
	if err := trustedForwarder.Validate(); err != nil {
		return nil, errors.Wrap(err, "trusted forwarder")
	}
	if minVoteStake == nil {
		minVoteStake = uint256.NewInt(0)
	}
	l := &Ledger{
		addr:         addr.Clone(),
		trusted:      trustedForwarder.Clone(),
		minVoteStake: minVoteStake,
		disp:         disp,
		router:       app.NewRouter(),
		props:        NewProposalBucket(),
		votes:        NewVoteBucket(),
		contribs:     NewContributionBucket(),
		treasury:     NewTreasuryBucket(),
	}
	l.router.Handle(PathFund, &fundHandler{ledger: l})
	l.router.Handle(PathCreateProposal, &createProposalHandler{ledger: l})
	l.router.Handle(PathVote, &voteHandler{ledger: l})
	l.router.Handle(PathExecuteProposal, &executeProposalHandler{ledger: l})
	return l, nil
}

// Address returns the ledger's own identity. Its x/cash wallet is the
// treasury.
func (l *Ledger) Address() galleon.Address {
	return l.addr.Clone()
}

// Call is the dispatcher entry point. It resolves the effective caller,
// unwraps the transaction envelope and routes it. The whole call,
// including any nested calls a payout triggers, is one non-reentrant
// critical section.
func (l *Ledger) Call(ctx galleon.Context, db galleon.KVStore, input []byte) (*galleon.DeliverResult, error) {
	if l.busy {
		return nil, errors.Wrap(errors.ErrState, "reentrant call")
	}
	l.busy = true
	defer func() { l.busy = false }()

	direct, ok := galleon.Caller(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller unknown")
	}
	effective, inner := ResolveCaller(direct, input, l.trusted)

	var tx galleon.Tx
	if err := tx.Unmarshal(inner); err != nil {
		return nil, err
	}
	ctx = withSender(ctx, effective)
	return l.router.Deliver(ctx, db, &tx)
}

// Proposal loads a proposal by id, for clients and tests.
func (l *Ledger) Proposal(db galleon.ReadOnlyKVStore, id int64) (*Proposal, error) {
	return l.props.GetProposal(db, id)
}

// Contribution returns the cumulative amount the identity has funded.
func (l *Ledger) Contribution(db galleon.ReadOnlyKVStore, addr galleon.Address) (*uint256.Int, error) {
	return l.contribs.Total(db, addr)
}

// TotalContributed returns the bookkeeping total. It is never decremented
// by payouts, so it can exceed the actual treasury balance.
func (l *Ledger) TotalContributed(db galleon.ReadOnlyKVStore) (*uint256.Int, error) {
	state, err := l.treasury.Load(db)
	if err != nil {
		return nil, err
	}
	return state.TotalContributed.Clone(), nil
}

type fundHandler struct {
	ledger *Ledger
}

func (h *fundHandler) Check(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &galleon.CheckResult{GasAllocated: fundCost}, nil
}

func (h *fundHandler) Deliver(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.DeliverResult, error) {
	funder, amount, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	obj, err := h.ledger.contribs.GetOrCreate(db, funder)
	if err != nil {
		return nil, err
	}
	if err := AsContribution(obj).Add(amount); err != nil {
		return nil, err
	}
	if err := h.ledger.contribs.Save(db, obj); err != nil {
		return nil, err
	}

	state, err := h.ledger.treasury.Load(db)
	if err != nil {
		return nil, err
	}
	sum, carry := new(uint256.Int).AddOverflow(state.TotalContributed, amount)
	if carry {
		return nil, errors.Wrap(errors.ErrOverflow, "total contributed")
	}
	state.TotalContributed = sum
	if err := h.ledger.treasury.Store(db, state); err != nil {
		return nil, err
	}

	res := &galleon.DeliverResult{}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagFunder), Value: funder},
		{Key: []byte(tagAmount), Value: amount.Bytes()},
		{Key: []byte(tagAction), Value: []byte("fund")},
	}...)
	return res, nil
}

func (h *fundHandler) validate(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (galleon.Address, *uint256.Int, error) {
	var msg FundMsg
	if err := galleon.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	funder, ok := sender(ctx)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "sender unknown")
	}
	amount := galleon.CallValue(ctx)
	if amount.IsZero() {
		return nil, nil, errors.Wrap(ErrZeroAmount, "funding")
	}
	return funder, amount, nil
}

type createProposalHandler struct {
	ledger *Ledger
}

func (h *createProposalHandler) Check(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &galleon.CheckResult{GasAllocated: proposalCost}, nil
}

func (h *createProposalHandler) Deliver(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.DeliverResult, error) {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	blockTime, ok := galleon.BlockTime(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block time not set")
	}

	deadline := galleon.AsUnixTime(blockTime.Add(time.Duration(msg.Duration) * time.Second))
	proposal := &Proposal{
		Recipient:           msg.Recipient,
		Amount:              msg.Amount,
		VotingDeadline:      deadline,
		ExecutionUnlockTime: deadline.Add(executionDelay),
		Description:         msg.Description,
	}
	id, err := h.ledger.props.Create(db, proposal)
	if err != nil {
		return nil, errors.Wrap(err, "persist proposal")
	}

	res := &galleon.DeliverResult{Data: orm.EncodeSequence(id)}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: orm.EncodeSequence(id)},
		{Key: []byte(tagProposer), Value: creator},
		{Key: []byte(tagRecipient), Value: msg.Recipient},
		{Key: []byte(tagAction), Value: []byte("create")},
	}...)
	return res, nil
}

func (h *createProposalHandler) validate(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*CreateProposalMsg, galleon.Address, error) {
	var msg CreateProposalMsg
	if err := galleon.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	creator, ok := sender(ctx)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "sender unknown")
	}

	state, err := h.ledger.treasury.Load(db)
	if err != nil {
		return nil, nil, err
	}
	if state.TotalContributed.IsZero() {
		return nil, nil, errors.Wrap(ErrEmptyTreasury, "no contributions")
	}
	stake, err := h.ledger.contribs.Total(db, creator)
	if err != nil {
		return nil, nil, err
	}
	threshold := new(uint256.Int).Div(state.TotalContributed, uint256.NewInt(creatorStakeDivisor))
	if stake.Lt(threshold) {
		return nil, nil, errors.Wrapf(ErrCreatorStake, "%s below %s", stake, threshold)
	}
	held, err := cash.Balance(db, h.ledger.addr)
	if err != nil {
		return nil, nil, err
	}
	if held.Lt(msg.Amount) {
		return nil, nil, errors.Wrapf(ErrTreasuryFunds, "held %s, requested %s", held, msg.Amount)
	}
	return &msg, creator, nil
}

type voteHandler struct {
	ledger *Ledger
}

func (h *voteHandler) Check(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &galleon.CheckResult{GasAllocated: voteCost}, nil
}

func (h *voteHandler) Deliver(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.DeliverResult, error) {
	msg, voter, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	res := &galleon.DeliverResult{}
	prev, err := h.ledger.votes.GetVote(db, msg.ProposalID, voter)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		if err := proposal.CountVote(msg.Choice); err != nil {
			return nil, err
		}
		res.Tags = append(res.Tags, []common.KVPair{
			{Key: []byte(tagProposalID), Value: orm.EncodeSequence(msg.ProposalID)},
			{Key: []byte(tagVoter), Value: voter},
			{Key: []byte(tagChoice), Value: []byte(msg.Choice.String())},
			{Key: []byte(tagAction), Value: []byte("vote-cast")},
		}...)
	} else {
		if err := proposal.UndoCountVote(prev.Choice); err != nil {
			return nil, err
		}
		if err := proposal.CountVote(msg.Choice); err != nil {
			return nil, err
		}
		res.Tags = append(res.Tags, []common.KVPair{
			{Key: []byte(tagProposalID), Value: orm.EncodeSequence(msg.ProposalID)},
			{Key: []byte(tagVoter), Value: voter},
			{Key: []byte(tagOldChoice), Value: []byte(prev.Choice.String())},
			{Key: []byte(tagChoice), Value: []byte(msg.Choice.String())},
			{Key: []byte(tagAction), Value: []byte("vote-changed")},
		}...)
	}

	if err := h.ledger.votes.SaveVote(db, msg.ProposalID, voter, &VoteRecord{Choice: msg.Choice}); err != nil {
		return nil, err
	}
	if err := h.ledger.props.Update(db, msg.ProposalID, proposal); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *voteHandler) validate(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*VoteMsg, galleon.Address, *Proposal, error) {
	var msg VoteMsg
	if err := galleon.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	voter, ok := sender(ctx)
	if !ok {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "sender unknown")
	}
	proposal, err := h.ledger.props.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, nil, err
	}
	blockTime, ok := galleon.BlockTime(ctx)
	if !ok {
		return nil, nil, nil, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	if !blockTime.Before(proposal.VotingDeadline.Time()) {
		return nil, nil, nil, errors.Wrap(ErrVotingClosed, proposal.VotingDeadline.String())
	}
	if proposal.Executed {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyExecuted, "proposal %d", msg.ProposalID)
	}
	stake, err := h.ledger.contribs.Total(db, voter)
	if err != nil {
		return nil, nil, nil, err
	}
	if stake.Lt(h.ledger.minVoteStake) {
		return nil, nil, nil, errors.Wrapf(ErrVoterStake, "%s below %s", stake, h.ledger.minVoteStake)
	}
	return &msg, voter, proposal, nil
}

type executeProposalHandler struct {
	ledger *Ledger
}

func (h *executeProposalHandler) Check(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &galleon.CheckResult{GasAllocated: executeCost}, nil
}

func (h *executeProposalHandler) Deliver(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*galleon.DeliverResult, error) {
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	cdb, ok := db.(galleon.CacheableKVStore)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "store cannot cache wrap")
	}

	proposal.Executed = true
	if err := h.ledger.props.Update(db, msg.ProposalID, proposal); err != nil {
		return nil, err
	}

	// The payout may call back into a registered recipient. Any failure,
	// the reentrancy guard included, fails the whole delivery and the
	// enclosing cache wrap reverts the Executed flag with everything else.
	if err := h.ledger.disp.Transfer(ctx, cdb, h.ledger.addr, proposal.Recipient, proposal.Amount); err != nil {
		return nil, errors.Wrap(ErrTransferFailed, err.Error())
	}

	res := &galleon.DeliverResult{}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: orm.EncodeSequence(msg.ProposalID)},
		{Key: []byte(tagRecipient), Value: proposal.Recipient},
		{Key: []byte(tagAmount), Value: proposal.Amount.Bytes()},
		{Key: []byte(tagAction), Value: []byte("execute")},
	}...)
	return res, nil
}

func (h *executeProposalHandler) validate(ctx galleon.Context, db galleon.KVStore, tx *galleon.Tx) (*ExecuteProposalMsg, *Proposal, error) {
	var msg ExecuteProposalMsg
	if err := galleon.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposal, err := h.ledger.props.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	if proposal.Executed {
		return nil, nil, errors.Wrapf(ErrAlreadyExecuted, "proposal %d", msg.ProposalID)
	}
	blockTime, ok := galleon.BlockTime(ctx)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	if blockTime.Before(proposal.VotingDeadline.Time()) {
		return nil, nil, errors.Wrap(ErrVotingNotEnded, proposal.VotingDeadline.String())
	}
	if blockTime.Before(proposal.ExecutionUnlockTime.Time()) {
		return nil, nil, errors.Wrap(ErrExecutionDelay, proposal.ExecutionUnlockTime.String())
	}
	if proposal.ForVotes <= proposal.AgainstVotes {
		return nil, nil, errors.Wrapf(ErrNotApproved, "%d for, %d against", proposal.ForVotes, proposal.AgainstVotes)
	}
	held, err := cash.Balance(db, h.ledger.addr)
	if err != nil {
		return nil, nil, err
	}
	if held.Lt(proposal.Amount) {
		return nil, nil, errors.Wrapf(ErrTreasuryFunds, "held %s, requested %s", held, proposal.Amount)
	}
	return &msg, proposal, nil
}

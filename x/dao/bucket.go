package dao

import (
	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/orm"
)

// ProposalBucket stores proposals under sequential 8 byte ids, starting
// at 1.
type ProposalBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

func NewProposalBucket() *ProposalBucket {
	b := orm.NewBucket("proposal", orm.NewSimpleObj(nil, &Proposal{}))
	return &ProposalBucket{
		Bucket: b,
		idSeq:  b.Sequence("id"),
	}
}

// Create persists a new proposal under the next sequential id and returns
// that id.
func (b *ProposalBucket) Create(db galleon.KVStore, p *Proposal) (int64, error) {
	id, err := b.idSeq.NextInt(db)
	if err != nil {
		return 0, err
	}
	obj := orm.NewSimpleObj(orm.EncodeSequence(id), p)
	if err := b.Save(db, obj); err != nil {
		return 0, err
	}
	return id, nil
}

// GetProposal loads the proposal or fails with ErrNotFound.
func (b *ProposalBucket) GetProposal(db galleon.ReadOnlyKVStore, id int64) (*Proposal, error) {
	obj, err := b.Get(db, orm.EncodeSequence(id))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "proposal %d", id)
	}
	return obj.Value().(*Proposal), nil
}

// Update persists changes to an existing proposal.
func (b *ProposalBucket) Update(db galleon.KVStore, id int64, p *Proposal) error {
	return b.Save(db, orm.NewSimpleObj(orm.EncodeSequence(id), p))
}

// VoteBucket stores each voter's current position, keyed by proposal id
// and voter so a revote overwrites in place.
type VoteBucket struct {
	orm.Bucket
}

func NewVoteBucket() VoteBucket {
	return VoteBucket{
		Bucket: orm.NewBucket("vote", orm.NewSimpleObj(nil, &VoteRecord{})),
	}
}

func voteKey(proposalID int64, voter galleon.Address) []byte {
	return append(orm.EncodeSequence(proposalID), voter...)
}

// GetVote loads a voter's record on a proposal, nil if they never voted.
func (b VoteBucket) GetVote(db galleon.ReadOnlyKVStore, proposalID int64, voter galleon.Address) (*VoteRecord, error) {
	obj, err := b.Get(db, voteKey(proposalID, voter))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.Value().(*VoteRecord), nil
}

// SaveVote records the voter's current position.
func (b VoteBucket) SaveVote(db galleon.KVStore, proposalID int64, voter galleon.Address, v *VoteRecord) error {
	return b.Save(db, orm.NewSimpleObj(voteKey(proposalID, voter), v))
}

// ContributionBucket stores cumulative contributions keyed by identity.
type ContributionBucket struct {
	orm.Bucket
}

func NewContributionBucket() ContributionBucket {
	return ContributionBucket{
		Bucket: orm.NewBucket("contrib", orm.NewSimpleObj(nil, &Contribution{})),
	}
}

// GetOrCreate initializes a zero contribution if none exists.
func (b ContributionBucket) GetOrCreate(db galleon.ReadOnlyKVStore, addr galleon.Address) (orm.Object, error) {
	obj, err := b.Get(db, addr)
	if err == nil && obj == nil {
		obj = orm.NewSimpleObj(addr, &Contribution{Total: uint256.NewInt(0)})
	}
	return obj, err
}

// Total returns the cumulative contribution of an identity, zero if it
// never funded.
func (b ContributionBucket) Total(db galleon.ReadOnlyKVStore, addr galleon.Address) (*uint256.Int, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return uint256.NewInt(0), nil
	}
	return obj.Value().(*Contribution).Total.Clone(), nil
}

// AsContribution will safely type-cast any value from the bucket.
func AsContribution(obj orm.Object) *Contribution {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Contribution)
}

var treasuryStateKey = []byte("state")

// TreasuryBucket stores the singleton bookkeeping state.
type TreasuryBucket struct {
	orm.Bucket
}

func NewTreasuryBucket() TreasuryBucket {
	return TreasuryBucket{
		Bucket: orm.NewBucket("treasury", orm.NewSimpleObj(nil, &TreasuryState{})),
	}
}

// Load returns the current state, zeroed if never written.
func (b TreasuryBucket) Load(db galleon.ReadOnlyKVStore) (*TreasuryState, error) {
	obj, err := b.Get(db, treasuryStateKey)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return &TreasuryState{TotalContributed: uint256.NewInt(0)}, nil
	}
	return obj.Value().(*TreasuryState), nil
}

// Store persists the state.
func (b TreasuryBucket) Store(db galleon.KVStore, s *TreasuryState) error {
	return b.Save(db, orm.NewSimpleObj(treasuryStateKey, s))
}

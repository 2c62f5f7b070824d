package cash

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/galleontest"
	"github.com/galleon-dao/galleon/store"
)

func TestIssueAndBalance(t *testing.T) {
	db := store.MemStore()
	addr := galleontest.RandomAddress(t)

	balance, err := Balance(db, addr)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	require.NoError(t, IssueCoins(db, addr, uint256.NewInt(500)))
	require.NoError(t, IssueCoins(db, addr, uint256.NewInt(11)))

	balance, err = Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(511), balance)
}

func TestMoveCoins(t *testing.T) {
	src := galleontest.RandomAddress(t)
	dest := galleontest.RandomAddress(t)

	cases := map[string]struct {
		setup   func(t *testing.T, db galleontest.DB)
		amount  *uint256.Int
		wantErr *errors.Error
		wantSrc uint64
		wantDst uint64
	}{
		"happy path": {
			setup: func(t *testing.T, db galleontest.DB) {
				require.NoError(t, IssueCoins(db, src, uint256.NewInt(100)))
			},
			amount:  uint256.NewInt(40),
			wantSrc: 60,
			wantDst: 40,
		},
		"full balance": {
			setup: func(t *testing.T, db galleontest.DB) {
				require.NoError(t, IssueCoins(db, src, uint256.NewInt(100)))
			},
			amount:  uint256.NewInt(100),
			wantSrc: 0,
			wantDst: 100,
		},
		"insufficient funds": {
			setup: func(t *testing.T, db galleontest.DB) {
				require.NoError(t, IssueCoins(db, src, uint256.NewInt(10)))
			},
			amount:  uint256.NewInt(11),
			wantErr: ErrInsufficientFunds,
		},
		"empty source account": {
			setup:   func(t *testing.T, db galleontest.DB) {},
			amount:  uint256.NewInt(1),
			wantErr: ErrInsufficientFunds,
		},
		"zero amount": {
			setup: func(t *testing.T, db galleontest.DB) {
				require.NoError(t, IssueCoins(db, src, uint256.NewInt(10)))
			},
			amount:  uint256.NewInt(0),
			wantErr: errors.ErrAmount,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			tc.setup(t, db)

			err := MoveCoins(db, src, dest, tc.amount)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)

			got, err := Balance(db, src)
			require.NoError(t, err)
			assert.Equal(t, uint256.NewInt(tc.wantSrc), got)
			got, err = Balance(db, dest)
			require.NoError(t, err)
			assert.Equal(t, uint256.NewInt(tc.wantDst), got)
		})
	}
}

func TestMoveCoinsFailureChangesNothing(t *testing.T) {
	db := store.MemStore()
	src := galleontest.RandomAddress(t)
	dest := galleontest.RandomAddress(t)
	require.NoError(t, IssueCoins(db, src, uint256.NewInt(5)))

	err := MoveCoins(db, src, dest, uint256.NewInt(50))
	assert.True(t, ErrInsufficientFunds.Is(err))

	balance, err := Balance(db, src)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(5), balance)
	balance, err = Balance(db, dest)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

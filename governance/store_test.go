//   Copyright (C) 2018 TASChain
//
//   This program is free software: you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation, either version 3 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License
//   along with this program.  If not, see <https://www.gnu.org/licenses/>.

package governance

import (
	"io/ioutil"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/ledger"
	"github.com/taschain/tasvote/middleware/time"
	"github.com/taschain/tasvote/storage/tasdb"
	"github.com/taschain/tasvote/taslog"
)

func TestProposalCodec(t *testing.T) {
	p := newProposal(3, "desc", 10, 20, []string{"yes", "no"}, tokenT1)
	p.Options[1].Votes = new(big.Int).Set(common.MaxAmount)
	p.VoterStakes[voter1] = &VoterStake{Amount: big.NewInt(5), State: StakeStaked}
	p.VoterStakes[voter2] = &VoterStake{Amount: big.NewInt(7), State: StakePendingWithdrawal, TransferID: "abc"}
	p.Withdrawn = big.NewInt(9)
	winner := "no"
	p.WinningOption = &winner
	p.Tallied = true

	data, err := encodeProposal(p)
	require.NoError(t, err)
	again, err := encodeProposal(p.Clone())
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding is deterministic")

	dec, err := decodeProposal(data)
	require.NoError(t, err)
	assert.Equal(t, p.ID, dec.ID)
	assert.Equal(t, p.Description, dec.Description)
	assert.Equal(t, time.TimeStamp(10), dec.StartTime)
	assert.Equal(t, time.TimeStamp(20), dec.EndTime)
	assert.Equal(t, []string{"yes", "no"}, dec.OptionNames())
	assert.Equal(t, 0, dec.Options[1].Votes.Cmp(common.MaxAmount))
	assert.EqualValues(t, 0, dec.Options[0].Votes.Int64())
	assert.EqualValues(t, 5, dec.StakeOf(voter1).Int64())
	assert.Equal(t, StakePendingWithdrawal, dec.VoterStakes[voter2].State)
	assert.Equal(t, "abc", dec.VoterStakes[voter2].TransferID)
	assert.EqualValues(t, 9, dec.Withdrawn.Int64())
	require.NotNil(t, dec.WinningOption)
	assert.Equal(t, "no", *dec.WinningOption)
	assert.True(t, dec.Tallied)
	assert.Equal(t, tokenT1, dec.AssetContract)

	_, err = decodeProposal([]byte{0xc1})
	assert.Error(t, err)
}

func TestStoreCommitAtomic(t *testing.T) {
	db := newMemDB(t)
	s, err := NewProposalStore(db, 4)
	require.NoError(t, err)

	tx := s.begin()
	require.NoError(t, tx.putProposal(newProposal(0, "", 1, 2, []string{"a"}, tokenT1)))
	require.NoError(t, tx.setCount(1))
	require.NoError(t, tx.markApplied("r1"))

	// nothing visible before commit
	assert.EqualValues(t, 0, s.Count())
	_, err = s.Get(0)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	applied, err := s.IsApplied("r1")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, tx.commit())
	assert.EqualValues(t, 1, s.Count())
	_, err = s.Get(0)
	assert.NoError(t, err)
	applied, err = s.IsApplied("r1")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestStoreWithdrawalRecord(t *testing.T) {
	s, err := NewProposalStore(newMemDB(t), 4)
	require.NoError(t, err)

	tx := s.begin()
	require.NoError(t, tx.putWithdrawal("t1", &withdrawalRecord{ProposalID: 4, Voter: "v1.tas"}))
	require.NoError(t, tx.commit())

	rec, err := s.withdrawal("t1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, rec.ProposalID)
	assert.Equal(t, "v1.tas", rec.Voter)

	tx = s.begin()
	require.NoError(t, tx.deleteWithdrawal("t1"))
	require.NoError(t, tx.commit())
	_, err = s.withdrawal("t1")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestProposalsSurviveReopen(t *testing.T) {
	dir, err := ioutil.TempDir("", "tasvote_gov")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "d")

	logger := taslog.GetLogger(taslog.ConsoleConfig)
	clock := time.NewManualClock(150)
	open := func() (*tasdb.LDBDatabase, *Contract) {
		db, err := tasdb.NewLDBDatabase(file, 16, 16)
		require.NoError(t, err)
		store, err := NewProposalStore(db, 4)
		require.NoError(t, err)
		tl := ledger.NewTokenLedger(tokenT1, newMemDB(t), logger)
		c, err := NewContract(ContractParam{ID: contractID, Store: store, Ledgers: ledger.NewDirectory(tl), Clock: clock, Logger: logger})
		require.NoError(t, err)
		return db, c
	}

	db, c := open()
	id, err := c.CreateProposal("persist", 100, 200, []string{"A", "B"}, tokenT1)
	require.NoError(t, err)
	msg := correlation(t, id, "B")
	_, err = c.OnTransferReceived(tokenT1, voter1, big.NewInt(42), msg)
	require.NoError(t, err)
	db.Close()

	db, c = open()
	defer db.Close()
	assert.EqualValues(t, 1, c.ProposalCount())
	p, err := c.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, "persist", p.Description)
	assert.Equal(t, map[string]int64{"A": 0, "B": 42}, votesOf(p))
	assert.EqualValues(t, 42, p.StakeOf(voter1).Int64())

	// the applied request id survives too
	_, err = c.OnTransferReceived(tokenT1, voter1, big.NewInt(42), msg)
	assert.Equal(t, ErrDuplicateConfirmation, errors.Cause(err))

	id2, err := c.CreateProposal("next", 100, 200, []string{"A"}, tokenT1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, id2)
}

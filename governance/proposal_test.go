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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tallies(votes ...int64) []*OptionTally {
	names := []string{"a", "b", "c", "d"}
	ret := make([]*OptionTally, len(votes))
	for i, v := range votes {
		ret[i] = &OptionTally{Name: names[i], Votes: big.NewInt(v)}
	}
	return ret
}

func TestComputeWinner(t *testing.T) {
	cases := []struct {
		votes  []int64
		winner string
	}{
		{[]int64{5, 3}, "a"},
		{[]int64{3, 5}, "b"},
		{[]int64{0, 4, 4}, "b"},
		{[]int64{4, 4, 4}, "a"},
		{[]int64{1, 2, 3, 9}, "d"},
	}
	for _, c := range cases {
		w := computeWinner(tallies(c.votes...))
		require.NotNil(t, w, "%v", c.votes)
		assert.Equal(t, c.winner, *w, "%v", c.votes)
	}

	assert.Nil(t, computeWinner(tallies(0, 0)))
	assert.Nil(t, computeWinner(nil))
}

func TestProposalWindow(t *testing.T) {
	p := newProposal(0, "", 100, 200, []string{"A"}, tokenT1)

	assert.Equal(t, ErrVotingNotYetOpen, p.checkWindow(99))
	assert.NoError(t, p.checkWindow(100))
	assert.NoError(t, p.checkWindow(200))
	assert.Equal(t, ErrVotingClosed, p.checkWindow(201))

	assert.False(t, p.Ended(200))
	assert.True(t, p.Ended(201))
}

func TestProposalBalanced(t *testing.T) {
	p := newProposal(0, "", 100, 200, []string{"A", "B"}, tokenT1)
	assert.True(t, p.Balanced())

	p.Options[0].Votes.SetInt64(10)
	assert.False(t, p.Balanced())
	p.VoterStakes[voter1] = &VoterStake{Amount: big.NewInt(6)}
	p.Withdrawn.SetInt64(4)
	assert.True(t, p.Balanced())
}

func TestProposalClone(t *testing.T) {
	p := newProposal(0, "", 100, 200, []string{"A"}, tokenT1)
	p.VoterStakes[voter1] = &VoterStake{Amount: big.NewInt(6)}
	w := "A"
	p.WinningOption = &w

	cp := p.Clone()
	cp.Options[0].Votes.SetInt64(1)
	cp.VoterStakes[voter1].Amount.SetInt64(1)
	cp.Withdrawn.SetInt64(1)
	*cp.WinningOption = "B"

	assert.EqualValues(t, 0, p.Options[0].Votes.Int64())
	assert.EqualValues(t, 6, p.VoterStakes[voter1].Amount.Int64())
	assert.EqualValues(t, 0, p.Withdrawn.Int64())
	assert.Equal(t, "A", *p.WinningOption)
}

func TestStakeStateString(t *testing.T) {
	assert.Equal(t, "staked", StakeStaked.String())
	assert.Equal(t, "pending_withdrawal", StakePendingWithdrawal.String())
	assert.Equal(t, "applied", RequestApplied.String())
}

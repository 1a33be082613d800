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
	"fmt"
	"math/big"

	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/middleware/time"
)

type StakeState uint8

const (
	StakeStaked StakeState = iota
	// StakePendingWithdrawal means a refund transfer was requested and its outcome is not known yet
	StakePendingWithdrawal
)

func (s StakeState) String() string {
	switch s {
	case StakeStaked:
		return "staked"
	case StakePendingWithdrawal:
		return "pending_withdrawal"
	default:
		return "unknown"
	}
}

// OptionTally is the accumulated stake of one option.
type OptionTally struct {
	Name  string
	Votes *big.Int
}

// VoterStake is the cumulative confirmed stake of one voter on one proposal.
type VoterStake struct {
	Amount     *big.Int
	State      StakeState
	TransferID string
}

type Proposal struct {
	ID          uint64
	Description string
	StartTime   time.TimeStamp
	EndTime     time.TimeStamp

	// Options keep their declaration order, which decides ties
	Options     []*OptionTally
	VoterStakes map[common.Address]*VoterStake

	// Withdrawn is the stake already refunded to voters
	Withdrawn *big.Int

	WinningOption *string
	Tallied       bool

	AssetContract common.Address
}

// Results is the read-through view of a proposal's tally.
type Results struct {
	WinningOption *string
	Totals        []*OptionTally
}

func newProposal(id uint64, description string, start, end time.TimeStamp, options []string, asset common.Address) *Proposal {
	p := &Proposal{
		ID:            id,
		Description:   description,
		StartTime:     start,
		EndTime:       end,
		Options:       make([]*OptionTally, 0, len(options)),
		VoterStakes:   make(map[common.Address]*VoterStake),
		Withdrawn:     new(big.Int),
		AssetContract: asset,
	}
	for _, name := range options {
		p.Options = append(p.Options, &OptionTally{Name: name, Votes: new(big.Int)})
	}
	return p
}

func validateProposal(start, end time.TimeStamp, options []string, asset common.Address) error {
	if len(options) == 0 {
		return fmt.Errorf("no options")
	}
	if !start.Before(end) {
		return fmt.Errorf("start %v not before end %v", start.Unix(), end.Unix())
	}
	seen := make(map[string]struct{}, len(options))
	for _, name := range options {
		if name == "" {
			return fmt.Errorf("empty option name")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate option %q", name)
		}
		seen[name] = struct{}{}
	}
	if !asset.IsValid() {
		return fmt.Errorf("illegal asset contract %q", asset)
	}
	return nil
}

func (p *Proposal) option(name string) *OptionTally {
	for _, o := range p.Options {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func (p *Proposal) HasOption(name string) bool {
	return p.option(name) != nil
}

func (p *Proposal) OptionNames() []string {
	names := make([]string, len(p.Options))
	for i, o := range p.Options {
		names[i] = o.Name
	}
	return names
}

// checkWindow reports whether a stake may be applied at now, the window is inclusive on both ends.
func (p *Proposal) checkWindow(now time.TimeStamp) error {
	if now.Before(p.StartTime) {
		return ErrVotingNotYetOpen
	}
	if now.After(p.EndTime) {
		return ErrVotingClosed
	}
	return nil
}

func (p *Proposal) Ended(now time.TimeStamp) bool {
	return now.After(p.EndTime)
}

func (p *Proposal) TotalVotes() *big.Int {
	sum := new(big.Int)
	for _, o := range p.Options {
		sum.Add(sum, o.Votes)
	}
	return sum
}

// TotalStaked sums the voter entries, pending withdrawals included.
func (p *Proposal) TotalStaked() *big.Int {
	sum := new(big.Int)
	for _, s := range p.VoterStakes {
		sum.Add(sum, s.Amount)
	}
	return sum
}

// Balanced checks that every confirmed stake is attributed to one option and
// to one voter entry, or was refunded.
func (p *Proposal) Balanced() bool {
	held := new(big.Int).Add(p.TotalStaked(), p.Withdrawn)
	return p.TotalVotes().Cmp(held) == 0
}

func (p *Proposal) StakeOf(voter common.Address) *big.Int {
	if s, ok := p.VoterStakes[voter]; ok {
		return common.NewAmount(s.Amount)
	}
	return new(big.Int)
}

// computeWinner scans options in declaration order; a strictly greater total
// is needed to take the lead, so the first declared option wins ties and
// nothing wins when no stake was cast.
func computeWinner(options []*OptionTally) *string {
	maxVotes := new(big.Int)
	var winner *string
	for _, o := range options {
		if o.Votes.Cmp(maxVotes) > 0 {
			maxVotes = o.Votes
			name := o.Name
			winner = &name
		}
	}
	return winner
}

func cloneTallies(options []*OptionTally) []*OptionTally {
	ret := make([]*OptionTally, len(options))
	for i, o := range options {
		ret[i] = &OptionTally{Name: o.Name, Votes: common.NewAmount(o.Votes)}
	}
	return ret
}

func (p *Proposal) Clone() *Proposal {
	cp := *p
	cp.Options = cloneTallies(p.Options)
	cp.VoterStakes = make(map[common.Address]*VoterStake, len(p.VoterStakes))
	for addr, s := range p.VoterStakes {
		cp.VoterStakes[addr] = &VoterStake{Amount: common.NewAmount(s.Amount), State: s.State, TransferID: s.TransferID}
	}
	cp.Withdrawn = common.NewAmount(p.Withdrawn)
	if p.WinningOption != nil {
		w := *p.WinningOption
		cp.WinningOption = &w
	}
	return &cp
}

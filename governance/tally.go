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
	"github.com/pkg/errors"
)

// Tally records the winning option of a closed proposal. It may be called
// again, each call recomputes the winner from the current totals.
// A nil winner means no stake was cast.
func (c *Contract) Tally(proposalID uint64) (*string, error) {
	winner, err := c.tally(proposalID)
	if err != nil {
		return nil, err
	}
	c.publish(&EventMessage{Topic: TopicProposalTallied, ProposalID: proposalID, Winner: copyName(winner)})
	return winner, nil
}

func (c *Contract) tally(proposalID uint64) (*string, error) {
	c.lock.Lock("Tally")
	defer c.lock.Unlock()

	p, err := c.store.Get(proposalID)
	if err != nil {
		return nil, err
	}
	if !p.Ended(c.clock.Now()) {
		return nil, errors.Wrapf(ErrVotingStillActive, "proposal %v ends at %v", p.ID, p.EndTime.Unix())
	}

	p.WinningOption = computeWinner(p.Options)
	p.Tallied = true
	tx := c.store.begin()
	if err := tx.putProposal(p); err != nil {
		return nil, err
	}
	if err := c.commit(tx); err != nil {
		return nil, err
	}

	c.meters.tally.Inc(1)
	if p.WinningOption != nil {
		c.logger.Infof("proposal %v tallied, winner %q with %v", p.ID, *p.WinningOption, p.option(*p.WinningOption).Votes)
	} else {
		c.logger.Infof("proposal %v tallied, no stake cast", p.ID)
	}
	return copyName(p.WinningOption), nil
}

// GetResults computes the current standing without recording anything.
func (c *Contract) GetResults(proposalID uint64) (*Results, error) {
	c.lock.Lock("GetResults")
	defer c.lock.Unlock()

	p, err := c.store.Get(proposalID)
	if err != nil {
		return nil, err
	}
	return &Results{
		WinningOption: computeWinner(p.Options),
		Totals:        cloneTallies(p.Options),
	}, nil
}

func copyName(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

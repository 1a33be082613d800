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

	"github.com/taschain/tasvote/common"
)

// Topics published on the contract's bus.
const (
	TopicProposalCreated  = "proposal.created"
	TopicProposalTallied  = "proposal.tallied"
	TopicVoteApplied      = "vote.applied"
	TopicVoteRejected     = "vote.rejected"
	TopicStakeWithdrawing = "stake.withdrawing"
	TopicStakeWithdrawn   = "stake.withdrawn"
	TopicStakeRestored    = "stake.restored"
)

// EventMessage carries the details of one contract event, unused fields are left zero.
type EventMessage struct {
	Topic      string
	ProposalID uint64
	Voter      common.Address
	Option     string
	Amount     *big.Int
	RequestID  string
	TransferID string
	Winner     *string
	Err        error
}

func (m *EventMessage) TopicID() string {
	return m.Topic
}

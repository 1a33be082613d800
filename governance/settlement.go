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
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/ledger"
)

// Unstake asks the proposal's asset ledger to return the voter's whole stake.
// The entry stays in place, marked pending, until the ledger reports the
// outcome through OnTransferResolved. Calling it again while the refund is
// pending sends the same transfer again, the ledger executes an id once.
func (c *Contract) Unstake(ctx context.Context, voter common.Address, proposalID uint64) (string, error) {
	c.lock.Lock("Unstake")
	req, l, resend, err := c.prepareWithdrawal(voter, proposalID)
	c.lock.Unlock()
	if err != nil {
		return "", err
	}

	if err := l.Transfer(ctx, req); err != nil {
		c.logger.Warnf("refund %v of %v on proposal %v not sent: %v", req.ID, voter, proposalID, err)
		if resend {
			// an earlier copy may still be queued, keep the entry pending
			return "", errors.Wrapf(err, "transfer on %v", l.ID())
		}
		c.lock.Lock("Unstake restore")
		rerr := c.restoreWithdrawal(req.ID)
		c.lock.Unlock()
		if rerr != nil {
			c.logger.Errorf("restore stake of %v on proposal %v fail: %v", voter, proposalID, rerr)
		}
		return "", errors.Wrapf(err, "transfer on %v", l.ID())
	}

	if resend {
		c.meters.resent.Inc(1)
		c.logger.Infof("refund %v sent again: %v on proposal %v amount %v", req.ID, voter, proposalID, req.Amount)
		return req.ID, nil
	}
	c.meters.unstake.Inc(1)
	c.logger.Infof("refund %v requested: %v on proposal %v amount %v", req.ID, voter, proposalID, req.Amount)
	c.publish(&EventMessage{Topic: TopicStakeWithdrawing, ProposalID: proposalID, Voter: voter, Amount: common.NewAmount(req.Amount), TransferID: req.ID})
	return req.ID, nil
}

// prepareWithdrawal marks the stake pending and builds its refund. A stake
// already pending yields the stored refund unchanged and resend is set.
func (c *Contract) prepareWithdrawal(voter common.Address, proposalID uint64) (req *ledger.TransferRequest, l ledger.AssetLedger, resend bool, err error) {
	p, err := c.store.Get(proposalID)
	if err != nil {
		return nil, nil, false, err
	}
	if !p.Ended(c.clock.Now()) {
		return nil, nil, false, errors.Wrapf(ErrVotingStillActive, "proposal %v ends at %v", p.ID, p.EndTime.Unix())
	}
	stake, ok := p.VoterStakes[voter]
	if !ok {
		return nil, nil, false, errors.Wrapf(ErrNoStake, "voter %v on proposal %v", voter, p.ID)
	}
	l, err = c.ledgers.Lookup(p.AssetContract)
	if err != nil {
		return nil, nil, false, err
	}
	if stake.State == StakePendingWithdrawal {
		return refundRequest(c.id, voter, p.ID, stake), l, true, nil
	}

	transferID := newRequestID(c.id.Bytes(), voter.Bytes(), common.UInt64ToByte(p.ID))
	stake.State = StakePendingWithdrawal
	stake.TransferID = transferID

	tx := c.store.begin()
	if err := tx.putProposal(p); err != nil {
		return nil, nil, false, err
	}
	if err := tx.putWithdrawal(transferID, &withdrawalRecord{ProposalID: p.ID, Voter: voter.String()}); err != nil {
		return nil, nil, false, err
	}
	if err := c.commit(tx); err != nil {
		return nil, nil, false, err
	}

	return refundRequest(c.id, voter, p.ID, stake), l, false, nil
}

func refundRequest(contract, voter common.Address, proposalID uint64, stake *VoterStake) *ledger.TransferRequest {
	return &ledger.TransferRequest{
		ID:     stake.TransferID,
		From:   contract,
		To:     voter,
		Amount: common.NewAmount(stake.Amount),
		Memo:   fmt.Sprintf("unstake proposal %v", proposalID),
	}
}

// OnTransferResolved is called by a ledger with the outcome of a refund sent by Unstake.
// A successful refund removes the voter's entry, a failed one puts the stake back.
func (c *Contract) OnTransferResolved(caller common.Address, transferID string, success bool) error {
	c.lock.Lock("OnTransferResolved")
	ev, err := c.resolveWithdrawal(caller, transferID, success)
	c.lock.Unlock()

	if err != nil {
		if errors.Cause(err) == ErrUnauthorized {
			c.logger.Errorf("SECURITY: resolution of %v from %v refused: %v", transferID, caller, err)
		} else {
			c.logger.Warnf("resolution of %v from %v refused: %v", transferID, caller, err)
		}
		return err
	}

	if success {
		c.meters.withdrawn.Inc(1)
		c.logger.Infof("refund %v done: %v got %v back from proposal %v", transferID, ev.Voter, ev.Amount, ev.ProposalID)
	} else {
		c.meters.restored.Inc(1)
		c.logger.Warnf("refund %v failed: stake %v of %v restored on proposal %v", transferID, ev.Amount, ev.Voter, ev.ProposalID)
	}
	c.publish(ev)
	return nil
}

func (c *Contract) resolveWithdrawal(caller common.Address, transferID string, success bool) (*EventMessage, error) {
	rec, err := c.store.withdrawal(transferID)
	if err != nil {
		return nil, err
	}
	p, err := c.store.Get(rec.ProposalID)
	if err != nil {
		return nil, err
	}
	if caller != p.AssetContract {
		return nil, errors.Wrapf(ErrUnauthorized, "proposal %v accepts %v only", p.ID, p.AssetContract)
	}
	voter := common.Address(rec.Voter)
	stake, ok := p.VoterStakes[voter]
	if !ok || stake.State != StakePendingWithdrawal || stake.TransferID != transferID {
		return nil, errors.Wrapf(ErrNotFound, "no pending refund %v for %v", transferID, voter)
	}

	ev := &EventMessage{ProposalID: p.ID, Voter: voter, Amount: common.NewAmount(stake.Amount), TransferID: transferID}
	if success {
		withdrawn, err := common.SafeAdd(p.Withdrawn, stake.Amount)
		if err != nil {
			return nil, errors.Wrapf(ErrArithmeticOverflow, "withdrawn %v + %v", p.Withdrawn, stake.Amount)
		}
		p.Withdrawn = withdrawn
		delete(p.VoterStakes, voter)
		ev.Topic = TopicStakeWithdrawn
	} else {
		stake.State = StakeStaked
		stake.TransferID = ""
		ev.Topic = TopicStakeRestored
	}

	tx := c.store.begin()
	if err := tx.putProposal(p); err != nil {
		return nil, err
	}
	if err := tx.deleteWithdrawal(transferID); err != nil {
		return nil, err
	}
	if err := c.commit(tx); err != nil {
		return nil, err
	}
	return ev, nil
}

// restoreWithdrawal undoes prepareWithdrawal when the refund could not be handed to the ledger.
func (c *Contract) restoreWithdrawal(transferID string) error {
	rec, err := c.store.withdrawal(transferID)
	if err != nil {
		return err
	}
	p, err := c.store.Get(rec.ProposalID)
	if err != nil {
		return err
	}
	stake, ok := p.VoterStakes[common.Address(rec.Voter)]
	if !ok || stake.TransferID != transferID {
		return errors.Wrapf(ErrNotFound, "no pending refund %v", transferID)
	}
	stake.State = StakeStaked
	stake.TransferID = ""

	tx := c.store.begin()
	if err := tx.putProposal(p); err != nil {
		return err
	}
	if err := tx.deleteWithdrawal(transferID); err != nil {
		return err
	}
	return c.commit(tx)
}

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
	"math/big"

	"github.com/pkg/errors"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/ledger"
)

// RequestState is where a stake attempt stands from the contract's view.
type RequestState uint8

const (
	RequestUnknown RequestState = iota
	// RequestRequested was sent to a ledger, not confirmed yet, kept in memory only
	RequestRequested
	// RequestApplied was confirmed and persisted
	RequestApplied
)

func (s RequestState) String() string {
	switch s {
	case RequestRequested:
		return "requested"
	case RequestApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// Vote asks the asset ledger to move amount from voter into the contract's
// custody. Nothing changes locally until the ledger confirms the transfer
// through OnTransferReceived; if it never does the attempt is simply lost.
func (c *Contract) Vote(ctx context.Context, voter common.Address, proposalID uint64, option string, amount *big.Int, asset common.Address) (string, error) {
	if !voter.IsValid() {
		return "", errors.Wrapf(ErrInvalidAddress, "voter %q", voter)
	}
	if amount == nil || amount.Sign() <= 0 {
		return "", errors.Wrapf(ErrInvalidAmount, "amount %v", amount)
	}
	if amount.Cmp(common.MaxAmount) > 0 {
		return "", errors.Wrapf(ErrArithmeticOverflow, "amount %v", amount)
	}

	c.lock.Lock("Vote")
	p, err := c.store.Get(proposalID)
	if err != nil {
		c.lock.Unlock()
		return "", err
	}
	if !p.HasOption(option) {
		c.lock.Unlock()
		return "", errors.Wrapf(ErrUnknownOption, "proposal %v option %q", proposalID, option)
	}
	l, err := c.ledgers.Lookup(asset)
	if err != nil {
		c.lock.Unlock()
		return "", err
	}
	msg := &CorrelationMessage{
		ProposalID: proposalID,
		OptionName: option,
		RequestID:  newRequestID(voter.Bytes(), common.UInt64ToByte(proposalID), []byte(option), amount.Bytes()),
	}
	data, err := msg.Encode()
	if err != nil {
		c.lock.Unlock()
		return "", err
	}
	c.addRequest(msg.RequestID)
	c.lock.Unlock()

	req := &ledger.TransferCallRequest{
		From:   voter,
		To:     c.id,
		Amount: common.NewAmount(amount),
		Msg:    data,
	}
	if err := l.TransferCall(ctx, req); err != nil {
		c.dropRequest(msg.RequestID)
		return "", errors.Wrapf(err, "transfer call on %v", asset)
	}
	c.logger.Debugf("vote requested %v: %v stakes %v on proposal %v option %q via %v", msg.RequestID, voter, amount, proposalID, option, asset)
	return msg.RequestID, nil
}

// RequestState reports whether a request id returned by Vote is still in flight or was applied.
// An id the ledger never confirmed is reported unknown once it expires.
func (c *Contract) RequestState(requestID string) (RequestState, error) {
	if c.hasRequest(requestID) {
		return RequestRequested, nil
	}
	ok, err := c.store.IsApplied(requestID)
	if err != nil {
		return RequestUnknown, err
	}
	if ok {
		return RequestApplied, nil
	}
	return RequestUnknown, nil
}

// OnTransferReceived is called by a ledger once amount sent by sender is in
// the contract's custody. It returns the part of amount the ledger must hand
// back: zero when the stake is applied, all of it otherwise.
func (c *Contract) OnTransferReceived(caller common.Address, sender common.Address, amount *big.Int, msg string) (*big.Int, error) {
	ev := &EventMessage{Voter: sender, Amount: common.NewAmount(amount)}

	c.lock.Lock("OnTransferReceived")
	err := c.applyStake(caller, sender, amount, msg, ev)
	c.lock.Unlock()

	if err != nil {
		c.meters.rejected.Inc(1)
		if errors.Cause(err) == ErrUnauthorized {
			c.logger.Errorf("SECURITY: confirmation from %v refused, sender %v amount %v: %v", caller, sender, amount, err)
		} else {
			c.logger.Warnf("confirmation from %v refused, sender %v amount %v: %v", caller, sender, amount, err)
		}
		ev.Topic = TopicVoteRejected
		ev.Err = err
		c.publish(ev)
		return common.NewAmount(amount), err
	}

	c.meters.applied.Inc(1)
	c.logger.Infof("stake applied %v: %v +%v on proposal %v option %q", ev.RequestID, sender, amount, ev.ProposalID, ev.Option)
	ev.Topic = TopicVoteApplied
	c.publish(ev)
	return new(big.Int), nil
}

func (c *Contract) applyStake(caller common.Address, sender common.Address, amount *big.Int, msg string, ev *EventMessage) error {
	m, err := ParseCorrelationMessage(msg)
	if err != nil {
		return err
	}
	c.dropRequest(m.RequestID)
	ev.ProposalID, ev.Option, ev.RequestID = m.ProposalID, m.OptionName, m.RequestID

	p, err := c.store.Get(m.ProposalID)
	if err != nil {
		return err
	}
	if caller != p.AssetContract {
		return errors.Wrapf(ErrUnauthorized, "proposal %v accepts %v only", p.ID, p.AssetContract)
	}
	if err := p.checkWindow(c.clock.Now()); err != nil {
		return errors.Wrapf(err, "proposal %v window [%v, %v]", p.ID, p.StartTime.Unix(), p.EndTime.Unix())
	}
	opt := p.option(m.OptionName)
	if opt == nil {
		return errors.Wrapf(ErrUnknownOption, "proposal %v option %q", p.ID, m.OptionName)
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrapf(ErrInvalidAmount, "amount %v", amount)
	}
	if !sender.IsValid() {
		return errors.Wrapf(ErrInvalidAddress, "sender %q", sender)
	}
	applied, err := c.store.IsApplied(m.RequestID)
	if err != nil {
		return err
	}
	if applied {
		return errors.Wrapf(ErrDuplicateConfirmation, "request %v", m.RequestID)
	}

	stake, ok := p.VoterStakes[sender]
	if !ok {
		stake = &VoterStake{Amount: new(big.Int), State: StakeStaked}
		p.VoterStakes[sender] = stake
	}
	if stake.State == StakePendingWithdrawal {
		return errors.Wrapf(ErrWithdrawalPending, "voter %v transfer %v", sender, stake.TransferID)
	}
	votes, err := common.SafeAdd(opt.Votes, amount)
	if err != nil {
		return errors.Wrapf(ErrArithmeticOverflow, "option %q total %v + %v", opt.Name, opt.Votes, amount)
	}
	staked, err := common.SafeAdd(stake.Amount, amount)
	if err != nil {
		return errors.Wrapf(ErrArithmeticOverflow, "voter %v stake %v + %v", sender, stake.Amount, amount)
	}
	opt.Votes = votes
	stake.Amount = staked

	tx := c.store.begin()
	if err := tx.putProposal(p); err != nil {
		return err
	}
	if err := tx.markApplied(m.RequestID); err != nil {
		return err
	}
	return c.commit(tx)
}

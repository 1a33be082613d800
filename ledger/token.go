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

package ledger

import (
	"context"
	"math/big"
	"sync"

	"github.com/pkg/errors"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/storage/tasdb"
	"github.com/taschain/tasvote/taslog"
	"github.com/vmihailenco/msgpack"
)

var (
	balancePrefix  = []byte("bal")
	transferPrefix = []byte("tx")
)

type accountRecord struct {
	Balance []byte `msgpack:"b"`
}

// transferRecord is the outcome of an executed transfer, kept by its id.
type transferRecord struct {
	Success bool `msgpack:"s"`
}

type envelope struct {
	call     *TransferCallRequest
	transfer *TransferRequest
}

// TokenLedger simulates a fungible-token ledger with transfer-and-call semantics.
// Requests are queued and executed by Drain or by the Run loop; the receivers
// are notified from that execution, never from inside TransferCall/Transfer.
type TokenLedger struct {
	id     common.Address
	db     tasdb.Database
	logger taslog.Logger

	lock         sync.Mutex
	queue        []*envelope
	receivers    map[common.Address]Receiver
	transferHook func(req *TransferRequest) error
	closed       bool
	wakeup       chan struct{}

	// serializes execution and balance updates
	execLock sync.Mutex
}

func NewTokenLedger(id common.Address, db tasdb.Database, logger taslog.Logger) *TokenLedger {
	return &TokenLedger{
		id:        id,
		db:        db,
		logger:    logger,
		receivers: make(map[common.Address]Receiver),
		wakeup:    make(chan struct{}, 1),
	}
}

func (tl *TokenLedger) ID() common.Address {
	return tl.id
}

// Register makes r the custody callback target of account addr.
func (tl *TokenLedger) Register(addr common.Address, r Receiver) {
	tl.lock.Lock()
	defer tl.lock.Unlock()
	tl.receivers[addr] = r
}

// SetTransferHook installs a check run before every plain transfer; an error fails the transfer.
func (tl *TokenLedger) SetTransferHook(hook func(req *TransferRequest) error) {
	tl.lock.Lock()
	defer tl.lock.Unlock()
	tl.transferHook = hook
}

func (tl *TokenLedger) TransferCall(ctx context.Context, req *TransferCallRequest) error {
	if !common.IsValidAmount(req.Amount) {
		return errors.Errorf("illegal amount %v", req.Amount)
	}
	return tl.enqueue(ctx, &envelope{call: req})
}

func (tl *TokenLedger) Transfer(ctx context.Context, req *TransferRequest) error {
	if !common.IsValidAmount(req.Amount) {
		return errors.Errorf("illegal amount %v", req.Amount)
	}
	return tl.enqueue(ctx, &envelope{transfer: req})
}

func (tl *TokenLedger) enqueue(ctx context.Context, env *envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tl.lock.Lock()
	defer tl.lock.Unlock()

	if tl.closed {
		return ErrLedgerClosed
	}
	tl.queue = append(tl.queue, env)
	select {
	case tl.wakeup <- struct{}{}:
	default:
	}
	return nil
}

func (tl *TokenLedger) Pending() int {
	tl.lock.Lock()
	defer tl.lock.Unlock()
	return len(tl.queue)
}

func (tl *TokenLedger) pop() *envelope {
	tl.lock.Lock()
	defer tl.lock.Unlock()
	if len(tl.queue) == 0 {
		return nil
	}
	env := tl.queue[0]
	tl.queue[0] = nil
	tl.queue = tl.queue[1:]
	return env
}

func (tl *TokenLedger) receiver(addr common.Address) Receiver {
	tl.lock.Lock()
	defer tl.lock.Unlock()
	return tl.receivers[addr]
}

// Drain executes queued requests, including those enqueued by callbacks, until the queue is empty.
func (tl *TokenLedger) Drain() int {
	tl.execLock.Lock()
	defer tl.execLock.Unlock()

	n := 0
	for env := tl.pop(); env != nil; env = tl.pop() {
		if env.call != nil {
			tl.executeTransferCall(env.call)
		} else {
			tl.executeTransfer(env.transfer)
		}
		n++
	}
	return n
}

// Run drains the queue whenever a request arrives, until ctx is done.
func (tl *TokenLedger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tl.wakeup:
			tl.Drain()
		}
	}
}

func (tl *TokenLedger) Close() {
	tl.lock.Lock()
	defer tl.lock.Unlock()
	tl.closed = true
}

func (tl *TokenLedger) executeTransferCall(req *TransferCallRequest) {
	if err := tl.move(req.From, req.To, req.Amount); err != nil {
		tl.logger.Warnf("[%v] transfer call %v -> %v amount %v fail: %v", tl.id, req.From, req.To, req.Amount, err)
		return
	}

	unspent := common.NewAmount(req.Amount)
	if r := tl.receiver(req.To); r != nil {
		ret, err := r.OnTransferReceived(tl.id, req.From, common.NewAmount(req.Amount), req.Msg)
		if err != nil {
			tl.logger.Infof("[%v] receiver %v refused %v from %v: %v", tl.id, req.To, req.Amount, req.From, err)
		}
		switch {
		case ret != nil:
			unspent = common.NewAmount(ret)
		case err == nil:
			unspent = new(big.Int)
		}
		if unspent.Sign() < 0 {
			unspent.SetInt64(0)
		}
		if unspent.Cmp(req.Amount) > 0 {
			unspent.Set(req.Amount)
		}
	} else {
		tl.logger.Warnf("[%v] no receiver for %v, refund %v", tl.id, req.To, req.Amount)
	}

	if unspent.Sign() > 0 {
		if err := tl.move(req.To, req.From, unspent); err != nil {
			tl.logger.Errorf("[%v] refund %v from %v to %v fail: %v", tl.id, unspent, req.To, req.From, err)
		}
	}
}

// executeTransfer runs a transfer at most once per id. A request whose id was
// already executed moves nothing and reports the recorded outcome again.
func (tl *TokenLedger) executeTransfer(req *TransferRequest) {
	success, done, err := tl.transferOutcome(req.ID)
	if err != nil {
		tl.logger.Errorf("[%v] read transfer %v fail: %v", tl.id, req.ID, err)
		return
	}
	if done {
		tl.logger.Infof("[%v] transfer %v already executed, success %v", tl.id, req.ID, success)
	} else {
		success = tl.applyTransfer(req)
	}

	if r := tl.receiver(req.From); r != nil {
		if err := r.OnTransferResolved(tl.id, req.ID, success); err != nil {
			tl.logger.Errorf("[%v] resolve transfer %v on %v fail: %v", tl.id, req.ID, req.From, err)
		}
	}
}

func (tl *TokenLedger) applyTransfer(req *TransferRequest) bool {
	tl.lock.Lock()
	hook := tl.transferHook
	tl.lock.Unlock()

	var err error
	if hook != nil {
		err = hook(req)
	}
	b := tl.db.NewBatch()
	if err == nil {
		err = tl.stageMove(b, req.From, req.To, req.Amount)
	}
	success := err == nil
	if !success {
		tl.logger.Warnf("[%v] transfer %v %v -> %v amount %v fail: %v", tl.id, req.ID, req.From, req.To, req.Amount, err)
		b.Reset()
	}
	if err := tl.putTransfer(b, req.ID, success); err != nil {
		tl.logger.Errorf("[%v] record transfer %v fail: %v", tl.id, req.ID, err)
		return false
	}
	if err := b.Write(); err != nil {
		tl.logger.Errorf("[%v] write transfer %v fail: %v", tl.id, req.ID, err)
		return false
	}
	return success
}

// Mint credits amount to addr out of thin air.
func (tl *TokenLedger) Mint(addr common.Address, amount *big.Int) error {
	tl.execLock.Lock()
	defer tl.execLock.Unlock()

	bal, err := tl.balanceOf(addr)
	if err != nil {
		return err
	}
	nb, err := common.SafeAdd(bal, amount)
	if err != nil {
		return err
	}
	b := tl.db.NewBatch()
	if err := tl.putBalance(b, addr, nb); err != nil {
		return err
	}
	return b.Write()
}

func (tl *TokenLedger) BalanceOf(addr common.Address) (*big.Int, error) {
	tl.execLock.Lock()
	defer tl.execLock.Unlock()
	return tl.balanceOf(addr)
}

func (tl *TokenLedger) move(from, to common.Address, amount *big.Int) error {
	b := tl.db.NewBatch()
	if err := tl.stageMove(b, from, to, amount); err != nil {
		return err
	}
	return b.Write()
}

func (tl *TokenLedger) stageMove(b tasdb.Batch, from, to common.Address, amount *big.Int) error {
	fb, err := tl.balanceOf(from)
	if err != nil {
		return err
	}
	if fb.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	tb, err := tl.balanceOf(to)
	if err != nil {
		return err
	}
	nfb, _ := common.SafeSub(fb, amount)
	if from == to {
		tb = nfb
	}
	ntb, err := common.SafeAdd(tb, amount)
	if err != nil {
		return err
	}

	if from != to {
		if err := tl.putBalance(b, from, nfb); err != nil {
			return err
		}
	}
	return tl.putBalance(b, to, ntb)
}

func balanceKey(addr common.Address) []byte {
	return append(common.CopyBytes(balancePrefix), addr.Bytes()...)
}

func (tl *TokenLedger) balanceOf(addr common.Address) (*big.Int, error) {
	data, err := tl.db.Get(balanceKey(addr))
	if err == tasdb.ErrNotFound {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read balance of %v", addr)
	}
	var rec accountRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "decode balance of %v", addr)
	}
	return common.BytesToAmount(rec.Balance), nil
}

func (tl *TokenLedger) putBalance(b tasdb.Batch, addr common.Address, v *big.Int) error {
	data, err := msgpack.Marshal(&accountRecord{Balance: common.AmountToBytes(v)})
	if err != nil {
		return err
	}
	return b.Put(balanceKey(addr), data)
}

func transferKey(id string) []byte {
	return append(common.CopyBytes(transferPrefix), id...)
}

func (tl *TokenLedger) transferOutcome(id string) (success bool, done bool, err error) {
	data, err := tl.db.Get(transferKey(id))
	if err == tasdb.ErrNotFound {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	var rec transferRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return false, false, errors.Wrapf(err, "decode transfer %v", id)
	}
	return rec.Success, true, nil
}

func (tl *TokenLedger) putTransfer(b tasdb.Batch, id string, success bool) error {
	data, err := msgpack.Marshal(&transferRecord{Success: success})
	if err != nil {
		return err
	}
	return b.Put(transferKey(id), data)
}

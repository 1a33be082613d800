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
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/storage/tasdb"
	"github.com/taschain/tasvote/taslog"
)

var (
	token   = common.MustAddress("token.tas")
	alice   = common.MustAddress("alice.tas")
	bob     = common.MustAddress("bob.tas")
	custody = common.MustAddress("vote.tas")
)

type received struct {
	caller, sender common.Address
	amount         *big.Int
	msg            string
}

type resolved struct {
	caller  common.Address
	id      string
	success bool
}

type fakeReceiver struct {
	lock     sync.Mutex
	keep     *big.Int // amount retained per call, the rest is returned
	err      error
	received []received
	resolved []resolved
}

func (f *fakeReceiver) OnTransferReceived(caller, sender common.Address, amount *big.Int, msg string) (*big.Int, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.received = append(f.received, received{caller, sender, amount, msg})
	if f.err != nil {
		return amount, f.err
	}
	if f.keep == nil || f.keep.Cmp(amount) >= 0 {
		return new(big.Int), nil
	}
	return new(big.Int).Sub(amount, f.keep), nil
}

func (f *fakeReceiver) OnTransferResolved(caller common.Address, transferID string, success bool) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.resolved = append(f.resolved, resolved{caller, transferID, success})
	return nil
}

func newTestLedger(t *testing.T) *TokenLedger {
	db, err := tasdb.NewMemDatabase()
	require.NoError(t, err)
	return NewTokenLedger(token, db, taslog.GetLoggerByName("ledger_test"))
}

func requireBalance(t *testing.T, tl *TokenLedger, addr common.Address, expect int64) {
	bal, err := tl.BalanceOf(addr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(big.NewInt(expect)), "balance of %v: %v != %v", addr, bal, expect)
}

func TestTransferCall_Accepted(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(alice, big.NewInt(100)))

	err := tl.TransferCall(context.Background(), &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(60), Msg: "m"})
	require.NoError(t, err)

	// nothing moves before execution
	requireBalance(t, tl, alice, 100)
	assert.Equal(t, 1, tl.Pending())

	assert.Equal(t, 1, tl.Drain())
	requireBalance(t, tl, alice, 40)
	requireBalance(t, tl, custody, 60)
	require.Len(t, r.received, 1)
	assert.Equal(t, token, r.received[0].caller)
	assert.Equal(t, alice, r.received[0].sender)
	assert.Equal(t, "m", r.received[0].msg)
}

func TestTransferCall_RefusedIsRefunded(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{err: fmt.Errorf("voting closed")}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(alice, big.NewInt(100)))

	require.NoError(t, tl.TransferCall(context.Background(), &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(60)}))
	tl.Drain()

	requireBalance(t, tl, alice, 100)
	requireBalance(t, tl, custody, 0)
	assert.Len(t, r.received, 1)
}

func TestTransferCall_PartialRefund(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{keep: big.NewInt(10)}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(alice, big.NewInt(100)))

	require.NoError(t, tl.TransferCall(context.Background(), &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(60)}))
	tl.Drain()

	requireBalance(t, tl, alice, 90)
	requireBalance(t, tl, custody, 10)
}

func TestTransferCall_InsufficientBalanceIsSilent(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(alice, big.NewInt(5)))

	require.NoError(t, tl.TransferCall(context.Background(), &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(60)}))
	tl.Drain()

	requireBalance(t, tl, alice, 5)
	assert.Len(t, r.received, 0)
}

func TestTransferCall_NoReceiver(t *testing.T) {
	tl := newTestLedger(t)
	require.NoError(t, tl.Mint(alice, big.NewInt(100)))

	require.NoError(t, tl.TransferCall(context.Background(), &TransferCallRequest{From: alice, To: bob, Amount: big.NewInt(30)}))
	tl.Drain()

	requireBalance(t, tl, alice, 100)
	requireBalance(t, tl, bob, 0)
}

func TestTransfer_Resolved(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(custody, big.NewInt(50)))

	require.NoError(t, tl.Transfer(context.Background(), &TransferRequest{ID: "t1", From: custody, To: alice, Amount: big.NewInt(20)}))
	require.NoError(t, tl.Transfer(context.Background(), &TransferRequest{ID: "t2", From: custody, To: bob, Amount: big.NewInt(40)}))
	assert.Equal(t, 2, tl.Drain())

	requireBalance(t, tl, alice, 20)
	requireBalance(t, tl, bob, 0)
	requireBalance(t, tl, custody, 30)
	assert.Equal(t, []resolved{{token, "t1", true}, {token, "t2", false}}, r.resolved)
}

func TestTransfer_Hook(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(custody, big.NewInt(50)))
	tl.SetTransferHook(func(req *TransferRequest) error {
		if req.To == bob {
			return fmt.Errorf("account frozen")
		}
		return nil
	})

	require.NoError(t, tl.Transfer(context.Background(), &TransferRequest{ID: "t1", From: custody, To: bob, Amount: big.NewInt(20)}))
	tl.Drain()
	requireBalance(t, tl, custody, 50)
	assert.Equal(t, []resolved{{token, "t1", false}}, r.resolved)
}

func TestTransfer_ExecutedOncePerID(t *testing.T) {
	db, err := tasdb.NewMemDatabase()
	require.NoError(t, err)
	tl := NewTokenLedger(token, db, taslog.GetLoggerByName("ledger_test"))
	r := &fakeReceiver{}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(custody, big.NewInt(50)))

	req := &TransferRequest{ID: "t1", From: custody, To: alice, Amount: big.NewInt(20)}
	require.NoError(t, tl.Transfer(context.Background(), req))
	require.NoError(t, tl.Transfer(context.Background(), req))
	assert.Equal(t, 2, tl.Drain())
	requireBalance(t, tl, alice, 20)
	requireBalance(t, tl, custody, 30)

	// a ledger over the same store remembers the id
	tl2 := NewTokenLedger(token, db, taslog.GetLoggerByName("ledger_test"))
	tl2.Register(custody, r)
	require.NoError(t, tl2.Transfer(context.Background(), req))
	tl2.Drain()
	requireBalance(t, tl2, alice, 20)
	requireBalance(t, tl2, custody, 30)
	assert.Equal(t, []resolved{{token, "t1", true}, {token, "t1", true}, {token, "t1", true}}, r.resolved)
}

func TestTransfer_FailureRecorded(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{}
	tl.Register(custody, r)

	req := &TransferRequest{ID: "t1", From: custody, To: alice, Amount: big.NewInt(20)}
	require.NoError(t, tl.Transfer(context.Background(), req))
	tl.Drain()

	// funds arriving later do not revive a failed id
	require.NoError(t, tl.Mint(custody, big.NewInt(50)))
	require.NoError(t, tl.Transfer(context.Background(), req))
	tl.Drain()
	requireBalance(t, tl, custody, 50)
	requireBalance(t, tl, alice, 0)
	assert.Equal(t, []resolved{{token, "t1", false}, {token, "t1", false}}, r.resolved)
}

func TestRejectIllegalRequests(t *testing.T) {
	tl := newTestLedger(t)
	assert.Error(t, tl.TransferCall(context.Background(), &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(0)}))
	assert.Error(t, tl.Transfer(context.Background(), &TransferRequest{From: alice, To: custody}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, tl.TransferCall(ctx, &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(1)}))

	tl.Close()
	assert.Equal(t, ErrLedgerClosed, tl.TransferCall(context.Background(), &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(1)}))
	assert.Equal(t, 0, tl.Pending())
}

func TestRun(t *testing.T) {
	tl := newTestLedger(t)
	r := &fakeReceiver{}
	tl.Register(custody, r)
	require.NoError(t, tl.Mint(alice, big.NewInt(100)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tl.Run(ctx)

	require.NoError(t, tl.TransferCall(ctx, &TransferCallRequest{From: alice, To: custody, Amount: big.NewInt(25)}))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		bal, _ := tl.BalanceOf(custody)
		if bal.Cmp(big.NewInt(25)) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("background ledger did not execute the transfer")
}

func TestDirectory(t *testing.T) {
	tl := newTestLedger(t)
	d := NewDirectory(tl)

	l, err := d.Lookup(token)
	require.NoError(t, err)
	assert.Equal(t, token, l.ID())

	_, err = d.Lookup(bob)
	assert.Error(t, err)
}

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

// Package ledger defines the boundary between the vote contract and the
// fungible-token ledger that holds voters' funds, plus a simulated ledger.
package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/taschain/tasvote/common"
)

var (
	ErrLedgerClosed        = fmt.Errorf("ledger closed")
	ErrInsufficientBalance = fmt.Errorf("insufficient balance")
	ErrUnknownLedger       = fmt.Errorf("unknown ledger")
)

// TransferCallRequest asks the ledger to move Amount from From to To and then
// notify To through Receiver.OnTransferReceived with Msg attached.
type TransferCallRequest struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
	Msg    string
}

// TransferRequest asks the ledger to move Amount from From to To. The outcome
// is reported to From through Receiver.OnTransferResolved with ID.
type TransferRequest struct {
	ID     string
	From   common.Address
	To     common.Address
	Amount *big.Int
	Memo   string
}

// AssetLedger is the outbound side. Both calls only enqueue the request,
// the outcome arrives later as a separate invocation of the Receiver.
type AssetLedger interface {
	ID() common.Address
	TransferCall(ctx context.Context, req *TransferCallRequest) error
	Transfer(ctx context.Context, req *TransferRequest) error
}

// Receiver is the inbound side implemented by accounts that take custody of funds.
type Receiver interface {
	// OnTransferReceived reports a completed transfer into the receiver's custody.
	// The returned amount is handed back to sender by the ledger.
	OnTransferReceived(caller common.Address, sender common.Address, amount *big.Int, msg string) (*big.Int, error)

	// OnTransferResolved reports the outcome of a transfer the receiver requested.
	OnTransferResolved(caller common.Address, transferID string, success bool) error
}

// Directory resolves a ledger by its account id.
type Directory map[common.Address]AssetLedger

func NewDirectory(ledgers ...AssetLedger) Directory {
	d := make(Directory, len(ledgers))
	for _, l := range ledgers {
		d[l.ID()] = l
	}
	return d
}

func (d Directory) Lookup(id common.Address) (AssetLedger, error) {
	if l, ok := d[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%v: %v", ErrUnknownLedger, id)
}

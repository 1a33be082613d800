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

// Failures of contract operations. Returned errors may be wrapped with
// context, compare with errors.Cause.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidProposal       = errors.New("invalid proposal")
	ErrUnauthorized          = errors.New("unauthorized ledger")
	ErrMalformedCorrelation  = errors.New("malformed correlation message")
	ErrVotingClosed          = errors.New("voting closed")
	ErrVotingNotYetOpen      = errors.New("voting not yet open")
	ErrVotingStillActive     = errors.New("voting still active")
	ErrNoStake               = errors.New("no stake")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrUnknownOption         = errors.New("unknown option")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrDuplicateConfirmation = errors.New("duplicate confirmation")
	ErrWithdrawalPending     = errors.New("withdrawal pending")
	ErrInvalidAddress        = errors.New("invalid address")
)

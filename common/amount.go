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

package common

import (
	"fmt"
	"math/big"
)

var (
	// MaxAmount is the largest stake value representable, 2^128 - 1.
	MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrAmountOverflow  = fmt.Errorf("amount overflow")
	ErrAmountUnderflow = fmt.Errorf("amount underflow")
)

// NewAmount returns a fresh copy of v, or zero when v is nil.
func NewAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// IsValidAmount reports whether v is a positive amount within MaxAmount.
func IsValidAmount(v *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(MaxAmount) <= 0
}

// SafeAdd returns a+b, or ErrAmountOverflow when the sum leaves [0, MaxAmount].
func SafeAdd(a, b *big.Int) (*big.Int, error) {
	if a.Sign() < 0 || b.Sign() < 0 {
		return nil, ErrAmountUnderflow
	}
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(MaxAmount) > 0 {
		return nil, ErrAmountOverflow
	}
	return sum, nil
}

// SafeSub returns a-b, or ErrAmountUnderflow when b > a.
func SafeSub(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, ErrAmountUnderflow
	}
	return new(big.Int).Sub(a, b), nil
}

// AmountToBytes encodes v as big-endian magnitude bytes.
func AmountToBytes(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

func BytesToAmount(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

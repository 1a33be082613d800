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
	"regexp"
	"strings"
)

const (
	AddressMinLength = 2
	AddressMaxLength = 64
)

var ErrIllegalAddress = fmt.Errorf("illegal address")

// Account ids are lower-case dot separated names such as "alice.tas" or "token.tas".
var addressRe = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

// Address identifies an account on the asset ledger: a voter, a token ledger or the vote contract itself.
type Address string

func (a Address) String() string {
	return string(a)
}

func (a Address) IsValid() bool {
	if len(a) < AddressMinLength || len(a) > AddressMaxLength {
		return false
	}
	return addressRe.MatchString(string(a))
}

func (a Address) Bytes() []byte {
	return []byte(a)
}

// StringToAddress normalizes s and checks it is a well-formed account id.
func StringToAddress(s string) (Address, error) {
	addr := Address(strings.ToLower(strings.TrimSpace(s)))
	if !addr.IsValid() {
		return "", fmt.Errorf("%v: %q", ErrIllegalAddress, s)
	}
	return addr, nil
}

// MustAddress is StringToAddress for constants and tests.
func MustAddress(s string) Address {
	addr, err := StringToAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

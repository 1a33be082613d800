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

package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/taschain/tasvote/common"
	"gopkg.in/alecthomas/kingpin.v2"
)

// coinValue parses amounts such as "5tas" or "300kra" into base units.
type coinValue struct {
	v *big.Int
}

func (c *coinValue) Set(value string) error {
	v, err := common.ParseCoin(value)
	if err != nil {
		return fmt.Errorf("'%s' is not an amount like 100, 5tas or 300kra: %v", value, err)
	}
	c.v.Set(v)
	return nil
}

func (c *coinValue) String() string {
	if c.v == nil {
		return ""
	}
	return c.v.String()
}

// CoinParam binds an amount flag or arg.
func CoinParam(s kingpin.Settings) *big.Int {
	target := new(big.Int)
	s.SetValue(&coinValue{v: target})
	return target
}

type addressValue struct {
	addr *common.Address
}

func (a *addressValue) Set(value string) error {
	addr, err := common.StringToAddress(value)
	if err != nil {
		return err
	}
	*a.addr = addr
	return nil
}

func (a *addressValue) String() string {
	if a.addr == nil {
		return ""
	}
	return a.addr.String()
}

// AddressParam binds an account id flag or arg.
func AddressParam(s kingpin.Settings) *common.Address {
	target := new(common.Address)
	s.SetValue(&addressValue{addr: target})
	return target
}

// optionList collects repeated --option flags, a single value may also hold a comma separated list.
type optionList []string

func (ol *optionList) Set(value string) error {
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("'%s' contains an empty option name", value)
		}
		*ol = append(*ol, name)
	}
	return nil
}

func (ol *optionList) String() string {
	return strings.Join(*ol, ",")
}

func (ol *optionList) IsCumulative() bool {
	return true
}

func OptionListParam(s kingpin.Settings) *[]string {
	target := new([]string)
	s.SetValue((*optionList)(target))
	return target
}

package common

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

/*
**  Creator: pxf
**  Date: 2019/1/8 下午3:33
**  Description:
 */

const (
	RA  uint64 = 1
	KRA        = 1000
	MRA        = 1000000
	TAS        = 1000000000
)

var (
	ErrEmptyStr   = fmt.Errorf("empty string")
	ErrIllegalStr = fmt.Errorf("illegal string")
)

var re, _ = regexp.Compile("^([0-9]+)(ra|kra|mra|tas)?$")

// ParseCoin parses a stake amount such as "232", "232ra" or "5tas" into base units.
func ParseCoin(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, ErrEmptyStr
	}

	arr := re.FindAllStringSubmatch(s, -1)
	if len(arr) == 0 {
		return nil, ErrIllegalStr
	}
	ret := arr[0]
	if len(ret) < 2 {
		return nil, ErrIllegalStr
	}
	num, ok := new(big.Int).SetString(ret[1], 10)
	if !ok {
		return nil, ErrIllegalStr
	}
	unit := RA
	if len(ret) == 3 {
		switch ret[2] {
		case "kra":
			unit = KRA
		case "mra":
			unit = MRA
		case "tas":
			unit = TAS
		}
	}
	v := num.Mul(num, new(big.Int).SetUint64(unit))
	if v.Cmp(MaxAmount) > 0 {
		return nil, ErrAmountOverflow
	}
	return v, nil
}

package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// ParseUint256orHex parses the given decimal or 0x prefixed hex string into a 256 bit number
func ParseUint256orHex(val *string) (*uint256.Int, error) {
	if val == nil {
		return new(uint256.Int), nil
	}

	str := *val
	base := 10

	if strings.HasPrefix(str, "0x") {
		str = str[2:]
		base = 16
	}

	b, ok := new(big.Int).SetString(str, base)
	if !ok {
		return nil, fmt.Errorf("could not parse %q", *val)
	}

	u, overflow := uint256.FromBig(b)
	if overflow || b.Sign() < 0 {
		return nil, fmt.Errorf("value %q does not fit into uint256", *val)
	}

	return u, nil
}

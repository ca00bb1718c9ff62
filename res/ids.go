package res

import (
	"strconv"
	"strings"

	"github.com/teranos/resgen/errors"
)

// ParseID parses an identifier written in any base strconv accepts
// ("0x7f010000", "2130771968").
func ParseID(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid identifier %q", s)
	}
	return checkID(n)
}

// IDFromValue converts a decoded YAML or TOML scalar into an identifier.
// Integers and strings are accepted.
func IDFromValue(v interface{}) (int32, error) {
	switch x := v.(type) {
	case int:
		return checkID(int64(x))
	case int64:
		return checkID(x)
	case uint64:
		if x > 0xFFFFFFFF {
			return 0, errors.Newf("identifier %d out of range", x)
		}
		return int32(uint32(x)), nil
	case string:
		return ParseID(x)
	default:
		return 0, errors.Newf("unsupported identifier value %v (%T)", v, v)
	}
}

// checkID accepts anything that fits in 32 bits, signed or unsigned.
func checkID(n int64) (int32, error) {
	if n < -0x80000000 || n > 0xFFFFFFFF {
		return 0, errors.Newf("identifier %d out of 32-bit range", n)
	}
	return int32(uint32(n)), nil
}

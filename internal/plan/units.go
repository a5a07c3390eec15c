package plan

import (
	"math"
	"strconv"
	"strings"

	apperrors "github.com/agbru/fibfill/internal/errors"
)

// Unit multipliers.
const (
	Byte int64 = 1
	KiB        = 1024 * Byte
	MiB        = 1024 * KiB
	GiB        = 1024 * MiB
	TiB        = 1024 * GiB
	PiB        = 1024 * TiB
)

var units = map[string]int64{
	"b": Byte,
	"k": KiB,
	"m": MiB,
	"g": GiB,
	"t": TiB,
	"p": PiB,
}

// UnitNames lists the accepted unit names in increasing order.
var UnitNames = []string{"b", "k", "m", "g", "t", "p"}

// ParseUnit returns the multiplier for a unit name.
func ParseUnit(name string) (int64, error) {
	m, ok := units[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, apperrors.NewConfigError("invalid unit %q (expected one of %s)", name, strings.Join(UnitNames, ", "))
	}
	return m, nil
}

// ParseSize parses value in unit. A unit letter at the end of value takes
// precedence over unit. what names the setting in error messages.
func ParseSize(value, unit, what string) (int64, error) {
	value = strings.TrimSpace(value)
	if n := len(value); n > 1 {
		if _, ok := units[strings.ToLower(value[n-1:])]; ok {
			unit = value[n-1:]
			value = value[:n-1]
		}
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperrors.NewConfigError("invalid %s: %q (must be a positive integer)", what, value)
	}
	m, err := ParseUnit(unit)
	if err != nil {
		return 0, apperrors.NewConfigError("invalid unit for %s: %q", what, unit)
	}
	if n > math.MaxInt64/m {
		return 0, apperrors.NewConfigError("%s overflows: %s%s", what, value, strings.ToLower(unit))
	}
	return n * m, nil
}

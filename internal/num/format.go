package num

import (
	"math"
	"strconv"
	"strings"
)

// exponent limits of the repr-style float form used in configuration files.
const (
	minPlainExp = -4
	maxPlainExp = 16
)

// FormatFloat renders v with the shortest digits that round-trip, always
// keeping a decimal point or exponent: 7.5, 1.0, 1e-05, 1.5e+16.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if v == 0 {
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil {
		return sci
	}
	if exp < minPlainExp || exp >= maxPlainExp {
		return sci
	}

	plain := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(plain, '.') {
		plain += ".0"
	}
	return plain
}

package num

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ParseFloat parses an estimate cell. Surrounding whitespace is ignored and
// the special values inf, infinity and nan are accepted in any case, with an
// optional sign. Other cells must be plain decimal: optional sign, digits with
// an optional fraction, optional exponent ("7.5", "-.5", "1e-05", "3.").
// Digit separators ("1_0"), hexadecimal and hex-float forms are rejected.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ParseError{Kind: ParseEmpty}
	}
	if v, ok := parseSpecial(s); ok {
		return v, nil
	}
	if !isFloatLexical(s) {
		return 0, &ParseError{Input: s, Kind: lexicalKind(s)}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, nil
		}
		return 0, &ParseError{Input: s, Kind: ParseInvalid}
	}
	return f, nil
}

func parseSpecial(s string) (float64, bool) {
	sign := 1
	body := s
	switch s[0] {
	case '+':
		body = s[1:]
	case '-':
		sign = -1
		body = s[1:]
	}
	switch strings.ToLower(body) {
	case "inf", "infinity":
		return math.Inf(sign), true
	case "nan":
		return math.NaN(), true
	}
	return 0, false
}

func lexicalKind(s string) ParseErrKind {
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			return ParseBadChar
		}
	}
	return ParseNoDigits
}

// isFloatLexical reports whether s is sign? (digits ("." digits?)? | "." digits)
// (("e"|"E") sign? digits)?.
func isFloatLexical(s string) bool {
	i := skipSign(s, 0)
	intEnd := skipDigits(s, i)
	fracEnd := intEnd
	if fracEnd < len(s) && s[fracEnd] == '.' {
		fracEnd = skipDigits(s, fracEnd+1)
	}
	if intEnd == i && fracEnd <= intEnd+1 {
		return false
	}
	i = fracEnd
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		expStart := skipSign(s, i+1)
		i = skipDigits(s, expStart)
		if i == expStart {
			return false
		}
	}
	return i == len(s)
}

func skipSign(s string, i int) int {
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		return i + 1
	}
	return i
}

func skipDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

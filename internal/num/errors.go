package num

// ParseError represents a numeric parse failure.
type ParseError struct {
	Input string
	Kind  ParseErrKind
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Input == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + quote(e.Input)
}

// ParseErrKind identifies a parse failure category.
type ParseErrKind uint8

const (
	ParseInvalid ParseErrKind = iota
	ParseEmpty
	ParseBadChar
	ParseNoDigits
)

// String returns a stable label for the parse error kind.
func (k ParseErrKind) String() string {
	switch k {
	case ParseEmpty:
		return "empty"
	case ParseBadChar:
		return "bad character"
	case ParseNoDigits:
		return "no digits"
	default:
		return "invalid"
	}
}

func quote(s string) string {
	const maxLen = 32
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return "\"" + s + "\""
}

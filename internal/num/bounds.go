package num

// Bounds is a closed interval whose ends may each be absent.
type Bounds struct {
	Lower *float64
	Upper *float64
}

// Unbounded is the interval with neither end set.
var Unbounded = Bounds{}

// AtLeast returns the interval [lower, +inf).
func AtLeast(lower float64) Bounds {
	return Bounds{Lower: &lower}
}

// AtMost returns the interval (-inf, upper].
func AtMost(upper float64) Bounds {
	return Bounds{Upper: &upper}
}

// Between returns the interval [lower, upper].
func Between(lower, upper float64) Bounds {
	return Bounds{Lower: &lower, Upper: &upper}
}

// IsUnbounded reports whether neither end is set.
func (b Bounds) IsUnbounded() bool {
	return b.Lower == nil && b.Upper == nil
}

// Contains reports whether v lies in the interval. Both ends are inclusive.
// NaN compares false against either end and is therefore accepted.
func (b Bounds) Contains(v float64) bool {
	if b.Lower != nil && *b.Lower > v {
		return false
	}
	if b.Upper != nil && *b.Upper < v {
		return false
	}
	return true
}

// Clone returns a copy that shares no pointers with b.
func (b Bounds) Clone() Bounds {
	var out Bounds
	if b.Lower != nil {
		lower := *b.Lower
		out.Lower = &lower
	}
	if b.Upper != nil {
		upper := *b.Upper
		out.Upper = &upper
	}
	return out
}

// Equal reports whether both intervals have the same ends.
func (b Bounds) Equal(o Bounds) bool {
	return endEqual(b.Lower, o.Lower) && endEqual(b.Upper, o.Upper)
}

// String renders the interval as [lower, upper] with "none" for absent ends.
func (b Bounds) String() string {
	return "[" + formatEnd(b.Lower) + ", " + formatEnd(b.Upper) + "]"
}

func endEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatEnd(v *float64) string {
	if v == nil {
		return "none"
	}
	return FormatFloat(*v)
}

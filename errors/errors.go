// Package errors defines the structured failures reported while carrying
// stage-1 estimates into a stage-2 configuration. Every fatal condition has its
// own type with the fields a caller needs, so tests and tools can inspect the
// identifier, value or tag involved instead of parsing messages.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scsphylo/carryover/internal/num"
)

// ErrorCode is a stable identifier for a failure class.
type ErrorCode string

const (
	// ErrMissingInput indicates a supplied input path does not exist.
	ErrMissingInput ErrorCode = "missing-input"
	// ErrBoundsViolation indicates an estimate lies outside its declared bounds.
	ErrBoundsViolation ErrorCode = "bounds-violation"
	// ErrDuplicateNode indicates a structural tag matched more than one element.
	ErrDuplicateNode ErrorCode = "duplicate-node"
	// ErrMissingEstimate indicates a placeholder whose identifier has no estimate.
	ErrMissingEstimate ErrorCode = "missing-estimate"
	// ErrMalformedRecord indicates a selected estimates row could not be read.
	ErrMalformedRecord ErrorCode = "malformed-record"
	// ErrXMLParse indicates a configuration document could not be parsed.
	ErrXMLParse ErrorCode = "xml-parse-error"
	// ErrNoRoot indicates a configuration document has no root element.
	ErrNoRoot ErrorCode = "no-root"
)

// Coded is implemented by every error type in this package.
type Coded interface {
	error
	Code() ErrorCode
}

// MissingInputError reports a required or explicitly supplied path that does
// not refer to an existing file.
type MissingInputError struct {
	Flag string
	Path string
}

// Code returns ErrMissingInput.
func (e *MissingInputError) Code() ErrorCode { return ErrMissingInput }

func (e *MissingInputError) Error() string {
	if e == nil {
		return "missing input <nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("[%s] --%s is required", ErrMissingInput, e.Flag)
	}
	return fmt.Sprintf("[%s] --%s: %s does not exist", ErrMissingInput, e.Flag, e.Path)
}

// BoundsViolation reports an estimate outside the closed interval declared for
// its identifier. Nil ends are unbounded.
//
//nolint:errname // domain term.
type BoundsViolation struct {
	ID    string
	Value float64
	Lower *float64
	Upper *float64
}

// Code returns ErrBoundsViolation.
func (e *BoundsViolation) Code() ErrorCode { return ErrBoundsViolation }

func (e *BoundsViolation) Error() string {
	if e == nil {
		return "bounds violation <nil>"
	}
	b := num.Bounds{Lower: e.Lower, Upper: e.Upper}
	return fmt.Sprintf("[%s] parameter %s (%s) is out of bounds %s; adjust it manually",
		ErrBoundsViolation, e.ID, num.FormatFloat(e.Value), b)
}

// DuplicateNodeError reports a structural tag that matched more than one
// element of the stage-2 document. Count is the number of matches seen when
// the update stopped.
type DuplicateNodeError struct {
	Tag   string
	Count int
}

// Code returns ErrDuplicateNode.
func (e *DuplicateNodeError) Code() ErrorCode { return ErrDuplicateNode }

func (e *DuplicateNodeError) Error() string {
	if e == nil {
		return "duplicate node <nil>"
	}
	return fmt.Sprintf("[%s] found %d elements named %s, only one allowed", ErrDuplicateNode, e.Count, e.Tag)
}

// MissingEstimateError reports a stage-2 placeholder whose resolved identifier
// has no estimate.
type MissingEstimateError struct {
	Name string
	ID   string
}

// Code returns ErrMissingEstimate.
func (e *MissingEstimateError) Code() ErrorCode { return ErrMissingEstimate }

func (e *MissingEstimateError) Error() string {
	if e == nil {
		return "missing estimate <nil>"
	}
	return fmt.Sprintf("[%s] no estimate for %s (resolved from %s)", ErrMissingEstimate, e.ID, e.Name)
}

// MalformedRecordError reports a selected estimates row that could not be used.
type MalformedRecordError struct {
	Line   int
	Text   string
	Reason string
}

// Code returns ErrMalformedRecord.
func (e *MalformedRecordError) Code() ErrorCode { return ErrMalformedRecord }

func (e *MalformedRecordError) Error() string {
	if e == nil {
		return "malformed record <nil>"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] line %d: %s", ErrMalformedRecord, e.Line, e.Reason))
	if e.Text != "" {
		b.WriteString(fmt.Sprintf(" (record: %q)", e.Text))
	}
	return b.String()
}

// DocumentError reports a configuration document that could not be loaded.
type DocumentError struct {
	Source string
	Kind   ErrorCode
	Err    error
}

// Code returns the document failure kind.
func (e *DocumentError) Code() ErrorCode { return e.Kind }

func (e *DocumentError) Error() string {
	if e == nil {
		return "document error <nil>"
	}
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Source)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying parse error.
func (e *DocumentError) Unwrap() error { return e.Err }

// CodeOf returns the code of the first coded error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var c Coded
	if errors.As(err, &c) {
		return c.Code(), true
	}
	return "", false
}

// AsMissingInputs extracts every MissingInputError from err, including those
// combined with errors.Join.
func AsMissingInputs(err error) ([]*MissingInputError, bool) {
	var out []*MissingInputError
	collect(err, &out)
	return out, len(out) > 0
}

// AsBoundsViolation extracts a BoundsViolation from err's chain.
func AsBoundsViolation(err error) (*BoundsViolation, bool) {
	var v *BoundsViolation
	if errors.As(err, &v) && v != nil {
		return v, true
	}
	return nil, false
}

// AsDuplicateNode extracts a DuplicateNodeError from err's chain.
func AsDuplicateNode(err error) (*DuplicateNodeError, bool) {
	var d *DuplicateNodeError
	if errors.As(err, &d) && d != nil {
		return d, true
	}
	return nil, false
}

// AsMissingEstimate extracts a MissingEstimateError from err's chain.
func AsMissingEstimate(err error) (*MissingEstimateError, bool) {
	var m *MissingEstimateError
	if errors.As(err, &m) && m != nil {
		return m, true
	}
	return nil, false
}

func collect(err error, out *[]*MissingInputError) {
	if err == nil {
		return
	}
	if m, ok := err.(*MissingInputError); ok && m != nil {
		*out = append(*out, m)
		return
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			collect(inner, out)
		}
	case interface{ Unwrap() error }:
		collect(u.Unwrap(), out)
	}
}

// Package estimates reads the point estimates of a stage-1 run: which
// statistic the run reported, and the value of every referenced parameter
// under that statistic.
package estimates

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	coerrors "github.com/scsphylo/carryover/errors"
	"github.com/scsphylo/carryover/internal/num"
	"github.com/scsphylo/carryover/internal/resolver"
)

const (
	// DefaultResultsKey selects the results line that names the estimate type.
	DefaultResultsKey = ".vcf"
	// TableMarker starts the estimates table.
	TableMarker = "#MCMC samples"

	commentPrefix = "#"
	maxLineSize   = 1 << 20
)

// Type is the point-estimate statistic used to pick one value per parameter.
type Type string

const (
	Mean         Type = "mean"
	Median       Type = "median"
	ModeGaussian Type = "mode_gaussian"
)

// Matches reports whether a table label selects rows for t. Labels are matched
// as substrings of the type name, so "mode" and "gaussian" rows both belong to
// ModeGaussian and a row with an empty label belongs to every type.
func (t Type) Matches(label string) bool {
	return strings.Contains(string(t), label)
}

// Estimates maps identifiers to their estimated values.
type Estimates map[string]float64

// DetectType returns the type named by the first line of r containing key.
// ok is false when no line contains key.
func DetectType(r io.Reader, key string) (t Type, ok bool, err error) {
	sc := newScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(strings.TrimSpace(line), key) {
			continue
		}
		switch {
		case strings.Contains(line, string(Mean)):
			return Mean, true, nil
		case strings.Contains(line, string(Median)):
			return Median, true, nil
		default:
			return ModeGaussian, true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", false, fmt.Errorf("scan results: %w", err)
	}
	return "", false, nil
}

// DetectTypeFile runs DetectType on the file at path. A file that does not
// exist yields ok == false and no error.
func DetectTypeFile(path, key string) (Type, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()

	t, ok, err := DetectType(f, key)
	if err != nil {
		return "", false, fmt.Errorf("results %s: %w", path, err)
	}
	return t, ok, nil
}

// Parse reads the estimates table of r.
//
// Lines before the one starting with TableMarker are skipped. Inside the
// table each line is a tab-separated record (identifier, label, value, ...);
// blank lines are skipped and the first comment line ends the table. Records
// whose label selects typ and whose identifier is referenced by names are
// parsed and checked against the bounds of every entry resolving to that
// identifier. The first value out of bounds fails with a
// *coerrors.BoundsViolation.
func Parse(r io.Reader, names resolver.Names, typ Type) (Estimates, error) {
	out := make(Estimates)
	sc := newScanner(r)
	inTable := false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		if !inTable {
			inTable = strings.HasPrefix(raw, TableMarker)
			continue
		}

		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, commentPrefix) {
			break
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, &coerrors.MalformedRecordError{Line: lineNo, Text: line, Reason: "expected at least 3 tab-separated columns"}
		}
		if !typ.Matches(strings.TrimSpace(fields[1])) {
			continue
		}
		id := strings.TrimSpace(fields[0])
		bounds := names.BoundsOf(id)
		if len(bounds) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, &coerrors.MalformedRecordError{Line: lineNo, Text: line, Reason: "expected at least 3 tab-separated columns"}
		}
		v, err := num.ParseFloat(fields[2])
		if err != nil {
			return nil, &coerrors.MalformedRecordError{Line: lineNo, Text: line, Reason: "value: " + err.Error()}
		}
		for _, b := range bounds {
			if !b.Contains(v) {
				return nil, &coerrors.BoundsViolation{ID: id, Value: v, Lower: b.Lower, Upper: b.Upper}
			}
		}
		out[id] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan estimates: %w", err)
	}
	return out, nil
}

// ParseFile runs Parse on the file at path. A file that does not exist yields
// ok == false and no error.
func ParseFile(path string, names resolver.Names, typ Type) (Estimates, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open estimates %s: %w", path, err)
	}
	defer f.Close()

	est, err := Parse(f, names, typ)
	if err != nil {
		return nil, false, fmt.Errorf("estimates %s: %w", path, err)
	}
	return est, true, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// Package carryover sets up the configuration of a second analysis stage from
// the results of the first one.
//
// The stage-1 configuration declares which identifiers the structural
// parameters of the model point at ("@id" attribute values). The stage-1
// estimates table holds one value per identifier and statistic, and the
// results summary names the statistic the run reported. carryover resolves the
// references, reads the estimates, checks them against their bounds and writes
// them into the stage-2 template, optionally pointing it at a starting tree.
//
// Basic use:
//
//	res, err := carryover.RunFiles(carryover.Inputs{
//		Template1: "stage1.xml",
//		Template2: "stage2.xml",
//		Estimates: "estimates.log",
//		Results:   "results.txt",
//		Out:       "stage2.out.xml",
//	}, carryover.NewOptions())
//	if err != nil {
//		return err
//	}
//	return carryover.WriteFile("stage2.out.xml", res)
package carryover

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/scsphylo/carryover/internal/estimates"
	"github.com/scsphylo/carryover/internal/resolver"
	"github.com/scsphylo/carryover/internal/updater"
	"github.com/scsphylo/carryover/internal/xmldoc"
)

// Sources are the opened inputs of one run. A nil Estimates or Results reader
// stands for an absent file: nothing is substituted from it.
type Sources struct {
	Stage1     io.Reader
	Stage1Name string
	Stage2     io.Reader
	Stage2Name string
	Estimates  io.Reader
	Results    io.Reader
	// TreePath is written, made absolute, into tree references. Empty skips it.
	TreePath string
}

// Report summarises a run.
type Report struct {
	// EstimateType is the statistic read from the results summary, empty when
	// none was found.
	EstimateType string
	Resolved     int
	Estimates    int
	Substituted  int
	TreeRefs     int
	StateParams  int
}

// Result is a stage-2 document with the estimates applied.
type Result struct {
	doc    *xmldoc.Document
	Report Report
}

// WriteTo serialises the updated stage-2 document, comments included.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	return r.doc.WriteTo(w)
}

// String returns the serialised stage-2 document.
func (r *Result) String() string {
	return r.doc.String()
}

// Propagate applies the estimates of src to its stage-2 document.
func Propagate(src Sources, opts Options) (*Result, error) {
	ro, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("propagate: %w", err)
	}
	stage1, err := xmldoc.Parse(src.Stage1, nameOr(src.Stage1Name, "stage-1 template"))
	if err != nil {
		return nil, err
	}
	return apply(stage1, readerSource{src}, src.TreePath, ro)
}

// RunFiles validates in and applies the estimates it names to its stage-2
// template. Nothing is written; pass the result to WriteFile.
func RunFiles(in Inputs, opts Options) (*Result, error) {
	ro, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	stage1, err := xmldoc.ParseFile(in.Template1)
	if err != nil {
		return nil, err
	}
	return apply(stage1, fileSource{in}, in.Tree, ro)
}

// source abstracts where the estimates and the stage-2 template come from.
type source interface {
	estimateType(key string) (estimates.Type, bool, error)
	estimates(names resolver.Names, typ estimates.Type) (estimates.Estimates, bool, error)
	stage2() (*xmldoc.Document, error)
}

func apply(stage1 *xmldoc.Document, src source, treePath string, ro resolvedOptions) (*Result, error) {
	log := ro.logger
	var rep Report

	names := resolver.Resolve(stage1.Root(), ro.dictionary)
	rep.Resolved = len(names)
	for _, k := range names.Keys() {
		log.Debug("reference resolved",
			zap.String("name", k),
			zap.String("id", names[k].ID),
			zap.Stringer("bounds", names[k].Bounds))
	}
	log.Info("stage-1 references resolved", zap.String("source", stage1.Source()), zap.Int("names", len(names)))

	est := estimates.Estimates{}
	typ, ok, err := src.estimateType(ro.resultsKey)
	if err != nil {
		return nil, fmt.Errorf("detect estimate type: %w", err)
	}
	if ok {
		rep.EstimateType = string(typ)
		got, found, err := src.estimates(names, typ)
		if err != nil {
			return nil, fmt.Errorf("extract estimates: %w", err)
		}
		if found {
			est = got
		} else {
			log.Info("estimates file absent, nothing to substitute")
		}
	} else {
		log.Info("no estimate type found in results, nothing to substitute", zap.String("key", ro.resultsKey))
	}
	rep.Estimates = len(est)
	log.Info("estimates extracted", zap.String("type", rep.EstimateType), zap.Int("count", len(est)))

	stage2, err := src.stage2()
	if err != nil {
		return nil, err
	}
	urep, err := updater.Update(stage2, updater.Input{
		Dictionary: ro.dictionary,
		Names:      names,
		Estimates:  est,
		TreePath:   treePath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", stage2.Source(), err)
	}
	rep.Substituted = urep.Substituted
	rep.TreeRefs = urep.TreeRefs
	rep.StateParams = urep.StateParams
	log.Info("stage-2 template updated",
		zap.String("source", stage2.Source()),
		zap.Int("substituted", rep.Substituted),
		zap.Int("tree_refs", rep.TreeRefs),
		zap.Int("state_params", rep.StateParams))

	return &Result{doc: stage2, Report: rep}, nil
}

type readerSource struct {
	src Sources
}

func (s readerSource) estimateType(key string) (estimates.Type, bool, error) {
	if s.src.Results == nil {
		return "", false, nil
	}
	return estimates.DetectType(s.src.Results, key)
}

func (s readerSource) estimates(names resolver.Names, typ estimates.Type) (estimates.Estimates, bool, error) {
	if s.src.Estimates == nil {
		return nil, false, nil
	}
	est, err := estimates.Parse(s.src.Estimates, names, typ)
	if err != nil {
		return nil, false, err
	}
	return est, true, nil
}

func (s readerSource) stage2() (*xmldoc.Document, error) {
	return xmldoc.Parse(s.src.Stage2, nameOr(s.src.Stage2Name, "stage-2 template"))
}

type fileSource struct {
	in Inputs
}

func (s fileSource) estimateType(key string) (estimates.Type, bool, error) {
	return estimates.DetectTypeFile(s.in.Results, key)
}

func (s fileSource) estimates(names resolver.Names, typ estimates.Type) (estimates.Estimates, bool, error) {
	return estimates.ParseFile(s.in.Estimates, names, typ)
}

func (s fileSource) stage2() (*xmldoc.Document, error) {
	return xmldoc.ParseFile(s.in.Template2)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

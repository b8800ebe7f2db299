// Package updater writes resolved estimates into a stage-2 template.
package updater

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	coerrors "github.com/scsphylo/carryover/errors"
	"github.com/scsphylo/carryover/internal/estimates"
	"github.com/scsphylo/carryover/internal/num"
	"github.com/scsphylo/carryover/internal/resolver"
	"github.com/scsphylo/carryover/internal/tagdict"
	"github.com/scsphylo/carryover/internal/xmldoc"
)

const (
	stateTag     = "state"
	parameterTag = "parameter"
	idAttr       = "id"
	nameAttr     = "name"
)

// Input carries everything one update needs besides the document.
type Input struct {
	Dictionary tagdict.Dictionary
	Names      resolver.Names
	Estimates  estimates.Estimates
	// TreePath is written, made absolute, into every tree reference attribute.
	// Empty leaves tree references alone.
	TreePath string
}

// Report counts the mutations of one update.
type Report struct {
	Substituted int
	TreeRefs    int
	StateParams int
}

// Update mutates doc in place.
//
// Every structural parent may match at most one element; a second match fails
// with *coerrors.DuplicateNodeError. Inside a matched element, elements whose
// tag is a resolved name, and parameter elements whose name attribute is one,
// receive the estimate of the resolved identifier. Then tree references get
// the tree path and state parameters with an estimate get their value.
//
// The document may be partially updated when an error is returned.
func Update(doc *xmldoc.Document, in Input, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var rep Report
	root := doc.Root()

	for _, s := range in.Dictionary.Structural() {
		count := 0
		for parent := range xmldoc.Iter(root, s.Tag) {
			count++
			if count > 1 {
				return rep, &coerrors.DuplicateNodeError{Tag: s.Tag, Count: count}
			}
			n, err := substitute(parent, in, log)
			rep.Substituted += n
			if err != nil {
				return rep, err
			}
		}
	}

	if in.TreePath != "" {
		abs, err := filepath.Abs(in.TreePath)
		if err != nil {
			return rep, fmt.Errorf("resolve tree path %s: %w", in.TreePath, err)
		}
		for _, ref := range in.Dictionary.TreeRefs() {
			for e := range xmldoc.Iter(root, ref.Tag) {
				if _, ok := xmldoc.Attr(e, ref.Attr); !ok {
					continue
				}
				e.CreateAttr(ref.Attr, abs)
				rep.TreeRefs++
				log.Debug("tree reference set", zap.String("path", xmldoc.Path(e)), zap.String("attr", ref.Attr))
			}
		}
	}

	for state := range xmldoc.Iter(root, stateTag) {
		for p := range xmldoc.Children(state, parameterTag) {
			id, ok := xmldoc.Attr(p, idAttr)
			if !ok {
				continue
			}
			v, ok := in.Estimates[id]
			if !ok {
				continue
			}
			p.SetText(num.FormatFloat(v))
			rep.StateParams++
			log.Debug("state parameter set", zap.String("id", id), zap.Float64("value", v))
		}
	}
	return rep, nil
}

func substitute(parent *xmldoc.Element, in Input, log *zap.Logger) (int, error) {
	n := 0
	err := xmldoc.Walk(parent, nil, func(e *xmldoc.Element) error {
		key, ok := placeholderKey(e, in.Names)
		if !ok {
			return nil
		}
		ref := in.Names[key]
		v, ok := in.Estimates[ref.ID]
		if !ok {
			return &coerrors.MissingEstimateError{Name: key, ID: ref.ID}
		}
		e.SetText(num.FormatFloat(v))
		n++
		log.Debug("placeholder substituted",
			zap.String("path", xmldoc.Path(e)),
			zap.String("name", key),
			zap.String("id", ref.ID),
			zap.Float64("value", v))
		return nil
	})
	return n, err
}

// placeholderKey returns the resolved name e stands for: its tag, or for
// parameter elements its name attribute.
func placeholderKey(e *xmldoc.Element, names resolver.Names) (string, bool) {
	tag := e.FullTag()
	if _, ok := names[tag]; ok {
		return tag, true
	}
	if tag != parameterTag {
		return "", false
	}
	name, ok := xmldoc.Attr(e, nameAttr)
	if !ok {
		return "", false
	}
	if _, ok := names[name]; ok {
		return name, true
	}
	return "", false
}

// Package tagdict holds the static tables that drive reference resolution and
// template substitution: which structural tags carry reference attributes,
// which parameters are bounded, and which attributes hold tree file paths.
//
// A Dictionary is immutable. New copies its inputs and every accessor returns
// a copy, so one value can be shared by the resolver and the updater.
package tagdict

import (
	"fmt"
	"maps"
	"slices"

	"github.com/scsphylo/carryover/internal/num"
)

// Structural names a parent tag and the attributes on it that may hold a
// reference placeholder.
type Structural struct {
	Tag      string
	Children []string
}

// TreeRef names an attribute that holds a tree file path.
type TreeRef struct {
	Tag  string
	Attr string
}

// Dictionary is the immutable lookup configuration of one run.
type Dictionary struct {
	structural []Structural
	children   map[string]map[string]struct{}
	bounds     map[string]num.Bounds
	treeRefs   []TreeRef
}

// New builds a Dictionary. Parent order and child order are kept.
func New(structural []Structural, bounds map[string]num.Bounds, treeRefs []TreeRef) (Dictionary, error) {
	d := Dictionary{
		structural: make([]Structural, 0, len(structural)),
		children:   make(map[string]map[string]struct{}, len(structural)),
		bounds:     make(map[string]num.Bounds, len(bounds)),
		treeRefs:   slices.Clone(treeRefs),
	}
	for _, s := range structural {
		if s.Tag == "" {
			return Dictionary{}, fmt.Errorf("structural entry with empty tag")
		}
		if _, dup := d.children[s.Tag]; dup {
			return Dictionary{}, fmt.Errorf("structural tag %s declared twice", s.Tag)
		}
		set := make(map[string]struct{}, len(s.Children))
		for _, c := range s.Children {
			if c == "" {
				return Dictionary{}, fmt.Errorf("structural tag %s: empty child name", s.Tag)
			}
			set[c] = struct{}{}
		}
		d.children[s.Tag] = set
		d.structural = append(d.structural, Structural{Tag: s.Tag, Children: slices.Clone(s.Children)})
	}
	for name, b := range bounds {
		if b.Lower != nil && b.Upper != nil && *b.Lower > *b.Upper {
			return Dictionary{}, fmt.Errorf("bounds for %s: lower %s above upper %s",
				name, num.FormatFloat(*b.Lower), num.FormatFloat(*b.Upper))
		}
		d.bounds[name] = b.Clone()
	}
	for _, r := range d.treeRefs {
		if r.Tag == "" || r.Attr == "" {
			return Dictionary{}, fmt.Errorf("tree reference needs both tag and attribute (got %q@%q)", r.Tag, r.Attr)
		}
	}
	return d, nil
}

// Default returns the dictionary for the read-count variant calling models.
func Default() Dictionary {
	d, err := New(
		[]Structural{
			{Tag: "rawReadCountsModel", Children: []string{"adoRate"}},
			{Tag: "seqCovModel", Children: []string{"allelicSeqCov", "allelicSeqCovRawVar"}},
			{Tag: "nucReadCountsModel", Children: []string{"effSeqErrRate", "shapeCtrl1", "shapeCtrl2"}},
			{Tag: "siteModel", Children: []string{"shape"}},
		},
		map[string]num.Bounds{
			"shape": num.AtLeast(6.0),
		},
		[]TreeRef{
			{Tag: "tree", Attr: "treeFileName"},
		},
	)
	if err != nil {
		panic(fmt.Sprintf("tagdict: invalid default dictionary: %v", err))
	}
	return d
}

// Structural returns the structural entries in declaration order.
func (d Dictionary) Structural() []Structural {
	out := make([]Structural, len(d.structural))
	for i, s := range d.structural {
		out[i] = Structural{Tag: s.Tag, Children: slices.Clone(s.Children)}
	}
	return out
}

// Allows reports whether attr may hold a reference on elements tagged parent.
func (d Dictionary) Allows(parent, attr string) bool {
	_, ok := d.children[parent][attr]
	return ok
}

// BoundsFor returns the declared bounds for name, or num.Unbounded.
func (d Dictionary) BoundsFor(name string) num.Bounds {
	return d.bounds[name].Clone()
}

// HasBounds reports whether name has a bounds entry.
func (d Dictionary) HasBounds(name string) bool {
	_, ok := d.bounds[name]
	return ok
}

// BoundedNames returns the bounded parameter names in sorted order.
func (d Dictionary) BoundedNames() []string {
	return slices.Sorted(maps.Keys(d.bounds))
}

// TreeRefs returns the tree reference table in declaration order.
func (d Dictionary) TreeRefs() []TreeRef {
	return slices.Clone(d.treeRefs)
}

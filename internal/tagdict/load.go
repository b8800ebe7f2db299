package tagdict

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scsphylo/carryover/internal/num"
)

// File models a dictionary override file:
//
//	structural:
//	  - tag: siteModel
//	    children: [shape]
//	bounds:
//	  shape: {lower: 6.0}
//	tree_refs:
//	  - tag: tree
//	    attr: treeFileName
type File struct {
	Structural []StructuralEntry      `yaml:"structural"`
	Bounds     map[string]BoundsEntry `yaml:"bounds"`
	TreeRefs   []TreeRefEntry         `yaml:"tree_refs"`
}

// StructuralEntry is one structural parent in a dictionary file.
type StructuralEntry struct {
	Tag      string   `yaml:"tag"`
	Children []string `yaml:"children"`
}

// BoundsEntry is one bounded parameter in a dictionary file. Omitted ends are
// unbounded.
type BoundsEntry struct {
	Lower *float64 `yaml:"lower,omitempty"`
	Upper *float64 `yaml:"upper,omitempty"`
}

// TreeRefEntry is one tree reference in a dictionary file.
type TreeRefEntry struct {
	Tag  string `yaml:"tag"`
	Attr string `yaml:"attr"`
}

// Load decodes a dictionary file. Unknown keys are rejected.
func Load(r io.Reader) (Dictionary, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return Dictionary{}, fmt.Errorf("decode dictionary: empty document")
		}
		return Dictionary{}, fmt.Errorf("decode dictionary: %w", err)
	}
	return f.Dictionary()
}

// LoadFile reads and decodes a dictionary file from path.
func LoadFile(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	d, err := Load(bytes.NewReader(data))
	if err != nil {
		return Dictionary{}, fmt.Errorf("load dictionary %s: %w", path, err)
	}
	return d, nil
}

// Dictionary converts the decoded file into an immutable Dictionary.
func (f File) Dictionary() (Dictionary, error) {
	structural := make([]Structural, 0, len(f.Structural))
	for _, s := range f.Structural {
		structural = append(structural, Structural{Tag: s.Tag, Children: s.Children})
	}
	bounds := make(map[string]num.Bounds, len(f.Bounds))
	for name, b := range f.Bounds {
		bounds[name] = num.Bounds{Lower: b.Lower, Upper: b.Upper}
	}
	refs := make([]TreeRef, 0, len(f.TreeRefs))
	for _, r := range f.TreeRefs {
		refs = append(refs, TreeRef{Tag: r.Tag, Attr: r.Attr})
	}
	return New(structural, bounds, refs)
}

// Export converts d back into its file form.
func (d Dictionary) Export() File {
	f := File{Bounds: make(map[string]BoundsEntry, len(d.bounds))}
	for _, s := range d.Structural() {
		f.Structural = append(f.Structural, StructuralEntry{Tag: s.Tag, Children: s.Children})
	}
	for _, name := range d.BoundedNames() {
		b := d.BoundsFor(name)
		f.Bounds[name] = BoundsEntry{Lower: b.Lower, Upper: b.Upper}
	}
	for _, r := range d.treeRefs {
		f.TreeRefs = append(f.TreeRefs, TreeRefEntry{Tag: r.Tag, Attr: r.Attr})
	}
	return f
}

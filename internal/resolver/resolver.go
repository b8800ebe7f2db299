// Package resolver builds the name-to-identifier mapping of a stage-1
// configuration: which logical parameter names point at which declared
// identifiers, and the bounds each estimate must respect.
package resolver

import (
	"maps"
	"slices"
	"strings"

	"github.com/scsphylo/carryover/internal/num"
	"github.com/scsphylo/carryover/internal/tagdict"
	"github.com/scsphylo/carryover/internal/xmldoc"
)

// ReferenceMarker prefixes attribute values that refer to another identifier.
const ReferenceMarker = "@"

const (
	stateTag     = "state"
	parameterTag = "parameter"
	idAttr       = "id"
)

// Ref is the identifier a logical name resolves to and its bounds.
type Ref struct {
	ID     string
	Bounds num.Bounds
}

// Names maps logical parameter names to resolved references.
type Names map[string]Ref

// Resolve walks the stage-1 document and builds its Names.
//
// Structural references come first: for every structural parent (the root
// included) each allowed attribute whose trimmed value starts with "@" maps
// the attribute name to the dereferenced identifier, with the bounds declared
// for the attribute name. Parameters declared directly under a state element
// follow and map their own id to itself. A state parameter that collides with
// an earlier key replaces it unbounded.
func Resolve(root *xmldoc.Element, dict tagdict.Dictionary) Names {
	names := make(Names)
	for _, s := range dict.Structural() {
		_ = xmldoc.Walk(root, xmldoc.HasTag(s.Tag), func(e *xmldoc.Element) error {
			for _, a := range e.Attr {
				key := a.FullKey()
				if !dict.Allows(s.Tag, key) {
					continue
				}
				id, ok := dereference(a.Value)
				if !ok {
					continue
				}
				names[key] = Ref{ID: id, Bounds: dict.BoundsFor(key)}
			}
			return nil
		})
	}

	for state := range xmldoc.Iter(root, stateTag) {
		for p := range xmldoc.Children(state, parameterTag) {
			id, ok := xmldoc.Attr(p, idAttr)
			if !ok {
				continue
			}
			if _, seen := names[id]; !seen && dict.HasBounds(id) {
				names[id] = Ref{ID: id, Bounds: dict.BoundsFor(id)}
			} else {
				names[id] = Ref{ID: id, Bounds: num.Unbounded}
			}
		}
	}
	return names
}

func dereference(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, ReferenceMarker) {
		return "", false
	}
	return strings.TrimLeft(v, ReferenceMarker), true
}

// Keys returns the logical names in sorted order.
func (n Names) Keys() []string {
	return slices.Sorted(maps.Keys(n))
}

// BoundsOf returns the bounds of every entry that resolves to id, in key order.
func (n Names) BoundsOf(id string) []num.Bounds {
	var out []num.Bounds
	for _, k := range n.Keys() {
		if n[k].ID == id {
			out = append(out, n[k].Bounds)
		}
	}
	return out
}

// References reports whether any entry resolves to id.
func (n Names) References(id string) bool {
	for _, r := range n {
		if r.ID == id {
			return true
		}
	}
	return false
}

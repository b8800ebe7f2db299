// Package xmldoc is the mutable document model shared by the resolver and the
// updater. It keeps comments, processing instructions and attribute order so a
// template written back out differs from its input only where values changed.
package xmldoc

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	coerrors "github.com/scsphylo/carryover/errors"
)

// Element is a node of a parsed configuration document.
type Element = etree.Element

// Predicate selects elements during a Walk.
type Predicate func(*Element) bool

// Document is a parsed configuration document.
type Document struct {
	source string
	doc    *etree.Document
}

var declEncoding = regexp.MustCompile(`encoding\s*=\s*("[^"]*"|'[^']*')`)

// Parse reads a document from r. source names the input in errors.
//
// Documents declaring another encoding are decoded to UTF-8 and their
// declaration is rewritten to say so. Text and attribute values are written
// back with only the escapes XML requires.
func Parse(r io.Reader, source string) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, &coerrors.DocumentError{Source: source, Kind: coerrors.ErrXMLParse, Err: err}
	}
	if doc.Root() == nil {
		return nil, &coerrors.DocumentError{Source: source, Kind: coerrors.ErrNoRoot}
	}
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = declEncoding.ReplaceAllString(pi.Inst, `encoding="UTF-8"`)
		}
	}
	return &Document{source: source, doc: doc}, nil
}

// ParseFile reads the document stored at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xml file %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data), path)
}

// Source returns the name the document was parsed from.
func (d *Document) Source() string {
	return d.source
}

// Root returns the document element.
func (d *Document) Root() *Element {
	return d.doc.Root()
}

// WriteTo serialises the document, comments included.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.doc.WriteTo(w)
}

// String returns the serialised document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Iter yields root and every descendant element tagged tag, in document order.
func Iter(root *Element, tag string) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		_ = Walk(root, HasTag(tag), func(e *Element) error {
			if !yield(e) {
				return errStop
			}
			return nil
		})
	}
}

// Children yields the direct child elements of parent tagged tag.
func Children(parent *Element, tag string) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		for _, c := range parent.ChildElements() {
			if c.FullTag() != tag {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Attr returns the value of the attribute key and whether it is present.
func Attr(e *Element, key string) (string, bool) {
	a := e.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// HasTag matches elements whose qualified tag is tag.
func HasTag(tag string) Predicate {
	return func(e *Element) bool {
		return e.FullTag() == tag
	}
}

// Path returns the slash-separated element path of e, for logs and errors.
func Path(e *Element) string {
	return e.GetPath()
}

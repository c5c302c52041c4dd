// Package xliff implements reading and writing of XLIFF 1.2 translation files.
//
// Documents are held as a full element tree so that everything the package
// does not understand (headers, notes, comments, custom attributes) is
// written back verbatim. Only <trans-unit>, <source> and <target> are
// interpreted:
//
//	<xliff version="1.2" xmlns="urn:oasis:names:tc:xliff:document:1.2">
//	  <file source-language="en-US" datatype="plaintext">
//	    <body>
//	      <trans-unit id="GREETING">
//	        <source>Hello</source>
//	        <target state="final">Bonjour</target>
//	      </trans-unit>
//	    </body>
//	  </file>
//	</xliff>
//
// Source and target content is exchanged as inner markup: the serialized
// children of the element, without the element's own tags.
package xliff

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// Namespace is the XLIFF 1.2 namespace URI.
const Namespace = "urn:oasis:names:tc:xliff:document:1.2"

// Target states written by this package.
const (
	StateFinal = "final"
	StateNew   = "new"
)

// ErrNoBody is returned when a unit must be appended to a document that has
// no <body> element.
var ErrNoBody = errors.New("document has no <body> element")

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

// Document is a parsed XLIFF file.
type Document struct {
	doc *etree.Document
	// ns is the default namespace declared on the root element, if any.
	ns string
	// index maps unit ID to the first <trans-unit> carrying it.
	index map[string]*etree.Element
}

// ParseFile reads and parses an XLIFF file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

// Parse parses XLIFF data.
func Parse(data []byte) (*Document, error) {
	doc := newEtreeDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	if root.Tag != "xliff" {
		return nil, fmt.Errorf("root element is <%s>, want <xliff>", root.Tag)
	}
	return &Document{doc: doc, ns: root.SelectAttrValue("xmlns", "")}, nil
}

// New returns an empty document for the given language.
func New(lang string) *Document {
	doc := newEtreeDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateText("\n")
	root := doc.CreateElement("xliff")
	root.CreateAttr("version", "1.2")
	root.CreateAttr("xmlns", Namespace)
	file := root.CreateElement("file")
	file.CreateAttr("datatype", "plaintext")
	file.CreateAttr("source-language", lang)
	file.CreateElement("body")
	return &Document{doc: doc, ns: Namespace}
}

func newEtreeDocument() *etree.Document {
	doc := etree.NewDocument()
	// Keep apostrophes and quotes in text as they are in the file.
	doc.WriteSettings.CanonicalText = true
	return doc
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	return d.doc.WriteToBytes()
}

// WriteFile serializes the document to path, overwriting it.
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SourceLanguage returns the source-language attribute of the first <file>.
func (d *Document) SourceLanguage() string {
	for _, f := range childrenByTag(d.doc.Root(), "file") {
		return f.SelectAttrValue("source-language", "")
	}
	return ""
}

// Units returns every <trans-unit> in document order, at any depth.
func (d *Document) Units() []*Unit {
	var units []*Unit
	walk(d.doc.Root(), func(e *etree.Element) {
		if e.Tag == "trans-unit" {
			units = append(units, &Unit{el: e, ns: d.ns})
		}
	})
	return units
}

// Find returns the first unit with the given ID, or nil.
func (d *Document) Find(id string) *Unit {
	if d.index == nil {
		d.index = make(map[string]*etree.Element)
		for _, u := range d.Units() {
			key := u.ID()
			if _, ok := d.index[key]; !ok {
				d.index[key] = u.el
			}
		}
	}
	if e, ok := d.index[id]; ok {
		return &Unit{el: e, ns: d.ns}
	}
	return nil
}

// AppendUnit adds a new <trans-unit> with <source> and <target> children to
// the first <body>. An empty state omits the state attribute.
func (d *Document) AppendUnit(id, source, target, state string) (*Unit, error) {
	body := d.body()
	if body == nil {
		return nil, ErrNoBody
	}

	el := etree.NewElement("trans-unit")
	el.Space = body.Space
	el.CreateAttr("id", id)
	u := &Unit{el: el, ns: d.ns}
	if err := u.SetSource(source); err != nil {
		return nil, err
	}
	if err := u.SetTarget(target, state); err != nil {
		return nil, err
	}
	body.AddChild(el)

	if d.index != nil {
		if _, ok := d.index[id]; !ok {
			d.index[id] = el
		}
	}
	return u, nil
}

func (d *Document) body() *etree.Element {
	var body *etree.Element
	walk(d.doc.Root(), func(e *etree.Element) {
		if body == nil && e.Tag == "body" {
			body = e
		}
	})
	return body
}

// ---------------------------------------------------------------------------
// Unit
// ---------------------------------------------------------------------------

// Unit is a handle to one <trans-unit> element of a Document.
type Unit struct {
	el *etree.Element
	ns string
}

// ID returns the unit's id attribute.
func (u *Unit) ID() string {
	return u.el.SelectAttrValue("id", "")
}

// Source returns the inner markup of <source> and whether the element exists.
func (u *Unit) Source() (string, bool) {
	return u.content("source")
}

// Target returns the inner markup of <target> and whether the element exists.
func (u *Unit) Target() (string, bool) {
	return u.content("target")
}

// TargetState returns the state attribute of <target>.
func (u *Unit) TargetState() string {
	if t := u.child("target"); t != nil {
		return t.SelectAttrValue("state", "")
	}
	return ""
}

// SetSource replaces the content of <source>, creating it if missing.
func (u *Unit) SetSource(content string) error {
	return setInnerXML(u.ensureChild("source"), content)
}

// SetTarget replaces the content of <target>, creating it if missing, and
// sets its state attribute when state is non-empty.
func (u *Unit) SetTarget(content, state string) error {
	t := u.ensureChild("target")
	if err := setInnerXML(t, content); err != nil {
		return err
	}
	if state != "" {
		t.CreateAttr("state", state)
	}
	return nil
}

func (u *Unit) content(tag string) (string, bool) {
	e := u.child(tag)
	if e == nil {
		return "", false
	}
	inner := innerXML(e)
	if u.ns != "" {
		inner = strings.ReplaceAll(inner, ` xmlns="`+u.ns+`"`, "")
	}
	return inner, true
}

func (u *Unit) child(tag string) *etree.Element {
	for _, c := range childrenByTag(u.el, tag) {
		return c
	}
	return nil
}

func (u *Unit) ensureChild(tag string) *etree.Element {
	if c := u.child(tag); c != nil {
		return c
	}
	c := etree.NewElement(tag)
	c.Space = u.el.Space
	u.el.AddChild(c)
	return c
}

// ---------------------------------------------------------------------------
// Markup helpers
// ---------------------------------------------------------------------------

const fragmentTag = "xlfsync-fragment"

// innerXML serializes the children of e.
func innerXML(e *etree.Element) string {
	if len(e.Child) == 0 {
		return ""
	}
	cp := e.Copy()
	cp.Space = ""
	cp.Tag = fragmentTag
	cp.Attr = nil

	doc := newEtreeDocument()
	doc.SetRoot(cp)
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	s = strings.TrimPrefix(s, "<"+fragmentTag+">")
	return strings.TrimSuffix(s, "</"+fragmentTag+">")
}

// setInnerXML replaces the children of e with the parsed markup.
// On a parse error e is left unchanged.
func setInnerXML(e *etree.Element, content string) error {
	frag, err := Fragment(content)
	if err != nil {
		return fmt.Errorf("invalid markup %q: %w", truncate(content, 60), err)
	}
	for len(e.Child) > 0 {
		e.RemoveChildAt(0)
	}
	for _, tok := range append([]etree.Token(nil), frag.Child...) {
		e.AddChild(tok)
	}
	return nil
}

// Fragment parses inner markup into a detached container element whose
// children are the fragment's tokens.
func Fragment(content string) (*etree.Element, error) {
	frag := etree.NewDocument()
	if err := frag.ReadFromString("<" + fragmentTag + ">" + content + "</" + fragmentTag + ">"); err != nil {
		return nil, err
	}
	return frag.Root(), nil
}

// OuterXML serializes e including its own tags.
func OuterXML(e *etree.Element) string {
	doc := newEtreeDocument()
	doc.SetRoot(e.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// SplitTags returns the start and end tags of e, without its children.
func SplitTags(e *etree.Element) (start, end string) {
	cp := e.Copy()
	for len(cp.Child) > 0 {
		cp.RemoveChildAt(0)
	}
	s := OuterXML(cp)
	end = "</" + cp.FullTag() + ">"
	if strings.HasSuffix(s, "/>") {
		return s[:len(s)-2] + ">", end
	}
	return strings.TrimSuffix(s, end), end
}

func childrenByTag(e *etree.Element, tag string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

func walk(e *etree.Element, fn func(*etree.Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.ChildElements() {
		walk(c, fn)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

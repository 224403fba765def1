package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nsPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsOfficeRels    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsXMLNamespaces = "http://www.w3.org/XML/1998/namespace"
)

// node is one item of an element's content: *element, charData or rawNode.
type node interface {
	writeXML(*bytes.Buffer)
}

type charData string

// rawNode keeps comments, processing instructions and directives verbatim.
type rawNode []byte

type element struct {
	prefix   string
	local    string
	attrs    []xml.Attr
	children []node
	parent   *element
}

// document is a parsed XML part: prolog nodes followed by the root element.
type document struct {
	prolog []node
	root   *element
}

func parseDocument(data []byte) (*document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &document{}
	var stack []*element

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				prefix: t.Name.Space,
				local:  t.Name.Local,
				attrs:  append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if doc.root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				doc.root = el
			} else {
				stack[len(stack)-1].appendChild(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end element %s", t.Name.Local)
			}
			top := stack[len(stack)-1]
			if top.local != t.Name.Local || top.prefix != t.Name.Space {
				return nil, fmt.Errorf("mismatched end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				// Whitespace between prolog and root is dropped.
				continue
			}
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, charData(string(t)))
		case xml.Comment:
			doc.addRaw(stack, append(append([]byte("<!--"), t...), "-->"...))
		case xml.ProcInst:
			var b bytes.Buffer
			b.WriteString("<?")
			b.WriteString(t.Target)
			if len(t.Inst) > 0 {
				b.WriteByte(' ')
				b.Write(t.Inst)
			}
			b.WriteString("?>")
			doc.addRaw(stack, b.Bytes())
		case xml.Directive:
			doc.addRaw(stack, append(append([]byte("<!"), t...), '>'))
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("unexpected EOF inside <%s>", stack[len(stack)-1].local)
	}
	if doc.root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return doc, nil
}

func (d *document) addRaw(stack []*element, raw []byte) {
	if len(stack) == 0 {
		if d.root == nil {
			d.prolog = append(d.prolog, rawNode(raw))
		}
		return
	}
	top := stack[len(stack)-1]
	top.children = append(top.children, rawNode(raw))
}

func (d *document) bytes() []byte {
	var buf bytes.Buffer
	for _, n := range d.prolog {
		n.writeXML(&buf)
		buf.WriteString("\r\n")
	}
	d.root.writeXML(&buf)
	return buf.Bytes()
}

func (c charData) writeXML(buf *bytes.Buffer) {
	escapeText(buf, string(c))
}

func (r rawNode) writeXML(buf *bytes.Buffer) {
	buf.Write(r)
}

func (e *element) writeXML(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(e.qname())
	for _, a := range e.attrs {
		buf.WriteByte(' ')
		if a.Name.Space != "" {
			buf.WriteString(a.Name.Space)
			buf.WriteByte(':')
		}
		buf.WriteString(a.Name.Local)
		buf.WriteString(`="`)
		escapeAttr(buf, a.Value)
		buf.WriteByte('"')
	}
	if len(e.children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, c := range e.children {
		c.writeXML(buf)
	}
	buf.WriteString("</")
	buf.WriteString(e.qname())
	buf.WriteByte('>')
}

func (e *element) qname() string {
	if e.prefix == "" {
		return e.local
	}
	return e.prefix + ":" + e.local
}

// legalXMLChar reports whether r may appear in an XML 1.0 document.
func legalXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

func escapeText(buf *bytes.Buffer, s string) {
	for _, r := range s {
		if !legalXMLChar(r) {
			continue
		}
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '\r':
			buf.WriteString("&#xD;")
		default:
			buf.WriteRune(r)
		}
	}
}

func escapeAttr(buf *bytes.Buffer, s string) {
	for _, r := range s {
		if !legalXMLChar(r) {
			continue
		}
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#xA;")
		case '\r':
			buf.WriteString("&#xD;")
		case '\t':
			buf.WriteString("&#x9;")
		default:
			buf.WriteRune(r)
		}
	}
}

func (e *element) appendChild(child *element) {
	child.parent = e
	e.children = append(e.children, child)
}

// insertChild places child at index i among all content nodes.
func (e *element) insertChild(i int, child *element) {
	child.parent = e
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = child
}

func (e *element) removeChild(child *element) {
	for i, c := range e.children {
		if c == node(child) {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// lookupNamespace resolves prefix against the declarations in scope.
func (e *element) lookupNamespace(prefix string) string {
	if prefix == "xml" {
		return nsXMLNamespaces
	}
	for el := e; el != nil; el = el.parent {
		for _, a := range el.attrs {
			if prefix == "" && a.Name.Space == "" && a.Name.Local == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Name.Space == "xmlns" && a.Name.Local == prefix {
				return a.Value
			}
		}
	}
	return ""
}

// prefixFor returns a prefix bound to uri in scope, declaring preferred on
// the root element when nothing is bound yet.
func (e *element) prefixFor(uri, preferred string) string {
	var root *element
	for el := e; el != nil; el = el.parent {
		for _, a := range el.attrs {
			if a.Value != uri {
				continue
			}
			if a.Name.Space == "xmlns" {
				return a.Name.Local
			}
			if a.Name.Space == "" && a.Name.Local == "xmlns" {
				return ""
			}
		}
		root = el
	}
	root.attrs = append(root.attrs, xml.Attr{Name: xml.Name{Space: "xmlns", Local: preferred}, Value: uri})
	return preferred
}

func (e *element) uri() string {
	return e.lookupNamespace(e.prefix)
}

func (e *element) is(uri, local string) bool {
	return e != nil && e.local == local && e.uri() == uri
}

func (e *element) elements() []*element {
	var out []*element
	for _, c := range e.children {
		if el, ok := c.(*element); ok {
			out = append(out, el)
		}
	}
	return out
}

func (e *element) child(uri, local string) *element {
	if e == nil {
		return nil
	}
	for _, c := range e.children {
		if el, ok := c.(*element); ok && el.is(uri, local) {
			return el
		}
	}
	return nil
}

func (e *element) childrenNamed(uri, local string) []*element {
	if e == nil {
		return nil
	}
	var out []*element
	for _, c := range e.children {
		if el, ok := c.(*element); ok && el.is(uri, local) {
			out = append(out, el)
		}
	}
	return out
}

// path follows a chain of (uri, local) child steps.
func (e *element) path(steps ...[2]string) *element {
	cur := e
	for _, s := range steps {
		cur = cur.child(s[0], s[1])
		if cur == nil {
			return nil
		}
	}
	return cur
}

// attr returns the value of an attribute. uri is empty for unqualified attributes.
func (e *element) attr(uri, local string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local != local || isNamespaceDecl(a) {
			continue
		}
		if uri == "" && a.Name.Space == "" {
			return a.Value, true
		}
		if uri != "" && a.Name.Space != "" && e.lookupNamespace(a.Name.Space) == uri {
			return a.Value, true
		}
	}
	return "", false
}

// setAttr sets an unqualified attribute, appending it when absent.
func (e *element) setAttr(local, value string) {
	for i, a := range e.attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

func isNamespaceDecl(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// text concatenates the character data of e's direct children.
func (e *element) text() string {
	var sb strings.Builder
	for _, c := range e.children {
		if cd, ok := c.(charData); ok {
			sb.WriteString(string(cd))
		}
	}
	return sb.String()
}

// setText replaces the element content. Characters XML 1.0 cannot carry,
// such as the vertical tab some models emit, are dropped.
func (e *element) setText(s string) {
	s = strings.Map(func(r rune) rune {
		if !legalXMLChar(r) {
			return -1
		}
		return r
	}, s)
	e.children = e.children[:0]
	if s != "" {
		e.children = append(e.children, charData(s))
	}
}

// newElement creates a detached element in uri, reusing the prefix bound in
// parent's scope.
func newElement(parent *element, uri, local, preferredPrefix string) *element {
	return &element{prefix: parent.prefixFor(uri, preferredPrefix), local: local}
}

// clone deep-copies e without a parent.
func (e *element) clone() *element {
	out := &element{prefix: e.prefix, local: e.local, attrs: append([]xml.Attr(nil), e.attrs...)}
	for _, c := range e.children {
		switch v := c.(type) {
		case *element:
			out.appendChild(v.clone())
		case rawNode:
			out.children = append(out.children, append(rawNode(nil), v...))
		default:
			out.children = append(out.children, v)
		}
	}
	return out
}

func step(uri, local string) [2]string { return [2]string{uri, local} }

func xmlAttr(prefix, local, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Space: prefix, Local: local}, Value: value}
}

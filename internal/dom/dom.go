// Package dom models the host component's container and the frame elements the
// relay embeds into it. Mutations are recorded so they can be observed.
package dom

import (
	"strings"
	"sync"
)

// ChangeType names a recorded mutation
type ChangeType string

const (
	ChangeAppend ChangeType = "append"
	ChangeRemove ChangeType = "remove"
)

// Change represents a mutation of the tree
type Change struct {
	Type    ChangeType
	Parent  string // parent tag name
	TagName string
	Src     string
}

// Element represents a node in the host tree
type Element struct {
	TagName    string
	ID         string
	attributes map[string]string
	children   []*Element
	parent     *Element
	doc        *Document
}

// Document owns a tree of elements and the log of its mutations
type Document struct {
	root    *Element
	changes []Change
	mu      sync.RWMutex
}

// NewDocument creates an empty document
func NewDocument() *Document {
	d := &Document{}
	d.root = &Element{TagName: "document", attributes: map[string]string{}, doc: d}
	return d
}

// Root returns the document element
func (d *Document) Root() *Element {
	return d.root
}

// CreateElement creates a detached element owned by this document
func (d *Document) CreateElement(tag string) *Element {
	return &Element{
		TagName:    strings.ToLower(tag),
		attributes: map[string]string{},
		doc:        d,
	}
}

// NewContainer creates a <div> attached to a fresh document
func NewContainer() *Element {
	d := NewDocument()
	div := d.CreateElement("div")
	d.Root().AppendChild(div)
	return div
}

// Changes returns a copy of the recorded mutations
func (d *Document) Changes() []Change {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Change{}, d.changes...)
}

// GetAttribute retrieves an attribute value
func (e *Element) GetAttribute(name string) string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.attributes[name]
}

// SetAttribute sets an attribute value
func (e *Element) SetAttribute(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.attributes[name] = value
}

// Src is shorthand for the src attribute
func (e *Element) Src() string {
	return e.GetAttribute("src")
}

// AppendChild attaches child as the last child of e
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.doc.changes = append(e.doc.changes, Change{
		Type:    ChangeAppend,
		Parent:  e.TagName,
		TagName: child.TagName,
		Src:     child.attributes["src"],
	})
}

// Remove detaches e from its parent. Detached elements are left untouched.
func (e *Element) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.parent == nil {
		return
	}
	parent := e.parent
	parent.detach(e)
	e.doc.changes = append(e.doc.changes, Change{
		Type:    ChangeRemove,
		Parent:  parent.TagName,
		TagName: e.TagName,
		Src:     e.attributes["src"],
	})
}

// Attached reports whether e currently has a parent
func (e *Element) Attached() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.parent != nil
}

// Children returns a copy of the direct children
func (e *Element) Children() []*Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return append([]*Element{}, e.children...)
}

// QueryAll finds descendants by tag name
func (e *Element) QueryAll(tag string) []*Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return findByTag(e, tag)
}

// caller holds doc.mu
func (e *Element) detach(child *Element) {
	children := e.children[:0]
	for _, c := range e.children {
		if c != child {
			children = append(children, c)
		}
	}
	e.children = children
	child.parent = nil
}

func findByTag(elem *Element, tag string) []*Element {
	var result []*Element
	for _, child := range elem.children {
		if strings.EqualFold(child.TagName, tag) {
			result = append(result, child)
		}
		result = append(result, findByTag(child, tag)...)
	}
	return result
}

// Package atom holds the DOM-level helpers used to pull CMIS data out of
// Atom and AtomPub documents.
//
// All lookups are namespace aware: an element matches when its resolved
// namespace URI and local name both match, regardless of the prefix the
// server chose.
package atom

import (
	"fmt"
	"regexp"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/constants"
)

// Parse reads an XML document and returns its pseudo-root: the element that
// contains the document element. Searching from it matches the document
// element itself, which is what callers expect from a whole-document lookup.
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: document has no root element", constants.ErrProtocolViolation)
	}
	return &doc.Element, nil
}

// Entry returns the atom:entry element of a parsed entry document. Elements
// that already are an entry are returned unchanged.
func Entry(el *etree.Element) (*etree.Element, error) {
	if Is(el, constants.AtomNS, "entry") {
		return el, nil
	}
	for _, c := range el.ChildElements() {
		if Is(c, constants.AtomNS, "entry") {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: expected an atom entry document", constants.ErrProtocolViolation)
}

// Feed returns the atom:feed element of a parsed feed document. Elements
// that already are a feed are returned unchanged.
func Feed(el *etree.Element) (*etree.Element, error) {
	if Is(el, constants.AtomNS, "feed") {
		return el, nil
	}
	for _, c := range el.ChildElements() {
		if Is(c, constants.AtomNS, "feed") {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: expected an atom feed document", constants.ErrProtocolViolation)
}

// NamespaceURI resolves the namespace of el by walking its ancestors'
// xmlns declarations.
func NamespaceURI(el *etree.Element) string {
	prefix := el.Space
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

// Is reports whether el is the element {ns}local.
func Is(el *etree.Element, ns, local string) bool {
	return el.Tag == local && NamespaceURI(el) == ns
}

// ElementsByTagNameNS returns every descendant of el named {ns}local, in
// document order. el itself is not included.
func ElementsByTagNameNS(el *etree.Element, ns, local string) []*etree.Element {
	var found []*etree.Element
	var walk func(*etree.Element)
	walk = func(parent *etree.Element) {
		for _, c := range parent.ChildElements() {
			if Is(c, ns, local) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(el)
	return found
}

// FirstByTagNameNS returns the first descendant named {ns}local, or nil.
func FirstByTagNameNS(el *etree.Element, ns, local string) *etree.Element {
	var found *etree.Element
	var walk func(*etree.Element) bool
	walk = func(parent *etree.Element) bool {
		for _, c := range parent.ChildElements() {
			if Is(c, ns, local) {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(el)
	return found
}

// ChildByTagNameNS returns the first direct child named {ns}local, or nil.
func ChildByTagNameNS(el *etree.Element, ns, local string) *etree.Element {
	for _, c := range el.ChildElements() {
		if Is(c, ns, local) {
			return c
		}
	}
	return nil
}

// ChildrenByLocalName returns the direct children named local in any namespace.
func ChildrenByLocalName(el *etree.Element, local string) []*etree.Element {
	var found []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			found = append(found, c)
		}
	}
	return found
}

// Text returns the text of el, or "" when el is nil. ok is false when the
// element is missing or has no character data.
func Text(el *etree.Element) (text string, ok bool) {
	if el == nil {
		return "", false
	}
	for _, t := range el.Child {
		if cd, isCharData := t.(*etree.CharData); isCharData {
			return cd.Data, true
		}
	}
	return "", false
}

// TextByTagNameNS returns the text of the first descendant {ns}local.
func TextByTagNameNS(el *etree.Element, ns, local string) (string, bool) {
	return Text(FirstByTagNameNS(el, ns, local))
}

// Link returns the href of the first atom:link below el whose rel matches
// and, when typePattern is not nil, whose type attribute matches it.
func Link(el *etree.Element, rel string, typePattern *regexp.Regexp) (string, bool) {
	return matchLink(ElementsByTagNameNS(el, constants.AtomNS, "link"), rel, typePattern)
}

// OwnLink is Link restricted to the direct children of el, so that links of
// nested entries are ignored.
func OwnLink(el *etree.Element, rel string) (string, bool) {
	var links []*etree.Element
	for _, c := range el.ChildElements() {
		if Is(c, constants.AtomNS, "link") {
			links = append(links, c)
		}
	}
	return matchLink(links, rel, nil)
}

func matchLink(links []*etree.Element, rel string, typePattern *regexp.Regexp) (string, bool) {
	for _, l := range links {
		relAttr := l.SelectAttr("rel")
		if relAttr == nil || relAttr.Value != rel {
			continue
		}
		if typePattern != nil {
			typeAttr := l.SelectAttr("type")
			if typeAttr == nil || !typePattern.MatchString(typeAttr.Value) {
				continue
			}
		}
		href := l.SelectAttr("href")
		if href == nil {
			continue
		}
		return href.Value, true
	}
	return "", false
}

// CollectionHref returns the href of the app:collection whose
// cmisra:collectionType equals collectionType.
func CollectionHref(el *etree.Element, collectionType string) (string, bool) {
	for _, c := range ElementsByTagNameNS(el, constants.AppNS, "collection") {
		for _, n := range ChildrenByLocalName(c, "collectionType") {
			if v, _ := Text(n); v == collectionType {
				return c.SelectAttrValue("href", ""), true
			}
		}
	}
	return "", false
}

// Attr returns the value of attribute key on el.
func Attr(el *etree.Element, key string) (string, bool) {
	a := el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

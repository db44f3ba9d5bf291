// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package pml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
)

// ErrElementNotFound is returned when an element an edit depends on is
// absent from the payload.
var ErrElementNotFound = errors.New("element not found")

// RelationshipsNamespace is the namespace of r:id attributes.
const RelationshipsNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// span locates one element in a payload. Offsets are byte positions:
// the element occupies [start, end), its start tag ends at tagEnd and
// its content occupies [contentStart, contentEnd).
type span struct {
	name         xml.Name
	attrs        []xml.Attr
	depth        int
	start        int
	tagEnd       int
	contentStart int
	contentEnd   int
	end          int
	selfClosing  bool
}

func (s *span) attr(space, local string) (string, bool) {
	for _, attr := range s.attrs {
		if attr.Name.Space == space && attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// document is a scanned payload. Names keep their raw prefixes in
// Name.Space.
type document struct {
	data  []byte
	spans []*span
}

func scan(data []byte) (*document, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	doc := &document{data: data}
	var stack []*span
	for {
		before := int(decoder.InputOffset())
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scanning markup: %w", err)
		}
		after := int(decoder.InputOffset())
		switch token := token.(type) {
		case xml.StartElement:
			element := &span{
				name:   token.Name,
				attrs:  append([]xml.Attr(nil), token.Attr...),
				depth:  len(stack),
				start:  before,
				tagEnd: after,
			}
			doc.spans = append(doc.spans, element)
			stack = append(stack, element)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("scanning markup: unbalanced </%s>", token.Name.Local)
			}
			element := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			element.contentStart = element.tagEnd
			element.end = after
			if after == element.tagEnd {
				element.selfClosing = true
				element.contentEnd = element.tagEnd
			} else {
				element.contentEnd = before
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("scanning markup: <%s> is not closed", stack[len(stack)-1].name.Local)
	}
	if len(doc.spans) == 0 {
		return nil, fmt.Errorf("scanning markup: %w: no root element", ErrElementNotFound)
	}
	return doc, nil
}

func (d *document) root() *span { return d.spans[0] }

// find returns the first element with the given local name.
func (d *document) find(local string) (*span, bool) {
	for _, element := range d.spans {
		if element.name.Local == local {
			return element, true
		}
	}
	return nil, false
}

// children returns the direct children of parent with the given local
// name, in document order.
func (d *document) children(parent *span, local string) []*span {
	var result []*span
	for _, element := range d.spans {
		if element.start < parent.contentStart || element.end > parent.contentEnd {
			continue
		}
		if element.depth == parent.depth+1 && element.name.Local == local {
			result = append(result, element)
		}
	}
	return result
}

// relationshipsPrefix returns the prefix bound to the relationships
// namespace on the root element, and whether it is declared there.
func (d *document) relationshipsPrefix() (string, bool) {
	for _, attr := range d.root().attrs {
		if attr.Name.Space == "xmlns" && attr.Value == RelationshipsNamespace {
			return attr.Name.Local, true
		}
	}
	return "r", false
}

// relationshipID returns the r:id of element under any prefix bound to
// the relationships namespace.
func (d *document) relationshipID(element *span) string {
	prefix, _ := d.relationshipsPrefix()
	if value, ok := element.attr(prefix, "id"); ok {
		return value
	}
	return ""
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func splice(data []byte, start, end int, replacement []byte) []byte {
	result := make([]byte, 0, len(data)-(end-start)+len(replacement))
	result = append(result, data[:start]...)
	result = append(result, replacement...)
	result = append(result, data[end:]...)
	return result
}

func escapeAttr(value string) string {
	var buffer bytes.Buffer
	// EscapeText only fails when the writer fails.
	_ = xml.EscapeText(&buffer, []byte(value))
	return buffer.String()
}

// setAttr rewrites attribute qname in a start tag, adding it before the
// tag's closing delimiter when absent.
func setAttr(tag []byte, qname, value string) []byte {
	pattern := regexp.MustCompile(`\s` + regexp.QuoteMeta(qname) + `\s*=\s*("[^"]*"|'[^']*')`)
	rendered := []byte(" " + qname + `="` + escapeAttr(value) + `"`)
	if location := pattern.FindIndex(tag); location != nil {
		return splice(tag, location[0], location[1], rendered)
	}
	insertAt := len(tag) - 1
	if bytes.HasSuffix(tag, []byte("/>")) {
		insertAt = len(tag) - 2
	}
	return splice(tag, insertAt, insertAt, rendered)
}

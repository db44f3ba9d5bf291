// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package pml

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one member of an id list: a numeric id paired with the
// relationship id that binds it to a part.
type Entry struct {
	ID    uint32
	RelID string
}

// idList describes one of the id lists: its element names and the
// siblings it follows when it has to be created.
type idList struct {
	list  string
	entry string
	after []string
}

var (
	slideList = idList{
		list:  "sldIdLst",
		entry: "sldId",
		after: []string{"handoutMasterIdLst", "notesMasterIdLst", "sldMasterIdLst"},
	}
	masterList = idList{
		list:  "sldMasterIdLst",
		entry: "sldMasterId",
	}
	layoutList = idList{
		list:  "sldLayoutIdLst",
		entry: "sldLayoutId",
		after: []string{"clrMap"},
	}
)

// SlideIDs returns the slide-id list of a presentation part. A missing
// list is an empty list.
func SlideIDs(presentation []byte) ([]Entry, error) {
	return readList(presentation, slideList)
}

// SetSlideIDs replaces the slide-id list of a presentation part.
func SetSlideIDs(presentation []byte, entries []Entry) ([]byte, error) {
	return writeList(presentation, slideList, entries)
}

// MasterIDs returns the slide-master-id list of a presentation part.
func MasterIDs(presentation []byte) ([]Entry, error) {
	return readList(presentation, masterList)
}

// SetMasterIDs replaces the slide-master-id list of a presentation part.
func SetMasterIDs(presentation []byte, entries []Entry) ([]byte, error) {
	return writeList(presentation, masterList, entries)
}

// LayoutIDs returns the layout-id list of a slide master.
func LayoutIDs(master []byte) ([]Entry, error) {
	return readList(master, layoutList)
}

// SetLayoutIDs replaces the layout-id list of a slide master. An empty
// entries slice leaves an empty list element in place.
func SetLayoutIDs(master []byte, entries []Entry) ([]byte, error) {
	return writeList(master, layoutList, entries)
}

// MaxID returns the largest id in entries, or 0.
func MaxID(entries []Entry) uint32 {
	var highest uint32
	for _, entry := range entries {
		highest = max(highest, entry.ID)
	}
	return highest
}

func readList(data []byte, kind idList) ([]Entry, error) {
	doc, err := scan(data)
	if err != nil {
		return nil, err
	}
	list, ok := doc.find(kind.list)
	if !ok {
		return nil, nil
	}
	var entries []Entry
	for _, element := range doc.children(list, kind.entry) {
		raw, _ := element.attr("", "id")
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid id %q: %w", kind.entry, raw, err)
		}
		entries = append(entries, Entry{ID: uint32(id), RelID: doc.relationshipID(element)})
	}
	return entries, nil
}

func writeList(data []byte, kind idList, entries []Entry) ([]byte, error) {
	doc, err := scan(data)
	if err != nil {
		return nil, err
	}
	root := doc.root()
	relPrefix, declared := doc.relationshipsPrefix()

	if list, ok := doc.find(kind.list); ok {
		rendered := renderList(list.name.Space, relPrefix, declared, kind, entries)
		return splice(data, list.start, list.end, []byte(rendered)), nil
	}

	rendered := renderList(root.name.Space, relPrefix, declared, kind, entries)
	if len(kind.after) == 0 {
		if root.selfClosing {
			return nil, fmt.Errorf("%w: <%s> has no content to insert %s into", ErrElementNotFound, root.name.Local, kind.list)
		}
		return splice(data, root.tagEnd, root.tagEnd, []byte(rendered)), nil
	}
	for _, sibling := range kind.after {
		matches := doc.children(root, sibling)
		if len(matches) == 0 {
			continue
		}
		anchor := matches[len(matches)-1]
		return splice(data, anchor.end, anchor.end, []byte(rendered)), nil
	}
	return nil, fmt.Errorf("%w: no place for %s in <%s>", ErrElementNotFound, kind.list, root.name.Local)
}

func renderList(prefix, relPrefix string, declared bool, kind idList, entries []Entry) string {
	var builder strings.Builder
	listName := qualified(prefix, kind.list)
	builder.WriteString("<" + listName)
	if !declared && len(entries) > 0 {
		builder.WriteString(` xmlns:` + relPrefix + `="` + RelationshipsNamespace + `"`)
	}
	if len(entries) == 0 {
		builder.WriteString("/>")
		return builder.String()
	}
	builder.WriteString(">")
	for _, entry := range entries {
		fmt.Fprintf(&builder, `<%s id="%d" %s:id="%s"/>`,
			qualified(prefix, kind.entry), entry.ID, relPrefix, escapeAttr(entry.RelID))
	}
	builder.WriteString("</" + listName + ">")
	return builder.String()
}

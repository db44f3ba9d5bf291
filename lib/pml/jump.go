// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package pml

import "fmt"

// JumpAction is the action URI of a hyperlink that navigates to another
// slide of the same presentation.
const JumpAction = "ppaction://hlinksldjump"

// JumpRelIDs returns the relationship id of every slide-jump action in
// a slide, in document order. Unbound actions have an empty id.
func JumpRelIDs(slide []byte) ([]string, error) {
	doc, err := scan(slide)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, element := range jumpActions(doc) {
		ids = append(ids, doc.relationshipID(element))
	}
	return ids, nil
}

// SetJumpRelID binds the index-th slide-jump action of a slide to
// relID. An empty relID leaves the action unbound.
func SetJumpRelID(slide []byte, index int, relID string) ([]byte, error) {
	doc, err := scan(slide)
	if err != nil {
		return nil, err
	}
	actions := jumpActions(doc)
	if index < 0 || index >= len(actions) {
		return nil, fmt.Errorf("%w: slide has %d jump actions, no action %d", ErrElementNotFound, len(actions), index)
	}
	action := actions[index]
	relPrefix, declared := doc.relationshipsPrefix()
	tag := slide[action.start:action.tagEnd]
	if !declared {
		tag = setAttr(tag, "xmlns:"+relPrefix, RelationshipsNamespace)
	}
	tag = setAttr(tag, relPrefix+":id", relID)
	return splice(slide, action.start, action.tagEnd, tag), nil
}

func jumpActions(doc *document) []*span {
	var actions []*span
	for _, element := range doc.spans {
		if element.name.Local != "hlinkClick" {
			continue
		}
		if action, _ := element.attr("", "action"); action == JumpAction {
			actions = append(actions, element)
		}
	}
	return actions
}

// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package deck

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/pml"
)

// SlideRef selects a slide by position or by slide id.
type SlideRef struct {
	index int
	id    uint32
	byID  bool
}

// ByIndex selects the slide at a zero-based position. Negative
// positions count from the end.
func ByIndex(index int) SlideRef { return SlideRef{index: index} }

// ByID selects the slide with the given slide id.
func ByID(id uint32) SlideRef { return SlideRef{id: id, byID: true} }

func (r SlideRef) String() string {
	if r.byID {
		return "id " + strconv.FormatUint(uint64(r.id), 10)
	}
	return "index " + strconv.Itoa(r.index)
}

// LinkKey names an entry of a slide's link table: either the position
// of a slide-jump action in the slide payload or a caller-chosen name.
type LinkKey struct {
	action int
	name   string
}

// ActionKey keys the index-th slide-jump action of the slide payload.
// Resolving such a link writes its relationship id into the action.
func ActionKey(index int) LinkKey { return LinkKey{action: index} }

// NamedKey keys a link that exists only in the table.
func NamedKey(name string) LinkKey { return LinkKey{action: -1, name: name} }

// IsAction reports whether k keys a slide-jump action.
func (k LinkKey) IsAction() bool { return k.action >= 0 }

func (k LinkKey) String() string {
	if k.IsAction() {
		return "action " + strconv.Itoa(k.action)
	}
	return strconv.Quote(k.name)
}

func compareKeys(a, b LinkKey) int {
	if a.IsAction() != b.IsAction() {
		if a.IsAction() {
			return -1
		}
		return 1
	}
	return cmp.Or(cmp.Compare(a.action, b.action), cmp.Compare(a.name, b.name))
}

// link is one entry of a link table. relID is empty while the link is
// unbound.
type link struct {
	target SlideRef
	relID  string
}

// SlideLookup resolves slide references. *Presentation implements it.
type SlideLookup interface {
	Slide(ref SlideRef) *Slide
}

// Slide is a slide of a presentation together with its link table.
type Slide struct {
	part  *opc.Part
	id    uint32
	links map[LinkKey]*link
}

func newSlide(part *opc.Part, id uint32) *Slide {
	return &Slide{part: part, id: id, links: make(map[LinkKey]*link)}
}

// Part returns the slide part.
func (s *Slide) Part() *opc.Part { return s.part }

// ID returns the slide id.
func (s *Slide) ID() uint32 { return s.id }

func (s *Slide) String() string {
	return fmt.Sprintf("slide %d (%s)", s.id, s.part.Name())
}

// JumpActions returns the number of slide-jump actions in the payload.
func (s *Slide) JumpActions() (int, error) {
	ids, err := pml.JumpRelIDs(s.part.Blob())
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Assign sets the target of key. The binding is not touched until the
// next ResolveLinks. An action key must name an existing slide-jump
// action.
func (s *Slide) Assign(key LinkKey, target SlideRef) error {
	if key.IsAction() {
		count, err := s.JumpActions()
		if err != nil {
			return fmt.Errorf("assigning %s of %s: %w", key, s, err)
		}
		if key.action >= count {
			return fmt.Errorf("assigning %s of %s: %w: slide has %d jump actions",
				key, s, pml.ErrElementNotFound, count)
		}
	}
	if entry, ok := s.links[key]; ok {
		entry.target = target
		return nil
	}
	s.links[key] = &link{target: target}
	return nil
}

// Unassign removes key from the table. It reports whether key was
// present.
func (s *Slide) Unassign(key LinkKey) bool {
	_, ok := s.links[key]
	delete(s.links, key)
	return ok
}

// Clear empties the link table.
func (s *Slide) Clear() {
	clear(s.links)
}

// Relink assigns every entry of targets.
func (s *Slide) Relink(targets map[LinkKey]SlideRef) error {
	keys := make([]LinkKey, 0, len(targets))
	for key := range targets {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, compareKeys)
	for _, key := range keys {
		if err := s.Assign(key, targets[key]); err != nil {
			return err
		}
	}
	return nil
}

// Links returns the keys of the table: action keys by position, then
// named keys by name.
func (s *Slide) Links() []LinkKey {
	keys := make([]LinkKey, 0, len(s.links))
	for key := range s.links {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Link returns the target assigned to key.
func (s *Slide) Link(key LinkKey) (SlideRef, bool) {
	entry, ok := s.links[key]
	if !ok {
		return SlideRef{}, false
	}
	return entry.target, true
}

// Binding returns the relationship id key is bound to. It reports
// false while the link is unbound.
func (s *Slide) Binding(key LinkKey) (string, bool) {
	entry, ok := s.links[key]
	if !ok || entry.relID == "" {
		return "", false
	}
	return entry.relID, true
}

// unbind marks every link bound to relationship id as unbound.
func (s *Slide) unbind(id string) {
	for _, entry := range s.links {
		if entry.relID == id {
			entry.relID = ""
		}
	}
}

// ResolveLinks binds every link of the table to its target in slides.
//
// A link whose target resolves keeps its relationship when that still
// points at the target. Otherwise, with update set, a relationship it
// was bound to is retargeted in place unless another link is bound to
// it too; without update, or when it is shared, the slide is
// related to the target under a new or existing id. A link whose
// target does not resolve loses its relationship and becomes unbound.
// Action keys have their relationship id written into the payload.
func (s *Slide) ResolveLinks(slides SlideLookup, update bool) error {
	for _, key := range s.Links() {
		entry := s.links[key]
		target := slides.Slide(entry.target)

		if target == nil {
			if entry.relID != "" {
				id := entry.relID
				entry.relID = ""
				if !s.bound(id) {
					s.part.Relationships().Remove(id)
				}
			}
		} else {
			id := entry.relID
			entry.relID = ""
			entry.relID = s.bind(id, target.part, update)
		}

		if key.IsAction() {
			blob, err := pml.SetJumpRelID(s.part.Blob(), key.action, entry.relID)
			if err != nil {
				return fmt.Errorf("resolving %s of %s: %w", key, s, err)
			}
			s.part.SetBlob(blob)
		}
	}
	return nil
}

// bind returns the relationship id that relates s to target, starting
// from the previously bound id. The caller's link must already be
// unbound so that a relationship still bound by another link is never
// retargeted.
func (s *Slide) bind(id string, target *opc.Part, update bool) string {
	relationships := s.part.Relationships()
	if id != "" {
		if relationship, ok := relationships.Get(id); ok {
			if relationship.Target == target {
				return id
			}
			if update && relationship.Type == opc.RelationshipSlide && !relationship.External && !s.bound(id) {
				if err := relationships.Retarget(id, target); err == nil {
					return id
				}
			}
		}
	}
	return relationships.RelateTo(target, opc.RelationshipSlide)
}

// bound reports whether any link is bound to relationship id.
func (s *Slide) bound(id string) bool {
	for _, entry := range s.links {
		if entry.relID == id {
			return true
		}
	}
	return false
}

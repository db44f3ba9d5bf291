// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package opc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDuplicateRelationshipID is returned when a relationship is added
// under an id its collection already holds.
var ErrDuplicateRelationshipID = errors.New("duplicate relationship id")

// Relationship is a typed, directed edge from the owner of its
// collection to another part or to an external reference.
type Relationship struct {
	// ID is unique within the owning collection ("rId3").
	ID string

	// Type is the relationship type URI.
	Type string

	// Target is the internal target. Nil for external relationships
	// and for dangling internal relationships whose target was not
	// present when the package was read.
	Target *Part

	// TargetRef is the external reference for external relationships,
	// or the unresolved reference of a dangling internal one.
	TargetRef string

	// External is true when TargetRef is outside the package.
	External bool
}

// IsDangling reports whether r is internal but has no target part.
func (r *Relationship) IsDangling() bool {
	return !r.External && r.Target == nil
}

func (r *Relationship) String() string {
	target := r.TargetRef
	if !r.External && r.Target != nil {
		target = string(r.Target.Name())
	}
	return fmt.Sprintf("%s %s -> %s (external=%t)", r.ID, ShortType(r.Type), target, r.External)
}

// Relationships is the ordered, id-keyed collection of a part's (or the
// package's) outgoing relationships. Iteration order is insertion
// order, which is also the order relationships are written in.
type Relationships struct {
	order []string
	byID  map[string]*Relationship
}

func newRelationships() *Relationships {
	return &Relationships{byID: make(map[string]*Relationship)}
}

// Len returns the number of relationships. A nil collection is empty.
func (c *Relationships) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Add inserts a copy of relationship and returns the stored value.
// The id must be non-empty and unused; internal relationships must
// carry a target.
func (c *Relationships) Add(relationship Relationship) (*Relationship, error) {
	if relationship.ID == "" {
		return nil, fmt.Errorf("relationship id is empty")
	}
	if relationship.Type == "" {
		return nil, fmt.Errorf("relationship %s has no type", relationship.ID)
	}
	if !relationship.External && relationship.Target == nil {
		return nil, fmt.Errorf("internal relationship %s has no target", relationship.ID)
	}
	return c.insert(relationship)
}

// insert stores relationship without target validation. The container
// reader uses it to keep dangling relationships.
func (c *Relationships) insert(relationship Relationship) (*Relationship, error) {
	if _, exists := c.byID[relationship.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRelationshipID, relationship.ID)
	}
	stored := relationship
	if stored.External {
		stored.Target = nil
	}
	c.byID[stored.ID] = &stored
	c.order = append(c.order, stored.ID)
	return &stored, nil
}

// Get returns the relationship with the given id.
func (c *Relationships) Get(id string) (*Relationship, bool) {
	if c == nil {
		return nil, false
	}
	relationship, ok := c.byID[id]
	return relationship, ok
}

// Remove deletes the relationship with the given id and reports
// whether it existed.
func (c *Relationships) Remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns the relationships in insertion order. The slice is a
// fresh copy, so callers may add or remove relationships while
// iterating over it.
func (c *Relationships) All() []*Relationship {
	if c == nil {
		return nil
	}
	result := make([]*Relationship, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.byID[id])
	}
	return result
}

// OfType returns the relationships of the given type in order.
func (c *Relationships) OfType(relationshipType string) []*Relationship {
	var result []*Relationship
	for _, relationship := range c.All() {
		if relationship.Type == relationshipType {
			result = append(result, relationship)
		}
	}
	return result
}

// Targeting returns the internal relationships whose target is part.
func (c *Relationships) Targeting(part *Part) []*Relationship {
	var result []*Relationship
	for _, relationship := range c.All() {
		if !relationship.External && relationship.Target == part {
			result = append(result, relationship)
		}
	}
	return result
}

// DropTargeting removes every internal relationship whose target is
// part and returns the removed ids.
func (c *Relationships) DropTargeting(part *Part) []string {
	var dropped []string
	for _, relationship := range c.Targeting(part) {
		c.Remove(relationship.ID)
		dropped = append(dropped, relationship.ID)
	}
	return dropped
}

// NextID returns the lowest "rIdN" id (N >= 1) not yet in use.
func (c *Relationships) NextID() string {
	for n := 1; ; n++ {
		id := "rId" + strconv.Itoa(n)
		if _, used := c.byID[id]; !used {
			return id
		}
	}
}

// RelateTo returns the id of an existing relationship of the given type
// to target, adding one under a fresh id when none exists.
func (c *Relationships) RelateTo(target *Part, relationshipType string) string {
	for _, relationship := range c.All() {
		if !relationship.External && relationship.Type == relationshipType && relationship.Target == target {
			return relationship.ID
		}
	}
	relationship, err := c.Add(Relationship{ID: c.NextID(), Type: relationshipType, Target: target})
	if err != nil {
		// NextID is unused and target is non-nil, so Add cannot fail
		// unless target is nil.
		panic(fmt.Sprintf("opc: relating to %v: %v", target, err))
	}
	return relationship.ID
}

// Retarget points an existing internal relationship at a new target,
// keeping its id and type.
func (c *Relationships) Retarget(id string, target *Part) error {
	relationship, ok := c.Get(id)
	if !ok {
		return fmt.Errorf("%w: relationship %s", ErrNotFound, id)
	}
	if relationship.External {
		return fmt.Errorf("relationship %s is external and cannot be retargeted to a part", id)
	}
	if target == nil {
		return fmt.Errorf("retargeting relationship %s: target is nil", id)
	}
	relationship.Target = target
	relationship.TargetRef = ""
	return nil
}

// String renders the collection one relationship per line.
func (c *Relationships) String() string {
	var builder strings.Builder
	builder.WriteString("Relationships{")
	for _, relationship := range c.All() {
		builder.WriteString("\n  ")
		builder.WriteString(relationship.String())
	}
	builder.WriteString("\n}")
	return builder.String()
}

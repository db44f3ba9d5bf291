// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package opc

import (
	"errors"
	"fmt"

	"github.com/deckgraph/deckgraph/lib/binhash"
	"github.com/deckgraph/deckgraph/lib/partname"
)

var (
	// ErrDuplicatePartname is returned when a part is loaded under a
	// name the package already holds.
	ErrDuplicatePartname = errors.New("duplicate partname")

	// ErrNotFound is returned when a named member or relationship does
	// not exist.
	ErrNotFound = errors.New("not found")
)

// Part is a named, typed, content-bearing member of a package.
type Part struct {
	name          partname.Name
	contentType   string
	blob          []byte
	digest        binhash.Digest
	digestCurrent bool
	pkg           *Package
	relationships *Relationships
}

// Name returns the partname.
func (p *Part) Name() partname.Name { return p.name }

// ContentType returns the content type tag.
func (p *Part) ContentType() string { return p.contentType }

// Blob returns the payload. The slice is shared with the part; use
// SetBlob to change it.
func (p *Part) Blob() []byte { return p.blob }

// SetBlob replaces the payload.
func (p *Part) SetBlob(blob []byte) {
	p.blob = blob
	p.digestCurrent = false
}

// Digest returns the payload digest, computed lazily and cached until
// the payload changes.
func (p *Part) Digest() binhash.Digest {
	if !p.digestCurrent {
		p.digest = binhash.Sum(p.blob)
		p.digestCurrent = true
	}
	return p.digest
}

// Package returns the owning package.
func (p *Part) Package() *Package { return p.pkg }

// Relationships returns the outgoing relationship collection.
func (p *Part) Relationships() *Relationships { return p.relationships }

// RelateTo is shorthand for p.Relationships().RelateTo.
func (p *Part) RelateTo(target *Part, relationshipType string) string {
	return p.relationships.RelateTo(target, relationshipType)
}

// Related returns the target of the first internal relationship of the
// given type.
func (p *Part) Related(relationshipType string) (*Part, bool) {
	for _, relationship := range p.relationships.OfType(relationshipType) {
		if relationship.Target != nil {
			return relationship.Target, true
		}
	}
	return nil, false
}

func (p *Part) String() string {
	if p == nil {
		return "<nil part>"
	}
	return string(p.name)
}

// Package is a container of parts plus the package-level relationships
// that anchor the graph.
type Package struct {
	relationships *Relationships
	parts         []*Part
	byName        map[partname.Name]*Part
}

// NewPackage returns an empty package.
func NewPackage() *Package {
	return &Package{
		relationships: newRelationships(),
		byName:        make(map[partname.Name]*Part),
	}
}

// Relationships returns the package-level relationships (_rels/.rels).
func (p *Package) Relationships() *Relationships { return p.relationships }

// LoadPart creates a part with the given name, content type and
// payload and registers it as a member.
func (p *Package) LoadPart(name partname.Name, contentType string, blob []byte) (*Part, error) {
	if _, err := partname.Parse(string(name)); err != nil {
		return nil, err
	}
	if contentType == "" {
		return nil, fmt.Errorf("part %s has no content type", name)
	}
	if _, exists := p.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePartname, name)
	}
	part := &Part{
		name:          name,
		contentType:   contentType,
		blob:          blob,
		pkg:           p,
		relationships: newRelationships(),
	}
	p.parts = append(p.parts, part)
	p.byName[name] = part
	return part, nil
}

// Part returns the member with the given name.
func (p *Package) Part(name partname.Name) (*Part, bool) {
	part, ok := p.byName[name]
	return part, ok
}

// Contains reports whether a member with the given name is registered.
func (p *Package) Contains(name partname.Name) bool {
	_, ok := p.byName[name]
	return ok
}

// Members returns every registered part in load order, including parts
// that are no longer reachable.
func (p *Package) Members() []*Part {
	return append([]*Part(nil), p.parts...)
}

// Reachable returns the parts reachable from the package relationships,
// in breadth-first order.
func (p *Package) Reachable() []*Part {
	var order []*Part
	seen := make(map[*Part]bool)
	queue := []*Relationships{p.relationships}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, relationship := range current.All() {
			target := relationship.Target
			if relationship.External || target == nil || seen[target] {
				continue
			}
			seen[target] = true
			order = append(order, target)
			queue = append(queue, target.relationships)
		}
	}
	return order
}

// Prune unregisters parts that are no longer reachable and returns
// them. Their names become available for reuse.
func (p *Package) Prune() []*Part {
	reachable := make(map[*Part]bool)
	for _, part := range p.Reachable() {
		reachable[part] = true
	}
	var kept, pruned []*Part
	for _, part := range p.parts {
		if reachable[part] {
			kept = append(kept, part)
			continue
		}
		pruned = append(pruned, part)
		delete(p.byName, part.name)
	}
	p.parts = kept
	return pruned
}

// MainPart returns the target of the package's officeDocument
// relationship.
func (p *Package) MainPart() (*Part, error) {
	for _, relationship := range p.relationships.OfType(RelationshipOfficeDocument) {
		if relationship.Target != nil {
			return relationship.Target, nil
		}
	}
	return nil, fmt.Errorf("%w: package has no officeDocument relationship", ErrNotFound)
}

// Referrers returns every relationship, across the package and all of
// its members, whose target is part. The owner of each relationship is
// reported alongside it; a nil owner means the package itself.
func (p *Package) Referrers(part *Part) []Reference {
	var references []Reference
	for _, relationship := range p.relationships.Targeting(part) {
		references = append(references, Reference{Relationship: relationship})
	}
	for _, owner := range p.parts {
		for _, relationship := range owner.relationships.Targeting(part) {
			references = append(references, Reference{Owner: owner, Relationship: relationship})
		}
	}
	return references
}

// Reference pairs a relationship with the part that owns it.
type Reference struct {
	Owner        *Part
	Relationship *Relationship
}

// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package alloc

import (
	"fmt"

	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/partname"
)

// Memo maps keys to lazily produced values.
type Memo[K comparable, V any] struct {
	values map[K]V
}

// NewMemo returns an empty memo.
func NewMemo[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{values: make(map[K]V)}
}

// Get returns the value stored for key. On a miss, produce is called,
// its result is stored and returned. A nil produce turns a miss into a
// zero value without storing anything.
func (m *Memo[K, V]) Get(key K, produce func() V) V {
	if value, ok := m.values[key]; ok {
		return value
	}
	var value V
	if produce == nil {
		return value
	}
	value = produce()
	m.values[key] = value
	return value
}

// Lookup returns the value stored for key without producing one.
func (m *Memo[K, V]) Lookup(key K) (V, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Set stores value for key, replacing any previous value.
func (m *Memo[K, V]) Set(key K, value V) {
	m.values[key] = value
}

// Len returns the number of stored values.
func (m *Memo[K, V]) Len() int {
	return len(m.values)
}

// Allocator is the per-operation cache: partname allocation plus the
// memo of produced parts. Keys are the logical sources of the
// operation: source parts for a clone, model nodes for a
// materialization.
type Allocator struct {
	pkg     *opc.Package
	indices map[partname.Template]int
	issued  map[partname.Name]bool
	*Memo[any, *opc.Part]
}

// New returns an allocator for one operation writing into pkg. Every
// naming family starts from the highest index already present among
// the package members.
func New(pkg *opc.Package) *Allocator {
	a := &Allocator{
		pkg:     pkg,
		indices: make(map[partname.Template]int),
		issued:  make(map[partname.Name]bool),
		Memo:    NewMemo[any, *opc.Part](),
	}
	for _, part := range pkg.Members() {
		name := part.Name()
		template := name.Template()
		a.indices[template] = max(a.indices[template], name.Index())
	}
	return a
}

// Package returns the destination package.
func (a *Allocator) Package() *opc.Package { return a.pkg }

// NextName returns a fresh name in the family of template. Candidates
// already present in the package are skipped. Issuing a name twice is a
// programming error and panics.
func (a *Allocator) NextName(template partname.Template) partname.Name {
	for {
		a.indices[template]++
		candidate := template.Format(a.indices[template])
		if a.pkg.Contains(candidate) {
			continue
		}
		if a.issued[candidate] {
			panic(fmt.Sprintf("alloc: partname %s issued twice", candidate))
		}
		a.issued[candidate] = true
		return candidate
	}
}

// IdentityKey identifies a session-cached clone: the source part and
// whether the clone was produced with the opt-in tier duplicated.
// Clones made under different tiers point at different ancestors and
// are never interchangeable.
type IdentityKey struct {
	Source        *opc.Part
	DuplicateTier bool
}

// IdentityCache is the session-scoped memo of identity-significant
// clones. Create one per presentation and reuse it for every operation.
type IdentityCache struct {
	*Memo[IdentityKey, *opc.Part]
}

// NewIdentityCache returns an empty session cache.
func NewIdentityCache() *IdentityCache {
	return &IdentityCache{Memo: NewMemo[IdentityKey, *opc.Part]()}
}

// Forget drops every entry whose source or clone is part. Used when a
// part leaves the presentation.
func (c *IdentityCache) Forget(part *opc.Part) {
	for key, clone := range c.values {
		if key.Source == part || clone == part {
			delete(c.values, key)
		}
	}
}

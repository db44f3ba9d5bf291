// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package opc

// IsSimilar reports whether a and b are interchangeable copies of each
// other: same naming family, same content type, byte-identical payload
// and same owning package. When withRelationships is true their
// relationship collections must also be equal, comparing internal
// targets with the same predicate.
//
// The predicate is total. A nil part is similar only to another nil
// part. Cyclic graphs terminate: a pair of parts already under
// comparison is assumed similar.
func IsSimilar(a, b *Part, withRelationships bool) bool {
	return newComparison(withRelationships).parts(a, b)
}

// Equal reports whether c and other hold the same relationship ids,
// each with the same type, external flag and target. External targets
// compare by reference string; internal targets compare by IsSimilar,
// including the targets' own relationships when recursive is true.
func (c *Relationships) Equal(other *Relationships, recursive bool) bool {
	return newComparison(recursive).relationships(c, other)
}

type partPair struct{ a, b *Part }

type comparison struct {
	recursive bool
	active    map[partPair]bool
}

func newComparison(recursive bool) *comparison {
	return &comparison{recursive: recursive, active: make(map[partPair]bool)}
}

func (c *comparison) parts(a, b *Part) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if !a.name.IsSimilar(b.name) || a.contentType != b.contentType || a.pkg != b.pkg {
		return false
	}
	if len(a.blob) != len(b.blob) || a.Digest() != b.Digest() {
		return false
	}
	if !c.recursive {
		return true
	}
	pair := partPair{a, b}
	if c.active[pair] {
		return true
	}
	c.active[pair] = true
	return c.relationships(a.relationships, b.relationships)
}

func (c *comparison) relationships(x, y *Relationships) bool {
	if x.Len() != y.Len() {
		return false
	}
	for _, left := range x.All() {
		right, ok := y.Get(left.ID)
		if !ok {
			return false
		}
		if left.Type != right.Type || left.External != right.External {
			return false
		}
		if left.External {
			if left.TargetRef != right.TargetRef {
				return false
			}
			continue
		}
		if left.Target == nil || right.Target == nil {
			if left.Target != right.Target || left.TargetRef != right.TargetRef {
				return false
			}
			continue
		}
		if !c.parts(left.Target, right.Target) {
			return false
		}
	}
	return true
}

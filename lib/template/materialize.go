// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/deckgraph/deckgraph/lib/alloc"
	"github.com/deckgraph/deckgraph/lib/binhash"
	"github.com/deckgraph/deckgraph/lib/clone"
	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/partname"
	"github.com/deckgraph/deckgraph/lib/policy"
)

// Hooks receives format-specific callbacks during materialization.
type Hooks interface {
	// Created is called after part was created from node and before
	// any edge of node is attached.
	Created(node *Node, part *opc.Part) error

	// Bound is called after a relationship was attached to owner, a
	// part created by this materialization.
	Bound(owner *opc.Part, relationship *opc.Relationship, decision clone.Decision) error
}

// Options configures Materialize.
type Options struct {
	// Policy decides which targets may be reused from the destination
	// and which relationships get back-references. Nil means
	// policy.Default().
	Policy *policy.Policy

	// Hooks may be nil.
	Hooks Hooks

	// Logger receives one Debug record per edge. Nil discards.
	Logger *slog.Logger
}

// Materialize produces the part for node in the allocator's package,
// creating it and its subgraph on first use within the allocator's
// operation.
func Materialize(node *Node, allocator *alloc.Allocator, options Options) (*opc.Part, error) {
	if options.Policy == nil {
		options.Policy = policy.Default()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &materializer{allocator: allocator, options: options}
	return m.materialize(node, nil)
}

type materializer struct {
	allocator *alloc.Allocator
	options   Options
	existing  map[existingKey][]*opc.Part
}

type existingKey struct {
	template    partname.Template
	contentType string
}

// materialize produces node. owner is the slide the subgraph belongs
// to; nil when node is itself the root.
func (m *materializer) materialize(node *Node, owner *opc.Part) (*opc.Part, error) {
	if produced, ok := m.allocator.Lookup(node); ok {
		return produced, nil
	}

	name := m.allocator.NextName(node.Template)
	part, err := m.allocator.Package().LoadPart(name, node.ContentType, append([]byte(nil), node.Blob...))
	if err != nil {
		return nil, fmt.Errorf("materializing %s: %w", name, err)
	}
	m.allocator.Set(node, part)
	if owner == nil {
		owner = part
	}

	if m.options.Hooks != nil {
		if err := m.options.Hooks.Created(node, part); err != nil {
			return nil, fmt.Errorf("materializing %s: %w", name, err)
		}
	}

	for _, edge := range node.Edges {
		target, decision, err := m.resolve(edge, owner)
		if err != nil {
			return nil, err
		}
		m.options.Logger.Debug("edge resolved",
			"source", part.Name(),
			"target", describe(edge, target),
			"reltype", opc.ShortType(edge.Type),
			"decision", decision,
		)

		attached, err := part.Relationships().Add(opc.Relationship{
			ID:        edge.ID,
			Type:      edge.Type,
			Target:    target,
			TargetRef: edge.TargetRef,
			External:  edge.External,
		})
		if err != nil {
			return nil, fmt.Errorf("attaching %s of %s: %w", edge.ID, part.Name(), err)
		}
		if m.options.Hooks != nil {
			if err := m.options.Hooks.Bound(part, attached, decision); err != nil {
				return nil, fmt.Errorf("binding %s of %s: %w", edge.ID, part.Name(), err)
			}
		}

		if decision != clone.Copied {
			continue
		}
		if reverse, ok := m.options.Policy.BackReference(edge.Type); ok {
			target.RelateTo(part, reverse)
		}
	}
	return part, nil
}

func (m *materializer) resolve(edge Edge, owner *opc.Part) (*opc.Part, clone.Decision, error) {
	switch {
	case edge.External:
		return nil, clone.External, nil
	case edge.Owner:
		return owner, clone.Memoized, nil
	case edge.Target == nil:
		return nil, "", fmt.Errorf("edge %s has neither a target nor an owner placeholder", edge.ID)
	}

	if produced, ok := m.allocator.Lookup(edge.Target); ok {
		return produced, clone.Memoized, nil
	}
	if m.reusable(edge) {
		if existing := m.findExisting(edge.Target); existing != nil {
			return existing, clone.Shared, nil
		}
	}
	produced, err := m.materialize(edge.Target, owner)
	if err != nil {
		return nil, "", err
	}
	return produced, clone.Copied, nil
}

// reusable reports whether the target of edge may be an existing part
// of the destination instead of a fresh one.
func (m *materializer) reusable(edge Edge) bool {
	rules := m.options.Policy
	return rules.IsShared(edge.Type, false) || rules.IsIdentitySignificant(edge.Target.ContentType)
}

// findExisting returns a destination part in the same name family and
// of the same content type as node. Payloads are not required to match,
// since hooks rewrite shared parts such as masters; among several
// candidates the one with node's exact payload wins, then the first.
func (m *materializer) findExisting(node *Node) *opc.Part {
	if m.existing == nil {
		m.existing = make(map[existingKey][]*opc.Part)
		for _, part := range m.allocator.Package().Members() {
			key := existingKey{
				template:    lowerExtension(part.Name()).Template(),
				contentType: part.ContentType(),
			}
			m.existing[key] = append(m.existing[key], part)
		}
	}
	candidates := m.existing[existingKey{
		template:    node.Template,
		contentType: node.ContentType,
	}]
	if len(candidates) == 0 {
		return nil
	}
	digest := binhash.Sum(node.Blob)
	for _, candidate := range candidates {
		if candidate.Digest() == digest {
			return candidate
		}
	}
	return candidates[0]
}

func describe(edge Edge, target *opc.Part) string {
	if target != nil {
		return string(target.Name())
	}
	return edge.TargetRef
}

// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package clone

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/deckgraph/deckgraph/lib/alloc"
	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/policy"
)

// Decision records how one relationship of a source was resolved.
type Decision string

const (
	Closed   Decision = "closed"
	External Decision = "external"
	Dangling Decision = "dangling"
	Memoized Decision = "memoized"
	Shared   Decision = "shared"
	Cached   Decision = "cached"
	Static   Decision = "static"
	Copied   Decision = "copied"
)

// Hooks receives format-specific callbacks during a clone.
type Hooks interface {
	// Copied is called after clone was created as the shallow copy of
	// source and before any relationship of source is visited. It may
	// rewrite the payload of clone.
	Copied(source, clone *opc.Part) error

	// Bound is called after a relationship was attached to owner, a
	// copy produced by this operation. decision tells how the target
	// was resolved.
	Bound(owner *opc.Part, relationship *opc.Relationship, decision Decision) error
}

// Options configures a Cloner.
type Options struct {
	// Policy decides copy versus share. Nil means policy.Default().
	Policy *policy.Policy

	// Identity is the session cache. Nil disables cross-operation
	// convergence of identity-significant copies.
	Identity *alloc.IdentityCache

	// DuplicateMaster opts in to copying the opt-in tier (slide
	// masters) instead of sharing it.
	DuplicateMaster bool

	// Hooks may be nil.
	Hooks Hooks

	// Logger receives one Debug record per relationship decision and a
	// Warn record per dropped dangling relationship. Nil discards.
	Logger *slog.Logger
}

// Cloner copies parts into the allocator's package. A Cloner belongs
// to one operation.
type Cloner struct {
	allocator *alloc.Allocator
	options   Options
	logger    *slog.Logger
}

// New returns a Cloner for one operation.
func New(allocator *alloc.Allocator, options Options) *Cloner {
	if options.Policy == nil {
		options.Policy = policy.Default()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cloner{allocator: allocator, options: options, logger: logger}
}

// Clone returns the copy of source produced by this operation, making
// it (and whatever it owns) on first use.
func (c *Cloner) Clone(source *opc.Part) (*opc.Part, error) {
	if produced, ok := c.allocator.Lookup(source); ok {
		return produced, nil
	}

	name := c.allocator.NextName(source.Name().Template())
	blob := append([]byte(nil), source.Blob()...)
	produced, err := c.allocator.Package().LoadPart(name, source.ContentType(), blob)
	if err != nil {
		return nil, fmt.Errorf("copying %s: %w", source.Name(), err)
	}
	c.allocator.Set(source, produced)

	if c.options.Hooks != nil {
		if err := c.options.Hooks.Copied(source, produced); err != nil {
			return nil, fmt.Errorf("copying %s: %w", source.Name(), err)
		}
	}

	for _, relationship := range source.Relationships().All() {
		target, decision, err := c.resolve(source, relationship)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("relationship resolved",
			"source", source.Name(),
			"target", describeTarget(relationship, target),
			"reltype", opc.ShortType(relationship.Type),
			"decision", decision,
		)
		switch decision {
		case Closed:
			continue
		case Dangling:
			c.logger.Warn("dropping dangling relationship",
				"source", source.Name(),
				"id", relationship.ID,
				"reference", relationship.TargetRef,
			)
			continue
		}

		attached, err := produced.Relationships().Add(opc.Relationship{
			ID:        relationship.ID,
			Type:      relationship.Type,
			Target:    target,
			TargetRef: relationship.TargetRef,
			External:  relationship.External,
		})
		if err != nil {
			return nil, fmt.Errorf("attaching %s of %s: %w", relationship.ID, produced.Name(), err)
		}
		if c.options.Hooks != nil {
			if err := c.options.Hooks.Bound(produced, attached, decision); err != nil {
				return nil, fmt.Errorf("binding %s of %s: %w", relationship.ID, produced.Name(), err)
			}
		}
	}
	return produced, nil
}

// resolve decides what the copy of relationship points at.
func (c *Cloner) resolve(owner *opc.Part, relationship *opc.Relationship) (*opc.Part, Decision, error) {
	rules := c.options.Policy
	if rules.IsClosed(owner.ContentType(), relationship.Type) {
		return nil, Closed, nil
	}
	if relationship.External {
		return nil, External, nil
	}
	target := relationship.Target
	if target == nil {
		return nil, Dangling, nil
	}
	if produced, ok := c.allocator.Lookup(target); ok {
		return produced, Memoized, nil
	}
	if !rules.IsEligible(relationship.Type, target.ContentType()) {
		return target, Shared, nil
	}

	key := alloc.IdentityKey{Source: target, DuplicateTier: c.options.DuplicateMaster}
	if c.options.Identity != nil {
		if cached, ok := c.options.Identity.Lookup(key); ok {
			return cached, Cached, nil
		}
	}
	if rules.IsShared(relationship.Type, c.options.DuplicateMaster) {
		return target, Static, nil
	}

	produced, err := c.Clone(target)
	if err != nil {
		return nil, "", err
	}
	if c.options.Identity != nil && rules.IsIdentitySignificant(target.ContentType()) {
		c.options.Identity.Set(key, produced)
	}
	return produced, Copied, nil
}

func describeTarget(relationship *opc.Relationship, target *opc.Part) string {
	if target != nil {
		return string(target.Name())
	}
	return relationship.TargetRef
}

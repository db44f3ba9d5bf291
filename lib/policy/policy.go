// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/jsonc"

	"github.com/deckgraph/deckgraph/lib/opc"
)

//go:embed default.jsonc
var defaultTables []byte

// Tables is the authored form of a policy. Every name is a short alias
// or a full type URI.
type Tables struct {
	Static         []string            `yaml:"static" json:"static"`
	OptIn          []string            `yaml:"opt_in" json:"opt_in"`
	Restricted     map[string][]string `yaml:"restricted" json:"restricted"`
	Closed         map[string][]string `yaml:"closed" json:"closed"`
	Identity       []string            `yaml:"identity" json:"identity"`
	BackReferences map[string]string   `yaml:"back_references" json:"back_references"`
}

// Parse reads JSONC (JSON with comments and trailing commas) tables.
func Parse(data []byte) (*Tables, error) {
	var tables Tables
	if err := json.Unmarshal(jsonc.ToJSON(data), &tables); err != nil {
		return nil, fmt.Errorf("parsing policy: %w", err)
	}
	return &tables, nil
}

// ReadFile reads JSONC tables from path.
func ReadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tables, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

// DefaultTables returns the embedded default tables.
func DefaultTables() *Tables {
	tables, err := Parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded default is invalid: %v", err))
	}
	return tables
}

// Default returns the compiled embedded default policy.
func Default() *Policy {
	compiled, err := DefaultTables().Compile()
	if err != nil {
		panic(fmt.Sprintf("policy: embedded default does not compile: %v", err))
	}
	return compiled
}

// Policy is the compiled lookup form of Tables. A Policy is immutable
// and safe to share.
type Policy struct {
	static         map[string]bool
	optIn          map[string]bool
	restricted     map[string]map[string]bool
	closed         map[string]map[string]bool
	identity       map[string]bool
	backReferences map[string]string
}

// Compile resolves every alias in t. All unknown names are reported
// together.
func (t *Tables) Compile() (*Policy, error) {
	var errs []error
	relationshipType := func(name string) string {
		uri, ok := opc.RelationshipType(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown relationship type %q", name))
		}
		return uri
	}
	contentType := func(name string) string {
		resolved, ok := opc.ContentType(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown content type %q", name))
		}
		return resolved
	}

	p := &Policy{
		static:         make(map[string]bool),
		optIn:          make(map[string]bool),
		restricted:     make(map[string]map[string]bool),
		closed:         make(map[string]map[string]bool),
		identity:       make(map[string]bool),
		backReferences: make(map[string]string),
	}
	for _, name := range t.Static {
		p.static[relationshipType(name)] = true
	}
	for _, name := range t.OptIn {
		p.optIn[relationshipType(name)] = true
	}
	for relName, contentNames := range t.Restricted {
		eligible := make(map[string]bool)
		for _, name := range contentNames {
			eligible[contentType(name)] = true
		}
		p.restricted[relationshipType(relName)] = eligible
	}
	for ownerName, relNames := range t.Closed {
		untraversed := make(map[string]bool)
		for _, name := range relNames {
			untraversed[relationshipType(name)] = true
		}
		p.closed[contentType(ownerName)] = untraversed
	}
	for _, name := range t.Identity {
		p.identity[contentType(name)] = true
	}
	for forward, reverse := range t.BackReferences {
		p.backReferences[relationshipType(forward)] = relationshipType(reverse)
	}

	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return nil, fmt.Errorf("compiling policy: %w", errors.Join(errs...))
	}
	return p, nil
}

// IsClosed reports whether relationships of relationshipType are left
// untraversed beneath a part of ownerContentType.
func (p *Policy) IsClosed(ownerContentType, relationshipType string) bool {
	return p.closed[ownerContentType][relationshipType]
}

// IsEligible reports whether duplication is attempted for a target of
// targetContentType reached through relationshipType. Relationship types
// without a restriction are always eligible.
func (p *Policy) IsEligible(relationshipType, targetContentType string) bool {
	eligible, restricted := p.restricted[relationshipType]
	if !restricted {
		return true
	}
	return eligible[targetContentType]
}

// IsShared reports whether targets of relationshipType are shared
// rather than duplicated. Opt-in types are shared unless duplicateTier
// is set.
func (p *Policy) IsShared(relationshipType string, duplicateTier bool) bool {
	if p.static[relationshipType] {
		return true
	}
	return p.optIn[relationshipType] && !duplicateTier
}

// IsIdentitySignificant reports whether clones of contentType are
// remembered for the whole session.
func (p *Policy) IsIdentitySignificant(contentType string) bool {
	return p.identity[contentType]
}

// BackReference returns the reverse relationship type a materialized
// target of relationshipType points back to its owner with.
func (p *Policy) BackReference(relationshipType string) (string, bool) {
	reverse, ok := p.backReferences[relationshipType]
	return reverse, ok
}

// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"path"
	"strings"

	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/partname"
	"github.com/deckgraph/deckgraph/lib/policy"
)

// Node is the captured snapshot of one part. Nodes are never modified
// after capture.
type Node struct {
	Template    partname.Template
	ContentType string
	Blob        []byte

	// SlideID is the slide id of a slide root, 0 for every other node.
	SlideID uint32

	Edges []Edge
}

// Edge is a captured relationship.
type Edge struct {
	ID        string
	Type      string
	External  bool
	TargetRef string

	// Target is the captured target of an internal edge. Nil for
	// external edges and owner placeholders.
	Target *Node

	// Owner marks a placeholder for the slide that will own the
	// materialized subgraph.
	Owner bool
}

// Model is the captured set of slides, in presentation order.
type Model struct {
	Slides []*Node
}

// ByIndex returns the slide at index. Negative indices count from the
// end. Out-of-range indices return nil.
func (m *Model) ByIndex(index int) *Node {
	if index < 0 {
		index += len(m.Slides)
	}
	if index < 0 || index >= len(m.Slides) {
		return nil
	}
	return m.Slides[index]
}

// ByID returns the slide captured with the given slide id, or nil.
func (m *Model) ByID(id uint32) *Node {
	for _, slide := range m.Slides {
		if slide.SlideID == id {
			return slide
		}
	}
	return nil
}

// Nodes returns every distinct node reachable from the slides, in
// depth-first order of first visit.
func (m *Model) Nodes() []*Node {
	var order []*Node
	seen := make(map[*Node]bool)
	var visit func(*Node)
	visit = func(node *Node) {
		if node == nil || seen[node] {
			return
		}
		seen[node] = true
		order = append(order, node)
		for _, edge := range node.Edges {
			visit(edge.Target)
		}
	}
	for _, slide := range m.Slides {
		visit(slide)
	}
	return order
}

// Root is a slide to capture.
type Root struct {
	Part    *opc.Part
	SlideID uint32
}

// Capture snapshots the subgraphs of roots. Relationships that are
// closed for their owner are not captured, nor are dangling ones.
func Capture(roots []Root, rules *policy.Policy) *Model {
	if rules == nil {
		rules = policy.Default()
	}
	c := &capturer{rules: rules, nodes: make(map[*opc.Part]*Node)}
	model := &Model{}
	for _, root := range roots {
		node := c.node(root.Part, root.Part)
		node.SlideID = root.SlideID
		model.Slides = append(model.Slides, node)
	}
	return model
}

type capturer struct {
	rules *policy.Policy
	nodes map[*opc.Part]*Node
}

func (c *capturer) node(part, root *opc.Part) *Node {
	if node, ok := c.nodes[part]; ok {
		return node
	}
	node := &Node{
		Template:    lowerExtension(part.Name()).Template(),
		ContentType: part.ContentType(),
		Blob:        append([]byte(nil), part.Blob()...),
	}
	c.nodes[part] = node

	for _, relationship := range part.Relationships().All() {
		if c.rules.IsClosed(part.ContentType(), relationship.Type) {
			continue
		}
		edge := Edge{
			ID:        relationship.ID,
			Type:      relationship.Type,
			External:  relationship.External,
			TargetRef: relationship.TargetRef,
		}
		switch {
		case relationship.External:
		case relationship.Target == nil:
			continue
		case relationship.Type == opc.RelationshipSlide:
			if part == root || relationship.Target != root {
				continue
			}
			edge.Owner = true
		default:
			edge.Target = c.node(relationship.Target, root)
		}
		node.Edges = append(node.Edges, edge)
	}
	return node
}

func lowerExtension(name partname.Name) partname.Name {
	extension := path.Ext(string(name))
	if extension == "" {
		return name
	}
	return partname.Name(strings.TrimSuffix(string(name), extension) + strings.ToLower(extension))
}

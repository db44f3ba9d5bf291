// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package deck

import (
	"fmt"
	"slices"

	"github.com/deckgraph/deckgraph/lib/clone"
	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/pml"
	"github.com/deckgraph/deckgraph/lib/template"
)

// pmlHooks keeps presentation payloads consistent while lib/clone or
// lib/template adds parts:
//
//   - a copied theme gets the next display name ("Design" becomes
//     "1_Design");
//   - a new master starts with an empty layout-id list and is entered
//     in the presentation's master-id list;
//   - a new layout is entered in the layout-id list of the master it
//     is bound to, whether that master is new or shared;
//   - a slide materialized from a model starts with every slide-jump
//     action unbound.
//
// Master and layout ids come from the presentation-wide counter.
type pmlHooks struct {
	presentation *Presentation
}

var (
	_ clone.Hooks    = (*pmlHooks)(nil)
	_ template.Hooks = (*pmlHooks)(nil)
)

func (h *pmlHooks) Copied(_, part *opc.Part) error {
	if part.ContentType() == opc.ContentTypeTheme {
		h.renameTheme(part)
	}
	return h.created(part)
}

func (h *pmlHooks) Created(_ *template.Node, part *opc.Part) error {
	if part.ContentType() == opc.ContentTypeSlide {
		return unbindJumps(part)
	}
	return h.created(part)
}

// unbindJumps clears the relationship id of every slide-jump action of
// slide. Models carry no slide-to-slide relationships, so ids left in a
// materialized payload would point nowhere.
func unbindJumps(slide *opc.Part) error {
	blob := slide.Blob()
	ids, err := pml.JumpRelIDs(blob)
	if err != nil {
		return fmt.Errorf("reading jump actions of %s: %w", slide.Name(), err)
	}
	for index, id := range ids {
		if id == "" {
			continue
		}
		if blob, err = pml.SetJumpRelID(blob, index, ""); err != nil {
			return fmt.Errorf("unbinding jump action %d of %s: %w", index, slide.Name(), err)
		}
	}
	slide.SetBlob(blob)
	return nil
}

func (h *pmlHooks) created(part *opc.Part) error {
	if part.ContentType() != opc.ContentTypeSlideMaster {
		return nil
	}
	blob, err := pml.SetLayoutIDs(part.Blob(), nil)
	if err != nil {
		return fmt.Errorf("clearing layout list of %s: %w", part.Name(), err)
	}
	part.SetBlob(blob)
	return h.registerMaster(part)
}

// renameTheme advances the display name of a copied theme. A payload
// that cannot be parsed is left as it is.
func (h *pmlHooks) renameTheme(theme *opc.Part) {
	blob, err := pml.RenameTheme(theme.Blob())
	if err != nil {
		h.presentation.logger.Warn("leaving theme name unchanged",
			"theme", theme.Name(),
			"error", err,
		)
		return
	}
	theme.SetBlob(blob)
}

func (h *pmlHooks) registerMaster(master *opc.Part) error {
	presentation := h.presentation.part
	relID := presentation.RelateTo(master, opc.RelationshipSlideMaster)
	entries, err := pml.MasterIDs(presentation.Blob())
	if err != nil {
		return fmt.Errorf("reading master list of %s: %w", presentation.Name(), err)
	}
	if listed(entries, relID) {
		return nil
	}
	entries = append(entries, pml.Entry{ID: h.presentation.nextMasterID(), RelID: relID})
	blob, err := pml.SetMasterIDs(presentation.Blob(), entries)
	if err != nil {
		return fmt.Errorf("writing master list of %s: %w", presentation.Name(), err)
	}
	presentation.SetBlob(blob)
	return nil
}

func (h *pmlHooks) Bound(owner *opc.Part, relationship *opc.Relationship, _ clone.Decision) error {
	if owner.ContentType() != opc.ContentTypeSlideLayout || relationship.Type != opc.RelationshipSlideMaster {
		return nil
	}
	master := relationship.Target
	if master == nil {
		return nil
	}

	relID := master.RelateTo(owner, opc.RelationshipSlideLayout)
	entries, err := pml.LayoutIDs(master.Blob())
	if err != nil {
		return fmt.Errorf("reading layout list of %s: %w", master.Name(), err)
	}
	if listed(entries, relID) {
		return nil
	}
	entries = append(entries, pml.Entry{ID: h.presentation.nextMasterID(), RelID: relID})
	blob, err := pml.SetLayoutIDs(master.Blob(), entries)
	if err != nil {
		return fmt.Errorf("writing layout list of %s: %w", master.Name(), err)
	}
	master.SetBlob(blob)
	return nil
}

func listed(entries []pml.Entry, relID string) bool {
	return slices.ContainsFunc(entries, func(entry pml.Entry) bool { return entry.RelID == relID })
}

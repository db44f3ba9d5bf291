// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package deck

import (
	"errors"
	"slices"
	"testing"

	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/pml"
)

func jumpRelID(t *testing.T, slide *Slide, index int) string {
	t.Helper()
	ids, err := pml.JumpRelIDs(slide.Part().Blob())
	if err != nil {
		t.Fatalf("JumpRelIDs: %v", err)
	}
	if index >= len(ids) {
		t.Fatalf("slide has %d jump actions", len(ids))
	}
	return ids[index]
}

func TestLinkTable(t *testing.T) {
	t.Parallel()

	_, presentation := openFixture(t)
	slide := presentation.Slide(ByIndex(0))

	if err := slide.Relink(map[LinkKey]SlideRef{
		NamedKey("next"):  ByIndex(1),
		ActionKey(0):      ByID(258),
		NamedKey("index"): ByIndex(0),
	}); err != nil {
		t.Fatalf("Relink: %v", err)
	}
	want := []LinkKey{ActionKey(0), NamedKey("index"), NamedKey("next")}
	if got := slide.Links(); !slices.Equal(got, want) {
		t.Errorf("Links() = %v, want %v", got, want)
	}
	if target, ok := slide.Link(ActionKey(0)); !ok || target != ByID(258) {
		t.Errorf("Link(action 0) = %v, %v", target, ok)
	}
	if _, ok := slide.Binding(ActionKey(0)); ok {
		t.Error("a freshly assigned link should be unbound")
	}

	if !slide.Unassign(NamedKey("index")) || slide.Unassign(NamedKey("index")) {
		t.Error("Unassign should report presence exactly once")
	}
	slide.Clear()
	if len(slide.Links()) != 0 {
		t.Errorf("Links() after Clear = %v", slide.Links())
	}
}

func TestAssignRejectsMissingAction(t *testing.T) {
	t.Parallel()

	_, presentation := openFixture(t)
	err := presentation.Slide(ByIndex(2)).Assign(ActionKey(0), ByIndex(0))
	if !errors.Is(err, pml.ErrElementNotFound) {
		t.Errorf("Assign error = %v, want ErrElementNotFound", err)
	}
	if err := presentation.Slide(ByIndex(2)).Assign(NamedKey("anything"), ByIndex(0)); err != nil {
		t.Errorf("Assign(named) error = %v", err)
	}
}

func TestResolveLinks(t *testing.T) {
	t.Parallel()

	fixture, presentation := openFixture(t)
	slide := presentation.Slide(ByIndex(0))

	// The existing relationship to the target is reused.
	if err := slide.Assign(ActionKey(0), ByID(257)); err != nil {
		t.Fatal(err)
	}
	if err := slide.ResolveLinks(presentation, false); err != nil {
		t.Fatalf("ResolveLinks: %v", err)
	}
	if id, ok := slide.Binding(ActionKey(0)); !ok || id != "rId4" {
		t.Errorf("Binding = %q, %v; want rId4", id, ok)
	}

	// Without update, a new target gets its own relationship.
	if err := slide.Assign(ActionKey(0), ByID(258)); err != nil {
		t.Fatal(err)
	}
	if err := slide.ResolveLinks(presentation, false); err != nil {
		t.Fatal(err)
	}
	id, _ := slide.Binding(ActionKey(0))
	if id == "rId4" {
		t.Fatal("binding was not moved to a new relationship")
	}
	relationship, _ := fixture.Slides[0].Relationships().Get(id)
	if relationship == nil || relationship.Target != fixture.Slides[2] {
		t.Errorf("relationship %s does not target slide 3", id)
	}
	if old, _ := fixture.Slides[0].Relationships().Get("rId4"); old == nil || old.Target != fixture.Slides[1] {
		t.Error("the previous relationship should be left in place")
	}
	if got := jumpRelID(t, slide, 0); got != id {
		t.Errorf("payload jump action r:id = %q, want %q", got, id)
	}
}

func TestResolveLinksUpdate(t *testing.T) {
	t.Parallel()

	fixture, presentation := openFixture(t)
	slide := presentation.Slide(ByIndex(0))
	if err := slide.Assign(ActionKey(0), ByID(257)); err != nil {
		t.Fatal(err)
	}
	if err := slide.ResolveLinks(presentation, true); err != nil {
		t.Fatal(err)
	}
	if err := slide.Assign(ActionKey(0), ByIndex(2)); err != nil {
		t.Fatal(err)
	}
	if err := slide.ResolveLinks(presentation, true); err != nil {
		t.Fatal(err)
	}

	if id, _ := slide.Binding(ActionKey(0)); id != "rId4" {
		t.Errorf("Binding = %q, want rId4 retargeted in place", id)
	}
	relationship, _ := fixture.Slides[0].Relationships().Get("rId4")
	if relationship.Target != fixture.Slides[2] {
		t.Errorf("rId4 targets %s, want slide 3", relationship.Target.Name())
	}
	if count := len(fixture.Slides[0].Relationships().OfType(opc.RelationshipSlide)); count != 1 {
		t.Errorf("slide has %d slide relationships, want 1", count)
	}
}

func TestResolveLinksUpdateSharedRelationship(t *testing.T) {
	t.Parallel()

	fixture, presentation := openFixture(t)
	slide := presentation.Slide(ByIndex(0))
	if err := slide.Assign(ActionKey(0), ByID(257)); err != nil {
		t.Fatal(err)
	}
	if err := slide.Assign(NamedKey("next"), ByID(257)); err != nil {
		t.Fatal(err)
	}
	if err := slide.ResolveLinks(presentation, true); err != nil {
		t.Fatal(err)
	}
	for _, key := range []LinkKey{ActionKey(0), NamedKey("next")} {
		if id, _ := slide.Binding(key); id != "rId4" {
			t.Fatalf("Binding(%s) = %q, want rId4", key, id)
		}
	}

	// Moving one link must not drag the other along with it.
	if err := slide.Assign(NamedKey("next"), ByIndex(2)); err != nil {
		t.Fatal(err)
	}
	if err := slide.ResolveLinks(presentation, true); err != nil {
		t.Fatal(err)
	}

	if id, _ := slide.Binding(ActionKey(0)); id != "rId4" {
		t.Errorf("Binding(action 0) = %q, want rId4", id)
	}
	if relationship, _ := fixture.Slides[0].Relationships().Get("rId4"); relationship == nil || relationship.Target != fixture.Slides[1] {
		t.Error("rId4 no longer targets slide 2")
	}
	if got := jumpRelID(t, slide, 0); got != "rId4" {
		t.Errorf("payload jump action r:id = %q, want rId4", got)
	}

	id, ok := slide.Binding(NamedKey("next"))
	if !ok || id == "rId4" {
		t.Fatalf("Binding(next) = %q, %v; want a relationship of its own", id, ok)
	}
	if relationship, _ := fixture.Slides[0].Relationships().Get(id); relationship == nil || relationship.Target != fixture.Slides[2] {
		t.Errorf("relationship %s does not target slide 3", id)
	}
}

func TestResolveLinksUnresolvedTarget(t *testing.T) {
	t.Parallel()

	fixture, presentation := openFixture(t)
	slide := presentation.Slide(ByIndex(0))
	if err := slide.Assign(ActionKey(0), ByID(257)); err != nil {
		t.Fatal(err)
	}
	if err := slide.Assign(NamedKey("missing"), ByID(999)); err != nil {
		t.Fatal(err)
	}
	if err := slide.ResolveLinks(presentation, false); err != nil {
		t.Fatal(err)
	}
	if _, ok := slide.Binding(NamedKey("missing")); ok {
		t.Error("link to a missing slide was bound")
	}

	// Removing the target unbinds the link; resolving clears the action.
	if _, err := presentation.RemoveSlide(ByID(257), RemoveOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := slide.Binding(ActionKey(0)); ok {
		t.Error("link is still bound after its target was removed")
	}
	if err := presentation.ResolveLinks(false); err != nil {
		t.Fatal(err)
	}
	if got := jumpRelID(t, slide, 0); got != "" {
		t.Errorf("payload jump action r:id = %q, want empty", got)
	}
	if _, ok := fixture.Slides[0].Relationships().Get("rId4"); ok {
		t.Error("relationship to the removed slide came back")
	}
}

func TestDuplicateCopiesLinkTable(t *testing.T) {
	t.Parallel()

	_, presentation := openFixture(t)
	source := presentation.Slide(ByIndex(0))
	if err := source.Assign(ActionKey(0), ByIndex(2)); err != nil {
		t.Fatal(err)
	}
	duplicate, err := presentation.DuplicateSlide(ByIndex(0), DuplicateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if target, ok := duplicate.Link(ActionKey(0)); !ok || target != ByIndex(2) {
		t.Errorf("duplicate Link(action 0) = %v, %v", target, ok)
	}

	// The tables are independent after the copy.
	duplicate.Clear()
	if len(source.Links()) != 1 {
		t.Error("clearing the duplicate's table changed the source's")
	}

	if err := presentation.ResolveLinks(false); err != nil {
		t.Fatal(err)
	}
	id, _ := duplicate.Binding(ActionKey(0))
	if id != "" {
		t.Errorf("cleared duplicate has binding %q", id)
	}
	sourceID, _ := source.Binding(ActionKey(0))
	relationship, _ := source.Part().Relationships().Get(sourceID)
	if relationship == nil || relationship.Target != presentation.Slide(ByIndex(2)).Part() {
		t.Error("source link was not bound to slide 3")
	}
}

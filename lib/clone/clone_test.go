// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package clone

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/deckgraph/deckgraph/lib/alloc"
	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/partname"
)

// graph is a small slide subgraph:
//
//	slide -> layout -> master -> theme
//	master -> layout (closed)
//	slide -> image, notes -> image
//	slide -> notes -> slide
//	slide -> hyperlink (external)
type graph struct {
	pkg    *opc.Package
	slide  *opc.Part
	layout *opc.Part
	master *opc.Part
	theme  *opc.Part
	image  *opc.Part
	notes  *opc.Part
}

func load(t *testing.T, pkg *opc.Package, name, contentType string) *opc.Part {
	t.Helper()
	part, err := pkg.LoadPart(partname.MustParse(name), contentType, []byte(name))
	if err != nil {
		t.Fatal(err)
	}
	return part
}

func newGraph(t *testing.T) *graph {
	t.Helper()
	pkg := opc.NewPackage()
	g := &graph{
		pkg:    pkg,
		slide:  load(t, pkg, "/ppt/slides/slide1.xml", opc.ContentTypeSlide),
		layout: load(t, pkg, "/ppt/slideLayouts/slideLayout1.xml", opc.ContentTypeSlideLayout),
		master: load(t, pkg, "/ppt/slideMasters/slideMaster1.xml", opc.ContentTypeSlideMaster),
		theme:  load(t, pkg, "/ppt/theme/theme1.xml", opc.ContentTypeTheme),
		image:  load(t, pkg, "/ppt/media/image1.png", opc.ContentTypePNG),
		notes:  load(t, pkg, "/ppt/notesSlides/notesSlide1.xml", opc.ContentTypeNotesSlide),
	}
	g.slide.RelateTo(g.layout, opc.RelationshipSlideLayout)
	g.slide.RelateTo(g.image, opc.RelationshipImage)
	g.slide.RelateTo(g.notes, opc.RelationshipNotesSlide)
	if _, err := g.slide.Relationships().Add(opc.Relationship{
		ID: "rId9", Type: opc.RelationshipHyperlink, TargetRef: "https://example.com", External: true,
	}); err != nil {
		t.Fatal(err)
	}
	g.notes.RelateTo(g.slide, opc.RelationshipSlide)
	g.notes.RelateTo(g.image, opc.RelationshipImage)
	g.layout.RelateTo(g.master, opc.RelationshipSlideMaster)
	g.master.RelateTo(g.layout, opc.RelationshipSlideLayout)
	g.master.RelateTo(g.theme, opc.RelationshipTheme)
	return g
}

func target(t *testing.T, part *opc.Part, relationshipType string) *opc.Part {
	t.Helper()
	related, ok := part.Related(relationshipType)
	if !ok {
		t.Fatalf("%s has no %s relationship", part.Name(), opc.ShortType(relationshipType))
	}
	return related
}

func TestCloneSharesMasterByDefault(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	cloner := New(alloc.New(g.pkg), Options{Identity: alloc.NewIdentityCache()})
	copied, err := cloner.Clone(g.slide)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	if copied.Name() != "/ppt/slides/slide2.xml" {
		t.Errorf("copy name = %s, want slide2", copied.Name())
	}
	if !opc.IsSimilar(copied, g.slide, false) {
		t.Error("copy is not similar to the source")
	}

	layout := target(t, copied, opc.RelationshipSlideLayout)
	if layout == g.layout {
		t.Error("layout should be copied")
	}
	if master := target(t, layout, opc.RelationshipSlideMaster); master != g.master {
		t.Errorf("master = %s, want the shared original", master.Name())
	}
	if image := target(t, copied, opc.RelationshipImage); image != g.image {
		t.Error("image should be shared")
	}

	notes := target(t, copied, opc.RelationshipNotesSlide)
	if notes == g.notes {
		t.Fatal("notes slide should be copied")
	}
	if back := target(t, notes, opc.RelationshipSlide); back != copied {
		t.Errorf("copied notes points back at %s, want the new slide", back.Name())
	}

	external, ok := copied.Relationships().Get("rId9")
	if !ok || !external.External || external.TargetRef != "https://example.com" {
		t.Errorf("external relationship = %v, want it reattached unchanged", external)
	}

	// The source is untouched.
	if g.slide.Relationships().Len() != 4 || target(t, g.slide, opc.RelationshipNotesSlide) != g.notes {
		t.Error("source relationships changed")
	}
}

func TestCloneKeepsRelationshipIDs(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	copied, err := New(alloc.New(g.pkg), Options{}).Clone(g.slide)
	if err != nil {
		t.Fatal(err)
	}
	for _, original := range g.slide.Relationships().All() {
		relationship, ok := copied.Relationships().Get(original.ID)
		if !ok {
			t.Errorf("relationship %s missing from copy", original.ID)
			continue
		}
		if relationship.Type != original.Type || relationship.External != original.External {
			t.Errorf("relationship %s = %v, want type and flag of %v", original.ID, relationship, original)
		}
	}
}

func TestCloneDuplicateMaster(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	copied, err := New(alloc.New(g.pkg), Options{DuplicateMaster: true}).Clone(g.slide)
	if err != nil {
		t.Fatal(err)
	}
	layout := target(t, copied, opc.RelationshipSlideLayout)
	master := target(t, layout, opc.RelationshipSlideMaster)
	if master == g.master {
		t.Fatal("master should be copied when opted in")
	}
	if master.Name() != "/ppt/slideMasters/slideMaster2.xml" {
		t.Errorf("master copy name = %s", master.Name())
	}
	if theme := target(t, master, opc.RelationshipTheme); theme == g.theme {
		t.Error("theme of a copied master should be copied")
	}
	if len(master.Relationships().OfType(opc.RelationshipSlideLayout)) != 0 {
		t.Error("closed master -> layout relationships were copied")
	}
}

func TestIdentityCacheConvergesAcrossOperations(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	second := load(t, g.pkg, "/ppt/slides/slide2.xml", opc.ContentTypeSlide)
	second.RelateTo(g.layout, opc.RelationshipSlideLayout)

	identity := alloc.NewIdentityCache()
	options := Options{Identity: identity, DuplicateMaster: true}

	first, err := New(alloc.New(g.pkg), options).Clone(g.slide)
	if err != nil {
		t.Fatal(err)
	}
	other, err := New(alloc.New(g.pkg), options).Clone(second)
	if err != nil {
		t.Fatal(err)
	}

	firstLayout := target(t, first, opc.RelationshipSlideLayout)
	otherLayout := target(t, other, opc.RelationshipSlideLayout)
	if firstLayout != otherLayout {
		t.Error("layouts copied in the same session should converge")
	}
	if target(t, firstLayout, opc.RelationshipSlideMaster) == g.master {
		t.Error("master should be the session copy")
	}

	// Without the opt-in the shared-master tier is cached separately.
	shared, err := New(alloc.New(g.pkg), Options{Identity: identity}).Clone(second)
	if err != nil {
		t.Fatal(err)
	}
	sharedLayout := target(t, shared, opc.RelationshipSlideLayout)
	if sharedLayout == firstLayout {
		t.Error("layout copied with a duplicated master was reused for a shared-master duplicate")
	}
	if target(t, sharedLayout, opc.RelationshipSlideMaster) != g.master {
		t.Error("shared-tier layout should point at the original master")
	}
}

func TestCloneDropsDanglingRelationships(t *testing.T) {
	t.Parallel()

	var container bytes.Buffer
	archive := zip.NewWriter(&container)
	for name, content := range map[string]string{
		"[Content_Types].xml": `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Override PartName="/ppt/slides/slide1.xml" ContentType="` + opc.ContentTypeSlide + `"/></Types>`,
		"ppt/slides/slide1.xml": "<p:sld/>",
		"ppt/slides/_rels/slide1.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + opc.RelationshipImage + `" Target="../media/missing.png"/></Relationships>`,
	} {
		writer, err := archive.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := writer.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := archive.Close(); err != nil {
		t.Fatal(err)
	}
	pkg, err := opc.ReadPackage(bytes.NewReader(container.Bytes()), int64(container.Len()))
	if err != nil {
		t.Fatal(err)
	}
	slide, _ := pkg.Part("/ppt/slides/slide1.xml")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	copied, err := New(alloc.New(pkg), Options{Logger: logger}).Clone(slide)
	if err != nil {
		t.Fatal(err)
	}
	if copied.Relationships().Len() != 0 {
		t.Errorf("copy has %d relationships, want the dangling one dropped", copied.Relationships().Len())
	}
	if !strings.Contains(logs.String(), "dropping dangling relationship") {
		t.Errorf("no warning logged: %s", logs.String())
	}
}

type recordingHooks struct {
	copied    []string
	decisions map[string]Decision
	fail      bool
}

func (h *recordingHooks) Copied(source, clone *opc.Part) error {
	if h.fail {
		return errors.New("hook failed")
	}
	h.copied = append(h.copied, string(source.Name()))
	return nil
}

func (h *recordingHooks) Bound(owner *opc.Part, relationship *opc.Relationship, decision Decision) error {
	h.decisions[string(owner.Name())+"#"+relationship.ID] = decision
	return nil
}

func TestHooks(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	hooks := &recordingHooks{decisions: make(map[string]Decision)}
	copied, err := New(alloc.New(g.pkg), Options{Hooks: hooks}).Clone(g.slide)
	if err != nil {
		t.Fatal(err)
	}

	wantCopied := []string{"/ppt/slides/slide1.xml", "/ppt/slideLayouts/slideLayout1.xml", "/ppt/notesSlides/notesSlide1.xml"}
	if strings.Join(hooks.copied, ",") != strings.Join(wantCopied, ",") {
		t.Errorf("Copied calls = %v, want %v", hooks.copied, wantCopied)
	}

	prefix := string(copied.Name()) + "#"
	want := map[string]Decision{
		"rId1": Copied,
		"rId2": Static,
		"rId3": Copied,
		"rId9": External,
	}
	for id, decision := range want {
		if got := hooks.decisions[prefix+id]; got != decision {
			t.Errorf("decision for %s = %q, want %q", id, got, decision)
		}
	}
	notes := target(t, copied, opc.RelationshipNotesSlide)
	if got := hooks.decisions[string(notes.Name())+"#rId1"]; got != Memoized {
		t.Errorf("notes back-reference decision = %q, want memoized", got)
	}

	failing := &recordingHooks{decisions: make(map[string]Decision), fail: true}
	if _, err := New(alloc.New(g.pkg), Options{Hooks: failing}).Clone(g.slide); err == nil {
		t.Error("a failing hook should fail the clone")
	}
}

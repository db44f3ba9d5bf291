// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/deckgraph/deckgraph/lib/alloc"
	"github.com/deckgraph/deckgraph/lib/clone"
	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/partname"
)

type fixture struct {
	pkg         *opc.Package
	slide       *opc.Part
	other       *opc.Part
	notes       *opc.Part
	notesMaster *opc.Part
	layout      *opc.Part
	master      *opc.Part
	image       *opc.Part
}

func load(t *testing.T, pkg *opc.Package, name, contentType string) *opc.Part {
	t.Helper()
	part, err := pkg.LoadPart(partname.MustParse(name), contentType, []byte("payload of "+name))
	if err != nil {
		t.Fatal(err)
	}
	return part
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pkg := opc.NewPackage()
	f := &fixture{
		pkg:         pkg,
		slide:       load(t, pkg, "/ppt/slides/slide1.xml", opc.ContentTypeSlide),
		other:       load(t, pkg, "/ppt/slides/slide2.xml", opc.ContentTypeSlide),
		notes:       load(t, pkg, "/ppt/notesSlides/notesSlide1.xml", opc.ContentTypeNotesSlide),
		notesMaster: load(t, pkg, "/ppt/notesMasters/notesMaster1.xml", opc.ContentTypeNotesMaster),
		layout:      load(t, pkg, "/ppt/slideLayouts/slideLayout1.xml", opc.ContentTypeSlideLayout),
		master:      load(t, pkg, "/ppt/slideMasters/slideMaster1.xml", opc.ContentTypeSlideMaster),
		image:       load(t, pkg, "/ppt/media/image1.PNG", opc.ContentTypePNG),
	}
	f.slide.RelateTo(f.layout, opc.RelationshipSlideLayout)
	f.slide.RelateTo(f.notes, opc.RelationshipNotesSlide)
	f.slide.RelateTo(f.image, opc.RelationshipImage)
	f.slide.RelateTo(f.other, opc.RelationshipSlide)
	if _, err := f.slide.Relationships().Add(opc.Relationship{
		ID: "rId7", Type: opc.RelationshipHyperlink, TargetRef: "https://example.com", External: true,
	}); err != nil {
		t.Fatal(err)
	}
	f.notes.RelateTo(f.slide, opc.RelationshipSlide)
	f.notes.RelateTo(f.notesMaster, opc.RelationshipNotesMaster)
	f.other.RelateTo(f.layout, opc.RelationshipSlideLayout)
	f.layout.RelateTo(f.master, opc.RelationshipSlideMaster)
	f.master.RelateTo(f.layout, opc.RelationshipSlideLayout)
	return f
}

func (f *fixture) capture() *Model {
	return Capture([]Root{{Part: f.slide, SlideID: 256}, {Part: f.other, SlideID: 257}}, nil)
}

func edgeOfType(t *testing.T, node *Node, relationshipType string) Edge {
	t.Helper()
	for _, edge := range node.Edges {
		if edge.Type == relationshipType {
			return edge
		}
	}
	t.Fatalf("node %s has no %s edge", node.Template, opc.ShortType(relationshipType))
	return Edge{}
}

func TestCapture(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	model := f.capture()

	if len(model.Slides) != 2 {
		t.Fatalf("captured %d slides, want 2", len(model.Slides))
	}
	root := model.ByID(256)
	if root == nil || root != model.ByIndex(0) || root != model.ByIndex(-2) {
		t.Fatal("ByID/ByIndex disagree on the first slide")
	}
	if model.ByIndex(2) != nil || model.ByID(999) != nil {
		t.Error("out-of-range lookups should return nil")
	}
	if root.Template != "/ppt/slides/slide%d.xml" || root.ContentType != opc.ContentTypeSlide {
		t.Errorf("root = %s %s", root.Template, root.ContentType)
	}

	for _, edge := range root.Edges {
		if edge.Type == opc.RelationshipSlide {
			t.Error("slide-to-slide relationships of the root should not be captured")
		}
	}
	if external := edgeOfType(t, root, opc.RelationshipHyperlink); !external.External || external.TargetRef != "https://example.com" {
		t.Errorf("external edge = %+v", external)
	}

	notes := edgeOfType(t, root, opc.RelationshipNotesSlide).Target
	back := edgeOfType(t, notes, opc.RelationshipSlide)
	if !back.Owner || back.Target != nil {
		t.Errorf("notes back-reference = %+v, want an owner placeholder", back)
	}

	image := edgeOfType(t, root, opc.RelationshipImage).Target
	if image.Template != "/ppt/media/image%d.png" {
		t.Errorf("image template = %s, want the lowercased extension", image.Template)
	}

	layout := edgeOfType(t, root, opc.RelationshipSlideLayout).Target
	if other := edgeOfType(t, model.ByIndex(1), opc.RelationshipSlideLayout).Target; other != layout {
		t.Error("a layout shared by two slides should be one node")
	}
	master := edgeOfType(t, layout, opc.RelationshipSlideMaster).Target
	for _, edge := range master.Edges {
		if edge.Type == opc.RelationshipSlideLayout {
			t.Error("closed master -> layout relationship was captured")
		}
	}
}

func TestMaterializeIntoSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	model := f.capture()

	part, err := Materialize(model.ByIndex(0), alloc.New(f.pkg), Options{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if part.Name() != "/ppt/slides/slide3.xml" {
		t.Errorf("slide name = %s, want slide3", part.Name())
	}
	if !bytes.Equal(part.Blob(), f.slide.Blob()) {
		t.Error("payload differs from the captured slide")
	}

	if layout, _ := part.Related(opc.RelationshipSlideLayout); layout != f.layout {
		t.Errorf("layout = %v, want the existing identical layout reused", layout)
	}
	if image, _ := part.Related(opc.RelationshipImage); image != f.image {
		t.Errorf("image = %v, want the existing identical image reused", image)
	}

	notes, _ := part.Related(opc.RelationshipNotesSlide)
	if notes == nil || notes == f.notes {
		t.Fatalf("notes = %v, want a fresh notes slide", notes)
	}
	if back, _ := notes.Related(opc.RelationshipSlide); back != part {
		t.Errorf("notes points back at %v, want the new slide", back)
	}
	if len(notes.Relationships().OfType(opc.RelationshipSlide)) != 1 {
		t.Error("back-reference was added twice")
	}
	if master, _ := notes.Related(opc.RelationshipNotesMaster); master != f.notesMaster {
		t.Errorf("notes master = %v, want the existing one", master)
	}
}

func TestMaterializeTwiceIntoDifferentPackages(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.capture().ByIndex(0)

	first, err := Materialize(node, alloc.New(opc.NewPackage()), Options{})
	if err != nil {
		t.Fatal(err)
	}
	secondPackage := opc.NewPackage()
	load(t, secondPackage, "/ppt/slides/slide1.xml", opc.ContentTypeSlide)
	second, err := Materialize(node, alloc.New(secondPackage), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if first.Name() == second.Name() {
		t.Errorf("both materializations are named %s", first.Name())
	}
	if first.ContentType() != second.ContentType() || !bytes.Equal(first.Blob(), second.Blob()) {
		t.Error("materializations differ in content type or payload")
	}
	if first.Package() == second.Package() {
		t.Error("materializations share a package")
	}

	// An empty destination has nothing to reuse: every node is created.
	master, _ := first.Package().Part("/ppt/slideMasters/slideMaster1.xml")
	if master == nil {
		t.Error("master was not materialized into the empty package")
	}
}

func TestMaterializeReusesNotesMasterAcrossCalls(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.capture().ByIndex(0)
	destination := opc.NewPackage()

	first, err := Materialize(node, alloc.New(destination), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Materialize(node, alloc.New(destination), Options{})
	if err != nil {
		t.Fatal(err)
	}
	firstNotes, _ := first.Related(opc.RelationshipNotesSlide)
	secondNotes, _ := second.Related(opc.RelationshipNotesSlide)
	if firstNotes == secondNotes {
		t.Fatal("notes slides must not be shared between materializations")
	}
	firstMaster, _ := firstNotes.Related(opc.RelationshipNotesMaster)
	secondMaster, _ := secondNotes.Related(opc.RelationshipNotesMaster)
	if firstMaster != secondMaster {
		t.Error("second materialization should reuse the notes master placed by the first")
	}
}

func TestMaterializeReusesChangedSharedPart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.capture().ByIndex(0)

	// The destination has a master of its own whose payload differs from
	// the captured one, and no layout.
	destination := opc.NewPackage()
	master := load(t, destination, "/ppt/slideMasters/slideMaster1.xml", opc.ContentTypeSlideMaster)
	master.SetBlob([]byte("rewritten master"))

	part, err := Materialize(node, alloc.New(destination), Options{})
	if err != nil {
		t.Fatal(err)
	}
	layout, _ := part.Related(opc.RelationshipSlideLayout)
	if layout == nil || layout.Name() != "/ppt/slideLayouts/slideLayout1.xml" {
		t.Fatalf("layout = %v, want a fresh slideLayout1.xml", layout)
	}
	if got, _ := layout.Related(opc.RelationshipSlideMaster); got != master {
		t.Errorf("layout master = %v, want the destination's own master", got)
	}
	if destination.Contains("/ppt/slideMasters/slideMaster2.xml") {
		t.Error("a second master was created")
	}
}

func TestMaterializePrefersIdenticalPart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.capture().ByIndex(0)

	destination := opc.NewPackage()
	load(t, destination, "/ppt/slideLayouts/slideLayout1.xml", opc.ContentTypeSlideLayout).SetBlob([]byte("other layout"))
	identical, err := destination.LoadPart("/ppt/slideLayouts/slideLayout2.xml", opc.ContentTypeSlideLayout, f.layout.Blob())
	if err != nil {
		t.Fatal(err)
	}

	part, err := Materialize(node, alloc.New(destination), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if layout, _ := part.Related(opc.RelationshipSlideLayout); layout != identical {
		t.Errorf("layout = %v, want the layout with the captured payload", layout)
	}
}

type countingHooks struct {
	created   int
	decisions map[clone.Decision]int
}

func (h *countingHooks) Created(*Node, *opc.Part) error {
	h.created++
	return nil
}

func (h *countingHooks) Bound(_ *opc.Part, _ *opc.Relationship, decision clone.Decision) error {
	h.decisions[decision]++
	return nil
}

func TestMaterializeHooks(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	hooks := &countingHooks{decisions: make(map[clone.Decision]int)}
	if _, err := Materialize(f.capture().ByIndex(0), alloc.New(f.pkg), Options{Hooks: hooks}); err != nil {
		t.Fatal(err)
	}
	// The slide and its notes slide are created; everything else is reused.
	if hooks.created != 2 {
		t.Errorf("Created called %d times, want 2", hooks.created)
	}
	if hooks.decisions[clone.External] != 1 || hooks.decisions[clone.Memoized] != 1 {
		t.Errorf("decisions = %v", hooks.decisions)
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	model := f.capture()

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			var buffer bytes.Buffer
			if err := Encode(&buffer, model, compression); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := Decode(&buffer)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(decoded.Slides) != 2 || decoded.ByIndex(1).SlideID != 257 {
				t.Fatalf("decoded slides = %v", decoded.Slides)
			}
			if len(decoded.Nodes()) != len(model.Nodes()) {
				t.Errorf("decoded %d nodes, want %d", len(decoded.Nodes()), len(model.Nodes()))
			}

			root := decoded.ByID(256)
			layout := edgeOfType(t, root, opc.RelationshipSlideLayout).Target
			if edgeOfType(t, decoded.ByID(257), opc.RelationshipSlideLayout).Target != layout {
				t.Error("shared layout node was duplicated by encoding")
			}
			notes := edgeOfType(t, root, opc.RelationshipNotesSlide).Target
			if !edgeOfType(t, notes, opc.RelationshipSlide).Owner {
				t.Error("owner placeholder lost")
			}
			if string(layout.Blob) != "payload of /ppt/slideLayouts/slideLayout1.xml" {
				t.Errorf("layout payload = %q", layout.Blob)
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, input := range [][]byte{nil, []byte("DGTM"), []byte("not a model at all")} {
		if _, err := Decode(bytes.NewReader(input)); !errors.Is(err, ErrFormat) {
			t.Errorf("Decode(%q) error = %v, want ErrFormat", input, err)
		}
	}

	var buffer bytes.Buffer
	if err := Encode(&buffer, &Model{}, CompressionNone); err != nil {
		t.Fatal(err)
	}
	corrupt := buffer.Bytes()
	corrupt[len(magic)] = 99
	if _, err := Decode(bytes.NewReader(corrupt)); err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("Decode(bad version) error = %v", err)
	}
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"none", "lz4", "zstd"} {
		compression, err := ParseCompression(name)
		if err != nil || compression.String() != name {
			t.Errorf("ParseCompression(%q) = %v, %v", name, compression, err)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(gzip) should fail")
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	if err := Encode(&buffer, newFixture(t).capture(), CompressionZstd); err != nil {
		t.Fatal(err)
	}
	notation, err := Inspect(&buffer)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	for _, want := range []string{`"slides"`, `"/ppt/slides/slide%d.xml"`, `"content_type"`} {
		if !strings.Contains(notation, want) {
			t.Errorf("notation does not contain %s", want)
		}
	}
}

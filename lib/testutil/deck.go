// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/partname"
)

const namespaces = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

// Ids used by the fixture deck.
const (
	MasterID     uint32 = 2147483648
	Layout1ID    uint32 = 2147483649
	Layout2ID    uint32 = 2147483650
	FirstSlideID uint32 = 256
)

// Deck is the fixture built by NewDeck. Every field points into Package.
type Deck struct {
	Package      *opc.Package
	Presentation *opc.Part
	Master       *opc.Part
	Layouts      [2]*opc.Part
	Theme        *opc.Part
	NotesMaster  *opc.Part
	NotesTheme   *opc.Part
	Slides       [3]*opc.Part
	Notes        *opc.Part
	Image        *opc.Part
}

// NewDeck builds the fixture presentation described in the package
// documentation.
//
// Relationship ids of the first slide: rId1 layout 1, rId2 image,
// rId3 notes slide, rId4 slide 2 (bound to the jump action), rId5 an
// external hyperlink.
func NewDeck(t testing.TB) *Deck {
	t.Helper()
	pkg := opc.NewPackage()
	load := func(name, contentType, payload string) *opc.Part {
		t.Helper()
		part, err := pkg.LoadPart(partname.MustParse(name), contentType, []byte(payload))
		if err != nil {
			t.Fatalf("loading %s: %v", name, err)
		}
		return part
	}
	relate := func(owner *opc.Part, id, relationshipType string, target *opc.Part) {
		t.Helper()
		if _, err := owner.Relationships().Add(opc.Relationship{ID: id, Type: relationshipType, Target: target}); err != nil {
			t.Fatalf("relating %s %s: %v", owner.Name(), id, err)
		}
	}

	d := &Deck{Package: pkg}
	d.Presentation = load("/ppt/presentation.xml", opc.ContentTypePresentation, presentationXML())
	d.Master = load("/ppt/slideMasters/slideMaster1.xml", opc.ContentTypeSlideMaster, masterXML())
	d.Layouts[0] = load("/ppt/slideLayouts/slideLayout1.xml", opc.ContentTypeSlideLayout, layoutXML("Title Slide"))
	d.Layouts[1] = load("/ppt/slideLayouts/slideLayout2.xml", opc.ContentTypeSlideLayout, layoutXML("Title and Content"))
	d.Theme = load("/ppt/theme/theme1.xml", opc.ContentTypeTheme, ThemeXML("Office Theme"))
	d.NotesMaster = load("/ppt/notesMasters/notesMaster1.xml", opc.ContentTypeNotesMaster,
		`<p:notesMaster `+namespaces+`><p:cSld><p:spTree/></p:cSld><p:clrMap bg1="lt1"/></p:notesMaster>`)
	d.NotesTheme = load("/ppt/theme/theme2.xml", opc.ContentTypeTheme, ThemeXML("Notes Theme"))
	d.Image = load("/ppt/media/image1.png", opc.ContentTypePNG, "\x89PNG\r\n\x1a\nfixture")
	for i := range d.Slides {
		d.Slides[i] = load(fmt.Sprintf("/ppt/slides/slide%d.xml", i+1), opc.ContentTypeSlide, slideXML(i))
	}
	d.Notes = load("/ppt/notesSlides/notesSlide1.xml", opc.ContentTypeNotesSlide,
		`<p:notes `+namespaces+`><p:cSld><p:spTree/></p:cSld></p:notes>`)

	if _, err := pkg.Relationships().Add(opc.Relationship{
		ID: "rId1", Type: opc.RelationshipOfficeDocument, Target: d.Presentation,
	}); err != nil {
		t.Fatalf("relating package: %v", err)
	}

	relate(d.Presentation, "rId1", opc.RelationshipSlideMaster, d.Master)
	relate(d.Presentation, "rId2", opc.RelationshipSlide, d.Slides[0])
	relate(d.Presentation, "rId3", opc.RelationshipSlide, d.Slides[1])
	relate(d.Presentation, "rId4", opc.RelationshipSlide, d.Slides[2])
	relate(d.Presentation, "rId5", opc.RelationshipNotesMaster, d.NotesMaster)
	relate(d.Presentation, "rId6", opc.RelationshipTheme, d.Theme)

	relate(d.Master, "rId1", opc.RelationshipSlideLayout, d.Layouts[0])
	relate(d.Master, "rId2", opc.RelationshipSlideLayout, d.Layouts[1])
	relate(d.Master, "rId3", opc.RelationshipTheme, d.Theme)
	relate(d.Layouts[0], "rId1", opc.RelationshipSlideMaster, d.Master)
	relate(d.Layouts[1], "rId1", opc.RelationshipSlideMaster, d.Master)
	relate(d.NotesMaster, "rId1", opc.RelationshipTheme, d.NotesTheme)

	relate(d.Slides[0], "rId1", opc.RelationshipSlideLayout, d.Layouts[0])
	relate(d.Slides[0], "rId2", opc.RelationshipImage, d.Image)
	relate(d.Slides[0], "rId3", opc.RelationshipNotesSlide, d.Notes)
	relate(d.Slides[0], "rId4", opc.RelationshipSlide, d.Slides[1])
	if _, err := d.Slides[0].Relationships().Add(opc.Relationship{
		ID: "rId5", Type: opc.RelationshipHyperlink, TargetRef: "https://example.com/", External: true,
	}); err != nil {
		t.Fatalf("relating hyperlink: %v", err)
	}
	relate(d.Slides[1], "rId1", opc.RelationshipSlideLayout, d.Layouts[1])
	relate(d.Slides[2], "rId1", opc.RelationshipSlideLayout, d.Layouts[0])
	relate(d.Slides[2], "rId2", opc.RelationshipImage, d.Image)

	relate(d.Notes, "rId1", opc.RelationshipNotesMaster, d.NotesMaster)
	relate(d.Notes, "rId2", opc.RelationshipSlide, d.Slides[0])
	return d
}

// SaveFile writes the deck to a fresh file under t.TempDir and returns
// its path.
func (d *Deck) SaveFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), UniqueID("deck")+".pptx")
	if err := d.Package.SaveFile(path); err != nil {
		t.Fatalf("saving fixture deck: %v", err)
	}
	return path
}

// ThemeXML returns a theme payload with the given display name.
func ThemeXML(name string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="` + name + `">` +
		`<a:themeElements><a:clrScheme name="Office"/></a:themeElements></a:theme>`
}

func presentationXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:presentation ` + namespaces + `>` +
		fmt.Sprintf(`<p:sldMasterIdLst><p:sldMasterId id="%d" r:id="rId1"/></p:sldMasterIdLst>`, MasterID) +
		`<p:notesMasterIdLst><p:notesMasterId r:id="rId5"/></p:notesMasterIdLst>` +
		fmt.Sprintf(`<p:sldIdLst><p:sldId id="%d" r:id="rId2"/><p:sldId id="%d" r:id="rId3"/><p:sldId id="%d" r:id="rId4"/></p:sldIdLst>`,
			FirstSlideID, FirstSlideID+1, FirstSlideID+2) +
		`<p:sldSz cx="9144000" cy="6858000"/></p:presentation>`
}

func masterXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sldMaster ` + namespaces + `><p:cSld><p:spTree/></p:cSld>` +
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2"/>` +
		fmt.Sprintf(`<p:sldLayoutIdLst><p:sldLayoutId id="%d" r:id="rId1"/><p:sldLayoutId id="%d" r:id="rId2"/></p:sldLayoutIdLst>`,
			Layout1ID, Layout2ID) +
		`</p:sldMaster>`
}

func layoutXML(name string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sldLayout ` + namespaces + `><p:cSld name="` + name + `"><p:spTree/></p:cSld></p:sldLayout>`
}

// slideXML returns the payload of the index-th fixture slide. The first
// slide's jump action is bound to rId4; the second slide's is unbound.
func slideXML(index int) string {
	var action string
	switch index {
	case 0:
		action = `<a:hlinkClick r:id="rId4" action="ppaction://hlinksldjump"/>`
	case 1:
		action = `<a:hlinkClick r:id="" action="ppaction://hlinksldjump"/>`
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld ` + namespaces + `><p:cSld><p:spTree><p:sp><p:nvSpPr>` +
		fmt.Sprintf(`<p:cNvPr id="2" name="Slide %d">`, index+1) + action + `</p:cNvPr>` +
		`</p:nvSpPr></p:sp></p:spTree></p:cSld></p:sld>`
}

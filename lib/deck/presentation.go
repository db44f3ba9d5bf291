// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package deck

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/deckgraph/deckgraph/lib/alloc"
	"github.com/deckgraph/deckgraph/lib/clone"
	"github.com/deckgraph/deckgraph/lib/opc"
	"github.com/deckgraph/deckgraph/lib/pml"
	"github.com/deckgraph/deckgraph/lib/policy"
	"github.com/deckgraph/deckgraph/lib/template"
)

// ErrNotPresentation is returned when a package's main part is not a
// presentation.
var ErrNotPresentation = errors.New("package is not a presentation")

const (
	// minSlideID is the smallest slide id a presentation may use.
	minSlideID uint32 = 256

	// minMasterID is the smallest master or layout id. The counter is
	// seeded one below it so that the first issued id is minMasterID.
	minMasterID uint32 = 1 << 31
)

// Options configures a Presentation.
type Options struct {
	// Policy classifies relationships for copying. Nil means
	// policy.Default().
	Policy *policy.Policy

	// Logger receives Debug records for every operation and copy
	// decision and Warn records for data-quality defects. Nil discards.
	Logger *slog.Logger
}

// Presentation is an open presentation package.
type Presentation struct {
	pkg    *opc.Package
	part   *opc.Part
	slides []*Slide

	rules  *policy.Policy
	logger *slog.Logger

	// identity converges identity-significant copies across
	// operations on this presentation.
	identity *alloc.IdentityCache

	// lastMasterID is the most recently issued master or layout id.
	// Masters and layouts draw from the same counter.
	lastMasterID uint32

	// lastSlideID is the most recently issued slide id.
	lastSlideID uint32

	// model is the captured template of a presentation opened with
	// OpenTemplate.
	model *template.Model
}

// Open reads the presentation container at path.
func Open(path string, options Options) (*Presentation, error) {
	pkg, err := opc.OpenFile(path)
	if err != nil {
		return nil, err
	}
	presentation, err := New(pkg, options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return presentation, nil
}

// New wraps a loaded package. The slide collection is read from the
// slide-id list of the main part; list entries whose relationship is
// missing or does not target a slide are skipped with a warning.
func New(pkg *opc.Package, options Options) (*Presentation, error) {
	if options.Policy == nil {
		options.Policy = policy.Default()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	main, err := pkg.MainPart()
	if err != nil {
		return nil, err
	}
	if main.ContentType() != opc.ContentTypePresentation {
		return nil, fmt.Errorf("%w: main part %s is %s", ErrNotPresentation, main.Name(), main.ContentType())
	}

	p := &Presentation{
		pkg:          pkg,
		part:         main,
		rules:        options.Policy,
		logger:       options.Logger,
		identity:     alloc.NewIdentityCache(),
		lastMasterID: minMasterID - 1,
		lastSlideID:  minSlideID - 1,
	}
	if err := p.loadSlides(); err != nil {
		return nil, err
	}
	if err := p.seedMasterIDs(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Presentation) loadSlides() error {
	entries, err := pml.SlideIDs(p.part.Blob())
	if err != nil {
		return fmt.Errorf("reading slide list of %s: %w", p.part.Name(), err)
	}
	for _, entry := range entries {
		p.lastSlideID = max(p.lastSlideID, entry.ID)
		relationship, ok := p.part.Relationships().Get(entry.RelID)
		if !ok || relationship.Target == nil || relationship.Target.ContentType() != opc.ContentTypeSlide {
			p.logger.Warn("skipping slide list entry without a slide",
				"slide_id", entry.ID,
				"id", entry.RelID,
			)
			continue
		}
		p.slides = append(p.slides, newSlide(relationship.Target, entry.ID))
	}
	return nil
}

func (p *Presentation) seedMasterIDs() error {
	entries, err := pml.MasterIDs(p.part.Blob())
	if err != nil {
		return fmt.Errorf("reading master list of %s: %w", p.part.Name(), err)
	}
	p.lastMasterID = max(p.lastMasterID, pml.MaxID(entries))
	for _, relationship := range p.part.Relationships().OfType(opc.RelationshipSlideMaster) {
		if relationship.Target == nil {
			continue
		}
		layouts, err := pml.LayoutIDs(relationship.Target.Blob())
		if err != nil {
			return fmt.Errorf("reading layout list of %s: %w", relationship.Target.Name(), err)
		}
		p.lastMasterID = max(p.lastMasterID, pml.MaxID(layouts))
	}
	return nil
}

// Package returns the underlying package.
func (p *Presentation) Package() *opc.Package { return p.pkg }

// Part returns the presentation part.
func (p *Presentation) Part() *opc.Part { return p.part }

// Len returns the number of slides.
func (p *Presentation) Len() int { return len(p.slides) }

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() []*Slide {
	return append([]*Slide(nil), p.slides...)
}

// Slide returns the slide ref selects, or nil.
func (p *Presentation) Slide(ref SlideRef) *Slide {
	index := p.index(ref)
	if index < 0 {
		return nil
	}
	return p.slides[index]
}

// Index returns the position of slide, or -1 when it is not part of
// the presentation.
func (p *Presentation) Index(slide *Slide) int {
	for i, candidate := range p.slides {
		if candidate == slide {
			return i
		}
	}
	return -1
}

func (p *Presentation) index(ref SlideRef) int {
	if ref.byID {
		for i, slide := range p.slides {
			if slide.id == ref.id {
				return i
			}
		}
		return -1
	}
	index := ref.index
	if index < 0 {
		index += len(p.slides)
	}
	if index < 0 || index >= len(p.slides) {
		return -1
	}
	return index
}

func (p *Presentation) slideOf(part *opc.Part) *Slide {
	for _, slide := range p.slides {
		if slide.part == part {
			return slide
		}
	}
	return nil
}

// DuplicateOptions configures DuplicateSlide.
type DuplicateOptions struct {
	// DuplicateMaster copies the slide's master instead of sharing it.
	// Masters copied this way are shared by later duplications in the
	// same session that also set DuplicateMaster.
	DuplicateMaster bool
}

// DuplicateSlide copies the slide ref selects and appends the copy to
// the presentation. The copy's link table starts as a copy of the
// source's.
func (p *Presentation) DuplicateSlide(ref SlideRef, options DuplicateOptions) (*Slide, error) {
	source := p.Slide(ref)
	if source == nil {
		return nil, nil
	}

	cloner := clone.New(alloc.New(p.pkg), clone.Options{
		Policy:          p.rules,
		Identity:        p.identity,
		DuplicateMaster: options.DuplicateMaster,
		Hooks:           &pmlHooks{presentation: p},
		Logger:          p.logger,
	})
	part, err := cloner.Clone(source.part)
	if err != nil {
		return nil, fmt.Errorf("duplicating slide %d: %w", source.id, err)
	}
	slide, err := p.appendSlide(part)
	if err != nil {
		return nil, err
	}
	for key, entry := range source.links {
		copied := *entry
		slide.links[key] = &copied
	}

	p.logger.Debug("slide duplicated",
		"source", source.part.Name(),
		"slide", part.Name(),
		"slide_id", slide.id,
		"duplicate_master", options.DuplicateMaster,
	)
	return slide, nil
}

// appendSlide relates the presentation to part and appends it to the
// slide list under a fresh slide id.
func (p *Presentation) appendSlide(part *opc.Part) (*Slide, error) {
	p.part.RelateTo(part, opc.RelationshipSlide)
	p.lastSlideID++
	slide := newSlide(part, p.lastSlideID)
	p.slides = append(p.slides, slide)
	if err := p.syncSlideList(); err != nil {
		return nil, err
	}
	return slide, nil
}

// RemoveOptions configures RemoveSlide.
type RemoveOptions struct {
	// Sweep also removes slide relationships of the remaining slides
	// whose target is not a live slide.
	Sweep bool
}

// RemoveSlide removes the slide ref selects. Every relationship in the
// package that targets the slide is deleted, and link bindings that
// used those relationships become unbound. Parts owned only by the
// removed slide stay in the package but are no longer written.
func (p *Presentation) RemoveSlide(ref SlideRef, options RemoveOptions) (*Slide, error) {
	index := p.index(ref)
	if index < 0 {
		return nil, nil
	}
	removed := p.slides[index]

	for _, reference := range p.pkg.Referrers(removed.part) {
		p.unlink(reference.Owner, reference.Relationship.ID)
	}
	p.slides = append(p.slides[:index], p.slides[index+1:]...)

	if options.Sweep {
		for _, slide := range p.slides {
			p.sweep(slide)
		}
	}
	if err := p.syncSlideList(); err != nil {
		return nil, err
	}

	p.logger.Debug("slide removed",
		"slide", removed.part.Name(),
		"slide_id", removed.id,
		"sweep", options.Sweep,
	)
	return removed, nil
}

// unlink removes relationship id from owner, the package itself when
// owner is nil, and unbinds any link that used it.
func (p *Presentation) unlink(owner *opc.Part, id string) {
	if owner == nil {
		p.pkg.Relationships().Remove(id)
		return
	}
	owner.Relationships().Remove(id)
	if slide := p.slideOf(owner); slide != nil {
		slide.unbind(id)
	}
}

func (p *Presentation) sweep(slide *Slide) {
	for _, relationship := range slide.part.Relationships().OfType(opc.RelationshipSlide) {
		if relationship.Target != nil && p.slideOf(relationship.Target) != nil {
			continue
		}
		p.logger.Debug("sweeping stale slide relationship",
			"slide", slide.part.Name(),
			"id", relationship.ID,
		)
		p.unlink(slide.part, relationship.ID)
	}
}

// MoveSlide moves the slide ref selects to position to, shifting the
// slides in between. It returns nil when ref does not resolve.
func (p *Presentation) MoveSlide(ref SlideRef, to int) (*Slide, error) {
	from := p.index(ref)
	if from < 0 {
		return nil, nil
	}
	if to < 0 || to >= len(p.slides) {
		return nil, fmt.Errorf("moving slide to position %d: presentation has %d slides", to, len(p.slides))
	}
	slide := p.slides[from]
	p.slides = append(p.slides[:from], p.slides[from+1:]...)
	p.slides = append(p.slides[:to], append([]*Slide{slide}, p.slides[to:]...)...)
	if err := p.syncSlideList(); err != nil {
		return nil, err
	}
	return slide, nil
}

// syncSlideList rewrites the slide-id list of the presentation payload
// from the slide collection.
func (p *Presentation) syncSlideList() error {
	entries := make([]pml.Entry, 0, len(p.slides))
	for _, slide := range p.slides {
		entries = append(entries, pml.Entry{
			ID:    slide.id,
			RelID: p.part.RelateTo(slide.part, opc.RelationshipSlide),
		})
	}
	blob, err := pml.SetSlideIDs(p.part.Blob(), entries)
	if err != nil {
		return fmt.Errorf("writing slide list of %s: %w", p.part.Name(), err)
	}
	p.part.SetBlob(blob)
	return nil
}

// nextMasterID issues the next master or layout id.
func (p *Presentation) nextMasterID() uint32 {
	p.lastMasterID++
	return p.lastMasterID
}

// CaptureModel snapshots every slide and its subgraph.
func (p *Presentation) CaptureModel() *template.Model {
	roots := make([]template.Root, 0, len(p.slides))
	for _, slide := range p.slides {
		roots = append(roots, template.Root{Part: slide.part, SlideID: slide.id})
	}
	return template.Capture(roots, p.rules)
}

// MaterializeSlide creates a slide from the model slide ref selects
// and appends it. Shared resources already present in the presentation
// are reused.
func (p *Presentation) MaterializeSlide(model *template.Model, ref SlideRef) (*Slide, error) {
	var node *template.Node
	if ref.byID {
		node = model.ByID(ref.id)
	} else {
		node = model.ByIndex(ref.index)
	}
	if node == nil {
		return nil, nil
	}

	part, err := template.Materialize(node, alloc.New(p.pkg), template.Options{
		Policy: p.rules,
		Hooks:  &pmlHooks{presentation: p},
		Logger: p.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("materializing slide %s: %w", ref, err)
	}
	slide, err := p.appendSlide(part)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("slide materialized",
		"template", node.Template,
		"slide", part.Name(),
		"slide_id", slide.id,
	)
	return slide, nil
}

// OpenTemplate opens the presentation at path as a template: its
// slides are captured as a model and then removed, leaving the masters,
// layouts and other shared parts ready for Stamp.
func OpenTemplate(path string, options Options) (*Presentation, error) {
	p, err := Open(path, options)
	if err != nil {
		return nil, err
	}
	if err := p.MakeTemplate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// MakeTemplate captures the slides as the presentation's model, removes
// them, and drops the parts only they used.
func (p *Presentation) MakeTemplate() error {
	p.model = p.CaptureModel()
	for len(p.slides) > 0 {
		if _, err := p.RemoveSlide(ByIndex(0), RemoveOptions{}); err != nil {
			return err
		}
	}
	for _, part := range p.pkg.Prune() {
		p.identity.Forget(part)
	}
	return nil
}

// Model returns the model captured by OpenTemplate or MakeTemplate,
// nil otherwise.
func (p *Presentation) Model() *template.Model { return p.model }

// Stamp materializes a slide of the presentation's own template model.
func (p *Presentation) Stamp(ref SlideRef) (*Slide, error) {
	if p.model == nil {
		return nil, errors.New("presentation was not opened as a template")
	}
	return p.MaterializeSlide(p.model, ref)
}

// SaveOptions configures Write and SaveFile.
type SaveOptions struct {
	// UpdateLinks retargets a bound link relationship in place when
	// its slide moved, instead of relating to the new target under a
	// fresh id.
	UpdateLinks bool
}

// ResolveLinks resolves the link table of every slide.
func (p *Presentation) ResolveLinks(update bool) error {
	for _, slide := range p.slides {
		if err := slide.ResolveLinks(p, update); err != nil {
			return err
		}
	}
	return nil
}

// Write resolves every slide's links and writes the package to w.
func (p *Presentation) Write(w io.Writer, options SaveOptions) error {
	if err := p.ResolveLinks(options.UpdateLinks); err != nil {
		return err
	}
	return p.pkg.Write(w)
}

// SaveFile resolves every slide's links and writes the package to
// path.
func (p *Presentation) SaveFile(path string, options SaveOptions) error {
	if err := p.ResolveLinks(options.UpdateLinks); err != nil {
		return err
	}
	return p.pkg.SaveFile(path)
}

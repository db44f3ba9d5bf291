// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package opc

import (
	"path"
	"sort"
	"strings"
)

// Content types of the parts deckgraph gives special treatment.
const (
	ContentTypePresentation   = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ContentTypeSlide          = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ContentTypeSlideLayout    = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ContentTypeSlideMaster    = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ContentTypeNotesSlide     = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ContentTypeNotesMaster    = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ContentTypeTheme          = "application/vnd.openxmlformats-officedocument.theme+xml"
	ContentTypeCoreProperties = "application/vnd.openxmlformats-package.core-properties+xml"
	ContentTypeRelationships  = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeXML            = "application/xml"
	ContentTypePNG            = "image/png"
	ContentTypeJPEG           = "image/jpeg"
)

const relationshipNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

// Relationship types.
const (
	RelationshipOfficeDocument = relationshipNamespace + "officeDocument"
	RelationshipSlide          = relationshipNamespace + "slide"
	RelationshipSlideLayout    = relationshipNamespace + "slideLayout"
	RelationshipSlideMaster    = relationshipNamespace + "slideMaster"
	RelationshipNotesSlide     = relationshipNamespace + "notesSlide"
	RelationshipNotesMaster    = relationshipNamespace + "notesMaster"
	RelationshipTheme          = relationshipNamespace + "theme"
	RelationshipImage          = relationshipNamespace + "image"
	RelationshipVideo          = relationshipNamespace + "video"
	RelationshipAudio          = relationshipNamespace + "audio"
	RelationshipCustomXML      = relationshipNamespace + "customXml"
	RelationshipHyperlink      = relationshipNamespace + "hyperlink"
	RelationshipChart          = relationshipNamespace + "chart"
	RelationshipMedia          = "http://schemas.microsoft.com/office/2007/relationships/media"
)

// relationshipAliases maps the short names used in configuration files
// and log output to relationship type URIs.
var relationshipAliases = map[string]string{
	"office-document": RelationshipOfficeDocument,
	"slide":           RelationshipSlide,
	"slide-layout":    RelationshipSlideLayout,
	"slide-master":    RelationshipSlideMaster,
	"notes-slide":     RelationshipNotesSlide,
	"notes-master":    RelationshipNotesMaster,
	"theme":           RelationshipTheme,
	"image":           RelationshipImage,
	"video":           RelationshipVideo,
	"audio":           RelationshipAudio,
	"media":           RelationshipMedia,
	"custom-xml":      RelationshipCustomXML,
	"hyperlink":       RelationshipHyperlink,
	"chart":           RelationshipChart,
}

// contentTypeAliases maps short names to content types.
var contentTypeAliases = map[string]string{
	"presentation": ContentTypePresentation,
	"slide":        ContentTypeSlide,
	"slide-layout": ContentTypeSlideLayout,
	"slide-master": ContentTypeSlideMaster,
	"notes-slide":  ContentTypeNotesSlide,
	"notes-master": ContentTypeNotesMaster,
	"theme":        ContentTypeTheme,
	"png":          ContentTypePNG,
	"jpeg":         ContentTypeJPEG,
	"xml":          ContentTypeXML,
}

// RelationshipType resolves a short alias ("slide-master") to its
// relationship type URI. A value that already looks like a URI is
// returned unchanged.
func RelationshipType(name string) (string, bool) {
	if uri, ok := relationshipAliases[name]; ok {
		return uri, true
	}
	if isURI(name) {
		return name, true
	}
	return "", false
}

// ContentType resolves a short alias ("theme") to its content type.
// Anything containing a slash is taken to be a content type already.
func ContentType(name string) (string, bool) {
	if contentType, ok := contentTypeAliases[name]; ok {
		return contentType, true
	}
	if strings.Contains(name, "/") {
		return name, true
	}
	return "", false
}

// RelationshipAliases returns the known relationship type aliases in
// sorted order.
func RelationshipAliases() []string {
	names := make([]string, 0, len(relationshipAliases))
	for name := range relationshipAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShortType returns the last path segment of a relationship type URI
// ("slideLayout"), for compact log and tree output.
func ShortType(relationshipType string) string {
	return path.Base(relationshipType)
}

func isURI(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package opc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/deckgraph/deckgraph/lib/partname"
)

const (
	contentTypesMember = "[Content_Types].xml"

	contentTypesNamespace  = "http://schemas.openxmlformats.org/package/2006/content-types"
	relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

	targetModeExternal = "External"

	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

type contentTypesXML struct {
	XMLName   xml.Name      `xml:"Types"`
	Namespace string        `xml:"xmlns,attr"`
	Defaults  []defaultXML  `xml:"Default"`
	Overrides []overrideXML `xml:"Override"`
}

type defaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Namespace     string            `xml:"xmlns,attr"`
	Relationships []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// contentTypeFor returns the content type of a member, preferring an
// Override for its partname over a Default for its extension.
func (c *contentTypesXML) contentTypeFor(name partname.Name) (string, bool) {
	for _, override := range c.Overrides {
		if strings.EqualFold(override.PartName, string(name)) {
			return override.ContentType, true
		}
	}
	extension := strings.ToLower(name.Ext())
	for _, def := range c.Defaults {
		if strings.ToLower(def.Extension) == extension {
			return def.ContentType, true
		}
	}
	return "", false
}

// OpenFile reads the container at path.
func OpenFile(path string) (*Package, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	pkg, err := ReadPackage(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return pkg, nil
}

// ReadPackage reads a zip container into a Package. Every member other
// than the content-type manifest and relationship members becomes a
// part. Relationship targets that do not name a member are kept as
// dangling relationships.
func ReadPackage(reader io.ReaderAt, size int64) (*Package, error) {
	archive, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}

	members := make(map[string][]byte, len(archive.File))
	var order []string
	for _, file := range archive.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		data, err := readMember(file)
		if err != nil {
			return nil, err
		}
		name := "/" + strings.TrimPrefix(file.Name, "/")
		members[name] = data
		order = append(order, name)
	}

	manifest, ok := members["/"+contentTypesMember]
	if !ok {
		return nil, fmt.Errorf("container has no %s", contentTypesMember)
	}
	var types contentTypesXML
	if err := xml.Unmarshal(manifest, &types); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", contentTypesMember, err)
	}

	pkg := NewPackage()
	for _, raw := range order {
		if raw == "/"+contentTypesMember || isRelationshipsMember(raw) {
			continue
		}
		name, err := partname.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", raw, err)
		}
		contentType, ok := types.contentTypeFor(name)
		if !ok {
			return nil, fmt.Errorf("member %s has no content type", name)
		}
		if _, err := pkg.LoadPart(name, contentType, members[raw]); err != nil {
			return nil, err
		}
	}

	if err := readRelationships(pkg, partname.Package, members, pkg.relationships); err != nil {
		return nil, err
	}
	for _, part := range pkg.parts {
		if err := readRelationships(pkg, part.name, members, part.relationships); err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

func readMember(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening member %s: %w", file.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading member %s: %w", file.Name, err)
	}
	return data, nil
}

func isRelationshipsMember(name string) bool {
	return strings.HasSuffix(name, ".rels") && strings.Contains(name, "/_rels/")
}

func readRelationships(pkg *Package, owner partname.Name, members map[string][]byte, into *Relationships) error {
	data, ok := members[string(owner.RelsName())]
	if !ok {
		return nil
	}
	var document relationshipsXML
	if err := xml.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("parsing relationships of %s: %w", owner, err)
	}
	for _, entry := range document.Relationships {
		relationship := Relationship{ID: entry.ID, Type: entry.Type}
		if entry.TargetMode == targetModeExternal {
			relationship.External = true
			relationship.TargetRef = entry.Target
		} else {
			target, err := partname.Resolve(owner.BaseURI(), entry.Target)
			if err == nil {
				relationship.Target = pkg.byName[target]
			}
			if relationship.Target == nil {
				relationship.TargetRef = entry.Target
			}
		}
		if _, err := into.insert(relationship); err != nil {
			return fmt.Errorf("relationships of %s: %w", owner, err)
		}
	}
	return nil
}

// Write serializes the package as a zip container. Only parts reachable
// from the package relationships are written.
func (p *Package) Write(w io.Writer) error {
	parts := p.Reachable()
	archive := zip.NewWriter(w)

	types := contentTypesXML{
		Namespace: contentTypesNamespace,
		Defaults: []defaultXML{
			{Extension: "rels", ContentType: ContentTypeRelationships},
			{Extension: "xml", ContentType: ContentTypeXML},
		},
	}
	for _, part := range parts {
		if part.name.Ext() == "xml" && part.contentType == ContentTypeXML {
			continue
		}
		types.Overrides = append(types.Overrides, overrideXML{
			PartName:    string(part.name),
			ContentType: part.contentType,
		})
	}
	if err := writeXMLMember(archive, contentTypesMember, types); err != nil {
		return err
	}
	if err := writeRelationshipsMember(archive, partname.Package, p.relationships); err != nil {
		return err
	}
	for _, part := range parts {
		if err := writeMember(archive, string(part.name), part.blob); err != nil {
			return err
		}
		if part.relationships.Len() == 0 {
			continue
		}
		if err := writeRelationshipsMember(archive, part.name, part.relationships); err != nil {
			return err
		}
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("finishing container: %w", err)
	}
	return nil
}

// SaveFile writes the package to path, replacing any existing file only
// after the container has been written completely.
func (p *Package) SaveFile(path string) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), ".deckgraph-*")
	if err != nil {
		return err
	}
	defer os.Remove(temporary.Name())

	if err := p.Write(temporary); err != nil {
		temporary.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Rename(temporary.Name(), path)
}

func writeRelationshipsMember(archive *zip.Writer, owner partname.Name, relationships *Relationships) error {
	document := relationshipsXML{Namespace: relationshipsNamespace}
	for _, relationship := range relationships.All() {
		entry := relationshipXML{ID: relationship.ID, Type: relationship.Type}
		switch {
		case relationship.External:
			entry.Target = relationship.TargetRef
			entry.TargetMode = targetModeExternal
		case relationship.Target != nil:
			entry.Target = relationship.Target.name.RelativeRef(owner.BaseURI())
		default:
			entry.Target = relationship.TargetRef
		}
		document.Relationships = append(document.Relationships, entry)
	}
	return writeXMLMember(archive, string(owner.RelsName()), document)
}

func writeXMLMember(archive *zip.Writer, name string, document any) error {
	var buffer bytes.Buffer
	buffer.WriteString(xmlDeclaration)
	if err := xml.NewEncoder(&buffer).Encode(document); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return writeMember(archive, name, buffer.Bytes())
}

func writeMember(archive *zip.Writer, name string, data []byte) error {
	writer, err := archive.CreateHeader(&zip.FileHeader{
		Name:   strings.TrimPrefix(name, "/"),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("creating member %s: %w", name, err)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("writing member %s: %w", name, err)
	}
	return nil
}

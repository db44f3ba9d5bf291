// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deckgraph/deckgraph/lib/binhash"
	"github.com/deckgraph/deckgraph/lib/codec"
	"github.com/deckgraph/deckgraph/lib/partname"
)

// Encoded models start with a fixed header: magic, format version,
// compression, and the size of the uncompressed CBOR document.
const (
	magic         = "DGTM"
	formatVersion = 1
	headerSize    = len(magic) + 2 + 8
)

// ErrFormat is returned by Decode for input that is not an encoded
// model or is corrupt.
var ErrFormat = errors.New("invalid model encoding")

type document struct {
	Slides []int        `cbor:"slides"`
	Nodes  []nodeRecord `cbor:"nodes"`
	Blobs  []blobRecord `cbor:"blobs"`
}

type nodeRecord struct {
	Template    string       `cbor:"template"`
	ContentType string       `cbor:"content_type"`
	Blob        int          `cbor:"blob"`
	SlideID     uint32       `cbor:"slide_id,omitempty"`
	Edges       []edgeRecord `cbor:"edges,omitempty"`
}

type edgeRecord struct {
	ID        string `cbor:"id"`
	Type      string `cbor:"type"`
	External  bool   `cbor:"external,omitempty"`
	TargetRef string `cbor:"target_ref,omitempty"`
	// Target is a node index, or -1.
	Target int  `cbor:"target"`
	Owner  bool `cbor:"owner,omitempty"`
}

type blobRecord struct {
	Digest binhash.Digest `cbor:"digest"`
	Data   []byte         `cbor:"data"`
}

// Encode writes model to w. Payloads shared by several nodes are stored
// once. When compression does not shrink the document it is stored
// uncompressed.
func Encode(w io.Writer, model *Model, compression Compression) error {
	doc := flatten(model)
	encoded, err := codec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}

	body, err := compress(encoded, compression)
	if errors.Is(err, errIncompressible) {
		body, compression = encoded, CompressionNone
	} else if err != nil {
		return fmt.Errorf("compressing model: %w", err)
	}

	header := make([]byte, headerSize)
	copy(header, magic)
	header[len(magic)] = formatVersion
	header[len(magic)+1] = byte(compression)
	binary.BigEndian.PutUint64(header[len(magic)+2:], uint64(len(encoded)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing model header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// Decode reads a model written by Encode.
func Decode(r io.Reader) (*Model, error) {
	encoded, err := readDocument(r)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := codec.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return inflate(&doc)
}

// Inspect returns the CBOR diagnostic notation of an encoded model,
// after removing the header and any compression.
func Inspect(r io.Reader) (string, error) {
	encoded, err := readDocument(r)
	if err != nil {
		return "", err
	}
	notation, err := codec.Diagnose(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return notation, nil
}

// readDocument validates the header and returns the uncompressed CBOR
// document.
func readDocument(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	if len(data) < headerSize || !bytes.Equal(data[:len(magic)], []byte(magic)) {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	if version := data[len(magic)]; version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, version)
	}
	compression := Compression(data[len(magic)+1])
	size := binary.BigEndian.Uint64(data[len(magic)+2 : headerSize])
	if size > uint64(len(data))*1024 {
		return nil, fmt.Errorf("%w: implausible size %d", ErrFormat, size)
	}

	encoded, err := decompress(data[headerSize:], compression, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return encoded, nil
}

// WriteFile encodes model to path.
func WriteFile(path string, model *Model, compression Compression) error {
	var buffer bytes.Buffer
	if err := Encode(&buffer, model, compression); err != nil {
		return err
	}
	return os.WriteFile(path, buffer.Bytes(), 0o644)
}

// ReadFile decodes the model stored at path.
func ReadFile(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	model, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

func flatten(model *Model) *document {
	doc := &document{}
	nodes := model.Nodes()
	index := make(map[*Node]int, len(nodes))
	for i, node := range nodes {
		index[node] = i
	}
	blobs := make(map[binhash.Digest]int)

	for _, node := range nodes {
		digest := binhash.Sum(node.Blob)
		blob, ok := blobs[digest]
		if !ok {
			blob = len(doc.Blobs)
			blobs[digest] = blob
			doc.Blobs = append(doc.Blobs, blobRecord{Digest: digest, Data: node.Blob})
		}
		record := nodeRecord{
			Template:    string(node.Template),
			ContentType: node.ContentType,
			Blob:        blob,
			SlideID:     node.SlideID,
		}
		for _, edge := range node.Edges {
			target := -1
			if edge.Target != nil {
				target = index[edge.Target]
			}
			record.Edges = append(record.Edges, edgeRecord{
				ID:        edge.ID,
				Type:      edge.Type,
				External:  edge.External,
				TargetRef: edge.TargetRef,
				Target:    target,
				Owner:     edge.Owner,
			})
		}
		doc.Nodes = append(doc.Nodes, record)
	}
	for _, slide := range model.Slides {
		doc.Slides = append(doc.Slides, index[slide])
	}
	return doc
}

func inflate(doc *document) (*Model, error) {
	for i, blob := range doc.Blobs {
		if binhash.Sum(blob.Data) != blob.Digest {
			return nil, fmt.Errorf("%w: blob %d does not match its digest %s", ErrFormat, i, blob.Digest.Short())
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, record := range doc.Nodes {
		if record.Blob < 0 || record.Blob >= len(doc.Blobs) {
			return nil, fmt.Errorf("%w: node %d references blob %d of %d", ErrFormat, i, record.Blob, len(doc.Blobs))
		}
		nodes[i] = &Node{
			Template:    partname.Template(record.Template),
			ContentType: record.ContentType,
			Blob:        doc.Blobs[record.Blob].Data,
			SlideID:     record.SlideID,
		}
	}
	for i, record := range doc.Nodes {
		for _, edgeRecord := range record.Edges {
			edge := Edge{
				ID:        edgeRecord.ID,
				Type:      edgeRecord.Type,
				External:  edgeRecord.External,
				TargetRef: edgeRecord.TargetRef,
				Owner:     edgeRecord.Owner,
			}
			if edgeRecord.Target >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d edge %s targets node %d of %d", ErrFormat, i, edge.ID, edgeRecord.Target, len(nodes))
			}
			if edgeRecord.Target >= 0 {
				edge.Target = nodes[edgeRecord.Target]
			}
			nodes[i].Edges = append(nodes[i].Edges, edge)
		}
	}

	model := &Model{}
	for _, slide := range doc.Slides {
		if slide < 0 || slide >= len(nodes) {
			return nil, fmt.Errorf("%w: slide references node %d of %d", ErrFormat, slide, len(nodes))
		}
		model.Slides = append(model.Slides, nodes[slide])
	}
	return model, nil
}

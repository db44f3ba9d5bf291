// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm applied to an encoded model.
// The values are stored in the model header and must not change.
type Compression uint8

const (
	// CompressionNone stores the CBOR document as is.
	CompressionNone Compression = 0

	// CompressionLZ4 is LZ4 block compression: fast, modest ratio.
	CompressionLZ4 Compression = 1

	// CompressionZstd is zstd at the default level. Markup payloads
	// compress well, so this is the default.
	CompressionZstd Compression = 2
)

// String returns the name used in flags and configuration.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4 or zstd)", name)
	}
}

// errIncompressible is returned when compressed output would not be
// smaller than its input. Callers fall back to CompressionNone.
var errIncompressible = errors.New("data is incompressible")

func compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		return compressLZ4(data)
	case CompressionZstd:
		return compressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression %d", uint8(compression))
	}
}

func decompress(compressed []byte, compression Compression, size int) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if len(compressed) != size {
			return nil, fmt.Errorf("uncompressed model: size %d does not match header %d", len(compressed), size)
		}
		return compressed, nil
	case CompressionLZ4:
		return decompressLZ4(compressed, size)
	case CompressionZstd:
		return decompressZstd(compressed, size)
	default:
		return nil, fmt.Errorf("unsupported compression %d", uint8(compression))
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use and costly
// to build, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("template: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("template: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, size int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
	}
	return result, nil
}

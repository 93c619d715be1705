// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm applied to an encoded payload.
// The string values appear in configuration files, in the socket
// envelope's "encoding" field, and (for gzip and zstd) in the HTTP
// Content-Encoding header, so they must not change.
type Compression string

const (
	// CompressionNone sends the payload as encoded.
	CompressionNone Compression = ""

	// CompressionGzip is understood by every HTTP stack. Only useful
	// for large batches; a typical three-record batch is a few
	// hundred bytes.
	CompressionGzip Compression = "gzip"

	// CompressionZstd gives the best ratio for the repetitive text in
	// fanned-out batches.
	CompressionZstd Compression = "zstd"

	// CompressionLZ4 is the cheapest option and is only accepted by
	// the socket transport (there is no HTTP content coding for it).
	CompressionLZ4 Compression = "lz4"
)

// ParseCompression parses a compression name. "none" and the empty
// string both select CompressionNone.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q (want none, gzip, zstd, or lz4)", name)
	}
}

// String returns the configuration name of the compression.
func (c Compression) String() string {
	if c == CompressionNone {
		return "none"
	}
	return string(c)
}

// Compress returns data compressed with the given algorithm. For
// CompressionNone, data is returned unchanged.
func Compress(compression Compression, data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	var writer io.WriteCloser
	var err error

	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		writer = gzip.NewWriter(&buffer)
	case CompressionZstd:
		writer, err = zstd.NewWriter(&buffer)
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
	case CompressionLZ4:
		writer = lz4.NewWriter(&buffer)
	default:
		return nil, fmt.Errorf("compress: unsupported compression %q", string(compression))
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("%s compress: %w", compression, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", compression, err)
	}
	return buffer.Bytes(), nil
}

// maxDecompressedSize bounds Decompress output. Batches are small; a
// payload that expands past this is malformed or hostile.
const maxDecompressedSize = 16 * 1024 * 1024

// Decompress reverses Compress.
func Decompress(compression Compression, data []byte) ([]byte, error) {
	var reader io.Reader

	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		gzipReader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case CompressionZstd:
		decoder, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		defer decoder.Close()
		reader = decoder
	case CompressionLZ4:
		reader = lz4.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("decompress: unsupported compression %q", string(compression))
	}

	output, err := io.ReadAll(io.LimitReader(reader, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", compression, err)
	}
	if len(output) > maxDecompressedSize {
		return nil, fmt.Errorf("%s decompress: output exceeds %d bytes", compression, maxDecompressedSize)
	}
	return output, nil
}

// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressRoundtrip(t *testing.T) {
	payload := []byte(strings.Repeat("Service Control Manager\x1f7036\x1fThe service entered the stopped state.", 50))

	for _, compression := range []Compression{CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4} {
		t.Run(compression.String(), func(t *testing.T) {
			compressed, err := Compress(compression, payload)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if compression != CompressionNone && len(compressed) >= len(payload) {
				t.Errorf("compressed size %d not smaller than input %d", len(compressed), len(payload))
			}

			restored, err := Decompress(compression, compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(restored, payload) {
				t.Errorf("roundtrip mismatch: got %d bytes, want %d", len(restored), len(payload))
			}
		})
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	for _, compression := range []Compression{CompressionGzip, CompressionZstd, CompressionLZ4} {
		if _, err := Decompress(compression, []byte("definitely not compressed")); err == nil {
			t.Errorf("%s: expected error decompressing garbage", compression)
		}
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		input   string
		want    Compression
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"gzip", CompressionGzip, false},
		{"zstd", CompressionZstd, false},
		{"lz4", CompressionLZ4, false},
		{"brotli", CompressionNone, true},
	}
	for _, test := range tests {
		got, err := ParseCompression(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseCompression(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("ParseCompression(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestCompressUnknown(t *testing.T) {
	if _, err := Compress(Compression("snappy"), []byte("x")); err == nil {
		t.Error("expected error for unknown compression")
	}
}

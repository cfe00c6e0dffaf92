package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("scheduled post content ", 100))

	for _, algo := range []CompressionAlgorithm{CompressionNone, CompressionGzip, CompressionBrotli} {
		compressed, err := CompressData(payload, algo)
		if err != nil {
			t.Fatalf("%s: compress failed: %v", algo, err)
		}

		out, err := DecompressData(compressed, algo)
		if err != nil {
			t.Fatalf("%s: decompress failed: %v", algo, err)
		}
		if !bytes.Equal(out, payload) {
			t.Errorf("%s: round trip mismatch", algo)
		}

		if algo != CompressionNone && len(compressed) >= len(payload) {
			t.Errorf("%s: compression did not shrink repetitive payload (%d >= %d)",
				algo, len(compressed), len(payload))
		}
	}
}

func TestCompressUnknownAlgorithm(t *testing.T) {
	if _, err := CompressData([]byte("x"), "zip"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
	if _, err := DecompressData([]byte("x"), "zip"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestBestCompression(t *testing.T) {
	if got := BestCompression([]byte("tiny")); got != CompressionNone {
		t.Errorf("small payload should skip compression, got %s", got)
	}
	large := []byte(strings.Repeat("a", 1000))
	if got := BestCompression(large); got != CompressionBrotli {
		t.Errorf("large payload should use brotli, got %s", got)
	}
}

// Package sha256 includes tests for the SHA-256 hasher adapter.
package sha256

import (
	"strings"
	"testing"
	"testing/iotest"
)

// TestHasherHashDeterministic ensures repeated hashing yields the same digest.
func TestHasherHashDeterministic(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.Hash(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	again, err := h.Hash(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Hash() repeat error = %v", err)
	}
	if again != got {
		t.Fatalf("expected deterministic hash, got %s vs %s", got, again)
	}
}

// TestHasherHashChunkedInput verifies the streaming digest is independent of
// read boundaries.
func TestHasherHashChunkedInput(t *testing.T) {
	t.Parallel()

	h := New()
	whole, err := h.Hash(strings.NewReader("some bytes to digest"))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	chunked, err := h.Hash(iotest.OneByteReader(strings.NewReader("some bytes to digest")))
	if err != nil {
		t.Fatalf("Hash() chunked error = %v", err)
	}
	if whole != chunked {
		t.Fatalf("expected %s, got %s", whole, chunked)
	}
}

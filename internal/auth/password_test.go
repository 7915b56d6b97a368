package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	h := NewPasswordHasher()

	hash, err := h.Hash("s3cret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-password" || hash == "" {
		t.Fatalf("hash must not echo the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}

	if !h.Verify("s3cret-password", hash) {
		t.Fatalf("correct password must verify")
	}
	if h.Verify("wrong-password", hash) {
		t.Fatalf("wrong password must not verify")
	}
	if h.Verify("s3cret-password", "not-a-hash") {
		t.Fatalf("garbage hash must not verify")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h := NewPasswordHasher()

	a, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password must differ")
	}
	if !h.Verify("same-input", a) || !h.Verify("same-input", b) {
		t.Fatalf("both hashes must verify")
	}
}

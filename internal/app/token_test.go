package app

import (
	"strings"
	"testing"
)

func TestGenerateOpaqueID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateOpaqueID()
		if err != nil {
			t.Fatalf("GenerateOpaqueID: %v", err)
		}
		if len(id) != opaqueIDLength {
			t.Fatalf("expected length %d, got %d", opaqueIDLength, len(id))
		}
		for _, c := range id {
			if !strings.ContainsRune(opaqueIDAlphabet, c) {
				t.Fatalf("id %q contains %q outside the alphabet", id, c)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestHashSecretDeterministic(t *testing.T) {
	a := HashSecret("secret")
	b := HashSecret("secret")
	if !ConstantTimeEqual(a, b) {
		t.Error("same input should hash to the same digest")
	}
	if ConstantTimeEqual(a, HashSecret("other")) {
		t.Error("different inputs should not collide")
	}
}

func TestConstantTimeEqualLengthMismatch(t *testing.T) {
	if ConstantTimeEqual([]byte("short"), []byte("longer input")) {
		t.Error("different lengths must not compare equal")
	}
	if !ConstantTimeEqual(nil, nil) {
		t.Error("two empty slices should compare equal")
	}
}

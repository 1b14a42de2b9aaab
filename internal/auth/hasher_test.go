package auth

import "testing"

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher()

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == "correct horse battery staple" {
		t.Fatalf("hash must be a non-empty transformation, got %q", hash)
	}

	if !h.Verify("correct horse battery staple", hash) {
		t.Error("correct password did not verify")
	}
	if h.Verify("wrong password", hash) {
		t.Error("wrong password verified")
	}
}

func TestHasherSaltedHashesDiffer(t *testing.T) {
	h := NewHasher()

	first, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same input are identical, salt is missing")
	}
}

func TestHasherMalformedHashVerifiesFalse(t *testing.T) {
	h := NewHasher()

	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$10$tooshort"} {
		if h.Verify("anything", hash) {
			t.Errorf("malformed hash %q verified", hash)
		}
	}
}

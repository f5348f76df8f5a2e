// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	ok, err := VerifyPassword("correct horse battery", hash)
	if err != nil || !ok {
		t.Fatalf("verify correct password: ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestOpaqueTokenRoundTrip(t *testing.T) {
	token, err := GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	hash := HashToken(token)
	if hash == token {
		t.Fatal("token stored unhashed")
	}
	if !CompareTokenHash(token, hash) {
		t.Fatal("token does not match its own hash")
	}
	if CompareTokenHash("other", hash) {
		t.Fatal("unrelated token matched")
	}
}

func TestGenerateOpaqueTokenUnique(t *testing.T) {
	a, _ := GenerateOpaqueToken()
	b, _ := GenerateOpaqueToken()
	if a == b {
		t.Fatal("two generated tokens are identical")
	}
}

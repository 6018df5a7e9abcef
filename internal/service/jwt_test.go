package service

import (
	"strings"
	"testing"
)

func TestMemberToken_RoundTrip(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := GenerateMemberToken(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	memberID, err := ParseMemberToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if memberID != 42 {
		t.Fatalf("member id = %d, want 42", memberID)
	}
}

func TestMemberToken_Tampered(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := GenerateMemberToken(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// flip the signature
	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := ParseMemberToken(strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestMemberToken_WrongSecret(t *testing.T) {
	InitJWTWithSecret("secret-one")
	token, err := GenerateMemberToken(7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	InitJWTWithSecret("secret-two")
	if _, err := ParseMemberToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

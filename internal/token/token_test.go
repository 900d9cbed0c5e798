package token

import "testing"

func TestSignAndVerify(t *testing.T) {
	s := NewSigner("test-secret")

	tok := s.Sign("3f1c2a9e-user")
	id, ok := s.Verify(tok)
	if !ok {
		t.Fatalf("Verify(%q) failed", tok)
	}
	if id != "3f1c2a9e-user" {
		t.Fatalf("user id = %q, want %q", id, "3f1c2a9e-user")
	}
}

func TestVerifyRejects(t *testing.T) {
	s := NewSigner("test-secret")
	other := NewSigner("other-secret")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no signature", token: "user."},
		{name: "no user", token: ".abc"},
		{name: "no separator", token: "demo-token"},
		{name: "foreign secret", token: other.Sign("user")},
		{name: "tampered user", token: "admin" + s.Sign("user")[len("user"):]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := s.Verify(tt.token); ok {
				t.Fatalf("Verify(%q) accepted invalid token", tt.token)
			}
		})
	}
}

func TestEmptySecretUsesDevSecret(t *testing.T) {
	client := NewSigner("")
	server := NewSigner("")

	id, ok := server.Verify(client.Sign("u1"))
	if !ok || id != "u1" {
		t.Fatalf("token from one default signer rejected by another: %q %v", id, ok)
	}

	if _, ok := NewSigner(DevSecret).Verify(client.Sign("u1")); !ok {
		t.Fatalf("empty secret must sign with DevSecret")
	}
	if _, ok := NewSigner("prod").Verify(client.Sign("u1")); ok {
		t.Fatalf("default token accepted by a signer with a real secret")
	}
}

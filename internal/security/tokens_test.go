package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	tok, err := p.IssueAccess("u1", "w1", "owner")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if tok.Token == "" || tok.ID == "" {
		t.Fatal("token or jti empty")
	}
	if !tok.ExpiresAt.After(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := p.ValidateAccess(tok.Token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "u1" || claims.WorkspaceID != "w1" || claims.Role != "owner" || claims.ID != tok.ID {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenProvider_ValidateInvalid(t *testing.T) {
	p, _ := NewTestTokenProvider()
	if _, err := p.ValidateAccess("invalid-token"); err != ErrInvalidToken {
		t.Errorf("ValidateAccess = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_ValidateExpired(t *testing.T) {
	p, _ := NewTestTokenProvider()
	tok, err := p.IssueAccess("u1", "w1", "owner")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p.nowF = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := p.ValidateAccess(tok.Token); err != ErrInvalidToken {
		t.Errorf("ValidateAccess expired = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_WrongKeyOrAudience(t *testing.T) {
	issuer, _ := NewTestTokenProvider()
	tok, _ := issuer.IssueAccess("u1", "w1", "owner")

	other, _ := NewTestTokenProvider()
	if _, err := other.ValidateAccess(tok.Token); err != ErrInvalidToken {
		t.Errorf("ValidateAccess with other key = %v, want ErrInvalidToken", err)
	}

	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	a := NewTokenProvider(key, key.Public(), "iss", "aud-a", time.Minute)
	b := NewTokenProvider(key, key.Public(), "iss", "aud-b", time.Minute)
	tok2, _ := a.IssueAccess("u1", "w1", "owner")
	if _, err := b.ValidateAccess(tok2.Token); err != ErrInvalidToken {
		t.Errorf("ValidateAccess with other audience = %v, want ErrInvalidToken", err)
	}
}

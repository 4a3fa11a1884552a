package auth

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndAuthenticate(t *testing.T) {
	f, err := Generate(map[string]PlainUser{
		"analyst1": {Email: "analyst@example.com", Name: "Analyst One", Password: "analystpass", Role: "analyst"},
		"ceo_acme": {Email: "ceo@acme.com", Name: "CEO Acme", Password: "ceopass", Role: "ceo", Company: "Acme"},
	})
	if err != nil {
		t.Fatal(err)
	}

	user, err := f.Authenticate("ceo_acme", "ceopass")
	if err != nil {
		t.Fatalf("expected successful login: %v", err)
	}
	if user.Role != "ceo" || user.Company != "Acme" {
		t.Errorf("unexpected user: %+v", user)
	}

	if _, err := f.Authenticate("ceo_acme", "wrong"); err == nil {
		t.Error("expected failure for wrong password")
	}
	if _, err := f.Authenticate("nobody", "x"); err == nil {
		t.Error("expected failure for unknown user")
	}

	// Hashes must not be plaintext.
	entry := f.Credentials.Usernames["analyst1"]
	if entry.Password == "analystpass" || !strings.HasPrefix(entry.Password, "$2") {
		t.Errorf("password not bcrypt-hashed: %q", entry.Password)
	}
}

func TestCredentialsSaveLoadRoundTrip(t *testing.T) {
	f, err := Generate(map[string]PlainUser{
		"owner": {Email: "owner@example.com", Name: "Owner", Password: "ownerpass", Role: "owner"},
	})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadCredentials(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loaded.Authenticate("owner", "ownerpass"); err != nil {
		t.Errorf("round-tripped credentials rejected valid login: %v", err)
	}
	if loaded.Cookie.Key != f.Cookie.Key {
		t.Error("cookie key changed across round trip")
	}
}

func TestLoadCredentialsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if _, err := LoadCredentials(path); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCookieSignVerify(t *testing.T) {
	s := NewSigner(CookieConfig{Name: "finrag_session", Key: "secret", ExpiryDays: 7})

	c := s.Issue("session-1")
	if c.Name != "finrag_session" {
		t.Errorf("unexpected cookie name %s", c.Name)
	}

	id, err := s.Verify(c.Value)
	if err != nil {
		t.Fatalf("expected valid cookie: %v", err)
	}
	if id != "session-1" {
		t.Errorf("expected session-1, got %s", id)
	}
}

func TestCookieTamperRejected(t *testing.T) {
	s := NewSigner(CookieConfig{Name: "finrag_session", Key: "secret", ExpiryDays: 7})
	c := s.Issue("session-1")

	tampered := strings.Replace(c.Value, "session-1", "session-2", 1)
	if _, err := s.Verify(tampered); err == nil {
		t.Error("expected tampered cookie to be rejected")
	}

	if _, err := s.Verify("garbage"); err == nil {
		t.Error("expected malformed cookie to be rejected")
	}
}

func TestCookieExpiry(t *testing.T) {
	s := &Signer{name: "finrag_session", key: []byte("secret"), ttl: -time.Hour}
	c := s.Issue("session-1")
	if _, err := s.Verify(c.Value); err == nil {
		t.Error("expected expired cookie to be rejected")
	}
}

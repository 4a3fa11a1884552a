package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Signer issues and verifies HMAC-signed session cookies. The cookie value is
// "sessionID|expiryUnix|signature"; tampering with any part invalidates it.
type Signer struct {
	name string
	key  []byte
	ttl  time.Duration
}

// NewSigner creates a cookie signer from cookie settings.
func NewSigner(cfg CookieConfig) *Signer {
	return &Signer{
		name: cfg.Name,
		key:  []byte(cfg.Key),
		ttl:  time.Duration(cfg.ExpiryDays) * 24 * time.Hour,
	}
}

// Issue returns a signed cookie carrying the session ID.
func (s *Signer) Issue(sessionID string) *http.Cookie {
	expires := time.Now().Add(s.ttl)
	value := s.sign(sessionID, expires.Unix())
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Expire returns a cookie that clears the session.
func (s *Signer) Expire() *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
}

// Name returns the cookie name.
func (s *Signer) Name() string {
	return s.name
}

// Verify checks the signature and expiry of a cookie value and returns the
// session ID it carries.
func (s *Signer) Verify(value string) (string, error) {
	parts := strings.Split(value, "|")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed session cookie")
	}

	sessionID := parts[0]
	expiresUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed session expiry")
	}
	if time.Now().Unix() > expiresUnix {
		return "", fmt.Errorf("session expired")
	}

	expected := s.sign(sessionID, expiresUnix)
	if !hmac.Equal([]byte(expected), []byte(value)) {
		return "", fmt.Errorf("session signature mismatch")
	}
	return sessionID, nil
}

func (s *Signer) sign(sessionID string, expiresUnix int64) string {
	payload := sessionID + "|" + strconv.FormatInt(expiresUnix, 10)
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return payload + "|" + hex.EncodeToString(mac.Sum(nil))
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"finrag/internal/domain"
)

// CredentialsFile mirrors the dashboard credentials layout: a map of
// usernames to bcrypt-hashed entries plus the cookie settings.
type CredentialsFile struct {
	Credentials Credentials  `yaml:"credentials"`
	Cookie      CookieConfig `yaml:"cookie"`
}

// Credentials wraps the username map.
type Credentials struct {
	Usernames map[string]UserEntry `yaml:"usernames"`
}

// UserEntry is one stored user record. Password holds a bcrypt hash.
type UserEntry struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Company  string `yaml:"company,omitempty"`
}

// CookieConfig holds session cookie settings.
type CookieConfig struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	ExpiryDays int    `yaml:"expiry_days"`
}

// PlainUser is an input record for credentials generation, with the password
// still in plaintext.
type PlainUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Company  string `yaml:"company,omitempty"`
}

// LoadCredentials reads and parses a credentials file.
func LoadCredentials(path string) (*CredentialsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var f CredentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if len(f.Credentials.Usernames) == 0 {
		return nil, fmt.Errorf("credentials file has no users")
	}
	if f.Cookie.Key == "" {
		return nil, fmt.Errorf("credentials file has no cookie key")
	}
	if f.Cookie.Name == "" {
		f.Cookie.Name = "finrag_session"
	}
	if f.Cookie.ExpiryDays <= 0 {
		f.Cookie.ExpiryDays = 7
	}
	return &f, nil
}

// Authenticate verifies a username/password pair against the stored bcrypt
// hash and returns the matched user.
func (f *CredentialsFile) Authenticate(username, password string) (domain.User, error) {
	entry, ok := f.Credentials.Usernames[username]
	if !ok {
		return domain.User{}, fmt.Errorf("unknown user %q", username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(entry.Password), []byte(password)); err != nil {
		return domain.User{}, fmt.Errorf("invalid password for %q", username)
	}
	return domain.User{
		Username:     username,
		Name:         entry.Name,
		Email:        entry.Email,
		PasswordHash: entry.Password,
		Role:         entry.Role,
		Company:      entry.Company,
	}, nil
}

// Generate hashes a plaintext user list into a credentials file with a fresh
// random cookie key.
func Generate(users map[string]PlainUser) (*CredentialsFile, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to generate")
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate cookie key: %w", err)
	}

	f := &CredentialsFile{
		Credentials: Credentials{Usernames: make(map[string]UserEntry, len(users))},
		Cookie: CookieConfig{
			Name:       "finrag_session",
			Key:        hex.EncodeToString(key),
			ExpiryDays: 7,
		},
	}

	// Deterministic iteration so repeated runs differ only in hashes.
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		u := users[name]
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %q: %w", name, err)
		}
		f.Credentials.Usernames[name] = UserEntry{
			Email:    u.Email,
			Name:     u.Name,
			Password: string(hash),
			Role:     u.Role,
			Company:  u.Company,
		}
	}
	return f, nil
}

// Save writes the credentials file with owner-only permissions.
func (f *CredentialsFile) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

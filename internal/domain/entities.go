package domain

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Chunk is the persisted unit of extracted document content, typically a
// markdown table or bullet list pulled out of an annual report.
type Chunk struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata carries the visibility and provenance fields attached to a chunk.
// Roles controls which user roles may see the chunk; an empty list means the
// chunk was ingested without an explicit role and inherits the uploader's.
type Metadata struct {
	Roles      []string `json:"role,omitempty"`
	Company    string   `json:"company,omitempty"`
	Statement  string   `json:"statement,omitempty"`
	FiscalYear string   `json:"fiscal_year,omitempty"`
	Pages      string   `json:"pages,omitempty"`
	Source     string   `json:"source,omitempty"`
	User       string   `json:"user,omitempty"`
}

// UnmarshalJSON accepts both the canonical list form and the legacy
// single-string form of the role field, normalizing to a list.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	aux := struct {
		Roles json.RawMessage `json:"role,omitempty"`
		*plain
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Roles) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(aux.Roles, &list); err == nil {
		m.Roles = list
		return nil
	}
	var single string
	if err := json.Unmarshal(aux.Roles, &single); err != nil {
		return fmt.Errorf("metadata role must be a string or a list of strings, got %s", string(aux.Roles))
	}
	if single != "" {
		m.Roles = []string{single}
	}
	return nil
}

// HasRole reports whether the chunk is visible to the given role.
func (m Metadata) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HashContent derives the chunk ID from its whitespace-trimmed content.
// The hash doubles as the dedup key: identical content always maps to the
// same ID no matter how often it is re-ingested.
func HashContent(content string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// ScoredChunk pairs a chunk with its squared L2 distance to a query
// embedding. Lower distance means more relevant.
type ScoredChunk struct {
	Chunk    Chunk
	Distance float64
}

// ChatMessage is one turn of a chat transcript.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Message string `json:"message"`
}

// User is an authenticated dashboard user.
type User struct {
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Company      string
}

// Session is the per-login state passed to request handlers. Credentials and
// the chat transcript live here rather than in package-level globals.
type Session struct {
	ID       string
	Username string
	Name     string
	Role     string
	Company  string
	History  []ChatMessage
}

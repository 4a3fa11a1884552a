package server

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"finrag/internal/domain"
)

// Registry holds live sessions in memory. Sessions die with the process;
// the signed cookie alone is not enough to resume one.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*domain.Session)}
}

// Create starts a session for an authenticated user.
func (r *Registry) Create(user domain.User) *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &domain.Session{
		ID:       uuid.NewString(),
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
		Company:  user.Company,
	}
	r.sessions[s.ID] = s
	return s
}

// Get looks up a session by ID.
func (r *Registry) Get(id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no active session %q", id)
	}
	return s, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// AppendHistory records a chat turn on the session transcript.
func (r *Registry) AppendHistory(id string, msgs ...domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.History = append(s.History, msgs...)
	}
}

// History returns a copy of the session transcript.
func (r *Registry) History(id string) []domain.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	out := make([]domain.ChatMessage, len(s.History))
	copy(out, s.History)
	return out
}

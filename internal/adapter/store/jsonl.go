package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"finrag/internal/domain"
)

// maxRecordSize bounds a single chunk record line.
const maxRecordSize = 1 << 20

// JSONLStore persists chunks as line-delimited JSON records, one chunk per
// line. Every mutation rewrites the backing file in full; that is acceptable
// only because the corpus stays at a few hundred chunks, and it is the
// documented scalability limit of this store.
//
// A single-writer, multiple-reader lock guards the load-merge-write cycle so
// concurrent sessions cannot observe a store mid-rewrite.
type JSONLStore struct {
	path string
	mu   sync.RWMutex
}

// NewJSONLStore creates a store backed by the given file, creating the parent
// directory if needed.
func NewJSONLStore(path string) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &JSONLStore{path: path}, nil
}

// Path returns the backing file path.
func (s *JSONLStore) Path() string {
	return s.path
}

// Append hashes each chunk, skips any whose hash already exists, and persists
// the merged collection. Returns the number of newly added chunks.
func (s *JSONLStore) Append(chunks []domain.Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readAll()
	if err != nil {
		return 0, err
	}

	ids := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		ids[c.ID] = struct{}{}
	}

	added := 0
	for _, c := range chunks {
		c.ID = domain.HashContent(c.Content)
		if _, ok := ids[c.ID]; ok {
			continue
		}
		ids[c.ID] = struct{}{}
		existing = append(existing, c)
		added++
	}

	if err := s.writeAll(existing); err != nil {
		return 0, err
	}
	return added, nil
}

// Load returns chunks matching the role and company filters. Role matches by
// set membership against the chunk's role list; company is an exact match.
// An empty filter places no restriction on that dimension.
func (s *JSONLStore) Load(role, company string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, err := s.readAll()
	if err != nil {
		return nil, err
	}

	if role == "" && company == "" {
		return chunks, nil
	}

	filtered := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if role != "" && !c.Metadata.HasRole(role) {
			continue
		}
		if company != "" && c.Metadata.Company != company {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

// All returns every chunk in the store.
func (s *JSONLStore) All() ([]domain.Chunk, error) {
	return s.Load("", "")
}

// Rewrite replaces the full store contents, recomputing every chunk ID from
// its content. Used by the cleanup pass.
func (s *JSONLStore) Rewrite(chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.ID = domain.HashContent(c.Content)
		out[i] = c
	}
	return s.writeAll(out)
}

// Count returns the number of stored chunks.
func (s *JSONLStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, err := s.readAll()
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (s *JSONLStore) readAll() ([]domain.Chunk, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var c domain.Chunk
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return nil, fmt.Errorf("corrupt record at %s:%d: %w", s.path, line, err)
		}
		chunks = append(chunks, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	return chunks, nil
}

func (s *JSONLStore) writeAll(chunks []domain.Chunk) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, c := range chunks {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return w.Flush()
}

package port

import "finrag/internal/domain"

// DocumentStore is the append-only chunk collection backing retrieval.
type DocumentStore interface {
	// Append computes the content hash for each chunk, skips any whose hash
	// already exists, persists the rest and returns the number added.
	Append(chunks []domain.Chunk) (int, error)

	// Load returns chunks matching the given filters. An empty role matches
	// every chunk; an empty company places no restriction on that dimension.
	Load(role, company string) ([]domain.Chunk, error)

	// All returns every chunk in the store.
	All() ([]domain.Chunk, error)

	// Rewrite replaces the full store contents, recomputing IDs.
	Rewrite(chunks []domain.Chunk) error

	// Count returns the number of stored chunks.
	Count() (int, error)
}

// IndexWriter rebuilds the persisted similarity-index artifact from scratch.
// There is no incremental insert or delete: the artifact is disposable and
// always recomputed from the current store contents.
type IndexWriter interface {
	Rebuild(ids []string, vectors [][]float32) error
}

package usecase

import (
	"fmt"

	"finrag/internal/adapter/index"
	"finrag/internal/domain"
	"finrag/internal/port"
)

// Retriever answers similarity queries over the role-filtered store. The
// filtered subset is embedded fresh and searched through a transient flat
// index on every call; at a few hundred chunks the recompute cost buys a
// much simpler design than metadata-aware filtering of a persistent index.
type Retriever struct {
	store    port.DocumentStore
	embedder port.Embedder
	topK     int
}

// NewRetriever creates a retriever with the given default top-k.
func NewRetriever(store port.DocumentStore, embedder port.Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		topK:     topK,
	}
}

// Retrieve returns up to k chunks visible to the role (and company, when
// given), most relevant first. An empty filtered store returns an empty
// result without touching the embedding provider. k <= 0 uses the default.
func (u *Retriever) Retrieve(query, role, company string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = u.topK
	}

	docs, err := u.store.Load(role, company)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	vectors, err := u.embedder.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	flat, err := index.NewFlat(vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	queryVecs, err := u.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVecs) == 0 {
		return nil, fmt.Errorf("embedding returned empty result for query")
	}

	neighbors, err := flat.Search(queryVecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]domain.ScoredChunk, len(neighbors))
	for i, n := range neighbors {
		results[i] = domain.ScoredChunk{
			Chunk:    docs[n.Position],
			Distance: n.Distance,
		}
	}
	return results, nil
}

// Contents extracts chunk contents from scored results, preserving order.
func Contents(results []domain.ScoredChunk) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Chunk.Content
	}
	return out
}

package usecase

import (
	"fmt"
	"strings"

	"finrag/internal/adapter/index"
	"finrag/internal/domain"
	"finrag/internal/port"
)

// Cleaner deduplicates the store: exact duplicates by trimmed content, then
// near-duplicates whose embeddings exceed the cosine similarity threshold.
// The earlier chunk wins in every merge.
type Cleaner struct {
	store     port.DocumentStore
	embedder  port.Embedder
	index     port.IndexWriter
	threshold float64
}

// NewCleaner creates a cleaner with the given similarity threshold.
func NewCleaner(store port.DocumentStore, embedder port.Embedder, index port.IndexWriter, threshold float64) *Cleaner {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.97
	}
	return &Cleaner{
		store:     store,
		embedder:  embedder,
		index:     index,
		threshold: threshold,
	}
}

// CleanupResult reports what one cleanup run removed.
type CleanupResult struct {
	Before          int
	ExactDuplicates int
	NearDuplicates  int
	After           int
}

// Run deduplicates the store in place and rebuilds the index from the
// survivors. progress, when non-nil, is called after each chunk's pairwise
// comparisons with (done, total).
func (u *Cleaner) Run(progress func(done, total int)) (*CleanupResult, error) {
	all, err := u.store.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	result := &CleanupResult{Before: len(all)}
	if len(all) == 0 {
		result.After = 0
		return result, nil
	}

	// Pass 1: drop exact duplicates by trimmed content.
	seen := make(map[string]bool, len(all))
	unique := make([]domain.Chunk, 0, len(all))
	for _, c := range all {
		key := strings.TrimSpace(c.Content)
		if seen[key] {
			result.ExactDuplicates++
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}

	// Pass 2: merge near-duplicates. All survivors are embedded once and
	// compared pairwise on the cached vectors.
	texts := make([]string, len(unique))
	for i, c := range unique {
		texts[i] = c.Content
	}
	vectors, err := u.embedder.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks for cleanup: %w", err)
	}

	merged := make([]bool, len(unique))
	for i := range unique {
		if merged[i] {
			if progress != nil {
				progress(i+1, len(unique))
			}
			continue
		}
		for j := i + 1; j < len(unique); j++ {
			if merged[j] {
				continue
			}
			if index.CosineSimilarity(vectors[i], vectors[j]) >= u.threshold {
				merged[j] = true
				result.NearDuplicates++
			}
		}
		if progress != nil {
			progress(i+1, len(unique))
		}
	}

	kept := make([]domain.Chunk, 0, len(unique))
	keptVectors := make([][]float32, 0, len(unique))
	for i, c := range unique {
		if !merged[i] {
			kept = append(kept, c)
			keptVectors = append(keptVectors, vectors[i])
		}
	}
	result.After = len(kept)

	if err := u.store.Rewrite(kept); err != nil {
		return nil, fmt.Errorf("failed to rewrite store: %w", err)
	}

	ids := make([]string, len(kept))
	for i, c := range kept {
		ids[i] = domain.HashContent(c.Content)
	}
	if err := u.index.Rebuild(ids, keptVectors); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}
	return result, nil
}

package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"finrag/internal/domain"
	"finrag/internal/port"
)

// chunkSplitter breaks extracted text on runs of blank lines.
var chunkSplitter = regexp.MustCompile(`\n{2,}`)

// Ingestor runs the ingestion pipeline: split extracted text into chunks,
// drop noise, append the survivors to the store and rebuild the index
// artifact from the full store contents.
type Ingestor struct {
	store         port.DocumentStore
	embedder      port.Embedder
	index         port.IndexWriter
	minChunkChars int
}

// NewIngestor creates an ingestor. minChunkChars is the noise threshold:
// chunks at or below it are discarded.
func NewIngestor(store port.DocumentStore, embedder port.Embedder, index port.IndexWriter, minChunkChars int) *Ingestor {
	return &Ingestor{
		store:         store,
		embedder:      embedder,
		index:         index,
		minChunkChars: minChunkChars,
	}
}

// IngestResult reports what one ingestion run did.
type IngestResult struct {
	ChunksSplit   int // chunks produced by splitting, before dedup
	ChunksAdded   int // chunks newly persisted
	ChunksDropped int // chunks below the noise threshold
	TotalChunks   int // store size after the run
}

// SplitChunks breaks text on blank-line boundaries and discards chunks at or
// below the noise threshold.
func (u *Ingestor) SplitChunks(text string) []string {
	parts := chunkSplitter.Split(strings.TrimSpace(text), -1)
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) > u.minChunkChars {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

// IngestText runs the full pipeline for one piece of extracted text. Chunks
// with no explicit role inherit the metadata's role list as given; callers
// set meta.Roles to the uploading user's role beforehand.
//
// The store append is durable even if the index rebuild afterwards fails;
// that inconsistency window closes on the next successful rebuild.
func (u *Ingestor) IngestText(text string, meta domain.Metadata) (*IngestResult, error) {
	pieces := chunkSplitter.Split(strings.TrimSpace(text), -1)
	result := &IngestResult{ChunksSplit: len(pieces)}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, p := range pieces {
		if len(p) <= u.minChunkChars {
			result.ChunksDropped++
			continue
		}
		chunks = append(chunks, domain.Chunk{Content: p, Metadata: meta})
	}

	if len(chunks) > 0 {
		added, err := u.store.Append(chunks)
		if err != nil {
			return nil, fmt.Errorf("failed to append chunks: %w", err)
		}
		result.ChunksAdded = added
	}

	if err := u.RebuildIndex(); err != nil {
		return nil, err
	}

	total, err := u.store.Count()
	if err != nil {
		return nil, err
	}
	result.TotalChunks = total
	return result, nil
}

// IngestChunks appends pre-formed chunks (seed data) and rebuilds the index.
func (u *Ingestor) IngestChunks(chunks []domain.Chunk) (*IngestResult, error) {
	result := &IngestResult{ChunksSplit: len(chunks)}

	kept := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Content) <= u.minChunkChars {
			result.ChunksDropped++
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) > 0 {
		added, err := u.store.Append(kept)
		if err != nil {
			return nil, fmt.Errorf("failed to append chunks: %w", err)
		}
		result.ChunksAdded = added
	}

	if err := u.RebuildIndex(); err != nil {
		return nil, err
	}

	total, err := u.store.Count()
	if err != nil {
		return nil, err
	}
	result.TotalChunks = total
	return result, nil
}

// RebuildIndex recomputes embeddings for the entire store, not just new
// chunks, and rewrites the index artifact wholesale. Recomputing everything
// is the only mechanism keeping the artifact consistent with the store.
func (u *Ingestor) RebuildIndex() error {
	all, err := u.store.All()
	if err != nil {
		return fmt.Errorf("failed to load store for rebuild: %w", err)
	}

	if len(all) == 0 {
		if err := u.index.Rebuild(nil, nil); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		return nil
	}

	texts := make([]string, len(all))
	ids := make([]string, len(all))
	for i, c := range all {
		texts[i] = c.Content
		ids[i] = c.ID
	}

	vectors, err := u.embedder.Embed(texts)
	if err != nil {
		return fmt.Errorf("failed to embed store contents: %w", err)
	}

	if err := u.index.Rebuild(ids, vectors); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	return nil
}

// ValidateExtractedText applies the upload bounds: non-empty, within the word
// budget and above the minimum word count.
func ValidateExtractedText(text string, minWords, maxWords int) error {
	words := len(strings.Fields(text))
	if text == "" || words < minWords {
		return fmt.Errorf("document could not be parsed correctly: only %d words extracted", words)
	}
	if words > maxWords {
		return fmt.Errorf("document is too large to process: %d words exceeds the %d-word limit", words, maxWords)
	}
	return nil
}

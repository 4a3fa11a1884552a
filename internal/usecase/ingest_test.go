package usecase

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"finrag/internal/adapter/index"
	"finrag/internal/adapter/store"
	"finrag/internal/domain"
)

// fakeEmbedder returns canned vectors when configured and deterministic
// length-based vectors otherwise. It counts calls so tests can assert the
// embedding provider was not touched.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) Embed(texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{float32(len(t)), float32(len(strings.Fields(t))), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int    { return 3 }
func (f *fakeEmbedder) ModelName() string { return "fake" }

func newTestPipeline(t *testing.T) (*Ingestor, *store.JSONLStore, *index.BoltIndex, *fakeEmbedder) {
	t.Helper()
	dir := t.TempDir()

	s, err := store.NewJSONLStore(filepath.Join(dir, "docs.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	idx, err := index.OpenBoltIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })

	emb := &fakeEmbedder{}
	return NewIngestor(s, emb, idx, 50), s, idx, emb
}

func TestSplitChunksDropsNoise(t *testing.T) {
	ing, _, _, _ := newTestPipeline(t)

	short := strings.Repeat("a", 40)
	long := strings.Repeat("b", 60)
	text := short + "\n\n" + long + "\n\n\n" + strings.Repeat("c", 51)

	chunks := ing.SplitChunks(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != long {
		t.Errorf("expected 60-char chunk kept first, got %q", chunks[0])
	}
}

func TestSplitChunksThresholdIsExclusive(t *testing.T) {
	ing, _, _, _ := newTestPipeline(t)

	exact := strings.Repeat("x", 50)
	if got := ing.SplitChunks(exact); len(got) != 0 {
		t.Errorf("50-char chunk must be dropped, got %v", got)
	}
	over := strings.Repeat("x", 51)
	if got := ing.SplitChunks(over); len(got) != 1 {
		t.Errorf("51-char chunk must be kept, got %v", got)
	}
}

func TestIngestTextIdempotent(t *testing.T) {
	ing, s, idx, _ := newTestPipeline(t)

	text := strings.Repeat("revenue ", 10) + "\n\n" + strings.Repeat("margin ", 10)
	meta := domain.Metadata{Roles: []string{"ceo"}, Company: "Acme"}

	first, err := ing.IngestText(text, meta)
	if err != nil {
		t.Fatal(err)
	}
	if first.ChunksAdded != 2 || first.TotalChunks != 2 {
		t.Fatalf("first ingest: %+v", first)
	}

	second, err := ing.IngestText(text, meta)
	if err != nil {
		t.Fatal(err)
	}
	if second.ChunksAdded != 0 {
		t.Errorf("re-ingest added %d chunks, want 0", second.ChunksAdded)
	}
	if second.TotalChunks != 2 {
		t.Errorf("store grew to %d chunks on re-ingest", second.TotalChunks)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("store count %d, want 2", count)
	}
	n, err := idx.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("index count %d, want 2", n)
	}
}

func TestIngestRebuildCoversWholeStore(t *testing.T) {
	ing, _, idx, _ := newTestPipeline(t)

	meta := domain.Metadata{Roles: []string{"analyst"}}
	if _, err := ing.IngestText(strings.Repeat("alpha ", 12), meta); err != nil {
		t.Fatal(err)
	}
	if _, err := ing.IngestText(strings.Repeat("beta ", 12), meta); err != nil {
		t.Fatal(err)
	}

	n, err := idx.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("index holds %d vectors after second ingest, want 2", n)
	}
}

func TestRebuildIndexEmptyStoreSkipsEmbedding(t *testing.T) {
	ing, _, _, emb := newTestPipeline(t)

	if err := ing.RebuildIndex(); err != nil {
		t.Fatal(err)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times on empty store, want 0", emb.calls)
	}
}

func TestIngestChunksSeedsStore(t *testing.T) {
	ing, s, _, _ := newTestPipeline(t)

	chunks := []domain.Chunk{
		{Content: strings.Repeat("cash flow ", 8), Metadata: domain.Metadata{Roles: []string{"ceo", "analyst"}}},
		{Content: "tiny", Metadata: domain.Metadata{Roles: []string{"ceo"}}},
	}
	res, err := ing.IngestChunks(chunks)
	if err != nil {
		t.Fatal(err)
	}
	if res.ChunksAdded != 1 || res.ChunksDropped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 stored chunk, got %d", len(all))
	}
	if all[0].ID != domain.HashContent(all[0].Content) {
		t.Error("stored chunk ID does not match content hash")
	}
}

func TestValidateExtractedText(t *testing.T) {
	cases := []struct {
		words   int
		wantErr bool
	}{
		{words: 10, wantErr: true},
		{words: 49, wantErr: true},
		{words: 50, wantErr: false},
		{words: 8000, wantErr: false},
		{words: 8001, wantErr: true},
	}
	for _, tc := range cases {
		text := strings.TrimSpace(strings.Repeat("word ", tc.words))
		err := ValidateExtractedText(text, 50, 8000)
		if (err != nil) != tc.wantErr {
			t.Errorf("%d words: err=%v, wantErr=%v", tc.words, err, tc.wantErr)
		}
	}
	if err := ValidateExtractedText("", 50, 8000); err == nil {
		t.Error("empty text must be rejected")
	}
}

func TestIngestPreservesMetadata(t *testing.T) {
	ing, s, _, _ := newTestPipeline(t)

	meta := domain.Metadata{
		Roles:      []string{"inventory_manager"},
		Company:    "Globex",
		Statement:  "balance_sheet",
		FiscalYear: "2024",
		Source:     "globex_annual_2024.pdf",
		User:       "im_globex",
	}
	if _, err := ing.IngestText(strings.Repeat("inventory turnover ", 5), meta); err != nil {
		t.Fatal(err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(all))
	}
	got := all[0].Metadata
	if fmt.Sprintf("%v", got.Roles) != "[inventory_manager]" || got.Company != "Globex" || got.FiscalYear != "2024" {
		t.Errorf("metadata not preserved: %+v", got)
	}
}

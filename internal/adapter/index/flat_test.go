package index

import (
	"math"
	"testing"
)

func TestFlatSearchOrdering(t *testing.T) {
	vectors := [][]float32{
		{10, 0}, // far
		{1, 0},  // nearest
		{3, 0},  // middle
	}
	f, err := NewFlat(vectors)
	if err != nil {
		t.Fatal(err)
	}

	results, err := f.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantOrder := []int{1, 2, 0}
	for i, r := range results {
		if r.Position != wantOrder[i] {
			t.Errorf("result %d: expected position %d, got %d", i, wantOrder[i], r.Position)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("distances not non-decreasing: %v", results)
		}
	}
}

func TestFlatSearchFewerThanK(t *testing.T) {
	f, err := NewFlat([][]float32{{1, 1}, {2, 2}})
	if err != nil {
		t.Fatal(err)
	}

	results, err := f.Search([]float32{0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected all 2 vectors when k exceeds size, got %d", len(results))
	}
}

func TestFlatSearchEmpty(t *testing.T) {
	f, err := NewFlat(nil)
	if err != nil {
		t.Fatal(err)
	}
	results, err := f.Search([]float32{1}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results on empty index, got %v", results)
	}
}

func TestFlatDimensionMismatch(t *testing.T) {
	if _, err := NewFlat([][]float32{{1, 2}, {1, 2, 3}}); err == nil {
		t.Error("expected error for ragged input vectors")
	}

	f, err := NewFlat([][]float32{{1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Search([]float32{1, 2, 3}, 1); err == nil {
		t.Error("expected error for query dimension mismatch")
	}
}

func TestSquaredL2(t *testing.T) {
	got := squaredL2([]float32{1, 2}, []float32{4, 6})
	if got != 25 {
		t.Errorf("expected 25, got %f", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: expected 1, got %f", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero vector: expected 0, got %f", got)
	}
	if got := CosineSimilarity([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("mismatched lengths: expected 0, got %f", got)
	}
}

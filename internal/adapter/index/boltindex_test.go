package index

import (
	"path/filepath"
	"testing"
)

func openTestIndex(t *testing.T) *BoltIndex {
	t.Helper()
	x, err := OpenBoltIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { x.Close() })
	return x
}

func TestBoltIndexRebuild(t *testing.T) {
	x := openTestIndex(t)

	ids := []string{"a", "b"}
	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}}
	if err := x.Rebuild(ids, vectors); err != nil {
		t.Fatal(err)
	}

	count, err := x.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 vectors, got %d", count)
	}

	dim, err := x.Dimension()
	if err != nil {
		t.Fatal(err)
	}
	if dim != 3 {
		t.Errorf("expected dimension 3, got %d", dim)
	}

	vec, err := x.Vector("b")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 3 || vec[0] != 4 {
		t.Errorf("unexpected vector for b: %v", vec)
	}
}

func TestBoltIndexRebuildReplacesAll(t *testing.T) {
	x := openTestIndex(t)

	if err := x.Rebuild([]string{"a", "b", "c"}, [][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatal(err)
	}
	// A rebuild with a smaller set drops the rest wholesale.
	if err := x.Rebuild([]string{"a"}, [][]float32{{9}}); err != nil {
		t.Fatal(err)
	}

	count, err := x.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 vector after rebuild, got %d", count)
	}
	if vec, _ := x.Vector("b"); vec != nil {
		t.Errorf("expected b to be gone, got %v", vec)
	}
}

func TestBoltIndexEmptyRebuild(t *testing.T) {
	x := openTestIndex(t)

	if err := x.Rebuild(nil, nil); err != nil {
		t.Fatal(err)
	}
	count, err := x.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected empty artifact, got %d vectors", count)
	}
}

func TestBoltIndexLengthMismatch(t *testing.T) {
	x := openTestIndex(t)
	if err := x.Rebuild([]string{"a"}, nil); err == nil {
		t.Error("expected error for ids/vectors mismatch")
	}
}

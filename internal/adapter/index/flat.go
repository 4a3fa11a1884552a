package index

import (
	"fmt"
	"math"
	"sort"
)

// Neighbor is one search hit: the position of a stored vector and its squared
// L2 distance to the query.
type Neighbor struct {
	Position int
	Distance float64
}

// Flat is a brute-force nearest-neighbor structure over a fixed vector set.
// Position i of the index corresponds to position i of the input. It is
// rebuilt from scratch whenever the underlying chunks change; there is no
// incremental insert or delete, which keeps the index trivially consistent
// with the store at the cost of recompute.
type Flat struct {
	vectors   [][]float32
	dimension int
}

// NewFlat builds a flat index over the given vectors.
func NewFlat(vectors [][]float32) (*Flat, error) {
	f := &Flat{vectors: vectors}
	if len(vectors) > 0 {
		f.dimension = len(vectors[0])
		for i, v := range vectors {
			if len(v) != f.dimension {
				return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), f.dimension)
			}
		}
	}
	return f, nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Search returns the k nearest stored vectors by ascending squared L2
// distance. If fewer than k vectors exist, all of them are returned.
func (f *Flat) Search(query []float32, k int) ([]Neighbor, error) {
	if len(f.vectors) == 0 {
		return nil, nil
	}
	if len(query) != f.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", f.dimension, len(query))
	}

	neighbors := make([]Neighbor, len(f.vectors))
	for i, v := range f.vectors {
		neighbors[i] = Neighbor{Position: i, Distance: squaredL2(query, v)}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Position < neighbors[j].Position
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}
	return neighbors[:k], nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Used by the cleanup pass to detect near-duplicate chunks.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
)

// BoltIndex is the on-disk similarity-index artifact, paired with the chunk
// record file. It is a derived, disposable structure: after every ingestion
// or cleanup it is rebuilt wholesale from the current store contents, so it
// carries no invariant beyond matching the store at last rebuild. It is not
// meant to be read independently of its store file.
type BoltIndex struct {
	db *bbolt.DB
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

// OpenBoltIndex opens (or creates) the index artifact at the given path.
func OpenBoltIndex(path string) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index artifact: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltIndex{db: db}, nil
}

// Close closes the underlying database.
func (x *BoltIndex) Close() error {
	return x.db.Close()
}

// Rebuild replaces the artifact contents with the given id/vector pairs.
// The previous contents are dropped first; partial rebuilds do not exist.
func (x *BoltIndex) Rebuild(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids/vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}

	return x.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}

		dimension := 0
		for i, id := range ids {
			if dimension == 0 {
				dimension = len(vectors[i])
			} else if len(vectors[i]) != dimension {
				return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vectors[i]), dimension)
			}
			data, err := json.Marshal(storedVector{Vector: vectors[i]})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(dimension))
		return meta.Put(keyDimension, buf)
	})
}

// Count returns the number of stored vectors.
func (x *BoltIndex) Count() (int, error) {
	var count int
	err := x.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

// Dimension returns the vector dimension recorded at last rebuild, or zero
// for an empty artifact.
func (x *BoltIndex) Dimension() (int, error) {
	var dim int
	err := x.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		data := b.Get(keyDimension)
		if len(data) == 8 {
			dim = int(binary.BigEndian.Uint64(data))
		}
		return nil
	})
	return dim, err
}

// Vector returns the stored vector for a chunk ID, or nil when absent.
func (x *BoltIndex) Vector(id string) ([]float32, error) {
	var vec []float32
	err := x.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		var stored storedVector
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("corrupt vector record %s: %w", id, err)
		}
		vec = stored.Vector
		return nil
	})
	return vec, err
}

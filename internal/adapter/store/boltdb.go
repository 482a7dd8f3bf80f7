package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"ppdrag/internal/domain"
)

var (
	bucketVectors  = []byte("vectors")
	bucketManifest = []byte("manifest")
	keyManifest    = []byte("current")
)

// BoltStore holds the vector half of an index: one record per position plus the manifest.
type BoltStore struct {
	db *bbolt.DB
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

// CreateBoltStore creates a writable vector database at path.
func CreateBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketManifest} {
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

	return &BoltStore{db: db}, nil
}

// OpenBoltStore opens an existing vector database read-only.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// PutVectors stores vectors keyed by their position, in a single transaction.
func (s *BoltStore) PutVectors(vectors [][]float32) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return fmt.Errorf("vectors bucket not found")
		}
		for i, v := range vectors {
			data, err := json.Marshal(storedVector{Vector: v})
			if err != nil {
				return err
			}
			if err := b.Put(positionKey(i), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Vectors returns every stored vector in position order.
func (s *BoltStore) Vectors() ([][]float32, error) {
	var vectors [][]float32
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return fmt.Errorf("vectors bucket not found")
		}
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("malformed vector key %x", k)
			}
			pos := binary.BigEndian.Uint64(k)
			if pos != uint64(len(vectors)) {
				return fmt.Errorf("vector positions not contiguous: expected %d, got %d", len(vectors), pos)
			}
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("corrupt vector at position %d: %w", pos, err)
			}
			vectors = append(vectors, stored.Vector)
			return nil
		})
	})
	return vectors, err
}

func (s *BoltStore) PutManifest(m domain.Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketManifest).Put(keyManifest, data)
	})
}

func (s *BoltStore) Manifest() (domain.Manifest, error) {
	var m domain.Manifest
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketManifest)
		if b == nil {
			return fmt.Errorf("manifest bucket not found")
		}
		data := b.Get(keyManifest)
		if data == nil {
			return fmt.Errorf("manifest not found")
		}
		return json.Unmarshal(data, &m)
	})
	return m, err
}

func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

package offset

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

const (
	bucketName = "positions"
)

// BoltDBStore implements Store using BoltDB.
type BoltDBStore struct {
	db *bbolt.DB
}

// NewBoltDBStore creates a new BoltDB position store.
func NewBoltDBStore(dbPath string) (*BoltDBStore, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		// A locked file usually means a previous instance is still
		// running or was killed without a graceful shutdown.
		return nil, fmt.Errorf("failed to open boltdb (file may be locked by another process): %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	log.Info().
		Str("db_path", dbPath).
		Msg("BoltDB position store initialized")

	return &BoltDBStore{db: db}, nil
}

// Get retrieves the position for a file path.
func (s *BoltDBStore) Get(ctx context.Context, filePath string) (TailPosition, error) {
	var pos TailPosition

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		val := b.Get([]byte(filePath))
		if val == nil {
			return nil
		}
		if len(val) < 16 {
			return fmt.Errorf("invalid position value")
		}

		pos.Offset = int64(binary.BigEndian.Uint64(val[:8]))
		pos.Size = int64(binary.BigEndian.Uint64(val[8:16]))
		return nil
	})

	if err != nil {
		return TailPosition{}, fmt.Errorf("failed to get position: %w", err)
	}

	return pos, nil
}

// Set stores the position for a file path.
func (s *BoltDBStore) Set(ctx context.Context, filePath string, pos TailPosition) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		val := make([]byte, 16)
		binary.BigEndian.PutUint64(val[:8], uint64(pos.Offset))
		binary.BigEndian.PutUint64(val[8:16], uint64(pos.Size))

		return b.Put([]byte(filePath), val)
	})

	if err != nil {
		return fmt.Errorf("failed to set position: %w", err)
	}

	log.Debug().
		Str("file_path", filePath).
		Int64("offset", pos.Offset).
		Int64("size", pos.Size).
		Msg("Position updated")

	return nil
}

// Delete removes the stored position for a file path.
func (s *BoltDBStore) Delete(ctx context.Context, filePath string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(filePath))
	})

	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	return nil
}

// List returns all stored positions keyed by file path.
func (s *BoltDBStore) List(ctx context.Context) (map[string]TailPosition, error) {
	result := make(map[string]TailPosition)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			if len(v) >= 16 {
				result[string(k)] = TailPosition{
					Offset: int64(binary.BigEndian.Uint64(v[:8])),
					Size:   int64(binary.BigEndian.Uint64(v[8:16])),
				}
			}
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	return result, nil
}

// Close closes the BoltDB database.
func (s *BoltDBStore) Close() error {
	log.Info().Msg("Closing BoltDB position store")
	return s.db.Close()
}

package db

import (
	"encoding/json"
	"errors"

	"github.com/fedragon/rawrename/internal/models"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// Repository remembers renames by content hash, so a file can be traced back
// to its original name after it moved.
type Repository interface {
	Store(hash []byte, entry models.LedgerEntry) error
	Lookup(hash []byte) ([]models.LedgerEntry, error)
	Sweep(keep func(models.LedgerEntry) bool) (int, error)
}

type BoltRepository struct {
	db     *bolt.DB
	logger *zap.Logger
}

func NewRepository(db *bolt.DB, logger *zap.Logger) (Repository, error) {
	if db == nil {
		return nil, errors.New("nil database")
	}

	return &BoltRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *BoltRepository) Store(hash []byte, entry models.LedgerEntry) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return errors.New("bucket doesn't exist")
		}

		var entries []models.LedgerEntry
		if bytes := bucket.Get(hash); bytes != nil {
			if err := json.Unmarshal(bytes, &entries); err != nil {
				return err
			}
		}

		for _, e := range entries {
			if e.Dir == entry.Dir && e.Original == entry.Original && e.New == entry.New {
				// rename already recorded
				return nil
			}
		}
		entries = append(entries, entry)

		marshalled, err := json.Marshal(&entries)
		if err != nil {
			return err
		}

		return bucket.Put(hash, marshalled)
	})
}

func (r *BoltRepository) Lookup(hash []byte) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return errors.New("bucket doesn't exist")
		}

		bytes := bucket.Get(hash)
		if bytes == nil {
			return nil
		}
		return json.Unmarshal(bytes, &entries)
	})

	return entries, err
}

// Sweep drops the entries for which keep returns false, and returns how many
// were dropped.
func (r *BoltRepository) Sweep(keep func(models.LedgerEntry) bool) (int, error) {
	var swept int

	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return errors.New("bucket doesn't exist")
		}

		var empty [][]byte
		updated := make(map[string][]byte)
		c := bucket.Cursor()
		for hash, v := c.First(); hash != nil; hash, v = c.Next() {
			var entries []models.LedgerEntry
			if err := json.Unmarshal(v, &entries); err != nil {
				return err
			}

			kept := entries[:0]
			for _, e := range entries {
				if keep(e) {
					kept = append(kept, e)
				} else {
					r.logger.Debug("Sweeping stale entry", zap.String("dir", e.Dir), zap.String("file", e.New))
					swept++
				}
			}

			if len(kept) == 0 {
				empty = append(empty, append([]byte(nil), hash...))
				continue
			}
			if len(kept) == len(entries) {
				continue
			}

			marshalled, err := json.Marshal(&kept)
			if err != nil {
				return err
			}
			updated[string(hash)] = marshalled
		}

		// the cursor is invalidated by writes, so they happen after iterating
		for hash, v := range updated {
			if err := bucket.Put([]byte(hash), v); err != nil {
				return err
			}
		}
		for _, hash := range empty {
			if err := bucket.Delete(hash); err != nil {
				return err
			}
		}

		return nil
	})

	return swept, err
}

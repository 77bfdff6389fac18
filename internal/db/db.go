package db

import (
	"time"

	"github.com/boltdb/bolt"
)

var bucketName = []byte("Renames")

func Connect(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
}

// Init creates the ledger bucket if missing.
func Init(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
}

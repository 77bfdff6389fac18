package core

import (
	"fmt"

	"github.com/fedragon/rawrename/internal/db"
	"github.com/fedragon/rawrename/internal/fs"
	"github.com/fedragon/rawrename/internal/metrics"
	"github.com/fedragon/rawrename/internal/models"
)

// Whois returns the recorded renames of the file at path, matched by content.
func Whois(repo db.Repository, mx *metrics.Metrics, path string) ([]models.LedgerEntry, error) {
	hash, err := fs.Hash(mx, path)
	if err != nil {
		return nil, fmt.Errorf("unable to hash %v: %w", path, err)
	}

	return repo.Lookup(hash)
}

package core

import (
	"os"
	"path/filepath"

	"github.com/fedragon/rawrename/internal/db"
	"github.com/fedragon/rawrename/internal/models"

	"go.uber.org/zap"
)

// Sweep drops ledger entries whose renamed file is gone.
func Sweep(repo db.Repository, logger *zap.Logger) (int, error) {
	logger.Info("Sweeping stale entries...")

	swept, err := repo.Sweep(func(e models.LedgerEntry) bool {
		_, err := os.Stat(filepath.Join(e.Dir, e.New))
		return err == nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Swept stale entries", zap.Int("count", swept))
	return swept, nil
}

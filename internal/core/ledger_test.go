package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fedragon/rawrename/internal/db"
	"github.com/fedragon/rawrename/internal/fs"
	"github.com/fedragon/rawrename/internal/metrics"
	"github.com/fedragon/rawrename/internal/models"

	"go.uber.org/zap/zaptest"
)

func newRepo(t *testing.T) db.Repository {
	t.Helper()

	dbase, err := db.Connect(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf(err.Error())
	}
	t.Cleanup(func() { _ = dbase.Close() })
	if err := db.Init(dbase); err != nil {
		t.Fatalf(err.Error())
	}

	repo, err := db.NewRepository(dbase, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf(err.Error())
	}
	return repo
}

func TestWhoisAndSweep(t *testing.T) {
	mx := metrics.NoMetrics()
	repo := newRepo(t)
	dir := t.TempDir()
	touch(t, dir, "NEW.cr2", "GONE.cr2")

	for _, name := range []string{"NEW.cr2", "GONE.cr2"} {
		hash, err := fs.Hash(mx, filepath.Join(dir, name))
		if err != nil {
			t.Fatalf(err.Error())
		}
		entry := models.LedgerEntry{Dir: dir, Original: "IMG_" + name, New: name}
		if err := repo.Store(hash, entry); err != nil {
			t.Fatalf(err.Error())
		}
	}

	entries, err := Whois(repo, mx, filepath.Join(dir, "NEW.cr2"))
	if err != nil {
		t.Fatalf(err.Error())
	}
	if len(entries) != 1 || entries[0].Original != "IMG_NEW.cr2" {
		t.Errorf("Expected the original name IMG_NEW.cr2 but got %v instead", entries)
	}

	// same content elsewhere, to look the hash up once the original is gone
	other := t.TempDir()
	touch(t, other, "GONE.cr2")
	if err := os.Remove(filepath.Join(dir, "GONE.cr2")); err != nil {
		t.Fatalf(err.Error())
	}

	swept, err := Sweep(repo, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf(err.Error())
	}
	if swept != 1 {
		t.Errorf("Expected 1 swept entry but got %v instead", swept)
	}

	entries, err = Whois(repo, mx, filepath.Join(other, "GONE.cr2"))
	if err != nil {
		t.Fatalf(err.Error())
	}
	if len(entries) != 0 {
		t.Errorf("Expected the stale entry to be swept but got %v instead", entries)
	}
}

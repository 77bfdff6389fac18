package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fedragon/rawrename/internal/metrics"
	"github.com/fedragon/rawrename/internal/models"

	"go.uber.org/zap"
	"lukechampine.com/blake3"
)

const CR2 = "cr2"

// NormalizeExt lowercases ext and strips its leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Listing is one non-recursive snapshot of a directory's file names, kept in
// the order the operating system returned them.
type Listing struct {
	Dir   string
	Names []string
	exact map[string]bool
	lower map[string]string
}

// List reads the names of the regular files in dir.
func List(dir string) (*Listing, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to list %v: %w", dir, err)
	}
	defer d.Close()

	// Readdir keeps directory order, unlike os.ReadDir which sorts.
	entries, err := d.Readdir(-1)
	if err != nil {
		return nil, fmt.Errorf("unable to list %v: %w", dir, err)
	}

	l := &Listing{
		Dir:   dir,
		exact: make(map[string]bool, len(entries)),
		lower: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		l.Names = append(l.Names, e.Name())
		l.add(e.Name())
	}

	return l, nil
}

func (l *Listing) add(name string) {
	l.exact[name] = true
	if _, ok := l.lower[strings.ToLower(name)]; !ok {
		l.lower[strings.ToLower(name)] = name
	}
}

// Contains reports whether name is currently in the listing.
func (l *Listing) Contains(name string) bool {
	return l.exact[name]
}

// Find returns the on-disk name matching base.ext, ignoring case. An exact
// match wins over other casings.
func (l *Listing) Find(base, ext string) (string, bool) {
	name := base + "." + ext
	if l.exact[name] {
		return name, true
	}
	found, ok := l.lower[strings.ToLower(name)]
	return found, ok
}

// Move records a rename done after the listing was taken. Names keeps the
// original order and content.
func (l *Listing) Move(from, to string) {
	delete(l.exact, from)
	if l.lower[strings.ToLower(from)] == from {
		delete(l.lower, strings.ToLower(from))
		for n := range l.exact {
			if strings.EqualFold(n, from) {
				l.lower[strings.ToLower(n)] = n
				break
			}
		}
	}
	l.add(to)
}

// Candidates returns the raw files of the listing with the given extension,
// in listing order.
func Candidates(logger *zap.Logger, mx *metrics.Metrics, l *Listing, rawExt string) []models.Media {
	want := "." + NormalizeExt(rawExt)

	var media []models.Media
	for _, name := range l.Names {
		mx.Increment("scanned")

		if strings.ToLower(filepath.Ext(name)) != want {
			continue
		}
		logger.Debug("Found raw file", zap.String("file", name))

		media = append(media, models.Media{
			Name: name,
			Path: filepath.Join(l.Dir, name),
		})
	}

	return media
}

// Hash returns the blake3 digest of the file content.
func Hash(mx *metrics.Metrics, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stop := mx.Record("hash")
	defer stop()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

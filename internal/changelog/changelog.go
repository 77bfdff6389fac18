// Package changelog appends completed renames to the plain-text log kept in
// each processed directory.
package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fedragon/rawrename/internal/models"
)

// FileName is the log file created inside the processed directory.
const FileName = "name_change.log"

const separator = "  >>>  "

// Log appends rename records to <dir>/name_change.log.
type Log struct {
	path string
}

// New returns the log of dir. Nothing is created until the first Append.
func New(dir string) *Log {
	return &Log{path: filepath.Join(dir, FileName)}
}

// Path returns the location of the log file.
func (l *Log) Path() string {
	return l.path
}

// Check reports whether r can be written as a single, parseable log line.
func Check(r models.RenameRecord) error {
	for _, name := range []string{r.Original, r.New} {
		if strings.ContainsAny(name, "\r\n") || strings.Contains(name, separator) {
			return fmt.Errorf("file name %q cannot be recorded in the change log", name)
		}
	}
	return nil
}

// Append writes one record and syncs it to disk before returning. The file is
// opened for appending on every call and never truncated.
func (l *Log) Append(r models.RenameRecord) (err error) {
	if err := Check(r); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open change log %v: %w", l.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close change log %v: %w", l.path, cerr)
		}
	}()

	if _, err = io.WriteString(f, Format(r)); err != nil {
		return fmt.Errorf("unable to write change log %v: %w", l.path, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("unable to sync change log %v: %w", l.path, err)
	}

	return nil
}

// Read returns all records in the log, oldest first. A missing log yields no
// records.
func (l *Log) Read() ([]models.RenameRecord, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []models.RenameRecord
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if text == "" {
			continue
		}
		r, err := Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%v:%d: %w", l.path, line, err)
		}
		records = append(records, r)
	}

	return records, scanner.Err()
}

// Format renders a record as a log line, newline included.
func Format(r models.RenameRecord) string {
	return r.Original + separator + r.New + "\n"
}

// Parse reads a single log line without its newline.
func Parse(line string) (models.RenameRecord, error) {
	original, renamed, ok := strings.Cut(line, separator)
	if !ok {
		return models.RenameRecord{}, fmt.Errorf("malformed change log line %q", line)
	}
	return models.RenameRecord{Original: original, New: renamed}, nil
}

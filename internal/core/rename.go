package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fedragon/rawrename/internal/changelog"
	"github.com/fedragon/rawrename/internal/fs"
	"github.com/fedragon/rawrename/internal/metrics"
	"github.com/fedragon/rawrename/internal/models"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// GroupRenamer applies one new base name to every file of a group.
type GroupRenamer interface {
	RenameGroup(l *fs.Listing, rawName, newBase string, exts []string) (GroupResult, error)
}

// GroupResult lists what happened to each file of a group found on disk, and
// the renames that were applied and logged.
type GroupResult struct {
	Siblings []models.SiblingResult
	Applied  []models.RenameRecord
}

// Renamed reports whether at least one file of the group ended up (or would
// end up) with the new base name.
func (g GroupResult) Renamed() bool {
	for _, s := range g.Siblings {
		if s.Status != models.Collision {
			return true
		}
	}
	return false
}

type SequentialRenamer struct {
	Log     *changelog.Log
	DryRun  bool
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	planned map[string]bool
}

// RenameGroup renames rawName and each <base>.<ext> sharing its base name to
// <newBase>.<ext>, in exts order. The raw file itself is always the source for
// its own extension, even when other casings of it exist. Extensions with no
// matching file are skipped. Existing targets are never overwritten. Each
// rename is logged before the next one starts; if the log cannot be written
// the rename is reverted and the error returned.
func (r *SequentialRenamer) RenameGroup(l *fs.Listing, rawName, newBase string, exts []string) (GroupResult, error) {
	var res GroupResult

	rawExt := filepath.Ext(rawName)
	originalBase := strings.TrimSuffix(rawName, rawExt)

	for _, ext := range exts {
		ext = fs.NormalizeExt(ext)

		from, ok := rawName, l.Contains(rawName)
		if ext != fs.NormalizeExt(rawExt) {
			from, ok = l.Find(originalBase, ext)
		}
		if !ok {
			continue
		}
		to := newBase + "." + ext
		log := r.Logger.With(zap.String("from", from), zap.String("to", to))

		if from == to {
			log.Info("File already has its new name")
			res.Siblings = append(res.Siblings, models.SiblingResult{Ext: ext, From: from, To: to, Status: models.AlreadyNamed})
			continue
		}

		taken, err := r.taken(l.Dir, from, to)
		if err != nil {
			return res, err
		}
		if taken {
			log.Warn("File already exists, not renaming")
			r.Metrics.Increment("collisions")
			res.Siblings = append(res.Siblings, models.SiblingResult{Ext: ext, From: from, To: to, Status: models.Collision})
			continue
		}

		if r.DryRun {
			log.Info("Would have renamed file")
			r.plan(to)
			res.Siblings = append(res.Siblings, models.SiblingResult{Ext: ext, From: from, To: to, Status: models.WouldRename})
			continue
		}

		record := models.RenameRecord{Original: from, New: to}
		if err := changelog.Check(record); err != nil {
			return res, err
		}
		if err := r.apply(l.Dir, record); err != nil {
			return res, err
		}
		l.Move(from, to)

		log.Info("Renamed file")
		r.Metrics.Increment("renamed")
		res.Siblings = append(res.Siblings, models.SiblingResult{Ext: ext, From: from, To: to, Status: models.Renamed})
		res.Applied = append(res.Applied, record)
	}

	return res, nil
}

// taken reports whether to already exists in dir. A target that is the source
// itself under another casing, as seen on case-insensitive filesystems, is not
// taken.
func (r *SequentialRenamer) taken(dir, from, to string) (bool, error) {
	if r.planned[to] {
		return true, nil
	}

	target, err := os.Lstat(filepath.Join(dir, to))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to check %v: %w", to, err)
	}

	source, err := os.Lstat(filepath.Join(dir, from))
	if err != nil {
		return false, fmt.Errorf("unable to check %v: %w", from, err)
	}

	return !os.SameFile(source, target), nil
}

func (r *SequentialRenamer) plan(to string) {
	if r.planned == nil {
		r.planned = make(map[string]bool)
	}
	r.planned[to] = true
}

func (r *SequentialRenamer) apply(dir string, record models.RenameRecord) error {
	src := filepath.Join(dir, record.Original)
	dst := filepath.Join(dir, record.New)

	stop := r.Metrics.Record("rename")
	defer stop()

	if err := atomic.ReplaceFile(src, dst); err != nil {
		return fmt.Errorf("unable to rename %v to %v: %w", record.Original, record.New, err)
	}

	if err := r.Log.Append(record); err != nil {
		if rerr := atomic.ReplaceFile(dst, src); rerr != nil {
			r.Logger.Error("Cannot revert rename",
				zap.String("from", record.New), zap.String("to", record.Original), zap.Error(rerr))
		}
		return err
	}

	return nil
}

package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fedragon/rawrename/internal/changelog"
	"github.com/fedragon/rawrename/internal/config"
	"github.com/fedragon/rawrename/internal/core"
	"github.com/fedragon/rawrename/internal/db"
	"github.com/fedragon/rawrename/internal/exif"
	"github.com/fedragon/rawrename/internal/fs"
	"github.com/fedragon/rawrename/internal/metrics"
	"github.com/fedragon/rawrename/internal/models"
	"github.com/fedragon/rawrename/internal/naming"

	"go.uber.org/zap"
)

// ErrAllCollide is the outcome error of a raw file whose whole group collided
// with existing files.
var ErrAllCollide = errors.New("every new name is already taken")

// Runner renames the raw files of one directory, one file at a time, in the
// order the directory listing returns them. Concurrent runs against the same
// directory are not supported.
type Runner struct {
	logger  *zap.Logger
	cfg     *config.Config
	reader  exif.Reader
	repo    db.Repository
	metrics *metrics.Metrics
}

// NewRunner builds a Runner. repo may be nil to disable the ledger.
func NewRunner(logger *zap.Logger, cfg *config.Config, reader exif.Reader, repo db.Repository, mx *metrics.Metrics) *Runner {
	return &Runner{
		logger:  logger,
		cfg:     cfg,
		reader:  reader,
		repo:    repo,
		metrics: mx,
	}
}

// Run processes the whole directory. Only a failure to list the directory is
// returned as an error; per-file problems are reported in the outcomes.
func (r *Runner) Run() ([]models.Outcome, error) {
	start := time.Now()
	defer func() {
		r.logger.Info("Elapsed time", zap.Duration("elapsed", time.Since(start)))
	}()

	r.logger.Info("Processing files", zap.String("dir", r.cfg.Dir))
	if r.cfg.DryRun {
		r.logger.Info("Running in DRY-RUN mode: files will not be renamed")
	}

	listing, err := fs.List(r.cfg.Dir)
	if err != nil {
		return nil, err
	}

	renamer := &core.SequentialRenamer{
		Log:     changelog.New(r.cfg.Dir),
		DryRun:  r.cfg.DryRun,
		Logger:  r.logger,
		Metrics: r.metrics,
	}

	var outcomes []models.Outcome
	for _, m := range fs.Candidates(r.logger, r.metrics, listing, r.cfg.RawExt) {
		outcome := r.Process(listing, renamer, m)
		r.report(outcome)
		outcomes = append(outcomes, outcome)
	}

	r.metrics.Report(r.logger)
	return outcomes, nil
}

// Process derives the new base name of one raw file and applies it to its
// group.
func (r *Runner) Process(l *fs.Listing, renamer core.GroupRenamer, m models.Media) models.Outcome {
	log := r.logger.With(zap.String("file", m.Name))
	log.Info("Processing file")

	outcome := models.Outcome{File: m.Name}

	if !l.Contains(m.Name) {
		outcome.Verdict = models.Skipped
		outcome.Err = fmt.Errorf("%v is no longer in the directory", m.Name)
		return outcome
	}

	stop := r.metrics.Record("exif")
	rec, err := r.reader.Read(m.Path)
	stop()
	if err != nil {
		outcome.Verdict = models.Skipped
		outcome.Err = err
		return outcome
	}

	base, err := naming.DeriveBaseName(rec, r.cfg.Aliases)
	if err != nil {
		outcome.Verdict = models.Skipped
		outcome.Err = err
		return outcome
	}
	outcome.BaseName = base

	if ts, err := naming.Text(rec, naming.DateTimeOriginal); err == nil && !naming.TimestampValid(ts) {
		log.Warn("Capture timestamp is not a valid date, using it as is", zap.String("timestamp", ts))
	}

	res, err := renamer.RenameGroup(l, m.Name, base, r.cfg.Extensions())
	outcome.Siblings = res.Siblings
	outcome.Applied = res.Applied
	if err != nil {
		outcome.Verdict = models.Failed
		outcome.Err = err
		return outcome
	}

	if !res.Renamed() {
		outcome.Verdict = models.Skipped
		outcome.Err = ErrAllCollide
		return outcome
	}

	outcome.Verdict = models.Done
	r.remember(l.Dir, res.Applied)

	return outcome
}

// remember stores the raw file's rename in the ledger, if there is one.
func (r *Runner) remember(dir string, applied []models.RenameRecord) {
	if r.repo == nil || len(applied) == 0 {
		return
	}

	raw := applied[0]
	if fs.NormalizeExt(filepath.Ext(raw.New)) != fs.NormalizeExt(r.cfg.RawExt) {
		return
	}

	hash, err := fs.Hash(r.metrics, filepath.Join(dir, raw.New))
	if err != nil {
		r.logger.Error("Cannot hash renamed file", zap.String("file", raw.New), zap.Error(err))
		return
	}

	entry := models.LedgerEntry{Dir: dir, Original: raw.Original, New: raw.New, Timestamp: time.Now()}
	if err := r.repo.Store(hash, entry); err != nil {
		r.logger.Error("Cannot store ledger entry", zap.String("file", raw.New), zap.Error(err))
	}
}

func (r *Runner) report(o models.Outcome) {
	log := r.logger.With(zap.String("file", o.File))

	switch o.Verdict {
	case models.Done:
		r.metrics.Increment("done")
		log.Debug("Done", zap.String("base_name", o.BaseName), zap.Int("renamed", len(o.Applied)))
	case models.Skipped:
		r.metrics.Increment("skipped")

		var unreadable *exif.UnreadableError
		var missing *naming.MissingFieldError
		var malformed *naming.MalformedFieldError
		switch {
		case errors.As(o.Err, &unreadable):
			log.Warn("Error loading EXIF data, skipping", zap.Error(o.Err))
		case errors.As(o.Err, &missing), errors.As(o.Err, &malformed):
			log.Warn("Unusable EXIF data, skipping", zap.Error(o.Err))
		default:
			log.Warn("Skipping", zap.Error(o.Err))
		}
	case models.Failed:
		r.metrics.Increment("failed")
		log.Error("Cannot rename file group", zap.Error(o.Err))
	}
}

// Package app wires the command line interface.
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/fedragon/rawrename/internal"
	"github.com/fedragon/rawrename/internal/changelog"
	"github.com/fedragon/rawrename/internal/config"
	"github.com/fedragon/rawrename/internal/core"
	"github.com/fedragon/rawrename/internal/db"
	"github.com/fedragon/rawrename/internal/exif"
	"github.com/fedragon/rawrename/internal/metrics"
	"github.com/fedragon/rawrename/internal/models"

	"github.com/boltdb/bolt"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "RAWRENAME_"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			EnvVars: []string{envPrefix + "DEBUG"},
		},
		&cli.StringFlag{
			Name:    "ledger",
			Usage:   "bolt database remembering renames by file content, ~ is expanded (disabled when empty)",
			EnvVars: []string{envPrefix + "LEDGER"},
		},
	}
}

// New returns the application. Without a subcommand it renames the raw files
// of the given directory.
func New() *cli.App {
	return &cli.App{
		Name:      "rawrename",
		Usage:     "rename camera raw files and their sidecars after EXIF capture time and camera model",
		ArgsUsage: "[dir]",
		Flags:     append(globalFlags(), renameFlags()...),
		Action:    rename,
		Commands: []*cli.Command{
			logCommand(),
			whoisCommand(),
			sweepCommand(),
		},
	}
}

func renameFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Usage:   "directory to process (defaults to the working directory)",
			EnvVars: []string{envPrefix + "DIR"},
		},
		&cli.StringFlag{
			Name:    "raw-ext",
			Value:   config.DefaultConfig().RawExt,
			Usage:   "extension of the raw files",
			EnvVars: []string{envPrefix + "RAW_EXT"},
		},
		&cli.StringSliceFlag{
			Name:    "sidecar",
			Value:   cli.NewStringSlice(config.DefaultSidecars...),
			Usage:   "sidecar and exported extensions renamed along with the raw file, in order",
			EnvVars: []string{envPrefix + "SIDECARS"},
		},
		&cli.StringSliceFlag{
			Name:  "alias",
			Usage: "extra camera model alias, as MODEL=TOKEN",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Usage:   "only report what would be renamed",
			EnvVars: []string{envPrefix + "DRY_RUN"},
		},
	}
}

func rename(c *cli.Context) error {
	cfg := config.DefaultConfig()
	cfg.Dir = c.String("dir")
	if c.Args().Present() {
		cfg.Dir = c.Args().First()
	}
	cfg.RawExt = c.String("raw-ext")
	cfg.Sidecars = c.StringSlice("sidecar")
	cfg.DryRun = c.Bool("dry-run")
	cfg.Debug = c.Bool("debug")
	cfg.LedgerPath = c.String("ledger")

	aliases, err := config.ParseAliases(c.StringSlice("alias"))
	if err != nil {
		return err
	}
	cfg.Aliases = cfg.Aliases.With(aliases)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var repo db.Repository
	if cfg.LedgerPath != "" {
		dbase, err := openLedger(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer closeLedger(logger, dbase)

		if repo, err = db.NewRepository(dbase, logger); err != nil {
			return err
		}
	}

	_, err = internal.NewRunner(logger, cfg, exif.FileReader{}, repo, metrics.NewMetrics()).Run()
	return err
}

func logCommand() *cli.Command {
	return &cli.Command{
		Name:      "log",
		Usage:     "print the change log of a directory",
		ArgsUsage: "[dir]",
		Action: func(c *cli.Context) error {
			cfg := config.DefaultConfig()
			cfg.Dir = c.Args().First()
			if err := cfg.Validate(); err != nil {
				return err
			}

			records, err := changelog.New(cfg.Dir).Read()
			if err != nil {
				return err
			}
			return printRecords(c.App.Writer, records)
		},
	}
}

func whoisCommand() *cli.Command {
	return &cli.Command{
		Name:      "whois",
		Usage:     "print the names a file had before it was renamed",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if !c.Args().Present() {
				return errors.New("missing file argument")
			}

			return withLedger(c, func(logger *zap.Logger, repo db.Repository) error {
				path, err := homedir.Expand(c.Args().First())
				if err != nil {
					return err
				}

				entries, err := core.Whois(repo, metrics.NoMetrics(), path)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					logger.Info("No renames recorded for file", zap.String("file", path))
					return nil
				}
				for _, e := range entries {
					if _, err := fmt.Fprintf(c.App.Writer, "%v\t%v\t%v\t%v\n",
						e.Timestamp.Format("2006-01-02 15:04:05"), e.Dir, e.Original, e.New); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "drop ledger entries of files that no longer exist",
		Action: func(c *cli.Context) error {
			return withLedger(c, func(logger *zap.Logger, repo db.Repository) error {
				_, err := core.Sweep(repo, logger)
				return err
			})
		},
	}
}

func withLedger(c *cli.Context, fn func(*zap.Logger, db.Repository) error) error {
	logger, err := newLogger(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	path := c.String("ledger")
	if path == "" {
		return errors.New("no ledger configured, use --ledger or " + envPrefix + "LEDGER")
	}
	if path, err = homedir.Expand(path); err != nil {
		return err
	}

	dbase, err := openLedger(path)
	if err != nil {
		return err
	}
	defer closeLedger(logger, dbase)

	repo, err := db.NewRepository(dbase, logger)
	if err != nil {
		return err
	}
	return fn(logger, repo)
}

func openLedger(path string) (*bolt.DB, error) {
	dbase, err := db.Connect(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open ledger %v: %w", path, err)
	}
	if err := db.Init(dbase); err != nil {
		_ = dbase.Close()
		return nil, err
	}
	return dbase, nil
}

func closeLedger(logger *zap.Logger, dbase *bolt.DB) {
	if err := dbase.Close(); err != nil {
		logger.Info(err.Error())
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

func printRecords(w io.Writer, records []models.RenameRecord) error {
	for _, r := range records {
		if _, err := io.WriteString(w, changelog.Format(r)); err != nil {
			return err
		}
	}
	return nil
}

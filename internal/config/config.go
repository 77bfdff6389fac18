// Package config holds the settings of a run and their validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fedragon/rawrename/internal/fs"
	"github.com/fedragon/rawrename/internal/naming"

	"github.com/mitchellh/go-homedir"
)

// DefaultSidecars are probed after the raw file, in this order.
var DefaultSidecars = []string{"xmp", "jpg", "tiff"}

type Config struct {
	Dir        string
	RawExt     string
	Sidecars   []string
	Aliases    naming.AliasTable
	DryRun     bool
	Debug      bool
	LedgerPath string // empty disables the ledger
}

func DefaultConfig() *Config {
	return &Config{
		RawExt:   fs.CR2,
		Sidecars: append([]string(nil), DefaultSidecars...),
		Aliases:  naming.DefaultAliases(),
	}
}

// Extensions returns the raw extension followed by the sidecars, normalized
// and without duplicates.
func (c *Config) Extensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, e := range append([]string{c.RawExt}, c.Sidecars...) {
		e = fs.NormalizeExt(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		exts = append(exts, e)
	}
	return exts
}

// Validate checks the configuration and resolves paths. An empty Dir becomes
// the working directory.
func (c *Config) Validate() error {
	if c.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		c.Dir = wd
	}

	dir, err := homedir.Expand(c.Dir)
	if err != nil {
		return err
	}
	c.Dir = dir

	info, err := os.Stat(c.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%v is not a directory", c.Dir)
	}

	if err := checkExt(c.RawExt); err != nil {
		return fmt.Errorf("raw extension: %w", err)
	}
	for _, s := range c.Sidecars {
		if err := checkExt(s); err != nil {
			return fmt.Errorf("sidecar extension: %w", err)
		}
	}

	if c.LedgerPath != "" {
		if c.LedgerPath, err = homedir.Expand(c.LedgerPath); err != nil {
			return err
		}
	}

	return nil
}

func checkExt(ext string) error {
	e := fs.NormalizeExt(ext)
	if e == "" {
		return errors.New("empty extension")
	}
	if strings.ContainsAny(e, `./\`) {
		return fmt.Errorf("invalid extension %q", ext)
	}
	return nil
}

// ParseAliases reads MODEL=TOKEN pairs.
func ParseAliases(pairs []string) (map[string]string, error) {
	aliases := make(map[string]string, len(pairs))
	for _, p := range pairs {
		model, token, ok := strings.Cut(p, "=")
		model, token = strings.TrimSpace(model), strings.TrimSpace(token)
		if !ok || model == "" || token == "" {
			return nil, fmt.Errorf("invalid alias %q, expected MODEL=TOKEN", p)
		}
		if strings.ContainsAny(token, `/\`) {
			return nil, fmt.Errorf("invalid alias %q: token contains a path separator", p)
		}
		aliases[model] = token
	}
	return aliases, nil
}

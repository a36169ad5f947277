package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hydrodeck/internal/driver"
	"hydrodeck/internal/formats"
	"hydrodeck/internal/store"
)

const cacheApp = "hydrodeck"

// addRunFlags registers the flags every deck-reading command shares.
func addRunFlags(c *cobra.Command) {
	c.Flags().Int("jobs", 0, "max parallel file parses (0=auto)")
	c.Flags().Bool("strict", false, "treat files without a registered parser as errors")
	c.Flags().Bool("cache", false, "reuse parse results from the disk cache")
	c.Flags().Bool("no-validate", false, "skip the cross-reference pass")
	c.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
}

type runSettings struct {
	opts     driver.Options
	manifest *deckManifest
	ui       uiMode
}

// readRunSettings merges the manifest of the deck with the command flags;
// an explicitly set flag wins over the manifest.
func readRunSettings(cmd *cobra.Command, dir string) (*runSettings, error) {
	m, err := loadManifest(dir)
	if err != nil {
		return nil, err
	}

	var opts driver.Options
	if m.Parse.Jobs != nil {
		opts.Jobs = *m.Parse.Jobs
	}
	if m.Parse.Strict != nil {
		opts.Strict = *m.Parse.Strict
	}
	useCache := m.Parse.Cache != nil && *m.Parse.Cache

	if cmd.Flags().Changed("jobs") {
		if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if cmd.Flags().Changed("strict") {
		if opts.Strict, err = cmd.Flags().GetBool("strict"); err != nil {
			return nil, fmt.Errorf("failed to get strict flag: %w", err)
		}
	}
	if cmd.Flags().Changed("cache") {
		if useCache, err = cmd.Flags().GetBool("cache"); err != nil {
			return nil, fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	if opts.NoValidate, err = cmd.Flags().GetBool("no-validate"); err != nil {
		return nil, fmt.Errorf("failed to get no-validate flag: %w", err)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return nil, err
	}

	opts.Registry, err = formats.NewRegistry(m.formatOptions(), m.Files)
	if err != nil {
		return nil, fmt.Errorf("format registry: %w", err)
	}
	if useCache {
		if opts.Cache, err = store.OpenDiskCache(cacheApp); err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		opts.CacheSalt = m.cacheSalt()
	}
	return &runSettings{opts: opts, manifest: m, ui: mode}, nil
}

// runDeck parses path, a deck directory or a single file.
func runDeck(cmd *cobra.Command, path string) (*driver.Result, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	dir := path
	if !st.IsDir() {
		dir = filepath.Dir(path)
	}
	settings, err := readRunSettings(cmd, dir)
	if err != nil {
		return nil, err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	ctx := cmd.Context()
	if !st.IsDir() {
		return driver.ParseFile(ctx, path, settings.opts)
	}
	if quiet || !shouldUseTUI(settings.ui) {
		return driver.ParseDir(ctx, path, settings.opts)
	}
	files, err := driver.Discover(path)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", path, err)
	}
	return runParseWithUI(ctx, cmd.ErrOrStderr(), path, files, settings.opts)
}

// deckExit turns the outcome of a run into the command error.
func deckExit(res *driver.Result, warningsAsErrors bool) error {
	if res.Failed() || (warningsAsErrors && res.Bag.HasWarnings()) {
		return exitError{code: exitDeck}
	}
	return nil
}

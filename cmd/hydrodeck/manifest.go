package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"hydrodeck/internal/driver"
	"hydrodeck/internal/formats"
)

// deckManifest is the optional hydrodeck.toml of a deck directory.
type deckManifest struct {
	Path   string            `toml:"-"`
	Parse  parseConfig       `toml:"parse"`
	Binary binaryConfig      `toml:"binary"`
	Files  map[string]string `toml:"files"` // file name pattern -> format name
}

type parseConfig struct {
	Jobs   *int  `toml:"jobs"`
	Strict *bool `toml:"strict"`
	Cache  *bool `toml:"cache"`
}

type binaryConfig struct {
	Stride   int   `toml:"stride"`
	PostoMin int32 `toml:"posto_min"`
	PostoMax int32 `toml:"posto_max"`
}

// loadManifest reads dir/hydrodeck.toml. A missing manifest is an empty one.
func loadManifest(dir string) (*deckManifest, error) {
	path := filepath.Join(dir, driver.ManifestName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &deckManifest{}, nil
		}
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	var m deckManifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	m.Path = path
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func (m *deckManifest) validate() error {
	if m.Parse.Jobs != nil && *m.Parse.Jobs < 0 {
		return fmt.Errorf("[parse].jobs must not be negative")
	}
	if err := m.formatOptions().Validate(); err != nil {
		return fmt.Errorf("[binary]: %w", err)
	}
	for pattern, name := range m.Files {
		if strings.TrimSpace(pattern) == "" || strings.TrimSpace(name) == "" {
			return fmt.Errorf("[files] entries need a pattern and a format name")
		}
	}
	return nil
}

// formatOptions returns the grammar options; each zero value falls back to its default.
func (m *deckManifest) formatOptions() formats.Options {
	return formats.Options{
		Stride:   m.Binary.Stride,
		PostoMin: m.Binary.PostoMin,
		PostoMax: m.Binary.PostoMax,
	}
}

// cacheSalt names every manifest setting that changes what a parser returns.
func (m *deckManifest) cacheSalt() string {
	o := m.formatOptions().WithDefaults()
	parts := []string{fmt.Sprintf("stride=%d", o.Stride), fmt.Sprintf("posto=%d-%d", o.PostoMin, o.PostoMax)}
	for _, p := range slices.Sorted(maps.Keys(m.Files)) {
		parts = append(parts, strings.ToLower(p)+"="+m.Files[p])
	}
	return strings.Join(parts, ";")
}

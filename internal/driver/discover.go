package driver

import (
	"os"
	"path/filepath"
	"strings"
)

// ManifestName is the optional per-deck configuration file; it is never parsed as data.
const ManifestName = "hydrodeck.toml"

// Discover lists the regular files of dir in name order. Hidden files and
// the manifest are left out; subdirectories are not entered.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.EqualFold(name, ManifestName) {
			continue
		}
		if !e.Type().IsRegular() && e.Type()&os.ModeSymlink == 0 {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

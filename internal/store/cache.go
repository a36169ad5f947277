package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// Digest keys a cache entry.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Key combines the content hash of a file with the parser that reads it and
// any option that changes the result (e.g. the binary stride).
func Key(format string, content [32]byte, salt string) Digest {
	h := sha256.New()
	fmt.Fprintf(h, "hydrodeck/%d\x00%s\x00%s\x00", SchemaVersion, format, salt)
	h.Write(content[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// DiskCache keeps one msgpack payload per parsed file, keyed by Key.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app, or ~/.cache/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "files", key.String()+".mp")
}

// Put stores the result of one parse. The file is written to a temporary
// name and renamed so readers never see a partial payload.
func (c *DiskCache) Put(key Digest, col *deck.Collection, flags source.FileFlags, diags []diag.Diagnostic) error {
	if c == nil {
		return nil
	}
	payload, err := NewPayload(col, flags, diags)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(tmp, p)
}

// Get restores a cached parse for file. A missing entry is (nil, nil, false, nil).
func (c *DiskCache) Get(key Digest, file *source.File) (*deck.Collection, []diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	file.Flags |= payload.Flags & source.FileBinary
	col, diags, err := payload.Restore(file)
	if err != nil {
		return nil, nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return col, diags, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}

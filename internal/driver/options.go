package driver

import (
	"hydrodeck/internal/registry"
	"hydrodeck/internal/store"
)

// Options configure a parse run.
type Options struct {
	Jobs       int  // <= 0 means GOMAXPROCS
	Strict     bool // a file without a parser is an error instead of a skip
	NoValidate bool // skip the cross-reference pass

	Registry  *registry.Registry // frozen before tasks start
	Cache     *store.DiskCache   // optional
	CacheSalt string             // options that change parse results, part of the cache key

	Progress chan<- Event // optional; never closed by the driver
}

package rsc

import (
	"os"

	"github.com/lighttime0/RSC/internal/cache"
)

// OpenInputCache opens cfg.ICache for random-access lookup (spec.md
// §4.7, §6 "i-cache"). A zero Config.ICache means no input cache was
// configured; the caller gets (nil, nil) rather than an error, per
// spec.md §7 kind 3: a missing cache is non-fatal and analysis simply
// proceeds without one.
func OpenInputCache(cfg *Config) (*cache.Index, error) {
	if cfg.ICache == "" {
		return nil, nil
	}
	fh, err := os.Open(cfg.ICache)
	if err != nil {
		return nil, nil
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, nil
	}
	idx, err := cache.Open(fh, info.Size())
	if err != nil {
		fh.Close()
		return nil, nil
	}
	return idx, nil
}

// OutputCache wraps the file backing cfg.OCache with a cache.Writer,
// open for the lifetime of a run and closed once by the caller when
// every summary has been written.
type OutputCache struct {
	*cache.Writer
	file *os.File
}

// CreateOutputCache opens cfg.OCache for writing (spec.md §6
// "o-cache"), truncating any existing file. A zero Config.OCache means
// no output cache was requested.
func CreateOutputCache(cfg *Config) (*OutputCache, error) {
	if cfg.OCache == "" {
		return nil, nil
	}
	fh, err := os.Create(cfg.OCache)
	if err != nil {
		return nil, err
	}
	return &OutputCache{Writer: cache.NewWriter(fh), file: fh}, nil
}

// Close flushes and closes the underlying file.
func (o *OutputCache) Close() error {
	if o == nil {
		return nil
	}
	return o.file.Close()
}

package dataset

import (
	"log/slog"
	"sync"
)

// Cache holds the dataset for the lifetime of the process. The sources are
// static, so there is no invalidation: the first Get loads, later calls return
// the same dataset or the same load error. Sessions share the immutable value.
type Cache struct {
	opt  Options
	load func(Options) (*Dataset, error)

	once sync.Once
	ds   *Dataset
	err  error
}

// NewCache returns a cache that loads with Load(opt) on first use.
func NewCache(opt Options) *Cache {
	return &Cache{opt: opt, load: Load}
}

// NewCacheWith returns a cache backed by a custom loader.
func NewCacheWith(opt Options, load func(Options) (*Dataset, error)) *Cache {
	return &Cache{opt: opt, load: load}
}

// Get returns the cached dataset, loading it on first use.
func (c *Cache) Get() (*Dataset, error) {
	c.once.Do(func() {
		c.ds, c.err = c.load(c.opt)
		if c.err != nil {
			slog.Error("dataset load failed", "sources", c.opt.Sources, "dir", c.opt.Dir, "error", c.err)
			return
		}
		slog.Info("dataset loaded",
			"load_id", c.ds.LoadID(),
			"years", c.ds.Len(),
			"columns", len(c.ds.Keys()),
			"warnings", len(c.ds.Warnings()))
		for _, w := range c.ds.Warnings() {
			slog.Warn("dataset cleaning", "load_id", c.ds.LoadID(), "detail", w)
		}
	})
	return c.ds, c.err
}

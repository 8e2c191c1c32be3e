package cache

import (
	"errors"
	"io/fs"
)

// FileCache is an in-memory cache persisted to a JSON export file between
// runs. The file is read on open and rewritten by Save.
type FileCache struct {
	*InMemoryCache
	path     string
	metadata map[string]string
}

// OpenFileCache loads the cache at path. A missing file yields an empty
// cache.
func OpenFileCache(path string, ttlSeconds int, metadata map[string]string) (*FileCache, error) {
	c := &FileCache{
		InMemoryCache: NewInMemoryCache(ttlSeconds),
		path:          path,
		metadata:      metadata,
	}

	if _, err := NewImporter(c.InMemoryCache).ImportFromFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return c, nil
}

// Path returns the backing file.
func (c *FileCache) Path() string {
	return c.path
}

// Save writes the live entries back to the backing file.
func (c *FileCache) Save() error {
	return NewExporter(c.InMemoryCache).ExportToFile(c.path, c.metadata)
}

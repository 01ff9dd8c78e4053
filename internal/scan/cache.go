// internal/scan/cache.go
package scan

import (
	"fmt"
	"io/fs"

	"vigil/internal/snapshot"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DigestCache memoizes digests across scans keyed by path, size and
// mtime. Any content change that alters size or mtime misses the cache
// and forces a fresh read.
type DigestCache struct {
	cache *lru.Cache[string, snapshot.Digest]
}

func NewDigestCache(size int) (*DigestCache, error) {
	cache, err := lru.New[string, snapshot.Digest](size)
	if err != nil {
		return nil, fmt.Errorf("creating digest cache: %w", err)
	}
	return &DigestCache{cache: cache}, nil
}

func cacheKey(rel string, info fs.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", rel, info.Size(), info.ModTime().UnixNano())
}

func (c *DigestCache) Get(rel string, info fs.FileInfo) (snapshot.Digest, bool) {
	return c.cache.Get(cacheKey(rel, info))
}

func (c *DigestCache) Add(rel string, info fs.FileInfo, d snapshot.Digest) {
	c.cache.Add(cacheKey(rel, info), d)
}

func (c *DigestCache) Len() int {
	return c.cache.Len()
}

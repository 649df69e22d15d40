// Package cache keeps compiled artifacts so identical patches are
// compiled once.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"

	"bytebeat/pkg/generator"
)

type Key [blake2b.Size256]byte

// KeyOf hashes backend and source. The NUL separator keeps ("a", "bc")
// and ("ab", "c") apart.
func KeyOf(backend generator.Backend, src string) Key {
	return blake2b.Sum256([]byte(string(backend) + "\x00" + src))
}

// Cache is a bounded artifact store. When full, the least recently used
// artifact is evicted. Safe for concurrent use.
type Cache struct {
	entries *lru.Cache[Key, generator.Artifact]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

func New(limit int) *Cache {
	if limit < 1 {
		limit = 1
	}
	// lru.New only fails on a non-positive size.
	entries, _ := lru.New[Key, generator.Artifact](limit)
	return &Cache{entries: entries}
}

// Compile returns the cached artifact for (backend, src), compiling and
// storing it on a miss. Compile errors are not cached.
func (c *Cache) Compile(backend generator.Backend, src string) (generator.Artifact, error) {
	key := KeyOf(backend, src)
	if art, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return art, nil
	}
	c.misses.Add(1)

	art, err := generator.Compile(backend, src)
	if err != nil {
		return nil, err
	}

	// A concurrent miss may have stored the same key first; keep theirs.
	if existing, ok, _ := c.entries.PeekOrAdd(key, art); ok {
		return existing, nil
	}
	return art, nil
}

func (c *Cache) Len() int { return c.entries.Len() }

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

package matcher

import (
	"container/list"
	"sync"

	"github.com/dlclark/regexp2"
)

const (
	// DefaultCacheSize is the default maximum number of cached patterns.
	DefaultCacheSize = 256

	// MaxPatternLength is the maximum length of a user regex (ReDoS protection).
	MaxPatternLength = 512
)

type cacheKey struct {
	pattern string
	opts    regexp2.RegexOptions
}

// patternCache is an LRU cache of compiled patterns. Compile errors are
// cached too so a broken trigger is reported once, not on every line.
// It is safe for concurrent use.
type patternCache struct {
	mu      sync.Mutex
	cache   map[cacheKey]*list.Element
	lruList *list.List
	maxSize int
}

type cacheEntry struct {
	key cacheKey
	re  *regexp2.Regexp
	err error
}

func newPatternCache(maxSize int) *patternCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &patternCache{
		cache:   make(map[cacheKey]*list.Element),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

// get returns the compiled pattern. fresh is true when this call compiled it,
// which lets the caller report a compile error exactly once.
func (c *patternCache) get(pattern string, opts regexp2.RegexOptions, compile func(string, regexp2.RegexOptions) (*regexp2.Regexp, error)) (re *regexp2.Regexp, fresh bool, err error) {
	key := cacheKey{pattern: pattern, opts: opts}

	c.mu.Lock()
	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		c.mu.Unlock()
		return entry.re, false, entry.err
	}
	c.mu.Unlock()

	re, err = compile(pattern, opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine might have added it while we were compiling.
	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		return entry.re, false, entry.err
	}

	if c.lruList.Len() >= c.maxSize {
		if oldest := c.lruList.Back(); oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}

	c.cache[key] = c.lruList.PushFront(&cacheEntry{key: key, re: re, err: err})
	return re, true, err
}

// Len returns the current number of cached patterns.
func (c *patternCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

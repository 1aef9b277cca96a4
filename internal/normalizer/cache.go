package normalizer

import lru "github.com/hashicorp/golang-lru/v2"

// defaultCacheSize bounds the process-wide parse cache (spec §4.1: "a
// process-wide LRU cache keyed on raw text prevents re-parsing duplicate
// sentences within a run").
const defaultCacheSize = 8192

// parseCache memoizes ParsedDoc by raw input text.
type parseCache struct {
	cache *lru.Cache[string, *ParsedDoc]
}

func newParseCache(size int) (*parseCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[string, *ParsedDoc](size)
	if err != nil {
		return nil, err
	}
	return &parseCache{cache: c}, nil
}

func (c *parseCache) get(text string) (*ParsedDoc, bool) {
	return c.cache.Get(text)
}

func (c *parseCache) put(text string, doc *ParsedDoc) {
	c.cache.Add(text, doc)
}

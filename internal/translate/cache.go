package translate

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"dubline/internal/textutil"
)

// cache holds translations of short phrases for one job.
type cache struct {
	mu       sync.Mutex
	maxWords int
	entries  map[string]string
}

func newCache(maxWords int) *cache {
	return &cache{maxWords: maxWords, entries: make(map[string]string)}
}

// cacheKey normalizes text to NFC, trims it, and case-folds it.
func cacheKey(text string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(text)))
}

func (c *cache) eligible(text string) bool {
	if c == nil || c.maxWords <= 0 {
		return false
	}
	n := textutil.WordCount(text)
	return n > 0 && n <= c.maxWords
}

func (c *cache) get(text string) (string, bool) {
	if !c.eligible(text) {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[cacheKey(text)]
	return v, ok
}

func (c *cache) put(text, translated string) {
	if !c.eligible(text) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(text)] = translated
}

func (c *cache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}


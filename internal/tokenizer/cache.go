package tokenizer

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedCounter memoizes counts by content digest so reloading a project
// does not re-encode unchanged files.
type CachedCounter struct {
	counter Counter
	cache   *lru.Cache[[sha256.Size]byte, int]
}

// NewCachedCounter wraps counter with an LRU cache holding up to size entries.
func NewCachedCounter(counter Counter, size int) (*CachedCounter, error) {
	if counter == nil {
		return nil, fmt.Errorf("tokenizer: nil counter")
	}
	cache, err := lru.New[[sha256.Size]byte, int](size)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: create cache: %w", err)
	}
	return &CachedCounter{counter: counter, cache: cache}, nil
}

// Name reports the wrapped counter's name.
func (cached *CachedCounter) Name() string {
	return cached.counter.Name()
}

// CountString returns the memoized count for input, computing it on a miss.
func (cached *CachedCounter) CountString(input string) (int, error) {
	digest := sha256.Sum256([]byte(input))
	if tokens, found := cached.cache.Get(digest); found {
		return tokens, nil
	}
	tokens, err := cached.counter.CountString(input)
	if err != nil {
		return 0, err
	}
	cached.cache.Add(digest, tokens)
	return tokens, nil
}

// Len reports how many counts are cached.
func (cached *CachedCounter) Len() int {
	return cached.cache.Len()
}

var _ Counter = (*CachedCounter)(nil)

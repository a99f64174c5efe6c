package firmware

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/calgarytospace/tcx/internal/extract"
)

// parseCacheSize bounds the number of memoized corpora. Scans and the
// agent tools hit the same handful of corpora repeatedly.
const parseCacheSize = 8

// Loader parses corpora and memoizes results, keyed by corpus hash.
type Loader struct {
	cache *lru.Cache[string, []extract.Telecommand]
}

// NewLoader returns a Loader with an empty cache.
func NewLoader() (*Loader, error) {
	cache, err := lru.New[string, []extract.Telecommand](parseCacheSize)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: cache}, nil
}

// Parse extracts telecommands from corpus, reusing an earlier result when
// the identical corpus was parsed before. Callers must not mutate the
// returned slice; it is shared across cache hits.
func (l *Loader) Parse(corpus string) ([]extract.Telecommand, error) {
	key := extract.ComputeCorpusHash([]byte(corpus))
	if records, ok := l.cache.Get(key); ok {
		return records, nil
	}

	records, err := extract.Parse(corpus)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, records)
	return records, nil
}

// size returns the number of memoized corpora.
func (l *Loader) size() int {
	return l.cache.Len()
}
